package notification

import (
	"context"
	"fmt"

	"makazi/errors"
	"makazi/models"
	"makazi/services/logger"

	"github.com/goccy/go-json"
	"github.com/olahol/melody"
	"gorm.io/gorm"
)

// SessionUserKey is the melody session key holding the user id.
const SessionUserKey = "userID"

// Pusher delivers a payload to the live sessions of one user.
type Pusher interface {
	PushToUser(userID uint, payload []byte) error
}

type MelodyService struct {
	m *melody.Melody
}

func NewMelodyService(m *melody.Melody) *MelodyService {
	return &MelodyService{m: m}
}

func (s *MelodyService) PushToUser(userID uint, payload []byte) error {
	if s.m == nil {
		return fmt.Errorf("melody instance is nil")
	}
	return s.m.BroadcastFilter(payload, func(session *melody.Session) bool {
		v, ok := session.Get(SessionUserKey)
		if !ok {
			return false
		}
		id, _ := v.(uint)
		return id == userID
	})
}

// Notice is a notification about to be stored and pushed.
type Notice struct {
	UserID  uint
	Kind    string
	Title   string
	Message string
	RefID   uint
}

// Notifier is what the domain services depend on.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}

type Service struct {
	db     *gorm.DB
	pusher Pusher
	logger logger.Logger
}

func NewService(db *gorm.DB, pusher Pusher, log logger.Logger) *Service {
	return &Service{db: db, pusher: pusher, logger: log}
}

// Notify persists the notification and pushes it; push failures are only logged.
func (s *Service) Notify(ctx context.Context, n Notice) error {
	if n.UserID == 0 {
		return nil
	}
	row := models.Notification{
		UserID:  n.UserID,
		Kind:    n.Kind,
		Title:   n.Title,
		Message: n.Message,
		RefID:   n.RefID,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return errors.NewAppError(errors.ErrCodeDBError, "Could not save notification", err)
	}

	if s.pusher != nil {
		payload, err := NewMessageBuilder(row).Build()
		if err != nil {
			s.logger.Error("encode notification %d: %v", row.ID, err)
			return nil
		}
		if err := s.pusher.PushToUser(n.UserID, payload); err != nil {
			s.logger.Warn("push notification %d to user %d: %v", row.ID, n.UserID, err)
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID uint, page, limit int) ([]models.Notification, int64, error) {
	var (
		rows  []models.Notification
		total int64
	)
	tx := s.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID).Session(&gorm.Session{})
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load notifications", err)
	}
	if err := tx.Order("created_at DESC, id DESC").Offset(page * limit).Limit(limit).Find(&rows).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load notifications", err)
	}
	return rows, total, nil
}

func (s *Service) MarkRead(ctx context.Context, userID, id uint) error {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if res.Error != nil {
		return errors.NewAppError(errors.ErrCodeDBError, "Could not update notification", res.Error)
	}
	if res.RowsAffected == 0 {
		return errors.NewAppError(errors.ErrCodeNotFound, "Notification not found", nil)
	}
	return nil
}

type MessageBuilder struct {
	n models.Notification
}

func NewMessageBuilder(n models.Notification) *MessageBuilder {
	return &MessageBuilder{n: n}
}

func (b *MessageBuilder) Build() ([]byte, error) {
	return json.Marshal(map[string]interface{}{
		"type": "notification",
		"data": b.n,
	})
}
