package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"

	"makazi/constants"
	"makazi/dto"
	"makazi/errors"
	"makazi/models"
	"makazi/services/logger"
	"makazi/services/notification"

	"gorm.io/gorm"
)

type MessageServiceOptions struct {
	DB       *gorm.DB
	Logger   logger.Logger
	Notifier notification.Notifier
}

type MessageService struct {
	db       *gorm.DB
	logger   logger.Logger
	notifier notification.Notifier
}

func NewMessageService(opts MessageServiceOptions) *MessageService {
	return &MessageService{db: opts.DB, logger: opts.Logger, notifier: opts.Notifier}
}

func (s *MessageService) Send(ctx context.Context, actor *Actor, in dto.SendMessageInput) (*models.Message, error) {
	if err := requireActor(actor); err != nil {
		return nil, err
	}
	body := strings.TrimSpace(in.Body)
	if body == "" {
		return nil, errors.NewAppError(errors.ErrCodeRequiredField, "Message cannot be empty", nil)
	}
	if in.RecipientID == actor.ID {
		return nil, errors.NewAppError(errors.ErrCodeInvalidOperation, "You cannot message yourself", nil)
	}

	db := s.db.WithContext(ctx)
	var recipient models.User
	if err := db.First(&recipient, in.RecipientID).Error; err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewAppError(errors.ErrCodeUserNotFound, "Recipient not found", errors.ErrUserNotFound)
		}
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load recipient", err)
	}
	if in.PropertyID != nil {
		var property models.Property
		err := db.Select("id", "landlord_id", "is_verified").First(&property, *in.PropertyID).Error
		if err != nil && !stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not load property", err)
		}
		if err != nil || !canSeeProperty(actor, &property) {
			return nil, errors.NewAppError(errors.ErrCodePropertyNotFound, "Property not found", errors.ErrPropertyNotFound)
		}
	}

	msg := models.Message{
		SenderID:    actor.ID,
		RecipientID: recipient.ID,
		PropertyID:  in.PropertyID,
		Body:        body,
	}
	if err := db.Create(&msg).Error; err != nil {
		return nil, errors.NewAppError(errors.ErrCodeDBError, "Could not send message", err)
	}
	msg.Recipient = &recipient

	if s.notifier != nil {
		err := s.notifier.Notify(ctx, notification.Notice{
			UserID:  recipient.ID,
			Kind:    constants.NotificationNewMessage,
			Title:   "New message",
			Message: fmt.Sprintf("You have a new message: %s", preview(body)),
			RefID:   msg.ID,
		})
		if err != nil {
			s.logger.Error("notify message %d: %v", msg.ID, err)
		}
	}
	return &msg, nil
}

func preview(body string) string {
	runes := []rune(body)
	if len(runes) <= 60 {
		return body
	}
	return string(runes[:60]) + "..."
}

// Inbox lists messages received by the actor, newest first.
func (s *MessageService) Inbox(ctx context.Context, actor *Actor, page, limit int) ([]models.Message, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, "recipient_id = ?", actor.ID, page, limit)
}

func (s *MessageService) Sent(ctx context.Context, actor *Actor, page, limit int) ([]models.Message, int64, error) {
	if err := requireActor(actor); err != nil {
		return nil, 0, err
	}
	return s.list(ctx, "sender_id = ?", actor.ID, page, limit)
}

func (s *MessageService) list(ctx context.Context, cond string, userID uint, page, limit int) ([]models.Message, int64, error) {
	page, limit = pageBounds(page, limit)
	query := s.db.WithContext(ctx).Model(&models.Message{}).Where(cond, userID).Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load messages", err)
	}
	var messages []models.Message
	if err := query.Preload("Sender").Preload("Recipient").
		Order("created_at DESC, id DESC").
		Offset(page * limit).Limit(limit).
		Find(&messages).Error; err != nil {
		return nil, 0, errors.NewAppError(errors.ErrCodeDBError, "Could not load messages", err)
	}
	return messages, total, nil
}

// MarkRead stamps a received message as read.
func (s *MessageService) MarkRead(ctx context.Context, actor *Actor, id uint) error {
	if err := requireActor(actor); err != nil {
		return err
	}
	res := s.db.WithContext(ctx).Model(&models.Message{}).
		Where("id = ? AND recipient_id = ? AND read_at IS NULL", id, actor.ID).
		Update("read_at", gorm.Expr("CURRENT_TIMESTAMP"))
	if res.Error != nil {
		return errors.NewAppError(errors.ErrCodeDBError, "Could not update message", res.Error)
	}
	if res.RowsAffected == 0 {
		var count int64
		s.db.WithContext(ctx).Model(&models.Message{}).Where("id = ? AND recipient_id = ?", id, actor.ID).Count(&count)
		if count == 0 {
			return errors.NewAppError(errors.ErrCodeNotFound, "Message not found", nil)
		}
	}
	return nil
}
