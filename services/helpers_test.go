package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"testing"
	"time"

	"makazi/constants"
	"makazi/models"
	"makazi/services/notification"
	"makazi/types"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

var testDBNames = strings.NewReplacer("/", "_", " ", "_", "'", "", "\"", "")

// newTestDB opens a private in-memory SQLite database with the full schema.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, "")
}

// newStrictTestDB is newTestDB with foreign keys enforced, as on Postgres.
func newStrictTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return openTestDB(t, "&_foreign_keys=1")
}

func openTestDB(t *testing.T, params string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared%s", testDBNames.Replace(t.Name()), params)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, models.AutoMigrate(db))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role types.Role) *models.User {
	t.Helper()
	hashed, err := HashPassword("secret123")
	require.NoError(t, err)
	user := &models.User{
		Name:     strings.ToUpper(username[:1]) + username[1:],
		Username: username,
		Email:    username + "@example.com",
		Password: hashed,
		Role:     role,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func seedProperty(t *testing.T, db *gorm.DB, landlordID uint, title, location string, price int64, verified bool) *models.Property {
	t.Helper()
	property := &models.Property{
		LandlordID: landlordID,
		Title:      title,
		Location:   location,
		Price:      price,
		IsVerified: verified,
	}
	property.SetStatus(constants.PropertyStatusAvailable)
	require.NoError(t, db.Create(property).Error)
	return property
}

func tenantActor(u *models.User) *Actor   { return &Actor{ID: u.ID, Role: types.RoleTenant} }
func landlordActor(u *models.User) *Actor { return &Actor{ID: u.ID, Role: types.RoleLandlord} }
func adminActor(u *models.User) *Actor    { return &Actor{ID: u.ID, Role: types.RoleAdmin} }

type recordingNotifier struct {
	mu      sync.Mutex
	notices []notification.Notice
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, notice notification.Notice) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
	return n.err
}

func (n *recordingNotifier) sentTo(userID uint) []notification.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	var out []notification.Notice
	for _, notice := range n.notices {
		if notice.UserID == userID {
			out = append(out, notice)
		}
	}
	return out
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.notices)
}

type memoryImageStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
	failOn  int
	uploads int
	clock   func() time.Time
}

func newMemoryImageStore() *memoryImageStore {
	return &memoryImageStore{
		objects: make(map[string][]byte),
		clock:   func() time.Time { return time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC) },
	}
}

func (s *memoryImageStore) Upload(_ context.Context, ownerID uint, img ImageUpload) (StoredImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if s.failOn > 0 && s.uploads == s.failOn {
		return StoredImage{}, fmt.Errorf("upload %s refused", img.Filename)
	}
	data, err := io.ReadAll(img.Body)
	if err != nil {
		return StoredImage{}, err
	}
	id := path.Join(constants.PropertyImageFolder, fmt.Sprint(ownerID), ObjectName(s.clock(), img.Filename))
	s.objects[id] = data
	return StoredImage{URL: "https://images.test/" + id, PublicID: id}, nil
}

func (s *memoryImageStore) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, publicID)
	s.deleted = append(s.deleted, publicID)
	return nil
}

// memoryCache is a Cache kept in a map, enough to exercise hit/miss and invalidation.
type memoryCache struct {
	mu     sync.Mutex
	values map[string][]byte
	sets   int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{values: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, target interface{}) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	raw, ok := c.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, target)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.values[key] = raw
	c.sets++
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.values, k)
	}
	return nil
}

func (c *memoryCache) DeletePattern(_ context.Context, pattern string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			delete(c.values, k)
		}
	}
	return nil
}

func (c *memoryCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.values[key]
	return ok, nil
}

func (c *memoryCache) keys(prefix string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []string
	for k := range c.values {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out
}
