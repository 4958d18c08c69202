package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"rizq/internal/database"
	"rizq/internal/featureflags"
	"rizq/internal/models"
	"rizq/internal/notifications"
	"rizq/internal/repository"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordedEvent struct {
	userID uint
	event  notifications.UserEvent
}

type userEventRecorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *userEventRecorder) NotifyUser(_ context.Context, userID uint, ev notifications.UserEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{userID: userID, event: ev})
	return nil
}

func (r *userEventRecorder) ofType(eventType string) []recordedEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []recordedEvent
	for _, e := range r.events {
		if e.event.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

// testEnv wires both services to an in-memory SQLite store.
type testEnv struct {
	db       *gorm.DB
	feed     *notifications.LocalFeed
	users    *userEventRecorder
	profiles *ProfileDirectory
	convs    *ConversationService
	deals    *DealService
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func newTestEnv(t *testing.T, flags string) *testEnv {
	t.Helper()
	db := newTestDB(t)
	env := &testEnv{
		db:    db,
		feed:  notifications.NewLocalFeed(),
		users: &userEventRecorder{},
	}
	policy := NoRetry()
	env.profiles = NewProfileDirectory(repository.NewProfileRepository(db), nil, time.Minute, policy)
	env.convs = NewConversationService(repository.NewMessageRepository(db), env.profiles, ConversationOptions{
		Retry: policy,
		Feed:  env.feed,
		Users: env.users,
	})
	env.deals = NewDealService(
		repository.NewDealRepository(db),
		repository.NewItemRepository(db),
		env.profiles,
		env.convs,
		DealOptions{
			Flags: featureflags.NewManager(flags),
			Retry: policy,
			Feed:  env.feed,
			Users: env.users,
		},
	)
	return env
}

func (e *testEnv) profile(t *testing.T, username string) uint {
	t.Helper()
	p := models.Profile{Username: username, FullName: username + " Example"}
	require.NoError(t, e.db.Create(&p).Error)
	return p.ID
}

func (e *testEnv) gig(t *testing.T, owner uint, title string) uint {
	t.Helper()
	g := models.Gig{UserID: owner, Title: title, Price: 150}
	require.NoError(t, e.db.Create(&g).Error)
	return g.ID
}

func (e *testEnv) demand(t *testing.T, owner uint, title string) uint {
	t.Helper()
	d := models.Demand{UserID: owner, Title: title, Budget: 400}
	require.NoError(t, e.db.Create(&d).Error)
	return d.ID
}

func (e *testEnv) message(t *testing.T, from, to uint, content string, at time.Time) models.Message {
	t.Helper()
	m := models.Message{SenderID: from, RecipientID: to, Content: content, CreatedAt: at}
	require.NoError(t, e.db.Create(&m).Error)
	return m
}

func (e *testEnv) dealStatus(t *testing.T, id uint) models.DealStatus {
	t.Helper()
	var d models.Deal
	require.NoError(t, e.db.First(&d, id).Error)
	return d.Status
}
