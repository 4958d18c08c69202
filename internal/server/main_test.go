package server

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"rizq/internal/config"
	"rizq/internal/database"
	"rizq/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	testSecret   = "test-secret-key-12345678901234567890123456789012"
	testIssuer   = "rizq-auth"
	testAudience = "rizq-api"
)

func testConfig() *config.Config {
	return &config.Config{
		Port:                     "0",
		JWTSecret:                testSecret,
		JWTIssuer:                testIssuer,
		JWTAudience:              testAudience,
		AllowedOrigins:           "http://localhost:5173",
		Env:                      "test",
		StoreTimeoutMS:           5000,
		StoreRetryMaxTries:       1,
		StoreRetryInitialMS:      1,
		ConversationFanoutLimit:  4,
		ConversationCacheTTLSecs: 60,
	}
}

// testServer is a fully wired Server over in-memory SQLite.
type testServer struct {
	*Server
	app *fiber.App
	db  *gorm.DB
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
	return db
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func newTestServer(t *testing.T, rdb *redis.Client) *testServer {
	t.Helper()
	db := newTestDB(t)
	srv, err := NewServerWithDeps(testConfig(), db, rdb)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return &testServer{Server: srv, app: srv.NewApp(), db: db}
}

func token(t *testing.T, userID uint) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub": strconv.FormatUint(uint64(userID), 10),
		"iss": testIssuer,
		"aud": testAudience,
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

// do sends a request as userID (0 means anonymous) and returns the status and body.
func (ts *testServer) do(t *testing.T, method, path string, userID uint, body any) (int, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if userID != 0 {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token(t, userID))
	}
	resp, err := ts.app.Test(req, -1)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

func (ts *testServer) profile(t *testing.T, username string) uint {
	t.Helper()
	p := models.Profile{Username: username, FullName: username + " Example"}
	require.NoError(t, ts.db.Create(&p).Error)
	return p.ID
}

func (ts *testServer) gig(t *testing.T, owner uint, title string) uint {
	t.Helper()
	g := models.Gig{UserID: owner, Title: title, Price: 200}
	require.NoError(t, ts.db.Create(&g).Error)
	return g.ID
}

func (ts *testServer) demand(t *testing.T, owner uint, title string) uint {
	t.Helper()
	d := models.Demand{UserID: owner, Title: title, Budget: 350}
	require.NoError(t, ts.db.Create(&d).Error)
	return d.ID
}
