// Package apitest runs the API against a temporary SQLite database for tests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/junaidrashid-git/storefront/auth"
	orderControllers "github.com/junaidrashid-git/storefront/controllers/order"
	"github.com/junaidrashid-git/storefront/kv"
	"github.com/junaidrashid-git/storefront/models"
	"github.com/junaidrashid-git/storefront/otp"
	"github.com/junaidrashid-git/storefront/routes"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	JWTSecret   = "test-secret"
	AdminAPIKey = "test-admin-key"
)

// Sender records the last code sent to each phone.
type Sender struct {
	mu    sync.Mutex
	codes map[string]string
}

func (s *Sender) Send(ctx context.Context, phone, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.codes == nil {
		s.codes = make(map[string]string)
	}
	s.codes[phone] = code
	return nil
}

func (s *Sender) Code(phone string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.codes[phone]
}

type Env struct {
	DB     *gorm.DB
	Router *gin.Engine
	Sender *Sender
	Hub    *orderControllers.Hub
}

// New migrates a fresh database and builds the full router.
func New(t *testing.T) *Env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "storefront.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Product{},
		&models.Cart{},
		&models.CartItem{},
		&models.WishlistItem{},
		&models.Address{},
		&models.Order{},
		&models.OrderItem{},
	))

	sender := &Sender{}
	hub := orderControllers.NewHub()
	r := gin.New()
	routes.SetupRoutes(r, routes.Deps{
		DB:          db,
		OTP:         otp.NewService(kv.NewMemoryStore(), sender),
		JWTSecret:   JWTSecret,
		AdminAPIKey: AdminAPIKey,
		Orders:      hub,
	})

	return &Env{DB: db, Router: r, Sender: sender, Hub: hub}
}

// Product inserts a product directly.
func (e *Env) Product(t *testing.T, name string, price int64, images ...string) models.Product {
	t.Helper()
	if images == nil {
		images = []string{}
	}
	p := models.Product{Name: name, Price: price, Images: images, InStock: true}
	require.NoError(t, e.DB.Create(&p).Error)
	return p
}

// User creates an account for phone and returns it with a signed token.
func (e *Env) User(t *testing.T, phone string) (models.User, string) {
	t.Helper()
	user := models.User{Phone: phone, Name: "Test"}
	require.NoError(t, e.DB.Create(&user).Error)
	token, err := auth.IssueJWT(JWTSecret, user.ID)
	require.NoError(t, err)
	return user, token
}

// Do performs a request against the router. body is JSON-encoded unless nil.
func (e *Env) Do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Admin performs a request with the admin API key.
func (e *Env) Admin(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-API-KEY", AdminAPIKey)
	w := httptest.NewRecorder()
	e.Router.ServeHTTP(w, req)
	return w
}

// Decode unmarshals a recorded JSON response.
func Decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

// Server serves the router over a real listener.
func (e *Env) Server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(e.Router)
	t.Cleanup(srv.Close)
	return srv
}
