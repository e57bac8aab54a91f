package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/db"
	apperrors "github.com/ikkim/bookshelf-backend/internal/errors"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
	"github.com/ikkim/bookshelf-backend/pkg/util"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var testTokens = util.TokenSettings{
	Secret:   "controller-test-secret",
	Issuer:   "bookshelf-test",
	Audience: "bookshelf-test-clients",
	Expiry:   15 * time.Minute,
}

// testEnv holds a migrated database and the services built on it.
type testEnv struct {
	DB       *gorm.DB
	Auth     service.AuthService
	Catalog  service.CatalogService
	Category service.CategoryService
	Cart     service.CartService
	Review   service.ReviewService
	Order    service.OrderService
	User     service.UserService
	AuthMW   *middleware.AuthMiddleware
	Revoked  *memoryRevocations
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	catalogRepo := repository.NewCatalogRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)

	revoked := &memoryRevocations{}

	return &testEnv{
		DB:       testDB,
		Auth:     service.NewAuthService(userRepo, testTokens, revoked),
		Catalog:  service.NewCatalogService(testDB, catalogRepo, categoryRepo, orderRepo, reviewRepo),
		Category: service.NewCategoryService(testDB, categoryRepo),
		Cart:     service.NewCartService(testDB, orderRepo, userRepo, catalogRepo, nil),
		Review:   service.NewReviewService(reviewRepo, catalogRepo, userRepo, nil),
		Order:    service.NewOrderService(testDB, orderRepo, userRepo, catalogRepo),
		User:     service.NewUserService(testDB, userRepo, orderRepo, reviewRepo),
		AuthMW:   middleware.NewAuthMiddleware(testTokens, revoked),
		Revoked:  revoked,
	}
}

// memoryRevocations implements both sides of token revocation.
type memoryRevocations struct {
	mu  sync.Mutex
	ids map[string]bool
}

func (m *memoryRevocations) Revoke(_ context.Context, tokenID string, _ time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ids == nil {
		m.ids = map[string]bool{}
	}
	m.ids[tokenID] = true
	return nil
}

func (m *memoryRevocations) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ids[tokenID], nil
}

func createUser(t *testing.T, testDB *gorm.DB, login string, roleID uint) *model.User {
	t.Helper()
	user := &model.User{
		Login:        login,
		Email:        login + "@example.com",
		PasswordHash: "hash",
		RoleID:       roleID,
	}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

func createItem(t *testing.T, testDB *gorm.DB, title, price string) *model.CatalogItem {
	t.Helper()
	item := &model.CatalogItem{Title: title, Author: "Author", Publisher: "Press", Price: price}
	require.NoError(t, testDB.Create(item).Error)
	return item
}

func tokenFor(t *testing.T, user *model.User) string {
	t.Helper()
	token, _, err := util.GenerateToken(user.ID, user.Login, user.RoleName(), testTokens)
	require.NoError(t, err)
	return token
}

// performRequest sends body as JSON when it is not nil.
func performRequest(router http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		payload, _ := json.Marshal(body)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body apperrors.ErrorResponse
	decodeBody(t, w, &body)
	return body.Error
}
