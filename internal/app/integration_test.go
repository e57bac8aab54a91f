package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ikkim/bookshelf-backend/config"
	"github.com/ikkim/bookshelf-backend/internal/app/controller"
	"github.com/ikkim/bookshelf-backend/internal/app/model"
	"github.com/ikkim/bookshelf-backend/internal/app/repository"
	"github.com/ikkim/bookshelf-backend/internal/app/service"
	"github.com/ikkim/bookshelf-backend/internal/db"
	"github.com/ikkim/bookshelf-backend/internal/health"
	"github.com/ikkim/bookshelf-backend/internal/metrics"
	"github.com/ikkim/bookshelf-backend/internal/middleware"
	"github.com/ikkim/bookshelf-backend/internal/router"
	ws "github.com/ikkim/bookshelf-backend/internal/websocket"
	"github.com/ikkim/bookshelf-backend/pkg/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type TestServer struct {
	Router *gin.Engine
	DB     *gorm.DB
	Users  service.UserService
}

func setupIntegrationTest(t *testing.T) *TestServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(testDB) })

	cfg := &config.Config{
		Server: config.ServerConfig{GinMode: gin.TestMode, Environment: "test"},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"https://shop.example.com"}},
	}
	tokens := util.TokenSettings{
		Secret:   "integration-secret",
		Issuer:   "bookshelf-test",
		Audience: "bookshelf-test-clients",
		Expiry:   time.Hour,
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := ws.NewHub()
	go hub.Run(ctx)

	appMetrics := metrics.NewWithRegistry(prometheus.NewRegistry())
	healthHandler := health.NewHandler(time.Second)
	healthHandler.Register("database", db.Pinger{DB: testDB})

	userRepo := repository.NewUserRepository(testDB)
	categoryRepo := repository.NewCategoryRepository(testDB)
	catalogRepo := repository.NewCatalogRepository(testDB)
	orderRepo := repository.NewOrderRepository(testDB)
	reviewRepo := repository.NewReviewRepository(testDB)

	authService := service.NewAuthService(userRepo, tokens, nil)
	catalogService := service.NewCatalogService(testDB, catalogRepo, categoryRepo, orderRepo, reviewRepo)
	categoryService := service.NewCategoryService(testDB, categoryRepo)
	cartService := service.NewCartService(testDB, orderRepo, userRepo, catalogRepo, appMetrics)
	reviewService := service.NewReviewService(reviewRepo, catalogRepo, userRepo, hub)
	orderService := service.NewOrderService(testDB, orderRepo, userRepo, catalogRepo)
	userService := service.NewUserService(testDB, userRepo, orderRepo, reviewRepo)

	controllers := router.Controllers{
		Auth:          controller.NewAuthController(authService),
		Catalog:       controller.NewCatalogController(catalogService),
		Cart:          controller.NewCartController(cartService),
		Review:        controller.NewReviewController(reviewService, catalogService, hub, ws.NewUpgrader(cfg.CORS.AllowedOrigins)),
		AdminCatalog:  controller.NewAdminCatalogController(catalogService, nil),
		AdminCategory: controller.NewAdminCategoryController(categoryService),
		Order:         controller.NewOrderController(orderService),
		AdminUser:     controller.NewAdminUserController(userService),
	}

	engine := router.NewRouter(
		controllers,
		middleware.NewAuthMiddleware(tokens, nil),
		appMetrics,
		healthHandler,
		cfg,
	).Setup()

	return &TestServer{Router: engine, DB: testDB, Users: userService}
}

func (ts *TestServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	ts.Router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), dst), w.Body.String())
}

func (ts *TestServer) login(t *testing.T, login, password string) string {
	t.Helper()
	w := ts.do(t, http.MethodPost, "/api/auth/login", "", map[string]string{
		"login":    login,
		"password": password,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var result service.AuthResult
	decode(t, w, &result)
	return result.Token
}

func TestCompleteUserJourney(t *testing.T) {
	ts := setupIntegrationTest(t)

	t.Log("Step 1: Seed an administrator")
	_, err := ts.Users.EnsureAdmin("root", "root@example.com", "admin-password")
	require.NoError(t, err)
	adminToken := ts.login(t, "root", "admin-password")

	t.Log("Step 2: Admin builds the catalog")
	w := ts.do(t, http.MethodPost, "/api/admin/categories", adminToken, map[string]string{"name": "Science Fiction"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var category model.Category
	decode(t, w, &category)

	w = ts.do(t, http.MethodPost, "/api/admin/catalogs", adminToken, map[string]interface{}{
		"title":        "Dune",
		"author":       "Frank Herbert",
		"publisher":    "Chilton",
		"price":        "12.50",
		"category_ids": []uint{category.ID},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var dune model.CatalogItem
	decode(t, w, &dune)

	w = ts.do(t, http.MethodPost, "/api/admin/catalogs", adminToken, map[string]interface{}{
		"title": "Solaris",
		"price": "9",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	t.Log("Step 3: Customer registers and browses")
	w = ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"login":    "reader",
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var registered service.AuthResult
	decode(t, w, &registered)
	token := registered.Token

	w = ts.do(t, http.MethodGet, "/api/customer/catalog?category=Science%20Fiction", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var items []model.CatalogItem
	decode(t, w, &items)
	require.Len(t, items, 1)
	assert.Equal(t, "Dune", items[0].Title)

	t.Log("Step 4: Customer fills the cart and checks out")
	for i := 0; i < 2; i++ {
		w = ts.do(t, http.MethodPost, "/api/customer/add-to-cart", token, map[string]uint{"catalogId": dune.ID})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	var cart service.CartView
	decode(t, w, &cart)
	require.Len(t, cart.Items, 1)
	assert.True(t, cart.TotalSum.Equal(decimal.RequireFromString("25")), cart.TotalSum.String())

	w = ts.do(t, http.MethodPost, "/api/customer/checkout", token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order model.Order
	decode(t, w, &order)
	assert.Equal(t, model.OrderStatusCompleted, order.Status)

	w = ts.do(t, http.MethodPost, "/api/customer/checkout", token, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	t.Log("Step 5: Customer reviews the book")
	w = ts.do(t, http.MethodPost, "/api/customer/add-review", token, map[string]interface{}{
		"productId": dune.ID,
		"text":      "A desert classic",
		"rating":    5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/customer/average-rating/%d", dune.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var summary model.RatingSummary
	decode(t, w, &summary)
	assert.Equal(t, 5.0, summary.AverageRating)

	t.Log("Step 6: Admin sees the order and cannot delete the ordered book")
	w = ts.do(t, http.MethodGet, fmt.Sprintf("/api/admin/orders/%d", order.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodDelete, fmt.Sprintf("/api/admin/catalogs/%d", dune.ID), adminToken, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	t.Log("Step 7: Cart operations are counted")
	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `operation="add"`)
	assert.Contains(t, w.Body.String(), `operation="checkout"`)
}

func TestAuthenticationFlow(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"login":    "reader",
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)

	token := ts.login(t, "reader", "password123")

	w = ts.do(t, http.MethodGet, "/api/auth/profile", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var profile model.User
	decode(t, w, &profile)
	assert.Equal(t, "reader", profile.Login)
	assert.Equal(t, model.RoleIDUser, profile.RoleID)

	w = ts.do(t, http.MethodGet, "/api/auth/user-by-login/reader", token, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = ts.do(t, http.MethodPost, "/api/auth/logout", token, nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUnauthorizedAccess(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.do(t, http.MethodPost, "/api/auth/register", "", map[string]string{
		"login":    "reader",
		"email":    "reader@example.com",
		"password": "password123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var registered service.AuthResult
	decode(t, w, &registered)

	tests := []struct {
		name       string
		method     string
		path       string
		token      string
		wantStatus int
	}{
		{"cart without token", http.MethodGet, "/api/customer/cart", "", http.StatusUnauthorized},
		{"admin without token", http.MethodGet, "/api/admin/catalogs", "", http.StatusUnauthorized},
		{"admin as customer", http.MethodGet, "/api/admin/catalogs", registered.Token, http.StatusForbidden},
		{"roles as customer", http.MethodGet, "/api/admin/roles", registered.Token, http.StatusForbidden},
		{"bad token", http.MethodGet, "/api/auth/profile", "not-a-token", http.StatusUnauthorized},
		{"public catalog", http.MethodGet, "/api/customer/catalog", "", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, tt.method, tt.path, tt.token, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestOperationalEndpoints(t *testing.T) {
	ts := setupIntegrationTest(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var status health.Response
	decode(t, w, &status)
	assert.Equal(t, health.StatusHealthy, status.Status)

	req := httptest.NewRequest(http.MethodOptions, "/api/customer/catalog", nil)
	req.Header.Set("Origin", "https://shop.example.com")
	rec := httptest.NewRecorder()
	ts.Router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))

	w = ts.do(t, http.MethodGet, "/api/customer/catalog", "", nil)
	assert.NotEmpty(t, w.Header().Get(middleware.RequestIDHeader))

	w = ts.do(t, http.MethodGet, "/metrics", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `bookshelf_http_requests_total{method="GET",route="/api/customer/catalog",status="200"}`)
}
