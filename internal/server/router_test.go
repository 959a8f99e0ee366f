package server

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
	"github.com/google/uuid"
	"gorm.io/gorm"

	catalogrepo "github.com/storefront/orderflow/internal/data/repos/catalog"
	orderrepo "github.com/storefront/orderflow/internal/data/repos/order"
	"github.com/storefront/orderflow/internal/data/repos/testutil"
	userrepo "github.com/storefront/orderflow/internal/data/repos/user"
	"github.com/storefront/orderflow/internal/domain/user"
	"github.com/storefront/orderflow/internal/http/handlers"
	"github.com/storefront/orderflow/internal/http/middleware"
	"github.com/storefront/orderflow/internal/services"
)

type routerFixture struct {
	router *gin.Engine
	db     *gorm.DB
	coffee uuid.UUID
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	ctx := context.Background()

	cat := testutil.SeedCategory(t, ctx, db, "drinks")
	coffee := testutil.SeedProduct(t, ctx, db, cat.ID, "coffee", 5.0)

	events := orderrepo.NewEventStore(db, log)
	repo := orderrepo.NewRepo(db, events, log)
	catalog := services.NewCatalogService(log, catalogrepo.NewProductRepo(db, log), nil)
	commands := services.NewOrderCommandService(db, log, repo, catalog)
	queries := services.NewOrderQueryService(db, log, repo, events, 10)
	auth := services.NewAuthService(db, log, userrepo.NewRepo(db, log), "test-secret", time.Hour)
	feed := services.NewStatusFeedService(log, events, 10*time.Millisecond, time.Second)

	router := NewRouter(RouterConfig{
		Log:            log,
		AuthHandler:    handlers.NewAuthHandler(auth),
		OrderHandler:   handlers.NewOrderHandler(commands, queries),
		ProductHandler: handlers.NewProductHandler(catalog),
		StatusHandler:  handlers.NewStatusWSHandler(log, feed),
		AuthMiddleware: middleware.NewAuthMiddleware(log, auth),
		AllowOrigins:   []string{"http://localhost:3000"},
	})

	return &routerFixture{router: router, db: db, coffee: coffee.ID}
}

func (rf *routerFixture) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	rf.router.ServeHTTP(rec, req)
	return rec
}

func (rf *routerFixture) registerAndLogin(t *testing.T, username string) string {
	t.Helper()
	rec := rf.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": username, "password": "hunter2",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	return rf.login(t, username, "hunter2")
}

// Staff accounts are provisioned directly, never through self-registration.
func (rf *routerFixture) seedStaffAndLogin(t *testing.T, username string) string {
	t.Helper()
	testutil.SeedUser(t, context.Background(), rf.db, username, user.RoleModerator)
	return rf.login(t, username, "secret")
}

func (rf *routerFixture) login(t *testing.T, username, password string) string {
	t.Helper()
	rec := rf.do(t, http.MethodPost, "/auth/token", "", gin.H{
		"username": username, "password": password,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("token %s: status %d, body %s", username, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	if resp.TokenType != "bearer" || resp.AccessToken == "" {
		t.Fatalf("unexpected token response: %+v", resp)
	}
	return resp.AccessToken
}

func (rf *routerFixture) createOrder(t *testing.T, token string) string {
	t.Helper()
	rec := rf.do(t, http.MethodPost, "/orders/new", token, gin.H{
		"address": "1 Main St",
		"items":   []gin.H{{"id": rf.coffee, "quantity": 2}},
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create order: status %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		OrderID string `json:"order_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return resp.OrderID
}

func TestHealthcheckIsPublic(t *testing.T) {
	rf := newRouterFixture(t)
	rec := rf.do(t, http.MethodGet, "/healthcheck", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	rf := newRouterFixture(t)
	rec := rf.do(t, http.MethodGet, "/orders/list", "", nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestRegisterIgnoresRequestedRole(t *testing.T) {
	rf := newRouterFixture(t)

	// A role field in the registration body must not grant elevated access.
	rec := rf.do(t, http.MethodPost, "/auth/register", "", gin.H{
		"username": "mallory", "password": "hunter2", "role": "admin",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register: status %d, body %s", rec.Code, rec.Body.String())
	}
	token := rf.login(t, "mallory", "hunter2")

	rec = rf.do(t, http.MethodGet, "/orders/all", token, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("self-registered admin reached staff listing: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestTokenAcceptedViaQueryParam(t *testing.T) {
	rf := newRouterFixture(t)
	token := rf.registerAndLogin(t, "alice")

	rec := rf.do(t, http.MethodGet, "/orders/list?token="+token, "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	rf := newRouterFixture(t)
	customer := rf.registerAndLogin(t, "alice")

	orderID := rf.createOrder(t, customer)

	// Customer name defaults to the principal's username.
	rec := rf.do(t, http.MethodGet, "/orders/"+orderID, customer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: status %d, body %s", rec.Code, rec.Body.String())
	}
	var view struct {
		CustomerName string  `json:"customer_name"`
		Status       string  `json:"status"`
		TotalPrice   float64 `json:"total_price"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode order view: %v", err)
	}
	if view.CustomerName != "alice" || view.Status != "CREATED" || view.TotalPrice != 10.0 {
		t.Fatalf("unexpected view: %+v", view)
	}

	rec = rf.do(t, http.MethodPost, fmt.Sprintf("/orders/%s/begin", orderID), customer, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("begin: status %d, body %s", rec.Code, rec.Body.String())
	}

	// Out-of-order transition maps to 400.
	rec = rf.do(t, http.MethodPost, fmt.Sprintf("/orders/%s/begin", orderID), customer, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("repeat begin: status %d, body %s", rec.Code, rec.Body.String())
	}

	for _, step := range []string{"ready", "delivery", "complete"} {
		rec = rf.do(t, http.MethodPost, fmt.Sprintf("/orders/%s/%s", orderID, step), customer, nil)
		if rec.Code != http.StatusNoContent {
			t.Fatalf("%s: status %d, body %s", step, rec.Code, rec.Body.String())
		}
	}

	// Completed orders refuse cancellation.
	rec = rf.do(t, http.MethodPost, fmt.Sprintf("/orders/%s/cancel", orderID), customer, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("cancel completed: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestCustomerCanCancelOwnOrder(t *testing.T) {
	rf := newRouterFixture(t)
	customer := rf.registerAndLogin(t, "alice")

	orderID := rf.createOrder(t, customer)
	rec := rf.do(t, http.MethodPost, fmt.Sprintf("/orders/%s/cancel", orderID), customer, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("cancel: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = rf.do(t, http.MethodGet, "/orders/"+orderID, customer, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get order: status %d, body %s", rec.Code, rec.Body.String())
	}
	var view struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("decode order view: %v", err)
	}
	if view.Status != "CANCELED" {
		t.Fatalf("status: got %s", view.Status)
	}
}

func TestCreateOrderValidation(t *testing.T) {
	rf := newRouterFixture(t)
	token := rf.registerAndLogin(t, "alice")

	rec := rf.do(t, http.MethodPost, "/orders/new", token, gin.H{
		"address": "1 Main St",
		"items":   []gin.H{},
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty items: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = rf.do(t, http.MethodPost, "/orders/new", token, gin.H{
		"address": "1 Main St",
		"items":   []gin.H{{"id": uuid.New(), "quantity": 1}},
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown product: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestGetUnknownOrder(t *testing.T) {
	rf := newRouterFixture(t)
	token := rf.registerAndLogin(t, "alice")

	rec := rf.do(t, http.MethodGet, "/orders/"+uuid.NewString(), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = rf.do(t, http.MethodGet, "/orders/not-a-uuid", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad uuid: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestListAllRequiresElevatedRole(t *testing.T) {
	rf := newRouterFixture(t)
	customer := rf.registerAndLogin(t, "alice")
	staff := rf.seedStaffAndLogin(t, "mod")
	rf.createOrder(t, customer)

	rec := rf.do(t, http.MethodGet, "/orders/all", customer, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("customer: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = rf.do(t, http.MethodGet, "/orders/all", staff, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("staff: status %d, body %s", rec.Code, rec.Body.String())
	}
	var page struct {
		Orders  []json.RawMessage `json:"orders"`
		HasMore bool              `json:"has_more"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
		t.Fatalf("decode page: %v", err)
	}
	if len(page.Orders) != 1 || page.HasMore {
		t.Fatalf("unexpected page: %d orders, has_more=%v", len(page.Orders), page.HasMore)
	}
}

func TestProductEndpoints(t *testing.T) {
	rf := newRouterFixture(t)
	token := rf.registerAndLogin(t, "alice")

	rec := rf.do(t, http.MethodGet, "/products?category=drinks", token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status %d, body %s", rec.Code, rec.Body.String())
	}

	rec = rf.do(t, http.MethodGet, "/products/"+rf.coffee.String(), token, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get: status %d, body %s", rec.Code, rec.Body.String())
	}
	var product struct {
		Name         string `json:"name"`
		CategoryName string `json:"category_name"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &product); err != nil {
		t.Fatalf("decode product: %v", err)
	}
	if product.Name != "coffee" || product.CategoryName != "drinks" {
		t.Fatalf("unexpected product: %+v", product)
	}

	rec = rf.do(t, http.MethodGet, "/products?category=", token, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing category: status %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestStatusSubscribeUnknownOrder(t *testing.T) {
	rf := newRouterFixture(t)
	token := rf.registerAndLogin(t, "alice")

	rec := rf.do(t, http.MethodGet, fmt.Sprintf("/orders/%s/ws", uuid.NewString()), token, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, body %s", rec.Code, rec.Body.String())
	}
}
