package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmfresh-backend/internal/auth"
	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	"github.com/angelmondragon/farmfresh-backend/internal/farmers"
	"github.com/angelmondragon/farmfresh-backend/internal/orders"
	products "github.com/angelmondragon/farmfresh-backend/internal/products"
	"github.com/angelmondragon/farmfresh-backend/internal/users"
	"github.com/angelmondragon/farmfresh-backend/internal/wishlist"
	"github.com/angelmondragon/farmfresh-backend/pkg/auth/session"
	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/metrics"
)

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	cfg := &config.Config{
		App: config.AppConfig{Env: config.AppEnvDev, CORSOrigins: "http://localhost:3000"},
		JWT: config.JWTConfig{Secret: "test-secret", Issuer: "farmfresh-test", ExpirationMinutes: 15, RefreshTokenTTLMinutes: 60},
	}
	logg := logger.Nop()
	store := kv.NewMemory()
	reg := prometheus.NewRegistry()
	m := metrics.NewStorefront(reg)
	fee := decimal.NewFromInt(200)

	sessions, err := session.NewManager(store, cfg.JWT)
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(store),
		SessionManager: sessions,
		Store:          store,
		PasswordConfig: cfg.Password,
		JWTConfig:      cfg.JWT,
		Logger:         logg,
	})
	if err != nil {
		t.Fatalf("auth service: %v", err)
	}

	catalog, err := products.SeedRepository()
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	productSvc, err := products.NewService(catalog)
	if err != nil {
		t.Fatalf("product service: %v", err)
	}
	directory, err := farmers.SeedRepository()
	if err != nil {
		t.Fatalf("farmers: %v", err)
	}
	farmerSvc, err := farmers.NewService(directory, productSvc)
	if err != nil {
		t.Fatalf("farmer service: %v", err)
	}
	cartSvc, err := cart.NewService(cart.ServiceParams{Store: store, Products: productSvc, Logger: logg, Metrics: m, DeliveryFee: fee})
	if err != nil {
		t.Fatalf("cart service: %v", err)
	}
	orderSvc, err := orders.NewService(orders.ServiceParams{
		Repo:        orders.NewRepository(store),
		Carts:       cartSvc,
		Logger:      logg,
		Metrics:     m,
		DeliveryFee: fee,
	})
	if err != nil {
		t.Fatalf("order service: %v", err)
	}
	wishlistSvc, err := wishlist.NewService(wishlist.ServiceParams{
		WishlistRepo: wishlist.NewRepository(store),
		Products:     productSvc,
		Logger:       logg,
	})
	if err != nil {
		t.Fatalf("wishlist service: %v", err)
	}

	return NewRouter(cfg, logg, m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), store, store, sessions,
		authSvc, productSvc, farmerSvc, cartSvc, fee, orderSvc, wishlistSvc)
}

func do(t *testing.T, h http.Handler, method, path string, body any, headers map[string]string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 && rec.Header().Get("Content-Type") == "application/json" {
		if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
			t.Fatalf("decode %s %s: %v (%s)", method, path, err, rec.Body.String())
		}
	}
	return rec, env
}

func decodeData(t *testing.T, env envelope, dest any) {
	t.Helper()
	if err := json.Unmarshal(env.Data, dest); err != nil {
		t.Fatalf("decode data: %v", err)
	}
}

func register(t *testing.T, h http.Handler, email, role, cartSession string) string {
	t.Helper()
	headers := map[string]string{}
	if cartSession != "" {
		headers["X-Cart-Session"] = cartSession
	}
	rec, env := do(t, h, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name":      "Test " + role,
		"email":     email,
		"password":  "fresh-produce",
		"role":      role,
		"farm_name": "Green Valley Farm",
	}, headers)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: expected 201 got %d (%s)", email, rec.Code, rec.Body.String())
	}
	var resp struct {
		AccessToken string `json:"access_token"`
	}
	decodeData(t, env, &resp)
	if resp.AccessToken == "" {
		t.Fatal("expected access token")
	}
	return "Bearer " + resp.AccessToken
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := do(t, h, http.MethodGet, "/health/live", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("live: expected 200 got %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodGet, "/health/ready", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("ready: expected 200 got %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200 got %d", rec.Code)
	}
}

func TestCatalogRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec, env := do(t, h, http.MethodGet, "/api/v1/products?limit=2&sort=price-low", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("products: expected 200 got %d", rec.Code)
	}
	var list products.ListResult
	decodeData(t, env, &list)
	if len(list.Products) != 2 || list.Limit != 2 {
		t.Fatalf("unexpected page %+v", list)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/products?sort=cheapest", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad sort: expected 400 got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/products/does-not-exist", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing product: expected 404 got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/products/categories", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("categories: expected 200 got %d", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/farmers/f1/products", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("farmer products: expected 200 got %d", rec.Code)
	}
	var grown []products.Product
	decodeData(t, env, &grown)
	if len(grown) == 0 {
		t.Fatal("expected products for farmer f1")
	}
	for _, p := range grown {
		if p.Farmer.ID != "f1" {
			t.Fatalf("product %s belongs to %s", p.ID, p.Farmer.ID)
		}
	}
}

func TestGuestCartThroughCheckout(t *testing.T) {
	h := newTestRouter(t)
	guest := map[string]string{"X-Cart-Session": "guest-1"}

	rec, _ := do(t, h, http.MethodGet, "/api/v1/cart", nil, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("cart without profile: expected 400 got %d", rec.Code)
	}

	rec, env := do(t, h, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "1", "quantity": 2}, guest)
	if rec.Code != http.StatusCreated {
		t.Fatalf("add item: expected 201 got %d (%s)", rec.Code, rec.Body.String())
	}
	var body struct {
		TotalItems int `json:"total_items"`
		Summary    struct {
			Total decimal.Decimal `json:"total"`
		} `json:"summary"`
	}
	decodeData(t, env, &body)
	if body.TotalItems != 2 || !body.Summary.Total.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("unexpected cart %+v", body)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/checkout", map[string]any{}, guest)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("guest checkout: expected 401 got %d", rec.Code)
	}

	token := register(t, h, "ama@example.com", "consumer", "guest-1")
	authed := map[string]string{"Authorization": token, "X-Cart-Session": "guest-1"}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/checkout", map[string]any{
		"delivery_address": map[string]string{"city": "Kandy"},
	}, authed)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing street: expected 400 got %d", rec.Code)
	}

	rec, env = do(t, h, http.MethodPost, "/api/v1/checkout", map[string]any{
		"delivery_address": map[string]string{"street": "12 Temple Rd", "city": "Kandy", "postal_code": "20000"},
		"notes":            "leave at the gate",
	}, authed)
	if rec.Code != http.StatusCreated {
		t.Fatalf("checkout: expected 201 got %d (%s)", rec.Code, rec.Body.String())
	}
	var order orders.Order
	decodeData(t, env, &order)
	if order.ID == "" || order.Status != "pending" || !order.GrandTotal.Equal(decimal.NewFromInt(700)) {
		t.Fatalf("unexpected order %+v", order)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/cart", nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("cart after checkout: expected 200 got %d", rec.Code)
	}
	decodeData(t, env, &body)
	if body.TotalItems != 0 {
		t.Fatalf("expected empty cart after checkout, got %d items", body.TotalItems)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/checkout", map[string]any{
		"delivery_address": map[string]string{"street": "12 Temple Rd", "city": "Kandy"},
	}, authed)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty cart checkout: expected 400 got %d", rec.Code)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/orders", nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("orders: expected 200 got %d", rec.Code)
	}
	var list orders.OrderList
	decodeData(t, env, &list)
	if list.Total != 1 || list.Orders[0].ID != order.ID {
		t.Fatalf("unexpected order list %+v", list)
	}

	rec, _ = do(t, h, http.MethodGet, fmt.Sprintf("/api/v1/orders/%s/tracking", order.ID), nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("tracking: expected 200 got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/orders/%s/status", order.ID), map[string]string{"status": "confirmed"}, authed)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("consumer status update: expected 403 got %d", rec.Code)
	}

	farmer := map[string]string{"Authorization": register(t, h, "john@greenvalley.lk", "farmer", "")}
	rec, _ = do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/orders/%s/status", order.ID), map[string]string{"status": "confirmed"}, farmer)
	if rec.Code != http.StatusOK {
		t.Fatalf("farmer status update: expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	rec, env = do(t, h, http.MethodPut, fmt.Sprintf("/api/v1/orders/%s/status", order.ID), map[string]string{"status": "pending"}, farmer)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("backwards status: expected 422 got %d", rec.Code)
	}
	if env.Error == nil || env.Error.Code != "STATE_CONFLICT" {
		t.Fatalf("expected STATE_CONFLICT, got %+v", env.Error)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/farmer/orders", nil, farmer)
	if rec.Code != http.StatusOK {
		t.Fatalf("farmer orders: expected 200 got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, fmt.Sprintf("/api/v1/orders/%s/cancel", order.ID), nil, authed)
	if rec.Code != http.StatusOK {
		t.Fatalf("cancel: expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
}

func TestCartSessionCannotReachUserCart(t *testing.T) {
	h := newTestRouter(t)
	victim := map[string]string{"Authorization": register(t, h, "kamala@example.com", "consumer", "")}

	rec, env := do(t, h, http.MethodGet, "/api/v1/auth/profile", nil, victim)
	if rec.Code != http.StatusOK {
		t.Fatalf("profile: expected 200 got %d", rec.Code)
	}
	var me users.UserDTO
	decodeData(t, env, &me)

	rec, _ = do(t, h, http.MethodPost, "/api/v1/cart/items", map[string]any{"product_id": "1", "quantity": 3}, victim)
	if rec.Code != http.StatusCreated {
		t.Fatalf("victim add item: expected 201 got %d (%s)", rec.Code, rec.Body.String())
	}

	spoofed := map[string]string{"X-Cart-Session": me.ID}
	var body struct {
		TotalItems int `json:"total_items"`
	}
	rec, env = do(t, h, http.MethodGet, "/api/v1/cart", nil, spoofed)
	if rec.Code != http.StatusOK {
		t.Fatalf("spoofed cart: expected 200 got %d", rec.Code)
	}
	decodeData(t, env, &body)
	if body.TotalItems != 0 {
		t.Fatalf("session named after a user id read %d items from that user's cart", body.TotalItems)
	}

	rec, _ = do(t, h, http.MethodDelete, "/api/v1/cart", nil, spoofed)
	if rec.Code != http.StatusOK {
		t.Fatalf("spoofed clear: expected 200 got %d", rec.Code)
	}
	rec, _ = do(t, h, http.MethodGet, "/api/v1/auth/current-user", nil, spoofed)
	if strings.Contains(rec.Body.String(), "kamala@example.com") {
		t.Fatalf("session named after a user id revealed the current user: %s", rec.Body.String())
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/cart", nil, victim)
	if rec.Code != http.StatusOK {
		t.Fatalf("victim cart: expected 200 got %d", rec.Code)
	}
	decodeData(t, env, &body)
	if body.TotalItems != 3 {
		t.Fatalf("victim cart changed by spoofed session, got %d items", body.TotalItems)
	}
}

func TestWishlistRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/wishlist", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous wishlist: expected 401 got %d", rec.Code)
	}

	user := map[string]string{"Authorization": register(t, h, "kamal@example.com", "consumer", "")}

	rec, env := do(t, h, http.MethodPost, "/api/v1/wishlist/3/toggle", nil, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("toggle: expected 200 got %d", rec.Code)
	}
	var toggled wishlist.ToggleResult
	decodeData(t, env, &toggled)
	if !toggled.Wishlisted || toggled.ProductID != "3" {
		t.Fatalf("unexpected toggle %+v", toggled)
	}

	rec, env = do(t, h, http.MethodGet, "/api/v1/wishlist", nil, user)
	if rec.Code != http.StatusOK {
		t.Fatalf("wishlist: expected 200 got %d", rec.Code)
	}
	var page wishlist.WishlistPageDTO
	decodeData(t, env, &page)
	if page.Total != 1 {
		t.Fatalf("expected one saved product, got %+v", page)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/wishlist/nope", nil, user)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown product: expected 404 got %d", rec.Code)
	}
}

func TestAuthRoutes(t *testing.T) {
	h := newTestRouter(t)

	rec, _ := do(t, h, http.MethodGet, "/api/v1/auth/profile", nil, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("profile without token: expected 401 got %d", rec.Code)
	}

	token := register(t, h, "nimal@example.com", "consumer", "browser-9")

	rec, _ = do(t, h, http.MethodPost, "/api/v1/auth/register", map[string]any{
		"name": "Dup", "email": "NIMAL@example.com", "password": "fresh-produce", "role": "consumer",
	}, nil)
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate email: expected 409 got %d", rec.Code)
	}

	rec, env := do(t, h, http.MethodPut, "/api/v1/auth/profile", map[string]any{"phone": "+94 77 123 4567"}, map[string]string{"Authorization": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("update profile: expected 200 got %d (%s)", rec.Code, rec.Body.String())
	}
	var profile users.UserDTO
	decodeData(t, env, &profile)
	if profile.Phone != "+94 77 123 4567" {
		t.Fatalf("phone not updated: %+v", profile)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/auth/current-user", nil, map[string]string{"X-Cart-Session": "browser-9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("current user: expected 200 got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/auth/logout", nil, map[string]string{"Authorization": token, "X-Cart-Session": "browser-9"})
	if rec.Code != http.StatusOK {
		t.Fatalf("logout: expected 200 got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodGet, "/api/v1/auth/profile", nil, map[string]string{"Authorization": token})
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("profile after logout: expected 401 got %d", rec.Code)
	}

	rec, _ = do(t, h, http.MethodPost, "/api/v1/auth/login", map[string]any{"email": "nimal@example.com", "password": "wrong-password"}, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password: expected 401 got %d", rec.Code)
	}
}
