package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/farmfresh-backend/api/controllers"
	"github.com/angelmondragon/farmfresh-backend/api/middleware"
	"github.com/angelmondragon/farmfresh-backend/internal/auth"
	"github.com/angelmondragon/farmfresh-backend/internal/cart"
	"github.com/angelmondragon/farmfresh-backend/internal/farmers"
	"github.com/angelmondragon/farmfresh-backend/internal/orders"
	products "github.com/angelmondragon/farmfresh-backend/internal/products"
	"github.com/angelmondragon/farmfresh-backend/internal/wishlist"
	"github.com/angelmondragon/farmfresh-backend/pkg/auth/session"
	"github.com/angelmondragon/farmfresh-backend/pkg/config"
	"github.com/angelmondragon/farmfresh-backend/pkg/enums"
	"github.com/angelmondragon/farmfresh-backend/pkg/kv"
	"github.com/angelmondragon/farmfresh-backend/pkg/logger"
	"github.com/angelmondragon/farmfresh-backend/pkg/metrics"
)

type sessionManager interface {
	session.AccessSessionChecker
	Rotate(context.Context, string, string) (string, string, error)
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	storefrontMetrics *metrics.Storefront,
	metricsHandler http.Handler,
	store kv.Store,
	rateCounter kv.Counter,
	sessionManager sessionManager,
	authService auth.Service,
	productService products.Service,
	farmerService farmers.Service,
	cartService cart.Service,
	deliveryFee decimal.Decimal,
	ordersService orders.Service,
	wishlistService wishlist.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(cfg.App.AllowedOrigins()),
		middleware.Logging(logg, storefrontMetrics),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	requireAuth := middleware.Auth(cfg.JWT, sessionManager, logg)
	optionalAuth := middleware.OptionalAuth(cfg.JWT, sessionManager, logg)
	cartProfile := middleware.CartProfile(logg)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, store, logg))
	})
	if metricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", metricsHandler)
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(cartProfile)
		r.With(middleware.AuthRateLimit(loginPolicy, rateCounter, logg)).Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, rateCounter, logg)).Post("/register", controllers.AuthRegister(authService, logg))
		r.Post("/logout", controllers.AuthLogout(authService, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessionManager, cfg.JWT, logg))
		r.Get("/current-user", controllers.AuthCurrentUser(authService, logg))
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/profile", controllers.AuthProfile(authService, logg))
			r.Put("/profile", controllers.AuthUpdateProfile(authService, logg))
		})
	})

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Get("/", controllers.ProductsList(productService, logg))
		r.Get("/categories", controllers.ProductCategories(productService, logg))
		r.Get("/featured", controllers.ProductsFeatured(productService, logg))
		r.Get("/seasonal", controllers.ProductsSeasonal(productService, logg))
		r.Get("/{id}", controllers.ProductGet(productService, logg))
	})

	r.Route("/api/v1/farmers", func(r chi.Router) {
		r.Get("/", controllers.FarmersList(farmerService, logg))
		r.Get("/{id}", controllers.FarmerGet(farmerService, logg))
		r.Get("/{id}/products", controllers.FarmerProducts(farmerService, logg))
	})

	r.Route("/api/v1/cart", func(r chi.Router) {
		r.Use(optionalAuth, cartProfile)
		r.Get("/", controllers.CartGet(cartService, deliveryFee, logg))
		r.Delete("/", controllers.CartClear(cartService, deliveryFee, logg))
		r.Post("/items", controllers.CartAddItem(cartService, deliveryFee, logg))
		r.Put("/items/{productId}", controllers.CartUpdateItem(cartService, deliveryFee, logg))
		r.Delete("/items/{productId}", controllers.CartRemoveItem(cartService, deliveryFee, logg))
	})

	r.Group(func(r chi.Router) {
		r.Use(requireAuth)

		r.With(cartProfile).Post("/api/v1/checkout", controllers.Checkout(ordersService, logg))

		r.Route("/api/v1/orders", func(r chi.Router) {
			r.Get("/", controllers.OrdersList(ordersService, logg))
			r.Get("/{id}", controllers.OrderGet(ordersService, logg))
			r.Get("/{id}/tracking", controllers.OrderTracking(ordersService, logg))
			r.Post("/{id}/cancel", controllers.OrderCancel(ordersService, logg))
			r.With(middleware.RequireRole(enums.UserRoleFarmer, logg)).Put("/{id}/status", controllers.OrderUpdateStatus(ordersService, logg))
		})

		r.Route("/api/v1/farmer/orders", func(r chi.Router) {
			r.Use(middleware.RequireRole(enums.UserRoleFarmer, logg))
			r.Get("/", controllers.FarmerOrdersList(ordersService, logg))
		})

		r.Route("/api/v1/wishlist", func(r chi.Router) {
			r.Get("/", controllers.WishlistGet(wishlistService, logg))
			r.Get("/{productId}", controllers.WishlistContains(wishlistService, logg))
			r.Post("/{productId}", controllers.WishlistAdd(wishlistService, logg))
			r.Delete("/{productId}", controllers.WishlistRemove(wishlistService, logg))
			r.Post("/{productId}/toggle", controllers.WishlistToggle(wishlistService, logg))
		})
	})

	return r
}
