package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/foodgo/foodgo-backend/api/controllers"
	"github.com/foodgo/foodgo-backend/api/middleware"
	authsvc "github.com/foodgo/foodgo-backend/internal/auth"
	cartsvc "github.com/foodgo/foodgo-backend/internal/cart"
	catalogsvc "github.com/foodgo/foodgo-backend/internal/catalog"
	checkoutsvc "github.com/foodgo/foodgo-backend/internal/checkout"
	locationsvc "github.com/foodgo/foodgo-backend/internal/location"
	orderssvc "github.com/foodgo/foodgo-backend/internal/orders"
	"github.com/foodgo/foodgo-backend/pkg/auth/session"
	"github.com/foodgo/foodgo-backend/pkg/config"
	"github.com/foodgo/foodgo-backend/pkg/db"
	"github.com/foodgo/foodgo-backend/pkg/enums"
	"github.com/foodgo/foodgo-backend/pkg/logger"
	"github.com/foodgo/foodgo-backend/pkg/metrics"
	"github.com/foodgo/foodgo-backend/pkg/redis"
)

// Services groups everything the router dispatches to.
type Services struct {
	Auth     authsvc.Service
	Location locationsvc.Service
	Catalog  catalogsvc.Service
	Cart     cartsvc.Service
	Checkout checkoutsvc.Service
	Orders   orderssvc.Service
}

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbClient *db.Client,
	redisClient *redis.Client,
	sessions session.AccessSessionChecker,
	httpMetrics *metrics.HTTPMetrics,
	svcs Services,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)
	if httpMetrics != nil {
		r.Use(httpMetrics.Middleware)
	}

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
	otpPolicy := middleware.NewAuthRateLimitPolicy(
		"send-otp",
		cfg.AuthRateLimit.OTPWindow,
		cfg.AuthRateLimit.OTPIPLimit,
		cfg.AuthRateLimit.OTPEmailLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, map[string]controllers.Pinger{
			"database": dbClient,
			"redis":    redisClient,
		}))
	})
	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Route("/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register", controllers.AuthRegister(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(svcs.Auth, logg))
		r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).
			Post("/send-otp", controllers.AuthSendOTP(svcs.Auth, enums.OTPPurposeSignup, logg))
		r.Post("/verify-otp", controllers.AuthVerifyOTP(svcs.Auth, logg))
		r.Post("/refresh", controllers.AuthRefresh(svcs.Auth, logg))

		r.Route("/password/forgot", func(r chi.Router) {
			r.With(middleware.AuthRateLimit(otpPolicy, redisClient, logg)).
				Post("/send-otp", controllers.AuthSendOTP(svcs.Auth, enums.OTPPurposePasswordReset, logg))
			r.Post("/verify", controllers.AuthForgotVerify(svcs.Auth, logg))
			r.Post("/reset", controllers.AuthForgotReset(svcs.Auth, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessions, logg))
			r.Post("/logout", controllers.AuthLogout(svcs.Auth, logg))
		})
	})

	r.Route("/me/location", func(r chi.Router) {
		r.Post("/", controllers.LocationUpsert(svcs.Location, logg))
		r.Get("/get/", controllers.LocationGet(svcs.Location, logg))
	})

	r.Route("/addresses", func(r chi.Router) {
		r.Get("/", controllers.AddressList(svcs.Location, logg))
		r.Post("/", controllers.AddressCreate(svcs.Location, logg))
		r.Route("/{addressID}", func(r chi.Router) {
			r.Get("/", controllers.AddressGet(svcs.Location, logg))
			r.Put("/", controllers.AddressUpdate(svcs.Location, logg))
			r.Delete("/", controllers.AddressDelete(svcs.Location, logg))
		})
	})

	r.Get("/home/feed/", controllers.HomeFeed(svcs.Catalog, svcs.Location, logg))

	r.Route("/categories", func(r chi.Router) {
		r.Get("/", controllers.CategoryList(svcs.Catalog, logg))
		r.Post("/", controllers.CategoryCreate(svcs.Catalog, logg))
		r.Route("/{categoryID}", func(r chi.Router) {
			r.Get("/", controllers.CategoryGet(svcs.Catalog, logg))
			r.Put("/", controllers.CategoryUpdate(svcs.Catalog, logg))
			r.Delete("/", controllers.CategoryDelete(svcs.Catalog, logg))
		})
	})

	r.Route("/restaurants", func(r chi.Router) {
		r.Get("/", controllers.RestaurantList(svcs.Catalog, logg))
		r.Post("/", controllers.RestaurantCreate(svcs.Catalog, logg))
		r.Route("/{restaurantID}", func(r chi.Router) {
			r.Get("/", controllers.RestaurantGet(svcs.Catalog, logg))
			r.Put("/", controllers.RestaurantUpdate(svcs.Catalog, logg))
			r.Delete("/", controllers.RestaurantDelete(svcs.Catalog, logg))
		})
	})

	r.Route("/products", func(r chi.Router) {
		r.Get("/", controllers.ProductList(svcs.Catalog, logg))
		r.Post("/", controllers.ProductCreate(svcs.Catalog, logg))
		r.Route("/{productID}", func(r chi.Router) {
			r.Get("/", controllers.ProductGet(svcs.Catalog, logg))
			r.Put("/", controllers.ProductUpdate(svcs.Catalog, logg))
			r.Delete("/", controllers.ProductDelete(svcs.Catalog, logg))
		})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", controllers.CartGet(svcs.Cart, logg))
		r.Post("/add", controllers.CartAddItem(svcs.Cart, logg))
		r.Post("/clear", controllers.CartClear(svcs.Cart, logg))
		r.Route("/item/{itemID}", func(r chi.Router) {
			r.Patch("/", controllers.CartUpdateItem(svcs.Cart, logg))
			r.Delete("/", controllers.CartRemoveItem(svcs.Cart, logg))
		})
	})

	r.Post("/checkout", controllers.Checkout(svcs.Checkout, logg))
	r.Post("/payments/confirm", controllers.PaymentConfirm(svcs.Orders, logg))

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", controllers.OrderList(svcs.Orders, logg))
		r.Get("/{orderID}", controllers.OrderDetail(svcs.Orders, logg))
	})

	return r
}
