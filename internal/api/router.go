package api

import (
	"net/http"

	"github.com/example/lastara-storefront/internal/api/middleware"
	"github.com/example/lastara-storefront/internal/auth"
	"go.uber.org/zap"
)

// RouterConfig holds the dependencies of the HTTP surface
type RouterConfig struct {
	Handlers     *Handlers
	AuthHandlers *AuthHandlers
	JWTService   *auth.JWTService
	// Operators, when set, lets the gate reject tokens of disabled operators
	Operators middleware.OperatorLookup
	Logger    *zap.Logger
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	h, ah := cfg.Handlers, cfg.AuthHandlers

	gate := middleware.NewGate(cfg.JWTService, cfg.Operators, cfg.Logger)
	admin := func(fn http.HandlerFunc) http.Handler { return gate.Admin(fn) }
	signedIn := func(fn http.HandlerFunc) http.Handler { return gate.Operator(fn) }

	mux.HandleFunc("GET /healthz", h.Health)

	// Products
	mux.HandleFunc("GET /api/products", h.GetProducts)
	mux.HandleFunc("GET /api/products/{id}", h.GetProduct)
	mux.Handle("POST /api/products", admin(h.CreateProduct))
	mux.Handle("PUT /api/products/{id}", admin(h.UpdateProduct))
	mux.Handle("DELETE /api/products/{id}", admin(h.DeleteProduct))

	// Hero slides
	mux.HandleFunc("GET /api/hero", h.GetSlides)
	mux.Handle("POST /api/hero", admin(h.CreateSlide))
	mux.Handle("DELETE /api/hero/{id}", admin(h.DeleteSlide))

	// Newsletter
	mux.HandleFunc("POST /api/newsletter", h.Subscribe)
	mux.Handle("GET /api/newsletter", admin(h.GetSubscriptions))

	// Operator auth
	mux.HandleFunc("POST /api/auth/login", ah.Login)
	mux.Handle("POST /api/auth/logout", gate.Identify(http.HandlerFunc(ah.Logout)))
	mux.HandleFunc("POST /api/auth/refresh", ah.Refresh)
	mux.Handle("GET /api/auth/me", signedIn(ah.Me))
	mux.Handle("POST /api/auth/password", signedIn(ah.ChangePassword))

	return middleware.RequestLogger(cfg.Logger.Named("http"))(mux)
}
