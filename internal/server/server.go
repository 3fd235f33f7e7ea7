// Package server assembles the router and runs the HTTP server.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/gethuk-security/api-security-lab/internal/auth"
	"github.com/gethuk-security/api-security-lab/internal/config"
	"github.com/gethuk-security/api-security-lab/internal/handler"
	"github.com/gethuk-security/api-security-lab/internal/middleware"
	"github.com/gethuk-security/api-security-lab/internal/ratelimit"
	"github.com/gethuk-security/api-security-lab/internal/store"
)

// Server bundles the router with its dependencies.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger
	router chi.Router
}

// New wires every handler onto the router. The route table is the lab's
// syllabus: which authenticator, which gate, and which limiter slot each
// route mounts is exactly what students are meant to probe.
func New(cfg *config.Config, st *store.Store, logger *slog.Logger) *Server {
	passwords := auth.NewPasswordService()
	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.WeakJWTSecret, cfg.JWTExpiresIn)
	limits := ratelimit.New(ratelimit.Config{APIWindow: cfg.RateLimitWindow, APIMax: cfg.RateLimitMax})
	// Verbose stays on even in production unless ERROR_MODE says otherwise;
	// the leaky formatter is part of the syllabus.
	errs := handler.NewErrorSurface(cfg.ErrorMode, cfg.NodeEnv, logger)

	authH := handler.NewAuthHandler(st, passwords, tokens, errs, logger)
	usersH := handler.NewUsersHandler(st, errs, logger, &http.Client{Timeout: 10 * time.Second})
	ordersH := handler.NewOrdersHandler(st, errs, logger)
	productsH := handler.NewProductsHandler(st, errs, logger)
	adminH := handler.NewAdminHandler(st, errs, logger)
	ticketsH := handler.NewTicketsHandler(st, errs, logger)
	couponsH := handler.NewCouponsHandler(st, errs, logger)
	debugH := handler.NewDebugHandler(cfg)
	legacyH := handler.NewLegacyHandler(logger)
	metaH := handler.NewMetaHandler()

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.Logger(logger))
	r.Use(chimw.Recoverer)

	// Wide open on purpose: any origin, credentials allowed.
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	}))

	r.NotFound(handler.NotFoundHandler())

	r.Get("/", metaH.HandleRoot)
	r.Get("/health", metaH.HandleHealth)
	r.Get("/api/docs", metaH.HandleDocs)

	// Deprecated version, never removed.
	r.Get("/api/v0/admin/users", legacyH.HandleV0AdminUsers)

	r.Route("/api/v1", func(r chi.Router) {
		// The global throttle exists but mounts only in production; the lab
		// default leaves it off.
		if cfg.Production() {
			r.Use(limits.Get("api").Middleware())
		}

		r.Route("/auth", func(r chi.Router) {
			r.With(limits.Get("none").Middleware()).Post("/login", authH.HandleLogin)
			r.With(limits.Get("none").Middleware()).Post("/reset-password", authH.HandleResetPassword)
			r.Post("/register", authH.HandleRegister)
			r.Post("/verify-reset", authH.HandleVerifyReset)
			r.Post("/refresh", authH.HandleRefresh)
		})

		// Every protected route below mounts the permissive authenticator.
		// The strict one exists in internal/auth as the contrast exhibit but
		// nothing here uses it.
		r.Route("/users", func(r chi.Router) {
			r.Use(auth.PermissiveAuth(tokens))
			r.Get("/", usersH.HandleList)
			r.Get("/me", usersH.HandleMe)
			r.Put("/profile", usersH.HandleUpdateProfile)
			r.Post("/avatar", usersH.HandleAvatar)
			r.Post("/export-all", usersH.HandleExportAll)
			r.Get("/{userId}/profile", usersH.HandleProfile)
			r.Delete("/{userId}", usersH.HandleDelete)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Use(auth.PermissiveAuth(tokens))
			r.Get("/", ordersH.HandleListOwn)
			r.Get("/{orderId}", ordersH.HandleGet)
		})

		r.Route("/products", func(r chi.Router) {
			r.Use(auth.OptionalAuth(tokens))
			r.Get("/", productsH.HandleList)
			r.Get("/{id}", productsH.HandleGet)
		})

		r.Route("/admin", func(r chi.Router) {
			// Permissive authenticator plus the no-op gate: the admin check
			// never actually happens.
			r.Use(auth.PermissiveAuth(tokens))
			r.Use(auth.AdminGate)
			r.Get("/users", adminH.HandleListUsers)
			r.Delete("/users/{id}", adminH.HandleDeleteUser)
			r.Get("/stats", adminH.HandleStats)
		})

		r.Route("/tickets", func(r chi.Router) {
			r.Get("/events", ticketsH.HandleEvents)
			r.With(auth.PermissiveAuth(tokens), limits.Get("none").Middleware()).
				Post("/purchase", ticketsH.HandlePurchase)
		})

		r.Route("/coupons", func(r chi.Router) {
			r.Get("/", couponsH.HandleList)
			r.With(auth.PermissiveAuth(tokens)).Post("/apply", couponsH.HandleApply)
		})

		r.Post("/integrations/sync", legacyH.HandleIntegrationsSync)
	})

	// No auth, no version prefix discipline. Left enabled.
	r.Route("/api/debug", func(r chi.Router) {
		r.Get("/config", debugH.HandleConfig)
		r.Get("/health", debugH.HandleHealth)
	})

	return &Server{cfg: cfg, store: st, logger: logger, router: r}
}

// Router exposes the assembled router, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled or SIGINT/SIGTERM arrives, then drains
// in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening",
			slog.Int("port", s.cfg.Port),
			slog.String("env", s.cfg.NodeEnv))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(stop)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	case sig := <-stop:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
