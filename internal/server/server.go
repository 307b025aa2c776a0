// Package server is the composition root: it wires storage, sessions,
// services and handlers into one chi router and runs the HTTP server.
//
// DEPENDENCY FLOW:
//
//	config.Config → Open → sqlstore.DB, session.Store, OAuth providers
//	             → New  → services → handlers → routes
//
// Open builds the real dependencies from configuration; New takes them ready
// made, which is what the tests use.
package server

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/sakif/boardsvc/internal/auth"
	"github.com/sakif/boardsvc/internal/config"
	"github.com/sakif/boardsvc/internal/handler"
	"github.com/sakif/boardsvc/internal/metrics"
	"github.com/sakif/boardsvc/internal/middleware"
	"github.com/sakif/boardsvc/internal/repository/sqlstore"
	"github.com/sakif/boardsvc/internal/security"
	"github.com/sakif/boardsvc/internal/service"
	"github.com/sakif/boardsvc/internal/session"
	"github.com/sakif/boardsvc/web"
)

const shutdownTimeout = 30 * time.Second

// Deps are the long-lived resources the server owns and closes on shutdown.
type Deps struct {
	DB        *sqlstore.DB
	Sessions  session.Store
	Providers []service.OAuthProvider
	Passwords *auth.PasswordService
	// Metrics may be nil, in which case nothing is recorded and /metrics is 404.
	Metrics *metrics.Metrics
}

// Server holds the router and the resources behind it.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	deps   Deps
	logger *slog.Logger
}

// Open builds every dependency from cfg and returns a ready server.
// The database is migrated, and seeded when cfg.SeedData is set.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	db, err := sqlstore.New(sqlstore.Config{Driver: cfg.DatabaseDriver, DSN: cfg.DatabaseDSN}, logger)
	if err != nil {
		return nil, err
	}

	passwords := auth.NewPasswordService()
	if cfg.SeedData {
		seeded, err := db.Seed(ctx, passwords)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("server: seeding database: %w", err)
		}
		if seeded {
			logger.Info("seeded demo data", slog.String("user", sqlstore.SeedUserName))
		}
	}

	store, err := openSessionStore(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, err
	}

	s, err := New(cfg, Deps{
		DB:        db,
		Sessions:  store,
		Providers: Providers(cfg),
		Passwords: passwords,
		Metrics:   metrics.New(),
	}, logger)
	if err != nil {
		store.Close()
		db.Close()
		return nil, err
	}
	return s, nil
}

func openSessionStore(ctx context.Context, cfg *config.Config) (session.Store, error) {
	if cfg.SessionStore == "redis" {
		store, err := session.NewRedisStore(ctx, session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("server: opening redis session store: %w", err)
		}
		return store, nil
	}
	return session.NewMemoryStore(session.DefaultMaxSessions), nil
}

// Providers registers every provider that has a client id configured.
func Providers(cfg *config.Config) []service.OAuthProvider {
	var providers []service.OAuthProvider
	if cfg.GoogleClientID != "" {
		providers = append(providers, auth.NewGoogleProvider(auth.ProviderConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.CallbackURL("google"),
			Scopes:       cfg.GoogleScopes,
		}))
	}
	if cfg.KakaoClientID != "" {
		providers = append(providers, auth.NewKakaoProvider(auth.ProviderConfig{
			ClientID:     cfg.KakaoClientID,
			ClientSecret: cfg.KakaoClientSecret,
			RedirectURL:  cfg.CallbackURL("kakao"),
			Scopes:       cfg.KakaoScopes,
		}))
	}
	return providers
}

// New wires services, handlers and routes around deps.
func New(cfg *config.Config, deps Deps, logger *slog.Logger) (*Server, error) {
	if deps.Passwords == nil {
		deps.Passwords = auth.NewPasswordService()
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		deps:   deps,
		logger: logger,
	}
	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("server: setting up routes: %w", err)
	}
	return s, nil
}

// recorder hides a nil *metrics.Metrics behind the no-op recorder.
func (s *Server) recorder() metrics.Recorder {
	if s.deps.Metrics == nil {
		return metrics.Noop{}
	}
	return s.deps.Metrics
}

// setupRoutes configures middleware and routes.
//
// MIDDLEWARE ORDER:
//  1. RequestID, RealIP: request identity for the logs
//  2. Recoverer: a panic becomes a 500
//  3. Logger, Metrics: see every response, including policy redirects
//  4. sessions.Load: puts the session in the request context
//  5. policy: decides allow / redirect to /login / 401 / 403
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.cfg.SessionSecret)
	if err != nil {
		return err
	}
	views, err := handler.NewViews(s.logger)
	if err != nil {
		return err
	}

	rec := s.recorder()
	sessions := session.NewManager(s.deps.Sessions, tokens, session.Config{
		CookieName: s.cfg.SessionCookieName,
		TTL:        s.cfg.SessionTTL,
		Secure:     s.cfg.SecureCookies(),
	}, s.logger)
	policy := security.DefaultPolicy(s.logger)

	users := s.deps.DB.Users()
	boards := s.deps.DB.Boards()

	resolver := service.NewIdentityResolver(users, rec, s.logger)
	authSvc := service.NewAuthService(users, s.deps.Passwords, s.deps.Providers, rec, s.logger)
	authSvc.SetOAuthTimeout(s.cfg.OAuthTimeout)
	boardSvc := service.NewBoardService(boards, users, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, resolver, sessions, views, s.logger)
	boardHandler := handler.NewBoardHandler(boardSvc, resolver, sessions, views, s.logger)

	r := s.router
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.Metrics(rec))
	r.Use(sessions.Load)
	r.Use(policy.Middleware)

	static, err := fs.Sub(web.FS, "static")
	if err != nil {
		return fmt.Errorf("server: static assets: %w", err)
	}
	r.Handle("/css/*", http.FileServer(http.FS(static)))

	r.Get("/healthz", s.handleHealth)
	if s.deps.Metrics != nil {
		r.Handle("/metrics", s.deps.Metrics.Handler())
	}

	r.Get("/", handler.HandleRoot)
	r.Get(security.LoginURL, authHandler.HandleLoginPage)
	r.Post(security.LoginURL, authHandler.HandleFormLogin)
	r.Get(security.LoginSuccessURL, authHandler.HandleLoginSuccess)
	r.Get(security.LoginFailureURL, authHandler.HandleLoginFailure)
	r.Get(security.LogoutURL, authHandler.HandleLogout)
	r.Get("/oauth2/authorization/{provider}", authHandler.HandleAuthorize)
	r.Get("/login/oauth2/code/{provider}", authHandler.HandleCallback)

	r.Get("/kakao", handler.HandleKakao)
	r.Get("/board/list", boardHandler.HandleList)
	r.Get("/board", boardHandler.HandleForm)

	r.Route("/api", func(r chi.Router) {
		r.Get("/me", authHandler.HandleMe)
		r.Get("/boards", boardHandler.HandleAPIList)
		r.Get("/boards/{id}", boardHandler.HandleAPIGet)
	})

	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := s.deps.DB.Ping(ctx); err != nil {
		s.logger.ErrorContext(r.Context(), "health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	_, _ = w.Write([]byte("ok"))
}

// Handler exposes the router, e.g. for httptest.
func (s *Server) Handler() http.Handler { return s.router }

// Close releases the session store and the database.
func (s *Server) Close() error {
	var errs []error
	if s.deps.Sessions != nil {
		errs = append(errs, s.deps.Sessions.Close())
	}
	if s.deps.DB != nil {
		errs = append(errs, s.deps.DB.Close())
	}
	return errors.Join(errs...)
}

// Start serves until SIGINT/SIGTERM or ctx is done, then drains in-flight
// requests for up to 30 seconds and closes all resources.
func (s *Server) Start(ctx context.Context) error {
	defer s.Close()

	srv := &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("url", s.cfg.BaseURL),
			slog.String("database", s.deps.DB.Driver()),
			slog.String("sessions", s.cfg.SessionStore),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: listening: %w", err)
		}
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}
	return nil
}
