package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	analyticsinadapter "watchless/internal/modules/analytics/adapter/in"
	analyticsout "watchless/internal/modules/analytics/port/out"
	analyticsservice "watchless/internal/modules/analytics/service"
	analyticsusecase "watchless/internal/modules/analytics/usecase"
	authinadapter "watchless/internal/modules/auth/adapter/in"
	authoutadapter "watchless/internal/modules/auth/adapter/out"
	authout "watchless/internal/modules/auth/port/out"
	authservice "watchless/internal/modules/auth/service"
	authusecase "watchless/internal/modules/auth/usecase"
	viewinginadapter "watchless/internal/modules/viewing/adapter/in"
	viewingoutadapter "watchless/internal/modules/viewing/adapter/out"
	viewingout "watchless/internal/modules/viewing/port/out"
	viewingservice "watchless/internal/modules/viewing/service"
	viewingusecase "watchless/internal/modules/viewing/usecase"
	"watchless/internal/platform/clock"
	"watchless/internal/platform/config"
	"watchless/internal/platform/database"
	"watchless/internal/platform/httpx"
	"watchless/internal/platform/id"
	"watchless/internal/platform/logging"
)

const (
	shutdownTimeout  = 10 * time.Second
	postgresMaxConns = 10
)

// Server is the WatchLess backend API.
type Server struct {
	cfg     config.Config
	handler http.Handler
	closers []func() error
	logger  *slog.Logger
}

type repositories struct {
	users    authout.UserStore
	sessions interface {
		viewingout.SessionRepository
		analyticsout.SessionLister
	}
}

// ServerOptions replaces external collaborators, mostly for tests.
type ServerOptions struct {
	Verifier authout.IdentityVerifier
	Clock    clock.Clock
}

func NewServer(ctx context.Context, cfg config.Config, opts ServerOptions) (*Server, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret (or JWT_SECRET) is required to serve the API")
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.SystemClock{}
	}
	s := &Server{cfg: cfg, logger: logging.For("bootstrap", "server")}

	repos, err := s.openRepositories(ctx)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	revocations, err := s.openRevocations(ctx, clk)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	issuer, err := authoutadapter.NewHS256Issuer(cfg.JWTSecret, cfg.TokenTTL, id.RandomHex{})
	if err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("init token issuer: %w", err)
	}
	verifier := opts.Verifier
	if verifier == nil {
		if cfg.GoogleClientID == "" {
			s.logger.WarnContext(ctx, "google client id not configured, every login will be rejected", "operation", "bootstrap")
		}
		verifier = authoutadapter.NewGoogleVerifier(authoutadapter.GoogleVerifierConfig{
			ClientID:   cfg.GoogleClientID,
			JWKSURL:    cfg.GoogleJWKSURL,
			HTTPClient: &http.Client{Timeout: 10 * time.Second},
			Clock:      clk,
		})
	}

	authHTTP := authinadapter.NewHTTPHandler(authusecase.NewInteractor(
		authservice.NewAuthService(clk, verifier, repos.users, issuer, revocations),
	))
	viewingHTTP := viewinginadapter.NewHTTPHandler(viewingusecase.NewInteractor(
		viewingservice.NewViewingService(clk, id.SessionID{Now: clk.Now}, repos.sessions),
	))
	analyticsHTTP := analyticsinadapter.NewHTTPHandler(analyticsusecase.NewInteractor(
		analyticsservice.NewAnalyticsService(repos.sessions),
	))

	r := chi.NewRouter()
	r.Use(httpx.RequestID)
	r.Use(httpx.Recover)
	r.Use(httpx.Logging)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	})
	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", authHTTP.Routes)
		r.Group(func(r chi.Router) {
			r.Use(authHTTP.RequireAuth)
			r.Route("/sessions", viewingHTTP.Routes)
			r.Route("/analytics", analyticsHTTP.Routes)
		})
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.WriteError(w, http.StatusNotFound, httpx.MsgNotFound)
	})
	s.handler = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) openRepositories(ctx context.Context) (repositories, error) {
	if s.cfg.DatabaseDriver == config.DatabasePostgres {
		db, err := database.ConnectPostgres(ctx, s.cfg.DatabaseDSN, postgresMaxConns)
		if err != nil {
			return repositories{}, err
		}
		if sqlDB, err := db.DB(); err == nil {
			s.closers = append(s.closers, sqlDB.Close)
		}
		users, err := authoutadapter.NewGormUserStore(ctx, db)
		if err != nil {
			return repositories{}, err
		}
		sessions, err := viewingoutadapter.NewGormSessionRepository(ctx, db)
		if err != nil {
			return repositories{}, err
		}
		return repositories{users: users, sessions: sessions}, nil
	}

	db, err := database.OpenSQLite(ctx, s.cfg.ServerDBPath())
	if err != nil {
		return repositories{}, err
	}
	s.closers = append(s.closers, db.Close)
	users, err := authoutadapter.NewSQLiteUserStore(ctx, db)
	if err != nil {
		return repositories{}, err
	}
	sessions, err := viewingoutadapter.NewSQLiteSessionRepository(ctx, db)
	if err != nil {
		return repositories{}, err
	}
	return repositories{users: users, sessions: sessions}, nil
}

func (s *Server) openRevocations(ctx context.Context, clk clock.Clock) (authout.RevocationStore, error) {
	if s.cfg.RedisAddr == "" {
		return authoutadapter.NewMemoryRevocationStore(clk), nil
	}
	client, err := authoutadapter.ConnectRedis(s.cfg.RedisAddr)
	if err != nil {
		return nil, err
	}
	s.closers = append(s.closers, client.Close)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return authoutadapter.NewRedisRevocationStore(client, clk), nil
}

// Run serves until ctx is cancelled, then drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.ServerAddr,
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "http server started", "operation", "serve", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http server: %w", err)
		}
		close(errCh)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown signal received", "operation", "serve")
	case runErr = <-errCh:
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("http shutdown failed", "operation", "serve", "error", err.Error())
	}
	return errors.Join(runErr, s.Close())
}

func (s *Server) Close() error {
	err := closeAll(s.closers)
	s.closers = nil
	return err
}
