// Package server wires the application together: it owns the composition
// root (database → services → handlers), the chi route tree, and the
// lifecycle of the HTTP listener.
//
// Route access levels:
//   - public: signup, token exchange, every catalog/review/comment read
//   - authenticated: review and comment writes, /users/me
//   - admin: catalog writes, title writes, /users management
//
// Authorization itself lives in the service layer; the router only decides
// whether a request must carry a token at all.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sakif/reviewhub/internal/auth"
	"github.com/sakif/reviewhub/internal/config"
	"github.com/sakif/reviewhub/internal/handler"
	"github.com/sakif/reviewhub/internal/middleware"
	"github.com/sakif/reviewhub/internal/notify"
	sqliteRepo "github.com/sakif/reviewhub/internal/repository/sqlite"
	"github.com/sakif/reviewhub/internal/service"
)

// Server holds the router and the resources it must release on shutdown.
type Server struct {
	router *chi.Mux
	cfg    *config.Config
	logger *slog.Logger
	db     *sqliteRepo.DB
}

// New assembles the full dependency chain and route tree. The returned
// Server owns the database connection and closes it when Start returns.
func New(cfg *config.Config, logger *slog.Logger, sender notify.Sender) (*Server, error) {
	db, err := sqliteRepo.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("configuring tokens: %w", err)
	}

	s := &Server{
		router: chi.NewRouter(),
		cfg:    cfg,
		logger: logger,
		db:     db,
	}
	s.setupRoutes(tokens, sender)
	return s, nil
}

// Handler exposes the route tree, mainly so tests can drive it through
// httptest without opening a listener.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Close releases the database. Start does this itself; Close exists for
// callers that never reach Start.
func (s *Server) Close() error {
	return s.db.Close()
}

func (s *Server) setupRoutes(tokens *auth.TokenService, sender notify.Sender) {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	authSvc := service.NewAuthService(s.db, tokens, sender, s.logger)
	userSvc := service.NewUserService(s.db, s.logger)
	catalogSvc := service.NewCatalogService(s.db, s.db, s.db, s.logger)
	reviewSvc := service.NewReviewService(s.db, s.db, s.db, s.logger)

	authHandler := handler.NewAuthHandler(authSvc, s.logger)
	userHandler := handler.NewUserHandler(userSvc, authSvc, s.logger)
	catalogHandler := handler.NewCatalogHandler(catalogSvc, authSvc, s.logger)
	titleHandler := handler.NewTitleHandler(catalogSvc, authSvc, s.logger)
	reviewHandler := handler.NewReviewHandler(reviewSvc, authSvc, s.logger)

	requireAuth := auth.RequireAuth(tokens)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.HandleSignup)
		r.Post("/auth/token", authHandler.HandleToken)

		r.Route("/users", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/me", userHandler.HandleGetMe)
			r.Patch("/me", userHandler.HandleUpdateMe)
			r.Post("/", userHandler.HandleCreate)
			r.Get("/", userHandler.HandleList)
			r.Get("/{username}", userHandler.HandleGet)
			r.Patch("/{username}", userHandler.HandleUpdate)
			r.Delete("/{username}", userHandler.HandleDelete)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Get("/", catalogHandler.HandleListCategories)
			r.Get("/{slug}", catalogHandler.HandleGetCategory)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", catalogHandler.HandleCreateCategory)
				r.Delete("/{slug}", catalogHandler.HandleDeleteCategory)
			})
		})

		r.Route("/genres", func(r chi.Router) {
			r.Get("/", catalogHandler.HandleListGenres)
			r.Get("/{slug}", catalogHandler.HandleGetGenre)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", catalogHandler.HandleCreateGenre)
				r.Delete("/{slug}", catalogHandler.HandleDeleteGenre)
			})
		})

		r.Route("/titles", func(r chi.Router) {
			r.Get("/", titleHandler.HandleList)
			r.Get("/{titleID}", titleHandler.HandleGet)
			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Post("/", titleHandler.HandleCreate)
				r.Patch("/{titleID}", titleHandler.HandleUpdate)
				r.Delete("/{titleID}", titleHandler.HandleDelete)
			})

			r.Route("/{titleID}/reviews", func(r chi.Router) {
				r.Get("/", reviewHandler.HandleListReviews)
				r.Get("/{reviewID}", reviewHandler.HandleGetReview)
				r.Group(func(r chi.Router) {
					r.Use(requireAuth)
					r.Post("/", reviewHandler.HandleCreateReview)
					r.Patch("/{reviewID}", reviewHandler.HandleUpdateReview)
					r.Delete("/{reviewID}", reviewHandler.HandleDeleteReview)
				})

				r.Route("/{reviewID}/comments", func(r chi.Router) {
					r.Get("/", reviewHandler.HandleListComments)
					r.Get("/{commentID}", reviewHandler.HandleGetComment)
					r.Group(func(r chi.Router) {
						r.Use(requireAuth)
						r.Post("/", reviewHandler.HandleCreateComment)
						r.Patch("/{commentID}", reviewHandler.HandleUpdateComment)
						r.Delete("/{commentID}", reviewHandler.HandleDeleteComment)
					})
				})
			})
		})
	})
}

// Start runs the listener and blocks until SIGINT/SIGTERM or a listener
// failure. In-flight requests get cfg.Server.ShutdownTimeout to drain, then
// the database is closed so the WAL is flushed.
func (s *Server) Start() error {
	defer s.db.Close()

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.cfg.Server.Host, s.cfg.Server.Port),
		Handler:      s.router,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("database", s.cfg.Database.Path),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
