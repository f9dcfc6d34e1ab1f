package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	_ "github.com/fkhayef/dongsplit/docs"
	"github.com/fkhayef/dongsplit/internal/auth"
	"github.com/fkhayef/dongsplit/internal/balance"
	"github.com/fkhayef/dongsplit/internal/category"
	"github.com/fkhayef/dongsplit/internal/config"
	"github.com/fkhayef/dongsplit/internal/database"
	"github.com/fkhayef/dongsplit/internal/expense"
	expensesplit "github.com/fkhayef/dongsplit/internal/expense/split"
	"github.com/fkhayef/dongsplit/internal/i18n"
	"github.com/fkhayef/dongsplit/internal/jointaccount"
	"github.com/fkhayef/dongsplit/internal/metrics"
	"github.com/fkhayef/dongsplit/internal/notification"
	"github.com/fkhayef/dongsplit/internal/notification/push"
	"github.com/fkhayef/dongsplit/internal/relation"
	"github.com/fkhayef/dongsplit/internal/score"
	"github.com/fkhayef/dongsplit/internal/task"
	"github.com/fkhayef/dongsplit/internal/user"
	"github.com/fkhayef/dongsplit/pkg/logging"
	mw "github.com/fkhayef/dongsplit/pkg/middleware"
)

// @title           Dongsplit API
// @version         1.0
// @description     Shared expense splitting with joint account replication.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, using environment variables")
	}

	// Load configuration
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize database connection
	db, err := database.NewPostgresConnection(cfg.DatabaseURL)
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := database.Migrate(ctx, db); err != nil {
		slog.Error("Failed to apply schema", "error", err)
		os.Exit(1)
	}
	slog.Info("Connected to database successfully")

	bundle, err := i18n.Load(cfg.DefaultLanguage)
	if err != nil {
		slog.Error("Failed to load localization bundle", "error", err)
		os.Exit(1)
	}

	var sender push.Sender = push.LogSender{}
	if cfg.PushEndpoint != "" {
		sender = push.NewHTTPSender(cfg.PushEndpoint, cfg.PushAPIKey)
	}

	// Background work runs on its own context so shutdown can drain it
	runner := task.NewRunner(cfg.TaskWorkers, cfg.TaskQueueSize, cfg.TaskMaxAttempts, cfg.TaskRetryBackoff)
	runner.Start(context.Background())

	// Contact book and users
	userRepo := user.NewRepository(db)
	relationRepo := relation.NewRepository(db)
	resolver := relation.NewResolver(relationRepo, userRepo)
	userService := user.NewService(userRepo, resolver)
	userHandler := user.NewHandler(userService)
	relationHandler := relation.NewHandler(resolver)

	// Categories
	categoryRepo := category.NewRepository(db)
	matcher := category.NewMatcher(categoryRepo, bundle)
	categoryHandler := category.NewHandler(matcher)

	// Notifications
	notificationRepo := notification.NewRepository(db)
	dispatcher := notification.NewDispatcher(notificationRepo, userRepo, bundle, sender)
	notificationHandler := notification.NewHandler(notification.NewInbox(notificationRepo))

	// Score
	accumulator := score.NewAccumulator(score.NewRepository(db), cfg.ScoreBaseAward, cfg.ScoreMutualBonus)
	scoreHandler := score.NewHandler(accumulator)

	// Joint accounts
	jointRepo := jointaccount.NewRepository(db)
	jointService := jointaccount.NewService(jointRepo)
	jointHandler := jointaccount.NewHandler(jointService)

	// Dongs (split strategies injected through the calculator)
	expenseRepo := expense.NewRepository(db)
	calculator := expensesplit.NewCalculator(expensesplit.NewFactory(), resolver, matcher, jointService)
	propagator := jointaccount.NewPropagator(jointRepo, matcher, resolver, userRepo, expenseRepo, dispatcher, cfg.PropagationConcurrency)
	expenseService := expense.NewService(expenseRepo, calculator, resolver, accumulator, runner, propagator, dispatcher)
	expenseHandler := expense.NewHandler(expenseService)
	balanceHandler := balance.NewHandler(balance.NewService(balance.NewRepository(db)))

	var authenticate func(http.Handler) http.Handler
	if cfg.DevAuth {
		slog.Warn("DEV_AUTH enabled: trusting X-Test-User-ID")
		authenticate = mw.TestUserMiddleware
	} else {
		authenticate = mw.AuthMiddleware(auth.NewTokenValidator(cfg.JWTSecret))
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Mount("/users", userHandler.PublicRoutes())

		r.Group(func(r chi.Router) {
			r.Use(authenticate)

			// Mount feature routers
			r.Mount("/me", userHandler.Routes())
			r.Mount("/relations", relationHandler.Routes())
			r.Mount("/categories", categoryHandler.Routes())
			r.Mount("/dongs", expenseHandler.Routes())
			r.Mount("/joint-accounts", jointHandler.Routes())
			r.Mount("/notifications", notificationHandler.Routes())
			r.Mount("/scores", scoreHandler.Routes())
			r.Mount("/balances", balanceHandler.Routes())
		})
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		slog.Info("Server starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Server failed to start", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP shutdown failed", "error", err)
	}
	if err := runner.Stop(shutdownCtx); err != nil {
		slog.Error("Background tasks did not drain", "error", err)
	}
}
