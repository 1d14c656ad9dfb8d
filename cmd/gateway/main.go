package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/pulse-check/pulsecheck-backend/internal/analytics"
	api "github.com/pulse-check/pulsecheck-backend/internal/api/http"
	auth "github.com/pulse-check/pulsecheck-backend/internal/auth/middleware"
	"github.com/pulse-check/pulsecheck-backend/internal/config"
	"github.com/pulse-check/pulsecheck-backend/internal/db"
	"github.com/pulse-check/pulsecheck-backend/internal/rbac"
	"github.com/pulse-check/pulsecheck-backend/internal/store"
	"github.com/pulse-check/pulsecheck-backend/internal/survey"
	syncx "github.com/pulse-check/pulsecheck-backend/internal/sync"
)

func main() {
	_ = godotenv.Load()
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	st := store.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)
	sessions := survey.NewRegistry()

	// --- Summary cache (optional) ---
	var cache analytics.SummaryCache
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("redis unavailable, dashboard cache disabled: %v", err)
		} else {
			cache = analytics.NewSummaryCache(rdb)
		}
	}

	// --- Auth ---
	secret := getenvOr("AUTH_HMAC_SECRET", "supersecret-dev-key")
	authSvc := auth.NewAuthService(secret)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	origins := cfg.CORSOriginsOffline
	if cfg.Mode == config.ModeOnline {
		origins = cfg.CORSOriginsOnline
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	if cfg.EnableLocalAuth {
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh, cfg.AdminUser, cfg.AdminPassHash))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		// Manager: author questionnaires
		pr.With(rbac.Require("questionnaire:create")).
			Post("/questionnaires", api.UploadQuestionnaireHandler(st))

		pr.With(rbac.Require("questionnaire:view")).
			Get("/questionnaires", api.ListQuestionnairesHandler(st))
		pr.With(rbac.Require("questionnaire:view")).
			Get("/questionnaires/{questionnaireID}", api.GetQuestionnaireHandler(st))

		// Subject flow: one live questionnaire session at a time
		pr.With(rbac.Require("session:start")).
			Post("/sessions", api.StartSessionHandler(sessions, st))
		pr.With(rbac.Require("session:answer")).
			Post("/sessions/{sessionID}/answers", api.AnswerHandler(sessions))
		pr.With(rbac.Require("session:navigate")).
			Post("/sessions/{sessionID}/advance", api.AdvanceHandler(sessions, st, events))
		pr.With(rbac.Require("session:navigate")).
			Post("/sessions/{sessionID}/retreat", api.RetreatHandler(sessions))
		pr.With(rbac.Require("session:submit")).
			Post("/sessions/{sessionID}/submit", api.SubmitSessionHandler(sessions, st, events))
		pr.With(rbac.Require("session:navigate")).
			Get("/sessions/{sessionID}", api.GetSessionHandler(sessions))

		// Pulse indicators
		pr.With(rbac.Require("indicator:record")).
			Post("/indicators", api.RecordIndicatorHandler(st, events))
		pr.With(rbac.Require("indicator:view")).
			Get("/indicators", api.ListIndicatorsHandler(st))

		// History and dashboard
		pr.With(rbac.RequireAny("assessment:view-own", "assessment:view-all")).
			Get("/assessments", api.ListAssessmentsHandler(st))
		pr.With(rbac.Require("dashboard:view")).
			Get("/dashboard/summary", api.DashboardSummaryHandler(st, cache))

		// Users (manager/admin)
		pr.With(rbac.Require("users:bulk_upsert")).
			Post("/users/bulk", api.BulkUpsertUsersHandler(dbh))
		pr.With(rbac.Require("users:list")).
			Get("/users", api.ListUsersHandler(dbh))
		pr.Post("/users/change-password", api.ChangePasswordHandler(dbh))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func getenvOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
