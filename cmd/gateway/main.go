package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"time"

	api "github.com/TestPilotSystem/TestPilot/internal/api/http"
	auth "github.com/TestPilotSystem/TestPilot/internal/auth/middleware"
	"github.com/TestPilotSystem/TestPilot/internal/config"
	"github.com/TestPilotSystem/TestPilot/internal/db"
	"github.com/TestPilotSystem/TestPilot/internal/exam"
	"github.com/TestPilotSystem/TestPilot/internal/rbac"
	"github.com/TestPilotSystem/TestPilot/internal/syncx"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
)

func main() {
	cfg := config.FromEnv()

	// --- DB ---
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := ensureAdmin(ctx, dbh, cfg.AdminUser, cfg.AdminPassHash); err != nil {
		log.Fatalf("admin seed failed: %v", err)
	}

	store := exam.NewSQLStore(dbh)
	events := syncx.NewEventRepo(dbh)
	svc := exam.NewService(store, events)
	authSvc := auth.NewAuthService(cfg.AuthSecret)

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
		r.Post("/auth/login", auth.LoginHandler(authSvc, dbh))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		pr.Use(auth.AttachRoleFromDB(dbh, cfg.Mode == config.ModeOffline))

		pr.With(rbac.Require("test:view")).
			Get("/tests", api.ListTestsHandler(store))
		pr.With(rbac.Require("test:view")).
			Get("/tests/{testID}", api.GetTestHandler(store))

		pr.With(rbac.Require("attempt:submit")).
			Post("/tests/{testID}/submit", api.SubmitAttemptHandler(svc))

		pr.With(rbac.Require("review:rebuild")).
			Post("/review-tests/rebuild", api.RebuildReviewHandler(svc))
		pr.With(rbac.Require("review:submit")).
			Post("/review-tests/{testID}/submit", api.SubmitReviewHandler(svc))

		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results", api.ListResultsHandler(store))
		pr.With(rbac.RequireAny("result:view-own", "result:view-all")).
			Get("/results/{attemptID}", api.GetResultHandler(store))

		pr.With(rbac.Require("stats:view-own")).
			Get("/stats", api.StatsHandler(store))
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })

	log.Printf("listening on %s (mode=%s, db=%s)", cfg.HTTPAddr, cfg.Mode, cfg.DBDriver)
	log.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}

func ensureAdmin(ctx context.Context, dbh *sql.DB, user, passHash string) error {
	_, err := dbh.ExecContext(ctx,
		`INSERT INTO users (id, username, password_hash, role)
		 VALUES ($1,$2,$3,'admin')
		 ON CONFLICT (username) DO NOTHING`,
		uuid.NewString(), user, passHash)
	return err
}
