// This is the main entry point of the LearnHub application.
// It's responsible for initializing configuration, the database pool,
// services, handlers (controllers), setting up the HTTP router and middleware,
// and starting the HTTP server. It also handles graceful shutdown.
//
// Analogy to Express: this file plays the role of `app.js` plus `bin/www` in
// the original Express codebase: wiring middleware, mounting routers, and
// listening, except dependencies are injected by hand instead of required
// ad hoc inside each router module.
// @title LearnHub API
// @version 1.0
// @description Learning-platform backend: users, courses, and enrollments.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/user/learnhub-go/apperror"
	"github.com/user/learnhub-go/auth"
	"github.com/user/learnhub-go/config"
	"github.com/user/learnhub-go/courses"
	"github.com/user/learnhub-go/db"
	_ "github.com/user/learnhub-go/docs" // Generated Swagger docs
	"github.com/user/learnhub-go/enrollment"
	"github.com/user/learnhub-go/users"
)

func main() {
	// .env is a development convenience; in production the variables are set
	// directly, so a missing file is only a warning.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading it: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	pool, err := db.NewPool(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to create database pool: %v", err)
	}
	defer pool.Close()

	if err := db.EnableExtensions(pool); err != nil {
		log.Fatalf("Failed to enable extensions: %v", err)
	}

	if err := db.RunMigrations(cfg.DB, "./migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Manual dependency injection: construct the shared collaborators once,
	// then thread them through repositories, services, and handlers.
	creds := auth.NewCredentialManager(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenAuthority(*cfg.Auth)
	validate := validator.New()

	userRepo := users.NewPostgresRepository(pool)
	courseRepo := courses.NewPostgresRepository(pool)
	enrollRepo := enrollment.NewPostgresRepository(pool)

	userService := users.NewUserService(userRepo, creds)
	courseService := courses.NewCourseService(courseRepo, userRepo)
	enrollService := enrollment.NewEnrollmentService(enrollRepo, courseRepo, userRepo)

	userHandlers := users.NewUserHandlers(userService, validate)
	courseHandlers := courses.NewCourseHandlers(courseService, validate)
	enrollHandlers := enrollment.NewEnrollmentHandlers(enrollService)

	r := chi.NewRouter()

	// Chi requires all middleware to be registered before any routes.
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Panic recovery that reports through the apperror envelope, so even a
	// crash renders the same JSON shape as a handled failure.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				if rvr := recover(); rvr != nil {
					log.Printf("Panic: %+v", rvr)
					writeError(ww, apperror.NewInternalError("internal server error", nil))
				}
			}()
			next.ServeHTTP(ww, r)
		})
	})

	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// The token middleware is shared; each feature package decides which of
	// its routes sit behind it. Enrollment co-registers on both subtrees
	// because its routes live under the course and user prefixes.
	authMW := auth.Middleware(tokens)
	r.Route("/users", func(r chi.Router) {
		userHandlers.RegisterRoutes(r, authMW)
		enrollHandlers.RegisterUserRoutes(r, authMW)
	})
	r.Route("/courses", func(r chi.Router) {
		courseHandlers.RegisterRoutes(r, authMW)
		enrollHandlers.RegisterCourseRoutes(r, authMW)
	})

	addr := fmt.Sprintf(":%s", cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}
	log.Println("Server stopped gracefully")
}

// writeError is a local helper for the panic recovery middleware, kept here
// so the middleware does not depend on any feature package.
func writeError(w http.ResponseWriter, appErr *apperror.AppError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(appErr.StatusCode())
	if err := json.NewEncoder(w).Encode(appErr.ToResponse()); err != nil {
		http.Error(w, `{"error":"Failed to encode error response"}`, http.StatusInternalServerError)
	}
}
