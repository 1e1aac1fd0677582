// cmd/api/main.go
// Main entry point for the Bookworm API.
// Bootstraps all components and starts the server.

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

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bookworm-app/bookworm-backend/internal/auth"
	"github.com/bookworm-app/bookworm-backend/internal/books"
	"github.com/bookworm-app/bookworm-backend/internal/common/database"
	"github.com/bookworm-app/bookworm-backend/internal/config"
	"github.com/bookworm-app/bookworm-backend/internal/recommend"
	"github.com/bookworm-app/bookworm-backend/internal/reviews"
	"github.com/bookworm-app/bookworm-backend/internal/storage"
)

var startTime = time.Now()

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	log.Println("========================================")
	log.Println("🚀 Starting Bookworm API")
	log.Println("========================================")

	// 1. Load environment variables
	log.Println("📁 Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  Warning: No .env file found (%v), using environment variables", err)
	} else {
		log.Println("✅ .env file loaded successfully")
	}

	// 2. Load and validate configuration
	log.Println("\n📋 Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("❌ Configuration validation failed:", err)
	}
	log.Println("✅ Configuration loaded and valid")

	// 3. Connect to PostgreSQL
	log.Println("\n🗄️  Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDBFromURL(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("❌ Failed to connect to PostgreSQL:", err)
	}
	defer db.Close()
	log.Println("✅ Connected to PostgreSQL successfully")

	// 4. Connect to Redis (optional)
	log.Println("\n📮 Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClientFromURL(cfg.RedisURL)
		if err != nil {
			log.Printf("⚠️  Redis unavailable (%v), continuing without embedding cache and token blacklist", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Println("✅ Connected to Redis successfully")
		}
	} else {
		log.Println("⚠️  Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	log.Println("\n🔨 Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("❌ Failed to run migrations: ", err)
	}
	log.Println("✅ Database migrations completed")

	// 6. Initialize auth system
	log.Println("\n🔐 Step 6: Initializing authentication system...")
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, redisClient, cfg)
	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(authService)
	log.Println("✅ Authentication system initialized")

	// 7. Initialize books module
	log.Println("\n📚 Step 7: Initializing books module...")
	bookRepo := books.NewPostgresRepository(db)
	bookService := books.NewService(bookRepo)
	bookHandler := books.NewHandler(bookService)
	log.Println("✅ Books module initialized")

	// 8. Initialize reviews module
	log.Println("\n⭐ Step 8: Initializing reviews module...")
	reviewRepo := reviews.NewPostgresRepository(db)
	reviewService := reviews.NewService(reviewRepo, bookRepo)
	reviewHandler := reviews.NewHandler(reviewService)
	log.Println("✅ Reviews module initialized")

	// 9. Initialize recommendation engine
	log.Println("\n🤖 Step 9: Initializing recommendation engine...")
	var provider recommend.EmbeddingProvider
	if cfg.OpenAIAPIKey != "" {
		provider = recommend.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.EmbeddingModel, cfg.EmbeddingTimeout)
		log.Printf("   ✅ Embedding provider configured (model: %s)", cfg.EmbeddingModel)
	} else {
		log.Println("   ⚠️  No OpenAI API key, AI recommendations will fall back to genre matching")
	}
	embeddingCache := recommend.NewEmbeddingCache(redisClient, cfg.EmbeddingCacheTTL)
	recommendService := recommend.NewService(bookRepo, reviewRepo, provider, embeddingCache, cfg.EmbeddingWorkers, cfg.EmbeddingStrategyTimeout)
	recommendHandler := recommend.NewHandler(recommendService)
	log.Println("✅ Recommendation engine initialized")

	// 10. Initialize upload storage
	log.Println("\n🖼️  Step 10: Initializing upload storage...")
	uploadService, err := storage.NewUploadService(cfg)
	if err != nil {
		log.Fatal("❌ Failed to initialize upload storage:", err)
	}
	storageHandler := storage.NewHandler(uploadService)
	if cfg.UseS3 {
		log.Println("   ✅ Using S3 for uploads")
	} else {
		log.Println("   ✅ Using local storage for uploads")
	}

	// 11. Set up routes
	log.Println("\n🛣️  Step 11: Setting up routes...")
	router := mux.NewRouter()

	if !cfg.UseS3 {
		router.PathPrefix("/uploads/").Handler(
			http.StripPrefix("/uploads/",
				http.FileServer(http.Dir(cfg.LocalUploadDir))))
	}

	router.HandleFunc("/health", healthCheck).Methods("GET")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	auth.RegisterRoutes(router, authHandler, authMiddleware)
	books.RegisterRoutes(router, bookHandler, authMiddleware.Authenticate)
	reviews.RegisterRoutes(router, reviewHandler, authMiddleware.Authenticate)
	recommend.RegisterRoutes(router, recommendHandler, authMiddleware.Authenticate)
	storage.RegisterRoutes(router, storageHandler, authMiddleware.Authenticate)

	// Per-request logging is development noise in production.
	if cfg.IsDevelopment() {
		router.Use(loggingMiddleware)
	}
	router.Use(corsMiddleware)
	log.Println("✅ Routes registered")

	// 12. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Println("\n========================================")
		log.Printf("🚀 Server starting on http://localhost%s", srv.Addr)
		log.Printf("🌍 Environment: %s", cfg.Environment)
		log.Println("========================================")

		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("❌ Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("\n⚠️  Shutdown signal received...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("❌ Server forced to shutdown:", err)
	}

	log.Println("✅ Server exited gracefully")
}

func healthCheck(w http.ResponseWriter, r *http.Request) {
	response := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(startTime).String(),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(response)
}

// loggingMiddleware logs all requests with status and duration.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("→ %s %s from %s", r.Method, r.RequestURI, r.RemoteAddr)

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("← %s %s [%d] %v", r.Method, r.RequestURI, wrapped.statusCode, time.Since(start))
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations creates the schema if it does not exist yet.
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			name VARCHAR(100) NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			avatar_url TEXT,
			bio TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			last_login_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS books (
			id BIGSERIAL PRIMARY KEY,
			title VARCHAR(500) NOT NULL,
			author VARCHAR(255) NOT NULL,
			isbn VARCHAR(20) UNIQUE NOT NULL,
			genres TEXT[] NOT NULL DEFAULT '{}',
			description TEXT,
			publication_date DATE,
			average_rating NUMERIC(2,1) NOT NULL DEFAULT 0,
			total_reviews INT NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE TABLE IF NOT EXISTS reviews (
			id BIGSERIAL PRIMARY KEY,
			book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			content TEXT NOT NULL,
			rating INT NOT NULL CHECK (rating BETWEEN 1 AND 5),
			helpful_votes INT NOT NULL DEFAULT 0,
			unhelpful_votes INT NOT NULL DEFAULT 0,
			is_deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			UNIQUE (book_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS review_votes (
			review_id BIGINT NOT NULL REFERENCES reviews(id) ON DELETE CASCADE,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			is_helpful BOOLEAN NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (review_id, user_id)
		)`,
		`CREATE TABLE IF NOT EXISTS user_favorites (
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			book_id BIGINT NOT NULL REFERENCES books(id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, book_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_books_genres ON books USING GIN (genres)`,
		`CREATE INDEX IF NOT EXISTS idx_books_rating ON books (average_rating DESC, total_reviews DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_book ON reviews (book_id) WHERE NOT is_deleted`,
		`CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews (user_id) WHERE NOT is_deleted`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
