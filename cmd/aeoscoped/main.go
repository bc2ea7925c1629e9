// Command aeoscoped is the hosted AEOScope service.
// It serves the tenant-scoped audit API and a health check.
package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"github.com/aeoscope/aeoscope/internal/api"
	"github.com/aeoscope/aeoscope/internal/audit"
	"github.com/aeoscope/aeoscope/internal/fetch"
	"github.com/aeoscope/aeoscope/internal/platform"
	"github.com/aeoscope/aeoscope/internal/tenant"
	"github.com/aeoscope/aeoscope/pkg/config"
	"github.com/aeoscope/aeoscope/pkg/scoring"
)

type serverConfig struct {
	Port        string
	DatabaseURL string

	StorageBackend string // local, s3, or gcs
	LocalPath      string
	GCSBucket      string
	S3Bucket       string
	S3Region       string
	S3Endpoint     string
	S3AccessKey    string
	S3SecretKey    string

	RenderingEnabled bool
}

func loadServerConfig() serverConfig {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	return serverConfig{
		Port:             envOrDefault("PORT", "8080"),
		DatabaseURL:      envOrDefault("DATABASE_URL", "postgres://localhost:5432/aeoscope?sslmode=disable"),
		StorageBackend:   envOrDefault("STORAGE_BACKEND", "local"),
		LocalPath:        envOrDefault("LOCAL_STORAGE_PATH", "/tmp/aeoscope-data"),
		GCSBucket:        os.Getenv("GCS_BUCKET"),
		S3Bucket:         os.Getenv("S3_BUCKET"),
		S3Region:         os.Getenv("S3_REGION"),
		S3Endpoint:       os.Getenv("S3_ENDPOINT"),
		S3AccessKey:      os.Getenv("S3_ACCESS_KEY"),
		S3SecretKey:      os.Getenv("S3_SECRET_KEY"),
		RenderingEnabled: os.Getenv("RENDERING_DISABLED") == "",
	}
}

func main() {
	cfg := loadServerConfig()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("ping database: %v", err)
	}

	if err := platform.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	storage, err := buildStorage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("storage: %v", err)
	}

	fetchCfg := config.DefaultConfig().Fetch
	fetchCfg.RenderingEnabled = cfg.RenderingEnabled
	fetcher := fetch.New(fetchCfg, log.New(os.Stderr, "fetch: ", log.LstdFlags))

	engine, err := scoring.NewDefaultEngine()
	if err != nil {
		log.Fatalf("engine: %v", err)
	}

	tenantSvc := tenant.NewService(db)
	auditSvc := audit.NewService(db, storage, fetcher, engine)

	mux := http.NewServeMux()
	api.NewHandler(tenantSvc, auditSvc).RegisterRoutes(mux)
	mux.HandleFunc("GET /healthz", healthHandler(db))

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: api.CORS(mux),
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("starting aeoscoped on :%s (storage=%s)", cfg.Port, cfg.StorageBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	if err := srv.Shutdown(context.Background()); err != nil {
		log.Printf("shutdown error: %v", err)
	}
}

func buildStorage(ctx context.Context, cfg serverConfig) (audit.StorageClient, error) {
	switch cfg.StorageBackend {
	case "s3":
		return audit.NewS3Storage(ctx, audit.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
		})
	case "gcs":
		return audit.NewGCSStorage(ctx, cfg.GCSBucket)
	default:
		return audit.NewLocalStorage(cfg.LocalPath), nil
	}
}

func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			http.Error(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
