package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"eartraining/internal/audio"
	"eartraining/internal/config"
	"eartraining/internal/database"
	"eartraining/internal/handlers"
	"eartraining/internal/repository"
	"eartraining/internal/security"
	"eartraining/internal/service"
	"eartraining/internal/store"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, closeBackend, err := openStateBackend(cfg)
	if err != nil {
		log.Fatalf("Failed to open state store: %v", err)
	}
	defer closeBackend()

	templates, err := handlers.LoadTemplates(cfg.TemplatesPath)
	if err != nil {
		log.Fatalf("Failed to load templates: %v", err)
	}
	log.Println("Templates loaded successfully")

	// Render any missing note samples
	library := audio.NewLibrary(filepath.Join(cfg.StaticFilesPath, "audio"), "/static/audio")
	if rendered, err := library.Prepare(); err != nil {
		log.Printf("Warning: Failed to render note samples: %v", err)
	} else if rendered > 0 {
		log.Printf("Rendered %d note samples", rendered)
	}
	if removed, err := library.Cleanup(); err != nil {
		log.Printf("Warning: Failed to clean up note samples: %v", err)
	} else if removed > 0 {
		log.Printf("Removed %d orphaned note samples", removed)
	}

	keys, err := security.DeriveKeys(cfg.SessionSecret)
	if err != nil {
		log.Fatalf("Failed to derive keys: %v", err)
	}

	earTrainingService := service.NewEarTrainingService(backend, library, cfg.ReferenceNoteDelay)
	earTrainingService.SetRetention(cfg.StateRetention)

	middleware := handlers.NewMiddleware(
		security.NewLearnerTokens(keys.LearnerToken, cfg.LearnerTokenTTL),
		security.NewCSRFGenerator(keys.CSRF),
		security.NewRateLimiter(ctx, cfg.RateLimitRequests, cfg.RateLimitWindow),
	)
	earTrainingHandler := handlers.NewEarTrainingHandler(earTrainingService, middleware, templates)

	mux := http.NewServeMux()
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.StaticFilesPath))))
	earTrainingHandler.Routes(mux)

	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handlers.Logging(mux),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go cleanupStaleStates(ctx, earTrainingService)

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Server shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}
}

// openStateBackend returns the learner state backend selected by
// STATE_STORE and a function releasing it.
func openStateBackend(cfg *config.Config) (store.Backend, func(), error) {
	switch strings.ToLower(cfg.StateStore) {
	case "redis":
		backend, err := store.NewRedisBackend(store.RedisConfig{
			Address:  cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.StateRetention,
		})
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Learner state stored in redis at %s", cfg.RedisAddr)
		return backend, func() { backend.Close() }, nil

	case "memory":
		log.Println("Warning: Learner state kept in memory and lost on restart")
		return store.NewMemoryBackend(), func() {}, nil

	case "sql", "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

		if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, err
		}
		log.Println("Migrations completed successfully")
		return repository.NewStateRepository(db), func() { db.Close() }, nil

	default:
		return nil, nil, errors.New("unsupported STATE_STORE " + cfg.StateStore)
	}
}

// cleanupStaleStates periodically removes learner state nobody has touched
// within the retention period
func cleanupStaleStates(ctx context.Context, svc *service.EarTrainingService) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := svc.CleanupStaleStates()
			if err != nil {
				log.Printf("Error cleaning up stale learner state: %v", err)
			} else if deleted > 0 {
				log.Printf("Removed %d stale learner states", deleted)
			}
		}
	}
}
