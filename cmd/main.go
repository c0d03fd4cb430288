package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"carloan-service/internal/clients"
	"carloan-service/internal/config"
	"carloan-service/internal/repository"
	"carloan-service/internal/service"
	"carloan-service/internal/transport/auth"
	"carloan-service/internal/transport/rest"
	"carloan-service/internal/transport/websocket"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system env or defaults")
	}

	// top-level context which we can cancel on shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	cfg := config.Load()

	redisClient := mustInitRedis(cfg.Redis)
	defer redisClient.Close()

	localStorage, storage := mustInitStorage(cfg)

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	wsClient := clients.NewWebSocketClient(wsHub)

	seed := repository.Seed(time.Now())
	userRepo := repository.NewUserRepository(seed.Users)
	carRepo := repository.NewCarRepository(seed.Cars)
	loanRepo := repository.NewLoanRepository(seed.Loans)

	loanSvc := service.NewLoanService(loanRepo)
	carSvc := service.NewCarService(carRepo, loanRepo)
	userSvc := service.NewUserService(userRepo)
	reportSvc := service.NewReportService(carSvc, redisClient, storage, wsClient)

	sessions := auth.NewRedisSessionStore(redisClient, time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	handler := rest.NewHandler(loanSvc, carSvc, userSvc, reportSvc, sessions, wsClient)
	router := handler.InitRouter()

	// public root router: login, health and file downloads stay outside the
	// session middleware, everything else mounts underneath it
	root := chi.NewRouter()

	root.Post("/login", handler.Login)

	root.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if localStorage != nil {
		root.Get("/files/{file}", serveReportFile(localStorage))
	}

	// protected websocket endpoint: the session middleware on the mounted
	// router has already resolved the user by the time this runs
	router.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		userID, err := auth.GetUserID(r.Context())
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		log.Printf("[WS] connected: user_id=%d", userID)
		wsHub.HandleWebSocket(w, r, userID)
	})

	root.Mount("/", router)

	corsHandler := withCORS(root)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      corsHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Run HTTP server in goroutine so we can listen for shutdown signals
	srvErr := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on :%s\n", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvErr <- err
			return
		}
		srvErr <- nil
	}()

	// prune report files that outlived their redis status entry
	if localStorage != nil {
		go func() {
			ticker := time.NewTicker(5 * time.Minute)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := localStorage.CleanupOlderThan(30 * time.Minute); err != nil {
						log.Printf("storage cleanup error: %v", err)
					}
				}
			}
		}()
	}

	// Listen for OS shutdown signals
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-srvErr:
		if err != nil {
			log.Fatalf("HTTP server error: %v", err)
		}
	case sig := <-stop:
		log.Printf("Shutdown signal received: %v", sig)

		// Give server up to 10 seconds to finish ongoing requests
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("HTTP server Shutdown error: %v", err)
		}

		// Cancel top-level context so background services (websocket hub) stop
		cancel()

		redisClient.Close()

		log.Println("Shutdown complete")
	}
}

func mustInitRedis(cfg config.RedisConfig) *clients.RedisClient {
	client, err := clients.NewRedisClient(clients.RedisConfig{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		MaxRetries:  cfg.MaxRetries,
		DialTimeout: time.Duration(cfg.DialTimeout) * time.Second,
		Timeout:     time.Duration(cfg.Timeout) * time.Second,
		Prefix:      cfg.Prefix,
	})
	if err != nil {
		log.Fatalf("redis init error: %v", err)
	}
	return client
}

// mustInitStorage picks the report file backend. The *LocalStorage return is
// non-nil only for the local backend, where main also serves the files and
// runs the cleanup loop.
func mustInitStorage(cfg config.AppConfig) (*clients.LocalStorage, clients.ReportStorage) {
	switch cfg.StorageBackend {
	case "s3":
		s3, err := clients.NewS3Storage(clients.S3Config{
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Bucket:          cfg.S3.Bucket,
			UseSSL:          cfg.S3.UseSSL,
			Region:          cfg.S3.Region,
			Prefix:          cfg.S3.Prefix,
			URLTTL:          time.Duration(cfg.S3.URLTTLHours) * time.Hour,
		})
		if err != nil {
			log.Fatalf("s3 storage init error: %v", err)
		}
		return nil, s3
	case "local", "":
		local, err := clients.NewLocalStorage(cfg.ReportDir, cfg.FilesPublicPrefix, cfg.ExternalURL)
		if err != nil {
			log.Fatalf("storage init error: %v", err)
		}
		return local, local
	default:
		log.Fatalf("unknown storage backend %q", cfg.StorageBackend)
		return nil, nil
	}
}

func serveReportFile(storage *clients.LocalStorage) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		file := filepath.Base(chi.URLParam(r, "file"))

		path := filepath.Join(storage.BaseDir, file)
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				http.NotFound(w, r)
				return
			}
			http.Error(w, "failed to access file", http.StatusInternalServerError)
			return
		}

		// prefer original filename in Content-Disposition (strip random prefix)
		orig := file
		if idx := strings.IndexByte(file, '_'); idx >= 0 {
			orig = file[idx+1:]
		}
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", orig))

		http.ServeFile(w, r, path)
	}
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Vary", "Origin")

			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		}

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
