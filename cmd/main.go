package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	httpSwagger "github.com/swaggo/http-swagger"

	"file-manager-server/config"
	_ "file-manager-server/docs"
	"file-manager-server/internal/handler"
	"file-manager-server/internal/mail"
	"file-manager-server/internal/ports"
	"file-manager-server/internal/repository"
	"file-manager-server/internal/security"
	"file-manager-server/internal/service"
	"file-manager-server/internal/storage"
)

// @title File Manager Server
// @version 1.0
// @description REST API for uploading, sharing and downloading large files

// @host localhost:8080

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, relying on the environment")
	}

	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		log.Fatalf("loading configuration failed: %v", err)
	}

	db, err := config.SetupDatabase(&cfg.DatabaseConfig)
	if err != nil {
		log.Fatalf("connecting to the database failed: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("closing the database failed: %v", err)
		}
	}()

	redisClient, err := config.SetupRedis(&cfg.RedisConfig)
	if err != nil {
		log.Fatalf("connecting to redis failed: %v", err)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			log.Printf("closing redis failed: %v", err)
		}
	}()

	blobs, err := setupBlobStorage(ctx, cfg)
	if err != nil {
		log.Fatalf("setting up blob storage failed: %v", err)
	}

	srv, router := config.SetupServer(cfg.ServerAddr)

	userRepo := repository.NewUserRepository(db)
	fileRepo := repository.NewFileRepository(db)
	cacheRepo := repository.NewCacheRepository(redisClient)

	mailer := setupMailer(cfg)

	jwtService := security.NewJWTService(&cfg.JWT)

	var authn security.Authenticator
	var gate ports.AccessGate
	if cfg.Auth.DemoMode {
		log.Println("demo mode: authentication and email verification disabled")
		authn = security.NewDemoAuthenticator()
		gate = security.AllowAllGate{}
	} else {
		authn = security.NewJWTAuthenticator(jwtService, cacheRepo)
		gate = security.NewVerifiedEmailGate(userRepo, db)
	}

	fileService := service.NewFileService(fileRepo, blobs, gate, db, cfg.Upload.MaxFiles, cfg.MaxFileSizeBytes())

	fileHandler := handler.NewFileHandler(fileService, cfg)

	uploadLimiter := security.NewRateLimiter(cacheRepo, "upload", int64(cfg.RateLimit.UploadsPerHour), time.Hour,
		"Too many large file uploads, please wait before uploading again", security.KeyByIdentity)

	router.Get("/swagger/*", httpSwagger.WrapHandler)

	if cfg.Auth.DemoMode {
		// the demo identity has no users row, so the real account handlers
		// must never see it
		setupDemoAuthRoutes(router, handler.NewDemoAuthHandler())
	} else {
		userService := service.NewUserService(userRepo, db, mailer)
		authService := service.NewAuthenticationService(userRepo, cacheRepo, jwtService, db)
		authHandler := handler.NewAuthHandler(userService, authService)
		authLimiter := security.NewRateLimiter(cacheRepo, "auth", int64(cfg.RateLimit.AuthPerQuarterHour), 15*time.Minute,
			"Too many authentication attempts, please try again later", security.KeyByClientIP)
		setupAuthRoutes(router, authHandler, authn, authLimiter)
	}
	setupFileRoutes(router, fileHandler, authn, uploadLimiter)

	sweeper := service.NewSweeper(fileRepo, userRepo, db, &cfg.Sweep)
	go sweeper.Run(ctx)

	runServer(ctx, srv)
}

func setupBlobStorage(ctx context.Context, cfg *config.AppConfig) (ports.BlobStorage, error) {
	if cfg.Storage.Backend == "s3" {
		return storage.NewS3Storage(ctx, &cfg.Storage.S3)
	}
	return storage.NewDiskStorage(cfg.Storage.Dir)
}

func setupMailer(cfg *config.AppConfig) ports.Mailer {
	if cfg.SMTP.Host == "" || cfg.SMTP.Username == "" {
		log.Println("smtp not configured, email tokens will be logged instead")
		return mail.NewLogMailer()
	}
	return mail.NewSMTPMailer(&cfg.SMTP, cfg.BaseURL)
}

func setupAuthRoutes(r chi.Router, h *handler.AuthHandler, authn security.Authenticator, limiter *security.RateLimiter) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(limiter.Middleware)
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.Post("/resend-verification", h.ResendVerification)
			r.Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password", h.ResetPassword)
		})

		r.Get("/verify", h.VerifyEmail)

		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware)
			r.Get("/me", h.Me)
			r.Post("/logout", h.Logout)
		})
	})
}

func setupDemoAuthRoutes(r chi.Router, h *handler.DemoAuthHandler) {
	r.Route("/api/auth", func(r chi.Router) {
		r.Get("/me", h.Me)
		r.Post("/register", h.Register)
		r.Post("/login", h.Login)
		r.Post("/logout", h.Logout)
		r.Post("/resend-verification", h.ResendVerification)
		r.Post("/forgot-password", h.ForgotPassword)
		r.Post("/reset-password", h.ResetPassword)
	})
}

func setupFileRoutes(r chi.Router, h *handler.FileHandler, authn security.Authenticator, uploadLimiter *security.RateLimiter) {
	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authn.Middleware)

			r.With(uploadLimiter.Middleware).Post("/upload", h.Upload)
			r.Get("/files", h.List)
			r.Get("/download/{id}", h.Download)

			r.Route("/files/{id}", func(r chi.Router) {
				r.Post("/share", h.Share)
				r.Delete("/", h.Delete)
			})
		})

		r.Get("/share/{token}", h.SharedDownload)
		r.Get("/health", h.Health)
	})
}

func runServer(ctx context.Context, server *http.Server) {
	serverErrors := make(chan error, 1)
	go func() {
		log.Println("server listening on " + server.Addr)
		serverErrors <- server.ListenAndServe()
	}()

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil {
			log.Fatalf("server failed: %v", err)
		}
	case sig := <-signalChannel:
		log.Printf("received signal %v, shutting down", sig)
	}

	shutDownCtx, shutDownCancel := context.WithTimeout(ctx, 5*time.Second)
	defer shutDownCancel()

	if err := server.Shutdown(shutDownCtx); err != nil {
		log.Printf("server shutdown failed: %v", err)
	} else {
		log.Println("server stopped cleanly")
	}
}
