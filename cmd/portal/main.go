package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/peterbourgon/ff/v4"
	"github.com/peterbourgon/ff/v4/ffhelp"
	"go.etcd.io/bbolt"

	"receipt-portal/internal/config"
	"receipt-portal/internal/handlers"
	"receipt-portal/internal/integrity"
	"receipt-portal/internal/portal"
	"receipt-portal/internal/services"
	"receipt-portal/internal/session"
	"receipt-portal/internal/throttle"
)

func main() {
	fs := ff.NewFlagSet("receipt-portal")
	var (
		configPath = fs.StringLong("config", "config.yaml", "Configuration file path")
		portFlag   = fs.IntLong("port", 0, "Override the configured HTTP port")
	)

	if err := ff.Parse(fs, os.Args[1:],
		ff.WithEnvVarPrefix("RECEIPT_PORTAL"),
	); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", ffhelp.Flags(fs))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *portFlag != 0 {
		cfg.Server.Port = *portFlag
	}

	if cfg.Server.Verbose {
		log.Printf("[MAIN] Receipt portal starting...")
		log.Printf("[MAIN] Configuration loaded from: %s", *configPath)
		log.Printf("[MAIN] Server port: %d", cfg.Server.Port)
		log.Printf("[MAIN] Admin session timeout: %v", cfg.AdminTimeout)
		log.Printf("[MAIN] Recipient session timeout: %v", cfg.RecipientTimeout)
		log.Printf("[MAIN] Max login attempts: %d (lockout %v)", cfg.Auth.MaxLoginAttempts, cfg.LockoutDuration)
	}

	// Open the auth database holding sessions and attempt counters
	db, err := bbolt.Open(cfg.Auth.DBPath, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		log.Fatalf("Failed to open auth database: %v", err)
	}
	defer db.Close()

	sessions, err := session.NewManager(db, cfg.AdminTimeout, cfg.RecipientTimeout, cfg.Server.Verbose)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}

	limiter, err := throttle.NewLimiter(db, cfg.Auth.MaxLoginAttempts, cfg.LockoutDuration, cfg.Server.Verbose)
	if err != nil {
		log.Fatalf("Failed to initialize login throttle: %v", err)
	}

	// Record store per configuration (factory pattern)
	store := services.CreateRecordStore(cfg)
	signer := integrity.NewSigner(cfg.Server.Verbose)

	p := portal.New(store, signer, sessions, limiter, cfg.Admin.Email, cfg.Admin.PasswordHash, cfg.Server.Verbose)
	handler := handlers.NewPortalHandler(p, cfg)

	// Set up Gin router with logging based on verbose config
	var router *gin.Engine
	if cfg.Server.Verbose {
		gin.SetMode(gin.DebugMode)
		router = gin.Default()
		log.Printf("Verbose mode enabled - HTTP requests will be logged")
	} else {
		gin.SetMode(gin.ReleaseMode)
		router = gin.New()
		router.Use(gin.Recovery())
	}

	// Public routes
	router.POST("/api/login", handler.Login)
	router.POST("/api/logout", handler.Logout)
	router.GET("/health", handler.HealthCheck)

	// Authenticated routes
	authd := router.Group("/api", handler.AuthMiddleware())
	{
		authd.GET("/payments", handler.ListPayments)
		authd.GET("/payments/:id", handler.GetPayment)
		authd.POST("/payments", handler.CreatePayment)
		authd.PUT("/payments/:id", handler.UpdatePayment)
		authd.DELETE("/payments/:id", handler.DeletePayment)

		authd.GET("/recipients", handler.ListRecipients)
		authd.POST("/recipients", handler.CreateRecipient)
		authd.DELETE("/recipients/:email", handler.DeleteRecipient)
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Starting receipt portal on port %d", cfg.Server.Port)

	if cfg.StandaloneMode {
		log.Printf("Running in STANDALONE mode - in-memory record store")
	} else {
		log.Printf("Running in ONLINE mode - record store webhook: %s", cfg.Sheet.WebhookURL)
	}

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
