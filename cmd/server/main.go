package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sales_system/internal/api"
	"sales_system/internal/app/service"
	"sales_system/internal/app/worker"
	"sales_system/internal/common/security"
	"sales_system/internal/domain/repository"
	"sales_system/internal/platform/config"
	"sales_system/internal/platform/database"
	"sales_system/internal/platform/mail"
	"sales_system/internal/platform/session"

	"github.com/google/uuid"
)

// Compile-time checks: the platform implementations satisfy the service contracts.
var (
	_ service.SessionStore = (*session.Store)(nil)
	_ service.Mailer       = (*mail.SMTPMailer)(nil)
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis (session store + janitor lock)
	session.Connect()
	defer session.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	attemptRepo := repository.NewPgLoginAttemptRepository(database.DB)

	// 6. Initialize Services
	sessionStore := session.NewStore(session.RDB, config.AppConfig.SessionTTL)
	mailer := mail.NewSMTPMailer()

	accessService, err := service.NewAccessService()
	if err != nil {
		log.Fatalf("Invalid access tables: %v", err)
	}

	authService := service.NewAuthService(userRepo, attemptRepo, sessionStore, mailer, service.AuthConfig{
		AppName:          config.AppConfig.AppName,
		MaxLoginAttempts: config.AppConfig.MaxLoginAttempts,
		LockoutWindow:    config.AppConfig.LockoutWindow,
		BcryptCost:       config.AppConfig.BcryptCost,
	})
	userService := service.NewUserService(userRepo, config.AppConfig.BcryptCost)

	// 7. Initialize Attempt Janitor (as a goroutine)
	janitor := worker.NewAttemptJanitor(session.RDB, attemptRepo, uuid.NewString())
	janitorCtx, janitorCancel := context.WithCancel(context.Background())
	defer janitorCancel()
	go janitor.Start(janitorCtx)
	fmt.Println("Attempt janitor started.")

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, accessService, userService, sessionStore)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")
	janitorCancel() // Signal janitor to stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server and janitor stopped gracefully.")
}
