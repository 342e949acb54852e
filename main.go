package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "campushub/internal/config"
	intdb "campushub/internal/db"
	router "campushub/internal/http"
	"campushub/internal/notify"
	"campushub/internal/services"
	"campushub/internal/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sessionPurgeInterval = time.Hour

func main() {
	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	logger, err := utils.InitLogger(env.GinMode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := env.Validate(); err != nil {
		logger.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := intconfig.ConnectDB(ctx, env.DBDSN)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer intconfig.CloseDB()
	logger.Info("connected to MySQL")

	schemaCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = intdb.EnsureSchema(schemaCtx, db)
	cancel()
	if err != nil {
		logger.Fatal("ensure schema", zap.Error(err))
	}

	auth := services.AuthService{Secret: []byte(env.SessionSecret), TTL: env.SessionTTL, RequestID: "startup"}
	if err := auth.BootstrapAgent(ctx, env.BootstrapAgentEmail, env.BootstrapAgentPassword,
		env.BootstrapAgentName, env.BootstrapAgentPhone); err != nil {
		logger.Fatal("bootstrap agent", zap.Error(err))
	}

	var mailer notify.Mailer = notify.LogMailer{}
	if env.SMTPEnabled() {
		mailer = notify.NewSMTPMailer(env.SMTPHost, env.SMTPPort, env.SMTPUser, env.SMTPPassword, env.MailFrom)
	} else {
		logger.Info("SMTP not configured, emails are logged only")
	}
	dispatcher := notify.NewDispatcher(mailer, notify.NewZapLoggerAdapter(logger))
	// Delivery outlives the signal context so Close can drain queued emails.
	if err := dispatcher.Start(context.Background()); err != nil {
		logger.Fatal("start notification dispatcher", zap.Error(err))
	}
	notify.SetDefault(dispatcher)

	go purgeSessions(ctx, auth)

	r := router.NewRouter(env)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", env.AppAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	if err := dispatcher.Close(); err != nil {
		logger.Error("close notification dispatcher", zap.Error(err))
	}
	logger.Info("server stopped")
}

func purgeSessions(ctx context.Context, auth services.AuthService) {
	ticker := time.NewTicker(sessionPurgeInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := auth.PurgeExpiredSessions(ctx)
			if err != nil {
				utils.LogError("", "auth", "purge_sessions", err)
				continue
			}
			if n > 0 {
				utils.LogEvent("", "auth", "purge_sessions", "expired sessions removed")
			}
		}
	}
}
