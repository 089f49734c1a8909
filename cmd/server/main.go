package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"moneywise/internal/ai"
	"moneywise/internal/auth"
	"moneywise/internal/config"
	"moneywise/internal/db"
	api "moneywise/internal/http"
	"moneywise/internal/logx"
	"moneywise/internal/mail"
	"moneywise/internal/repo"
	"moneywise/internal/report"
	"moneywise/internal/service"
)

func main() {
	cfg := config.Load()

	log := logx.New(cfg.LogLevel)
	logx.SetDefault(log)

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	if err := db.RunMigrations(ctx, pool, cfg.MigrationsDir); err != nil {
		log.Error("migrations failed", "error", err)
		os.Exit(1)
	}

	mailer, err := mail.NewMailer(mail.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	if err != nil {
		log.Error("mailer setup failed", "error", err)
		os.Exit(1)
	}

	outboxCtx, stopOutbox := context.WithCancel(ctx)
	outbox := mail.NewOutbox(mailer, log)
	go outbox.Run(outboxCtx)

	authManager := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	repository := repo.New(pool)
	aiClient := ai.NewClient(cfg.GroqAPIKey, cfg.GroqModel)
	renderer := report.NewRenderer(cfg.ReportsDir)

	alertSvc := service.NewAlertService(repository, log)

	handler := &api.API{
		Auth:            authManager,
		AuthSvc:         service.NewAuthService(repository, authManager, mailer, outbox, cfg.AppBaseURL, log),
		Categories:      service.NewCategoryService(repository),
		Transactions:    service.NewTransactionService(repository, alertSvc, log),
		Alerts:          alertSvc,
		Recommendations: service.NewRecommendationService(repository, aiClient, log),
		Dashboard:       service.NewDashboardService(repository),
		Reports:         service.NewReportService(repository, renderer),
		Chat:            service.NewChatService(repository, aiClient),
		Origins:         splitOrigins(cfg.CORSOrigin),
		AIAllowedUserID: cfg.AIAllowedUserID,
		Log:             log.WithComponent("http"),
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("server listening", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		log.Error("server shutdown error", "error", err)
	}

	// Flush queued mail before exiting.
	stopOutbox()
	outbox.Wait()
}

func splitOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
