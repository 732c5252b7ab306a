package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"portfolioserver/internal/auth"
	"portfolioserver/internal/config"
	"portfolioserver/internal/email"
	"portfolioserver/internal/httpapi"
	"portfolioserver/internal/media"
	"portfolioserver/internal/service"
	"portfolioserver/internal/store/postgres"
)

func newServeCmd() *cobra.Command {
	var skipMigrate bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg, !skipMigrate)
		},
	}
	cmd.Flags().BoolVar(&skipMigrate, "skip-migrate", false, "do not apply pending migrations on startup")
	return cmd
}

func serve(ctx context.Context, cfg config.Config, migrate bool) error {
	logger := newLogger(cfg)
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	creds := cfg.Credentials()
	hasher := auth.NewBcryptHasher(creds.HashCost)
	signer := auth.NewTokenSigner(creds.SigningKey, creds.TokenTTL())

	mediaStore, err := newMediaStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	mailer := newMailer(cfg, logger)

	opts := httpapi.RouterOpts{
		Logger:       logger,
		IsProd:       cfg.IsProd(),
		CookieSecure: cfg.CookieSecure(),
		SessionTTL:   creds.TokenTTL(),
		CORSOrigins:  cfg.CORSOrigins,
	}
	if cfg.MetricsEnabled {
		opts.Metrics = httpapi.NewMetrics()
	}

	if cfg.DBDSN != "" {
		pool, err := postgres.Open(ctx, cfg.DBDSN)
		if err != nil {
			return err
		}
		defer pool.Close()

		if migrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				return err
			}
		}

		accounts := postgres.NewAccountsStore(pool)
		opts.DBPing = pool.Ping
		opts.Auth = &service.AuthService{
			Accounts: accounts,
			Hasher:   hasher,
			Tokens:   signer,
			Media:    mediaStore,
			OwnerID:  cfg.PortfolioOwnerID,
			Logger:   logger,
		}
		opts.Profile = &service.ProfileService{Accounts: accounts, Media: mediaStore, Logger: logger}
		opts.Reset = &service.PasswordResetService{
			Accounts:     accounts,
			Hasher:       hasher,
			Tokens:       signer,
			Mail:         &service.EmailService{Mailer: mailer},
			DashboardURL: cfg.DashboardURL,
			TokenTTL:     auth.ResetTokenTTL,
			Logger:       logger,
		}
		opts.Messages = &service.MessageService{Store: postgres.NewMessagesStore(pool)}
		opts.Projects = &service.ProjectService{Store: postgres.NewProjectsStore(pool), Media: mediaStore, Logger: logger}
		opts.Skills = &service.SkillService{Store: postgres.NewSkillsStore(pool), Media: mediaStore, Logger: logger}
		opts.Applications = &service.ApplicationService{Store: postgres.NewApplicationsStore(pool), Media: mediaStore, Logger: logger}
		opts.Timeline = &service.TimelineService{Store: postgres.NewTimelineStore(pool)}
	} else {
		logger.Warn("APP_DB_DSN not set; only health and metrics routes are served")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.NewRouter(opts),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", "env", cfg.Env, "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		logger.Info("server stopped")
		return nil
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	}
}

// newMediaStore falls back to a store that rejects uploads when no bucket is
// configured, so read-only routes still work.
func newMediaStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (service.MediaStore, error) {
	if !cfg.Media.Enabled() {
		logger.Warn("APP_MEDIA_BUCKET not set; uploads are disabled")
		return media.Disabled{}, nil
	}
	store, err := media.NewS3Store(ctx, media.Options{
		Bucket:          cfg.Media.Bucket,
		Region:          cfg.Media.Region,
		Endpoint:        cfg.Media.Endpoint,
		PublicBaseURL:   cfg.Media.PublicBaseURL,
		AccessKeyID:     cfg.Media.AccessKeyID,
		SecretAccessKey: cfg.Media.SecretAccessKey,
		UsePathStyle:    cfg.Media.UsePathStyle,
	})
	if err != nil {
		return nil, fmt.Errorf("media store: %w", err)
	}
	return store, nil
}

// newMailer returns nil without SMTP settings; reset requests then fail with
// a delivery error and roll back.
func newMailer(cfg config.Config, logger *slog.Logger) service.Mailer {
	if !cfg.SMTP.Enabled() {
		logger.Warn("APP_SMTP_HOST or APP_SMTP_FROM_EMAIL not set; password reset email is disabled")
		return nil
	}
	return email.NewSender(email.SMTPSettings{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
	}, cfg.SMTP.FromName, cfg.SMTP.FromEmail)
}
