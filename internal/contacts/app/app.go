package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpapi "github.com/aussiebroadwan/contacts/internal/contacts/http"
	"github.com/aussiebroadwan/contacts/internal/contacts/mail"
	"github.com/aussiebroadwan/contacts/internal/contacts/media"
	"github.com/aussiebroadwan/contacts/internal/contacts/service"
	"github.com/aussiebroadwan/contacts/internal/contacts/store"
	"github.com/aussiebroadwan/contacts/internal/contacts/store/drivers/postgres"
	"github.com/aussiebroadwan/contacts/internal/contacts/store/drivers/sqlite"
	"github.com/aussiebroadwan/contacts/pkg/cachex"
	"github.com/aussiebroadwan/contacts/pkg/cryptox"
	"github.com/aussiebroadwan/contacts/pkg/slogx"
)

// BuildVersion is overridden at build time via -ldflags "-X".
var BuildVersion = "v0.1.0"

const serviceName = "contacts-api"

// Application is the contacts service with all of its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db     store.Store
	cache  cachex.Cache
	mailer service.EmailSender
	upload service.Uploader
	media  http.Handler // disk backend only

	// Services
	tokenService        *service.TokenService
	guard               *service.Guard
	authService         *service.AuthService
	contactService      *service.ContactService
	rolesService        *service.RolesService
	avatarService       *service.AvatarService
	bootstrapService    *service.BootstrapService
	housekeepingService *service.HousekeepingService
	stopHousekeeping    func()

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates the application and connects to its backends.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: serviceName,
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	ctx := context.Background()
	if err := app.initDatabase(ctx); err != nil {
		return nil, err
	}
	if err := app.initCache(ctx); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	if err := app.initCollaborators(ctx); err != nil {
		app.closeBackends()
		return nil, err
	}
	if err := app.initServices(); err != nil {
		app.closeBackends()
		return nil, err
	}
	app.initHTTP()

	return app, nil
}

// Run serves until ctx is cancelled or the listener fails, then shuts down
// gracefully.
func (app *Application) Run(ctx context.Context) error {
	hkCtx, stopHousekeeping := context.WithCancel(context.Background())
	hkDone := make(chan struct{})
	go func() {
		defer close(hkDone)
		app.housekeepingService.Run(hkCtx)
	}()
	app.stopHousekeeping = func() {
		stopHousekeeping()
		<-hkDone
	}

	app.logger.Info("contacts service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErr := make(chan error, 1)
	go func() { serverErr <- app.server.ListenAndServe() }()

	select {
	case err := <-serverErr:
		app.stopHousekeeping()
		closeErr := app.closeBackends()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return closeErr
	case <-ctx.Done():
		app.logger.Info("shutdown requested", "cause", context.Cause(ctx))
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		return nil
	}
}

// Shutdown drains in-flight requests for at most ShutdownGracePeriod,
// stops housekeeping and closes the backends.
func (app *Application) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed, closing", "error", err)
		_ = app.server.Close()
	}
	if app.stopHousekeeping != nil {
		app.stopHousekeeping()
	}
	if err := app.closeBackends(); err != nil {
		return err
	}

	app.logger.Info("contacts service stopped")
	return nil
}

func (app *Application) closeBackends() error {
	var errs []error
	if app.cache != nil {
		if err := app.cache.Close(); err != nil {
			app.logger.Error("error closing cache", "error", err)
			errs = append(errs, err)
		}
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// initDatabase opens the configured driver and applies migrations.
func (app *Application) initDatabase(ctx context.Context) error {
	db, err := OpenStore(ctx, app.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	app.db = db
	app.logger.Info("database migrations applied successfully", "driver", app.cfg.DatabaseDriver)
	return nil
}

// OpenStore opens the store selected by cfg.DatabaseDriver with its
// migrations applied.
func OpenStore(ctx context.Context, cfg Config) (store.Store, error) {
	switch cfg.DatabaseDriver {
	case "sqlite":
		s, err := sqlite.NewStore(cfg.DatabaseFile)
		if err != nil {
			return nil, err
		}
		if err := s.ApplyMigrations(); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, errors.New("DATABASE_URL is required for the postgres driver")
		}
		s, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := s.ApplyMigrations(); err != nil {
			_ = s.Close()
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown DATABASE_DRIVER %q", cfg.DatabaseDriver)
	}
}

func (app *Application) initCache(ctx context.Context) error {
	switch app.cfg.CacheBackend {
	case "memory":
		app.cache = cachex.NewMemory()
	case "redis":
		r, err := cachex.NewRedis(ctx, app.cfg.RedisURL, "contacts:")
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.cache = r
	default:
		return fmt.Errorf("unknown CACHE_BACKEND %q", app.cfg.CacheBackend)
	}

	app.logger.Info("profile cache ready", "backend", app.cfg.CacheBackend, "ttl", app.cfg.CacheTTL)
	return nil
}

// initCollaborators sets up the mail transport and the avatar storage.
func (app *Application) initCollaborators(ctx context.Context) error {
	var transport mail.Transport
	switch app.cfg.MailBackend {
	case "log":
		transport = &mail.LogTransport{Logger: app.logger}
	case "sendgrid":
		sg, err := mail.NewSendGridTransport(app.cfg.SendGridKey, app.cfg.MailFrom, app.cfg.MailFromName)
		if err != nil {
			return err
		}
		transport = sg
	default:
		return fmt.Errorf("unknown MAIL_BACKEND %q", app.cfg.MailBackend)
	}
	app.mailer = &mail.Mailer{Transport: transport, AppName: app.cfg.MailFromName}

	switch app.cfg.StorageBackend {
	case "disk":
		disk := &media.DiskUploader{Dir: app.cfg.MediaDir, BaseURL: app.cfg.PublicBaseURL}
		app.upload = disk
		app.media = disk.Handler()
	case "s3":
		s3, err := media.NewS3Uploader(ctx, app.cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to configure s3 storage: %w", err)
		}
		app.upload = s3
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", app.cfg.StorageBackend)
	}

	app.logger.Info("collaborators configured", "mail", app.cfg.MailBackend, "storage", app.cfg.StorageBackend)
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() error {
	signer, err := InitSigner(app.cfg, app.logger)
	if err != nil {
		return fmt.Errorf("failed to initialize token signer: %w", err)
	}

	app.tokenService = &service.TokenService{
		Signer:   signer,
		Verifier: signer,
		Issuer:   app.cfg.TokenIssuer,
	}
	profiles := &service.ProfileCache{Cache: app.cache, TTL: app.cfg.CacheTTL}

	app.guard = &service.Guard{Tokens: app.tokenService, Store: app.db, Cache: profiles}
	app.authService = &service.AuthService{
		Store:      app.db,
		Tokens:     app.tokenService,
		Mail:       app.mailer,
		Cache:      profiles,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
		VerifyTTL:  app.cfg.VerificationTokenTTL,
		ResetTTL:   app.cfg.ResetTokenTTL,
		VerifyURL:  app.cfg.VerifyURL(),
		ResetURL:   app.cfg.ResetURL(),
	}
	app.contactService = &service.ContactService{
		Store:          app.db,
		BirthdayWindow: app.cfg.BirthdayWindowDays,
	}
	app.rolesService = &service.RolesService{Store: app.db}
	app.avatarService = &service.AvatarService{
		Store:    app.db,
		Uploader: app.upload,
		Cache:    profiles,
		MaxBytes: app.cfg.AvatarMaxBytes,
	}
	app.bootstrapService = &service.BootstrapService{
		Store: app.db,
		Token: app.cfg.BootstrapToken,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.cache,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		app.cache,
		app.logger,
		app.cfg.CORSOrigins(),
	)

	router.Guard = app.guard
	router.AuthService = app.authService
	router.ContactService = app.contactService
	router.RolesService = app.rolesService
	router.AvatarService = app.avatarService
	router.BootstrapService = app.bootstrapService
	router.Media = app.media // nil unless files are stored on disk
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
