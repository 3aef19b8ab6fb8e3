package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/SyedMohathaseem/noon-opticals-website/internal/config"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/httpapi"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/localstore"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/logger"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/notify"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote/firestore"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/remote/mongo"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/store"
	"github.com/SyedMohathaseem/noon-opticals-website/internal/syncer"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		Format:     cfg.LogFormat,
		Output:     cfg.LogOutput,
		Path:       cfg.LogPath,
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 14,
		Compress:   true,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "init logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()
	log := logger.Get("server")

	if err := validateSecurityConfig(cfg); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	closers := make([]func() error, 0, 2)

	backend, closeLocal, err := openLocal(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatalf("%s storage unavailable; refusing to start with in-memory fallback", cfg.StorageDriver)
	}
	if closeLocal != nil {
		closers = append(closers, closeLocal)
	}
	log.WithField("driver", cfg.StorageDriver).Info("local store ready")

	rs, closeRemote := openRemote(ctx, cfg)
	if closeRemote != nil {
		closers = append(closers, closeRemote)
	}

	local := localstore.New(backend, cfg.StorageNamespace)
	repo := store.New(local,
		store.WithActivityLimit(cfg.ActivityLogLimit),
		store.WithVIPThresholds(cfg.VIPSpendThreshold, cfg.VIPOrderThreshold),
	)
	if err := repo.Init(ctx); err != nil {
		log.WithError(err).Fatal("seed local store")
	}

	coordinator := syncer.New(repo, local, rs,
		syncer.WithRetryPolicy(cfg.SyncMaxAttempts, cfg.BackoffBase()),
		syncer.WithRemoteTimeout(cfg.SyncRemoteTimeout),
	)

	auth := httpapi.NewAuthManager(cfg.AuthSecret, cfg.AccessTokenTTL(), httpapi.NewLocalCredentials(local))
	created, err := auth.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword)
	if err != nil {
		log.WithError(err).Fatal("seed admin account")
	}
	if created {
		log.WithField("username", cfg.AdminUsername).Info("admin account created")
	}

	var sender notify.Sender = notify.Noop{}
	if cfg.SMTPConfigured() {
		sender = notify.NewSMTPSender(notify.SMTPConfig{
			Host:        cfg.SMTPHost,
			Port:        cfg.SMTPPort,
			Username:    cfg.SMTPUsername,
			Password:    cfg.SMTPPassword,
			FromName:    cfg.MailFromName,
			FromAddress: cfg.MailFromAddress,
		})
		log.WithField("host", cfg.SMTPHost).Info("email: smtp")
	} else {
		log.Info("email: not configured")
	}
	notifier := notify.New(sender, notify.WithSiteURL(cfg.SiteURL))

	runCtx, stopRun := context.WithCancel(context.Background())
	defer stopRun()

	if cfg.SyncOnStart {
		go func() {
			report := coordinator.SyncFromRemote(runCtx)
			log.WithField("collections", report.Collections).Info("startup sync finished")
		}()
	}
	go coordinator.Run(runCtx, cfg.DrainInterval())

	api := httpapi.New(coordinator, auth, notifier, cfg.AllowedOrigin)
	server := &http.Server{
		Addr:              cfg.Address(),
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Infof("NOON Opticals backend listening on %s", cfg.Address())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server error")
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 8*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("shutdown error")
	}
	stopRun()
	notifier.Wait()

	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.WithError(err).Warn("close error")
		}
	}

	log.Info("server stopped")
}

// openLocal picks the local store backend. Unlike the remote, a configured
// local backend that cannot be reached stops the server.
func openLocal(ctx context.Context, cfg config.Config) (localstore.Backend, func() error, error) {
	switch cfg.StorageDriver {
	case "memory":
		return localstore.NewMemoryBackend(cfg.StorageQuotaBytes), nil, nil
	case "redis":
		rb := localstore.NewRedisBackend(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err := rb.Ping(ctx); err != nil {
			_ = rb.Close()
			return nil, nil, err
		}
		return rb, rb.Close, nil
	case "postgres":
		pg, err := localstore.NewPostgresBackend(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	default:
		fb, err := localstore.NewFileBackend(afero.NewOsFs(), cfg.StorageDir)
		if err != nil {
			return nil, nil, err
		}
		return fb, nil, nil
	}
}

// openRemote connects the document database mirror. Any failure leaves the
// server running local-only.
func openRemote(ctx context.Context, cfg config.Config) (remote.Store, func() error) {
	log := logger.Get("server")

	switch cfg.RemoteDriver {
	case "memory":
		log.Info("remote: in-memory")
		return remote.NewMemory(), nil
	case "firestore":
		fs, err := firestore.New(ctx, cfg.FirebaseProjectID, cfg.FirebaseCredentialsPath)
		if err != nil {
			log.WithError(err).Warn("firestore unavailable, running local-only")
			return remote.Unavailable{}, nil
		}
		rs, closeFn := checkRemote(ctx, "firestore", fs)
		if closeFn != nil {
			log.WithField("project", cfg.FirebaseProjectID).Info("remote: firestore")
		}
		return rs, closeFn
	case "mongo":
		ms, err := mongo.New(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			log.WithError(err).Warn("mongodb unavailable, running local-only")
			return remote.Unavailable{}, nil
		}
		log.WithField("database", cfg.MongoDB).Info("remote: mongodb")
		return ms, ms.Close
	default:
		log.Info("remote: none, running local-only")
		return remote.Unavailable{}, nil
	}
}

type pingingRemote interface {
	remote.Store
	Ping(ctx context.Context) error
	Close() error
}

// checkRemote keeps rs only when it answers a ping. Otherwise the client is
// closed and the server runs local-only.
func checkRemote(ctx context.Context, name string, rs pingingRemote) (remote.Store, func() error) {
	if err := rs.Ping(ctx); err != nil {
		logger.Get("server").WithError(err).Warnf("%s unreachable, running local-only", name)
		_ = rs.Close()
		return remote.Unavailable{}, nil
	}
	return rs, rs.Close
}

func validateSecurityConfig(cfg config.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if cfg.AdminPassword == "" {
		return nil
	}
	if err := validatePasswordStrength(cfg.AdminUsername, cfg.AdminPassword); err != nil {
		return fmt.Errorf("ADMIN_PASSWORD is too weak: %w", err)
	}
	return nil
}

// validatePasswordStrength rejects short passwords, passwords from a
// known-weak list and passwords equal to the username.
func validatePasswordStrength(username, password string) error {
	if len(password) < 8 {
		return fmt.Errorf("at least 8 characters required")
	}
	known := map[string]bool{
		"admin123": true, "password": true, "12345678": true, "123456789": true,
		"noon1234": true, "admin@123": true, "qwerty123": true, "password1": true,
	}
	lower := strings.ToLower(password)
	if known[lower] {
		return fmt.Errorf("common password not allowed")
	}
	if strings.EqualFold(strings.TrimSpace(username), password) {
		return fmt.Errorf("password must differ from the username")
	}

	allSame := true
	for i := 1; i < len(password); i++ {
		if password[i] != password[0] {
			allSame = false
			break
		}
	}
	if allSame {
		return fmt.Errorf("repeated single character not allowed")
	}
	return nil
}
