// Command srpsrv is a reference SRP-6a authentication server. It exposes
// registration and login over plain HTTP and is meant as a demonstration of
// the pkg/srp contract, not a hardened production deployment (TLS
// termination, if needed, belongs in a reverse proxy in front of it).
package main

import (
	"context"
	"crypto"
	_ "crypto/sha1"
	_ "crypto/sha256"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/nullreceiver/srp6a/internal/api"
	"github.com/nullreceiver/srp6a/internal/api/handlers"
	"github.com/nullreceiver/srp6a/internal/api/middleware"
	"github.com/nullreceiver/srp6a/internal/auth"
	"github.com/nullreceiver/srp6a/internal/config"
	"github.com/nullreceiver/srp6a/internal/logging"
	"github.com/nullreceiver/srp6a/pkg/srp"
)

var (
	// version is set by build flags
	version = "dev"
	// commit is set by build flags
	commit = "none"
)

func main() {
	configPath := flag.String("config", "/etc/srp6a/config.yaml", "path to configuration file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logger := logging.New(logging.LevelError, logging.FormatJSON)
		logger.Error("service failed", map[string]any{
			"error": err.Error(),
		})
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.New(parseLogLevel(cfg.Logging.Level), parseLogFormat(cfg.Logging.Format))

	logger.Info("srp6a service starting", map[string]any{
		"version":        version,
		"commit":         commit,
		"listen_address": cfg.ListenAddr(),
		"group_id":       cfg.Verifier.GroupID,
		"hash":           cfg.Verifier.Hash,
		"session_ttl":    cfg.Service.SessionTTL,
	})

	hash, err := parseHash(cfg.Verifier.Hash)
	if err != nil {
		return err
	}

	srpCfg, err := srp.NewConfiguration(cfg.Verifier.GroupID, hash)
	if err != nil {
		return fmt.Errorf("failed to build SRP configuration: %w", err)
	}
	if srpCfg.Group().IsLegacy() {
		logger.Warn("configured SRP group is a legacy test group, not suitable for production", map[string]any{
			"group_id": cfg.Verifier.GroupID,
		})
	}

	verifiers, err := auth.LoadVerifierStore(cfg.VerifierStorePath())
	if err != nil {
		return fmt.Errorf("failed to load verifier store: %w", err)
	}
	logger.Info("verifier store loaded", map[string]any{
		"path":  cfg.VerifierStorePath(),
		"users": verifiers.Count(),
	})

	sessionTTL, err := cfg.GetSessionTTL()
	if err != nil {
		return fmt.Errorf("failed to parse session TTL: %w", err)
	}

	secret, err := auth.GenerateSessionSecret()
	if err != nil {
		return fmt.Errorf("failed to generate session secret: %w", err)
	}
	sessionManager := auth.NewSessionManager(secret, sessionTTL)
	rateLimiter := auth.NewRateLimiter()

	stdLogger := log.New(os.Stdout, "", log.LstdFlags)
	authHandler := handlers.NewAuthHandler(srpCfg, verifiers, sessionManager, rateLimiter, stdLogger)

	server, err := api.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	mux := server.Handler()
	if mux == nil {
		return fmt.Errorf("failed to get server handler")
	}

	authMiddleware := middleware.NewAuthMiddleware(sessionManager)
	logMiddleware := middleware.Logging(logger)

	mux.Handle("/auth/srp/register", logMiddleware(http.HandlerFunc(authHandler.HandleSRPRegister)))
	mux.Handle("/auth/srp/init", logMiddleware(http.HandlerFunc(authHandler.HandleSRPInit)))
	mux.Handle("/auth/srp/verify", logMiddleware(http.HandlerFunc(authHandler.HandleSRPVerify)))
	mux.Handle("/auth/session", logMiddleware(authMiddleware.Require(handlers.NewWhoAmIHandler())))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	logger.Info("srp6a service ready to accept connections")

	if err := server.Start(ctx); err != nil {
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("srp6a service stopped")

	authHandler.Stop()
	sessionManager.Stop()
	rateLimiter.Stop()

	return nil
}

func parseHash(name string) (crypto.Hash, error) {
	switch name {
	case "sha1":
		return crypto.SHA1, nil
	case "sha256":
		return crypto.SHA256, nil
	default:
		return 0, fmt.Errorf("unsupported hash %q", name)
	}
}

func parseLogLevel(level string) logging.LogLevel {
	switch level {
	case "debug":
		return logging.LevelDebug
	case "info":
		return logging.LevelInfo
	case "warn":
		return logging.LevelWarn
	case "error":
		return logging.LevelError
	default:
		return logging.LevelInfo
	}
}

func parseLogFormat(format string) logging.LogFormat {
	switch format {
	case "json":
		return logging.FormatJSON
	case "human":
		return logging.FormatHuman
	default:
		return logging.FormatJSON
	}
}
