package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/codecanvas/codecanvas/internal/artifact"
	"github.com/codecanvas/codecanvas/internal/chat"
	"github.com/codecanvas/codecanvas/internal/config"
	"github.com/codecanvas/codecanvas/internal/gemini"
	"github.com/codecanvas/codecanvas/internal/log"
	"github.com/codecanvas/codecanvas/internal/storage"
	"github.com/codecanvas/codecanvas/internal/web"
)

var serveEphemeral bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CodeCanvas server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveEphemeral, "ephemeral", false,
		"keep all state in memory, write nothing to disk")
	rootCmd.AddCommand(serveCmd)
}

// runServe wires the stores, the conversation manager and the HTTP
// server, then blocks until SIGINT/SIGTERM.
func runServe(parent context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: cfg.LogLevelValue(), JSON: cfg.LogJSON})
	logger.Info("starting codecanvas", "version", Version)

	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var store storage.Store
	if serveEphemeral {
		logger.Info("ephemeral mode, state will not survive a restart")
		store = storage.NewMemory()
	} else {
		db, err := storage.Open(cfg.DatabasePath())
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				logger.Warn("closing storage", "error", closeErr)
			}
		}()
		store = db
	}

	files := artifact.NewStore(logger.With("component", "artifact"))

	validator := gemini.NewValidator(nil, gemini.DefaultDebounce,
		logger.With("component", "validator"))
	defer validator.Stop()

	manager, err := chat.NewManager(ctx, chat.Options{
		Store:            store,
		Artifacts:        files,
		ServerCredential: cfg.APIKey,
		Defaults: chat.Settings{
			Theme:   cfg.DefaultTheme,
			Persona: cfg.DefaultPersona,
			Context: cfg.DefaultContext,
		},
		NewGenerator: func(ctx context.Context, credential string) (gemini.Generator, error) {
			return gemini.NewClient(ctx, credential, cfg.ModelName,
				logger.With("component", "gemini"))
		},
		Validator: validator,
		Logger:    logger.With("component", "chat"),
	})
	if err != nil {
		return fmt.Errorf("creating conversation manager: %w", err)
	}

	srv, err := web.NewServer(web.ServerConfig{
		Logger:    logger.With("component", "web"),
		Manager:   manager,
		Artifacts: files,
		RateLimit: cfg.RateLimit,
		RateBurst: cfg.RateBurst,
	})
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}

	logger.Info("open in your browser", "url", "http://"+cfg.Addr())
	if err := srv.Run(ctx, cfg.Addr()); err != nil {
		return fmt.Errorf("running server: %w", err)
	}
	return nil
}
