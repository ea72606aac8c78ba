package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/interview-prep/internal/ai"
	"github.com/spigell/interview-prep/internal/ai/gemini"
	"github.com/spigell/interview-prep/internal/ai/openai"
	"github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/secrets"
	"github.com/spigell/interview-prep/internal/server"
	"github.com/spigell/interview-prep/internal/store"
	"go.uber.org/zap"
)

const (
	providerGemini = "gemini"
	providerOpenAI = "openai"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview backend",
	Run: func(cmd *cobra.Command, _ []string) {
		serve(cmd)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "listen address (default :5000)")
	serveCmd.Flags().String("db", "", "sqlite database path")

	viper.BindPFlag("serve.addr", serveCmd.Flags().Lookup("addr"))
	viper.BindPFlag("serve.db", serveCmd.Flags().Lookup("db"))
}

func serve(cmd *cobra.Command) {
	logger, config := setup()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting the interview backend", zap.String("version", version))

	st, err := store.New(config.Serve.DB)
	if err != nil {
		logger.Fatal("opening the database", zap.Error(err), zap.String("path", config.Serve.DB))
	}
	defer st.Close()

	interviewer, err := newInterviewer(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building the interviewer",
			zap.Error(err),
			zap.String("hint", "set ai.provider and the provider api-key-file, or GEMINI_API_KEY / OPENAI_API_KEY"),
		)
	}

	srv := server.New(st, interviewer, server.Config{
		MaxUploadBytes: config.Serve.MaxUploadBytes,
		Questions:      config.Serve.Questions,
	}, logger)

	if err := srv.ListenAndServe(ctx, config.Serve.Addr); err != nil {
		logger.Fatal("serving", zap.Error(err))
	}

	logger.Info("exiting", zap.String("reason", "server stopped"))
}

func newInterviewer(ctx context.Context, cfg *AIConfig, log *zap.Logger) (ai.Interviewer, error) {
	if cfg == nil {
		return nil, fmt.Errorf("ai configuration is required")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case "", providerGemini:
		gcfg := cfg.Gemini
		if gcfg == nil {
			gcfg = &GeminiConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "gemini api key",
			File: gcfg.APIKeyFile,
			Env:  "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		generator, err := gemini.NewGenerator(ctx, apiKey, gcfg.Model, gcfg.MaxRetries, log.With(
			zap.Int("ai_retry_attempts", gcfg.MaxRetries),
		))
		if err != nil {
			return nil, err
		}

		return gemini.NewInterviewer(generator, logger.WithAIFields(log, providerGemini, generator.Model()), gcfg.MaxLogLength), nil
	case providerOpenAI:
		ocfg := cfg.OpenAI
		if ocfg == nil {
			ocfg = &OpenAIConfig{}
		}

		apiKey, err := secrets.Load(secrets.Source{
			Name: "openai api key",
			File: ocfg.APIKeyFile,
			Env:  "OPENAI_API_KEY",
		})
		if err != nil {
			return nil, err
		}

		return openai.New(ocfg.BaseURL, apiKey, ocfg.Model, log), nil
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
}
