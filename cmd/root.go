package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/spigell/interview-prep/internal/backend"
	"github.com/spigell/interview-prep/internal/logger"
	"github.com/spigell/interview-prep/internal/server"
	"go.uber.org/zap"
)

const (
	app       = "interview-prep"
	envPrefix = "INTERVIEW_PREP"
)

type Config struct {
	Backend *BackendConfig `mapstructure:"backend"`
	Export  *ExportConfig  `mapstructure:"export"`
	Serve   *ServeConfig   `mapstructure:"serve"`
	AI      *AIConfig      `mapstructure:"ai"`
}

type BackendConfig struct {
	URL     string        `mapstructure:"url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir"`
}

type ServeConfig struct {
	Addr           string `mapstructure:"addr"`
	DB             string `mapstructure:"db"`
	MaxUploadBytes int64  `mapstructure:"max-upload-bytes"`
	Questions      int    `mapstructure:"questions"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
	OpenAI   *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type OpenAIConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	BaseURL    string `mapstructure:"base-url"`
	Model      string `mapstructure:"model"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interview-prep generates interview questions from a resume or a spoken introduction and lets you rehearse the answers",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interview-prep.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend.url", backend.DefaultURL)
	v.SetDefault("backend.timeout", backend.DefaultTimeout)
	v.SetDefault("export.dir", ".")

	v.SetDefault("serve.addr", ":5000")
	v.SetDefault("serve.db", app+".db")
	v.SetDefault("serve.max-upload-bytes", server.DefaultMaxUploadBytes)
	v.SetDefault("serve.questions", server.DefaultQuestions)

	v.SetDefault("ai.provider", providerGemini)
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "")
	v.SetDefault("ai.gemini.max-retries", 3)
	v.SetDefault("ai.gemini.max-log-length", 500)
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.base-url", "")
	v.SetDefault("ai.openai.model", "")
}

// bindEnv maps keys to INTERVIEW_PREP_* variables, e.g. backend.url to
// INTERVIEW_PREP_BACKEND_URL.
func bindEnv(v *viper.Viper) {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
}

func initConfig() {
	// .env is optional, real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	bindEnv(viper.GetViper())

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		// Without an explicit --config every key has a default.
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}

// setup builds the logger and reads the config for a command.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil || config.Backend == nil || config.Export == nil || config.Serve == nil || config.AI == nil {
		logger.Fatal("config is incomplete")
	}

	return logger, config
}
