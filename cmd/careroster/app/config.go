package app

import (
	stderrors "errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/careroster/pkg/constants"
	"github.com/agentstation/careroster/pkg/errors"
	"github.com/agentstation/careroster/pkg/sources"
)

// envPrefix namespaces every environment variable the CLI reads.
const envPrefix = "CAREROSTER"

// Config holds the application configuration loaded from config files,
// environment variables and .env files.
type Config struct {
	// Global flags
	Verbose  bool
	Quiet    bool
	NoColor  bool
	Format   string
	LogLevel string

	// Config file
	ConfigFile string

	// Stores
	Registry string
	Overlay  string

	// Source extracts
	Baseline    string
	Events      string
	Equipment   string
	EventSystem string
	SourceToken string

	// Run settings
	Retry          sources.RetryConfig
	Timeout        time.Duration
	Office         string
	MetricsFile    string
	ProvenanceFile string

	// S3 registry settings
	S3Region    string
	S3Endpoint  string
	S3PathStyle bool

	// Logging configuration
	LogFormat string
	LogOutput string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables (CAREROSTER_*)
//  3. .env files
//  4. Config file (~/.careroster.yaml or ./.careroster.yaml)
//  5. Defaults
func LoadConfig(configFile string) (*Config, error) {
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if configFile == "" {
		configFile = os.Getenv(envPrefix + "_CONFIG")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.AddConfigPath(".")
		v.SetConfigType("yaml")
		v.SetConfigName(".careroster")
	}

	if err := v.ReadInConfig(); err != nil {
		// A missing default config file is fine; an explicit one must exist.
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "cannot read config file", err)
		}
	}

	config := &Config{
		Verbose: v.GetBool("verbose"),
		Quiet:   v.GetBool("quiet"),
		NoColor: v.GetBool("no_color"),
		Format:  v.GetString("format"),

		ConfigFile: v.ConfigFileUsed(),

		Registry: v.GetString("registry"),
		Overlay:  v.GetString("overlay"),

		Baseline:    v.GetString("sources.baseline"),
		Events:      v.GetString("sources.events"),
		Equipment:   v.GetString("sources.equipment"),
		EventSystem: v.GetString("sources.event_system"),
		SourceToken: v.GetString("sources.token"),

		Retry: sources.RetryConfig{
			MaxRetries:     v.GetInt("retry.max_retries"),
			InitialBackoff: v.GetDuration("retry.initial_backoff"),
			MaxBackoff:     v.GetDuration("retry.max_backoff"),
			Multiplier:     v.GetFloat64("retry.multiplier"),
		},
		Timeout:        v.GetDuration("timeout"),
		Office:         v.GetString("office"),
		MetricsFile:    v.GetString("metrics_file"),
		ProvenanceFile: v.GetString("provenance_file"),

		S3Region:    v.GetString("s3.region"),
		S3Endpoint:  v.GetString("s3.endpoint"),
		S3PathStyle: v.GetBool("s3.path_style"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", ""),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
		LogOutput: getEnvOrDefault("LOG_OUTPUT", "stderr"),
	}

	if err := config.Retry.Validate(); err != nil {
		return nil, errors.NewConfigError("retry", "invalid retry settings", err)
	}
	return config, nil
}

// setDefaults registers the default of every key so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	retry := sources.DefaultRetryConfig()

	v.SetDefault("verbose", false)
	v.SetDefault("quiet", false)
	v.SetDefault("no_color", false)
	v.SetDefault("format", "")
	v.SetDefault("registry", constants.DefaultRegistryFile)
	v.SetDefault("overlay", "")
	v.SetDefault("sources.baseline", "")
	v.SetDefault("sources.events", "")
	v.SetDefault("sources.equipment", "")
	v.SetDefault("sources.event_system", "")
	v.SetDefault("sources.token", "")
	v.SetDefault("retry.max_retries", retry.MaxRetries)
	v.SetDefault("retry.initial_backoff", retry.InitialBackoff)
	v.SetDefault("retry.max_backoff", retry.MaxBackoff)
	v.SetDefault("retry.multiplier", retry.Multiplier)
	v.SetDefault("timeout", constants.RunTimeout)
	v.SetDefault("office", "")
	v.SetDefault("metrics_file", "")
	v.SetDefault("provenance_file", "")
	v.SetDefault("s3.region", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.path_style", false)
}

// UpdateFromFlags applies parsed command flags, which take precedence over
// the config file and environment.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, format, logLevel string) {
	c.Verbose = c.Verbose || verbose
	c.Quiet = c.Quiet || quiet
	c.NoColor = c.NoColor || noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// Variables already set in the environment are not overridden.
func loadEnvFiles() {
	for _, envFile := range []string{".env.local", ".env"} {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
