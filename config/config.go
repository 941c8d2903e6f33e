package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/raine/platescan/internal/foodapi"
)

const (
	AppName     = "platescan"
	EnvFileName = "config.env"
)

const (
	AnalyzerRemote = "remote"
	AnalyzerGemini = "gemini"

	StoreLocal  = "local"
	StoreRemote = "remote"

	DefaultDBPath = "platescan.db"
	DefaultUser   = "local"
)

// Config is the process configuration read from the environment.
type Config struct {
	CalculatorURL  string
	StitchBaseURL  string
	BackendBaseURL string
	HTTPTimeout    time.Duration

	Analyzer     string
	GeminiAPIKey string
	GeminiModel  string

	Store  string
	DBPath string

	BotToken        string
	AdminTelegramID int64

	// User is the history and medication owner for the CLI.
	User string
}

// FoodAPI returns the client options for the hosted endpoints.
func (c Config) FoodAPI() foodapi.ClientOpts {
	return foodapi.ClientOpts{
		CalculatorURL:  c.CalculatorURL,
		StitchBaseURL:  c.StitchBaseURL,
		BackendBaseURL: c.BackendBaseURL,
		Timeout:        c.HTTPTimeout,
	}
}

// Dir returns the application's config directory path.
func Dir() (string, error) {
	configBase, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config directory: %w", err)
	}
	return filepath.Join(configBase, AppName), nil
}

// FilePath returns the full path to the env file.
func FilePath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, EnvFileName), nil
}

// LoadEnvFile loads environment variables from the config file in the user's
// config directory. Errors are ignored since the file may not exist.
// Variables already set in the environment win.
func LoadEnvFile() {
	configPath, err := FilePath()
	if err != nil {
		return
	}
	_ = godotenv.Load(configPath)
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	c := Config{
		CalculatorURL:  envOr("CALCULATOR_URL", foodapi.DefaultCalculatorURL),
		StitchBaseURL:  envOr("STITCH_BASE_URL", foodapi.DefaultStitchBaseURL),
		BackendBaseURL: envOr("BACKEND_BASE_URL", foodapi.DefaultBackendBaseURL),
		HTTPTimeout:    foodapi.DefaultTimeout,
		Analyzer:       strings.ToLower(envOr("ANALYZER", AnalyzerRemote)),
		GeminiAPIKey:   os.Getenv("GEMINI_API_KEY"),
		GeminiModel:    os.Getenv("GEMINI_MODEL"),
		Store:          strings.ToLower(envOr("STORE", StoreLocal)),
		DBPath:         envOr("PLATESCAN_DB_PATH", DefaultDBPath),
		BotToken:       os.Getenv("BOT_TOKEN"),
		User:           envOr("PLATESCAN_USER", DefaultUser),
	}

	if v := os.Getenv("HTTP_TIMEOUT"); v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Config{}, fmt.Errorf("HTTP_TIMEOUT: %w", err)
		}
		c.HTTPTimeout = d
	}

	if v := os.Getenv("ADMIN_TELEGRAM_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("ADMIN_TELEGRAM_ID must be a valid integer: %w", err)
		}
		c.AdminTelegramID = id
	}

	switch c.Analyzer {
	case AnalyzerRemote, AnalyzerGemini:
	default:
		return Config{}, fmt.Errorf("ANALYZER must be %q or %q, got %q", AnalyzerRemote, AnalyzerGemini, c.Analyzer)
	}
	switch c.Store {
	case StoreLocal, StoreRemote:
	default:
		return Config{}, fmt.Errorf("STORE must be %q or %q, got %q", StoreLocal, StoreRemote, c.Store)
	}

	return c, nil
}

// parseTimeout accepts a Go duration ("90s") or whole seconds ("90").
func parseTimeout(v string) (time.Duration, error) {
	if secs, err := strconv.Atoi(v); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("must be positive")
		}
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, fmt.Errorf("must be positive")
	}
	return d, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// RequiredEnvVars lists the variables a surface needs for the configured
// analyzer. The bot additionally needs its token and admin id.
func RequiredEnvVars(analyzer string, bot bool) []string {
	var vars []string
	if bot {
		vars = append(vars, "BOT_TOKEN", "ADMIN_TELEGRAM_ID")
	}
	if analyzer == AnalyzerGemini {
		vars = append(vars, "GEMINI_API_KEY")
	}
	return vars
}

// CheckRequired returns the names of the given variables that are unset.
func CheckRequired(vars ...string) []string {
	var missing []string
	for _, v := range vars {
		if os.Getenv(v) == "" {
			missing = append(missing, v)
		}
	}
	return missing
}
