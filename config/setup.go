package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"time"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/go-resty/resty/v2"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/term"
)

var validateClient = resty.New().SetTimeout(10 * time.Second)

// IsInteractiveTerminal returns true if both stdin and stdout are TTYs.
func IsInteractiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// RunSetupWizard collects the bot configuration interactively, writes it to
// the env file and sets it in the current process. It returns false when the
// user aborts or the file cannot be written.
func RunSetupWizard() bool {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("99")).
		MarginBottom(1)

	fmt.Println()
	fmt.Println(titleStyle.Render("🍽  platescan - First-time Setup"))
	fmt.Println()

	var botToken, adminID, geminiKey string
	analyzer := AnalyzerRemote

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Telegram Bot Token").
				Description("Create a bot with @BotFather (/newbot) and paste the token it gives you").
				Value(&botToken).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("a bot token is needed to connect to Telegram")
					}
					return validateTelegramToken(s)
				}),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Admin Telegram User ID").
				Description("The admin can always use the bot and manage who else may. @userinfobot tells you your ID").
				Value(&adminID).
				Validate(validateAdminID),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Meal analyzer").
				Options(
					huh.NewOption("Hosted nutrition calculator", AnalyzerRemote),
					huh.NewOption("Gemini (your own API key)", AnalyzerGemini),
				).
				Value(&analyzer),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gemini API Key").
				Description("Used to analyze meal photos. Create one at https://aistudio.google.com/apikey").
				Value(&geminiKey).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("a Gemini API key is needed for the gemini analyzer")
					}
					return validateGeminiKey(s)
				}),
		).WithHideFunc(func() bool { return analyzer != AnalyzerGemini }),
	).WithTheme(huh.ThemeBase16())

	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			fmt.Println("\nSetup cancelled, nothing was saved.")
			return false
		}
		fmt.Printf("\nError: %v\n", err)
		return false
	}

	values := map[string]string{
		"BOT_TOKEN":         botToken,
		"ADMIN_TELEGRAM_ID": adminID,
		"ANALYZER":          analyzer,
	}
	if analyzer == AnalyzerGemini {
		values["GEMINI_API_KEY"] = geminiKey
	}

	configPath, err := FilePath()
	if err == nil {
		err = WriteEnvFile(configPath, values)
	}
	if err != nil {
		fmt.Printf("\nError saving configuration: %v\n", err)
		WaitOnWindows()
		return false
	}

	for k, v := range values {
		os.Setenv(k, v)
	}

	successStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	pathStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

	fmt.Println()
	fmt.Println(successStyle.Render("✓ Configuration saved"))
	fmt.Println(pathStyle.Render("  " + configPath))
	fmt.Println()
	fmt.Println("Starting platescan bot...")
	fmt.Println()

	return true
}

func validateAdminID(s string) error {
	if s == "" {
		return errors.New("user ID is required")
	}
	if _, err := strconv.ParseInt(s, 10, 64); err != nil {
		return errors.New("must be a number")
	}
	return nil
}

// validateTelegramToken asks Telegram getMe whether the token is live.
func validateTelegramToken(token string) error {
	var result struct {
		OK          bool   `json:"ok"`
		Description string `json:"description,omitempty"`
	}
	_, err := validateClient.R().
		SetResult(&result).
		SetError(&result).
		Get(fmt.Sprintf("https://api.telegram.org/bot%s/getMe", token))
	if err != nil {
		return errors.New("could not reach the API, check your connection")
	}
	if !result.OK {
		if result.Description != "" {
			return errors.New(result.Description)
		}
		return errors.New("token rejected by Telegram")
	}
	return nil
}

// validateGeminiKey validates a Gemini API key with the lightweight models
// list endpoint.
func validateGeminiKey(key string) error {
	var result struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	res, err := validateClient.R().
		SetQueryParam("key", key).
		SetError(&result).
		Get("https://generativelanguage.googleapis.com/v1beta/models")
	if err != nil {
		return errors.New("could not reach the API, check your connection")
	}
	if res.IsError() {
		if result.Error.Message != "" {
			return errors.New(result.Error.Message)
		}
		return fmt.Errorf("API key rejected (HTTP %d)", res.StatusCode())
	}
	return nil
}

// WriteEnvFile writes values to path with 0600 permissions, creating the
// directory if needed.
func WriteEnvFile(path string, values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	content, err := godotenv.Marshal(values)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(path, []byte(content+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// WaitOnWindows pauses so users can read errors before the console closes.
func WaitOnWindows() {
	if runtime.GOOS == "windows" {
		fmt.Println()
		fmt.Println("Press Enter to exit...")
		fmt.Scanln()
	}
}

// FatalWithWait logs an error and exits, waiting on Windows first.
func FatalWithWait(format string, args ...any) {
	log.Error().Msg(fmt.Sprintf(format, args...))
	WaitOnWindows()
	os.Exit(1)
}
