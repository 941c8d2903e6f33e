package bot

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Command defines a bot command with its handler key and Telegram menu description.
type Command struct {
	Name        string // Command name without slash (e.g., "start")
	Description string // Description shown in Telegram command menu
}

// botCommands is the single source of truth for command definitions.
var botCommands = []Command{
	{Name: "help", Description: "Show help"},
	{Name: "stitch", Description: "Analyze a meal item by item"},
	{Name: "done", Description: "Finish a stitched meal"},
	{Name: "cancel", Description: "Cancel a stitched meal"},
	{Name: "history", Description: "Show latest analyses"},
	{Name: "delete", Description: "Delete an analysis"},
	{Name: "meds", Description: "List medications"},
	{Name: "addmed", Description: "Add a medication"},
	{Name: "rmmed", Description: "Remove a medication"},
	{Name: "version", Description: "Show version info"},
}

// setMyCommands builds the request that registers botCommands.
func setMyCommands() tgbotapi.SetMyCommandsConfig {
	commands := make([]tgbotapi.BotCommand, len(botCommands))
	for i, cmd := range botCommands {
		commands[i] = tgbotapi.BotCommand{
			Command:     cmd.Name,
			Description: cmd.Description,
		}
	}
	return tgbotapi.NewSetMyCommands(commands...)
}

// RegisterCommands sets the bot's command menu in Telegram.
// This should be called once at startup.
func RegisterCommands(tg BotAPI) {
	config := setMyCommands()
	if _, err := tg.Request(config); err != nil {
		log.Error().Err(err).Msg("failed to set bot commands")
	} else {
		log.Info().Int("count", len(config.Commands)).Msg("registered bot commands")
	}
}
