package bot

import (
	"fmt"
	"strings"

	"github.com/lithammer/dedent"
)

func formatReplyText(text string, a ...any) string {
	return fmt.Sprintf(strings.TrimSpace(dedent.Dedent(text)), a...)
}

func parseCommand(s string) (string, []string) {
	parts := strings.Fields(s)
	if len(parts) == 0 {
		return "", nil
	}
	// Commands in groups arrive as /cmd@botname.
	command, _, _ := strings.Cut(parts[0], "@")
	return command, parts[1:]
}

// pluralize returns count followed by the matching noun form.
func pluralize(singular, plural string, count int) string {
	if count == 1 {
		return fmt.Sprintf("%d %s", count, singular)
	}
	return fmt.Sprintf("%d %s", count, plural)
}

// commandArgs returns everything after the command word, untokenized.
func commandArgs(s string) string {
	_, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	return strings.TrimSpace(rest)
}

// escapeMarkdown escapes special characters for Telegram Markdown V1
func escapeMarkdown(text string) string {
	text = strings.ReplaceAll(text, "*", "\\*")
	text = strings.ReplaceAll(text, "_", "\\_")
	text = strings.ReplaceAll(text, "`", "\\`")
	text = strings.ReplaceAll(text, "[", "\\[")
	return text
}
