package bot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/platescan/internal/alert"
	"github.com/raine/platescan/internal/foodapi"
	"github.com/raine/platescan/internal/llm"
	"github.com/raine/platescan/internal/mealstitch"
	"github.com/raine/platescan/internal/models"
	"github.com/raine/platescan/internal/report"
	"github.com/raine/platescan/internal/storage"
	"github.com/rs/zerolog/log"
)

// Set at build time with -ldflags.
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const defaultHistoryLimit = 10

// BotAPI defines the interface for Telegram bot API operations.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Deps are the services the bot talks to. Stitch may be nil, which disables
// /stitch.
type Deps struct {
	AllowList   storage.AllowListStore
	History     storage.HistoryStore
	Medications storage.MedicationStore
	Analyzer    llm.Analyzer
	Stitch      mealstitch.Client
}

// Bot is the main Telegram bot handler.
type Bot struct {
	tg         BotAPI
	state      *BotState
	deps       Deps
	downloader *ImageDownloader
	adminID    int64
}

// NewBot creates a new Bot instance.
func NewBot(tg BotAPI, deps Deps, adminID int64) *Bot {
	b := &Bot{
		tg:         tg,
		deps:       deps,
		downloader: NewImageDownloader(),
		adminID:    adminID,
	}
	b.state = b.NewBotState()
	return b
}

// Shutdown stops every session worker.
func (b *Bot) Shutdown() {
	b.state.Shutdown()
}

// HandleUpdate is the main message router.
// It dispatches messages to the appropriate session worker for sequential processing.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, false)
}

// handleUpdateSync waits for message processing to complete.
func (b *Bot) handleUpdateSync(ctx context.Context, update tgbotapi.Update) {
	b.dispatchUpdate(ctx, update, true)
}

func (b *Bot) dispatchUpdate(ctx context.Context, update tgbotapi.Update, sync bool) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	userId := update.Message.From.ID

	// Before getUserSession so random user ids cannot allocate sessions
	if !b.isAllowed(userId) {
		return
	}

	session := b.state.getUserSession(userId)

	msgType := "text"
	if len(update.Message.Photo) > 0 {
		msgType = "photo"
	}
	log.Info().Int64("userId", userId).Str("type", msgType).Str("text", update.Message.Text).Msg("got message")

	msg := SessionMessage{Type: msgType, Ctx: ctx, Message: update.Message}
	if sync {
		session.SendSync(msg)
	} else {
		session.Send(msg)
	}
}

// isAllowed reports whether userId may use the bot. The admin always may.
func (b *Bot) isAllowed(userId int64) bool {
	if userId == b.adminID {
		return true
	}
	if b.deps.AllowList == nil {
		return false
	}
	allowed, err := b.deps.AllowList.IsUserAllowed(userId)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userId).Msg("whitelist check failed")
		return false
	}
	return allowed
}

// HandleSessionMessage is called by the session worker goroutine.
func (b *Bot) HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage) {
	switch msg.Type {
	case "photo":
		b.handlePhotoMessage(ctx, session, msg.Message)
	case "text":
		b.handleCommand(ctx, session, msg.Message)
	}
}

func (b *Bot) downloadLargestPhoto(ctx context.Context, message *tgbotapi.Message) ([]byte, string, error) {
	largestPhoto := message.Photo[len(message.Photo)-1]
	data, err := b.downloader.DownloadFromTelegramFileID(ctx, b.tg.GetFileDirectURL, largestPhoto.FileID)
	return data, largestPhoto.FileID, err
}

func (b *Bot) handlePhotoMessage(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	if session.isStitching() {
		b.handleStitchPhoto(ctx, session, message)
		return
	}

	image, fileID, err := b.downloadLargestPhoto(ctx, message)
	if err != nil {
		session.replyWithError(err)
		return
	}

	typingCtx, stopTyping := context.WithCancel(ctx)
	go session.startTypingLoop(typingCtx)
	defer stopTyping()

	meds := b.medications(ctx, session)
	result, err := b.deps.Analyzer.AnalyzeImage(ctx, image, meds)
	if err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("image analysis failed")
		session.Alert(alert.Alert{Title: alert.TitleAnalysisError, Message: alert.MsgAnalyzeImage})
		return
	}
	result.ImageRef = fileID

	session.replyPlain(report.Format(result))

	if b.deps.History == nil {
		return
	}
	if err := b.deps.History.SaveAnalysis(ctx, session.storeID(), result); err != nil {
		log.Error().Err(err).Int64("userId", session.userId).Msg("failed to save analysis")
		session.replyPlain(MsgHistorySaveFailed)
	}
}

// medications returns the user's medication list, or nil when it cannot be
// read. Analysis still runs without it.
func (b *Bot) medications(ctx context.Context, session *UserSession) []models.Medication {
	if b.deps.Medications == nil {
		return nil
	}
	meds, err := b.deps.Medications.ListMedications(ctx, session.storeID())
	if err != nil {
		log.Warn().Err(err).Int64("userId", session.userId).Msg("failed to load medications")
		return nil
	}
	return meds
}

func (b *Bot) handleCommand(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	command, args := parseCommand(message.Text)
	argsStr := commandArgs(message.Text)
	switch command {
	case "/start", "/help":
		session.replyPlain(formatReplyText(MsgHelp))
	case "/stitch":
		b.handleStitchCommand(session)
	case "/done":
		b.handleDoneCommand(ctx, session)
	case "/cancel":
		if !session.isStitching() {
			session.reply(MsgStitchNotActive)
			return
		}
		session.reset()
		session.reply(MsgStitchCancelled)
	case "/history":
		b.handleHistoryCommand(ctx, session, args)
	case "/delete":
		b.handleDeleteCommand(ctx, session, args)
	case "/meds":
		b.handleMedsCommand(ctx, session)
	case "/addmed":
		b.handleAddMedCommand(ctx, session, argsStr)
	case "/rmmed":
		b.handleRemoveMedCommand(ctx, session, args)
	case "/admin":
		b.handleAdminCommand(session, argsStr)
	case "/version":
		session.reply(MsgVersionInfo, Version, BuildTime)
	default:
		session.reply(MsgSendPhoto)
	}
}

// --- Meal stitch ---

func (b *Bot) handleStitchCommand(session *UserSession) {
	if b.deps.Stitch == nil {
		session.reply(MsgStitchUnavailable)
		return
	}
	session.startStitch()
	session.reply(MsgStitchStarted, mealstitch.MaxItems)
}

func (b *Bot) handleStitchPhoto(ctx context.Context, session *UserSession, message *tgbotapi.Message) {
	if len(session.stitch.images) >= mealstitch.MaxItems {
		session.reply(MsgStitchFull, mealstitch.MaxItems)
		return
	}
	image, _, err := b.downloadLargestPhoto(ctx, message)
	if err != nil {
		session.replyWithError(err)
		return
	}
	session.stitch.images = append(session.stitch.images, image)
	n := len(session.stitch.images)
	session.reply(MsgStitchAdded, n, pluralize("photo", "photos", n))
}

func (b *Bot) handleDoneCommand(ctx context.Context, session *UserSession) {
	if !session.isStitching() {
		session.reply(MsgStitchNotActive)
		return
	}
	if len(session.stitch.images) == 0 {
		session.reply(MsgStitchNoPhotos)
		return
	}
	images := session.takeStitch()

	session.reply(MsgStitchAnalyzing, pluralize("item", "items", len(images)))
	typingCtx, stopTyping := context.WithCancel(ctx)
	go session.startTypingLoop(typingCtx)
	defer stopTyping()

	meal, err := mealstitch.NewService(b.deps.Stitch, session).Analyze(ctx, images)
	if err != nil {
		// The service has already alerted the chat
		log.Error().Err(err).Int64("userId", session.userId).Msg("meal stitch failed")
		return
	}
	session.replyPlain(report.FormatMeal(meal.Parsed(), meal.Summary.Synthesis))
}

// --- History ---

func (b *Bot) handleHistoryCommand(ctx context.Context, session *UserSession, args []string) {
	limit := defaultHistoryLimit
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			session.reply(MsgHistoryUsage)
			return
		}
		limit = n
	}

	results, err := b.deps.History.ListAnalyses(ctx, session.storeID(), limit, 0)
	if err != nil {
		session.replyWithError(err)
		return
	}
	session.replyPlain(report.FormatHistory(results))
}

func (b *Bot) handleDeleteCommand(ctx context.Context, session *UserSession, args []string) {
	if len(args) != 1 {
		session.reply(MsgDeleteUsage)
		return
	}
	err := b.deps.History.DeleteAnalysis(ctx, session.storeID(), args[0])
	switch {
	case isNotFound(err):
		session.reply(MsgAnalysisNotFound)
	case err != nil:
		session.replyWithError(err)
	default:
		session.reply(MsgAnalysisDeleted)
	}
}

// isNotFound matches a missing row in either the local or the remote store.
func isNotFound(err error) bool {
	if errors.Is(err, storage.ErrNotFound) {
		return true
	}
	var apiErr *foodapi.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// --- Medications ---

func (b *Bot) handleMedsCommand(ctx context.Context, session *UserSession) {
	meds, err := b.deps.Medications.ListMedications(ctx, session.storeID())
	if err != nil {
		session.replyWithError(err)
		return
	}
	if len(meds) == 0 {
		session.reply(MsgNoMedications)
		return
	}
	var sb strings.Builder
	sb.WriteString(MsgMedicationsHeader)
	for i, m := range meds {
		fmt.Fprintf(&sb, "%d. %s\n   id: %s\n", i+1, m, m.ID)
	}
	session.replyPlain(strings.TrimRight(sb.String(), "\n"))
}

func (b *Bot) handleAddMedCommand(ctx context.Context, session *UserSession, args string) {
	med, err := models.ParseMedication(args)
	if err != nil {
		session.reply(MsgAddMedUsage)
		return
	}
	added, err := b.deps.Medications.AddMedication(ctx, session.storeID(), med)
	if err != nil {
		session.replyWithError(err)
		return
	}
	session.reply(MsgMedicationAdded, escapeMarkdown(added.String()))
}

func (b *Bot) handleRemoveMedCommand(ctx context.Context, session *UserSession, args []string) {
	if len(args) != 1 {
		session.reply(MsgRemoveMedUsage)
		return
	}
	err := b.deps.Medications.DeleteMedication(ctx, session.storeID(), args[0])
	switch {
	case isNotFound(err):
		session.reply(MsgMedicationMissing)
	case err != nil:
		session.replyWithError(err)
	default:
		session.reply(MsgMedicationRemoved)
	}
}

// --- Admin ---

// handleAdminCommand handles /admin command with subcommands.
// Only the admin user can use this command.
func (b *Bot) handleAdminCommand(session *UserSession, args string) {
	if session.userId != b.adminID {
		return // Silent drop for non-admin users
	}

	parts := strings.Fields(args)
	if len(parts) < 2 || parts[0] != "users" || b.deps.AllowList == nil {
		session.reply(MsgAdminUsage)
		return
	}
	b.handleAdminUsersCommand(session, parts[1], parts[2:])
}

func (b *Bot) handleAdminUsersCommand(session *UserSession, action string, args []string) {
	store := b.deps.AllowList
	switch action {
	case "add":
		if len(args) < 1 {
			session.reply(MsgAdminUserAddUsage)
			return
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			session.reply(MsgAdminUserInvalidID)
			return
		}
		if err := store.AddAllowedUser(userID, session.userId); err != nil {
			session.replyWithError(err)
			return
		}
		session.reply(MsgAdminUserAdded, userID)

	case "remove":
		if len(args) < 1 {
			session.reply(MsgAdminUserRemoveUsage)
			return
		}
		userID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			session.reply(MsgAdminUserInvalidID)
			return
		}
		if err := store.RemoveAllowedUser(userID); err != nil {
			session.replyWithError(err)
			return
		}
		session.reply(MsgAdminUserRemoved, userID)

	case "list":
		users, err := store.GetAllowedUsers()
		if err != nil {
			session.replyWithError(err)
			return
		}
		if len(users) == 0 {
			session.reply(MsgAdminNoUsers)
			return
		}
		var sb strings.Builder
		sb.WriteString(MsgAdminAllowedUsers)
		for _, u := range users {
			fmt.Fprintf(&sb, "• `%d` (added %s)\n", u.TelegramID, u.AddedAt.Format("2006-01-02"))
		}
		session.reply(sb.String())

	default:
		session.reply(MsgAdminUsage)
	}
}
