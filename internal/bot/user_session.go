package bot

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/raine/platescan/internal/alert"
	"github.com/rs/zerolog/log"
)

// SessionMessage is one queued update for a chat's worker.
type SessionMessage struct {
	Type string // "photo" or "text"
	Ctx  context.Context
	Done chan struct{} // closed once handled, set by SendSync

	Message *tgbotapi.Message
	Text    string
}

// MessageSender is the part of the Telegram API a session replies through.
type MessageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// MessageHandler handles updates taken off a session's inbox.
type MessageHandler interface {
	HandleSessionMessage(ctx context.Context, session *UserSession, msg SessionMessage)
}

// stitchBuffer holds the item photos of a meal being stitched.
type stitchBuffer struct {
	images  [][]byte
	started time.Time
}

// UserSession is the per-chat state: the stitch buffer plus an inbox drained
// in order by one worker goroutine. Handlers run on that goroutine and need no
// locks, except Alert, which meal-stitch item goroutines call concurrently.
type UserSession struct {
	userId int64
	sender MessageSender
	mu     sync.Mutex

	inbox   chan SessionMessage
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	handler MessageHandler

	stitch *stitchBuffer
}

var _ alert.Sink = (*UserSession)(nil)

// storeID is the user id used with history and medication stores.
func (s *UserSession) storeID() string {
	return strconv.FormatInt(s.userId, 10)
}

// --- Meal stitch state ---

func (s *UserSession) isStitching() bool {
	return s.stitch != nil
}

func (s *UserSession) startStitch() {
	s.stitch = &stitchBuffer{started: time.Now()}
	log.Info().Int64("userId", s.userId).Msg("started meal stitch")
}

// takeStitch ends stitching and returns the collected images.
func (s *UserSession) takeStitch() [][]byte {
	if s.stitch == nil {
		return nil
	}
	images := s.stitch.images
	s.stitch = nil
	return images
}

func (s *UserSession) reset() {
	log.Info().Int64("userId", s.userId).Msg("reset user session")
	s.stitch = nil
}

// --- Replies ---

// Alert sends a failure notice to the chat.
func (s *UserSession) Alert(a alert.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replyPlain(fmt.Sprintf(MsgAlertFmt, a.Title, a.Message))
}

func (s *UserSession) replyWithError(err error) tgbotapi.Message {
	log.Error().Stack().Err(err).Send()
	return s.replyPlain(fmt.Sprintf(MsgUnexpectedErr, err))
}

// sendTypingAction sends a "typing" chat action to show the user that the bot is processing.
func (s *UserSession) sendTypingAction() {
	action := tgbotapi.NewChatAction(s.userId, tgbotapi.ChatTyping)
	// sendChatAction returns a boolean, not a Message
	_, err := s.sender.Request(action)
	if err != nil {
		log.Debug().Err(err).Int64("userId", s.userId).Msg("failed to send typing action")
	}
}

// startTypingLoop sends a typing action every 4 seconds until the context is
// cancelled. Run it in a goroutine during long analyses.
func (s *UserSession) startTypingLoop(ctx context.Context) {
	s.sendTypingAction()

	ticker := time.NewTicker(4 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sendTypingAction()
		}
	}
}

func (s *UserSession) replyWithMessage(msg tgbotapi.MessageConfig) tgbotapi.Message {
	msg.ChatID = s.userId
	sent, err := s.sender.Send(msg)
	if err != nil {
		log.Error().Stack().
			Interface("msg", msg).
			Err(fmt.Errorf("failed to send reply message: %w", err)).Send()
	} else {
		log.Info().Int64("userId", s.userId).Int("messageId", sent.MessageID).Msg("sent message")
	}

	return sent
}

// reply sends Markdown text.
func (s *UserSession) reply(text string, a ...any) tgbotapi.Message {
	return s.replyWithMessage(tgbotapi.MessageConfig{
		Text:      formatReplyText(text, a...),
		ParseMode: tgbotapi.ModeMarkdown,
	})
}

// replyPlain sends text without parse mode. Analysis output is model-written
// and not safe to parse as Markdown.
func (s *UserSession) replyPlain(text string) tgbotapi.Message {
	return s.replyWithMessage(tgbotapi.MessageConfig{Text: text})
}

// --- Worker ---

// StartWorker launches the inbox goroutine. Set the handler first.
func (s *UserSession) StartWorker() {
	s.wg.Add(1)
	go s.work()
}

func (s *UserSession) SetHandler(handler MessageHandler) {
	s.handler = handler
}

func (s *UserSession) work() {
	defer s.wg.Done()

	for {
		select {
		case msg := <-s.inbox:
			s.handle(msg)
		case <-s.ctx.Done():
			s.releaseQueued()
			return
		}
	}
}

// releaseQueued unblocks SendSync callers whose updates were never handled.
func (s *UserSession) releaseQueued() {
	for {
		select {
		case msg := <-s.inbox:
			msg.done()
		default:
			return
		}
	}
}

func (m SessionMessage) done() {
	if m.Done != nil {
		close(m.Done)
	}
}

func (s *UserSession) handle(msg SessionMessage) {
	defer msg.done()
	defer func() {
		if r := recover(); r != nil {
			log.Error().
				Int64("userId", s.userId).
				Interface("panic", r).
				Str("type", msg.Type).
				Msg("session handler panicked")
		}
	}()

	if s.handler == nil {
		log.Error().Int64("userId", s.userId).Msg("no handler for session")
		return
	}
	s.handler.HandleSessionMessage(msg.Ctx, s, msg)
}

// Send enqueues msg. After Stop the message is dropped.
func (s *UserSession) Send(msg SessionMessage) {
	select {
	case s.inbox <- msg:
	case <-s.ctx.Done():
		msg.done()
	}
}

// SendSync enqueues msg and blocks until the worker has handled or dropped it.
func (s *UserSession) SendSync(msg SessionMessage) {
	msg.Done = make(chan struct{})
	s.Send(msg)
	<-msg.Done
}

// Stop cancels the worker and waits for it to exit.
func (s *UserSession) Stop() {
	s.cancel()
	s.wg.Wait()
}
