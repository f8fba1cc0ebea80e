package telegram

import (
	"context"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

const (
	adminBroadcast = "Broadcast"
	adminStats     = "Stats"
	adminFunnel    = "Funnel"

	chatQueueSize = 32

	msgFormClosed = "That form is no longer open. Pick a property to start again."
	msgFinishForm = "Please answer the remaining questions first."
)

type Handler struct {
	bot         Bot
	backend     usecase.ListingBackend
	visitors    domain.VisitorRegistry
	broadcastUC *usecase.BroadcastUsecase
	funnel      *usecase.FunnelUsecase
	adminIDs    map[int64]struct{}
	imageBase   string
	timeout     time.Duration
	logger      *zap.Logger

	mu            sync.Mutex
	chats         map[int64]*chat
	bcastSessions map[int64]*usecase.BroadcastSession
	wg            sync.WaitGroup
}

// chat is one visitor's conversation plus the queue that keeps their updates in order.
type chat struct {
	conv  *usecase.Conversation
	view  *chatView
	queue chan tgbotapi.Update
	once  sync.Once
}

type HandlerOption func(*Handler)

func WithAdmins(ids map[int64]struct{}) HandlerOption {
	return func(h *Handler) { h.adminIDs = ids }
}

func WithBroadcast(uc *usecase.BroadcastUsecase) HandlerOption {
	return func(h *Handler) { h.broadcastUC = uc }
}

func WithFunnel(f *usecase.FunnelUsecase) HandlerOption {
	return func(h *Handler) { h.funnel = f }
}

func WithImageBaseURL(base string) HandlerOption {
	return func(h *Handler) { h.imageBase = base }
}

func WithRequestTimeout(d time.Duration) HandlerOption {
	return func(h *Handler) { h.timeout = d }
}

func WithLogger(l *zap.Logger) HandlerOption {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

func NewHandler(bot Bot, backend usecase.ListingBackend, visitors domain.VisitorRegistry, opts ...HandlerOption) *Handler {
	h := &Handler{
		bot:           bot,
		backend:       backend,
		visitors:      visitors,
		adminIDs:      map[int64]struct{}{},
		timeout:       usecase.DefaultRequestTimeout,
		logger:        zap.NewNop(),
		chats:         make(map[int64]*chat),
		bcastSessions: make(map[int64]*usecase.BroadcastSession),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run consumes updates until ctx is cancelled or the channel closes, then waits for in-flight work.
// Updates of one chat are handled in order; submit clicks bypass the queue so a double click
// meets the conversation's in-flight guard instead of waiting behind the first request.
func (h *Handler) Run(ctx context.Context, updates <-chan tgbotapi.Update) {
	ctx, cancel := context.WithCancel(ctx)
	defer h.wg.Wait()
	defer cancel()
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-updates:
			if !ok {
				return
			}
			h.dispatch(ctx, u)
		}
	}
}

func (h *Handler) dispatch(ctx context.Context, u tgbotapi.Update) {
	chatID, _, ok := updateChat(u)
	if !ok {
		return
	}
	if u.CallbackQuery != nil && u.CallbackQuery.Data == cbFormSubmit {
		h.wg.Add(1)
		go func() {
			defer h.wg.Done()
			h.HandleUpdate(ctx, u)
		}()
		return
	}
	c := h.chatFor(chatID)
	c.once.Do(func() {
		h.wg.Add(1)
		go h.worker(ctx, c)
	})
	select {
	case c.queue <- u:
	default:
		h.logger.Warn("chat queue full, dropping update", zap.Int64("chat_id", chatID), zap.Int("update_id", u.UpdateID))
	}
}

func (h *Handler) worker(ctx context.Context, c *chat) {
	defer h.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case u := <-c.queue:
			h.HandleUpdate(ctx, u)
		}
	}
}

func updateChat(u tgbotapi.Update) (int64, string, bool) {
	switch {
	case u.Message != nil:
		return u.Message.Chat.ID, u.Message.Text, true
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		return u.CallbackQuery.Message.Chat.ID, u.CallbackQuery.Data, true
	}
	return 0, "", false
}

// HandleUpdate processes a single update synchronously.
func (h *Handler) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	chatID, text, ok := updateChat(u)
	if !ok {
		return
	}
	if u.CallbackQuery != nil {
		if _, err := h.bot.Request(tgbotapi.NewCallback(u.CallbackQuery.ID, "")); err != nil {
			h.logger.Debug("answer callback failed", zap.Error(err))
		}
	}

	if !h.isAdmin(chatID) {
		if err := h.visitors.SaveUser(chatID); err != nil {
			h.logger.Warn("user save failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
	} else if h.handleAdmin(ctx, chatID, u, text) {
		return
	}

	c := h.chatFor(chatID)
	var err error
	switch {
	case u.CallbackQuery != nil:
		err = h.handleCallback(ctx, c, text)
	case text == "/start":
		c.conv.Start()
	case text != "" && c.view.fillForm(text):
	default:
		err = c.conv.HandleMessage(ctx, text)
	}
	h.logResult(chatID, err)
}

func (h *Handler) handleCallback(ctx context.Context, c *chat, data string) error {
	switch {
	case strings.HasPrefix(data, cbInterest):
		c.conv.SelectListingForInterest(domain.ListingID(strings.TrimPrefix(data, cbInterest)))
	case strings.HasPrefix(data, cbVisit):
		c.conv.SelectListingForVisit(domain.ListingID(strings.TrimPrefix(data, cbVisit)))
	case data == cbFormCancel:
		err := c.conv.Cancel()
		if errors.Is(err, usecase.ErrNoActiveForm) {
			c.view.Say(msgFormClosed)
		}
		return err
	case data == cbFormSubmit:
		return h.submitForm(ctx, c)
	}
	return nil
}

func (h *Handler) submitForm(ctx context.Context, c *chat) error {
	kind, fields, ok := c.view.openForm()
	if !ok {
		if c.view.collecting() {
			c.view.Say(msgFinishForm)
			return nil
		}
		c.view.Say(msgFormClosed)
		return usecase.ErrNoActiveForm
	}
	var err error
	if kind == usecase.FormBooking {
		err = c.conv.SubmitBooking(ctx, fields)
	} else {
		err = c.conv.SubmitInterest(ctx, fields.ContactFields)
	}
	switch {
	case err == nil:
		c.view.closeForm()
	case errors.Is(err, usecase.ErrNoActiveForm):
		c.view.closeForm()
		c.view.Say(msgFormClosed)
	}
	return err
}

func (h *Handler) logResult(chatID int64, err error) {
	switch {
	case err == nil:
	case usecase.IsUserError(err):
		h.logger.Debug("conversation input rejected", zap.Int64("chat_id", chatID), zap.Error(err))
	default:
		h.logger.Warn("conversation backend call failed", zap.Int64("chat_id", chatID), zap.Error(err))
	}
}

func (h *Handler) chatFor(chatID int64) *chat {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c, ok := h.chats[chatID]; ok {
		return c
	}
	view := newChatView(h.bot, chatID, h.imageBase, h.logger)
	opts := []usecase.Option{
		usecase.WithRequestTimeout(h.timeout),
		usecase.WithLogger(h.logger.With(zap.Int64("chat_id", chatID))),
	}
	if h.funnel != nil {
		opts = append(opts, usecase.WithObserver(h.funnel.Tracker(chatID)))
	}
	c := &chat{
		conv:  usecase.NewConversation(h.backend, view, opts...),
		view:  view,
		queue: make(chan tgbotapi.Update, chatQueueSize),
	}
	h.chats[chatID] = c
	return c
}

// Step exposes a chat's current step, mainly for diagnostics.
func (h *Handler) Step(chatID int64) (usecase.Step, bool) {
	h.mu.Lock()
	c, ok := h.chats[chatID]
	h.mu.Unlock()
	if !ok {
		return "", false
	}
	return c.conv.Step(), true
}

func (h *Handler) isAdmin(chatID int64) bool {
	_, ok := h.adminIDs[chatID]
	return ok
}

// handleAdmin runs the admin menu and broadcast flow. It returns false when the update
// should go to the regular conversation instead.
func (h *Handler) handleAdmin(ctx context.Context, chatID int64, u tgbotapi.Update, text string) bool {
	switch text {
	case "/admin":
		msg := tgbotapi.NewMessage(chatID, "Admin menu")
		msg.ReplyMarkup = inlineKeyboard([]string{adminBroadcast, adminStats, adminFunnel})
		h.send(msg)
		h.logger.Info("admin opened menu", zap.Int64("chat_id", chatID))
		return true
	case adminBroadcast:
		if h.broadcastUC == nil {
			h.sendText(chatID, "Broadcast is unavailable")
			return true
		}
		h.sendText(chatID, h.broadcastUC.Start(h.broadcastSession(chatID)))
		h.logger.Info("broadcast started", zap.Int64("chat_id", chatID))
		return true
	case adminStats:
		if h.broadcastUC == nil {
			h.sendText(chatID, "Broadcast is unavailable")
			return true
		}
		h.sendText(chatID, h.broadcastUC.StatsSummary(5))
		return true
	case adminFunnel:
		h.sendFunnel(chatID)
		return true
	}

	if h.broadcastUC == nil {
		return false
	}
	s := h.broadcastSession(chatID)
	switch s.Phase {
	case usecase.PhaseCompose:
		reply, opts, _ := h.broadcastUC.Compose(s, draftFrom(u.Message, text))
		h.sendWithOptions(chatID, reply, opts)
		return true
	case usecase.PhaseConfirm:
		reply, err := h.broadcastUC.Confirm(ctx, s, text)
		if err != nil {
			h.logger.Error("broadcast failed", zap.Int64("chat_id", chatID), zap.Error(err))
		}
		h.sendText(chatID, reply)
		return true
	}
	return false
}

func draftFrom(m *tgbotapi.Message, text string) usecase.Draft {
	if m != nil && len(m.Photo) > 0 {
		// the last size is the largest
		return usecase.Draft{Text: m.Caption, PhotoFileID: m.Photo[len(m.Photo)-1].FileID}
	}
	return usecase.Draft{Text: text}
}

func (h *Handler) sendFunnel(chatID int64) {
	if h.funnel == nil {
		h.sendText(chatID, "Funnel is unavailable")
		return
	}
	labels, values, err := h.funnel.GraphData()
	if err == nil {
		err = h.sendFunnelChart(chatID, labels, values)
	}
	if err != nil {
		h.logger.Error("funnel chart failed", zap.Error(err))
		h.sendText(chatID, h.funnel.Chart())
	}
}

func (h *Handler) broadcastSession(chatID int64) *usecase.BroadcastSession {
	h.mu.Lock()
	defer h.mu.Unlock()
	s, ok := h.bcastSessions[chatID]
	if !ok {
		s = &usecase.BroadcastSession{Phase: usecase.PhaseIdle}
		h.bcastSessions[chatID] = s
	}
	return s
}

func (h *Handler) send(c tgbotapi.Chattable) {
	if _, err := h.bot.Send(c); err != nil {
		h.logger.Error("telegram send failed", zap.Error(err))
	}
}

func (h *Handler) sendText(chatID int64, text string) {
	h.send(tgbotapi.NewMessage(chatID, text))
}

func (h *Handler) sendWithOptions(chatID int64, text string, opts []string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if len(opts) > 0 {
		msg.ReplyMarkup = inlineKeyboard(opts)
	}
	h.send(msg)
}
