package telegram

import (
	"strconv"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

// Bot is the part of tgbotapi.BotAPI the adapter uses.
type Bot interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// chatView renders one chat's conversation and owns its form.
type chatView struct {
	bot       Bot
	chatID    int64
	imageBase string
	logger    *zap.Logger

	mu   sync.Mutex
	form *form
}

func newChatView(bot Bot, chatID int64, imageBase string, logger *zap.Logger) *chatView {
	return &chatView{bot: bot, chatID: chatID, imageBase: imageBase, logger: logger}
}

func (v *chatView) send(c tgbotapi.Chattable) (int, bool) {
	msg, err := v.bot.Send(c)
	if err != nil {
		v.logger.Error("telegram send failed", zap.Int64("chat_id", v.chatID), zap.Error(err))
		return 0, false
	}
	return msg.MessageID, true
}

func (v *chatView) Say(text string) {
	if text == "" {
		return
	}
	v.send(tgbotapi.NewMessage(v.chatID, text))
}

func (v *chatView) ShowTransient(text string) usecase.MessageHandle {
	id, ok := v.send(tgbotapi.NewMessage(v.chatID, text))
	if !ok {
		return ""
	}
	return usecase.MessageHandle(strconv.Itoa(id))
}

func (v *chatView) Remove(h usecase.MessageHandle) {
	if h == "" {
		return
	}
	v.mu.Lock()
	var ids []int
	if v.form != nil && v.form.handle == h {
		ids = v.form.messages
		v.form = nil
	}
	v.mu.Unlock()

	if ids == nil {
		id, err := strconv.Atoi(string(h))
		if err != nil {
			return
		}
		ids = []int{id}
	}
	for _, id := range ids {
		if _, err := v.bot.Request(tgbotapi.NewDeleteMessage(v.chatID, id)); err != nil {
			v.logger.Debug("telegram delete failed", zap.Int64("chat_id", v.chatID), zap.Int("message_id", id), zap.Error(err))
		}
	}
}

func (v *chatView) ShowListings(intro string, listings []domain.Listing) {
	v.Say(intro)
	for _, l := range listings {
		kb := cardKeyboard(l.ID)
		if u := imageURL(v.imageBase, l.Image); u != "" {
			photo := tgbotapi.NewPhoto(v.chatID, tgbotapi.FileURL(u))
			photo.Caption = cardCaption(l)
			photo.ReplyMarkup = kb
			_, err := v.bot.Send(photo)
			if err == nil {
				continue
			}
			v.logger.Warn("listing photo failed, sending text card", zap.String("listing_id", l.ID.String()), zap.Error(err))
		}
		msg := tgbotapi.NewMessage(v.chatID, cardCaption(l))
		msg.ReplyMarkup = kb
		v.send(msg)
	}
}

func (v *chatView) ShowForm(kind usecase.FormKind, id domain.ListingID) usecase.MessageHandle {
	f := newForm(kind, id)
	introID, _ := v.send(tgbotapi.NewMessage(v.chatID, f.intro()))
	f.handle = usecase.MessageHandle("form-" + strconv.Itoa(introID))
	if introID != 0 {
		f.messages = append(f.messages, introID)
	}
	if promptID, ok := v.send(v.promptMessage(f)); ok {
		f.messages = append(f.messages, promptID)
	}

	v.mu.Lock()
	v.form = f
	v.mu.Unlock()
	return f.handle
}

// Alert reports blank fields and sends the visitor back to the first one.
func (v *chatView) Alert(text string) {
	v.Say(text)
	v.mu.Lock()
	f := v.form
	var prompt *tgbotapi.MessageConfig
	if f != nil {
		f.reopen()
		if f.collecting() {
			msg := v.promptMessage(f)
			prompt = &msg
		}
	}
	v.mu.Unlock()
	if prompt != nil {
		v.send(*prompt)
	}
}

// promptMessage asks for the form's current field and offers Cancel.
func (v *chatView) promptMessage(f *form) tgbotapi.MessageConfig {
	msg := tgbotapi.NewMessage(v.chatID, f.prompt())
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("Cancel", cbFormCancel),
	))
	return msg
}

// fillForm feeds typed text to an open form. It returns false when no form is collecting.
func (v *chatView) fillForm(text string) bool {
	v.mu.Lock()
	f := v.form
	if f == nil || !f.collecting() {
		v.mu.Unlock()
		return false
	}
	done := f.accept(text)
	var msg tgbotapi.MessageConfig
	if done {
		msg = tgbotapi.NewMessage(v.chatID, f.summary())
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Cancel", cbFormCancel),
			tgbotapi.NewInlineKeyboardButtonData(f.submitLabel(), cbFormSubmit),
		))
	} else {
		msg = v.promptMessage(f)
	}
	v.mu.Unlock()

	if id, ok := v.send(msg); ok {
		v.mu.Lock()
		if v.form == f {
			f.messages = append(f.messages, id)
		}
		v.mu.Unlock()
	}
	return true
}

// collecting reports whether a form is still waiting for fields.
func (v *chatView) collecting() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.form != nil && v.form.collecting()
}

// openForm returns a copy of the fields of a fully filled form.
func (v *chatView) openForm() (usecase.FormKind, usecase.BookingFields, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.form == nil || v.form.collecting() {
		return "", usecase.BookingFields{}, false
	}
	return v.form.kind, v.form.booking(), true
}

func (v *chatView) closeForm() {
	v.mu.Lock()
	v.form = nil
	v.mu.Unlock()
}
