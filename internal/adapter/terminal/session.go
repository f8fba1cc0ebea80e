package terminal

import (
	"bufio"
	"context"
	"io"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
	"github.com/dharmaRaavi/real-estate-chatbot/internal/usecase"
)

const helpText = `Commands:
  /interest <id>  I'm interested in a property
  /visit <id>     book a visit
  /retry          reopen the current form
  /cancel         close the current form
  /start          start over
  /quit           leave
Anything else is sent to the assistant.`

// Session drives one Conversation from line-based input.
type Session struct {
	conv   *usecase.Conversation
	view   *View
	in     io.Reader
	filler FormFiller
	logger *zap.Logger

	// contact details are offered again when the next form opens
	last usecase.BookingFields
}

func NewSession(conv *usecase.Conversation, view *View, in io.Reader, filler FormFiller, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	if filler == nil {
		filler = HuhFiller{}
	}
	return &Session{conv: conv, view: view, in: in, filler: filler, logger: logger}
}

// Run reads lines until EOF, /quit or ctx cancellation.
func (s *Session) Run(ctx context.Context) error {
	s.conv.Start()
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		if quit := s.handleLine(ctx, strings.TrimSpace(scanner.Text())); quit {
			return nil
		}
	}
	return errors.Wrap(scanner.Err(), "read input")
}

func (s *Session) handleLine(ctx context.Context, line string) bool {
	if !strings.HasPrefix(line, "/") {
		s.report(s.conv.HandleMessage(ctx, line))
		return false
	}
	cmd, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)
	switch cmd {
	case "/quit", "/exit":
		return true
	case "/help":
		s.view.Say(helpText)
	case "/start":
		s.conv.Start()
	case "/interest", "/visit":
		if arg == "" {
			s.view.Say("Usage: " + cmd + " <property id>")
			return false
		}
		if cmd == "/visit" {
			s.conv.SelectListingForVisit(domain.ListingID(arg))
		} else {
			s.conv.SelectListingForInterest(domain.ListingID(arg))
		}
		s.fill(ctx)
	case "/retry":
		if _, _, ok := s.view.OpenForm(); !ok {
			s.view.Say("There is no open form.")
			return false
		}
		s.fill(ctx)
	case "/cancel":
		if err := s.conv.Cancel(); errors.Is(err, usecase.ErrNoActiveForm) {
			s.view.Say("There is no open form.")
		}
	default:
		s.view.Say("Unknown command. Type /help for the list.")
	}
	return false
}

func (s *Session) fill(ctx context.Context) {
	kind, id, ok := s.view.OpenForm()
	if !ok {
		return
	}
	fields, err := s.filler.Fill(ctx, kind, id, s.last)
	if errors.Is(err, ErrFormAborted) {
		s.report(s.conv.Cancel())
		return
	}
	if err != nil {
		s.logger.Error("form failed", zap.Error(err))
		s.view.Say("Could not show the form. Type /retry or /cancel.")
		return
	}
	s.last = fields

	if kind == usecase.FormBooking {
		err = s.conv.SubmitBooking(ctx, fields)
	} else {
		err = s.conv.SubmitInterest(ctx, fields.ContactFields)
	}
	if err == nil {
		s.view.closeForm()
		return
	}
	s.report(err)
	if !errors.Is(err, usecase.ErrNoActiveForm) {
		s.view.Say("Type /retry to send the form again or /cancel to pick another property.")
	}
}

func (s *Session) report(err error) {
	if err == nil || usecase.IsUserError(err) {
		return
	}
	s.logger.Warn("conversation backend call failed", zap.Error(err))
}
