package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
)

// Step is the phase of a conversation; it decides how the next input is read.
type Step string

const (
	StepInitial           Step = "initial"
	StepAskBudget         Step = "ask_budget"
	StepAskInterest       Step = "ask_interest"
	StepCollectInfo       Step = "collect_info"
	StepBookVisit         Step = "book_visit"
	StepAskMoreProperties Step = "ask_more_properties"
)

const DefaultRequestTimeout = 10 * time.Second

func (k FormKind) step() Step {
	if k == FormBooking {
		return StepBookVisit
	}
	return StepCollectInfo
}

type action string

const (
	actionSearch   action = "search"
	actionInterest action = "interest"
	actionBooking  action = "booking"
)

// Observer is told about step changes and successful submissions. It is called after the
// conversation lock is released, so it may do I/O.
type Observer interface {
	StepReached(step Step)
	LeadSubmitted(kind FormKind)
}

// ContactFields are the fields of the interest form.
type ContactFields struct {
	Name  string
	Email string
	Phone string
}

func (f ContactFields) trimmed() ContactFields {
	return ContactFields{
		Name:  strings.TrimSpace(f.Name),
		Email: strings.TrimSpace(f.Email),
		Phone: strings.TrimSpace(f.Phone),
	}
}

func (f ContactFields) missing() []string {
	var out []string
	if f.Name == "" {
		out = append(out, "name")
	}
	if f.Email == "" {
		out = append(out, "email")
	}
	if f.Phone == "" {
		out = append(out, "phone")
	}
	return out
}

// BookingFields are the fields of the visit form.
type BookingFields struct {
	ContactFields
	Date string
	Time string
}

func (f BookingFields) trimmed() BookingFields {
	return BookingFields{
		ContactFields: f.ContactFields.trimmed(),
		Date:          strings.TrimSpace(f.Date),
		Time:          strings.TrimSpace(f.Time),
	}
}

func (f BookingFields) missing() []string {
	out := f.ContactFields.missing()
	if f.Date == "" {
		out = append(out, "date")
	}
	if f.Time == "" {
		out = append(out, "time")
	}
	return out
}

// Conversation is the lead flow controller for one visitor.
type Conversation struct {
	backend  ListingBackend
	view     View
	logger   *zap.Logger
	timeout  time.Duration
	observer Observer

	mu       sync.Mutex
	step     Step
	selected domain.ListingID
	form     MessageHandle
	inflight map[action]struct{}
	// gen changes on every transition. A request whose gen is stale when it returns
	// must not move the conversation.
	gen    uint64
	events []event
}

// event is an observer notification queued under the lock: a step, or a lead when kind is set.
type event struct {
	step Step
	kind FormKind
}

type Option func(*Conversation)

func WithRequestTimeout(d time.Duration) Option {
	return func(c *Conversation) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(c *Conversation) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithObserver(o Observer) Option {
	return func(c *Conversation) { c.observer = o }
}

func NewConversation(backend ListingBackend, view View, opts ...Option) *Conversation {
	c := &Conversation{
		backend:  backend,
		view:     view,
		logger:   zap.NewNop(),
		timeout:  DefaultRequestTimeout,
		step:     StepInitial,
		inflight: make(map[action]struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Conversation) Step() Step {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.step
}

func (c *Conversation) SelectedListingID() domain.ListingID {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.selected
}

// Start greets the visitor and asks for a budget, closing any open form.
func (c *Conversation) Start() {
	c.mu.Lock()
	defer c.unlock()
	c.dropFormLocked()
	c.moveLocked(StepAskBudget)
	c.view.Say(msgGreeting)
}

// HandleMessage interprets typed text according to the current step.
func (c *Conversation) HandleMessage(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	lower := strings.ToLower(text)

	c.mu.Lock()
	switch c.step {
	case StepAskBudget:
		c.unlock()
		return c.searchBudget(ctx, text)
	case StepInitial:
		if containsAny(lower, "hi", "hello") {
			c.moveLocked(StepAskBudget)
			c.unlock()
			c.view.Say(msgWelcomeBack)
			return nil
		}
		if looksNumeric(text) {
			c.unlock()
			return c.searchBudget(ctx, text)
		}
		c.moveLocked(StepAskBudget)
		c.unlock()
		c.view.Say(msgGreeting)
		return nil
	case StepAskMoreProperties:
		if containsAny(lower, "yes", "more", "another") {
			c.moveLocked(StepAskBudget)
			c.unlock()
			c.view.Say(msgUpdatedBudget)
			return nil
		}
		c.moveLocked(StepInitial)
		c.unlock()
		c.view.Say(msgClosing)
		return nil
	case StepAskInterest:
		c.unlock()
		c.view.Say(msgPickListing)
		return nil
	default:
		c.unlock()
		c.view.Say(msgCompleteForm)
		return nil
	}
}

func (c *Conversation) searchBudget(ctx context.Context, text string) error {
	budget, ok := ParseBudget(text)
	if !ok {
		c.view.Say(msgInvalidBudget)
		return ErrInvalidBudget
	}
	if !c.begin(actionSearch) {
		return ErrRequestInFlight
	}
	defer c.end(actionSearch)
	gen := c.generation()

	loading := c.view.ShowTransient(msgSearching)
	listings, err := c.search(ctx, budget)
	c.view.Remove(loading)

	c.mu.Lock()
	defer c.unlock()
	if c.gen != gen {
		c.logger.Debug("search result dropped, conversation moved on", zap.Float64("budget", budget), zap.Error(err))
		return ErrSuperseded
	}
	if err != nil {
		c.logger.Warn("listing search failed", zap.Float64("budget", budget), zap.Error(err))
		c.view.Say(msgSearchFailed)
		return errors.Wrap(err, "search listings")
	}
	if len(listings) == 0 {
		c.moveLocked(StepAskBudget)
		c.view.Say(msgNoListings)
		return nil
	}
	c.view.ShowListings(msgListingsIntro, listings)
	c.moveLocked(StepAskInterest)
	return nil
}

func (c *Conversation) search(ctx context.Context, budget float64) ([]domain.Listing, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.backend.SearchListings(ctx, budget)
}

// SelectListingForInterest opens the contact form for a listing.
func (c *Conversation) SelectListingForInterest(id domain.ListingID) {
	c.openForm(FormInterest, id)
}

// SelectListingForVisit opens the booking form for a listing.
func (c *Conversation) SelectListingForVisit(id domain.ListingID) {
	c.openForm(FormBooking, id)
}

func (c *Conversation) openForm(kind FormKind, id domain.ListingID) {
	c.mu.Lock()
	defer c.unlock()
	c.dropFormLocked()
	c.selected = id
	c.form = c.view.ShowForm(kind, id)
	c.moveLocked(kind.step())
}

// Cancel discards the open form and goes back to listing selection.
func (c *Conversation) Cancel() error {
	c.mu.Lock()
	defer c.unlock()
	if c.step != StepCollectInfo && c.step != StepBookVisit {
		return ErrNoActiveForm
	}
	c.dropFormLocked()
	c.moveLocked(StepAskInterest)
	c.view.Say(msgWhatNext)
	return nil
}

// SubmitInterest sends the contact form for the selected listing.
func (c *Conversation) SubmitInterest(ctx context.Context, fields ContactFields) error {
	fields = fields.trimmed()
	return c.submit(ctx, FormInterest, fields.missing(), func(ctx context.Context, id domain.ListingID) (domain.SubmitResult, error) {
		return c.backend.SubmitInterest(ctx, domain.InterestRequest{
			ListingID: id,
			Name:      fields.Name,
			Email:     fields.Email,
			Phone:     fields.Phone,
		})
	})
}

// SubmitBooking sends the visit form for the selected listing.
func (c *Conversation) SubmitBooking(ctx context.Context, fields BookingFields) error {
	fields = fields.trimmed()
	return c.submit(ctx, FormBooking, fields.missing(), func(ctx context.Context, id domain.ListingID) (domain.SubmitResult, error) {
		return c.backend.BookVisit(ctx, domain.VisitRequest{
			ListingID: id,
			Name:      fields.Name,
			Email:     fields.Email,
			Phone:     fields.Phone,
			Date:      fields.Date,
			Time:      fields.Time,
		})
	})
}

type submitFunc func(ctx context.Context, id domain.ListingID) (domain.SubmitResult, error)

func (c *Conversation) submit(ctx context.Context, kind FormKind, missing []string, call submitFunc) error {
	texts := formTexts[kind]
	act := actionInterest
	if kind == FormBooking {
		act = actionBooking
	}

	if len(missing) > 0 {
		err := &ValidationError{Fields: missing}
		c.view.Alert(msgMissingFields + ": " + strings.Join(missing, ", "))
		return err
	}

	c.mu.Lock()
	if c.step != kind.step() {
		c.mu.Unlock()
		return ErrNoActiveForm
	}
	id := c.selected
	gen := c.gen
	c.mu.Unlock()

	if !c.begin(act) {
		return ErrRequestInFlight
	}
	defer c.end(act)

	pending := c.view.ShowTransient(texts.pending)
	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	res, err := call(callCtx, id)
	cancel()
	c.view.Remove(pending)

	c.mu.Lock()
	defer c.unlock()
	if c.gen != gen {
		return c.lateResultLocked(kind, id, res, err)
	}
	if err != nil {
		c.logger.Warn("lead submission failed",
			zap.String("kind", string(kind)), zap.String("listing_id", id.String()), zap.Error(err))
		c.view.Say(texts.failed)
		return errors.Wrapf(err, "submit %s", kind)
	}
	if !res.OK() {
		msg := strings.TrimSpace(res.Message)
		if msg == "" {
			msg = texts.failed
		}
		c.view.Say(msg)
		return &RejectedError{Status: res.Status, Message: res.Message}
	}

	c.form = ""
	c.moveLocked(StepAskMoreProperties)
	c.events = append(c.events, event{kind: kind})
	c.view.Say(res.Message)
	c.view.Say(texts.askAgain)
	return nil
}

// lateResultLocked handles a submission that returned after the visitor opened another form or
// restarted. A recorded lead is still announced, but the current step and form are left alone.
func (c *Conversation) lateResultLocked(kind FormKind, id domain.ListingID, res domain.SubmitResult, err error) error {
	c.logger.Debug("submission result arrived after the conversation moved on",
		zap.String("kind", string(kind)), zap.String("listing_id", id.String()), zap.Error(err))
	if err == nil && res.OK() {
		c.events = append(c.events, event{kind: kind})
		c.view.Say(res.Message)
	}
	return ErrSuperseded
}

func (c *Conversation) begin(a action) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[a]; busy {
		return false
	}
	c.inflight[a] = struct{}{}
	return true
}

func (c *Conversation) end(a action) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, a)
}

func (c *Conversation) dropFormLocked() {
	if c.form != "" {
		c.view.Remove(c.form)
		c.form = ""
	}
}

func (c *Conversation) moveLocked(s Step) {
	c.step = s
	c.gen++
	c.events = append(c.events, event{step: s})
}

func (c *Conversation) generation() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// unlock releases the lock, then hands the queued events to the observer.
func (c *Conversation) unlock() {
	events := c.events
	c.events = nil
	c.mu.Unlock()
	if c.observer == nil {
		return
	}
	for _, e := range events {
		if e.kind != "" {
			c.observer.LeadSubmitted(e.kind)
			continue
		}
		c.observer.StepReached(e.step)
	}
}
