package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dharmaRaavi/real-estate-chatbot/internal/domain"
)

type fakeView struct {
	mu       sync.Mutex
	said     []string
	alerts   []string
	listings [][]domain.Listing
	forms    []FormKind
	live     map[MessageHandle]string
	removed  []MessageHandle
	next     int
}

func newFakeView() *fakeView {
	return &fakeView{live: make(map[MessageHandle]string)}
}

func (v *fakeView) handle(text string) MessageHandle {
	v.next++
	h := MessageHandle(fmt.Sprintf("m%d", v.next))
	v.live[h] = text
	return h
}

func (v *fakeView) Say(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.said = append(v.said, text)
}

func (v *fakeView) ShowTransient(text string) MessageHandle {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.handle(text)
}

func (v *fakeView) Remove(h MessageHandle) {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.live, h)
	v.removed = append(v.removed, h)
}

func (v *fakeView) ShowListings(_ string, listings []domain.Listing) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.listings = append(v.listings, listings)
}

func (v *fakeView) ShowForm(kind FormKind, id domain.ListingID) MessageHandle {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.forms = append(v.forms, kind)
	return v.handle("form:" + string(kind) + ":" + id.String())
}

func (v *fakeView) Alert(text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.alerts = append(v.alerts, text)
}

func (v *fakeView) last() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if len(v.said) == 0 {
		return ""
	}
	return v.said[len(v.said)-1]
}

type fakeBackend struct {
	search   func(ctx context.Context, budget float64) ([]domain.Listing, error)
	interest func(ctx context.Context, req domain.InterestRequest) (domain.SubmitResult, error)
	visit    func(ctx context.Context, req domain.VisitRequest) (domain.SubmitResult, error)

	searchCalls   atomic.Int32
	interestCalls atomic.Int32
	visitCalls    atomic.Int32
	budgets       []float64
	visits        []domain.VisitRequest
}

func (b *fakeBackend) SearchListings(ctx context.Context, budget float64) ([]domain.Listing, error) {
	b.searchCalls.Add(1)
	b.budgets = append(b.budgets, budget)
	if b.search == nil {
		return sampleListings(), nil
	}
	return b.search(ctx, budget)
}

func (b *fakeBackend) SubmitInterest(ctx context.Context, req domain.InterestRequest) (domain.SubmitResult, error) {
	b.interestCalls.Add(1)
	if b.interest == nil {
		return domain.SubmitResult{Status: "success", Message: "Your interest has been submitted successfully!"}, nil
	}
	return b.interest(ctx, req)
}

func (b *fakeBackend) BookVisit(ctx context.Context, req domain.VisitRequest) (domain.SubmitResult, error) {
	b.visitCalls.Add(1)
	b.visits = append(b.visits, req)
	if b.visit == nil {
		return domain.SubmitResult{Status: "success", Message: "Visit booked"}, nil
	}
	return b.visit(ctx, req)
}

type recordingObserver struct {
	steps []Step
	leads []FormKind
}

func (o *recordingObserver) StepReached(s Step)       { o.steps = append(o.steps, s) }
func (o *recordingObserver) LeadSubmitted(k FormKind) { o.leads = append(o.leads, k) }

func sampleListings() []domain.Listing {
	return []domain.Listing{
		{ID: "1", Name: "Sunset Villa", Price: 480000, Location: "Miami, FL", Image: "villa.jpg"},
		{ID: "2", Name: "Lake House", Price: 510000, Location: "Austin, TX", Image: "lake.jpg"},
	}
}

var validContact = ContactFields{Name: "John Doe", Email: "john@example.com", Phone: "(123) 456-7890"}

// atStep drives a fresh conversation to step through its public operations.
func atStep(t *testing.T, step Step, b *fakeBackend, v *fakeView, opts ...Option) *Conversation {
	t.Helper()
	c := NewConversation(b, v, opts...)
	ctx := context.Background()
	switch step {
	case StepInitial:
	case StepAskBudget:
		c.Start()
	case StepAskInterest:
		require.NoError(t, c.HandleMessage(ctx, "500000"))
	case StepCollectInfo:
		require.NoError(t, c.HandleMessage(ctx, "500000"))
		c.SelectListingForInterest("1")
	case StepBookVisit:
		require.NoError(t, c.HandleMessage(ctx, "500000"))
		c.SelectListingForVisit("2")
	case StepAskMoreProperties:
		require.NoError(t, c.HandleMessage(ctx, "500000"))
		c.SelectListingForInterest("1")
		require.NoError(t, c.SubmitInterest(ctx, validContact))
	}
	require.Equal(t, step, c.Step())
	return c
}

func TestInitialBudgetTriggersSearch(t *testing.T) {
	b := &fakeBackend{}
	v := newFakeView()
	c := NewConversation(b, v)

	require.NoError(t, c.HandleMessage(context.Background(), "500000"))

	assert.Equal(t, StepAskInterest, c.Step())
	require.Equal(t, []float64{500000}, b.budgets)
	require.Len(t, v.listings, 1)
	assert.Len(t, v.listings[0], 2)
	assert.Empty(t, v.live, "loading indicator must be removed")
}

func TestInitialGreetings(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"hi there", msgWelcomeBack},
		{"HELLO", msgWelcomeBack},
		{"what can you do", msgGreeting},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			b := &fakeBackend{}
			v := newFakeView()
			c := NewConversation(b, v)
			require.NoError(t, c.HandleMessage(context.Background(), tc.text))
			assert.Equal(t, StepAskBudget, c.Step())
			assert.Equal(t, tc.want, v.last())
			assert.Zero(t, b.searchCalls.Load())
		})
	}
}

func TestInitialCurrencyAmountSearches(t *testing.T) {
	b := &fakeBackend{}
	c := NewConversation(b, newFakeView())
	require.NoError(t, c.HandleMessage(context.Background(), "$750,000"))
	assert.Equal(t, []float64{750000}, b.budgets)
	assert.Equal(t, StepAskInterest, c.Step())
}

func TestInvalidBudgetKeepsStep(t *testing.T) {
	for _, text := range []string{"lots of money", "...", "no idea!"} {
		t.Run(text, func(t *testing.T) {
			b := &fakeBackend{}
			v := newFakeView()
			c := atStep(t, StepAskBudget, b, v)

			err := c.HandleMessage(context.Background(), text)
			require.ErrorIs(t, err, ErrInvalidBudget)
			assert.Equal(t, StepAskBudget, c.Step())
			assert.Equal(t, msgInvalidBudget, v.last())
			assert.Zero(t, b.searchCalls.Load())
		})
	}
}

func TestEmptySearchReturnsToBudget(t *testing.T) {
	b := &fakeBackend{search: func(context.Context, float64) ([]domain.Listing, error) { return nil, nil }}
	v := newFakeView()
	c := NewConversation(b, v)

	require.NoError(t, c.HandleMessage(context.Background(), "10"))
	assert.Equal(t, StepAskBudget, c.Step())
	assert.Equal(t, msgNoListings, v.last())
	assert.Empty(t, v.listings)

	// numeric input is accepted again
	b.search = nil
	require.NoError(t, c.HandleMessage(context.Background(), "20"))
	assert.Equal(t, StepAskInterest, c.Step())
}

func TestSearchFailureKeepsStep(t *testing.T) {
	b := &fakeBackend{search: func(context.Context, float64) ([]domain.Listing, error) {
		return nil, errors.New("connection refused")
	}}
	v := newFakeView()
	c := atStep(t, StepAskBudget, b, v)

	err := c.HandleMessage(context.Background(), "500000")
	require.Error(t, err)
	assert.False(t, IsUserError(err))
	assert.Equal(t, StepAskBudget, c.Step())
	assert.Equal(t, msgSearchFailed, v.last())
	assert.Empty(t, v.live)
}

func TestSearchTimeoutIsNetworkFailure(t *testing.T) {
	b := &fakeBackend{search: func(ctx context.Context, _ float64) ([]domain.Listing, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	v := newFakeView()
	c := NewConversation(b, v, WithRequestTimeout(20*time.Millisecond))

	err := c.HandleMessage(context.Background(), "500000")
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, StepInitial, c.Step())
	assert.Equal(t, msgSearchFailed, v.last())
}

func TestTypedTextIsInertWhileChoosing(t *testing.T) {
	for _, step := range []Step{StepAskInterest, StepCollectInfo, StepBookVisit} {
		t.Run(string(step), func(t *testing.T) {
			b := &fakeBackend{}
			v := newFakeView()
			c := atStep(t, step, b, v)
			before := b.searchCalls.Load()
			selected := c.SelectedListingID()

			require.NoError(t, c.HandleMessage(context.Background(), "300000"))
			assert.Equal(t, step, c.Step())
			assert.Equal(t, selected, c.SelectedListingID())
			assert.Equal(t, before, b.searchCalls.Load())
			assert.NotEmpty(t, v.last())
		})
	}
}

func TestAskMoreProperties(t *testing.T) {
	cases := []struct {
		text string
		want Step
	}{
		{"yes please", StepAskBudget},
		{"Show me MORE", StepAskBudget},
		{"another one", StepAskBudget},
		{"YES", StepAskBudget},
		{"no thanks", StepInitial},
		{"bye", StepInitial},
	}
	for _, tc := range cases {
		t.Run(tc.text, func(t *testing.T) {
			v := newFakeView()
			c := atStep(t, StepAskMoreProperties, &fakeBackend{}, v)
			require.NoError(t, c.HandleMessage(context.Background(), tc.text))
			assert.Equal(t, tc.want, c.Step())
			if tc.want == StepAskBudget {
				assert.Equal(t, msgUpdatedBudget, v.last())
			} else {
				assert.Equal(t, msgClosing, v.last())
			}
		})
	}
}

func TestSelectAndCancel(t *testing.T) {
	v := newFakeView()
	c := atStep(t, StepAskInterest, &fakeBackend{}, v)

	c.SelectListingForInterest("1")
	assert.Equal(t, StepCollectInfo, c.Step())
	assert.Equal(t, domain.ListingID("1"), c.SelectedListingID())
	require.Len(t, v.live, 1)

	// switching listings replaces the open form
	c.SelectListingForVisit("2")
	assert.Equal(t, StepBookVisit, c.Step())
	assert.Equal(t, domain.ListingID("2"), c.SelectedListingID())
	require.Len(t, v.live, 1)

	require.NoError(t, c.Cancel())
	assert.Equal(t, StepAskInterest, c.Step())
	assert.Empty(t, v.live)
	assert.Equal(t, msgWhatNext, v.last())

	require.ErrorIs(t, c.Cancel(), ErrNoActiveForm)
}

func TestBlankFieldsNeverSubmit(t *testing.T) {
	blanks := []BookingFields{
		{ContactFields: ContactFields{Name: " ", Email: "a@b.c", Phone: "1"}, Date: "2026-10-20", Time: "10:00"},
		{ContactFields: ContactFields{Name: "A", Email: "", Phone: "1"}, Date: "2026-10-20", Time: "10:00"},
		{ContactFields: ContactFields{Name: "A", Email: "a@b.c", Phone: "\t"}, Date: "2026-10-20", Time: "10:00"},
		{ContactFields: ContactFields{Name: "A", Email: "a@b.c", Phone: "1"}, Date: "", Time: "10:00"},
		{ContactFields: ContactFields{Name: "A", Email: "a@b.c", Phone: "1"}, Date: "2026-10-20", Time: " "},
	}
	for i, f := range blanks {
		t.Run(fmt.Sprintf("booking-%d", i), func(t *testing.T) {
			b := &fakeBackend{}
			v := newFakeView()
			c := atStep(t, StepBookVisit, b, v)

			err := c.SubmitBooking(context.Background(), f)
			var ve *ValidationError
			require.True(t, errors.As(err, &ve))
			assert.Len(t, ve.Fields, 1)
			assert.Equal(t, StepBookVisit, c.Step())
			assert.Zero(t, b.visitCalls.Load())
			require.Len(t, v.alerts, 1)
		})
	}

	b := &fakeBackend{}
	v := newFakeView()
	c := atStep(t, StepCollectInfo, b, v)
	err := c.SubmitInterest(context.Background(), ContactFields{Name: "A"})
	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Equal(t, []string{"email", "phone"}, ve.Fields)
	assert.Equal(t, StepCollectInfo, c.Step())
	assert.Zero(t, b.interestCalls.Load())
}

func TestSubmitInterestSuccess(t *testing.T) {
	var got domain.InterestRequest
	b := &fakeBackend{interest: func(_ context.Context, req domain.InterestRequest) (domain.SubmitResult, error) {
		got = req
		return domain.SubmitResult{Status: "success", Message: "Your interest has been submitted successfully!"}, nil
	}}
	v := newFakeView()
	obs := &recordingObserver{}
	c := atStep(t, StepCollectInfo, b, v, WithObserver(obs))

	require.NoError(t, c.SubmitInterest(context.Background(), ContactFields{Name: " John ", Email: "john@example.com", Phone: "555"}))
	assert.Equal(t, StepAskMoreProperties, c.Step())
	assert.Equal(t, domain.InterestRequest{ListingID: "1", Name: "John", Email: "john@example.com", Phone: "555"}, got)
	assert.Equal(t, formTexts[FormInterest].askAgain, v.last())
	assert.Contains(t, v.said, "Your interest has been submitted successfully!")
	assert.Empty(t, v.live)
	assert.Equal(t, []FormKind{FormInterest}, obs.leads)
	assert.Equal(t, StepAskMoreProperties, obs.steps[len(obs.steps)-1])
}

func TestSubmitBookingSuccess(t *testing.T) {
	b := &fakeBackend{}
	v := newFakeView()
	c := atStep(t, StepBookVisit, b, v)

	err := c.SubmitBooking(context.Background(), BookingFields{ContactFields: validContact, Date: "2026-10-20", Time: "14:30"})
	require.NoError(t, err)
	assert.Equal(t, StepAskMoreProperties, c.Step())
	require.Len(t, b.visits, 1)
	assert.Equal(t, domain.ListingID("2"), b.visits[0].ListingID)
	assert.Equal(t, "2026-10-20", b.visits[0].Date)
	assert.Equal(t, "14:30", b.visits[0].Time)
	assert.Contains(t, v.said, "Visit booked")
	assert.Equal(t, formTexts[FormBooking].askAgain, v.last())
}

func TestSubmitRejectedShowsBackendMessage(t *testing.T) {
	b := &fakeBackend{interest: func(context.Context, domain.InterestRequest) (domain.SubmitResult, error) {
		return domain.SubmitResult{Status: "error", Message: "Property not found"}, nil
	}}
	v := newFakeView()
	c := atStep(t, StepCollectInfo, b, v)

	err := c.SubmitInterest(context.Background(), validContact)
	var re *RejectedError
	require.True(t, errors.As(err, &re))
	assert.True(t, IsUserError(err))
	assert.Equal(t, StepCollectInfo, c.Step())
	assert.Equal(t, "Property not found", v.last())
}

func TestSubmitRejectedWithoutMessageUsesGenericText(t *testing.T) {
	b := &fakeBackend{visit: func(context.Context, domain.VisitRequest) (domain.SubmitResult, error) {
		return domain.SubmitResult{Status: "error"}, nil
	}}
	v := newFakeView()
	c := atStep(t, StepBookVisit, b, v)

	require.Error(t, c.SubmitBooking(context.Background(), BookingFields{ContactFields: validContact, Date: "d", Time: "t"}))
	assert.Equal(t, formTexts[FormBooking].failed, v.last())
}

func TestSubmitNetworkFailureKeepsSelectionForRetry(t *testing.T) {
	fail := true
	b := &fakeBackend{}
	b.interest = func(context.Context, domain.InterestRequest) (domain.SubmitResult, error) {
		if fail {
			return domain.SubmitResult{}, errors.New("dial tcp: connection refused")
		}
		return domain.SubmitResult{Status: "success", Message: "ok"}, nil
	}
	v := newFakeView()
	c := atStep(t, StepCollectInfo, b, v)

	err := c.SubmitInterest(context.Background(), validContact)
	require.Error(t, err)
	assert.Equal(t, StepCollectInfo, c.Step())
	assert.Equal(t, domain.ListingID("1"), c.SelectedListingID())
	assert.Equal(t, formTexts[FormInterest].failed, v.last())

	fail = false
	require.NoError(t, c.SubmitInterest(context.Background(), validContact))
	assert.Equal(t, StepAskMoreProperties, c.Step())
	assert.EqualValues(t, 2, b.interestCalls.Load())
}

func TestSubmitWithoutOpenForm(t *testing.T) {
	b := &fakeBackend{}
	c := atStep(t, StepAskInterest, b, newFakeView())
	require.ErrorIs(t, c.SubmitInterest(context.Background(), validContact), ErrNoActiveForm)
	assert.Zero(t, b.interestCalls.Load())
}

func TestDuplicateSubmitWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	b := &fakeBackend{}
	b.interest = func(ctx context.Context, _ domain.InterestRequest) (domain.SubmitResult, error) {
		entered <- struct{}{}
		<-release
		return domain.SubmitResult{Status: "success", Message: "ok"}, nil
	}
	c := atStep(t, StepCollectInfo, b, newFakeView())

	done := make(chan error, 1)
	go func() { done <- c.SubmitInterest(context.Background(), validContact) }()
	<-entered

	require.ErrorIs(t, c.SubmitInterest(context.Background(), validContact), ErrRequestInFlight)
	close(release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, b.interestCalls.Load())
}

func TestDuplicateSearchWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	b := &fakeBackend{search: func(context.Context, float64) ([]domain.Listing, error) {
		entered <- struct{}{}
		<-release
		return sampleListings(), nil
	}}
	c := atStep(t, StepAskBudget, b, newFakeView())

	done := make(chan error, 1)
	go func() { done <- c.HandleMessage(context.Background(), "400000") }()
	<-entered
	require.ErrorIs(t, c.HandleMessage(context.Background(), "400000"), ErrRequestInFlight)
	close(release)
	require.NoError(t, <-done)
	assert.EqualValues(t, 1, b.searchCalls.Load())
}

func TestStartClosesOpenForm(t *testing.T) {
	v := newFakeView()
	c := atStep(t, StepCollectInfo, &fakeBackend{}, v)
	c.Start()
	assert.Equal(t, StepAskBudget, c.Step())
	assert.Empty(t, v.live)
	assert.True(t, strings.Contains(v.last(), "budget"))
}

func TestInitialSignedAmountSearches(t *testing.T) {
	for _, text := range []string{"-500000", "+500000"} {
		t.Run(text, func(t *testing.T) {
			b := &fakeBackend{}
			c := NewConversation(b, newFakeView())
			require.NoError(t, c.HandleMessage(context.Background(), text))
			assert.Equal(t, []float64{500000}, b.budgets)
			assert.Equal(t, StepAskInterest, c.Step())
		})
	}
}

func TestLateSubmitResultKeepsNewForm(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	b := &fakeBackend{}
	b.interest = func(context.Context, domain.InterestRequest) (domain.SubmitResult, error) {
		entered <- struct{}{}
		<-release
		return domain.SubmitResult{Status: "success", Message: "Interest recorded"}, nil
	}
	v := newFakeView()
	obs := &recordingObserver{}
	c := atStep(t, StepCollectInfo, b, v, WithObserver(obs))
	ctx := context.Background()

	done := make(chan error, 1)
	go func() { done <- c.SubmitInterest(ctx, validContact) }()
	<-entered
	c.SelectListingForVisit("2")
	close(release)

	err := <-done
	require.ErrorIs(t, err, ErrSuperseded)
	assert.True(t, IsUserError(err))
	assert.Equal(t, StepBookVisit, c.Step())
	assert.Equal(t, domain.ListingID("2"), c.SelectedListingID())
	// the lead was recorded, so it is announced, but the booking form stays open
	assert.Contains(t, v.said, "Interest recorded")
	assert.NotContains(t, v.said, formTexts[FormInterest].askAgain)
	require.Len(t, v.live, 1)
	for _, text := range v.live {
		assert.Equal(t, "form:booking:2", text)
	}
	assert.Equal(t, []FormKind{FormInterest}, obs.leads)

	require.NoError(t, c.SubmitBooking(ctx, BookingFields{ContactFields: validContact, Date: "2026-10-20", Time: "10:00"}))
	assert.Equal(t, StepAskMoreProperties, c.Step())
	assert.EqualValues(t, 1, b.visitCalls.Load())
}

func TestLateSubmitFailureIsSilent(t *testing.T) {
	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	b := &fakeBackend{}
	b.interest = func(context.Context, domain.InterestRequest) (domain.SubmitResult, error) {
		entered <- struct{}{}
		<-release
		return domain.SubmitResult{}, errors.New("connection reset by peer")
	}
	v := newFakeView()
	c := atStep(t, StepCollectInfo, b, v)

	done := make(chan error, 1)
	go func() { done <- c.SubmitInterest(context.Background(), validContact) }()
	<-entered
	c.Start()
	close(release)

	require.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, StepAskBudget, c.Step())
	assert.Equal(t, msgGreeting, v.last())
	assert.NotContains(t, v.said, formTexts[FormInterest].failed)
	assert.Empty(t, v.live)
}

func TestLateSearchResultIsDropped(t *testing.T) {
	b := &fakeBackend{}
	v := newFakeView()
	c := atStep(t, StepAskMoreProperties, b, v)
	ctx := context.Background()
	require.NoError(t, c.HandleMessage(ctx, "show me more"))
	require.Equal(t, StepAskBudget, c.Step())

	release := make(chan struct{})
	entered := make(chan struct{}, 1)
	b.search = func(context.Context, float64) ([]domain.Listing, error) {
		entered <- struct{}{}
		<-release
		return sampleListings(), nil
	}
	done := make(chan error, 1)
	go func() { done <- c.HandleMessage(ctx, "400000") }()
	<-entered
	// a card from the earlier search is still on screen
	c.SelectListingForInterest("1")
	close(release)

	require.ErrorIs(t, <-done, ErrSuperseded)
	assert.Equal(t, StepCollectInfo, c.Step())
	assert.Len(t, v.listings, 1)
	assert.Equal(t, domain.ListingID("1"), c.SelectedListingID())

	require.NoError(t, c.SubmitInterest(ctx, validContact))
	assert.Equal(t, StepAskMoreProperties, c.Step())
}

// lockCheckingObserver records whether the conversation lock was free during each notification.
type lockCheckingObserver struct {
	c          *Conversation
	free, held int
}

func (o *lockCheckingObserver) check() {
	if o.c.mu.TryLock() {
		o.c.mu.Unlock()
		o.free++
		return
	}
	o.held++
}

func (o *lockCheckingObserver) StepReached(Step)       { o.check() }
func (o *lockCheckingObserver) LeadSubmitted(FormKind) { o.check() }

func TestObserverRunsWithoutLock(t *testing.T) {
	obs := &lockCheckingObserver{}
	c := NewConversation(&fakeBackend{}, newFakeView(), WithObserver(obs))
	obs.c = c
	ctx := context.Background()

	c.Start()
	require.NoError(t, c.HandleMessage(ctx, "500000"))
	c.SelectListingForVisit("1")
	require.NoError(t, c.Cancel())
	c.SelectListingForInterest("2")
	require.NoError(t, c.SubmitInterest(ctx, validContact))
	require.NoError(t, c.HandleMessage(ctx, "no thanks"))

	assert.Zero(t, obs.held)
	// ask_budget, ask_interest, book_visit, ask_interest, collect_info, ask_more_properties, lead, initial
	assert.Equal(t, 8, obs.free)
}
