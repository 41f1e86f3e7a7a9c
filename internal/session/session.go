// Package session orchestrates a single from/to quoting session: it reacts to token
// selection, amount edits and direction swaps, and publishes a view after every change.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/vadiminshakov/swapquote/internal/domain"
	"github.com/vadiminshakov/swapquote/internal/events"
	"github.com/vadiminshakov/swapquote/internal/services/catalog"
	"github.com/vadiminshakov/swapquote/internal/services/conversion"
	"github.com/vadiminshakov/swapquote/internal/services/debounce"
	"github.com/vadiminshakov/swapquote/internal/services/validator"
)

// AmountDebounce delay between the last amount keystroke and the recompute.
const AmountDebounce = 500 * time.Millisecond

// ErrUnknownToken is returned when a currency is selected that the catalog does not hold.
var ErrUnknownToken = errors.New("token is not in the catalog")

type tokenCatalog interface {
	Load(ctx context.Context) error
	Lookup(currency string) (domain.Token, bool)
	Options() []domain.TokenOption
	Loading() bool
}

type quoteJournal interface {
	Save(record domain.QuoteRecord) error
}

// Session owns one QuotingSession. Timer callbacks arrive on their own goroutine,
// so every mutation happens under mu.
type Session struct {
	id            string
	logger        *zap.Logger
	catalog       tokenCatalog
	views         *events.Views
	notifications *events.Notifications
	journal       quoteJournal
	afterFunc     debounce.AfterFunc
	now           func() time.Time

	debouncer *debounce.Scheduler[string]

	mu      sync.Mutex
	state   domain.QuotingSession
	phase   domain.Phase
	pending debounce.Ticket
	closed  bool
}

// Option configures the Session.
type Option func(*Session)

// WithJournal records every published quote in journal.
func WithJournal(journal quoteJournal) Option {
	return func(s *Session) {
		s.journal = journal
	}
}

// WithBroadcasters shares view and notification broadcasters between sessions.
func WithBroadcasters(views *events.Views, notifications *events.Notifications) Option {
	return func(s *Session) {
		if views != nil {
			s.views = views
		}
		if notifications != nil {
			s.notifications = notifications
		}
	}
}

// WithAfterFunc replaces the debounce timer source.
func WithAfterFunc(fn debounce.AfterFunc) Option {
	return func(s *Session) {
		s.afterFunc = fn
	}
}

// WithClock replaces the clock used to stamp notifications and journal records.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		if now != nil {
			s.now = now
		}
	}
}

// New creates an empty session over the token catalog.
func New(tokens tokenCatalog, logger *zap.Logger, opts ...Option) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Session{
		id:            uuid.New().String(),
		catalog:       tokens,
		views:         events.NewBroadcaster[domain.View](64),
		notifications: events.NewBroadcaster[domain.Notification](64),
		now:           time.Now,
		phase:         domain.PhaseIdle,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.logger = logger.With(zap.String("session", s.id))
	s.debouncer = debounce.New(AmountDebounce, s.onAmountSettled, debounce.WithAfterFunc[string](s.afterFunc))

	return s
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Views returns the broadcaster carrying session snapshots.
func (s *Session) Views() *events.Views { return s.views }

// Notifications returns the broadcaster carrying user-facing notifications.
func (s *Session) Notifications() *events.Notifications { return s.notifications }

// Start loads the token catalog. A fetch failure is reported as a notification and
// returned; the session stays usable with an empty catalog.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	s.publishLocked()
	s.mu.Unlock()

	err := s.catalog.Load(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil && !errors.Is(err, catalog.ErrLoadInFlight) {
		s.logger.Error("failed to load token catalog", zap.Error(err))
		s.notifyLocked(domain.NotificationFetchFailure, "", catalog.ErrFetchFailure.Error())
	}
	s.publishLocked()

	return err
}

// SelectFrom replaces the source token and recomputes immediately.
func (s *Session) SelectFrom(currency string) error {
	return s.selectToken(currency, func(q *domain.QuotingSession, t *domain.Token) { q.From = t })
}

// SelectTo replaces the destination token and recomputes immediately.
func (s *Session) SelectTo(currency string) error {
	return s.selectToken(currency, func(q *domain.QuotingSession, t *domain.Token) { q.To = t })
}

func (s *Session) selectToken(currency string, set func(*domain.QuotingSession, *domain.Token)) error {
	token, ok := s.catalog.Lookup(currency)
	if !ok {
		return errors.Wrap(ErrUnknownToken, currency)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	set(&s.state, &token)
	s.logger.Debug("token selected", zap.Stringer("token", &token))
	s.settleLocked()

	return nil
}

// EditAmount validates raw. An accepted edit updates the source amount at once and
// schedules a debounced recompute; a rejected one only raises a notification.
func (s *Session) EditAmount(raw string) validator.Verdict {
	s.mu.Lock()
	defer s.mu.Unlock()

	verdict := validator.Validate(raw, s.state.FromAmount)
	if s.closed {
		return verdict
	}

	if !verdict.Accepted {
		s.logger.Debug("amount edit rejected", zap.String("raw", raw), zap.String("reason", string(verdict.Reason)))
		s.notifyLocked(domain.NotificationValidationRejected, string(verdict.Reason), verdict.Reason.Message())
		return verdict
	}

	s.state.FromAmount = verdict.Value
	s.phase = domain.PhasePendingRecompute
	s.pending = s.debouncer.Schedule(verdict.Value)
	s.publishLocked()

	return verdict
}

// SwapDirection exchanges the tokens, moves the destination amount into the source
// amount and recomputes immediately.
func (s *Session) SwapDirection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	swapped := s.state.Swapped()
	if v := validator.Validate(swapped.FromAmount, ""); !v.Accepted {
		s.logger.Warn("swapped amount rejected", zap.String("amount", swapped.FromAmount), zap.String("reason", string(v.Reason)))
		s.notifyLocked(domain.NotificationValidationRejected, string(v.Reason), v.Reason.Message())
		swapped.FromAmount = ""
	}

	s.state = swapped
	s.settleLocked()
}

// State returns a copy of the quoting session.
func (s *Session) State() domain.QuotingSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Phase returns whether a debounced recompute is pending.
func (s *Session) Phase() domain.Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.phase
}

// View returns the current snapshot.
func (s *Session) View() domain.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.viewLocked()
}

// Close drops any pending recompute. Further events are ignored.
func (s *Session) Close() {
	s.debouncer.Stop()

	s.mu.Lock()
	s.closed = true
	s.pending = 0
	s.phase = domain.PhaseIdle
	s.mu.Unlock()
}

func (s *Session) onAmountSettled(ticket debounce.Ticket, amount string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || ticket != s.pending {
		return
	}
	if amount != s.state.FromAmount {
		s.logger.Warn("debounced amount differs from field", zap.String("debounced", amount), zap.String("field", s.state.FromAmount))
	}

	s.settleLocked()
}

// settleLocked cancels any pending recompute, recomputes and publishes.
func (s *Session) settleLocked() {
	s.debouncer.Cancel()
	s.pending = 0
	s.phase = domain.PhaseIdle

	q, err := conversion.Recompute(s.state)
	s.state = q

	pair := domain.PairOf(q)
	if err != nil {
		s.logger.Error("conversion failed", zap.String("pair", pair.String()), zap.Error(err))
		s.notifyLocked(domain.NotificationInvariantViolation, "", err.Error())
	} else {
		s.logger.Debug("quote recomputed",
			zap.String("pair", pair.String()),
			zap.String("from_amount", q.FromAmount),
			zap.String("to_amount", q.ToAmount))
		s.journalLocked(pair)
	}

	s.publishLocked()
}

func (s *Session) journalLocked(pair domain.Pair) {
	if s.journal == nil || !pair.Complete() || s.state.ToAmount == "" {
		return
	}

	rate, _ := conversion.Rate(s.state.From, s.state.To)
	record := domain.QuoteRecord{
		Timestamp:  s.now().UTC(),
		SessionID:  s.id,
		From:       pair.From,
		To:         pair.To,
		FromAmount: s.state.FromAmount,
		ToAmount:   s.state.ToAmount,
		Rate:       rate,
	}
	if err := s.journal.Save(record); err != nil {
		s.logger.Warn("failed to journal quote", zap.String("pair", pair.String()), zap.Error(err))
	}
}

func (s *Session) viewLocked() domain.View {
	v := domain.View{
		SessionID:  s.id,
		Options:    s.catalog.Options(),
		FromAmount: s.state.FromAmount,
		ToAmount:   s.state.ToAmount,
		Loading:    s.catalog.Loading(),
		Phase:      s.phase,
	}
	if s.state.From != nil {
		v.From = s.state.From.Currency
	}
	if s.state.To != nil {
		v.To = s.state.To.Currency
	}
	if rate, err := conversion.Rate(s.state.From, s.state.To); err == nil {
		v.Rate = rate
	}
	return v
}

func (s *Session) publishLocked() {
	s.views.Publish(s.viewLocked())
}

func (s *Session) notifyLocked(kind domain.NotificationKind, reason, message string) {
	s.notifications.Publish(domain.Notification{
		Timestamp: s.now().UTC(),
		SessionID: s.id,
		Kind:      kind,
		Reason:    reason,
		Message:   message,
	})
}
