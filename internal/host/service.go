// Package host keeps the countdown alive independently of any client. It
// bridges commands to the controller, maintains the status display, records
// every run and fires the expiry effects.
package host

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"sleepat/internal/i18n"
	"sleepat/internal/metrics"
	"sleepat/internal/status"
	"sleepat/internal/store"
	"sleepat/internal/timelog"
	"sleepat/internal/timer"
)

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Store persists settings and finished runs.
type Store interface {
	Setting(ctx context.Context, key string) (string, error)
	SetSetting(ctx context.Context, key, value string) error
	CreateLog(ctx context.Context, log *timelog.TimeLog) error
}

type Effects interface {
	Fire(ctx context.Context) error
}

// StatePublisher forwards snapshots to other processes.
type StatePublisher interface {
	PublishState(ctx context.Context, s timer.State) error
}

type LockStatus interface {
	IsActive(ctx context.Context) bool
}

type Options struct {
	Store     Store
	Catalog   *i18n.Catalog
	Display   status.Display
	Effects   Effects
	Metrics   metrics.Recorder
	Publisher StatePublisher
	Lock      LockStatus
	Logger    *slog.Logger

	Clock          timer.Clock
	TickInterval   time.Duration
	DefaultMinutes int
	ExtendSeconds  int
	Language       string

	Now   func() time.Time
	NewID func() string
}

// Status is the snapshot served to clients.
type Status struct {
	State       timer.State `json:"state"`
	Language    string      `json:"language"`
	LockCapable bool        `json:"lock_capable"`
	Formatted   string      `json:"formatted"`
}

type Service struct {
	mu         sync.Mutex
	ctrl       *timer.Controller
	language   string
	run        *timelog.TimeLog
	closed     bool
	displaySeq uint64

	// displayMu orders display updates, which run without mu held.
	displayMu sync.Mutex
	displayed uint64

	store         Store
	catalog       *i18n.Catalog
	display       status.Display
	effects       Effects
	metrics       metrics.Recorder
	publisher     StatePublisher
	lock          LockStatus
	extendSeconds int
	now           func() time.Time
	newID         func() string
	logger        *slog.Logger
}

// New restores the stored language and duration and builds the controller.
func New(ctx context.Context, opts Options) (*Service, error) {
	if opts.Store == nil {
		return nil, errors.New("host: store is required")
	}
	if opts.Catalog == nil {
		return nil, errors.New("host: catalog is required")
	}

	s := &Service{
		store:         opts.Store,
		catalog:       opts.Catalog,
		display:       opts.Display,
		effects:       opts.Effects,
		metrics:       opts.Metrics,
		publisher:     opts.Publisher,
		lock:          opts.Lock,
		extendSeconds: opts.ExtendSeconds,
		now:           opts.Now,
		newID:         opts.NewID,
		logger:        opts.Logger,
	}
	if s.display == nil {
		s.display = status.NewBoard()
	}
	if s.metrics == nil {
		s.metrics = metrics.Nop{}
	}
	if s.extendSeconds <= 0 {
		s.extendSeconds = timer.DefaultExtendSeconds
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.language = s.restoreLanguage(ctx, opts.Language)
	minutes := s.restoreMinutes(ctx, opts.DefaultMinutes)

	timerOpts := []timer.Option{
		timer.WithDefaultMinutes(minutes),
		timer.WithInterval(opts.TickInterval),
		timer.WithOnExpiry(s.handleExpiry),
		timer.WithLogger(s.logger),
	}
	if opts.Clock != nil {
		timerOpts = append(timerOpts, timer.WithClock(opts.Clock))
	}
	s.ctrl = timer.New(timerOpts...)

	return s, nil
}

func (s *Service) restoreLanguage(ctx context.Context, configured string) string {
	value, err := s.store.Setting(ctx, store.KeyLanguage)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		s.logger.Warn("failed to load language", "error", err)
	}
	for _, candidate := range []string{value, configured} {
		if lang, ok := s.catalog.Match(candidate); ok {
			return lang
		}
	}
	return s.catalog.Fallback()
}

func (s *Service) restoreMinutes(ctx context.Context, configured int) int {
	if configured <= 0 || configured > timer.MaxMinutes {
		configured = timer.DefaultMinutes
	}
	value, err := s.store.Setting(ctx, store.KeySelectedMinutes)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			s.logger.Warn("failed to load selected duration", "error", err)
		}
		return configured
	}
	minutes, err := strconv.Atoi(value)
	if err != nil || minutes <= 0 || minutes > timer.MaxMinutes {
		return configured
	}
	return minutes
}

// Start selects minutes and starts the countdown. It does nothing while a
// countdown is already running.
func (s *Service) Start(ctx context.Context, minutes int) error {
	if minutes <= 0 {
		return fmt.Errorf("%w: got %d", timer.ErrInvalidDuration, minutes)
	}

	// deferred first so the display is updated after mu is released
	var update displayUpdate
	defer func() { s.applyDisplay(ctx, update) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ctrl.Running() {
		return nil
	}
	if err := s.ctrl.SetDuration(minutes); err != nil {
		return err
	}
	s.persistMinutes(ctx, minutes)

	// an expiry whose hook has not run yet still owns the previous record
	s.finishLocked(ctx, timelog.OutcomeExpired)

	if !s.ctrl.Start() {
		return nil
	}
	st := s.ctrl.State()
	s.run = &timelog.TimeLog{
		ID:              s.newID(),
		StartedAt:       s.now(),
		SelectedSeconds: st.SelectedSeconds,
	}
	s.metrics.RecordStart(st.SelectedSeconds)
	update = s.showLocked(st)
	s.logger.Info("countdown started", "minutes", minutes, "run_id", s.run.ID)
	return nil
}

// Stop cancels the countdown and clears the status display.
func (s *Service) Stop(ctx context.Context) error {
	var update displayUpdate
	defer func() { s.applyDisplay(ctx, update) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	stopped := s.ctrl.Stop()
	update = s.clearLocked()
	if !stopped {
		return nil
	}
	s.metrics.RecordStop()
	s.finishLocked(ctx, timelog.OutcomeStopped)
	s.logger.Info("countdown stopped")
	return nil
}

// Extend adds the configured extension to a running countdown.
func (s *Service) Extend(ctx context.Context) error {
	var update displayUpdate
	defer func() { s.applyDisplay(ctx, update) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ctrl.Extend(s.extendSeconds) {
		return nil
	}
	if s.run != nil {
		s.run.ExtendedSeconds += s.extendSeconds
	}
	s.metrics.RecordExtend(s.extendSeconds)
	update = s.showLocked(s.ctrl.State())
	s.logger.Info("countdown extended", "seconds", s.extendSeconds)
	return nil
}

// SetDuration changes the selected duration while idle and remembers it.
func (s *Service) SetDuration(ctx context.Context, minutes int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ctrl.SetDuration(minutes); err != nil {
		return err
	}
	if !s.ctrl.Running() {
		s.persistMinutes(ctx, minutes)
	}
	return nil
}

// SetLanguage switches the display language. Codes are matched against the
// catalog, so "en-GB" selects "en".
func (s *Service) SetLanguage(ctx context.Context, code string) error {
	lang, ok := s.catalog.Match(code)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnsupportedLanguage, code)
	}

	var update displayUpdate
	defer func() { s.applyDisplay(ctx, update) }()
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.SetSetting(ctx, store.KeyLanguage, lang); err != nil {
		return fmt.Errorf("save language: %w", err)
	}
	s.language = lang
	if st := s.ctrl.State(); st.Running {
		update = s.showLocked(st)
	}
	s.logger.Info("language changed", "language", lang)
	return nil
}

func (s *Service) Language() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.language
}

// CurrentLanguage is Language in the shape the terminal UI expects from
// any backend.
func (s *Service) CurrentLanguage(context.Context) (string, error) {
	return s.Language(), nil
}

func (s *Service) Snapshot() timer.State {
	return s.ctrl.State()
}

func (s *Service) Status(ctx context.Context) Status {
	st := s.ctrl.State()
	return Status{
		State:       st,
		Language:    s.Language(),
		LockCapable: s.lock != nil && s.lock.IsActive(ctx),
		Formatted:   timer.FormatRemaining(st.RemainingSeconds),
	}
}

// Watch streams snapshots, starting with the current one, until ctx is done.
func (s *Service) Watch(ctx context.Context) (<-chan timer.State, error) {
	ch, unsubscribe := s.ctrl.Subscribe()
	go func() {
		<-ctx.Done()
		unsubscribe()
	}()
	return ch, nil
}

// Dispatch routes a command to the matching operation. A start without
// minutes uses the selected duration.
func (s *Service) Dispatch(ctx context.Context, cmd Command) error {
	var err error
	switch cmd.Action {
	case ActionStart:
		minutes := cmd.Minutes
		if minutes == 0 {
			minutes = s.ctrl.State().SelectedMinutes()
		}
		err = s.Start(ctx, minutes)
	case ActionStop:
		err = s.Stop(ctx)
	case ActionExtend:
		err = s.Extend(ctx)
	case ActionDuration:
		err = s.SetDuration(ctx, cmd.Minutes)
	case ActionLanguage:
		err = s.SetLanguage(ctx, cmd.Language)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Action)
	}

	source := cmd.Source
	if source == "" {
		source = "unknown"
	}
	s.metrics.RecordCommand(source, cmd.Action)
	return err
}

// Trigger handles a button pressed on the status display.
func (s *Service) Trigger(ctx context.Context, action status.Action) error {
	switch action {
	case status.ActionStop:
		return s.Dispatch(ctx, Command{Action: ActionStop, Source: "status"})
	case status.ActionExtend:
		return s.Dispatch(ctx, Command{Action: ActionExtend, Source: "status"})
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Run follows the controller until ctx is done or the service is closed,
// refreshing the display and forwarding every snapshot.
func (s *Service) Run(ctx context.Context) error {
	ch, unsubscribe := s.ctrl.Subscribe()
	defer unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return nil
		case st, ok := <-ch:
			if !ok {
				return nil
			}
			s.observe(ctx, st)
		}
	}
}

func (s *Service) observe(ctx context.Context, st timer.State) {
	s.metrics.ObserveState(st.RemainingSeconds, st.Running)
	if s.publisher != nil {
		if err := s.publisher.PublishState(ctx, st); err != nil {
			s.logger.Warn("failed to publish state", "error", err)
		}
	}
	if !st.Running {
		return
	}

	var update displayUpdate
	s.mu.Lock()
	if s.ctrl.Running() {
		update = s.showLocked(st)
	}
	s.mu.Unlock()
	s.applyDisplay(ctx, update)
}

// Close cancels a running countdown, records it as interrupted and stops the
// controller. It is safe to call more than once.
func (s *Service) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.ctrl.Stop() {
		s.finishLocked(ctx, timelog.OutcomeShutdown)
	}
	update := s.clearLocked()
	s.mu.Unlock()
	s.applyDisplay(ctx, update)

	// the expiry hook takes mu, so the loop must be awaited without it
	s.ctrl.Close()
	return nil
}

func (s *Service) handleExpiry(ctx context.Context) {
	var update displayUpdate
	s.mu.Lock()
	if !s.ctrl.Running() {
		update = s.clearLocked()
		s.finishLocked(ctx, timelog.OutcomeExpired)
	}
	s.mu.Unlock()
	s.applyDisplay(ctx, update)

	s.metrics.RecordExpiry()
	s.logger.Info("countdown expired, running expiry effects")
	if s.effects != nil {
		if err := s.effects.Fire(ctx); err != nil {
			s.logger.Warn("expiry effects incomplete", "error", err)
		}
	}
}

func (s *Service) notice(st timer.State) status.Notice {
	lang := s.language
	return status.Notice{
		Title:            s.catalog.Text(lang, "notification_title"),
		Body:             s.catalog.Textf(lang, "notification_body", timer.FormatRemaining(st.RemainingSeconds)),
		RemainingSeconds: st.RemainingSeconds,
		Actions: []status.ActionLabel{
			{Action: status.ActionStop, Label: s.catalog.Text(lang, "action_stop")},
			{Action: status.ActionExtend, Label: s.catalog.Text(lang, "action_extend")},
		},
		UpdatedAt: s.now(),
	}
}

// displayUpdate is a display change decided under mu and applied after it
// is released. A nil notice clears the display; a zero seq does nothing.
type displayUpdate struct {
	seq    uint64
	notice *status.Notice
}

func (s *Service) showLocked(st timer.State) displayUpdate {
	n := s.notice(st)
	s.displaySeq++
	return displayUpdate{seq: s.displaySeq, notice: &n}
}

func (s *Service) clearLocked() displayUpdate {
	s.displaySeq++
	return displayUpdate{seq: s.displaySeq}
}

// applyDisplay hands an update to the display. Updates overtaken by a newer
// one are dropped, so the display always ends on the latest decision.
func (s *Service) applyDisplay(ctx context.Context, u displayUpdate) {
	if u.seq == 0 {
		return
	}
	s.displayMu.Lock()
	defer s.displayMu.Unlock()
	if u.seq <= s.displayed {
		return
	}
	s.displayed = u.seq

	if u.notice == nil {
		if err := s.display.Clear(ctx); err != nil {
			s.logger.Warn("failed to clear status display", "error", err)
		}
		return
	}
	if err := s.display.Show(ctx, *u.notice); err != nil {
		s.logger.Warn("failed to update status display", "error", err)
	}
}

func (s *Service) finishLocked(ctx context.Context, outcome timelog.Outcome) {
	if s.run == nil {
		return
	}
	run := s.run
	s.run = nil

	run.EndedAt = s.now()
	run.Outcome = outcome
	run.Duration = run.EndedAt.Sub(run.StartedAt)
	// the run must be recorded even when the caller is shutting down
	if err := s.store.CreateLog(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Warn("failed to record run", "run_id", run.ID, "error", err)
		return
	}
	s.logger.Debug("run recorded", "run_id", run.ID, "outcome", outcome)
}

func (s *Service) persistMinutes(ctx context.Context, minutes int) {
	if err := s.store.SetSetting(ctx, store.KeySelectedMinutes, strconv.Itoa(minutes)); err != nil {
		s.logger.Warn("failed to save selected duration", "error", err)
	}
}
