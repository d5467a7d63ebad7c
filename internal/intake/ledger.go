package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/internal/metrics"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/contracts"
	"github.com/OrrSegevPersonal/OrrSegevPersonal.github.io/pkg/models"
)

// Ledger limits and defaults
const (
	DefaultNamespace = "waterTracker"
	DefaultGoalMl    = 2000
	MinGoalMl        = 500
	MaxGoalMl        = 5000
)

// entryTimeLayout is the display time stored with each entry
const entryTimeLayout = "03:04 PM"

var (
	// ErrInvalidAmount is returned for a non-positive intake amount
	ErrInvalidAmount = errors.New("please enter a valid amount")

	// ErrGoalOutOfRange is returned for a goal outside [MinGoalMl, MaxGoalMl]
	ErrGoalOutOfRange = fmt.Errorf("goal must be between %dml and %dml", MinGoalMl, MaxGoalMl)
)

// storedEntry is the persisted form of one entry
type storedEntry struct {
	Amount    int    `json:"amount"`
	Time      string `json:"time"`
	Timestamp int64  `json:"timestamp"`
}

// storedDay is the persisted form of one day. CurrentAmount is written for
// readers of the raw value but is re-derived from History on every read.
type storedDay struct {
	CurrentAmount int           `json:"currentAmount"`
	History       []storedEntry `json:"history"`
}

func (d storedDay) total() int {
	total := 0
	for _, e := range d.History {
		total += e.Amount
	}
	return total
}

func (d storedDay) has(id int64) bool {
	for _, e := range d.History {
		if e.Timestamp == id {
			return true
		}
	}
	return false
}

// ValidateAmount checks an intake amount before it reaches the ledger
func ValidateAmount(amountMl int) error {
	if amountMl <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// ValidateGoal checks a goal against the allowed range
func ValidateGoal(goalMl int) error {
	if goalMl < MinGoalMl || goalMl > MaxGoalMl {
		return ErrGoalOutOfRange
	}
	return nil
}

// Ledger records today's intake against a daily goal. Every mutation is one
// read-modify-write of the day's key, so entries and total are always stored together.
// Writers in other processes are not coordinated: the last write wins.
type Ledger struct {
	store     contracts.KVStore
	namespace string
	now       func() time.Time
	notify    func(models.LedgerSnapshot)

	mu   sync.Mutex
	goal int
}

// Option configures a Ledger
type Option func(*Ledger)

// WithNamespace sets the key namespace (default "waterTracker")
func WithNamespace(namespace string) Option {
	return func(l *Ledger) {
		if namespace != "" {
			l.namespace = namespace
		}
	}
}

// WithClock overrides time.Now; the clock's location decides the day boundary
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) {
		if now != nil {
			l.now = now
		}
	}
}

// WithNotifier registers a callback invoked with the new snapshot after each
// mutation. It runs with the ledger lock held, so snapshots arrive in mutation
// order; fn must not block or call back into the ledger.
func WithNotifier(fn func(models.LedgerSnapshot)) Option {
	return func(l *Ledger) {
		l.notify = fn
	}
}

// NewLedger creates a ledger and loads the persisted goal
func NewLedger(ctx context.Context, store contracts.KVStore, opts ...Option) (*Ledger, error) {
	l := &Ledger{
		store:     store,
		namespace: DefaultNamespace,
		now:       time.Now,
		goal:      DefaultGoalMl,
	}
	for _, opt := range opts {
		opt(l)
	}

	goal, err := l.loadGoal(ctx)
	if err != nil {
		return nil, err
	}
	l.goal = goal

	return l, nil
}

// Goal returns the current daily goal in ml
func (l *Ledger) Goal() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.goal
}

// Add records an intake for today. GoalJustReached is true only on the add that
// moves the total from below the goal to at or above it.
func (l *Ledger) Add(ctx context.Context, amountMl int) (models.AddResult, error) {
	if err := ValidateAmount(amountMl); err != nil {
		metrics.LedgerOperations.WithLabelValues("add", "rejected").Inc()
		return models.AddResult{}, err
	}

	l.mu.Lock()
	now := l.now()
	key := DateKey(l.namespace, now)

	day, err := l.readDay(ctx, key)
	if err != nil {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("add", "error").Inc()
		return models.AddResult{}, err
	}

	id := now.UnixMilli()
	for day.has(id) {
		id++
	}
	entry := storedEntry{
		Amount:    amountMl,
		Time:      now.Format(entryTimeLayout),
		Timestamp: id,
	}

	oldTotal := day.total()
	if amountMl > math.MaxInt-oldTotal {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("add", "rejected").Inc()
		return models.AddResult{}, ErrInvalidAmount
	}
	day.History = append([]storedEntry{entry}, day.History...)
	newTotal := oldTotal + amountMl

	if err := l.writeDay(ctx, key, day); err != nil {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("add", "error").Inc()
		return models.AddResult{}, err
	}

	result := models.AddResult{
		Entry:           toModel(entry),
		TotalMl:         newTotal,
		GoalJustReached: oldTotal < l.goal && newTotal >= l.goal,
	}
	snapshot := l.snapshot(key, day)
	l.publish(snapshot)
	l.mu.Unlock()

	metrics.LedgerOperations.WithLabelValues("add", "ok").Inc()
	if result.GoalJustReached {
		metrics.GoalsReached.Inc()
		log.Info().Str("key", key).Int("total_ml", newTotal).Int("goal_ml", snapshot.GoalMl).Msg("daily goal reached")
	}

	return result, nil
}

// Remove deletes today's entry with the given id and returns the new total.
// An unknown id is not an error: another tab may already have removed it.
func (l *Ledger) Remove(ctx context.Context, entryID int64) (int, error) {
	l.mu.Lock()
	key := DateKey(l.namespace, l.now())

	day, err := l.readDay(ctx, key)
	if err != nil {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("remove", "error").Inc()
		return 0, err
	}

	if !day.has(entryID) {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("remove", "not_found").Inc()
		return day.total(), nil
	}

	kept := make([]storedEntry, 0, len(day.History)-1)
	for _, e := range day.History {
		if e.Timestamp != entryID {
			kept = append(kept, e)
		}
	}
	day.History = kept

	if err := l.writeDay(ctx, key, day); err != nil {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("remove", "error").Inc()
		return 0, err
	}
	snapshot := l.snapshot(key, day)
	l.publish(snapshot)
	l.mu.Unlock()

	metrics.LedgerOperations.WithLabelValues("remove", "ok").Inc()

	return snapshot.TotalMl, nil
}

// Clear empties today's ledger. Other days and the goal are untouched.
func (l *Ledger) Clear(ctx context.Context) error {
	l.mu.Lock()
	key := DateKey(l.namespace, l.now())
	day := storedDay{History: []storedEntry{}}

	if err := l.writeDay(ctx, key, day); err != nil {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("clear", "error").Inc()
		return err
	}
	l.publish(l.snapshot(key, day))
	l.mu.Unlock()

	metrics.LedgerOperations.WithLabelValues("clear", "ok").Inc()

	return nil
}

// SetGoal persists a new daily goal. Out-of-range goals are rejected and
// leave both the in-memory and the persisted goal as they were.
func (l *Ledger) SetGoal(ctx context.Context, goalMl int) error {
	if err := ValidateGoal(goalMl); err != nil {
		metrics.LedgerOperations.WithLabelValues("set_goal", "rejected").Inc()
		return err
	}

	l.mu.Lock()
	if err := l.store.Set(ctx, GoalKey(l.namespace), []byte(strconv.Itoa(goalMl))); err != nil {
		l.mu.Unlock()
		metrics.LedgerOperations.WithLabelValues("set_goal", "error").Inc()
		return fmt.Errorf("saving goal: %w", err)
	}
	l.goal = goalMl

	key := DateKey(l.namespace, l.now())
	if day, err := l.readDay(ctx, key); err == nil {
		l.publish(l.snapshotWithGoal(key, day, goalMl))
	}
	l.mu.Unlock()

	metrics.LedgerOperations.WithLabelValues("set_goal", "ok").Inc()

	return nil
}

// Snapshot returns today's ledger
func (l *Ledger) Snapshot(ctx context.Context) (models.LedgerSnapshot, error) {
	return l.Day(ctx, l.now())
}

// Day returns the ledger for the calendar day containing date. Read-only.
func (l *Ledger) Day(ctx context.Context, date time.Time) (models.LedgerSnapshot, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := DateKey(l.namespace, date)
	day, err := l.readDay(ctx, key)
	if err != nil {
		return models.LedgerSnapshot{}, err
	}
	return l.snapshot(key, day), nil
}

// loadGoal reads the persisted goal; missing or invalid values select the default
func (l *Ledger) loadGoal(ctx context.Context) (int, error) {
	raw, found, err := l.store.Get(ctx, GoalKey(l.namespace))
	if err != nil {
		return 0, fmt.Errorf("loading goal: %w", err)
	}
	if !found {
		return DefaultGoalMl, nil
	}

	goal, err := strconv.Atoi(strings.Trim(strings.TrimSpace(string(raw)), `"`))
	if err != nil || ValidateGoal(goal) != nil {
		log.Warn().Str("value", string(raw)).Msg("ignoring invalid persisted goal")
		return DefaultGoalMl, nil
	}
	return goal, nil
}

// readDay loads one day's ledger. A corrupt value is logged and read as an empty
// day so the next write replaces it with a consistent one.
func (l *Ledger) readDay(ctx context.Context, key string) (storedDay, error) {
	raw, found, err := l.store.Get(ctx, key)
	if err != nil {
		return storedDay{}, fmt.Errorf("reading %s: %w", key, err)
	}
	if !found {
		return storedDay{}, nil
	}

	var day storedDay
	if err := json.Unmarshal(raw, &day); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("discarding unreadable ledger")
		return storedDay{}, nil
	}

	valid := day.History[:0]
	for _, e := range day.History {
		if e.Amount > 0 {
			valid = append(valid, e)
		}
	}
	day.History = valid

	if day.CurrentAmount != day.total() {
		log.Debug().Str("key", key).Int("stored", day.CurrentAmount).Int("derived", day.total()).Msg("stored total out of sync, using entries")
	}
	day.CurrentAmount = day.total()

	return day, nil
}

// writeDay persists the entries and their total in a single write
func (l *Ledger) writeDay(ctx context.Context, key string, day storedDay) error {
	if day.History == nil {
		day.History = []storedEntry{}
	}
	day.CurrentAmount = day.total()

	data, err := json.Marshal(day)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", key, err)
	}
	if err := l.store.Set(ctx, key, data); err != nil {
		return fmt.Errorf("saving %s: %w", key, err)
	}
	return nil
}

func (l *Ledger) snapshot(key string, day storedDay) models.LedgerSnapshot {
	return l.snapshotWithGoal(key, day, l.goal)
}

func (l *Ledger) snapshotWithGoal(key string, day storedDay, goal int) models.LedgerSnapshot {
	entries := make([]models.LedgerEntry, 0, len(day.History))
	for _, e := range day.History {
		entries = append(entries, toModel(e))
	}
	total := day.total()

	return models.LedgerSnapshot{
		DateKey:    key,
		GoalMl:     goal,
		TotalMl:    total,
		Percentage: Percentage(total, goal),
		Entries:    entries,
	}
}

func (l *Ledger) publish(snapshot models.LedgerSnapshot) {
	if l.notify != nil {
		l.notify(snapshot)
	}
}

func toModel(e storedEntry) models.LedgerEntry {
	return models.LedgerEntry{
		ID:         e.Timestamp,
		AmountMl:   e.Amount,
		Time:       e.Time,
		RecordedAt: time.UnixMilli(e.Timestamp),
	}
}
