package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"mascot/events"
	"mascot/models"

	log "github.com/sirupsen/logrus"
)

// State is the remote backend connection state.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnected    State = "connected"
	StateDegraded     State = "degraded"
)

// ErrInvalidAmount is returned when a counter operation is given a
// non-positive amount.
var ErrInvalidAmount = errors.New("amount must be positive")

// defaultRemoteTimeout bounds every call against the remote backend.
const defaultRemoteTimeout = 5 * time.Second

// RecordStore provides id-keyed record read/write/query operations that work
// identically whether or not the remote backend is reachable. Every remote
// failure falls back to the in-process cache; writes go through the cache
// regardless of which backend absorbed them, so reads stay consistent within
// the process.
type RecordStore struct {
	remote        Backend // nil when running cache-only
	cache         *MemoryBackend
	bus           *events.Bus
	timeout       time.Duration
	startingCoins int64

	mu    sync.Mutex
	state State
}

// Option configures a RecordStore.
type Option func(*RecordStore)

// WithRemoteTimeout overrides the bound on remote backend calls.
func WithRemoteTimeout(d time.Duration) Option {
	return func(s *RecordStore) {
		s.timeout = d
	}
}

// WithStartingCoins overrides the coin balance of synthesized default records.
func WithStartingCoins(coins int64) Option {
	return func(s *RecordStore) {
		s.startingCoins = coins
	}
}

// New creates a record store over an optional remote backend. A nil remote
// leaves the store in cache-only mode until a later Reconnect.
func New(remote Backend, bus *events.Bus, opts ...Option) *RecordStore {
	s := &RecordStore{
		remote:        remote,
		cache:         NewMemoryBackend(),
		bus:           bus,
		timeout:       defaultRemoteTimeout,
		startingCoins: models.StartingCoins,
		state:         StateDisconnected,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// State returns the current backend connection state.
func (s *RecordStore) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *RecordStore) setState(next State) {
	s.mu.Lock()
	prev := s.state
	s.state = next
	s.mu.Unlock()

	if prev == next {
		return
	}
	setStateGauge(next)
	if s.bus != nil {
		s.bus.Emit(context.Background(), events.BackendStateChangeEvent{
			Backend:  s.remoteName(),
			OldState: string(prev),
			NewState: string(next),
		})
	}
}

func (s *RecordStore) remoteName() string {
	if s.remote == nil {
		return "none"
	}
	return s.remote.Name()
}

// remoteActive reports whether calls should be tried against the remote
// backend first.
func (s *RecordStore) remoteActive() bool {
	if s.remote == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state == StateConnected
}

// remoteContext bounds a remote call so a hung backend degrades instead of
// blocking the caller.
func (s *RecordStore) remoteContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.timeout)
}

// markDegraded transitions to degraded after a failed remote operation. The
// store stays degraded until an explicit Reconnect succeeds.
func (s *RecordStore) markDegraded(op string, err error) {
	log.WithFields(log.Fields{
		"backend": s.remoteName(),
		"op":      op,
	}).WithError(err).Warn("Remote backend failed, falling back to cache")
	failoversTotal.Inc()
	s.setState(StateDegraded)
}

// Connect probes the remote backend and, on success, marks the store
// connected. A failed or absent remote leaves the store serving from the
// cache; the error is informational, not fatal.
func (s *RecordStore) Connect(ctx context.Context) error {
	if s.remote == nil {
		log.Info("No remote backend configured, running cache-only")
		return nil
	}

	rctx, cancel := s.remoteContext(ctx)
	defer cancel()

	if err := s.remote.Ping(rctx); err != nil {
		return fmt.Errorf("failed to connect to %s backend: %w", s.remoteName(), err)
	}

	s.setState(StateConnected)
	log.WithField("backend", s.remoteName()).Info("Remote backend connected")
	return nil
}

// Reconnect probes the remote backend and, on success, pushes every record
// currently held in the cache to it so the remote store catches up on writes
// absorbed while degraded. Individual push failures are logged and do not
// abort the sweep.
func (s *RecordStore) Reconnect(ctx context.Context) error {
	if s.remote == nil {
		return fmt.Errorf("no remote backend configured")
	}

	rctx, cancel := s.remoteContext(ctx)
	if err := s.remote.Ping(rctx); err != nil {
		cancel()
		return fmt.Errorf("failed to reconnect to %s backend: %w", s.remoteName(), err)
	}
	cancel()

	pushed, failed := 0, 0
	for _, kind := range []Kind{KindUser, KindGuild} {
		docs, err := s.cache.All(ctx, kind)
		if err != nil {
			log.WithError(err).Error("Failed to read cache during reconnect sync")
			continue
		}
		for id, doc := range docs {
			rctx, cancel := s.remoteContext(ctx)
			err := s.remote.Put(rctx, kind, id, doc)
			cancel()
			if err != nil {
				failed++
				log.WithFields(log.Fields{
					"kind": kind,
					"id":   id,
				}).WithError(err).Warn("Failed to push cached record to remote backend")
				continue
			}
			pushed++
		}
	}

	s.setState(StateConnected)
	log.WithFields(log.Fields{
		"backend": s.remoteName(),
		"pushed":  pushed,
		"failed":  failed,
	}).Info("Remote backend reconnected, cache synced")
	return nil
}

// Close releases the remote backend. The cache needs no teardown.
func (s *RecordStore) Close() error {
	s.setState(StateDisconnected)
	if s.remote == nil {
		return nil
	}
	return s.remote.Close()
}

// getDocument looks a record up in the active backend, falling back to the
// cache on remote failure. A remote hit warms the cache so later degraded
// reads see the same data.
func (s *RecordStore) getDocument(ctx context.Context, kind Kind, id int64) (Document, bool) {
	if s.remoteActive() {
		rctx, cancel := s.remoteContext(ctx)
		doc, err := s.remote.Get(rctx, kind, id)
		cancel()
		switch {
		case err == nil:
			if cacheErr := s.cache.Put(ctx, kind, id, doc); cacheErr != nil {
				log.WithError(cacheErr).Warn("Failed to warm cache from remote read")
			}
			return doc, true
		case errors.Is(err, ErrNotFound):
			// Fall through to the cache: the record may only exist there
			// if it was written while degraded.
		default:
			s.markDegraded("get", err)
		}
	}

	doc, err := s.cache.Get(ctx, kind, id)
	if err != nil {
		return nil, false
	}
	return doc, true
}

// persist writes a document through to both backends. The cache always
// absorbs the write; the remote backend is best-effort and degrades the
// store on failure.
func (s *RecordStore) persist(ctx context.Context, kind Kind, id int64, doc Document) error {
	if s.remoteActive() {
		rctx, cancel := s.remoteContext(ctx)
		err := s.remote.Put(rctx, kind, id, doc)
		cancel()
		if err != nil {
			s.markDegraded("put", err)
		}
	}

	if err := s.cache.Put(ctx, kind, id, doc); err != nil {
		return fmt.Errorf("failed to cache %s record %d: %w", kind, id, err)
	}
	return nil
}

// allDocuments lists every record of a kind from the active backend, falling
// back to the cache on remote failure.
func (s *RecordStore) allDocuments(ctx context.Context, kind Kind) (map[int64]Document, error) {
	if s.remoteActive() {
		rctx, cancel := s.remoteContext(ctx)
		docs, err := s.remote.All(rctx, kind)
		cancel()
		if err == nil {
			return docs, nil
		}
		s.markDegraded("all", err)
	}
	return s.cache.All(ctx, kind)
}

// GetUser returns the record for a user id, synthesizing and persisting the
// default record if none exists anywhere. It never fails on "not found".
func (s *RecordStore) GetUser(ctx context.Context, id int64) (*models.UserRecord, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	doc, found := s.getDocument(ctx, KindUser, id)
	if !found {
		return s.createDefaultUser(ctx, id)
	}

	record, err := userFromDocument(doc)
	if err != nil {
		return nil, err
	}
	opsTotal.WithLabelValues("get", string(KindUser), "ok").Inc()
	return record, nil
}

// newUserRecord builds the default record, honoring a configured starting
// balance override.
func (s *RecordStore) newUserRecord(id int64) *models.UserRecord {
	record := models.NewUserRecord(id)
	record.Coins = s.startingCoins
	return record
}

// createDefaultUser synthesizes the default record for a never-seen id and
// persists it best-effort.
func (s *RecordStore) createDefaultUser(ctx context.Context, id int64) (*models.UserRecord, error) {
	record := s.newUserRecord(id)
	doc, err := userToDocument(record)
	if err != nil {
		return nil, err
	}
	if err := s.persist(ctx, KindUser, id, doc); err != nil {
		return nil, err
	}

	log.WithField("id", id).Debug("Synthesized default user record")
	if s.bus != nil {
		s.bus.Emit(ctx, events.RecordCreatedEvent{Kind: string(KindUser), ID: id})
	}
	opsTotal.WithLabelValues("create", string(KindUser), "ok").Inc()
	return record, nil
}

// GetGuild returns the record for a guild id, synthesizing the default
// record if none exists anywhere.
func (s *RecordStore) GetGuild(ctx context.Context, id int64) (*models.GuildRecord, error) {
	if id <= 0 {
		return nil, ErrInvalidID
	}

	doc, found := s.getDocument(ctx, KindGuild, id)
	if !found {
		record := models.NewGuildRecord(id)
		newDoc, err := guildToDocument(record)
		if err != nil {
			return nil, err
		}
		if err := s.persist(ctx, KindGuild, id, newDoc); err != nil {
			return nil, err
		}
		if s.bus != nil {
			s.bus.Emit(ctx, events.RecordCreatedEvent{Kind: string(KindGuild), ID: id})
		}
		opsTotal.WithLabelValues("create", string(KindGuild), "ok").Inc()
		return record, nil
	}

	record, err := guildFromDocument(doc)
	if err != nil {
		return nil, err
	}
	opsTotal.WithLabelValues("get", string(KindGuild), "ok").Inc()
	return record, nil
}

// UpdateUser applies a partial merge to a user record. Dotted keys address
// nested fields; plain keys replace the top-level value wholesale. Failing
// validation returns before anything is mutated. The merge always stamps
// last_updated.
func (s *RecordStore) UpdateUser(ctx context.Context, id int64, fields map[string]any) error {
	if id <= 0 {
		return ErrInvalidID
	}
	if err := validateUserFields(fields); err != nil {
		opsTotal.WithLabelValues("update", string(KindUser), "rejected").Inc()
		return err
	}

	doc, found := s.getDocument(ctx, KindUser, id)
	if !found {
		// Records are created lazily on first write too.
		record := s.newUserRecord(id)
		var err error
		doc, err = userToDocument(record)
		if err != nil {
			return err
		}
	}

	applyFields(doc, fields)
	if err := s.persist(ctx, KindUser, id, doc); err != nil {
		return err
	}
	if !found && s.bus != nil {
		s.bus.Emit(ctx, events.RecordCreatedEvent{Kind: string(KindUser), ID: id})
	}
	opsTotal.WithLabelValues("update", string(KindUser), "ok").Inc()
	return nil
}

// UpdateGuild applies a partial merge to a guild record.
func (s *RecordStore) UpdateGuild(ctx context.Context, id int64, fields map[string]any) error {
	if id <= 0 {
		return ErrInvalidID
	}

	doc, found := s.getDocument(ctx, KindGuild, id)
	if !found {
		record := models.NewGuildRecord(id)
		var err error
		doc, err = guildToDocument(record)
		if err != nil {
			return err
		}
	}

	applyFields(doc, fields)
	if err := s.persist(ctx, KindGuild, id, doc); err != nil {
		return err
	}
	if !found && s.bus != nil {
		s.bus.Emit(ctx, events.RecordCreatedEvent{Kind: string(KindGuild), ID: id})
	}
	opsTotal.WithLabelValues("update", string(KindGuild), "ok").Inc()
	return nil
}

// SetGuildSetting updates a single guild setting by name via a dotted-path
// merge, leaving the rest of the settings sub-document intact.
func (s *RecordStore) SetGuildSetting(ctx context.Context, id int64, setting string, value any) error {
	return s.UpdateGuild(ctx, id, map[string]any{"settings." + setting: value})
}

// Increment adjusts a top-level counter by delta using read-modify-write. A
// positive delta always succeeds; a negative delta is rejected outright when
// the current value is smaller than the debit, without mutating the record.
//
// The read and the write are not atomic: two concurrent debits can both
// observe a sufficient balance. Callers needing strict correctness must
// serialize per id.
func (s *RecordStore) Increment(ctx context.Context, id int64, field string, delta int64) (int64, error) {
	if id <= 0 {
		return 0, ErrInvalidID
	}
	if !counterFields[field] {
		return 0, fmt.Errorf("%w: %s is not a counter field", ErrInvalidField, field)
	}

	doc, found := s.getDocument(ctx, KindUser, id)
	if !found {
		record := s.newUserRecord(id)
		var err error
		doc, err = userToDocument(record)
		if err != nil {
			return 0, err
		}
	}

	current, _ := numericValue(doc, field)
	if delta < 0 && current+delta < 0 {
		opsTotal.WithLabelValues("increment", string(KindUser), "rejected").Inc()
		return current, fmt.Errorf("%w: have %d, need %d", ErrInsufficientBalance, current, -delta)
	}

	next := current + delta
	applyFields(doc, map[string]any{field: next})
	if err := s.persist(ctx, KindUser, id, doc); err != nil {
		return current, err
	}

	if !found && s.bus != nil {
		s.bus.Emit(ctx, events.RecordCreatedEvent{Kind: string(KindUser), ID: id})
	}
	if s.bus != nil {
		s.bus.Emit(ctx, events.BalanceChangeEvent{
			UserID:       id,
			Field:        field,
			OldValue:     current,
			NewValue:     next,
			ChangeAmount: delta,
		})
	}
	opsTotal.WithLabelValues("increment", string(KindUser), "ok").Inc()
	return next, nil
}

// AddCoins credits a user's coin balance. Credits are never rejected.
func (s *RecordStore) AddCoins(ctx context.Context, id int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.Increment(ctx, id, "coins", amount)
}

// RemoveCoins debits a user's coin balance, failing without mutation if the
// balance is insufficient.
func (s *RecordStore) RemoveCoins(ctx context.Context, id int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.Increment(ctx, id, "coins", -amount)
}

// AddCookies credits a user's cookie count.
func (s *RecordStore) AddCookies(ctx context.Context, id int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.Increment(ctx, id, "cookies", amount)
}

// RemoveCookies debits a user's cookie count, failing without mutation if
// the count is insufficient.
func (s *RecordStore) RemoveCookies(ctx context.Context, id int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.Increment(ctx, id, "cookies", -amount)
}

// AddXP credits a user's experience.
func (s *RecordStore) AddXP(ctx context.Context, id int64, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, ErrInvalidAmount
	}
	return s.Increment(ctx, id, "xp", amount)
}
