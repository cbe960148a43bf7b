// Package store maintains the session-wide order cache and keeps
// non-terminal orders fresh by polling the trade API.
package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kayung-developer/QuantumEdge/metrics"
	"github.com/kayung-developer/QuantumEdge/order"
)

// DefaultPollInterval matches the refresh cadence the web client used.
const DefaultPollInterval = 3 * time.Second

// StatusFetcher fetches the latest record for one order. *gateway.Client
// satisfies it; tests plug in fakes.
type StatusFetcher interface {
	GetOrder(ctx context.Context, id string) (order.Order, error)
}

// Entry is the read-side view of one cached order.
type Entry struct {
	Order order.Order
	// LastError holds the most recent fetch failure for this order, cleared
	// on the next successful refresh. Polling errors are otherwise silent.
	LastError string
	// PollCount counts refresh attempts, successful or not.
	PollCount int
}

type entry struct {
	rec        order.Order
	lastErr    string
	appliedSeq uint64
	pollCount  int
}

// Options tune a Store. Zero values fall back to defaults.
type Options struct {
	PollInterval time.Duration
	Logger       *zap.Logger
}

// Store is an insertion-ordered cache of order records owned by one
// application session. All mutation funnels through Add and apply; records
// are never deleted while the session lives. Constructed explicitly and
// passed by reference, never package-level.
type Store struct {
	fetcher  StatusFetcher
	interval time.Duration
	logger   *zap.Logger
	machine  *order.StateMachine

	mu      sync.RWMutex
	entries map[string]*entry
	ids     []string // insertion order
	seq     uint64   // monotonic, tags every tick and pushed update
	polling bool
	cancel  context.CancelFunc
	subs    []chan []Entry
	closed  bool
}

func New(fetcher StatusFetcher, opts Options) *Store {
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Store{
		fetcher:  fetcher,
		interval: opts.PollInterval,
		logger:   opts.Logger,
		machine:  order.NewStateMachine(),
		entries:  make(map[string]*entry),
	}
}

// Add inserts a newly created order. Duplicate ids are a silent no-op; the
// first insert wins. Starts the poller when the record is non-terminal and
// the poller is idle. Reports whether the record was inserted.
func (s *Store) Add(o order.Order) bool {
	if o.ID == "" {
		return false
	}
	s.mu.Lock()
	if _, exists := s.entries[o.ID]; exists {
		s.mu.Unlock()
		return false
	}
	s.seq++
	s.entries[o.ID] = &entry{rec: o, appliedSeq: s.seq}
	s.ids = append(s.ids, o.ID)
	if o.Status.Active() {
		s.startLocked()
	}
	tracked, active := len(s.entries), s.activeCountLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.SetTrackedOrders(tracked)
	metrics.SetActiveOrders(active)
	s.logger.Info("order tracked",
		zap.String("order_id", o.ID),
		zap.String("symbol", o.Symbol),
		zap.String("status", string(o.Status)),
		zap.Bool("paper", o.IsPaperTrade))
	s.publish(snap)
	return true
}

// Get returns the cached entry for id.
func (s *Store) Get(id string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return Entry{}, false
	}
	return Entry{Order: e.rec, LastError: e.lastErr, PollCount: e.pollCount}, true
}

// Snapshot returns all entries in insertion order.
func (s *Store) Snapshot() []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Groups returns the parent/child display projection of the current cache.
func (s *Store) Groups() []order.Group {
	snap := s.Snapshot()
	records := make([]order.Order, 0, len(snap))
	for _, e := range snap {
		records = append(records, e.Order)
	}
	return order.GroupByParent(records)
}

// ActiveCount returns how many cached orders are still non-terminal.
func (s *Store) ActiveCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeCountLocked()
}

// Polling reports whether the refresh timer is currently running.
func (s *Store) Polling() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.polling
}

// StartPolling starts the refresh timer. Calling it while running is a no-op.
func (s *Store) StartPolling() {
	s.mu.Lock()
	s.startLocked()
	s.mu.Unlock()
}

// StopPolling cancels the refresh timer and any in-flight status requests.
// Idempotent.
func (s *Store) StopPolling() {
	s.mu.Lock()
	s.stopLocked()
	s.mu.Unlock()
}

// Close stops polling and closes all subscriber channels.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.stopLocked()
	for _, ch := range s.subs {
		close(ch)
	}
	s.subs = nil
}

// Subscribe returns a channel that carries a full snapshot after every
// change. The channel is buffered and never blocks the store; a slow
// consumer sees the latest snapshot, not every intermediate one.
func (s *Store) Subscribe() <-chan []Entry {
	ch := make(chan []Entry, 1)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// ApplyUpdate feeds a pushed (websocket) record through the same freshness
// gate as poll responses. Unknown ids are inserted, which is how TWAP child
// slices surface without their own submission call. A push that would move
// the record backwards through its lifecycle (a terminal record going
// non-terminal, or any other illegal transition) is discarded; the status
// lifecycle is monotone and the backend never un-settles an order, so such
// a message can only be stale or corrupt.
func (s *Store) ApplyUpdate(o order.Order) {
	if o.ID == "" {
		return
	}
	s.mu.Lock()
	e, ok := s.entries[o.ID]
	if !ok {
		s.mu.Unlock()
		s.Add(o)
		return
	}
	if err := s.machine.ValidateTransition(e.rec.Status, o.Status); err != nil {
		from := e.rec.Status
		s.mu.Unlock()
		s.logger.Warn("discarding pushed order update",
			zap.String("order_id", o.ID),
			zap.String("from", string(from)),
			zap.String("to", string(o.Status)),
			zap.Error(err))
		return
	}
	s.seq++
	e.rec = o
	e.lastErr = ""
	e.appliedSeq = s.seq
	if s.activeCountLocked() > 0 {
		s.startLocked()
	}
	active := s.activeCountLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.SetActiveOrders(active)
	s.publish(snap)
}

func (s *Store) startLocked() {
	if s.polling || s.closed {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.polling = true
	s.cancel = cancel
	go s.loop(ctx)
	s.logger.Info("order polling started", zap.Duration("interval", s.interval))
}

func (s *Store) stopLocked() {
	if !s.polling {
		return
	}
	s.polling = false
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.logger.Info("order polling stopped")
}

func (s *Store) loop(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollOnce(ctx)
		}
	}
}

// pollOnce runs one tick: fetch every non-terminal order concurrently, apply
// each outcome independently, then publish a single snapshot once the batch
// settles. When the active set is empty the poller stops itself.
func (s *Store) pollOnce(ctx context.Context) {
	s.mu.Lock()
	active := make([]string, 0, len(s.ids))
	for _, id := range s.ids {
		if s.entries[id].rec.Status.Active() {
			active = append(active, id)
		}
	}
	if len(active) == 0 {
		s.stopLocked()
		s.mu.Unlock()
		return
	}
	s.seq++
	tickSeq := s.seq
	s.mu.Unlock()

	metrics.IncPollTick()

	var wg sync.WaitGroup
	for _, id := range active {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			start := time.Now()
			rec, err := s.fetcher.GetOrder(ctx, id)
			metrics.ObserveFetchLatency(time.Since(start))
			if ctx.Err() != nil {
				// Poller was stopped mid-flight; the outcome is void.
				return
			}
			s.apply(tickSeq, id, rec, err)
		}(id)
	}
	wg.Wait()

	s.mu.Lock()
	activeLeft := s.activeCountLocked()
	if activeLeft == 0 {
		s.stopLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()
	metrics.SetActiveOrders(activeLeft)
	s.publish(snap)
}

// apply merges one fetch outcome. A response tagged with a sequence older
// than the last applied one for that id is discarded, so a late response can
// never clobber fresher state. Failures record LastError and leave the
// record untouched until the next tick.
func (s *Store) apply(tickSeq uint64, id string, rec order.Order, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok || tickSeq < e.appliedSeq {
		return
	}
	e.pollCount++
	if err != nil {
		e.lastErr = err.Error()
		metrics.IncFetchError()
		s.logger.Warn("order status fetch failed",
			zap.String("order_id", id),
			zap.Error(err))
		return
	}
	// The cache key is authoritative over whatever id the body claims.
	rec.ID = id
	e.rec = rec
	e.lastErr = ""
	e.appliedSeq = tickSeq
}

func (s *Store) activeCountLocked() int {
	n := 0
	for _, e := range s.entries {
		if e.rec.Status.Active() {
			n++
		}
	}
	return n
}

func (s *Store) snapshotLocked() []Entry {
	snap := make([]Entry, 0, len(s.ids))
	for _, id := range s.ids {
		e := s.entries[id]
		snap = append(snap, Entry{Order: e.rec, LastError: e.lastErr, PollCount: e.pollCount})
	}
	return snap
}

// publish fans the snapshot out without ever blocking. A full subscriber
// buffer is drained first so the consumer always wakes to the latest state.
func (s *Store) publish(snap []Entry) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return
	}
	for _, ch := range s.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}
