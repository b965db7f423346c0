package server

import (
	"log/slog"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/collection"
	"github.com/goliatone/go-formbuilder/pkg/field"
)

// subscriberBuffer is the number of snapshots a slow subscriber may lag
// behind before older snapshots are dropped.
const subscriberBuffer = 8

// Session owns the editor's collection. Intents from every connection are
// serialised through one mutex and each applied mutation is broadcast to
// subscribers.
type Session struct {
	mu   sync.Mutex
	coll *collection.Collection

	subsMu sync.Mutex
	subs   map[chan collection.Snapshot]struct{}

	logger *slog.Logger
}

// NewSession constructs an empty session. opts are forwarded to the
// underlying collection.
func NewSession(logger *slog.Logger, opts ...collection.Option) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Session{
		subs:   make(map[chan collection.Snapshot]struct{}),
		logger: logger,
	}
	opts = append([]collection.Option{collection.WithLogger(logger)}, opts...)
	opts = append(opts, collection.WithObserver(collection.ObserverFunc(s.broadcast)))
	s.coll = collection.New(opts...)
	return s
}

// Load replaces the collection contents.
func (s *Session) Load(records []field.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll.Load(records)
}

// Apply runs one intent against the collection.
func (s *Session) Apply(in collection.Intent) (collection.Result, collection.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.coll.Apply(in)
	return res, s.coll.Snapshot(), err
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() collection.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll.Snapshot()
}

// Records returns a copy of the current records.
func (s *Session) Records() []field.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll.Records()
}

// Subscribe registers for snapshots published after each applied mutation.
// The returned function unregisters and closes the channel.
func (s *Session) Subscribe() (<-chan collection.Snapshot, func()) {
	ch := make(chan collection.Snapshot, subscriberBuffer)
	s.subsMu.Lock()
	s.subs[ch] = struct{}{}
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, ch)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

// broadcast runs with s.mu held, so it never blocks on a subscriber.
func (s *Session) broadcast(snapshot collection.Snapshot) {
	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for ch := range s.subs {
		select {
		case ch <- snapshot:
		default:
			s.logger.Warn("dropping snapshot for slow subscriber")
		}
	}
}
