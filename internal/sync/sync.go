// Package sync owns the canonical copy of every entity: it persists saves
// to the local document store, notifies in-process observers, and
// broadcasts mutations to remote peers over a shared pub/sub topic.
//
// Consistency is last-writer-wins with no merge: every save is a
// full-document overwrite of its entity key, and remote envelopes are
// applied in arrival order. This is acceptable because expected write
// concurrency is a handful of human operators, not machines.
//
// The service is constructed once at process start with an injected
// transport and a generated session id; there is no package-level client
// state. Inbound envelopes carrying the local session id are discarded
// unprocessed, so a save only reaches its local observers once,
// synchronously, at save time.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/google/uuid"

	"github.com/dnbomberos/guardia/internal/store"
)

// Service coordinates the store, the local bus and the remote transport.
type Service struct {
	store     *store.Store
	transport Transport
	bus       *Bus
	sender    string
	logger    *log.Logger
}

// New creates a sync service with a fresh session sender id.
//
// transport may be nil, in which case the service runs local-only (saves
// persist and notify, nothing is broadcast). If logger is nil, a default
// logger writing to stderr is used.
func New(st *store.Store, transport Transport, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(os.Stderr, "[sync] ", log.LstdFlags)
	}
	return &Service{
		store:     st,
		transport: transport,
		bus:       NewBus(logger),
		sender:    uuid.NewString(),
		logger:    logger,
	}
}

// Sender returns the opaque session id stamped on outbound envelopes.
func (s *Service) Sender() string { return s.sender }

// Close releases the transport (if any) and the underlying store.
func (s *Service) Close() error {
	var first error
	if s.transport != nil {
		if err := s.transport.Close(); err != nil {
			first = err
		}
	}
	if err := s.store.Close(); err != nil && first == nil {
		first = err
	}
	return first
}

// Save persists data under key, notifies local observers, and broadcasts
// the mutation to peers.
//
// A transport failure is logged and the save degrades to local-only; it
// never blocks or fails the save itself.
func (s *Service) Save(ctx context.Context, key string, data json.RawMessage) error {
	if !store.KnownKey(key) {
		return fmt.Errorf("unknown entity key %q", key)
	}
	if err := s.store.SaveContext(ctx, key, string(data), store.OriginLocal, s.sender); err != nil {
		return fmt.Errorf("failed to persist %s: %w", key, err)
	}

	// Local observers hear about the save exactly once, here. The remote
	// echo of this broadcast is filtered out by sender id.
	s.bus.Publish(Event{Key: key, Data: data})

	if s.transport == nil {
		return nil
	}
	env := Envelope{Key: key, Data: data, Sender: s.sender}
	if err := s.transport.Publish(ctx, env); err != nil {
		s.logger.Printf("Warning: broadcast of %s failed, continuing local-only: %v", key, err)
	}
	return nil
}

// Load returns the stored document for key, falling back to the key's
// built-in default when absent.
func (s *Service) Load(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := s.store.LoadContext(ctx, key)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(data), nil
}

// Subscribe registers an observer for one entity key. The cancel func
// must be called when the observer goes away; registration and
// deregistration are symmetric.
func (s *Service) Subscribe(key string) (<-chan Event, func()) {
	return s.bus.Subscribe(key)
}

// Run consumes inbound envelopes until ctx is cancelled or the transport
// closes its receive channel. Envelopes from this session are dropped;
// everything else is applied last-writer-wins and re-published on the
// local bus.
func (s *Service) Run(ctx context.Context) error {
	if s.transport == nil {
		<-ctx.Done()
		return nil
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case env, ok := <-s.transport.Receive():
			if !ok {
				return fmt.Errorf("sync transport closed")
			}
			s.applyRemote(ctx, env)
		}
	}
}

// applyRemote writes one peer mutation into the local store and notifies
// observers. Failures are logged, not fatal: a bad envelope must not take
// the apply loop down.
func (s *Service) applyRemote(ctx context.Context, env Envelope) {
	if env.Sender == s.sender {
		return // self-echo
	}
	if !store.KnownKey(env.Key) {
		s.logger.Printf("Warning: dropping envelope for unknown key %q", env.Key)
		return
	}
	if err := s.store.SaveContext(ctx, env.Key, string(env.Data), store.OriginRemote, env.Sender); err != nil {
		s.logger.Printf("Warning: failed to apply remote %s: %v", env.Key, err)
		return
	}
	s.bus.Publish(Event{Key: env.Key, Data: env.Data})
}
