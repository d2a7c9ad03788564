package sync

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/dnbomberos/guardia/internal/store"
)

// fakeTransport records published envelopes and lets tests inject inbound
// ones.
type fakeTransport struct {
	published []Envelope
	inbox     chan Envelope
	fail      bool
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{inbox: make(chan Envelope, 16)}
}

func (f *fakeTransport) Publish(_ context.Context, env Envelope) error {
	if f.fail {
		return context.DeadlineExceeded
	}
	f.published = append(f.published, env)
	return nil
}

func (f *fakeTransport) Receive() <-chan Envelope { return f.inbox }
func (f *fakeTransport) Close() error             { return nil }

func setupService(t *testing.T, transport Transport) *Service {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "guardia.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	if err := st.InitSchema(); err != nil {
		t.Fatalf("failed to initialize schema: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	return New(st, transport, log.New(io.Discard, "", 0))
}

func TestSavePersistsNotifiesAndBroadcasts(t *testing.T) {
	transport := newFakeTransport()
	svc := setupService(t, transport)
	ctx := context.Background()

	events, cancel := svc.Subscribe(store.KeySchedule)
	defer cancel()

	doc := json.RawMessage(`{"date":"5 DE AGOSTO DE 2025"}`)
	if err := svc.Save(ctx, store.KeySchedule, doc); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	// Local observer hears about the save exactly once, synchronously.
	select {
	case ev := <-events:
		if ev.Key != store.KeySchedule || string(ev.Data) != string(doc) {
			t.Errorf("Unexpected event: %+v", ev)
		}
	default:
		t.Fatal("Expected a local notification")
	}
	select {
	case ev := <-events:
		t.Fatalf("Expected exactly one notification, got a second: %+v", ev)
	default:
	}

	// Persisted.
	loaded, err := svc.Load(ctx, store.KeySchedule)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(doc) {
		t.Errorf("Expected stored document, got %s", loaded)
	}

	// Broadcast stamped with the session sender id.
	if len(transport.published) != 1 {
		t.Fatalf("Expected 1 broadcast, got %d", len(transport.published))
	}
	if transport.published[0].Sender != svc.Sender() {
		t.Errorf("Broadcast sender %q does not match session %q", transport.published[0].Sender, svc.Sender())
	}
}

func TestSaveUnknownKeyRejected(t *testing.T) {
	svc := setupService(t, newFakeTransport())
	if err := svc.Save(context.Background(), "nonsense", json.RawMessage(`{}`)); err == nil {
		t.Fatal("Expected error for unknown key")
	}
}

func TestTransportFailureDegradesToLocal(t *testing.T) {
	transport := newFakeTransport()
	transport.fail = true
	svc := setupService(t, transport)
	ctx := context.Background()

	doc := json.RawMessage(`{"date":"x"}`)
	if err := svc.Save(ctx, store.KeySchedule, doc); err != nil {
		t.Fatalf("Save must not fail on transport errors: %v", err)
	}
	loaded, err := svc.Load(ctx, store.KeySchedule)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(doc) {
		t.Errorf("Expected document persisted despite transport failure, got %s", loaded)
	}
}

func TestRemoteEnvelopeApplied(t *testing.T) {
	transport := newFakeTransport()
	svc := setupService(t, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	events, unsub := svc.Subscribe(store.KeyUnitReport)
	defer unsub()

	doc := json.RawMessage(`{"reportDate":"12/8/2025","zones":[]}`)
	transport.inbox <- Envelope{Key: store.KeyUnitReport, Data: doc, Sender: "peer-1"}

	select {
	case ev := <-events:
		if string(ev.Data) != string(doc) {
			t.Errorf("Unexpected event data: %s", ev.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for remote apply notification")
	}

	loaded, err := svc.Load(context.Background(), store.KeyUnitReport)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(doc) {
		t.Errorf("Expected remote document persisted, got %s", loaded)
	}

	cancel()
	<-done
}

func TestSelfEchoSuppressed(t *testing.T) {
	transport := newFakeTransport()
	svc := setupService(t, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	events, unsub := svc.Subscribe(store.KeySchedule)
	defer unsub()

	// An echo of our own broadcast and then a real peer message. When the
	// peer message arrives, the echo has already been decided on: the
	// apply loop is serial.
	echo := Envelope{Key: store.KeySchedule, Data: json.RawMessage(`{"date":"echo"}`), Sender: svc.Sender()}
	peer := Envelope{Key: store.KeySchedule, Data: json.RawMessage(`{"date":"peer"}`), Sender: "peer-1"}
	transport.inbox <- echo
	transport.inbox <- peer

	select {
	case ev := <-events:
		if string(ev.Data) != `{"date":"peer"}` {
			t.Fatalf("Self-echo leaked through: %s", ev.Data)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Timed out waiting for peer apply")
	}

	cancel()
	<-done
}

func TestLastWriterWins(t *testing.T) {
	transport := newFakeTransport()
	svc := setupService(t, transport)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Run(ctx)
	}()

	events, unsub := svc.Subscribe(store.KeySchedule)
	defer unsub()

	transport.inbox <- Envelope{Key: store.KeySchedule, Data: json.RawMessage(`{"date":"first"}`), Sender: "peer-1"}
	transport.inbox <- Envelope{Key: store.KeySchedule, Data: json.RawMessage(`{"date":"second"}`), Sender: "peer-2"}

	for i := 0; i < 2; i++ {
		select {
		case <-events:
		case <-time.After(2 * time.Second):
			t.Fatal("Timed out waiting for applies")
		}
	}

	loaded, err := svc.Load(context.Background(), store.KeySchedule)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != `{"date":"second"}` {
		t.Errorf("Expected last arrival to win, got %s", loaded)
	}

	cancel()
	<-done
}

func TestSubscribeCancelSymmetric(t *testing.T) {
	svc := setupService(t, nil)

	_, cancel1 := svc.Subscribe(store.KeySchedule)
	_, cancel2 := svc.Subscribe(store.KeySchedule)
	if n := svc.bus.SubscriberCount(store.KeySchedule); n != 2 {
		t.Fatalf("Expected 2 subscribers, got %d", n)
	}

	cancel1()
	if n := svc.bus.SubscriberCount(store.KeySchedule); n != 1 {
		t.Fatalf("Expected 1 subscriber after cancel, got %d", n)
	}

	// Cancel is idempotent.
	cancel1()
	cancel2()
	if n := svc.bus.SubscriberCount(store.KeySchedule); n != 0 {
		t.Fatalf("Expected 0 subscribers, got %d", n)
	}
}

func TestLocalOnlyServiceSaves(t *testing.T) {
	svc := setupService(t, nil)
	ctx := context.Background()

	doc := json.RawMessage(`{"date":"x"}`)
	if err := svc.Save(ctx, store.KeySchedule, doc); err != nil {
		t.Fatalf("Local-only save failed: %v", err)
	}
	loaded, err := svc.Load(ctx, store.KeySchedule)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if string(loaded) != string(doc) {
		t.Errorf("Expected document persisted, got %s", loaded)
	}
}
