package relay

import (
	"sync"

	"github.com/go-monolith/mono/pkg/types"

	"github.com/example/presence-relay/events"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(_ string, _ ...any) {}
func (m *mockLogger) Info(_ string, _ ...any)  {}
func (m *mockLogger) Warn(_ string, _ ...any)  {}
func (m *mockLogger) Error(_ string, _ ...any) {}
func (m *mockLogger) With(_ ...any) types.Logger {
	return m
}
func (m *mockLogger) WithModule(_ string) types.Logger {
	return m
}
func (m *mockLogger) WithError(_ error) types.Logger {
	return m
}

func newMockLogger() types.Logger {
	return &mockLogger{}
}

// sentEvent is one delivery recorded by the fake sink.
type sentEvent struct {
	SessionID string // empty for SendAll
	Event     string
	Payload   any
}

// fakeSink records every delivery so tests can assert on exact fan-out.
type fakeSink struct {
	mu   sync.Mutex
	sent []sentEvent
}

func newFakeSink() *fakeSink {
	return &fakeSink{}
}

func (f *fakeSink) Send(sessionID, event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvent{SessionID: sessionID, Event: event, Payload: payload})
}

func (f *fakeSink) SendAll(event string, payload any) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentEvent{Event: event, Payload: payload})
}

// events returns a snapshot of all recorded deliveries.
func (f *fakeSink) events() []sentEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentEvent, len(f.sent))
	copy(out, f.sent)
	return out
}

// byType returns the recorded deliveries of one event type.
func (f *fakeSink) byType(event string) []sentEvent {
	var out []sentEvent
	for _, e := range f.events() {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

// sessionsFor returns which sessions received an event type.
func (f *fakeSink) sessionsFor(event string) map[string]int {
	counts := make(map[string]int)
	for _, e := range f.byType(event) {
		counts[e.SessionID]++
	}
	return counts
}

func (f *fakeSink) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}

// fakeAnnouncer records the global announcements the router makes.
type fakeAnnouncer struct {
	mu       sync.Mutex
	online   []string
	offline  []string
	messages []events.MessagePostedEvent
	statuses []events.ConversationStatusEvent
}

func newFakeAnnouncer() *fakeAnnouncer {
	return &fakeAnnouncer{}
}

func (f *fakeAnnouncer) UserOnline(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = append(f.online, userID)
}

func (f *fakeAnnouncer) UserOffline(userID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.offline = append(f.offline, userID)
}

func (f *fakeAnnouncer) MessagePosted(event events.MessagePostedEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, event)
}

func (f *fakeAnnouncer) ConversationStatus(event events.ConversationStatusEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.statuses = append(f.statuses, event)
}

func (f *fakeAnnouncer) onlineList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.online...)
}

func (f *fakeAnnouncer) offlineList() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.offline...)
}

func (f *fakeAnnouncer) messageList() []events.MessagePostedEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.MessagePostedEvent(nil), f.messages...)
}

func (f *fakeAnnouncer) statusList() []events.ConversationStatusEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]events.ConversationStatusEvent(nil), f.statuses...)
}

// newTestRouter builds a router over fresh state with recording fakes.
func newTestRouter() (*Router, *fakeSink, *fakeAnnouncer) {
	sink := newFakeSink()
	announce := newFakeAnnouncer()
	registry := NewRegistry()
	roster := NewRoster(sink)
	typing := NewTypingTracker(roster)
	location := NewLocationTracker(roster)
	router := NewRouter(registry, roster, typing, location, sink, announce, newMockLogger())
	return router, sink, announce
}
