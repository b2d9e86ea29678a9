package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/aretw0/cohort/internal/logging"
	"github.com/aretw0/cohort/pkg/domain"
)

// SSE event names.
const (
	EventCycle = "cycle"
	EventEnd   = "end"
	EventError = "error"
)

// Message is one server-sent event.
type Message struct {
	Event string
	Data  string
}

// StreamManager handles active SSE connections, keyed by run ID.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- Message]struct{}
	logger      *slog.Logger
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- Message]struct{}),
		logger:      logging.NewNop(),
	}
}

func (sm *StreamManager) Subscribe(runID string) (chan Message, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan Message, 64)
	if _, ok := sm.subscribers[runID]; !ok {
		sm.subscribers[runID] = make(map[chan<- Message]struct{})
	}
	sm.subscribers[runID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[runID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, runID)
			}
		}
	}
}

// Subscribers returns the number of open streams for runID.
func (sm *StreamManager) Subscribers(runID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[runID])
}

func (sm *StreamManager) Broadcast(runID string, msg Message) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[runID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			sm.logger.Warn("SSE: client buffer full, dropping message", "run_id", runID, "event", msg.Event)
		}
	}
}

func (sm *StreamManager) broadcastJSON(runID, event string, v any) {
	if sm.Subscribers(runID) == 0 {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: encode failed", "run_id", runID, "err", err)
		return
	}
	sm.Broadcast(runID, Message{Event: event, Data: string(data)})
}

// Hooks returns lifecycle hooks that publish run progress to subscribers.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnCycle: func(_ context.Context, e *domain.CycleEvent) {
			sm.broadcastJSON(e.RunID, EventCycle, e.Record)
		},
		OnRunEnd: func(_ context.Context, e *domain.RunEvent) {
			sm.broadcastJSON(e.RunID, EventEnd, e)
		},
		OnRunError: func(_ context.Context, e *domain.RunEvent) {
			sm.broadcastJSON(e.RunID, EventError, map[string]any{
				"run_id": e.RunID,
				"cycles": e.Cycles,
				"error":  e.Err.Error(),
			})
		},
	}
}
