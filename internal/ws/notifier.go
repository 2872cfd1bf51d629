package ws

import (
	"encoding/json"
	"time"

	"workforce-grid/internal/graph"
	"workforce-grid/internal/trust"
)

type TrustUpdatedEvent struct {
	Type      string  `json:"type"`
	UserID    string  `json:"user_id"`
	Skill     string  `json:"skill"`
	Trust     float64 `json:"trust"`
	Verified  bool    `json:"verified"`
	Version   uint64  `json:"version"`
	EventKind string  `json:"event_kind"`
	Outcome   string  `json:"outcome,omitempty"`
	Timestamp string  `json:"timestamp"`
}

type SweepCompletedEvent struct {
	Type      string `json:"type"`
	Scanned   int    `json:"scanned"`
	Decayed   int    `json:"decayed"`
	Conflicts int    `json:"conflicts"`
	TookMS    int64  `json:"took_ms"`
	Timestamp string `json:"timestamp"`
}

// Notifier bridges the trust engine to the websocket feed. Broadcast drops
// frames instead of blocking, so it is safe to call inline on the event path.
type Notifier struct {
	hub *Hub
}

func NewNotifier(hub *Hub) *Notifier {
	return &Notifier{hub: hub}
}

func (n *Notifier) TrustUpdated(edge graph.SkillEdge, ev trust.Event) {
	if n == nil || n.hub == nil {
		return
	}

	evt := TrustUpdatedEvent{
		Type:      "trust_updated",
		UserID:    edge.UserID,
		Skill:     edge.Skill,
		Trust:     edge.Trust,
		Verified:  edge.Verified,
		Version:   edge.Version,
		EventKind: string(ev.Kind),
		Outcome:   string(ev.Outcome),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}

func (n *Notifier) SweepCompleted(res trust.SweepResult) {
	if n == nil || n.hub == nil {
		return
	}

	evt := SweepCompletedEvent{
		Type:      "sweep_completed",
		Scanned:   res.Scanned,
		Decayed:   res.Decayed,
		Conflicts: res.Conflicts,
		TookMS:    res.Took.Milliseconds(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	b, err := json.Marshal(evt)
	if err != nil {
		return
	}
	n.hub.Broadcast(b)
}
