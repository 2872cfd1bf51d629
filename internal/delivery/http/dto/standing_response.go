package dto

import "time"

type SkillStandingResponse struct {
	UserID    string    `json:"user_id"`
	Skill     string    `json:"skill"`
	Trust     float64   `json:"trust"`
	Verified  bool      `json:"verified"`
	Evidence  int       `json:"evidence"`
	Failures  int       `json:"failures"`
	LastEvent time.Time `json:"last_event"`
	Version   uint64    `json:"version"`
}

type UnresolvedEventResponse struct {
	ID         string    `json:"id"`
	Kind       string    `json:"kind"`
	Subject    string    `json:"subject"`
	Skill      string    `json:"skill"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
