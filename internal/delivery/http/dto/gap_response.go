package dto

import "time"

type GapItemResponse struct {
	Skill      string  `json:"skill"`
	Category   string  `json:"category"`
	Complexity int     `json:"complexity"`
	Demand     int     `json:"demand"`
	Supply     int     `json:"supply"`
	Gap        int     `json:"gap"`
	UnmetJobs  int     `json:"unmet_jobs"`
	Score      float64 `json:"score"`
}

type GapReportResponse struct {
	GeneratedAt time.Time         `json:"generated_at"`
	Revision    uint64            `json:"revision"`
	MinTrust    float64           `json:"min_trust"`
	Cached      bool              `json:"cached"`
	Items       []GapItemResponse `json:"items"`
}
