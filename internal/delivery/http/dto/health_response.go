package dto

type HealthComponent struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]HealthComponent `json:"components"`
	Nodes      int                        `json:"nodes"`
	Edges      int                        `json:"edges"`
	Revision   uint64                     `json:"revision"`
}
