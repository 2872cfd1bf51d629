package dto

type JobRequirementResponse struct {
	Skill    string  `json:"skill"`
	MinTrust float64 `json:"min_trust"`
}

type JobResponse struct {
	JobID        string                   `json:"job_id"`
	Title        string                   `json:"title"`
	Company      string                   `json:"company"`
	Description  string                   `json:"description"`
	SalaryMin    int                      `json:"salary_min"`
	SalaryMax    int                      `json:"salary_max"`
	Currency     string                   `json:"currency"`
	Source       string                   `json:"source"`
	PostedDate   string                   `json:"posted_date"`
	Location     string                   `json:"location"`
	IsActive     bool                     `json:"is_active"`
	Requirements []JobRequirementResponse `json:"requirements"`
	Unresolved   []string                 `json:"unresolved,omitempty"`
}
