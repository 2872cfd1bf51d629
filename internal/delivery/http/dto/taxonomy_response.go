package dto

type SkillResponse struct {
	Name       string `json:"name"`
	Category   string `json:"category"`
	Complexity int    `json:"complexity"`
}

type SkillDetailResponse struct {
	Name          string   `json:"name"`
	Category      string   `json:"category"`
	Complexity    int      `json:"complexity"`
	Prerequisites []string `json:"prerequisites"`
	Dependents    []string `json:"dependents"`
	Closure       []string `json:"closure"`
	TaughtBy      []string `json:"taught_by"`
	RequiredBy    []string `json:"required_by"`
}

type ClosureResponse struct {
	Skill   string   `json:"skill"`
	Closure []string `json:"closure"`
}

type PrerequisitesResponse struct {
	Added           int    `json:"added"`
	TaxonomyVersion uint64 `json:"taxonomy_version"`
}
