package dto

type SkillCheckResponse struct {
	Skill    string  `json:"skill"`
	Trust    float64 `json:"trust"`
	Verified bool    `json:"verified"`
	Meets    bool    `json:"meets"`
}

type QualificationResponse struct {
	UserID    string               `json:"user_id"`
	Skill     string               `json:"skill"`
	MinTrust  float64              `json:"min_trust"`
	Qualified bool                 `json:"qualified"`
	Missing   []string             `json:"missing"`
	Checks    []SkillCheckResponse `json:"checks"`
}
