package dto

type NearbyJobResponse struct {
	JobID      string  `json:"job_id"`
	Title      string  `json:"title"`
	Company    string  `json:"company"`
	Location   string  `json:"location"`
	DistanceKM float64 `json:"distance_km"`
}

type NearbyCourseResponse struct {
	Skill         string `json:"skill"`
	Course        string `json:"course"`
	DurationWeeks int    `json:"duration_weeks"`
	CostKES       int    `json:"cost_kes"`
}

type NearbyCenterResponse struct {
	Name          string                 `json:"name"`
	Accreditation string                 `json:"accreditation"`
	Location      string                 `json:"location"`
	DistanceKM    float64                `json:"distance_km"`
	Courses       []NearbyCourseResponse `json:"courses"`
}

type NearbyResponse struct {
	RadiusKM float64                `json:"radius_km"`
	Jobs     []NearbyJobResponse    `json:"jobs"`
	Centers  []NearbyCenterResponse `json:"centers"`
}
