package dto

import "time"

type SkillDistributionResponse struct {
	Skill      string  `json:"skill"`
	Category   string  `json:"category"`
	Complexity int     `json:"complexity"`
	Holders    int     `json:"holders"`
	Verified   int     `json:"verified"`
	AvgTrust   float64 `json:"avg_trust"`
	Demand     int     `json:"demand"`
}

type TrustBucketResponse struct {
	Range string `json:"range"`
	Count int    `json:"count"`
}

type TrustHistogramResponse struct {
	Users   int                   `json:"users"`
	Buckets []TrustBucketResponse `json:"buckets"`
}

type OverviewResponse struct {
	Nodes           map[string]int `json:"nodes"`
	Edges           map[string]int `json:"edges"`
	ActiveJobs      int            `json:"active_jobs"`
	TaxonomyVersion uint64         `json:"taxonomy_version"`
	Revision        uint64         `json:"revision"`
}

type DecayResponse struct {
	At        time.Time `json:"at"`
	Scanned   int       `json:"scanned"`
	Decayed   int       `json:"decayed"`
	Conflicts int       `json:"conflicts"`
	TookMS    int64     `json:"took_ms"`
	Skipped   bool      `json:"skipped"`
}
