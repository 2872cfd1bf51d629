package graph

import "time"

// NodeType tags a record in the arena. Keys are unique per type, mirroring
// per-label uniqueness constraints in a property graph.
type NodeType string

const (
	NodeUser           NodeType = "user"
	NodeSkill          NodeType = "skill"
	NodeJob            NodeType = "job"
	NodeLocation       NodeType = "location"
	NodeTrainingCenter NodeType = "training_center"
)

type EdgeType string

const (
	EdgeHasSkill        EdgeType = "HAS_SKILL"
	EdgePrerequisiteFor EdgeType = "PREREQUISITE_FOR"
	EdgeRequires        EdgeType = "REQUIRES"
	EdgeLocatedIn       EdgeType = "LOCATED_IN"
	EdgeTeaches         EdgeType = "TEACHES"
)

// Ref identifies a node without holding a pointer to it. All cross-record
// references in the store go through refs and index lookups.
type Ref struct {
	Type NodeType
	Key  string
}

func UserRef(id string) Ref { return Ref{Type: NodeUser, Key: id} }

func SkillRef(name string) Ref { return Ref{Type: NodeSkill, Key: name} }

func JobRef(id string) Ref { return Ref{Type: NodeJob, Key: id} }

func LocationRef(name string) Ref { return Ref{Type: NodeLocation, Key: name} }

func CenterRef(name string) Ref { return Ref{Type: NodeTrainingCenter, Key: name} }

// SkillAttrs describes a taxonomy skill. Complexity is an open-ended tier
// starting at 1; the seed set uses 1..3.
type SkillAttrs struct {
	Category   string
	Complexity int
}

type UserAttrs struct {
	RegisteredAt time.Time
}

type JobAttrs struct {
	Title       string
	Company     string
	Description string
	SalaryMin   int
	SalaryMax   int
	Currency    string
	Source      string
	PostedAt    time.Time
	IsActive    bool
}

type LocationAttrs struct {
	Latitude  float64
	Longitude float64
}

type CenterAttrs struct {
	Accreditation string
}

// Node is a tagged record. Exactly one of the attribute pointers is set,
// matching Ref.Type. Values returned from the store are copies; mutating
// them does not touch the arena.
type Node struct {
	Ref      Ref
	Skill    *SkillAttrs
	User     *UserAttrs
	Job      *JobAttrs
	Location *LocationAttrs
	Center   *CenterAttrs
}

// RequiresAttrs carries the per-job trust threshold. MinTrust 0 means "any
// positive trust".
type RequiresAttrs struct {
	MinTrust float64
}

// TeachesAttrs describes a training-center course for a skill.
type TeachesAttrs struct {
	Course        string
	DurationWeeks int
	CostKES       int
}

// Edge is a typed connection between two refs. HAS_SKILL never appears here;
// trust-bearing edges live behind their own versioned records (see SkillEdge).
type Edge struct {
	Type     EdgeType
	From     Ref
	To       Ref
	Requires *RequiresAttrs
	Teaches  *TeachesAttrs
}

// SkillEdge is one immutable snapshot of a user-holds-skill relationship.
// Writers never mutate a snapshot in place: they build the successor record
// and install it with a version-checked compare-and-swap.
type SkillEdge struct {
	UserID    string
	Skill     string
	Trust     float64
	Evidence  int
	Failures  int
	Verified  bool
	LastEvent time.Time
	DecayedAt time.Time
	Version   uint64
}

// Requirement is a flattened REQUIRES edge used by matching.
type Requirement struct {
	Skill    string
	MinTrust float64
}

// MeetsThreshold is the single place the "any positive trust" default lives:
// a threshold of 0 asks for trust > 0, anything higher is compared inclusively.
func MeetsThreshold(trust, minTrust float64) bool {
	if minTrust <= 0 {
		return trust > 0
	}
	return trust >= minTrust
}
