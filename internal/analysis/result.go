package analysis

import "time"

// Result sources.
const (
	SourceModel    = "model"
	SourceFallback = "fallback"
)

// Result is the structured analysis of one resume.
type Result struct {
	ATSScore        int         `json:"atsScore"`
	Skills          []Skill     `json:"skills"`
	Strengths       []string    `json:"strengths"`
	Weaknesses      []string    `json:"weaknesses"`
	Recommendations []string    `json:"recommendations"`
	Experience      Experience  `json:"experience"`
	Education       []Education `json:"education"`
	Certifications  []string    `json:"certifications"`
	Languages       []string    `json:"languages"`
	Summary         string      `json:"summary"`
	AnalyzedAt      time.Time   `json:"analyzedAt"`

	// Source is SourceModel or SourceFallback; Degraded is true for the fallback record.
	Source   string `json:"source"`
	Degraded bool   `json:"degraded"`
}

type Skill struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Proficiency string `json:"proficiency"`
	Relevance   int    `json:"relevance"`
}

type Experience struct {
	Years      int      `json:"years"`
	Roles      []string `json:"roles"`
	Industries []string `json:"industries"`
}

type Education struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Year        string `json:"year"`
}

// Clamp forces the ATS score and every skill relevance into [0,100].
func Clamp(r Result) Result {
	r.ATSScore = clampScore(r.ATSScore)
	if len(r.Skills) > 0 {
		skills := make([]Skill, len(r.Skills))
		copy(skills, r.Skills)
		for i := range skills {
			skills[i].Relevance = clampScore(skills[i].Relevance)
		}
		r.Skills = skills
	}
	return r
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
