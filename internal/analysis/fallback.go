package analysis

import "time"

// Fallback returns the canned record used when the model cannot be reached or answers badly.
func Fallback(now time.Time) Result {
	return Result{
		ATSScore: 75,
		Skills: []Skill{
			{Name: "JavaScript", Category: "Technical", Proficiency: "Intermediate", Relevance: 80},
			{Name: "Communication", Category: "Soft", Proficiency: "Advanced", Relevance: 90},
		},
		Strengths:       []string{"Strong technical foundation", "Good educational background"},
		Weaknesses:      []string{"Could use more specific achievements", "Add more relevant keywords"},
		Recommendations: []string{"Quantify your achievements", "Tailor resume to job descriptions", "Add more industry-specific keywords"},
		Experience: Experience{
			Years:      3,
			Roles:      []string{"Developer"},
			Industries: []string{"Technology"},
		},
		Education:      []Education{{Degree: "Bachelor's Degree", Institution: "University", Year: "2020"}},
		Certifications: []string{},
		Languages:      []string{"English"},
		Summary:        "Professional with solid technical skills and experience.",
		AnalyzedAt:     now.UTC(),
		Source:         SourceFallback,
		Degraded:       true,
	}
}
