package analysis

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// parseError marks a response that arrived but could not be used. It is never retried.
type parseError struct {
	err error
}

func (e *parseError) Error() string { return "parse analysis: " + e.err.Error() }
func (e *parseError) Unwrap() error { return e.err }

type wireResult struct {
	ATSScore        *json.Number    `json:"atsScore"`
	Skills          []wireSkill     `json:"skills"`
	Strengths       []string        `json:"strengths"`
	Weaknesses      []string        `json:"weaknesses"`
	Recommendations []string        `json:"recommendations"`
	Experience      wireExperience  `json:"experience"`
	Education       []wireEducation `json:"education"`
	Certifications  []string        `json:"certifications"`
	Languages       []string        `json:"languages"`
	Summary         string          `json:"summary"`
}

type wireSkill struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Proficiency string      `json:"proficiency"`
	Relevance   json.Number `json:"relevance"`
}

type wireExperience struct {
	Years      json.Number `json:"years"`
	Roles      []string    `json:"roles"`
	Industries []string    `json:"industries"`
}

type wireEducation struct {
	Degree      string     `json:"degree"`
	Institution string     `json:"institution"`
	Year        flexString `json:"year"`
}

// flexString accepts "2020", 2020 or null.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

// parseResult decodes a model answer into a clamped Result.
func parseResult(content string) (Result, error) {
	raw := stripFences(content)
	if raw == "" {
		return Result{}, &parseError{errors.New("empty content")}
	}

	var w wireResult
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return Result{}, &parseError{err}
	}
	if w.ATSScore == nil {
		return Result{}, &parseError{errors.New("missing atsScore")}
	}
	score, err := toInt(*w.ATSScore)
	if err != nil {
		return Result{}, &parseError{fmt.Errorf("atsScore: %w", err)}
	}

	out := Result{
		ATSScore:        score,
		Skills:          make([]Skill, 0, len(w.Skills)),
		Strengths:       nonNil(w.Strengths),
		Weaknesses:      nonNil(w.Weaknesses),
		Recommendations: nonNil(w.Recommendations),
		Experience: Experience{
			Roles:      nonNil(w.Experience.Roles),
			Industries: nonNil(w.Experience.Industries),
		},
		Education:      make([]Education, 0, len(w.Education)),
		Certifications: nonNil(w.Certifications),
		Languages:      nonNil(w.Languages),
		Summary:        strings.TrimSpace(w.Summary),
		Source:         SourceModel,
	}
	for _, s := range w.Skills {
		rel, _ := toInt(s.Relevance)
		out.Skills = append(out.Skills, Skill{
			Name:        s.Name,
			Category:    s.Category,
			Proficiency: s.Proficiency,
			Relevance:   rel,
		})
	}
	if years, err := toInt(w.Experience.Years); err == nil && years > 0 {
		out.Experience.Years = years
	}
	for _, e := range w.Education {
		out.Education = append(out.Education, Education{
			Degree:      e.Degree,
			Institution: e.Institution,
			Year:        string(e.Year),
		})
	}
	return Clamp(out), nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func toInt(n json.Number) (int, error) {
	if n == "" {
		return 0, errors.New("missing number")
	}
	f, err := n.Float64()
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New("not finite")
	}
	if f > math.MaxInt32 {
		f = math.MaxInt32
	}
	if f < math.MinInt32 {
		f = math.MinInt32
	}
	return int(math.Round(f)), nil
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
