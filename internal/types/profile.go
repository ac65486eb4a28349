// Package types provides type definitions for the profile document, its
// presentation settings, and the publication record shared across the system.
package types

// Project represents one portfolio project entry.
type Project struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	URL         *string  `json:"url,omitempty"`
	GitHub      *string  `json:"github,omitempty"`
}

// Experience represents one work history entry.
type Experience struct {
	Company     string `json:"company"`
	Role        string `json:"role"`
	Duration    string `json:"duration"`
	Description string `json:"description"`
}

// Education represents one education entry.
type Education struct {
	Institution string `json:"institution"`
	Degree      string `json:"degree"`
	Year        string `json:"year"`
}

// ProfileDocument is the structured profile extracted from an uploaded resume.
// Array ordering is display-significant; entries are not deduplicated.
type ProfileDocument struct {
	Name       string       `json:"name"`
	Title      string       `json:"title"`
	Email      string       `json:"email"`
	Phone      string       `json:"phone"`
	Location   string       `json:"location"`
	Summary    string       `json:"summary"`
	Tagline    string       `json:"tagline"`
	Skills     []string     `json:"skills"`
	Projects   []Project    `json:"projects"`
	Experience []Experience `json:"experience"`
	Education  []Education  `json:"education"`
	GitHub     *string      `json:"github,omitempty"`
	LinkedIn   *string      `json:"linkedin,omitempty"`
	Website    *string      `json:"website,omitempty"`
}

// Clone returns a deep copy of the document. Slices and optional string
// pointers are copied so mutations on the clone never alias the original.
func (d ProfileDocument) Clone() ProfileDocument {
	out := d
	out.Skills = append([]string(nil), d.Skills...)
	out.Projects = make([]Project, len(d.Projects))
	for i, p := range d.Projects {
		cp := p
		cp.Tech = append([]string(nil), p.Tech...)
		cp.URL = cloneStringPtr(p.URL)
		cp.GitHub = cloneStringPtr(p.GitHub)
		out.Projects[i] = cp
	}
	out.Experience = append([]Experience(nil), d.Experience...)
	out.Education = append([]Education(nil), d.Education...)
	out.GitHub = cloneStringPtr(d.GitHub)
	out.LinkedIn = cloneStringPtr(d.LinkedIn)
	out.Website = cloneStringPtr(d.Website)
	return out
}

func cloneStringPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

// IsSectionEmpty reports whether the named section has no displayable data.
// Unknown keys are treated as empty so they never render.
func (d ProfileDocument) IsSectionEmpty(key string) bool {
	switch key {
	case SectionSummary:
		return d.Summary == ""
	case SectionSkills:
		return len(d.Skills) == 0
	case SectionProjects:
		return len(d.Projects) == 0
	case SectionExperience:
		return len(d.Experience) == 0
	case SectionEducation:
		return len(d.Education) == 0
	default:
		return true
	}
}
