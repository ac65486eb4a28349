package types

import (
	"sort"
	"strings"
	"time"
)

// Section keys controllable through section visibility.
const (
	SectionSummary    = "summary"
	SectionSkills     = "skills"
	SectionProjects   = "projects"
	SectionExperience = "experience"
	SectionEducation  = "education"
)

// Template variant identifiers.
const (
	TemplateStandard   = "standard"
	TemplateTech       = "tech"
	TemplateCorporate  = "corporate"
	TemplateFreelancer = "freelancer"
	TemplateStudent    = "student"
)

// Theme palette identifiers.
const (
	ThemeMinimal   = "minimal"
	ThemeCorporate = "corporate"
	ThemeDeveloper = "developer"
	ThemeCreative  = "creative"
)

// Color modes.
const (
	ColorModeLight = "light"
	ColorModeDark  = "dark"
)

// Presentation defaults applied at document creation and on reset.
const (
	DefaultTemplateID   = TemplateStandard
	DefaultThemeID      = ThemeMinimal
	DefaultColorMode    = ColorModeLight
	DefaultPrimaryColor = "#6366f1"
)

// SectionKeys returns the known section keys in display order.
func SectionKeys() []string {
	return []string{SectionSummary, SectionSkills, SectionProjects, SectionExperience, SectionEducation}
}

// KnownSection reports whether key is a valid section key.
func KnownSection(key string) bool {
	switch key {
	case SectionSummary, SectionSkills, SectionProjects, SectionExperience, SectionEducation:
		return true
	}
	return false
}

// PresentationSettings bundles the visual configuration of a portfolio,
// independent of document content.
type PresentationSettings struct {
	TemplateID     string   `json:"template_id"`
	ThemeID        string   `json:"theme_id"`
	ColorMode      string   `json:"color_mode"`
	PrimaryColor   string   `json:"primary_color"`
	HiddenSections []string `json:"hidden_sections"`
}

// DefaultPresentation returns the settings applied to a fresh portfolio.
func DefaultPresentation() PresentationSettings {
	return PresentationSettings{
		TemplateID:   DefaultTemplateID,
		ThemeID:      DefaultThemeID,
		ColorMode:    DefaultColorMode,
		PrimaryColor: DefaultPrimaryColor,
	}
}

// EncodeHiddenSections joins a hidden-section set into the comma-separated
// wire/storage form, sorted for stable output.
func EncodeHiddenSections(hidden map[string]bool) string {
	keys := make([]string, 0, len(hidden))
	for k, on := range hidden {
		if on {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return strings.Join(keys, ",")
}

// DecodeHiddenSections parses the comma-separated storage form, dropping
// empties and keys outside the known section set.
func DecodeHiddenSections(encoded string) []string {
	var out []string
	for _, k := range strings.Split(encoded, ",") {
		k = strings.TrimSpace(k)
		if k != "" && KnownSection(k) {
			out = append(out, k)
		}
	}
	return out
}

// PublicationRecord holds the server-side publication metadata for a
// portfolio. ViewCount is written only by the persistence layer.
type PublicationRecord struct {
	Slug         string    `json:"slug"`
	CustomDomain *string   `json:"custom_domain,omitempty"`
	IsPublished  bool      `json:"is_published"`
	ViewCount    int       `json:"view_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// PortfolioRecord is the full server record: document plus presentation plus
// publication metadata. It is what a session hydrates from and what a save
// persists back (minus the publication fields, which only the publish and
// slug paths may touch).
type PortfolioRecord struct {
	Document     ProfileDocument      `json:"document"`
	Presentation PresentationSettings `json:"presentation"`
	Publication  PublicationRecord    `json:"publication"`
}
