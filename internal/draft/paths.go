package draft

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/jordan/portfolio-studio/internal/types"
)

// fieldPath addresses one document field: a top-level field, one array
// element, or one subfield of an array element ("projects[2].description").
type fieldPath struct {
	Field string
	Index int // -1 when no index
	Sub   string
}

func parsePath(path string) (fieldPath, error) {
	fp := fieldPath{Index: -1}

	head := path
	if dot := strings.Index(path, "."); dot >= 0 {
		head = path[:dot]
		fp.Sub = path[dot+1:]
	}

	if open := strings.Index(head, "["); open >= 0 {
		if !strings.HasSuffix(head, "]") {
			return fp, &ErrUnknownPath{Path: path}
		}
		idx, err := strconv.Atoi(head[open+1 : len(head)-1])
		if err != nil || idx < 0 {
			return fp, &ErrUnknownPath{Path: path}
		}
		fp.Index = idx
		head = head[:open]
	}

	fp.Field = head
	if fp.Field == "" || (fp.Sub != "" && fp.Index < 0) || strings.Contains(fp.Sub, ".") {
		return fp, &ErrUnknownPath{Path: path}
	}
	return fp, nil
}

// coerce converts value into target via a JSON round trip. This accepts both
// native Go values and json.RawMessage from the HTTP boundary, and rejects
// anything whose shape does not match the addressed field.
func coerce(path, expected string, value any, target any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return &ErrTypeMismatch{Path: path, Expected: expected}
	}
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		return &ErrTypeMismatch{Path: path, Expected: expected}
	}
	return nil
}

// applyField merges one change into the document. Only the addressed field or
// array-element subfield is replaced; siblings are left untouched.
func applyField(doc *types.ProfileDocument, path string, value any) error {
	fp, err := parsePath(path)
	if err != nil {
		return err
	}

	switch fp.Field {
	case "name", "title", "email", "phone", "location", "summary", "tagline":
		if fp.Index >= 0 {
			return &ErrUnknownPath{Path: path}
		}
		var s string
		if err := coerce(path, "a string", value, &s); err != nil {
			return err
		}
		switch fp.Field {
		case "name":
			doc.Name = s
		case "title":
			doc.Title = s
		case "email":
			doc.Email = s
		case "phone":
			doc.Phone = s
		case "location":
			doc.Location = s
		case "summary":
			doc.Summary = s
		case "tagline":
			doc.Tagline = s
		}
		return nil

	case "github", "linkedin", "website":
		if fp.Index >= 0 {
			return &ErrUnknownPath{Path: path}
		}
		var s string
		if err := coerce(path, "a string", value, &s); err != nil {
			return err
		}
		target := optionalString(s)
		switch fp.Field {
		case "github":
			doc.GitHub = target
		case "linkedin":
			doc.LinkedIn = target
		case "website":
			doc.Website = target
		}
		return nil

	case "skills":
		return applySkills(doc, path, fp, value)
	case "projects":
		return applyProjects(doc, path, fp, value)
	case "experience":
		return applyExperience(doc, path, fp, value)
	case "education":
		return applyEducation(doc, path, fp, value)
	}
	return &ErrUnknownPath{Path: path}
}

func applySkills(doc *types.ProfileDocument, path string, fp fieldPath, value any) error {
	if fp.Sub != "" {
		return &ErrUnknownPath{Path: path}
	}
	if fp.Index < 0 {
		var skills []string
		if err := coerce(path, "a string array", value, &skills); err != nil {
			return err
		}
		doc.Skills = skills
		return nil
	}
	if fp.Index >= len(doc.Skills) {
		return &ErrIndexOutOfRange{Path: path, Index: fp.Index, Len: len(doc.Skills)}
	}
	var s string
	if err := coerce(path, "a string", value, &s); err != nil {
		return err
	}
	doc.Skills[fp.Index] = s
	return nil
}

func applyProjects(doc *types.ProfileDocument, path string, fp fieldPath, value any) error {
	if fp.Index < 0 {
		var projects []types.Project
		if err := coerce(path, "a project array", value, &projects); err != nil {
			return err
		}
		doc.Projects = projects
		return nil
	}
	if fp.Index >= len(doc.Projects) {
		return &ErrIndexOutOfRange{Path: path, Index: fp.Index, Len: len(doc.Projects)}
	}
	p := &doc.Projects[fp.Index]

	switch fp.Sub {
	case "":
		var proj types.Project
		if err := coerce(path, "a project", value, &proj); err != nil {
			return err
		}
		*p = proj
		return nil
	case "title", "description":
		var s string
		if err := coerce(path, "a string", value, &s); err != nil {
			return err
		}
		if fp.Sub == "title" {
			p.Title = s
		} else {
			p.Description = s
		}
		return nil
	case "tech":
		var tech []string
		if err := coerce(path, "a string array", value, &tech); err != nil {
			return err
		}
		p.Tech = tech
		return nil
	case "url", "github":
		var s string
		if err := coerce(path, "a string", value, &s); err != nil {
			return err
		}
		if fp.Sub == "url" {
			p.URL = optionalString(s)
		} else {
			p.GitHub = optionalString(s)
		}
		return nil
	}
	return &ErrUnknownPath{Path: path}
}

func applyExperience(doc *types.ProfileDocument, path string, fp fieldPath, value any) error {
	if fp.Index < 0 {
		var entries []types.Experience
		if err := coerce(path, "an experience array", value, &entries); err != nil {
			return err
		}
		doc.Experience = entries
		return nil
	}
	if fp.Index >= len(doc.Experience) {
		return &ErrIndexOutOfRange{Path: path, Index: fp.Index, Len: len(doc.Experience)}
	}
	e := &doc.Experience[fp.Index]

	switch fp.Sub {
	case "":
		var entry types.Experience
		if err := coerce(path, "an experience entry", value, &entry); err != nil {
			return err
		}
		*e = entry
		return nil
	case "company", "role", "duration", "description":
		var s string
		if err := coerce(path, "a string", value, &s); err != nil {
			return err
		}
		switch fp.Sub {
		case "company":
			e.Company = s
		case "role":
			e.Role = s
		case "duration":
			e.Duration = s
		case "description":
			e.Description = s
		}
		return nil
	}
	return &ErrUnknownPath{Path: path}
}

func applyEducation(doc *types.ProfileDocument, path string, fp fieldPath, value any) error {
	if fp.Index < 0 {
		var entries []types.Education
		if err := coerce(path, "an education array", value, &entries); err != nil {
			return err
		}
		doc.Education = entries
		return nil
	}
	if fp.Index >= len(doc.Education) {
		return &ErrIndexOutOfRange{Path: path, Index: fp.Index, Len: len(doc.Education)}
	}
	e := &doc.Education[fp.Index]

	switch fp.Sub {
	case "":
		var entry types.Education
		if err := coerce(path, "an education entry", value, &entry); err != nil {
			return err
		}
		*e = entry
		return nil
	case "institution", "degree", "year":
		var s string
		if err := coerce(path, "a string", value, &s); err != nil {
			return err
		}
		switch fp.Sub {
		case "institution":
			e.Institution = s
		case "degree":
			e.Degree = s
		case "year":
			e.Year = s
		}
		return nil
	}
	return &ErrUnknownPath{Path: path}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
