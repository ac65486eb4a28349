package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jordan/portfolio-studio/internal/types"
)

// portfolioRow mirrors one row of the portfolios table.
type portfolioRow struct {
	Slug           string
	CustomDomain   *string
	Document       []byte
	TemplateID     string
	ThemeID        string
	ColorMode      string
	PrimaryColor   string
	HiddenSections string
	IsPublished    bool
	ViewCount      int
	CreatedAt      time.Time
}

// toRecord converts a stored row into the in-memory record shape.
func (r portfolioRow) toRecord() (types.PortfolioRecord, error) {
	var doc types.ProfileDocument
	if len(r.Document) > 0 {
		if err := json.Unmarshal(r.Document, &doc); err != nil {
			return types.PortfolioRecord{}, fmt.Errorf("failed to decode document: %w", err)
		}
	}

	return types.PortfolioRecord{
		Document: doc,
		Presentation: types.PresentationSettings{
			TemplateID:     r.TemplateID,
			ThemeID:        r.ThemeID,
			ColorMode:      r.ColorMode,
			PrimaryColor:   r.PrimaryColor,
			HiddenSections: types.DecodeHiddenSections(r.HiddenSections),
		},
		Publication: types.PublicationRecord{
			Slug:         r.Slug,
			CustomDomain: r.CustomDomain,
			IsPublished:  r.IsPublished,
			ViewCount:    r.ViewCount,
			CreatedAt:    r.CreatedAt,
		},
	}, nil
}

// encodeDocument serializes a document for the JSONB column.
func encodeDocument(doc types.ProfileDocument) ([]byte, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode document: %w", err)
	}
	return raw, nil
}

// encodeHidden renders the hidden-section list in storage form.
func encodeHidden(sections []string) string {
	hidden := make(map[string]bool, len(sections))
	for _, s := range sections {
		hidden[s] = true
	}
	return types.EncodeHiddenSections(hidden)
}
