// Package templates renders a portfolio record into a public HTML page.
// Five visual variants share a single Props contract; every variant receives
// the same inputs and differs only in layout.
package templates

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/jordan/portfolio-studio/internal/types"
)

// rgbFallback matches the default primary color (#6366f1).
const rgbFallback = "99, 102, 241"

// Props is the data every template variant receives. The contract is shared
// across variants so switching templates never requires different inputs.
type Props struct {
	Doc          types.ProfileDocument
	ThemeID      string
	ColorMode    string
	AccentColor  string
	AccentRGB    string
	Hidden       map[string]bool
	Initials     string
	CanonicalURL string
	IsExport     bool
	IsPreview    bool
	ViewCount    int
	Year         int
}

// Show reports whether a section should render: it must not be hidden and
// must carry displayable data. Unknown keys never render.
func (p Props) Show(key string) bool {
	return !p.Hidden[key] && !p.Doc.IsSectionEmpty(key)
}

// Dark reports whether the dark color mode is active.
func (p Props) Dark() bool { return p.ColorMode == types.ColorModeDark }

// RenderOptions carries the per-request rendering flags that are not part of
// the stored record.
type RenderOptions struct {
	CanonicalURL string
	IsExport     bool
	IsPreview    bool
	Year         int
}

// BuildProps assembles the variant-independent Props from a stored record.
func BuildProps(rec types.PortfolioRecord, opts RenderOptions) Props {
	pres := rec.Presentation
	color := pres.PrimaryColor
	if color == "" {
		color = types.DefaultPrimaryColor
	}

	hidden := make(map[string]bool, len(pres.HiddenSections))
	for _, key := range pres.HiddenSections {
		if types.KnownSection(key) {
			hidden[key] = true
		}
	}

	mode := pres.ColorMode
	if mode != types.ColorModeDark {
		mode = types.ColorModeLight
	}

	return Props{
		Doc:          rec.Document,
		ThemeID:      pres.ThemeID,
		ColorMode:    mode,
		AccentColor:  color,
		AccentRGB:    HexToRGB(color),
		Hidden:       hidden,
		Initials:     Initials(rec.Document.Name),
		CanonicalURL: opts.CanonicalURL,
		IsExport:     opts.IsExport,
		IsPreview:    opts.IsPreview,
		ViewCount:    rec.Publication.ViewCount,
		Year:         opts.Year,
	}
}

// HexToRGB converts "#rrggbb" to a "r, g, b" component string for use inside
// rgba() expressions. Malformed input falls back to the default accent.
func HexToRGB(hex string) string {
	if len(hex) < 7 || !strings.HasPrefix(hex, "#") {
		return rgbFallback
	}
	r, err1 := strconv.ParseUint(hex[1:3], 16, 8)
	g, err2 := strconv.ParseUint(hex[3:5], 16, 8)
	b, err3 := strconv.ParseUint(hex[5:7], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return rgbFallback
	}
	return fmt.Sprintf("%d, %d, %d", r, g, b)
}

// Initials derives up to two uppercase initials from a display name,
// returning "?" when no letters are available.
func Initials(name string) string {
	var out []rune
	for _, word := range strings.Fields(name) {
		for _, r := range word {
			if unicode.IsLetter(r) {
				out = append(out, unicode.ToUpper(r))
				break
			}
		}
		if len(out) == 2 {
			break
		}
	}
	if len(out) == 0 {
		return "?"
	}
	return string(out)
}
