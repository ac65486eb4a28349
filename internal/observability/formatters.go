// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jordan/portfolio-studio/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintExportPlan outputs the export target before the capture starts.
func (p *Printer) PrintExportPlan(url, out string) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("URL:     %s\n", url))
	sb.WriteString(fmt.Sprintf("Output:  %s", out))
	p.printBox("PDF EXPORT", sb.String())
}

// PrintExportResult outputs the outcome of a finished export.
func (p *Printer) PrintExportResult(out string, size int, elapsed time.Duration) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("File:     %s\n", out))
	sb.WriteString(fmt.Sprintf("Size:     %d bytes\n", size))
	sb.WriteString(fmt.Sprintf("Elapsed:  %s", elapsed.Round(time.Millisecond)))
	p.printBox("EXPORT COMPLETE", sb.String())
}

// PrintPortfolioSummary outputs a human-readable summary of a portfolio
// record, used when inspecting what a slug will render.
func (p *Printer) PrintPortfolioSummary(rec *types.PortfolioRecord) {
	if rec == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Name:      %s\n", rec.Document.Name))
	if rec.Document.Title != "" {
		sb.WriteString(fmt.Sprintf("Title:     %s\n", rec.Document.Title))
	}
	sb.WriteString(fmt.Sprintf("Template:  %s\n", rec.Presentation.TemplateID))
	sb.WriteString(fmt.Sprintf("Slug:      %s\n", rec.Publication.Slug))
	sb.WriteString(fmt.Sprintf("Published: %t\n", rec.Publication.IsPublished))
	sb.WriteString("\n")

	if len(rec.Document.Skills) > 0 {
		sb.WriteString("Skills:\n")
		count := min(len(rec.Document.Skills), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s\n", rec.Document.Skills[i]))
		}
		if len(rec.Document.Skills) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(rec.Document.Skills)-maxItemsToShow))
		}
		sb.WriteString("\n")
	}

	if len(rec.Document.Projects) > 0 {
		sb.WriteString("Projects:\n")
		count := min(len(rec.Document.Projects), maxItemsToShow)
		for i := 0; i < count; i++ {
			title := rec.Document.Projects[i].Title
			if len(title) > 50 {
				title = title[:47] + "..."
			}
			sb.WriteString(fmt.Sprintf("  • %s\n", title))
		}
		if len(rec.Document.Projects) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(rec.Document.Projects)-maxItemsToShow))
		}
	}

	p.printBox("PORTFOLIO", strings.TrimSuffix(sb.String(), "\n"))
}
