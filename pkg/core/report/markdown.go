package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/text"
)

// RenderMarkdown renders the fill-rate report as a markdown document: one
// table row per file, tracked fields as columns, skipped files listed at the
// bottom.
func RenderMarkdown(rep *Report) string {
	var sb strings.Builder
	sb.WriteString("# Schedule of Investments Fill-Rate Report\n\n")

	if len(rep.Files) == 0 && len(rep.Skipped) == 0 {
		sb.WriteString("No extraction files analyzed.\n")
		return sb.String()
	}

	if len(rep.Files) > 0 {
		sb.WriteString("| Ticker | Rows |")
		for _, field := range TrackedFields {
			sb.WriteString(" " + field + " |")
		}
		sb.WriteString("\n|---|---|")
		for range TrackedFields {
			sb.WriteString("---|")
		}
		sb.WriteString("\n")
		for _, f := range rep.Files {
			ticker := f.Ticker
			if ticker == "" {
				ticker = f.Path
			}
			sb.WriteString(fmt.Sprintf("| %s | %d |", ticker, f.Rows))
			for _, field := range TrackedFields {
				sb.WriteString(fmt.Sprintf(" %.1f%% |", f.FillRate[field]*100))
			}
			sb.WriteString("\n")
		}
	}

	if len(rep.Skipped) > 0 {
		sb.WriteString("\n## Skipped files\n\n")
		paths := make([]string, 0, len(rep.Skipped))
		for path := range rep.Skipped {
			paths = append(paths, path)
		}
		sort.Strings(paths)
		for _, path := range paths {
			sb.WriteString(fmt.Sprintf("- `%s`: %s\n", path, rep.Skipped[path]))
		}
	}

	return sb.String()
}

// ValidateMarkdown checks the rendered report parses as Markdown using
// Goldmark. Goldmark is very permissive, so this is a basic sanity check.
func ValidateMarkdown(input string) bool {
	parser := goldmark.DefaultParser()
	reader := text.NewReader([]byte(input))
	doc := parser.Parse(reader)
	return doc != nil
}
