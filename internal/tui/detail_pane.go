package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/hylla/agenda/internal/domain"
)

// minDetailWidth keeps glamour from wrapping the detail pane into a column of words.
const minDetailWidth = 24

// detailPane renders the selected agenda item through glamour. The last
// result is kept until the item content or the pane width changes.
type detailPane struct {
	width    int
	renderer *glamour.TermRenderer

	source string
	out    string
}

// view returns the styled detail text for item wrapped to width.
func (p *detailPane) view(item domain.AgendaItem, width int) string {
	width = max(minDetailWidth, width)
	source := itemMarkdown(item)
	if p.out != "" && p.source == source && p.width == width {
		return p.out
	}
	if p.renderer == nil || p.width != width {
		renderer, err := glamour.NewTermRenderer(
			glamour.WithStandardStyle("dark"),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return source
		}
		p.renderer = renderer
		p.width = width
	}
	rendered, err := p.renderer.Render(source)
	if err != nil {
		return source
	}
	p.source = source
	p.out = strings.TrimRight(rendered, "\n")
	return p.out
}

// itemMarkdown builds the detail source: heading, schedule line, then the
// optional description, materials and notes blocks.
func itemMarkdown(item domain.AgendaItem) string {
	var b strings.Builder
	fmt.Fprintf(&b, "### %s\n\n", item.Title)
	fmt.Fprintf(&b, "*%s · %s-%s", item.ActivityType.Label(), item.StartTime, item.EndTime)
	if d := item.Duration(); d > 0 {
		fmt.Fprintf(&b, " · %d min", int(d.Minutes()))
	}
	if item.FacilitatorName != "" {
		fmt.Fprintf(&b, " · %s", item.FacilitatorName)
	}
	b.WriteString("*\n\n")
	if item.Description != "" {
		b.WriteString(strings.TrimSpace(item.Description) + "\n\n")
	}
	if len(item.MaterialsNeeded) > 0 {
		b.WriteString("**Materials**\n\n")
		for _, m := range item.MaterialsNeeded {
			b.WriteString("- " + m + "\n")
		}
		b.WriteString("\n")
	}
	if item.Notes != "" {
		b.WriteString("> " + strings.TrimSpace(item.Notes) + "\n")
	}
	return strings.TrimSpace(b.String())
}
