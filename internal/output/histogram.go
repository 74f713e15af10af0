package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/maxvaer/apiprobe/internal/scanner"
)

var (
	status2xx = lipgloss.Color("#00D26A")
	status3xx = lipgloss.Color("#4D96FF")
	status4xx = lipgloss.Color("#FFD93D")
	status5xx = lipgloss.Color("#FF3838")
	muted     = lipgloss.Color("#6B7280")
)

const barWidth = 30

// WriteHistogram renders the status histogram as a small bar table.
func WriteHistogram(w io.Writer, h scanner.Histogram, noColor bool) error {
	r := lipgloss.NewRenderer(w)
	if noColor {
		r.SetColorProfile(termenv.Ascii)
	}

	title := r.NewStyle().Bold(true)
	label := r.NewStyle().Width(8).Align(lipgloss.Right)
	count := r.NewStyle().Width(7).Align(lipgloss.Right)

	var b strings.Builder
	b.WriteString(title.Render("Status histogram"))
	b.WriteString("\n")

	total := h.Total()
	if total == 0 {
		b.WriteString(r.NewStyle().Foreground(muted).Render("  no results"))
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	for _, k := range h.Keys() {
		n := h[k]
		width := n * barWidth / total
		if width == 0 && n > 0 {
			width = 1
		}
		style := r.NewStyle().Foreground(colorForKey(k))
		fmt.Fprintf(&b, "%s %s  %s\n",
			style.Inherit(label).Render(k.String()),
			count.Render(fmt.Sprintf("%d", n)),
			style.Render(strings.Repeat("█", width)),
		)
	}
	fmt.Fprintf(&b, "%s %s\n", label.Render("total"), count.Render(fmt.Sprintf("%d", total)))

	_, err := io.WriteString(w, b.String())
	return err
}

func colorForKey(k scanner.StatusKey) lipgloss.Color {
	code := int(k)
	switch {
	case k == scanner.Failed:
		return status5xx
	case code >= 200 && code < 300:
		return status2xx
	case code >= 300 && code < 400:
		return status3xx
	case code >= 400 && code < 500:
		return status4xx
	case code >= 500:
		return status5xx
	default:
		return muted
	}
}
