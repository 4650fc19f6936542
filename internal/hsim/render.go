package hsim

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/goccy/go-json"
)

var eventStyles = map[EventType]lipgloss.Style{
	EventRequested: lipgloss.NewStyle().Faint(true),
	EventGranted:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#2C75FE")),
	EventTimeout:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF2A25")),
	EventReleased:  lipgloss.NewStyle().Foreground(lipgloss.Color("#29C6E8")),
}

var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// Render writes one line per event. w is expected to handle color
// downsampling, see hlog.NewColorWriter.
func Render(w io.Writer, tl Timeline) error {
	var sb strings.Builder

	sb.WriteString(headerStyle.Render(fmt.Sprintf("%v (%v)", tl.Scenario, tl.RunID)))
	sb.WriteString("\n")

	for _, e := range tl.Events {
		fmt.Fprintf(&sb, "%8v  %-10v %-5v %-10v %v occupancy=%v\n",
			e.Elapsed.Truncate(time.Millisecond),
			e.Actor,
			e.Kind,
			e.Lock,
			eventStyles[e.Type].Render(string(e.Type)),
			e.Occupancy,
		)
	}

	_, err := io.WriteString(w, sb.String())

	return err
}

// RenderJSON writes the timeline as a single JSON document.
func RenderJSON(w io.Writer, tl Timeline) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(tl)
}
