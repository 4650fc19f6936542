package hlog

import (
	"context"
	"image/color"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/colorprofile"
	"github.com/hephbuild/rwsched/internal/hlipgloss"
)

var levelColors = map[slog.Level]color.Color{
	slog.LevelDebug: lipgloss.Color("#29C6E8"),
	slog.LevelInfo:  lipgloss.Color("#2C75FE"),
	slog.LevelWarn:  lipgloss.Color("#E7C229"),
	slog.LevelError: lipgloss.Color("#FF2A25"),
}

var attrKeyStyle = lipgloss.NewStyle().Faint(true)

type textHandler struct {
	attrs   []slog.Attr
	group   string
	leveler slog.Leveler

	m *sync.Mutex
	w io.Writer

	renderer Renderer
}

func (t textHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= t.leveler.Level()
}

func renderAttr(sb *strings.Builder, group string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}

	key := attr.Key
	if group != "" {
		key = group + "." + key
	}

	sb.WriteString(" ")
	sb.WriteString(attrKeyStyle.Render(key + "="))
	sb.WriteString(attr.Value.Resolve().String())
}

func FormatRecord(r Renderer, record slog.Record) string {
	var sb strings.Builder
	sb.WriteString(r.lvlStyles[record.Level].Render(record.Level.String()))
	sb.WriteString(" ")
	sb.WriteString(record.Message)

	return sb.String()
}

func (t textHandler) Handle(ctx context.Context, record slog.Record) error {
	var sb strings.Builder
	sb.WriteString(FormatRecord(t.renderer, record))
	for _, attr := range t.attrs {
		renderAttr(&sb, "", attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		renderAttr(&sb, t.group, attr)

		return true
	})
	sb.WriteString("\n")

	t.m.Lock()
	defer t.m.Unlock()

	_, err := io.WriteString(t.w, sb.String())

	return err
}

func (t textHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	t.attrs = slices.Clone(t.attrs)
	for _, attr := range attrs {
		if t.group != "" {
			attr.Key = t.group + "." + attr.Key
		}
		t.attrs = append(t.attrs, attr)
	}

	return t
}

func (t textHandler) WithGroup(name string) slog.Handler {
	if t.group != "" {
		name = t.group + "." + name
	}
	t.group = name

	return t
}

type Renderer struct {
	lvlStyles map[slog.Level]lipgloss.Style
}

func NewRenderer() Renderer {
	lvlStyles := map[slog.Level]lipgloss.Style{}
	for lvl, c := range levelColors {
		lvlStyles[lvl] = lipgloss.NewStyle().Bold(true).Foreground(c)
	}

	return Renderer{lvlStyles: lvlStyles}
}

// NewColorWriter downsamples the colors written to w to what w supports.
// With plain set, all styling is stripped.
func NewColorWriter(w io.Writer, plain bool) io.Writer {
	cw := colorprofile.NewWriter(w, os.Environ())
	if plain {
		cw.Profile = colorprofile.NoTTY
	} else {
		cw.Profile = hlipgloss.Profile(cw.Profile)
	}

	return cw
}

func NewTextLogger(w io.Writer, leveler slog.Leveler, plain bool) Logger {
	return NewLogger(textHandler{
		w:        NewColorWriter(w, plain),
		m:        &sync.Mutex{},
		leveler:  leveler,
		renderer: NewRenderer(),
	})
}
