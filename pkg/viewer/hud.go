package viewer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

var (
	hudBackground = lipgloss.Color("#000000")
	fpsStyle      = lipgloss.NewStyle().Background(hudBackground).Foreground(lipgloss.Color("#5fff87"))
	titleStyle    = lipgloss.NewStyle().Background(hudBackground).Foreground(lipgloss.Color("#ffffff")).Bold(true)
	countStyle    = lipgloss.NewStyle().Background(hudBackground).Foreground(lipgloss.Color("#5fffff")).Bold(true)
	statusStyle   = lipgloss.NewStyle().Background(hudBackground).Foreground(lipgloss.Color("#ffffff"))
	hintStyle     = lipgloss.NewStyle().Background(hudBackground).Foreground(lipgloss.Color("#ffff5f")).Faint(true)
)

// Segment is a piece of HUD text placed at a 1-based terminal cell.
type Segment struct {
	Row, Col int
	Text     string
}

// HUD is the overlay with frame rate, model info and debug toggles.
type HUD struct {
	fps       float64
	fpsFrames int
	fpsTime   time.Time
}

func NewHUD(now time.Time) *HUD {
	return &HUD{fpsTime: now}
}

// FPS returns the frame rate measured over the last full second.
func (h *HUD) FPS() float64 {
	return h.fps
}

// Tick counts a frame. Call once per frame.
func (h *HUD) Tick(now time.Time) {
	h.fpsFrames++
	elapsed := now.Sub(h.fpsTime)
	if elapsed >= time.Second {
		h.fps = float64(h.fpsFrames) / elapsed.Seconds()
		h.fpsFrames = 0
		h.fpsTime = now
	}
}

// Segments lays out the HUD for a terminal of the given size.
func (h *HUD) Segments(width, height int, st Status) []Segment {
	name := st.Name
	if name == "" {
		name = "empty scene"
	}
	fps := fpsStyle.Render(fmt.Sprintf(" %.0f FPS ", h.fps))
	title := titleStyle.Render(" " + name + " ")
	count := countStyle.Render(fmt.Sprintf(" %d tris ", st.Triangles))
	status := statusStyle.Render(fmt.Sprintf(" %s  %s normal map  %s depth  %s wireframe ",
		st.Mode, check(st.NormalMapping), check(st.DepthView), check(st.Wireframe)))
	hint := hintStyle.Render(" m: mode  ?: hide ")

	return []Segment{
		{Row: 1, Col: 1, Text: fps},
		{Row: 1, Col: max((width-lipgloss.Width(title))/2, 1), Text: title},
		{Row: 1, Col: max(width-lipgloss.Width(count)+1, 1), Text: count},
		{Row: height, Col: 1, Text: status},
		{Row: height, Col: max(width-lipgloss.Width(hint)+1, 1), Text: hint},
	}
}

// Render writes the HUD rows directly to the terminal. The top and bottom
// rows are always cleared so hiding the HUD takes effect.
func (h *HUD) Render(w io.Writer, width, height int, st Status, show bool) error {
	var b strings.Builder
	b.WriteString(ansi.CursorPosition(1, 1) + ansi.EraseEntireLine)
	b.WriteString(ansi.CursorPosition(1, height) + ansi.EraseEntireLine)
	if show {
		for _, s := range h.Segments(width, height, st) {
			b.WriteString(ansi.CursorPosition(s.Col, s.Row))
			b.WriteString(s.Text)
		}
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func check(on bool) string {
	if on {
		return "[✓]"
	}
	return "[ ]"
}
