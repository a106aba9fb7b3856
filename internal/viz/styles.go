package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Panel styles. They are rebuilt from CurrentTheme by SetTheme.
var (
	GlassPanel    lipgloss.Style
	GradientTitle lipgloss.Style
	HeaderStyle   lipgloss.Style
	Subtle        lipgloss.Style
	KeyHint       lipgloss.Style

	StatusRunning lipgloss.Style
	StatusPaused  lipgloss.Style

	MetricValue lipgloss.Style
	MetricLabel lipgloss.Style

	SparkHigh lipgloss.Style
	SparkMid  lipgloss.Style
	SparkLow  lipgloss.Style
)

func init() { applyTheme(CurrentTheme) }

func applyTheme(th Theme) {
	fg := func(c lipgloss.Color) lipgloss.Style { return lipgloss.NewStyle().Foreground(c) }

	GlassPanel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(th.Muted).
		Padding(1, 2)
	GradientTitle = fg(th.Accent).Bold(true)
	HeaderStyle = fg(th.Text).
		Bold(true).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(th.Muted)
	Subtle = fg(th.Muted)
	KeyHint = fg(th.Muted).Italic(true)

	StatusRunning = fg(th.Primary).Bold(true)
	StatusPaused = fg(th.Warning).Bold(true)

	MetricValue = fg(th.Primary).Bold(true)
	MetricLabel = fg(th.Muted)

	SparkHigh = fg(th.Primary)
	SparkMid = fg(th.Warning)
	SparkLow = fg(th.Error)
}

// blend interpolates two hex colors in RGB. Unparsable colors count as white.
func blend(a, b lipgloss.Color, t float64) lipgloss.Color {
	ca, err := colorful.Hex(string(a))
	if err != nil {
		ca = colorful.Color{R: 1, G: 1, B: 1}
	}
	cb, err := colorful.Hex(string(b))
	if err != nil {
		cb = colorful.Color{R: 1, G: 1, B: 1}
	}
	return lipgloss.Color(ca.BlendRgb(cb, t).Clamped().Hex())
}

// GradientText colors each rune of text along a gradient from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	var b strings.Builder
	for i, r := range runes {
		t := 0.
		if len(runes) > 1 {
			t = float64(i) / float64(len(runes)-1)
		}
		b.WriteString(lipgloss.NewStyle().Foreground(blend(start, end, t)).Render(string(r)))
	}
	return b.String()
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func AnimatedSpinner(frame int) string {
	return spinnerFrames[frame%len(spinnerFrames)]
}

// level picks the sparkline style for a normalized value.
func level(v float64) lipgloss.Style {
	switch {
	case v > 0.7:
		return SparkHigh
	case v > 0.3:
		return SparkMid
	}
	return SparkLow
}

// ProgressBar renders a bar for percent in [0,1].
func ProgressBar(percent float64, width int) string {
	filled := min(max(int(percent*float64(width)), 0), width)
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return level(percent).Render(bar)
}

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// SparklineChart draws values as one block per column, sampling when there
// are more values than columns.
func SparklineChart(values []float64, width int) string {
	if len(values) == 0 {
		return strings.Repeat("─", width)
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		lo, hi = min(lo, v), max(hi, v)
	}
	span := hi - lo
	if span == 0 {
		span = 1
	}
	step := max(len(values)/width, 1)

	var b strings.Builder
	for i := 0; i < width && i*step < len(values); i++ {
		norm := (values[i*step] - lo) / span
		idx := min(max(int(norm*float64(len(sparkChars)-1)), 0), len(sparkChars)-1)
		b.WriteString(level(norm).Render(string(sparkChars[idx])))
	}
	return b.String()
}

func Separator(width int) string {
	side := max(width/2-3, 0)
	return Subtle.Render(strings.Repeat("─", side) + " ◆ " + strings.Repeat("─", max(width-width/2-3, 0)))
}
