package layout

import "strings"

// Font selects the face and size of a text run.
type Font struct {
	Bold bool
	Size float64
}

// Measurer reports the rendered width of text in millimetres.
type Measurer interface {
	StringWidth(text string, font Font) float64
}

// Wrap splits text into lines no wider than maxWidth by accumulating words
// greedily. A single word wider than maxWidth is emitted on its own line,
// unsplit. When maxLines > 0 any lines past it are dropped.
func Wrap(text string, maxWidth float64, font Font, m Measurer, maxLines int) []string {
	var lines []string
	current := ""

	for _, word := range strings.Fields(text) {
		candidate := word
		if current != "" {
			candidate = current + " " + word
		}
		if current == "" || m.StringWidth(candidate, font) <= maxWidth {
			current = candidate
			continue
		}
		lines = append(lines, current)
		current = word
	}
	if current != "" {
		lines = append(lines, current)
	}

	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// Fit truncates text until it is no wider than maxWidth.
func Fit(text string, maxWidth float64, font Font, m Measurer) string {
	runes := []rune(text)
	for len(runes) > 0 && m.StringWidth(string(runes), font) > maxWidth {
		runes = runes[:len(runes)-1]
	}
	return string(runes)
}

// truncate keeps at most n runes of s.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
