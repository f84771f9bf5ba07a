package layout

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fixedMeasurer gives every rune the same advance: half the font size, a bit
// more for bold.
type fixedMeasurer struct{}

func (fixedMeasurer) StringWidth(text string, font Font) float64 {
	advance := 0.5
	if font.Bold {
		advance = 0.55
	}
	return float64(len([]rune(text))) * font.Size * PointToMM * advance
}

func TestWrapNeverExceedsWidth(t *testing.T) {
	m := fixedMeasurer{}
	f := Font{Size: 9}
	texts := []string{
		"ARROZ TIPO 1 PACOTE 5KG",
		"Descrição muito longa de um produto com várias palavras para quebrar em linhas",
		"a b c d e f g h i j k l m n o p q r s t u v w x y z",
		"   espaços    repetidos   entre   palavras  ",
		"",
	}
	widths := []float64{5, 12.5, 20, 33.3, 80}

	for _, text := range texts {
		for _, w := range widths {
			for _, line := range Wrap(text, w, f, m, 0) {
				if m.StringWidth(line, f) > w {
					assert.NotContains(t, line, " ", "only a single overlong word may exceed %v: %q", w, line)
				}
				assert.Equal(t, strings.TrimSpace(line), line)
			}
		}
	}
}

func TestWrapKeepsAllWords(t *testing.T) {
	m := fixedMeasurer{}
	text := "um dois três quatro cinco seis sete oito nove dez"
	lines := Wrap(text, 15, Font{Size: 9}, m, 0)
	assert.Greater(t, len(lines), 1)
	assert.Equal(t, strings.Fields(text), strings.Fields(strings.Join(lines, " ")))
}

func TestWrapMaxLinesDropsExcess(t *testing.T) {
	m := fixedMeasurer{}
	lines := Wrap("aaaa bbbb cccc dddd eeee", 3, Font{Size: 9}, m, 2)
	assert.Equal(t, []string{"aaaa", "bbbb"}, lines)
}

func TestWrapOverlongWordUnsplit(t *testing.T) {
	m := fixedMeasurer{}
	lines := Wrap("SUPERCALIFRAGILISTICO curto", 5, Font{Size: 9}, m, 0)
	assert.Equal(t, []string{"SUPERCALIFRAGILISTICO", "curto"}, lines)
}

func TestWrapEmpty(t *testing.T) {
	assert.Empty(t, Wrap("  ", 10, Font{Size: 9}, fixedMeasurer{}, 0))
}

func TestFit(t *testing.T) {
	m := fixedMeasurer{}
	f := Font{Size: 9}
	perRune := m.StringWidth("x", f)

	assert.Equal(t, "abc", Fit("abcdef", perRune*3.5, f, m))
	assert.Equal(t, "abcdef", Fit("abcdef", 100, f, m))
	assert.Equal(t, "", Fit("abc", 0, f, m))
	assert.Equal(t, "ção", Fit("çãoabc", perRune*3.5, f, m))
}

func TestPaperByName(t *testing.T) {
	for _, name := range []string{"A4", "a4", " A4 "} {
		g, err := PaperByName(name)
		assert.NoError(t, err)
		assert.Equal(t, "A4", g.Name)
		assert.Equal(t, 12.0, g.Margin)
	}
	for _, name := range []string{"80mm", "80", "80MM"} {
		g, err := PaperByName(name)
		assert.NoError(t, err)
		assert.Equal(t, "80mm", g.Name)
		assert.Equal(t, 5.0, g.Margin)
	}

	_, err := PaperByName("letter")
	assert.ErrorIs(t, err, ErrUnknownPaper)
}

func TestColumnWidthsFillContent(t *testing.T) {
	for _, g := range []Geometry{A4(), Roll80()} {
		total := 0.0
		for _, w := range g.ColumnWidths() {
			total += w
		}
		assert.InDelta(t, g.ContentWidth(), total, 1e-9, g.Name)
		assert.Len(t, g.Columns, 6)
	}
}
