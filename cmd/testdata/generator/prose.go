package generator

import (
	"io"
	"math/rand/v2"
	"strings"
)

// ProseGenerator writes lines of words joined by punctuation. All
// characters stay within the two-byte Latin range and the three-byte
// 0xE2 punctuation block, so the output decodes with the legacy decoder.
type ProseGenerator struct {
	rand        *rand.Rand
	Vocabulary  []string
	Punctuation []string
	linePool    [][]byte
	MaxWords    int // words per line, defaults to 16
}

var portuguese = []string{
	"era", "uma", "vez", "um", "rei", "que", "vivia", "num", "castelo",
	"ação", "coração", "pão", "avô", "Ética", "órfão", "índio", "ônibus",
	"água", "lâmpada", "fácil", "açúcar", "Curaç", "feliz", "mar", "sol",
	"caminho", "estrela", "amanhã", "escola", "útil",
}

var english = []string{
	"the", "quick", "brown", "fox", "jumps", "over", "a", "lazy", "dog",
	"it", "was", "an", "elephant", "running", "under", "every", "old",
	"bridge", "in", "town", "yesterday",
}

var tricky = []string{
	"don't", "’tis", "rock'n'roll", "o'clock", "x", "a", "I", "y", "rhythm",
	"'quoted'", "‘single’", "mid-word", "22b", "a1", "’’", "ç",
}

var typographic = []string{
	" ", " ", " ", ", ", ". ", "; ", ": ", "! ", "? ", " — ", "–", "… ",
	" “", "” ", " «", "» ", " (", ") ", " [", "] ",
}

var plain = []string{" ", " ", " ", ", ", ". ", "; ", " - ", " \"", "\" ", "\t"}

const linePoolSize = 2000

func (g *ProseGenerator) Init(r *rand.Rand) {
	g.rand = r
	if g.MaxWords <= 0 {
		g.MaxWords = 16
	}

	g.linePool = make([][]byte, linePoolSize)
	for i := range g.linePool {
		g.linePool[i] = []byte(g.line(r))
	}
}

func (g *ProseGenerator) line(r *rand.Rand) string {
	var b strings.Builder
	n := 1 + r.IntN(g.MaxWords)
	for i := range n {
		b.WriteString(g.Vocabulary[r.IntN(len(g.Vocabulary))])
		if i < n-1 {
			b.WriteString(g.Punctuation[r.IntN(len(g.Punctuation))])
		}
	}
	b.WriteByte('\n')
	return b.String()
}

func (g *ProseGenerator) WriteLine(w io.Writer) error {
	_, err := w.Write(g.linePool[g.rand.IntN(len(g.linePool))])
	return err
}

func (g *ProseGenerator) Description() string {
	return "Lines of words drawn from a fixed vocabulary, separated by punctuation"
}

func (g *ProseGenerator) DefaultCount() int64 {
	return 1e4
}
