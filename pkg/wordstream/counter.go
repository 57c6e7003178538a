package wordstream

// noPrev marks that no code point has been seen yet in the chunk.
const noPrev rune = -1

// wordState carries classification state across the points of a single
// chunk. It is created fresh for every chunk and never shared.
type wordState struct {
	counts    Counts
	prev      rune
	wordStart bool
}

// newWordState returns the state for the start of a chunk. A chunk always
// begins on a word boundary, so the first letter starts a word.
func newWordState() *wordState {
	return &wordState{
		prev:      noPrev,
		wordStart: true,
	}
}

// atBoundary reports whether the previous point separated words.
func (s *wordState) atBoundary() bool {
	return s.prev == noPrev || IsSplit(s.prev)
}

func (s *wordState) step(c rune) {
	// A lone apostrophe after a separator is not part of any word.
	if IsApostrophe(c) && s.atBoundary() {
		return
	}

	if IsSplit(c) {
		if IsConsonant(s.prev) {
			s.counts.ConsonantEnds++
		}
		if !s.atBoundary() {
			s.counts.Words++
		}
		s.wordStart = true
	} else {
		if s.wordStart && IsVowel(c) {
			s.counts.VowelStarts++
		}
		s.wordStart = false
	}

	s.prev = c
}

// finish closes a word left open at the end of the chunk. Only the last
// chunk of a file can end inside a word.
func (s *wordState) finish() Counts {
	if !s.atBoundary() {
		s.counts.Words++
		if IsConsonant(s.prev) {
			s.counts.ConsonantEnds++
		}
	}

	return s.counts
}

// Classify counts words, words starting with a vowel and words ending
// with a consonant in points.
func Classify(points []rune) Counts {
	s := newWordState()
	for _, c := range points {
		s.step(c)
	}

	return s.finish()
}
