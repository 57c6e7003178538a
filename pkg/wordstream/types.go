package wordstream

// Counts is the classification result for a chunk, or the running total
// for a file.
type Counts struct {
	Words         int `json:"words"`
	VowelStarts   int `json:"vowel_starts"`
	ConsonantEnds int `json:"consonant_ends"`
}

// Add folds o into c.
func (c *Counts) Add(o Counts) {
	c.Words += o.Words
	c.VowelStarts += o.VowelStarts
	c.ConsonantEnds += o.ConsonantEnds
}

// Chunk is a unit of work cut from one file.
//
// A chunk without EOF always ends on a split character, so no word ever
// straddles two chunks. The last chunk of a file carries EOF and may be
// empty.
type Chunk struct {
	Points    []rune `json:"points"`
	FileIndex int    `json:"file_index"`
	Bytes     int    `json:"bytes"`
	EOF       bool   `json:"eof"`
}

// Len returns the number of code points filled.
func (c Chunk) Len() int {
	return len(c.Points)
}

// Terminal reports whether c is the empty end-of-file marker.
func (c Chunk) Terminal() bool {
	return c.EOF && len(c.Points) == 0
}
