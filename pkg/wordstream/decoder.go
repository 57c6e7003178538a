package wordstream

import (
	"bufio"
	"errors"
	"io"
)

// threeByteLead is the only lead byte decoded as a three byte sequence.
// It covers the typographic quotes, dashes and ellipsis in U+2000..U+2FFF.
const threeByteLead = 0xE2

// Decoder turns a byte stream into code points of the legacy multi-byte
// encoding. It is not safe for concurrent use.
type Decoder struct {
	r         *bufio.Reader
	consumed  int
	truncated bool
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}

	return &Decoder{r: br}
}

// Next decodes one code point. It returns io.EOF at end of input,
// including when the input ends in the middle of a sequence.
func (d *Decoder) Next() (rune, error) {
	lead, err := d.readByte()
	if err != nil {
		return 0, err
	}

	if lead&0x80 == 0 {
		return rune(lead), nil
	}

	var (
		value rune
		cont  int
	)
	if lead == threeByteLead {
		value = rune(lead & 0x0F)
		cont = 2
	} else {
		value = rune(lead & 0x1F)
		cont = 1
	}

	for range cont {
		b, err := d.readByte()
		if err != nil {
			if errors.Is(err, io.EOF) {
				d.truncated = true
			}
			return 0, err
		}
		value = value<<6 | rune(b&0x3F)
	}

	return value, nil
}

// Consumed returns the number of raw bytes read so far.
func (d *Decoder) Consumed() int {
	return d.consumed
}

// Truncated reports whether input ended inside a multi-byte sequence.
func (d *Decoder) Truncated() bool {
	return d.truncated
}

func (d *Decoder) readByte() (byte, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	d.consumed++

	return b, nil
}
