package wordstream

import "fmt"

// PointBuffer is a growable code point buffer with a hard capacity.
// Appending past the capacity fails instead of silently truncating the
// chunk, which would break the word boundary guarantee.
type PointBuffer struct {
	points []rune
	limit  int
}

// NewPointBuffer returns an empty buffer that preallocates hint points
// and refuses to grow past limit.
func NewPointBuffer(hint, limit int) *PointBuffer {
	if hint > limit {
		hint = limit
	}

	return &PointBuffer{
		points: make([]rune, 0, hint),
		limit:  limit,
	}
}

// Append adds c to the buffer.
func (b *PointBuffer) Append(c rune) error {
	if len(b.points) >= b.limit {
		return fmt.Errorf("%w: limit %d", ErrChunkOverflow, b.limit)
	}
	b.points = append(b.points, c)

	return nil
}

// Len returns the number of buffered points.
func (b *PointBuffer) Len() int {
	return len(b.points)
}

// Last returns the most recent point, or false if the buffer is empty.
func (b *PointBuffer) Last() (rune, bool) {
	if len(b.points) == 0 {
		return 0, false
	}

	return b.points[len(b.points)-1], true
}

// Points returns the buffered points. The buffer must not be appended to
// after the slice has been handed off.
func (b *PointBuffer) Points() []rune {
	return b.points
}
