package lyrics

import "sort"

// ActiveIndex returns the largest index whose line time is at or before t.
// It returns 0 for an empty timeline or when t precedes every line, and the
// last index once t passes the final line.
func ActiveIndex(tl Timeline, t float64) int {
	n := sort.Search(len(tl), func(i int) bool {
		return tl[i].Time > t
	})
	if n == 0 {
		return 0
	}
	return n - 1
}

// Cursor resolves the active line starting from the previous answer, which
// is cheap while playback moves forward. Seeks in either direction are
// handled by walking the cursor back or forward. The zero value is ready to
// use. A Cursor is not safe for concurrent use.
type Cursor struct {
	index int
}

// Seek moves the cursor to the active line for t and returns its index.
// The result always equals ActiveIndex(tl, t).
func (c *Cursor) Seek(tl Timeline, t float64) int {
	if len(tl) == 0 {
		c.index = 0
		return 0
	}
	if c.index >= len(tl) || c.index < 0 {
		c.index = 0
	}

	for c.index > 0 && tl[c.index].Time > t {
		c.index--
	}
	for c.index < len(tl)-1 && tl[c.index+1].Time <= t {
		c.index++
	}
	return c.index
}

func (c *Cursor) Index() int {
	return c.index
}

func (c *Cursor) Reset() {
	c.index = 0
}
