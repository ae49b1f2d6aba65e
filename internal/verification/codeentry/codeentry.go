// Package codeentry models a fixed-length segmented one-time-code input: an
// ordered sequence of single-digit cells with focus transfer, backspace merge,
// and paste splitting. The model is headless; the change callback is the
// rendering boundary.
package codeentry

import (
	"strings"
	"sync"
)

// DefaultSize is the number of cells when the caller passes a non-positive size.
const DefaultSize = 6

// Control holds the cell contents and the focused index. All mutations notify
// the change callback with the full joined value.
type Control struct {
	mu       sync.Mutex
	slots    []rune // 0 means empty
	focus    int
	onChange func(value string)
}

// New creates a control with the given number of cells. onChange may be nil.
// Focus starts on the first cell, the declared auto-focus entry point.
func New(size int, onChange func(string)) *Control {
	if size < 1 {
		size = DefaultSize
	}

	return &Control{
		slots:    make([]rune, size),
		onChange: onChange,
	}
}

// Size returns the number of cells.
func (c *Control) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.slots)
}

// Focus returns the index of the focused cell.
func (c *Control) Focus() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// Value returns the joined contents of all populated cells.
func (c *Control) Value() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value()
}

// Slots returns a copy of the cell contents, one string per cell, empty cells
// as "".
func (c *Control) Slots() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]string, len(c.slots))
	for i, r := range c.slots {
		if r != 0 {
			out[i] = string(r)
		}
	}
	return out
}

// Type handles a single typed character. A digit is stored in the focused cell
// and focus advances to the next cell if one exists. Anything else is silently
// rejected: no state change, no focus move.
func (c *Control) Type(r rune) {
	c.mu.Lock()

	if r < '0' || r > '9' {
		c.mu.Unlock()
		return
	}

	c.slots[c.focus] = r
	if c.focus+1 < len(c.slots) {
		c.focus++
	}
	v := c.value()
	c.mu.Unlock()

	c.notify(v)
}

// Backspace clears the focused cell if it holds a digit (focus stays). On an
// already-empty cell it only moves focus one cell left; nothing is deleted on
// that press.
func (c *Control) Backspace() {
	c.mu.Lock()

	if c.slots[c.focus] != 0 {
		c.slots[c.focus] = 0
		v := c.value()
		c.mu.Unlock()

		c.notify(v)
		return
	}

	if c.focus > 0 {
		c.focus--
	}
	c.mu.Unlock()
}

// Left moves focus one cell left, clamped to the first cell.
func (c *Control) Left() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.focus > 0 {
		c.focus--
	}
}

// Right moves focus one cell right, clamped to the last cell.
func (c *Control) Right() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.focus+1 < len(c.slots) {
		c.focus++
	}
}

// Paste takes an arbitrary clipboard payload, keeps only its digits truncated
// to the cell count, overwrites all cells from the first one, and moves focus
// to the first empty cell (or the last cell when everything is filled). The
// extracted value is emitted even when shorter than the cell count.
func (c *Control) Paste(payload string) {
	c.mu.Lock()

	digits := extractDigits(payload, len(c.slots))

	for i := range c.slots {
		if i < len(digits) {
			c.slots[i] = rune(digits[i])
		} else {
			c.slots[i] = 0
		}
	}

	if len(digits) < len(c.slots) {
		c.focus = len(digits)
	} else {
		c.focus = len(c.slots) - 1
	}
	c.mu.Unlock()

	c.notify(digits)
}

// SetValue resynchronizes the cells from an external value, splitting the
// string across cells and padding the rest with empty cells. Focus is left
// alone so programmatic resets do not fight the user; no change notification
// is emitted since the value came from above.
func (c *Control) SetValue(v string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	digits := extractDigits(v, len(c.slots))
	for i := range c.slots {
		if i < len(digits) {
			c.slots[i] = rune(digits[i])
		} else {
			c.slots[i] = 0
		}
	}

	if c.focus >= len(c.slots) {
		c.focus = len(c.slots) - 1
	}
}

// Clear empties every cell and returns focus to the entry point.
func (c *Control) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i := range c.slots {
		c.slots[i] = 0
	}
	c.focus = 0
}

func (c *Control) value() string {
	var b strings.Builder
	for _, r := range c.slots {
		if r != 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func (c *Control) notify(v string) {
	if c.onChange != nil {
		c.onChange(v)
	}
}

func extractDigits(s string, max int) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
			if b.Len() == max {
				break
			}
		}
	}
	return b.String()
}
