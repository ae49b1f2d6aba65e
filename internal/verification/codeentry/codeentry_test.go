package codeentry

import (
	"testing"
)

func TestControl_TypeDigitsAdvanceFocus(t *testing.T) {
	// Arrange
	var last string
	c := New(6, func(v string) { last = v })

	// Act
	c.Type('1')
	c.Type('2')
	c.Type('3')

	// Assert
	if got := c.Value(); got != "123" {
		t.Fatalf("Value() = %q, want %q", got, "123")
	}
	if got := c.Focus(); got != 3 {
		t.Fatalf("Focus() = %d, want 3", got)
	}
	if last != "123" {
		t.Fatalf("onChange value = %q, want %q", last, "123")
	}
}

func TestControl_TypeIntoLastCellKeepsFocus(t *testing.T) {
	// Arrange
	c := New(3, nil)

	// Act
	c.Type('1')
	c.Type('2')
	c.Type('3')

	// Assert: focus stays on the last cell, there is nowhere to advance.
	if got := c.Focus(); got != 2 {
		t.Fatalf("Focus() = %d, want 2", got)
	}
	if got := c.Value(); got != "123" {
		t.Fatalf("Value() = %q, want %q", got, "123")
	}

	// Typing again overwrites the last cell in place.
	c.Type('9')
	if got := c.Value(); got != "129" {
		t.Fatalf("Value() = %q, want %q after overwrite", got, "129")
	}
}

func TestControl_TypeRejectsNonDigits(t *testing.T) {
	// Arrange
	calls := 0
	c := New(6, func(string) { calls++ })

	// Act
	c.Type('a')
	c.Type(' ')
	c.Type('-')

	// Assert: no state change, no focus move, no notification.
	if got := c.Value(); got != "" {
		t.Fatalf("Value() = %q, want empty", got)
	}
	if got := c.Focus(); got != 0 {
		t.Fatalf("Focus() = %d, want 0", got)
	}
	if calls != 0 {
		t.Fatalf("onChange calls = %d, want 0", calls)
	}
}

func TestControl_BackspaceClearsThenRetreats(t *testing.T) {
	// Arrange
	c := New(6, nil)
	c.Type('1')
	c.Type('2')
	c.Left() // focus back onto the populated second cell

	// Act: first press clears the cell, focus stays.
	c.Backspace()

	// Assert
	if got := c.Value(); got != "1" {
		t.Fatalf("Value() = %q, want %q", got, "1")
	}
	if got := c.Focus(); got != 1 {
		t.Fatalf("Focus() = %d, want 1 after clearing", got)
	}

	// Act: second press on the now-empty cell only moves focus left.
	c.Backspace()

	// Assert: nothing deleted on that press.
	if got := c.Value(); got != "1" {
		t.Fatalf("Value() = %q, want %q unchanged", got, "1")
	}
	if got := c.Focus(); got != 0 {
		t.Fatalf("Focus() = %d, want 0 after retreating", got)
	}
}

func TestControl_BackspaceOnFirstEmptyCellIsNoop(t *testing.T) {
	// Arrange
	c := New(6, nil)

	// Act
	c.Backspace()

	// Assert
	if got := c.Focus(); got != 0 {
		t.Fatalf("Focus() = %d, want 0", got)
	}
	if got := c.Value(); got != "" {
		t.Fatalf("Value() = %q, want empty", got)
	}
}

func TestControl_ArrowsClampAtEdges(t *testing.T) {
	// Arrange
	c := New(3, nil)

	// Act & Assert
	c.Left()
	if got := c.Focus(); got != 0 {
		t.Fatalf("Focus() = %d, want 0 clamped at first cell", got)
	}

	c.Right()
	c.Right()
	c.Right()
	c.Right()
	if got := c.Focus(); got != 2 {
		t.Fatalf("Focus() = %d, want 2 clamped at last cell", got)
	}
}

func TestControl_PasteFullCode(t *testing.T) {
	// Arrange
	var last string
	c := New(6, func(v string) { last = v })

	// Act
	c.Paste("123456")

	// Assert
	if got := c.Value(); got != "123456" {
		t.Fatalf("Value() = %q, want %q", got, "123456")
	}
	if got := c.Focus(); got != 5 {
		t.Fatalf("Focus() = %d, want 5 on the last cell", got)
	}
	if last != "123456" {
		t.Fatalf("onChange value = %q, want %q", last, "123456")
	}
}

func TestControl_PasteFiltersAndTruncates(t *testing.T) {
	// Arrange
	c := New(6, nil)

	// Act: noise and excess digits in the clipboard payload.
	c.Paste(" 12-34 56 789 ")

	// Assert: only the first six digits land.
	if got := c.Value(); got != "123456" {
		t.Fatalf("Value() = %q, want %q", got, "123456")
	}
	if got := c.Focus(); got != 5 {
		t.Fatalf("Focus() = %d, want 5", got)
	}
}

func TestControl_PasteShortPayloadFocusesFirstEmptyCell(t *testing.T) {
	// Arrange
	c := New(6, nil)
	c.Type('9')
	c.Type('9')
	c.Type('9')

	// Act: a short paste overwrites everything, it does not append.
	c.Paste("12")

	// Assert
	if got := c.Value(); got != "12" {
		t.Fatalf("Value() = %q, want %q", got, "12")
	}
	if got := c.Focus(); got != 2 {
		t.Fatalf("Focus() = %d, want 2 on the first empty cell", got)
	}
}

func TestControl_SetValueResyncsWithoutNotifying(t *testing.T) {
	// Arrange
	calls := 0
	c := New(6, func(string) { calls++ })
	c.Type('1') // one notification
	c.Right()
	c.Right()

	// Act
	c.SetValue("4711")

	// Assert
	if got := c.Value(); got != "4711" {
		t.Fatalf("Value() = %q, want %q", got, "4711")
	}
	if got := c.Focus(); got != 3 {
		t.Fatalf("Focus() = %d, want 3 untouched by SetValue", got)
	}
	if calls != 1 {
		t.Fatalf("onChange calls = %d, want 1 (SetValue must not notify)", calls)
	}
}

func TestControl_ClearEmptiesAndRefocuses(t *testing.T) {
	// Arrange
	c := New(6, nil)
	c.Paste("123456")

	// Act
	c.Clear()

	// Assert
	if got := c.Value(); got != "" {
		t.Fatalf("Value() = %q, want empty", got)
	}
	if got := c.Focus(); got != 0 {
		t.Fatalf("Focus() = %d, want 0", got)
	}
	slots := c.Slots()
	for i, s := range slots {
		if s != "" {
			t.Fatalf("Slots()[%d] = %q, want empty", i, s)
		}
	}
}

func TestNew_SizeFallback(t *testing.T) {
	// Arrange & Act
	c := New(0, nil)

	// Assert
	if got := c.Size(); got != DefaultSize {
		t.Fatalf("Size() = %d, want %d", got, DefaultSize)
	}
}
