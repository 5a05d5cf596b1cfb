package dotfont

import (
	"strconv"
	"strings"
)

// FixedColumns is the counter width used when responsive sizing is disabled
const FixedColumns = 20

// Grid is a rows x cols on/off matrix
type Grid struct {
	Rows  int
	Cols  int
	Cells [][]bool // [row][col]
}

// NewGrid returns an all-off grid
func NewGrid(rows, cols int) Grid {
	if rows < 0 {
		rows = 0
	}
	if cols < 0 {
		cols = 0
	}
	cells := make([][]bool, rows)
	for r := range cells {
		cells[r] = make([]bool, cols)
	}
	return Grid{Rows: rows, Cols: cols, Cells: cells}
}

// At reports whether the cell is lit; out-of-range cells are off
func (g Grid) At(row, col int) bool {
	if row < 0 || row >= g.Rows || col < 0 || col >= g.Cols {
		return false
	}
	return g.Cells[row][col]
}

// Lit returns the number of lit cells
func (g Grid) Lit() int {
	n := 0
	for _, row := range g.Cells {
		for _, on := range row {
			if on {
				n++
			}
		}
	}
	return n
}

// Bits returns the grid as 0/1 rows
func (g Grid) Bits() [][]uint8 {
	bits := make([][]uint8, g.Rows)
	for r, row := range g.Cells {
		bits[r] = make([]uint8, g.Cols)
		for c, on := range row {
			if on {
				bits[r][c] = 1
			}
		}
	}
	return bits
}

// String renders the grid one line per row using the given cell strings
func (g Grid) String(on, off string) string {
	var sb strings.Builder
	for r, row := range g.Cells {
		if r > 0 {
			sb.WriteByte('\n')
		}
		for _, lit := range row {
			if lit {
				sb.WriteString(on)
			} else {
				sb.WriteString(off)
			}
		}
	}
	return sb.String()
}

// ContentWidth returns the width in columns of n rendered with the digit font
func ContentWidth(n int) int {
	d := len(digitsOf(n))
	return d*DigitWidth + (d-1)*DigitSpacing
}

// Render draws n centered into a CounterRows x cols grid.
// Content wider than the grid is clipped on both sides; it is never wrapped or scaled.
// Negative n is drawn as 0.
func Render(n, cols int) Grid {
	grid := NewGrid(CounterRows, cols)

	digits := digitsOf(n)
	totalWidth := ContentWidth(n)
	offsetX := floorDiv(cols-totalWidth, 2)
	offsetY := floorDiv(CounterRows-DigitHeight, 2)

	for i, d := range digits {
		dx := offsetX + i*(DigitWidth+DigitSpacing)
		glyph := &Glyphs[d]
		for r := 0; r < DigitHeight; r++ {
			gy := offsetY + r
			if gy < 0 || gy >= grid.Rows {
				continue
			}
			for c := 0; c < DigitWidth; c++ {
				gx := dx + c
				if gx < 0 || gx >= grid.Cols {
					continue
				}
				grid.Cells[gy][gx] = glyph[r][c] == 1
			}
		}
	}

	return grid
}

// ColumnsForWidth picks the counter width for a viewport width
func ColumnsForWidth(width int) int {
	switch {
	case width <= 400:
		return 18
	case width >= 600:
		return 24
	default:
		return 20
	}
}

func digitsOf(n int) []int {
	if n < 0 {
		n = 0
	}
	s := strconv.Itoa(n)
	digits := make([]int, len(s))
	for i, ch := range s {
		digits[i] = int(ch - '0')
	}
	return digits
}

// floorDiv divides rounding toward negative infinity
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
