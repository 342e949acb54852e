package domain

// CellType tags a cell of a generated seat grid.
type CellType string

const (
	CellSeat    CellType = "seat"
	CellWalkway CellType = "walkway"
)

// SeatCell is a single position in a bus row.
type SeatCell struct {
	Type       CellType `json:"type"`
	SeatNumber int      `json:"seat_number,omitempty"`
}

// SeatLayout is the row-major seat grid of a bus.
type SeatLayout struct {
	Rows [][]SeatCell `json:"rows"`
}

// GenerateSeatLayout builds a rows x columns grid, numbering seats from 1 in
// row-major order. A walkway cell follows column `walkway` in every row when
// 1 <= walkway < columns; any other walkway value yields no walkway at all.
// Values are not validated here.
func GenerateSeatLayout(rows, columns, walkway int) SeatLayout {
	if rows < 0 {
		rows = 0
	}
	out := SeatLayout{Rows: make([][]SeatCell, 0, rows)}
	hasWalkway := walkway >= 1 && walkway < columns

	seat := 1
	for r := 0; r < rows; r++ {
		width := columns
		if hasWalkway {
			width++
		}
		if width < 0 {
			width = 0
		}
		row := make([]SeatCell, 0, width)
		for col := 1; col <= columns; col++ {
			row = append(row, SeatCell{Type: CellSeat, SeatNumber: seat})
			seat++
			if hasWalkway && col == walkway {
				row = append(row, SeatCell{Type: CellWalkway})
			}
		}
		out.Rows = append(out.Rows, row)
	}
	return out
}

// SeatCount returns the number of seat cells in the layout.
func (l SeatLayout) SeatCount() int {
	n := 0
	for _, row := range l.Rows {
		for _, cell := range row {
			if cell.Type == CellSeat {
				n++
			}
		}
	}
	return n
}

// HasSeat reports whether seatNumber exists in the layout.
func (l SeatLayout) HasSeat(seatNumber int) bool {
	return seatNumber >= 1 && seatNumber <= l.SeatCount()
}

// SeatCapacity is rows x columns without building the grid.
func SeatCapacity(rows, columns int) int {
	if rows <= 0 || columns <= 0 {
		return 0
	}
	return rows * columns
}
