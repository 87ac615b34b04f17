package entity

const (
	MarkX   = "X"
	MarkO   = "O"
	MarkTie = "-"

	EmptyCell = ""

	BoardSize = 9
)

// WinCombos lists the 3 rows, 3 columns and 2 diagonals of the grid.
var WinCombos = [][3]int{
	{0, 1, 2},
	{3, 4, 5},
	{6, 7, 8},
	{0, 3, 6},
	{1, 4, 7},
	{2, 5, 8},
	{0, 4, 8},
	{2, 4, 6},
}

// Board is a 3x3 grid stored row-major; each cell holds a mark or EmptyCell.
type Board [BoardSize]string

func NewBoard() Board {
	return Board{}
}

// DetermineResult - returns the winning mark, MarkTie when the board is full
// with no winning line, or EmptyCell while the game can continue.
func (that *Board) DetermineResult() string {
	for _, combo := range WinCombos {
		a, b, c := that[combo[0]], that[combo[1]], that[combo[2]]
		if a != EmptyCell && a == b && b == c {
			return a
		}
	}

	for _, cell := range that {
		if cell == EmptyCell {
			return EmptyCell
		}
	}

	return MarkTie
}

func (that *Board) IsCellEmpty(cell int) bool {
	return that[cell] == EmptyCell
}

// Reset - clears every cell. Only rematch completion may call this; cells
// never revert to empty otherwise.
func (that *Board) Reset() {
	for i := range that {
		that[i] = EmptyCell
	}
}

// ToggleMark - returns the mark whose owner moves after currentMark.
func ToggleMark(currentMark string) string {
	if currentMark == MarkX {
		return MarkO
	}
	return MarkX
}
