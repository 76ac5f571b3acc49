package game

import "fmt"

// MoveErrorKind classifies a rejected move.
type MoveErrorKind int

const (
	NoPlayers MoveErrorKind = iota
	InvalidIdentifierLength
	InvalidRowCharacter
	InvalidColumnCharacter
	RowOutOfRange
	ColumnOutOfRange
	CellTaken
)

// MoveError is returned when a move command cannot be applied.
type MoveError struct {
	Kind    MoveErrorKind
	Message string
}

func (e *MoveError) Error() string {
	return e.Message
}

func errNoPlayers() error {
	return &MoveError{Kind: NoPlayers, Message: "No players set. Please set players first."}
}

func errIdentifierLength(n int) error {
	return &MoveError{Kind: InvalidIdentifierLength, Message: fmt.Sprintf("Identifier length is invalid: %d", n)}
}

func errRowCharacter(c rune) error {
	return &MoveError{Kind: InvalidRowCharacter, Message: fmt.Sprintf("Invalid ROW character: %c", c)}
}

func errColumnCharacter(c rune) error {
	return &MoveError{Kind: InvalidColumnCharacter, Message: fmt.Sprintf("Invalid COLUMN character: %c", c)}
}

func errRowRange(i int) error {
	return &MoveError{Kind: RowOutOfRange, Message: fmt.Sprintf("ROW index out of range: %d", i)}
}

func errColumnRange(i int) error {
	return &MoveError{Kind: ColumnOutOfRange, Message: fmt.Sprintf("COLUMN index out of range: %d", i)}
}

func errCellTaken(row, col int) error {
	return &MoveError{Kind: CellTaken, Message: fmt.Sprintf("Cell is already taken: (%d,%d)", row, col)}
}
