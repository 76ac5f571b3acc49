// Package game implements the OXO board game: an n-in-a-row variant of tic-tac-toe on a
// resizable board with any number of players.
//
// A Game is not safe for concurrent use; callers serialize access.
package game

import (
	"unicode"
)

const (
	// MinBoardSize is the smallest number of rows or columns a board may have.
	MinBoardSize = 3
	// MaxBoardSize bounds rows and columns so a single request cannot allocate an
	// arbitrarily large board.
	MaxBoardSize = 64

	// MaxPlayers keeps player letters within A-Z.
	MaxPlayers = 26

	DefaultWinThreshold = 3
)

// Empty marks an unowned cell.
const Empty rune = 0

// Board holds the owner letter of every cell, row-major.
type Board [][]rune

// NewBoard returns an empty rows x cols board.
func NewBoard(rows, cols int) Board {
	b := make(Board, rows)
	for i := range b {
		b[i] = make([]rune, cols)
	}
	return b
}

// Rows returns the number of rows.
func (b Board) Rows() int { return len(b) }

// Cols returns the number of columns.
func (b Board) Cols() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// InBounds reports whether (row, col) lies on the board.
func (b Board) InBounds(row, col int) bool {
	return row >= 0 && row < b.Rows() && col >= 0 && col < b.Cols()
}

// At returns the owner of (row, col).
func (b Board) At(row, col int) rune { return b[row][col] }

// Full reports whether every cell is owned.
func (b Board) Full() bool {
	for _, row := range b {
		for _, c := range row {
			if c == Empty {
				return false
			}
		}
	}
	return true
}

func (b Board) clear() {
	for _, row := range b {
		for j := range row {
			row[j] = Empty
		}
	}
}

// Game is the full game model.
type Game struct {
	board        Board
	players      []rune
	current      int
	winner       rune
	drawn        bool
	winThreshold int
	moves        int
	checker      WinChecker
}

// New creates a rows x cols game with players X and O. A nil checker selects
// DirectionalChecker.
func New(rows, cols, winThreshold int, checker WinChecker) *Game {
	if checker == nil {
		checker = DirectionalChecker{}
	}
	return &Game{
		board:        NewBoard(clampSize(rows), clampSize(cols)),
		players:      []rune{'X', 'O'},
		winThreshold: winThreshold,
		checker:      checker,
	}
}

// NewDefault creates the standard 3x3, three-in-a-row game.
func NewDefault(checker WinChecker) *Game {
	return New(MinBoardSize, MinBoardSize, DefaultWinThreshold, checker)
}

func clampSize(n int) int {
	return min(max(n, MinBoardSize), MaxBoardSize)
}

func (g *Game) Rows() int { return g.board.Rows() }
func (g *Game) Cols() int { return g.board.Cols() }
func (g *Game) WinThreshold() int { return g.winThreshold }
func (g *Game) Drawn() bool { return g.drawn }
func (g *Game) Moves() int { return g.moves }
func (g *Game) Cell(row, col int) rune { return g.board.At(row, col) }

// Players returns a copy of the player letters in turn order.
func (g *Game) Players() []rune {
	return append([]rune(nil), g.players...)
}

// CurrentPlayer returns the letter of the player to move.
func (g *Game) CurrentPlayer() (rune, bool) {
	if g.current < len(g.players) {
		return g.players[g.current], true
	}
	return Empty, false
}

// Winner returns the winning letter, if any.
func (g *Game) Winner() (rune, bool) {
	return g.winner, g.winner != Empty
}

// Finished reports whether the game has been won or drawn.
func (g *Game) Finished() bool {
	return g.drawn || g.winner != Empty
}

// SetWinThreshold changes the run length needed to win.
func (g *Game) SetWinThreshold(n int) {
	g.winThreshold = n
}

// SetCell assigns a cell directly, bypassing turn order. Used to prepare positions.
func (g *Game) SetCell(row, col int, letter rune) {
	g.board[row][col] = letter
}

// SetPlayers replaces the players with count letters starting at 'A' (count is clamped to
// [1, MaxPlayers]), grows the board so each side holds at least count cells, and resets
// the game.
func (g *Game) SetPlayers(count int) {
	count = min(max(count, 1), MaxPlayers)
	rows, cols := g.Rows(), g.Cols()
	if count > rows || count > cols {
		g.SetBoardSize(max(rows, count), max(cols, count))
	}
	g.players = make([]rune, count)
	for i := range g.players {
		g.players[i] = 'A' + rune(i)
	}
	g.Reset()
}

// SetBoardSize rebuilds an empty board, clamping each side to [MinBoardSize, MaxBoardSize],
// and resets the game.
func (g *Game) SetBoardSize(rows, cols int) {
	g.board = NewBoard(clampSize(rows), clampSize(cols))
	g.Reset()
}

// Reset clears the board, winner and draw flag and gives the turn to the first player.
func (g *Game) Reset() {
	g.board.clear()
	g.winner = Empty
	g.drawn = false
	g.current = 0
	g.moves = 0
}

// CheckWinner reports whether the player to move owns a winning line through (row, col).
func (g *Game) CheckWinner(row, col int) bool {
	letter, ok := g.CurrentPlayer()
	if !ok {
		return false
	}
	return g.checker.Wins(g.board, row, col, letter, g.winThreshold)
}

// Play applies a move command such as "a1" (row letter, 1-based column digit) for the
// player to move. Commands received after the game has finished are ignored. The
// returned bool reports whether this move finished the game.
func (g *Game) Play(command string) (bool, error) {
	// New and SetPlayers always leave at least one player; only a zero Game lands here.
	if len(g.players) == 0 {
		return false, errNoPlayers()
	}
	if g.Finished() {
		return false, nil
	}

	row, col, err := g.parse(command)
	if err != nil {
		return false, err
	}
	if g.board.At(row, col) != Empty {
		return false, errCellTaken(row, col)
	}

	g.board[row][col] = g.players[g.current]
	g.moves++

	if g.CheckWinner(row, col) {
		g.winner = g.players[g.current]
		return true, nil
	}
	if g.board.Full() {
		g.drawn = true
	}
	g.current = (g.current + 1) % len(g.players)
	return g.drawn, nil
}

func (g *Game) parse(command string) (int, int, error) {
	runes := []rune(command)
	if len(runes) != 2 {
		return 0, 0, errIdentifierLength(len(runes))
	}

	rowChar := unicode.ToLower(runes[0])
	if rowChar < 'a' || rowChar > 'z' {
		return 0, 0, errRowCharacter(rowChar)
	}
	row := int(rowChar - 'a')

	colChar := runes[1]
	if colChar < '0' || colChar > '9' {
		return 0, 0, errColumnCharacter(colChar)
	}
	col := int(colChar-'0') - 1

	if row >= g.Rows() {
		return 0, 0, errRowRange(row)
	}
	if col < 0 || col >= g.Cols() {
		return 0, 0, errColumnRange(col)
	}
	return row, col, nil
}
