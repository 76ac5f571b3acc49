package game

// WinChecker decides whether letter has threshold cells in a row through (row, col).
type WinChecker interface {
	Wins(b Board, row, col int, letter rune, threshold int) bool
}

// ScanChecker scans the whole row and column of the placed cell for the longest run,
// then walks both diagonals outward from it.
type ScanChecker struct{}

// Wins implements WinChecker.
func (ScanChecker) Wins(b Board, row, col int, letter rune, threshold int) bool {
	if longestRun(b.Rows(), func(i int) bool { return b.At(i, col) == letter }) >= threshold {
		return true
	}
	if longestRun(b.Cols(), func(j int) bool { return b.At(row, j) == letter }) >= threshold {
		return true
	}

	owned := func(r, c int) bool { return b.InBounds(r, c) && b.At(r, c) == letter }

	diag := 1
	for i := 1; i < threshold && owned(row-i, col-i); i++ {
		diag++
	}
	for i := 1; i < threshold && owned(row+i, col+i); i++ {
		diag++
	}
	if diag >= threshold {
		return true
	}

	anti := 1
	for i := 1; i < threshold && owned(row-i, col+i); i++ {
		anti++
	}
	for i := 1; i < threshold && owned(row+i, col-i); i++ {
		anti++
	}
	return anti >= threshold
}

func longestRun(n int, match func(int) bool) int {
	count, best := 0, 0
	for i := 0; i < n; i++ {
		if match(i) {
			count++
		} else {
			count = 0
		}
		best = max(best, count)
	}
	return best
}

// directions are horizontal, vertical, main diagonal and anti-diagonal.
var directions = [4][2]int{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// DirectionalChecker counts outward from the placed cell along four direction vectors.
// It only touches cells on lines through (row, col).
type DirectionalChecker struct{}

// Wins implements WinChecker.
func (DirectionalChecker) Wins(b Board, row, col int, letter rune, threshold int) bool {
	rows, cols := b.Rows(), b.Cols()
	for _, d := range directions {
		count := 1
		count += countDirection(b, row, col, d[0], d[1], letter, rows, cols)
		count += countDirection(b, row, col, -d[0], -d[1], letter, rows, cols)
		if count >= threshold {
			return true
		}
	}
	return false
}

func countDirection(b Board, row, col, dr, dc int, letter rune, rows, cols int) int {
	n := 0
	for r, c := row+dr, col+dc; r >= 0 && r < rows && c >= 0 && c < cols; r, c = r+dr, c+dc {
		if b[r][c] != letter {
			break
		}
		n++
	}
	return n
}
