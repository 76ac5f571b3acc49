package game

// State is the JSON document describing a game.
type State struct {
	Rows          int        `json:"rows"`
	Cols          int        `json:"cols"`
	WinThreshold  int        `json:"winThreshold"`
	PlayerCount   int        `json:"playerCount"`
	CurrentPlayer *string    `json:"currentPlayer"`
	Winner        *string    `json:"winner"`
	Drawn         bool       `json:"drawn"`
	Board         [][]string `json:"board"`
}

// State builds the state document. Empty cells are rendered as a single space.
func (g *Game) State() State {
	s := State{
		Rows:         g.Rows(),
		Cols:         g.Cols(),
		WinThreshold: g.winThreshold,
		PlayerCount:  len(g.players),
		Drawn:        g.drawn,
		Board:        make([][]string, g.Rows()),
	}
	if p, ok := g.CurrentPlayer(); ok {
		s.CurrentPlayer = letterPtr(p)
	}
	if w, ok := g.Winner(); ok {
		s.Winner = letterPtr(w)
	}
	for i, row := range g.board {
		s.Board[i] = make([]string, len(row))
		for j, c := range row {
			if c == Empty {
				s.Board[i][j] = " "
			} else {
				s.Board[i][j] = string(c)
			}
		}
	}
	return s
}

func letterPtr(r rune) *string {
	s := string(r)
	return &s
}
