package eventbus

import "time"

// Event represents an application event published to the bus.
type Event struct {
	Type      string            `json:"type"`
	Timestamp time.Time         `json:"timestamp"`
	Payload   map[string]string `json:"payload"`
}

// Listener is a function that handles an event.
type Listener func(Event)

// Game lifecycle event types.
const (
	// GameFinished is published when a move wins or draws a game. The payload carries
	// the match record fields keyed by their JSON names.
	GameFinished = "game.finished"
	// GameReset is published when the board, players or game are reset.
	GameReset = "game.reset"
)
