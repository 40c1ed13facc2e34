package game

import "strings"

// Moves a player can throw.
const (
	Rock     = "rock"
	Paper    = "paper"
	Scissors = "scissors"
)

// Tie marks a round where both players threw the same move. It is stored
// in Round.Winner and never collides with a nickname shown to clients.
const Tie = "TIE"

// Game states. "in-progress" covers both waiting for the second player
// and playing; there is no separate waiting state.
const (
	StateInProgress = "in-progress"
	StateFinished   = "finished"
)

// Bounds for max_rounds at game creation.
const (
	MinRounds = 1
	MaxRounds = 10
)

const maxPlayers = 2

// Player is one participant, identified by nickname.
type Player struct {
	Nickname string `json:"nickname"`
}

// Action is one player's move in a round.
type Action struct {
	Nickname string `json:"nickname"`
	Action   string `json:"action"`
}

// Round holds up to two actions, one per player, in submission order.
// Winner is empty until the second action arrives, then a nickname or Tie.
type Round struct {
	Actions []Action `json:"actions"`
	Winner  string   `json:"winner"`
}

// Game is the match aggregate. It owns its rounds and actions exclusively;
// all mutation goes through Join and SubmitAction.
type Game struct {
	ID           string   `json:"id"`
	MaxRounds    int      `json:"max_rounds"`
	Players      []Player `json:"players"`
	CurrentRound int      `json:"current_round"`
	Rounds       []Round  `json:"rounds"`
	State        string   `json:"state"`
}

// Outcome reports what a successful SubmitAction changed, so the caller
// can record statistics and decide what to persist and announce.
type Outcome struct {
	RoundResolved bool
	RoundWinner   string // nickname or Tie, set when RoundResolved
	Finished      bool
	GameWinner    string // nickname, empty on a drawn game
}

// ValidMove reports whether move is one of the three throwable moves.
func ValidMove(move string) bool {
	return move == Rock || move == Paper || move == Scissors
}

// New creates a game with the creator as its first player.
func New(id string, maxRounds int, nickname string) (*Game, error) {
	if maxRounds < MinRounds || maxRounds > MaxRounds {
		return nil, errInvalidMaxRounds()
	}
	if nickname == "" {
		return nil, errMissingNickname()
	}
	return &Game{
		ID:           id,
		MaxRounds:    maxRounds,
		Players:      []Player{{Nickname: nickname}},
		CurrentRound: 0,
		Rounds:       []Round{},
		State:        StateInProgress,
	}, nil
}

// HasPlayer reports whether nickname already occupies a player slot.
func (g *Game) HasPlayer(nickname string) bool {
	for _, p := range g.Players {
		if p.Nickname == nickname {
			return true
		}
	}
	return false
}

// Join adds nickname to the game. Rejoining with a nickname that is
// already a player succeeds without a second entry. It returns true
// when a new player slot was filled, so the caller knows whether the
// game changed.
func (g *Game) Join(nickname string) (bool, error) {
	if g.State == StateFinished {
		return false, errGameFinished(g.ID)
	}
	if nickname == "" {
		return false, errMissingNickname()
	}
	if len(g.Players) >= maxPlayers {
		if g.HasPlayer(nickname) {
			return false, nil
		}
		names := make([]string, len(g.Players))
		for i, p := range g.Players {
			names[i] = p.Nickname
		}
		return false, &ConflictError{
			Message: "This game is full, please choose from existent players: " + strings.Join(names, ","),
		}
	}
	if g.HasPlayer(nickname) {
		return false, nil
	}
	g.Players = append(g.Players, Player{Nickname: nickname})
	return true, nil
}

// SubmitAction records a move for the current round. The first action of
// a round creates the round entry; the second resolves it, tallies the
// winner, and either advances to the next round or finishes the game.
func (g *Game) SubmitAction(nickname, move string) (Outcome, error) {
	if nickname == "" {
		return Outcome{}, errMissingNickname()
	}
	if !ValidMove(move) {
		return Outcome{}, errInvalidAction()
	}
	if g.State == StateFinished {
		return Outcome{}, errGameFinished(g.ID)
	}

	r := g.CurrentRound
	if len(g.Rounds)-1 < r {
		// First action of the round. The round entry is created lazily,
		// so no winner is computed yet.
		g.Rounds = append(g.Rounds, Round{
			Actions: []Action{{Nickname: nickname, Action: move}},
			Winner:  "",
		})
		return Outcome{}, nil
	}

	round := &g.Rounds[r]
	for _, a := range round.Actions {
		if a.Nickname == nickname {
			return Outcome{}, &ConflictError{Message: "You've already set the action in this round"}
		}
	}
	round.Actions = append(round.Actions, Action{Nickname: nickname, Action: move})

	// Second action: resolve in submission order.
	round.Winner = RoundWinner(round.Actions[0], round.Actions[1])
	out := Outcome{RoundResolved: true, RoundWinner: round.Winner}

	if r < g.MaxRounds-1 {
		g.CurrentRound++
		return out, nil
	}

	g.State = StateFinished
	out.Finished = true
	out.GameWinner = GameWinner(g)
	return out, nil
}
