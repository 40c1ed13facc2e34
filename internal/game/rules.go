package game

// RoundWinner resolves a round from its two actions, first submission
// first. Identical moves tie; otherwise paper beats rock, scissors beats
// paper, and rock beats scissors.
func RoundWinner(first, second Action) string {
	if first.Action == second.Action {
		return Tie
	}
	if beats(first.Action, second.Action) {
		return first.Nickname
	}
	return second.Nickname
}

func beats(a, b string) bool {
	switch a {
	case Paper:
		return b == Rock
	case Scissors:
		return b == Paper
	case Rock:
		return b == Scissors
	}
	return false
}

// GameWinner counts resolved rounds per player and returns the nickname
// with strictly more round wins, or "" on equal counts (drawn games are
// not retried or extended). Tied rounds count for neither player.
func GameWinner(g *Game) string {
	if len(g.Players) < maxPlayers {
		return ""
	}
	p1 := g.Players[0].Nickname
	p2 := g.Players[1].Nickname
	var wins1, wins2 int
	for _, r := range g.Rounds {
		switch r.Winner {
		case p1:
			wins1++
		case p2:
			wins2++
		}
	}
	switch {
	case wins1 > wins2:
		return p1
	case wins2 > wins1:
		return p2
	}
	return ""
}
