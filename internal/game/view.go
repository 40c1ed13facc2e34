package game

import "github.com/jinzhu/copier"

// Redacted returns a deep copy of the game for read queries. If the last
// round is still undecided its actions are emptied, so a player cannot
// learn the opponent's committed move before submitting their own. The
// stored game is never modified.
func (g *Game) Redacted() *Game {
	view := &Game{}
	// copier only errors on invalid to/from values, which cannot happen
	// when copying a Game into a Game.
	_ = copier.CopyWithOption(view, g, copier.Option{DeepCopy: true})

	// Keep empty sequences as [] so the JSON shape is stable.
	if view.Players == nil {
		view.Players = []Player{}
	}
	if view.Rounds == nil {
		view.Rounds = []Round{}
	}

	if n := len(view.Rounds); n > 0 && view.Rounds[n-1].Winner == "" {
		view.Rounds[n-1].Actions = []Action{}
	}
	return view
}
