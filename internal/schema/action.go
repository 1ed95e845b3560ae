package schema

import "fmt"

// ActionType is the wire discriminator of an Action.
type ActionType int

const (
	ActionPlay      ActionType = 0
	ActionDiscard   ActionType = 1
	ActionColorClue ActionType = 2
	ActionRankClue  ActionType = 3
	ActionEndGame   ActionType = 4
)

// Valid reports whether t is one of the five reserved discriminators.
func (t ActionType) Valid() bool {
	return t >= ActionPlay && t <= ActionEndGame
}

// String returns the human-readable name of the ActionType.
func (t ActionType) String() string {
	switch t {
	case ActionPlay:
		return "play"
	case ActionDiscard:
		return "discard"
	case ActionColorClue:
		return "color clue"
	case ActionRankClue:
		return "rank clue"
	case ActionEndGame:
		return "end game"
	default:
		return fmt.Sprintf("ActionType(%d)", int(t))
	}
}

// Action is one recorded move. The set of implementations is closed:
// PlayAction, DiscardAction, ColorClueAction, RankClueAction and EndGameAction.
type Action interface {
	// Type returns the discriminator reserved for the concrete action.
	Type() ActionType
	isAction()
}

// PlayAction plays the card with deck index Target.
type PlayAction struct {
	Target CardIndex
}

// DiscardAction discards the card with deck index Target.
type DiscardAction struct {
	Target CardIndex
}

// ColorClueAction gives player Target a clue for the suit at index Value.
type ColorClueAction struct {
	Target PlayerIndex
	Value  SuitIndex
}

// RankClueAction gives player Target a clue for rank Value (1 is rank 1).
type RankClueAction struct {
	Target PlayerIndex
	Value  Rank
}

// EndGameAction records that player Target ended the game for reason Value.
type EndGameAction struct {
	Target PlayerIndex
	Value  EndGameReason
}

func (PlayAction) Type() ActionType      { return ActionPlay }
func (DiscardAction) Type() ActionType   { return ActionDiscard }
func (ColorClueAction) Type() ActionType { return ActionColorClue }
func (RankClueAction) Type() ActionType  { return ActionRankClue }
func (EndGameAction) Type() ActionType   { return ActionEndGame }

func (PlayAction) isAction()      {}
func (DiscardAction) isAction()   {}
func (ColorClueAction) isAction() {}
func (RankClueAction) isAction()  {}
func (EndGameAction) isAction()   {}
