// Package schema defines the Hanabi Live game-record model (format version 3.0.0)
// and the validated mapping between that model and its untyped wire tree.
//
// The wire format is owned by https://hanab.live; this package never interprets
// game rules, it only guarantees that a record is structurally well formed and
// that decoding followed by encoding reproduces the same document.
package schema

// Semantic aliases used throughout the record. They document intent only and
// are not distinct types.
type (
	PlayerName  = string
	SuitIndex   = int
	Rank        = int
	CardIndex   = int
	PlayerIndex = int
	CardNote    = string
)

// Card is one deck position.
type Card struct {
	SuitIndex SuitIndex
	Rank      Rank
}

// Character is the "Detrimental Character" assigned to one player.
// Metadata is character specific; -1 means the character takes no parameter.
type Character struct {
	Name     string
	Metadata int
}

// Game is the aggregate root of a recorded game.
//
// Players lists the player names; player 0 always goes first.
// Deck lists every card from top to bottom in deal order.
// Actions lists every action in chronological order.
// Notes, when present, holds one slice of card notes per player.
// Characters, when present, holds one Character per player.
// ID is the hanab.live database id and Seed the hanab.live seed name.
type Game struct {
	Players    []PlayerName
	Deck       []Card
	Actions    []Action
	Options    Options
	Notes      Optional[[][]CardNote]
	Characters Optional[[]Character]
	ID         Optional[int64]
	Seed       Optional[string]
}

// Optional holds a value that is either present or absent. The zero value is absent.
type Optional[T any] struct {
	value   T
	present bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, present: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the held value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.present
}

// IsPresent reports whether a value is held.
func (o Optional[T]) IsPresent() bool {
	return o.present
}

// OrElse returns the held value, or fallback when absent.
func (o Optional[T]) OrElse(fallback T) T {
	if !o.present {
		return fallback
	}
	return o.value
}
