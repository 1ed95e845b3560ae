package schema

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/hanabi-json/internal/wire"
)

// Encode maps g back to its wire tree: wire keys restored, enums as integers,
// the variant as a string, absent optionals omitted and every list in order.
//
// Precondition: g is non-nil and passes Validate. Encode panics on a nil g or
// a nil Action; Games built in Go should be checked with Validate first.
// Postcondition: Decode(Encode(g)) is field-for-field equal to g.
func Encode(g *Game) wire.Object {
	root := wire.Object{
		{Key: keyPlayers, Value: encodeList(g.Players, func(p PlayerName) any { return p })},
		{Key: keyDeck, Value: encodeList(g.Deck, encodeCard)},
		{Key: keyActions, Value: encodeList(g.Actions, encodeAction)},
		{Key: keyOptions, Value: encodeOptions(g.Options)},
	}
	if notes, ok := g.Notes.Get(); ok {
		root = append(root, wire.Member{Key: keyNotes, Value: encodeList(notes, func(n []CardNote) any {
			return encodeList(n, func(s CardNote) any { return s })
		})})
	}
	if chars, ok := g.Characters.Get(); ok {
		root = append(root, wire.Member{Key: keyCharacters, Value: encodeList(chars, encodeCharacter)})
	}
	if id, ok := g.ID.Get(); ok {
		root = append(root, wire.Member{Key: keyID, Value: id})
	}
	if seed, ok := g.Seed.Get(); ok {
		root = append(root, wire.Member{Key: keySeed, Value: seed})
	}
	return root
}

func encodeOptions(o Options) wire.Object {
	obj := make(wire.Object, 0, len(optionFields))
	for _, f := range optionFields {
		obj = append(obj, wire.Member{Key: f.wire, Value: f.encode(o)})
	}
	return obj
}

func encodeCard(c Card) any {
	return wire.Object{
		{Key: keySuitIndex, Value: c.SuitIndex},
		{Key: keyRank, Value: c.Rank},
	}
}

func encodeCharacter(c Character) any {
	return wire.Object{
		{Key: keyName, Value: c.Name},
		{Key: keyMetadata, Value: c.Metadata},
	}
}

func encodeAction(a Action) any {
	obj := wire.Object{{Key: keyType, Value: int(a.Type())}}
	switch act := a.(type) {
	case PlayAction:
		obj = append(obj, wire.Member{Key: keyTarget, Value: act.Target})
	case DiscardAction:
		obj = append(obj, wire.Member{Key: keyTarget, Value: act.Target})
	case ColorClueAction:
		obj = append(obj,
			wire.Member{Key: keyTarget, Value: act.Target},
			wire.Member{Key: keyValue, Value: act.Value},
		)
	case RankClueAction:
		obj = append(obj,
			wire.Member{Key: keyTarget, Value: act.Target},
			wire.Member{Key: keyValue, Value: act.Value},
		)
	case EndGameAction:
		obj = append(obj,
			wire.Member{Key: keyTarget, Value: act.Target},
			wire.Member{Key: keyValue, Value: int(act.Value)},
		)
	}
	return obj
}

func encodeList[T any](items []T, elem func(T) any) []any {
	out := make([]any, 0, len(items))
	for _, item := range items {
		out = append(out, elem(item))
	}
	return out
}

// Validate applies the decoder's structural checks to a Game built directly in
// Go rather than decoded: required lists present, non-negative indices, no nil
// actions, EndGameReason values in range and valid UTF-8 text.
func (g *Game) Validate() error {
	if g == nil {
		return errors.New("nil game")
	}
	if g.Players == nil {
		return &MissingFieldError{Path: keyPlayers}
	}
	if g.Deck == nil {
		return &MissingFieldError{Path: keyDeck}
	}
	if g.Actions == nil {
		return &MissingFieldError{Path: keyActions}
	}
	for i, c := range g.Deck {
		if c.SuitIndex < 0 {
			return &TypeMismatchError{Path: fieldPath(indexPath(keyDeck, i), keySuitIndex), Expected: "non-negative integer", Got: c.SuitIndex}
		}
	}
	for i, a := range g.Actions {
		path := indexPath(keyActions, i)
		if err := validateAction(a, path); err != nil {
			return err
		}
	}
	return validateText(g)
}

// validateText applies the decoder's UTF-8 rule to every string field.
func validateText(g *Game) error {
	check := func(s, path string) error {
		_, err := asString(s, path)
		return err
	}
	for i, p := range g.Players {
		if err := check(p, indexPath(keyPlayers, i)); err != nil {
			return err
		}
	}
	if err := check(string(g.Options.Variant), fieldPath(keyOptions, "variant")); err != nil {
		return err
	}
	notes, _ := g.Notes.Get()
	for i, player := range notes {
		for j, n := range player {
			if err := check(n, indexPath(indexPath(keyNotes, i), j)); err != nil {
				return err
			}
		}
	}
	chars, _ := g.Characters.Get()
	for i, c := range chars {
		if err := check(c.Name, fieldPath(indexPath(keyCharacters, i), keyName)); err != nil {
			return err
		}
	}
	if seed, ok := g.Seed.Get(); ok {
		return check(seed, keySeed)
	}
	return nil
}

func validateAction(a Action, path string) error {
	var target int
	switch act := a.(type) {
	case nil:
		return &TypeMismatchError{Path: path, Expected: "action", Got: nil}
	case PlayAction:
		target = act.Target
	case DiscardAction:
		target = act.Target
	case ColorClueAction:
		target = act.Target
		if act.Value < 0 {
			return &TypeMismatchError{Path: fieldPath(path, keyValue), Expected: "non-negative integer", Got: act.Value}
		}
	case RankClueAction:
		target = act.Target
	case EndGameAction:
		target = act.Target
		if !act.Value.Valid() {
			return &InvalidEnumError{Path: fieldPath(path, keyValue), Enum: "EndGameReason", Value: int(act.Value)}
		}
	default:
		return fmt.Errorf("%s: unsupported action %T", path, a)
	}
	if target < 0 {
		return &TypeMismatchError{Path: fieldPath(path, keyTarget), Expected: "non-negative integer", Got: target}
	}
	return nil
}
