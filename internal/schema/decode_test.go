package schema_test

import (
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/hanabi-json/internal/schema"
	"github.com/cory-johannsen/hanabi-json/internal/wire"
)

func loadSample(t *testing.T) any {
	t.Helper()
	data, err := os.ReadFile("testdata/sample.json")
	require.NoError(t, err)
	tree, err := wire.Unmarshal(data, wire.FormatJSON)
	require.NoError(t, err)
	return tree
}

// minimal returns the smallest valid record as a fresh tree.
func minimal() map[string]any {
	return map[string]any{
		"players": []any{"Alice", "Bob"},
		"deck":    []any{map[string]any{"suitIndex": 0, "rank": 1}},
		"actions": []any{},
	}
}

func TestDecode_Sample(t *testing.T) {
	g, err := schema.Decode(loadSample(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"Alice", "Bob", "Cathy", "Donald", "Emily"}, g.Players)
	require.Len(t, g.Deck, 50)
	assert.Equal(t, schema.Card{SuitIndex: 3, Rank: 1}, g.Deck[0])
	assert.Equal(t, []schema.Action{
		schema.PlayAction{Target: 2},
		schema.DiscardAction{Target: 5},
		schema.ColorClueAction{Target: 1, Value: 0},
		schema.RankClueAction{Target: 1, Value: 3},
		// End conditions use hanab.live's numbering: 2 is strikeout, 3 is timeout.
		schema.EndGameAction{Target: 1, Value: schema.EndTimeout},
	}, g.Actions)

	end, ok := g.Actions[4].(schema.EndGameAction)
	require.True(t, ok)
	assert.Equal(t, schema.EndGameReason(3), end.Value)

	assert.Equal(t, schema.NoVariant, g.Options.Variant)
	assert.True(t, g.Options.EmptyClues)
	assert.False(t, g.Options.DeckPlays)

	notes, ok := g.Notes.Get()
	require.True(t, ok)
	assert.Equal(t, [][]string{
		{"this is an important card", "this card should be trash"},
		{"finessed", "chop moved"},
		{},
		{},
		{},
	}, notes)

	chars, ok := g.Characters.Get()
	require.True(t, ok)
	assert.Equal(t, []schema.Character{
		{Name: "Fuming", Metadata: 2},
		{Name: "Dumbfounded", Metadata: 3},
		{Name: "Conservative", Metadata: -1},
		{Name: "Greedy", Metadata: -1},
		{Name: "Picky", Metadata: -1},
	}, chars)

	assert.Equal(t, schema.Some(int64(12345)), g.ID)
	assert.Equal(t, schema.Some("p2v0s0"), g.Seed)
}

func TestDecode_MinimalRecordDefaults(t *testing.T) {
	g, err := schema.Decode(minimal())
	require.NoError(t, err)

	assert.Equal(t, schema.DefaultOptions(), g.Options)
	assert.False(t, g.Notes.IsPresent())
	assert.False(t, g.Characters.IsPresent())
	assert.False(t, g.ID.IsPresent())
	assert.False(t, g.Seed.IsPresent())
	assert.Empty(t, g.Actions)
}

func TestDecode_NullOptionalsAreAbsent(t *testing.T) {
	tree := minimal()
	tree["notes"] = nil
	tree["characters"] = nil
	tree["id"] = nil
	tree["seed"] = nil

	g, err := schema.Decode(tree)
	require.NoError(t, err)
	assert.False(t, g.Notes.IsPresent())
	assert.False(t, g.Characters.IsPresent())
	assert.False(t, g.ID.IsPresent())
	assert.False(t, g.Seed.IsPresent())
}

func TestDecode_EmptyOptionsObjectYieldsDefaults(t *testing.T) {
	tree := minimal()
	tree["options"] = map[string]any{}

	g, err := schema.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, schema.Options{Variant: schema.NoVariant}, g.Options)
}

func TestDecode_PartialOptionsOverrideOnlyGivenKeys(t *testing.T) {
	tree := minimal()
	tree["options"] = map[string]any{
		"startingPlayer": 1,
		"oneExtraCard":   true,
		"timeBase":       120,
	}

	g, err := schema.Decode(tree)
	require.NoError(t, err)

	want := schema.DefaultOptions()
	want.StartingPlayer = 1
	want.OneExtraCard = true
	want.TimeBase = 120
	assert.Equal(t, want, g.Options)
}

func TestDecode_MissingRequiredFields(t *testing.T) {
	for _, key := range []string{"players", "deck", "actions"} {
		t.Run(key, func(t *testing.T) {
			tree := minimal()
			delete(tree, key)

			_, err := schema.Decode(tree)
			var missing *schema.MissingFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, key, missing.Path)
			assert.ErrorIs(t, err, schema.ErrMissingField)
		})
	}
}

func TestDecode_MissingNestedField(t *testing.T) {
	tree := minimal()
	tree["deck"] = []any{
		map[string]any{"suitIndex": 0, "rank": 1},
		map[string]any{"rank": 2},
	}

	_, err := schema.Decode(tree)
	var missing *schema.MissingFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "deck[1].suitIndex", missing.Path)
}

func TestDecode_TypeMismatch(t *testing.T) {
	cases := []struct {
		name  string
		patch func(map[string]any)
		path  string
	}{
		{"players not array", func(m map[string]any) { m["players"] = "Alice" }, "players"},
		{"player not string", func(m map[string]any) { m["players"] = []any{"Alice", 7} }, "players[1]"},
		{"rank string", func(m map[string]any) {
			m["deck"] = []any{map[string]any{"suitIndex": 0, "rank": "1"}}
		}, "deck[0].rank"},
		{"rank fractional", func(m map[string]any) {
			m["deck"] = []any{map[string]any{"suitIndex": 0, "rank": 1.5}}
		}, "deck[0].rank"},
		{"negative suit", func(m map[string]any) {
			m["deck"] = []any{map[string]any{"suitIndex": -1, "rank": 1}}
		}, "deck[0].suitIndex"},
		{"option bool as int", func(m map[string]any) {
			m["options"] = map[string]any{"timed": 1}
		}, "options.timed"},
		{"variant not string", func(m map[string]any) {
			m["options"] = map[string]any{"variant": 3}
		}, "options.variant"},
		{"options null", func(m map[string]any) { m["options"] = nil }, "options"},
		{"id string", func(m map[string]any) { m["id"] = "12345" }, "id"},
		{"seed number", func(m map[string]any) { m["seed"] = 5 }, "seed"},
		{"note not string", func(m map[string]any) {
			m["notes"] = []any{[]any{"ok", true}, []any{}}
		}, "notes[0][1]"},
		{"character metadata bool", func(m map[string]any) {
			m["characters"] = []any{map[string]any{"name": "Fuming", "metadata": false}}
		}, "characters[0].metadata"},
		{"action target string", func(m map[string]any) {
			m["actions"] = []any{map[string]any{"type": 0, "target": "2"}}
		}, "actions[0].target"},
		{"action type string", func(m map[string]any) {
			m["actions"] = []any{map[string]any{"type": "play", "target": 2}}
		}, "actions[0].type"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := minimal()
			tc.patch(tree)

			_, err := schema.Decode(tree)
			var mismatch *schema.TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, tc.path, mismatch.Path)
			assert.ErrorIs(t, err, schema.ErrTypeMismatch)
		})
	}
}

func TestDecode_RootMustBeObject(t *testing.T) {
	for _, tree := range []any{nil, "game", []any{}, 3} {
		_, err := schema.Decode(tree)
		assert.ErrorIs(t, err, schema.ErrTypeMismatch)
	}
}

func TestDecode_IntegralFloatsAccepted(t *testing.T) {
	tree := minimal()
	tree["deck"] = []any{map[string]any{"suitIndex": 2.0, "rank": 5.0}}

	g, err := schema.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, schema.Card{SuitIndex: 2, Rank: 5}, g.Deck[0])
}

func TestDecode_ActionDispatch(t *testing.T) {
	cases := []struct {
		raw  map[string]any
		want schema.Action
	}{
		{map[string]any{"type": 0, "target": 4}, schema.PlayAction{Target: 4}},
		{map[string]any{"type": 1, "target": 9}, schema.DiscardAction{Target: 9}},
		{map[string]any{"type": 2, "target": 1, "value": 4}, schema.ColorClueAction{Target: 1, Value: 4}},
		{map[string]any{"type": 3, "target": 2, "value": 5}, schema.RankClueAction{Target: 2, Value: 5}},
		{map[string]any{"type": 4, "target": 0, "value": 10}, schema.EndGameAction{Target: 0, Value: schema.EndTerminatedByVote}},
	}
	for _, tc := range cases {
		t.Run(tc.want.Type().String(), func(t *testing.T) {
			tree := minimal()
			tree["actions"] = []any{tc.raw}

			g, err := schema.Decode(tree)
			require.NoError(t, err)
			require.Len(t, g.Actions, 1)
			assert.Equal(t, tc.want, g.Actions[0])
			assert.Equal(t, tc.want.Type(), g.Actions[0].Type())
		})
	}
}

func TestDecode_ActionShapeMismatch(t *testing.T) {
	cases := []struct {
		name    string
		raw     map[string]any
		path    string
		wantErr error
	}{
		{"play with value", map[string]any{"type": 0, "target": 1, "value": 2}, "actions[0].value", schema.ErrUnexpectedField},
		{"discard with value", map[string]any{"type": 1, "target": 1, "value": 0}, "actions[0].value", schema.ErrUnexpectedField},
		{"color clue without value", map[string]any{"type": 2, "target": 1}, "actions[0].value", schema.ErrMissingField},
		{"rank clue without value", map[string]any{"type": 3, "target": 1}, "actions[0].value", schema.ErrMissingField},
		{"end game without value", map[string]any{"type": 4, "target": 1}, "actions[0].value", schema.ErrMissingField},
		{"missing type", map[string]any{"target": 1}, "actions[0].type", schema.ErrMissingField},
		{"missing target", map[string]any{"type": 0}, "actions[0].target", schema.ErrMissingField},
		{"extra key", map[string]any{"type": 2, "target": 1, "value": 0, "color": "red"}, "actions[0].color", schema.ErrUnexpectedField},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			tree := minimal()
			tree["actions"] = []any{tc.raw}

			_, err := schema.Decode(tree)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
			assert.Contains(t, err.Error(), tc.path)
		})
	}
}

func TestDecode_UnknownActionTypeHasNoMatchingVariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		tag := rapid.OneOf(rapid.IntRange(-1000, -1), rapid.IntRange(5, 1000)).Draw(rt, "type")
		tree := minimal()
		tree["actions"] = []any{map[string]any{"type": tag, "target": 0, "value": 0}}

		_, err := schema.Decode(tree)
		var invalid *schema.InvalidEnumError
		if !errors.As(err, &invalid) {
			rt.Fatalf("expected InvalidEnumError for type %d, got %v", tag, err)
		}
		assert.Equal(rt, "actions[0].type", invalid.Path)
		assert.Equal(rt, "ActionType", invalid.Enum)
		assert.Equal(rt, tag, invalid.Value)
		assert.Contains(rt, err.Error(), "no matching action variant")
	})
}

func TestDecode_EndGameReasonClosure(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		value := rapid.IntRange(-50, 50).Draw(rt, "value")
		tree := minimal()
		tree["actions"] = []any{map[string]any{"type": 4, "target": 0, "value": value}}

		g, err := schema.Decode(tree)
		if value >= 0 && value <= 10 {
			require.NoError(rt, err)
			assert.Equal(rt, schema.EndGameAction{Value: schema.EndGameReason(value)}, g.Actions[0])
			return
		}
		var invalid *schema.InvalidEnumError
		require.ErrorAs(rt, err, &invalid)
		assert.Equal(rt, "EndGameReason", invalid.Enum)
		assert.Equal(rt, "actions[0].value", invalid.Path)
	})
}

func TestDecode_AnyVariantStringAcceptedByDefault(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.String().Draw(rt, "variant")
		tree := minimal()
		tree["options"] = map[string]any{"variant": name}

		g, err := schema.Decode(tree)
		require.NoError(rt, err)
		assert.Equal(rt, schema.Variant(name), g.Options.Variant)
	})
}

func TestDecode_VariantPolicyReject(t *testing.T) {
	catalog := schema.NewVariantCatalog("Rainbow (6 Suits)")
	dec := schema.NewDecoder(schema.WithVariantPolicy(schema.VariantReject, catalog))

	tree := minimal()
	tree["options"] = map[string]any{"variant": "Rainbow (6 Suits)"}
	_, err := dec.Decode(tree)
	require.NoError(t, err)

	tree["options"] = map[string]any{"variant": "Nonexistent"}
	_, err = dec.Decode(tree)
	var invalid *schema.InvalidEnumError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "options.variant", invalid.Path)
	assert.Equal(t, "Nonexistent", invalid.Value)
}

func TestDecode_VariantPolicyWarnLogs(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	dec := schema.NewDecoder(
		schema.WithLogger(zap.New(core)),
		schema.WithVariantPolicy(schema.VariantWarn, nil),
	)

	tree := minimal()
	tree["options"] = map[string]any{"variant": "Black (6 Suits)"}
	g, err := dec.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, schema.Variant("Black (6 Suits)"), g.Options.Variant)

	entries := logs.FilterMessage("unknown variant").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Black (6 Suits)", entries[0].ContextMap()["variant"])

	tree["options"] = map[string]any{"variant": "No Variant"}
	_, err = dec.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.Len())
}

func TestDecode_StrictCounts(t *testing.T) {
	dec := schema.NewDecoder(schema.WithStrictCounts(true))

	tree := minimal()
	tree["players"] = []any{"Solo"}
	tree["notes"] = []any{[]any{}, []any{}}
	tree["characters"] = []any{}

	_, err := dec.Decode(tree)
	require.Error(t, err)
	assert.ErrorIs(t, err, schema.ErrConstraint)
	errs := multierr.Errors(err)
	require.Len(t, errs, 3)
	var paths []string
	for _, e := range errs {
		var ce *schema.ConstraintError
		require.ErrorAs(t, e, &ce)
		paths = append(paths, ce.Path)
	}
	assert.Equal(t, []string{"players", "notes", "characters"}, paths)
}

func TestDecode_LenientCountsByDefault(t *testing.T) {
	tree := minimal()
	tree["players"] = []any{"A", "B", "C", "D", "E", "F", "G"}
	tree["notes"] = []any{[]any{}}

	g, err := schema.Decode(tree)
	require.NoError(t, err)
	assert.Len(t, g.Players, 7)
}

func TestDecode_StrictCountsAcceptSample(t *testing.T) {
	dec := schema.NewDecoder(schema.WithStrictCounts(true))
	_, err := dec.Decode(loadSample(t))
	assert.NoError(t, err)
}

func TestDecode_UnknownTopLevelKeysIgnored(t *testing.T) {
	tree := minimal()
	tree["startingPlayer"] = 3
	tree["options"] = map[string]any{"futureOption": true}

	g, err := schema.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, schema.DefaultOptions(), g.Options)
}

func TestDecode_AcceptsOrderedObjects(t *testing.T) {
	tree := wire.Object{
		{Key: "players", Value: []any{"A", "B"}},
		{Key: "deck", Value: []any{wire.Object{{Key: "suitIndex", Value: 1}, {Key: "rank", Value: 2}}}},
		{Key: "actions", Value: []any{wire.Object{{Key: "type", Value: 1}, {Key: "target", Value: 0}}}},
	}
	g, err := schema.Decode(tree)
	require.NoError(t, err)
	assert.Equal(t, []schema.Card{{SuitIndex: 1, Rank: 2}}, g.Deck)
	assert.Equal(t, []schema.Action{schema.DiscardAction{Target: 0}}, g.Actions)
}

func TestDecode_RejectsInvalidUTF8(t *testing.T) {
	const bad = "A\xff"
	cases := map[string]func(tree map[string]any){
		"players[0]": func(tree map[string]any) { tree["players"] = []any{bad, "Bob"} },
		"notes[1][0]": func(tree map[string]any) {
			tree["notes"] = []any{[]any{"ok"}, []any{bad}}
		},
		"characters[0].name": func(tree map[string]any) {
			tree["characters"] = []any{map[string]any{"name": bad, "metadata": 0}}
		},
		"seed":            func(tree map[string]any) { tree["seed"] = bad },
		"options.variant": func(tree map[string]any) { tree["options"] = map[string]any{"variant": bad} },
	}
	for path, mutate := range cases {
		t.Run(path, func(t *testing.T) {
			tree := minimal()
			mutate(tree)
			_, err := schema.Decode(tree)
			var mismatch *schema.TypeMismatchError
			require.ErrorAs(t, err, &mismatch)
			assert.Equal(t, path, mismatch.Path)
			assert.ErrorIs(t, err, schema.ErrTypeMismatch)
		})
	}
}

func TestDecode_AcceptedStringsSurviveJSON(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.String().Draw(rt, "name")
		tree := minimal()
		tree["players"] = []any{name, "Bob"}
		tree["seed"] = name

		g, err := schema.Decode(tree)
		require.NoError(rt, err)
		data, err := wire.Marshal(schema.Encode(g), wire.FormatJSON, false)
		require.NoError(rt, err)
		back, err := wire.Unmarshal(data, wire.FormatJSON)
		require.NoError(rt, err)
		again, err := schema.Decode(back)
		require.NoError(rt, err)
		assert.Equal(rt, g, again)
	})
}
