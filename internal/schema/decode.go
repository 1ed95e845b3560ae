package schema

import (
	"fmt"
	"math"
	"sort"
	"unicode/utf8"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/cory-johannsen/hanabi-json/internal/wire"
)

// Wire keys of the record root, cards, actions and characters. Options keys live in optionFields.
const (
	keyPlayers    = "players"
	keyDeck       = "deck"
	keyActions    = "actions"
	keyOptions    = "options"
	keyNotes      = "notes"
	keyCharacters = "characters"
	keyID         = "id"
	keySeed       = "seed"

	keySuitIndex = "suitIndex"
	keyRank      = "rank"

	keyType   = "type"
	keyTarget = "target"
	keyValue  = "value"

	keyName     = "name"
	keyMetadata = "metadata"
)

// Player-count bounds of hanab.live tables.
const (
	MinPlayers = 2
	MaxPlayers = 6
)

// Decoder maps untyped wire trees to validated Games. A Decoder is immutable
// after construction and safe for concurrent use.
type Decoder struct {
	logger        *zap.Logger
	variantPolicy VariantPolicy
	catalog       *VariantCatalog
	strictCounts  bool
}

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithLogger sets the logger used for VariantWarn warnings.
func WithLogger(logger *zap.Logger) DecoderOption {
	return func(d *Decoder) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// WithVariantPolicy sets how variants missing from catalog are handled.
// A nil catalog only knows NoVariant.
func WithVariantPolicy(policy VariantPolicy, catalog *VariantCatalog) DecoderOption {
	return func(d *Decoder) {
		d.variantPolicy = policy
		d.catalog = catalog
	}
}

// WithStrictCounts enables the player-count checks: 2 to 6 players, and one
// notes entry and one character per player when those fields are present.
func WithStrictCounts(strict bool) DecoderOption {
	return func(d *Decoder) {
		d.strictCounts = strict
	}
}

// NewDecoder returns a Decoder. Without options it accepts every variant and
// performs no count checks.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{
		logger:        zap.NewNop(),
		variantPolicy: VariantAllow,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

var defaultDecoder = NewDecoder()

// Decode validates tree with the default Decoder.
func Decode(tree any) (*Game, error) {
	return defaultDecoder.Decode(tree)
}

// Decode validates tree and maps it to a Game.
//
// Precondition: tree is the untyped form of one record, as produced by wire.Unmarshal
// or by Encode.
// Postcondition: returns a fully valid Game, or a nil Game and an error locating
// the first fault (strict count violations are reported together).
func (d *Decoder) Decode(tree any) (*Game, error) {
	root, err := asObject(tree, "$")
	if err != nil {
		return nil, err
	}

	var g Game

	rawPlayers, err := required(root, "", keyPlayers)
	if err != nil {
		return nil, err
	}
	if g.Players, err = decodeList(rawPlayers, keyPlayers, asString); err != nil {
		return nil, err
	}

	rawDeck, err := required(root, "", keyDeck)
	if err != nil {
		return nil, err
	}
	if g.Deck, err = decodeList(rawDeck, keyDeck, decodeCard); err != nil {
		return nil, err
	}

	rawActions, err := required(root, "", keyActions)
	if err != nil {
		return nil, err
	}
	if g.Actions, err = decodeList(rawActions, keyActions, decodeAction); err != nil {
		return nil, err
	}

	g.Options = DefaultOptions()
	if raw, ok := root[keyOptions]; ok {
		if g.Options, err = d.decodeOptions(raw, keyOptions); err != nil {
			return nil, err
		}
	}

	if raw, ok := optional(root, keyNotes); ok {
		notes, err := decodeList(raw, keyNotes, func(v any, path string) ([]CardNote, error) {
			return decodeList(v, path, asString)
		})
		if err != nil {
			return nil, err
		}
		g.Notes = Some(notes)
	}

	if raw, ok := optional(root, keyCharacters); ok {
		chars, err := decodeList(raw, keyCharacters, decodeCharacter)
		if err != nil {
			return nil, err
		}
		g.Characters = Some(chars)
	}

	if raw, ok := optional(root, keyID); ok {
		id, err := asInt64(raw, keyID)
		if err != nil {
			return nil, err
		}
		g.ID = Some(id)
	}

	if raw, ok := optional(root, keySeed); ok {
		seed, err := asString(raw, keySeed)
		if err != nil {
			return nil, err
		}
		g.Seed = Some(seed)
	}

	if d.strictCounts {
		if err := checkCounts(&g); err != nil {
			return nil, err
		}
	}

	return &g, nil
}

func (d *Decoder) decodeOptions(v any, path string) (Options, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return Options{}, err
	}
	o := DefaultOptions()
	for _, f := range optionFields {
		raw, ok := obj[f.wire]
		if !ok {
			continue
		}
		if err := f.decode(d, &o, raw, fieldPath(path, f.wire)); err != nil {
			return Options{}, err
		}
	}
	return o, nil
}

func (d *Decoder) decodeVariant(v any, path string) (Variant, error) {
	s, err := asString(v, path)
	if err != nil {
		return "", err
	}
	variant := Variant(s)
	if d.catalog.Contains(variant) {
		return variant, nil
	}
	switch d.variantPolicy {
	case VariantReject:
		return "", &InvalidEnumError{Path: path, Enum: "HanabiGameVariant", Value: s}
	case VariantWarn:
		d.logger.Warn("unknown variant",
			zap.String("path", path),
			zap.String("variant", s),
			zap.Int("catalog_size", d.catalog.Len()),
		)
	}
	return variant, nil
}

func decodeCard(v any, path string) (Card, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return Card{}, err
	}
	suit, err := requiredIndex(obj, path, keySuitIndex)
	if err != nil {
		return Card{}, err
	}
	rank, err := requiredInt(obj, path, keyRank)
	if err != nil {
		return Card{}, err
	}
	return Card{SuitIndex: suit, Rank: rank}, nil
}

func decodeCharacter(v any, path string) (Character, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return Character{}, err
	}
	rawName, err := required(obj, path, keyName)
	if err != nil {
		return Character{}, err
	}
	name, err := asString(rawName, fieldPath(path, keyName))
	if err != nil {
		return Character{}, err
	}
	meta, err := requiredInt(obj, path, keyMetadata)
	if err != nil {
		return Character{}, err
	}
	return Character{Name: name, Metadata: meta}, nil
}

// actionShape describes one union variant: the keys it declares beside "type"
// and how to build it from an object whose type tag already matched.
type actionShape struct {
	keys  []string
	parse func(obj map[string]any, path string) (Action, error)
}

var actionShapes = map[ActionType]actionShape{
	ActionPlay: {
		keys: []string{keyTarget},
		parse: func(obj map[string]any, path string) (Action, error) {
			target, err := requiredIndex(obj, path, keyTarget)
			if err != nil {
				return nil, err
			}
			return PlayAction{Target: target}, nil
		},
	},
	ActionDiscard: {
		keys: []string{keyTarget},
		parse: func(obj map[string]any, path string) (Action, error) {
			target, err := requiredIndex(obj, path, keyTarget)
			if err != nil {
				return nil, err
			}
			return DiscardAction{Target: target}, nil
		},
	},
	ActionColorClue: {
		keys: []string{keyTarget, keyValue},
		parse: func(obj map[string]any, path string) (Action, error) {
			target, err := requiredIndex(obj, path, keyTarget)
			if err != nil {
				return nil, err
			}
			value, err := requiredIndex(obj, path, keyValue)
			if err != nil {
				return nil, err
			}
			return ColorClueAction{Target: target, Value: value}, nil
		},
	},
	ActionRankClue: {
		keys: []string{keyTarget, keyValue},
		parse: func(obj map[string]any, path string) (Action, error) {
			target, err := requiredIndex(obj, path, keyTarget)
			if err != nil {
				return nil, err
			}
			value, err := requiredInt(obj, path, keyValue)
			if err != nil {
				return nil, err
			}
			return RankClueAction{Target: target, Value: value}, nil
		},
	},
	ActionEndGame: {
		keys: []string{keyTarget, keyValue},
		parse: func(obj map[string]any, path string) (Action, error) {
			target, err := requiredIndex(obj, path, keyTarget)
			if err != nil {
				return nil, err
			}
			value, err := requiredInt(obj, path, keyValue)
			if err != nil {
				return nil, err
			}
			reason := EndGameReason(value)
			if !reason.Valid() {
				return nil, &InvalidEnumError{Path: fieldPath(path, keyValue), Enum: "EndGameReason", Value: value}
			}
			return EndGameAction{Target: target, Value: reason}, nil
		},
	},
}

// decodeAction reads the type tag first, selects the matching shape and
// validates the remaining keys against that shape only.
func decodeAction(v any, path string) (Action, error) {
	obj, err := asObject(v, path)
	if err != nil {
		return nil, err
	}
	tag, err := requiredInt(obj, path, keyType)
	if err != nil {
		return nil, err
	}
	shape, ok := actionShapes[ActionType(tag)]
	if !ok {
		return nil, &InvalidEnumError{Path: fieldPath(path, keyType), Enum: "ActionType", Value: tag}
	}

	allowed := map[string]bool{keyType: true}
	for _, k := range shape.keys {
		allowed[k] = true
	}
	var extra []string
	for k := range obj {
		if !allowed[k] {
			extra = append(extra, k)
		}
	}
	if len(extra) > 0 {
		sort.Strings(extra)
		return nil, &UnexpectedFieldError{Path: fieldPath(path, extra[0])}
	}

	return shape.parse(obj, path)
}

func checkCounts(g *Game) error {
	var errs error
	n := len(g.Players)
	if n < MinPlayers || n > MaxPlayers {
		errs = multierr.Append(errs, &ConstraintError{
			Path:   keyPlayers,
			Reason: fmt.Sprintf("expected %d to %d players, got %d", MinPlayers, MaxPlayers, n),
		})
	}
	if notes, ok := g.Notes.Get(); ok && len(notes) != n {
		errs = multierr.Append(errs, &ConstraintError{
			Path:   keyNotes,
			Reason: fmt.Sprintf("expected one entry per player (%d), got %d", n, len(notes)),
		})
	}
	if chars, ok := g.Characters.Get(); ok && len(chars) != n {
		errs = multierr.Append(errs, &ConstraintError{
			Path:   keyCharacters,
			Reason: fmt.Sprintf("expected one character per player (%d), got %d", n, len(chars)),
		})
	}
	return errs
}

// Tree accessors. Every error carries the path of the offending value.

func fieldPath(parent, key string) string {
	if parent == "" || parent == "$" {
		return key
	}
	return parent + "." + key
}

func indexPath(parent string, i int) string {
	return fmt.Sprintf("%s[%d]", parent, i)
}

func asObject(v any, path string) (map[string]any, error) {
	switch obj := v.(type) {
	case map[string]any:
		return obj, nil
	case wire.Object:
		return obj.Map(), nil
	default:
		return nil, &TypeMismatchError{Path: path, Expected: "object", Got: v}
	}
}

func required(obj map[string]any, parent, key string) (any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, &MissingFieldError{Path: fieldPath(parent, key)}
	}
	return v, nil
}

// optional treats an explicit null the same as an absent key.
func optional(obj map[string]any, key string) (any, bool) {
	v, ok := obj[key]
	if !ok || v == nil {
		return nil, false
	}
	return v, true
}

func requiredInt(obj map[string]any, parent, key string) (int, error) {
	v, err := required(obj, parent, key)
	if err != nil {
		return 0, err
	}
	return asInt(v, fieldPath(parent, key))
}

func requiredIndex(obj map[string]any, parent, key string) (int, error) {
	n, err := requiredInt(obj, parent, key)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, &TypeMismatchError{Path: fieldPath(parent, key), Expected: "non-negative integer", Got: n}
	}
	return n, nil
}

func decodeList[T any](v any, path string, elem func(any, string) (T, error)) ([]T, error) {
	items, ok := v.([]any)
	if !ok {
		return nil, &TypeMismatchError{Path: path, Expected: "array", Got: v}
	}
	out := make([]T, 0, len(items))
	for i, item := range items {
		e, err := elem(item, indexPath(path, i))
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

// asString rejects invalid UTF-8, which no encoder can write back unchanged.
func asString(v any, path string) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", &TypeMismatchError{Path: path, Expected: "string", Got: v}
	}
	if !utf8.ValidString(s) {
		return "", &TypeMismatchError{Path: path, Expected: "UTF-8 string", Got: s}
	}
	return s, nil
}

func asBool(v any, path string) (bool, error) {
	b, ok := v.(bool)
	if !ok {
		return false, &TypeMismatchError{Path: path, Expected: "boolean", Got: v}
	}
	return b, nil
}

// number is satisfied by json.Number from both encoding/json and goccy/go-json.
type number interface {
	Int64() (int64, error)
	Float64() (float64, error)
	String() string
}

func asInt64(v any, path string) (int64, error) {
	mismatch := &TypeMismatchError{Path: path, Expected: "integer", Got: v}
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, mismatch
		}
		return int64(n), nil
	case float64:
		return integralFloat(n, mismatch)
	case number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		f, err := n.Float64()
		if err != nil {
			return 0, mismatch
		}
		return integralFloat(f, mismatch)
	default:
		return 0, mismatch
	}
}

func integralFloat(f float64, mismatch error) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f >= math.MaxInt64 || f < math.MinInt64 {
		return 0, mismatch
	}
	return int64(f), nil
}

func asInt(v any, path string) (int, error) {
	n, err := asInt64(v, path)
	if err != nil {
		return 0, err
	}
	if n > math.MaxInt || n < math.MinInt {
		return 0, &TypeMismatchError{Path: path, Expected: "integer", Got: v}
	}
	return int(n), nil
}
