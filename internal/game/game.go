// Package game exposes values derived from a validated game record and the
// file-level entry points for reading and writing records.
package game

import (
	"errors"
	"fmt"
	"os"

	"github.com/cory-johannsen/hanabi-json/internal/schema"
	"github.com/cory-johannsen/hanabi-json/internal/wire"
)

// ErrUnsupportedPlayerCount is matched by every UnsupportedPlayerCountError.
var ErrUnsupportedPlayerCount = errors.New("unsupported player count")

// UnsupportedPlayerCountError reports a player count with no starting hand size.
type UnsupportedPlayerCountError struct {
	Count int
}

func (e *UnsupportedPlayerCountError) Error() string {
	return fmt.Sprintf("unsupported player count %d: hand sizes are defined for %d to %d players",
		e.Count, schema.MinPlayers, schema.MaxPlayers)
}

func (e *UnsupportedPlayerCountError) Unwrap() error { return ErrUnsupportedPlayerCount }

// baseHandSize is the starting hand size by number of players.
var baseHandSize = map[int]int{2: 5, 3: 5, 4: 4, 5: 4, 6: 3}

// Game is a validated record with derived, read-only properties.
type Game struct {
	schema.Game
}

// New wraps an already validated record.
//
// Precondition: record is non-nil and was produced by a schema.Decoder or passes Validate.
func New(record *schema.Game) *Game {
	return &Game{Game: *record}
}

// NumberOfPlayers returns the number of players at the table.
func (g *Game) NumberOfPlayers() int {
	return len(g.Players)
}

// CardsPerPlayer returns the starting hand size: the base size for the player
// count, plus one with OneExtraCard and minus one with OneLessCard. Both options
// may be set at once and cancel out.
//
// Postcondition: returns the hand size, or an UnsupportedPlayerCountError when the
// table has fewer than 2 or more than 6 players.
func (g *Game) CardsPerPlayer() (int, error) {
	n := g.NumberOfPlayers()
	base, ok := baseHandSize[n]
	if !ok {
		return 0, &UnsupportedPlayerCountError{Count: n}
	}
	if g.Options.OneLessCard {
		base--
	}
	if g.Options.OneExtraCard {
		base++
	}
	return base, nil
}

// Parse decodes a record from text. A nil decoder uses schema defaults.
//
// Postcondition: returns a validated Game or a non-nil error.
func Parse(data []byte, format wire.Format, decoder *schema.Decoder) (*Game, error) {
	tree, err := wire.Unmarshal(data, format)
	if err != nil {
		return nil, err
	}
	if decoder == nil {
		decoder = schema.NewDecoder()
	}
	record, err := decoder.Decode(tree)
	if err != nil {
		return nil, fmt.Errorf("validating game record: %w", err)
	}
	return New(record), nil
}

// Load reads and validates a record file; the format follows the file extension.
//
// Precondition: path names a .json, .yaml or .yml file.
// Postcondition: returns a validated Game or a non-nil error.
func Load(path string, decoder *schema.Decoder) (*Game, error) {
	format, err := wire.FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading game record %s: %w", path, err)
	}
	g, err := Parse(data, format, decoder)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return g, nil
}

// Marshal renders the record in the given format.
//
// Postcondition: returns the encoded record, or an error when a Game built in
// Go fails schema validation.
func (g *Game) Marshal(format wire.Format, indent bool) ([]byte, error) {
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("encoding game record: %w", err)
	}
	return wire.Marshal(schema.Encode(&g.Game), format, indent)
}

// Save writes the record to path; the format follows the file extension.
func (g *Game) Save(path string) error {
	format, err := wire.FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := g.Marshal(format, true)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing game record %s: %w", path, err)
	}
	return nil
}
