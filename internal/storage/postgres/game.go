package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/crypto/blake2b"

	"github.com/cory-johannsen/hanabi-json/internal/game"
	"github.com/cory-johannsen/hanabi-json/internal/schema"
	"github.com/cory-johannsen/hanabi-json/internal/wire"
)

// ErrGameNotFound is returned when a game lookup yields no results.
var ErrGameNotFound = errors.New("game not found")

// ErrDuplicateGame is returned when a record with the same content or the same
// hanab.live id is already archived.
var ErrDuplicateGame = errors.New("game already archived")

// StoredGame is an archived record with its archive metadata.
type StoredGame struct {
	// ID is the archive primary key, unrelated to the record's hanab.live id.
	ID          int64
	Game        *game.Game
	ContentHash []byte
	ImportRun   uuid.NullUUID
	CreatedAt   time.Time
}

// GameRepository archives game records as JSONB alongside indexed summary columns.
type GameRepository struct {
	db      *pgxpool.Pool
	decoder *schema.Decoder
}

// NewGameRepository creates a GameRepository backed by the given pool. Records
// read back are validated with decoder; nil uses schema defaults.
//
// Precondition: db must be a valid, open connection pool.
func NewGameRepository(db *pgxpool.Pool, decoder *schema.Decoder) *GameRepository {
	if decoder == nil {
		decoder = schema.NewDecoder()
	}
	return &GameRepository{db: db, decoder: decoder}
}

// ContentHash returns the BLAKE2b-256 digest of the record's compact JSON
// encoding, followed by that encoding. Encoding is deterministic, so equal
// records hash equally.
func ContentHash(g *game.Game) ([]byte, []byte, error) {
	data, err := g.Marshal(wire.FormatJSON, false)
	if err != nil {
		return nil, nil, fmt.Errorf("encoding game record: %w", err)
	}
	sum := blake2b.Sum256(data)
	return sum[:], data, nil
}

// Save archives g. runID tags the import run; uuid.Nil stores no run.
//
// Precondition: g is a validated game.
// Postcondition: Returns the stored game with ID and CreatedAt set, or ErrDuplicateGame.
func (r *GameRepository) Save(ctx context.Context, g *game.Game, runID uuid.UUID) (*StoredGame, error) {
	hash, data, err := ContentHash(g)
	if err != nil {
		return nil, err
	}

	var externalID *int64
	if id, ok := g.ID.Get(); ok {
		externalID = &id
	}
	var seed *string
	if s, ok := g.Seed.Get(); ok {
		seed = &s
	}
	run := uuid.NullUUID{UUID: runID, Valid: runID != uuid.Nil}

	out := &StoredGame{Game: g, ContentHash: hash, ImportRun: run}
	err = r.db.QueryRow(ctx, `
		INSERT INTO games
			(external_id, seed, variant, num_players, num_actions, content_hash, import_run, record)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING id, created_at`,
		externalID, seed, string(g.Options.Variant), g.NumberOfPlayers(), len(g.Actions),
		hash, run, string(data),
	).Scan(&out.ID, &out.CreatedAt)
	if err != nil {
		if isDuplicateKeyError(err) {
			return nil, ErrDuplicateGame
		}
		return nil, fmt.Errorf("inserting game: %w", err)
	}
	return out, nil
}

// GetByID retrieves a game by its archive primary key.
//
// Postcondition: Returns the StoredGame or ErrGameNotFound.
func (r *GameRepository) GetByID(ctx context.Context, id int64) (*StoredGame, error) {
	return r.getOne(ctx, `
		SELECT id, content_hash, import_run, record, created_at
		FROM games WHERE id = $1`, id)
}

// GetByExternalID retrieves a game by its hanab.live database id.
//
// Postcondition: Returns the StoredGame or ErrGameNotFound.
func (r *GameRepository) GetByExternalID(ctx context.Context, externalID int64) (*StoredGame, error) {
	return r.getOne(ctx, `
		SELECT id, content_hash, import_run, record, created_at
		FROM games WHERE external_id = $1`, externalID)
}

// ListBySeed returns every game dealt from the given seed, ordered by archive id.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *GameRepository) ListBySeed(ctx context.Context, seed string) ([]*StoredGame, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, content_hash, import_run, record, created_at
		FROM games WHERE seed = $1 ORDER BY id ASC`, seed)
	if err != nil {
		return nil, fmt.Errorf("listing games: %w", err)
	}
	defer rows.Close()

	games := make([]*StoredGame, 0)
	for rows.Next() {
		sg, err := r.scan(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, sg)
	}
	return games, rows.Err()
}

// CountByImportRun returns how many games the given import run archived.
func (r *GameRepository) CountByImportRun(ctx context.Context, runID uuid.UUID) (int, error) {
	var n int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM games WHERE import_run = $1`, runID).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting games: %w", err)
	}
	return n, nil
}

func (r *GameRepository) getOne(ctx context.Context, query string, arg any) (*StoredGame, error) {
	sg, err := r.scan(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrGameNotFound
	}
	return sg, err
}

func (r *GameRepository) scan(row pgx.Row) (*StoredGame, error) {
	var (
		sg     StoredGame
		record []byte
	)
	if err := row.Scan(&sg.ID, &sg.ContentHash, &sg.ImportRun, &record, &sg.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning game row: %w", err)
	}
	g, err := game.Parse(record, wire.FormatJSON, r.decoder)
	if err != nil {
		return nil, fmt.Errorf("decoding archived game %d: %w", sg.ID, err)
	}
	sg.Game = g
	return &sg, nil
}
