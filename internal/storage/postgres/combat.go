package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/game/arena"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/enemy"
)

// ErrCombatNotFound is returned when a combat lookup yields no results.
var ErrCombatNotFound = errors.New("combat not found")

// ErrCombatExists is returned when archiving a combat ID that is already stored.
var ErrCombatExists = errors.New("combat already archived")

// CombatRecord is one archived combat.
type CombatRecord struct {
	ID          string
	PlayerClass combat.Archetype
	PlayerLevel int
	EnemyType   string
	Stage       int
	Profile     combat.Profile
	Result      arena.Result
	Turns       int
	Gold        int
	XP          int
	Snapshot    arena.Snapshot
	CreatedAt   time.Time
}

// RecordFrom builds the archive record of a finished session.
//
// Precondition: s must have ended and desc must be the descriptor its enemy was built from.
func RecordFrom(s *arena.Session, desc enemy.Descriptor) (CombatRecord, error) {
	if s.State() != arena.StateEnded {
		return CombatRecord{}, fmt.Errorf("archiving combat %s: combat has not ended", s.ID())
	}
	snap, err := s.Snapshot()
	if err != nil {
		return CombatRecord{}, fmt.Errorf("archiving combat %s: %w", s.ID(), err)
	}
	rec := CombatRecord{
		ID:          s.ID(),
		PlayerClass: s.Player().Archetype,
		PlayerLevel: s.Player().Level,
		EnemyType:   desc.Type,
		Stage:       desc.Stage,
		Profile:     desc.Profile,
		Result:      s.Result(),
		Turns:       s.Turn(),
		Snapshot:    snap,
	}
	if r, ok := s.Rewards(); ok {
		rec.Gold = r.Gold
		rec.XP = r.TotalXP()
	}
	return rec, nil
}

// CombatRepository archives finished combats.
type CombatRepository struct {
	db *pgxpool.Pool
}

// NewCombatRepository creates a CombatRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewCombatRepository(db *pgxpool.Pool) *CombatRepository {
	return &CombatRepository{db: db}
}

// Save inserts rec and returns its creation time.
//
// Precondition: rec.ID must be a UUID.
// Postcondition: Returns ErrCombatExists if rec.ID is already archived.
func (r *CombatRepository) Save(ctx context.Context, rec CombatRecord) (time.Time, error) {
	snap, err := arena.MarshalSnapshot(rec.Snapshot)
	if err != nil {
		return time.Time{}, fmt.Errorf("encoding snapshot: %w", err)
	}
	var created time.Time
	err = r.db.QueryRow(ctx, `
		INSERT INTO combat_records
			(id, player_class, player_level, enemy_type, stage, profile,
			 result, turns, gold, xp, snapshot)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING created_at`,
		rec.ID, string(rec.PlayerClass), rec.PlayerLevel, rec.EnemyType, rec.Stage, string(rec.Profile),
		string(rec.Result), rec.Turns, rec.Gold, rec.XP, snap,
	).Scan(&created)
	if err != nil {
		if isDuplicateKeyError(err) {
			return time.Time{}, ErrCombatExists
		}
		return time.Time{}, fmt.Errorf("inserting combat record: %w", err)
	}
	return created, nil
}

// Get retrieves an archived combat by ID.
//
// Postcondition: Returns the record or ErrCombatNotFound.
func (r *CombatRepository) Get(ctx context.Context, id string) (CombatRecord, error) {
	var (
		rec                    CombatRecord
		class, profile, result string
		snap                   []byte
	)
	err := r.db.QueryRow(ctx, `
		SELECT id, player_class, player_level, enemy_type, stage, profile,
		       result, turns, gold, xp, snapshot, created_at
		FROM combat_records WHERE id = $1`,
		id,
	).Scan(
		&rec.ID, &class, &rec.PlayerLevel, &rec.EnemyType, &rec.Stage, &profile,
		&result, &rec.Turns, &rec.Gold, &rec.XP, &snap, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return CombatRecord{}, ErrCombatNotFound
		}
		return CombatRecord{}, fmt.Errorf("querying combat record: %w", err)
	}
	rec.PlayerClass = combat.Archetype(class)
	rec.Profile = combat.Profile(profile)
	rec.Result = arena.Result(result)
	if rec.Snapshot, err = arena.UnmarshalSnapshot(snap); err != nil {
		return CombatRecord{}, err
	}
	return rec, nil
}

// LoadSnapshot returns the final snapshot of an archived combat.
//
// Postcondition: Returns the snapshot or ErrCombatNotFound.
func (r *CombatRepository) LoadSnapshot(ctx context.Context, id string) (arena.Snapshot, error) {
	rec, err := r.Get(ctx, id)
	if err != nil {
		return arena.Snapshot{}, err
	}
	return rec.Snapshot, nil
}

// Tally counts archived results for one matchup.
//
// Postcondition: Returns a map (may be empty) keyed by result.
func (r *CombatRepository) Tally(ctx context.Context, class combat.Archetype, enemyType string) (map[arena.Result]int, error) {
	rows, err := r.db.Query(ctx, `
		SELECT result, COUNT(*) FROM combat_records
		WHERE player_class = $1 AND enemy_type = $2
		GROUP BY result`,
		string(class), enemyType,
	)
	if err != nil {
		return nil, fmt.Errorf("tallying combat records: %w", err)
	}
	defer rows.Close()

	out := make(map[arena.Result]int)
	for rows.Next() {
		var (
			result string
			n      int
		)
		if err := rows.Scan(&result, &n); err != nil {
			return nil, fmt.Errorf("scanning tally row: %w", err)
		}
		out[arena.Result(result)] = n
	}
	return out, rows.Err()
}

// isDuplicateKeyError checks if a pgx error is a unique constraint violation.
func isDuplicateKeyError(err error) bool {
	var pgErr interface{ SQLState() string }
	if errors.As(err, &pgErr) {
		return pgErr.SQLState() == "23505"
	}
	return false
}
