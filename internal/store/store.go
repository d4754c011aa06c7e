// Package store archives finished games to SQLite so history survives
// server restarts.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	_ "modernc.org/sqlite" // pure Go SQLite driver

	"github.com/yourusername/qchess/pkg/engine"
)

// ErrNotFound is returned when a game id is not in the archive.
var ErrNotFound = errors.New("game not found in archive")

// Store is the game archive.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// ArchivedGame is the stored summary of one finished game.
type ArchivedGame struct {
	ID                 string    `json:"game_id"`
	Mode               string    `json:"mode"`
	Status             string    `json:"status"`
	Winner             string    `json:"winner,omitempty"`
	MoveCount          int       `json:"move_count"`
	MeasurementCount   int       `json:"measurement_count"`
	QuantumProbability float64   `json:"quantum_probability"`
	CreatedAt          time.Time `json:"created_at"`
	ArchivedAt         time.Time `json:"archived_at"`
}

// ArchivedMove is one stored move log entry.
type ArchivedMove struct {
	MoveNumber   int    `json:"move_number"`
	From         string `json:"from"`
	To           string `json:"to"`
	Piece        string `json:"piece"`
	Color        string `json:"color"`
	Captured     string `json:"captured,omitempty"`
	QuantumEvent string `json:"quantum_event,omitempty"`
}

// Open opens (creating if needed) the archive database at path and runs
// migrations.
func Open(path string, log zerolog.Logger) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("ping database: %w", err)
	}
	db.SetMaxOpenConns(1)

	s := &Store{db: db, log: log.With().Str("component", "store").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS games (
		id TEXT PRIMARY KEY,
		mode TEXT NOT NULL,
		status TEXT NOT NULL,
		winner TEXT,
		move_count INTEGER NOT NULL,
		measurement_count INTEGER NOT NULL,
		quantum_probability REAL NOT NULL,
		created_at TEXT NOT NULL,
		archived_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS moves (
		game_id TEXT NOT NULL REFERENCES games(id) ON DELETE CASCADE,
		move_number INTEGER NOT NULL,
		from_square TEXT NOT NULL,
		to_square TEXT NOT NULL,
		piece TEXT NOT NULL,
		color TEXT NOT NULL,
		captured TEXT,
		quantum_event TEXT,
		PRIMARY KEY (game_id, move_number)
	);
	CREATE INDEX IF NOT EXISTS idx_games_archived_at ON games(archived_at);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}

// ArchiveGame persists a game snapshot and its move log inside one
// transaction. Re-archiving the same id replaces the previous record.
func (s *Store) ArchiveGame(snap engine.GameSnapshot) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin archive: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT OR REPLACE INTO games
		(id, mode, status, winner, move_count, measurement_count,
		 quantum_probability, created_at, archived_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.GameID,
		string(snap.Mode),
		snap.Status,
		nullString(snap.Winner),
		snap.MoveCount,
		snap.MeasurementCount,
		snap.QuantumProbability,
		snap.CreatedAt.Format(time.RFC3339),
		time.Now().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("archive game %s: %w", snap.GameID, err)
	}

	if _, err := tx.Exec(`DELETE FROM moves WHERE game_id = ?`, snap.GameID); err != nil {
		return fmt.Errorf("clear moves for %s: %w", snap.GameID, err)
	}
	for _, m := range snap.MoveHistory {
		var captured sql.NullString
		if m.Captured != nil {
			captured = sql.NullString{String: *m.Captured, Valid: true}
		}
		_, err := tx.Exec(`
			INSERT INTO moves
			(game_id, move_number, from_square, to_square, piece, color,
			 captured, quantum_event)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			snap.GameID, m.MoveNumber, m.From, m.To, m.Piece, m.Color,
			captured, nullString(m.QuantumEvent),
		)
		if err != nil {
			return fmt.Errorf("archive move %d of %s: %w", m.MoveNumber, snap.GameID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit archive: %w", err)
	}

	s.log.Info().Str("game_id", snap.GameID).Int("moves", len(snap.MoveHistory)).
		Msg("game archived")
	return nil
}

// GetGame returns the archived summary for id.
func (s *Store) GetGame(id string) (ArchivedGame, error) {
	row := s.db.QueryRow(`
		SELECT id, mode, status, winner, move_count, measurement_count,
		       quantum_probability, created_at, archived_at
		FROM games WHERE id = ?`, id)
	g, err := scanGame(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ArchivedGame{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return ArchivedGame{}, fmt.Errorf("get game %s: %w", id, err)
	}
	return g, nil
}

// ListGames returns archived games, most recently archived first.
func (s *Store) ListGames(limit int) ([]ArchivedGame, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`
		SELECT id, mode, status, winner, move_count, measurement_count,
		       quantum_probability, created_at, archived_at
		FROM games ORDER BY archived_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("list games: %w", err)
	}
	defer rows.Close()

	var games []ArchivedGame
	for rows.Next() {
		g, err := scanGame(rows)
		if err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, g)
	}
	return games, rows.Err()
}

// GetMoves returns the stored move log for a game in move order.
func (s *Store) GetMoves(gameID string) ([]ArchivedMove, error) {
	rows, err := s.db.Query(`
		SELECT move_number, from_square, to_square, piece, color,
		       captured, quantum_event
		FROM moves WHERE game_id = ? ORDER BY move_number`, gameID)
	if err != nil {
		return nil, fmt.Errorf("get moves for %s: %w", gameID, err)
	}
	defer rows.Close()

	var moves []ArchivedMove
	for rows.Next() {
		var m ArchivedMove
		var captured, event sql.NullString
		if err := rows.Scan(&m.MoveNumber, &m.From, &m.To, &m.Piece, &m.Color,
			&captured, &event); err != nil {
			return nil, fmt.Errorf("scan move: %w", err)
		}
		m.Captured = captured.String
		m.QuantumEvent = event.String
		moves = append(moves, m)
	}
	return moves, rows.Err()
}

// DeleteGame removes a game and its moves from the archive.
func (s *Store) DeleteGame(id string) error {
	res, err := s.db.Exec(`DELETE FROM games WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete game %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Count returns the number of archived games.
func (s *Store) Count() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM games`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count games: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGame(row scanner) (ArchivedGame, error) {
	var g ArchivedGame
	var winner sql.NullString
	var created, archived string
	err := row.Scan(&g.ID, &g.Mode, &g.Status, &winner, &g.MoveCount,
		&g.MeasurementCount, &g.QuantumProbability, &created, &archived)
	if err != nil {
		return ArchivedGame{}, err
	}
	g.Winner = winner.String
	g.CreatedAt, _ = time.Parse(time.RFC3339, created)
	g.ArchivedAt, _ = time.Parse(time.RFC3339, archived)
	return g, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
