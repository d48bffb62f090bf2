package main

import (
	"database/sql"
	"fmt"
	"time"

	"k8s.io/klog/v2"
	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PlayerRow represents a guest record in the database
type PlayerRow struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Preferences are the per-guest settings restored on every visit
type Preferences struct {
	Difficulty string `json:"difficulty"`
	Mute       bool   `json:"mute"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// Enable WAL mode for better concurrency
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, err
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// migrate creates tables if they don't exist
func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS players (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS preferences (
		player_id INTEGER PRIMARY KEY REFERENCES players(id),
		difficulty TEXT NOT NULL DEFAULT 'normal',
		mute INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);
	`
	_, err := db.conn.Exec(schema)
	if err != nil {
		klog.Errorf("DB migration error: %v", err)
	}
	return err
}

// CreateGuest creates a guest player with default preferences
func (db *DB) CreateGuest(name string) (int64, error) {
	res, err := db.conn.Exec("INSERT INTO players (name) VALUES (?)", name)
	if err != nil {
		return 0, fmt.Errorf("insert guest: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := db.conn.Exec("INSERT INTO preferences (player_id) VALUES (?)", id); err != nil {
		return 0, fmt.Errorf("insert preferences: %w", err)
	}
	return id, nil
}

// GetPlayerByID returns a player by ID, or nil if there is none
func (db *DB) GetPlayerByID(id int64) (*PlayerRow, error) {
	row := db.conn.QueryRow("SELECT id, name, created_at FROM players WHERE id = ?", id)
	p := &PlayerRow{}
	err := row.Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// GetPreferences returns the stored preferences of a player
func (db *DB) GetPreferences(playerID int64) (Preferences, error) {
	var p Preferences
	err := db.conn.QueryRow(
		"SELECT difficulty, mute FROM preferences WHERE player_id = ?",
		playerID,
	).Scan(&p.Difficulty, &p.Mute)
	if err == sql.ErrNoRows {
		return Preferences{Difficulty: "normal"}, nil
	}
	return p, err
}

// SavePreferences upserts the preferences of a player
func (db *DB) SavePreferences(playerID int64, p Preferences) error {
	_, err := db.conn.Exec(`
		INSERT INTO preferences (player_id, difficulty, mute) VALUES (?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET difficulty = excluded.difficulty, mute = excluded.mute`,
		playerID, p.Difficulty, p.Mute,
	)
	return err
}

// GetSetting returns a server setting, or "" if unset
func (db *DB) GetSetting(key string) string {
	var v string
	err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v)
	if err != nil {
		if err != sql.ErrNoRows {
			klog.Warningf("read setting %s: %v", key, err)
		}
		return ""
	}
	return v
}

// SetSetting stores a server setting
func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
