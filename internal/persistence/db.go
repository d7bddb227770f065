// Package persistence stores grid snapshots and the event journal in SQLite.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/gridlife/internal/agents"
	"github.com/talgya/gridlife/internal/grid"
)

// ErrNoSnapshot is returned by LoadGrid when nothing has been saved yet.
var ErrNoSnapshot = errors.New("persistence: no snapshot saved")

// Metadata keys written with every snapshot.
const (
	MetaSnapshotID = "snapshot_id"
	MetaEpoch      = "epoch"
	MetaLength     = "length"
	MetaHeight     = "height"
	MetaSavedAt    = "saved_at"
)

// DB wraps a SQLite connection for snapshot persistence.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS entities (
		id INTEGER PRIMARY KEY,
		kind INTEGER NOT NULL,
		x INTEGER NOT NULL,
		y INTEGER NOT NULL,
		layer INTEGER NOT NULL,
		local_time INTEGER NOT NULL,
		age INTEGER NOT NULL,
		inventory_json TEXT NOT NULL,
		detail_json TEXT
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	CREATE INDEX IF NOT EXISTS idx_entities_cell ON entities(y, x, layer);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// entityRow is one occupant of one cell.
type entityRow struct {
	ID            uint64         `db:"id"`
	Kind          int            `db:"kind"`
	X             int            `db:"x"`
	Y             int            `db:"y"`
	Layer         int            `db:"layer"`
	LocalTime     uint64         `db:"local_time"`
	Age           uint64         `db:"age"`
	InventoryJSON string         `db:"inventory_json"`
	DetailJSON    sql.NullString `db:"detail_json"`
}

// SaveGrid replaces the stored snapshot with g and returns the new
// snapshot's ID. g must not tick while it is saved.
func (db *DB) SaveGrid(g *grid.Grid) (string, error) {
	id := uuid.NewString()

	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM entities"); err != nil {
		return "", err
	}

	stmt, err := tx.Preparex(`INSERT INTO entities
		(id, kind, x, y, layer, local_time, age, inventory_json, detail_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer stmt.Close()

	saved := 0
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Length(); x++ {
			for layer, e := range g.Cell(x, y) {
				row, err := rowOf(e, x, y, layer)
				if err != nil {
					return "", err
				}
				if _, err := stmt.Exec(row.ID, row.Kind, row.X, row.Y, row.Layer,
					row.LocalTime, row.Age, row.InventoryJSON, row.DetailJSON); err != nil {
					return "", fmt.Errorf("insert entity %d: %w", row.ID, err)
				}
				saved++
			}
		}
	}

	meta := map[string]string{
		MetaSnapshotID: id,
		MetaEpoch:      strconv.FormatUint(g.Epoch(), 10),
		MetaLength:     strconv.Itoa(g.Length()),
		MetaHeight:     strconv.Itoa(g.Height()),
		MetaSavedAt:    time.Now().UTC().Format(time.RFC3339),
	}
	for k, v := range meta {
		if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)", k, v); err != nil {
			return "", fmt.Errorf("save meta %s: %w", k, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	slog.Info("grid saved", "snapshot", id, "tick", g.Epoch(), "entities", saved)
	return id, nil
}

func rowOf(e grid.Entity, x, y, layer int) (entityRow, error) {
	b := e.Core()
	inv, err := json.Marshal(b.Inventory())
	if err != nil {
		return entityRow{}, err
	}
	row := entityRow{
		ID:            uint64(b.ID()),
		Kind:          int(b.Kind()),
		X:             x,
		Y:             y,
		Layer:         layer,
		LocalTime:     b.LocalTime(),
		Age:           b.Age(),
		InventoryJSON: string(inv),
	}

	var detail any
	switch v := e.(type) {
	case *agents.Creature:
		detail = v.Record()
	case *agents.BreedingGround:
		detail = v.Tuning()
	}
	if detail != nil {
		d, err := json.Marshal(detail)
		if err != nil {
			return entityRow{}, fmt.Errorf("encode entity %d: %w", row.ID, err)
		}
		row.DetailJSON = sql.NullString{String: string(d), Valid: true}
	}
	return row, nil
}

// HasSnapshot reports whether a snapshot has been saved.
func (db *DB) HasSnapshot() bool {
	_, err := db.GetMeta(MetaSnapshotID)
	return err == nil
}

// LoadGrid rebuilds the saved grid. Entity handles, local times and cell
// stacking are restored exactly; the gatekeeper and the planning callbacks
// of creatures are not, so callers must rewire them. Creatures get tuning.
func (db *DB) LoadGrid(tuning agents.Tuning, opts ...grid.Option) (*grid.Grid, error) {
	if !db.HasSnapshot() {
		return nil, ErrNoSnapshot
	}
	length, err := db.metaInt(MetaLength)
	if err != nil {
		return nil, err
	}
	height, err := db.metaInt(MetaHeight)
	if err != nil {
		return nil, err
	}
	epoch, err := db.metaInt(MetaEpoch)
	if err != nil {
		return nil, err
	}

	var rows []entityRow
	if err := db.conn.Select(&rows, "SELECT * FROM entities ORDER BY y, x, layer"); err != nil {
		return nil, fmt.Errorf("select entities: %w", err)
	}

	g := grid.NewBare(length, height, append(opts, grid.WithEpoch(uint64(epoch)))...)
	for _, row := range rows {
		e, err := entityOf(row, tuning)
		if err != nil {
			return nil, err
		}
		if err := g.Restore(row.X, row.Y, e, grid.EntityID(row.ID), row.LocalTime); err != nil {
			return nil, err
		}
	}

	slog.Info("grid loaded", "tick", epoch, "entities", len(rows))
	return g, nil
}

func entityOf(row entityRow, tuning agents.Tuning) (grid.Entity, error) {
	var e grid.Entity
	switch grid.Kind(row.Kind) {
	case grid.KindBlank:
		e = grid.NewBlank()
	case grid.KindBlock:
		e = grid.NewBlock()
	case grid.KindCreature:
		var r agents.CreatureRecord
		if err := json.Unmarshal([]byte(row.DetailJSON.String), &r); err != nil {
			return nil, fmt.Errorf("decode creature %d: %w", row.ID, err)
		}
		e = agents.RestoreCreature(r, tuning)
	case grid.KindBreedingGround:
		bg := agents.NewBreedingGround()
		if row.DetailJSON.Valid {
			var t agents.BreedingTuning
			if err := json.Unmarshal([]byte(row.DetailJSON.String), &t); err != nil {
				return nil, fmt.Errorf("decode breeding ground %d: %w", row.ID, err)
			}
			bg.SetTuning(t)
		}
		e = bg
	default:
		return nil, fmt.Errorf("entity %d: unknown kind %d", row.ID, row.Kind)
	}

	b := e.Core()
	b.SetAge(row.Age)
	if err := json.Unmarshal([]byte(row.InventoryJSON), b.Inventory()); err != nil {
		return nil, fmt.Errorf("decode inventory %d: %w", row.ID, err)
	}
	return e, nil
}

// SaveEvents appends events to the database.
func (db *DB) SaveEvents(events []grid.Event) error {
	if len(events) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, e := range events {
		_, err := tx.Exec(
			"INSERT INTO events (tick, description, category) VALUES (?, ?, ?)",
			e.Tick, e.Description, e.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentEvents returns the most recent N events, newest first.
func (db *DB) RecentEvents(limit int) ([]grid.Event, error) {
	var events []grid.Event
	err := db.conn.Select(&events,
		"SELECT tick, description, category FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}

// SaveMeta stores a key-value pair in world metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

func (db *DB) metaInt(key string) (int, error) {
	v, err := db.GetMeta(key)
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("meta %s: %w", key, err)
	}
	return n, nil
}
