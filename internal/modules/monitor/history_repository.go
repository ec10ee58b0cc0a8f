package monitor

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/aristath/quantcore/internal/modules/drift"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS drift_decisions (
	id              TEXT PRIMARY KEY,
	monitor_key     TEXT NOT NULL,
	decided_at      TEXT NOT NULL,
	level           INTEGER NOT NULL,
	size_multiplier REAL NOT NULL,
	psi             REAL NOT NULL,
	ks              REAL NOT NULL,
	ece             REAL NOT NULL,
	notes           TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_drift_decisions_key ON drift_decisions(monitor_key, decided_at);
`

// HistoryRepository persists drift decisions to SQLite. The Monitor itself
// stays storage-free; the host wires this in where durable history matters.
type HistoryRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewHistoryRepository creates the repository and its schema.
func NewHistoryRepository(db *sql.DB, log zerolog.Logger) (*HistoryRepository, error) {
	if _, err := db.Exec(historySchema); err != nil {
		return nil, fmt.Errorf("failed to create drift_decisions schema: %w", err)
	}
	return &HistoryRepository{
		db:  db,
		log: log.With().Str("component", "drift_history").Logger(),
	}, nil
}

// Append stores one decision record under the monitor key.
func (r *HistoryRepository) Append(key string, rec Record) error {
	_, err := r.db.Exec(
		`INSERT INTO drift_decisions (id, monitor_key, decided_at, level, size_multiplier, psi, ks, ece, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID,
		key,
		rec.At.UTC().Format(time.RFC3339Nano),
		int(rec.Decision.Level),
		rec.Decision.SizeMultiplier,
		rec.Decision.PSI,
		rec.Decision.KS,
		rec.Decision.ECE,
		strings.Join(rec.Decision.Notes, "; "),
	)
	if err != nil {
		return fmt.Errorf("failed to append drift decision %s: %w", rec.ID, err)
	}
	return nil
}

// ListByKey returns up to limit decisions for a monitor key, newest first.
func (r *HistoryRepository) ListByKey(key string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := r.db.Query(
		`SELECT id, decided_at, level, size_multiplier, psi, ks, ece, notes
		 FROM drift_decisions WHERE monitor_key = ? ORDER BY decided_at DESC LIMIT ?`,
		key, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query drift decisions for %s: %w", key, err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var rec Record
		var decidedAt, notes string
		var level int
		if err := rows.Scan(&rec.ID, &decidedAt, &level, &rec.Decision.SizeMultiplier,
			&rec.Decision.PSI, &rec.Decision.KS, &rec.Decision.ECE, &notes); err != nil {
			return nil, fmt.Errorf("failed to scan drift decision: %w", err)
		}
		rec.At, err = time.Parse(time.RFC3339Nano, decidedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse decision timestamp %q: %w", decidedAt, err)
		}
		rec.Decision.Level = drift.Level(level)
		if notes != "" {
			rec.Decision.Notes = strings.Split(notes, "; ")
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}
