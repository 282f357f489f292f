package database

import (
	"context"
	"fmt"
)

// RunRecord is one finished run on the score board.
type RunRecord struct {
	Profile string `json:"profile"`
	Score   int    `json:"score"`
	Depth   int    `json:"depth"`
	Kills   int    `json:"kills"`
	Won     bool   `json:"won"`
}

// RecordRun appends a finished run.
func (d *Database) RecordRun(ctx context.Context, r RunRecord) error {
	won := 0
	if r.Won {
		won = 1
	}
	_, err := d.db.ExecContext(ctx,
		d.qb.Build("INSERT INTO runs (profile, score, depth, kills, won) VALUES (?, ?, ?, ?, ?)"),
		r.Profile, r.Score, r.Depth, r.Kills, won)
	if err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}
	return nil
}

// HighScores returns the best runs, highest score first; ties keep the
// earlier run ahead.
func (d *Database) HighScores(ctx context.Context, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := d.db.QueryContext(ctx,
		d.qb.Build("SELECT profile, score, depth, kills, won FROM runs ORDER BY score DESC, id ASC LIMIT ?"),
		limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var r RunRecord
		var won int
		if err := rows.Scan(&r.Profile, &r.Score, &r.Depth, &r.Kills, &won); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Won = won != 0
		records = append(records, r)
	}
	return records, rows.Err()
}
