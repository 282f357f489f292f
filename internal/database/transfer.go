package database

import (
	"context"
	"fmt"

	"github.com/lawnchairsociety/nightmareinsilver/internal/logger"
	"github.com/lawnchairsociety/nightmareinsilver/internal/progress"
)

// ProfileRow is a profile as stored, password hash included.
type ProfileRow struct {
	Name         string
	PasswordHash string
	Save         progress.SaveData
}

// ExportProfiles returns every profile in insertion order.
func (d *Database) ExportProfiles(ctx context.Context) ([]ProfileRow, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT name, password_hash, "+saveColumns+" FROM profiles ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query profiles: %w", err)
	}
	defer rows.Close()

	var out []ProfileRow
	for rows.Next() {
		var p ProfileRow
		save, err := scanSave(prefixScanner{rows, []any{&p.Name, &p.PasswordHash}})
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		p.Save = save
		out = append(out, p)
	}
	return out, rows.Err()
}

// prefixScanner scans leading columns into prefix before the save columns.
type prefixScanner struct {
	row    rowScanner
	prefix []any
}

func (s prefixScanner) Scan(dest ...any) error {
	return s.row.Scan(append(append([]any{}, s.prefix...), dest...)...)
}

// ImportProfile inserts p unless a profile with that name exists. It reports
// whether a row was written.
func (d *Database) ImportProfile(ctx context.Context, p ProfileRow) (bool, error) {
	if !ValidName(p.Name) {
		return false, ErrInvalidName
	}
	query := `INSERT INTO profiles (name, password_hash, ` + saveColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (name) DO NOTHING`
	args := append([]any{p.Name, p.PasswordHash}, saveArgs(p.Save)...)
	res, err := d.db.ExecContext(ctx, d.qb.Build(query), args...)
	if err != nil {
		return false, fmt.Errorf("failed to import profile %s: %w", p.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to import profile %s: %w", p.Name, err)
	}
	return n > 0, nil
}

// ExportRuns returns every recorded run, oldest first.
func (d *Database) ExportRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := d.db.QueryContext(ctx, "SELECT profile, score, depth, kills, won FROM runs ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var won int
		if err := rows.Scan(&r.Profile, &r.Score, &r.Depth, &r.Kills, &won); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		r.Won = won != 0
		out = append(out, r)
	}
	return out, rows.Err()
}

// CountRuns returns the number of recorded runs.
func (d *Database) CountRuns(ctx context.Context) (int, error) {
	var n int
	if err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM runs").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count runs: %w", err)
	}
	return n, nil
}

// CopyStats summarises a Copy.
type CopyStats struct {
	Profiles        int // Written to the destination
	ProfilesSkipped int // Already present there
	Runs            int
	RunsSkipped     int // Left out because the destination already had runs
}

// Copy moves profiles and runs from src into dst. Existing destination
// profiles win. Runs carry no natural key, so they are only copied into an
// empty runs table. With dryRun nothing is written and the stats describe
// what would be.
func Copy(ctx context.Context, src, dst *Database, dryRun bool) (CopyStats, error) {
	var stats CopyStats

	profiles, err := src.ExportProfiles(ctx)
	if err != nil {
		return stats, err
	}
	for _, p := range profiles {
		if dryRun {
			exists, err := dst.ProfileExists(p.Name)
			if err != nil {
				return stats, err
			}
			if exists {
				stats.ProfilesSkipped++
			} else {
				stats.Profiles++
			}
			continue
		}
		written, err := dst.ImportProfile(ctx, p)
		if err != nil {
			return stats, err
		}
		if written {
			stats.Profiles++
		} else {
			logger.Debug("Profile already present, skipped", "profile", p.Name)
			stats.ProfilesSkipped++
		}
	}

	runs, err := src.ExportRuns(ctx)
	if err != nil {
		return stats, err
	}
	existing, err := dst.CountRuns(ctx)
	if err != nil {
		return stats, err
	}
	if existing > 0 {
		logger.Warning("Destination already has runs, not copying", "existing", existing, "source", len(runs))
		stats.RunsSkipped = len(runs)
		return stats, nil
	}
	for _, r := range runs {
		if !dryRun {
			if err := dst.RecordRun(ctx, r); err != nil {
				return stats, err
			}
		}
		stats.Runs++
	}
	return stats, nil
}
