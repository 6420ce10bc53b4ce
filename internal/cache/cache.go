// Package cache persists the flat file-record table parsed out of a
// build's idx files, keyed by build id, so a repeated run against an
// unchanged install can skip re-parsing every idx file from scratch.
package cache

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jinzhu/copier"
	"github.com/wowsunpack/wowsunpack/internal/idxfile"
)

// Cache wraps a migrated sqlite connection.
type Cache struct {
	db *sql.DB
}

// Close releases the underlying database connection.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Fingerprint identifies the on-disk state of one idx file at the time it
// was parsed. Load only returns a hit when every fingerprint supplied
// matches what was stored on the last Store for that build.
type Fingerprint struct {
	Size    int64
	ModTime int64
}

// fileRow is the deep-copy target/source for one sqlite row — kept
// separate from idxfile.FileRecord so the cache never aliases buffers the
// parser still owns.
type fileRow struct {
	Path             string
	PkgName          string
	Offset           int64
	Size             int32
	UncompressedSize int64
}

// Load returns the cached file records for buildID if, and only if, every
// entry in fingerprints matches what was recorded on the last Store call
// for that build. A mismatch (or no prior Store) is reported as a miss,
// not an error.
func (c *Cache) Load(ctx context.Context, buildID string, fingerprints map[string]Fingerprint) (map[string]idxfile.FileRecord, bool, error) {
	stored, err := c.loadFingerprints(ctx, buildID)
	if err != nil {
		return nil, false, err
	}
	if !fingerprintsMatch(stored, fingerprints) {
		return nil, false, nil
	}

	rows, err := c.db.QueryContext(ctx,
		`SELECT path, pkg_name, file_offset, size, uncompressed_size FROM file_records WHERE build_id = ?`, buildID)
	if err != nil {
		return nil, false, fmt.Errorf("querying cached file records: %w", err)
	}
	defer rows.Close()

	out := make(map[string]idxfile.FileRecord)
	for rows.Next() {
		var row fileRow
		if err := rows.Scan(&row.Path, &row.PkgName, &row.Offset, &row.Size, &row.UncompressedSize); err != nil {
			return nil, false, fmt.Errorf("scanning cached file record: %w", err)
		}

		var rec idxfile.FileRecord
		if err := copier.Copy(&rec, &row); err != nil {
			return nil, false, fmt.Errorf("copying cached file record for %s: %w", row.Path, err)
		}
		out[row.Path] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("reading cached file records: %w", err)
	}

	return out, true, nil
}

// Store replaces the cached snapshot for buildID with records and
// fingerprints, all in one transaction.
func (c *Cache) Store(ctx context.Context, buildID string, fingerprints map[string]Fingerprint, records map[string]idxfile.FileRecord) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning cache store transaction: %w", err)
	}

	if err := storeTx(ctx, tx, buildID, fingerprints, records); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back cache store (original error: %w): %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing cache store: %w", err)
	}
	return nil
}

func storeTx(ctx context.Context, tx *sql.Tx, buildID string, fingerprints map[string]Fingerprint, records map[string]idxfile.FileRecord) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM file_records WHERE build_id = ?`, buildID); err != nil {
		return fmt.Errorf("clearing old file records: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM idx_fingerprints WHERE build_id = ?`, buildID); err != nil {
		return fmt.Errorf("clearing old fingerprints: %w", err)
	}

	for name, fp := range fingerprints {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO idx_fingerprints (build_id, idx_name, size, mod_time) VALUES (?, ?, ?, ?)`,
			buildID, name, fp.Size, fp.ModTime); err != nil {
			return fmt.Errorf("inserting fingerprint for %s: %w", name, err)
		}
	}

	for path, rec := range records {
		var row fileRow
		if err := copier.Copy(&row, &rec); err != nil {
			return fmt.Errorf("copying file record for %s: %w", path, err)
		}

		if _, err := tx.ExecContext(ctx,
			`INSERT INTO file_records (build_id, path, pkg_name, file_offset, size, uncompressed_size) VALUES (?, ?, ?, ?, ?, ?)`,
			buildID, row.Path, row.PkgName, row.Offset, row.Size, row.UncompressedSize); err != nil {
			return fmt.Errorf("inserting file record for %s: %w", path, err)
		}
	}

	return nil
}

func (c *Cache) loadFingerprints(ctx context.Context, buildID string) (map[string]Fingerprint, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT idx_name, size, mod_time FROM idx_fingerprints WHERE build_id = ?`, buildID)
	if err != nil {
		return nil, fmt.Errorf("querying fingerprints: %w", err)
	}
	defer rows.Close()

	out := make(map[string]Fingerprint)
	for rows.Next() {
		var name string
		var fp Fingerprint
		if err := rows.Scan(&name, &fp.Size, &fp.ModTime); err != nil {
			return nil, fmt.Errorf("scanning fingerprint: %w", err)
		}
		out[name] = fp
	}
	return out, rows.Err()
}

func fingerprintsMatch(stored, want map[string]Fingerprint) bool {
	if len(stored) == 0 || len(stored) != len(want) {
		return false
	}
	for name, fp := range want {
		if stored[name] != fp {
			return false
		}
	}
	return true
}
