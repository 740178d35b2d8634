package library

import (
	"errors"
	"fmt"
	"os"
	"time"
)

const recordColumns = "id, source_item_id, name, year, poster_url, media_type, save_dir, source_url, source_index, link_kind, updated_at"

func scanRecord(scan func(dest ...any) error) (*Record, error) {
	r := &Record{}
	err := scan(&r.ID, &r.SourceItemID, &r.Name, &r.Year, &r.PosterURL, &r.Type,
		&r.SaveDir, &r.SourceURL, &r.SourceIndex, &r.LinkKind, &r.UpdatedAt)
	if err != nil {
		return nil, mapSQLiteError(err)
	}
	return r, nil
}

// Find returns the record matching name (and year, when the policy keys on
// both). Returns ErrNotFound when no record matches.
func (s *Store) Find(name, year string, policy DedupPolicy) (*Record, error) {
	query := "SELECT " + recordColumns + " FROM records WHERE name = ?"
	args := []any{name}
	if policy == DedupByNameYear {
		query += " AND year = ?"
		args = append(args, year)
	}
	query += " LIMIT 1"

	rec, err := scanRecord(s.db.QueryRow(query, args...).Scan)
	if err != nil {
		return nil, fmt.Errorf("find record %q: %w", name, err)
	}
	return rec, nil
}

// Upsert inserts or updates the record for rec's dedup key. The read and
// the write happen under a per-name lock so concurrent generations of a
// shared name observe a consistent existence check. When allowInsert is
// false and no row exists (replace-in-place with no target), nothing is
// written and Upsert reports inserted=false, updated=false.
func (s *Store) Upsert(rec *Record, policy DedupPolicy, allowInsert bool) (inserted, updated bool, err error) {
	unlock := s.lockName(rec.Name)
	defer unlock()

	now := time.Now()
	existing, err := s.Find(rec.Name, rec.Year, policy)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, false, err
	}

	if existing != nil {
		_, err = s.db.Exec(`
			UPDATE records
			SET poster_url = ?, source_url = ?, source_index = ?, link_kind = ?, updated_at = ?
			WHERE id = ?`,
			rec.PosterURL, rec.SourceURL, rec.SourceIndex, rec.LinkKind, now, existing.ID,
		)
		if err != nil {
			return false, false, fmt.Errorf("update record %q: %w", rec.Name, mapSQLiteError(err))
		}
		rec.ID = existing.ID
		rec.UpdatedAt = now
		return false, true, nil
	}

	if !allowInsert {
		return false, false, nil
	}

	result, err := s.db.Exec(`
		INSERT INTO records (source_item_id, name, year, poster_url, media_type, save_dir, source_url, source_index, link_kind, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SourceItemID, rec.Name, rec.Year, rec.PosterURL, rec.Type,
		rec.SaveDir, rec.SourceURL, rec.SourceIndex, rec.LinkKind, now,
	)
	if err != nil {
		return false, false, fmt.Errorf("insert record %q: %w", rec.Name, mapSQLiteError(err))
	}
	id, err := result.LastInsertId()
	if err != nil {
		return false, false, fmt.Errorf("get last insert id: %w", err)
	}
	rec.ID = id
	rec.UpdatedAt = now
	return true, false, nil
}

// List returns all records, most recently updated first.
func (s *Store) List() ([]*Record, error) {
	rows, err := s.db.Query("SELECT " + recordColumns + " FROM records ORDER BY updated_at DESC")
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []*Record
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		results = append(results, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return results, nil
}

// Delete removes a record by ID. Idempotent.
func (s *Store) Delete(id int64) error {
	_, err := s.db.Exec("DELETE FROM records WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete record %d: %w", id, mapSQLiteError(err))
	}
	return nil
}

// Sweep drops records whose save directory no longer exists on disk and
// returns how many were removed. dirExists defaults to an os.Stat check;
// tests inject their own.
func (s *Store) Sweep(dirExists func(string) bool) (int, error) {
	if dirExists == nil {
		dirExists = func(dir string) bool {
			_, err := os.Stat(dir)
			return err == nil
		}
	}

	rows, err := s.db.Query("SELECT id, save_dir FROM records")
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var stale []int64
	for rows.Next() {
		var id int64
		var dir string
		if err := rows.Scan(&id, &dir); err != nil {
			return 0, fmt.Errorf("sweep scan: %w", err)
		}
		if !dirExists(dir) {
			stale = append(stale, id)
		}
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("sweep iterate: %w", err)
	}

	for _, id := range stale {
		if err := s.Delete(id); err != nil {
			return 0, err
		}
	}
	return len(stale), nil
}
