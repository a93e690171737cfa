package db

import (
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/litesuggar/omikuji/internal/errors"
	"github.com/litesuggar/omikuji/internal/fortune"
)

// Querier abstracts *sql.DB and *sql.Tx so corpus queries run both
// standalone and inside a merge transaction.
type Querier interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

const corpusColumns = `level, theme, sections_json, intro_json, maxim_json,
	end_json, divine_title_json, sign_number_json, created_date, updated_date`

// GetEntry retrieves the corpus entry for (level, theme).
// A row whose JSON columns fail to decode is treated as absent: the corrupt
// row is deleted, the recovery is logged, and NOT_FOUND is returned.
func GetEntry(q Querier, level, theme string) (*fortune.CorpusEntry, error) {
	row := q.QueryRow(`
		SELECT `+corpusColumns+`
		FROM corpus_entries
		WHERE level = ? AND theme = ?
	`, level, theme)

	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(level + "/" + theme)
	}
	if err != nil {
		if _, ok := err.(*corruptRowError); ok {
			slog.Warn("discarding corrupt corpus entry",
				"level", level, "theme", theme, "error", err.Error())
			_, _ = q.Exec(`DELETE FROM corpus_entries WHERE level = ? AND theme = ?`, level, theme)
			return nil, errors.NewNotFound(level + "/" + theme)
		}
		return nil, errors.NewInternal(err)
	}

	return entry, nil
}

// ListEntries retrieves all corpus entries for a level, keyed by theme.
// Corrupt rows are skipped (logged, left for GetEntry to clean up).
func ListEntries(q Querier, level string) (map[string]*fortune.CorpusEntry, error) {
	rows, err := q.Query(`
		SELECT `+corpusColumns+`
		FROM corpus_entries
		WHERE level = ?
		ORDER BY theme
	`, level)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	entries := make(map[string]*fortune.CorpusEntry)
	for rows.Next() {
		entry, err := scanEntryRows(rows)
		if err != nil {
			if _, ok := err.(*corruptRowError); ok {
				slog.Warn("skipping corrupt corpus entry", "level", level, "error", err.Error())
				continue
			}
			return nil, errors.NewInternal(err)
		}
		entries[entry.Theme] = entry
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return entries, nil
}

// InsertEntry stores a new corpus entry.
func InsertEntry(q Querier, e *fortune.CorpusEntry) error {
	cols, err := marshalEntry(e)
	if err != nil {
		return errors.NewInternal(err)
	}

	_, err = q.Exec(`
		INSERT INTO corpus_entries (`+corpusColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.Level, e.Theme, cols.sections, cols.intro, cols.maxim,
		cols.end, cols.divineTitle, cols.signNumber,
		e.CreatedDate.String(), e.UpdatedDate.String())
	if err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// UpdateEntry rewrites the variant lists and updated_date of an existing
// entry. The key and created_date never change.
func UpdateEntry(q Querier, e *fortune.CorpusEntry) error {
	cols, err := marshalEntry(e)
	if err != nil {
		return errors.NewInternal(err)
	}

	result, err := q.Exec(`
		UPDATE corpus_entries
		SET sections_json = ?, intro_json = ?, maxim_json = ?, end_json = ?,
			divine_title_json = ?, sign_number_json = ?, updated_date = ?
		WHERE level = ? AND theme = ?
	`, cols.sections, cols.intro, cols.maxim, cols.end,
		cols.divineTitle, cols.signNumber, e.UpdatedDate.String(),
		e.Level, e.Theme)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(e.Level + "/" + e.Theme)
	}

	return nil
}

// DeleteOlderThan removes every entry whose updated_date is strictly
// before cutoff. ISO date strings compare lexically in calendar order.
func DeleteOlderThan(q Querier, cutoff fortune.Date) (int, error) {
	result, err := q.Exec(`DELETE FROM corpus_entries WHERE updated_date < ?`, cutoff.String())
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	return int(rowsAffected), nil
}

// corruptRowError marks a row whose persisted JSON or dates failed to
// decode, so readers can recover instead of failing the request.
type corruptRowError struct {
	cause error
}

func (e *corruptRowError) Error() string { return e.cause.Error() }

type entryColumns struct {
	sections    string
	intro       string
	maxim       string
	end         string
	divineTitle string
	signNumber  string
}

func marshalEntry(e *fortune.CorpusEntry) (*entryColumns, error) {
	cols := &entryColumns{}
	for _, field := range []struct {
		dst *string
		src any
	}{
		{&cols.sections, e.Sections},
		{&cols.intro, e.Intro},
		{&cols.maxim, e.Maxim},
		{&cols.end, e.End},
		{&cols.divineTitle, e.DivineTitle},
		{&cols.signNumber, e.SignNumber},
	} {
		data, err := json.Marshal(field.src)
		if err != nil {
			return nil, err
		}
		*field.dst = string(data)
	}
	return cols, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row *sql.Row) (*fortune.CorpusEntry, error) {
	return scanEntryFrom(row)
}

func scanEntryRows(rows *sql.Rows) (*fortune.CorpusEntry, error) {
	return scanEntryFrom(rows)
}

func scanEntryFrom(s rowScanner) (*fortune.CorpusEntry, error) {
	var (
		e           fortune.CorpusEntry
		sections    string
		intro       string
		maxim       string
		end         string
		divineTitle string
		signNumber  string
		createdDate string
		updatedDate string
	)

	err := s.Scan(&e.Level, &e.Theme, &sections, &intro, &maxim,
		&end, &divineTitle, &signNumber, &createdDate, &updatedDate)
	if err != nil {
		return nil, err
	}

	for _, field := range []struct {
		dst any
		src string
	}{
		{&e.Sections, sections},
		{&e.Intro, intro},
		{&e.Maxim, maxim},
		{&e.End, end},
		{&e.DivineTitle, divineTitle},
		{&e.SignNumber, signNumber},
	} {
		if err := json.Unmarshal([]byte(field.src), field.dst); err != nil {
			return nil, &corruptRowError{cause: err}
		}
	}

	if e.CreatedDate, err = fortune.ParseDate(createdDate); err != nil {
		return nil, &corruptRowError{cause: err}
	}
	if e.UpdatedDate, err = fortune.ParseDate(updatedDate); err != nil {
		return nil, &corruptRowError{cause: err}
	}

	return &e, nil
}
