package datarecording

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"strings"
)

// EventFilter selects rows of the events table. Zero fields match anything.
type EventFilter struct {
	Session string
	Kind    string

	// Failed keeps only rows that carry an error.
	Failed bool

	// Limit caps the number of rows. Zero means no limit.
	Limit int
}

func (f EventFilter) where() (string, []any) {
	var (
		conds []string
		args  []any
	)

	if f.Session != "" {
		conds = append(conds, "Session = ?")
		args = append(args, f.Session)
	}

	if f.Kind != "" {
		conds = append(conds, "Kind = ?")
		args = append(args, f.Kind)
	}

	if f.Failed {
		conds = append(conds, "Error != ''")
	}

	if len(conds) == 0 {
		return "", nil
	}

	return " WHERE " + strings.Join(conds, " AND "), args
}

// EventCount is the number of events with the same kind, subject and op.
type EventCount struct {
	Kind    string
	Subject string
	Op      string
	Count   int
}

// Key returns "kind subject op".
func (c EventCount) Key() string {
	return c.Kind + " " + c.Subject + " " + c.Op
}

// Reader reads a recording written by a SQLiteWriter, an ExecRecorder and a
// Tracer.
type Reader struct {
	db *sql.DB
}

// NewReader opens a recording file.
func NewReader(dbFilename string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dbFilename)
	if err != nil {
		return nil, err
	}

	return NewReaderWithDB(db), nil
}

// NewReaderWithDB reads the recording in db.
func NewReaderWithDB(db *sql.DB) *Reader {
	return &Reader{db: db}
}

// Tables lists the tables of the recording, sorted.
func (r *Reader) Tables(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' ORDER BY name")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []string

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}

		tables = append(tables, name)
	}

	return tables, rows.Err()
}

// Exec returns the execution properties in the order they were noted.
func (r *Reader) Exec(ctx context.Context) ([]ExecInfo, error) {
	return queryRows[ExecInfo](ctx, r.db,
		"SELECT * FROM "+ExecTable+" ORDER BY rowid")
}

// Events returns the events matching f in time order.
func (r *Reader) Events(ctx context.Context, f EventFilter) ([]EventRow, error) {
	where, args := f.where()

	query := "SELECT * FROM " + EventTable + where + " ORDER BY Time, rowid"
	if f.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", f.Limit)
	}

	return queryRows[EventRow](ctx, r.db, query, args...)
}

// EventCounts groups the events by kind, subject and op.
func (r *Reader) EventCounts(ctx context.Context) ([]EventCount, error) {
	return queryRows[EventCount](ctx, r.db,
		"SELECT Kind, Subject, Op, COUNT(*) AS Count FROM "+EventTable+
			" GROUP BY Kind, Subject, Op ORDER BY Kind, Subject, Op")
}

// Spawns returns the spawns of session in time order, or of every session
// when session is empty.
func (r *Reader) Spawns(ctx context.Context, session string) ([]SpawnRow, error) {
	query := "SELECT * FROM " + SpawnTable

	var args []any

	if session != "" {
		query += " WHERE Session = ?"
		args = append(args, session)
	}

	return queryRows[SpawnRow](ctx, r.db, query+" ORDER BY Time, rowid", args...)
}

// Close closes the recording.
func (r *Reader) Close() error {
	return r.db.Close()
}

// queryRows scans every row into a T, matching columns to fields by name.
// Columns without a field are skipped.
func queryRows[T any](
	ctx context.Context,
	db *sql.DB,
	query string,
	args ...any,
) ([]T, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	structType := reflect.TypeFor[T]()

	fieldMap := make(map[string]int, structType.NumField())
	for i := 0; i < structType.NumField(); i++ {
		fieldMap[structType.Field(i).Name] = i
	}

	var results []T

	for rows.Next() {
		var entry T

		structVal := reflect.ValueOf(&entry).Elem()
		targets := make([]any, len(columns))

		for i, col := range columns {
			if idx, ok := fieldMap[col]; ok {
				targets[i] = structVal.Field(idx).Addr().Interface()
			} else {
				var skip any

				targets[i] = &skip
			}
		}

		if err := rows.Scan(targets...); err != nil {
			return nil, err
		}

		results = append(results, entry)
	}

	return results, rows.Err()
}
