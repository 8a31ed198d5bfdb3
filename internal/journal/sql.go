package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

var entryColumns = []string{"id", "kind", "tool_id", "tool_name", "slot", "machine", "quantity", "actor", "occurred_at"}

// dialect captures the differences between the SQL backends.
type dialect struct {
	name        string
	placeholder func(n int) string
}

var (
	sqliteDialect   = dialect{name: "sqlite", placeholder: func(int) string { return "?" }}
	postgresDialect = dialect{name: "postgres", placeholder: func(n int) string { return fmt.Sprintf("$%d", n) }}
)

// SQL is a Journal over a database/sql handle. Timestamps are stored as UTC
// unix nanoseconds.
type SQL struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func newSQL(ctx context.Context, db *sql.DB, d dialect) (*SQL, error) {
	ddl := `CREATE TABLE IF NOT EXISTS journal_entries (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		tool_id TEXT NOT NULL,
		tool_name TEXT NOT NULL,
		slot INTEGER NOT NULL,
		machine TEXT NOT NULL,
		quantity INTEGER NOT NULL,
		actor TEXT NOT NULL,
		occurred_at BIGINT NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return nil, fmt.Errorf("create %s journal table: %w", d.name, err)
	}
	return &SQL{db: db, dialect: d, now: time.Now}, nil
}

// DB exposes the underlying handle.
func (s *SQL) DB() *sql.DB { return s.db }

// Record inserts e.
func (s *SQL) Record(ctx context.Context, e Entry) (Entry, error) {
	e = prepare(ctx, e, s.now)
	marks := make([]string, len(entryColumns))
	for i := range marks {
		marks[i] = s.dialect.placeholder(i + 1)
	}
	query := fmt.Sprintf("INSERT INTO journal_entries (%s) VALUES (%s)", strings.Join(entryColumns, ", "), strings.Join(marks, ", "))
	_, err := s.db.ExecContext(ctx, query,
		e.ID, string(e.Kind), e.ToolID, e.ToolName, e.Slot, e.Machine, e.Quantity, e.Actor, e.OccurredAt.UnixNano())
	if err != nil {
		return Entry{}, fmt.Errorf("insert journal entry: %w", err)
	}
	return e, nil
}

// List reads every entry and applies f.
// TODO: push the tool and kind predicates into the WHERE clause once the
// journal outgrows an in-process scan.
func (s *SQL) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := fmt.Sprintf("SELECT %s FROM journal_entries ORDER BY occurred_at, id", strings.Join(entryColumns, ", "))
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select journal entries: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var entries []Entry
	for rows.Next() {
		var (
			e    Entry
			kind string
			at   int64
		)
		if err := rows.Scan(&e.ID, &kind, &e.ToolID, &e.ToolName, &e.Slot, &e.Machine, &e.Quantity, &e.Actor, &at); err != nil {
			return nil, fmt.Errorf("scan journal entry: %w", err)
		}
		e.Kind = Kind(kind)
		e.OccurredAt = time.Unix(0, at).UTC()
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate journal entries: %w", err)
	}
	return f.apply(entries), nil
}

// Close closes the database handle.
func (s *SQL) Close() error { return s.db.Close() }
