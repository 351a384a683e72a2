package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"

	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/sparql"
)

// SQLite is a persistent Store backed by a single quads table.
type SQLite struct {
	db *sql.DB

	mu     sync.RWMutex
	closed bool
}

// OpenSQLite opens (or creates) the SQLite database at path with WAL mode.
// Call Migrate before first use.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &SQLite{db: db}, nil
}

// DB returns the underlying database handle.
func (s *SQLite) DB() *sql.DB {
	return s.db
}

// Migrate creates the schema if it does not exist.
func (s *SQLite) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// Add implements Store. All quads are inserted in one transaction.
func (s *SQLite) Add(ctx context.Context, quads ...rdf.Quad) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertQuad)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, q := range quads {
		_, err := stmt.ExecContext(ctx,
			int(q.Subject.Kind), q.Subject.Value,
			q.Predicate.Value,
			int(q.Object.Kind), q.Object.Value, q.Object.Datatype, q.Object.Lang,
			int(q.Graph.Kind), q.Graph.Value,
		)
		if err != nil {
			return fmt.Errorf("insert %s: %w", q, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Match implements sparql.Source. Results come back in insertion order.
func (s *SQLite) Match(ctx context.Context, pattern rdf.Pattern) ([]rdf.Quad, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	var (
		where []string
		args  []any
	)
	if t := pattern.Subject; t != nil {
		where = append(where, "subject_kind = ? AND subject = ?")
		args = append(args, int(t.Kind), t.Value)
	}
	if t := pattern.Predicate; t != nil {
		if !t.IsIRI() {
			return nil, nil
		}
		where = append(where, "predicate = ?")
		args = append(args, t.Value)
	}
	if t := pattern.Object; t != nil {
		where = append(where, "object_kind = ? AND object = ? AND object_datatype = ? AND object_lang = ?")
		args = append(args, int(t.Kind), t.Value, t.Datatype, t.Lang)
	}
	if t := pattern.Graph; t != nil {
		where = append(where, "graph_kind = ? AND graph = ?")
		args = append(args, int(t.Kind), t.Value)
	}

	query := selectQuads
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select quads: %w", err)
	}
	defer rows.Close()

	var out []rdf.Quad
	for rows.Next() {
		var (
			q                  rdf.Quad
			sk, objKind, gk    int
			subject, predicate string
		)
		err := rows.Scan(&sk, &subject, &predicate,
			&objKind, &q.Object.Value, &q.Object.Datatype, &q.Object.Lang,
			&gk, &q.Graph.Value)
		if err != nil {
			return nil, fmt.Errorf("scan quad: %w", err)
		}
		q.Subject = rdf.Term{Kind: rdf.TermKind(sk), Value: subject}
		q.Predicate = rdf.IRI(predicate)
		q.Object.Kind = rdf.TermKind(objKind)
		q.Graph.Kind = rdf.TermKind(gk)
		out = append(out, q)
	}
	return out, rows.Err()
}

// Query implements sparql.Querier.
func (s *SQLite) Query(ctx context.Context, query string) (*sparql.Result, error) {
	return sparql.Engine{Source: s}.Query(ctx, query)
}

// Len implements Store.
func (s *SQLite) Len(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return 0, ErrClosed
	}
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM quads").Scan(&n); err != nil {
		return 0, fmt.Errorf("count quads: %w", err)
	}
	return n, nil
}

const selectQuads = `SELECT subject_kind, subject, predicate,
	object_kind, object, object_datatype, object_lang,
	graph_kind, graph FROM quads`

const insertQuad = `INSERT OR IGNORE INTO quads (
	subject_kind, subject, predicate,
	object_kind, object, object_datatype, object_lang,
	graph_kind, graph
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

const schemaDDL = `
CREATE TABLE IF NOT EXISTS quads (
	id              INTEGER PRIMARY KEY AUTOINCREMENT,
	subject_kind    INTEGER NOT NULL,
	subject         TEXT NOT NULL,
	predicate       TEXT NOT NULL,
	object_kind     INTEGER NOT NULL,
	object          TEXT NOT NULL,
	object_datatype TEXT NOT NULL DEFAULT '',
	object_lang     TEXT NOT NULL DEFAULT '',
	graph_kind      INTEGER NOT NULL DEFAULT 0,
	graph           TEXT NOT NULL DEFAULT '',
	UNIQUE (subject_kind, subject, predicate, object_kind, object,
		object_datatype, object_lang, graph_kind, graph)
);

CREATE INDEX IF NOT EXISTS idx_quads_subject ON quads(subject, predicate);
CREATE INDEX IF NOT EXISTS idx_quads_predicate ON quads(predicate, object);
CREATE INDEX IF NOT EXISTS idx_quads_graph ON quads(graph);
`
