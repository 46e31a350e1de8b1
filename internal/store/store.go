// Package store keeps a history of specialization runs in SQLite.
package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

// ErrNotFound means no run recorded the requested result.
var ErrNotFound = errors.New("no recorded result")

const schema = `
CREATE TABLE IF NOT EXISTS results (
	run_id         TEXT    NOT NULL,
	function       TEXT    NOT NULL,
	specialization TEXT    NOT NULL,
	tree           TEXT    NOT NULL,
	created_at     INTEGER NOT NULL,
	PRIMARY KEY (run_id, function, specialization)
);
CREATE INDEX IF NOT EXISTS results_by_key ON results (function, specialization, created_at);
`

// Record is one stored specialization result. Tree holds the printed tree.
type Record struct {
	RunID          uuid.UUID
	Function       string
	Specialization string
	Tree           string
	CreatedAt      time.Time
}

type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path. ":memory:" gives a private
// in-memory store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}
	// a second connection to ":memory:" would see an empty database
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(err, "creating schema in %s", path)
	}
	return &Store{db: db, now: time.Now}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores all records of one run atomically. Records keep their own
// RunID and CreatedAt when set.
func (s *Store) SaveRun(ctx context.Context, runID uuid.UUID, records []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "starting transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO results (run_id, function, specialization, tree, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return errors.Wrap(err, "preparing insert")
	}
	defer stmt.Close()

	now := s.now()
	for _, r := range records {
		id := r.RunID
		if id == uuid.Nil {
			id = runID
		}
		created := r.CreatedAt
		if created.IsZero() {
			created = now
		}
		if _, err := stmt.ExecContext(ctx, id.String(), r.Function, r.Specialization, r.Tree, created.UnixNano()); err != nil {
			return errors.Wrapf(err, "saving %s/%s", r.Function, r.Specialization)
		}
	}
	return errors.Wrap(tx.Commit(), "committing run")
}

// Latest returns the most recent result for function and specialization.
func (s *Store) Latest(ctx context.Context, function, specialization string) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, function, specialization, tree, created_at FROM results
		 WHERE function = ? AND specialization = ?
		 ORDER BY created_at DESC LIMIT 1`, function, specialization)
	r, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, errors.Wrapf(ErrNotFound, "%s/%s", function, specialization)
	}
	return r, err
}

// Run returns every result recorded by one run, ordered by key.
func (s *Store) Run(ctx context.Context, runID uuid.UUID) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, function, specialization, tree, created_at FROM results
		 WHERE run_id = ? ORDER BY function, specialization`, runID.String())
	if err != nil {
		return nil, errors.Wrapf(err, "querying run %s", runID)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		r, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, errors.Wrap(rows.Err(), "reading run")
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (Record, error) {
	var (
		r       Record
		id      string
		created int64
	)
	if err := row.Scan(&id, &r.Function, &r.Specialization, &r.Tree, &created); err != nil {
		return Record{}, err
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return Record{}, errors.Wrapf(err, "bad run id %q", id)
	}
	r.RunID = parsed
	r.CreatedAt = time.Unix(0, created)
	return r, nil
}
