package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"tasc/internal/config"
	"tasc/internal/domain"
	"tasc/internal/ports"

	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

var _ ports.TaskStore = (*Store)(nil)

const schema = `
CREATE TABLE IF NOT EXISTS tasks (
	id         TEXT PRIMARY KEY NOT NULL,
	name       TEXT UNIQUE,
	command    TEXT NOT NULL,
	env        TEXT,
	status     TEXT NOT NULL CHECK (status IN ('SCHEDULED', 'SUCCESS', 'ERROR')),
	status_log TEXT,
	CHECK (status = 'SCHEDULED' OR status_log IS NOT NULL)
)`

type Store struct {
	db *sql.DB
}

// Open connects to the sqlite database at cfg.DatabaseURL and makes sure the
// tasks table exists.
func Open(ctx context.Context, cfg config.SQLite) (*Store, error) {
	db, err := sql.Open("sqlite", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// one connection: writes are serialized and in-memory databases are shared
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating tasks table: %w", err)
	}

	log.Ctx(ctx).Debug().Str("database", cfg.DatabaseURL).Msg("sqlite task store ready")
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(ctx context.Context, t domain.Task) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM tasks WHERE id = ? OR name = ?`,
			t.ID, nullable(t.Name),
		).Scan(&n)
		if err != nil {
			return fmt.Errorf("checking task %s before insert: %w", t.ID, err)
		}
		if n > 0 {
			return fmt.Errorf("inserting task %s (name %q): %w", t.ID, t.Name, domain.ErrTaskExists)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO tasks (id, name, command, env, status, status_log) VALUES (?, ?, ?, ?, ?, NULL)`,
			t.ID, nullable(t.Name), t.Command, encodeEnv(t.Env), string(domain.StateScheduled),
		)
		if err != nil {
			return fmt.Errorf("inserting task %s: %w", t.ID, err)
		}
		return nil
	})
}

func (s *Store) Status(ctx context.Context, id domain.TaskID) (domain.TaskStatus, error) {
	var status domain.TaskStatus
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row, err := findOne(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("loading %s: %w", id, err)
		}
		status = row.status
		return nil
	})
	return status, err
}

func (s *Store) Complete(ctx context.Context, t domain.Task, status domain.TaskStatus) error {
	if !status.Terminal() {
		return fmt.Errorf("completing task %s with %s: %w", t.ID, status.State, domain.ErrInvalidStatus)
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		row, err := findOne(ctx, tx, t.Identifier())
		if err != nil {
			return fmt.Errorf("completing task %s: %w", t.ID, err)
		}
		if row.status.Terminal() {
			return fmt.Errorf("completing task %s: %w", t.ID, domain.ErrTaskCompleted)
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE tasks SET status = ?, status_log = ? WHERE id = ?`,
			string(status.State), status.Log, row.task.ID,
		)
		if err != nil {
			return fmt.Errorf("updating task %s: %w", t.ID, err)
		}
		return nil
	})
}

// Task loads the full task record, environment included. The scheduler only
// needs statuses; this is used to check what a saved task reads back as,
// env column decoding included.
func (s *Store) Task(ctx context.Context, id domain.TaskID) (domain.Task, error) {
	var task domain.Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		row, err := findOne(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("loading %s: %w", id, err)
		}
		task = row.task
		return nil
	})
	return task, err
}

type taskRow struct {
	task   domain.Task
	status domain.TaskStatus
}

func findOne(ctx context.Context, tx *sql.Tx, id domain.TaskID) (taskRow, error) {
	var query string
	switch id.Kind {
	case domain.KindID:
		query = `SELECT id, name, command, env, status, status_log FROM tasks WHERE id = ? LIMIT 2`
	case domain.KindName:
		query = `SELECT id, name, command, env, status, status_log FROM tasks WHERE name = ? LIMIT 2`
	default:
		return taskRow{}, fmt.Errorf("unknown identifier kind %q", id.Kind)
	}

	rows, err := tx.QueryContext(ctx, query, id.Value)
	if err != nil {
		return taskRow{}, err
	}
	defer rows.Close()

	var found []taskRow
	for rows.Next() {
		r, err := scanRow(rows)
		if err != nil {
			return taskRow{}, err
		}
		found = append(found, r)
	}
	if err := rows.Err(); err != nil {
		return taskRow{}, err
	}

	switch len(found) {
	case 0:
		return taskRow{}, domain.ErrTaskNotFound
	case 1:
		return found[0], nil
	default:
		return taskRow{}, domain.ErrAmbiguousTask
	}
}

func scanRow(rows *sql.Rows) (taskRow, error) {
	var (
		r         taskRow
		name      sql.NullString
		env       sql.NullString
		state     string
		statusLog sql.NullString
	)
	if err := rows.Scan(&r.task.ID, &name, &r.task.Command, &env, &state, &statusLog); err != nil {
		return taskRow{}, err
	}
	r.task.Name = name.String

	if env.Valid {
		decoded, err := decodeEnv(&env.String)
		if err != nil {
			return taskRow{}, fmt.Errorf("task %s: %w", r.task.ID, err)
		}
		r.task.Env = decoded
	}

	var logPtr *string
	if statusLog.Valid {
		logPtr = &statusLog.String
	}
	status, err := domain.ParseStatus(state, logPtr)
	if err != nil {
		return taskRow{}, fmt.Errorf("task %s: %w", r.task.ID, err)
	}
	r.status = status
	return r, nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Ctx(ctx).Warn().Err(rbErr).Msg("rollback failed")
			}
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
