package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/assignwatch/assignwatch/internal/domain/model"
	"github.com/assignwatch/assignwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.StateStore = (*StateRepo)(nil)

// StateRepo is the SQLite implementation of the StateStore port. Each
// Update is one writer transaction: load the whole mapping, run the
// transform, rewrite the table. The state is small (one row per tracked
// issue), so the rewrite stays cheap and keeps the transactional contract
// trivial to reason about.
type StateRepo struct {
	db *DB
}

// NewStateRepo creates a StateRepo backed by the given DB.
func NewStateRepo(db *DB) *StateRepo {
	return &StateRepo{db: db}
}

// Update runs transform as a scoped read-modify-write transaction.
func (r *StateRepo) Update(ctx context.Context, transform func(model.TrackedState) model.TrackedState) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin state update: %w", err)
	}
	defer tx.Rollback()

	state, err := loadState(ctx, tx)
	if err != nil {
		return err
	}

	state = transform(state)

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminder_records`); err != nil {
		return fmt.Errorf("clear reminder records: %w", err)
	}

	const insert = `INSERT INTO reminder_records (repo_full_name, issue_number, comment_id) VALUES (?, ?, ?)`
	for repo, records := range state {
		for _, rec := range records {
			if _, err := tx.ExecContext(ctx, insert, repo, rec.IssueNumber, rec.CommentID); err != nil {
				return fmt.Errorf("insert reminder record %s#%d: %w", repo, rec.IssueNumber, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit state update: %w", err)
	}

	return nil
}

// Snapshot returns the current state. Buckets emptied by a transform do not
// survive persistence, so a snapshot never contains empty buckets.
func (r *StateRepo) Snapshot(ctx context.Context) (model.TrackedState, error) {
	return loadState(ctx, r.db.Reader)
}

// querier is satisfied by both *sql.Tx and *sql.DB.
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func loadState(ctx context.Context, q querier) (model.TrackedState, error) {
	const query = `SELECT repo_full_name, issue_number, comment_id FROM reminder_records ORDER BY id`

	rows, err := q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("load reminder records: %w", err)
	}
	defer rows.Close()

	state := model.TrackedState{}
	for rows.Next() {
		var repo string
		var rec model.ReminderRecord
		if err := rows.Scan(&repo, &rec.IssueNumber, &rec.CommentID); err != nil {
			return nil, fmt.Errorf("scan reminder record: %w", err)
		}
		state[repo] = append(state[repo], rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reminder records: %w", err)
	}

	return state, nil
}
