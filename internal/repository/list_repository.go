package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/petrkov/shopping-list/internal/list"
)

// ErrNoList is returned by Load when a user has no shopping_lists row yet.
// Absence is a valid state; rows are created lazily on first list access.
var ErrNoList = errors.New("no shopping list for user")

// ListRepo persists one shopping_lists row per user. The row holds the
// items, quantities and checked sequences as three JSON array columns, and
// every write replaces all three together so the sequences cannot drift
// apart in storage.
type ListRepo struct{ DB *sql.DB }

func NewListRepo(db *sql.DB) *ListRepo { return &ListRepo{DB: db} }

// Load returns the stored list for a user, or ErrNoList when no row exists.
// It never creates a row.
func (r *ListRepo) Load(ctx context.Context, userID string) (list.List, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT items, quantities, checked FROM shopping_lists WHERE user_id=? LIMIT 1",
		userID)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		return list.List{}, ErrNoList
	}
	return l, err
}

// Ensure returns the user's list, creating an empty row first when none
// exists. This is the only creation path for shopping_lists rows.
func (r *ListRepo) Ensure(ctx context.Context, userID string) (list.List, error) {
	return r.Mutate(ctx, userID, nil)
}

// Save replaces the full triple for the user's row in a single write.
func (r *ListRepo) Save(ctx context.Context, userID string, l list.List) error {
	items, quantities, checked, err := encodeList(l)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"UPDATE shopping_lists SET items=?, quantities=?, checked=? WHERE user_id=?",
		items, quantities, checked, userID)
	return err
}

// Mutate runs fn against the user's current list inside one transaction and
// persists the result. The row is locked with SELECT ... FOR UPDATE for the
// duration, so two concurrent mutations on the same user serialize instead
// of overwriting each other's read-modify-write cycle. A missing row is
// created empty before fn runs. fn may be nil to just materialize and read.
//
// If fn returns an error the transaction is rolled back and nothing is
// persisted; the error is returned as-is so callers can map domain errors
// (e.g. list.ErrIndexOutOfRange) onto their own responses.
func (r *ListRepo) Mutate(ctx context.Context, userID string, fn func(*list.List) error) (list.List, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return list.List{}, fmt.Errorf("begin: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	row := tx.QueryRowContext(ctx,
		"SELECT items, quantities, checked FROM shopping_lists WHERE user_id=? FOR UPDATE",
		userID)
	l, err := scanList(row)
	if err == sql.ErrNoRows {
		l = list.New()
		items, quantities, checked, encErr := encodeList(l)
		if encErr != nil {
			return list.List{}, encErr
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO shopping_lists (user_id, items, quantities, checked) VALUES (?,?,?,?)",
			userID, items, quantities, checked); err != nil {
			return list.List{}, fmt.Errorf("create row: %w", err)
		}
	} else if err != nil {
		return list.List{}, err
	}

	if fn != nil {
		if err := fn(&l); err != nil {
			return list.List{}, err
		}
		items, quantities, checked, err := encodeList(l)
		if err != nil {
			return list.List{}, err
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE shopping_lists SET items=?, quantities=?, checked=? WHERE user_id=?",
			items, quantities, checked, userID); err != nil {
			return list.List{}, fmt.Errorf("save row: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return list.List{}, fmt.Errorf("commit: %w", err)
	}
	committed = true
	return l, nil
}

type rowScanner interface{ Scan(dest ...any) error }

// scanList decodes the three JSON array columns. NULL columns decode as
// empty sequences; rows written by this service always store all three.
func scanList(row rowScanner) (list.List, error) {
	var items, quantities, checked sql.NullString
	if err := row.Scan(&items, &quantities, &checked); err != nil {
		return list.List{}, err
	}
	l := list.New()
	if items.Valid && items.String != "" {
		if err := json.Unmarshal([]byte(items.String), &l.Items); err != nil {
			return list.List{}, fmt.Errorf("decode items: %w", err)
		}
	}
	if quantities.Valid && quantities.String != "" {
		if err := json.Unmarshal([]byte(quantities.String), &l.Quantities); err != nil {
			return list.List{}, fmt.Errorf("decode quantities: %w", err)
		}
	}
	if checked.Valid && checked.String != "" {
		if err := json.Unmarshal([]byte(checked.String), &l.Checked); err != nil {
			return list.List{}, fmt.Errorf("decode checked: %w", err)
		}
	}
	// Older rows may predate the checked column; pad so the sequences stay parallel.
	for len(l.Checked) < len(l.Items) {
		l.Checked = append(l.Checked, false)
	}
	return l, nil
}

func encodeList(l list.List) (items, quantities, checked []byte, err error) {
	if items, err = json.Marshal(l.Items); err != nil {
		return nil, nil, nil, err
	}
	if quantities, err = json.Marshal(l.Quantities); err != nil {
		return nil, nil, nil, err
	}
	if checked, err = json.Marshal(l.Checked); err != nil {
		return nil, nil, nil, err
	}
	return items, quantities, checked, nil
}
