// Package position keeps the position column of sibling rows dense:
// within one scope (all forms of a project, all pages of a form, ...)
// positions are always exactly 1..N.
package position

import (
	"context"
	"database/sql"
	"fmt"
)

// Scope identifies one set of sibling rows: a table, the column
// pointing at the parent, and the parent id. Constructed only through
// the helpers below, so table and column names never come from input.
type Scope struct {
	table     string
	parentCol string
	parentID  int
}

func FoldersOf(userID int) Scope {
	return Scope{"folder", "user_id", userID}
}

func FormsOf(projectID int) Scope {
	return Scope{"form", "project_id", projectID}
}

func PagesOf(formID int) Scope {
	return Scope{"page", "form_id", formID}
}

func FieldsOf(pageID int) Scope {
	return Scope{"field", "page_id", pageID}
}

func OptionsOf(fieldID int) Scope {
	return Scope{"field_opt", "field_id", fieldID}
}

func (s Scope) String() string {
	return fmt.Sprintf("%s[%s=%d]", s.table, s.parentCol, s.parentID)
}

// Querier is satisfied by *sql.DB and *sql.Tx. Ledger operations that
// must be atomic with an entity insert or delete take the caller's
// transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Next returns the position for a row about to be appended to the
// scope: sibling count + 1. Run it in the same transaction as the
// insert, or a concurrent append may be handed the same slot.
func Next(ctx context.Context, q Querier, scope Scope) (int, error) {
	var count int
	err := q.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE %s = ?`, scope.table, scope.parentCol),
		scope.parentID,
	).Scan(&count)
	if err != nil {
		return 0, err
	}
	return count + 1, nil
}

// Compact closes the gap left by a deleted row: every sibling past the
// removed position shifts down one, restoring 1..N-1.
func Compact(ctx context.Context, q Querier, scope Scope, removed int) error {
	_, err := q.ExecContext(ctx,
		fmt.Sprintf(`
		UPDATE %s SET position = position - 1
		WHERE %s = ? AND position > ?`, scope.table, scope.parentCol),
		scope.parentID,
		removed,
	)
	return err
}

// ApplyOrder walks ids in the order the client submitted and assigns
// sequential positions 1..K to the ones that belong to the scope, in
// one batch. Ids outside the scope are silently skipped without
// consuming a slot: the list may be a stale client-side snapshot, and
// a foreign id must not punch a hole in the sequence. A duplicated id
// keeps its last occurrence. Siblings missing from the list keep
// their old position, which may leave the scope non-contiguous until
// the client resubmits a full order.
func ApplyOrder(ctx context.Context, q Querier, scope Scope, ids []int) error {
	if len(ids) == 0 {
		return nil
	}

	members, err := memberIDs(ctx, q, scope)
	if err != nil {
		return err
	}

	last := make(map[int]int, len(ids))
	for i, id := range ids {
		if members[id] {
			last[id] = i
		}
	}

	query := fmt.Sprintf(`
		UPDATE %s SET position = ?
		WHERE id = ? AND %s = ?`, scope.table, scope.parentCol)
	pos := 0
	for i, id := range ids {
		if !members[id] || last[id] != i {
			continue
		}
		pos++
		if _, err := q.ExecContext(ctx, query, pos, id, scope.parentID); err != nil {
			return err
		}
	}
	return nil
}

func memberIDs(ctx context.Context, q Querier, scope Scope) (map[int]bool, error) {
	rows, err := q.QueryContext(ctx,
		fmt.Sprintf(`SELECT id FROM %s WHERE %s = ?`, scope.table, scope.parentCol),
		scope.parentID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	members := map[int]bool{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		members[id] = true
	}
	return members, rows.Err()
}
