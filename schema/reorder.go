package schema

import (
	"context"
	"database/sql"

	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/position"
)

// ScopeKind names the sibling sets a reorder request may target.
type ScopeKind string

const (
	ScopeFolders ScopeKind = "folders"
	ScopeForms   ScopeKind = "forms"
	ScopePages   ScopeKind = "pages"
	ScopeFields  ScopeKind = "fields"
	ScopeOptions ScopeKind = "options"
)

// Reorder assigns new positions to the siblings of parentID in the
// order the client submitted. Ids that do not belong to the scope are
// ignored, so a stale snapshot cannot corrupt it. Concurrent reorders
// of the same scope are last-writer-wins.
func (c *Catalog) Reorder(ctx context.Context, kind ScopeKind, parentID int, ids []int) error {
	var scope position.Scope
	var checkParent func(ctx context.Context, tx *sql.Tx) error

	switch kind {
	case ScopeFolders:
		scope = position.FoldersOf(parentID)
		checkParent = func(ctx context.Context, tx *sql.Tx) error {
			return exists(ctx, tx, "user", parentID)
		}
	case ScopeForms:
		scope = position.FormsOf(parentID)
		checkParent = func(ctx context.Context, tx *sql.Tx) error {
			return projectExists(ctx, tx, parentID)
		}
	case ScopePages:
		scope = position.PagesOf(parentID)
		checkParent = func(ctx context.Context, tx *sql.Tx) error {
			return exists(ctx, tx, "form", parentID)
		}
	case ScopeFields:
		scope = position.FieldsOf(parentID)
		checkParent = func(ctx context.Context, tx *sql.Tx) error {
			return exists(ctx, tx, "page", parentID)
		}
	case ScopeOptions:
		scope = position.OptionsOf(parentID)
		checkParent = func(ctx context.Context, tx *sql.Tx) error {
			return exists(ctx, tx, "field", parentID)
		}
	default:
		return model.Invalid("scope", "is not reorderable")
	}

	return position.InTx(ctx, c.db, func(tx *sql.Tx) error {
		if err := checkParent(ctx, tx); err != nil {
			return err
		}
		return position.ApplyOrder(ctx, tx, scope, ids)
	})
}
