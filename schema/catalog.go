// Package schema owns the Form → Page → Field → FieldOption hierarchy:
// creation, renaming, deletion with cascades, and sibling ordering
// through the position ledger.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/position"
)

type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db}
}

func (c *Catalog) CreateForm(ctx context.Context, projectID int, name string) (*model.Form, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}

	form := &model.Form{ProjectID: projectID, Name: name}
	err = position.InTx(ctx, c.db, func(tx *sql.Tx) error {
		if err := projectExists(ctx, tx, projectID); err != nil {
			return err
		}

		pos, err := position.Next(ctx, tx, position.FormsOf(projectID))
		if err != nil {
			return err
		}
		form.Position = pos

		return tx.QueryRowContext(ctx, `
			INSERT INTO form (project_id, name, position) VALUES (?, ?, ?)
			RETURNING id`,
			projectID, name, pos,
		).Scan(&form.ID)
	})
	if err != nil {
		return nil, err
	}
	return form, nil
}

func (c *Catalog) CreatePage(ctx context.Context, formID int, name string) (*model.Page, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}

	page := &model.Page{FormID: formID, Name: name}
	err = position.InTx(ctx, c.db, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "form", formID); err != nil {
			return err
		}

		pos, err := position.Next(ctx, tx, position.PagesOf(formID))
		if err != nil {
			return err
		}
		page.Position = pos

		return tx.QueryRowContext(ctx, `
			INSERT INTO page (form_id, name, position) VALUES (?, ?, ?)
			RETURNING id`,
			formID, name, pos,
		).Scan(&page.ID)
	})
	if err != nil {
		return nil, err
	}
	return page, nil
}

func (c *Catalog) CreateField(ctx context.Context, pageID int, fieldType model.FieldType, name string, options []string) (*model.Field, error) {
	name, err := validName(name)
	if err != nil {
		return nil, err
	}
	if !fieldType.Valid() {
		return nil, model.Invalid("type", "is not a known field type")
	}
	options, err = validOptions(fieldType, options)
	if err != nil {
		return nil, err
	}

	field := &model.Field{PageID: pageID, Type: fieldType, Name: name}
	err = position.InTx(ctx, c.db, func(tx *sql.Tx) error {
		if err := exists(ctx, tx, "page", pageID); err != nil {
			return err
		}

		pos, err := position.Next(ctx, tx, position.FieldsOf(pageID))
		if err != nil {
			return err
		}
		field.Position = pos

		err = tx.QueryRowContext(ctx, `
			INSERT INTO field (page_id, field_type_id, name, position)
			VALUES (?, ?, ?, ?)
			RETURNING id`,
			pageID, int(fieldType), name, pos,
		).Scan(&field.ID)
		if err != nil {
			return err
		}

		for i, opt := range options {
			o := model.FieldOption{FieldID: field.ID, Name: opt, Position: i + 1}
			err = tx.QueryRowContext(ctx, `
				INSERT INTO field_opt (field_id, name, position) VALUES (?, ?, ?)
				RETURNING id`,
				field.ID, opt, i+1,
			).Scan(&o.ID)
			if err != nil {
				return err
			}
			field.Options = append(field.Options, o)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return field, nil
}

func (c *Catalog) RenameForm(ctx context.Context, formID int, name string) error {
	return c.rename(ctx, "form", formID, name)
}

func (c *Catalog) RenamePage(ctx context.Context, pageID int, name string) error {
	return c.rename(ctx, "page", pageID, name)
}

func (c *Catalog) RenameField(ctx context.Context, fieldID int, name string) error {
	return c.rename(ctx, "field", fieldID, name)
}

func (c *Catalog) rename(ctx context.Context, table string, id int, name string) error {
	name, err := validName(name)
	if err != nil {
		return err
	}

	res, err := c.db.ExecContext(ctx,
		`UPDATE `+table+` SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n < 1 {
		return model.NotFoundError{Entity: table, ID: id}
	}
	return nil
}

// DeleteForm removes a form and, through the schema's cascades, its
// pages, fields, options, records and values; then compacts sibling
// positions in the project.
func (c *Catalog) DeleteForm(ctx context.Context, formID int) error {
	return c.deleteOrdered(ctx, "form", formID, func(parentID int) position.Scope {
		return position.FormsOf(parentID)
	})
}

func (c *Catalog) DeletePage(ctx context.Context, pageID int) error {
	return c.deleteOrdered(ctx, "page", pageID, func(parentID int) position.Scope {
		return position.PagesOf(parentID)
	})
}

func (c *Catalog) DeleteField(ctx context.Context, fieldID int) error {
	return c.deleteOrdered(ctx, "field", fieldID, func(parentID int) position.Scope {
		return position.FieldsOf(parentID)
	})
}

func (c *Catalog) DeleteOption(ctx context.Context, optionID int) error {
	return c.deleteOrdered(ctx, "field_opt", optionID, func(parentID int) position.Scope {
		return position.OptionsOf(parentID)
	})
}

var parentColumn = map[string]string{
	"form":      "project_id",
	"page":      "form_id",
	"field":     "page_id",
	"field_opt": "field_id",
}

func (c *Catalog) deleteOrdered(ctx context.Context, table string, id int, scopeOf func(parentID int) position.Scope) error {
	return position.InTx(ctx, c.db, func(tx *sql.Tx) error {
		var parentID, pos int
		err := tx.QueryRowContext(ctx,
			`SELECT `+parentColumn[table]+`, position FROM `+table+` WHERE id = ?`, id,
		).Scan(&parentID, &pos)
		if errors.Is(err, sql.ErrNoRows) {
			return model.NotFoundError{Entity: table, ID: id}
		}
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
		if err != nil {
			return err
		}

		return position.Compact(ctx, tx, scopeOf(parentID), pos)
	})
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", model.Invalid("name", "is required")
	}
	if len(name) > model.MaxNameLength {
		return "", model.Invalid("name", "is too long")
	}
	return name, nil
}

func validOptions(fieldType model.FieldType, options []string) ([]string, error) {
	if !fieldType.RequiresOptions() {
		if len(options) > 0 {
			return nil, model.Invalid("options", "are not allowed for this field type")
		}
		return nil, nil
	}

	if len(options) == 0 {
		return nil, model.Invalid("options", "are required for this field type")
	}
	trimmed := make([]string, len(options))
	seen := make(map[string]bool, len(options))
	for i, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			return nil, model.Invalid("options", "must not be blank")
		}
		if len(opt) > model.MaxNameLength {
			return nil, model.Invalid("options", "are too long")
		}
		if seen[opt] {
			return nil, model.Invalid("options", "must be unique")
		}
		seen[opt] = true
		trimmed[i] = opt
	}
	return trimmed, nil
}

func exists(ctx context.Context, q position.Querier, table string, id int) error {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM `+table+` WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotFoundError{Entity: table, ID: id}
	}
	return err
}

// projectExists also filters soft-deleted projects: those keep their
// row but must behave as gone.
func projectExists(ctx context.Context, q position.Querier, id int) error {
	var one int
	err := q.QueryRowContext(ctx,
		`SELECT 1 FROM project WHERE id = ? AND NOT deleted`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotFoundError{Entity: "project", ID: id}
	}
	return err
}
