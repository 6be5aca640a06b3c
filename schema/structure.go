package schema

import (
	"context"
	"database/sql"
	"errors"

	"github.com/formdeck/formdeck/model"
)

// FormStructure loads a form with its pages, fields and options, each
// level ordered by position. Used by edit screens, public rendering
// and submission validation.
func (c *Catalog) FormStructure(ctx context.Context, formID int) (*model.Form, error) {
	form := &model.Form{ID: formID}
	err := c.db.QueryRowContext(ctx,
		`SELECT project_id, name, position FROM form WHERE id = ?`, formID,
	).Scan(&form.ProjectID, &form.Name, &form.Position)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundError{Entity: "form", ID: formID}
	}
	if err != nil {
		return nil, err
	}

	pages, err := c.Pages(ctx, formID)
	if err != nil {
		return nil, err
	}
	for i := range pages {
		pages[i].Fields, err = c.Fields(ctx, pages[i].ID)
		if err != nil {
			return nil, err
		}
	}
	form.Pages = pages

	return form, nil
}

func (c *Catalog) Forms(ctx context.Context, projectID int) ([]model.Form, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, position FROM form
		WHERE project_id = ?
		ORDER BY position`,
		projectID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	forms := []model.Form{}
	for rows.Next() {
		f := model.Form{ProjectID: projectID}
		if err := rows.Scan(&f.ID, &f.Name, &f.Position); err != nil {
			return nil, err
		}
		forms = append(forms, f)
	}
	return forms, rows.Err()
}

func (c *Catalog) Pages(ctx context.Context, formID int) ([]model.Page, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT id, name, position FROM page
		WHERE form_id = ?
		ORDER BY position`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		p := model.Page{FormID: formID}
		if err := rows.Scan(&p.ID, &p.Name, &p.Position); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

// Fields loads the fields of one page with their options.
func (c *Catalog) Fields(ctx context.Context, pageID int) ([]model.Field, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT
			f.id, f.field_type_id, f.name, f.position,
			o.id, o.name, o.position
		FROM field f
		LEFT OUTER JOIN field_opt o ON (f.id = o.field_id)
		WHERE f.page_id = ?
		ORDER BY f.position, o.position`,
		pageID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	fields := []model.Field{}
	for rows.Next() {
		f := model.Field{PageID: pageID}
		var optID sql.NullInt64
		var optName sql.NullString
		var optPos sql.NullInt64
		err = rows.Scan(&f.ID, &f.Type, &f.Name, &f.Position, &optID, &optName, &optPos)
		if err != nil {
			return nil, err
		}

		lastIdx := len(fields) - 1
		if lastIdx < 0 || fields[lastIdx].ID != f.ID {
			fields = append(fields, f)
			lastIdx++
		}
		if optID.Valid {
			fields[lastIdx].Options = append(fields[lastIdx].Options, model.FieldOption{
				ID:       int(optID.Int64),
				FieldID:  f.ID,
				Name:     optName.String,
				Position: int(optPos.Int64),
			})
		}
	}
	return fields, rows.Err()
}
