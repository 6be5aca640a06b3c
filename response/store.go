// Package response persists records (one response session against a
// form) and their values, one per field. The field schema may change
// underneath stored values: content is kept as opaque text and never
// revalidated against the field's current type.
package response

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"time"

	"github.com/formdeck/formdeck/database"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/position"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db}
}

// CreateRecord opens a response session against a form. userID and
// surveyID are optional: anonymous respondents and direct (non-survey)
// submissions leave them nil. No values exist yet.
func (s *Store) CreateRecord(ctx context.Context, formID int, userID, surveyID *int) (*model.Record, error) {
	record := &model.Record{
		FormID:   formID,
		UserID:   userID,
		SurveyID: surveyID,
		Time:     time.Now(),
	}

	err := position.InTx(ctx, s.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM form WHERE id = ?`, formID).Scan(&one)
		if errors.Is(err, sql.ErrNoRows) {
			return model.NotFoundError{Entity: "form", ID: formID}
		}
		if err != nil {
			return err
		}

		if surveyID != nil {
			err = tx.QueryRowContext(ctx, `SELECT 1 FROM survey WHERE id = ?`, *surveyID).Scan(&one)
			if errors.Is(err, sql.ErrNoRows) {
				return model.NotFoundError{Entity: "survey", ID: *surveyID}
			}
			if err != nil {
				return err
			}
		}

		return tx.QueryRowContext(ctx, `
			INSERT INTO record (user_id, form_id, survey_id, time)
			VALUES (?, ?, ?, ?)
			RETURNING id`,
			userID, formID, surveyID, record.Time,
		).Scan(&record.ID)
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// SetValue stores the answer for one field of a record, overwriting a
// previous answer for the same field. The field must belong to the
// record's form.
func (s *Store) SetValue(ctx context.Context, recordID, fieldID int, content string) error {
	if err := validContent(content); err != nil {
		return err
	}

	return position.InTx(ctx, s.db, func(tx *sql.Tx) error {
		return s.setValue(ctx, tx, recordID, fieldID, content)
	})
}

// SetValues applies a batch of answers as one atomic unit: the first
// failing pair rolls back the whole batch.
func (s *Store) SetValues(ctx context.Context, recordID int, values map[int]string) error {
	for _, content := range values {
		if err := validContent(content); err != nil {
			return err
		}
	}

	// map iteration order is random; fixed order keeps two concurrent
	// batches on the same record from deadlocking and makes failures
	// reproducible
	fieldIDs := make([]int, 0, len(values))
	for fieldID := range values {
		fieldIDs = append(fieldIDs, fieldID)
	}
	sort.Ints(fieldIDs)

	return position.InTx(ctx, s.db, func(tx *sql.Tx) error {
		for _, fieldID := range fieldIDs {
			if err := s.setValue(ctx, tx, recordID, fieldID, values[fieldID]); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) setValue(ctx context.Context, tx *sql.Tx, recordID, fieldID int, content string) error {
	var formID int
	err := tx.QueryRowContext(ctx,
		`SELECT form_id FROM record WHERE id = ?`, recordID,
	).Scan(&formID)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotFoundError{Entity: "record", ID: recordID}
	}
	if err != nil {
		return err
	}

	// the field must hang off a page of the record's form; values must
	// not attach to another form's schema
	var one int
	err = tx.QueryRowContext(ctx, `
		SELECT 1 FROM field f
		INNER JOIN page p ON (f.page_id = p.id)
		WHERE f.id = ? AND p.form_id = ?`,
		fieldID, formID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return model.NotFoundError{Entity: "field", ID: fieldID}
	}
	if err != nil {
		return err
	}

	// upsert: at most one value row may ever exist per (record, field)
	_, err = tx.ExecContext(ctx, `
		INSERT INTO value (record_id, field_id, content) VALUES (?, ?, ?)
		ON CONFLICT (record_id, field_id) DO UPDATE SET content = excluded.content`,
		recordID, fieldID, content,
	)
	if database.IsConstraint(err) {
		return model.IntegrityError{Cause: err}
	}
	return err
}

// ValuesFor returns the submitted answers of a record keyed by field
// id. Fields without an answer are absent, not defaulted.
func (s *Store) ValuesFor(ctx context.Context, recordID int) (map[int]string, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM record WHERE id = ?`, recordID,
	).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFoundError{Entity: "record", ID: recordID}
	}
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT field_id, content FROM value WHERE record_id = ?`, recordID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	values := map[int]string{}
	for rows.Next() {
		var fieldID int
		var content string
		if err := rows.Scan(&fieldID, &content); err != nil {
			return nil, err
		}
		values[fieldID] = content
	}
	return values, rows.Err()
}

// Records returns every record of a form, newest last, each with its
// values. Used for display and export.
func (s *Store) Records(ctx context.Context, formID int) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			r.id, r.user_id, r.survey_id, r.time,
			v.field_id, v.content
		FROM record r
		LEFT OUTER JOIN value v ON (r.id = v.record_id)
		WHERE r.form_id = ?
		ORDER BY r.id`,
		formID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := []model.Record{}
	for rows.Next() {
		r := model.Record{FormID: formID}
		var userID, surveyID sql.NullInt64
		var fieldID sql.NullInt64
		var content sql.NullString
		err = rows.Scan(&r.ID, &userID, &surveyID, &r.Time, &fieldID, &content)
		if err != nil {
			return nil, err
		}
		if userID.Valid {
			id := int(userID.Int64)
			r.UserID = &id
		}
		if surveyID.Valid {
			id := int(surveyID.Int64)
			r.SurveyID = &id
		}

		lastIdx := len(records) - 1
		if lastIdx < 0 || records[lastIdx].ID != r.ID {
			r.Values = map[int]string{}
			records = append(records, r)
			lastIdx++
		}
		if fieldID.Valid {
			records[lastIdx].Values[int(fieldID.Int64)] = content.String
		}
	}
	return records, rows.Err()
}

func validContent(content string) error {
	if len(content) > model.MaxContentLength {
		return model.Invalid("content", "is too long")
	}
	return nil
}
