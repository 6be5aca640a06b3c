package response_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"strings"
	"testing"

	"github.com/formdeck/formdeck/config"
	"github.com/formdeck/formdeck/database"
	"github.com/formdeck/formdeck/model"
	"github.com/formdeck/formdeck/response"
	"github.com/formdeck/formdeck/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *sql.DB
	store   *response.Store
	formID  int
	fieldID int
	otherID int // a field of another form
}

func setup(t *testing.T) fixture {
	t.Helper()

	db, err := database.Open(config.Config{
		DBUrl: filepath.Join(t.TempDir(), "test.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	var projectID int
	err = db.QueryRow(`INSERT INTO project (name) VALUES ('test') RETURNING id`).
		Scan(&projectID)
	require.NoError(t, err)

	catalog := schema.NewCatalog(db)
	ctx := context.Background()

	form, err := catalog.CreateForm(ctx, projectID, "Intake")
	require.NoError(t, err)
	page, err := catalog.CreatePage(ctx, form.ID, "Basics")
	require.NoError(t, err)
	field, err := catalog.CreateField(ctx, page.ID, model.TypeText, "Notes", nil)
	require.NoError(t, err)

	other, err := catalog.CreateForm(ctx, projectID, "Other")
	require.NoError(t, err)
	otherPage, err := catalog.CreatePage(ctx, other.ID, "Basics")
	require.NoError(t, err)
	otherField, err := catalog.CreateField(ctx, otherPage.ID, model.TypeText, "Notes", nil)
	require.NoError(t, err)

	return fixture{
		db:      db,
		store:   response.NewStore(db),
		formID:  form.ID,
		fieldID: field.ID,
		otherID: otherField.ID,
	}
}

func TestCreateRecord(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)
	assert.NotZero(t, record.ID)
	assert.Nil(t, record.UserID)
	assert.Nil(t, record.SurveyID)

	values, err := fx.store.ValuesFor(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestCreateRecordUnknownForm(t *testing.T) {
	fx := setup(t)

	_, err := fx.store.CreateRecord(context.Background(), 999, nil, nil)
	var notFound model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "form", notFound.Entity)
}

func TestCreateRecordUnknownSurvey(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	bogus := 999
	_, err := fx.store.CreateRecord(ctx, fx.formID, nil, &bogus)
	var notFound model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "survey", notFound.Entity)
	assert.Equal(t, bogus, notFound.ID)

	var surveyID int
	err = fx.db.QueryRow(`
		INSERT INTO survey (form_id, name) VALUES (?, 'wave one')
		RETURNING id`, fx.formID,
	).Scan(&surveyID)
	require.NoError(t, err)

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, &surveyID)
	require.NoError(t, err)
	require.NotNil(t, record.SurveyID)
	assert.Equal(t, surveyID, *record.SurveyID)
}

func TestSetValueUpserts(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)

	require.NoError(t, fx.store.SetValue(ctx, record.ID, fx.fieldID, "x"))
	require.NoError(t, fx.store.SetValue(ctx, record.ID, fx.fieldID, "y"))

	var n int
	err = fx.db.QueryRow(`
		SELECT COUNT(*) FROM value WHERE record_id = ? AND field_id = ?`,
		record.ID, fx.fieldID,
	).Scan(&n)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	values, err := fx.store.ValuesFor(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{fx.fieldID: "y"}, values)
}

func TestSetValueContentLength(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)

	require.NoError(t, fx.store.SetValue(ctx, record.ID, fx.fieldID, strings.Repeat("x", 4096)))

	err = fx.store.SetValue(ctx, record.ID, fx.fieldID, strings.Repeat("x", 4097))
	var validation model.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "content", validation.Field)
}

func TestSetValueForeignField(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)

	// the field exists but belongs to another form
	err = fx.store.SetValue(ctx, record.ID, fx.otherID, "x")
	var notFound model.NotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "field", notFound.Entity)

	err = fx.store.SetValue(ctx, 999, fx.fieldID, "x")
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "record", notFound.Entity)
}

func TestSetValuesIsAtomic(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)

	err = fx.store.SetValues(ctx, record.ID, map[int]string{
		fx.fieldID: "fine",
		fx.otherID: "wrong form",
	})
	var notFound model.NotFoundError
	require.ErrorAs(t, err, &notFound)

	// nothing from the failed batch stuck
	values, err := fx.store.ValuesFor(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, values)

	err = fx.store.SetValues(ctx, record.ID, map[int]string{fx.fieldID: "fine"})
	require.NoError(t, err)

	values, err = fx.store.ValuesFor(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{fx.fieldID: "fine"}, values)
}

func TestValuesSurviveFieldRetyping(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)
	require.NoError(t, fx.store.SetValue(ctx, record.ID, fx.fieldID, "not a number"))

	// retype the field; stored content is opaque text and stays put
	_, err = fx.db.Exec(`UPDATE field SET field_type_id = ? WHERE id = ?`,
		int(model.TypeNumber), fx.fieldID)
	require.NoError(t, err)

	values, err := fx.store.ValuesFor(ctx, record.ID)
	require.NoError(t, err)
	assert.Equal(t, map[int]string{fx.fieldID: "not a number"}, values)
}

func TestValuesCascadeWithField(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	record, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)
	require.NoError(t, fx.store.SetValue(ctx, record.ID, fx.fieldID, "x"))

	catalog := schema.NewCatalog(fx.db)
	require.NoError(t, catalog.DeleteField(ctx, fx.fieldID))

	values, err := fx.store.ValuesFor(ctx, record.ID)
	require.NoError(t, err)
	assert.Empty(t, values)
}

func TestRecords(t *testing.T) {
	fx := setup(t)
	ctx := context.Background()

	first, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)
	require.NoError(t, fx.store.SetValue(ctx, first.ID, fx.fieldID, "a"))

	second, err := fx.store.CreateRecord(ctx, fx.formID, nil, nil)
	require.NoError(t, err)

	records, err := fx.store.Records(ctx, fx.formID)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, map[int]string{fx.fieldID: "a"}, records[0].Values)
	assert.Equal(t, second.ID, records[1].ID)
	assert.Empty(t, records[1].Values)
}
