package position_test

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync"
	"testing"

	"github.com/formdeck/formdeck/config"
	"github.com/formdeck/formdeck/database"
	"github.com/formdeck/formdeck/position"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := database.Open(config.Config{
		DBUrl: filepath.Join(t.TempDir(), "test.sqlite"),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return db
}

func seedProject(t *testing.T, db *sql.DB) (projectID int) {
	t.Helper()

	err := db.QueryRow(`INSERT INTO project (name) VALUES ('test') RETURNING id`).
		Scan(&projectID)
	require.NoError(t, err)
	return projectID
}

// appendForm inserts a form through the ledger, count and insert in one
// transaction.
func appendForm(t *testing.T, db *sql.DB, projectID int, name string) (id int) {
	t.Helper()

	err := position.InTx(context.Background(), db, func(tx *sql.Tx) error {
		pos, err := position.Next(context.Background(), tx, position.FormsOf(projectID))
		if err != nil {
			return err
		}
		return tx.QueryRow(`
			INSERT INTO form (project_id, name, position) VALUES (?, ?, ?)
			RETURNING id`,
			projectID, name, pos,
		).Scan(&id)
	})
	require.NoError(t, err)
	return id
}

// formPositions returns id -> position for the project's forms.
func formPositions(t *testing.T, db *sql.DB, projectID int) map[int]int {
	t.Helper()

	rows, err := db.Query(`SELECT id, position FROM form WHERE project_id = ?`, projectID)
	require.NoError(t, err)
	defer rows.Close()

	positions := map[int]int{}
	for rows.Next() {
		var id, pos int
		require.NoError(t, rows.Scan(&id, &pos))
		positions[id] = pos
	}
	require.NoError(t, rows.Err())
	return positions
}

// assertDense checks the ledger invariant: positions are exactly 1..N.
func assertDense(t *testing.T, positions map[int]int) {
	t.Helper()

	seen := map[int]bool{}
	for id, pos := range positions {
		assert.GreaterOrEqual(t, pos, 1, "form %d", id)
		assert.LessOrEqual(t, pos, len(positions), "form %d", id)
		assert.False(t, seen[pos], "duplicate position %d", pos)
		seen[pos] = true
	}
}

func TestNextAppendsDensely(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	a := appendForm(t, db, projectID, "a")
	b := appendForm(t, db, projectID, "b")
	c := appendForm(t, db, projectID, "c")

	positions := formPositions(t, db, projectID)
	assert.Equal(t, map[int]int{a: 1, b: 2, c: 3}, positions)
	assertDense(t, positions)
}

func TestCompactClosesGap(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	a := appendForm(t, db, projectID, "a")
	b := appendForm(t, db, projectID, "b")
	c := appendForm(t, db, projectID, "c")

	ctx := context.Background()
	err := position.InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM form WHERE id = ?`, b); err != nil {
			return err
		}
		return position.Compact(ctx, tx, position.FormsOf(projectID), 2)
	})
	require.NoError(t, err)

	positions := formPositions(t, db, projectID)
	assert.Equal(t, map[int]int{a: 1, c: 2}, positions)
	assertDense(t, positions)
}

func TestAppendThenRemoveRestoresPositions(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	a := appendForm(t, db, projectID, "a")
	b := appendForm(t, db, projectID, "b")
	before := formPositions(t, db, projectID)

	c := appendForm(t, db, projectID, "c")

	ctx := context.Background()
	err := position.InTx(ctx, db, func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM form WHERE id = ?`, c); err != nil {
			return err
		}
		return position.Compact(ctx, tx, position.FormsOf(projectID), 3)
	})
	require.NoError(t, err)

	assert.Equal(t, before, formPositions(t, db, projectID))
	assert.Equal(t, map[int]int{a: 1, b: 2}, before)
}

func TestApplyOrderPermutation(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	a := appendForm(t, db, projectID, "a")
	b := appendForm(t, db, projectID, "b")
	c := appendForm(t, db, projectID, "c")

	ctx := context.Background()
	err := position.InTx(ctx, db, func(tx *sql.Tx) error {
		return position.ApplyOrder(ctx, tx, position.FormsOf(projectID), []int{c, a, b})
	})
	require.NoError(t, err)

	positions := formPositions(t, db, projectID)
	assert.Equal(t, map[int]int{c: 1, a: 2, b: 3}, positions)
	assertDense(t, positions)
}

func TestApplyOrderEmptyListIsNoop(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	appendForm(t, db, projectID, "a")
	appendForm(t, db, projectID, "b")
	before := formPositions(t, db, projectID)

	ctx := context.Background()
	err := position.InTx(ctx, db, func(tx *sql.Tx) error {
		return position.ApplyOrder(ctx, tx, position.FormsOf(projectID), nil)
	})
	require.NoError(t, err)

	assert.Equal(t, before, formPositions(t, db, projectID))
}

func TestApplyOrderIgnoresForeignIds(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)
	otherProject := seedProject(t, db)

	a := appendForm(t, db, projectID, "a")
	b := appendForm(t, db, projectID, "b")
	foreign := appendForm(t, db, otherProject, "x")

	ctx := context.Background()
	err := position.InTx(ctx, db, func(tx *sql.Tx) error {
		return position.ApplyOrder(ctx, tx, position.FormsOf(projectID), []int{b, foreign, a})
	})
	require.NoError(t, err)

	// the foreign id is skipped without consuming a slot, so the
	// scope stays dense
	positions := formPositions(t, db, projectID)
	assert.Equal(t, map[int]int{b: 1, a: 2}, positions)
	assertDense(t, positions)
	// the other scope was never touched
	assert.Equal(t, map[int]int{foreign: 1}, formPositions(t, db, otherProject))
}

func TestApplyOrderLeavesUnlistedSiblingsAlone(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	a := appendForm(t, db, projectID, "a")
	b := appendForm(t, db, projectID, "b")
	c := appendForm(t, db, projectID, "c")

	// stale snapshot: the client never saw c
	ctx := context.Background()
	err := position.InTx(ctx, db, func(tx *sql.Tx) error {
		return position.ApplyOrder(ctx, tx, position.FormsOf(projectID), []int{b, a})
	})
	require.NoError(t, err)

	positions := formPositions(t, db, projectID)
	assert.Equal(t, 1, positions[b])
	assert.Equal(t, 2, positions[a])
	assert.Equal(t, 3, positions[c])
}

func TestApplyOrderDuplicateIdLastWins(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	a := appendForm(t, db, projectID, "a")
	b := appendForm(t, db, projectID, "b")

	ctx := context.Background()
	err := position.InTx(ctx, db, func(tx *sql.Tx) error {
		return position.ApplyOrder(ctx, tx, position.FormsOf(projectID), []int{a, b, a})
	})
	require.NoError(t, err)

	// a keeps its last occurrence, after b, and no slot is wasted on
	// the first one
	positions := formPositions(t, db, projectID)
	assert.Equal(t, map[int]int{b: 1, a: 2}, positions)
	assertDense(t, positions)
}

func TestConcurrentAppendsGetDistinctPositions(t *testing.T) {
	db := openTestDB(t)
	projectID := seedProject(t, db)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := position.InTx(context.Background(), db, func(tx *sql.Tx) error {
				pos, err := position.Next(context.Background(), tx, position.FormsOf(projectID))
				if err != nil {
					return err
				}
				_, err = tx.Exec(`
					INSERT INTO form (project_id, name, position) VALUES (?, ?, ?)`,
					projectID, "concurrent", pos)
				return err
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	require.NoError(t, errs[0])
	require.NoError(t, errs[1])

	positions := formPositions(t, db, projectID)
	require.Len(t, positions, 2)
	assertDense(t, positions)
}
