package store_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/familes/familes-server/internal/store"
)

type testRecord struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

func newTestEntity(s *store.Store) *store.Entity[testRecord] {
	return store.NewEntity[testRecord](s, "test:").
		WithIndexTransform("code",
			func(r *testRecord) []string { return []string{strings.ToLower(r.Code)} },
			strings.ToLower,
		)
}

func TestEntity_CreateAndGet(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	entity := newTestEntity(s)

	rec := &testRecord{ID: "1", Name: "first", Code: "AAA"}
	require.NoError(t, entity.Create(ctx, "1", rec))

	got, err := entity.Get(ctx, "1")
	require.NoError(t, err)
	require.Equal(t, "first", got.Name)

	require.ErrorIs(t, entity.Create(ctx, "1", rec), store.ErrAlreadyExists)

	_, err = entity.Get(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestEntity_IndexTransformAppliesToWritesAndLookups(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "first", Code: "AbC"}))

	got, err := entity.GetByIndex(ctx, "code", "aBc")
	require.NoError(t, err)
	require.Equal(t, "1", got.ID)

	// A differently-cased duplicate collides.
	err = entity.Create(ctx, "2", &testRecord{ID: "2", Name: "second", Code: "ABC"})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	exists, err := entity.ExistsByIndex(ctx, "code", "abc")
	require.NoError(t, err)
	require.True(t, exists)
}

func TestEntity_UpdateMovesIndexKeys(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "first", Code: "AAA"}))
	require.NoError(t, entity.Update(ctx, "1", &testRecord{ID: "1", Name: "renamed", Code: "BBB"}))

	_, err := entity.GetByIndex(ctx, "code", "AAA")
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := entity.GetByIndex(ctx, "code", "BBB")
	require.NoError(t, err)
	require.Equal(t, "renamed", got.Name)

	// The freed value is usable by another record.
	require.NoError(t, entity.Create(ctx, "2", &testRecord{ID: "2", Name: "second", Code: "AAA"}))
}

func TestEntity_DeleteCleansIndexes(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	entity := newTestEntity(s)

	require.NoError(t, entity.Create(ctx, "1", &testRecord{ID: "1", Name: "first", Code: "AAA"}))
	require.NoError(t, entity.Delete(ctx, "1"))

	_, err := entity.Get(ctx, "1")
	require.ErrorIs(t, err, store.ErrNotFound)

	exists, err := entity.ExistsByIndex(ctx, "code", "AAA")
	require.NoError(t, err)
	require.False(t, exists)
}

func TestEntity_ListYieldsAll(t *testing.T) {
	s := setupTestStore(t)
	ctx := context.Background()
	entity := newTestEntity(s)

	for i := range 5 {
		id := fmt.Sprintf("%d", i)
		require.NoError(t, entity.Create(ctx, id, &testRecord{ID: id, Name: "rec" + id, Code: "C" + id}))
	}

	seen := 0
	for rec, err := range entity.List(ctx) {
		require.NoError(t, err)
		require.NotNil(t, rec)
		seen++
	}
	require.Equal(t, 5, seen)
}
