package store

import (
	"context"
	"os"
	"testing"

	"github.com/gclaussn/go-procdoc/model"
	"github.com/go-test/deep"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lookUpDatabaseUrl() string {
	return os.Getenv("PROCDOC_TEST_DATABASE_URL")
}

func lookUpRedisUrl() string {
	return os.Getenv("PROCDOC_TEST_REDIS_URL")
}

func mustCreateDocument(t *testing.T, title string) *model.Document {
	d := model.New()
	d.SetMetadata(model.Metadata{Title: title, Author: "Building authority", Tags: []string{"permit"}})

	start := model.NewElement(model.ElementStart, "Start")
	counter := model.NewElement(model.ElementCounter, "Attempts")
	end := model.NewElement(model.ElementEnd, "End")

	for _, e := range []*model.Element{start, counter, end} {
		if err := d.AddElement(e); err != nil {
			t.Fatalf("failed to add element: %v", err)
		}
	}

	for _, ids := range [][2]string{{start.Id, counter.Id}, {counter.Id, end.Id}} {
		c, err := model.NewConnection(ids[0], ids[1], model.ConnectionSequence)
		if err != nil {
			t.Fatalf("failed to create connection: %v", err)
		}
		if err := d.AddConnection(c); err != nil {
			t.Fatalf("failed to add connection: %v", err)
		}
	}

	return d
}

// testStore tests the behavior, all store implementations have in common.
func testStore(t *testing.T, s Store) {
	assert := assert.New(t)

	ctx := context.Background()

	t.Run("save and load", func(t *testing.T) {
		// given
		d := mustCreateDocument(t, "Building permit")
		assert.True(d.IsModified())

		// when
		err := s.Save(ctx, "building-permit", d)

		// then
		require.NoError(t, err)
		assert.False(d.IsModified())

		loaded, err := s.Load(ctx, "building-permit")
		require.NoError(t, err)
		assert.False(loaded.IsModified())
		assert.Equal("Building permit", loaded.Metadata().Title)

		if diff := deep.Equal(loaded.Elements(), d.Elements()); diff != nil {
			t.Errorf("elements differ: %v", diff)
		}
		if diff := deep.Equal(loaded.Connections(), d.Connections()); diff != nil {
			t.Errorf("connections differ: %v", diff)
		}
	})

	t.Run("save replaces document", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "replaced", mustCreateDocument(t, "Old")))
		require.NoError(t, s.Save(ctx, "replaced", mustCreateDocument(t, "New")))

		loaded, err := s.Load(ctx, "replaced")
		require.NoError(t, err)
		assert.Equal("New", loaded.Metadata().Title)
	})

	t.Run("list", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, "a.v1", mustCreateDocument(t, "A")))

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal([]string{"a.v1", "building-permit", "replaced"}, names)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, s.Delete(ctx, "a.v1"))

		_, err := s.Load(ctx, "a.v1")
		assert.ErrorIs(err, model.ErrNotFound)

		names, err := s.List(ctx)
		require.NoError(t, err)
		assert.Equal([]string{"building-permit", "replaced"}, names)
	})

	t.Run("returns error when document not exists", func(t *testing.T) {
		_, err := s.Load(ctx, "not-existing")
		assert.ErrorIs(err, model.ErrNotFound)

		err = s.Delete(ctx, "not-existing")
		assert.ErrorIs(err, model.ErrNotFound)
	})

	t.Run("returns error when name is invalid", func(t *testing.T) {
		for _, name := range []string{"", "a/b", "../a", "a b"} {
			assert.Error(s.Save(ctx, name, model.New()), name)

			_, err := s.Load(ctx, name)
			assert.Error(err, name)
			assert.NotErrorIs(err, model.ErrNotFound, name)
		}
	})
}
