package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/dgallion1/hearinglist/internal/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSaveAndReadHearing(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.SaveDocument(ctx, DocumentRecord{
		HearingID: "1234", Source: "hearings/1234/hoeringsliste.pdf", Method: "text",
		Candidates: 3, Entities: []string{"Dansk Industri", "KL"},
	})
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, DocumentRecord{HearingID: "99", Source: "b.pdf", Method: "table", Entities: []string{"KL"}})
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, DocumentRecord{HearingID: "1234", Source: "c.pdf", Method: "table", Entities: []string{"KL", "Danske Regioner"}})
	require.NoError(t, err)

	got, err := s.HearingEntities(ctx, "1234")
	require.NoError(t, err)
	assert.Equal(t, []string{"Dansk Industri", "KL", "KL", "Danske Regioner"}, got)

	hearings, err := s.Hearings(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"1234", "99"}, hearings)

	empty, err := s.HearingEntities(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestEntityCounts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	for _, ents := range [][]string{{"B", "A", "KL"}, {"KL", "C"}, {"KL", "A"}} {
		_, err := s.SaveDocument(ctx, DocumentRecord{HearingID: "1", Source: "x.pdf", Method: "text", Entities: ents})
		require.NoError(t, err)
	}

	counts, err := s.EntityCounts(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, []report.Count{{Entity: "KL", Count: 3}, {Entity: "A", Count: 2}, {Entity: "B", Count: 1}, {Entity: "C", Count: 1}}, counts)

	top, err := s.EntityCounts(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []report.Count{{Entity: "KL", Count: 3}, {Entity: "A", Count: 2}}, top)
}

func TestHasDocument(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	_, err := s.SaveDocument(ctx, DocumentRecord{HearingID: "7", Source: "a.pdf", Method: "none", Warning: "empty document", ContentHash: "abc"})
	require.NoError(t, err)

	ok, err := s.HasDocument(ctx, "7", "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.HasDocument(ctx, "8", "abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOpenReappliesSchema(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "re.db")
	s, err := Open(ctx, path, nil)
	require.NoError(t, err)
	_, err = s.SaveDocument(ctx, DocumentRecord{HearingID: "1", Source: "a", Method: "text", Entities: []string{"KL"}})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path, nil)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.HearingEntities(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, []string{"KL"}, got)
}
