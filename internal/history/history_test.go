package history

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndList(t *testing.T) {
	s := openStore(t)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	for i, mode := range []string{"recursive", "single", "recursive"} {
		_, err := s.Record(ctx, Run{
			StartedAt:  base.Add(time.Duration(i) * time.Hour),
			FinishedAt: base.Add(time.Duration(i)*time.Hour + 3*time.Second),
			Mode:       mode,
			Engine:     "static",
			Seeds:      []string{"https://docs.example/Home"},
			MaxPages:   50,
			Pages:      i + 1,
			Written:    i,
		})
		require.NoError(t, err)
	}

	runs, err := s.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, 3, runs[0].Pages, "newest first")
	assert.Equal(t, "single", runs[1].Mode)
	assert.Equal(t, []string{"https://docs.example/Home"}, runs[0].Seeds)
	assert.Equal(t, base.Add(2*time.Hour), runs[0].StartedAt)
	assert.Equal(t, 3*time.Second, runs[0].Duration())

	all, err := s.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestReopenKeepsRuns(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	_, err = s.Record(context.Background(), Run{Mode: "single", Seeds: []string{"https://a.example"}, MaxPages: 1})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(dir)
	require.NoError(t, err)
	defer s.Close()
	runs, err := s.List(context.Background(), 10)
	require.NoError(t, err)
	assert.Len(t, runs, 1)
}

func TestWriteReport(t *testing.T) {
	var buf bytes.Buffer
	err := WriteReport(&buf, []Run{{
		ID:        7,
		StartedAt: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Mode:      "recursive",
		Seeds:     []string{"https://docs.example/Home"},
		MaxPages:  50,
		Pages:     12,
		Written:   10,
		Skipped:   2,
	}, {
		ID:    8,
		Mode:  "single",
		Seeds: []string{"https://x.example"},
		Error: "NAVIGATION: failed to load page",
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "# Crawl History")
	assert.Contains(t, out, "12/50")
	assert.Contains(t, out, "`https://docs.example/Home`")
	assert.Contains(t, out, "failed: NAVIGATION")
}

func TestWriteReportEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, nil))
	assert.Contains(t, buf.String(), "No crawls recorded yet.")
}
