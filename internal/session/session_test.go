package session

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fyrsmithlabs/docchat/internal/models/modelstest"
	"github.com/fyrsmithlabs/docchat/internal/vectorstore"
)

func emptyIndex(t *testing.T) *vectorstore.Index {
	t.Helper()
	idx, err := vectorstore.Build(context.Background(), nil, &modelstest.Embedder{})
	require.NoError(t, err)
	return idx
}

func TestTurn_JSON(t *testing.T) {
	data, err := json.Marshal([]Turn{{Query: "q1", Answer: "a1"}, {Query: "q2", Answer: "a2"}})
	require.NoError(t, err)
	assert.JSONEq(t, `[["q1","a1"],["q2","a2"]]`, string(data))

	var turns []Turn
	require.NoError(t, json.Unmarshal(data, &turns))
	assert.Equal(t, []Turn{{"q1", "a1"}, {"q2", "a2"}}, turns)

	var bad Turn
	assert.Error(t, json.Unmarshal([]byte(`["only one"]`), &bad))
}

func TestSession_FilesAccumulate(t *testing.T) {
	s := newSession("abc")

	assert.Equal(t, 2, s.AddFiles("/up/1_a.pdf", "/up/2_b.pdf"))
	assert.Equal(t, 3, s.AddFiles("/up/3_c.pdf"))
	assert.Equal(t, []string{"/up/1_a.pdf", "/up/2_b.pdf", "/up/3_c.pdf"}, s.Files())

	// Returned slices are copies.
	files := s.Files()
	files[0] = "mutated"
	assert.Equal(t, "/up/1_a.pdf", s.Files()[0])
}

func TestSession_AppendTurn(t *testing.T) {
	s := newSession("abc")

	h1 := s.AppendTurn("q1", "a1")
	h2 := s.AppendTurn("q2", "a2")

	assert.Equal(t, []Turn{{"q1", "a1"}}, h1)
	assert.Equal(t, []Turn{{"q1", "a1"}, {"q2", "a2"}}, h2)
	assert.Equal(t, h2, s.History())
}

func TestSession_IndexOrBuild_CachesIndex(t *testing.T) {
	s := newSession("abc")
	s.AddFiles("/up/1_a.pdf")
	idx := emptyIndex(t)

	var seen []string
	got, built, err := s.IndexOrBuild(func(files []string) (*vectorstore.Index, error) {
		seen = files
		return idx, nil
	})
	require.NoError(t, err)
	assert.True(t, built)
	assert.Same(t, idx, got)
	assert.Equal(t, []string{"/up/1_a.pdf"}, seen)

	// New uploads never invalidate the cached index.
	s.AddFiles("/up/2_b.pdf")
	got, built, err = s.IndexOrBuild(func([]string) (*vectorstore.Index, error) {
		t.Fatal("index rebuilt")
		return nil, nil
	})
	require.NoError(t, err)
	assert.False(t, built)
	assert.Same(t, idx, got)
}

func TestSession_IndexOrBuild_FailureCachesNothing(t *testing.T) {
	s := newSession("abc")
	boom := errors.New("model unavailable")

	_, _, err := s.IndexOrBuild(func([]string) (*vectorstore.Index, error) { return nil, boom })
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, s.Index())

	idx := emptyIndex(t)
	got, built, err := s.IndexOrBuild(func([]string) (*vectorstore.Index, error) { return idx, nil })
	require.NoError(t, err)
	assert.True(t, built)
	assert.Same(t, idx, got)
}

func TestSession_IndexOrBuild_ConcurrentBuildsOnce(t *testing.T) {
	s := newSession("abc")
	idx := emptyIndex(t)

	var builds atomic.Int32
	build := func([]string) (*vectorstore.Index, error) {
		builds.Add(1)
		time.Sleep(20 * time.Millisecond)
		return idx, nil
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, _, err := s.IndexOrBuild(build)
			assert.NoError(t, err)
			assert.Same(t, idx, got)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), builds.Load())
}

func TestSession_UploadsNotBlockedByBuild(t *testing.T) {
	s := newSession("abc")
	idx := emptyIndex(t)

	started := make(chan struct{})
	release := make(chan struct{})
	go func() {
		_, _, _ = s.IndexOrBuild(func([]string) (*vectorstore.Index, error) {
			close(started)
			<-release
			return idx, nil
		})
	}()

	<-started
	done := make(chan struct{})
	go func() {
		s.AddFiles("/up/late.pdf")
		s.AppendTurn("q", "a")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("mutations blocked by index build")
	}
	close(release)
}

func TestSession_Snapshot(t *testing.T) {
	s := newSession("abc")
	s.AddFiles("/up/1234_a.pdf")
	s.AppendTurn("q", "a")

	snap := s.Snapshot()
	assert.Equal(t, "abc", snap.ID)
	assert.Equal(t, []string{"1234_a.pdf"}, snap.Files)
	assert.Equal(t, []Turn{{"q", "a"}}, snap.History)
	assert.False(t, snap.Indexed)

	_, _, err := s.IndexOrBuild(func([]string) (*vectorstore.Index, error) { return emptyIndex(t), nil })
	require.NoError(t, err)
	assert.True(t, s.Snapshot().Indexed)
}
