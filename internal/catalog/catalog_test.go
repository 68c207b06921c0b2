package catalog

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const sample = `[
  {"id":1,"title":"Phone","category":"Tech","rating":5,"image":"p.jpg","snippet":"fast","content":"line one\nline two","pros":["a"],"cons":["b"]},
  {"id":2,"title":"Tablet","category":"Tech","rating":3,"image":"t.jpg"},
  {"id":3,"title":"Kettle","category":"Home","rating":4.5,"image":"k.jpg"}
]`

type stubSource struct {
	data []byte
	err  error
}

func (s stubSource) Name() string                          { return "stub" }
func (s stubSource) Fetch(context.Context) ([]byte, error) { return s.data, s.err }

func TestLoadPreservesOrderAndLookup(t *testing.T) {
	snap := Load(context.Background(), stubSource{data: []byte(sample)}, zap.NewNop())

	all := snap.All()
	require.Len(t, all, 3)
	assert.Equal(t, []int{1, 2, 3}, []int{all[0].ID, all[1].ID, all[2].ID})

	r, ok := snap.FindByID(2)
	require.True(t, ok)
	assert.Equal(t, "Tablet", r.Title)
	assert.Empty(t, r.Snippet)

	_, ok = snap.FindByID(99)
	assert.False(t, ok)

	// non-integer rating decodes to 0
	r, _ = snap.FindByID(3)
	assert.EqualValues(t, 0, r.Rating)

	assert.Len(t, snap.Version(), 64)
	assert.Equal(t, []byte(sample), snap.Raw())
}

func TestAllReturnsCopy(t *testing.T) {
	snap := Load(context.Background(), stubSource{data: []byte(sample)}, nil)
	all := snap.All()
	all[0].Title = "mutated"

	r, _ := snap.FindByID(1)
	assert.Equal(t, "Phone", r.Title)
}

func TestLoadFailuresYieldEmptySnapshot(t *testing.T) {
	tests := []struct {
		name string
		src  stubSource
	}{
		{"fetch error", stubSource{err: errors.New("boom")}},
		{"malformed", stubSource{data: []byte(`[{"id":1,`)}},
		{"object payload", stubSource{data: []byte(`{"id":1}`)}},
		{"null payload", stubSource{data: []byte(`null`)}},
		{"array of scalars", stubSource{data: []byte(`[1,2,3]`)}},
		{"wrong field type", stubSource{data: []byte(`[{"id":"one"}]`)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := Load(context.Background(), tt.src, zap.NewNop())
			require.NotNil(t, snap)
			assert.Equal(t, 0, snap.Len())
			assert.Empty(t, snap.All())
			assert.Empty(t, snap.Version())
			_, ok := snap.FindByID(1)
			assert.False(t, ok)
		})
	}
}

func TestParseEmptyArray(t *testing.T) {
	reviews, err := Parse([]byte(`[]`))
	require.NoError(t, err)
	assert.Empty(t, reviews)
}

func TestParseRejectsNonArray(t *testing.T) {
	_, err := Parse([]byte(`"hello"`))
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestDuplicateIDsFirstWins(t *testing.T) {
	reviews, err := Parse([]byte(`[{"id":7,"title":"first"},{"id":7,"title":"second"}]`))
	require.NoError(t, err)

	snap := NewSnapshot(reviews)
	r, ok := snap.FindByID(7)
	require.True(t, ok)
	assert.Equal(t, "first", r.Title)
	assert.Equal(t, 2, snap.Len())
}

func TestNilSnapshotIsEmpty(t *testing.T) {
	var snap *Snapshot
	assert.Equal(t, 0, snap.Len())
	assert.Nil(t, snap.All())
	_, ok := snap.FindByID(1)
	assert.False(t, ok)
}

func TestHTTPSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/reviews.json" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sample))
	}))
	defer srv.Close()

	ctx := context.Background()
	src, err := NewSource(ctx, srv.URL+"/reviews.json", S3Options{})
	require.NoError(t, err)
	assert.Equal(t, 3, Load(ctx, src, nil).Len())

	missing, err := NewSource(ctx, srv.URL+"/missing.json", S3Options{})
	require.NoError(t, err)
	_, err = missing.Fetch(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 404")
	assert.Equal(t, 0, Load(ctx, missing, nil).Len())
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reviews.json")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o644))

	ctx := context.Background()
	for _, uri := range []string{path, "file://" + path} {
		src, err := NewSource(ctx, uri, S3Options{})
		require.NoError(t, err)
		assert.IsType(t, FileSource{}, src)
		assert.Equal(t, 3, Load(ctx, src, nil).Len())
	}

	src, err := NewSource(ctx, filepath.Join(t.TempDir(), "missing.json"), S3Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, Load(ctx, src, nil).Len())
}

func TestNewSourceErrors(t *testing.T) {
	ctx := context.Background()

	_, err := NewSource(ctx, "", S3Options{})
	assert.Error(t, err)

	_, err = NewSource(ctx, "ftp://host/reviews.json", S3Options{})
	assert.Error(t, err)

	_, err = NewSource(ctx, "s3://bucket-only", S3Options{})
	assert.Error(t, err)
}

func TestNewSourceS3(t *testing.T) {
	t.Setenv("AWS_ACCESS_KEY_ID", "test")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "test")

	src, err := NewSource(context.Background(), "s3://reviews/data/reviews.json", S3Options{
		Endpoint:  "http://127.0.0.1:9000",
		PathStyle: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "s3://reviews/data/reviews.json", src.Name())
}
