package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"reviewhub/internal/profile"
	"reviewhub/pkg/models"
)

func TestCSVRoundTrip(t *testing.T) {
	reviews := []models.Review{
		{ID: 1, Title: "Pixel, Phone", Category: "Phones", Rating: 5, Image: "p.jpg",
			Snippet: `Says "wow"`, Content: "Line one\nLine two", Pros: []string{"camera", "battery"}, Cons: []string{"price"}},
		{ID: 2, Title: "Buds", Category: "Audio", Rating: 3},
	}

	var buf bytes.Buffer
	require.NoError(t, exportCSV(&buf, reviews))
	assert.True(t, strings.HasPrefix(buf.String(), "id,title,category,rating,image,snippet,content,pros,cons\n"))

	got, err := importCSV(&buf)
	require.NoError(t, err)
	assert.Equal(t, reviews, got)
}

func TestImportCSVTolerance(t *testing.T) {
	in := "Title,ID,Rating\n" +
		"Kettle,7,4\n" +
		",,\n" +
		"No Rating,8\n"
	got, err := importCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, models.Review{ID: 7, Title: "Kettle", Rating: 4}, got[0])
	assert.Equal(t, models.Review{ID: 8, Title: "No Rating"}, got[1])
}

func TestImportCSVErrors(t *testing.T) {
	_, err := importCSV(strings.NewReader("title\nx\n"))
	assert.ErrorContains(t, err, `no "id" column`)

	_, err = importCSV(strings.NewReader("id,rating\nabc,1\n"))
	assert.ErrorContains(t, err, "line 2: parse id")

	_, err = importCSV(strings.NewReader("id,rating\n1,five\n"))
	assert.ErrorContains(t, err, "parse rating")
}

func TestValidateReviews(t *testing.T) {
	problems := validateReviews([]models.Review{
		{ID: 1, Title: "A", Category: "X", Rating: 5},
		{ID: 1, Title: "", Category: "X", Rating: 7},
		{ID: 2, Title: "B", Category: "", Rating: -1},
	})
	assert.Len(t, problems, 5)
	assert.Contains(t, problems[0], "duplicate id")

	assert.Empty(t, validateReviews([]models.Review{{ID: 1, Title: "A", Category: "X"}}))
}

func TestDoJSONKeepsProfileCookie(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ck, err := r.Cookie(profile.CookieName); err == nil {
			seen = append(seen, ck.Value)
		} else {
			http.SetCookie(w, &http.Cookie{Name: profile.CookieName, Value: "minted"})
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"theme":"light","icon":"☀️"}`))
	}))
	defer srv.Close()

	c := &apiClient{http: srv.Client(), baseURL: srv.URL, profilePath: filepath.Join(t.TempDir(), "profile.json")}

	var out map[string]string
	require.NoError(t, c.doJSON(context.Background(), http.MethodGet, "/api/theme", nil, &out))
	assert.Equal(t, "light", out["theme"])

	cookie, err := readProfile(c.profilePath)
	require.NoError(t, err)
	assert.Equal(t, "minted", cookie)

	require.NoError(t, c.doJSON(context.Background(), http.MethodGet, "/api/theme", nil, nil))
	assert.Equal(t, []string{"minted"}, seen)
}

func TestDoJSONReportsErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Review not found."}`))
	}))
	defer srv.Close()

	c := &apiClient{http: srv.Client(), baseURL: srv.URL, profilePath: filepath.Join(t.TempDir(), "p.json")}
	err := c.doJSON(context.Background(), http.MethodGet, "/api/reviews/99", nil, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Review not found.")
}

func TestWebsocketURL(t *testing.T) {
	u, err := websocketURL("https://reviews.example:8443", "/api/reviews/1/panel/ws")
	require.NoError(t, err)
	assert.Equal(t, "wss://reviews.example:8443/api/reviews/1/panel/ws", u)

	u, err = websocketURL("http://localhost:8080", "/x")
	require.NoError(t, err)
	assert.Equal(t, "ws://localhost:8080/x", u)
}

func TestCatalogCommandsEndToEnd(t *testing.T) {
	dir := t.TempDir()
	jsonPath := filepath.Join(dir, "reviews.json")
	csvPath := filepath.Join(dir, "reviews.csv")
	backPath := filepath.Join(dir, "back.json")
	require.NoError(t, os.WriteFile(jsonPath,
		[]byte(`[{"id":1,"title":"Phone","category":"Phones","rating":4,"pros":["fast"]}]`), 0o644))

	run := func(args ...string) (string, error) {
		var out bytes.Buffer
		rootCmd.SetOut(&out)
		rootCmd.SetErr(&out)
		rootCmd.SetArgs(args)
		err := rootCmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	out, err := run("catalog", "export-csv", "--source", jsonPath, "--out", csvPath)
	require.NoError(t, err)
	assert.Contains(t, out, "exported 1 reviews")

	out, err = run("catalog", "import-csv", "--in", csvPath, "--out", backPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported 1 reviews")

	out, err = run("catalog", "validate", "--source", backPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 reviews look good")

	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"oops":true}`), 0o644))
	_, err = run("catalog", "validate", "--source", jsonPath)
	assert.Error(t, err)
}

func TestWaitForStop(t *testing.T) {
	logger := zap.NewNop()

	sigCh := make(chan os.Signal, 2)
	errCh := make(chan error, 1)
	reloads := 0
	sigCh <- syscall.SIGHUP
	sigCh <- syscall.SIGTERM
	assert.NoError(t, waitForStop(sigCh, errCh, func() { reloads++ }, logger))
	assert.Equal(t, 1, reloads)

	listenErr := errors.New("listen tcp :8080: bind: address already in use")
	errCh <- listenErr
	err := waitForStop(make(chan os.Signal), errCh, func() {}, logger)
	assert.ErrorIs(t, err, listenErr)
}
