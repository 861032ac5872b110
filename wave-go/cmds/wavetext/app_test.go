package main

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
	"github.com/wavetext/wavetext/wave-golib/text"
	"github.com/wavetext/wavetext/wave-golib/wavelog"
)

func requireApp(t *testing.T) (*app, http.Handler) {
	dir := requireTempDir(t)
	require.NoError(t, requireModel(t).Freeze(filepath.Join(dir, "tiny.json")))
	require.NoError(t, ioutil.WriteFile(filepath.Join(dir, "broken.json"), []byte("not json"), 0644))

	unfitted, err := languagemodel.NewAdjacencyModel(languagemodel.DefaultOptions)
	require.NoError(t, err)
	require.NoError(t, unfitted.Freeze(filepath.Join(dir, "unfitted.json")))

	a, err := newApp(dir, 2, maxLength, wavelog.New(ioutil.Discard, "test"))
	require.NoError(t, err)
	return a, a.handler()
}

const maxLength = 64

func get(h http.Handler, url string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", url, nil))
	return rec
}

func TestGenerateEndpoint(t *testing.T) {
	a, h := requireApp(t)

	rec := get(h, "/generate?model=tiny.json&prompt=strong+people&length=8&seed=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp generateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "tiny.json", resp.Model)
	assert.Equal(t, "strong people", resp.Prompt)
	assert.EqualValues(t, 3, resp.Seed)
	assert.Len(t, text.WordTokenizer{}.Tokenize(resp.Text), 8)

	rec = get(h, "/generate?model=tiny.json&length=64")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// same seed, same text; the model now comes from the cache
	var again generateResponse
	require.NoError(t, json.NewDecoder(get(h, "/generate?model=tiny.json&prompt=strong+people&length=8&seed=3").Body).Decode(&again))
	assert.Equal(t, resp.Text, again.Text)
	assert.Equal(t, 1, a.models.Len())
}

func TestGenerateEndpointDefaults(t *testing.T) {
	_, h := requireApp(t)

	rec := get(h, "/generate?model=tiny.json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp generateResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, defaultPrompt, resp.Prompt)
	assert.Len(t, text.WordTokenizer{}.Tokenize(resp.Text), defaultLength)
}

func TestGenerateEndpointErrors(t *testing.T) {
	_, h := requireApp(t)

	for _, tc := range []struct {
		url  string
		code int
	}{
		{"/generate?model=tiny.json&prompt=strong+people&length=2", http.StatusBadRequest},
		{"/generate?model=tiny.json&length=twelve", http.StatusBadRequest},
		{"/generate?model=tiny.json&seed=x", http.StatusBadRequest},
		{"/generate", http.StatusBadRequest},
		{"/generate?model=../tiny.json", http.StatusBadRequest},
		{"/generate?model=.hidden", http.StatusBadRequest},
		{"/generate?model=missing.json", http.StatusNotFound},
		{"/generate?model=tiny.json&length=65", http.StatusBadRequest},
		{"/generate?model=tiny.json&length=2000000000", http.StatusBadRequest},
		{"/generate?model=unfitted.json", http.StatusBadRequest},
		{"/generate?model=broken.json", http.StatusInternalServerError},
	} {
		assert.Equal(t, tc.code, get(h, tc.url).Code, tc.url)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", "/generate?model=tiny.json", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestNeighborsEndpoint(t *testing.T) {
	_, h := requireApp(t)

	rec := get(h, "/neighbors?model=tiny.json&word=strong&distance=1&top=3")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var neighbors []languagemodel.Neighbor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&neighbors))
	require.Len(t, neighbors, 3)
	assert.Equal(t, "and", neighbors[0].Word)
	assert.Equal(t, 0.25, neighbors[0].Weight)

	for _, url := range []string{
		"/neighbors?model=tiny.json",
		"/neighbors?model=tiny.json&word=strong&distance=0",
		"/neighbors?model=tiny.json&word=strong&distance=7",
		"/neighbors?model=tiny.json&word=strong&top=x",
	} {
		assert.Equal(t, http.StatusBadRequest, get(h, url).Code, url)
	}
}

func TestModelsAndStatusEndpoints(t *testing.T) {
	_, h := requireApp(t)

	rec := get(h, "/models")
	require.Equal(t, http.StatusOK, rec.Code)
	var names []string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&names))
	assert.Equal(t, []string{"broken.json", "tiny.json", "unfitted.json"}, names)

	get(h, "/generate?model=missing.json")
	rec = get(h, "/status")
	require.Equal(t, http.StatusOK, rec.Code)
	var codes map[string]map[string]int
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&codes))
	assert.Equal(t, 1, codes["/generate"]["404"])
	assert.Equal(t, 1, codes["/models"]["200"])

	assert.True(t, strings.Contains(rec.Header().Get("Cache-Control"), "no-cache"))
}

func TestCORS(t *testing.T) {
	_, h := requireApp(t)

	req := httptest.NewRequest("GET", "/models", nil)
	req.Header.Set("Origin", "https://example.com")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestServeValidate(t *testing.T) {
	dir := requireTempDir(t)
	assert.NoError(t, (&serveArgs{Models: dir, CacheSize: 1, MaxLength: 256}).Validate())
	assert.Error(t, (&serveArgs{Models: dir, CacheSize: 1, MaxLength: 0}).Validate())
	assert.Error(t, (&serveArgs{Models: dir, CacheSize: 0, MaxLength: 256}).Validate())
	assert.Error(t, (&serveArgs{Models: filepath.Join(dir, "missing"), CacheSize: 1, MaxLength: 256}).Validate())
}
