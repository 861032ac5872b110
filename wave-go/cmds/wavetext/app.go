package main

import (
	"encoding/json"
	"io/ioutil"
	"math/rand"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	humanize "github.com/dustin/go-humanize"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	lru "github.com/hashicorp/golang-lru"
	"github.com/wavetext/wavetext/wave-go/collapse"
	"github.com/wavetext/wavetext/wave-go/web/midware"
	"github.com/wavetext/wavetext/wave-golib/errors"
	"github.com/wavetext/wavetext/wave-golib/languagemodel"
	"github.com/wavetext/wavetext/wave-golib/wavelog"
)

var (
	errBadRequest   = errors.New("bad request")
	errUnknownModel = errors.New("unknown model")
)

// app serves generation from the frozen models in a directory.
type app struct {
	dir       string
	maxLength int
	logger    wavelog.Interface
	codes     *midware.ResponseCodes

	// serializes model loads; models is safe for concurrent use on its own
	loading sync.Mutex
	models  *lru.Cache
}

func newApp(dir string, cacheSize, maxLength int, logger wavelog.Interface) (*app, error) {
	models, err := lru.New(cacheSize)
	if err != nil {
		return nil, err
	}
	return &app{
		dir:       dir,
		maxLength: maxLength,
		logger:    logger,
		codes:     midware.NewResponseCodes(),
		models:    models,
	}, nil
}

func (a *app) handler() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/generate", a.handleGenerate).Methods("GET")
	r.HandleFunc("/neighbors", a.handleNeighbors).Methods("GET")
	r.HandleFunc("/models", a.handleModels).Methods("GET")
	r.HandleFunc("/status", a.handleStatus).Methods("GET")

	cors := handlers.CORS(
		handlers.AllowedMethods([]string{"GET"}),
		handlers.AllowedOrigins([]string{"*"}),
	)
	return midware.Wrap(cors(r), a.logger, a.codes, midware.NewNoCache())
}

// model returns the named model, loading it on first use.
func (a *app) model(name string) (*languagemodel.AdjacencyModel, error) {
	if name == "" {
		return nil, errors.Wrapf(errBadRequest, "model is required")
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, errors.Wrapf(errBadRequest, "invalid model name %q", name)
	}
	if m, ok := a.models.Get(name); ok {
		return m.(*languagemodel.AdjacencyModel), nil
	}

	a.loading.Lock()
	defer a.loading.Unlock()
	if m, ok := a.models.Get(name); ok {
		return m.(*languagemodel.AdjacencyModel), nil
	}

	path := filepath.Join(a.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.Wrapf(errUnknownModel, "%s", name)
	}

	start := time.Now()
	m, err := languagemodel.Load(path)
	if err != nil {
		return nil, err
	}
	a.logger.Printf("loaded %s (%s words) in %v", name, humanize.Comma(int64(m.Len())), time.Since(start))
	a.models.Add(name, m)
	return m, nil
}

type generateResponse struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Seed   int64  `json:"seed"`
	Text   string `json:"text"`
}

func (a *app) handleGenerate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := a.model(q.Get("model"))
	if err != nil {
		a.fail(w, err)
		return
	}

	prompt := defaultPrompt
	if _, ok := q["prompt"]; ok {
		prompt = q.Get("prompt")
	}
	length, err := intParam(q.Get("length"), defaultLength)
	if err != nil {
		a.fail(w, errors.Wrapf(err, "length"))
		return
	}
	if length > a.maxLength {
		a.fail(w, errors.Wrapf(errBadRequest, "length %d exceeds the maximum of %d", length, a.maxLength))
		return
	}
	seed, err := int64Param(q.Get("seed"), time.Now().UnixNano())
	if err != nil {
		a.fail(w, errors.Wrapf(err, "seed"))
		return
	}

	// solvers own their random source, so each request gets its own
	solver := collapse.NewSolver(m, rand.New(rand.NewSource(seed)), collapse.Options{})
	out, err := solver.Generate(prompt, length)
	if err != nil {
		a.fail(w, err)
		return
	}

	a.writeJSON(w, generateResponse{
		Model:  q.Get("model"),
		Prompt: prompt,
		Seed:   seed,
		Text:   out,
	})
}

func (a *app) handleNeighbors(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	m, err := a.model(q.Get("model"))
	if err != nil {
		a.fail(w, err)
		return
	}

	word := q.Get("word")
	if word == "" {
		a.fail(w, errors.Wrapf(errBadRequest, "word is required"))
		return
	}
	distance, err := intParam(q.Get("distance"), 1)
	if err != nil {
		a.fail(w, errors.Wrapf(err, "distance"))
		return
	}
	if distance == 0 || distance < -m.MaxDist() || distance > m.MaxDist() {
		a.fail(w, errors.Wrapf(errBadRequest, "distance %d outside window of %d", distance, m.MaxDist()))
		return
	}
	top, err := intParam(q.Get("top"), 10)
	if err != nil {
		a.fail(w, errors.Wrapf(err, "top"))
		return
	}

	a.writeJSON(w, m.Get(distance, word).Top(top))
}

func (a *app) handleModels(w http.ResponseWriter, r *http.Request) {
	infos, err := ioutil.ReadDir(a.dir)
	if err != nil {
		a.fail(w, err)
		return
	}
	names := []string{}
	for _, info := range infos {
		if !strings.HasPrefix(info.Name(), ".") {
			names = append(names, info.Name())
		}
	}
	sort.Strings(names)
	a.writeJSON(w, names)
}

func (a *app) handleStatus(w http.ResponseWriter, r *http.Request) {
	a.writeJSON(w, a.codes.Snapshot())
}

func (a *app) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Println("error encoding response:", err)
	}
}

func (a *app) fail(w http.ResponseWriter, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		a.logger.Println("error:", err)
	}
	http.Error(w, err.Error(), code)
}

func statusFor(err error) int {
	switch errors.Cause(err) {
	case errBadRequest, collapse.ErrPromptTooLong, collapse.ErrNotFitted:
		return http.StatusBadRequest
	case errUnknownModel:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func intParam(s string, def int) (int, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(errBadRequest, "%q is not an integer", s)
	}
	return n, nil
}

func int64Param(s string, def int64) (int64, error) {
	if s == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(errBadRequest, "%q is not an integer", s)
	}
	return n, nil
}
