package midware

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/codegangsta/negroni"
	"github.com/wavetext/wavetext/wave-golib/wavelog"
)

// Wrap wraps handler with the default set of middleware, logging to logger.
// Any extra handlers run after the defaults, just before handler.
func Wrap(handler http.Handler, logger wavelog.Interface, extra ...negroni.Handler) *negroni.Negroni {
	if handler == nil {
		handler = http.DefaultServeMux
	}
	n := negroni.New(
		NewRecovery(logger),
		NewLogger(logger),
	)
	for _, h := range extra {
		n.Use(h)
	}
	n.UseHandler(handler)
	return n
}

// Logger is a HTTP request logger for use as negroni middleware.
type Logger struct {
	logger wavelog.Interface
}

// NewLogger returns a Logger negroni.Handler that will log requests
// to the provided logger.
func NewLogger(logger wavelog.Interface) *Logger {
	return &Logger{
		logger: logger,
	}
}

// ServeHTTP implements negroni.Handler
func (l *Logger) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(w, r)
	url := r.URL.Path
	if r.URL.RawQuery != "" {
		url += "?" + r.URL.Query().Encode()
	}

	switch rw := w.(type) {
	case negroni.ResponseWriter:
		l.logger.Println(r.Method, url, rw.Status(), rw.Size(), time.Since(start))
	default:
		l.logger.Println(r.Method, url, time.Since(start))
	}
}

// --

// Recovery is a panic recovery middleware handler for negroni.
type Recovery struct {
	PrintStack bool
	StackAll   bool
	StackSize  int

	logger wavelog.Interface
}

// NewRecovery returns a new Recovery negroni.Handler
func NewRecovery(logger wavelog.Interface) *Recovery {
	return &Recovery{
		PrintStack: true,
		StackAll:   false,
		StackSize:  1024 * 8,
		logger:     logger,
	}
}

// ServeHTTP implements negroni.Handler
func (rec *Recovery) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	defer func(req *http.Request) {
		if err := recover(); err != nil {
			// a handler that already wrote its header cannot change the status
			if rw, ok := w.(negroni.ResponseWriter); !ok || !rw.Written() {
				http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			}

			msg := fmt.Sprintf("PANIC: %v", err)
			if rec.PrintStack {
				stack := make([]byte, rec.StackSize)
				stack = stack[:runtime.Stack(stack, rec.StackAll)]
				msg += "\n" + string(stack)
			}
			rec.logger.Println("[recovery!]", req.Method, req.URL.Path, msg)
		}
	}(r)

	next(w, r)
}

// NoCache is a middleware handler for setting no-cache headers.
type NoCache struct{}

// NewNoCache returns a NoCache negroni.Handler that sets the no-cache headers.
func NewNoCache() *NoCache {
	return &NoCache{}
}

// ServeHTTP implements negroni.Handler
func (nc *NoCache) ServeHTTP(w http.ResponseWriter, r *http.Request, next http.HandlerFunc) {
	newRw := negroni.NewResponseWriter(w)

	// ensure no caching occurs, must occur before response has been written
	newRw.Before(func(rw negroni.ResponseWriter) {
		h := rw.Header()
		h.Set("Cache-Control", "no-cache, no-store, must-revalidate")
		h.Set("Pragma", "no-cache")
		h.Set("Expires", "0")
	})

	next(newRw, r)
}
