package api

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/skadidb/skadi/pkg/archive"
	"github.com/skadidb/skadi/pkg/cache"
	"github.com/skadidb/skadi/pkg/query"
)

var errInvalidArchive = errors.New("invalid archive name")

// Server holds the API server state. Archive sessions are opened lazily on
// first access and kept for the lifetime of the server; the files are
// immutable, so there is nothing to invalidate.
type Server struct {
	config  ServerConfig
	metrics *Metrics
	cache   *cache.FieldCache

	mu       sync.Mutex
	archives map[string]*openArchive
}

type openArchive struct {
	path    string
	session *archive.Session
	engine  *query.Engine
}

// NewServer creates a new API server
func NewServer(config ServerConfig, metrics *Metrics, fieldCache *cache.FieldCache) *Server {
	return &Server{
		config:   config,
		metrics:  metrics,
		cache:    fieldCache,
		archives: make(map[string]*openArchive),
	}
}

// Close releases every open session and the cache.
func (s *Server) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var firstErr error
	for _, a := range s.archives {
		if err := a.session.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	s.archives = make(map[string]*openArchive)

	if s.cache != nil {
		if err := s.cache.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// archiveFor resolves an archive name to an open session, opening it on
// first use. Names are restricted to plain file names under ArchiveDir.
func (s *Server) archiveFor(name string) (*openArchive, error) {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return nil, fmt.Errorf("%w: %q", errInvalidArchive, name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if a, ok := s.archives[name]; ok {
		return a, nil
	}

	path := filepath.Join(s.config.ArchiveDir, name)
	session, err := archive.Open(path)
	if err != nil {
		return nil, err
	}

	a := &openArchive{
		path:    path,
		session: session,
		engine:  query.NewEngine(session),
	}
	s.archives[name] = a

	s.metrics.RecordSessionCount(len(s.archives))
	if n, err := session.Count(); err == nil {
		s.metrics.RecordArchiveStats(name, n)
	}
	return a, nil
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.metrics.RecordHealthCheck(true)
	sendSuccess(w, map[string]string{"status": "healthy"})
}

// handleListArchives lists the archive files available under ArchiveDir.
func (s *Server) handleListArchives(w http.ResponseWriter, r *http.Request) {
	entries, err := os.ReadDir(s.config.ArchiveDir)
	if err != nil {
		sendError(w, fmt.Sprintf("Failed to list archives: %v", err), http.StatusInternalServerError)
		return
	}

	names := []string{}
	for _, e := range entries {
		if e.IsDir() || strings.HasPrefix(e.Name(), ".") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	sendSuccess(w, map[string]interface{}{"archives": names})
}

// handleListRecords searches one archive. Key fields arrive as query
// parameters; absent parameters stay wildcards, so a bare request lists the
// whole directory.
func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	a, err := s.archiveFor(chi.URLParam(r, "archive"))
	if err != nil {
		s.metrics.RecordArchiveOperation("search", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}

	q, err := queryFromParams(r)
	if err != nil {
		s.metrics.RecordArchiveOperation("search", false, time.Since(start))
		sendError(w, err.Error(), http.StatusBadRequest)
		return
	}

	it, err := a.engine.Execute(q)
	if err != nil {
		s.metrics.RecordArchiveOperation("search", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}
	defer it.Close()

	records := []RecordSummary{}
	for it.Next() {
		records = append(records, summarize(it.Handle(), it.Metadata()))
	}
	if err := it.Err(); err != nil {
		s.metrics.RecordArchiveOperation("search", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}

	s.metrics.RecordArchiveOperation("search", true, time.Since(start))
	sendSuccess(w, map[string]interface{}{"records": records, "count": len(records)})
}

// handleDescribe returns the metadata of one record.
func (s *Server) handleDescribe(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	a, h, err := s.recordFromRequest(r)
	if err != nil {
		s.metrics.RecordArchiveOperation("describe", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}

	meta, err := a.session.Describe(h)
	if err != nil {
		s.metrics.RecordArchiveOperation("describe", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}

	s.metrics.RecordArchiveOperation("describe", true, time.Since(start))
	sendSuccess(w, summarize(h, meta))
}

// handleData decodes and returns one record's payload, consulting the
// decoded-field cache when one is configured.
func (s *Server) handleData(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	a, h, err := s.recordFromRequest(r)
	if err != nil {
		s.metrics.RecordArchiveOperation("read", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}

	meta, err := a.session.Describe(h)
	if err != nil {
		s.metrics.RecordArchiveOperation("read", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}

	values, err := s.readField(a, h, meta)
	if err != nil {
		s.metrics.RecordArchiveOperation("read", false, time.Since(start))
		sendArchiveError(w, err)
		return
	}

	s.metrics.RecordArchiveOperation("read", true, time.Since(start))
	sendSuccess(w, DataResponse{Record: summarize(h, meta), Values: values})
}

// readField decodes the payload, going through the cache when enabled.
// Cache failures are swallowed; the archive remains the source of truth.
func (s *Server) readField(a *openArchive, h archive.Handle, meta archive.RecordMetadata) ([]float32, error) {
	n := meta.Elements()

	var key []byte
	if s.cache != nil {
		key = cache.Key(a.path, h, meta)
		if values, ok, err := s.cache.Get(key, n); err == nil && ok {
			s.metrics.RecordCacheLookup(true)
			return values, nil
		}
		s.metrics.RecordCacheLookup(false)
	}

	values := make([]float32, n)
	if err := a.session.Read(h, values); err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Put(key, values)
	}
	return values, nil
}

// recordFromRequest resolves the {archive} and {handle} URL parameters.
func (s *Server) recordFromRequest(r *http.Request) (*openArchive, archive.Handle, error) {
	a, err := s.archiveFor(chi.URLParam(r, "archive"))
	if err != nil {
		return nil, 0, err
	}

	h, err := strconv.Atoi(chi.URLParam(r, "handle"))
	if err != nil {
		return nil, 0, fmt.Errorf("%w: invalid handle %q", archive.ErrNotFound, chi.URLParam(r, "handle"))
	}
	return a, archive.Handle(h), nil
}

// queryFromParams assembles a search query from the request's query string.
func queryFromParams(r *http.Request) (*query.Query, error) {
	q := query.New()

	if v := r.URL.Query().Get("nomvar"); v != "" {
		q.WithName(v)
	}
	if v := r.URL.Query().Get("typvar"); v != "" {
		q.WithTypVar(v)
	}
	if v := r.URL.Query().Get("etiket"); v != "" {
		q.WithEtiket(v)
	}

	intParams := []struct {
		name string
		set  func(int32) *query.Query
	}{
		{"ip1", q.WithIP1},
		{"ip2", q.WithIP2},
		{"ip3", q.WithIP3},
		{"dateo", q.WithDateO},
	}
	for _, p := range intParams {
		v := r.URL.Query().Get(p.name)
		if v == "" {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid %s parameter %q", p.name, v)
		}
		p.set(int32(n))
	}

	return q, nil
}

// sendArchiveError maps archive errors to HTTP status codes.
func sendArchiveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, archive.ErrNotFound), os.IsNotExist(err):
		sendError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, archive.ErrCorrupt), errors.Is(err, archive.ErrDecode):
		sendError(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, archive.ErrClosed):
		sendError(w, err.Error(), http.StatusServiceUnavailable)
	case errors.Is(err, errInvalidArchive):
		sendError(w, err.Error(), http.StatusBadRequest)
	default:
		sendError(w, err.Error(), http.StatusInternalServerError)
	}
}
