// Package server exposes the REST facade over the storage core: table
// lifecycle, CSV bulk load, full-scan queries, and column metrics. Each
// request maps to one serialize, deserialize, or metrics call; the server
// adds no semantics of its own.
package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/mimdb/mimdb"
	"github.com/mimdb/mimdb/csvload"
	"github.com/mimdb/mimdb/errs"
	"github.com/mimdb/mimdb/format"
	"github.com/mimdb/mimdb/metastore"
	"github.com/mimdb/mimdb/metrics"
	"github.com/mimdb/mimdb/table"
)

// Server routes REST requests onto a metastore-backed table directory.
type Server struct {
	store *metastore.Store
	cfg   mimdb.Config
	mux   *http.ServeMux
}

// New builds a Server over store. cfg controls the batch size used when
// loading tables; the zero value applies the default.
func New(store *metastore.Store, cfg mimdb.Config) *Server {
	s := &Server{store: store, cfg: cfg, mux: http.NewServeMux()}

	s.mux.HandleFunc("GET /tables", s.handleList)
	s.mux.HandleFunc("POST /tables/{name}", s.handleCreate)
	s.mux.HandleFunc("GET /tables/{name}", s.handleQuery)
	s.mux.HandleFunc("DELETE /tables/{name}", s.handleDrop)
	s.mux.HandleFunc("GET /tables/{name}/metrics", s.handleMetrics)

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// columnJSON is one column of a query response.
type columnJSON struct {
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Ints    []int64  `json:"ints,omitempty"`
	Strings []string `json:"strings,omitempty"`
}

// tableJSON is the full-scan query response body.
type tableJSON struct {
	RowCount int          `json:"row_count"`
	Columns  []columnJSON `json:"columns"`
}

// metricsJSON is the metrics response body.
type metricsJSON struct {
	Averages   map[string]float64 `json:"averages"`
	AsciiBytes map[string]int     `json:"ascii_byte_counts"`
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{"tables": s.store.List()})
}

// handleCreate bulk-loads the request body as CSV into a new table.
func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	t, err := csvload.Load(r.Body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)

		return
	}

	path, err := s.store.Register(name)
	if err != nil {
		if errors.Is(err, metastore.ErrTableExists) {
			writeError(w, http.StatusConflict, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}

		return
	}

	if err := mimdb.WriteFile(path, t, s.cfg); err != nil {
		if dropErr := s.store.Drop(name); dropErr != nil {
			log.Printf("server: drop %q after failed write: %v", name, dropErr)
		}
		writeError(w, http.StatusInternalServerError, err)

		return
	}

	log.Printf("server: created table %q, %d rows, %d columns", name, t.RowCount(), len(t.ColumnNames()))
	writeJSON(w, http.StatusCreated, map[string]any{"table": name, "row_count": t.RowCount()})
}

// handleQuery runs a full scan: the whole table is deserialised and
// returned column by column.
func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTable(w, r.PathValue("name"))
	if !ok {
		return
	}

	resp := tableJSON{RowCount: t.RowCount()}
	for _, name := range t.ColumnNames() {
		data, _ := t.Get(name)

		col := columnJSON{Name: name, Type: data.Type().String()}
		switch data.Type() {
		case format.Int64:
			col.Ints = data.Ints()
		case format.Varchar:
			col.Strings = data.Strings()
		}

		resp.Columns = append(resp.Columns, col)
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	t, ok := s.loadTable(w, r.PathValue("name"))
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, metricsJSON{
		Averages:   metrics.TableAverages(t),
		AsciiBytes: metrics.TableAsciiByteCounts(t),
	})
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	if err := s.store.Drop(name); err != nil {
		if errors.Is(err, metastore.ErrTableNotFound) {
			writeError(w, http.StatusNotFound, err)
		} else {
			writeError(w, http.StatusInternalServerError, err)
		}

		return
	}

	log.Printf("server: dropped table %q", name)
	w.WriteHeader(http.StatusNoContent)
}

// loadTable resolves name through the metastore and deserialises its file.
// On failure it writes the error response and returns ok=false.
func (s *Server) loadTable(w http.ResponseWriter, name string) (*table.Table, bool) {
	path, err := s.store.Path(name)
	if err != nil {
		writeError(w, http.StatusNotFound, err)

		return nil, false
	}

	t, err := mimdb.ReadFile(path)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, errs.ErrInvalidMagic) || errors.Is(err, errs.ErrUnsupportedVersion) ||
			errors.Is(err, errs.ErrMalformedMetadata) || errors.Is(err, errs.ErrSizeMismatch) ||
			errors.Is(err, errs.ErrCodecFailure) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err)

		return nil, false
	}

	return t, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("server: write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
