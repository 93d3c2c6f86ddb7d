package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/rebeliceyang/lazyseg/internal/dataset"
	"github.com/rebeliceyang/lazyseg/internal/models"
	"github.com/rebeliceyang/lazyseg/internal/segment"
	"github.com/rebeliceyang/lazyseg/internal/view"
)

const defaultPreviewLimit = 50

// Change sets one field's operator and value
type Change struct {
	Field    string          `json:"field"`
	Operator models.Operator `json:"operator"`
	Value    any             `json:"value"`
}

// FilterRequest describes a filter state to evaluate. Filters, when present,
// replaces the initial state; Changes and RootOperator are applied after it.
type FilterRequest struct {
	Filters      *models.FilterState `json:"filters,omitempty"`
	Changes      []Change            `json:"changes,omitempty"`
	RootOperator models.Logic        `json:"rootOperator,omitempty"`
}

// PreviewRequest is the body of POST /api/tables/{table}/preview
type PreviewRequest struct {
	FilterRequest
	Limit int `json:"limit,omitempty"`
}

// PreviewResponse reports the matches for a filter state
type PreviewResponse struct {
	Table   string             `json:"table"`
	Filters models.FilterState `json:"filters"`
	Matched int                `json:"matched"`
	Total   int                `json:"total"`
	Rows    []models.Record    `json:"rows"`
}

// ColumnsResponse is the analysis of a table
type ColumnsResponse struct {
	Table   string                  `json:"table"`
	Total   int                     `json:"total"`
	Columns []models.ColumnMetadata `json:"columns"`
	Configs []models.FilterConfig   `json:"filters"`
}

// CreateSegmentRequest is the body of POST /api/segments
type CreateSegmentRequest struct {
	FilterRequest
	Table       string `json:"table"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Health handles GET /healthz
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListTables handles GET /api/tables
func (s *Server) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.source.Tables(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if tables == nil {
		tables = []string{}
	}
	writeJSON(w, http.StatusOK, tables)
}

// GetColumns handles GET /api/tables/{table}/columns
func (s *Server) GetColumns(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]

	v := view.New(s.logger.WithTable(table))
	if err := v.LoadTable(r.Context(), s.source, table); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, ColumnsResponse{
		Table:   table,
		Total:   v.Total(),
		Columns: v.Columns(),
		Configs: v.Configs(),
	})
}

// Preview handles POST /api/tables/{table}/preview
func (s *Server) Preview(w http.ResponseWriter, r *http.Request) {
	table := mux.Vars(r)["table"]

	var req PreviewRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	v, err := s.filteredView(r, table, req.FilterRequest)
	if err != nil {
		writeError(w, err)
		return
	}

	limit := req.Limit
	if limit <= 0 {
		limit = defaultPreviewLimit
	}
	rows := v.Rows()
	if len(rows) > limit {
		rows = rows[:limit]
	}

	writeJSON(w, http.StatusOK, PreviewResponse{
		Table:   table,
		Filters: v.State(),
		Matched: v.Count(),
		Total:   v.Total(),
		Rows:    rows,
	})
}

// ListSegments handles GET /api/segments
func (s *Server) ListSegments(w http.ResponseWriter, r *http.Request) {
	segments, err := s.segments.List(r.Context(), r.URL.Query().Get("table"))
	if err != nil {
		writeError(w, err)
		return
	}
	for i := range segments {
		segments[i].Records = nil
	}
	writeJSON(w, http.StatusOK, segments)
}

// CreateSegment handles POST /api/segments
func (s *Server) CreateSegment(w http.ResponseWriter, r *http.Request) {
	var req CreateSegmentRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Table == "" {
		writeError(w, fmt.Errorf("%w: table is required", segment.ErrInvalidSegment))
		return
	}

	v, err := s.filteredView(r, req.Table, req.FilterRequest)
	if err != nil {
		writeError(w, err)
		return
	}

	seg, err := v.Submit(r.Context(), s.segments, req.Name, req.Description)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, seg)
}

// GetSegment handles GET /api/segments/{id}
func (s *Server) GetSegment(w http.ResponseWriter, r *http.Request) {
	seg, err := s.segments.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

// UpdateSegment handles PUT /api/segments/{id}
func (s *Server) UpdateSegment(w http.ResponseWriter, r *http.Request) {
	var req segment.Update
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	seg, err := s.segments.Update(r.Context(), mux.Vars(r)["id"], req)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, seg)
}

// DeleteSegment handles DELETE /api/segments/{id}
func (s *Server) DeleteSegment(w http.ResponseWriter, r *http.Request) {
	if err := s.segments.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// filteredView loads table into a fresh view and applies req to it
func (s *Server) filteredView(r *http.Request, table string, req FilterRequest) (*view.View, error) {
	v := view.New(s.logger.WithTable(table))
	if err := v.LoadTable(r.Context(), s.source, table); err != nil {
		return nil, err
	}

	if req.Filters != nil {
		if _, err := v.SetState(*req.Filters); err != nil {
			return nil, errBadRequest(err.Error())
		}
	}
	for _, c := range req.Changes {
		if c.Field == "" {
			return nil, errBadRequest("change without field")
		}
		op := c.Operator
		if op == "" {
			op = models.OpEqual
		}
		v.SetFilter(c.Field, op, c.Value)
	}
	switch req.RootOperator {
	case "":
	case models.LogicAnd, models.LogicOr:
		v.SetRootOperator(req.RootOperator)
	default:
		return nil, errBadRequest(fmt.Sprintf("unknown root operator %q", req.RootOperator))
	}
	return v, nil
}

type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequestError(msg) }

func decodeBody(r *http.Request, dst any) error {
	if r.Body == nil || r.ContentLength == 0 {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		return errBadRequest("invalid request body: " + err.Error())
	}
	return nil
}

func statusFor(err error) int {
	var fetchErr *dataset.FetchError
	var badReq badRequestError
	switch {
	case errors.As(err, &badReq):
		return http.StatusBadRequest
	case errors.Is(err, segment.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, segment.ErrDuplicateName):
		return http.StatusConflict
	case errors.Is(err, segment.ErrInvalidSegment):
		return http.StatusBadRequest
	case errors.As(err, &fetchErr):
		if strings.Contains(fetchErr.Message, dataset.ErrUnknownTable.Error()) {
			return http.StatusNotFound
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
