package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/JonMunkholm/crossfilter/internal/core"
	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
	"github.com/JonMunkholm/crossfilter/internal/logging"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to a temp file.
const multipartMemory = 32 << 20

// setFilterRequest replaces the selected values of one dimension.
type setFilterRequest struct {
	Values []int `json:"values" validate:"required,dive,min=0"`
}

// toggleRequest flips one value of one dimension.
type toggleRequest struct {
	Value *int `json:"value" validate:"required,min=0"`
}

// filterResponse is returned by every filter mutation.
type filterResponse struct {
	Dimension string           `json:"dimension,omitempty"`
	Selection map[string][]int `json:"selection"`
	Filtered  int              `json:"filtered"`
	Options   map[string][]int `json:"options"`
}

// rowsResponse is one page of filtered rows.
type rowsResponse struct {
	core.Page
	Rows   []map[string]int `json:"rows"`
	Window *windowResponse  `json:"window,omitempty"`
}

type windowResponse struct {
	core.Window
	Rows []map[string]int `json:"rows"`
}

// loadResponse reports a completed load.
type loadResponse struct {
	Report  *ingest.Report `json:"report,omitempty"`
	Session core.Summary   `json:"session"`
}

// session resolves the {id} URL parameter.
func (s *Server) session(w http.ResponseWriter, r *http.Request) (*core.Session, bool) {
	sess, err := s.service.Session(chi.URLParam(r, "id"))
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}
	return sess, true
}

// decode reads a JSON body into v and validates it.
func (s *Server) decode(r *http.Request, v any) error {
	if err := render.DecodeJSON(r.Body, v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// parseIntParam parses an integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return defaultVal
	}
	return i
}

func recordsJSON(schema facet.Schema, rows []facet.Record) []map[string]int {
	out := make([]map[string]int, len(rows))
	for i, rec := range rows {
		out[i] = rec.Fields(schema)
	}
	return out
}

func filterResult(sess *core.Session, dim string) filterResponse {
	snap := sess.Snapshot()
	return filterResponse{
		Dimension: dim,
		Selection: snap.Selection.Map(),
		Filtered:  len(snap.Result.Rows),
		Options:   snap.Result.Options,
	}
}

// extendDeadlines moves the connection's read and write deadlines so an
// upload runs under UPLOAD_TIMEOUT rather than the server timeouts.
func extendDeadlines(w http.ResponseWriter, r *http.Request, deadline time.Time) {
	rc := http.NewResponseController(w)
	if err := rc.SetReadDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.FromContext(r.Context()).Warn("extend upload read deadline", "error", err)
	}
	if err := rc.SetWriteDeadline(deadline); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logging.FromContext(r.Context()).Warn("extend upload write deadline", "error", err)
	}
}

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]any{
		"status":   "ok",
		"sessions": s.service.SessionCount(),
	})
}

// handleLoadStatus returns the current state of the load limiter.
// Used for monitoring and to check if the system can accept more uploads.
func (s *Server) handleLoadStatus(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, s.service.LimiterStatus())
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := s.service.NewSession(r.Context())
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, sess.Summary())
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, sess.Summary())
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.service.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleUpload replaces the session's dataset with an uploaded CSV or XLSX file.
// The file is streamed into the parser; a failed load leaves the session as it was.
// Progress is visible in the session summary while the parse runs.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if s.cfg.Upload.Timeout > 0 {
		extendDeadlines(w, r, time.Now().Add(s.cfg.Upload.Timeout))
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFileSize)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			s.respondError(w, r, fmt.Errorf("%w: %v", errFileTooLarge, err))
			return
		}
		s.respondError(w, r, fmt.Errorf("%w: %v", errInvalidRequest, err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, r, errNoFile)
		return
	}
	defer file.Close()

	ctx := withRequestMetadata(r.Context(), r)
	rep, err := s.service.Load(ctx, id, header.Filename, file, header.Size)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, loadResponse{Report: rep, Session: sess.Summary()})
}

// handleSample regenerates sample data; ?count=N overrides the configured size.
func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	count := parseIntParam(r, "count", 0)

	if err := s.service.LoadSample(r.Context(), id, count); err != nil {
		s.respondError(w, r, err)
		return
	}

	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, loadResponse{Session: sess.Summary()})
}

// handleRows returns a page of filtered rows. With ?scroll= the response also
// carries the visible window of that page.
func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	size := parseIntParam(r, "page_size", s.service.PageSize())
	page := sess.Page(parseIntParam(r, "page", 1), size)
	schema := sess.Schema()

	resp := rowsResponse{Page: page, Rows: recordsJSON(schema, page.Rows)}
	if r.URL.Query().Has("scroll") {
		win := core.VisibleWindow(page.Rows,
			parseIntParam(r, "scroll", 0),
			parseIntParam(r, "row_height", core.DefaultRowHeight),
			parseIntParam(r, "visible", core.DefaultVisibleRows),
		)
		resp.Window = &windowResponse{Window: win, Rows: recordsJSON(schema, win.Rows)}
	}
	render.JSON(w, r, resp)
}

// handleOptions returns the available options per dimension.
// ?search= narrows the displayed lists only.
func (s *Server) handleOptions(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	search := r.URL.Query().Get("search")
	snap := sess.Snapshot()
	render.JSON(w, r, map[string]any{
		"search":    search,
		"options":   snap.Options(search),
		"selection": snap.Selection.Map(),
	})
}

func (s *Server) handleSetFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	dim := chi.URLParam(r, "dim")

	var req setFilterRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if err := sess.SetFilter(dim, req.Values); err != nil {
		s.respondError(w, r, err)
		return
	}

	logging.FromContext(r.Context()).Debug("filter set", "session_id", sess.ID(), "dimension", dim, "values", req.Values)
	render.JSON(w, r, filterResult(sess, dim))
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	dim := chi.URLParam(r, "dim")

	var req toggleRequest
	if err := s.decode(r, &req); err != nil {
		s.respondError(w, r, err)
		return
	}
	if _, err := sess.ToggleValue(dim, *req.Value); err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, filterResult(sess, dim))
}

// handleSelectAll selects every displayed option of one dimension,
// honouring ?search= the same way the options list does.
func (s *Server) handleSelectAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	dim := chi.URLParam(r, "dim")

	if _, err := sess.SelectAll(dim, r.URL.Query().Get("search")); err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, filterResult(sess, dim))
}

func (s *Server) handleClearFilter(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	dim := chi.URLParam(r, "dim")

	if err := sess.ClearFilter(dim); err != nil {
		s.respondError(w, r, err)
		return
	}
	render.JSON(w, r, filterResult(sess, dim))
}

func (s *Server) handleClearAll(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}
	sess.ClearAll()
	render.JSON(w, r, filterResult(sess, ""))
}

// handleExport downloads the filtered rows as CSV (default) or XLSX.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.session(w, r)
	if !ok {
		return
	}

	format := ingest.Format(r.URL.Query().Get("format"))
	if format == "" {
		format = ingest.FormatCSV
	}

	var contentType string
	switch format {
	case ingest.FormatCSV:
		contentType = "text/csv"
	case ingest.FormatXLSX:
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		s.respondError(w, r, fmt.Errorf("%w: %q", ingest.ErrUnsupportedFormat, format))
		return
	}

	schema := sess.Schema()
	rows := sess.Rows()

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "filtered."+string(format)))

	var err error
	if format == ingest.FormatXLSX {
		err = ingest.WriteXLSX(w, schema, rows)
	} else {
		err = ingest.WriteCSV(w, schema, rows)
	}
	if err != nil {
		// Headers are already sent.
		logging.FromContext(r.Context()).Error("export failed", "session_id", sess.ID(), "error", err)
	}
}
