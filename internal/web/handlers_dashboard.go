package web

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/JonMunkholm/crossfilter/internal/core"
	"github.com/JonMunkholm/crossfilter/internal/logging"
	"github.com/JonMunkholm/crossfilter/internal/web/templates"
)

// handleDashboard renders the filter page for ?session=. Without a live
// session a new one is created and the browser is redirected to it.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	sess, err := s.service.Session(q.Get("session"))
	if errors.Is(err, core.ErrSessionNotFound) {
		sess = s.service.NewSession(r.Context())
		http.Redirect(w, r, "/?"+url.Values{"session": {sess.ID()}}.Encode(), http.StatusSeeOther)
		return
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	search := q.Get("search")
	snap := sess.Snapshot()

	data := templates.DashboardData{
		Summary: snap.Summary,
		Page:    snap.Page(parseIntParam(r, "page", 1), s.service.PageSize()),
		Options: snap.Options(search),
		Search:  search,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := templates.Dashboard(data).Render(r.Context(), w); err != nil {
		logging.FromContext(r.Context()).Error("render dashboard", "session_id", sess.ID(), "error", err)
	}
}
