// Package templates holds the templ components of the web UI.
//
// Edit the .templ files and regenerate with `templ generate`; the
// *_templ.go files are generated output.
package templates

import (
	"net/url"
	"strconv"

	"github.com/JonMunkholm/crossfilter/internal/core"
)

// DashboardData is everything the filter page shows.
type DashboardData struct {
	Summary core.Summary
	Page    core.Page
	Options map[string][]int
	Search  string
}

// dashboardScriptData is handed to the page script as JSON.
type dashboardScriptData struct {
	SessionID string `json:"sessionID"`
	Search    string `json:"search"`
}

func (d DashboardData) scriptData() dashboardScriptData {
	return dashboardScriptData{SessionID: d.Summary.ID, Search: d.Search}
}

// pageURL links to the dashboard keeping the session and search.
func pageURL(d DashboardData, page int) string {
	v := url.Values{"session": {d.Summary.ID}, "page": {strconv.Itoa(page)}}
	if d.Search != "" {
		v.Set("search", d.Search)
	}
	return "/?" + v.Encode()
}

func exportURL(id, format string) string {
	return "/api/sessions/" + url.PathEscape(id) + "/export?format=" + format
}

func selectedSet(values []int) map[int]bool {
	set := make(map[int]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
