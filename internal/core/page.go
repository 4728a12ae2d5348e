package core

import (
	"strconv"
	"strings"

	"github.com/JonMunkholm/crossfilter/internal/facet"
)

// Table view defaults.
const (
	DefaultPageSize    = 100
	DefaultRowHeight   = 40 // px
	DefaultVisibleRows = 20
	maxPageLinks       = 5
	maxBadges          = 3
)

// Page is one page of filtered rows. Number is 1-based; an empty result has
// zero pages and reports page 1.
type Page struct {
	Number     int            `json:"page"`
	Size       int            `json:"page_size"`
	TotalRows  int            `json:"total_rows"`
	TotalPages int            `json:"total_pages"`
	Links      []int          `json:"links"`
	Rows       []facet.Record `json:"-"`
}

// HasPrev reports whether a previous page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a next page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Paginate slices rows into pages of size and returns page number. Numbers
// below 1 read as 1 and numbers past the end clamp to the last page.
func Paginate(rows []facet.Record, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	total := len(rows)
	pages := (total + size - 1) / size

	if number > pages {
		number = pages
	}
	if number < 1 {
		number = 1
	}

	start := (number - 1) * size
	end := min(start+size, total)
	if start > total {
		start = total
	}

	return Page{
		Number:     number,
		Size:       size,
		TotalRows:  total,
		TotalPages: pages,
		Links:      PageLinks(number, pages),
		Rows:       rows[start:end],
	}
}

// PageLinks returns up to five page numbers around current for navigation.
// Near either end the window stays five wide instead of centring.
func PageLinks(current, total int) []int {
	n := min(maxPageLinks, total)
	links := make([]int, 0, max(n, 0))

	var first int
	switch {
	case total <= maxPageLinks, current <= 3:
		first = 1
	case current >= total-2:
		first = total - 4
	default:
		first = current - 2
	}
	for i := 0; i < n; i++ {
		links = append(links, first+i)
	}
	return links
}

// Window is the on-screen slice of a page for a scroll position, with spacer
// heights that keep the scrollbar proportional to the whole page.
type Window struct {
	Start        int            `json:"start"` // index within the page
	Rows         []facet.Record `json:"-"`
	TopSpacer    int            `json:"top_spacer"`    // px
	BottomSpacer int            `json:"bottom_spacer"` // px
}

// VisibleWindow returns the rows of page visible at scrollTop pixels, given a
// fixed row height and number of visible rows.
func VisibleWindow(rows []facet.Record, scrollTop, rowHeight, visible int) Window {
	if rowHeight <= 0 {
		rowHeight = DefaultRowHeight
	}
	if visible <= 0 {
		visible = DefaultVisibleRows
	}
	if scrollTop < 0 {
		scrollTop = 0
	}

	start := min(scrollTop/rowHeight, len(rows))
	end := min(start+visible, len(rows))

	return Window{
		Start:        start,
		Rows:         rows[start:end],
		TopSpacer:    start * rowHeight,
		BottomSpacer: max(0, len(rows)-start-visible) * rowHeight,
	}
}

// SearchOptions keeps the options whose decimal form contains search.
// It narrows what is displayed only; an empty search returns options as is.
func SearchOptions(options []int, search string) []int {
	search = strings.TrimSpace(search)
	if search == "" {
		return options
	}

	out := make([]int, 0, len(options))
	for _, v := range options {
		if strings.Contains(strconv.Itoa(v), search) {
			out = append(out, v)
		}
	}
	return out
}

// Badges returns the labels shown for a dimension's selection: the first
// three values and, when more are selected, a "+N more" label.
func Badges(selected []int) []string {
	n := min(len(selected), maxBadges)
	out := make([]string, 0, n+1)
	for _, v := range selected[:n] {
		out = append(out, strconv.Itoa(v))
	}
	if extra := len(selected) - maxBadges; extra > 0 {
		out = append(out, "+"+strconv.Itoa(extra)+" more")
	}
	return out
}
