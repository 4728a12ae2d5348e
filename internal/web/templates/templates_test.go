package templates

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/crossfilter/internal/core"
	"github.com/JonMunkholm/crossfilter/internal/facet"
	"github.com/JonMunkholm/crossfilter/internal/ingest"
)

func render(t *testing.T, d DashboardData) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, Dashboard(d).Render(context.Background(), &buf))
	return buf.String()
}

func testData(t *testing.T) DashboardData {
	t.Helper()
	ds := ingest.GenerateSample(30, facet.DefaultSchema())
	sess := core.NewSession("s-1", ds, "sample", 0, core.NewMetrics(nil))
	require.NoError(t, sess.SetFilter("mod3", []int{0, 1}))
	snap := sess.Snapshot()
	return DashboardData{
		Summary: snap.Summary,
		Page:    snap.Page(2, 5),
		Options: snap.Options(""),
	}
}

func TestDashboard(t *testing.T) {
	body := render(t, testData(t))

	assert.Contains(t, body, "Interactive filtering with 30 records")
	assert.Contains(t, body, "showing 20 of 30")
	assert.Contains(t, body, "Page 2 of 4")
	assert.Contains(t, body, `<input type="checkbox" value="1" checked>`)
	assert.Contains(t, body, `<input type="checkbox" value="2">`)
	assert.Contains(t, body, `href="/?page=3&amp;session=s-1"`)
	assert.Contains(t, body, `href="/api/sessions/s-1/export?format=xlsx"`)
	assert.NotContains(t, body, "Loading file")
}

func TestDashboardShowsLoadProgress(t *testing.T) {
	d := testData(t)
	d.Summary.Loading = true
	d.Summary.Progress = 40

	assert.Contains(t, render(t, d), "Loading file&hellip; 40%")
}

func TestDashboardScriptData(t *testing.T) {
	d := testData(t)
	d.Search = `</script><img src=x>`

	body := render(t, d)
	assert.NotContains(t, body, `</script><img`)
	assert.Contains(t, body, `id="dashboard-data"`)
}

func TestErrorAlert(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, ErrorAlert("Bad <input>", "", "VAL001").Render(context.Background(), &buf))

	body := buf.String()
	assert.Contains(t, body, "Bad &lt;input&gt;")
	assert.Contains(t, body, "Error code: VAL001")
	assert.NotContains(t, body, "<p></p>")
}
