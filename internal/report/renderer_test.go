package report

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmerge/internal/logging"
	"propmerge/internal/merge"
	"propmerge/internal/testkit"
)

func TestRenderMarkdown(t *testing.T) {
	gen := testkit.NewGenerator(21)
	props := gen.Properties(30)
	responses := gen.Responses(props, 2)

	merger := merge.NewMerger(merge.DefaultOptions(), logging.Nop())
	result, err := merger.Merge(context.Background(), responses, props, "analysis-report")
	require.NoError(t, err)

	md, err := NewRenderer().RenderMarkdown(result)
	require.NoError(t, err)

	assert.Contains(t, md, "# Market Analysis analysis-report")
	assert.Contains(t, md, "## Target Metrics")
	assert.Contains(t, md, "time_on_market")
	assert.Contains(t, md, "## Correlations")
	assert.Contains(t, md, "## Geographic Analysis")
	assert.Contains(t, md, "## Insights")
}

func TestRenderHTML(t *testing.T) {
	gen := testkit.NewGenerator(22)
	props := gen.Properties(24)
	responses := gen.Responses(props, 1)

	merger := merge.NewMerger(merge.DefaultOptions(), logging.Nop())
	result, err := merger.Merge(context.Background(), responses, props, "analysis-html")
	require.NoError(t, err)

	page, err := NewRenderer().RenderHTML(result)
	require.NoError(t, err)

	html := string(page)
	assert.Contains(t, html, "<html>")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "Market Analysis analysis-html")
}

func TestRender_NilResult(t *testing.T) {
	_, err := NewRenderer().RenderMarkdown(nil)
	require.Error(t, err)

	_, err = NewRenderer().RenderHTML(nil)
	require.Error(t, err)
}
