// Package report renders merged analysis results as Markdown and HTML
// dashboards.
package report

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

const rankingPreviewRows = 10

// Renderer writes human-readable reports from a merged result
type Renderer struct{}

// NewRenderer creates a report renderer
func NewRenderer() *Renderer {
	return &Renderer{}
}

// RenderMarkdown produces the full Markdown report
func (r *Renderer) RenderMarkdown(result *market.MergedAnalysisResult) (string, error) {
	if result == nil {
		return "", errors.InvalidInput("cannot render a nil result")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Market Analysis %s\n\n", result.AnalysisID)
	fmt.Fprintf(&b, "Generated %s | fingerprint `%s`\n\n", result.CreatedAt, result.Fingerprint)

	b.WriteString("## Overview\n\n")
	fmt.Fprintf(&b, "%s\n\n", result.Insights.MarketSummary)
	fmt.Fprintf(&b, "- Properties analyzed: %d\n", result.Combined.PropertyCount)
	fmt.Fprintf(&b, "- Area coverage: %.2f%% of known FSAs\n", result.Combined.FSACoverage*100)
	fmt.Fprintf(&b, "- Data completeness: %.1f%%\n\n", result.Combined.DataCompleteness*100)

	b.WriteString("## Target Metrics\n\n")
	b.WriteString("| Metric | Mean | Median | Std Dev | P90 | Outliers | Quality |\n")
	b.WriteString("|---|---|---|---|---|---|---|\n")
	for _, metric := range market.AllTargets() {
		tr, ok := result.Targets[metric]
		if !ok {
			continue
		}
		s := tr.Summary
		fmt.Fprintf(&b, "| %s | %.2f | %.2f | %.2f | %.2f | %d | %.0f |\n",
			metric, s.Mean, s.Median, s.StdDev, s.P90, s.Outliers.Count, tr.QualityScore)
	}
	b.WriteString("\n")

	writeCorrelations(&b, result.Correlations)
	writeGeographic(&b, result.Geographic)
	writeRanking(&b, result.CombinedRanking)
	writeInsights(&b, result.Insights)

	return b.String(), nil
}

// RenderHTML converts the Markdown report into a standalone HTML page
func (r *Renderer) RenderHTML(result *market.MergedAnalysisResult) ([]byte, error) {
	md, err := r.RenderMarkdown(result)
	if err != nil {
		return nil, err
	}

	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	doc := p.Parse([]byte(md))

	renderer := html.NewRenderer(html.RendererOptions{
		Title: fmt.Sprintf("Market Analysis %s", result.AnalysisID),
		Flags: html.CommonFlags | html.CompletePage,
	})
	return markdown.Render(doc, renderer), nil
}

func writeCorrelations(b *strings.Builder, analysis market.CorrelationAnalysis) {
	b.WriteString("## Correlations\n\n")
	if len(analysis.Significance) == 0 {
		b.WriteString("No correlation tests were run.\n\n")
		return
	}
	b.WriteString("| Pair | r | t | p | 95% CI | Strength |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, test := range analysis.Significance {
		marker := ""
		if test.Significant {
			marker = " *"
		}
		fmt.Fprintf(b, "| %s / %s | %.3f%s | %.2f | %.4f | [%.3f, %.3f] | %s |\n",
			test.MetricX, test.MetricY, test.Correlation, marker,
			test.TStatistic, test.PValue, test.CILower, test.CIUpper, test.Strength)
	}
	b.WriteString("\n`*` significant at p < 0.05\n\n")
}

func writeGeographic(b *strings.Builder, analysis market.GeographicAnalysis) {
	b.WriteString("## Geographic Analysis\n\n")
	fmt.Fprintf(b, "- Mean nearest neighbor: %.2f km\n", analysis.Spatial.MeanNearestNeighborKm)
	fmt.Fprintf(b, "- Moran's I (price): %.3f\n", analysis.Spatial.MoranI)
	fmt.Fprintf(b, "- Clustering coefficient: %.2f\n", analysis.Spatial.ClusteringCoefficient)
	fmt.Fprintf(b, "- Dispersal index: %.2f\n\n", analysis.Spatial.DispersalIndex)

	if len(analysis.Areas) > 0 {
		b.WriteString("| Rank | FSA | Properties | Performance | Score |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, area := range analysis.Areas {
			fmt.Fprintf(b, "| %d | %s | %d | %s | %.1f |\n",
				area.Rank, area.FSA, area.PropertyCount, area.Performance, area.PerformanceScore)
		}
		b.WriteString("\n")
	}

	if len(analysis.Trends) > 0 {
		b.WriteString("### Regional Trends\n\n")
		for _, trend := range analysis.Trends {
			fmt.Fprintf(b, "- Region %s: %s (avg investment score %.1f across %d areas, confidence %.0f%%)\n",
				trend.Region, trend.Direction, trend.AvgInvestmentScore, trend.FSACount, trend.Confidence*100)
		}
		b.WriteString("\n")
	}
}

func writeRanking(b *strings.Builder, ranking market.PropertyRanking) {
	b.WriteString("## Top Properties (Combined Score)\n\n")
	if len(ranking.Entries) == 0 {
		b.WriteString("No properties were ranked.\n\n")
		return
	}
	b.WriteString("| Rank | Property | FSA | Score | Percentile | Bucket |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	limit := len(ranking.Entries)
	if limit > rankingPreviewRows {
		limit = rankingPreviewRows
	}
	for _, entry := range ranking.Entries[:limit] {
		fmt.Fprintf(b, "| %d | %s | %s | %.3f | %.1f | %s |\n",
			entry.Rank, entry.PropertyKey, entry.FSA, entry.Value, entry.Percentile, entry.Category)
	}
	b.WriteString("\n")
}

func writeInsights(b *strings.Builder, insights market.Insights) {
	b.WriteString("## Insights\n\n")
	if len(insights.KeyFindings) > 0 {
		b.WriteString("### Key Findings\n\n")
		for _, finding := range insights.KeyFindings {
			fmt.Fprintf(b, "- %s\n", finding)
		}
		b.WriteString("\n")
	}

	if len(insights.Recommendations) > 0 {
		b.WriteString("### Recommendations\n\n")
		for _, rec := range insights.Recommendations {
			fmt.Fprintf(b, "- **%s** %s: %s\n", strings.ToUpper(string(rec.Action)), rec.FSA, rec.Rationale)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(b, "### Risk: %s (%.0f/100)\n\n", insights.Risk.Level, insights.Risk.Score)
	for _, factor := range insights.Risk.Factors {
		fmt.Fprintf(b, "- %s [%s]: %s\n", factor.Name, factor.Severity, factor.Detail)
	}
	if len(insights.Risk.Factors) == 0 {
		b.WriteString("No elevated risk factors detected.\n")
	}
	b.WriteString("\n")

	if len(insights.PredictiveTrends) > 0 {
		b.WriteString("### Trends\n\n")
		for _, trend := range insights.PredictiveTrends {
			fmt.Fprintf(b, "- %s\n", trend.Statement)
		}
		b.WriteString("\n")
	}
}
