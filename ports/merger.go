package ports

import (
	"context"

	"propmerge/domain/market"
)

// ResultMerger fuses independent per-target prediction responses into one
// internally-consistent analytical result.
type ResultMerger interface {
	Merge(ctx context.Context,
		responses map[string]*market.PredictionResponse,
		properties []market.PropertyRecord,
		analysisID string) (*market.MergedAnalysisResult, error)
}

// ResultRenderer turns a merged result into a presentable report
type ResultRenderer interface {
	RenderMarkdown(result *market.MergedAnalysisResult) (string, error)
	RenderHTML(result *market.MergedAnalysisResult) ([]byte, error)
}
