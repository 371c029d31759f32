// Package jsonfile loads prediction responses exported as JSON documents.
package jsonfile

import (
	"context"
	"encoding/json"
	"os"

	"propmerge/domain/market"
	"propmerge/internal/errors"
	"propmerge/ports"
)

// responseDocument is the on-disk shape: call identifiers mapped to the
// resolved response payloads, with an optional analysis identifier.
type responseDocument struct {
	AnalysisID string                                 `json:"analysis_id,omitempty"`
	Responses  map[string]*market.PredictionResponse `json:"responses"`
}

// ResponseReader reads one exported response document. It satisfies
// ports.PredictionSource.
type ResponseReader struct {
	filePath   string
	analysisID string
}

var _ ports.PredictionSource = (*ResponseReader)(nil)

// NewResponseReader creates a reader for the given document
func NewResponseReader(filePath string) *ResponseReader {
	return &ResponseReader{filePath: filePath}
}

// FetchResponses loads and decodes the document
func (r *ResponseReader) FetchResponses(_ context.Context) (map[string]*market.PredictionResponse, error) {
	payload, err := os.ReadFile(r.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.NotFound("responses file " + r.filePath)
		}
		return nil, errors.Wrap(err, "reading responses file")
	}

	var doc responseDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, errors.Wrap(err, "decoding responses file")
	}
	if len(doc.Responses) == 0 {
		return nil, errors.EmptyInput("responses document")
	}
	r.analysisID = doc.AnalysisID
	return doc.Responses, nil
}

// AnalysisID returns the identifier carried by the document, if any.
// Valid after FetchResponses.
func (r *ResponseReader) AnalysisID() string {
	return r.analysisID
}
