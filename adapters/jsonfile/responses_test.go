package jsonfile

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"propmerge/domain/market"
	"propmerge/internal/testkit"
)

func TestFetchResponses(t *testing.T) {
	gen := testkit.NewGenerator(31)
	props := gen.Properties(12)

	doc := responseDocument{
		AnalysisID: "analysis-file",
		Responses:  gen.Responses(props, 2),
	}
	payload, err := json.Marshal(doc)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "responses.json")
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	reader := NewResponseReader(path)
	responses, err := reader.FetchResponses(context.Background())
	require.NoError(t, err)
	require.Len(t, responses, 2)
	assert.Equal(t, "analysis-file", reader.AnalysisID())

	for _, r := range responses {
		require.NoError(t, r.Validate())
		assert.Len(t, r.Targets, len(market.AllTargets()))
	}
}

func TestFetchResponses_MissingFile(t *testing.T) {
	_, err := NewResponseReader("/nonexistent/responses.json").FetchResponses(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestFetchResponses_EmptyDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "responses.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"responses":{}}`), 0o644))

	_, err := NewResponseReader(path).FetchResponses(context.Background())
	require.Error(t, err)
}
