package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"propmerge/domain/market"
	"propmerge/internal/logging"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestListProperties_CSV(t *testing.T) {
	path := writeCSV(t, "fsa,latitude,longitude,price,bedrooms\n"+
		"m5v,43.645,-79.395,850000,2\n"+
		"K1A,45.421,-75.697,620000,3\n")

	props, err := NewPropertyReader(path, logging.Nop()).ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 2)

	assert.Equal(t, "M5V", props[0].FSA)
	assert.InDelta(t, 43.645, props[0].Latitude, 1e-9)
	price, ok := props[0].Feature(market.FeaturePrice)
	require.True(t, ok)
	assert.InDelta(t, 850000, price, 1e-9)

	beds, ok := props[1].Feature(market.FeatureBedrooms)
	require.True(t, ok)
	assert.InDelta(t, 3, beds, 1e-9)
}

func TestListProperties_Workbook(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roster.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetRow("Sheet1", "A1", &[]interface{}{"fsa", "latitude", "longitude", "price"}))
	require.NoError(t, f.SetSheetRow("Sheet1", "A2", &[]interface{}{"M4W", 43.678, -79.38, 1250000}))
	require.NoError(t, f.SaveAs(path))

	props, err := NewPropertyReader(path, logging.Nop()).ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 1)
	assert.Equal(t, "M4W", props[0].FSA)
}

func TestListProperties_MissingCoordinates(t *testing.T) {
	path := writeCSV(t, "fsa,price\nM5V,850000\n")

	_, err := NewPropertyReader(path, logging.Nop()).ListProperties(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "latitude")
}

func TestListProperties_MissingFile(t *testing.T) {
	_, err := NewPropertyReader("/nonexistent/roster.xlsx", logging.Nop()).ListProperties(context.Background())
	require.Error(t, err)
}

func TestListProperties_SkipsNonNumericFeatures(t *testing.T) {
	path := writeCSV(t, "fsa,latitude,longitude,price,notes\n"+
		"M6G,43.66,-79.42,700000,corner lot\n")

	props, err := NewPropertyReader(path, logging.Nop()).ListProperties(context.Background())
	require.NoError(t, err)
	require.Len(t, props, 1)
	_, ok := props[0].Features["notes"]
	assert.False(t, ok)
}
