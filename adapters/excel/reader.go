// Package excel loads property rosters from Excel workbooks and CSV files.
package excel

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"

	"propmerge/domain/market"
	"propmerge/internal/errors"
)

// Column headers the reader recognizes as structural; everything else with a
// numeric value becomes a property feature.
const (
	columnFSA       = "fsa"
	columnLatitude  = "latitude"
	columnLongitude = "longitude"
)

const defaultSheet = "Sheet1"

// PropertyReader reads property records from an .xlsx workbook or a .csv
// file, keyed by header row. It satisfies ports.PropertySource.
type PropertyReader struct {
	filePath string
	sheet    string
	logger   zerolog.Logger
}

// NewPropertyReader creates a reader for the given roster file
func NewPropertyReader(filePath string, logger zerolog.Logger) *PropertyReader {
	return &PropertyReader{filePath: filePath, sheet: defaultSheet, logger: logger}
}

// ListProperties loads and parses the full roster
func (r *PropertyReader) ListProperties(ctx context.Context) ([]market.PropertyRecord, error) {
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound("roster file " + r.filePath)
	}

	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(r.filePath)) {
	case ".csv":
		rows, err = r.readCSV()
	case ".xlsx":
		rows, err = r.readWorkbook()
	default:
		return nil, errors.InvalidInput("unsupported roster file type: " + filepath.Ext(r.filePath))
	}
	if err != nil {
		return nil, err
	}
	if len(rows) < 2 {
		return nil, errors.EmptyInput("roster rows")
	}

	props, err := parseRows(rows)
	if err != nil {
		return nil, err
	}
	r.logger.Info().
		Str("file", r.filePath).
		Int("properties", len(props)).
		Msg("roster loaded")
	return props, nil
}

func (r *PropertyReader) readWorkbook() ([][]string, error) {
	f, err := excelize.OpenFile(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening workbook")
	}
	defer f.Close()

	rows, err := f.GetRows(r.sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "reading sheet %s", r.sheet)
	}
	return rows, nil
}

func (r *PropertyReader) readCSV() ([][]string, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, errors.Wrap(err, "opening roster")
	}
	defer file.Close()

	rows, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading roster")
	}
	return rows, nil
}

// parseRows maps header-keyed rows onto property records. Rows missing
// coordinates are rejected; non-numeric feature cells are skipped.
func parseRows(rows [][]string) ([]market.PropertyRecord, error) {
	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = strings.ToLower(strings.TrimSpace(h))
	}

	latCol, lngCol := -1, -1
	for i, h := range headers {
		switch h {
		case columnLatitude:
			latCol = i
		case columnLongitude:
			lngCol = i
		}
	}
	if latCol < 0 || lngCol < 0 {
		return nil, errors.ValidationError("roster must have latitude and longitude columns")
	}

	props := make([]market.PropertyRecord, 0, len(rows)-1)
	for rowIdx, row := range rows[1:] {
		record := market.PropertyRecord{Features: make(map[string]float64)}
		for col, cell := range row {
			if col >= len(headers) {
				break
			}
			cell = strings.TrimSpace(cell)
			if cell == "" {
				continue
			}
			switch headers[col] {
			case columnFSA:
				record.FSA = strings.ToUpper(cell)
			case columnLatitude, columnLongitude:
				v, err := strconv.ParseFloat(cell, 64)
				if err != nil {
					return nil, errors.ValidationError(
						"row " + strconv.Itoa(rowIdx+2) + " has a non-numeric coordinate")
				}
				if headers[col] == columnLatitude {
					record.Latitude = v
				} else {
					record.Longitude = v
				}
			default:
				if v, err := strconv.ParseFloat(cell, 64); err == nil {
					record.Features[headers[col]] = v
				}
			}
		}
		props = append(props, record)
	}
	return props, nil
}
