package extract

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pkg/errors"

	"github.com/joshuahsieh24/enviroGovernment/pkg/models"
)

// rowPreviewLimit caps how many tabular rows make it into the extracted
// payload. Full files stay on disk; the pipeline only needs a sample.
const rowPreviewLimit = 100

// Service reads evidence files and normalizes them into the structured
// payload the mapping stage consumes. Paths are resolved against baseDir
// so callers cannot escape the evidence root.
type Service struct {
	baseDir string
}

func NewService(baseDir string) *Service {
	return &Service{baseDir: baseDir}
}

func (s *Service) Extract(ctx context.Context, filePath, sourceType string) (models.JSONMap, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := filePath
	if !filepath.IsAbs(path) {
		path = filepath.Join(s.baseDir, path)
	}
	switch sourceType {
	case string(models.CSVSource):
		return s.extractCSV(path)
	case string(models.JSONSource):
		return s.extractJSON(path)
	case string(models.PDFSource):
		return s.extractPDF(path)
	default:
		return nil, errors.Errorf("unsupported source type %q", sourceType)
	}
}

func (s *Service) extractCSV(path string) (models.JSONMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening csv")
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "reading csv")
	}
	if len(rows) == 0 {
		return models.JSONMap{
			"data_type": "tabular",
			"columns":   []string{},
			"rows":      []map[string]interface{}{},
			"row_count": 0,
		}, nil
	}

	columns := rows[0]
	records := make([]map[string]interface{}, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if i >= rowPreviewLimit {
			break
		}
		rec := make(map[string]interface{}, len(columns))
		for j, col := range columns {
			if j >= len(row) {
				continue
			}
			rec[col] = parseCell(row[j])
		}
		records = append(records, rec)
	}

	return models.JSONMap{
		"data_type": "tabular",
		"columns":   columns,
		"rows":      records,
		"row_count": len(rows) - 1,
		"summary":   summarizeNumeric(columns, records),
	}, nil
}

// parseCell keeps numeric columns numeric so the mapping prompt sees
// values, not quoted strings.
func parseCell(cell string) interface{} {
	trimmed := strings.TrimSpace(cell)
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return n
	}
	return cell
}

// summarizeNumeric totals every numeric column across the sampled rows.
func summarizeNumeric(columns []string, records []map[string]interface{}) map[string]float64 {
	summary := map[string]float64{}
	for _, col := range columns {
		total := 0.0
		numeric := false
		for _, rec := range records {
			if v, ok := rec[col].(float64); ok {
				total += v
				numeric = true
			}
		}
		if numeric {
			summary[col] = total
		}
	}
	return summary
}

func (s *Service) extractJSON(path string) (models.JSONMap, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening json")
	}
	var data interface{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, errors.Wrap(err, "parsing json")
	}

	keys := []string{}
	if obj, ok := data.(map[string]interface{}); ok {
		for k := range obj {
			keys = append(keys, k)
		}
	}
	return models.JSONMap{
		"data_type": "structured",
		"data":      data,
		"keys":      keys,
	}, nil
}

func (s *Service) extractPDF(path string) (models.JSONMap, error) {
	pdfCtx, err := api.ReadContextFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "opening pdf")
	}
	if err := api.ValidateContext(pdfCtx); err != nil {
		return nil, errors.Wrap(err, "validating pdf")
	}
	// TODO: extract page text once a pure-Go text extractor lands;
	// pdfcpu only exposes structure and content streams.
	return models.JSONMap{
		"data_type":  "document",
		"page_count": pdfCtx.PageCount,
		"file_name":  filepath.Base(path),
	}, nil
}
