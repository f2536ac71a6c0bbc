package results

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/sravan-dsai/newslens/internal/classify"
)

// csvHeader is the export column layout. raw_probabilities is JSON-encoded
// so the file round-trips through ReadCSV.
var csvHeader = []string{"text", "predicted_category", "confidence", "raw_probabilities"}

// WriteCSV writes predictions as CSV, one row per prediction plus a header.
func WriteCSV(w io.Writer, preds []classify.Prediction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, p := range preds {
		probs, err := json.Marshal(p.Probabilities)
		if err != nil {
			return fmt.Errorf("failed to encode probabilities: %w", err)
		}
		row := []string{
			p.Text,
			p.Category,
			strconv.FormatFloat(p.Confidence, 'f', -1, 64),
			string(probs),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadCSV parses a file previously produced by WriteCSV.
func ReadCSV(r io.Reader) ([]classify.Prediction, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if len(header) != len(csvHeader) {
		return nil, fmt.Errorf("unexpected CSV header: %v", header)
	}
	for i, col := range csvHeader {
		if header[i] != col {
			return nil, fmt.Errorf("unexpected CSV header: %v", header)
		}
	}

	var preds []classify.Prediction
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}

		confidence, err := strconv.ParseFloat(row[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid confidence %q: %w", row[2], err)
		}

		probs := map[string]float64{}
		if row[3] != "" {
			if err := json.Unmarshal([]byte(row[3]), &probs); err != nil {
				return nil, fmt.Errorf("invalid probabilities %q: %w", row[3], err)
			}
		}

		preds = append(preds, classify.Prediction{
			Text:          row[0],
			Category:      row[1],
			Confidence:    confidence,
			Probabilities: probs,
		})
	}
	return preds, nil
}
