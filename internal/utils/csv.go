package utils

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"priceActionBot/internal/domain"
)

// WriteBarsToCSV saves a bar series for later backtest replay.
func WriteBarsToCSV(bars []domain.Bar, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	// Write header
	writer.Write([]string{"time", "open", "high", "low", "close"})

	for _, b := range bars {
		writer.Write([]string{
			b.Time.Format(time.RFC3339),
			strconv.FormatFloat(b.Open, 'f', -1, 64),
			strconv.FormatFloat(b.High, 'f', -1, 64),
			strconv.FormatFloat(b.Low, 'f', -1, 64),
			strconv.FormatFloat(b.Close, 'f', -1, 64),
		})
	}
	return writer.Error()
}

// ReadBarsFromCSV loads a bar series written by WriteBarsToCSV.
func ReadBarsFromCSV(filename string) ([]domain.Bar, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("csv file %s has no data rows", filename)
	}

	bars := make([]domain.Bar, 0, len(records)-1)
	for i, rec := range records[1:] { // skip header
		if len(rec) < 5 {
			return nil, fmt.Errorf("csv file %s row %d: expected 5 columns, got %d", filename, i+2, len(rec))
		}
		t, err := time.Parse(time.RFC3339, rec[0])
		if err != nil {
			return nil, fmt.Errorf("csv file %s row %d: bad time %q: %w", filename, i+2, rec[0], err)
		}
		vals := make([]float64, 4)
		for j := 0; j < 4; j++ {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("csv file %s row %d: bad value %q: %w", filename, i+2, rec[j+1], err)
			}
			vals[j] = v
		}
		bars = append(bars, domain.Bar{Time: t, Open: vals[0], High: vals[1], Low: vals[2], Close: vals[3]})
	}
	return bars, nil
}
