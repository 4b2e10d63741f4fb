package output

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// WriteComparisonCSV writes rows with a models.ComparisonColumns header.
func WriteComparisonCSV(w io.Writer, rows []models.ComparisonResult) error {
	values := make([][]string, 0, len(rows))
	for _, r := range rows {
		values = append(values, r.Values())
	}
	return writeCSV(w, models.ComparisonColumns, values)
}

// ReadComparisonCSV reads rows written by WriteComparisonCSV. Values are
// taken verbatim; nothing is re-formatted.
func ReadComparisonCSV(r io.Reader) ([]models.ComparisonResult, error) {
	records, err := readCSV(r, models.ComparisonColumns)
	if err != nil {
		return nil, err
	}
	out := make([]models.ComparisonResult, 0, len(records))
	for _, rec := range records {
		out = append(out, models.ComparisonResultFromValues(rec))
	}
	return out, nil
}

// WriteRDSCSV writes records with a models.RDSColumns header.
func WriteRDSCSV(w io.Writer, recs []models.RDSPriceRecord) error {
	values := make([][]string, 0, len(recs))
	for _, r := range recs {
		values = append(values, r.Values())
	}
	return writeCSV(w, models.RDSColumns, values)
}

// ReadRDSCSV reads records written by WriteRDSCSV.
func ReadRDSCSV(r io.Reader) ([]models.RDSPriceRecord, error) {
	records, err := readCSV(r, models.RDSColumns)
	if err != nil {
		return nil, err
	}
	out := make([]models.RDSPriceRecord, 0, len(records))
	for _, rec := range records {
		out = append(out, models.RDSPriceRecordFromValues(rec))
	}
	return out, nil
}

// EntryColumns is the CSV header for models.PricingEntry rows.
var EntryColumns = []string{"engine", "instance_type", "region", "multi_az", "start", "end"}

// WriteEntriesCSV writes unpriced pricing entries with an EntryColumns header.
func WriteEntriesCSV(w io.Writer, entries []models.PricingEntry) error {
	values := make([][]string, 0, len(entries))
	for _, e := range entries {
		values = append(values, []string{string(e.Engine), e.InstanceType, e.Region, string(e.MultiAZ), e.Start, e.End})
	}
	return writeCSV(w, EntryColumns, values)
}

// WriteRecords writes an arbitrary header and rows as CSV.
func WriteRecords(w io.Writer, header []string, rows [][]string) error {
	return writeCSV(w, header, rows)
}

func writeCSV(w io.Writer, header []string, rows [][]string) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write CSV header: %w", err)
	}
	if err := cw.WriteAll(rows); err != nil {
		return fmt.Errorf("write CSV rows: %w", err)
	}
	return nil
}

func readCSV(r io.Reader, header []string) ([][]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)

	got, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read CSV: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read CSV header: %w", err)
	}
	if strings.Join(got, ",") != strings.Join(header, ",") {
		return nil, fmt.Errorf("read CSV: unexpected header %q", strings.Join(got, ","))
	}

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV rows: %w", err)
	}
	return records, nil
}
