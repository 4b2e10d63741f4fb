// Package ingest reads comparison and pricing input from CSV, JSON and
// key=value form specs.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/pankaj-dahiya-devops/graviton-advisor/internal/models"
)

// EC2Columns are the CSV columns required by ParseEC2CSV.
var EC2Columns = []string{"instance_type", "vcpus", "memory_gb", "region"}

// pricingFields are the keys accepted in a form spec.
var pricingFields = map[string]bool{
	"engine": true, "instance_type": true, "region": true,
	"multi_az": true, "start": true, "end": true,
}

// ---------------------------------------------------------------------------
// EC2 CSV
// ---------------------------------------------------------------------------

// ParseEC2CSV reads EC2 entries from a CSV document with a header row. The
// columns may appear in any order and extra columns are ignored. The first
// invalid row aborts the batch with a *models.ValidationError carrying its
// 1-based data row number.
func ParseEC2CSV(r io.Reader) ([]models.EC2Entry, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("read EC2 CSV: empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("read EC2 CSV header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, h := range header {
		idx[strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))] = i
	}
	var missing []string
	for _, col := range EC2Columns {
		if _, ok := idx[col]; !ok {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("CSV must contain columns: %s (missing: %s)",
			strings.Join(EC2Columns, ", "), strings.Join(missing, ", "))
	}

	var entries []models.EC2Entry
	for row := 1; ; row++ {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read EC2 CSV row %d: %w", row, err)
		}
		field := func(name string) string {
			if i := idx[name]; i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}

		vcpus, err := strconv.Atoi(field("vcpus"))
		if err != nil {
			return nil, &models.ValidationError{Row: row, Field: "vcpus", Reason: fmt.Sprintf("not an integer: %q", field("vcpus"))}
		}
		mem, err := strconv.ParseFloat(field("memory_gb"), 64)
		if err != nil {
			return nil, &models.ValidationError{Row: row, Field: "memory_gb", Reason: fmt.Sprintf("not a number: %q", field("memory_gb"))}
		}
		e := models.EC2Entry{
			InstanceType: field("instance_type"),
			VCPUs:        vcpus,
			MemoryGB:     mem,
			Region:       field("region"),
		}
		if err := e.Validate(); err != nil {
			return nil, models.WithRow(err, row)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ---------------------------------------------------------------------------
// RDS JSON
// ---------------------------------------------------------------------------

// ParseRDSJSON reads a JSON array of pricing entries. Unknown fields are
// rejected and the first invalid entry aborts the batch.
func ParseRDSJSON(r io.Reader) ([]models.PricingEntry, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var raw []models.PricingEntry
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode RDS JSON: %w", err)
	}
	if dec.More() {
		return nil, fmt.Errorf("decode RDS JSON: unexpected data after the array")
	}
	for i, e := range raw {
		if err := e.Validate(); err != nil {
			return nil, models.WithRow(err, i+1)
		}
	}
	return raw, nil
}

// ---------------------------------------------------------------------------
// RDS form specs
// ---------------------------------------------------------------------------

// ParseRDSForm parses bulk form entries of the form
//
//	engine=PostgreSQL,instance_type=db.t3.medium,region=Paris,multi_az=Oui
//
// with optional start= and end= keys defaulting to models.DefaultTerm(now).
// Invalid rows do not abort the batch: valid entries are returned together
// with one *models.ValidationError per rejected row.
func ParseRDSForm(specs []string, now time.Time) ([]models.PricingEntry, []error) {
	defStart, defEnd := models.DefaultTerm(now)

	var (
		entries []models.PricingEntry
		errs    []error
	)
	for i, spec := range specs {
		row := i + 1
		kv, err := splitSpec(spec)
		if err != nil {
			errs = append(errs, models.WithRow(err, row))
			continue
		}
		start, end := kv["start"], kv["end"]
		if start == "" {
			start = defStart
		}
		if end == "" {
			end = defEnd
		}
		e, err := models.NewPricingEntry(kv["engine"], kv["instance_type"], kv["region"], kv["multi_az"], start, end)
		if err != nil {
			errs = append(errs, models.WithRow(err, row))
			continue
		}
		entries = append(entries, e)
	}
	return entries, errs
}

func splitSpec(spec string) (map[string]string, error) {
	kv := make(map[string]string)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			return nil, &models.ValidationError{Field: "entry", Reason: fmt.Sprintf("expected key=value, got %q", part)}
		}
		k = strings.ToLower(strings.TrimSpace(k))
		if !pricingFields[k] {
			return nil, &models.ValidationError{Field: k, Reason: "unknown field; expected one of " + strings.Join(sortedFields(), ", ")}
		}
		kv[k] = strings.TrimSpace(v)
	}
	return kv, nil
}

func sortedFields() []string {
	out := make([]string, 0, len(pricingFields))
	for k := range pricingFields {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
