package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"examreg/internal/examinee/models"
)

// readExamNumbers parses "registration_no,exam_number" rows. A header row is
// skipped when its first cell is not a number.
func readExamNumbers(r io.Reader) ([]models.ExamNumber, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	var out []models.ExamNumber
	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("line %d: want registration_no,exam_number", i+1)
		}
		n, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil {
			if i == 0 {
				continue
			}
			return nil, fmt.Errorf("line %d: registration_no %q is not a number", i+1, rec[0])
		}
		out = append(out, models.ExamNumber{RegistrationNo: n, ExamNumber: strings.TrimSpace(rec[1])})
	}
	if len(out) == 0 {
		return nil, errors.New("no rows to import")
	}
	return out, nil
}

// readEdits parses a CSV whose header is registration_no followed by
// patchable field names. Each row maps a registration number to the new
// values of those fields; empty cells are left out.
func readEdits(r io.Reader) (map[int]map[string]string, error) {
	records, err := readAll(r)
	if err != nil {
		return nil, err
	}
	if len(records) < 2 {
		return nil, errors.New("want a header row and at least one edit")
	}
	header := records[0]
	if strings.TrimSpace(header[0]) != models.FieldRegistrationNo {
		return nil, fmt.Errorf("first column must be %s", models.FieldRegistrationNo)
	}
	fields := make([]string, len(header))
	for i, h := range header[1:] {
		fields[i+1] = strings.TrimSpace(h)
	}
	if err := models.ValidatePatch(headerSample(fields[1:])); err != nil {
		return nil, err
	}

	edits := make(map[int]map[string]string, len(records)-1)
	for i, rec := range records[1:] {
		n, err := strconv.Atoi(strings.TrimSpace(rec[0]))
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("line %d: registration_no %q is not a positive number", i+2, rec[0])
		}
		values := make(map[string]string)
		for j := 1; j < len(rec) && j < len(fields); j++ {
			if v := strings.TrimSpace(rec[j]); v != "" {
				values[fields[j]] = v
			}
		}
		if len(values) > 0 {
			edits[n] = values
		}
	}
	return edits, nil
}

// headerSample builds a patch with a placeholder value per column so column
// names are checked before any row is read.
func headerSample(fields []string) map[string]string {
	sample := make(map[string]string, len(fields))
	for _, f := range fields {
		sample[f] = "1"
	}
	return sample
}

func readAll(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return records, nil
}
