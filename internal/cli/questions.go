package cli

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// readQuestions extracts the "question" column from a CSV file, in row
// order, trimming whitespace and skipping blank values. An empty file
// yields no questions and no error. A read error mid-file returns the
// questions collected so far alongside the error.
func readQuestions(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening questions file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header from %s: %w", path, err)
	}

	col := -1
	for i, name := range header {
		if strings.TrimSpace(name) == "question" {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("%s has no \"question\" column", path)
	}

	var questions []string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return questions, nil
		}
		if err != nil {
			return questions, fmt.Errorf("reading %s: %w", path, err)
		}
		if col >= len(record) {
			continue
		}
		if q := strings.TrimSpace(record[col]); q != "" {
			questions = append(questions, q)
		}
	}
}
