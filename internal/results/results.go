// Package results reads records back out of the result files a run
// directory holds. Records are JSON lines whose shape depends on the
// simulated model, so extraction is path-based rather than typed.
package results

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/simpilot/simpilot/internal/sim"
)

// Ext is the extension of result files inside a run directory.
const Ext = ".jsonl"

// maxLineSize bounds a single record line when scanning result files.
const maxLineSize = 1 << 20

// ConfInfo is what the config copy inside a run directory records.
type ConfInfo struct {
	Name        string
	Scheme      string
	InitialTime float64
	FinalTime   float64
}

// Conf reads the config copy a run directory carries. It fails when dir
// holds no config copy, which is how callers tell run directories from
// ordinary ones.
func Conf(dir string) (ConfInfo, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ConfInfo{}, fmt.Errorf("reading run directory %s: %w", dir, err)
	}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), sim.ConfExt) {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return ConfInfo{}, fmt.Errorf("reading config copy: %w", err)
		}
		return ConfInfo{
			Name:        strings.TrimSuffix(entry.Name(), sim.ConfExt),
			Scheme:      gjson.GetBytes(raw, "integrator.scheme").String(),
			InitialTime: gjson.GetBytes(raw, "initial_time").Num,
			FinalTime:   gjson.GetBytes(raw, "final_time").Num,
		}, nil
	}
	return ConfInfo{}, fmt.Errorf("no config copy in %s", dir)
}

// File locates the result file inside a run directory.
func File(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("reading run directory %s: %w", dir, err)
	}
	var found []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), Ext) {
			found = append(found, filepath.Join(dir, entry.Name()))
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no result file in %s", dir)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("multiple result files in %s", dir)
	}
}

// Series extracts one numeric column from a result file. The field is a
// gjson path into each record, so "t" picks the time column and "y.1"
// picks the second state component.
func Series(path, field string) ([]float64, error) {
	var series []float64
	err := scan(path, func(line int, record []byte) error {
		value := gjson.GetBytes(record, field)
		if !value.Exists() {
			return fmt.Errorf("field %q missing at line %d of %s", field, line, path)
		}
		if value.Type != gjson.Number {
			return fmt.Errorf("field %q is not numeric at line %d of %s", field, line, path)
		}
		series = append(series, value.Num)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return series, nil
}

// Table extracts several numeric columns in a single pass over the
// file. The returned slices are parallel to fields and equally long.
func Table(path string, fields ...string) ([][]float64, error) {
	cols := make([][]float64, len(fields))
	err := scan(path, func(line int, record []byte) error {
		for i, field := range fields {
			value := gjson.GetBytes(record, field)
			if !value.Exists() {
				return fmt.Errorf("field %q missing at line %d of %s", field, line, path)
			}
			if value.Type != gjson.Number {
				return fmt.Errorf("field %q is not numeric at line %d of %s", field, line, path)
			}
			cols[i] = append(cols[i], value.Num)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return cols, nil
}

// Last returns the final record of a result file as raw JSON.
func Last(path string) ([]byte, error) {
	var last []byte
	err := scan(path, func(line int, record []byte) error {
		last = append(last[:0], record...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	if last == nil {
		return nil, fmt.Errorf("result file %s holds no records", path)
	}
	return last, nil
}

// Fields lists the numeric paths the latest record exposes, in record
// order. Array components are expanded, so a two component state yields
// "y.0" and "y.1".
func Fields(path string) ([]string, error) {
	last, err := Last(path)
	if err != nil {
		return nil, err
	}
	var fields []string
	gjson.ParseBytes(last).ForEach(func(key, value gjson.Result) bool {
		switch {
		case value.Type == gjson.Number:
			fields = append(fields, key.String())
		case value.IsArray():
			for i, elem := range value.Array() {
				if elem.Type == gjson.Number {
					fields = append(fields, fmt.Sprintf("%s.%d", key.String(), i))
				}
			}
		}
		return true
	})
	if len(fields) == 0 {
		return nil, fmt.Errorf("no numeric fields in %s", path)
	}
	return fields, nil
}

// Count reports the number of records in a result file.
func Count(path string) (int, error) {
	n := 0
	err := scan(path, func(line int, record []byte) error {
		n++
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// scan walks a result file record by record, handing each non-empty
// line to fn after checking it is valid JSON.
func scan(path string, fn func(line int, record []byte) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening result file: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	line := 0
	for scanner.Scan() {
		line++
		record := scanner.Bytes()
		if len(strings.TrimSpace(string(record))) == 0 {
			continue
		}
		if !gjson.ValidBytes(record) {
			return fmt.Errorf("invalid JSON at line %d of %s", line, path)
		}
		if err := fn(line, record); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading result file %s: %w", path, err)
	}
	return nil
}
