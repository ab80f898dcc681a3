package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/g-uva/sjf-cloudsim/pkg/core"
)

// LoadMachinesFromCSV parses a CSV of:
//
//	owner,count,capacity,cores,discipline
//
// Each row expands to count identical machines. discipline may be empty,
// in which case the simulation default applies.
func LoadMachinesFromCSV(path string) ([]core.MachineSpec, error) {
	rows, err := readCSV(path, 4)
	if err != nil {
		return nil, err
	}

	var specs []core.MachineSpec
	for _, row := range rows {
		line, rec := row.line, row.fields
		owner, err := atoi(rec[0], "owner", line)
		if err != nil {
			return nil, fmt.Errorf("LoadMachinesFromCSV %s: %w", path, err)
		}
		count, err := atoi(rec[1], "count", line)
		if err != nil {
			return nil, fmt.Errorf("LoadMachinesFromCSV %s: %w", path, err)
		}
		capacity, err := parseFloat(rec[2], "capacity", line)
		if err != nil {
			return nil, fmt.Errorf("LoadMachinesFromCSV %s: %w", path, err)
		}
		cores, err := atoi(rec[3], "cores", line)
		if err != nil {
			return nil, fmt.Errorf("LoadMachinesFromCSV %s: %w", path, err)
		}
		var disc core.Discipline
		if len(rec) > 4 {
			if disc, err = core.ParseDiscipline(rec[4]); err != nil {
				return nil, fmt.Errorf("LoadMachinesFromCSV %s: line %d: %w", path, line, err)
			}
		}
		if count < 0 {
			return nil, fmt.Errorf("LoadMachinesFromCSV %s: line %d: %w: negative count %d",
				path, line, core.ErrInvalidConfiguration, count)
		}
		for n := 0; n < count; n++ {
			specs = append(specs, core.MachineSpec{
				OwnerID:    owner,
				Capacity:   capacity,
				Cores:      cores,
				Discipline: disc,
			})
		}
	}
	return specs, nil
}

// LoadJobsFromCSV parses a CSV of:
//
//	owner,length,cores,file_size,output_size
//
// Trailing columns may be omitted; cores then defaults to 1 and the sizes
// to 0.
func LoadJobsFromCSV(path string) ([]core.JobSpec, error) {
	rows, err := readCSV(path, 2)
	if err != nil {
		return nil, err
	}

	specs := make([]core.JobSpec, 0, len(rows))
	for _, row := range rows {
		line, rec := row.line, row.fields
		var s core.JobSpec
		if s.OwnerID, err = atoi(rec[0], "owner", line); err != nil {
			return nil, fmt.Errorf("LoadJobsFromCSV %s: %w", path, err)
		}
		if s.Length, err = parseFloat(rec[1], "length", line); err != nil {
			return nil, fmt.Errorf("LoadJobsFromCSV %s: %w", path, err)
		}
		if len(rec) > 2 && strings.TrimSpace(rec[2]) != "" {
			if s.Cores, err = atoi(rec[2], "cores", line); err != nil {
				return nil, fmt.Errorf("LoadJobsFromCSV %s: %w", path, err)
			}
		}
		if len(rec) > 3 && strings.TrimSpace(rec[3]) != "" {
			if s.FileSize, err = parseInt64(rec[3], "file_size", line); err != nil {
				return nil, fmt.Errorf("LoadJobsFromCSV %s: %w", path, err)
			}
		}
		if len(rec) > 4 && strings.TrimSpace(rec[4]) != "" {
			if s.OutputSize, err = parseInt64(rec[4], "output_size", line); err != nil {
				return nil, fmt.Errorf("LoadJobsFromCSV %s: %w", path, err)
			}
		}
		specs = append(specs, s)
	}
	return specs, nil
}

type record struct {
	line   int
	fields []string
}

// readCSV returns every record after the header. Records shorter than
// minFields are rejected.
func readCSV(path string, minFields int) ([]record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.Comment = '#'

	if _, err := r.Read(); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("%s: %w: missing header", path, core.ErrInvalidConfiguration)
		}
		return nil, fmt.Errorf("%s: read header: %w", path, err)
	}

	var rows []record
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("%s: read record: %w", path, err)
		}
		line, _ := r.FieldPos(0)
		if len(rec) < minFields {
			return nil, fmt.Errorf("%s: line %d: %w: want at least %d fields, got %d",
				path, line, core.ErrInvalidConfiguration, minFields, len(rec))
		}
		rows = append(rows, record{line: line, fields: rec})
	}
	return rows, nil
}

func atoi(s, name string, line int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("line %d: %w: %s %q is not an integer", line, core.ErrInvalidConfiguration, name, s)
	}
	return v, nil
}

func parseInt64(s, name string, line int) (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w: %s %q is not an integer", line, core.ErrInvalidConfiguration, name, s)
	}
	return v, nil
}

func parseFloat(s, name string, line int) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("line %d: %w: %s %q is not a number", line, core.ErrInvalidConfiguration, name, s)
	}
	return v, nil
}
