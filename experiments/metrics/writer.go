package metrics

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type RunConfig struct {
	N          int  `json:"n"`
	Cut        bool `json:"cut"`
	Goroutines int  `json:"goroutines"`
}

type RunRecord struct {
	ID    int
	Holds bool
	RunConfig
	SearchMetric
}

type Setup struct {
	Name      string        `json:"name"`
	Configs   []RunConfig   `json:"configs"`
	StartTime time.Time     `json:"startTime"`
	EndTime   time.Time     `json:"endTime"`
	Duration  time.Duration `json:"duration"`
}

type Writer struct {
	baseDir string
}

// NewWriter creates a subfolder of root named by experiment and timestamp.
func NewWriter(root, name string) (*Writer, error) {
	timestamp := time.Now().UTC().Format("20060102T150405Z")
	baseDir := filepath.Join(root, name, timestamp)
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	return &Writer{
		baseDir: baseDir,
	}, nil
}

func (w *Writer) Dir() string { return w.baseDir }

func (w *Writer) WriteSetup(name string, start, end time.Time, configs []RunConfig) error {
	setup := Setup{
		Name:      name,
		Configs:   configs,
		StartTime: start,
		EndTime:   end,
		Duration:  end.Sub(start),
	}

	setupPath := filepath.Join(w.baseDir, "setup.json")
	f, err := os.Create(setupPath)
	if err != nil {
		return fmt.Errorf("failed to create setup file: %w", err)
	}
	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(setup); err != nil {
		return fmt.Errorf("failed to write setup: %w", err)
	}

	return nil
}

func (w *Writer) WriteRunRecords(records []RunRecord) error {
	path := filepath.Join(w.baseDir, "runs.csv")
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create run records file: %w", err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)

	header := []string{"id", "n", "cut", "goroutines", "holds", "duration", "nodes", "failures", "vacuous", "solutions", "timed_out"}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write run records header: %w", err)
	}

	for _, record := range records {
		row := []string{
			strconv.Itoa(record.ID),
			strconv.Itoa(record.N),
			strconv.FormatBool(record.Cut),
			strconv.Itoa(record.RunConfig.Goroutines),
			strconv.FormatBool(record.Holds),
			record.Duration.String(),
			strconv.Itoa(record.Nodes),
			strconv.Itoa(record.Failures),
			strconv.Itoa(record.Vacuous),
			strconv.Itoa(record.Solutions),
			strconv.FormatBool(record.TimedOut),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write run record row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("failed to flush run records: %w", err)
	}
	return nil
}
