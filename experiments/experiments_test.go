package experiments

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"nimfibo/experiments/metrics"

	"github.com/stretchr/testify/require"
)

func TestRunCutExperiment(t *testing.T) {
	dir, err := RunCutExperiment(context.Background(), t.TempDir(), 5)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "runs.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 1+2*4, "Header plus a run with and without cut for n=2..5")
	require.Equal(t, "holds", rows[0][4])
	for _, row := range rows[1:] {
		n := row[1]
		want := "false" // 2, 3 and 5 are Fibonacci numbers
		if n == "4" {
			want = "true"
		}
		require.Equal(t, want, row[4], "n=%s cut=%s", n, row[2])
	}

	b, err := os.ReadFile(filepath.Join(dir, "setup.json"))
	require.NoError(t, err)
	var setup metrics.Setup
	require.NoError(t, json.Unmarshal(b, &setup))
	require.Equal(t, "cut", setup.Name)
	require.Len(t, setup.Configs, 8)
	require.False(t, setup.EndTime.Before(setup.StartTime))
}

func TestRunSpeedupExperiment(t *testing.T) {
	dir, err := RunSpeedupExperiment(context.Background(), t.TempDir(), 6)
	require.NoError(t, err)

	f, err := os.Open(filepath.Join(dir, "runs.csv"))
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 1+len(speedupGoroutines))
	for i, row := range rows[1:] {
		require.Equal(t, "true", row[4], "6 matches should be a first player win")
		require.Equal(t, []string{"1", "2", "4", "8"}[i], row[3])
	}
}
