// meta/meta.go
package meta

// MATCHES defines the default number of matches.
const MATCHES = 3

// GO_ROUTINES defines the default number of goroutines for the search.
const GO_ROUTINES = 1

// MAX_MATCHES defines the largest match count of the cut experiment.
const MAX_MATCHES = 9

// SPEEDUP_MATCHES defines the match count of the speedup experiment.
const SPEEDUP_MATCHES = 9

// RESULTS_DIR defines where experiments store their results.
const RESULTS_DIR = "experiments/results"
