package sink

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"

	"github.com/fqcompressor/fqbench/bench"
)

// KeyPrefix starts every key written by the publisher.
const KeyPrefix = "fqbench"

// RunsKey is the sorted set of run ids scored by start time.
const RunsKey = KeyPrefix + ":runs"

// RunKey is the hash holding the metadata of one run.
func RunKey(runID string) string { return KeyPrefix + ":run:" + runID }

// ResultsKey is the list holding one JSON document per result of a run.
func ResultsKey(runID string) string { return RunKey(runID) + ":results" }

// BestKey is the leaderboard of throughputs for one operation across runs.
func BestKey(op bench.Operation) string { return KeyPrefix + ":best:" + string(op) }

// LeaderboardMember names one slot of one run in a BestKey set.
func LeaderboardMember(r bench.RunResult, runID string) string {
	return fmt.Sprintf("%s:%d:%s", r.Tool, r.Threads, runID)
}

// HSetRunArgs returns the HSET command storing the run metadata.
func HSetRunArgs(suite *bench.SuiteResult) ([]interface{}, error) {
	systemInfo, err := json.Marshal(suite.SystemInfo)
	if err != nil {
		return nil, errors.Wrap(err, "encoding system info")
	}
	skipped := make([]string, len(suite.Skipped))
	for i, s := range suite.Skipped {
		skipped[i] = s.ID
	}
	args := []interface{}{"HSET", RunKey(suite.RunID),
		"run_id", suite.RunID,
		"timestamp", suite.Timestamp.UTC().Format("2006-01-02T15:04:05Z07:00"),
		"input_file", suite.InputFile,
		"input_size", suite.InputSize,
		"threads", joinInts(suite.Threads),
		"runs", suite.Runs,
		"unit_label", suite.UnitLabel,
		"unit_fraction", suite.UnitFraction,
		"tools_tested", strings.Join(suite.ToolsTested, ","),
		"skipped", strings.Join(skipped, ","),
		"results", len(suite.Results),
		"failures", len(suite.Failures),
		"system_info", string(systemInfo),
	}
	return args, nil
}

// RPushResultsArgs returns the RPUSH command appending every selected and
// failed result, or nil when the run has none.
func RPushResultsArgs(suite *bench.SuiteResult) ([]interface{}, error) {
	all := append(append([]bench.RunResult(nil), suite.Results...), suite.Failures...)
	if len(all) == 0 {
		return nil, nil
	}
	args := []interface{}{"RPUSH", ResultsKey(suite.RunID)}
	for _, r := range all {
		doc, err := json.Marshal(r)
		if err != nil {
			return nil, errors.Wrapf(err, "encoding %s %s result", r.Tool, r.Operation)
		}
		args = append(args, string(doc))
	}
	return args, nil
}

// ZAddRunArgs returns the ZADD command indexing the run by start time.
func ZAddRunArgs(suite *bench.SuiteResult) []interface{} {
	return []interface{}{"ZADD", RunsKey, suite.Timestamp.Unix(), suite.RunID}
}

// ZAddBestArgs returns the ZADD command recording the throughput of every
// successful op result, or nil when there is none.
func ZAddBestArgs(suite *bench.SuiteResult, op bench.Operation) []interface{} {
	results := suite.Successful(op)
	if len(results) == 0 {
		return nil
	}
	args := []interface{}{"ZADD", BestKey(op)}
	for _, r := range results {
		args = append(args, r.ThroughputMBps(), LeaderboardMember(r, suite.RunID))
	}
	return args
}

// Commands returns every command needed to publish suite, in order.
func Commands(suite *bench.SuiteResult) ([][]interface{}, error) {
	hset, err := HSetRunArgs(suite)
	if err != nil {
		return nil, err
	}
	cmds := [][]interface{}{hset}
	push, err := RPushResultsArgs(suite)
	if err != nil {
		return nil, err
	}
	if push != nil {
		cmds = append(cmds, push)
	}
	cmds = append(cmds, ZAddRunArgs(suite))
	for _, op := range bench.Operations {
		if best := ZAddBestArgs(suite, op); best != nil {
			cmds = append(cmds, best)
		}
	}
	return cmds, nil
}

func joinInts(ns []int) string {
	sorted := append([]int(nil), ns...)
	sort.Ints(sorted)
	parts := make([]string, len(sorted))
	for i, n := range sorted {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ",")
}
