package bench

import (
	"time"
)

// ToolInfo is the display metadata of an exercised tool.
type ToolInfo struct {
	Name        string `json:"name"`
	Version     string `json:"version"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// SkippedTool is a requested tool that took no part in the sweep.
type SkippedTool struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

// SuiteResult is everything one sweep produced. Results holds the best
// compress and decompress run per (tool, threads) slot in sweep order.
// Failures holds one representative failed run for every slot and
// operation where no run succeeded.
type SuiteResult struct {
	RunID        string              `json:"run_id"`
	Timestamp    time.Time           `json:"timestamp"`
	InputFile    string              `json:"input_file"`
	InputSize    int64               `json:"input_size"`
	Threads      []int               `json:"threads"`
	Runs         int                 `json:"runs"`
	UnitFraction float64             `json:"unit_fraction"`
	UnitLabel    string              `json:"unit_label"`
	SystemInfo   map[string]string   `json:"system_info"`
	ToolsTested  []string            `json:"tools_tested"`
	Skipped      []SkippedTool       `json:"skipped"`
	Tools        map[string]ToolInfo `json:"tools"`
	Results      []RunResult         `json:"results"`
	Failures     []RunResult         `json:"failures"`
}

// ToolName returns the display name of a tool, falling back to its id.
func (s *SuiteResult) ToolName(id string) string {
	if info, ok := s.Tools[id]; ok && info.Name != "" {
		return info.Name
	}
	return id
}

// Find returns the selected result for a slot and operation.
func (s *SuiteResult) Find(tool string, threads int, op Operation) (RunResult, bool) {
	for _, r := range s.Results {
		if r.Tool == tool && r.Threads == threads && r.Operation == op {
			return r, true
		}
	}
	return RunResult{}, false
}

// Successful returns the selected results of one operation.
func (s *SuiteResult) Successful(op Operation) []RunResult {
	var out []RunResult
	for _, r := range s.Results {
		if r.Operation == op && r.Success {
			out = append(out, r)
		}
	}
	return out
}
