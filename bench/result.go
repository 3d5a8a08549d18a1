package bench

import "github.com/fqcompressor/fqbench/executor"

// Operation is the kind of measured command.
type Operation string

const (
	Compress   Operation = "compress"
	Decompress Operation = "decompress"
)

// EmptyOutputText is the Error of a compression that exited cleanly but
// left no data behind.
const EmptyOutputText = "No output produced"

// Operations lists the operation kinds in report order.
var Operations = []Operation{Compress, Decompress}

// RunResult is one measured execution. Derived figures are computed on
// demand and are 0 for failed runs.
type RunResult struct {
	Tool           string    `json:"tool"`
	Operation      Operation `json:"operation"`
	InputSize      int64     `json:"input_size"`
	OutputSize     int64     `json:"output_size"`
	ElapsedSeconds float64   `json:"elapsed_seconds"`
	Threads        int       `json:"threads"`
	Success        bool      `json:"success"`
	Error          string    `json:"error,omitempty"`
	PeakMemoryMB   float64   `json:"peak_memory_mb,omitempty"`
}

// Ratio returns OutputSize/InputSize.
func (r RunResult) Ratio() float64 {
	if !r.Success {
		return 0
	}
	return Ratio(r.InputSize, r.OutputSize)
}

// ThroughputMBps returns input megabytes per second.
func (r RunResult) ThroughputMBps() float64 {
	if !r.Success {
		return 0
	}
	return ThroughputMBps(r.InputSize, r.ElapsedSeconds)
}

// BitsPerUnit returns output bits per estimated input unit.
func (r RunResult) BitsPerUnit(unitFraction float64) float64 {
	if !r.Success {
		return 0
	}
	return BitsPerUnit(r.InputSize, r.OutputSize, unitFraction)
}

// IntegrityWarning reports a successful run whose output failed the size
// check or was never written.
func (r RunResult) IntegrityWarning() bool {
	return r.Success && r.Error != ""
}

func (r *RunResult) record(res executor.Result) {
	r.ElapsedSeconds = res.Seconds()
	r.Success = res.Success
	r.PeakMemoryMB = res.PeakMB
	if !res.Success {
		r.Error = res.Err
		r.OutputSize = 0
	}
}
