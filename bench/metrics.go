package bench

// BytesPerMB is the megabyte used by every throughput figure.
const BytesPerMB = 1024 * 1024

// Ratio is output size over input size, 0 when there is no input.
func Ratio(input, output int64) float64 {
	if input == 0 {
		return 0
	}
	return float64(output) / float64(input)
}

// ThroughputMBps is input megabytes processed per second, 0 when no time
// elapsed.
func ThroughputMBps(input int64, elapsedSeconds float64) float64 {
	if elapsedSeconds == 0 {
		return 0
	}
	return (float64(input) / BytesPerMB) / elapsedSeconds
}

// BitsPerUnit is output bits per estimated encoded unit, where the unit
// count is input*unitFraction. For FASTQ a unit is a base and roughly half
// the file is sequence.
func BitsPerUnit(input, output int64, unitFraction float64) float64 {
	units := float64(input) * unitFraction
	if units <= 0 {
		return 0
	}
	return float64(output) * 8 / units
}
