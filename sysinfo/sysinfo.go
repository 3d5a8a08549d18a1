// Package sysinfo collects host metadata recorded with every suite.
package sysinfo

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"strconv"

	"github.com/sirupsen/logrus"
)

// Keys of the metadata map. Reports read the CPU, memory and kernel keys.
const (
	Hostname  = "hostname"
	OS        = "os"
	Arch      = "arch"
	CPUCores  = "cpu_cores"
	CPUModel  = "cpu_model"
	MemoryGB  = "memory_gb"
	Kernel    = "kernel"
	GoVersion = "go_version"
)

// Collect returns what can be learned about the host. Probes that fail are
// logged at debug level and their keys left out.
func Collect(logger logrus.FieldLogger) map[string]string {
	if logger == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		logger = l
	}
	info := map[string]string{
		OS:        runtime.GOOS,
		Arch:      runtime.GOARCH,
		CPUCores:  strconv.Itoa(runtime.NumCPU()),
		GoVersion: runtime.Version(),
	}
	if host, err := os.Hostname(); err == nil {
		info[Hostname] = host
	}
	probe(info, logger)
	return info
}

// formatGB renders a kibibyte count as gigabytes with one decimal.
func formatGB(kib uint64) string {
	return fmt.Sprintf("%.1f", float64(kib)/(1024*1024))
}
