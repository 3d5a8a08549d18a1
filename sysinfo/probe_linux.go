//go:build linux

package sysinfo

import (
	"strconv"
	"strings"

	"github.com/prometheus/procfs"
	"github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

func probe(info map[string]string, logger logrus.FieldLogger) {
	var uts unix.Utsname
	if err := unix.Uname(&uts); err != nil {
		logger.WithError(err).Debug("uname failed")
	} else {
		info[Kernel] = unix.ByteSliceToString(uts.Release[:])
	}

	fs, err := procfs.NewDefaultFS()
	if err != nil {
		logger.WithError(err).Debug("procfs unavailable")
		return
	}
	if cpus, err := fs.CPUInfo(); err != nil {
		logger.WithError(err).Debug("reading cpuinfo")
	} else if len(cpus) > 0 {
		info[CPUCores] = strconv.Itoa(len(cpus))
		if model := strings.TrimSpace(cpus[0].ModelName); model != "" {
			info[CPUModel] = model
		}
	}
	if mem, err := fs.Meminfo(); err != nil {
		logger.WithError(err).Debug("reading meminfo")
	} else if mem.MemTotal != nil {
		info[MemoryGB] = formatGB(*mem.MemTotal)
	}
}
