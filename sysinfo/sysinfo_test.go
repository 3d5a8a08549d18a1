package sysinfo

import (
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollect(t *testing.T) {
	info := Collect(nil)
	assert.Equal(t, runtime.GOOS, info[OS])
	assert.Equal(t, runtime.GOARCH, info[Arch])
	assert.Equal(t, runtime.Version(), info[GoVersion])

	cores, err := strconv.Atoi(info[CPUCores])
	require.NoError(t, err)
	assert.Positive(t, cores)

	if runtime.GOOS == "linux" {
		assert.NotEmpty(t, info[Kernel])
		assert.NotEmpty(t, info[MemoryGB])
	}
}

func TestFormatGB(t *testing.T) {
	assert.Equal(t, "16.0", formatGB(16*1024*1024))
	assert.Equal(t, "0.5", formatGB(512*1024))
}
