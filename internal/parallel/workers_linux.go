//go:build linux

package parallel

import (
	"runtime"

	"golang.org/x/sys/unix"
)

// DefaultWorkers returns the number of logical CPUs (sockets x cores x
// hyperthreads) the process may run on, honouring its affinity mask.
func DefaultWorkers() int {
	var set unix.CPUSet
	if err := unix.SchedGetaffinity(0, &set); err == nil {
		if n := set.Count(); n > 0 {
			return n
		}
	}
	return max(runtime.NumCPU(), 1)
}
