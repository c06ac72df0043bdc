//go:build !linux

package parallel

import "runtime"

// DefaultWorkers returns the number of logical CPUs.
func DefaultWorkers() int {
	return max(runtime.NumCPU(), 1)
}
