//go:build !unix

package mmio

import (
	"errors"
	"os"
)

func mapFile(*os.File, int) ([]byte, func() error, error) {
	return nil, nil, errors.New("mmio: mmap unsupported")
}
