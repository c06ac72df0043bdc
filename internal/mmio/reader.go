// Package mmio reads MatrixMarket coordinate files into sparse matrices.
//
// Supported banners are "matrix coordinate" with field real, integer or
// pattern and symmetry general, symmetric or skew-symmetric. Symmetric
// storage is expanded to the full matrix. Inputs may be gzip or zstd
// compressed.
package mmio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/samcharles93/lespmv/internal/sparse"
)

var (
	ErrFormat      = errors.New("mmio: malformed matrix market data")
	ErrUnsupported = errors.New("mmio: unsupported matrix market variant")
)

const bannerPrefix = "%%matrixmarket"

// Banner is the parsed header line.
type Banner struct {
	Object   string `json:"object"`
	Format   string `json:"format"`
	Field    string `json:"field"`
	Symmetry string `json:"symmetry"`
}

func (b Banner) String() string {
	return strings.Join([]string{b.Object, b.Format, b.Field, b.Symmetry}, " ")
}

func parseBanner(line string) (Banner, error) {
	fields := strings.Fields(strings.ToLower(line))
	if len(fields) != 5 || fields[0] != bannerPrefix {
		return Banner{}, fmt.Errorf("%w: bad banner %q", ErrFormat, line)
	}
	b := Banner{Object: fields[1], Format: fields[2], Field: fields[3], Symmetry: fields[4]}
	if b.Object != "matrix" || b.Format != "coordinate" {
		return b, fmt.Errorf("%w: %s %s", ErrUnsupported, b.Object, b.Format)
	}
	switch b.Field {
	case "real", "double", "integer", "pattern":
	default:
		return b, fmt.Errorf("%w: field %s", ErrUnsupported, b.Field)
	}
	switch b.Symmetry {
	case "general", "symmetric", "skew-symmetric":
	default:
		return b, fmt.Errorf("%w: symmetry %s", ErrUnsupported, b.Symmetry)
	}
	return b, nil
}

// Read parses a coordinate file into COO storage. Entries keep file order;
// duplicates are left for COO.ToCSR to sum.
func Read[I sparse.Index, V sparse.Value](r io.Reader) (*sparse.COO[I, V], Banner, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	lineNo := 0
	next := func() ([]byte, bool) {
		for sc.Scan() {
			lineNo++
			line := bytes.TrimSpace(sc.Bytes())
			if len(line) == 0 || line[0] == '%' {
				continue
			}
			return line, true
		}
		return nil, false
	}

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return nil, Banner{}, err
		}
		return nil, Banner{}, fmt.Errorf("%w: empty input", ErrFormat)
	}
	lineNo++
	banner, err := parseBanner(sc.Text())
	if err != nil {
		return nil, banner, err
	}

	line, ok := next()
	if !ok {
		return nil, banner, fmt.Errorf("%w: missing size line", ErrFormat)
	}
	size := bytes.Fields(line)
	if len(size) != 3 {
		return nil, banner, fmt.Errorf("%w: line %d: size line needs rows cols nnz", ErrFormat, lineNo)
	}
	var dims [3]int
	for i, f := range size {
		n, err := strconv.Atoi(string(f))
		if err != nil || n < 0 {
			return nil, banner, fmt.Errorf("%w: line %d: bad size %q", ErrFormat, lineNo, f)
		}
		dims[i] = n
	}
	rows, cols, entries := dims[0], dims[1], dims[2]
	if sparse.SizeOf[I]() == 4 && (rows > math.MaxInt32 || cols > math.MaxInt32 || 2*entries > math.MaxInt32) {
		return nil, banner, fmt.Errorf("%w: %dx%d with %d entries needs 64-bit indices", ErrUnsupported, rows, cols, entries)
	}

	general := banner.Symmetry == "general"
	capacity := entries
	if !general {
		capacity *= 2
	}
	coo := sparse.NewCOO[I, V](rows, cols, capacity)

	pattern := banner.Field == "pattern"
	want := 3
	if pattern {
		want = 2
	}
	for n := 0; n < entries; n++ {
		line, ok := next()
		if !ok {
			if err := sc.Err(); err != nil {
				return nil, banner, err
			}
			return nil, banner, fmt.Errorf("%w: expected %d entries, found %d", ErrFormat, entries, n)
		}
		fields := bytes.Fields(line)
		if len(fields) < want {
			return nil, banner, fmt.Errorf("%w: line %d: expected %d fields", ErrFormat, lineNo, want)
		}
		i, err1 := strconv.Atoi(string(fields[0]))
		j, err2 := strconv.Atoi(string(fields[1]))
		if err1 != nil || err2 != nil || i < 1 || i > rows || j < 1 || j > cols {
			return nil, banner, fmt.Errorf("%w: line %d: entry (%s, %s) outside %dx%d", ErrFormat, lineNo, fields[0], fields[1], rows, cols)
		}
		v := 1.0
		if !pattern {
			if v, err = strconv.ParseFloat(string(fields[2]), 64); err != nil {
				return nil, banner, fmt.Errorf("%w: line %d: bad value %q", ErrFormat, lineNo, fields[2])
			}
		}
		i--
		j--
		coo.Append(i, j, V(v))
		if general || i == j {
			continue
		}
		if banner.Symmetry == "skew-symmetric" {
			v = -v
		}
		coo.Append(j, i, V(v))
	}
	if err := sc.Err(); err != nil {
		return nil, banner, err
	}
	return coo, banner, nil
}

// ReadFile opens, decompresses and parses path and converts it to CSR.
func ReadFile[I sparse.Index, V sparse.Value](path string) (*sparse.CSR[I, V], Banner, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, Banner{}, err
	}
	defer func() { _ = rc.Close() }()

	coo, banner, err := Read[I, V](rc)
	if err != nil {
		return nil, banner, fmt.Errorf("%s: %w", path, err)
	}
	csr := coo.ToCSR()
	coo.Release()
	return csr, banner, nil
}
