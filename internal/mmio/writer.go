package mmio

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	"github.com/samcharles93/lespmv/internal/sparse"
)

// Write emits m as a "matrix coordinate real general" file.
func Write[I sparse.Index, V sparse.Value](w io.Writer, m *sparse.CSR[I, V], comment string) error {
	bw := bufio.NewWriterSize(w, 1<<16)
	_, _ = bw.WriteString("%%MatrixMarket matrix coordinate real general\n")
	for _, line := range strings.Split(comment, "\n") {
		if line != "" {
			fmt.Fprintf(bw, "%% %s\n", line)
		}
	}
	fmt.Fprintf(bw, "%d %d %d\n", m.NumRows, m.NumCols, m.NumNNZ)

	bits := int(8 * sparse.SizeOf[V]())
	var buf []byte
	for r := range m.NumRows {
		for k := m.RowPtr[r]; k < m.RowPtr[r+1]; k++ {
			buf = strconv.AppendInt(buf[:0], int64(r+1), 10)
			buf = append(buf, ' ')
			buf = strconv.AppendInt(buf, int64(m.ColIdx[k])+1, 10)
			buf = append(buf, ' ')
			buf = strconv.AppendFloat(buf, float64(m.Values[k]), 'g', -1, bits)
			buf = append(buf, '\n')
			if _, err := bw.Write(buf); err != nil {
				return err
			}
		}
	}
	return bw.Flush()
}

// WriteFile writes m to path, compressing when the name ends in .gz or .zst.
func WriteFile[I sparse.Index, V sparse.Value](path string, m *sparse.CSR[I, V], comment string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		zw := gzip.NewWriter(f)
		if err := Write(zw, m, comment); err != nil {
			return err
		}
		return zw.Close()
	case ".zst", ".zstd":
		zw, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		if err := Write(zw, m, comment); err != nil {
			_ = zw.Close()
			return err
		}
		return zw.Close()
	default:
		return Write(f, m, comment)
	}
}
