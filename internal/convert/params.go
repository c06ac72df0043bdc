// Package convert turns a canonical CSR matrix into the alternate layouts.
// Every conversion allocates fresh buffers and never mutates its input.
package convert

import (
	"fmt"

	"github.com/samcharles93/lespmv/internal/sparse"
)

const (
	DefaultMaxDiags  = 256
	DefaultAlignment = 32
	DefaultChunkRows = 8
	DefaultWindow    = 128
)

// Params holds the structural parameters of every layout.
type Params struct {
	// MaxDiags caps the number of distinct diagonals of the DIA layout.
	MaxDiags int `yaml:"max_diags" json:"max_diags"`
	// Alignment rounds the DIA lane length up to a multiple of this value.
	Alignment int `yaml:"alignment" json:"alignment"`
	// Order is the leading dimension of the ELL layout.
	Order sparse.Order `yaml:"order" json:"order"`
	// ChunkRows is the number of rows per chunk of the sliced layouts.
	ChunkRows int `yaml:"chunk_rows" json:"chunk_rows"`
	// Window bounds how far SELL-c-sigma may move a row while sorting.
	Window int `yaml:"window" json:"window"`
}

func DefaultParams() Params {
	return Params{
		MaxDiags:  DefaultMaxDiags,
		Alignment: DefaultAlignment,
		Order:     sparse.RowMajor,
		ChunkRows: DefaultChunkRows,
		Window:    DefaultWindow,
	}
}

// ValidateFor checks only the parameters the given layout consumes, so a bad
// window does not prevent the DIA evaluation and vice versa.
func (p Params) ValidateFor(f sparse.Format) error {
	switch f {
	case sparse.FormatCSR, sparse.FormatCOO:
		return nil
	case sparse.FormatELL:
		if p.Order != sparse.RowMajor && p.Order != sparse.ColMajor {
			return fmt.Errorf("ell: leading dimension %d: %w", p.Order, sparse.ErrConfiguration)
		}
		return nil
	case sparse.FormatDIA:
		if p.MaxDiags <= 0 {
			return fmt.Errorf("dia: max diagonals must be > 0, got %d: %w", p.MaxDiags, sparse.ErrConfiguration)
		}
		if p.Alignment <= 0 {
			return fmt.Errorf("dia: alignment must be > 0, got %d: %w", p.Alignment, sparse.ErrConfiguration)
		}
		return nil
	case sparse.FormatSELL, sparse.FormatSELLR:
		return checkChunkRows(f, p.ChunkRows)
	case sparse.FormatSELLSigma:
		if err := checkChunkRows(f, p.ChunkRows); err != nil {
			return err
		}
		if p.Window <= 0 {
			return fmt.Errorf("%s: sort window must be > 0, got %d: %w", f, p.Window, sparse.ErrConfiguration)
		}
		return nil
	default:
		return fmt.Errorf("no converter for %s: %w", f, sparse.ErrConfiguration)
	}
}

func checkChunkRows(f sparse.Format, c int) error {
	if c <= 0 {
		return fmt.Errorf("%s: chunk rows must be > 0, got %d: %w", f, c, sparse.ErrConfiguration)
	}
	return nil
}

// Convert builds the requested layout from m. CSR yields a deep copy so that
// no two layout instances share storage.
func Convert[I sparse.Index, V sparse.Value](m *sparse.CSR[I, V], f sparse.Format, p Params) (sparse.Matrix, error) {
	if m == nil {
		return nil, fmt.Errorf("convert: nil matrix: %w", sparse.ErrShape)
	}
	if err := p.ValidateFor(f); err != nil {
		return nil, err
	}
	switch f {
	case sparse.FormatCSR:
		return m.Clone(), nil
	case sparse.FormatCOO:
		return ToCOO(m), nil
	case sparse.FormatELL:
		return layout(ToELL(m, p.Order))
	case sparse.FormatDIA:
		return layout(ToDIA(m, p.MaxDiags, p.Alignment))
	case sparse.FormatSELL:
		return layout(ToSELL(m, p.ChunkRows))
	case sparse.FormatSELLSigma:
		return layout(ToSELLSigma(m, p.ChunkRows, p.Window))
	case sparse.FormatSELLR:
		return layout(ToSELLR(m, p.ChunkRows))
	default:
		return nil, fmt.Errorf("no converter for %s: %w", f, sparse.ErrConfiguration)
	}
}

// layout drops the typed nil a failed converter returns, so callers can test
// the interface against nil.
func layout[M sparse.Matrix](m M, err error) (sparse.Matrix, error) {
	if err != nil {
		return nil, err
	}
	return m, nil
}

// checkStored enforces that the number of real stored entries equals the
// source nonzero count.
func checkStored(f sparse.Format, got, want int) error {
	if got != want {
		return fmt.Errorf("%s: stored %d entries, source has %d: %w", f, got, want, sparse.ErrInvariant)
	}
	return nil
}

func countReal[I sparse.Index](colIdx []I) int {
	n := 0
	for _, c := range colIdx {
		if c >= 0 {
			n++
		}
	}
	return n
}
