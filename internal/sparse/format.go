package sparse

import (
	"fmt"
	"strings"
)

// Format identifies a storage layout.
type Format uint8

const (
	FormatCSR Format = iota
	FormatCOO
	FormatELL
	FormatDIA
	FormatSELL
	FormatSELLSigma
	FormatSELLR
)

var formatNames = [...]string{
	FormatCSR:       "csr",
	FormatCOO:       "coo",
	FormatELL:       "ell",
	FormatDIA:       "dia",
	FormatSELL:      "s-ell",
	FormatSELLSigma: "sell-c-sigma",
	FormatSELLR:     "sell-c-r",
}

func (f Format) String() string {
	if int(f) < len(formatNames) {
		return formatNames[f]
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// ParseFormat accepts the canonical names plus a few common spellings.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csr":
		return FormatCSR, nil
	case "coo":
		return FormatCOO, nil
	case "ell":
		return FormatELL, nil
	case "dia":
		return FormatDIA, nil
	case "s-ell", "sell", "s_ell":
		return FormatSELL, nil
	case "sell-c-sigma", "sell-c-s", "sell_c_sigma":
		return FormatSELLSigma, nil
	case "sell-c-r", "sell_c_r":
		return FormatSELLR, nil
	default:
		return 0, fmt.Errorf("unknown format %q: %w", s, ErrConfiguration)
	}
}

func (f Format) MarshalText() ([]byte, error) { return []byte(f.String()), nil }

func (f *Format) UnmarshalText(b []byte) error {
	v, err := ParseFormat(string(b))
	if err != nil {
		return err
	}
	*f = v
	return nil
}

// KernelFormats lists the layouts that have a kernel family, in evaluation order.
func KernelFormats() []Format {
	return []Format{FormatCSR, FormatCOO, FormatELL, FormatDIA, FormatSELL, FormatSELLSigma, FormatSELLR}
}

// Order is the leading dimension of padded-width storage.
type Order uint8

const (
	RowMajor Order = iota
	ColMajor
)

func (o Order) String() string {
	if o == ColMajor {
		return "col"
	}
	return "row"
}

func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "row", "rowmajor", "row-major":
		return RowMajor, nil
	case "col", "colmajor", "col-major", "column":
		return ColMajor, nil
	default:
		return RowMajor, fmt.Errorf("unknown leading dimension %q: %w", s, ErrConfiguration)
	}
}

// MarshalText lets Order round-trip through YAML and JSON as "row"/"col".
func (o Order) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

func (o *Order) UnmarshalText(b []byte) error {
	v, err := ParseOrder(string(b))
	if err != nil {
		return err
	}
	*o = v
	return nil
}
