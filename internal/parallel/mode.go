package parallel

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownMode is returned by ParseMode for names it does not recognise.
var ErrUnknownMode = errors.New("parallel: unknown execution mode")

// Mode selects how a loop's iteration space is distributed over the pool.
type Mode uint8

const (
	// Serial runs the whole range on the calling goroutine.
	Serial Mode = iota
	// Static splits the range into one contiguous block per worker.
	Static
	// Dynamic lets workers claim fixed-size batches from a shared counter.
	Dynamic
	// Guided claims batches that shrink with the remaining work.
	Guided
)

// Modes lists every mode in flag order.
func Modes() []Mode { return []Mode{Serial, Static, Dynamic, Guided} }

func (m Mode) String() string {
	switch m {
	case Serial:
		return "serial"
	case Static:
		return "static"
	case Dynamic:
		return "dynamic"
	case Guided:
		return "guided"
	default:
		return "mode(" + strconv.Itoa(int(m)) + ")"
	}
}

// ModeFromFlag maps the integer execution flag to a mode. Unsupported flags
// fall back to Static.
func ModeFromFlag(flag int) Mode {
	switch flag {
	case 0:
		return Serial
	case 1:
		return Static
	case 2:
		return Dynamic
	case 3:
		return Guided
	default:
		return Static
	}
}

// ParseMode accepts a mode name or its integer flag.
func ParseMode(s string) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "serial", "seq":
		return Serial, nil
	case "static":
		return Static, nil
	case "dynamic":
		return Dynamic, nil
	case "guided":
		return Guided, nil
	}
	if n, err := strconv.Atoi(s); err == nil && n >= 0 && n <= 3 {
		return ModeFromFlag(n), nil
	}
	return Static, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}
