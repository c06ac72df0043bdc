package report

import (
	"io"
	"os"

	"github.com/goccy/go-json"

	"github.com/samcharles93/lespmv/internal/harness"
)

func WriteJSON(w io.Writer, rep *harness.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rep)
}

func ReadJSON(r io.Reader) (*harness.Report, error) {
	var rep harness.Report
	if err := json.NewDecoder(r).Decode(&rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// SaveJSON writes rep to path, replacing any existing file.
func SaveJSON(path string, rep *harness.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteJSON(f, rep); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
