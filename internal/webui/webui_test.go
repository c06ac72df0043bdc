package webui

import (
	"io"
	"strings"
	"testing"
)

func TestStaticFSServesDashboard(t *testing.T) {
	f, err := StaticFS().Open("index.html")
	if err != nil {
		t.Fatalf("open index.html: %v", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "/v1/runs") {
		t.Fatal("dashboard does not reference the runs API")
	}
}
