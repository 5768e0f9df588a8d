package extract

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestText_Plain(t *testing.T) {
	path := writeFile(t, "alice_smith.txt", "Senior Go engineer.\nPython, Kubernetes.")

	got, err := New().Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if got != "Senior Go engineer.\nPython, Kubernetes." {
		t.Errorf("Text = %q", got)
	}
}

func TestText_HTML(t *testing.T) {
	path := writeFile(t, "bob.html", `<html><head><title>CV</title>
<style>p{color:red}</style></head>
<body><h1>Bob Jones</h1><script>alert(1)</script><p>Backend developer</p></body></html>`)

	got, err := New().Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if strings.Contains(got, "alert") || strings.Contains(got, "color:red") || strings.Contains(got, "CV") {
		t.Errorf("script/style/head leaked into text: %q", got)
	}
	for _, want := range []string{"Bob Jones", "Backend developer"} {
		if !strings.Contains(got, want) {
			t.Errorf("Text = %q, missing %q", got, want)
		}
	}
}

func TestText_Unsupported(t *testing.T) {
	path := writeFile(t, "photo.png", "not text")

	_, err := New().Text(path)
	if !errors.Is(err, ErrUnsupported) {
		t.Errorf("Text = %v, want ErrUnsupported", err)
	}
}

func TestSupported(t *testing.T) {
	e := New()
	cases := map[string]bool{
		"cv.pdf":   true,
		"cv.PDF":   true,
		"cv.html":  true,
		"cv.htm":   true,
		"notes.md": true,
		"cv.txt":   true,
		"cv.docx":  false,
		"photo":    false,
	}
	for name, want := range cases {
		if got := e.Supported(name); got != want {
			t.Errorf("Supported(%q) = %v, want %v", name, got, want)
		}
	}
}
