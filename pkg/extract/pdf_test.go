package extract

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func stagedFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "resume.pdf")
	if err := os.WriteFile(path, []byte("this is not a pdf document"), 0o600); err != nil {
		t.Fatalf("write staged file: %v", err)
	}
	return path
}

func assertRemoved(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("staged file still present: %v", err)
	}
}

func TestExtractRemovesFileOnSuccess(t *testing.T) {
	path := stagedFile(t)
	e := NewPDFExtractor(nil)
	e.parse = func(context.Context, string) (string, error) {
		return "  Go developer\x00 with SQL  ", nil
	}
	text, err := e.Extract(context.Background(), path)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	if text != "Go developer  with SQL" {
		t.Fatalf("text = %q", text)
	}
	assertRemoved(t, path)
}

func TestExtractRemovesFileOnParseError(t *testing.T) {
	path := stagedFile(t)
	e := NewPDFExtractor(nil)
	e.parse = func(context.Context, string) (string, error) {
		return "", errors.New("corrupt xref table")
	}
	if _, err := e.Extract(context.Background(), path); !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
	assertRemoved(t, path)
}

func TestExtractRejectsBlankText(t *testing.T) {
	path := stagedFile(t)
	e := NewPDFExtractor(nil)
	e.parse = func(context.Context, string) (string, error) {
		return " \n\t ", nil
	}
	if _, err := e.Extract(context.Background(), path); !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
	assertRemoved(t, path)
}

func TestExtractInvalidPDFWithRealParser(t *testing.T) {
	path := stagedFile(t)
	e := NewPDFExtractor(nil)
	if _, err := e.Extract(context.Background(), path); !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("err = %v, want ErrExtractionFailed", err)
	}
	assertRemoved(t, path)
}
