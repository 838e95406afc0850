package filetext

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/mkarasev/doccat/internal/core/domain"
)

type memoryStorage struct {
	blobs map[string][]byte
}

func (m *memoryStorage) Save(_ context.Context, key string, data io.Reader) error {
	raw, err := io.ReadAll(data)
	if err != nil {
		return err
	}
	if m.blobs == nil {
		m.blobs = make(map[string][]byte)
	}
	m.blobs[key] = raw
	return nil
}

func (m *memoryStorage) Open(_ context.Context, key string) (io.ReadCloser, error) {
	raw, ok := m.blobs[key]
	if !ok {
		return nil, errors.New("blob not found")
	}
	return io.NopCloser(bytes.NewReader(raw)), nil
}

func (m *memoryStorage) Delete(_ context.Context, key string) error {
	delete(m.blobs, key)
	return nil
}

func TestExtractPlaintext(t *testing.T) {
	storage := &memoryStorage{blobs: map[string][]byte{
		"doc-1": []byte("  monthly account statement\n"),
	}}
	e := New(storage)

	text, err := e.Extract(context.Background(), "doc-1", "statement.txt")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "monthly account statement" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractUnknownExtensionFallsBackToPlaintext(t *testing.T) {
	storage := &memoryStorage{blobs: map[string][]byte{
		"doc-1": []byte("invoice total 42"),
	}}
	e := New(storage)

	text, err := e.Extract(context.Background(), "doc-1", "export.csv")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "invoice total 42" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractRejectsBinaryContent(t *testing.T) {
	storage := &memoryStorage{blobs: map[string][]byte{
		"doc-1": {0xff, 0xfe, 0x00, 0x01},
	}}
	e := New(storage)

	_, err := e.Extract(context.Background(), "doc-1", "payload.bin")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractRejectsCorruptPDF(t *testing.T) {
	storage := &memoryStorage{blobs: map[string][]byte{
		"doc-1": []byte("not a pdf at all"),
	}}
	e := New(storage)

	_, err := e.Extract(context.Background(), "doc-1", "scan.pdf")
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestExtractXLSXCells(t *testing.T) {
	workbook := excelize.NewFile()
	if err := workbook.SetCellValue("Sheet1", "A1", "statement"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	if err := workbook.SetCellValue("Sheet1", "B2", "balance"); err != nil {
		t.Fatalf("set cell: %v", err)
	}
	var buf bytes.Buffer
	if err := workbook.Write(&buf); err != nil {
		t.Fatalf("write workbook: %v", err)
	}
	_ = workbook.Close()

	storage := &memoryStorage{blobs: map[string][]byte{"doc-1": buf.Bytes()}}
	e := New(storage)

	text, err := e.Extract(context.Background(), "doc-1", "report.xlsx")
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if !strings.Contains(text, "statement") || !strings.Contains(text, "balance") {
		t.Fatalf("xlsx cells missing from %q", text)
	}
}

func TestExtractMissingBlob(t *testing.T) {
	e := New(&memoryStorage{})
	if _, err := e.Extract(context.Background(), "missing", "doc.txt"); err == nil {
		t.Fatalf("expected storage error")
	}
}
