package extract

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"resume-analyzer/internal/extract/extracttest"
	"resume-analyzer/internal/shared/storage/object/local"
)

func TestExtractPDF(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()
	if _, err := store.SaveWithKey(ctx, "cv.pdf", "application/pdf", bytes.NewReader(extracttest.PDF("Jane Doe", "Go engineer"))); err != nil {
		t.Fatalf("save: %v", err)
	}

	text, err := New(store, time.Second).Extract(ctx, "cv.pdf")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") || !strings.Contains(text, "Go engineer") {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractPDFWithoutTextLayer(t *testing.T) {
	_, err := FromBytes(".pdf", extracttest.PDF())
	if !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("expected ErrEmptyExtraction, got %v", err)
	}
	if !errors.Is(err, ErrExtraction) {
		t.Fatalf("expected ErrExtraction match, got %v", err)
	}
}

func TestExtractDOCX(t *testing.T) {
	text, err := FromBytes(".docx", extracttest.DOCX("Jane Doe", "Senior Go & Rust engineer"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if text != "Jane Doe\nSenior Go & Rust engineer" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractLegacyDoc(t *testing.T) {
	store := local.New(t.TempDir())
	_, err := New(store, time.Second).Extract(context.Background(), "1700000000000-1.doc")
	if !errors.Is(err, ErrUnsupportedLegacyFormat) {
		t.Fatalf("expected ErrUnsupportedLegacyFormat, got %v", err)
	}
	if err.Error() != "DOC files are not supported. Please convert to PDF or DOCX format." {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestExtractCorruptFile(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data []byte
	}{
		{name: "pdf", ext: ".pdf", data: []byte("not a pdf at all")},
		{name: "docx", ext: ".docx", data: []byte("PK garbage")},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromBytes(tt.ext, tt.data)
			if !errors.Is(err, ErrExtractionFailed) {
				t.Fatalf("expected ErrExtractionFailed, got %v", err)
			}
			var extErr *Error
			if !errors.As(err, &extErr) || extErr.Err == nil {
				t.Fatalf("expected wrapped cause, got %#v", err)
			}
		})
	}
}

func TestExtractOtherExtensionDecodesUTF8(t *testing.T) {
	text, err := FromBytes(".txt", []byte("caf\xc3\xa9 \xff ok"))
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if text != "café � ok" {
		t.Fatalf("unexpected text %q", text)
	}

	if _, err := FromBytes(".txt", []byte("  \n\t ")); !errors.Is(err, ErrEmptyExtraction) {
		t.Fatalf("expected ErrEmptyExtraction, got %v", err)
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := New(local.New(t.TempDir()), time.Second).Extract(context.Background(), "missing.pdf")
	if !errors.Is(err, ErrExtractionFailed) {
		t.Fatalf("expected ErrExtractionFailed, got %v", err)
	}
}

func TestStripDocxXML(t *testing.T) {
	raw := `<w:document xmlns:w="x"><w:body><w:p><w:r><w:t>A</w:t><w:tab/><w:t>B</w:t></w:r></w:p><w:p><w:r><w:t>C</w:t><w:br/><w:t>D</w:t></w:r></w:p></w:body></w:document>`
	got, err := stripDocxXML(raw)
	if err != nil {
		t.Fatalf("stripDocxXML: %v", err)
	}
	if got != "A\tB\nC\nD" {
		t.Fatalf("unexpected %q", got)
	}
}

func TestStripDocxXMLRejectsMalformedMarkup(t *testing.T) {
	raw := `<w:document xmlns:w="x"><w:body><w:p><w:t>Jane Doe</w:p></w:body></w:document>`
	got, err := stripDocxXML(raw)
	if err == nil {
		t.Fatalf("expected error, got text %q", got)
	}
	if strings.Contains(got, "<w:") {
		t.Fatalf("markup leaked into text: %q", got)
	}
}

func TestExtractWaitsForParserSlot(t *testing.T) {
	store := local.New(t.TempDir())
	ctx := context.Background()
	if _, err := store.SaveWithKey(ctx, "cv.pdf", "application/pdf", bytes.NewReader(extracttest.PDF("Jane Doe"))); err != nil {
		t.Fatalf("save: %v", err)
	}

	ex := New(store, 50*time.Millisecond)
	ex.slots = make(chan struct{}, 1)
	ex.slots <- struct{}{}

	_, err := ex.Extract(ctx, "cv.pdf")
	if !errors.Is(err, ErrExtractionFailed) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timed-out extraction, got %v", err)
	}

	<-ex.slots
	text, err := ex.Extract(ctx, "cv.pdf")
	if err != nil {
		t.Fatalf("Extract after release: %v", err)
	}
	if !strings.Contains(text, "Jane Doe") {
		t.Fatalf("unexpected text %q", text)
	}
}
