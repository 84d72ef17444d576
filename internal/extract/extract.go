// Package extract turns a stored resume file into plain text.
package extract

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"

	"resume-analyzer/internal/shared/storage/object"
)

// DefaultTimeout bounds a single extraction when none is configured.
const DefaultTimeout = 30 * time.Second

// Extractor reads stored files through an object store and dispatches on extension.
type Extractor struct {
	Store   object.ObjectStore
	Timeout time.Duration

	// slots caps running parsers; nil means no cap.
	slots chan struct{}
}

// New constructs an Extractor. A non-positive timeout falls back to DefaultTimeout.
func New(store object.ObjectStore, timeout time.Duration) *Extractor {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Extractor{Store: store, Timeout: timeout, slots: make(chan struct{}, runtime.GOMAXPROCS(0))}
}

// Extract returns the text of the file stored under storedPath.
func (e *Extractor) Extract(ctx context.Context, storedPath string) (string, error) {
	ext := strings.ToLower(filepath.Ext(storedPath))
	if ext == ".doc" {
		return "", &Error{Reason: ErrUnsupportedLegacyFormat}
	}

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body, err := e.Store.Open(ctx, storedPath)
	if err != nil {
		return "", failed(fmt.Errorf("open %s: %w", storedPath, err))
	}
	raw, err := io.ReadAll(body)
	body.Close()
	if err != nil {
		return "", failed(fmt.Errorf("read %s: %w", storedPath, err))
	}

	type result struct {
		text string
		err  error
	}
	// Neither parser takes a context, so a timed-out parse keeps running and
	// keeps its slot until it returns.
	if e.slots != nil {
		select {
		case e.slots <- struct{}{}:
		case <-ctx.Done():
			return "", failed(ctx.Err())
		}
	}
	done := make(chan result, 1)
	go func() {
		if e.slots != nil {
			defer func() { <-e.slots }()
		}
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: failed(fmt.Errorf("parser panic: %v", r))}
			}
		}()
		text, err := FromBytes(ext, raw)
		done <- result{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", failed(ctx.Err())
	case res := <-done:
		return res.text, res.err
	}
}

// FromBytes extracts text from an in-memory payload given its extension.
func FromBytes(ext string, data []byte) (string, error) {
	var (
		text string
		err  error
	)
	switch strings.ToLower(ext) {
	case ".pdf":
		text, err = extractPDF(data)
	case ".docx":
		text, err = extractDOCX(data)
	case ".doc":
		return "", &Error{Reason: ErrUnsupportedLegacyFormat}
	default:
		text = strings.ToValidUTF8(string(data), "�")
	}
	if err != nil {
		return "", failed(err)
	}
	if strings.TrimSpace(text) == "" {
		return "", &Error{Reason: ErrEmptyExtraction}
	}
	return text, nil
}

func extractPDF(data []byte) (string, error) {
	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	fonts := make(map[string]*pdf.Font)
	var sb strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		for _, name := range page.Fonts() {
			if _, ok := fonts[name]; !ok {
				f := page.Font(name)
				fonts[name] = &f
			}
		}
		text, err := page.GetPlainText(fonts)
		if err != nil {
			return "", fmt.Errorf("page %d: %w", i, err)
		}
		sb.WriteString(text)
	}
	return sb.String(), nil
}

func extractDOCX(data []byte) (string, error) {
	doc, err := docx.ReadDocxFromMemory(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	defer doc.Close()
	return stripDocxXML(doc.Editable().GetContent())
}

func stripDocxXML(raw string) (string, error) {
	decoder := xml.NewDecoder(strings.NewReader(raw))
	var buf strings.Builder
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", fmt.Errorf("document xml: %w", err)
		}
		switch t := tok.(type) {
		case xml.CharData:
			buf.WriteString(string(t))
		case xml.StartElement:
			if t.Name.Local == "tab" {
				buf.WriteString("\t")
			}
		case xml.EndElement:
			if t.Name.Local == "p" || t.Name.Local == "br" {
				if buf.Len() > 0 {
					buf.WriteString("\n")
				}
			}
		}
	}
	return strings.TrimSpace(buf.String()), nil
}
