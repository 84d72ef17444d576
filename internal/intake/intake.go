// Package intake validates uploaded resume files and writes accepted ones to transient storage.
package intake

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"mime/multipart"
	"path/filepath"
	"strings"
	"time"

	"resume-analyzer/internal/shared/storage/object"
)

// MaxFileSize is the largest accepted upload, in bytes.
const MaxFileSize = 10 << 20

const (
	mimePDF  = "application/pdf"
	mimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedExtensions = map[string]string{
	".pdf":  mimePDF,
	".docx": mimeDOCX,
}

// File is the handle returned for an accepted upload.
type File struct {
	// StoredPath is the object store key the file was written under.
	StoredPath   string
	StoredName   string
	OriginalName string
	Size         int64
}

// Validate checks the original file name and declared size without touching storage.
func Validate(originalName string, size int64) error {
	if strings.TrimSpace(originalName) == "" {
		return noFile()
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	if _, ok := allowedExtensions[ext]; !ok {
		return unsupportedType(ext)
	}
	if size > MaxFileSize {
		return tooLarge()
	}
	return nil
}

// StoredName builds "<unix-millis>-<9 digit random><ext>".
func StoredName(now time.Time, ext string) string {
	return fmt.Sprintf("%d-%09d%s", now.UnixMilli(), rand.Int64N(1_000_000_000), strings.ToLower(ext))
}

// Intake writes validated uploads through an object store.
type Intake struct {
	Store object.ObjectStore
	Now   func() time.Time
}

// New constructs an Intake backed by store.
func New(store object.ObjectStore) *Intake {
	return &Intake{Store: store, Now: time.Now}
}

// Accept validates fh and stores its content under a freshly generated name.
func (i *Intake) Accept(ctx context.Context, fh *multipart.FileHeader) (File, error) {
	if fh == nil {
		return File{}, noFile()
	}
	if err := Validate(fh.Filename, fh.Size); err != nil {
		return File{}, err
	}

	src, err := fh.Open()
	if err != nil {
		return File{}, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return i.Save(ctx, fh.Filename, src)
}

// Save stores r as an upload named originalName. The size limit is enforced while streaming.
func (i *Intake) Save(ctx context.Context, originalName string, r io.Reader) (File, error) {
	if err := Validate(originalName, 0); err != nil {
		return File{}, err
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	now := time.Now
	if i.Now != nil {
		now = i.Now
	}
	name := StoredName(now(), ext)

	n, err := i.Store.SaveWithKey(ctx, name, allowedExtensions[ext], io.LimitReader(r, MaxFileSize+1))
	if err != nil {
		return File{}, fmt.Errorf("store upload: %w", err)
	}
	if n > MaxFileSize {
		_ = i.Store.Delete(context.WithoutCancel(ctx), name)
		return File{}, tooLarge()
	}

	return File{
		StoredPath:   name,
		StoredName:   name,
		OriginalName: displayName(originalName),
		Size:         n,
	}, nil
}

// displayName keeps the client's base name for responses, minus separators and control characters.
func displayName(name string) string {
	base := filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, base)
	base = strings.TrimSpace(strings.ReplaceAll(base, "..", "_"))
	if base == "" || base == "." || base == "/" {
		return "upload"
	}
	return base
}
