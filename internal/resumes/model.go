package resumes

import (
	"time"

	"resume-analyzer/internal/analysis"
)

// Resume is one uploaded file together with its extracted text and analysis.
type Resume struct {
	ID           string
	UserID       string
	FileName     string
	OriginalName string
	FilePath     string
	FileSize     int64
	RawText      string
	Analysis     analysis.Result
	UploadedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
