package resumes

import (
	"time"

	"resume-analyzer/internal/analysis"
)

// ResumeResponse is the outward-facing representation of a resume. It never carries
// the raw text or the storage path.
type ResumeResponse struct {
	ID           string          `json:"id"`
	LegacyID     string          `json:"_id"`
	UserID       string          `json:"userId"`
	FileName     string          `json:"fileName"`
	OriginalName string          `json:"originalName"`
	FileSize     int64           `json:"fileSize"`
	Analysis     analysis.Result `json:"analysis"`
	UploadedAt   time.Time       `json:"uploadedAt"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
}

func toResponse(r Resume) ResumeResponse {
	return ResumeResponse{
		ID:           r.ID,
		LegacyID:     r.ID,
		UserID:       r.UserID,
		FileName:     r.FileName,
		OriginalName: r.OriginalName,
		FileSize:     r.FileSize,
		Analysis:     r.Analysis,
		UploadedAt:   r.UploadedAt,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type uploadResponse struct {
	Success  bool            `json:"success"`
	ResumeID string          `json:"resumeId"`
	Analysis analysis.Result `json:"analysis"`
	Message  string          `json:"message"`
	FileName string          `json:"fileName"`
}

type listResponse struct {
	Success bool             `json:"success"`
	Resumes []ResumeResponse `json:"resumes"`
}

type getResponse struct {
	Success bool           `json:"success"`
	Resume  ResumeResponse `json:"resume"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
