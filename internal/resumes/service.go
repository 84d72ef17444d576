package resumes

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"
	"time"

	"resume-analyzer/internal/analysis"
	"resume-analyzer/internal/extract"
	"resume-analyzer/internal/intake"
	"resume-analyzer/internal/shared/metrics"
	"resume-analyzer/internal/shared/storage/object"
	"resume-analyzer/internal/shared/telemetry"
)

// AnonymousUser owns uploads that arrive without a userId.
const AnonymousUser = "anonymous"

const defaultCleanupTimeout = 10 * time.Second

// FileIntake validates and stores an uploaded file.
type FileIntake interface {
	Accept(ctx context.Context, fh *multipart.FileHeader) (intake.File, error)
}

// TextExtractor reads a stored file back as plain text.
type TextExtractor interface {
	Extract(ctx context.Context, storedPath string) (string, error)
}

// Service runs the upload pipeline and the record operations behind the resume routes.
type Service struct {
	Intake    FileIntake
	Extractor TextExtractor
	Analyzer  analysis.Analyzer
	Repo      Repo
	Store     object.ObjectStore
	Now       func() time.Time

	CleanupTimeout time.Duration
}

type UploadInput struct {
	UserID string
	File   *multipart.FileHeader
}

type UploadResult struct {
	ResumeID string
	FileName string
	Analysis analysis.Result
}

// Upload sequences intake, extraction, analysis and persistence for one file.
// Failures are *StageError; every failure after intake removes the stored file first.
func (s *Service) Upload(ctx context.Context, in UploadInput) (UploadResult, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		userID = AnonymousUser
	}
	logStage(stateReceived, userID, "", nil)

	file, err := s.Intake.Accept(ctx, in.File)
	if err != nil {
		return UploadResult{}, s.fail(ctx, StageIntake, userID, "", err)
	}
	logStage(stateValidated, userID, file.StoredPath, nil)

	text, err := s.Extractor.Extract(ctx, file.StoredPath)
	if err == nil && strings.TrimSpace(text) == "" {
		err = &extract.Error{Reason: extract.ErrEmptyExtraction}
	}
	if err != nil {
		return UploadResult{}, s.fail(ctx, StageExtraction, userID, file.StoredPath, err)
	}
	logStage(stateExtracted, userID, file.StoredPath, map[string]any{"text_length": len(text)})

	result, err := s.Analyzer.Analyze(ctx, text)
	if err != nil {
		return UploadResult{}, s.fail(ctx, StageAnalysis, userID, file.StoredPath, err)
	}
	result = analysis.Clamp(result)
	logStage(stateAnalyzed, userID, file.StoredPath, map[string]any{
		"source":    result.Source,
		"degraded":  result.Degraded,
		"ats_score": result.ATSScore,
	})

	now := s.now().UTC()
	id, err := s.Repo.Create(ctx, Resume{
		UserID:       userID,
		FileName:     file.StoredName,
		OriginalName: file.OriginalName,
		FilePath:     file.StoredPath,
		FileSize:     file.Size,
		RawText:      text,
		Analysis:     result,
		UploadedAt:   now,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return UploadResult{}, s.fail(ctx, StagePersist, userID, file.StoredPath, err)
	}
	logStage(statePersisted, userID, file.StoredPath, map[string]any{"resume_id": id})
	metrics.IncUpload(metrics.OutcomeSuccess)

	return UploadResult{
		ResumeID: id,
		FileName: file.OriginalName,
		Analysis: result,
	}, nil
}

// ListByUser returns a user's resumes newest first.
func (s *Service) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID)
}

func (s *Service) Get(ctx context.Context, id string) (Resume, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Resume{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, id)
}

// Delete removes the stored file (best effort) and then the record.
func (s *Service) Delete(ctx context.Context, id string) error {
	res, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if res.FilePath != "" {
		if err := s.Store.Delete(ctx, res.FilePath); err != nil {
			metrics.IncCleanupFailure()
			telemetry.Warn("resume.file_delete_failed", map[string]any{
				"resume_id": res.ID,
				"file_path": res.FilePath,
				"error":     err,
			})
		}
	}
	return s.Repo.DeleteByID(ctx, res.ID)
}

// Ping reports whether the record store is reachable.
func (s *Service) Ping(ctx context.Context) error {
	return s.Repo.Ping(ctx)
}

func (s *Service) fail(ctx context.Context, stage Stage, userID, storedPath string, err error) error {
	if storedPath != "" {
		s.cleanup(ctx, storedPath)
	}
	metrics.IncUpload(outcomeFor(stage))
	logStage(stateFailed, userID, storedPath, map[string]any{
		"stage": string(stage),
		"error": err,
	})
	return &StageError{Stage: stage, Err: err}
}

// cleanup outlives a cancelled request so an aborted upload does not leave its file behind.
func (s *Service) cleanup(ctx context.Context, storedPath string) {
	timeout := s.CleanupTimeout
	if timeout <= 0 {
		timeout = defaultCleanupTimeout
	}
	cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := s.Store.Delete(cctx, storedPath); err != nil && !errors.Is(err, object.ErrNotFound) {
		metrics.IncCleanupFailure()
		telemetry.Warn("upload.cleanup_failed", map[string]any{
			"file_path": storedPath,
			"error":     err,
		})
	}
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func outcomeFor(stage Stage) string {
	switch stage {
	case StageIntake:
		return metrics.OutcomeIntakeFailed
	case StageExtraction:
		return metrics.OutcomeExtractionFailed
	case StageAnalysis:
		return metrics.OutcomeAnalysisFailed
	default:
		return metrics.OutcomePersistFailed
	}
}

func logStage(state, userID, storedPath string, extra map[string]any) {
	fields := map[string]any{
		"state":   state,
		"user_id": userID,
	}
	if storedPath != "" {
		fields["file_path"] = storedPath
	}
	for k, v := range extra {
		fields[k] = v
	}
	if state == stateFailed {
		telemetry.Warn("upload.stage", fields)
		return
	}
	telemetry.Info("upload.stage", fields)
}
