package app

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"resxai/internal/events"
	"resxai/internal/util"
	"resxai/pkg/domain"
	"resxai/pkg/storage"
)

// Upload is a resume already staged on local disk.
type Upload struct {
	Filename    string
	Path        string
	ContentType string
	Size        int64
}

// UploadResume runs extraction, scoring and persistence for one staged
// resume and announces the change. Any failure leaves no record behind and
// is reported as ErrAnalysisFailed. The staged file is always removed.
func (a *App) UploadResume(ctx context.Context, owner domain.Account, upload *Upload, jobDescription string) (domain.AnalysisRecord, error) {
	if upload == nil {
		return domain.AnalysisRecord{}, ErrNoFileProvided
	}
	// uploads run to completion even if the client goes away
	ctx = context.WithoutCancel(ctx)
	logger := util.LoggerFromContext(ctx).With("account_id", owner.ID, "filename", upload.Filename)
	started := a.now()
	id := util.NewID()

	storageKey := a.archiveOriginal(ctx, owner.ID, id, upload)
	fail := func(stage string, err error) (domain.AnalysisRecord, error) {
		logger.Error("resume analysis failed", "stage", stage, "error", err)
		if storageKey != "" {
			if delErr := a.archive.Delete(ctx, storageKey); delErr != nil {
				logger.Warn("remove archived resume failed", "key", storageKey, "error", delErr)
			}
		}
		return domain.AnalysisRecord{}, fmt.Errorf("%w: %s: %w", ErrAnalysisFailed, stage, err)
	}

	text, err := a.extractor.Extract(ctx, upload.Path)
	if err != nil {
		return fail("extract", err)
	}

	jd := strings.TrimSpace(jobDescription)
	if jd == "" {
		jd = a.defaultJD
	}
	result, err := a.scorer.Score(ctx, text, jd)
	if err != nil {
		return fail("score", err)
	}

	finished := a.now()
	record := domain.AnalysisRecord{
		ID:             id,
		OwnerID:        owner.ID,
		Filename:       filepath.Base(upload.Filename),
		Skills:         orEmpty(result.ExtractedSkills),
		MissingSkills:  orEmpty(result.MissingSkills),
		Score:          min(max(result.MatchPercentage, 0), 100),
		ProcessingTime: elapsedSeconds(started, finished),
		StorageKey:     storageKey,
		CreatedAt:      finished.UTC(),
	}
	if err := a.store.SaveRecord(record); err != nil {
		return fail("persist", err)
	}

	a.notifyChanged(ctx)
	if owner.Settings.Notifications.AnalysisComplete && a.events != nil {
		if err := a.events.PublishAnalysisCompleted(ctx, events.NewAnalysisCompleted(owner, record)); err != nil {
			logger.Warn("publish analysis.completed failed", "record_id", record.ID, "error", err)
		}
	}
	logger.Info("resume analyzed", "record_id", record.ID, "score", record.Score, "processing_time", record.ProcessingTime)
	return record, nil
}

// archiveOriginal copies the staged file to object storage and returns its
// key, or "" when archiving is disabled or fails.
func (a *App) archiveOriginal(ctx context.Context, ownerID, id string, upload *Upload) string {
	if a.archive == nil {
		return ""
	}
	f, err := os.Open(upload.Path)
	if err != nil {
		a.logger.Warn("open staged resume for archive failed", "error", err)
		return ""
	}
	defer f.Close()
	size := upload.Size
	if info, err := f.Stat(); err == nil {
		size = info.Size()
	}
	key := storage.ArchiveKey(ownerID, id)
	if err := a.archive.Put(ctx, key, f, size, "application/pdf"); err != nil {
		a.logger.Warn("archive resume failed", "key", key, "error", err)
		return ""
	}
	return key
}

func elapsedSeconds(start, end time.Time) int {
	d := end.Sub(start)
	if d < 0 {
		return 0
	}
	return int(math.Round(d.Seconds()))
}

func orEmpty(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
