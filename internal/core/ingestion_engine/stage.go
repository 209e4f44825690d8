package ingestion_engine

import "log/slog"

// Stage is the position of one uploaded file in the ingestion state machine.
type Stage string

const (
	StageReceived      Stage = "received"
	StageExtracted     Stage = "extracted"
	StageMetadataReady Stage = "metadata_ready"
	StageChunked       Stage = "chunked"
	StageStoring       Stage = "storing"
	StageParentStored  Stage = "parent_stored"
	StageDone          Stage = "done"
	StageError         Stage = "error"
	StageSkipped       Stage = "skipped"
)

// Terminal reports whether no further transition can follow.
func (s Stage) Terminal() bool {
	return s == StageDone || s == StageError || s == StageSkipped
}

// fileTracker logs every stage transition of one file under a fixed set of attributes.
type fileTracker struct {
	logger *slog.Logger
	result *FileResult
}

func newFileTracker(logger *slog.Logger, result *FileResult) *fileTracker {
	t := &fileTracker{
		logger: logger.With("file", result.Filename),
		result: result,
	}
	t.advance(StageReceived)
	return t
}

func (t *fileTracker) advance(s Stage, attrs ...any) {
	if t.result.Stage.Terminal() {
		return
	}
	t.result.Stage = s
	t.logger.Info("ingest: "+string(s), attrs...)
}

func (t *fileTracker) fail(err error) {
	if t.result.Stage.Terminal() {
		return
	}
	t.result.Stage = StageError
	t.result.Err = err
	t.result.Error = err.Error()
	t.logger.Error("ingest: file failed", "error", err)
}

func (t *fileTracker) skip(err error) {
	if t.result.Stage.Terminal() {
		return
	}
	t.result.Stage = StageSkipped
	t.result.Err = err
	t.result.Error = err.Error()
	t.logger.Warn("ingest: file skipped", "reason", err)
}
