package interactions

import "context"

// Appender records assessments and chat turns.
// Implementations must make each append atomic under concurrent callers.
type Appender interface {
	AppendAssessment(ctx context.Context, r AssessmentRecord) error
	AppendChatTurn(ctx context.Context, t ChatTurn) error
}

// Log is the append-only record of assessments and chat turns.
type Log interface {
	Appender
	Snapshot(ctx context.Context) (Snapshot, error)
}

// ArtifactStore uploads exported snapshots and returns their URL
type ArtifactStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
