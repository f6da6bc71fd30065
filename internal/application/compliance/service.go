package compliance

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bryanwahyu/audit-compliance/internal/application"
	"github.com/bryanwahyu/audit-compliance/internal/domain/ai"
	"github.com/bryanwahyu/audit-compliance/internal/domain/controls"
	"github.com/bryanwahyu/audit-compliance/internal/domain/interactions"
	"github.com/bryanwahyu/audit-compliance/internal/infra/ai/prompt"
)

// Model settings per use case. Gap analysis has its own model and sampling.
const (
	AssessModel       = "llama-3.3-70b-versatile"
	AssessTemperature = 0.7
	AssessMaxTokens   = 1024

	ChatModel       = "llama-3.3-70b-versatile"
	ChatTemperature = 0.7
	ChatMaxTokens   = 1024

	GapModel       = "llama-3.1-70b-versatile"
	GapTemperature = 0.5
	GapMaxTokens   = 1500

	DefaultTimeout = 60 * time.Second
)

// Operation names used for metrics and logs
const (
	OpAssess = "assess"
	OpChat   = "chat"
	OpGap    = "gap_analysis"
)

// Observer receives one sample per completion attempt.
type Observer interface {
	ObserveCompletion(operation, outcome string, elapsed time.Duration)
}

// Service implements the assess, chat and gap-analysis use cases.
// It is safe for concurrent use as long as Log and Journal are.
type Service struct {
	Catalogue *controls.Catalogue
	Backend   ai.Backend
	Log       interactions.Log

	// Journal optionally mirrors every append (e.g. a SQL table). Failures are logged only.
	Journal interactions.Appender
	// Artifacts optionally receives exported snapshots.
	Artifacts interactions.ArtifactStore
	Observer  Observer

	Clock   application.Clock
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Controls lists the catalogue in display order.
func (s *Service) Controls() []controls.Control {
	return s.Catalogue.List()
}

// Assess returns AI guidance for one control and records it.
func (s *Service) Assess(ctx context.Context, controlID string) (string, error) {
	client, err := s.client(OpAssess)
	if err != nil {
		return "", err
	}
	ctl, ok := s.Catalogue.Lookup(controlID)
	if !ok {
		s.Logger.Warn().Str("control_id", controlID).Msg("invalid control id")
		return "", &ValidationError{Msg: fmt.Sprintf("Invalid control ID: %s", controlID)}
	}

	p := prompt.Assessment(ctl)
	s.Logger.Debug().Str("op", OpAssess).Str("control_id", ctl.ID).Str("prompt", p).Msg("prompt built")

	text, err := s.complete(ctx, client, OpAssess, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: p}},
		Model:       AssessModel,
		Temperature: AssessTemperature,
		MaxTokens:   AssessMaxTokens,
	})
	if err != nil {
		return "", err
	}

	rec := interactions.AssessmentRecord{
		ID:         uuid.New().String(),
		ControlID:  ctl.ID,
		Timestamp:  s.now(),
		Assessment: text,
	}
	if err := s.Log.AppendAssessment(ctx, rec); err != nil {
		return "", &ServiceError{Err: fmt.Errorf("record assessment: %w", err)}
	}
	if s.Journal != nil {
		if err := s.Journal.AppendAssessment(ctx, rec); err != nil {
			s.Logger.Error().Err(err).Str("record_id", rec.ID).Msg("journal assessment failed")
		}
	}
	return text, nil
}

// Chat answers a free-form compliance question and records the turn.
func (s *Service) Chat(ctx context.Context, message string) (string, error) {
	client, err := s.client(OpChat)
	if err != nil {
		return "", err
	}
	if message == "" {
		return "", &ValidationError{Msg: "message is required"}
	}

	text, err := s.complete(ctx, client, OpChat, ai.CompletionRequest{
		Messages: []ai.Message{
			{Role: ai.RoleSystem, Content: prompt.ChatSystem()},
			{Role: ai.RoleUser, Content: message},
		},
		Model:       ChatModel,
		Temperature: ChatTemperature,
		MaxTokens:   ChatMaxTokens,
	})
	if err != nil {
		return "", err
	}

	turn := interactions.ChatTurn{
		ID:        uuid.New().String(),
		Timestamp: s.now(),
		User:      message,
		Assistant: text,
	}
	if err := s.Log.AppendChatTurn(ctx, turn); err != nil {
		return "", &ServiceError{Err: fmt.Errorf("record chat turn: %w", err)}
	}
	if s.Journal != nil {
		if err := s.Journal.AppendChatTurn(ctx, turn); err != nil {
			s.Logger.Error().Err(err).Str("record_id", turn.ID).Msg("journal chat turn failed")
		}
	}
	return text, nil
}

// GapAnalysis compares a described implementation with a control. Nothing is recorded.
func (s *Service) GapAnalysis(ctx context.Context, controlID, description string) (string, error) {
	ctl, ok := s.Catalogue.Lookup(controlID)
	if !ok {
		return "", &ValidationError{Msg: "Invalid control ID"}
	}
	if description == "" {
		return "", &ValidationError{Msg: "description is required"}
	}
	client, err := s.client(OpGap)
	if err != nil {
		return "", err
	}

	return s.complete(ctx, client, OpGap, ai.CompletionRequest{
		Messages:    []ai.Message{{Role: ai.RoleUser, Content: prompt.GapAnalysis(ctl, description)}},
		Model:       GapModel,
		Temperature: GapTemperature,
		MaxTokens:   GapMaxTokens,
	})
}

// History returns a copy of the interaction log.
func (s *Service) History(ctx context.Context) (interactions.Snapshot, error) {
	snap, err := s.Log.Snapshot(ctx)
	if err != nil {
		return interactions.Snapshot{}, &ServiceError{Err: fmt.Errorf("read history: %w", err)}
	}
	return snap, nil
}

// Archive uploads the current log as JSON and returns the object URL.
func (s *Service) Archive(ctx context.Context) (string, error) {
	if s.Artifacts == nil {
		return "", &ConfigurationError{Msg: "archive storage not configured"}
	}
	snap, err := s.History(ctx)
	if err != nil {
		return "", err
	}
	body, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return "", &ServiceError{Err: fmt.Errorf("encode history: %w", err)}
	}

	now := s.now().UTC()
	key := fmt.Sprintf("interactions/%s/%s-%s.json", now.Format("2006-01-02"), now.Format("150405"), uuid.New().String())
	url, err := s.Artifacts.Upload(ctx, key, body, "application/json")
	if err != nil {
		return "", &ServiceError{Err: fmt.Errorf("upload archive: %w", err)}
	}
	s.Logger.Info().Str("key", key).Int("assessments", len(snap.Assessments)).Int("chat_turns", len(snap.ChatHistory)).Msg("history archived")
	return url, nil
}

// client pattern-matches the backend variant.
func (s *Service) client(op string) (ai.Completer, error) {
	switch b := s.Backend.(type) {
	case ai.Configured:
		return b.Client, nil
	case ai.Disabled:
		s.observe(op, "disabled", 0)
		s.Logger.Error().Str("op", op).Msg(b.Message())
		return nil, &ConfigurationError{Msg: b.Message()}
	default:
		return nil, &ConfigurationError{Msg: ai.DefaultDisabledReason}
	}
}

func (s *Service) complete(ctx context.Context, client ai.Completer, op string, req ai.CompletionRequest) (string, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	text, err := client.Complete(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		outcome := "error"
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			outcome = "timeout"
			err = fmt.Errorf("completion timed out after %s: %w", timeout, err)
		case errors.Is(err, ai.ErrQuotaExceeded):
			outcome = "quota"
		}
		s.observe(op, outcome, elapsed)
		s.Logger.Error().Err(err).Str("op", op).Str("model", req.Model).Dur("elapsed", elapsed).Msg("completion failed")
		return "", &ServiceError{Err: err}
	}

	s.observe(op, "success", elapsed)
	s.Logger.Info().Str("op", op).Str("model", req.Model).Int("chars", len(text)).Dur("elapsed", elapsed).Msg("completion received")
	s.Logger.Debug().Str("op", op).Str("response", text).Msg("completion body")
	return text, nil
}

func (s *Service) observe(op, outcome string, elapsed time.Duration) {
	if s.Observer != nil {
		s.Observer.ObserveCompletion(op, outcome, elapsed)
	}
}

func (s *Service) now() time.Time {
	if s.Clock == nil {
		return time.Now()
	}
	return s.Clock.Now()
}
