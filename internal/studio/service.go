// Package studio orchestrates the generation pipeline: it validates requests,
// advances the stage tracker around backend calls, and installs resulting
// artifacts into the session.
package studio

import (
	"context"
	"errors"
	"strings"

	"github.com/rs/zerolog"

	"server/internal/composer"
	"server/internal/domain"
	"server/internal/pipeline"
	"server/internal/session"
)

// Backend is the multimodal generation capability the studio drives. Keeping
// it an interface isolates the pipeline logic from any particular backend
// protocol and keeps it testable with a fake.
type Backend interface {
	Generate(ctx context.Context, payload *composer.Payload) (*domain.Artifact, error)
	Refine(ctx context.Context, artifact *domain.Artifact, instruction string, output composer.OutputType) (*domain.Artifact, error)
	Analyze(ctx context.Context, reference domain.MediaInput) (string, error)
}

// CredentialProvider is the opaque credential capability checked before every
// generation attempt.
type CredentialProvider interface {
	Configured() bool
	Refresh(ctx context.Context) error
}

// Service wires the composer, the stage tracker and the backend together.
type Service struct {
	backend Backend
	creds   CredentialProvider
	logger  zerolog.Logger
}

func NewService(backend Backend, creds CredentialProvider, logger zerolog.Logger) *Service {
	return &Service{backend: backend, creds: creds, logger: logger}
}

// Generate runs one top-level generation for the session. A missing or stale
// credential triggers exactly one refresh-and-retry cycle; every other
// failure aborts the attempt and requires an explicit re-trigger.
func (s *Service) Generate(ctx context.Context, sess *session.Session, req composer.Request) (*domain.Artifact, error) {
	refreshed := false
	if !s.creds.Configured() {
		if err := s.creds.Refresh(ctx); err != nil {
			s.logger.Warn().Err(err).Msg("studio: credential refresh failed")
		}
		refreshed = true
		if !s.creds.Configured() {
			return nil, domain.ErrMissingCredential
		}
	}

	artifact, err := s.generateOnce(ctx, sess, req)
	if errors.Is(err, domain.ErrMissingCredential) && !refreshed {
		if rerr := s.creds.Refresh(ctx); rerr != nil {
			s.logger.Warn().Err(rerr).Msg("studio: credential refresh failed")
			return nil, err
		}
		if !s.creds.Configured() {
			return nil, err
		}
		// Resume by re-invoking generation from the beginning; the tracker
		// does not auto-retry internally.
		artifact, err = s.generateOnce(ctx, sess, req)
	}
	return artifact, err
}

func (s *Service) generateOnce(ctx context.Context, sess *session.Session, req composer.Request) (*domain.Artifact, error) {
	// Validation happens before any stage is touched or any I/O attempted.
	scenario, err := composer.SelectScenario(req.Subject.Present(), req.Reference.Present(), strings.TrimSpace(req.Brief) != "")
	if err != nil {
		return nil, err
	}

	tracker := sess.Stages
	fingerprint := req.Reference.Fingerprint()
	notes, cached := sess.Analysis(fingerprint)
	tracker.Reset(cached)

	if tracker.StatusOf(pipeline.StageAnalysis) != pipeline.StatusCompleted {
		if err := tracker.Start(pipeline.StageAnalysis); err != nil {
			return nil, err
		}
		switch {
		case !req.Reference.Present():
			_ = tracker.Complete(pipeline.StageAnalysis, "no reference image to analyze")
		default:
			fresh, analyzeErr := s.backend.Analyze(ctx, req.Reference)
			if analyzeErr != nil {
				// Analysis failure degrades gracefully; generation proceeds
				// without technical notes.
				s.logger.Warn().Err(analyzeErr).Str("session", sess.ID).Msg("studio: reference analysis failed")
				_ = tracker.Complete(pipeline.StageAnalysis, "analysis unavailable; continuing without technical notes")
			} else {
				notes = fresh
				sess.SetAnalysis(fingerprint, fresh)
				_ = tracker.Complete(pipeline.StageAnalysis, "")
			}
		}
	}

	for _, id := range []pipeline.StageID{pipeline.StagePoseMapping, pipeline.StageRelighting, pipeline.StageCompositing} {
		if err := tracker.Start(id); err != nil {
			return nil, err
		}
		_ = tracker.Complete(id, "")
	}

	if err := tracker.Start(pipeline.StageFinalRender); err != nil {
		return nil, err
	}

	req.AnalysisContext = notes
	payload, err := composer.Compose(req)
	if err != nil {
		_ = tracker.Fail(pipeline.StageFinalRender, stageDetail(err))
		return nil, err
	}

	s.logger.Info().
		Str("session", sess.ID).
		Str("scenario", string(scenario)).
		Str("aspect_ratio", payload.Format.AspectRatio).
		Int("media_parts", len(payload.Media)).
		Msg("studio: dispatching generation")

	artifact, err := s.backend.Generate(ctx, payload)
	if err != nil {
		s.logger.Error().Err(err).Str("session", sess.ID).Msg("studio: generation failed")
		_ = tracker.Fail(pipeline.StageFinalRender, stageDetail(err))
		return nil, err
	}

	_ = tracker.Complete(pipeline.StageFinalRender, "")
	sess.SetArtifact(artifact)
	return artifact, nil
}

// Refine applies a targeted edit to the session's current artifact. Only the
// final-render stage changes status; a failed refinement never discards the
// last good artifact.
func (s *Service) Refine(ctx context.Context, sess *session.Session, instruction string, output composer.OutputType) (*domain.Artifact, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return nil, domain.ErrInvalidRequest
	}
	prior := sess.Artifact()
	if prior == nil {
		return nil, domain.ErrNotFound
	}
	if err := sess.Stages.RestartFinal(); err != nil {
		return nil, domain.ErrInvalidRequest
	}

	refined, err := s.backend.Refine(ctx, prior, instruction, output)
	if err != nil {
		s.logger.Error().Err(err).Str("session", sess.ID).Msg("studio: refinement failed")
		_ = sess.Stages.Fail(pipeline.StageFinalRender, stageDetail(err))
		return nil, err
	}

	_ = sess.Stages.Complete(pipeline.StageFinalRender, "")
	sess.SetArtifact(refined)
	return refined, nil
}

// stageDetail maps an error onto the text shown on the failed stage. Refusal
// text is surfaced verbatim; transport details stay in the logs.
func stageDetail(err error) string {
	if detail := domain.RefusalDetail(err); detail != "" {
		return detail
	}
	switch {
	case errors.Is(err, domain.ErrMissingCredential):
		return "no usable API credential configured"
	case errors.Is(err, domain.ErrEmptyResponse):
		return "the backend returned neither an image nor an explanation"
	case errors.Is(err, domain.ErrInvalidRequest):
		return "the request had no usable input combination"
	default:
		return "generation failed; full details are in the server logs"
	}
}
