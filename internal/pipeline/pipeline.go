// Package pipeline sequences one transcription request end to end:
// transcribe, analyze emotion, persist. It owns the temporary audio file
// from intake onward and removes it on every exit path. Emotion analysis
// is best-effort and degrades to fallback values; transcription and
// persistence failures abort the run.
package pipeline

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"voicenotes/internal/ai"
	"voicenotes/internal/model"
	"voicenotes/internal/repository"
	"voicenotes/internal/storage"
	"voicenotes/internal/stt"
)

// Input identifies one accepted upload handed over by intake.
type Input struct {
	Path             string
	OriginalFilename string
	Size             int64
}

// Runner is the interface the API layer drives. Satisfied by *Pipeline;
// tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, in Input) (*model.TranscriptionRecord, error)
}

// Pipeline orchestrates one request. A nil analyzer disables the emotion
// step (fallback values are used); a nil repository disables persistence.
type Pipeline struct {
	provider stt.Provider
	analyzer ai.Analyzer
	repo     repository.RecordRepository
	log      *logrus.Entry
}

// New creates a pipeline. provider is required; analyzer and repo may be
// nil to disable their steps.
func New(provider stt.Provider, analyzer ai.Analyzer, repo repository.RecordRepository, log *logrus.Entry) *Pipeline {
	return &Pipeline{
		provider: provider,
		analyzer: analyzer,
		repo:     repo,
		log:      log,
	}
}

// Run executes the pipeline for one upload. The temporary file at in.Path
// is removed exactly once, whatever branch is taken.
func (p *Pipeline) Run(ctx context.Context, in Input) (*model.TranscriptionRecord, error) {
	defer storage.Cleanup(in.Path, p.log)

	log := p.log.WithField("filename", in.OriginalFilename)

	result, err := p.provider.Transcribe(ctx, in.Path)
	if err != nil {
		log.WithField("provider", p.provider.Name()).WithField("error", err.Error()).Error("transcription failed")
		return nil, err
	}
	log.WithFields(logrus.Fields{
		"provider": p.provider.Name(),
		"language": result.Language,
		"chars":    len(result.Text),
	}).Info("transcription completed")

	analysis := p.analyze(ctx, result.Text, log)

	record := &model.TranscriptionRecord{
		Transcription:    result.Text,
		Language:         result.Language,
		Duration:         result.Duration,
		OriginalFilename: in.OriginalFilename,
		Emotion:          analysis.Emotion,
		Tone:             analysis.Tone,
		EmotionReason:    analysis.Reason,
		CreatedAt:        time.Now().UTC(),
	}

	if p.repo != nil {
		saved, err := p.repo.Insert(ctx, record)
		if err != nil {
			log.WithField("error", err.Error()).Error("failed to persist transcription record")
			return nil, err
		}
		record = saved
		log.WithField("record_id", record.ID.Hex()).Info("transcription record saved")
	}

	return record, nil
}

// analyze runs the emotion step. Any failure here is logged and replaced
// with fallback values; the transcript is mandatory, the emotion data is not.
func (p *Pipeline) analyze(ctx context.Context, transcript string, log *logrus.Entry) *ai.Analysis {
	if p.analyzer == nil {
		return ai.Fallback()
	}

	analysis, err := p.analyzer.Analyze(ctx, transcript)
	if err != nil {
		log.WithField("error", err.Error()).Warn("emotion analysis failed, using fallback values")
		return ai.Fallback()
	}
	return analysis
}
