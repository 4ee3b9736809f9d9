package pipeline

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"voicenotes/internal/ai"
	apperrors "voicenotes/internal/errors"
	"voicenotes/internal/model"
	"voicenotes/internal/stt"
)

type fakeProvider struct {
	result *stt.Result
	err    error
	calls  int
}

func (f *fakeProvider) Transcribe(ctx context.Context, path string) (*stt.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func (f *fakeProvider) Name() string { return "fake" }

type fakeAnalyzer struct {
	analysis *ai.Analysis
	err      error
	calls    int
	lastText string
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, transcript string) (*ai.Analysis, error) {
	f.calls++
	f.lastText = transcript
	if f.err != nil {
		return nil, f.err
	}
	return f.analysis, nil
}

type fakeRepo struct {
	inserted []*model.TranscriptionRecord
	err      error
}

func (f *fakeRepo) Insert(ctx context.Context, rec *model.TranscriptionRecord) (*model.TranscriptionRecord, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inserted = append(f.inserted, rec)
	return rec, nil
}

func (f *fakeRepo) List(ctx context.Context, limit, offset int) ([]model.TranscriptionRecord, error) {
	return nil, nil
}

func (f *fakeRepo) GetByID(ctx context.Context, id string) (*model.TranscriptionRecord, error) {
	return nil, nil
}

func (f *fakeRepo) Delete(ctx context.Context, id string) error { return nil }

func testLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.PanicLevel)
	return logrus.NewEntry(l)
}

func writeTempAudio(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "audio-1-abcd.mp3")
	if err := os.WriteFile(path, []byte("fake audio"), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func TestRun_AllStepsSucceed(t *testing.T) {
	provider := &fakeProvider{result: &stt.Result{Text: "hello world", Language: "en", Duration: 3}}
	analyzer := &fakeAnalyzer{analysis: &ai.Analysis{Emotion: "happy", Tone: "casual", Reason: "upbeat wording"}}
	repo := &fakeRepo{}
	path := writeTempAudio(t)

	record, err := New(provider, analyzer, repo, testLog()).Run(context.Background(), Input{
		Path:             path,
		OriginalFilename: "greeting.mp3",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if record.Transcription != "hello world" || record.Language != "en" || record.Duration != 3 {
		t.Errorf("transcription fields not carried through: %+v", record)
	}
	if record.Emotion != "happy" || record.Tone != "casual" || record.EmotionReason != "upbeat wording" {
		t.Errorf("analysis fields not carried through: %+v", record)
	}
	if record.OriginalFilename != "greeting.mp3" {
		t.Errorf("expected original filename kept, got %s", record.OriginalFilename)
	}
	if record.CreatedAt.IsZero() {
		t.Error("expected creation timestamp to be set")
	}

	if len(repo.inserted) != 1 {
		t.Fatalf("expected exactly one persisted record, got %d", len(repo.inserted))
	}
	if repo.inserted[0] != record {
		t.Error("persisted record and returned record must match")
	}
	if analyzer.lastText != "hello world" {
		t.Errorf("analyzer must receive the transcript, got %q", analyzer.lastText)
	}

	if fileExists(path) {
		t.Error("temp file must be removed after a successful run")
	}
}

func TestRun_AnalysisFailureDegradesToFallback(t *testing.T) {
	provider := &fakeProvider{result: &stt.Result{Text: "hello", Language: "en"}}
	analyzer := &fakeAnalyzer{err: apperrors.RateLimited()}
	repo := &fakeRepo{}
	path := writeTempAudio(t)

	record, err := New(provider, analyzer, repo, testLog()).Run(context.Background(), Input{Path: path, OriginalFilename: "a.mp3"})
	if err != nil {
		t.Fatalf("analysis failure must not abort the pipeline: %v", err)
	}
	if record.Emotion != "neutral" || record.Tone != "neutral" {
		t.Errorf("expected neutral fallback, got %+v", record)
	}
	if record.EmotionReason == "" {
		t.Error("fallback reason must be populated")
	}
	if len(repo.inserted) != 1 {
		t.Error("record must still be persisted with fallback values")
	}
	if fileExists(path) {
		t.Error("temp file must be removed")
	}
}

func TestRun_TranscriptionFailureAborts(t *testing.T) {
	provider := &fakeProvider{err: apperrors.RateLimited()}
	analyzer := &fakeAnalyzer{analysis: ai.Fallback()}
	repo := &fakeRepo{}
	path := writeTempAudio(t)

	_, err := New(provider, analyzer, repo, testLog()).Run(context.Background(), Input{Path: path, OriginalFilename: "a.mp3"})
	if err == nil {
		t.Fatal("expected transcription error to propagate")
	}
	if apperrors.StatusOf(err) != http.StatusTooManyRequests {
		t.Errorf("429 must pass through exactly, got %d", apperrors.StatusOf(err))
	}
	if analyzer.calls != 0 {
		t.Error("analysis must not run after failed transcription")
	}
	if len(repo.inserted) != 0 {
		t.Error("nothing may be persisted after failed transcription")
	}
	if fileExists(path) {
		t.Error("temp file must be removed on the failure path too")
	}
}

func TestRun_PersistenceFailureAborts(t *testing.T) {
	provider := &fakeProvider{result: &stt.Result{Text: "hello", Language: "en"}}
	analyzer := &fakeAnalyzer{analysis: ai.Fallback()}
	repo := &fakeRepo{err: apperrors.Persistence(os.ErrClosed)}
	path := writeTempAudio(t)

	_, err := New(provider, analyzer, repo, testLog()).Run(context.Background(), Input{Path: path, OriginalFilename: "a.mp3"})
	if err == nil {
		t.Fatal("expected persistence error to propagate")
	}
	appErr, ok := apperrors.As(err)
	if !ok || appErr.Code != apperrors.ErrCodePersistence {
		t.Errorf("expected PERSISTENCE_ERROR, distinguishable from upstream errors, got %v", err)
	}
	if fileExists(path) {
		t.Error("temp file must be removed")
	}
}

func TestRun_DisabledStepsAreSkipped(t *testing.T) {
	provider := &fakeProvider{result: &stt.Result{Text: "hello", Language: "en"}}
	path := writeTempAudio(t)

	// nil analyzer and nil repo: transcription-only configuration.
	record, err := New(provider, nil, nil, testLog()).Run(context.Background(), Input{Path: path, OriginalFilename: "a.mp3"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.Emotion != "neutral" || record.Tone != "neutral" {
		t.Errorf("disabled analysis must yield fallback values, got %+v", record)
	}
	if !record.ID.IsZero() {
		t.Error("no id may be assigned without persistence")
	}
	if fileExists(path) {
		t.Error("temp file must be removed")
	}
}

func TestRun_IdenticalUploadsAreNotDeduplicated(t *testing.T) {
	provider := &fakeProvider{result: &stt.Result{Text: "same", Language: "en"}}
	repo := &fakeRepo{}
	p := New(provider, nil, repo, testLog())

	for i := 0; i < 2; i++ {
		path := writeTempAudio(t)
		if _, err := p.Run(context.Background(), Input{Path: path, OriginalFilename: "same.mp3"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if len(repo.inserted) != 2 {
		t.Errorf("two identical uploads must produce two records, got %d", len(repo.inserted))
	}
}
