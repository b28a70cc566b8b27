package curator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/united89/quiz-backend/internal/client"
	"github.com/united89/quiz-backend/internal/model"
)

type fakeAdminAPI struct {
	generated   []model.GeneratedQuestion
	generateErr error
	batchErr    error
	batches     []model.BatchAddRequest
}

func (f *fakeAdminAPI) Generate(ctx context.Context, weekID string) ([]model.GeneratedQuestion, error) {
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.generated, nil
}

func (f *fakeAdminAPI) BatchAdd(ctx context.Context, req model.BatchAddRequest) error {
	if f.batchErr != nil {
		return f.batchErr
	}
	f.batches = append(f.batches, req)
	return nil
}

func generatedBatch(n int) []model.GeneratedQuestion {
	out := make([]model.GeneratedQuestion, n)
	for i := range out {
		out[i] = model.GeneratedQuestion{
			Question:      fmt.Sprintf("Question %d?", i+1),
			Choices:       []string{"W", "X", "Y", "Z"},
			CorrectAnswer: "b",
		}
	}
	return out
}

func TestNormalizeAnswerLetterToOption(t *testing.T) {
	g := model.GeneratedQuestion{
		Question:      "Pick one",
		Choices:       []string{"W", "X", "Y", "Z"},
		CorrectAnswer: "b",
	}

	answer, err := NormalizeAnswer(g)
	if err != nil {
		t.Fatalf("NormalizeAnswer: %v", err)
	}
	if answer != "X" {
		t.Fatalf("answer = %q, want X", answer)
	}
}

func TestNormalizeAnswerRejectsBadDesignators(t *testing.T) {
	cases := []model.GeneratedQuestion{
		{Choices: []string{"W", "X"}, CorrectAnswer: "e"},
		{Choices: []string{"W", "X"}, CorrectAnswer: ""},
		{Choices: []string{"W", "X"}, CorrectAnswer: "ab"},
		{Choices: []string{"W", "X"}, CorrectAnswer: "c"}, // index past choices
	}
	for i, g := range cases {
		if _, err := NormalizeAnswer(g); err == nil {
			t.Fatalf("case %d: expected error for designator %q", i, g.CorrectAnswer)
		}
	}
}

func TestGenerateDropsMalformedCandidates(t *testing.T) {
	api := &fakeAdminAPI{generated: append(generatedBatch(3), model.GeneratedQuestion{
		Question:      "Broken",
		Choices:       []string{"W", "X", "Y", "Z"},
		CorrectAnswer: "z",
	})}
	cur := New(api, zerolog.Nop())

	if err := cur.Generate(context.Background(), ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if cur.State() != StatePreviewReady {
		t.Fatalf("state = %s, want preview_ready", cur.State())
	}
	if got := len(cur.Candidates()); got != 3 {
		t.Fatalf("kept %d candidates, want 3", got)
	}
	for _, cand := range cur.Candidates() {
		if cand.Answer != "X" {
			t.Fatalf("answer not normalized: %q", cand.Answer)
		}
	}
}

func TestGeneratePastWeekSurfacedDistinctly(t *testing.T) {
	api := &fakeAdminAPI{generateErr: client.ErrPastWeekLocked}
	cur := New(api, zerolog.Nop())

	err := cur.Generate(context.Background(), "2020-W01")
	if !errors.Is(err, ErrPastWeekLocked) {
		t.Fatalf("Generate = %v, want ErrPastWeekLocked", err)
	}
	if cur.State() != StateIdle {
		t.Fatalf("state = %s, want idle after refusal", cur.State())
	}
}

func TestToggleSelectRefusesOverfill(t *testing.T) {
	api := &fakeAdminAPI{generated: generatedBatch(20)}
	cur := New(api, zerolog.Nop())
	if err := cur.Generate(context.Background(), ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	for i := 0; i < BatchSize; i++ {
		if err := cur.ToggleSelect(i); err != nil {
			t.Fatalf("select %d: %v", i, err)
		}
	}
	if err := cur.ToggleSelect(BatchSize); !errors.Is(err, ErrSelectionFull) {
		t.Fatalf("11th select = %v, want ErrSelectionFull", err)
	}

	// Toggling one off frees a slot.
	if err := cur.ToggleSelect(0); err != nil {
		t.Fatalf("deselect: %v", err)
	}
	if err := cur.ToggleSelect(BatchSize); err != nil {
		t.Fatalf("select after freeing a slot: %v", err)
	}
	if cur.SelectedCount() != BatchSize {
		t.Fatalf("selected = %d, want %d", cur.SelectedCount(), BatchSize)
	}
}

func TestCommitRejectsWrongSelectionSizeLocally(t *testing.T) {
	api := &fakeAdminAPI{generated: generatedBatch(20)}
	cur := New(api, zerolog.Nop())
	if err := cur.Generate(context.Background(), ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 0; i < 9; i++ {
		cur.ToggleSelect(i)
	}

	if err := cur.Commit(context.Background()); !errors.Is(err, ErrSelectionSize) {
		t.Fatalf("Commit with 9 selected = %v, want ErrSelectionSize", err)
	}
	if len(api.batches) != 0 {
		t.Fatal("undersized commit must not reach the server")
	}
	if cur.State() != StatePreviewReady {
		t.Fatalf("state = %s, want preview_ready", cur.State())
	}
}

func TestCommitSendsOneBatchAndResets(t *testing.T) {
	api := &fakeAdminAPI{generated: generatedBatch(20)}
	cur := New(api, zerolog.Nop())
	if err := cur.Generate(context.Background(), "2026-W35"); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 0; i < BatchSize; i++ {
		cur.ToggleSelect(i)
	}

	if err := cur.Commit(context.Background()); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	if len(api.batches) != 1 {
		t.Fatalf("server saw %d batches, want 1", len(api.batches))
	}
	batch := api.batches[0]
	if len(batch.Questions) != BatchSize {
		t.Fatalf("batch size = %d, want %d", len(batch.Questions), BatchSize)
	}
	seen := make(map[string]struct{})
	for i, q := range batch.Questions {
		if q.ID == "" {
			t.Fatalf("question %d has no identifier", i)
		}
		if _, dup := seen[q.ID]; dup {
			t.Fatalf("duplicate identifier %s", q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.Order != i+1 {
			t.Fatalf("question %d order = %d, want %d", i, q.Order, i+1)
		}
		if q.WeekID != "2026-W35" {
			t.Fatalf("question %d week = %q", i, q.WeekID)
		}
		if q.Answer != "X" {
			t.Fatalf("question %d answer = %q, want X", i, q.Answer)
		}
	}

	if cur.State() != StateIdle {
		t.Fatalf("state after commit = %s, want idle", cur.State())
	}
	if cur.SelectedCount() != 0 || len(cur.Candidates()) != 0 {
		t.Fatal("commit must clear the batch and selection")
	}
}

func TestCommitFailurePreservesSelection(t *testing.T) {
	api := &fakeAdminAPI{generated: generatedBatch(20), batchErr: errors.New("boom")}
	cur := New(api, zerolog.Nop())
	if err := cur.Generate(context.Background(), ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for i := 0; i < BatchSize; i++ {
		cur.ToggleSelect(i)
	}

	if err := cur.Commit(context.Background()); err == nil {
		t.Fatal("expected commit failure")
	}
	if cur.State() != StatePreviewReady {
		t.Fatalf("state = %s, want preview_ready after failure", cur.State())
	}
	if cur.SelectedCount() != BatchSize {
		t.Fatalf("selection lost on failure: %d", cur.SelectedCount())
	}

	api.batchErr = nil
	if err := cur.Commit(context.Background()); err != nil {
		t.Fatalf("retry commit: %v", err)
	}
}

func TestEditCandidateFields(t *testing.T) {
	api := &fakeAdminAPI{generated: generatedBatch(2)}
	cur := New(api, zerolog.Nop())
	if err := cur.Generate(context.Background(), ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if err := cur.EditCandidate(0, "text", "Edited?"); err != nil {
		t.Fatalf("edit text: %v", err)
	}
	if err := cur.EditCandidate(0, "option:2", "Altered"); err != nil {
		t.Fatalf("edit option: %v", err)
	}
	if err := cur.EditCandidate(0, "answer", "Altered"); err != nil {
		t.Fatalf("edit answer: %v", err)
	}

	cand := cur.Candidates()[0]
	if cand.Text != "Edited?" || cand.Options[2] != "Altered" || cand.Answer != "Altered" {
		t.Fatalf("edits not applied: %+v", cand)
	}

	if err := cur.EditCandidate(0, "option:9", "x"); !errors.Is(err, ErrBadField) {
		t.Fatalf("bad field = %v, want ErrBadField", err)
	}
	if err := cur.EditCandidate(5, "text", "x"); !errors.Is(err, ErrBadIndex) {
		t.Fatalf("bad index = %v, want ErrBadIndex", err)
	}
}

func TestLifecycleStateGates(t *testing.T) {
	api := &fakeAdminAPI{generated: generatedBatch(20)}
	cur := New(api, zerolog.Nop())

	if err := cur.Commit(context.Background()); !errors.Is(err, ErrWrongState) {
		t.Fatalf("commit from idle = %v, want ErrWrongState", err)
	}
	if err := cur.ToggleSelect(0); !errors.Is(err, ErrWrongState) {
		t.Fatalf("select from idle = %v, want ErrWrongState", err)
	}

	if err := cur.Generate(context.Background(), ""); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	cur.ToggleSelect(0)

	// Regenerating discards the previous batch and selection.
	if err := cur.Generate(context.Background(), ""); err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if cur.SelectedCount() != 0 {
		t.Fatalf("selection survived regenerate: %d", cur.SelectedCount())
	}

	cur.Discard()
	if cur.State() != StateIdle {
		t.Fatalf("state after discard = %s, want idle", cur.State())
	}
}
