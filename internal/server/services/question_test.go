package services

import (
	"context"
	"errors"
	"testing"

	"github.com/deepdrunktalk/backend/internal/common"
	"github.com/deepdrunktalk/backend/internal/server/models"
)

func TestNextQuestion_NoExclusion(t *testing.T) {
	repo := &fakeQuestionsRepo{randomOut: &models.Question{ID: 1, Text: "q"}}

	q, err := nextQuestion(context.Background(), repo, 0)
	if err != nil {
		t.Fatalf("nextQuestion error: %v", err)
	}
	if q.ID != 1 {
		t.Fatalf("unexpected question: %+v", q)
	}
	if repo.exclCalled != 0 {
		t.Fatal("exclusion query must not run without an exclusion id")
	}
}

func TestNextQuestion_Excludes(t *testing.T) {
	repo := &fakeQuestionsRepo{exclOut: &models.Question{ID: 2, Text: "q"}}

	q, err := nextQuestion(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("nextQuestion error: %v", err)
	}
	if q.ID != 2 {
		t.Fatalf("unexpected question: %+v", q)
	}
	if repo.exclCalled != 1 {
		t.Fatalf("wrong exclusion id: %d", repo.exclCalled)
	}
}

func TestNextQuestion_SingleQuestionCatalogRepeats(t *testing.T) {
	// When the only question in the catalog is the excluded one, the draw
	// degrades to a repeat instead of failing.
	repo := &fakeQuestionsRepo{
		exclErr:   common.ErrNotFound,
		randomOut: &models.Question{ID: 1, Text: "q"},
	}

	q, err := nextQuestion(context.Background(), repo, 1)
	if err != nil {
		t.Fatalf("nextQuestion error: %v", err)
	}
	if q.ID != 1 {
		t.Fatalf("unexpected question: %+v", q)
	}
}

func TestNextQuestion_EmptyCatalog(t *testing.T) {
	repo := &fakeQuestionsRepo{randomErr: common.ErrNotFound}

	_, err := nextQuestion(context.Background(), repo, 0)
	if !errors.Is(err, common.ErrNoQuestions) {
		t.Fatalf("want common.ErrNoQuestions, got %v", err)
	}
}
