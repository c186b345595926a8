package session

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedQuiz(t *testing.T, gen *fakeGenerator) *QuizSession {
	t.Helper()
	s := NewQuizSession(gen, &Gate{})
	require.NoError(t, s.Start(testMaterial()))
	require.Eventually(t, func() bool {
		return s.Snapshot().State == QuizPresenting
	}, time.Second, 5*time.Millisecond)
	return s
}

func TestQuizStartPresentsFirstQuestion(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 5, snap.Total)
	require.NotNil(t, snap.Question)
	assert.Equal(t, "Question 1?", snap.Question.Question)
	assert.Len(t, snap.Question.Options, 4)
	// The correct answer is withheld until the question is answered.
	assert.Empty(t, snap.CorrectAnswer)
}

func TestQuizStartWhileActiveRejected(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	err := s.Start(testMaterial())
	assert.ErrorIs(t, err, ErrInvalidAction)
}

func TestQuizScoring(t *testing.T) {
	// Answer question 1 correctly and question 2 incorrectly: score is 1
	// and the mistake log holds one entry.
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	outcome, err := s.Answer("Beta")
	require.NoError(t, err)
	assert.True(t, outcome.Correct)
	require.NoError(t, s.Next())

	outcome, err = s.Answer("Alpha")
	require.NoError(t, err)
	assert.False(t, outcome.Correct)
	assert.Equal(t, "Beta", outcome.CorrectAnswer)

	snap := s.Snapshot()
	assert.Equal(t, 1, snap.Score)
	s.mu.Lock()
	assert.Len(t, s.mistakes, 1)
	assert.Equal(t, "Alpha", s.mistakes[0].Selected)
	s.mu.Unlock()
}

func TestQuizAnswerComparisonIsLenient(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	outcome, err := s.Answer("  beta ")
	require.NoError(t, err)
	assert.True(t, outcome.Correct)
}

func TestQuizSecondAnswerRejected(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	_, err := s.Answer("Beta")
	require.NoError(t, err)

	_, err = s.Answer("Alpha")
	assert.ErrorIs(t, err, ErrAlreadyAnswered)

	// The rejected selection changed nothing.
	assert.Equal(t, 1, s.Snapshot().Score)
}

func TestQuizNextRequiresAnswer(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	assert.ErrorIs(t, s.Next(), ErrNotAnswered)
}

// answerAll plays through the whole quiz with the given number of correct
// answers, leaving the session on the results screen.
func answerAll(t *testing.T, s *QuizSession, total, correct int) {
	t.Helper()
	for i := 0; i < total; i++ {
		selection := "Alpha"
		if i < correct {
			selection = "Beta"
		}
		_, err := s.Answer(selection)
		require.NoError(t, err)
		require.NoError(t, s.Next())
	}
}

func TestQuizResultsAndReviewOffer(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	// 2/5 = 0.4 < 0.6 with mistakes recorded: review is offered.
	answerAll(t, s, 5, 2)

	snap := s.Snapshot()
	assert.Equal(t, QuizResults, snap.State)
	assert.Equal(t, 2, snap.Score)
	assert.True(t, snap.ReviewOffered)
}

func TestQuizReviewSuppressedOnGoodScore(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	// 3/5 = 0.6 is not below the threshold, despite two mistakes.
	answerAll(t, s, 5, 3)

	snap := s.Snapshot()
	assert.Equal(t, QuizResults, snap.State)
	assert.False(t, snap.ReviewOffered)
	assert.ErrorIs(t, s.StartReview(), ErrInvalidAction)
}

func TestQuizReviewSuppressedWithoutMistakes(t *testing.T) {
	// A perfect score on a one-question quiz: ratio check would not matter,
	// the empty mistake log alone suppresses the review.
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(1)})

	answerAll(t, s, 1, 1)
	assert.False(t, s.Snapshot().ReviewOffered)
}

func TestQuizMistakeReviewFlow(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})
	answerAll(t, s, 5, 1)

	require.NoError(t, s.StartReview())

	snap := s.Snapshot()
	assert.Equal(t, QuizReviewing, snap.State)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 4, snap.Total)
	require.NotNil(t, snap.Mistake)
	assert.Equal(t, "Alpha", snap.Mistake.Selected)

	// Replay is read-only: the score does not change.
	for i := 0; i < 4; i++ {
		require.NoError(t, s.ReviewNext())
	}

	snap = s.Snapshot()
	assert.Equal(t, QuizResults, snap.State)
	assert.Equal(t, 1, snap.Score)
	// The review pass made no new mistakes; the offer is suppressed now.
	assert.False(t, snap.ReviewOffered)
}

func TestQuizRestartFetchesNewQuiz(t *testing.T) {
	gen := &fakeGenerator{questions: makeQuestions(5)}
	s := startedQuiz(t, gen)
	answerAll(t, s, 5, 5)

	require.NoError(t, s.Restart())
	require.Eventually(t, func() bool {
		return s.Snapshot().State == QuizPresenting
	}, time.Second, 5*time.Millisecond)

	quizCalls, _ := gen.calls()
	assert.Equal(t, 2, quizCalls)
	assert.Equal(t, 0, s.Snapshot().Score)
}

func TestQuizRestartClearsPreviousDeck(t *testing.T) {
	gen := &fakeGenerator{questions: makeQuestions(5)}
	s := startedQuiz(t, gen)
	answerAll(t, s, 5, 5)

	// Hold the reload in flight; the snapshot must not show the old deck.
	gen.release = make(chan struct{})
	require.NoError(t, s.Restart())

	snap := s.Snapshot()
	assert.Equal(t, QuizLoading, snap.State)
	assert.Equal(t, 0, snap.Total)

	close(gen.release)
	require.Eventually(t, func() bool {
		return s.Snapshot().State == QuizPresenting
	}, time.Second, 5*time.Millisecond)
	assert.Equal(t, 5, s.Snapshot().Total)
}

func TestQuizExitDoesNotCallGateway(t *testing.T) {
	gen := &fakeGenerator{questions: makeQuestions(5)}
	s := startedQuiz(t, gen)
	answerAll(t, s, 5, 5)

	require.NoError(t, s.Exit())
	assert.Equal(t, QuizIdle, s.Snapshot().State)

	quizCalls, _ := gen.calls()
	assert.Equal(t, 1, quizCalls)
}

func TestQuizGenerationFailureRevertsToIdle(t *testing.T) {
	gen := &fakeGenerator{quizErr: errors.New("model unavailable")}
	s := NewQuizSession(gen, &Gate{})
	s.errorDelay = 20 * time.Millisecond

	require.NoError(t, s.Start(testMaterial()))

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == QuizIdle && snap.Error != ""
	}, time.Second, 5*time.Millisecond)

	// The surfaced error clears on its own after the display delay.
	require.Eventually(t, func() bool {
		return s.Snapshot().Error == ""
	}, time.Second, 5*time.Millisecond)
}

func TestQuizGateBlocksConcurrentGeneration(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{questions: makeQuestions(5), cards: makeCards(10), release: release}
	gate := &Gate{}

	quiz := NewQuizSession(gen, gate)
	flashcards := NewFlashcardSession(gen, gate)

	require.NoError(t, quiz.Start(testMaterial()))
	assert.ErrorIs(t, flashcards.Start(testMaterial()), ErrGenerationInFlight)

	close(release)
	require.Eventually(t, func() bool {
		return quiz.Snapshot().State == QuizPresenting
	}, time.Second, 5*time.Millisecond)

	// Gate is free again once the call settles.
	require.NoError(t, flashcards.Start(testMaterial()))
	require.Eventually(t, func() bool {
		return flashcards.Snapshot().State == FlashcardsPresenting
	}, time.Second, 5*time.Millisecond)
}

func TestQuizSnapshotRevealsAnswerAfterAnswering(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(5)})

	_, err := s.Answer("Gamma")
	require.NoError(t, err)

	snap := s.Snapshot()
	assert.True(t, snap.Answered)
	assert.Equal(t, "Gamma", snap.Selected)
	assert.Equal(t, "Beta", snap.CorrectAnswer)
}

func TestQuizIndexStaysInBounds(t *testing.T) {
	s := startedQuiz(t, &fakeGenerator{questions: makeQuestions(2)})
	answerAll(t, s, 2, 2)

	// Reaching the end shows results; advancing further is rejected rather
	// than running past the question list.
	assert.Equal(t, QuizResults, s.Snapshot().State)
	assert.ErrorIs(t, s.Next(), ErrInvalidAction)
}
