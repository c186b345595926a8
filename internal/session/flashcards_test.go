package session

import (
	"errors"
	"testing"
	"time"

	"studydesk/internal/gemini"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startedFlashcards(t *testing.T, gen *fakeGenerator) *FlashcardSession {
	t.Helper()
	s := NewFlashcardSession(gen, &Gate{})
	require.NoError(t, s.Start(testMaterial()))
	require.Eventually(t, func() bool {
		return s.Snapshot().State == FlashcardsPresenting
	}, time.Second, 5*time.Millisecond)
	return s
}

func TestFlashcardsLoadReleasesCancelFunc(t *testing.T) {
	s := startedFlashcards(t, &fakeGenerator{cards: makeCards(10)})

	// Once the deck committed, the request context is released and the
	// cancel func discarded.
	s.mu.Lock()
	defer s.mu.Unlock()
	assert.Nil(t, s.cancel)
	assert.False(t, s.inFlight)
}

func TestFlashcardsStartPresentsFirstCard(t *testing.T) {
	s := startedFlashcards(t, &fakeGenerator{cards: makeCards(10)})

	snap := s.Snapshot()
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 10, snap.Total)
	require.NotNil(t, snap.Card)
	assert.Equal(t, "Term 1", snap.Card.Term)
	// The definition is withheld until the card is revealed.
	assert.Empty(t, snap.Card.Definition)
	assert.False(t, snap.Revealed)
}

func TestFlashcardsRevealToggles(t *testing.T) {
	s := startedFlashcards(t, &fakeGenerator{cards: makeCards(10)})

	require.NoError(t, s.Reveal())
	snap := s.Snapshot()
	assert.True(t, snap.Revealed)
	assert.Equal(t, "Definition 1", snap.Card.Definition)

	// Re-tap hides it again, with no other effect.
	require.NoError(t, s.Reveal())
	snap = s.Snapshot()
	assert.False(t, snap.Revealed)
	assert.Empty(t, snap.Card.Definition)
	assert.Equal(t, 0, snap.Index)
}

func TestFlashcardsAdvanceCountsKnown(t *testing.T) {
	s := startedFlashcards(t, &fakeGenerator{cards: makeCards(3)})

	require.NoError(t, s.Advance(true))
	require.NoError(t, s.Advance(false))
	require.NoError(t, s.Advance(true))

	snap := s.Snapshot()
	assert.Equal(t, FlashcardsResults, snap.State)
	assert.Equal(t, 2, snap.Known)
	assert.Equal(t, 3, snap.Total)
}

func TestFlashcardsAdvanceResetsReveal(t *testing.T) {
	s := startedFlashcards(t, &fakeGenerator{cards: makeCards(3)})

	require.NoError(t, s.Reveal())
	require.NoError(t, s.Advance(true))

	snap := s.Snapshot()
	assert.False(t, snap.Revealed)
	assert.Equal(t, "Term 2", snap.Card.Term)
}

func TestFlashcardsRestartReusesDeck(t *testing.T) {
	gen := &fakeGenerator{cards: makeCards(2)}
	s := startedFlashcards(t, gen)

	require.NoError(t, s.Advance(true))
	require.NoError(t, s.Advance(true))
	require.Equal(t, FlashcardsResults, s.Snapshot().State)

	require.NoError(t, s.Restart())

	snap := s.Snapshot()
	assert.Equal(t, FlashcardsPresenting, snap.State)
	assert.Equal(t, 0, snap.Index)
	assert.Equal(t, 0, snap.Known)

	// Same deck: no second gateway call.
	_, cardCalls := gen.calls()
	assert.Equal(t, 1, cardCalls)
}

func TestFlashcardsExitDiscardsDeck(t *testing.T) {
	s := startedFlashcards(t, &fakeGenerator{cards: makeCards(2)})

	require.NoError(t, s.Advance(true))
	require.NoError(t, s.Advance(true))
	require.NoError(t, s.Exit())

	snap := s.Snapshot()
	assert.Equal(t, FlashcardsIdle, snap.State)
	assert.Equal(t, 0, snap.Total)
	assert.Equal(t, 0, snap.Known)
}

func TestFlashcardsCancelWhileInFlight(t *testing.T) {
	release := make(chan struct{})
	gen := &fakeGenerator{cards: makeCards(10), release: release}
	gate := &Gate{}
	s := NewFlashcardSession(gen, gate)

	require.NoError(t, s.Start(testMaterial()))
	require.Equal(t, FlashcardsLoading, s.Snapshot().State)

	// Signal cancellation before the service responds: straight back to
	// idle, nothing stored, no error shown.
	require.NoError(t, s.Cancel())

	snap := s.Snapshot()
	assert.Equal(t, FlashcardsIdle, snap.State)
	assert.Empty(t, snap.Error)
	assert.False(t, gate.Busy())

	// A late result must not resurrect the session.
	close(release)
	time.Sleep(50 * time.Millisecond)
	snap = s.Snapshot()
	assert.Equal(t, FlashcardsIdle, snap.State)
	assert.Equal(t, 0, snap.Total)
}

func TestFlashcardsEmptyResultStaysLoading(t *testing.T) {
	gen := &fakeGenerator{cardsErr: gemini.ErrNoFlashcardsGenerated}
	s := NewFlashcardSession(gen, &Gate{})

	require.NoError(t, s.Start(testMaterial()))

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == FlashcardsLoading && snap.Error != ""
	}, time.Second, 5*time.Millisecond)

	// Cancel doubles as the exit action after a failed generation.
	require.NoError(t, s.Cancel())
	assert.Equal(t, FlashcardsIdle, s.Snapshot().State)
}

func TestFlashcardsTransportFailureRevertsToIdle(t *testing.T) {
	gen := &fakeGenerator{cardsErr: errors.New("connection reset")}
	s := NewFlashcardSession(gen, &Gate{})
	s.errorDelay = 20 * time.Millisecond

	require.NoError(t, s.Start(testMaterial()))

	require.Eventually(t, func() bool {
		snap := s.Snapshot()
		return snap.State == FlashcardsIdle && snap.Error != ""
	}, time.Second, 5*time.Millisecond)

	require.Eventually(t, func() bool {
		return s.Snapshot().Error == ""
	}, time.Second, 5*time.Millisecond)
}

func TestFlashcardsStartWhileActiveRejected(t *testing.T) {
	s := startedFlashcards(t, &fakeGenerator{cards: makeCards(10)})

	assert.ErrorIs(t, s.Start(testMaterial()), ErrInvalidAction)
}

func TestSelectorIndependentOfStore(t *testing.T) {
	var sel Selector

	_, ok := sel.Current()
	assert.False(t, ok)

	m := testMaterial()
	sel.Select(m)
	got, ok := sel.Current()
	require.True(t, ok)
	assert.Equal(t, m.ID, got.ID)

	// Selecting the same material twice yields the same selection.
	sel.Select(m)
	got, ok = sel.Current()
	require.True(t, ok)
	assert.Equal(t, m.ID, got.ID)

	sel.Clear()
	_, ok = sel.Current()
	assert.False(t, ok)
}
