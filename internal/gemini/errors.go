package gemini

import "errors"

// Common errors returned by the gateway. Callers match these with errors.Is.
var (
	// ErrGenerationFailed is returned when the request to the model service
	// fails in transport or the service errors before completing.
	ErrGenerationFailed = errors.New("generation request failed")

	// ErrInvalidResponseShape is returned when the service responds with
	// well-formed JSON that does not satisfy the expected quiz structure.
	ErrInvalidResponseShape = errors.New("invalid response shape from model")

	// ErrNoFlashcardsGenerated is returned when flashcard generation yields
	// an empty set.
	ErrNoFlashcardsGenerated = errors.New("no flashcards generated")

	// ErrEmptyInput is returned when the instruction text is blank.
	ErrEmptyInput = errors.New("empty input")
)
