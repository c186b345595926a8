package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"

	"studydesk/internal/models"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// QuizPrompt is the prompt used to generate quizzes.
const QuizPrompt = `Generate a multiple-choice quiz based on the content of this document. Follow these requirements exactly:

1. Create exactly 5 questions covering the main topics of the document.
2. Each question must have exactly 4 options with exactly one correct answer.
3. The "correct_answer" field must repeat the text of the correct option verbatim.
4. Make incorrect options plausible: use common misconceptions or partial understandings, and keep all options at a similar length and tone.

Format your response as a JSON object with the following structure:
{
  "questions": [
    {
      "question": "Question text here?",
      "options": ["Option A", "Option B", "Option C", "Option D"],
      "correct_answer": "Option B"
    },
    ...more questions...
  ]
}
`

// FlashcardPrompt is the prompt used to generate flashcards.
const FlashcardPrompt = `Generate flashcards based on the content of this document. Follow these requirements exactly:

1. Create exactly 10 flashcards for the key terms and concepts of the document.
2. Each flashcard has a short "term" and a concise "definition" drawn from the document.
3. Do not repeat terms.

Format your response as a JSON object with the following structure:
{
  "flashcards": [
    {"term": "Term here", "definition": "Definition here"},
    ...more flashcards...
  ]
}
`

// askPromptFormat frames a free-text question against the document.
const askPromptFormat = `You are a study assistant. Answer the question below using only the content of the attached document. Be concise and direct. If the document does not contain the answer, say so.

Question: %s`

const (
	// DefaultModelName is the Gemini model used unless GEMINI_MODEL is set.
	DefaultModelName = "gemini-2.0-flash"

	// QuizQuestionCount is the number of questions requested per quiz.
	QuizQuestionCount = 5

	// FlashcardCount is the number of flashcards requested per deck.
	FlashcardCount = 10
)

// quizSchema constrains quiz generation output server-side.
var quizSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"questions"},
	Properties: map[string]*genai.Schema{
		"questions": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:     genai.TypeObject,
				Required: []string{"question", "options", "correct_answer"},
				Properties: map[string]*genai.Schema{
					"question":       {Type: genai.TypeString},
					"options":        {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					"correct_answer": {Type: genai.TypeString},
				},
			},
		},
	},
}

// flashcardSchema constrains flashcard generation output server-side.
var flashcardSchema = &genai.Schema{
	Type:     genai.TypeObject,
	Required: []string{"flashcards"},
	Properties: map[string]*genai.Schema{
		"flashcards": {
			Type: genai.TypeArray,
			Items: &genai.Schema{
				Type:     genai.TypeObject,
				Required: []string{"term", "definition"},
				Properties: map[string]*genai.Schema{
					"term":       {Type: genai.TypeString},
					"definition": {Type: genai.TypeString},
				},
			},
		},
	},
}

// Client wraps the Gemini client. Every operation is a single attempt: a
// failure is surfaced to the caller as-is, never retried.
type Client struct {
	client    *genai.Client
	modelName string
}

// NewClient creates a new Gemini client from the GEMINI_API_KEY and
// optional GEMINI_MODEL environment variables.
func NewClient(ctx context.Context) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	modelName := os.Getenv("GEMINI_MODEL")
	if modelName == "" {
		modelName = DefaultModelName
	}

	return &Client{
		client:    client,
		modelName: modelName,
	}, nil
}

// Close closes the Gemini client.
func (c *Client) Close() {
	c.client.Close()
}

// jsonModel returns a model configured for schema-constrained JSON output.
func (c *Client) jsonModel(schema *genai.Schema) *genai.GenerativeModel {
	model := c.client.GenerativeModel(c.modelName)
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = schema
	model.SetTemperature(0.2)
	model.SetTopK(40)
	model.SetTopP(0.95)
	return model
}

// materialPart packages the material content for the request.
func materialPart(m models.Material) genai.Part {
	return genai.Blob{
		MIMEType: m.MimeType,
		Data:     m.Content,
	}
}

// AskQuestion streams the model's answer to a free-text question about the
// material. Chunks are sent on the channel in arrival order; their
// concatenation is the full answer. The caller owns the channel and closes
// it after AskQuestion returns. On a mid-stream error the chunks already
// sent stand, and the error is returned for the caller to surface.
func (c *Client) AskQuestion(ctx context.Context, m models.Material, question string, chunks chan<- string) error {
	if strings.TrimSpace(question) == "" {
		return ErrEmptyInput
	}

	model := c.client.GenerativeModel(c.modelName)
	prompt := fmt.Sprintf(askPromptFormat, question)

	iter := model.GenerateContentStream(ctx, genai.Text(prompt), materialPart(m))
	for {
		resp, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}

		text := responseText(resp)
		if text == "" {
			continue
		}

		select {
		case chunks <- text:
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", ErrGenerationFailed, ctx.Err())
		}
	}
}

// GenerateQuiz asks the model for a quiz over the material and validates
// the structured response.
func (c *Client) GenerateQuiz(ctx context.Context, m models.Material) ([]models.QuizQuestion, error) {
	model := c.jsonModel(quizSchema)

	resp, err := model.GenerateContent(ctx, genai.Text(QuizPrompt), materialPart(m))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	jsonText := extractJSONFromText(responseText(resp))
	if jsonText == "" {
		return nil, fmt.Errorf("%w: empty response", ErrInvalidResponseShape)
	}

	return parseQuizResponse(jsonText)
}

// GenerateFlashcards asks the model for a flashcard deck over the material.
// The operation is cooperative with cancellation: cancelling ctx aborts the
// in-flight request, and callers are expected to discard any result that
// races in ahead of the cancellation signal.
func (c *Client) GenerateFlashcards(ctx context.Context, m models.Material) ([]models.Flashcard, error) {
	model := c.jsonModel(flashcardSchema)

	resp, err := model.GenerateContent(ctx, genai.Text(FlashcardPrompt), materialPart(m))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	jsonText := extractJSONFromText(responseText(resp))
	if jsonText == "" {
		return nil, ErrNoFlashcardsGenerated
	}

	return parseFlashcardResponse(jsonText)
}

// parseQuizResponse decodes and validates the quiz JSON. Every question
// must carry exactly four options with the correct answer among them.
func parseQuizResponse(jsonText string) ([]models.QuizQuestion, error) {
	var quizResponse models.GeminiQuizResponse
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&quizResponse); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", ErrInvalidResponseShape, err)
	}

	if len(quizResponse.Questions) == 0 {
		return nil, fmt.Errorf("%w: response contained no questions", ErrInvalidResponseShape)
	}

	for i, q := range quizResponse.Questions {
		if strings.TrimSpace(q.Question) == "" {
			return nil, fmt.Errorf("%w: question %d has no text", ErrInvalidResponseShape, i+1)
		}
		if len(q.Options) != 4 {
			return nil, fmt.Errorf("%w: question %d has %d options, want 4", ErrInvalidResponseShape, i+1, len(q.Options))
		}
		if !hasOption(q.Options, q.CorrectAnswer) {
			return nil, fmt.Errorf("%w: question %d correct answer matches no option", ErrInvalidResponseShape, i+1)
		}
	}

	return quizResponse.Questions, nil
}

// parseFlashcardResponse decodes and validates the flashcard JSON.
func parseFlashcardResponse(jsonText string) ([]models.Flashcard, error) {
	var flashcardResponse models.GeminiFlashcardResponse
	decoder := json.NewDecoder(strings.NewReader(jsonText))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&flashcardResponse); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoFlashcardsGenerated, err)
	}

	if len(flashcardResponse.Flashcards) == 0 {
		return nil, ErrNoFlashcardsGenerated
	}

	for i, card := range flashcardResponse.Flashcards {
		if strings.TrimSpace(card.Term) == "" || strings.TrimSpace(card.Definition) == "" {
			return nil, fmt.Errorf("%w: flashcard %d is incomplete", ErrNoFlashcardsGenerated, i+1)
		}
	}

	return flashcardResponse.Flashcards, nil
}

func hasOption(options []string, answer string) bool {
	q := models.QuizQuestion{CorrectAnswer: answer}
	for _, opt := range options {
		if q.IsCorrect(opt) {
			return true
		}
	}
	return false
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

var (
	jsonObjectPattern = regexp.MustCompile(`(?s)\{.*\}`)
	codeBlockPattern  = regexp.MustCompile("```(?:json)?\\s*(\\{.*?\\})\\s*```")
)

// extractJSONFromText pulls a JSON object out of text that might wrap it in
// markdown fences or surrounding prose. With a response schema set the
// model replies with bare JSON, but this keeps parsing robust when it
// doesn't.
func extractJSONFromText(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "{") {
		return text
	}

	if matches := codeBlockPattern.FindStringSubmatch(text); len(matches) > 1 {
		return matches[1]
	}

	return jsonObjectPattern.FindString(text)
}
