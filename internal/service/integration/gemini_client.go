package integration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/RubachokBoss/clubtrack/internal/models"
	"github.com/google/generative-ai-go/genai"
	"github.com/rs/zerolog"
	"google.golang.org/api/option"
)

// QuizSize is the number of questions a generated quiz must have.
const QuizSize = 4

var ErrGeneratorDisabled = errors.New("content generation is not configured")

// ContentGenerator produces lesson material. Failures are logged and turn
// into empty results.
type ContentGenerator interface {
	GenerateLesson(ctx context.Context, subject, objective string) string
	GenerateQuiz(ctx context.Context, subject, content string) []models.QuizQuestion
	Close() error
}

type contentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

type geminiClient struct {
	client  *genai.Client
	lesson  contentModel
	quiz    contentModel
	timeout time.Duration
	logger  zerolog.Logger
}

// NewGeminiClient returns a generator backed by Gemini. Without an API key
// the returned generator always yields empty results.
func NewGeminiClient(ctx context.Context, apiKey, model string, timeout time.Duration, logger zerolog.Logger) (ContentGenerator, error) {
	logger = logger.With().Str("component", "generator").Logger()

	if strings.TrimSpace(apiKey) == "" {
		logger.Warn().Msg("Generation API key missing, lesson generation disabled")
		return &disabledGenerator{logger: logger}, nil
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(strings.Trim(strings.TrimSpace(apiKey), `"'`)))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	quiz := client.GenerativeModel(model)
	quiz.ResponseMIMEType = "application/json"
	quiz.ResponseSchema = quizSchema()

	return &geminiClient{
		client:  client,
		lesson:  client.GenerativeModel(model),
		quiz:    quiz,
		timeout: timeout,
		logger:  logger,
	}, nil
}

func quizSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"text": {
					Type:        genai.TypeString,
					Description: "Le texte de la question.",
				},
				"options": {
					Type:        genai.TypeArray,
					Items:       &genai.Schema{Type: genai.TypeString},
					Description: "Les 4 options de réponse possibles.",
				},
				"correctIndex": {
					Type:        genai.TypeInteger,
					Description: "L'index (0-3) de la réponse correcte.",
				},
			},
			Required: []string{"text", "options", "correctIndex"},
		},
	}
}

func lessonPrompt(subject, objective string) string {
	return fmt.Sprintf(`Agis en tant qu'instructeur de club de jeunesse adventiste (MJA).
Génère un cours structuré et passionnant pour des enfants (Aventuriers ou Explorateurs).
Thème : %s.
Objectif : %s.
Format : Retourne uniquement du HTML propre (utilisant h2, p, ul, li).
N'inclus pas de balises <html> ou <body>, juste le contenu.
Ton : Pédagogique, biblique, interactif et encourageant.`, subject, objective)
}

func quizPrompt(subject, content string) string {
	return fmt.Sprintf(`Tu es un expert en pédagogie ludique. Basé sur le contenu suivant de la leçon "%s" :
---
%s
---
Génère exactement %d questions de quiz à choix multiples (QCM).
Chaque question doit être claire, adaptée à l'âge (4-15 ans) et avoir une seule bonne réponse parmi 4 options.`,
		subject, content, QuizSize)
}

func (c *geminiClient) GenerateLesson(ctx context.Context, subject, objective string) string {
	text, err := c.generate(ctx, c.lesson, lessonPrompt(subject, objective))
	if err != nil {
		c.logger.Error().Err(err).Str("subject", subject).Msg("Lesson generation failed")
		return ""
	}
	return strings.TrimSpace(text)
}

func (c *geminiClient) GenerateQuiz(ctx context.Context, subject, content string) []models.QuizQuestion {
	text, err := c.generate(ctx, c.quiz, quizPrompt(subject, content))
	if err != nil {
		c.logger.Error().Err(err).Str("subject", subject).Msg("Quiz generation failed")
		return []models.QuizQuestion{}
	}

	quiz, err := ParseQuiz(text)
	if err != nil {
		c.logger.Error().Err(err).Str("subject", subject).Msg("Generated quiz rejected")
		return []models.QuizQuestion{}
	}
	return quiz
}

func (c *geminiClient) generate(ctx context.Context, model contentModel, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return "", errors.New("gemini returned no text")
	}
	return text, nil
}

func (c *geminiClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var sb strings.Builder
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				sb.WriteString(string(txt))
			}
		}
		break
	}
	return sb.String()
}

type generatedQuestion struct {
	Text         string   `json:"text"`
	Options      []string `json:"options"`
	CorrectIndex int      `json:"correctIndex"`
}

// ParseQuiz decodes a generated quiz and checks that it has exactly
// QuizSize valid questions.
func ParseQuiz(raw string) ([]models.QuizQuestion, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")

	var generated []generatedQuestion
	if err := json.Unmarshal([]byte(strings.TrimSpace(raw)), &generated); err != nil {
		return nil, fmt.Errorf("failed to decode quiz: %w", err)
	}
	if len(generated) != QuizSize {
		return nil, fmt.Errorf("quiz has %d questions, want %d", len(generated), QuizSize)
	}

	quiz := make([]models.QuizQuestion, 0, len(generated))
	for i, g := range generated {
		q := models.QuizQuestion{
			Question:     strings.TrimSpace(g.Text),
			Options:      g.Options,
			CorrectIndex: g.CorrectIndex,
		}
		if !q.Valid() {
			return nil, fmt.Errorf("question %d is malformed", i+1)
		}
		quiz = append(quiz, q)
	}
	return quiz, nil
}

type disabledGenerator struct {
	logger zerolog.Logger
}

func (g *disabledGenerator) GenerateLesson(ctx context.Context, subject, objective string) string {
	g.logger.Error().Err(ErrGeneratorDisabled).Str("subject", subject).Msg("Lesson generation failed")
	return ""
}

func (g *disabledGenerator) GenerateQuiz(ctx context.Context, subject, content string) []models.QuizQuestion {
	g.logger.Error().Err(ErrGeneratorDisabled).Str("subject", subject).Msg("Quiz generation failed")
	return []models.QuizQuestion{}
}

func (g *disabledGenerator) Close() error {
	return nil
}
