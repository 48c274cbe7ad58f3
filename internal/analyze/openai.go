package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/rhm-kanzlei/mailroom/pkg/formatting"
)

// promptChars bounds how much document text is sent to the model.
const promptChars = 4000

const systemPrompt = "Du bist ein Assistent für eine Anwaltskanzlei und analysierst eingehende Dokumente."

// Config holds the AI analyzer settings. An empty APIKey disables the AI
// path entirely.
type Config struct {
	APIKey  string `toml:"api_key"`
	Model   string `toml:"model"`
	BaseURL string `toml:"base_url"`
}

// Service is the AI-backed analyzer. Any model or parse failure degrades to
// the deterministic fallback so analysis never fails a pipeline run.
type Service struct {
	client   *openai.Client
	model    string
	fallback *Fallback
	logger   *slog.Logger
}

// New builds the analyzer service. With no API key configured, the returned
// service runs purely on the fallback.
func New(cfg Config, logger *slog.Logger) *Service {
	s := &Service{
		model:    cfg.Model,
		fallback: NewFallback(),
		logger:   logger.With("system", "analyze"),
	}
	if s.model == "" {
		s.model = openai.GPT4oMini
	}

	if cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		s.client = openai.NewClientWithConfig(clientCfg)
	}

	return s
}

func (s *Service) Analyze(ctx context.Context, text string, refs References) (*Analysis, error) {
	if s.client == nil {
		return s.fallback.Analyze(ctx, text, refs)
	}

	a, err := s.analyzeWithModel(ctx, text, refs)
	if err != nil {
		s.logger.Warn("model analysis failed, using fallback", "error", err)
		return s.fallback.Analyze(ctx, text, refs)
	}
	return a, nil
}

// modelResponse mirrors the JSON shape requested in the prompt.
type modelResponse struct {
	Mandant     string   `json:"mandant"`
	Gegner      string   `json:"gegner"`
	Datum       string   `json:"datum"`
	Stichworte  []string `json:"stichworte"`
	Absendertyp string   `json:"absendertyp"`
	Fristen     []struct {
		Datum  string `json:"datum"`
		Typ    string `json:"typ"`
		Quelle string `json:"quelle"`
	} `json:"fristen"`
}

func (s *Service) analyzeWithModel(ctx context.Context, text string, refs References) (*Analysis, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(text, refs)},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion returned no choices")
	}

	parsed, err := formatting.Parse[modelResponse](resp.Choices[0].Message.Content)
	if err != nil {
		return nil, fmt.Errorf("parse model response: %w", err)
	}

	a := &Analysis{
		Client:     parsed.Mandant,
		Opponent:   parsed.Gegner,
		Date:       parsed.Datum,
		Keywords:   parsed.Stichworte,
		SenderType: parsed.Absendertyp,
		Deadlines:  []Deadline{},
		Excerpt:    Excerpt(text),
	}
	if a.Keywords == nil {
		a.Keywords = []string{}
	}
	if a.SenderType == "" {
		a.SenderType = "Sonstige"
	}
	for _, f := range parsed.Fristen {
		a.Deadlines = append(a.Deadlines, Deadline{Date: f.Datum, Kind: f.Typ, Source: f.Quelle})
	}

	return a, nil
}

func buildPrompt(text string, refs References) string {
	runes := []rune(text)
	if len(runes) > promptChars {
		text = string(runes[:promptChars])
	}

	internal := refs.Internal
	if internal == "" {
		internal = "unbekannt"
	}

	var b strings.Builder
	b.WriteString("Analysiere das folgende Anwaltsschreiben/Dokument und extrahiere die wichtigsten Informationen.\n\n")
	b.WriteString("DOKUMENT:\n---\n")
	b.WriteString(text)
	b.WriteString("\n---\n\n")
	b.WriteString("BEKANNTE AKTENZEICHEN:\n")
	b.WriteString("- Internes Kanzlei-AZ: " + internal + "\n")
	b.WriteString("- Externe AZ: " + strings.Join(refs.External, ", ") + "\n\n")
	b.WriteString(`AUFGABE:
Extrahiere folgende Informationen und antworte im JSON-Format:

1. "mandant": Name des Mandanten. Falls nicht erkennbar: null
2. "gegner": Name der Gegenseite/des Absenders
3. "datum": Frühestes relevantes Datum im Dokument (Format: YYYY-MM-DD)
4. "stichworte": 3-5 prägnante Stichworte zum Inhalt
5. "absendertyp": Einer von: "Gericht", "Behoerde", "Versicherung", "Sonstige"
6. "fristen": Liste von Fristen mit datum (YYYY-MM-DD), typ und quelle

Wenn eine Information nicht verfügbar ist, verwende null bzw. leere Liste.`)

	return b.String()
}
