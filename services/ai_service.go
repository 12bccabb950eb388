package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"trip-search-ai/config"
	"trip-search-ai/models"
)

// Scorer grades a trip list for the user. Implementations are external
// collaborators: any failure is caught by the orchestrator and downgraded to
// a default result, never surfaced as a request error.
type Scorer interface {
	Score(ctx context.Context, query models.TripQuery, trips []models.Trip) (models.AiResult, error)
}

// OpenAIScorer scores trips through an OpenAI-compatible chat-completions
// endpoint.
type OpenAIScorer struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
	log     *logrus.Logger
}

// NewOpenAIScorer builds a scorer from configuration.
func NewOpenAIScorer(cfg *config.Config, log *logrus.Logger) *OpenAIScorer {
	return &OpenAIScorer{
		apiKey:  cfg.OpenAIAPIKey,
		baseURL: strings.TrimRight(cfg.OpenAIBaseURL, "/"),
		model:   cfg.OpenAIModel,
		client:  &http.Client{Timeout: 30 * time.Second},
		log:     log,
	}
}

// Score sends the user's query and the trip list to the model and parses the
// JSON verdict out of its reply. Score indices refer into the trips slice as
// given.
func (s *OpenAIScorer) Score(ctx context.Context, query models.TripQuery, trips []models.Trip) (models.AiResult, error) {
	prompt, err := buildScoringPrompt(query, trips)
	if err != nil {
		return models.AiResult{}, fmt.Errorf("building scoring prompt: %w", err)
	}

	reqBody := map[string]interface{}{
		"model": s.model,
		"messages": []map[string]string{
			{"role": "system", "content": "Si špičkový slovenský cestovateľský asistent."},
			{"role": "user", "content": prompt},
		},
		"temperature": 0.3,
		"max_tokens":  600,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return models.AiResult{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return models.AiResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return models.AiResult{}, fmt.Errorf("calling scoring endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return models.AiResult{}, fmt.Errorf("scoring endpoint returned %d: %s", resp.StatusCode, string(detail))
	}

	var completion struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return models.AiResult{}, fmt.Errorf("decoding completion: %w", err)
	}
	if len(completion.Choices) == 0 {
		return models.AiResult{}, fmt.Errorf("completion carried no choices")
	}

	return parseScoringReply(completion.Choices[0].Message.Content)
}

// parseScoringReply extracts the JSON object embedded in the model's text
// reply. Models tend to wrap the JSON in prose, so the slice between the
// first '{' and the last '}' is what gets parsed.
func parseScoringReply(text string) (models.AiResult, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return models.AiResult{}, fmt.Errorf("no JSON object in scoring reply")
	}
	var result models.AiResult
	if err := json.Unmarshal([]byte(text[start:end+1]), &result); err != nil {
		return models.AiResult{}, fmt.Errorf("parsing scoring reply: %w", err)
	}
	return result, nil
}

func buildScoringPrompt(query models.TripQuery, trips []models.Trip) (string, error) {
	userInput, err := json.MarshalIndent(query, "", "  ")
	if err != nil {
		return "", err
	}
	tripsJSON, err := json.MarshalIndent(trips, "", "  ")
	if err != nil {
		return "", err
	}

	return fmt.Sprintf(`Si špičkový slovenský travel expert. Na základe vstupu užívateľa a zoznamu spojení mu odporuč najlepší spoj.
Odpovedz stručne, jasne a konkrétne, ako by si radil kamarátovi:
- Napíš presne, kde má nastúpiť (názov stanice, čas).
- Ak treba prestupovať, napíš kde vystúpiť, koľko pešo (odhadni podľa segmentov typu WALK), kde nastúpiť na ďalší spoj a kedy.
- Ak je spoj priamy (žiadny prestup), zvýrazni to: "Ide o priame spojenie, nemusíš prestupovať."
- Ak je prestup, popíš ho ľudsky: "Vystúp na stanici X, prejdi pešo Y minút, nastúp na vlak/bus Z."
- Ak je spoj známy svojou spoľahlivosťou (napr. RegioJet, Metropolitan), pridaj tip: "Tento spoj je známy svojou spoľahlivosťou."
- Odpoveď formuluj ako pre kamaráta, nie ako suchý robot.

Ak je viac možností, odporuč tú najlepšiu a vysvetli prečo.

Vstup užívateľa:
%s

Spoje:
%s

Odpoveď vráť v tomto JSON formáte:
{
  "scores": [
    { "index": 0, "fast": 80, "cheap": 60, "comfy": 90 }
  ],
  "summary": "..."
}`, string(userInput), string(tripsJSON)), nil
}
