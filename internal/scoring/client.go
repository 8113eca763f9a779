package scoring

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrScoringUnavailable is returned when the inference service cannot
// produce labels. Submissions fail before any write when they see it.
var ErrScoringUnavailable = errors.New("scoring service unavailable")

// AspectScore is one model label for one detected aspect.
type AspectScore struct {
	Aspect string `json:"aspect"`
	Label  int    `json:"label"`
}

// Scorer produces per-aspect labels for a piece of review text. An empty
// aspect set must yield an empty result without touching the model.
type Scorer interface {
	Score(text string, aspects []string) ([]AspectScore, error)
}

// InferenceClient talks to the aspect-based inference service hosting the
// sentiment and bias models.
type InferenceClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

type predictRequest struct {
	Sentence string   `json:"sentence"`
	Aspects  []string `json:"aspects"`
}

type predictResponse struct {
	Labels  []AspectScore `json:"labels"`
	Message string        `json:"message"`
}

func NewInferenceClient(baseURL, apiKey string) *InferenceClient {
	return &InferenceClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (c *InferenceClient) predict(endpoint, text string, aspects []string) ([]AspectScore, error) {
	body, err := json.Marshal(predictRequest{Sentence: text, Aspects: aspects})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", ErrScoringUnavailable, err)
	}

	url := fmt.Sprintf("%s%s", c.baseURL, endpoint)
	req, err := http.NewRequest("POST", url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrScoringUnavailable, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-API-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrScoringUnavailable, err)
	}
	defer resp.Body.Close()

	var predictResp predictResponse
	if err := json.NewDecoder(resp.Body).Decode(&predictResp); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %v", ErrScoringUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: inference error: %s", ErrScoringUnavailable, predictResp.Message)
	}

	return predictResp.Labels, nil
}

// SentimentScorer scores sentiment polarity per aspect.
type SentimentScorer struct {
	client *InferenceClient
}

func NewSentimentScorer(client *InferenceClient) *SentimentScorer {
	return &SentimentScorer{client: client}
}

func (s *SentimentScorer) Score(text string, aspects []string) ([]AspectScore, error) {
	if len(aspects) == 0 {
		return nil, nil
	}
	return s.client.predict("/predict/sentiment", text, aspects)
}

// BiasScorer scores bias polarity per aspect through a separate model on the
// same service.
type BiasScorer struct {
	client *InferenceClient
}

func NewBiasScorer(client *InferenceClient) *BiasScorer {
	return &BiasScorer{client: client}
}

func (b *BiasScorer) Score(text string, aspects []string) ([]AspectScore, error) {
	if len(aspects) == 0 {
		return nil, nil
	}
	return b.client.predict("/predict/bias", text, aspects)
}
