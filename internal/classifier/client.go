package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client talks to the inference sidecar that fronts the four NLP
// pipelines: sentiment, emotion, zero-shot context, and NER.
type Client struct {
	baseURL string
	client  *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
	}
}

// SetTestTransport points the client at a test server.
func (c *Client) SetTestTransport(url string) {
	c.baseURL = strings.TrimSuffix(url, "/")
}

// ClassifySentiment returns the binary polarity verdict for text.
func (c *Client) ClassifySentiment(ctx context.Context, text string) (*SentimentResult, error) {
	var out SentimentResult
	if err := c.postJSON(ctx, "/sentiment", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	if out.Label == "" {
		return nil, fmt.Errorf("empty sentiment result")
	}
	return &out, nil
}

// ClassifyEmotion returns the per-label emotion scores for text.
// Labels are the model's raw identifiers and may need remapping.
func (c *Client) ClassifyEmotion(ctx context.Context, text string) ([]LabelScore, error) {
	var out emotionResponse
	if err := c.postJSON(ctx, "/emotion", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	if len(out.Scores) == 0 {
		return nil, fmt.Errorf("empty emotion result")
	}
	return out.Scores, nil
}

// ClassifyZeroShot ranks candidateLabels against text, best match first.
func (c *Client) ClassifyZeroShot(ctx context.Context, text string, candidateLabels []string) (*ZeroShotResult, error) {
	var out ZeroShotResult
	req := zeroShotRequest{Text: text, CandidateLabels: candidateLabels}
	if err := c.postJSON(ctx, "/zeroshot", req, &out); err != nil {
		return nil, err
	}
	if len(out.Labels) == 0 || len(out.Labels) != len(out.Scores) {
		return nil, fmt.Errorf("malformed zero-shot result: %d labels, %d scores", len(out.Labels), len(out.Scores))
	}
	return &out, nil
}

// ExtractEntities returns the named-entity spans found in text.
// An empty list is a valid result.
func (c *Client) ExtractEntities(ctx context.Context, text string) ([]RawEntity, error) {
	var out nerResponse
	if err := c.postJSON(ctx, "/ner", textRequest{Text: text}, &out); err != nil {
		return nil, err
	}
	return out.Entities, nil
}

func (c *Client) postJSON(ctx context.Context, path string, reqBody, out any) error {
	body, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("inference call: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference error %d: %s", resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}
