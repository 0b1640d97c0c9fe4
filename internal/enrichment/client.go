package enrichment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client talks to the remote inference API (emotion detection, translation,
// summarization). All calls are plain request/response; callers treat every
// failure as "no enrichment" and move on.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type emotionResponse struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func (c *Client) DetectEmotion(ctx context.Context, text string) (string, error) {
	var out emotionResponse
	if err := c.post(ctx, "/emotion", map[string]string{"text": text}, &out); err != nil {
		return "", err
	}
	return out.Label, nil
}

type translateResponse struct {
	Text string `json:"text"`
}

func (c *Client) Translate(ctx context.Context, text, targetLang string) (string, error) {
	var out translateResponse
	err := c.post(ctx, "/translate", map[string]string{"text": text, "target": targetLang}, &out)
	if err != nil {
		return "", err
	}
	return out.Text, nil
}

// TranslateTo skips the remote call when detection already reports the
// target language with decent confidence.
func (c *Client) TranslateTo(ctx context.Context, text, targetLang string) (string, error) {
	if code, confidence := DetectLanguage(text); code == targetLang && confidence >= 0.8 {
		return text, nil
	}
	return c.Translate(ctx, text, targetLang)
}

type summaryResponse struct {
	Summary string `json:"summary"`
}

func (c *Client) Summarize(ctx context.Context, texts []string) (string, error) {
	var out summaryResponse
	if err := c.post(ctx, "/summarize", map[string]any{"texts": texts}, &out); err != nil {
		return "", err
	}
	return out.Summary, nil
}

func (c *Client) post(ctx context.Context, path string, body any, out any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(b))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("inference api: status %d", resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
