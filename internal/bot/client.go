package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
)

var ErrNoReply = errors.New("bot returned no reply")

// Client calls a generative-text completion API (generativelanguage-style
// generateContent endpoint). The conversation state lives entirely on the
// caller's side; every call is a single prompt/reply exchange.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	Name    string

	HTTPClient *http.Client
	Logger     *logrus.Logger
}

func New(baseURL, apiKey, model, name string, logger *logrus.Logger) *Client {
	return &Client{
		BaseURL:    baseURL,
		APIKey:     apiKey,
		Model:      model,
		Name:       name,
		HTTPClient: &http.Client{Timeout: 15 * time.Second},
		Logger:     logger,
	}
}

// Enabled reports whether the bot is configured with an API key.
func (c *Client) Enabled() bool { return c != nil && c.APIKey != "" }

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Complete sends the prompt and returns the first candidate's text.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.BaseURL, c.Model, c.APIKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.HTTPClient.Do(req)
	if err != nil {
		return "", err
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", err
	}

	var parsed generateResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return "", err
	}
	if res.StatusCode != http.StatusOK {
		msg := res.Status
		if parsed.Error != nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
		if c.Logger != nil {
			c.Logger.WithFields(logrus.Fields{"status": res.StatusCode, "model": c.Model}).Warn("bot completion failed")
		}
		return "", fmt.Errorf("bot completion: %s", msg)
	}

	if len(parsed.Candidates) == 0 || len(parsed.Candidates[0].Content.Parts) == 0 {
		return "", ErrNoReply
	}
	return parsed.Candidates[0].Content.Parts[0].Text, nil
}
