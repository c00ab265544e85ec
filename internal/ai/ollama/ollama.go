package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/moonlit-games/werewolf/internal/ai"
)

type Client struct {
	Host string
	Opts ai.Options
	http *http.Client
}

func New(host string, opts ai.Options) *Client {
	if host == "" {
		host = "http://localhost:11434"
	}
	if opts.Model == "" {
		opts.Model = "llama3"
	}
	return &Client{
		Host: strings.TrimRight(host, "/"),
		Opts: opts,
		http: &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Chat(ctx context.Context, systemPrompt string, prompt string) (string, error) {
	payload := map[string]any{
		"model": c.Opts.Model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"options": map[string]any{"temperature": c.Opts.Temperature},
		"stream":  false,
	}
	b, _ := json.Marshal(payload)
	req, err := http.NewRequestWithContext(ctx, "POST", c.Host+"/api/chat", bytes.NewReader(b))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("ollama status %d", resp.StatusCode)
	}
	var out struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return strings.TrimSpace(out.Message.Content), nil
}
