// Package gemini implementa los ports de LLM (Classifier y ToolChat)
// contra la API REST generateContent de Google.
package gemini

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"paw-guardian/internal/platform/httpclient"
	"paw-guardian/internal/ports/llm"
)

const (
	// Una clasificación de video puede tardar bastante más que un request
	// JSON normal; el default es generoso a propósito.
	defaultTimeout = 90 * time.Second

	jsonMIMEType = "application/json"
)

// Config del cliente Gemini. APIKey y Model se validan en config.Validate
// antes de llegar acá.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string // opcional; default API pública v1beta
	Timeout time.Duration
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *httpclient.Client
}

func NewClient(cfg Config) *Client {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Client{
		apiKey:  strings.TrimSpace(cfg.APIKey),
		model:   strings.TrimSpace(cfg.Model),
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpclient.New(timeout),
	}
}

// ClassifyVideo manda el video + la rúbrica en un solo turno y devuelve el
// texto crudo del modelo. responseMimeType fuerza JSON, pero el contrato
// del port igual deja el parseo tolerante del lado del caller.
func (c *Client) ClassifyVideo(ctx context.Context, video llm.VideoRef, prompt string) (string, error) {
	req := generateRequest{
		Contents: []content{{
			Role: roleUser,
			Parts: []part{
				{FileData: &fileData{FileURI: video.URI, MIMEType: video.MIMEType}},
				{Text: prompt},
			},
		}},
		GenerationConfig: generationConfig{
			Temperature:      0,
			ResponseMIMEType: jsonMIMEType,
		},
	}

	reply, err := c.generate(ctx, req)
	if err != nil {
		return "", err
	}
	return turnOf(reply).Text, nil
}

// generate es la única llamada HTTP del adapter: POST a
// {base}/models/{model}:generateContent. Cualquier falla (red, status
// no-2xx, respuesta sin candidates) se reporta como llm.ErrTransport.
func (c *Client) generate(ctx context.Context, req generateRequest) (content, error) {
	endpoint := fmt.Sprintf("%s/models/%s:generateContent?key=%s",
		c.baseURL, c.model, url.QueryEscape(c.apiKey))

	var resp generateResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, endpoint, nil, req, &resp); err != nil {
		return content{}, fmt.Errorf("%w: %v", llm.ErrTransport, err)
	}
	if len(resp.Candidates) == 0 {
		// Pasa cuando safety filters bloquean la respuesta completa.
		return content{}, fmt.Errorf("%w: response has no candidates", llm.ErrTransport)
	}
	return resp.Candidates[0].Content, nil
}
