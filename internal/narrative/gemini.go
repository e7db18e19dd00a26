// Package narrative produces optional human-readable market commentary.
// It enriches cycle results only: nothing here ever touches a
// decision's numeric fields, and every path degrades to a deterministic
// local sentence so a slow or down service cannot block a cycle.
package narrative

import (
	"context"
	"fmt"
	"os"

	"github.com/go-resty/resty/v2"

	"nexus-trading-bot/internal/interfaces"
	"nexus-trading-bot/internal/logger"
)

const geminiBaseURL = "https://generativelanguage.googleapis.com/v1beta/models"

// Gemini asks Google's generateContent endpoint for one-sentence
// commentary, trying each configured model in order.
type Gemini struct {
	c      *resty.Client
	apiKey string
	models []string
}

var _ interfaces.Narrator = (*Gemini)(nil)

func NewGemini(models []string) *Gemini {
	return &Gemini{
		c:      resty.New().SetBaseURL(geminiBaseURL),
		apiKey: os.Getenv("GOOGLE_API_KEY"),
		models: models,
	}
}

type promptPart struct {
	Text string `json:"text"`
}

type promptContent struct {
	Parts []promptPart `json:"parts"`
}

type generateRequest struct {
	Contents []promptContent `json:"contents"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Explain returns one sentence of commentary. The caller's ctx carries
// the timeout; any failure falls back to the local sentence.
func (g *Gemini) Explain(ctx context.Context, price, change24h, rsi float64) string {
	if g.apiKey == "" {
		return fallbackSentence(rsi)
	}

	prompt := fmt.Sprintf(
		"Analyze: BTC at $%.2f (%+.2f%% 24h), RSI: %.2f. Provide a concise 1-sentence technical analysis.",
		price, change24h, rsi,
	)

	req := generateRequest{Contents: []promptContent{{Parts: []promptPart{{Text: prompt}}}}}

	for _, model := range g.models {
		var out generateResponse
		resp, err := g.c.R().
			SetContext(ctx).
			SetQueryParam("key", g.apiKey).
			SetBody(req).
			SetResult(&out).
			Post("/" + model + ":generateContent")
		if err != nil || !resp.IsSuccess() {
			logger.Debug(ctx, "Narrative model unavailable", "model", model, "error", err)
			continue
		}
		if len(out.Candidates) > 0 && len(out.Candidates[0].Content.Parts) > 0 {
			if txt := out.Candidates[0].Content.Parts[0].Text; txt != "" {
				return txt
			}
		}
	}

	return fallbackSentence(rsi)
}
