package gemini

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model name is given
const DefaultModel = "gemini-1.5-flash"

// Client queries Google Gemini
type Client struct {
	apiKey string
	opts   []option.ClientOption
}

// NewClient creates a Gemini client. The API key comes from GEMINI_API_KEY
// when apiKey is empty.
func NewClient(apiKey string, opts ...option.ClientOption) (*Client, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	return &Client{apiKey: apiKey, opts: opts}, nil
}

// SimpleQuery sends prompt with an optional image and returns the text of
// the first candidate.
func (c *Client) SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error) {
	if model == "" {
		model = DefaultModel
	}

	opts := append([]option.ClientOption{option.WithAPIKey(c.apiKey)}, c.opts...)
	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create new gemini client: %w", err)
	}
	defer client.Close()

	gm := client.GenerativeModel(model)
	gm.SetTemperature(0.4)
	gm.SetMaxOutputTokens(64)

	parts := []genai.Part{}
	if imgB64 != "" {
		data, err := base64.StdEncoding.DecodeString(imgB64)
		if err != nil {
			return "", fmt.Errorf("failed to decode base64 image: %w", err)
		}
		parts = append(parts, genai.ImageData(imageFormat(data), data))
	}
	parts = append(parts, genai.Text(prompt))

	resp, err := gm.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("no candidates returned from Gemini")
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("empty content returned from Gemini")
	}

	if txt, ok := candidate.Content.Parts[0].(genai.Text); ok {
		return string(txt), nil
	}

	return "", fmt.Errorf("unexpected response format from Gemini")
}

// imageFormat returns the short format name genai.ImageData expects
func imageFormat(data []byte) string {
	ct := http.DetectContentType(data)
	if format, ok := strings.CutPrefix(ct, "image/"); ok {
		return format
	}
	return "jpeg"
}
