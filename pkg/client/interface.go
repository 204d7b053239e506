package client

import (
	"context"
)

// VisionClient asks a vision-language model a free-form question about one
// image. imgB64 is the base64-encoded image; an empty string sends the prompt
// alone.
type VisionClient interface {
	SimpleQuery(ctx context.Context, model, prompt, imgB64 string) (string, error)
}
