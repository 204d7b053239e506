package llamacpp

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestSimpleQuery(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"Morning fog over the bay"}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL + "/")
	require.NoError(t, err)

	img := base64.StdEncoding.EncodeToString(pngHeader)
	out, err := c.SimpleQuery(context.Background(), "qwen2-vl", "Suggest a caption", img)
	require.NoError(t, err)
	assert.Equal(t, "Morning fog over the bay", out)

	msgs := got["messages"].([]any)
	parts := msgs[0].(map[string]any)["content"].([]any)
	require.Len(t, parts, 2)
	url := parts[1].(map[string]any)["image_url"].(map[string]any)["url"].(string)
	assert.True(t, strings.HasPrefix(url, "data:image/png;base64,"), url)
}

func TestSimpleQueryArrayContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":[{"type":"text","text":"Two cats"}]}}]}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)
	out, err := c.SimpleQuery(context.Background(), "m", "p", "")
	require.NoError(t, err)
	assert.Equal(t, "Two cats", out)
}

func TestSimpleQueryErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `oops`},
		{"no choices", http.StatusOK, `{"choices":[]}`},
		{"empty text", http.StatusOK, `{"choices":[{"message":{"content":""}}]}`},
		{"bad json", http.StatusOK, `{`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := NewClient(srv.URL)
			require.NoError(t, err)
			_, err = c.SimpleQuery(context.Background(), "m", "p", "")
			assert.Error(t, err)
		})
	}
}

func TestNewClientValidatesURL(t *testing.T) {
	_, err := NewClient("localhost:8080")
	assert.Error(t, err)

	c, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultURL, c.baseURL)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "image/png", mimeType(base64.StdEncoding.EncodeToString(pngHeader)))
	assert.Equal(t, "image/jpeg", mimeType(base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xe0})))
	assert.Equal(t, "image/jpeg", mimeType("???"))
}
