package gemini

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := NewClient("")
	assert.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestNewClientKeySources(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "from-env")
	c, err := NewClient("")
	require.NoError(t, err)
	assert.Equal(t, "from-env", c.apiKey)

	c, err = NewClient("explicit")
	require.NoError(t, err)
	assert.Equal(t, "explicit", c.apiKey)
}

func TestImageFormat(t *testing.T) {
	assert.Equal(t, "png", imageFormat([]byte("\x89PNG\r\n\x1a\n")))
	assert.Equal(t, "jpeg", imageFormat([]byte{0xff, 0xd8, 0xff}))
	assert.Equal(t, "jpeg", imageFormat([]byte("plain text")))
}
