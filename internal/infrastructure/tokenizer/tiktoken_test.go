package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenizer_RoundTrip(t *testing.T) {
	tok, err := Get()
	require.NoError(t, err)

	text := "Fever in children: when to see a doctor in Ontario."
	tokens := tok.Encode(text)
	assert.NotEmpty(t, tokens)
	assert.Equal(t, text, tok.Decode(tokens))
	assert.Equal(t, len(tokens), tok.Count(text))
}

func TestTokenizer_Empty(t *testing.T) {
	tok, err := Get()
	require.NoError(t, err)

	assert.Nil(t, tok.Encode(""))
	assert.Equal(t, "", tok.Decode(nil))
	assert.Equal(t, 0, tok.Count(""))
}

func TestGet_Singleton(t *testing.T) {
	a, err := Get()
	require.NoError(t, err)
	b, err := Get()
	require.NoError(t, err)
	assert.Same(t, a, b)
}
