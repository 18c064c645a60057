package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokensLowercasesAndFiltersLength(t *testing.T) {
	got := Words("HttpClient_v2, foo.Bar(a, bb)", 2)
	assert.Equal(t, []string{"httpclient_v2", "foo", "bar", "bb"}, got)
}

func TestTokensMinLengthOne(t *testing.T) {
	got := Words("a b cc", 1)
	assert.Equal(t, []string{"a", "b", "cc"}, got)
}

func TestTokensEmptyString(t *testing.T) {
	assert.Empty(t, Tokens("", 2))
}

func TestTokensNoPanicOnPunctuationOnly(t *testing.T) {
	assert.Empty(t, Tokens("!!!...,,,", 2))
}

func TestTokensOffsets(t *testing.T) {
	toks := Tokens("  foo bar", 2)
	if assert.Len(t, toks, 2) {
		assert.Equal(t, 2, toks[0].Offset)
		assert.Equal(t, 6, toks[1].Offset)
	}
}
