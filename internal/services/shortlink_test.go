package services

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var hexToken = regexp.MustCompile(`^[0-9a-f]*$`)

func TestGenerateShortLinkLength(t *testing.T) {
	for _, length := range []int{1, 8, 16, 32, 64, 65, 150} {
		token := GenerateShortLink(length)
		assert.Len(t, token, length)
		assert.Regexp(t, hexToken, token)
	}
}

func TestGenerateShortLinkNonPositive(t *testing.T) {
	assert.Equal(t, "", GenerateShortLink(0))
	assert.Equal(t, "", GenerateShortLink(-3))
}

func TestGenerateShortLinkVaries(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		seen[GenerateShortLink(16)] = struct{}{}
	}
	assert.Greater(t, len(seen), 195)
}
