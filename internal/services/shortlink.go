package services

import (
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
)

// LinkGenerator returns a candidate short link token of the given length
type LinkGenerator func(length int) string

// GenerateShortLink builds a token of exactly length hex characters.
// Entropy comes from name-based (SHA-1) UUIDs seeded with random UUIDs; two
// of them are concatenated and shuffled. Uniqueness is the caller's job.
func GenerateShortLink(length int) string {
	if length <= 0 {
		return ""
	}

	var b strings.Builder
	for b.Len() < length {
		b.WriteString(derivedHex())
		b.WriteString(derivedHex())
	}

	chars := []byte(b.String())
	rand.Shuffle(len(chars), func(i, j int) {
		chars[i], chars[j] = chars[j], chars[i]
	})
	return string(chars[:length])
}

func derivedHex() string {
	seed := uuid.New()
	return strings.ReplaceAll(uuid.NewSHA1(uuid.NameSpaceDNS, []byte(seed.String())).String(), "-", "")
}
