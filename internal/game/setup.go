package game

import (
	"math/rand/v2"
	"strings"
)

const (
	minScoreLimit = 1
	maxScoreLimit = 99
	minSinkPoints = 1
	maxSinkPoints = 10

	roomCodeLen     = 6
	roomCodeLetters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// SanitizeText strips everything but alphanumerics, spaces and -_.,! from
// free-text setup fields like the arena name.
func SanitizeText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '_', r == '.', r == ',', r == '!':
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// Normalize clamps the numeric setup fields into their legal ranges and
// sanitizes the free-text ones.
func (m *MatchSetup) Normalize() {
	m.Title = SanitizeText(m.Title)
	m.Arena = SanitizeText(m.Arena)
	m.GameScoreLimit = clamp(m.GameScoreLimit, minScoreLimit, maxScoreLimit)
	m.SinkPoints = clamp(m.SinkPoints, minSinkPoints, maxSinkPoints)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// NewRoomCode returns a fresh 6-letter uppercase room code. Codes are looked
// up globally, join links carry them as a query parameter.
func NewRoomCode() string {
	b := make([]byte, roomCodeLen)
	for i := range b {
		b[i] = roomCodeLetters[rand.IntN(len(roomCodeLetters))]
	}
	return string(b)
}
