package auth

import (
	"crypto/rand"
	"math/big"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	// MinNameLength and MaxNameLength bound display names after trimming.
	MinNameLength = 3
	MaxNameLength = 30

	anonymousNameNumberSpace = 1000
)

var (
	anonymousAdjectives = []string{
		"Happy", "Curious", "Cheerful", "Bright", "Calm",
		"Eager", "Gentle", "Honest", "Kind", "Lively",
		"Polite", "Proud", "Silly", "Witty", "Brave",
	}
	anonymousNouns = []string{
		"Penguin", "Tiger", "Dolphin", "Eagle", "Koala",
		"Panda", "Fox", "Wolf", "Owl", "Rabbit",
		"Lion", "Bear", "Deer", "Hawk", "Turtle",
	}
)

// GenerateAnonymousName returns a friendly display name such as "HappyPenguin482".
func GenerateAnonymousName() (string, error) {
	adj, err := pick(anonymousAdjectives)
	if err != nil {
		return "", err
	}
	noun, err := pick(anonymousNouns)
	if err != nil {
		return "", err
	}
	n, err := rand.Int(rand.Reader, big.NewInt(anonymousNameNumberSpace))
	if err != nil {
		return "", err
	}
	return adj + noun + strconv.FormatInt(n.Int64(), 10), nil
}

func pick(words []string) (string, error) {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", err
	}
	return words[i.Int64()], nil
}

// NameViolation describes why a display name was rejected.
type NameViolation struct {
	Reason  Reason
	Message string
}

// ValidateName trims name and checks its length in characters.
// It returns the trimmed name and a nil violation when the name is acceptable.
func ValidateName(name string) (string, *NameViolation) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	switch {
	case n < MinNameLength:
		return trimmed, &NameViolation{
			Reason:  ReasonNameTooShort,
			Message: "Name must be at least " + strconv.Itoa(MinNameLength) + " characters long",
		}
	case n > MaxNameLength:
		return trimmed, &NameViolation{
			Reason:  ReasonNameTooLong,
			Message: "Name must be at most " + strconv.Itoa(MaxNameLength) + " characters long",
		}
	}
	return trimmed, nil
}
