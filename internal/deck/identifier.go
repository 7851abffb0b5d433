package deck

import (
	"fmt"
	"strings"
	"unicode"
)

// ID is a validated swudb deck identifier.
type ID string

func (id ID) String() string { return string(id) }

// Alphabet selects which runes a deck identifier may contain.
type Alphabet string

const (
	// AlphabetLetters accepts ASCII letters only. Numeric ids such as the
	// "1234567" example on the landing page are rejected under this setting.
	AlphabetLetters      Alphabet = "letters"
	AlphabetAlphanumeric Alphabet = "alphanumeric"
)

func (a Alphabet) allows(r rune) bool {
	if r > unicode.MaxASCII {
		return false
	}
	switch a {
	case AlphabetAlphanumeric:
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	default:
		return unicode.IsLetter(r)
	}
}

// DefaultMaxLength bounds identifiers when no explicit limit is configured.
const DefaultMaxLength = 32

// Validator turns raw user input into a deck ID.
type Validator struct {
	Alphabet  Alphabet
	MaxLength int
}

func NewValidator(alphabet Alphabet, maxLength int) Validator {
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}
	if alphabet == "" {
		alphabet = AlphabetLetters
	}
	return Validator{Alphabet: alphabet, MaxLength: maxLength}
}

// Normalize accepts a bare id or a URL ending with the id, for example
// "https://swudb.com/deck/ABCDEFG/", and returns "ABCDEFG".
func (v Validator) Normalize(raw string) (ID, error) {
	s := strings.TrimSpace(raw)
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimRight(s, "/")
	if i := strings.LastIndex(s, "/"); i >= 0 {
		s = s[i+1:]
	}

	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidIdentifier)
	}
	limit := v.MaxLength
	if limit <= 0 {
		limit = DefaultMaxLength
	}
	if len(s) > limit {
		return "", fmt.Errorf("%w: longer than %d characters", ErrInvalidIdentifier, limit)
	}
	for _, r := range s {
		if !v.Alphabet.allows(r) {
			return "", fmt.Errorf("%w: unexpected character %q", ErrInvalidIdentifier, r)
		}
	}
	return ID(s), nil
}
