package constants

import "strings"

// Language is an output language for explanations and summaries.
type Language string

const (
	English  Language = "en"
	Hinglish Language = "hi"
)

// ParseLanguage maps a request value to a supported language. Unknown or empty
// values fall back to English.
func ParseLanguage(s string) Language {
	if strings.EqualFold(strings.TrimSpace(s), string(Hinglish)) {
		return Hinglish
	}
	return English
}

// Describe returns the prompt-facing description of the language register.
func (l Language) Describe() string {
	if l == Hinglish {
		return "Hinglish (mix of Hindi and English, written in Latin letters, very simple)"
	}
	return "English (simple, non-legal, friendly tone)"
}
