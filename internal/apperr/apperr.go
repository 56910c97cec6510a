// Package apperr defines the stable error-kind vocabulary the UI maps to
// localized text. Kinds cross the API boundary as their string value; no raw
// wrapped errors or stack traces leak upward.
package apperr

import "errors"

// Kind is a stable, localizable error identifier.
type Kind string

const (
	ProviderNameRequired   Kind = "errors.providerNameRequired"
	ModelRequired          Kind = "errors.modelRequired"
	APIKeyRequired         Kind = "errors.apiKeyRequired"
	OpenAIAPIKeyMissing    Kind = "errors.openaiApiKeyMissing"
	AnthropicAPIKeyMissing Kind = "errors.anthropicApiKeyMissing"
	GeminiAPIKeyMissing    Kind = "errors.geminiApiKeyMissing"
	AIRequestFailed        Kind = "errors.aiRequestFailed"
	TranslationCanceled    Kind = "errors.translationCanceled"
	TranslationFailed      Kind = "errors.translationFailed"
)

func (k Kind) Error() string { return string(k) }

// IsKind reports whether err is (or wraps) the given kind.
func IsKind(err error, k Kind) bool { return errors.Is(err, k) }

// Message returns the display string for an error: the error's own message
// when present, otherwise the fallback kind.
func Message(err error, fallback Kind) string {
	if err == nil || err.Error() == "" {
		return string(fallback)
	}
	return err.Error()
}
