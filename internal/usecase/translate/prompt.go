package translate

import (
	"fmt"

	"github.com/bestony/mintranslate/internal/domain"
)

// userPrompt wraps the committed input in the translation instruction sent
// as the user message. The system prompt travels separately.
func userPrompt(text string, src, tgt domain.Lang) string {
	return fmt.Sprintf("Translate the following text from %q to %q.\n\nSource text:\n%s",
		src.Label(), tgt.Label(), text)
}
