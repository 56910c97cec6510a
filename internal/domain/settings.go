package domain

import "strings"

// AppSettingsID is the fixed key of the single settings row.
const AppSettingsID = "app"

// AppSettings is the durable, single-row application settings record.
type AppSettings struct {
	ID           string `json:"id"`
	SystemPrompt string `json:"systemPrompt"`
	UpdatedAt    int64  `json:"updatedAt"` // epoch millis
}

// DefaultSystemPrompt is the bundled instruction template applied when the
// user has never customized the prompt.
var DefaultSystemPrompt = strings.Join([]string{
	"You are a translation engine.",
	"You translate the user's input from the specified source language to the target language.",
	"Requirements:",
	"1) Output only the translation. Do not explain, add quotes, or add extra content.",
	"2) Preserve the original line breaks and formatting.",
}, "\n")
