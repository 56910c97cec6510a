package domain

// HistoryRecord is one completed translation. Records are immutable once
// written; the user may delete them, never edit them.
type HistoryRecord struct {
	ID             string `json:"id"`
	CreatedAt      int64  `json:"createdAt"` // epoch millis
	SourceLang     Lang   `json:"sourceLang"`
	TargetLang     Lang   `json:"targetLang"`
	SourceText     string `json:"sourceText"`
	TranslatedText string `json:"translatedText"`
}
