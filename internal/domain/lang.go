package domain

// Lang is one of the languages the translator supports.
type Lang string

const (
	LangChinese  Lang = "zh"
	LangEnglish  Lang = "en"
	LangFrench   Lang = "fr"
	LangJapanese Lang = "ja"
	LangSpanish  Lang = "es"
)

// TranslateLangs lists every supported language in display order.
var TranslateLangs = []Lang{LangChinese, LangEnglish, LangFrench, LangJapanese, LangSpanish}

var langLabel = map[Lang]string{
	LangChinese:  "Chinese",
	LangEnglish:  "English",
	LangFrench:   "French",
	LangJapanese: "Japanese",
	LangSpanish:  "Spanish",
}

// ParseLang returns the typed language for a stored code, or false for
// anything outside the enumeration.
func ParseLang(s string) (Lang, bool) {
	l := Lang(s)
	_, ok := langLabel[l]
	if !ok {
		return "", false
	}
	return l, true
}

// Label returns the English display name used when prompting the model.
func (l Lang) Label() string { return langLabel[l] }
