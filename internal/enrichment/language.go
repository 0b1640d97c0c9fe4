package enrichment

import "github.com/abadojack/whatlanggo"

// DetectLanguage returns the ISO 639-1 code of the text's language and a
// confidence in [0,1]. Used to skip translation requests for text already in
// the reader's language.
func DetectLanguage(text string) (code string, confidence float64) {
	info := whatlanggo.Detect(text)
	return info.Lang.Iso6391(), info.Confidence
}
