package i18n

import (
	"sort"
	"strings"
	"sync"
)

// Translator retrieves localized messages for rule codes ("required",
// "min.string"). data fills the :placeholders of the message, for example
// "attribute" or "min".
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	dict, ok := dictionaries[t.lang]
	if !ok {
		dict = dictionaries["en"]
	}
	msg, ok := dict[code]
	if !ok {
		if msg, ok = dictionaries["en"][code]; !ok {
			msg = "The :attribute field is invalid."
		}
	}
	return Format(msg, data)
}

// Dictionary returns the built-in Translator for lang. Unsupported languages
// fall back to English.
func Dictionary(lang string) Translator {
	if _, ok := dictionaries[lang]; !ok {
		lang = "en"
	}
	return dictTranslator{lang: lang}
}

// Languages lists the languages with a built-in dictionary.
func Languages() []string {
	out := make([]string, 0, len(dictionaries))
	for k := range dictionaries {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Codes lists the message codes of the English dictionary, which is the
// complete set.
func Codes() []string {
	out := make([]string, 0, len(dictionaries["en"]))
	for k := range dictionaries["en"] {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Format replaces ":key" placeholders with data values. Longer keys are
// replaced first so that ":min" never clobbers ":minimum".
func Format(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(msg, ":") {
		return msg
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return len(keys[i]) > len(keys[j]) })
	pairs := make([]string, 0, len(keys)*2)
	for _, k := range keys {
		pairs = append(pairs, ":"+k, data[k])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en", "ja", "zh").
func SetLanguage(lang string) {
	mu.Lock()
	currentTranslator = Dictionary(lang)
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version). nil restores the English dictionary.
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// Current returns the Translator installed by SetLanguage or SetTranslator.
func Current() Translator {
	mu.RLock()
	defer mu.RUnlock()
	return currentTranslator
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string { return Current().Message(code, data) }
