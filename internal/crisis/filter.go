package crisis

import (
	"strings"
)

// SafetyMessage is sent verbatim instead of a generated reply whenever the
// filter matches. It must never be rephrased by the model.
const SafetyMessage = `Мне очень жаль, что вам сейчас настолько тяжело. Пожалуйста, не оставайтесь с этим наедине.

Прямо сейчас вы можете получить бесплатную помощь:
📞 8-800-2000-122 — телефон доверия (круглосуточно, анонимно)
📞 112 — единый номер экстренных служб

Пожалуйста, позвоните по одному из этих номеров или обратитесь к специалисту очно. Ваша жизнь очень важна.`

// defaultWords are matched as case-folded substrings, so stems cover
// the inflected forms ("самоубийств" matches "самоубийство", "самоубийства").
var defaultWords = []string{
	"суицид",
	"самоубийств",
	"покончить с собой",
	"покончу с собой",
	"не хочу жить",
	"жить не хочется",
	"хочу умереть",
	"убить себя",
	"убью себя",
	"свести счеты с жизнью",
	"вскрыть вены",
	"порезать вены",
}

// Filter detects crisis trigger phrases in message text. It is a pure
// presence check: no stemming, no context weighting.
type Filter struct {
	enabled bool
	words   []string
}

// NewFilter builds a filter over the default lexicon plus any extra
// configured phrases.
func NewFilter(enabled bool, extraWords []string) *Filter {
	words := make([]string, 0, len(defaultWords)+len(extraWords))
	for _, w := range defaultWords {
		words = append(words, strings.ToLower(w))
	}
	for _, w := range extraWords {
		w = strings.ToLower(strings.TrimSpace(w))
		if w != "" {
			words = append(words, w)
		}
	}

	return &Filter{
		enabled: enabled,
		words:   words,
	}
}

// Match reports whether the text contains any trigger phrase,
// case-insensitively. A disabled filter never matches.
func (f *Filter) Match(text string) bool {
	if !f.enabled {
		return false
	}

	folded := strings.ToLower(text)
	for _, w := range f.words {
		if strings.Contains(folded, w) {
			return true
		}
	}

	return false
}
