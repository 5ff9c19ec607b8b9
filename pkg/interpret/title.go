package interpret

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Fragments are the pieces already detected in a sentence that must not
// survive into its title.
type Fragments struct {
	LocationPhrase string
	People         []string
}

var (
	verbPrefixPattern = regexp.MustCompile(`(?i)^\s*(?:` + alternation([]string{
		"me lembre de", "me lembrar de", "lembre-me de", "lembrar de", "lembrete:", "lembrete",
		"preciso", "adicionar", "adiciona", "agendar", "agenda", "marcar", "marca", "criar", "cria",
		"remind me to", "remember to", "set up", "add", "schedule", "create", "book",
	}) + `)(?:\s+|$)`)

	datePhrasePattern = bounded(`(?:(?:para|for|on|no|na|em|até|by)\s+)?(?:` + alternation([]string{
		"depois de amanhã", "depois de amanha", "day after tomorrow", "hoje", "today", "amanhã",
		"amanha", "tomorrow", "próxima semana", "proxima semana", "semana que vem", "next week",
	}) + `)`)
	numericDateStrip = regexp.MustCompile(`(?i)(?:(?:no dia|dia|em|on|para|até)\s+)?\d{1,2}/\d{1,2}(?:/\d{2,4})?`)

	frequencyPhrasePattern = bounded(alternation([]string{
		"todos os dias", "todo dia", "diariamente", "every day", "everyday", "todas as semanas",
		"toda semana", "semanalmente", "every week", "todos os meses", "todo mês", "todo mes",
		"mensalmente", "every month",
	}))

	explicitTimeStrip = regexp.MustCompile(`(?i)(?:^|[^\p{L}\d])(?:(?:às|as|at|ao|a partir das|por volta das|around|by)\s+)?` +
		`(?:\d{1,2}(?:[:.]\d{2})?\s*(?:am|pm)|\d{1,2}[:.]\d{2}\s*(?:h|hs|hrs)?|\d{1,2}\s*(?:horas|hora|hrs|hs|h)(?:\s*\d{2})?)` +
		`(?:[^\p{L}\d]|$)`)
	partOfDayPattern = bounded(alternation([]string{
		"hoje à noite", "hoje a noite", "de manhã", "de manha", "pela manhã", "pela manha", "à tarde",
		"a tarde", "pela tarde", "de tarde", "à noite", "a noite", "de noite", "ao meio-dia",
		"ao meio dia", "meio-dia", "meio dia", "in the morning", "in the afternoon", "in the evening",
		"at night", "tonight", "at noon", "noon",
	}))

	weekdayStrip = bounded(`(?:(?:na|no|nesta|neste|nessa|nesse|próxima|próximo|proxima|proximo|this|next|on|every|toda|todo|todas|todos)\s+)?` +
		`(?:(?:as|os)\s+)?(?:` + weekdayAlt + `)s?(?:-feiras?)?(?:\s+que vem)?`)

	spacePattern       = regexp.MustCompile(`\s+`)
	spaceBeforePunct   = regexp.MustCompile(`\s+([,.;:!?])`)
	repeatedPunct      = regexp.MustCompile(`([,;:])(?:\s*[,;:])+`)
	danglingConnectors = map[string]bool{
		"com": true, "with": true, "e": true, "and": true, "às": true, "as": true, "at": true,
		"no": true, "na": true, "em": true, "on": true, "in": true, "para": true, "to": true,
		"de": true, "do": true, "da": true, "the": true, "o": true, "a": true, "pela": true,
		"pelo": true, "for": true, "ao": true, "dia": true,
	}
)

// CleanTitle strips command verbs, dates, times, the detected place and the
// detected people from the original sentence.
func CleanTitle(original string, f Fragments) string {
	s := verbPrefixPattern.ReplaceAllString(original, "")

	s = numericDateStrip.ReplaceAllString(s, " ")
	s = strip(datePhrasePattern, s)
	s = strip(weekdayStrip, s)
	s = strip(frequencyPhrasePattern, s)
	s = strip(partOfDayPattern, s)
	s = explicitTimeStrip.ReplaceAllString(s, " ")

	if f.LocationPhrase != "" {
		s = regexp.MustCompile(`(?i)`+regexp.QuoteMeta(f.LocationPhrase)).ReplaceAllString(s, " ")
	}
	for _, p := range f.People {
		quoted := regexp.QuoteMeta(p)
		s = strip(bounded(`(?:com|with|e|and)\s+(?:(?:os|as|o|a|the)\s+)?`+quoted), s)
		s = strip(bounded(quoted), s)
	}
	return tidy(s)
}

// tidy collapses whitespace and drops stray punctuation and connectors left at the edges.
func tidy(s string) string {
	s = spacePattern.ReplaceAllString(s, " ")
	s = spaceBeforePunct.ReplaceAllString(s, "$1")
	s = repeatedPunct.ReplaceAllString(s, "$1")
	for {
		before := s
		s = strings.TrimFunc(s, func(r rune) bool {
			return unicode.IsSpace(r) || strings.ContainsRune(",.;:!?-–", r)
		})
		words := strings.Fields(s)
		for len(words) > 0 && danglingConnectors[strings.ToLower(words[len(words)-1])] {
			words = words[:len(words)-1]
		}
		for len(words) > 0 && (words[0] == "e" || words[0] == "and") {
			words = words[1:]
		}
		s = strings.Join(words, " ")
		if s == before {
			return s
		}
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
