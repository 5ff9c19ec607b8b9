package interpret

import (
	"regexp"
	"sort"
	"strings"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

// Letter-aware boundaries; \b is ASCII-only and breaks on "terça" or "amanhã".
const (
	leftEdge  = `(^|[^\p{L}\p{N}])`
	rightEdge = `([^\p{L}\p{N}]|$)`
)

// keywords is an immutable set of words or phrases matched on letter boundaries.
type keywords struct {
	words []string
	each  []*regexp.Regexp
	any   *regexp.Regexp
}

func newKeywords(words ...string) keywords {
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	k := keywords{
		words: sorted,
		any:   regexp.MustCompile(`(?i)` + leftEdge + `(?:` + alternation(sorted) + `)` + rightEdge),
	}
	for _, w := range sorted {
		k.each = append(k.each, regexp.MustCompile(`(?i)`+leftEdge+regexp.QuoteMeta(w)+rightEdge))
	}
	return k
}

func (k keywords) matches(text string) bool {
	return k.any.MatchString(text)
}

// count returns how many distinct entries of the set occur in text.
func (k keywords) count(text string) int {
	n := 0
	for _, re := range k.each {
		if re.MatchString(text) {
			n++
		}
	}
	return n
}

// find returns the first entry found in text, as written there.
func (k keywords) find(text string) (string, bool) {
	loc := k.any.FindStringSubmatchIndex(text)
	if loc == nil {
		return "", false
	}
	// The keyword sits between the left edge group and the right edge group.
	return text[loc[3]:loc[4]], true
}

func alternation(words []string) string {
	quoted := make([]string, len(words))
	for i, w := range words {
		quoted[i] = regexp.QuoteMeta(w)
	}
	return strings.Join(quoted, "|")
}

// bounded compiles a case-insensitive pattern wrapped in letter boundaries.
// alt must not contain capturing groups so the edges stay groups 1 and 2.
func bounded(alt string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)` + leftEdge + `(?:` + alt + `)` + rightEdge)
}

// strip removes every match of a bounded pattern, keeping the surrounding edges.
// Adjacent matches share an edge, so replacement repeats until stable.
func strip(re *regexp.Regexp, s string) string {
	for i := 0; i < 8; i++ {
		next := re.ReplaceAllString(s, "${1} ${2}")
		if next == s {
			break
		}
		s = next
	}
	return s
}

var (
	meetingWords = newKeywords(
		"reunião", "reuniao", "reuniões", "call", "chamada", "videochamada", "conferência",
		"conferencia", "entrevista", "alinhamento", "daily standup", "daily meeting", "standup",
		"meeting", "interview", "conference", "sync", "zoom", "meet",
	)
	eventWords = newKeywords(
		"festa", "aniversário", "aniversario", "casamento", "show", "concerto", "evento",
		"cinema", "teatro", "viagem", "formatura", "churrasco", "party", "birthday", "wedding",
		"concert", "event", "movie", "theater", "trip", "graduation", "barbecue",
	)
	habitWords = newKeywords(
		"todo dia", "todos os dias", "diariamente", "hábito", "habito", "meditar", "academia",
		"exercício", "exercicio", "correr", "caminhar", "beber água", "beber agua", "alongar",
		"every day", "everyday", "habit", "meditate", "gym", "workout", "exercise", "jog",
		"drink water", "stretch",
	)

	mealWords = newKeywords(
		"almoço", "almoco", "jantar", "café", "cafe", "lunch", "dinner", "coffee",
	)
	withWords = newKeywords("com", "with")

	lunchWords     = newKeywords("almoço", "almoco", "lunch")
	dinnerWords    = newKeywords("jantar", "dinner")
	breakfastWords = newKeywords("café da manhã", "cafe da manha", "breakfast")
	coffeeWords    = newKeywords("café", "cafe", "coffee")

	travelWords = newKeywords(
		"viagem", "viajar", "viajo", "voo", "voar", "trip", "travel", "flight", "fly",
	)

	todayWords            = newKeywords("hoje", "today", "tonight")
	tomorrowWords         = newKeywords("amanhã", "amanha", "tomorrow")
	dayAfterTomorrowWords = newKeywords("depois de amanhã", "depois de amanha", "day after tomorrow")
	nextWeekWords         = newKeywords("próxima semana", "proxima semana", "semana que vem", "next week")

	noonWords      = newKeywords("meio-dia", "meio dia", "noon", "midday")
	morningWords   = newKeywords("manhã", "manha", "morning")
	afternoonWords = newKeywords("tarde", "afternoon")
	eveningWords   = newKeywords("noite", "evening", "night", "tonight")

	dailyWords   = newKeywords("todo dia", "todos os dias", "diariamente", "every day", "everyday", "daily")
	weeklyWords  = newKeywords("toda semana", "todas as semanas", "semanalmente", "every week", "weekly")
	monthlyWords = newKeywords("todo mês", "todo mes", "todos os meses", "mensalmente", "every month", "monthly")
)

type categoryBucket struct {
	category model.Category
	words    keywords
}

// Order matters: ties go to the earlier bucket.
var categoryBuckets = []categoryBucket{
	{model.CategoryWork, newKeywords(
		"trabalho", "reunião", "reuniao", "cliente", "projeto", "relatório", "relatorio",
		"escritório", "escritorio", "apresentação", "apresentacao", "prazo", "chefe",
		"work", "meeting", "client", "project", "report", "office", "presentation", "deadline", "boss", "email",
	)},
	{model.CategoryPersonal, newKeywords(
		"casa", "limpar", "compras", "mercado", "lavar", "roupa", "cozinhar", "arrumar",
		"home", "clean", "groceries", "shopping", "laundry", "cook", "tidy",
	)},
	{model.CategoryHealth, newKeywords(
		"médico", "medico", "dentista", "academia", "exercício", "exercicio", "correr",
		"meditar", "remédio", "remedio", "consulta", "exame", "yoga", "beber água", "beber agua",
		"doctor", "dentist", "gym", "exercise", "run", "meditate", "medicine", "checkup", "drink water",
	)},
	{model.CategoryStudy, newKeywords(
		"estudar", "aula", "curso", "prova", "ler", "livro", "faculdade", "lição", "licao",
		"study", "class", "course", "exam", "read", "book", "homework", "lecture",
	)},
	{model.CategoryFinancial, newKeywords(
		"pagar", "conta", "boleto", "banco", "fatura", "imposto", "orçamento", "orcamento", "investir",
		"pay", "bill", "bank", "invoice", "tax", "budget", "invest", "rent",
	)},
	{model.CategorySocial, newKeywords(
		"festa", "aniversário", "aniversario", "amigos", "família", "familia", "encontro", "casamento", "churrasco",
		"party", "birthday", "friends", "family", "wedding", "hangout", "barbecue",
	)},
}

// Portuguese markers decide the language of synthesized titles.
var (
	portugueseWords = newKeywords(
		"com", "para", "pra", "de", "da", "do", "na", "no", "em", "às", "hoje", "amanhã", "amanha",
		"viagem", "viajar", "reunião", "reuniao", "almoço", "almoco", "jantar", "os", "as", "casa",
	)
	englishWords = newKeywords(
		"with", "to", "the", "at", "on", "in", "of", "today", "tomorrow", "trip", "travel",
		"lunch", "dinner", "meeting", "house",
	)
)

type language int

const (
	portuguese language = iota
	english
)

func detectLanguage(text string) language {
	if englishWords.count(text) > portugueseWords.count(text) {
		return english
	}
	return portuguese
}
