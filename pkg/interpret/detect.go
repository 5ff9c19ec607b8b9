package interpret

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/colors"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

// MinConfidence is the type-detection confidence below which detected
// type, date and time are discarded in favor of a task for today.
const MinConfidence = 0.3

const keywordWeight = 2

var (
	numericDatePattern = regexp.MustCompile(`(?:^|[^\d/])(\d{1,2})/(\d{1,2})(?:/(\d{4}|\d{2}))?(?:[^\d/]|$)`)

	ampmPattern     = regexp.MustCompile(`(?i)(?:^|[^\d:.])(\d{1,2})(?:[:.](\d{2}))?\s*(am|pm)(?:[^\p{L}]|$)`)
	clockPattern    = regexp.MustCompile(`(?:^|[^\d:./])(\d{1,2})[:.](\d{2})(?:[^\d]|$)`)
	hoursPattern    = regexp.MustCompile(`(?i)(?:^|[^\d:.])(\d{1,2})\s*(?:h|hs|hrs|horas?)(?:\s*(\d{2}))?(?:[^\p{L}\d]|$)`)
	locationPrepPat = regexp.MustCompile(`(?i)(?:^|[^\p{L}\p{N}])(em|no|na|nos|nas|at|in)\s+`)
	locationCutPat  = regexp.MustCompile(`[,;:!?()\n]|\.(?:\s|$)`)
	tokenPattern    = regexp.MustCompile(`\S+`)

	relativesPattern = regexp.MustCompile(
		`(?i:(com|with))\s+(?i:(os|as|o|a|the)\s+)?` +
			`(?i:(pais|família|familia|parentes|sogros|avós|avos|tios|primos|parents|family|relatives|in-laws|grandparents))` +
			`\s+(?i:(da|do|de|dos|das|of))\s+(\p{Lu}\p{L}*(?:\s+\p{Lu}\p{L}*)*)`)
	personPattern = regexp.MustCompile(
		`(?:^|[^\p{L}\p{N}])(?i:com|with|e|and)\s+(?i:(?:o|a|the)\s+)?(\p{Lu}[\p{L}'-]*(?:\s+\p{Lu}[\p{L}'-]*)*)`)
	destinationPattern = regexp.MustCompile(
		`(?:^|[^\p{L}\p{N}])(?i:para|pra|to)\s+(\p{Lu}\p{L}*(?:\s+(?:de\s+|do\s+|da\s+)?\p{Lu}\p{L}*)*|\p{L}+)`)
)

type weekdayName struct {
	day   int
	names []string
}

var weekdayNames = []weekdayName{
	{0, []string{"domingo", "sunday"}},
	{1, []string{"segunda", "monday"}},
	{2, []string{"terça", "terca", "tuesday"}},
	{3, []string{"quarta", "wednesday"}},
	{4, []string{"quinta", "thursday"}},
	{5, []string{"sexta", "friday"}},
	{6, []string{"sábado", "sabado", "saturday"}},
}

var (
	weekdayByName = weekdayIndex()
	weekdayAlt    = alternation(weekdayWords())

	// Plurals ("segundas", "mondays") and the "-feira" suffix are accepted.
	weekdayPattern      = regexp.MustCompile(`(?i)` + leftEdge + `(` + weekdayAlt + `)s?(?:-feiras?)?` + rightEdge)
	everyWeekdayPattern = regexp.MustCompile(`(?i)` + leftEdge +
		`(?:toda|todo|todas|todos|every)\s+(?:as\s+|os\s+)?(` + weekdayAlt + `)s?(?:-feiras?)?` + rightEdge)
)

func weekdayWords() []string {
	var names []string
	for _, w := range weekdayNames {
		names = append(names, w.names...)
	}
	return names
}

func weekdayIndex() map[string]int {
	idx := map[string]int{}
	for _, w := range weekdayNames {
		for _, n := range w.names {
			idx[n] = w.day
		}
	}
	return idx
}

// findWeekday returns the first weekday named in text.
func findWeekday(text string) (int, bool) {
	m := weekdayPattern.FindStringSubmatch(text)
	if m == nil {
		return 0, false
	}
	day, ok := weekdayByName[strings.ToLower(m[2])]
	return day, ok
}

// DetectType scores the candidate types. Task is the baseline with score 1;
// every keyword hit adds 2 to its type. A shared meal is always an event.
func DetectType(text string) (model.Type, float64) {
	if isSharedMeal(text) {
		return model.TypeEvent, 1
	}
	scores := []struct {
		typ   model.Type
		score int
	}{
		{model.TypeTask, 1},
		{model.TypeMeeting, keywordWeight * meetingWords.count(text)},
		{model.TypeEvent, keywordWeight * eventWords.count(text)},
		{model.TypeHabit, keywordWeight * habitWords.count(text)},
	}
	best, total := 0, 0
	for i, s := range scores {
		total += s.score
		if s.score > scores[best].score {
			best = i
		}
	}
	return scores[best].typ, float64(scores[best].score) / float64(total)
}

func isSharedMeal(text string) bool {
	return mealWords.matches(text) && withWords.matches(text)
}

// DetectDate never fails: anything unrecognized resolves to today.
func DetectDate(text string, today model.Date) model.Date {
	switch {
	case todayWords.matches(text):
		return today
	case dayAfterTomorrowWords.matches(text):
		return today.AddDays(2)
	case tomorrowWords.matches(text):
		return today.AddDays(1)
	}

	if d, ok := numericDate(text, today); ok {
		return d
	}

	if day, ok := findWeekday(text); ok {
		offset := day - today.Weekday()
		if offset <= 0 {
			offset += 7
		}
		return today.AddDays(offset)
	}

	if nextWeekWords.matches(text) {
		return today.AddDays(7)
	}
	if travelWords.matches(text) {
		return today.AddDays(7)
	}
	return today
}

func numericDate(text string, today model.Date) (model.Date, bool) {
	m := numericDatePattern.FindStringSubmatch(text)
	if m == nil {
		return model.Date{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := today.Year
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		}
	}
	if month < 1 || month > 12 || day < 1 {
		return model.Date{}, false
	}
	d := model.NewDate(year, time.Month(month), day)
	// 31/02 normalizes into March; reject instead of guessing.
	if d.Day != day || int(d.Month) != month {
		return model.Date{}, false
	}
	return d, true
}

// DetectTime returns false when the text names no time at all.
func DetectTime(text string) (model.Clock, bool) {
	if c, ok := explicitTime(text); ok {
		return c, true
	}
	if noonWords.matches(text) {
		return model.Clock(12 * 60), true
	}
	if c, ok := mealTime(text); ok {
		return c, true
	}
	switch {
	case morningWords.matches(text):
		return model.Clock(9 * 60), true
	case afternoonWords.matches(text):
		return model.Clock(14 * 60), true
	case eveningWords.matches(text):
		return model.Clock(19 * 60), true
	}
	return 0, false
}

func explicitTime(text string) (model.Clock, bool) {
	if m := ampmPattern.FindStringSubmatch(text); m != nil {
		h, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if h < 1 || h > 12 {
			return 0, false
		}
		h %= 12
		if strings.EqualFold(m[3], "pm") {
			h += 12
		}
		c, err := model.NewClock(h, minute)
		return c, err == nil
	}
	for _, re := range []*regexp.Regexp{clockPattern, hoursPattern} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		h, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		c, err := model.NewClock(h, minute)
		if err != nil {
			return 0, false
		}
		return c, true
	}
	return 0, false
}

// mealTime applies the default hour of a meal when no explicit time is given.
func mealTime(text string) (model.Clock, bool) {
	switch {
	case breakfastWords.matches(text):
		return model.Clock(8 * 60), true
	case coffeeWords.matches(text) && withWords.matches(text) && afternoonWords.matches(text):
		return model.Clock(16 * 60), true
	case lunchWords.matches(text):
		return model.Clock(12*60 + 30), true
	case dinnerWords.matches(text):
		return model.Clock(20 * 60), true
	}
	return 0, false
}

// locationStops end a place name; a place starting with one is not a place.
var locationStops = map[string]bool{
	"com": true, "with": true, "e": true, "and": true, "às": true, "as": true, "at": true,
	"on": true, "para": true, "pra": true, "to": true, "for": true, "hoje": true, "amanhã": true,
	"amanha": true, "today": true, "tomorrow": true, "tonight": true, "manhã": true, "manha": true,
	"tarde": true, "noite": true, "morning": true, "afternoon": true, "evening": true, "night": true,
	"meio-dia": true, "noon": true, "próxima": true, "proxima": true, "próximo": true, "proximo": true,
	"next": true, "this": true, "dia": true, "semana": true, "week": true, "todo": true, "toda": true,
	"every": true, "depois": true, "ao": true, "by": true, "until": true, "até": true,
}

var locationTrailing = map[string]bool{
	"de": true, "da": true, "do": true, "à": true, "a": true, "o": true, "pela": true, "pelo": true,
	"the": true, "in": true, "em": true, "no": true, "na": true,
}

var articles = map[string]bool{"the": true, "o": true, "a": true, "os": true, "as": true}

func isLocationStop(word string) bool {
	w := strings.ToLower(strings.Trim(word, `"'`))
	if locationStops[w] {
		return true
	}
	if _, ok := findWeekday(w); ok {
		return true
	}
	return w != "" && unicode.IsDigit([]rune(w)[0])
}

// findLocation returns the place named after a location preposition and
// the phrase (preposition included) it was read from.
func findLocation(text string) (place, phrase string) {
	for _, loc := range locationPrepPat.FindAllStringSubmatchIndex(text, -1) {
		prepStart, rest := loc[2], loc[1]
		segment := text[rest:]
		if cut := locationCutPat.FindStringIndex(segment); cut != nil {
			segment = segment[:cut[0]]
		}
		tokens := tokenPattern.FindAllStringIndex(segment, -1)
		first := 0
		for first < len(tokens) && articles[strings.ToLower(segment[tokens[first][0]:tokens[first][1]])] {
			first++
		}
		last := first
		for last < len(tokens) && !isLocationStop(segment[tokens[last][0]:tokens[last][1]]) {
			last++
		}
		for last > first && locationTrailing[strings.ToLower(segment[tokens[last-1][0]:tokens[last-1][1]])] {
			last--
		}
		if last == first {
			continue
		}
		place = strings.TrimRight(segment[tokens[first][0]:tokens[last-1][1]], ".")
		phrase = text[prepStart : rest+tokens[last-1][1]]
		return place, phrase
	}
	return "", ""
}

// relatives is a "with the parents of NAME" mention.
type relatives struct {
	with, article, relation, prep, name string
}

func findRelatives(text string) (relatives, bool) {
	m := relativesPattern.FindStringSubmatch(text)
	if m == nil {
		return relatives{}, false
	}
	return relatives{with: m[1], article: m[2], relation: m[3], prep: m[4], name: m[5]}, true
}

func (r relatives) english() bool {
	return strings.EqualFold(r.prep, "of")
}

// person is the composed people entry, e.g. "pais da Gardenia".
func (r relatives) person() string {
	return strings.ToLower(r.relation) + " " + strings.ToLower(r.prep) + " " + r.name
}

func (r relatives) house() string {
	if r.english() {
		return r.name + "'s house"
	}
	return "Casa " + strings.ToLower(r.prep) + " " + r.name
}

// DetectLocation reads a preposition-anchored place. Without one, a mention of
// someone's relatives implies that person's house.
func DetectLocation(text string) string {
	if place, _ := findLocation(text); place != "" {
		return place
	}
	if r, ok := findRelatives(text); ok {
		return r.house()
	}
	return ""
}

// DetectPeople needs the original casing to tell names from words.
func DetectPeople(text string) []string {
	people := []string{}
	seen := map[string]bool{}
	add := func(p string) {
		if p != "" && !seen[p] {
			seen[p] = true
			people = append(people, p)
		}
	}

	if r, ok := findRelatives(text); ok {
		add(r.person())
	}
	for _, m := range personPattern.FindAllStringSubmatch(text, -1) {
		add(trimName(m[1]))
	}
	return people
}

// trimName drops capitalized date words trailing a name ("Ana Amanhã").
func trimName(name string) string {
	words := strings.Fields(name)
	n := 0
	for n < len(words) && !isNameStop(words[n]) {
		n++
	}
	return strings.Join(words[:n], " ")
}

func isNameStop(word string) bool {
	w := strings.ToLower(word)
	if _, ok := findWeekday(w); ok {
		return true
	}
	return todayWords.matches(w) || tomorrowWords.matches(w) || locationStops[w]
}

// DetectCategory returns an empty category and color when no bucket matches.
func DetectCategory(text string) (model.Category, string) {
	if isSharedMeal(text) {
		return model.CategorySocial, colors.ForCategory(model.CategorySocial)
	}
	var best model.Category
	bestScore := 0
	for _, b := range categoryBuckets {
		if s := b.words.count(text); s > bestScore {
			best, bestScore = b.category, s
		}
	}
	return best, colors.ForCategory(best)
}

// DetectFrequency reads recurrence phrases; plain text recurs once.
func DetectFrequency(text string) (model.Frequency, []int) {
	if m := everyWeekdayPattern.FindStringSubmatch(text); m != nil {
		if day, ok := weekdayByName[strings.ToLower(m[2])]; ok {
			return model.FrequencyWeekly, []int{day}
		}
	}
	switch {
	case dailyWords.matches(text):
		return model.FrequencyDaily, nil
	case weeklyWords.matches(text):
		return model.FrequencyWeekly, nil
	case monthlyWords.matches(text):
		return model.FrequencyMonthly, nil
	}
	return model.FrequencyOnce, nil
}

