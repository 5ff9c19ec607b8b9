// Package interpret turns one free-text sentence into a structured task
// description. Every function here is deterministic and total: any input
// yields some usable context, and nothing keeps state between calls.
package interpret

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/guilhermexp/LifeBetter-sub001/pkg/colors"
	"github.com/guilhermexp/LifeBetter-sub001/pkg/model"
)

// Dialog identifies the screen asking for an interpretation.
type Dialog int

const (
	DialogQuickAdd Dialog = iota
	DialogHabit
)

const minTitleLength = 3

// Input is one sentence prepared for the rules.
type Input struct {
	Original string
	Lower    string
	Today    model.Date
	// Language forces synthesized titles to "pt" or "en" when set.
	Language string
}

func NewInput(text string, today model.Date) Input {
	return Input{Original: text, Lower: strings.ToLower(text), Today: today}
}

// Rule produces a context when it applies to the input.
type Rule interface {
	Name() string
	Apply(in Input) (model.DetectedContext, bool)
}

// GenericRule runs every detector and always applies.
type GenericRule struct{}

// TravelOverrideRule rewrites title and location of trips.
type TravelOverrideRule struct{}

// FamilyMealOverrideRule handles "lunch with the parents of NAME", which the
// generic pass reads poorly because the host is never the subject.
type FamilyMealOverrideRule struct{}

// DefaultRules are evaluated in order; the first that applies wins.
func DefaultRules() []Rule {
	return []Rule{FamilyMealOverrideRule{}, TravelOverrideRule{}, GenericRule{}}
}

func (GenericRule) Name() string { return "generic" }

func (GenericRule) Apply(in Input) (model.DetectedContext, bool) {
	return generic(in), true
}

func generic(in Input) model.DetectedContext {
	typ, confidence := DetectType(in.Lower)
	date := DetectDate(in.Lower, in.Today)
	place, phrase := findLocation(in.Original)
	if place == "" {
		place = DetectLocation(in.Original)
	}
	people := DetectPeople(in.Original)
	category, color := DetectCategory(in.Lower)
	frequency, repeatDays := DetectFrequency(in.Lower)

	ctx := model.DetectedContext{
		Title:          capitalize(CleanTitle(in.Original, Fragments{LocationPhrase: phrase, People: people})),
		Date:           date.String(),
		Type:           typ,
		Location:       place,
		People:         people,
		Category:       category,
		SuggestedColor: color,
		Frequency:      frequency,
		RepeatDays:     repeatDays,
		Confidence:     confidence,
	}
	if clk, ok := DetectTime(in.Lower); ok {
		ctx.Time = clk.String()
	}
	if confidence < MinConfidence {
		ctx = ApplyConfidenceFallback(ctx, in.Today)
	}
	return ctx
}

// ApplyConfidenceFallback discards an untrustworthy reading: the result is a
// task for today with no time.
func ApplyConfidenceFallback(ctx model.DetectedContext, today model.Date) model.DetectedContext {
	ctx.Type = model.TypeTask
	ctx.Date = today.String()
	ctx.Time = ""
	return ctx
}

func (TravelOverrideRule) Name() string { return "travel" }

func (TravelOverrideRule) Apply(in Input) (model.DetectedContext, bool) {
	if !travelWords.matches(in.Lower) {
		return model.DetectedContext{}, false
	}
	ctx := generic(in)
	lang := detectLanguage(in.Lower)
	switch in.Language {
	case "en":
		lang = english
	case "pt":
		lang = portuguese
	}
	trip, to := "Viagem", "para"
	if lang == english {
		trip, to = "Trip", "to"
	}

	dest := findDestination(in.Original)
	if utf8.RuneCountInString(ctx.Title) < minTitleLength {
		ctx.Title = trip
		if dest != "" {
			ctx.Title = trip + " " + to + " " + dest
		}
	} else if !travelWords.matches(ctx.Title) {
		ctx.Title = trip + " - " + ctx.Title
	}
	if ctx.Location == "" {
		ctx.Location = dest
	}
	if ctx.Type == model.TypeTask {
		ctx.Type = model.TypeEvent
	}
	return ctx, true
}

func findDestination(text string) string {
	for _, m := range destinationPattern.FindAllStringSubmatch(text, -1) {
		dest := m[1]
		if isLocationStop(strings.Fields(dest)[0]) {
			continue
		}
		return titleCase(dest)
	}
	return ""
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		if i > 0 && locationTrailing[strings.ToLower(w)] {
			continue
		}
		words[i] = capitalize(w)
	}
	return strings.Join(words, " ")
}

func (FamilyMealOverrideRule) Name() string { return "family_meal" }

func (FamilyMealOverrideRule) Apply(in Input) (model.DetectedContext, bool) {
	meal, ok := mealWords.find(in.Original)
	if !ok {
		return model.DetectedContext{}, false
	}
	rel, ok := findRelatives(in.Original)
	if !ok {
		return model.DetectedContext{}, false
	}

	ctx := generic(in)
	ctx.Type = model.TypeEvent
	ctx.Confidence = 1
	ctx.Category = model.CategorySocial
	ctx.SuggestedColor = colors.ForCategory(model.CategorySocial)
	// The generic pass may have fallen back to today; the date words still count.
	ctx.Date = DetectDate(in.Lower, in.Today).String()

	if ctx.Time == "" {
		if clk, ok := mealTime(in.Lower); ok {
			ctx.Time = clk.String()
		} else if coffeeWords.matches(in.Lower) {
			ctx.Time = model.Clock(16 * 60).String()
		}
	}

	if place, _ := findLocation(in.Original); place != "" {
		ctx.Location = place
	} else {
		ctx.Location = rel.house()
	}

	parts := []string{capitalize(strings.ToLower(meal)), strings.ToLower(rel.with)}
	if rel.article != "" {
		parts = append(parts, strings.ToLower(rel.article))
	}
	parts = append(parts, strings.ToLower(rel.relation), strings.ToLower(rel.prep), rel.name)
	ctx.Title = strings.Join(parts, " ")

	person := rel.person()
	found := false
	for _, p := range ctx.People {
		if p == person {
			found = true
			break
		}
	}
	if !found {
		ctx.People = append([]string{person}, ctx.People...)
	}
	return ctx, true
}

// Orchestrator is the single entry point shared by every dialog that parses
// free text. The zero value is usable.
type Orchestrator struct {
	Dialog   Dialog
	Rules    []Rule
	Language string
	// Now is injectable so relative dates can be tested.
	Now func() time.Time
}

func New(dialog Dialog) *Orchestrator {
	return &Orchestrator{Dialog: dialog, Rules: DefaultRules(), Now: time.Now}
}

// Process interprets text. The same text on the same day yields the same context.
func (o *Orchestrator) Process(text string) model.DetectedContext {
	now := time.Now
	if o.Now != nil {
		now = o.Now
	}
	rules := o.Rules
	if len(rules) == 0 {
		rules = DefaultRules()
	}

	in := NewInput(text, model.DateOf(now()))
	in.Language = o.Language
	var ctx model.DetectedContext
	for _, r := range rules {
		if c, ok := r.Apply(in); ok {
			ctx = c
			ctx.Rule = r.Name()
			break
		}
	}

	if ctx.Title == "" {
		ctx.Title = capitalize(strings.TrimSpace(text))
	}
	if ctx.Date == "" {
		ctx.Date = in.Today.String()
	}
	if ctx.Type == "" {
		ctx.Type = model.TypeTask
	}
	if ctx.Frequency == "" {
		ctx.Frequency = model.FrequencyOnce
	}
	if ctx.People == nil {
		ctx.People = []string{}
	}
	if o.Dialog == DialogHabit {
		applyHabitDialog(&ctx)
	}
	return ctx
}

// applyHabitDialog maps the detected recurrence onto the habit priority,
// which is what decides on which days a habit shows up.
func applyHabitDialog(ctx *model.DetectedContext) {
	ctx.Type = model.TypeHabit
	switch ctx.Frequency {
	case model.FrequencyWeekly:
		ctx.Priority = model.PriorityMedium
	case model.FrequencyMonthly:
		ctx.Priority = model.PriorityLow
	default:
		ctx.Priority = model.PriorityHigh
	}
}
