package assistant

import (
	"regexp"
	"strings"
	"time"
)

// Intent is the classified purpose of a question. It selects the retrieval
// strategy: every intent except IntentGeneric maps to an exact structured
// query; IntentGeneric takes the semantic path.
type Intent string

const (
	IntentAllTasks       Intent = "all_tasks"
	IntentPendingTasks   Intent = "pending_tasks"
	IntentCompletedTasks Intent = "completed_tasks"
	IntentAllNotes       Intent = "all_notes"
	IntentNoteByTitle    Intent = "note_by_title"
	IntentTasksByDate    Intent = "tasks_by_date"
	IntentGeneric        Intent = "generic"
)

// intentRule pairs a predicate with the intent it selects.
type intentRule struct {
	matches func(raw, lower string) bool
	intent  Intent
}

var (
	allTasksRe       = regexp.MustCompile(`all (my )?tasks|task list|list my tasks`)
	pendingTasksRe   = regexp.MustCompile(`pending tasks?|undone|not done`)
	completedTasksRe = regexp.MustCompile(`(completed|finished|done) tasks?`)
	allNotesRe       = regexp.MustCompile(`all (my )?notes|list notes`)
	taskWordRe       = regexp.MustCompile(`task|todo`)
)

// intentRules is the classification order. The first matching predicate
// wins; order is part of the contract (a question mentioning both "all my
// tasks" and a date is still all_tasks).
var intentRules = []intentRule{
	{func(_, lower string) bool { return allTasksRe.MatchString(lower) }, IntentAllTasks},
	{func(_, lower string) bool { return pendingTasksRe.MatchString(lower) }, IntentPendingTasks},
	{func(_, lower string) bool { return completedTasksRe.MatchString(lower) }, IntentCompletedTasks},
	{func(_, lower string) bool { return allNotesRe.MatchString(lower) }, IntentAllNotes},
	{func(raw, _ string) bool { _, ok := ExtractTitle(raw); return ok }, IntentNoteByTitle},
	{func(raw, lower string) bool {
		_, ok := ExtractDate(raw)
		return ok && taskWordRe.MatchString(lower)
	}, IntentTasksByDate},
}

// Classify maps a raw question to an intent. Phrase rules run against the
// lower-cased question; extractor rules see the raw text.
func Classify(question string) Intent {
	lower := strings.ToLower(question)
	for _, rule := range intentRules {
		if rule.matches(question, lower) {
			return rule.intent
		}
	}
	return IntentGeneric
}

// dateRe matches day[sep]month[sep]year with 1-2 digit day/month and a
// 4-digit year, separated by -, /, . or space.
var dateRe = regexp.MustCompile(`(\d{1,2})[/\-. ](\d{1,2})[/\-. ](\d{4})`)

// ExtractDate finds the first date-shaped substring of the question and
// converts it to a calendar date in local time. Numeric combinations that
// are not real calendar dates (day 31 of a 30-day month) fail extraction.
// Additional date-shaped substrings are ignored.
func ExtractDate(question string) (time.Time, bool) {
	m := dateRe.FindStringSubmatch(question)
	if m == nil {
		return time.Time{}, false
	}

	day := atoi(m[1])
	month := atoi(m[2])
	year := atoi(m[3])

	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}

	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.Local)
	// time.Date normalizes overflow (Feb 31 -> Mar 3); reject anything
	// that did not survive the round trip.
	if d.Year() != year || d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

var (
	// quotedTitleRe captures a quoted phrase following the word "note",
	// accepting straight and curly quotes.
	quotedTitleRe = regexp.MustCompile(`(?i)note[^"“]*["“](.+?)["”]`)

	// titledRe captures the free text after "note titled".
	titledRe = regexp.MustCompile(`(?i)note titled\s+(.+)`)
)

// ExtractTitle pulls a note title out of the question: first a quoted
// phrase after the word "note", then the text following "note titled".
func ExtractTitle(question string) (string, bool) {
	if m := quotedTitleRe.FindStringSubmatch(question); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title, true
		}
	}
	if m := titledRe.FindStringSubmatch(question); m != nil {
		if title := strings.TrimSpace(m[1]); title != "" {
			return title, true
		}
	}
	return "", false
}

// atoi parses digits already validated by the regexp.
func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}
	return n
}
