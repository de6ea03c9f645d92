package dialogue

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/iliyamo/cinema-ticket-assistant/internal/model"
	"github.com/iliyamo/cinema-ticket-assistant/internal/seatmap"
)

// The resolvers are pure, deterministic text-matching functions tuned
// for Indonesian input mixed with English titles.  They never hold
// state: candidates always come from the caller.

var dayAliases = map[string][]string{
	"monday":    {"senin", "monday"},
	"tuesday":   {"selasa", "tuesday"},
	"wednesday": {"rabu", "rabo", "wednesday"},
	"thursday":  {"kamis", "kemis", "thursday"},
	"friday":    {"jumat", "jum'at", "friday"},
	"saturday":  {"sabtu", "saterday", "saturday"},
	"sunday":    {"minggu", "ahad", "sunday"},
}

var monthAliases = map[string][]string{
	"january":   {"januari", "jan", "january"},
	"february":  {"februari", "feb", "february"},
	"march":     {"maret", "mar", "march"},
	"april":     {"april", "apr"},
	"may":       {"mei", "may"},
	"june":      {"juni", "jun", "june"},
	"july":      {"juli", "jul", "july"},
	"august":    {"agustus", "agust", "august", "aug"},
	"september": {"september", "sept", "sep"},
	"october":   {"oktober", "okt", "october", "oct"},
	"november":  {"november", "nov"},
	"december":  {"desember", "des", "december", "dec"},
}

// ordinalWords maps Indonesian ordinals to zero-based positions.  The
// slice keeps a fixed evaluation order so a text containing several
// ordinals always resolves the same way.
var ordinalWords = []struct {
	word  string
	index int
}{
	{"pertama", 0},
	{"kesatu", 0},
	{"kedua", 1},
	{"keduanya", 1},
	{"ketiga", 2},
	{"keempat", 3},
	{"kelima", 4},
	{"keenam", 5},
	{"ketujuh", 6},
}

var yesWords = map[string]struct{}{
	"ya": {}, "iyah": {}, "iya": {}, "yes": {}, "ok": {}, "oke": {}, "sip": {}, "lanjut": {}, "gas": {},
}

var noWords = map[string]struct{}{
	"tidak": {}, "gak": {}, "ga": {}, "enggak": {}, "no": {}, "ntar": {}, "nanti": {}, "belum": {},
}

var stopwords = map[string]struct{}{
	"the": {}, "film": {}, "movie": {}, "saya": {}, "aku": {}, "mau": {}, "dong": {}, "lah": {}, "yang": {}, "itu": {}, "ini": {},
}

var (
	wordRe     = regexp.MustCompile(`[a-z0-9]+`)
	bareNumRe  = regexp.MustCompile(`\b\d+\b`)
	smallNumRe = regexp.MustCompile(`\b\d{1,4}\b`)
	seatCodeRe = regexp.MustCompile(`[A-Za-z][0-9]{1,2}`)
	idHintRe   = regexp.MustCompile(`(?:id|jadwal)\s*(\d+)`)
	spaceRe    = regexp.MustCompile(`\s+`)
)

// tokenize splits lower-cased text into alphanumeric tokens longer
// than minLen that are not stopwords.
func tokenize(lower string, minLen int) []string {
	var out []string
	for _, tok := range wordRe.FindAllString(lower, -1) {
		if len(tok) <= minLen {
			continue
		}
		if _, stop := stopwords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

// MatchMovie resolves free text against a candidate list.  A bare
// number is read as a 1-based ordinal into the list; otherwise titles
// are scored by token overlap and the best candidate wins when its
// score reaches the acceptance threshold.  Ties keep the first
// candidate in input order.  A zero id means no resolution.
func MatchMovie(text string, candidates []model.Movie) (int64, string) {
	if text == "" || len(candidates) == 0 {
		return 0, ""
	}
	lower := strings.ToLower(text)

	if digits := bareNumRe.FindAllString(lower, -1); len(digits) > 0 {
		if idx, err := strconv.Atoi(digits[0]); err == nil && idx >= 1 && idx <= len(candidates) {
			m := candidates[idx-1]
			return m.ID, m.Title
		}
	}

	textTokens := make(map[string]struct{})
	for _, tok := range tokenize(lower, 1) {
		textTokens[tok] = struct{}{}
	}

	var best *model.Movie
	bestScore := 0
	for i := range candidates {
		title := strings.TrimSpace(candidates[i].Title)
		if title == "" {
			continue
		}
		normalized := strings.ToLower(spaceRe.ReplaceAllString(title, " "))

		var score int
		if strings.Contains(lower, normalized) {
			score = 100
		} else {
			titleTokens := tokenize(normalized, 1)
			if len(titleTokens) == 0 {
				continue
			}
			matches, longest := 0, 0
			for _, tok := range titleTokens {
				if _, ok := textTokens[tok]; ok {
					matches++
					if len(tok) > longest {
						longest = len(tok)
					}
				}
			}
			score = matches*10 + longest
			leading := strings.SplitN(normalized, " ", 2)[0]
			if leading == "the" || leading == "a" || leading == "an" {
				score += matches
			}
			if matches == len(titleTokens) {
				score += 15
			}
			if matches == 1 && len(titleTokens) > 2 {
				score -= 5
			}
		}

		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}

	if best != nil && bestScore >= 15 {
		return best.ID, best.Title
	}
	return 0, ""
}

// MatchShowtime resolves free text against a list of candidate
// showtimes.  In priority order it tries an explicit "id NNN"/"jadwal
// NNN" reference, an ordinal word, a bare small integer matched
// against candidate ids (skipped when the text carries time-separator
// punctuation), and finally weighted scoring over time-of-day, day
// period, weekday, day-of-month, explicit date and month mentions.
// A nil result means nothing matched.
func MatchShowtime(text string, shows []model.Showtime) *model.Showtime {
	if text == "" || len(shows) == 0 {
		return nil
	}
	lower := strings.ToLower(text)

	for _, m := range idHintRe.FindAllStringSubmatch(lower, -1) {
		id, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		for i := range shows {
			if shows[i].ID == id {
				return &shows[i]
			}
		}
	}

	for _, ord := range ordinalWords {
		if strings.Contains(lower, ord.word) && ord.index < len(shows) {
			return &shows[ord.index]
		}
	}

	if !strings.ContainsAny(lower, ":.") {
		for _, num := range smallNumRe.FindAllString(lower, -1) {
			if num == "24" {
				continue
			}
			id, err := strconv.ParseInt(num, 10, 64)
			if err != nil {
				continue
			}
			for i := range shows {
				if shows[i].ID == id {
					return &shows[i]
				}
			}
		}
	}

	var best *model.Showtime
	bestScore := 0
	for i := range shows {
		if score := scoreShowtime(lower, shows[i]); score > bestScore {
			bestScore = score
			best = &shows[i]
		}
	}
	return best
}

func scoreShowtime(lower string, show model.Showtime) int {
	dt := show.Time
	hour := dt.Hour()
	score := 0

	hm := dt.Format("15:04")
	hmAlt := dt.Format("15.04")
	switch {
	case strings.Contains(lower, hm) || strings.Contains(lower, hmAlt):
		score += 5
	case hourMentioned(lower, hour):
		score += 2
	}

	if strings.Contains(lower, "malam") && hour >= 18 && hour <= 23 {
		score++
	}
	if strings.Contains(lower, "siang") && hour >= 12 && hour < 18 {
		score++
	}
	if strings.Contains(lower, "pagi") && hour < 12 {
		score++
	}

	weekday := strings.ToLower(dt.Weekday().String())
	for _, alias := range aliasesFor(dayAliases, weekday) {
		if strings.Contains(lower, alias) {
			score += 3
			break
		}
	}

	day := strconv.Itoa(dt.Day())
	if containsWord(lower, day) {
		score += 2
	}
	if strings.Contains(lower, dt.Format("02/01")) {
		score += 3
	}
	if strings.Contains(lower, dt.Format("02-01")) {
		score += 3
	}

	month := strings.ToLower(dt.Month().String())
	for _, alias := range aliasesFor(monthAliases, month) {
		if strings.Contains(lower, alias) {
			score += 2
			break
		}
	}
	return score
}

// hourMentioned reports whether the text names the showtime's hour as
// a standalone number, either in 24-hour form or, for afternoon and
// evening slots, in the colloquial 12-hour form ("jam 9 malam" for a
// 21:00 screening).
func hourMentioned(lower string, hour int) bool {
	if containsWord(lower, strconv.Itoa(hour)) {
		return true
	}
	if hour > 12 && containsWord(lower, strconv.Itoa(hour-12)) {
		return true
	}
	return false
}

func containsWord(lower, word string) bool {
	re, err := regexp.Compile(`\b` + regexp.QuoteMeta(word) + `\b`)
	if err != nil {
		return false
	}
	return re.MatchString(lower)
}

func aliasesFor(table map[string][]string, key string) []string {
	if aliases, ok := table[key]; ok {
		return aliases
	}
	return []string{key}
}

// Confirmation is the tri-state result of DetectConfirmation.
type Confirmation int

const (
	ConfirmUnknown Confirmation = iota
	ConfirmYes
	ConfirmNo
)

// DetectConfirmation classifies a reply to the confirmation question.
// Only exact membership in the fixed affirmative/negative word sets
// counts; anything else is unknown and triggers a re-ask.
func DetectConfirmation(text string) Confirmation {
	lowered := strings.ToLower(strings.TrimSpace(text))
	if _, ok := yesWords[lowered]; ok {
		return ConfirmYes
	}
	if _, ok := noWords[lowered]; ok {
		return ConfirmNo
	}
	return ConfirmUnknown
}

// ExtractSeats pulls valid seat codes out of free text, preserving the
// order of first appearance.  Tokens that do not name a seat in the
// static layout are dropped.
func ExtractSeats(text string) []string {
	var seats []string
	for _, tok := range seatCodeRe.FindAllString(strings.ToUpper(text), -1) {
		if seatmap.IsValid(tok) {
			seats = append(seats, tok)
		}
	}
	return seats
}
