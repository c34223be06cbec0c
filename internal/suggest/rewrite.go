package suggest

import (
	"regexp"
	"strings"
	"unicode"
)

// replacement pairs a biased phrase or word with its neutral alternative.
type replacement struct {
	From string
	To   string
}

// phraseReplacements run before word replacements so multi-word idioms
// win over their component words. Order is significant.
var phraseReplacements = []replacement{
	// Environment and culture
	{"fast-paced environment", "dynamic work environment"},
	{"high-pressure environment", "results-focused environment"},
	{"competitive environment", "performance-oriented environment"},
	{"demanding environment", "challenging and supportive environment"},
	{"aggressive environment", "proactive work environment"},
	{"cut-throat environment", "performance-driven environment"},
	{"dog-eat-dog environment", "merit-based environment"},
	{"survival of the fittest", "performance excellence"},
	{"winner takes all", "merit-based success"},
	{"top-tier environment", "excellence-focused environment"},
	// Role and responsibility
	{"individual contributor", "independent professional"},
	{"self-starter required", "motivated professional needed"},
	{"must be self-motivated", "should be proactive"},
	{"work independently", "work autonomously with team support"},
	{"solo contributor", "independent team member"},
	{"one-person operation", "independent role with collaboration"},
	{"single-handedly manage", "take ownership while collaborating"},
	{"own the project", "lead the project"},
	{"take charge of", "coordinate and manage"},
	{"command the team", "lead the team"},
	// Performance and achievement
	{"crush the competition", "outperform competitors"},
	{"beat the competition", "exceed market standards"},
	{"dominate the market", "lead in the market"},
	{"destroy the competition", "surpass competitors"},
	{"smash targets", "exceed targets"},
	{"blow away expectations", "surpass expectations"},
	{"hit it out of the park", "achieve outstanding results"},
	{"slam dunk opportunity", "excellent opportunity"},
	{"home run performance", "outstanding performance"},
	// Action and violence metaphors
	{"attack the problem", "address the challenge"},
	{"tackle the issue", "resolve the issue"},
	{"fight for results", "work diligently for results"},
	{"battle-tested experience", "proven experience"},
	{"war room strategy", "strategic planning session"},
	{"frontline experience", "hands-on experience"},
	{"in the trenches", "in operational roles"},
	{"combat ready", "fully prepared"},
	{"fire on all cylinders", "perform at full capacity"},
	{"full steam ahead", "move forward decisively"},
	{"go for the kill", "pursue success"},
	{"take no prisoners", "maintain high standards"},
	// Leadership and authority
	{"take control", "take leadership"},
	{"seize control", "assume leadership"},
	{"assert dominance", "demonstrate leadership"},
	{"establish dominance", "establish leadership"},
	{"rule the market", "lead the market"},
	{"master the domain", "excel in the field"},
	{"own the space", "lead in the sector"},
	{"call the shots", "make key decisions"},
	{"run the show", "manage operations"},
	{"boss the project", "lead the project"},
	// Business jargon
	{"think outside the box", "approach creatively"},
	{"move the needle", "drive meaningful change"},
	{"low-hanging fruit", "immediate opportunities"},
	{"dive deep", "analyze thoroughly"},
	{"drill down", "examine in detail"},
	{"when push comes to shove", "when necessary"},
	// Tech-specific hype
	{"analytics ninja", "analytics professional"},
	{"data wizard", "data specialist"},
	{"algorithm guru", "algorithm expert"},
	{"machine learning rockstar", "machine learning expert"},
	{"coding warrior", "skilled developer"},
	{"tech guru", "technology expert"},
	{"innovation champion", "innovation leader"},
	// Sales
	{"killer instinct", "strong business acumen"},
	{"hunter mentality", "proactive sales approach"},
	{"lock and load", "prepare for action"},
}

// wordReplacements apply after phrase replacements, token by token.
var wordReplacements = map[string]string{
	// Core professional terms
	"competitive": "results-focused", "aggressive": "proactive", "dominate": "excel in",
	"driven": "motivated", "ambitious": "goal-oriented", "strong": "effective",
	"challenging": "engaging", "demanding": "comprehensive", "control": "guide",
	"high-pressure": "dynamic", "fast-paced": "efficient", "results-driven": "results-oriented",
	"dominant": "leading", "superior": "excellent",
	// Leadership and authority
	"command": "lead", "conquer": "succeed in", "rule": "guide", "govern": "oversee",
	"boss": "lead", "master": "expert in", "supreme": "excellent",
	"ultimate": "optimal", "premier": "leading", "elite": "skilled",
	"world-class": "outstanding", "best-in-class": "leading",
	// Competitive language
	"beat": "surpass", "crush": "excel against", "destroy": "outperform",
	"demolish": "significantly exceed", "defeat": "outperform",
	"outclass": "excel beyond", "triumph": "succeed",
	"victory": "success", "winner": "successful candidate", "champion": "leader",
	// Action and violence metaphors
	"attack": "address", "strike": "implement", "fight": "work diligently",
	"battle": "work on", "war": "intensive effort", "combat": "address",
	"warrior": "dedicated professional", "tactical": "strategic",
	"offensive": "proactive", "forceful": "decisive",
	"explosive": "dynamic", "powerful": "effective",
	"intense": "focused", "hardcore": "dedicated", "brutal": "intensive",
	// Innovation hype
	"disruptive": "innovative", "revolutionary": "transformational",
	"groundbreaking": "innovative", "cutting-edge": "advanced",
	"game-changing": "transformational", "visionary": "forward-thinking",
	// Performance slang
	"killer": "excellent", "ninja": "expert", "guru": "specialist",
	"wizard": "expert", "rockstar": "outstanding professional",
	"superhero": "exceptional professional",
	// Intensity
	"fierce": "dedicated", "ruthless": "focused", "relentless": "persistent",
	"unstoppable": "determined", "rock-solid": "dependable",
	// Authority and control
	"dictate": "determine", "enforce": "implement", "demand": "require",
	"compel": "encourage", "pressure": "encourage", "push": "motivate",
	"drive": "guide",
}

// Change records one substitution a rewrite performed.
type Change struct {
	From string `json:"from"`
	To   string `json:"to"`
}

var phrasePatterns = buildPhrasePatterns()

func buildPhrasePatterns() []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(phraseReplacements))
	for i, r := range phraseReplacements {
		out[i] = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(r.From))
	}
	return out
}

// Rewrite substitutes neutral alternatives for biased phrases and words,
// preserving title and upper case and surrounding punctuation. The change
// list is deduplicated in first-seen order.
func Rewrite(text string) (string, []Change) {
	var changes []Change
	seen := make(map[Change]bool)
	record := func(c Change) {
		if !seen[c] {
			seen[c] = true
			changes = append(changes, c)
		}
	}

	// Phrases first so idioms win over their component words.
	lower := strings.ToLower(text)
	for i, r := range phraseReplacements {
		if strings.Contains(lower, r.From) {
			text = phrasePatterns[i].ReplaceAllString(text, r.To)
			lower = strings.ToLower(text)
			record(Change{From: r.From, To: r.To})
		}
	}

	words := strings.Fields(text)
	for i, w := range words {
		prefix, core, suffix := splitPunct(w)
		repl, ok := wordReplacements[strings.ToLower(core)]
		if !ok {
			continue
		}
		switch {
		case isTitle(core):
			repl = titleCase(repl)
		case isUpper(core):
			repl = strings.ToUpper(repl)
		}
		words[i] = prefix + repl + suffix
		record(Change{From: strings.ToLower(core), To: wordReplacements[strings.ToLower(core)]})
	}

	return strings.Join(words, " "), changes
}

// splitPunct separates leading and trailing punctuation from a token.
func splitPunct(w string) (prefix, core, suffix string) {
	start, end := 0, len(w)
	for start < end && !isWordByte(w[start]) {
		start++
	}
	for end > start && !isWordByte(w[end-1]) {
		end--
	}
	return w[:start], w[start:end], w[end:]
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '-'
}

func isTitle(s string) bool {
	if s == "" {
		return false
	}
	r := rune(s[0])
	if !unicode.IsUpper(r) {
		return false
	}
	for _, c := range s[1:] {
		if unicode.IsUpper(c) {
			return false
		}
	}
	return true
}

func isUpper(s string) bool {
	if s == "" {
		return false
	}
	hasLetter := false
	for _, c := range s {
		if unicode.IsLetter(c) {
			hasLetter = true
			if !unicode.IsUpper(c) {
				return false
			}
		}
	}
	return hasLetter && len(s) > 1
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
