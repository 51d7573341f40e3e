// Package persona keeps generated utterances in character: Jordanian Arabic
// only, no English leakage, and the colloquial register the Sarah persona is
// prompted for.
package persona

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/pemistahl/lingua-go"
	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"
)

// englishPatterns catch common English function words, interview vocabulary
// and any 4+ letter Latin run. Checked before the statistical detector since
// they are cheap and unambiguous.
var englishPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(the|and|is|are|was|were|have|has|had)\b`),
	regexp.MustCompile(`(?i)\b(this|that|these|those|what|when|where|why|how)\b`),
	regexp.MustCompile(`(?i)\b(experience|salary|job|work|candidate|interview)\b`),
	regexp.MustCompile(`(?i)\b(years?|months?|days?|time|because|actually)\b`),
	regexp.MustCompile(`\b[a-zA-Z]{4,}\b`),
}

// arabicRunPattern strips Arabic script and whitespace so the statistical
// detector only sees what is left over.
var arabicRunPattern = regexp.MustCompile(`[\x{0600}-\x{06FF}\s]+`)

// msaToJordanian maps Modern Standard Arabic words and phrases to their
// Jordanian colloquial equivalents.
var msaToJordanian = map[string]string{
	"ماذا":     "شو",
	"لماذا":    "ليش",
	"أين":      "وين",
	"كيف حالك": "كيفك",
	"متى":      "إيمتى",
	"سوف":      "راح",
	"سأقوم":    "راح",
	"أريد":     "بدي",
	"أنت":      "انت",
	"لديك":     "عندك",
	"هل لديك":  "عندك",
	"ذلك":      "هاد",
	"هذا":      "هاد",
	"جيد":      "منيح",
	"ممتاز":    "كتير منيح",
}

// jordanianMarkers are tokens whose presence signals the dialect landed.
var jordanianMarkers = []string{
	"شو", "ليش", "وين", "كيفك", "راح", "عم", "بدي",
	"هيك", "منيح", "كتير", "شوي", "هسا", "بعدين",
	"يعني", "انت", "عندك", "حكيلي", "شفت", "انك",
}

// msaOrdered is the substitution table ordered longest-first, so a phrase
// like "كيف حالك" rewrites before "كيف"-prefixed partial overlaps.
var msaOrdered = func() []string {
	keys := make([]string, 0, len(msaToJordanian))
	for k := range msaToJordanian {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) > len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}()

// Result is the outcome of enforcing the persona on one utterance.
type Result struct {
	Valid bool
	// Error describes the violation; only set in strict mode.
	Error string
	// Text is the utterance after dialect normalization. In lenient mode this
	// is always usable, even when a violation was detected.
	Text string
}

// Enforcer validates and normalizes generated text. Strict mode rejects any
// English leakage outright; lenient mode logs it and normalizes anyway. The
// live pipeline runs lenient: blocking a turn over a borrowed word is worse
// for the candidate experience than speaking it.
type Enforcer struct {
	detector lingua.LanguageDetector
}

// NewEnforcer creates an enforcer with a statistical language detector
// restricted to the two languages the system cares about.
func NewEnforcer() *Enforcer {
	detector := lingua.NewLanguageDetectorBuilder().
		FromLanguages(lingua.Arabic, lingua.English).
		Build()
	return &Enforcer{detector: detector}
}

// Enforce checks text for English and pushes it toward Jordanian dialect.
// Always returns the normalized text; in strict mode a detection invalidates
// the result and the original text comes back uncorrected.
func (e *Enforcer) Enforce(text string, strict bool) Result {
	text = norm.NFC.String(text)

	if detected, detail := e.detectEnglish(text); detected {
		if strict {
			return Result{Valid: false, Error: detail, Text: text}
		}
		zap.L().Warn("english leakage in generated text", zap.String("detail", detail))
	}

	normalized := text
	for _, msa := range msaOrdered {
		normalized = strings.ReplaceAll(normalized, msa, msaToJordanian[msa])
	}

	if !hasJordanianMarker(normalized) {
		zap.L().Warn("weak jordanian dialect in generated text")
	}

	return Result{Valid: true, Text: normalized}
}

func (e *Enforcer) detectEnglish(text string) (bool, string) {
	for _, p := range englishPatterns {
		if m := p.FindString(text); m != "" {
			return true, fmt.Sprintf("english pattern matched: %q", m)
		}
	}

	// Statistical fallback over the non-Arabic remainder. Short leftovers
	// (emoji, punctuation, a lone borrowed term) are ignored.
	stripped := arabicRunPattern.ReplaceAllString(text, "")
	if len(stripped) > 10 {
		if lang, ok := e.detector.DetectLanguageOf(stripped); ok && lang == lingua.English {
			return true, "english detected statistically"
		}
	}

	return false, ""
}

func hasJordanianMarker(text string) bool {
	for _, marker := range jordanianMarkers {
		if strings.Contains(text, marker) {
			return true
		}
	}
	return false
}
