package verify

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/goldencrust/interview-agent/internal/contract"
)

// The unit tokens end the pattern without a trailing boundary: Go's \b is
// ASCII-only and never fires after an Arabic letter.
var (
	experiencePattern = regexp.MustCompile(`(\d+)\s*(سنة|سنوات|سنين|year|years)`)
	salaryPattern     = regexp.MustCompile(`(\d+)\s*(دينار|JOD|جنيه)`)
)

// salaryTolerance is how far a spoken salary may drift from the contract
// before it counts as a hallucination, in dinars. Small rounding in speech
// ("around 400") is not worth correcting.
const salaryTolerance = 100

// Result is the outcome of verifying one utterance.
type Result struct {
	Valid bool
	// Error describes the detected hallucination; empty when Valid.
	Error string
	// Corrected is the utterance with the hallucinated value replaced by the
	// contract's true value; empty when Valid.
	Corrected string
}

// Verifier checks generated utterances against the session contract and
// corrects numeric hallucinations before they reach speech synthesis. It is
// a deterministic guardrail, not an NLP component: it trades recall for
// precision, since an uncaught hallucination is worse than an occasional
// false negative.
type Verifier struct {
	contract *contract.Contract
}

// NewVerifier creates a verifier bound to one session's contract.
func NewVerifier(ct *contract.Contract) *Verifier {
	return &Verifier{contract: ct}
}

// Verify scans the utterance for numbers followed by a duration or currency
// unit and compares them against the contract. Only the first violation is
// reported per call; callers re-invoke if multiple independent violations
// might exist. Utterances with no mismatch come back untouched.
func (v *Verifier) Verify(utterance string) Result {
	for _, m := range experiencePattern.FindAllStringSubmatchIndex(utterance, -1) {
		// m[2]:m[3] is the number group span.
		n, err := strconv.Atoi(utterance[m[2]:m[3]])
		if err != nil {
			continue
		}
		// Plausible years-of-experience range; avoids false positives on
		// addresses, dates and phone fragments.
		if n <= 0 || n >= 50 {
			continue
		}
		if n != v.contract.YearsOfExperience() {
			return Result{
				Valid: false,
				Error: fmt.Sprintf("hallucination: stated %d years, contract says %d", n, v.contract.YearsOfExperience()),
				Corrected: utterance[:m[2]] +
					strconv.Itoa(v.contract.YearsOfExperience()) +
					utterance[m[3]:],
			}
		}
	}

	for _, m := range salaryPattern.FindAllStringSubmatchIndex(utterance, -1) {
		amount, err := strconv.Atoi(utterance[m[2]:m[3]])
		if err != nil {
			continue
		}
		diff := amount - v.contract.ExpectedSalary()
		if diff < 0 {
			diff = -diff
		}
		if diff > salaryTolerance {
			return Result{
				Valid: false,
				Error: fmt.Sprintf("hallucination: stated salary %d, contract says %d", amount, v.contract.ExpectedSalary()),
				Corrected: utterance[:m[2]] +
					strconv.Itoa(v.contract.ExpectedSalary()) +
					utterance[m[3]:],
			}
		}
	}

	return Result{Valid: true}
}
