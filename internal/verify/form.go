package verify

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/goldencrust/interview-agent/internal/model"
)

var digitsPattern = regexp.MustCompile(`\d+`)

// Phrases in a candidate answer that contradict a form claiming experience.
var experienceDenialPhrases = []string{
	"أول مرة",
	"ما عندي خبرة",
	"مبتدئ",
	"بدون خبرة",
}

// Phrases that contradict a form claiming the candidate can start immediately.
var startDelayPhrases = []string{
	"محتاج وقت",
	"أسبوع",
	"شهر",
	"إجازة",
}

// FormDetector compares spoken answers against the candidate's registration
// form and reports contradictions. Unlike the fact verifier, it inspects
// candidate speech, not generated text, and it never corrects anything: a
// contradiction is evidence for credibility scoring, not an error.
type FormDetector struct {
	form *model.RegistrationForm
}

// NewFormDetector creates a detector over one candidate's registration form.
// A nil form disables detection.
func NewFormDetector(form *model.RegistrationForm) *FormDetector {
	return &FormDetector{form: form}
}

// Detect inspects a single candidate utterance and returns the first
// contradiction with the form, or nil. The turn index is recorded on the
// returned record.
func (d *FormDetector) Detect(utterance string, turn int) *model.Inconsistency {
	if d.form == nil || utterance == "" {
		return nil
	}

	if inc := d.detectExperienceDenial(utterance); inc != nil {
		inc.Turn = turn
		inc.Timestamp = time.Now().UTC()
		return inc
	}
	if inc := d.detectSalaryJump(utterance); inc != nil {
		inc.Turn = turn
		inc.Timestamp = time.Now().UTC()
		return inc
	}
	if inc := d.detectStartDelay(utterance); inc != nil {
		inc.Turn = turn
		inc.Timestamp = time.Now().UTC()
		return inc
	}
	return nil
}

func (d *FormDetector) detectExperienceDenial(utterance string) *model.Inconsistency {
	if !digitsPattern.MatchString(d.form.YearsOfExperience) {
		return nil
	}
	for _, phrase := range experienceDenialPhrases {
		if strings.Contains(utterance, phrase) {
			return &model.Inconsistency{
				Type:           model.InconsistencyExperienceMismatch,
				FormValue:      d.form.YearsOfExperience,
				InterviewValue: utterance,
				Severity:       model.SeverityHigh,
				Description:    "تناقض في سنوات الخبرة",
			}
		}
	}
	return nil
}

func (d *FormDetector) detectSalaryJump(utterance string) *model.Inconsistency {
	formDigits := digitsPattern.FindString(d.form.ExpectedSalary)
	spokenDigits := digitsPattern.FindString(utterance)
	if formDigits == "" || spokenDigits == "" {
		return nil
	}
	formSalary, err := strconv.Atoi(formDigits)
	if err != nil || formSalary == 0 {
		return nil
	}
	spokenSalary, err := strconv.Atoi(spokenDigits)
	if err != nil {
		return nil
	}
	// Asking for 50%+ more than the form is a credibility signal.
	if float64(spokenSalary) > float64(formSalary)*1.5 {
		return &model.Inconsistency{
			Type:           model.InconsistencySalaryMismatch,
			FormValue:      d.form.ExpectedSalary,
			InterviewValue: utterance,
			Severity:       model.SeverityMedium,
			Description:    "تناقض كبير في توقعات الراتب",
		}
	}
	return nil
}

func (d *FormDetector) detectStartDelay(utterance string) *model.Inconsistency {
	form := d.form.CanStartImmediately
	if !strings.Contains(form, "نعم") && !strings.Contains(form, "فوراً") {
		return nil
	}
	for _, phrase := range startDelayPhrases {
		if strings.Contains(utterance, phrase) {
			return &model.Inconsistency{
				Type:           model.InconsistencyStartDateMismatch,
				FormValue:      form,
				InterviewValue: utterance,
				Severity:       model.SeverityMedium,
				Description:    "تناقض في إمكانية البدء الفوري",
			}
		}
	}
	return nil
}
