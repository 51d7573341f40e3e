// Package stage models the interview protocol: a small, closed set of phases
// with question-count thresholds, plus the registry of roles the interview
// can be conducted for.
package stage

import (
	"fmt"
	"strings"
)

// Stage is one phase of the interview protocol.
type Stage string

const (
	Opening          Stage = "opening"
	ExperienceProbe  Stage = "experience_probe"
	CredibilityCheck Stage = "credibility_check"
	Closing          Stage = "closing"
)

// Definition describes one stage: its Arabic display name, the goal steering
// generation, how many questions must be asked before advancing, and the
// successor stage.
type Definition struct {
	Name         string
	Goal         string
	MinQuestions int
	// Next is empty for the terminal stage.
	Next Stage
}

var definitions = map[Stage]Definition{
	Opening: {
		Name:         "الترحيب",
		Goal:         "Welcome candidate and confirm their application details",
		MinQuestions: 1,
		Next:         ExperienceProbe,
	},
	ExperienceProbe: {
		Name:         "استكشاف الخبرة",
		Goal:         "Deep dive into their experience claims",
		MinQuestions: 3,
		Next:         CredibilityCheck,
	},
	CredibilityCheck: {
		Name:         "فحص المصداقية",
		Goal:         "Verify consistency of answers",
		MinQuestions: 2,
		Next:         Closing,
	},
	Closing: {
		Name:         "الاختتام",
		Goal:         "Wrap up and set expectations",
		MinQuestions: 1,
	},
}

// Definition returns the stage's definition. Unknown stages return the zero
// value; callers only hold Stage values produced by this package.
func (s Stage) Definition() Definition {
	return definitions[s]
}

// Valid reports whether s is one of the defined stages.
func (s Stage) Valid() bool {
	_, ok := definitions[s]
	return ok
}

// Terminal reports whether the stage has no successor.
func (s Stage) Terminal() bool {
	return definitions[s].Next == ""
}

// QuestionID builds a stage-tagged question identifier for the nth question
// of the session, e.g. "experience_probe_q4". The tag records which stage a
// question belonged to at the moment it was asked.
func QuestionID(s Stage, n int) string {
	return fmt.Sprintf("%s_q%d", s, n)
}

// Advance applies the transition rule: if the number of asked questions
// tagged with the current stage meets the stage's threshold, the successor is
// returned; otherwise the current stage is. Transitions are monotonic; there
// is no way back and the terminal stage absorbs.
func Advance(current Stage, askedQuestionIDs []string) Stage {
	def, ok := definitions[current]
	if !ok || def.Next == "" {
		return current
	}

	count := 0
	for _, id := range askedQuestionIDs {
		if strings.HasPrefix(id, string(current)+"_") {
			count++
		}
	}
	if count >= def.MinQuestions {
		return def.Next
	}
	return current
}
