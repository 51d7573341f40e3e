package persona

import "regexp"

// redirectMessage is what the agent is told to say when the candidate keeps
// speaking English.
const redirectMessage = "خلينا نحكي عربي أحسن 😊"

var latinWordPattern = regexp.MustCompile(`\b[a-zA-Z]{3,}\b`)

// Monitor watches candidate speech for English use. It is intentionally
// permissive: a single Latin token (a brand name, a borrowed word) does not
// trigger a redirect.
type Monitor struct{}

// NewMonitor creates a candidate language monitor.
func NewMonitor() *Monitor {
	return &Monitor{}
}

// Check reports whether the candidate used English and, if so, the fixed
// Arabic redirect message to steer them back.
func (m *Monitor) Check(input string) (bool, string) {
	if len(latinWordPattern.FindAllString(input, -1)) >= 2 {
		return true, redirectMessage
	}
	return false, ""
}
