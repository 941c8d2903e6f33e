package stream

import (
	"strings"

	"github.com/rs/zerolog/log"
)

type state int

const (
	stateMain state = iota
	stateAlerts
)

func (s state) String() string {
	if s == stateAlerts {
		return "alerts"
	}
	return "main"
}

// Accumulator splits a chunk sequence into analysis text and medication
// alerts. Two signals route chunks: the explicit medication_alert type and
// the sentinel separators. Either one alone is enough to keep alerts out of
// the analysis text.
//
// An Accumulator is not safe for concurrent use; build one per request.
type Accumulator struct {
	state    state
	analysis strings.Builder
	alerts   []string
}

// NewAccumulator returns an accumulator in the main-text state.
func NewAccumulator() *Accumulator {
	return &Accumulator{state: stateMain}
}

// Feed applies one chunk.
func (a *Accumulator) Feed(c Chunk) {
	if c.Content == "" {
		return
	}

	switch c.Type {
	case TypeSeparator:
		switch {
		case strings.Contains(c.Content, AlertStart):
			a.transition(stateAlerts)
		case strings.Contains(c.Content, AlertEnd):
			a.transition(stateMain)
		}
	case TypeMedicationAlert:
		a.alerts = append(a.alerts, c.Content)
	default:
		if a.state == stateMain {
			a.analysis.WriteString(c.Content)
		}
	}
}

func (a *Accumulator) transition(to state) {
	if a.state == to {
		return
	}
	log.Debug().Stringer("from", a.state).Stringer("to", to).Msg("medication alert section transition")
	a.state = to
}

// InAlertSection reports whether the accumulator is between sentinels.
func (a *Accumulator) InAlertSection() bool {
	return a.state == stateAlerts
}

// Transcript returns the text and alerts accumulated so far.
func (a *Accumulator) Transcript() Transcript {
	t := Transcript{Analysis: a.analysis.String()}
	if len(a.alerts) > 0 {
		t.Alerts = append([]string(nil), a.alerts...)
	}
	return t
}
