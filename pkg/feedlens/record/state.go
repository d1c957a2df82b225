package record

import (
	"fmt"
	"strings"

	"github.com/cognicore/feedlens/pkg/feedlens/internalerr"
)

// State is the curation state a reviewer assigns to a record.
type State string

const (
	StateNew        State = "New"
	StateTriaged    State = "Triaged"
	StateInProgress State = "In Progress"
	StateResolved   State = "Resolved"
	StateClosed     State = "Closed"
	StateIrrelevant State = "Irrelevant"
)

// DefaultState is assigned to freshly enriched records.
const DefaultState = StateNew

// SystemUser is recorded as the updater of machine-initialized records.
const SystemUser = "System"

// States lists every curation state in workflow order.
var States = []State{StateNew, StateTriaged, StateInProgress, StateResolved, StateClosed, StateIrrelevant}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	for _, known := range States {
		if s == known {
			return true
		}
	}
	return false
}

// ParseState matches s case-insensitively against the known states.
// Underscores and hyphens are accepted in place of spaces.
func ParseState(s string) (State, error) {
	norm := strings.NewReplacer("_", " ", "-", " ").Replace(strings.TrimSpace(s))
	for _, known := range States {
		if strings.EqualFold(norm, string(known)) {
			return known, nil
		}
	}
	return "", fmt.Errorf("%w: unknown state %q", internalerr.ErrInvalidInput, s)
}
