// Package constraint extracts named constraint queries from scanned
// statements and evaluates them against a target store.
package constraint

import (
	"fmt"

	"github.com/c360studio/semweave/rdf"
	"github.com/c360studio/semweave/scanner"
)

// Constraint is a named query whose result rows are violations.
type Constraint struct {
	ID   string `json:"id"`
	Body string `json:"body"`
}

// Result is one violation, or the failure of one constraint. Exactly one
// of Subject/Message and Error is meaningful.
type Result struct {
	ConstraintID string   `json:"constraint_id"`
	Subject      rdf.Term `json:"-"`
	Message      string   `json:"message,omitempty"`
	Error        error    `json:"-"`
}

// Failed reports whether the record is an execution failure rather than
// a violation.
func (r Result) Failed() bool { return r.Error != nil }

// String renders the record for CLI output.
func (r Result) String() string {
	if r.Error != nil {
		return fmt.Sprintf("%s: error: %v", r.ConstraintID, r.Error)
	}
	if r.Subject.IsZero() {
		return fmt.Sprintf("%s: %s", r.ConstraintID, r.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", r.ConstraintID, r.Message, r.Subject)
}

// Message returns the violation text for constraint id.
func Message(id string) string {
	return "Failed constraint " + id
}

// Extract projects the constraint statements, in document order.
func Extract(statements []scanner.Statement) []Constraint {
	var out []Constraint
	for _, st := range statements {
		if st.Kind != scanner.KindConstraint || st.Constraint == nil {
			continue
		}
		out = append(out, Constraint{ID: st.Constraint.ID, Body: st.Constraint.Body})
	}
	return out
}

// Summary counts violations and failures in a result list.
type Summary struct {
	Constraints int
	Violations  int
	Errors      int
}

// Summarize counts rs for n evaluated constraints.
func Summarize(n int, rs []Result) Summary {
	s := Summary{Constraints: n}
	for _, r := range rs {
		if r.Failed() {
			s.Errors++
		} else {
			s.Violations++
		}
	}
	return s
}

// OK reports whether no violation or failure was recorded.
func (s Summary) OK() bool { return s.Violations == 0 && s.Errors == 0 }
