// Package evaluation runs the form-reactive scoring loop: every answer
// change recomputes the form's results, and nothing is stored as a visit
// until the session is saved.
package evaluation

import (
	"reflect"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/assessment"
	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Session is an in-progress form. Results only ever grow: a recompute
// overlays new values and leaves the rest untouched.
type Session struct {
	ID        string             `json:"id"`
	Form      assessment.FormID  `json:"form"`
	Answers   scoring.Answers    `json:"answers"`
	Results   assessment.Results `json:"results"`
	Revision  int                `json:"revision"`
	UpdatedAt time.Time          `json:"updated_at"`
}

// NewSession starts an empty session for a form.
func NewSession(form assessment.FormID) *Session {
	return &Session{
		ID:        string(common.NewID()),
		Form:      form,
		Answers:   scoring.Answers{},
		Results:   assessment.Results{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Apply merges answer changes into the session. A nil value removes the
// answer. It reports whether the form's results were recomputed, which
// happens only when a scoring input changed.
func (s *Session) Apply(changes scoring.Answers) bool {
	before := s.Answers
	after := before.Clone()
	for k, v := range changes {
		if v == nil {
			delete(after, k)
			continue
		}
		after[k] = v
	}
	s.Answers = after
	s.Revision++
	s.UpdatedAt = time.Now().UTC()

	if !inputsChanged(assessment.Inputs(s.Form), before, after) {
		return false
	}
	s.Results = s.Results.Merge(assessment.Dispatch(s.Form, after))
	return true
}

func inputsChanged(keys []string, before, after scoring.Answers) bool {
	for _, k := range keys {
		bv, bok := before[k]
		av, aok := after[k]
		if bok != aok || !reflect.DeepEqual(bv, av) {
			return true
		}
	}
	return false
}
