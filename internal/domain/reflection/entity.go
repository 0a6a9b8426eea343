// Package reflection models a student's reflective journal entries. The
// analytics only count them.
package reflection

import (
	"context"
	"strings"
	"time"

	"github.com/turtacn/FamilyCare-Analytics/internal/domain/scoring"
	"github.com/turtacn/FamilyCare-Analytics/pkg/errors"
	"github.com/turtacn/FamilyCare-Analytics/pkg/types/common"
)

// Entry is one journal entry. Scores optionally keeps an audit copy of the
// score results discussed in the entry.
type Entry struct {
	ID        string                    `json:"id"`
	StudentID string                    `json:"student_id"`
	FamilyID  string                    `json:"family_id,omitempty"`
	Title     string                    `json:"title"`
	Body      string                    `json:"body"`
	Scores    map[string]scoring.Result `json:"scores,omitempty"`
	CreatedAt time.Time                 `json:"created_at"`
}

// NewEntry creates a journal entry.
func NewEntry(studentID, familyID, title, body string) (*Entry, error) {
	e := &Entry{
		ID:        string(common.NewID()),
		StudentID: strings.TrimSpace(studentID),
		FamilyID:  strings.TrimSpace(familyID),
		Title:     strings.TrimSpace(title),
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
	if e.StudentID == "" {
		return nil, errors.NewValidation("student id cannot be empty")
	}
	if e.Title == "" {
		return nil, errors.NewValidation("title cannot be empty")
	}
	return e, nil
}

// Repository persists journal entries.
type Repository interface {
	Save(ctx context.Context, e *Entry) error
	CountByStudentID(ctx context.Context, studentID string) (int, error)
}
