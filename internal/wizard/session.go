package wizard

import (
	"time"

	"github.com/google/uuid"

	"github.com/fmuoria/interview-invite-agent/internal/models"
)

// Page is a wizard state
type Page string

const (
	// PageSelection is where the recruiter picks a candidate and an interviewer
	PageSelection Page = "selection"
	// PageGeneration is where the invitation is composed, edited and sent
	PageGeneration Page = "email_generation"
)

// Session is one user's wizard state. It is a plain value: controller operations take a
// Session and return the next one.
type Session struct {
	ID                string                `json:"id"`
	Page              Page                  `json:"page"`
	Candidate         string                `json:"candidate,omitempty"`
	Interviewer       string                `json:"interviewer,omitempty"`
	CandidateEmail    string                `json:"candidate_email,omitempty"`
	CandidatePosition string                `json:"candidate_position,omitempty"`
	Date              string                `json:"date,omitempty"`
	Time              string                `json:"time,omitempty"`
	Email             *models.ComposedEmail `json:"email,omitempty"`
	LastFailure       string                `json:"last_failure,omitempty"`
	SendCount         int                   `json:"send_count"`
	LastSentAt        *time.Time            `json:"last_sent_at,omitempty"`
}

// NewSession returns a session at the selection page with a fresh id
func NewSession() Session {
	return Session{
		ID:   uuid.NewString(),
		Page: PageSelection,
	}
}

// Composed reports whether an email body is available
func (s Session) Composed() bool {
	return s.Email != nil
}

// Editable reports whether the composed email is in edit mode
func (s Session) Editable() bool {
	return s.Email != nil && s.Email.Editable
}

// Request returns the interview parameters collected so far
func (s Session) Request() models.InterviewRequest {
	return models.InterviewRequest{
		CandidateName:   s.Candidate,
		Position:        s.CandidatePosition,
		InterviewerName: s.Interviewer,
		Date:            s.Date,
		Time:            s.Time,
	}
}

// missingSlots lists the selection slots the generation page needs but lacks
func (s Session) missingSlots() []string {
	var missing []string
	if s.Candidate == "" {
		missing = append(missing, "candidate")
	}
	if s.Interviewer == "" {
		missing = append(missing, "interviewer")
	}
	if s.CandidateEmail == "" {
		missing = append(missing, "candidate_email")
	}
	if s.CandidatePosition == "" {
		missing = append(missing, "candidate_position")
	}
	return missing
}

// withEmail returns a copy of s whose ComposedEmail is not shared with s
func (s Session) withEmail(e models.ComposedEmail) Session {
	s.Email = &e
	return s
}
