package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const (
	// DateLayout is the layout used for interview dates
	DateLayout = "2006-01-02"
	// TimeLayout is the layout used for interview times
	TimeLayout = "15:04"

	// FailureText is shown in place of an email body when generation fails
	FailureText = "Failed to generate email content."
)

// CandidateRecord represents one row of the candidates workbook
type CandidateRecord struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Position string `json:"position"`
}

// Missing lists the headers whose cells are blank for this record
func (r CandidateRecord) Missing() []string {
	var missing []string
	if r.Email == "" {
		missing = append(missing, "Email")
	}
	if r.Position == "" {
		missing = append(missing, "Position")
	}
	return missing
}

// InterviewRequest holds the parameters used to compose an invitation
type InterviewRequest struct {
	CandidateName   string `json:"candidate_name"`
	Position        string `json:"position"`
	InterviewerName string `json:"interviewer_name"`
	Date            string `json:"date"` // 2006-01-02
	Time            string `json:"time"` // 15:04
}

// Validate checks that every field is present and that date and time parse
func (r InterviewRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.CandidateName, validation.Required),
		validation.Field(&r.Position, validation.Required),
		validation.Field(&r.InterviewerName, validation.Required),
		validation.Field(&r.Date, validation.Required, validation.Date(DateLayout)),
		validation.Field(&r.Time, validation.Required, validation.Date(TimeLayout)),
	)
}

// FormattedDate renders the interview date for humans, e.g. "Monday, 2 January 2006".
// It falls back to the raw value when the date does not parse.
func (r InterviewRequest) FormattedDate() string {
	d, err := time.Parse(DateLayout, r.Date)
	if err != nil {
		return r.Date
	}
	return d.Format("Monday, 2 January 2006")
}

// ComposedEmail is the body produced by the composer, possibly edited by the user
type ComposedEmail struct {
	Body     string `json:"body"`
	Editable bool   `json:"editable"`
}

// CompositionStatus tags a Composition as success or failure
type CompositionStatus string

const (
	CompositionSucceeded CompositionStatus = "success"
	CompositionFailed    CompositionStatus = "failure"
)

// Composition is the outcome of one compose attempt
type Composition struct {
	Status CompositionStatus `json:"status"`
	Body   string            `json:"body,omitempty"`
	Reason string            `json:"reason,omitempty"`
}

// Succeeded returns a successful composition with the given body
func Succeeded(body string) Composition {
	return Composition{Status: CompositionSucceeded, Body: body}
}

// Failed returns a failed composition carrying a human readable reason
func Failed(format string, args ...any) Composition {
	return Composition{Status: CompositionFailed, Reason: fmt.Sprintf(format, args...)}
}

// OK reports whether the composition produced an email body
func (c Composition) OK() bool {
	return c.Status == CompositionSucceeded
}

// Text returns the body for a success and FailureText otherwise
func (c Composition) Text() string {
	if c.OK() {
		return c.Body
	}
	return FailureText
}
