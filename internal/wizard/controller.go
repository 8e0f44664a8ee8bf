// Package wizard drives the two-page invitation flow: select a candidate and interviewer,
// then generate, optionally edit, and send the invitation.
package wizard

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/fmuoria/interview-invite-agent/internal/directory"
	"github.com/fmuoria/interview-invite-agent/internal/models"
)

// Composer drafts an invitation body
type Composer interface {
	Compose(ctx context.Context, req models.InterviewRequest) models.Composition
}

// Dispatcher delivers an invitation
type Dispatcher interface {
	Send(ctx context.Context, recipientName, recipientEmail, body string) error
}

// Controller owns the shared, read-only collaborators. All per-user state lives in
// Session values, so one Controller serves any number of sessions.
type Controller struct {
	dir          *directory.Directory
	interviewers []string
	composer     Composer
	dispatcher   Dispatcher
	dirErr       error
	now          func() time.Time
	log          *slog.Logger
}

// Option configures a Controller
type Option func(*Controller)

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		if now != nil {
			c.now = now
		}
	}
}

// WithDirectoryError records why the candidate directory could not be loaded. The
// error is reported wherever the empty candidate list is shown.
func WithDirectoryError(err error) Option {
	return func(c *Controller) {
		c.dirErr = err
	}
}

// NewController creates a controller. A nil directory behaves as an empty one.
func NewController(dir *directory.Directory, interviewers []string, composer Composer, dispatcher Dispatcher, opts ...Option) *Controller {
	if dir == nil {
		dir = directory.New()
	}
	c := &Controller{
		dir:          dir,
		interviewers: slices.Clone(interviewers),
		composer:     composer,
		dispatcher:   dispatcher,
		now:          time.Now,
		log:          slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start returns a new session on the selection page
func (c *Controller) Start() Session {
	return NewSession()
}

// Candidates returns the names offered on the selection page
func (c *Controller) Candidates() []string {
	return c.dir.Names()
}

// DirectoryError returns the error that left the directory empty, if any
func (c *Controller) DirectoryError() error {
	return c.dirErr
}

// Interviewers returns the interviewers offered on the selection page
func (c *Controller) Interviewers() []string {
	return slices.Clone(c.interviewers)
}

// Select records the recruiter's choice and moves the session to the generation page
func (c *Controller) Select(s Session, candidate, interviewer string) (Session, error) {
	if s.Page != PageSelection && s.Page != "" {
		return s, ErrNotOnSelection
	}
	if c.dir.Empty() {
		if c.dirErr != nil {
			return s, fmt.Errorf("%w: %w", ErrEmptyDirectory, c.dirErr)
		}
		return s, ErrEmptyDirectory
	}

	record, ok := c.dir.Lookup(candidate)
	if !ok {
		return s, fmt.Errorf("%w: %q", ErrUnknownCandidate, candidate)
	}
	if missing := record.Missing(); len(missing) > 0 {
		return s, fmt.Errorf("%w (%q has no %s)", ErrIncompleteCandidate, record.Name, strings.Join(missing, ", "))
	}
	if !slices.Contains(c.interviewers, interviewer) {
		return s, fmt.Errorf("%w: %q", ErrUnknownInterviewer, interviewer)
	}

	next := Session{
		ID:                s.ID,
		Page:              PageGeneration,
		Candidate:         record.Name,
		Interviewer:       interviewer,
		CandidateEmail:    record.Email,
		CandidatePosition: record.Position,
	}

	c.log.Info("candidate selected",
		slog.String("session", s.ID),
		slog.String("candidate", record.Name),
		slog.String("interviewer", interviewer))
	return next, nil
}

// Enter checks that s may be shown on the generation page
func (c *Controller) Enter(s Session) (Session, error) {
	if missing := s.missingSlots(); len(missing) > 0 {
		return s, fmt.Errorf("%w (missing %s)", ErrMissingState, strings.Join(missing, ", "))
	}
	s.Page = PageGeneration
	return s, nil
}

// requireGeneration guards every generation-page action
func (c *Controller) requireGeneration(s Session) error {
	if s.Page != PageGeneration {
		return fmt.Errorf("%w (selection not completed)", ErrMissingState)
	}
	if missing := s.missingSlots(); len(missing) > 0 {
		return fmt.Errorf("%w (missing %s)", ErrMissingState, strings.Join(missing, ", "))
	}
	return nil
}

// Compose generates the invitation for the given date and time. A new composition always
// replaces the previous one and returns to preview mode. A failed composition clears the
// body so the failure text can never be sent.
func (c *Controller) Compose(ctx context.Context, s Session, date, clock string) (Session, models.Composition, error) {
	if err := c.requireGeneration(s); err != nil {
		return s, models.Composition{}, err
	}

	s.Date = date
	s.Time = clock

	result := c.composer.Compose(ctx, s.Request())
	if !result.OK() {
		s.Email = nil
		s.LastFailure = result.Reason
		c.log.Warn("email generation failed", slog.String("session", s.ID), slog.String("reason", result.Reason))
		return s, result, nil
	}

	s = s.withEmail(models.ComposedEmail{Body: result.Body, Editable: false})
	s.LastFailure = ""
	return s, result, nil
}

// BeginEdit switches the composed email to edit mode
func (c *Controller) BeginEdit(s Session) (Session, error) {
	if err := c.requireComposed(s); err != nil {
		return s, err
	}
	return s.withEmail(models.ComposedEmail{Body: s.Email.Body, Editable: true}), nil
}

// UpdateBody replaces the body while in edit mode
func (c *Controller) UpdateBody(s Session, body string) (Session, error) {
	if err := c.requireComposed(s); err != nil {
		return s, err
	}
	if !s.Email.Editable {
		return s, ErrNotEditing
	}
	return s.withEmail(models.ComposedEmail{Body: body, Editable: true}), nil
}

// SaveEdit returns the composed email to preview mode
func (c *Controller) SaveEdit(s Session) (Session, error) {
	if err := c.requireComposed(s); err != nil {
		return s, err
	}
	return s.withEmail(models.ComposedEmail{Body: s.Email.Body, Editable: false}), nil
}

// Send delivers the current body to the selected candidate. Sending again is allowed;
// SendCount records how many times the invitation went out. A failed send leaves the
// session untouched so the user can retry without regenerating.
func (c *Controller) Send(ctx context.Context, s Session) (Session, error) {
	if err := c.requireComposed(s); err != nil {
		return s, err
	}

	if s.SendCount > 0 {
		c.log.Warn("re-sending invitation",
			slog.String("session", s.ID),
			slog.String("candidate", s.Candidate),
			slog.Int("previous_sends", s.SendCount))
	}

	if err := c.dispatcher.Send(ctx, s.Candidate, s.CandidateEmail, s.Email.Body); err != nil {
		return s, err
	}

	sentAt := c.now()
	s.SendCount++
	s.LastSentAt = &sentAt
	return s, nil
}

// Restart discards everything but the session id and returns to the selection page
func (c *Controller) Restart(s Session) Session {
	return Session{ID: s.ID, Page: PageSelection}
}

func (c *Controller) requireComposed(s Session) error {
	if err := c.requireGeneration(s); err != nil {
		return err
	}
	if !s.Composed() {
		return ErrNothingComposed
	}
	return nil
}
