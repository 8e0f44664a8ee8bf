// Package composer drafts interview invitation emails with a text generation service.
package composer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fmuoria/interview-invite-agent/internal/llm"
	"github.com/fmuoria/interview-invite-agent/internal/models"
)

const (
	// Persona is the system framing sent with every request
	Persona = "You are an assistant that writes professional emails."

	DefaultMaxTokens int32 = 500
	DefaultTimeout         = 60 * time.Second
)

// Organization is the company issuing the invitation
type Organization struct {
	Name    string
	Address string
}

// DefaultOrganization is used when none is configured
var DefaultOrganization = Organization{
	Name:    "Data FactZ",
	Address: "Prime Towers, 4th floor, Hyderabad",
}

// Composer turns interview requests into email bodies
type Composer struct {
	gen       llm.Generator
	org       Organization
	maxTokens int32
	timeout   time.Duration
	log       *slog.Logger
}

// Option configures a Composer
type Option func(*Composer)

// WithMaxTokens bounds the generated output length
func WithMaxTokens(n int32) Option {
	return func(c *Composer) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithTimeout bounds a single generation call
func WithTimeout(d time.Duration) Option {
	return func(c *Composer) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *slog.Logger) Option {
	return func(c *Composer) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a composer backed by gen
func New(gen llm.Generator, org Organization, opts ...Option) *Composer {
	if org.Name == "" {
		org.Name = DefaultOrganization.Name
	}
	if org.Address == "" {
		org.Address = DefaultOrganization.Address
	}

	c := &Composer{
		gen:       gen,
		org:       org,
		maxTokens: DefaultMaxTokens,
		timeout:   DefaultTimeout,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildPrompt renders the fixed invitation instructions for req
func (c *Composer) BuildPrompt(req models.InterviewRequest) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Generate an email invitation for an interview from the company '%s' with the address '%s'.\n", c.org.Name, c.org.Address))
	sb.WriteString(fmt.Sprintf("Candidate: %s\n", req.CandidateName))
	sb.WriteString(fmt.Sprintf("Position: %s\n", req.Position))
	sb.WriteString(fmt.Sprintf("Interviewer: %s\n", req.InterviewerName))
	sb.WriteString(fmt.Sprintf("Interview Date: %s (%s)\n", req.FormattedDate(), req.Date))
	sb.WriteString(fmt.Sprintf("Interview Time: %s\n", req.Time))
	sb.WriteString(fmt.Sprintf("The email should include a polite introduction from '%s', details of the interview, and a closing.\n", c.org.Name))
	sb.WriteString("End the email with regards from the interviewer, using only the term \"Regards\".\n")
	sb.WriteString("Use a correct email format.\n")
	sb.WriteString("Mention the company address at the end.\n")

	return sb.String()
}

// Compose asks the generator for an invitation body. It never returns an error:
// failures come back as a failed Composition with a reason.
func (c *Composer) Compose(ctx context.Context, req models.InterviewRequest) (result models.Composition) {
	log := c.log.With(slog.String("candidate", req.CandidateName))

	defer func() {
		if r := recover(); r != nil {
			log.Error("unexpected error while generating email", slog.Any("panic", r))
			result = models.Failed("unexpected error: %v", r)
		}
	}()

	if err := req.Validate(); err != nil {
		log.Warn("invalid interview request", slog.String("error", err.Error()))
		return models.Failed("invalid interview details: %v", err)
	}

	if c.gen == nil {
		return models.Failed("no text generation service configured")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	text, err := c.gen.Generate(ctx, llm.Request{
		System:    Persona,
		Prompt:    c.BuildPrompt(req),
		MaxTokens: c.maxTokens,
	})
	if err != nil {
		if errors.Is(err, llm.ErrGeneration) {
			log.Error("failed to generate email content", slog.String("error", err.Error()))
		} else {
			log.Error("unexpected error while generating email", slog.String("error", err.Error()))
		}
		return models.Failed("failed to generate email content: %v", err)
	}

	body := strings.TrimSpace(text)
	if body == "" {
		log.Error("generation returned an empty body")
		return models.Failed("the generation service returned an empty email")
	}

	log.Info("generated invitation email", slog.Int("length", len(body)))
	return models.Succeeded(body)
}
