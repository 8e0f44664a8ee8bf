package gui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fmuoria/interview-invite-agent/internal/config"
	"github.com/fmuoria/interview-invite-agent/internal/directory"
	"github.com/fmuoria/interview-invite-agent/internal/logging"
	"github.com/fmuoria/interview-invite-agent/internal/models"
	"github.com/fmuoria/interview-invite-agent/internal/wizard"
)

// gatedComposer blocks every compose until release is closed
type gatedComposer struct {
	started chan struct{}
	release chan struct{}
}

func newGatedComposer() *gatedComposer {
	return &gatedComposer{started: make(chan struct{}, 1), release: make(chan struct{})}
}

func (g *gatedComposer) Compose(ctx context.Context, req models.InterviewRequest) models.Composition {
	g.started <- struct{}{}
	<-g.release
	return models.Succeeded("Dear " + req.CandidateName)
}

type nopDispatcher struct{}

func (nopDispatcher) Send(context.Context, string, string, string) error { return nil }

// newTestApp builds an App on the headless driver. Main goroutine callbacks queue on the
// returned channel so the test decides when they run.
func newTestApp(t *testing.T, ctrl *wizard.Controller) (*App, chan func()) {
	t.Helper()
	a := newApp(test.NewTempApp(t), ctrl, config.DefaultConfig(), filepath.Join(t.TempDir(), "config.json"), logging.Discard())
	calls := make(chan func(), 4)
	a.do = func(fn func()) { calls <- fn }
	return a, calls
}

func newTestController(dir *directory.Directory, c wizard.Composer, opts ...wizard.Option) *wizard.Controller {
	opts = append([]wizard.Option{wizard.WithLogger(logging.Discard())}, opts...)
	return wizard.NewController(dir, []string{"HR-Kishor"}, c, nopDispatcher{}, opts...)
}

func ashaDirectory() *directory.Directory {
	return directory.New(models.CandidateRecord{Name: "Asha", Email: "asha@x.com", Position: "Engineer"})
}

// walk visits o and its descendants until visit returns true
func walk(o fyne.CanvasObject, visit func(fyne.CanvasObject) bool) bool {
	if visit(o) {
		return true
	}
	switch c := o.(type) {
	case *fyne.Container:
		for _, child := range c.Objects {
			if walk(child, visit) {
				return true
			}
		}
	case *container.Scroll:
		return walk(c.Content, visit)
	case *widget.Form:
		for _, item := range c.Items {
			if walk(item.Widget, visit) {
				return true
			}
		}
	}
	return false
}

func findButton(a *App, text string) *widget.Button {
	var found *widget.Button
	walk(a.body, func(o fyne.CanvasObject) bool {
		if b, ok := o.(*widget.Button); ok && b.Text == text {
			found = b
			return true
		}
		return false
	})
	return found
}

func hasLabel(a *App, substr string) bool {
	return walk(a.body, func(o fyne.CanvasObject) bool {
		l, ok := o.(*widget.Label)
		return ok && strings.Contains(l.Text, substr)
	})
}

func waitStarted(t *testing.T, g *gatedComposer) {
	t.Helper()
	select {
	case <-g.started:
	case <-time.After(2 * time.Second):
		t.Fatal("compose never started")
	}
}

func nextCall(t *testing.T, calls chan func()) func() {
	t.Helper()
	select {
	case fn := <-calls:
		return fn
	case <-time.After(2 * time.Second):
		t.Fatal("no result was delivered")
		return nil
	}
}

func TestSelection_EmptyDirectory(t *testing.T) {
	a, _ := newTestApp(t, newTestController(directory.New(), newGatedComposer()))

	assert.True(t, hasLabel(a, "No candidates found. Please check the Excel file."))
	assert.Nil(t, findButton(a, "Next"))
}

func TestSelection_ShowsLoadError(t *testing.T) {
	loadErr := fmt.Errorf("%w: missing columns Position", directory.ErrSchema)
	a, _ := newTestApp(t, newTestController(nil, newGatedComposer(), wizard.WithDirectoryError(loadErr)))

	assert.True(t, hasLabel(a, "Could not load candidates: candidates file must contain 'Name', 'Email', and 'Position' columns"))
	assert.False(t, hasLabel(a, "No candidates found"))
	assert.Nil(t, findButton(a, "Next"))
}

func TestGeneration_ComposeResultIsApplied(t *testing.T) {
	composer := newGatedComposer()
	a, calls := newTestApp(t, newTestController(ashaDirectory(), composer))

	test.Tap(findButton(a, "Next"))
	require.Equal(t, wizard.PageGeneration, a.session.Page)

	test.Tap(findButton(a, "Generate Email"))
	waitStarted(t, composer)

	// controls stay locked while the call runs
	assert.True(t, findButton(a, "Generate Email").Disabled())
	assert.True(t, findButton(a, "Edit").Disabled())
	assert.True(t, findButton(a, "Send Email").Disabled())

	close(composer.release)
	nextCall(t, calls)()

	require.True(t, a.session.Composed())
	assert.Equal(t, "Dear Asha", a.session.Email.Body)
	assert.False(t, findButton(a, "Edit").Disabled())
	assert.False(t, findButton(a, "Send Email").Disabled())
}

func TestGeneration_BackDuringComposeDropsResult(t *testing.T) {
	composer := newGatedComposer()
	a, calls := newTestApp(t, newTestController(ashaDirectory(), composer))

	test.Tap(findButton(a, "Next"))
	test.Tap(findButton(a, "Generate Email"))
	waitStarted(t, composer)

	test.Tap(findButton(a, "Back"))
	require.Equal(t, wizard.PageSelection, a.session.Page)

	close(composer.release)
	nextCall(t, calls)()

	assert.Equal(t, wizard.PageSelection, a.session.Page)
	assert.Nil(t, a.session.Email)
	require.NotNil(t, findButton(a, "Next"))

	// the session is still usable
	test.Tap(findButton(a, "Next"))
	assert.Equal(t, wizard.PageGeneration, a.session.Page)
	assert.Equal(t, "Asha", a.session.Candidate)
}

func TestDefaultDate(t *testing.T) {
	now := time.Date(2026, 10, 18, 15, 0, 0, 0, time.UTC)

	assert.Equal(t, "2026-10-18", defaultDate("", now))
	assert.Equal(t, "2026-10-20", defaultDate("2026-10-20", now))
}

func TestDefaultTime(t *testing.T) {
	assert.Equal(t, "10:00", defaultTime(""))
	assert.Equal(t, "14:30", defaultTime("14:30"))
}
