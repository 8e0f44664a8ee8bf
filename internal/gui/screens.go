package gui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/interview-invite-agent/internal/mailer"
	"github.com/fmuoria/interview-invite-agent/internal/models"
)

const defaultInterviewTime = "10:00"

// showSelection renders the candidate and interviewer picker
func (a *App) showSelection() {
	candidates := a.wizard.Candidates()
	if len(candidates) == 0 {
		message := "No candidates found. Please check the Excel file."
		if err := a.wizard.DirectoryError(); err != nil {
			message = "Could not load candidates: " + err.Error()
		}
		notice := widget.NewLabel(message)
		notice.Wrapping = fyne.TextWrapWord
		a.show(container.NewVBox(
			widget.NewLabelWithStyle("Select Candidate and Interviewer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			notice,
		))
		return
	}

	candidateSelect := widget.NewSelect(candidates, nil)
	candidateSelect.SetSelectedIndex(0)

	interviewers := a.wizard.Interviewers()
	interviewerSelect := widget.NewSelect(interviewers, nil)
	if len(interviewers) > 0 {
		interviewerSelect.SetSelectedIndex(0)
	}

	nextBtn := widget.NewButton("Next", func() {
		next, err := a.wizard.Select(a.session, candidateSelect.Selected, interviewerSelect.Selected)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.session = next
		a.showGeneration()
	})
	nextBtn.Importance = widget.HighImportance

	a.show(container.NewVBox(
		widget.NewLabelWithStyle("Select Candidate and Interviewer", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewForm(
			widget.NewFormItem("Candidate", candidateSelect),
			widget.NewFormItem("Interviewer", interviewerSelect),
		),
		nextBtn,
	))
}

// showGeneration renders the compose, edit and send screen for the current session
func (a *App) showGeneration() {
	entered, err := a.wizard.Enter(a.session)
	if err != nil {
		dialog.ShowError(err, a.mainWindow)
		a.session = a.wizard.Restart(a.session)
		a.showSelection()
		return
	}
	a.session = entered

	details := widget.NewForm(
		widget.NewFormItem("Candidate", widget.NewLabel(a.session.Candidate)),
		widget.NewFormItem("Email", widget.NewLabel(a.session.CandidateEmail)),
		widget.NewFormItem("Position", widget.NewLabel(a.session.CandidatePosition)),
		widget.NewFormItem("Interviewer", widget.NewLabel(a.session.Interviewer)),
	)

	dateEntry := widget.NewEntry()
	dateEntry.SetPlaceHolder(models.DateLayout)
	dateEntry.SetText(defaultDate(a.session.Date, time.Now()))

	timeEntry := widget.NewEntry()
	timeEntry.SetPlaceHolder(models.TimeLayout)
	timeEntry.SetText(defaultTime(a.session.Time))

	bodyEntry := widget.NewMultiLineEntry()
	bodyEntry.Wrapping = fyne.TextWrapWord
	bodyEntry.SetMinRowsVisible(14)
	bodyEntry.OnChanged = func(text string) {
		if !a.session.Editable() {
			return
		}
		if next, err := a.wizard.UpdateBody(a.session, text); err == nil {
			a.session = next
		}
	}

	status := widget.NewLabel("")

	var generateBtn, editBtn, saveBtn, sendBtn *widget.Button
	// busy is set while a compose or send runs in the background
	busy := false

	// refresh syncs the widgets with a.session
	refresh := func() {
		generateBtn.Enable()
		switch {
		case a.session.Composed():
			if bodyEntry.Text != a.session.Email.Body {
				bodyEntry.SetText(a.session.Email.Body)
			}
			sendBtn.Enable()
			if a.session.Editable() {
				bodyEntry.Enable()
				editBtn.Disable()
				saveBtn.Enable()
			} else {
				bodyEntry.Disable()
				editBtn.Enable()
				saveBtn.Disable()
			}
		case a.session.LastFailure != "":
			bodyEntry.SetText(models.FailureText)
			bodyEntry.Disable()
			editBtn.Disable()
			saveBtn.Disable()
			sendBtn.Disable()
		default:
			bodyEntry.SetText("")
			bodyEntry.Disable()
			editBtn.Disable()
			saveBtn.Disable()
			sendBtn.Disable()
		}

		if a.session.SendCount > 0 {
			status.SetText(fmt.Sprintf("Sent %d time(s), last at %s", a.session.SendCount, a.session.LastSentAt.Format(time.Kitchen)))
		} else {
			status.SetText("")
		}

		if busy {
			generateBtn.Disable()
			bodyEntry.Disable()
			editBtn.Disable()
			saveBtn.Disable()
			sendBtn.Disable()
		}
	}

	// finish runs fn for a background result unless the user has left this screen
	finish := func(screen int, fn func()) {
		a.do(func() {
			if a.screen != screen {
				a.log.Debug("dropping result for a screen that is no longer shown")
				return
			}
			busy = false
			fn()
		})
	}

	generateBtn = widget.NewButton("Generate Email", func() {
		current, screen := a.session, a.screen
		date, clock := dateEntry.Text, timeEntry.Text
		busy = true
		refresh()
		status.SetText("Generating email...")

		go func() {
			next, result, err := a.wizard.Compose(context.Background(), current, date, clock)

			finish(screen, func() {
				status.SetText("")
				if err != nil {
					refresh()
					dialog.ShowError(err, a.mainWindow)
					return
				}
				a.session = next
				refresh()
				if !result.OK() {
					dialog.ShowError(errors.New(result.Reason), a.mainWindow)
				}
			})
		}()
	})
	generateBtn.Importance = widget.HighImportance

	editBtn = widget.NewButton("Edit", func() {
		next, err := a.wizard.BeginEdit(a.session)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.session = next
		refresh()
	})

	saveBtn = widget.NewButton("Save Changes", func() {
		next, err := a.wizard.SaveEdit(a.session)
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		a.session = next
		refresh()
		dialog.ShowInformation("Saved", "Changes saved.", a.mainWindow)
	})

	send := func() {
		current, screen := a.session, a.screen
		busy = true
		refresh()
		status.SetText("Sending email...")

		go func() {
			next, err := a.wizard.Send(context.Background(), current)

			finish(screen, func() {
				if err != nil {
					a.log.Error("send failed", slog.String("candidate", current.Candidate), slog.String("error", err.Error()))
					refresh()
					dialog.ShowError(errors.New(mailer.Describe(err)), a.mainWindow)
					return
				}
				a.session = next
				refresh()
				dialog.ShowInformation("Success", mailer.Describe(nil), a.mainWindow)
			})
		}()
	}

	sendBtn = widget.NewButton("Send Email", func() {
		if a.session.SendCount == 0 {
			send()
			return
		}
		dialog.ShowConfirm("Send Again?",
			fmt.Sprintf("This invitation was already sent to %s. Send it again?", a.session.CandidateEmail),
			func(ok bool) {
				if ok {
					send()
				}
			}, a.mainWindow)
	})

	backBtn := widget.NewButton("Back", func() {
		a.session = a.wizard.Restart(a.session)
		a.showSelection()
	})

	refresh()

	a.show(container.NewVScroll(container.NewVBox(
		widget.NewLabelWithStyle("Generate Interview Invitation", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		details,
		widget.NewSeparator(),
		widget.NewForm(
			widget.NewFormItem("Interview Date", dateEntry),
			widget.NewFormItem("Interview Time", timeEntry),
		),
		generateBtn,
		widget.NewSeparator(),
		widget.NewLabel("Email Preview"),
		bodyEntry,
		container.NewHBox(editBtn, saveBtn, sendBtn),
		status,
		widget.NewSeparator(),
		backBtn,
	)))
}

// defaultDate returns the session date, or today when none was chosen yet
func defaultDate(current string, now time.Time) string {
	if current != "" {
		return current
	}
	return now.Format(models.DateLayout)
}

// defaultTime returns the session time, or the usual morning slot
func defaultTime(current string) string {
	if current != "" {
		return current
	}
	return defaultInterviewTime
}
