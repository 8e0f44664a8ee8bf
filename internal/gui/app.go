package gui

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/fmuoria/interview-invite-agent/internal/config"
	"github.com/fmuoria/interview-invite-agent/internal/directory"
	"github.com/fmuoria/interview-invite-agent/internal/logging"
	"github.com/fmuoria/interview-invite-agent/internal/wizard"
)

// App represents the main GUI application
type App struct {
	fyneApp    fyne.App
	mainWindow fyne.Window
	config     *config.Config
	configPath string
	wizard     *wizard.Controller
	log        *slog.Logger

	// session and screen are only read and written on the fyne main goroutine
	session wizard.Session
	body    *fyne.Container
	// screen counts shown wizard screens so late background results can be dropped
	screen int
	// do runs fn on the main goroutine
	do func(fn func())
}

// NewApp creates a new GUI application driving ctrl. cfg is edited by the settings tab and
// saved to configPath.
func NewApp(ctrl *wizard.Controller, cfg *config.Config, configPath string, log *slog.Logger) *App {
	return newApp(app.NewWithID("com.datafactz.interview-invite-agent"), ctrl, cfg, configPath, log)
}

func newApp(a fyne.App, ctrl *wizard.Controller, cfg *config.Config, configPath string, log *slog.Logger) *App {
	w := a.NewWindow("Interview Invite Agent")
	w.Resize(fyne.NewSize(900, 700))

	guiApp := &App{
		fyneApp:    a,
		mainWindow: w,
		config:     cfg,
		configPath: configPath,
		wizard:     ctrl,
		log:        logging.OrDefault(log),
		session:    ctrl.Start(),
		do:         fyne.Do,
	}

	guiApp.setupUI()

	return guiApp
}

// Run starts the GUI application
func (a *App) Run() {
	a.mainWindow.ShowAndRun()
}

// setupUI initializes all UI components
func (a *App) setupUI() {
	a.body = container.NewStack()
	a.showSelection()

	tabs := container.NewAppTabs(
		container.NewTabItem("Invitation", a.body),
		container.NewTabItem("Settings", a.createSettingsTab()),
	)

	a.mainWindow.SetContent(tabs)
}

// show replaces the wizard screen. Results started from the previous screen are ignored.
func (a *App) show(screen fyne.CanvasObject) {
	a.screen++
	a.body.Objects = []fyne.CanvasObject{screen}
	a.body.Refresh()
}

// createSettingsTab creates the settings tab
func (a *App) createSettingsTab() fyne.CanvasObject {
	candidatesEntry := widget.NewEntry()
	candidatesEntry.SetText(a.config.CandidatesFile)

	orgNameEntry := widget.NewEntry()
	orgNameEntry.SetText(a.config.Organization.Name)

	orgAddressEntry := widget.NewEntry()
	orgAddressEntry.SetText(a.config.Organization.Address)

	providerSelect := widget.NewSelect([]string{config.ProviderOpenAI, config.ProviderVertexAI}, nil)
	providerSelect.SetSelected(a.config.LLM.Provider)

	openAIKeyEntry := widget.NewPasswordEntry()
	openAIKeyEntry.SetText(a.config.LLM.OpenAIAPIKey)

	projectEntry := widget.NewEntry()
	projectEntry.SetText(a.config.LLM.GoogleCloudProject)

	locationEntry := widget.NewEntry()
	locationEntry.SetText(a.config.LLM.GoogleCloudLocation)

	googleCredsEntry := widget.NewEntry()
	googleCredsEntry.SetText(a.config.LLM.GoogleCredentialsPath)

	transportSelect := widget.NewSelect([]string{config.TransportSMTP, config.TransportGmail, config.TransportResend}, nil)
	transportSelect.SetSelected(a.config.Mail.Transport)

	senderEntry := widget.NewEntry()
	senderEntry.SetText(a.config.Mail.SenderEmail)

	passwordEntry := widget.NewPasswordEntry()
	passwordEntry.SetText(a.config.Mail.SenderPassword)

	smtpHostEntry := widget.NewEntry()
	smtpHostEntry.SetText(a.config.Mail.SMTPHost)

	smtpPortEntry := widget.NewEntry()
	smtpPortEntry.SetText(strconv.Itoa(a.config.Mail.SMTPPort))

	gmailCredsEntry := widget.NewEntry()
	gmailCredsEntry.SetText(a.config.Mail.GmailCredentialsPath)

	resendKeyEntry := widget.NewPasswordEntry()
	resendKeyEntry.SetText(a.config.Mail.ResendAPIKey)

	form := widget.NewForm(
		widget.NewFormItem("Candidates File", a.browseField(candidatesEntry)),
		widget.NewFormItem("Organization", orgNameEntry),
		widget.NewFormItem("Address", orgAddressEntry),
		widget.NewFormItem("LLM Provider", providerSelect),
		widget.NewFormItem("OpenAI API Key", openAIKeyEntry),
		widget.NewFormItem("Google Cloud Project", projectEntry),
		widget.NewFormItem("Google Cloud Location", locationEntry),
		widget.NewFormItem("Google Credentials", a.browseField(googleCredsEntry)),
		widget.NewFormItem("Mail Transport", transportSelect),
		widget.NewFormItem("Sender Email", senderEntry),
		widget.NewFormItem("Sender Password", passwordEntry),
		widget.NewFormItem("SMTP Host", smtpHostEntry),
		widget.NewFormItem("SMTP Port", smtpPortEntry),
		widget.NewFormItem("Gmail Credentials", a.browseField(gmailCredsEntry)),
		widget.NewFormItem("Resend API Key", resendKeyEntry),
	)

	saveBtn := widget.NewButton("Save Settings", func() {
		port, err := strconv.Atoi(smtpPortEntry.Text)
		if err != nil {
			dialog.ShowError(fmt.Errorf("invalid SMTP port %q", smtpPortEntry.Text), a.mainWindow)
			return
		}

		a.config.CandidatesFile = candidatesEntry.Text
		a.config.Organization.Name = orgNameEntry.Text
		a.config.Organization.Address = orgAddressEntry.Text
		a.config.LLM.Provider = providerSelect.Selected
		a.config.LLM.OpenAIAPIKey = openAIKeyEntry.Text
		a.config.LLM.GoogleCloudProject = projectEntry.Text
		a.config.LLM.GoogleCloudLocation = locationEntry.Text
		a.config.LLM.GoogleCredentialsPath = googleCredsEntry.Text
		a.config.Mail.Transport = transportSelect.Selected
		a.config.Mail.SenderEmail = senderEntry.Text
		a.config.Mail.SenderPassword = passwordEntry.Text
		a.config.Mail.SMTPHost = smtpHostEntry.Text
		a.config.Mail.SMTPPort = port
		a.config.Mail.GmailCredentialsPath = gmailCredsEntry.Text
		a.config.Mail.ResendAPIKey = resendKeyEntry.Text

		if err := a.config.SaveTo(a.configPath); err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}

		a.log.Info("settings saved", slog.String("path", a.configPath))
		dialog.ShowInformation("Success", "Settings saved successfully.\nRestart the application to apply them.", a.mainWindow)
	})

	testBtn := widget.NewButton("Test Configuration", func() {
		if err := a.config.Validate(); err != nil {
			dialog.ShowError(fmt.Errorf("validation failed: %w", err), a.mainWindow)
			return
		}
		dialog.ShowInformation("Success", "Configuration is valid", a.mainWindow)
	})

	templateBtn := widget.NewButton("Create Candidates Template", a.handleTemplate)

	return container.NewVScroll(container.NewVBox(
		form,
		container.NewHBox(saveBtn, testBtn, templateBtn),
	))
}

// browseField pairs entry with a file picker
func (a *App) browseField(entry *widget.Entry) fyne.CanvasObject {
	btn := widget.NewButton("Browse...", func() {
		dialog.ShowFileOpen(func(uc fyne.URIReadCloser, err error) {
			if err == nil && uc != nil {
				entry.SetText(uc.URI().Path())
				uc.Close()
			}
		}, a.mainWindow)
	})
	return container.NewBorder(nil, nil, nil, btn, entry)
}

// handleTemplate writes a sample candidates workbook where the user chooses
func (a *App) handleTemplate() {
	d := dialog.NewFileSave(func(uc fyne.URIWriteCloser, err error) {
		if err != nil {
			dialog.ShowError(err, a.mainWindow)
			return
		}
		if uc == nil {
			return // User canceled
		}
		outputPath := uc.URI().Path()
		uc.Close()

		written, err := directory.WriteTemplate(outputPath, directory.SampleRecords())
		if err != nil {
			dialog.ShowError(fmt.Errorf("failed to create template: %w", err), a.mainWindow)
			return
		}

		dialog.ShowInformation("Success", "Template saved to "+filepath.Base(written), a.mainWindow)
	}, a.mainWindow)
	d.SetFileName("candidates.xlsx")
	d.Show()
}
