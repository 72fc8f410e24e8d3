// internal/tui/app.go
//
// The terminal UI for the onboarding client, built on bubbletea's Elm
// architecture: the App model holds all state, Update reacts to
// messages, View renders a frame. Network work (login, eager uploads,
// the terminal submission) runs inside tea.Cmds and reports back via
// typed messages, so the UI loop never blocks.

package tui

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/filepicker"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/recruiteer/onboard/internal/backend"
	"github.com/recruiteer/onboard/internal/config"
	"github.com/recruiteer/onboard/internal/logbook"
	"github.com/recruiteer/onboard/internal/profile"
	"github.com/recruiteer/onboard/internal/upload"
	"github.com/recruiteer/onboard/internal/wizard"
)

// screen represents which view the app is showing.
type screen int

const (
	screenLogin screen = iota
	screenWizard
	screenFilePick
)

type loginResultMsg struct {
	token    string
	userType string
	err      error
}

type submitResultMsg struct {
	err error
}

type attachResultMsg struct {
	field  string
	result upload.Result
	err    error
}

// allowedFileTypes filters the picker per file field.
var allowedFileTypes = map[string][]string{
	profile.FieldCVFile:        {".pdf", ".doc", ".docx"},
	profile.FieldPortfolioFile: {".pdf", ".doc", ".docx", ".png", ".jpg", ".jpeg", ".zip"},
}

// App is the top-level bubbletea model.
type App struct {
	cfg      *config.Config
	logbook  *logbook.Logbook
	backend  *backend.Client
	pipeline *upload.Pipeline
	wizard   *wizard.Controller

	screen screen
	token  string

	loginEmail    textinput.Model
	loginPassword textinput.Model
	loginFocus    int
	loggingIn     bool

	rows  [wizard.StageCount][]*formRow
	focus int

	picker      filepicker.Model
	pickerField string

	spin       spinner.Model
	attaching  int
	submitting bool
	statusMsg  string

	width  int
	height int
}

// signupSubmitter adapts the backend client to the wizard's Submitter.
type signupSubmitter struct {
	client *backend.Client
}

func (s signupSubmitter) Signup(ctx context.Context, contentType string, body io.Reader) error {
	_, err := s.client.Signup(ctx, contentType, body)
	return err
}

// NewApp wires the UI over its collaborators. The pipeline may be nil
// when no eager strategy is configured; file fields then stay inline.
func NewApp(cfg *config.Config, lb *logbook.Logbook, client *backend.Client, pipeline *upload.Pipeline) *App {
	email := textinput.New()
	email.Placeholder = "you@example.com"
	email.Width = 42
	password := textinput.New()
	password.EchoMode = textinput.EchoPassword
	password.Width = 42

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801"))

	app := &App{
		cfg:           cfg,
		logbook:       lb,
		backend:       client,
		pipeline:      pipeline,
		wizard:        wizard.New(signupSubmitter{client: client}),
		screen:        screenLogin,
		loginEmail:    email,
		loginPassword: password,
		rows:          buildStageRows(),
		spin:          spin,
		statusMsg:     "Sign in to enable eager uploads, or esc to continue without a session",
	}
	return app
}

// Wizard exposes the controller; the entry point logs its terminal state
// on exit.
func (a *App) Wizard() *wizard.Controller {
	return a.wizard
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook != nil {
		a.logbook.Info(format, args...)
	}
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook != nil {
		a.logbook.Warn(format, args...)
	}
}

func (a *App) logError(format string, args ...any) {
	if a.logbook != nil {
		a.logbook.Error(format, args...)
	}
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spin.Tick, a.loginEmail.Focus())
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case loginResultMsg:
		a.loggingIn = false
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Login failed: %v", msg.err)
			a.logError("Login failed: %v", msg.err)
			return a, nil
		}
		a.token = msg.token
		a.screen = screenWizard
		a.statusMsg = "Signed in"
		a.logInfo("Session opened (%s)", msg.userType)
		return a, a.focusCurrentRow()

	case submitResultMsg:
		a.submitting = false
		if msg.err != nil {
			a.statusMsg = fmt.Sprintf("Submission failed: %v", msg.err)
			a.logError("Submission failed: %v", msg.err)
			return a, nil
		}
		a.statusMsg = "Signup complete · record cleared"
		a.logInfo("Signup submitted")
		a.syncFormsFromRecord()
		a.resetFocus()
		return a, a.focusCurrentRow()

	case attachResultMsg:
		a.attaching--
		a.wizard.EndAttach()
		if msg.err != nil {
			a.wizard.SetError(msg.err.Error())
			a.statusMsg = fmt.Sprintf("Upload failed · %v", msg.err)
			a.logError("Attach %s (task %s): %v", msg.field, msg.result.TaskID, msg.err)
			return a, nil
		}
		a.wizard.Record().ResolveAttachment(msg.field, msg.result.URL)
		a.statusMsg = fmt.Sprintf("%s uploaded", msg.field)
		a.logInfo("Attach %s resolved to %s (task %s)", msg.field, msg.result.URL, msg.result.TaskID)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		switch a.screen {
		case screenLogin:
			return a.updateLogin(msg)
		case screenFilePick:
			return a.updateFilePick(msg)
		case screenWizard:
			return a.updateWizard(msg)
		}
	}

	if a.screen == screenFilePick {
		var cmd tea.Cmd
		a.picker, cmd = a.picker.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		a.screen = screenWizard
		a.statusMsg = "Continuing without a session · eager uploads fall back to inline"
		a.logWarn("No session; eager strategies degrade to inline submission")
		return a, a.focusCurrentRow()
	case "tab", "shift+tab", "up", "down":
		a.loginFocus = (a.loginFocus + 1) % 2
		if a.loginFocus == 0 {
			a.loginPassword.Blur()
			return a, a.loginEmail.Focus()
		}
		a.loginEmail.Blur()
		return a, a.loginPassword.Focus()
	case "enter":
		if a.loginFocus == 0 {
			a.loginFocus = 1
			a.loginEmail.Blur()
			return a, a.loginPassword.Focus()
		}
		if a.loggingIn {
			return a, nil
		}
		a.loggingIn = true
		a.statusMsg = "Signing in..."
		return a, a.loginCmd()
	}
	var cmd tea.Cmd
	if a.loginFocus == 0 {
		a.loginEmail, cmd = a.loginEmail.Update(msg)
	} else {
		a.loginPassword, cmd = a.loginPassword.Update(msg)
	}
	return a, cmd
}

func (a *App) updateFilePick(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		a.screen = screenWizard
		a.statusMsg = "File selection cancelled"
		return a, nil
	}
	var cmd tea.Cmd
	a.picker, cmd = a.picker.Update(msg)
	if ok, path := a.picker.DidSelectFile(msg); ok {
		a.screen = screenWizard
		return a, a.acceptFile(a.pickerField, path)
	}
	if ok, path := a.picker.DidSelectDisabledFile(msg); ok {
		a.statusMsg = fmt.Sprintf("%s is not an accepted file type", filepath.Base(path))
	}
	return a, cmd
}

func (a *App) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Edits pause while the record is being snapshotted and submitted.
	if a.submitting {
		return a, nil
	}
	stage := a.wizard.Stage()
	rows := a.rows[stage]
	row := a.currentRow()

	switch msg.String() {
	case "ctrl+n":
		if a.wizard.Advance() {
			a.statusMsg = ""
			a.resetFocus()
			return a, a.focusCurrentRow()
		}
		a.statusMsg = a.wizard.LastError()
		return a, nil
	case "ctrl+b":
		if a.wizard.Retreat() {
			a.statusMsg = ""
			a.resetFocus()
			return a, a.focusCurrentRow()
		}
		return a, nil
	case "ctrl+s":
		if stage != wizard.StageCount-1 {
			a.statusMsg = "Submit is available on the final stage"
			return a, nil
		}
		a.submitting = true
		a.statusMsg = "Submitting..."
		return a, a.submitCmd()
	case "tab":
		return a, a.moveFocus(1)
	case "shift+tab":
		return a, a.moveFocus(-1)
	case "ctrl+x":
		a.removeLast(row)
		return a, nil
	case "enter":
		return a.handleEnter(stage, rows, row)
	case " ":
		if row != nil && row.kind == rowFlag {
			rec := a.wizard.Record()
			rec.SetFlag(row.field, !rec.Flag(row.field))
			return a, nil
		}
	case "1", "2", "3", "4", "5", "6", "7":
		if row != nil && row.kind == rowDays {
			idx := int(msg.String()[0] - '1')
			a.wizard.Record().ToggleDay(weekdays[idx])
			return a, nil
		}
	}

	if row == nil {
		return a, nil
	}
	var cmd tea.Cmd
	switch row.kind {
	case rowText, rowSkills:
		row.input, cmd = row.input.Update(msg)
		if row.kind == rowText {
			syncRow(a.wizard.Record(), row)
		}
	case rowArea:
		row.area, cmd = row.area.Update(msg)
		a.wizard.Record().Set(row.field, row.area.Value())
	}
	return a, cmd
}

func (a *App) handleEnter(stage wizard.Stage, rows []*formRow, row *formRow) (tea.Model, tea.Cmd) {
	if row == nil {
		return a, nil
	}
	rec := a.wizard.Record()
	switch row.kind {
	case rowSkills:
		rec.AddSkill(row.input.Value())
		row.input.SetValue("")
		return a, nil
	case rowFile:
		return a, a.openPicker(row.field)
	case rowFlag:
		rec.SetFlag(row.field, !rec.Flag(row.field))
		return a, nil
	case rowText:
		if stage == wizard.StageNetwork && row.field == "contact_position" {
			a.commitContact(rows)
			return a, nil
		}
		return a, a.moveFocus(1)
	}
	return a, a.moveFocus(1)
}

// commitContact assembles the three scratch inputs into a contact; the
// record refuses incomplete entries.
func (a *App) commitContact(rows []*formRow) {
	var c profile.Contact
	for _, row := range rows {
		switch row.field {
		case "contact_name":
			c.FullName = row.input.Value()
		case "contact_email":
			c.Email = row.input.Value()
		case "contact_position":
			c.Position = row.input.Value()
		}
	}
	if !a.wizard.Record().AddContact(c) {
		a.statusMsg = "Contacts need a name, email and position"
		return
	}
	for _, row := range rows {
		switch row.field {
		case "contact_name", "contact_email", "contact_position":
			row.input.SetValue("")
		}
	}
	a.statusMsg = fmt.Sprintf("Added %s", c.FullName)
}

func (a *App) removeLast(row *formRow) {
	rec := a.wizard.Record()
	if row == nil {
		return
	}
	switch row.kind {
	case rowSkills:
		if n := len(rec.Skills); n > 0 {
			rec.RemoveSkill(rec.Skills[n-1])
		}
	default:
		if a.wizard.Stage() == wizard.StageNetwork {
			rec.RemoveContact(len(rec.Contacts) - 1)
		}
	}
}

func (a *App) openPicker(field string) tea.Cmd {
	fp := filepicker.New()
	fp.AllowedTypes = allowedFileTypes[field]
	if home, err := os.UserHomeDir(); err == nil {
		fp.CurrentDirectory = home
	} else {
		fp.CurrentDirectory = "."
	}
	a.picker = fp
	a.pickerField = field
	a.screen = screenFilePick
	a.statusMsg = fmt.Sprintf("Pick a file for %s · esc cancels", field)
	return a.picker.Init()
}

// acceptFile loads a picked file into the record. The size ceiling is
// enforced here, before either attachment path runs, so an oversized
// selection never reaches the network. When the field's strategy is
// eager and a session exists, the upload pipeline starts immediately;
// otherwise the bytes ride along in the terminal submission.
func (a *App) acceptFile(field, path string) tea.Cmd {
	rec := a.wizard.Record()
	if url := rec.RemoteRef(field); url != "" {
		a.statusMsg = fmt.Sprintf("%s is already uploaded · selection ignored", field)
		a.logWarn("Selection for %s dropped; field resolved to %s", field, url)
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Could not read %s: %v", filepath.Base(path), err)
		a.logError("Read %s: %v", path, err)
		return nil
	}
	if limit := a.cfg.MaxUploadBytes(); limit > 0 && int64(len(data)) > limit {
		a.statusMsg = fmt.Sprintf("%s is %s · limit is %s",
			filepath.Base(path), humanize.Bytes(uint64(len(data))), humanize.Bytes(uint64(limit)))
		a.logWarn("Rejected %s for %s: over the %d byte ceiling", path, field, limit)
		return nil
	}
	file := &profile.PendingFile{
		Name:        filepath.Base(path),
		ContentType: mime.TypeByExtension(filepath.Ext(path)),
		Data:        data,
	}
	rec.SetPendingFile(field, file)
	a.statusMsg = fmt.Sprintf("Selected %s for %s", file.Name, field)
	a.logInfo("Selected %s (%s) for %s", file.Name, humanize.Bytes(uint64(file.Size())), field)

	if a.cfg.Strategy(field) != config.StrategyEager {
		return nil
	}
	if a.token == "" || a.pipeline == nil {
		a.logWarn("Eager strategy for %s unavailable; falling back to inline submission", field)
		return nil
	}
	a.wizard.BeginAttach()
	a.attaching++
	a.statusMsg = fmt.Sprintf("Uploading %s...", file.Name)
	return a.attachCmd(field, file)
}

func (a *App) loginCmd() tea.Cmd {
	email := a.loginEmail.Value()
	password := a.loginPassword.Value()
	return func() tea.Msg {
		resp, err := a.backend.Login(context.Background(), email, password, "talent")
		if err != nil {
			return loginResultMsg{err: err}
		}
		return loginResultMsg{token: resp.AccessToken, userType: resp.UserType}
	}
}

func (a *App) submitCmd() tea.Cmd {
	return func() tea.Msg {
		return submitResultMsg{err: a.wizard.Finalize(context.Background())}
	}
}

func (a *App) attachCmd(field string, file *profile.PendingFile) tea.Cmd {
	token := a.token
	return func() tea.Msg {
		result, err := a.pipeline.Attach(context.Background(), field, file, token)
		return attachResultMsg{field: field, result: result, err: err}
	}
}

// syncFormsFromRecord rewrites every input from the record. Used after a
// successful submission, when the record has returned to its default
// shape but the inputs still show the old text.
func (a *App) syncFormsFromRecord() {
	rec := a.wizard.Record()
	for _, rows := range a.rows {
		for _, row := range rows {
			switch row.kind {
			case rowText:
				switch row.field {
				case fieldBirthYear, fieldBirthMonth, fieldBirthDay,
					"contact_name", "contact_email", "contact_position":
					row.input.SetValue("")
				case profile.FieldAvailability:
					row.input.SetValue(rec.Availability.TimeSlot)
				default:
					row.input.SetValue(rec.Get(row.field))
				}
			case rowSkills:
				row.input.SetValue("")
			case rowArea:
				row.area.SetValue(rec.Get(row.field))
			}
		}
	}
}

func (a *App) currentRow() *formRow {
	rows := a.rows[a.wizard.Stage()]
	if a.focus < 0 || a.focus >= len(rows) {
		return nil
	}
	return rows[a.focus]
}

func (a *App) resetFocus() {
	for _, rows := range a.rows {
		for _, row := range rows {
			row.blur()
		}
	}
	a.focus = 0
}

func (a *App) focusCurrentRow() tea.Cmd {
	if row := a.currentRow(); row != nil {
		return row.focus()
	}
	return nil
}

func (a *App) moveFocus(delta int) tea.Cmd {
	rows := a.rows[a.wizard.Stage()]
	if len(rows) == 0 {
		return nil
	}
	if row := a.currentRow(); row != nil {
		row.blur()
	}
	a.focus = (a.focus + delta + len(rows)) % len(rows)
	return a.focusCurrentRow()
}

// View renders the current state to a string.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ ONBOARD")

	var body string
	switch a.screen {
	case screenLogin:
		body = a.renderLogin()
	case screenFilePick:
		body = a.picker.View()
	case screenWizard:
		body = a.renderWizard()
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(max(60, a.width-4)).
		Render(body)

	sections := []string{header, box}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#888888")).
		MarginTop(1).
		Render(a.statusMsg)
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderLogin() string {
	lines := []string{
		labelStyle.Render("Sign in"),
		"",
		fmt.Sprintf("  Email     %s", a.loginEmail.View()),
		fmt.Sprintf("  Password  %s", a.loginPassword.View()),
		"",
		dimStyle.Render("enter sign in    esc continue without a session"),
	}
	if a.loggingIn {
		lines = append(lines, "", a.spin.View()+" signing in")
	}
	return strings.Join(lines, "\n")
}

func (a *App) renderWizard() string {
	stage := a.wizard.Stage()
	rows := a.rows[stage]
	lines := []string{a.renderProgressRail(), ""}
	for i, row := range rows {
		lines = append(lines, a.renderRow(row, i == a.focus))
	}
	if errLine := a.wizard.LastError(); errLine != "" {
		lines = append(lines, "", errStyle.Render("⚠ "+errLine))
	}
	if a.submitting || a.attaching > 0 {
		lines = append(lines, "", a.spin.View()+" working")
	}
	lines = append(lines, "", stageHints(stage))
	return strings.Join(lines, "\n")
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s", fileName))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}
