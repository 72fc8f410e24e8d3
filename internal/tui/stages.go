package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/recruiteer/onboard/internal/profile"
	"github.com/recruiteer/onboard/internal/wizard"
)

// rowKind selects how a form row is rendered and which keys it consumes.
type rowKind int

const (
	rowText rowKind = iota
	rowArea
	rowSkills
	rowDays
	rowContacts
	rowFile
	rowFlag
)

// Pseudo field keys for rows that do not map straight onto a record
// scalar.
const (
	fieldBirthYear  = "birth_year"
	fieldBirthMonth = "birth_month"
	fieldBirthDay   = "birth_day"
)

var weekdays = []string{
	"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday",
}

var (
	labelStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	chipStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#4CAF50"))
	errStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	focusedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F7B801")).Bold(true)
)

// formRow is one focusable line of a stage form.
type formRow struct {
	kind  rowKind
	label string
	field string
	input textinput.Model
	area  textarea.Model
}

func textRow(label, field, placeholder string) *formRow {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 256
	in.Width = 42
	return &formRow{kind: rowText, label: label, field: field, input: in}
}

func secretRow(label, field string) *formRow {
	row := textRow(label, field, "")
	row.input.EchoMode = textinput.EchoPassword
	return row
}

func areaRow(label, field, placeholder string) *formRow {
	ta := textarea.New()
	ta.Placeholder = placeholder
	ta.SetWidth(46)
	ta.SetHeight(3)
	ta.CharLimit = 2000
	return &formRow{kind: rowArea, label: label, field: field, area: ta}
}

func skillsRow() *formRow {
	row := textRow("Skills", profile.FieldSkills, "type a skill, enter to add")
	row.kind = rowSkills
	return row
}

func timeSlotRow() *formRow {
	row := textRow("Interview time slot", profile.FieldAvailability, profile.DefaultTimeSlot)
	row.input.SetValue(profile.DefaultTimeSlot)
	return row
}

func fileRow(label, field string) *formRow {
	return &formRow{kind: rowFile, label: label, field: field}
}

func flagRow(label, field string) *formRow {
	return &formRow{kind: rowFlag, label: label, field: field}
}

// buildStageRows lays out every stage's form. Row order is focus order.
func buildStageRows() [wizard.StageCount][]*formRow {
	var rows [wizard.StageCount][]*formRow
	rows[wizard.StageCredentials] = []*formRow{
		textRow("Full name", profile.FieldFullName, "Ada Lovelace"),
		textRow("Birth year", fieldBirthYear, "1990"),
		textRow("Birth month", fieldBirthMonth, "6"),
		textRow("Birth day", fieldBirthDay, "2"),
		textRow("Email", profile.FieldEmail, "you@example.com"),
		secretRow("Password", profile.FieldPassword),
		textRow("Mobile number", profile.FieldMobileNumber, "07000000000"),
	}
	rows[wizard.StageOverview] = []*formRow{
		areaRow("About me", profile.FieldAboutMe, "a few sentences about yourself"),
		textRow("Profile picture URL", profile.FieldProfilePicture, "https://"),
		textRow("Ideal industry", profile.FieldIdealJobIndustry, "Technology"),
		textRow("Ideal job title", profile.FieldIdealJobTitle, "Backend Engineer"),
		textRow("Experience level", profile.FieldExperienceLevel, "Mid-Level"),
		textRow("Contract type", profile.FieldContractType, "Full-Time"),
		skillsRow(),
		timeSlotRow(),
		{kind: rowDays, label: "Interview days"},
	}
	rows[wizard.StagePortfolio] = []*formRow{
		textRow("Portfolio link", profile.FieldPortfolioLink, "https://"),
		fileRow("Portfolio file", profile.FieldPortfolioFile),
	}
	rows[wizard.StageNetwork] = []*formRow{
		textRow("Contact name", "contact_name", "Grace Hopper"),
		textRow("Contact email", "contact_email", "grace@example.com"),
		textRow("Contact position", "contact_position", "Rear Admiral"),
		{kind: rowContacts, label: "Contacts"},
	}
	rows[wizard.StageCV] = []*formRow{
		fileRow("CV", profile.FieldCVFile),
	}
	rows[wizard.StageAssistant] = []*formRow{
		flagRow("AI assessment", profile.FieldAIAssessment),
		flagRow("OpenAI integration", profile.FieldOpenAI),
		flagRow("AI assistant", profile.FieldAIAssistant),
	}
	return rows
}

func (r *formRow) focus() tea.Cmd {
	switch r.kind {
	case rowText, rowSkills:
		return r.input.Focus()
	case rowArea:
		return r.area.Focus()
	}
	return nil
}

func (r *formRow) blur() {
	switch r.kind {
	case rowText, rowSkills:
		r.input.Blur()
	case rowArea:
		r.area.Blur()
	}
}

// syncRow writes a text row's current value into the record. The birth
// pseudo fields route to the partial-date setters; everything else is a
// plain keyed scalar.
func syncRow(rec *profile.Record, row *formRow) {
	value := row.input.Value()
	switch row.field {
	case fieldBirthYear:
		rec.SetBirthYear(value)
	case fieldBirthMonth:
		rec.SetBirthMonth(value)
	case fieldBirthDay:
		rec.SetBirthDay(value)
	case profile.FieldAvailability:
		rec.SetTimeSlot(value)
	case "contact_name", "contact_email", "contact_position":
		// Scratch inputs; committed as a unit when the contact is added.
	default:
		rec.Set(row.field, value)
	}
}

// renderRow renders one form row; file and composite rows read their
// current state straight from the record.
func (a *App) renderRow(row *formRow, focused bool) string {
	label := labelStyle.Render(row.label)
	if focused {
		label = focusedStyle.Render("> " + row.label)
	} else {
		label = "  " + label
	}
	switch row.kind {
	case rowText, rowSkills:
		line := fmt.Sprintf("%s  %s", label, row.input.View())
		if row.kind == rowSkills {
			line += "\n    " + chipStyle.Render(strings.Join(a.wizard.Record().Skills, " · "))
		}
		return line
	case rowArea:
		return fmt.Sprintf("%s\n%s", label, row.area.View())
	case rowDays:
		return fmt.Sprintf("%s  %s", label, a.renderDays(focused))
	case rowContacts:
		return fmt.Sprintf("%s\n%s", label, a.renderContacts())
	case rowFile:
		return fmt.Sprintf("%s  %s", label, a.renderFileState(row.field, focused))
	case rowFlag:
		mark := "[ ]"
		if a.wizard.Record().Flag(row.field) {
			mark = "[x]"
		}
		return fmt.Sprintf("%s  %s", label, mark)
	}
	return label
}

func (a *App) renderDays(focused bool) string {
	rec := a.wizard.Record()
	parts := make([]string, 0, len(weekdays))
	for i, day := range weekdays {
		mark := " "
		if rec.HasDay(day) {
			mark = "x"
		}
		parts = append(parts, fmt.Sprintf("%d[%s]%s", i+1, mark, day[:3]))
	}
	line := strings.Join(parts, " ")
	if focused {
		line += dimStyle.Render("  (1-7 toggles)")
	}
	return line
}

func (a *App) renderContacts() string {
	rec := a.wizard.Record()
	if len(rec.Contacts) == 0 {
		return "    " + dimStyle.Render("none yet · fill the fields above and press enter")
	}
	lines := make([]string, 0, len(rec.Contacts))
	for i, c := range rec.Contacts {
		lines = append(lines, fmt.Sprintf("    %d. %s · %s · %s", i+1, c.FullName, c.Position, c.Email))
	}
	lines = append(lines, "    "+dimStyle.Render("enter adds · ctrl+x removes last"))
	return strings.Join(lines, "\n")
}

func (a *App) renderFileState(field string, focused bool) string {
	rec := a.wizard.Record()
	if url := rec.RemoteRef(field); url != "" {
		return chipStyle.Render("uploaded · " + url)
	}
	if pending := rec.PendingFile(field); pending != nil {
		strategy := a.cfg.Strategy(field)
		return fmt.Sprintf("%s (%s) · %s at submit",
			pending.Name, humanize.Bytes(uint64(pending.Size())), strategy)
	}
	hint := "none selected"
	if focused {
		hint += " · enter opens the file picker"
	}
	return dimStyle.Render(hint)
}

// renderProgressRail draws the six-stage rail with the current stage
// highlighted.
func (a *App) renderProgressRail() string {
	current := a.wizard.Stage()
	parts := make([]string, 0, wizard.StageCount)
	for s := wizard.Stage(0); s < wizard.StageCount; s++ {
		label := fmt.Sprintf("%d %s", int(s)+1, s.Title())
		switch {
		case s == current:
			label = focusedStyle.Render("[" + label + "]")
		case s < current:
			label = chipStyle.Render(label)
		default:
			label = dimStyle.Render(label)
		}
		parts = append(parts, label)
	}
	return strings.Join(parts, "  ")
}

func stageHints(stage wizard.Stage) string {
	hints := []string{"tab/shift+tab fields", "ctrl+b back"}
	if stage == wizard.StageCount-1 {
		hints = append(hints, "ctrl+s submit")
	} else {
		hints = append(hints, "ctrl+n next")
	}
	switch stage {
	case wizard.StagePortfolio, wizard.StageCV:
		hints = append(hints, "enter on file row picks a file")
	case wizard.StageAssistant:
		hints = append(hints, "space toggles")
	}
	hints = append(hints, "ctrl+c quit")
	return dimStyle.Render(strings.Join(hints, "    "))
}
