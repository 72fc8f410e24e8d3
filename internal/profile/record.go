// internal/profile/record.go
//
// The Record is the single mutable aggregate edited across all wizard
// stages. Every input handler writes into it; the wizard controller reads
// it back out when the terminal submission fires. Mutations are total —
// bad input is dropped or normalized, never returned as an error — so the
// UI layer can wire key handlers straight to these methods.

package profile

import (
	"fmt"
	"strconv"
	"strings"
)

// Form field keys shared with the backend contract.
const (
	FieldFullName         = "full_name"
	FieldDateOfBirth      = "date_of_birth"
	FieldEmail            = "email"
	FieldPassword         = "password"
	FieldMobileNumber     = "mobile_number"
	FieldAboutMe          = "about_me"
	FieldProfilePicture   = "profile_picture"
	FieldIdealJobIndustry = "ideal_job_industry"
	FieldIdealJobTitle    = "ideal_job_title"
	FieldExperienceLevel  = "experience_level"
	FieldContractType     = "contract_type"
	FieldPortfolioLink    = "portfolio_link"
	FieldPortfolioFile    = "portfolio_file"
	FieldCVFile           = "cv_file"
	FieldAIAssessment     = "ai_assessment_enabled"
	FieldOpenAI           = "openai_enabled"
	FieldAIAssistant      = "ai_assistant_enabled"
)

// DefaultTimeSlot is the preselected interview window for new records.
const DefaultTimeSlot = "9 AM - 5 PM"

// defaultSkills seeds a fresh record; the signup flow ships with these
// three placeholder skills so the skill list never renders empty.
var defaultSkills = []string{"JavaScript", "Data Analysis", "UI Design"}

// PendingFile is a locally selected, not-yet-uploaded file payload.
type PendingFile struct {
	Name        string
	ContentType string
	Data        []byte
}

// Size reports the payload size in bytes.
func (f *PendingFile) Size() int64 {
	if f == nil {
		return 0
	}
	return int64(len(f.Data))
}

// Attachment tracks one file field. Exactly one of Pending and RemoteURL
// is authoritative: once a durable reference exists, pending bytes for the
// same field are discarded and later selections are ignored.
type Attachment struct {
	Pending   *PendingFile
	RemoteURL string
}

// Contact is one committed professional-network entry.
type Contact struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
	Position string `json:"position"`
}

// Complete reports whether every contact field is non-empty after trimming.
func (c Contact) Complete() bool {
	return strings.TrimSpace(c.FullName) != "" &&
		strings.TrimSpace(c.Email) != "" &&
		strings.TrimSpace(c.Position) != ""
}

// Availability is the interview-availability value object.
type Availability struct {
	TimeSlot string   `json:"time_slot"`
	Days     []string `json:"days"`
}

// birthParts holds partial birth-date selections until all three
// components are chosen; only then is DateOfBirth composed.
type birthParts struct {
	year  string
	month string
	day   string
}

// Record spans all six stages of the signup flow.
type Record struct {
	// Stage 1 — identity and credentials.
	FullName     string
	DateOfBirth  string
	Email        string
	Password     string
	MobileNumber string

	// Stage 2 — professional overview.
	AboutMe          string
	ProfilePicture   string
	IdealJobIndustry string
	IdealJobTitle    string
	ExperienceLevel  string
	ContractType     string
	Skills           []string
	Availability     Availability

	// Stage 3 — portfolio.
	PortfolioLink string

	// Stage 4 — professional network.
	Contacts []Contact

	// Stage 6 — assistant flags.
	AIAssessment bool
	OpenAI       bool
	AIAssistant  bool

	attachments map[string]*Attachment
	birth       birthParts
}

// NewRecord returns a record in its default shape.
func NewRecord() *Record {
	r := &Record{}
	r.reset()
	return r
}

func (r *Record) reset() {
	*r = Record{
		Skills:       append([]string(nil), defaultSkills...),
		Availability: Availability{TimeSlot: DefaultTimeSlot},
		attachments:  map[string]*Attachment{},
	}
}

// Reset returns the record to its default shape. Called after a successful
// terminal submission.
func (r *Record) Reset() {
	r.reset()
}

// Set applies a keyed scalar update. Unknown keys are ignored.
func (r *Record) Set(field, value string) {
	switch field {
	case FieldFullName:
		r.FullName = value
	case FieldEmail:
		r.Email = value
	case FieldPassword:
		r.Password = value
	case FieldMobileNumber:
		r.MobileNumber = value
	case FieldAboutMe:
		r.AboutMe = value
	case FieldProfilePicture:
		r.ProfilePicture = value
	case FieldIdealJobIndustry:
		r.IdealJobIndustry = value
	case FieldIdealJobTitle:
		r.IdealJobTitle = value
	case FieldExperienceLevel:
		r.ExperienceLevel = value
	case FieldContractType:
		r.ContractType = value
	case FieldPortfolioLink:
		r.PortfolioLink = value
	}
}

// Get reads a keyed scalar back out; the inverse of Set.
func (r *Record) Get(field string) string {
	switch field {
	case FieldFullName:
		return r.FullName
	case FieldDateOfBirth:
		return r.DateOfBirth
	case FieldEmail:
		return r.Email
	case FieldPassword:
		return r.Password
	case FieldMobileNumber:
		return r.MobileNumber
	case FieldAboutMe:
		return r.AboutMe
	case FieldProfilePicture:
		return r.ProfilePicture
	case FieldIdealJobIndustry:
		return r.IdealJobIndustry
	case FieldIdealJobTitle:
		return r.IdealJobTitle
	case FieldExperienceLevel:
		return r.ExperienceLevel
	case FieldContractType:
		return r.ContractType
	case FieldPortfolioLink:
		return r.PortfolioLink
	}
	return ""
}

// SetFlag toggles one of the assistant feature flags by key.
func (r *Record) SetFlag(field string, on bool) {
	switch field {
	case FieldAIAssessment:
		r.AIAssessment = on
	case FieldOpenAI:
		r.OpenAI = on
	case FieldAIAssistant:
		r.AIAssistant = on
	}
}

// Flag reads an assistant feature flag by key.
func (r *Record) Flag(field string) bool {
	switch field {
	case FieldAIAssessment:
		return r.AIAssessment
	case FieldOpenAI:
		return r.OpenAI
	case FieldAIAssistant:
		return r.AIAssistant
	}
	return false
}

// AddSkill appends a trimmed skill unless it is already present.
// Equality is case-sensitive. Adding a duplicate or blank is a no-op.
func (r *Record) AddSkill(skill string) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return
	}
	for _, existing := range r.Skills {
		if existing == skill {
			return
		}
	}
	r.Skills = append(r.Skills, skill)
}

// RemoveSkill drops a skill from the set; removing an absent skill is a
// no-op.
func (r *Record) RemoveSkill(skill string) {
	for i, existing := range r.Skills {
		if existing == skill {
			r.Skills = append(r.Skills[:i], r.Skills[i+1:]...)
			return
		}
	}
}

// SetTimeSlot updates the interview time window.
func (r *Record) SetTimeSlot(slot string) {
	r.Availability.TimeSlot = slot
}

// ToggleDay flips a weekday tag in the availability set. Toggling the same
// day twice restores the prior state.
func (r *Record) ToggleDay(day string) {
	for i, existing := range r.Availability.Days {
		if existing == day {
			r.Availability.Days = append(r.Availability.Days[:i], r.Availability.Days[i+1:]...)
			return
		}
	}
	r.Availability.Days = append(r.Availability.Days, day)
}

// HasDay reports whether a weekday tag is currently selected.
func (r *Record) HasDay(day string) bool {
	for _, existing := range r.Availability.Days {
		if existing == day {
			return true
		}
	}
	return false
}

// AddContact appends a contact only when all three fields are non-empty.
// It reports whether the contact was committed, so the UI can decide
// whether to clear its scratch inputs.
func (r *Record) AddContact(c Contact) bool {
	if !c.Complete() {
		return false
	}
	c.FullName = strings.TrimSpace(c.FullName)
	c.Email = strings.TrimSpace(c.Email)
	c.Position = strings.TrimSpace(c.Position)
	r.Contacts = append(r.Contacts, c)
	return true
}

// RemoveContact drops the committed contact at index; out-of-range indexes
// are ignored.
func (r *Record) RemoveContact(index int) {
	if index < 0 || index >= len(r.Contacts) {
		return
	}
	r.Contacts = append(r.Contacts[:index], r.Contacts[index+1:]...)
}

// SetBirthYear records a partial birth-date selection.
func (r *Record) SetBirthYear(year string) {
	r.birth.year = strings.TrimSpace(year)
	r.composeBirthDate()
}

// SetBirthMonth records a partial birth-date selection.
func (r *Record) SetBirthMonth(month string) {
	r.birth.month = strings.TrimSpace(month)
	r.composeBirthDate()
}

// SetBirthDay records a partial birth-date selection.
func (r *Record) SetBirthDay(day string) {
	r.birth.day = strings.TrimSpace(day)
	r.composeBirthDate()
}

// composeBirthDate assembles the normalized YYYY-MM-DD string once year,
// month and day have all been chosen. Partial selections leave
// DateOfBirth untouched.
func (r *Record) composeBirthDate() {
	if r.birth.year == "" || r.birth.month == "" || r.birth.day == "" {
		return
	}
	r.DateOfBirth = fmt.Sprintf("%s-%s-%s", r.birth.year, pad2(r.birth.month), pad2(r.birth.day))
}

func pad2(value string) string {
	if n, err := strconv.Atoi(value); err == nil {
		return fmt.Sprintf("%02d", n)
	}
	return value
}

// SetPendingFile stages raw file bytes for a file field. If the field has
// already been resolved to a durable reference, the new bytes are dropped:
// the remote reference stays authoritative.
func (r *Record) SetPendingFile(field string, file *PendingFile) {
	att := r.attachment(field)
	if att.RemoteURL != "" {
		return
	}
	att.Pending = file
}

// ClearPendingFile removes locally staged bytes for a file field.
func (r *Record) ClearPendingFile(field string) {
	r.attachment(field).Pending = nil
}

// ResolveAttachment records the durable reference returned by the object
// store and discards any pending bytes for the field, so the terminal
// submission never sends both.
func (r *Record) ResolveAttachment(field, url string) {
	att := r.attachment(field)
	att.RemoteURL = url
	att.Pending = nil
}

// PendingFile returns locally staged bytes for a field, if any.
func (r *Record) PendingFile(field string) *PendingFile {
	if att, ok := r.attachments[field]; ok {
		return att.Pending
	}
	return nil
}

// RemoteRef returns the durable reference for a field, if resolved.
func (r *Record) RemoteRef(field string) string {
	if att, ok := r.attachments[field]; ok {
		return att.RemoteURL
	}
	return ""
}

func (r *Record) attachment(field string) *Attachment {
	if r.attachments == nil {
		r.attachments = map[string]*Attachment{}
	}
	att, ok := r.attachments[field]
	if !ok {
		att = &Attachment{}
		r.attachments[field] = att
	}
	return att
}
