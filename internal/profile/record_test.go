package profile

import (
	"reflect"
	"testing"
)

func TestNewRecordDefaults(t *testing.T) {
	r := NewRecord()
	if got := r.Availability.TimeSlot; got != DefaultTimeSlot {
		t.Fatalf("expected default time slot %q, got %q", DefaultTimeSlot, got)
	}
	if len(r.Skills) != 3 {
		t.Fatalf("expected seeded skills, got %v", r.Skills)
	}
	if len(r.Availability.Days) != 0 {
		t.Fatalf("expected no preselected days, got %v", r.Availability.Days)
	}
	if r.AIAssessment || r.OpenAI || r.AIAssistant {
		t.Fatalf("assistant flags must default to false")
	}
}

func TestSetAndGetKeyedScalars(t *testing.T) {
	r := NewRecord()
	r.Set(FieldFullName, "Ada Lovelace")
	r.Set(FieldEmail, "ada@example.com")
	r.Set(FieldPortfolioLink, "https://ada.dev")
	if r.FullName != "Ada Lovelace" {
		t.Fatalf("full name not applied: %q", r.FullName)
	}
	if got := r.Get(FieldEmail); got != "ada@example.com" {
		t.Fatalf("email round trip failed: %q", got)
	}
	// Unknown keys are dropped, not errors.
	r.Set("no_such_field", "x")
	if got := r.Get("no_such_field"); got != "" {
		t.Fatalf("unknown key should read empty, got %q", got)
	}
}

func TestAddSkillIsIdempotent(t *testing.T) {
	r := NewRecord()
	before := append([]string(nil), r.Skills...)
	r.AddSkill("Go")
	r.AddSkill("  Go  ")
	r.AddSkill("Go")
	want := append(before, "Go")
	if !reflect.DeepEqual(r.Skills, want) {
		t.Fatalf("expected %v, got %v", want, r.Skills)
	}
	// Case-sensitive equality: "go" is a different skill.
	r.AddSkill("go")
	if len(r.Skills) != len(want)+1 {
		t.Fatalf("lowercase variant should be distinct, got %v", r.Skills)
	}
}

func TestAddSkillIgnoresBlank(t *testing.T) {
	r := NewRecord()
	n := len(r.Skills)
	r.AddSkill("   ")
	if len(r.Skills) != n {
		t.Fatalf("blank skill should not be added: %v", r.Skills)
	}
}

func TestRemoveSkillAbsentIsNoop(t *testing.T) {
	r := NewRecord()
	before := append([]string(nil), r.Skills...)
	r.RemoveSkill("Fortran")
	if !reflect.DeepEqual(r.Skills, before) {
		t.Fatalf("removing an absent skill mutated the set: %v", r.Skills)
	}
	r.RemoveSkill(before[0])
	if !reflect.DeepEqual(r.Skills, before[1:]) {
		t.Fatalf("expected %v, got %v", before[1:], r.Skills)
	}
}

func TestToggleDayInvolution(t *testing.T) {
	r := NewRecord()
	r.ToggleDay("Mon")
	r.ToggleDay("Wed")
	snapshot := append([]string(nil), r.Availability.Days...)
	r.ToggleDay("Fri")
	r.ToggleDay("Fri")
	if !reflect.DeepEqual(r.Availability.Days, snapshot) {
		t.Fatalf("double toggle should restore prior state, got %v", r.Availability.Days)
	}
	if !r.HasDay("Mon") || r.HasDay("Fri") {
		t.Fatalf("unexpected day membership: %v", r.Availability.Days)
	}
}

func TestAddContactRequiresAllFields(t *testing.T) {
	r := NewRecord()
	partials := []Contact{
		{},
		{FullName: "Grace Hopper"},
		{FullName: "Grace Hopper", Email: "grace@navy.mil"},
		{Email: "grace@navy.mil", Position: "Mentor"},
		{FullName: "  ", Email: "grace@navy.mil", Position: "Mentor"},
	}
	for _, c := range partials {
		if r.AddContact(c) {
			t.Fatalf("partial contact %+v must not append", c)
		}
	}
	if len(r.Contacts) != 0 {
		t.Fatalf("partial input appended contacts: %v", r.Contacts)
	}
	if !r.AddContact(Contact{FullName: "Grace Hopper", Email: "grace@navy.mil", Position: "Mentor"}) {
		t.Fatalf("complete contact should append")
	}
	if len(r.Contacts) != 1 {
		t.Fatalf("expected one committed contact, got %d", len(r.Contacts))
	}
}

func TestRemoveContactByIndex(t *testing.T) {
	r := NewRecord()
	r.AddContact(Contact{FullName: "A", Email: "a@x", Position: "Manager"})
	r.AddContact(Contact{FullName: "B", Email: "b@x", Position: "Client"})
	r.RemoveContact(5) // out of range: ignored
	r.RemoveContact(-1)
	if len(r.Contacts) != 2 {
		t.Fatalf("out-of-range removal mutated the list: %v", r.Contacts)
	}
	r.RemoveContact(0)
	if len(r.Contacts) != 1 || r.Contacts[0].FullName != "B" {
		t.Fatalf("expected only B to remain, got %v", r.Contacts)
	}
}

func TestBirthDateComposedOnlyWhenComplete(t *testing.T) {
	r := NewRecord()
	r.SetBirthMonth("3")
	if r.DateOfBirth != "" {
		t.Fatalf("partial selection must not compose a date, got %q", r.DateOfBirth)
	}
	r.SetBirthDay("7")
	if r.DateOfBirth != "" {
		t.Fatalf("partial selection must not compose a date, got %q", r.DateOfBirth)
	}
	r.SetBirthYear("1994")
	if r.DateOfBirth != "1994-03-07" {
		t.Fatalf("expected normalized 1994-03-07, got %q", r.DateOfBirth)
	}
	r.SetBirthMonth("11")
	if r.DateOfBirth != "1994-11-07" {
		t.Fatalf("expected recomposed 1994-11-07, got %q", r.DateOfBirth)
	}
}

func TestResolveAttachmentDropsPendingBytes(t *testing.T) {
	r := NewRecord()
	r.SetPendingFile(FieldCVFile, &PendingFile{Name: "cv.pdf", Data: []byte("pdf")})
	if r.PendingFile(FieldCVFile) == nil {
		t.Fatalf("pending file should be staged")
	}
	r.ResolveAttachment(FieldCVFile, "https://store/cv/x.pdf")
	if r.PendingFile(FieldCVFile) != nil {
		t.Fatalf("resolving must discard pending bytes")
	}
	if got := r.RemoteRef(FieldCVFile); got != "https://store/cv/x.pdf" {
		t.Fatalf("remote ref lost: %q", got)
	}
	// Later-arriving raw bytes are dropped once a reference exists.
	r.SetPendingFile(FieldCVFile, &PendingFile{Name: "cv2.pdf", Data: []byte("pdf2")})
	if r.PendingFile(FieldCVFile) != nil {
		t.Fatalf("raw bytes must not displace a resolved reference")
	}
}

func TestClearPendingFile(t *testing.T) {
	r := NewRecord()
	r.SetPendingFile(FieldPortfolioFile, &PendingFile{Name: "deck.zip", Data: []byte("zip")})
	r.ClearPendingFile(FieldPortfolioFile)
	if r.PendingFile(FieldPortfolioFile) != nil {
		t.Fatalf("pending file should be cleared")
	}
}

func TestResetRestoresDefaultShape(t *testing.T) {
	r := NewRecord()
	r.Set(FieldFullName, "X")
	r.AddSkill("Go")
	r.ToggleDay("Tue")
	r.AddContact(Contact{FullName: "A", Email: "a@x", Position: "Other"})
	r.SetPendingFile(FieldCVFile, &PendingFile{Name: "cv.pdf", Data: []byte("p")})
	r.SetFlag(FieldOpenAI, true)

	r.Reset()

	fresh := NewRecord()
	if !reflect.DeepEqual(r.Skills, fresh.Skills) {
		t.Fatalf("skills not reset: %v", r.Skills)
	}
	if r.FullName != "" || r.OpenAI || len(r.Contacts) != 0 {
		t.Fatalf("record not reset: %+v", r)
	}
	if r.PendingFile(FieldCVFile) != nil || r.RemoteRef(FieldCVFile) != "" {
		t.Fatalf("attachments not reset")
	}
	if r.Availability.TimeSlot != DefaultTimeSlot || len(r.Availability.Days) != 0 {
		t.Fatalf("availability not reset: %+v", r.Availability)
	}
}
