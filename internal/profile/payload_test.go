package profile

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"strings"
	"testing"
)

type parsedForm struct {
	values map[string]string
	files  map[string][]byte
	names  map[string]string
}

func parseForm(t *testing.T, contentType string, body []byte) parsedForm {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		t.Fatalf("parse content type: %v", err)
	}
	if mediaType != "multipart/form-data" {
		t.Fatalf("expected multipart/form-data, got %s", mediaType)
	}
	reader := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	form := parsedForm{
		values: map[string]string{},
		files:  map[string][]byte{},
		names:  map[string]string{},
	}
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("read part: %v", err)
		}
		data, err := io.ReadAll(part)
		if err != nil {
			t.Fatalf("read part body: %v", err)
		}
		if part.FileName() != "" {
			form.files[part.FormName()] = data
			form.names[part.FormName()] = part.FileName()
		} else {
			form.values[part.FormName()] = string(data)
		}
	}
	return form
}

func populatedRecord() *Record {
	r := NewRecord()
	r.Set(FieldFullName, "Ada Lovelace")
	r.Set(FieldEmail, "ada@example.com")
	r.Set(FieldPassword, "s3cret")
	r.Set(FieldMobileNumber, "+44 20 7946")
	r.SetBirthYear("1990")
	r.SetBirthMonth("6")
	r.SetBirthDay("2")
	r.Set(FieldAboutMe, "Analyst and engine programmer.")
	r.Set(FieldIdealJobIndustry, "Software")
	r.Set(FieldIdealJobTitle, "Engineer")
	r.Set(FieldExperienceLevel, "senior")
	r.Set(FieldContractType, "full-time")
	r.AddSkill("Go")
	r.SetTimeSlot("Flexible")
	r.ToggleDay("Mon")
	r.ToggleDay("Thu")
	r.Set(FieldPortfolioLink, "https://ada.dev")
	r.AddContact(Contact{FullName: "Charles Babbage", Email: "cb@engine.org", Position: "Mentor"})
	r.SetFlag(FieldAIAssistant, true)
	return r
}

func TestBuildFormSerializesAllStages(t *testing.T) {
	r := populatedRecord()
	r.SetPendingFile(FieldCVFile, &PendingFile{
		Name:        "cv.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF-1.4"),
	})

	contentType, body, err := r.BuildForm()
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	form := parseForm(t, contentType, body)

	if form.values[FieldFullName] != "Ada Lovelace" {
		t.Fatalf("full_name missing: %v", form.values)
	}
	if form.values[FieldDateOfBirth] != "1990-06-02" {
		t.Fatalf("date_of_birth not normalized: %q", form.values[FieldDateOfBirth])
	}
	if form.values[FieldAIAssistant] != "true" || form.values[FieldOpenAI] != "false" {
		t.Fatalf("flag serialization wrong: %v", form.values)
	}

	var skills []string
	if err := json.Unmarshal([]byte(form.values[FieldSkills]), &skills); err != nil {
		t.Fatalf("skills not JSON: %v", err)
	}
	if skills[len(skills)-1] != "Go" {
		t.Fatalf("expected added skill in composite, got %v", skills)
	}
	var contacts []Contact
	if err := json.Unmarshal([]byte(form.values[FieldContacts]), &contacts); err != nil {
		t.Fatalf("network_contacts not JSON: %v", err)
	}
	if len(contacts) != 1 || contacts[0].Position != "Mentor" {
		t.Fatalf("contacts composite wrong: %v", contacts)
	}
	var av Availability
	if err := json.Unmarshal([]byte(form.values[FieldAvailability]), &av); err != nil {
		t.Fatalf("interview_availability not JSON: %v", err)
	}
	if av.TimeSlot != "Flexible" || len(av.Days) != 2 {
		t.Fatalf("availability composite wrong: %+v", av)
	}

	if string(form.files[FieldCVFile]) != "%PDF-1.4" {
		t.Fatalf("cv binary part missing or corrupted")
	}
	if form.names[FieldCVFile] != "cv.pdf" {
		t.Fatalf("cv filename lost: %q", form.names[FieldCVFile])
	}
	if _, ok := form.files[FieldPortfolioFile]; ok {
		t.Fatalf("no portfolio file was staged; none should be sent")
	}
}

func TestBuildFormPrefersResolvedReference(t *testing.T) {
	r := populatedRecord()
	r.SetPendingFile(FieldCVFile, &PendingFile{Name: "cv.pdf", Data: []byte("raw")})
	r.ResolveAttachment(FieldCVFile, "https://store/cv/x.pdf")

	contentType, body, err := r.BuildForm()
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	form := parseForm(t, contentType, body)
	if _, ok := form.files[FieldCVFile]; ok {
		t.Fatalf("resolved field must not carry a binary part")
	}
	if form.values[FieldCVFile] != "https://store/cv/x.pdf" {
		t.Fatalf("expected durable reference field, got %q", form.values[FieldCVFile])
	}
}

func TestBuildFormEmptyCompositesAreArrays(t *testing.T) {
	r := NewRecord()
	_, body, err := r.BuildForm()
	if err != nil {
		t.Fatalf("build form: %v", err)
	}
	if strings.Contains(string(body), "null") {
		t.Fatalf("empty composites must encode as [] not null")
	}
}
