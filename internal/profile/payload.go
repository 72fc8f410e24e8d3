// internal/profile/payload.go
//
// Serializes a Record into the single multipart request the unified
// signup endpoint accepts: scalars as plain form fields, composites
// JSON-encoded, file fields either as binary parts (pending bytes) or as
// URL-valued fields (already-resolved durable references).

package profile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
	"strconv"
	"strings"
)

// Composite form field names, JSON-encoded inside the multipart body.
const (
	FieldSkills       = "skills"
	FieldContacts     = "network_contacts"
	FieldAvailability = "interview_availability"
)

// fileFields lists the file-carrying fields in submission order.
var fileFields = []string{FieldPortfolioFile, FieldCVFile}

// BuildForm serializes the record into a multipart body and returns the
// content type (with boundary) alongside it.
func (r *Record) BuildForm() (contentType string, body []byte, err error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if err := r.writeForm(w); err != nil {
		return "", nil, err
	}
	if err := w.Close(); err != nil {
		return "", nil, fmt.Errorf("profile: close form: %w", err)
	}
	return w.FormDataContentType(), buf.Bytes(), nil
}

func (r *Record) writeForm(w *multipart.Writer) error {
	scalars := []struct {
		field string
		value string
	}{
		{FieldFullName, r.FullName},
		{FieldDateOfBirth, r.DateOfBirth},
		{FieldEmail, r.Email},
		{FieldPassword, r.Password},
		{FieldMobileNumber, r.MobileNumber},
		{FieldAboutMe, r.AboutMe},
		{FieldProfilePicture, r.ProfilePicture},
		{FieldIdealJobIndustry, r.IdealJobIndustry},
		{FieldIdealJobTitle, r.IdealJobTitle},
		{FieldExperienceLevel, r.ExperienceLevel},
		{FieldContractType, r.ContractType},
		{FieldPortfolioLink, r.PortfolioLink},
		{FieldAIAssessment, strconv.FormatBool(r.AIAssessment)},
		{FieldOpenAI, strconv.FormatBool(r.OpenAI)},
		{FieldAIAssistant, strconv.FormatBool(r.AIAssistant)},
	}
	for _, s := range scalars {
		if err := w.WriteField(s.field, s.value); err != nil {
			return fmt.Errorf("profile: write %s: %w", s.field, err)
		}
	}

	composites := []struct {
		field string
		value any
	}{
		{FieldSkills, r.Skills},
		{FieldContacts, r.contactsOrEmpty()},
		{FieldAvailability, r.availabilityJSON()},
	}
	for _, c := range composites {
		encoded, err := json.Marshal(c.value)
		if err != nil {
			return fmt.Errorf("profile: encode %s: %w", c.field, err)
		}
		if err := w.WriteField(c.field, string(encoded)); err != nil {
			return fmt.Errorf("profile: write %s: %w", c.field, err)
		}
	}

	for _, field := range fileFields {
		if ref := r.RemoteRef(field); ref != "" {
			// Already uploaded through the eager path: send the durable
			// reference, never the raw bytes.
			if err := w.WriteField(field, ref); err != nil {
				return fmt.Errorf("profile: write %s: %w", field, err)
			}
			continue
		}
		pending := r.PendingFile(field)
		if pending == nil {
			continue
		}
		part, err := createFilePart(w, field, pending)
		if err != nil {
			return err
		}
		if _, err := part.Write(pending.Data); err != nil {
			return fmt.Errorf("profile: write %s payload: %w", field, err)
		}
	}
	return nil
}

func (r *Record) contactsOrEmpty() []Contact {
	if r.Contacts == nil {
		return []Contact{}
	}
	return r.Contacts
}

func (r *Record) availabilityJSON() Availability {
	av := r.Availability
	if av.Days == nil {
		av.Days = []string{}
	}
	return av
}

func createFilePart(w *multipart.Writer, field string, file *PendingFile) (io.Writer, error) {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		field, escapeQuotes(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, fmt.Errorf("profile: create %s part: %w", field, err)
	}
	return part, nil
}

var quoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
