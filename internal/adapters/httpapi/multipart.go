package httpapi

import (
	"bytes"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
)

type FormField struct {
	Name  string
	Value string
}

type FormFile struct {
	Field    string
	Filename string
	Data     []byte
}

// Multipart is a multipart/form-data request body. It is encoded once so a
// retried request re-sends the same bytes.
type Multipart struct {
	Fields []FormField
	Files  []FormFile
}

func (m *Multipart) AddField(name, value string) {
	m.Fields = append(m.Fields, FormField{Name: name, Value: value})
}

func (m *Multipart) AddFile(field, filename string, data []byte) {
	m.Files = append(m.Files, FormFile{Field: field, Filename: filename, Data: data})
}

func (m *Multipart) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, field := range m.Fields {
		if err := writer.WriteField(field.Name, field.Value); err != nil {
			return nil, "", fmt.Errorf("write field %q: %w", field.Name, err)
		}
	}

	for _, file := range m.Files {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`, escapeQuotes(file.Field), escapeQuotes(file.Filename)))
		header.Set("Content-Type", http.DetectContentType(file.Data))

		part, err := writer.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create file part %q: %w", file.Filename, err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return nil, "", fmt.Errorf("write file part %q: %w", file.Filename, err)
		}
	}

	if err := writer.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart writer: %w", err)
	}

	return buf.Bytes(), writer.FormDataContentType(), nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
