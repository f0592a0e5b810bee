package session

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
)

// FormData is a multipart payload built field by field.
type FormData struct {
	fields []formField
	files  []formFile
}

type formField struct {
	name  string
	value string
}

type formFile struct {
	field    string
	filename string
	reader   io.Reader
}

// NewFormData returns an empty form.
func NewFormData() *FormData {
	return &FormData{}
}

// Append adds a text field.
func (f *FormData) Append(name, value string) *FormData {
	f.fields = append(f.fields, formField{name: name, value: value})
	return f
}

// AppendFile adds a file part read from r.
func (f *FormData) AppendFile(field, filename string, r io.Reader) *FormData {
	f.files = append(f.files, formFile{field: field, filename: filename, reader: r})
	return f
}

func (f *FormData) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for _, field := range f.fields {
		if err := w.WriteField(field.name, field.value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %q: %w", field.name, err)
		}
	}
	for _, file := range f.files {
		part, err := w.CreateFormFile(file.field, file.filename)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create form file %q: %w", file.field, err)
		}
		if _, err := io.Copy(part, file.reader); err != nil {
			return nil, "", fmt.Errorf("failed to copy form file %q: %w", file.field, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to close multipart writer: %w", err)
	}

	return &buf, w.FormDataContentType(), nil
}
