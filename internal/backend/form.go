// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package backend

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/textproto"
)

type field struct {
	name  string
	value string
}

// fieldSet keeps fields in first-set order. Setting an existing name
// replaces its value; empty values are ignored.
type fieldSet []field

func (s *fieldSet) set(name, value string) {
	if value == "" {
		return
	}
	for i := range *s {
		if (*s)[i].name == name {
			(*s)[i].value = value
			return
		}
	}
	*s = append(*s, field{name: name, value: value})
}

type filePart struct {
	field       string
	filename    string
	contentType string
	data        []byte
}

type form struct {
	fields []field
	files  []filePart
}

func (f form) names() []string {
	names := make([]string, 0, len(f.fields)+len(f.files))
	for _, fl := range f.fields {
		names = append(names, fl.name)
	}
	for _, fp := range f.files {
		names = append(names, fp.field)
	}
	return names
}

// encode writes the multipart body. File parts carry their own
// Content-Type, which multipart.Writer.CreateFormFile cannot set.
func (f form) encode() (io.Reader, string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	for _, fl := range f.fields {
		if err := mw.WriteField(fl.name, fl.value); err != nil {
			return nil, "", fmt.Errorf("writing field %s: %w", fl.name, err)
		}
	}
	for _, fp := range f.files {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, fp.field, fp.filename))
		h.Set("Content-Type", fp.contentType)
		part, err := mw.CreatePart(h)
		if err != nil {
			return nil, "", fmt.Errorf("creating part %s: %w", fp.field, err)
		}
		if _, err := part.Write(fp.data); err != nil {
			return nil, "", fmt.Errorf("writing part %s: %w", fp.field, err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, "", fmt.Errorf("closing form: %w", err)
	}
	return &buf, mw.FormDataContentType(), nil
}
