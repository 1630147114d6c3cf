package models

// Attachment is an in-memory file destined for (or fetched from) a file field.
type Attachment struct {
	Filename string
	Data     []byte
}

// FormPart is one part of a multipart record form. File is nil for text parts.
type FormPart struct {
	Name  string
	Value string
	File  *Attachment
}

// Form is an ordered multipart record form. A name may repeat, which is how
// multi-file fields are sent.
type Form struct {
	parts []FormPart
}

// Add appends a text part.
func (f *Form) Add(name, value string) {
	f.parts = append(f.parts, FormPart{Name: name, Value: value})
}

// AddFile appends a file part under name.
func (f *Form) AddFile(name string, a Attachment) {
	f.parts = append(f.parts, FormPart{Name: name, File: &a})
}

// Parts returns the parts in insertion order.
func (f *Form) Parts() []FormPart {
	return f.parts
}

// Values returns every text value sent under name.
func (f *Form) Values(name string) []string {
	var out []string
	for _, p := range f.parts {
		if p.Name == name && p.File == nil {
			out = append(out, p.Value)
		}
	}
	return out
}

// Value returns the first text value sent under name and whether it exists.
func (f *Form) Value(name string) (string, bool) {
	for _, p := range f.parts {
		if p.Name == name && p.File == nil {
			return p.Value, true
		}
	}
	return "", false
}

// Files returns the attachments sent under name, in order.
func (f *Form) Files(name string) []Attachment {
	var out []Attachment
	for _, p := range f.parts {
		if p.Name == name && p.File != nil {
			out = append(out, *p.File)
		}
	}
	return out
}
