package models

type ItemType string

const (
	ItemSection  ItemType = "section"
	ItemQuestion ItemType = "question"
)

type FieldType string

const (
	FieldText     FieldType = "text"
	FieldEmail    FieldType = "email"
	FieldNumber   FieldType = "number"
	FieldTextarea FieldType = "textarea"
	FieldSelect   FieldType = "select"
	FieldRadio    FieldType = "radio"
	FieldCheckbox FieldType = "checkbox"
	FieldFile     FieldType = "file"
)

// FormField is either a section marker or a question. Answers are keyed by
// ID, which stays stable when a host edits the label.
type FormField struct {
	ID           string           `json:"id"`
	ItemType     ItemType         `json:"item_type"`
	Label        string           `json:"label"`
	Description  string           `json:"description,omitempty"`
	ImageURL     string           `json:"image_url,omitempty"`
	Type         FieldType        `json:"type,omitempty"`
	Required     bool             `json:"required"`
	Validation   *FieldValidation `json:"validation,omitempty"`
	Min          *float64         `json:"min,omitempty"`
	Max          *float64         `json:"max,omitempty"`
	Options      []string         `json:"options,omitempty"`
	FileSettings *FileSettings    `json:"file_settings,omitempty"`
}

type FieldValidation struct {
	MinLength    *int   `json:"min_length,omitempty"`
	MaxLength    *int   `json:"max_length,omitempty"`
	Pattern      string `json:"pattern,omitempty"`
	PatternError string `json:"pattern_error,omitempty"`
}

type FileSettings struct {
	AcceptedTypes []string `json:"accepted_types,omitempty"`
	MaxSizeMB     float64  `json:"max_size_mb,omitempty"`
}

// IsSection treats an empty item type as a question, matching catalog defaults.
func (f FormField) IsSection() bool {
	return f.ItemType == ItemSection
}
