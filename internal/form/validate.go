// Package form validates attendee answers against an event's form schema.
package form

import (
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/Eursukkul/registration-engine/internal/models"
	"github.com/Eursukkul/registration-engine/pkg/validator"
)

var ErrPageOutOfRange = errors.New("form page out of range")

// FieldError reports the first question that failed validation.
type FieldError struct {
	FieldID string `json:"field_id"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	patternMu    sync.RWMutex
	patternCache = map[string]*regexp.Regexp{}
)

// Validate checks answers against every question in fields and returns the
// first failure, or nil.
func Validate(fields []models.FormField, answers models.Answers) *FieldError {
	for _, field := range fields {
		if field.IsSection() {
			continue
		}
		if ferr := validateField(field, answers[field.ID]); ferr != nil {
			return ferr
		}
	}
	return nil
}

// ValidatePage validates only the questions on the given page.
func ValidatePage(fields []models.FormField, page int, answers models.Answers) (*FieldError, error) {
	pages := Pages(fields)
	if page < 0 || page >= len(pages) {
		return nil, ErrPageOutOfRange
	}
	return Validate(pages[page], answers), nil
}

// Pages splits the schema at section markers. Questions before the first
// section form their own page; a section with no questions is dropped.
func Pages(fields []models.FormField) [][]models.FormField {
	var pages [][]models.FormField
	var current []models.FormField
	for _, field := range fields {
		if field.IsSection() {
			if len(current) > 0 {
				pages = append(pages, current)
			}
			current = nil
			continue
		}
		current = append(current, field)
	}
	if len(current) > 0 {
		pages = append(pages, current)
	}
	return pages
}

// CheckSchema rejects schemas whose question ids or labels collide.
func CheckSchema(fields []models.FormField) error {
	ids := make(map[string]struct{}, len(fields))
	labels := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if field.IsSection() {
			continue
		}
		if field.ID == "" {
			return fmt.Errorf("question %q has no id", field.Label)
		}
		if _, ok := ids[field.ID]; ok {
			return fmt.Errorf("duplicate question id %q", field.ID)
		}
		ids[field.ID] = struct{}{}

		label := strings.ToLower(strings.TrimSpace(field.Label))
		if _, ok := labels[label]; ok {
			return fmt.Errorf("duplicate question label %q", field.Label)
		}
		labels[label] = struct{}{}
	}
	return nil
}

func validateField(field models.FormField, value models.AnswerValue) *FieldError {
	fail := func(msg string) *FieldError {
		return &FieldError{FieldID: field.ID, Field: field.Label, Message: msg}
	}

	if value.IsEmpty() {
		if field.Required {
			return fail("This field is required")
		}
		return nil
	}

	if value.IsText() {
		if msg := checkText(field, value.Text); msg != "" {
			return fail(msg)
		}
	}

	if field.Type == models.FieldNumber && value.IsText() {
		if msg := checkRange(field, value.Text); msg != "" {
			return fail(msg)
		}
	}

	if msg := checkKind(field, value); msg != "" {
		return fail(msg)
	}
	return nil
}

func checkText(field models.FormField, text string) string {
	rules := field.Validation
	if rules == nil {
		return ""
	}
	length := utf8.RuneCountInString(text)
	if rules.MinLength != nil && length < *rules.MinLength {
		return fmt.Sprintf("Must be at least %d characters", *rules.MinLength)
	}
	if rules.MaxLength != nil && length > *rules.MaxLength {
		return fmt.Sprintf("Must be at most %d characters", *rules.MaxLength)
	}
	if rules.Pattern != "" {
		re := compilePattern(rules.Pattern)
		if re != nil && !re.MatchString(text) {
			if rules.PatternError != "" {
				return rules.PatternError
			}
			return "Invalid format"
		}
	}
	return ""
}

func checkRange(field models.FormField, text string) string {
	n, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return ""
	}
	if field.Min != nil && n < *field.Min {
		return fmt.Sprintf("Must be at least %s", strconv.FormatFloat(*field.Min, 'f', -1, 64))
	}
	if field.Max != nil && n > *field.Max {
		return fmt.Sprintf("Must be at most %s", strconv.FormatFloat(*field.Max, 'f', -1, 64))
	}
	return ""
}

// checkKind applies the type specific rules that run after the generic ones.
func checkKind(field models.FormField, value models.AnswerValue) string {
	switch field.Type {
	case models.FieldEmail:
		if !value.IsText() || !validator.IsEmail(strings.TrimSpace(value.Text)) {
			return "Enter a valid email address"
		}
	case models.FieldSelect, models.FieldRadio:
		if len(field.Options) == 0 {
			return ""
		}
		if !value.IsText() || !slices.Contains(field.Options, value.Text) {
			return "Choose one of the listed options"
		}
	case models.FieldCheckbox:
		if len(field.Options) == 0 {
			return ""
		}
		choices := value.List
		if value.IsText() {
			choices = []string{value.Text}
		}
		for _, choice := range choices {
			if !slices.Contains(field.Options, choice) {
				return fmt.Sprintf("%q is not one of the listed options", choice)
			}
		}
	case models.FieldFile:
		if !value.IsFile() {
			return "Upload a file"
		}
		return checkFile(field.FileSettings, value.File)
	}
	return ""
}

func checkFile(settings *models.FileSettings, file *models.FileRef) string {
	if settings == nil {
		return ""
	}
	if len(settings.AcceptedTypes) > 0 && !acceptsType(settings.AcceptedTypes, file) {
		return "File type is not accepted"
	}
	if settings.MaxSizeMB > 0 && float64(file.SizeBytes) > settings.MaxSizeMB*1024*1024 {
		return fmt.Sprintf("File must be smaller than %s MB", strconv.FormatFloat(settings.MaxSizeMB, 'f', -1, 64))
	}
	return ""
}

// acceptsType understands exact mime types, wildcards like "image/*" and
// extensions like ".pdf".
func acceptsType(accepted []string, file *models.FileRef) bool {
	mime := strings.ToLower(file.MimeType)
	name := strings.ToLower(file.Name)
	for _, a := range accepted {
		a = strings.ToLower(strings.TrimSpace(a))
		switch {
		case strings.HasPrefix(a, "."):
			if strings.HasSuffix(name, a) {
				return true
			}
		case strings.HasSuffix(a, "/*"):
			if strings.HasPrefix(mime, strings.TrimSuffix(a, "*")) {
				return true
			}
		case a == mime:
			return true
		}
	}
	return false
}

// compilePattern returns nil for patterns that do not compile; a broken
// pattern in the schema never blocks a submission.
func compilePattern(pattern string) *regexp.Regexp {
	patternMu.RLock()
	re, ok := patternCache[pattern]
	patternMu.RUnlock()
	if ok {
		return re
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		re = nil
	}
	patternMu.Lock()
	patternCache[pattern] = re
	patternMu.Unlock()
	return re
}
