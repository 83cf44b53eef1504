package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Answers maps a form field ID to the attendee's answer.
type Answers map[string]AnswerValue

// AnswerValue holds exactly one of Text, List or File.
type AnswerValue struct {
	Text string
	List []string
	File *FileRef

	kind answerKind
}

type answerKind uint8

const (
	answerNone answerKind = iota
	answerText
	answerList
	answerFile
)

// FileRef points at an upload kept by the external object store.
type FileRef struct {
	Name      string `json:"name"`
	Ref       string `json:"ref"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
}

func TextAnswer(s string) AnswerValue    { return AnswerValue{Text: s, kind: answerText} }
func ListAnswer(v ...string) AnswerValue { return AnswerValue{List: v, kind: answerList} }
func FileAnswer(f FileRef) AnswerValue   { return AnswerValue{File: &f, kind: answerFile} }
func (v AnswerValue) IsText() bool       { return v.kind == answerText }
func (v AnswerValue) IsList() bool       { return v.kind == answerList }
func (v AnswerValue) IsFile() bool       { return v.kind == answerFile }

// IsEmpty reports whether the value counts as "not answered".
func (v AnswerValue) IsEmpty() bool {
	switch v.kind {
	case answerText:
		return strings.TrimSpace(v.Text) == ""
	case answerList:
		return len(v.List) == 0
	case answerFile:
		return v.File == nil
	default:
		return true
	}
}

// String renders the value for display and identity extraction.
func (v AnswerValue) String() string {
	switch v.kind {
	case answerText:
		return v.Text
	case answerList:
		return strings.Join(v.List, ", ")
	case answerFile:
		return v.File.Name
	default:
		return ""
	}
}

func (v AnswerValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case answerText:
		return json.Marshal(v.Text)
	case answerList:
		return json.Marshal(v.List)
	case answerFile:
		return json.Marshal(v.File)
	default:
		return []byte("null"), nil
	}
}

func (v *AnswerValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = AnswerValue{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = TextAnswer(s)
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		list := make([]string, 0, len(raw))
		for _, item := range raw {
			var elem AnswerValue
			if err := elem.UnmarshalJSON(item); err != nil {
				return err
			}
			if !elem.IsText() {
				return errors.New("answer list may only contain scalar values")
			}
			list = append(list, elem.Text)
		}
		*v = ListAnswer(list...)
	case '{':
		var f FileRef
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*v = FileAnswer(f)
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*v = TextAnswer(strconv.FormatBool(b))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer value: %w", err)
		}
		*v = TextAnswer(n.String())
	}
	return nil
}
