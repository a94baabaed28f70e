package models

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// AnswerKind discriminates the value shape held by an Answer
type AnswerKind int

const (
	// AnswerNone marks a question with no recorded answer
	AnswerNone AnswerKind = iota
	// AnswerChoice holds exactly one selected option id (single choice, yes/no)
	AnswerChoice
	// AnswerMultiChoice holds a set of selected option ids
	AnswerMultiChoice
	// AnswerText holds a free-text response
	AnswerText
)

// Answer is the variant-typed per-question answer value. Its shape is always
// coerced to the owning question's type before it is stored or transmitted.
type Answer struct {
	kind       AnswerKind
	option     int64
	selections []int64
	text       string
}

func NoAnswer() Answer {
	return Answer{kind: AnswerNone}
}

func ChoiceAnswer(optionID int64) Answer {
	return Answer{kind: AnswerChoice, option: optionID}
}

func MultiChoiceAnswer(optionIDs []int64) Answer {
	if optionIDs == nil {
		optionIDs = []int64{}
	}
	return Answer{kind: AnswerMultiChoice, selections: optionIDs}
}

func TextAnswer(text string) Answer {
	return Answer{kind: AnswerText, text: text}
}

func (a Answer) Kind() AnswerKind { return a.kind }

// IsAnswered reports whether the answer carries a recorded value. An empty
// multi-choice set and an empty text count as recorded; only AnswerNone does not.
func (a Answer) IsAnswered() bool { return a.kind != AnswerNone }

// OptionID returns the single selected option for choice answers
func (a Answer) OptionID() int64 { return a.option }

// OptionIDs returns the selection set for multi-choice answers
func (a Answer) OptionIDs() []int64 {
	if a.selections == nil {
		return []int64{}
	}
	return a.selections
}

func (a Answer) Text() string { return a.text }

// MarshalJSON encodes the answer in the backend wire shape: a bare number for
// a single selection, an array for a multi selection, a string for free text.
func (a Answer) MarshalJSON() ([]byte, error) {
	switch a.kind {
	case AnswerChoice:
		return json.Marshal(a.option)
	case AnswerMultiChoice:
		return json.Marshal(a.OptionIDs())
	case AnswerText:
		return json.Marshal(a.text)
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON sniffs the wire shape of a saved answer coming back from the
// backend. The result is shape-checked against the owning question later, via
// Coerce.
func (a *Answer) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to decode answer value: %w", err)
	}
	*a = AnswerFromRaw(raw)
	return nil
}

// AnswerFromRaw converts a decoded JSON value (or a value handed in by the
// question-rendering collaborator) into an Answer.
func AnswerFromRaw(raw any) Answer {
	switch v := raw.(type) {
	case nil:
		return NoAnswer()
	case Answer:
		return v
	case bool:
		// yes/no rendered as a boolean sentinel; 1 = yes, 0 = no
		if v {
			return ChoiceAnswer(1)
		}
		return ChoiceAnswer(0)
	case float64:
		return ChoiceAnswer(int64(v))
	case int:
		return ChoiceAnswer(int64(v))
	case int64:
		return ChoiceAnswer(v)
	case string:
		return TextAnswer(v)
	case []any:
		ids := make([]int64, 0, len(v))
		for _, item := range v {
			if id, ok := rawOptionID(item); ok {
				ids = append(ids, id)
			}
		}
		return MultiChoiceAnswer(ids)
	case []int64:
		return MultiChoiceAnswer(v)
	default:
		return NoAnswer()
	}
}

func rawOptionID(raw any) (int64, bool) {
	switch v := raw.(type) {
	case float64:
		return int64(v), true
	case int:
		return int64(v), true
	case int64:
		return v, true
	case string:
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			return id, true
		}
	}
	return 0, false
}

// Coerce forces the answer into the shape mandated by the question type.
// Mismatched shapes are never preserved: a scalar for a multi-choice question
// degrades to an empty selection set, and a set for a scalar question degrades
// to unset.
func (a Answer) Coerce(questionType QuestionType) Answer {
	switch questionType {
	case MultipleChoice:
		if a.kind == AnswerMultiChoice {
			return MultiChoiceAnswer(a.OptionIDs())
		}
		return MultiChoiceAnswer(nil)
	case SingleChoice, YesNo:
		switch a.kind {
		case AnswerChoice:
			return a
		case AnswerText:
			if id, err := strconv.ParseInt(a.text, 10, 64); err == nil {
				return ChoiceAnswer(id)
			}
		}
		return NoAnswer()
	case FillBlank:
		switch a.kind {
		case AnswerText:
			return a
		case AnswerChoice:
			return TextAnswer(strconv.FormatInt(a.option, 10))
		}
		return NoAnswer()
	default:
		return NoAnswer()
	}
}

// EncodeForSubmission produces the wire value the backend expects at final
// submission for the given question type: multi-choice is always a list (even
// with zero or one selections), single choice and yes/no a single resolved
// option id, free text verbatim. Unanswered questions return (nil, false) and
// must be omitted from the payload entirely.
func (a Answer) EncodeForSubmission(questionType QuestionType) (any, bool) {
	coerced := a.Coerce(questionType)
	switch questionType {
	case MultipleChoice:
		if a.kind == AnswerNone {
			return nil, false
		}
		return coerced.OptionIDs(), true
	case SingleChoice, YesNo:
		if coerced.kind != AnswerChoice {
			return nil, false
		}
		return coerced.option, true
	case FillBlank:
		if coerced.kind != AnswerText {
			return nil, false
		}
		return coerced.text, true
	default:
		return nil, false
	}
}
