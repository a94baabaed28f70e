package session

import (
	"github.com/mohit-sharma-1733/testing-platform/internal/models"
)

// AnswerStore holds the in-memory answer mapping for one taking session.
// Every value is normalized to the owning question's type on the way in.
//
// The store is not safe for concurrent use on its own; the Controller owns it
// and serializes access.
type AnswerStore struct {
	questions map[int64]*models.Question
	answers   map[int64]models.Answer
}

// NewAnswerStore builds a store for the given question sequence, seeding it
// with previously saved answers. Saved values are defensively coerced (a
// non-array value saved for a multi-choice question becomes an empty set) and
// answers for unknown question ids are discarded.
func NewAnswerStore(questions []models.Question, saved map[int64]models.Answer) *AnswerStore {
	store := &AnswerStore{
		questions: make(map[int64]*models.Question, len(questions)),
		answers:   make(map[int64]models.Answer),
	}
	for i := range questions {
		q := &questions[i]
		store.questions[q.ID] = q
	}
	for id, ans := range saved {
		q, ok := store.questions[id]
		if !ok {
			continue
		}
		coerced := ans.Coerce(q.QuestionType)
		if coerced.IsAnswered() {
			store.answers[id] = coerced
		}
	}
	return store
}

// Set coerces raw according to the target question's type and replaces the
// prior value. Writes targeting an unknown question id are silently ignored.
// Returns true when a value was recorded, signalling an autosave trigger.
func (s *AnswerStore) Set(questionID int64, raw any) bool {
	q, ok := s.questions[questionID]
	if !ok {
		return false
	}
	s.answers[questionID] = models.AnswerFromRaw(raw).Coerce(q.QuestionType)
	return true
}

// Get returns the current value for the question, or the empty default
// appropriate to its type: an empty set for multi-choice, an empty string for
// free text, unset for single-choice and yes/no.
func (s *AnswerStore) Get(questionID int64) models.Answer {
	if ans, ok := s.answers[questionID]; ok {
		return ans
	}
	q, ok := s.questions[questionID]
	if !ok {
		return models.NoAnswer()
	}
	switch q.QuestionType {
	case models.MultipleChoice:
		return models.MultiChoiceAnswer(nil)
	case models.FillBlank:
		return models.TextAnswer("")
	default:
		return models.NoAnswer()
	}
}

// Snapshot copies the recorded answer mapping for a persistence call
func (s *AnswerStore) Snapshot() map[int64]models.Answer {
	out := make(map[int64]models.Answer, len(s.answers))
	for id, ans := range s.answers {
		out[id] = ans
	}
	return out
}

// EncodeSubmission builds the final submission mapping. Questions with no
// recorded answer are omitted entirely, never sent as null or empty markers.
func (s *AnswerStore) EncodeSubmission() map[int64]any {
	out := make(map[int64]any, len(s.answers))
	for id, ans := range s.answers {
		q := s.questions[id]
		if value, ok := ans.EncodeForSubmission(q.QuestionType); ok {
			out[id] = value
		}
	}
	return out
}

// Answered reports how many questions have a recorded answer
func (s *AnswerStore) Answered() int {
	return len(s.answers)
}
