package session

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mohit-sharma-1733/testing-platform/internal/models"
)

func testQuestions() []models.Question {
	return []models.Question{
		{ID: 1, QuestionType: models.SingleChoice, Options: []models.Option{{ID: 11}, {ID: 12}}, Points: 5},
		{ID: 2, QuestionType: models.MultipleChoice, Options: []models.Option{{ID: 21}, {ID: 22}, {ID: 23}}, Points: 10},
		{ID: 3, QuestionType: models.FillBlank, Points: 5},
		{ID: 4, QuestionType: models.YesNo, Options: []models.Option{{ID: 41}, {ID: 42}}, Points: 2},
	}
}

func TestAnswerStoreShapePerType(t *testing.T) {
	store := NewAnswerStore(testQuestions(), nil)

	store.Set(1, float64(12))
	store.Set(2, []any{float64(21), float64(23)})
	store.Set(3, "a free answer")
	store.Set(4, float64(41))

	require.Equal(t, models.AnswerChoice, store.Get(1).Kind())
	require.Equal(t, int64(12), store.Get(1).OptionID())

	require.Equal(t, models.AnswerMultiChoice, store.Get(2).Kind())
	require.Equal(t, []int64{21, 23}, store.Get(2).OptionIDs())

	require.Equal(t, models.AnswerText, store.Get(3).Kind())
	require.Equal(t, "a free answer", store.Get(3).Text())

	require.Equal(t, models.AnswerChoice, store.Get(4).Kind())
}

func TestAnswerStoreDefaults(t *testing.T) {
	store := NewAnswerStore(testQuestions(), nil)

	// multi-choice defaults to an empty set, free text to an empty string,
	// choice questions to unset
	require.Equal(t, models.AnswerMultiChoice, store.Get(2).Kind())
	require.Empty(t, store.Get(2).OptionIDs())
	require.Equal(t, models.AnswerText, store.Get(3).Kind())
	require.Equal(t, "", store.Get(3).Text())
	require.False(t, store.Get(1).IsAnswered())
}

func TestAnswerStoreUnknownQuestionIsNoOp(t *testing.T) {
	store := NewAnswerStore(testQuestions(), nil)

	require.False(t, store.Set(999, "anything"))
	require.Zero(t, store.Answered())
	require.False(t, store.Get(999).IsAnswered())
}

func TestAnswerStoreSeedsSavedAnswers(t *testing.T) {
	saved := map[int64]models.Answer{
		1: models.ChoiceAnswer(11),
		// backend handed back a scalar for a multi-choice question: coerced
		// to an empty set rather than kept as a scalar
		2:   models.ChoiceAnswer(21),
		999: models.TextAnswer("orphan"),
	}
	store := NewAnswerStore(testQuestions(), saved)

	require.Equal(t, int64(11), store.Get(1).OptionID())
	require.Equal(t, models.AnswerMultiChoice, store.Get(2).Kind())
	require.Empty(t, store.Get(2).OptionIDs())
	require.False(t, store.Get(999).IsAnswered())
}

func TestAnswerStoreReplacePreservesOthers(t *testing.T) {
	store := NewAnswerStore(testQuestions(), nil)

	store.Set(1, float64(11))
	store.Set(3, "first")
	store.Set(3, "second")

	require.Equal(t, "second", store.Get(3).Text())
	require.Equal(t, int64(11), store.Get(1).OptionID())
	require.Equal(t, 2, store.Answered())
}

func TestEncodeSubmissionOmitsUnanswered(t *testing.T) {
	store := NewAnswerStore(testQuestions(), nil)
	store.Set(2, []any{float64(22)})

	payload := store.EncodeSubmission()

	require.Len(t, payload, 1)
	require.Equal(t, []int64{22}, payload[2])
	require.NotContains(t, payload, int64(1))
	require.NotContains(t, payload, int64(3))
}
