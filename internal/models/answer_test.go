package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAnswerFromRaw(t *testing.T) {
	t.Run("number becomes a single choice", func(t *testing.T) {
		ans := AnswerFromRaw(float64(42))
		require.Equal(t, AnswerChoice, ans.Kind())
		require.Equal(t, int64(42), ans.OptionID())
	})

	t.Run("string becomes free text", func(t *testing.T) {
		ans := AnswerFromRaw("blue whale")
		require.Equal(t, AnswerText, ans.Kind())
		require.Equal(t, "blue whale", ans.Text())
	})

	t.Run("array becomes a selection set", func(t *testing.T) {
		ans := AnswerFromRaw([]any{float64(1), float64(3), "7"})
		require.Equal(t, AnswerMultiChoice, ans.Kind())
		require.Equal(t, []int64{1, 3, 7}, ans.OptionIDs())
	})

	t.Run("nil is unanswered", func(t *testing.T) {
		ans := AnswerFromRaw(nil)
		require.False(t, ans.IsAnswered())
	})
}

func TestAnswerCoerce(t *testing.T) {
	t.Run("scalar saved for multi-choice degrades to empty set", func(t *testing.T) {
		ans := ChoiceAnswer(5).Coerce(MultipleChoice)
		require.Equal(t, AnswerMultiChoice, ans.Kind())
		require.Empty(t, ans.OptionIDs())
	})

	t.Run("set saved for single choice degrades to unset", func(t *testing.T) {
		ans := MultiChoiceAnswer([]int64{1, 2}).Coerce(SingleChoice)
		require.False(t, ans.IsAnswered())
	})

	t.Run("numeric text resolves to an option for single choice", func(t *testing.T) {
		ans := TextAnswer("17").Coerce(SingleChoice)
		require.Equal(t, AnswerChoice, ans.Kind())
		require.Equal(t, int64(17), ans.OptionID())
	})

	t.Run("multi-choice keeps its selections", func(t *testing.T) {
		ans := MultiChoiceAnswer([]int64{2, 4}).Coerce(MultipleChoice)
		require.Equal(t, []int64{2, 4}, ans.OptionIDs())
	})

	t.Run("free text passes through verbatim", func(t *testing.T) {
		ans := TextAnswer(" kept as-is ").Coerce(FillBlank)
		require.Equal(t, " kept as-is ", ans.Text())
	})
}

func TestAnswerJSONRoundTrip(t *testing.T) {
	t.Run("wire shapes", func(t *testing.T) {
		cases := map[string]struct {
			answer Answer
			want   string
		}{
			"single choice": {ChoiceAnswer(3), "3"},
			"multi choice":  {MultiChoiceAnswer([]int64{1, 2}), "[1,2]"},
			"empty multi":   {MultiChoiceAnswer(nil), "[]"},
			"free text":     {TextAnswer("hi"), `"hi"`},
			"unanswered":    {NoAnswer(), "null"},
		}
		for name, tc := range cases {
			data, err := json.Marshal(tc.answer)
			require.NoError(t, err, name)
			require.JSONEq(t, tc.want, string(data), name)
		}
	})

	t.Run("saved answers decode by shape", func(t *testing.T) {
		var saved map[int64]Answer
		err := json.Unmarshal([]byte(`{"1": 4, "2": [5, 6], "3": "free text"}`), &saved)
		require.NoError(t, err)
		require.Equal(t, AnswerChoice, saved[1].Kind())
		require.Equal(t, AnswerMultiChoice, saved[2].Kind())
		require.Equal(t, AnswerText, saved[3].Kind())
	})
}

func TestEncodeForSubmission(t *testing.T) {
	t.Run("multi-choice with one selection is still a list", func(t *testing.T) {
		value, ok := MultiChoiceAnswer([]int64{9}).EncodeForSubmission(MultipleChoice)
		require.True(t, ok)
		require.Equal(t, []int64{9}, value)
	})

	t.Run("single choice is a bare option id", func(t *testing.T) {
		value, ok := ChoiceAnswer(2).EncodeForSubmission(SingleChoice)
		require.True(t, ok)
		require.Equal(t, int64(2), value)
	})

	t.Run("yes-no resolves like a single choice", func(t *testing.T) {
		value, ok := ChoiceAnswer(11).EncodeForSubmission(YesNo)
		require.True(t, ok)
		require.Equal(t, int64(11), value)
	})

	t.Run("unanswered questions are omitted", func(t *testing.T) {
		_, ok := NoAnswer().EncodeForSubmission(SingleChoice)
		require.False(t, ok)
		_, ok = NoAnswer().EncodeForSubmission(MultipleChoice)
		require.False(t, ok)
	})
}
