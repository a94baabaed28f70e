package models

// QuestionType enumerates the question variants supported by the platform
type QuestionType string

const (
	SingleChoice   QuestionType = "single_mcq"
	MultipleChoice QuestionType = "multiple_mcq"
	FillBlank      QuestionType = "fill_blank"
	YesNo          QuestionType = "yes_no"
)

// Test is the static test definition. It is immutable for the duration of a
// taking session.
type Test struct {
	ID              int64  `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DurationMinutes int    `json:"duration_minutes"`
	PassingScore    int    `json:"passing_score"`
	QuestionCount   int    `json:"question_count"`
	Status          string `json:"status,omitempty"`
	LastScore       int    `json:"last_score,omitempty"`
	TotalAttempts   int    `json:"total_attempts,omitempty"`
	PassRate        int    `json:"pass_rate,omitempty"`
	CreatedAt       string `json:"created_at,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// DurationSeconds returns the planned time budget of the test
func (t *Test) DurationSeconds() int {
	return t.DurationMinutes * 60
}

type Option struct {
	ID   int64  `json:"id"`
	Text string `json:"text"`
	// IsCorrect is only populated in post-submission result payloads, never
	// while a session is active.
	IsCorrect *bool `json:"is_correct,omitempty"`
}

type Question struct {
	ID           int64        `json:"id"`
	QuestionText string       `json:"question_text"`
	QuestionType QuestionType `json:"question_type"`
	Options      []Option     `json:"options,omitempty"`
	Explanation  string       `json:"explanation,omitempty"`
	Points       int          `json:"points"`
	Order        int          `json:"order"`
}

// Sanitized returns a copy of the question with correctness flags stripped,
// safe to hand to a renderer during an active session.
func (q *Question) Sanitized() Question {
	out := *q
	out.Explanation = ""
	if len(q.Options) > 0 {
		out.Options = make([]Option, len(q.Options))
		for i, opt := range q.Options {
			out.Options[i] = Option{ID: opt.ID, Text: opt.Text}
		}
	}
	return out
}

// SessionBootstrap is the payload the backend returns when a taking session is
// created or resumed.
type SessionBootstrap struct {
	Questions            []Question       `json:"questions"`
	SessionID            int64            `json:"session_id"`
	SavedAnswers         map[int64]Answer `json:"saved_answers,omitempty"`
	CurrentQuestionIndex int              `json:"current_question_index"`
	RemainingTime        int              `json:"remaining_time"`
}

// ProgressUpdate is the periodic best-effort persistence payload
type ProgressUpdate struct {
	CurrentQuestionIndex int              `json:"current_question_index"`
	RemainingTime        int              `json:"remaining_time"`
	Answers              map[int64]Answer `json:"answers"`
}

// Submission is the final, omission-encoded answer payload
type Submission struct {
	Answers   map[int64]any `json:"answers"`
	TimeSpent int           `json:"timeSpent"`
}

// SubmitResult is the reference the backend returns after grading; the scoring
// fields are consumed by the results view.
type SubmitResult struct {
	SessionID  int64   `json:"session_id"`
	Score      float64 `json:"score,omitempty"`
	Passed     bool    `json:"passed,omitempty"`
	TotalScore float64 `json:"total_score,omitempty"`
}

type User struct {
	ID        int64  `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Name      string `json:"name,omitempty"`
	Role      string `json:"role"`
	IsActive  bool   `json:"is_active,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
}

type LeaderboardEntry struct {
	Rank       int     `json:"rank"`
	UserID     int64   `json:"user_id"`
	Name       string  `json:"name"`
	Email      string  `json:"email,omitempty"`
	TestsTaken int     `json:"tests_taken"`
	AvgScore   float64 `json:"avg_score"`
	BestScore  float64 `json:"best_score"`
}
