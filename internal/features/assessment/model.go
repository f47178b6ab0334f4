package assessment

import (
	"time"

	"go-lms/internal/features/access"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type QuestionType string

const (
	QuestionSingleChoice   QuestionType = "single_choice"
	QuestionMultipleChoice QuestionType = "multiple_choice"
	QuestionTrueFalse      QuestionType = "true_false"
	QuestionShortAnswer    QuestionType = "short_answer"
	QuestionEssay          QuestionType = "essay"
)

// AutoScored reports whether answers to the question type are graded on submission.
func (t QuestionType) AutoScored() bool {
	switch t {
	case QuestionSingleChoice, QuestionMultipleChoice, QuestionTrueFalse:
		return true
	}
	return false
}

type Assessment struct {
	ID               uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	ModuleID         uuid.UUID  `json:"module_id" gorm:"type:uuid"`
	SectionID        *uuid.UUID `json:"section_id,omitempty" gorm:"type:uuid"`
	Title            string     `json:"title"`
	Description      string     `json:"description"`
	PassingScore     int        `json:"passing_score"`
	TimeLimitMinutes int        `json:"time_limit_minutes"`
	MaxAttempts      int        `json:"max_attempts"`
	IsRequired       bool       `json:"is_required"`
	IsActive         bool       `json:"is_active"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (Assessment) TableName() string { return "assessments" }

// TimeLimit is zero when the assessment is untimed.
func (a Assessment) TimeLimit() time.Duration {
	return time.Duration(a.TimeLimitMinutes) * time.Minute
}

type AssessmentDetail struct {
	Assessment
	Permissions access.Permissions `json:"permissions"`
}

type Option struct {
	Key       string `json:"key"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct,omitempty"`
}

type Question struct {
	ID           uuid.UUID                   `json:"id" gorm:"type:uuid;primaryKey"`
	AssessmentID uuid.UUID                   `json:"assessment_id" gorm:"type:uuid"`
	Text         string                      `json:"text"`
	Type         QuestionType                `json:"type"`
	Points       float64                     `json:"points"`
	SortOrder    int                         `json:"sort_order"`
	Options      datatypes.JSONSlice[Option] `json:"options" gorm:"type:jsonb"`
	Explanation  string                      `json:"explanation,omitempty"`
	CreatedAt    time.Time                   `json:"created_at"`
	UpdatedAt    time.Time                   `json:"updated_at"`
}

func (Question) TableName() string { return "questions" }

// withoutAnswerKey strips what a learner must not see before answering.
func (q Question) withoutAnswerKey() Question {
	opts := make(datatypes.JSONSlice[Option], len(q.Options))
	for i, o := range q.Options {
		opts[i] = Option{Key: o.Key, Text: o.Text}
	}
	q.Options = opts
	q.Explanation = ""
	return q
}

type AttemptStatus string

const (
	AttemptInProgress  AttemptStatus = "in_progress"
	AttemptCompleted   AttemptStatus = "completed"
	AttemptTimeExpired AttemptStatus = "time_expired"
	AttemptAbandoned   AttemptStatus = "abandoned"
)

func (s AttemptStatus) Terminal() bool { return s != AttemptInProgress }

type AnswerStatus string

const (
	AnswerCorrect    AnswerStatus = "correct"
	AnswerIncorrect  AnswerStatus = "incorrect"
	AnswerUngraded   AnswerStatus = "ungraded"
	AnswerUnanswered AnswerStatus = "unanswered"
)

// GradedAnswer is the stored outcome for one question of an attempt.
type GradedAnswer struct {
	QuestionID    uuid.UUID    `json:"question_id"`
	Selected      []string     `json:"selected,omitempty"`
	Text          string       `json:"text,omitempty"`
	Status        AnswerStatus `json:"status"`
	PointsAwarded float64      `json:"points_awarded"`
	PointsPending float64      `json:"points_pending,omitempty"`
}

type Attempt struct {
	ID             uuid.UUID                         `json:"id" gorm:"type:uuid;primaryKey"`
	AssessmentID   uuid.UUID                         `json:"assessment_id" gorm:"type:uuid"`
	UserID         uuid.UUID                         `json:"user_id" gorm:"type:uuid"`
	AttemptNumber  int                               `json:"attempt_number"`
	Status         AttemptStatus                     `json:"status"`
	StartedAt      time.Time                         `json:"started_at"`
	SubmittedAt    *time.Time                        `json:"submitted_at,omitempty"`
	PointsEarned   float64                           `json:"points_earned"`
	PointsPossible float64                           `json:"points_possible"`
	PointsPending  float64                           `json:"points_pending"`
	Percentage     float64                           `json:"percentage"`
	Passed         bool                              `json:"passed"`
	Answers        datatypes.JSONSlice[GradedAnswer] `json:"answers" gorm:"type:jsonb"`
	CreatedAt      time.Time                         `json:"created_at"`
	UpdatedAt      time.Time                         `json:"updated_at"`
}

func (Attempt) TableName() string { return "assessment_attempts" }

type CreateAssessmentRequest struct {
	ModuleID         uuid.UUID  `json:"module_id" validate:"required"`
	SectionID        *uuid.UUID `json:"section_id"`
	Title            string     `json:"title" validate:"required,max=200"`
	Description      string     `json:"description"`
	PassingScore     *int       `json:"passing_score" validate:"omitempty,min=0,max=100"`
	TimeLimitMinutes int        `json:"time_limit_minutes" validate:"min=0"`
	MaxAttempts      int        `json:"max_attempts" validate:"min=0"`
	IsRequired       bool       `json:"is_required"`
	IsActive         *bool      `json:"is_active"`
}

type UpdateAssessmentRequest struct {
	Title            *string `json:"title" validate:"omitempty,min=1,max=200"`
	Description      *string `json:"description"`
	PassingScore     *int    `json:"passing_score" validate:"omitempty,min=0,max=100"`
	TimeLimitMinutes *int    `json:"time_limit_minutes" validate:"omitempty,min=0"`
	MaxAttempts      *int    `json:"max_attempts" validate:"omitempty,min=0"`
	IsRequired       *bool   `json:"is_required"`
	IsActive         *bool   `json:"is_active"`
}

type OptionInput struct {
	Key       string `json:"key" validate:"required,max=32"`
	Text      string `json:"text" validate:"required"`
	IsCorrect bool   `json:"is_correct"`
}

type CreateQuestionRequest struct {
	AssessmentID uuid.UUID     `json:"assessment_id" validate:"required"`
	Text         string        `json:"text" validate:"required"`
	Type         QuestionType  `json:"type" validate:"required,oneof=single_choice multiple_choice true_false short_answer essay"`
	Points       *float64      `json:"points" validate:"omitempty,min=0"`
	SortOrder    int           `json:"sort_order" validate:"min=0"`
	Options      []OptionInput `json:"options" validate:"dive"`
	Explanation  string        `json:"explanation"`
}

// UpdateQuestionRequest replaces the options wholesale when Options is non-nil.
type UpdateQuestionRequest struct {
	Text        *string       `json:"text" validate:"omitempty,min=1"`
	Points      *float64      `json:"points" validate:"omitempty,min=0"`
	SortOrder   *int          `json:"sort_order" validate:"omitempty,min=0"`
	Options     []OptionInput `json:"options" validate:"omitempty,dive"`
	Explanation *string       `json:"explanation"`
}

type AnswerInput struct {
	QuestionID uuid.UUID `json:"question_id" validate:"required"`
	Selected   []string  `json:"selected"`
	Text       string    `json:"text"`
}

type SubmitAttemptRequest struct {
	Answers []AnswerInput `json:"answers" validate:"dive"`
}

// SubmitAssessmentRequest is a one-shot submission. StartedAt lets a client that kept the
// attempt offline report when it began; it defaults to the submission time.
type SubmitAssessmentRequest struct {
	Answers   []AnswerInput `json:"answers" validate:"dive"`
	StartedAt *time.Time    `json:"started_at"`
}
