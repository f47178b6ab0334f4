package assessment

import (
	"math"

	"github.com/google/uuid"
)

// Result is the outcome of scoring one submission.
type Result struct {
	Answers        []GradedAnswer
	PointsEarned   float64
	PointsPossible float64
	PointsPending  float64
	Percentage     float64
	Passed         bool
}

// Score grades answers against questions. Choice questions are correct only when the set
// of selected keys equals the set of correct keys; short answer and essay questions are
// left ungraded with their points pending. The percentage is taken over all points, so
// pending points count as not earned. An assessment worth no points scores 100.
func Score(questions []Question, answers []AnswerInput, passingScore int) Result {
	byQuestion := make(map[uuid.UUID]AnswerInput, len(answers))
	for _, a := range answers {
		byQuestion[a.QuestionID] = a
	}

	res := Result{Answers: make([]GradedAnswer, 0, len(questions))}
	for _, q := range questions {
		res.PointsPossible += q.Points
		a, answered := byQuestion[q.ID]
		graded := GradedAnswer{QuestionID: q.ID, Selected: a.Selected, Text: a.Text}

		switch {
		case !q.Type.AutoScored():
			if answered && a.Text != "" {
				graded.Status = AnswerUngraded
				graded.PointsPending = q.Points
				res.PointsPending += q.Points
			} else {
				graded.Status = AnswerUnanswered
			}
		case !answered || len(a.Selected) == 0:
			graded.Status = AnswerUnanswered
		case sameKeys(a.Selected, correctKeys(q)):
			graded.Status = AnswerCorrect
			graded.PointsAwarded = q.Points
			res.PointsEarned += q.Points
		default:
			graded.Status = AnswerIncorrect
		}
		res.Answers = append(res.Answers, graded)
	}

	if res.PointsPossible > 0 {
		res.Percentage = math.Round(res.PointsEarned/res.PointsPossible*10000) / 100
	} else {
		res.Percentage = 100
	}
	res.Passed = res.Percentage >= float64(passingScore)
	return res
}

func correctKeys(q Question) map[string]struct{} {
	keys := make(map[string]struct{})
	for _, o := range q.Options {
		if o.IsCorrect {
			keys[o.Key] = struct{}{}
		}
	}
	return keys
}

func sameKeys(selected []string, correct map[string]struct{}) bool {
	seen := make(map[string]struct{}, len(selected))
	for _, k := range selected {
		if _, ok := correct[k]; !ok {
			return false
		}
		seen[k] = struct{}{}
	}
	return len(seen) == len(correct)
}
