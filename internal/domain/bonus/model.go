package bonus

import (
	"fmt"
	"strings"
)

type QuestionType string

const (
	TypeSinglePlayer QuestionType = "single_player_select"
	TypeDualPlayer   QuestionType = "dual_player_select"
	TypeYesNo        QuestionType = "yes_no"
	TypeNumber       QuestionType = "number"
)

func ParseQuestionType(raw string) (QuestionType, error) {
	switch QuestionType(raw) {
	case TypeSinglePlayer, TypeDualPlayer, TypeYesNo, TypeNumber:
		return QuestionType(raw), nil
	default:
		return "", fmt.Errorf("unknown bonus question type %q", raw)
	}
}

// Answer is the serialized answer shape shared by stored entry answers and
// the question's correct answer. Which fields matter depends on the
// question type.
type Answer struct {
	Player1 string `json:"player1,omitempty"`
	Player2 string `json:"player2,omitempty"`
	Value   string `json:"value,omitempty"`
}

// Matches performs the deep equality scoring uses. Dual-player answers are
// order-sensitive: player1 must match player1 and player2 must match player2.
func (a Answer) Matches(questionType QuestionType, correct Answer) bool {
	switch questionType {
	case TypeSinglePlayer:
		return a.Player1 != "" && a.Player1 == correct.Player1
	case TypeDualPlayer:
		return a.Player1 != "" && a.Player2 != "" &&
			a.Player1 == correct.Player1 && a.Player2 == correct.Player2
	case TypeYesNo:
		return a.Value != "" && strings.EqualFold(a.Value, correct.Value)
	case TypeNumber:
		return a.Value != "" && strings.TrimSpace(a.Value) == strings.TrimSpace(correct.Value)
	default:
		return false
	}
}

// ValidateFor checks the answer carries the fields its question type needs.
func (a Answer) ValidateFor(questionType QuestionType) error {
	switch questionType {
	case TypeSinglePlayer:
		if a.Player1 == "" {
			return fmt.Errorf("player selection is required")
		}
	case TypeDualPlayer:
		if a.Player1 == "" || a.Player2 == "" {
			return fmt.Errorf("two player selections are required")
		}
	case TypeYesNo:
		if !strings.EqualFold(a.Value, "yes") && !strings.EqualFold(a.Value, "no") {
			return fmt.Errorf("answer must be yes or no")
		}
	case TypeNumber:
		if strings.TrimSpace(a.Value) == "" {
			return fmt.Errorf("a numeric answer is required")
		}
	default:
		return fmt.Errorf("unknown bonus question type %q", questionType)
	}
	return nil
}

// Question is one bonus prediction question. Scoring against it is
// suppressed until AnswerRevealed is true.
type Question struct {
	ID             string
	PoolID         string
	Text           string
	Type           QuestionType
	CorrectAnswer  *Answer
	PointsValue    int
	AnswerRevealed bool
	SortOrder      int
}

func (q Question) Validate() error {
	if q.PoolID == "" {
		return fmt.Errorf("bonus question pool id is required")
	}
	if q.Text == "" {
		return fmt.Errorf("bonus question text is required")
	}
	if _, err := ParseQuestionType(string(q.Type)); err != nil {
		return err
	}
	if q.PointsValue <= 0 {
		return fmt.Errorf("bonus question points value must be greater than zero")
	}

	return nil
}
