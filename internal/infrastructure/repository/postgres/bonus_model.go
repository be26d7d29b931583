package postgres

import "time"

type bonusQuestionTableModel struct {
	ID             int64      `db:"id"`
	PublicID       string     `db:"public_id"`
	PoolPublicID   string     `db:"pool_public_id"`
	QuestionText   string     `db:"question_text"`
	QuestionType   string     `db:"question_type"`
	CorrectAnswer  []byte     `db:"correct_answer"`
	PointsValue    int        `db:"points_value"`
	AnswerRevealed bool       `db:"answer_revealed"`
	SortOrder      int        `db:"sort_order"`
	CreatedAt      time.Time  `db:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at"`
	DeletedAt      *time.Time `db:"deleted_at"`
}
