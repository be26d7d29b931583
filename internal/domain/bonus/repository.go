package bonus

import "context"

type Repository interface {
	ListByPool(ctx context.Context, poolID string) ([]Question, error)
	GetByID(ctx context.Context, questionID string) (Question, bool, error)
	Create(ctx context.Context, q Question) error
	Update(ctx context.Context, q Question) error

	// Reveal stores the correct answer and flips AnswerRevealed.
	Reveal(ctx context.Context, questionID string, correct Answer) error
}
