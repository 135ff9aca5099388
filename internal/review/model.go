package review

import "errors"

var (
	ErrAlreadyReviewed  = errors.New("task already reviewed by this user")
	ErrTaskNotCompleted = errors.New("only completed tasks can be reviewed")
	ErrForbidden        = errors.New("only the task's customer and worker can review")
)

type SubmitReviewInput struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment" binding:"max=500"`
}
