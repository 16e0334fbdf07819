package services

import "github.com/designdesk/task-desk-api/internal/models"

// Actor is the authenticated user performing an operation.
type Actor struct {
	UserID     string
	Email      string
	Company    string
	Privileged bool
}

// ActorFromUser builds an Actor from a stored profile.
func ActorFromUser(user *models.User) Actor {
	return Actor{
		UserID:     user.ID,
		Email:      user.Email,
		Company:    user.CompanyName,
		Privileged: user.IsPrivileged(),
	}
}

func (a Actor) commentAuthor() models.CommentAuthor {
	return models.CommentAuthor{Email: a.Email, Company: a.Company}
}

// canSee reports whether the actor may read and act on the task at all.
func (a Actor) canSee(task *models.Task) bool {
	return a.Privileged || task.UserID == a.UserID
}
