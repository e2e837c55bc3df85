package auth

import (
	"github.com/diakonovmakar/yatube-final/internal/app/models"
)

// AuthorizationService answers who may do what with posts and authors.
type AuthorizationService struct{}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService() *AuthorizationService {
	return &AuthorizationService{}
}

// CanModifyPost is true only for the post's author.
func (s *AuthorizationService) CanModifyPost(user *models.User, post *models.Post) bool {
	return user != nil && post != nil && user.ID == post.AuthorID
}

// CanFollow is false for anonymous users and for following oneself.
func (s *AuthorizationService) CanFollow(user, author *models.User) bool {
	return user != nil && author != nil && user.ID != author.ID
}
