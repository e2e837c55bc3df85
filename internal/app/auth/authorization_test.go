package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/diakonovmakar/yatube-final/internal/app/models"
)

func TestCanModifyPost(t *testing.T) {
	authz := NewAuthorizationService()
	author := &models.User{ID: 1}
	other := &models.User{ID: 2}
	post := &models.Post{ID: 10, AuthorID: 1}

	assert.True(t, authz.CanModifyPost(author, post))
	assert.False(t, authz.CanModifyPost(other, post))
	assert.False(t, authz.CanModifyPost(nil, post))
}

func TestCanFollow(t *testing.T) {
	authz := NewAuthorizationService()
	a := &models.User{ID: 1}
	b := &models.User{ID: 2}

	assert.True(t, authz.CanFollow(a, b))
	assert.False(t, authz.CanFollow(a, a))
	assert.False(t, authz.CanFollow(nil, b))
}
