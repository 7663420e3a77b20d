package auth

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAuthorize(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()

	assert.Equal(t, Allowed, Authorize(owner, owner))
	assert.Equal(t, Denied, Authorize(owner, stranger))
	assert.Equal(t, Denied, Authorize(uuid.Nil, uuid.Nil))
	assert.Equal(t, Denied, Authorize(owner, uuid.Nil))
	assert.Equal(t, "allowed", Allowed.String())
	assert.Equal(t, "denied", Denied.String())
}
