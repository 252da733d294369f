package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSession_Can(t *testing.T) {
	admin := Session{Admin: true}
	assert.True(t, admin.Can(ManageRecords))
	assert.True(t, admin.Can(AdminPanel))
	assert.False(t, admin.Can(Capability("launch-rockets")))

	assert.False(t, Anonymous.Can(ManageRecords))
	assert.False(t, Anonymous.Can(AdminPanel))
}

func TestFromContext(t *testing.T) {
	assert.Equal(t, Anonymous, FromContext(context.Background()))

	ctx := WithSession(context.Background(), Session{Admin: true})
	assert.True(t, FromContext(ctx).Admin)
}
