package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTraceID(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, GetTraceID(ctx))

	ctx = SetTraceID(ctx)
	id := GetTraceID(ctx)
	assert.Len(t, id, 32)
	assert.NotContains(t, id, "-")

	assert.Equal(t, "abc", GetTraceID(WithTraceID(ctx, "abc")))
	assert.NotEqual(t, NewTraceID(), NewTraceID())
}
