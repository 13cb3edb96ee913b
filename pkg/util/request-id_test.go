package util

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRequestID_GeneratesWhenEmpty(t *testing.T) {
	ctx := WithRequestID(context.Background(), "")

	id := GetRequestID(ctx)
	assert.NotEmpty(t, id)

	// Each wrap gets its own id.
	other := GetRequestID(WithRequestID(context.Background(), ""))
	assert.NotEqual(t, id, other)
}

func TestWithRequestID_KeepsProvidedID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")

	assert.Equal(t, "req-123", GetRequestID(ctx))
}

func TestGetRequestID_EmptyWithoutValue(t *testing.T) {
	assert.Empty(t, GetRequestID(context.Background()))
}
