package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFetchError(t *testing.T) {
	err := NewFetchError(KindTransport, context.DeadlineExceeded)
	assert.Contains(t, err.Error(), "transport")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	status := &FetchError{Kind: KindStatus, StatusCode: 503}
	assert.Equal(t, "status error: HTTP 503", status.Error())

	wrapped := fmt.Errorf("refresh: %w", NewFetchError(KindDecode, errors.New("bad gbk")))
	kind, ok := KindOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, KindDecode, kind)

	_, ok = KindOf(errors.New("plain"))
	assert.False(t, ok)
}
