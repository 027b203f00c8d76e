package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryQueue(t *testing.T) {
	q := NewInMemoryQueue(2)

	require.NoError(t, q.Enqueue(1))
	require.NoError(t, q.Enqueue(2))
	assert.ErrorIs(t, q.Enqueue(3), ErrQueueFull)
	assert.Equal(t, 2, q.Size())

	messages, err := q.ReadAllMessages()
	require.NoError(t, err)
	assert.Equal(t, []interface{}{1, 2}, messages)
	assert.Equal(t, 0, q.Size())

	messages, err = q.ReadAllMessages()
	require.NoError(t, err)
	assert.Empty(t, messages)

	require.NoError(t, q.Enqueue(4))
	q.ClearQueue()
	assert.Equal(t, 0, q.Size())
}
