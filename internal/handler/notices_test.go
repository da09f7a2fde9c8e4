package handler_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-planner/internal/collab"
	"github.com/pkordes/travel-planner/internal/handler"
)

func TestNoticeQueue_DropsOldestWhenFull(t *testing.T) {
	q := handler.NewNoticeQueue(2)
	for i := range 3 {
		q.Push(collab.Change{Notice: fmt.Sprint(i)})
	}

	got := q.Drain()

	require.Len(t, got, 2)
	assert.Equal(t, "1", got[0].Message)
	assert.Equal(t, "2", got[1].Message)
	assert.Empty(t, q.Drain())
}
