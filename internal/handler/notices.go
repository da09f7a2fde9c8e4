package handler

import (
	"sync"
	"time"

	"github.com/pkordes/travel-planner/internal/collab"
)

const defaultMaxNotices = 50

// Notice is a transient message for the user, such as "trip data was updated
// by another collaborator".
type Notice struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// NoticeQueue buffers notices until a client drains them. When full, the
// oldest notice is dropped.
type NoticeQueue struct {
	mu      sync.Mutex
	max     int
	notices []Notice
	now     func() time.Time
}

// NewNoticeQueue returns a queue holding at most max notices (50 if max <= 0).
func NewNoticeQueue(max int) *NoticeQueue {
	if max <= 0 {
		max = defaultMaxNotices
	}
	return &NoticeQueue{max: max, now: time.Now}
}

// Push records the notice carried by change. It has the signature of a
// collab.Controller change listener.
func (q *NoticeQueue) Push(change collab.Change) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.notices) == q.max {
		q.notices = q.notices[1:]
	}
	q.notices = append(q.notices, Notice{Message: change.Notice, At: q.now()})
}

// Drain returns and clears the queued notices, oldest first.
func (q *NoticeQueue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.notices
	q.notices = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
