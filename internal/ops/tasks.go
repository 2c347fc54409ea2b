package ops

import (
	"time"

	"github.com/hpungsan/blueprint/internal/sched"
)

// TaskInfo is the wire form of a deferred completion.
type TaskInfo struct {
	ID     string       `json:"id"`
	Name   string       `json:"name"`
	Status sched.Status `json:"status"`
	Due    time.Time    `json:"due"`
	Result any          `json:"result,omitempty"`
	Error  string       `json:"error,omitempty"`
}

// DescribeTask snapshots t. A task body that returned an error reports it
// in Error instead of Result.
func DescribeTask(t *sched.Task) TaskInfo {
	info := TaskInfo{ID: t.ID, Name: t.Name, Status: t.Status(), Due: t.Due}
	switch r := t.Result().(type) {
	case nil:
	case error:
		info.Error = r.Error()
	default:
		info.Result = r
	}
	return info
}
