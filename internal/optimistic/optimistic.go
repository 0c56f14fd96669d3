// Package optimistic keeps rendered task lists consistent with user
// intent ahead of server confirmation. Two mechanisms cooperate:
//
//   - a pending-id set that stands in a blank, editable placeholder row
//     the instant the user asks for a new task, retired once the real
//     record shows up in the authoritative list;
//   - an in-flight command scan that projects tasks into the list they
//     are moving to and suppresses them in the list they are leaving,
//     so a task is always visible in exactly one place during the
//     optimistic window.
//
// Nothing here is stored. Every projection is recomputed from the
// authoritative lists plus the current in-flight commands on each
// render pass; if a command ultimately fails, the next authoritative
// refetch simply reverts the projection. There is no rollback
// bookkeeping and, deliberately, no timeout for a pending id whose
// create never lands.
package optimistic

import (
	"sort"

	"planner/internal/action"
	"planner/internal/task"
)

// Rendered is one row of a rendered list: either a real task or a
// placeholder for a pending create. Placeholders have an empty name
// and sort after every confirmed task.
type Rendered struct {
	Task  task.Task `json:"task"`
	IsNew bool      `json:"isNew"`
}

// PendingSet tracks client-generated ids whose create command has not
// yet round-tripped. It is owned by a single rendering context and is
// not safe for concurrent use.
type PendingSet struct {
	ids []string
}

func NewPendingSet() *PendingSet {
	return &PendingSet{}
}

// Add registers a freshly generated id the moment the user asks for a
// new row.
func (p *PendingSet) Add(id string) {
	for _, existing := range p.ids {
		if existing == id {
			return
		}
	}
	p.ids = append(p.ids, id)
}

// IDs returns the pending ids in insertion order.
func (p *PendingSet) IDs() []string {
	out := make([]string, len(p.ids))
	copy(out, p.ids)
	return out
}

// Reconcile drops every pending id that now appears in the
// authoritative list and returns the retired ids. It runs on every
// render pass, not just once.
func (p *PendingSet) Reconcile(saved []task.Task) []string {
	savedIDs := make(map[string]bool, len(saved))
	for _, t := range saved {
		savedIDs[t.ID] = true
	}

	var retired []string
	kept := p.ids[:0]
	for _, id := range p.ids {
		if savedIDs[id] {
			retired = append(retired, id)
		} else {
			kept = append(kept, id)
		}
	}
	p.ids = kept
	return retired
}

// Render merges the authoritative list with placeholders for pending
// ids not yet present in it, reconciling retired ids along the way.
// Confirmed tasks come first in SortKey order; placeholders append at
// the end in the order they were requested.
func (p *PendingSet) Render(saved []task.Task) []Rendered {
	p.Reconcile(saved)

	out := make([]Rendered, 0, len(saved)+len(p.ids))
	for _, t := range sortBySortKey(saved) {
		out = append(out, Rendered{Task: t})
	}
	for _, id := range p.ids {
		out = append(out, Rendered{Task: task.Task{ID: id}, IsNew: true})
	}
	return out
}

// Command is an in-flight mutation request: submitted, not yet
// confirmed. Fields mirrors the flat form payload it was posted with.
type Command struct {
	Action action.Name
	ID     string
	Fields map[string]string
}

// Immigrants finds the tasks that should already appear in a
// destination list: for every in-flight command matching name whose id
// is found in the source list, the referenced task is included. The
// optional accept filter narrows by payload (e.g. only moves targeting
// this day).
func Immigrants(inflight []Command, name action.Name, source []task.Task, accept func(Command) bool) []task.Task {
	if len(inflight) == 0 {
		return nil
	}

	byID := make(map[string]task.Task, len(source))
	for _, t := range source {
		byID[t.ID] = t
	}

	var out []task.Task
	for _, cmd := range inflight {
		if cmd.Action != name {
			continue
		}
		if accept != nil && !accept(cmd) {
			continue
		}
		if t, ok := byID[cmd.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// Hidden returns the ids that must be suppressed from a list because
// an in-flight command is moving them away (or deleting them). The
// authoritative list still contains them until the mutation lands, so
// this is suppression, not removal.
func Hidden(inflight []Command, names ...action.Name) map[string]bool {
	out := map[string]bool{}
	for _, cmd := range inflight {
		for _, name := range names {
			if cmd.Action == name {
				out[cmd.ID] = true
			}
		}
	}
	return out
}

// ProjectComplete returns the task's completion state with any
// in-flight toggle applied.
func ProjectComplete(inflight []Command, t task.Task) bool {
	complete := t.Complete
	for _, cmd := range inflight {
		if cmd.ID != t.ID {
			continue
		}
		switch cmd.Action {
		case action.MarkComplete:
			complete = true
		case action.MarkIncomplete:
			complete = false
		}
	}
	return complete
}

// compose merges the kept authoritative tasks with immigrants and
// re-sorts by SortKey.
func compose(authoritative []task.Task, hidden map[string]bool, immigrants []task.Task) []task.Task {
	out := make([]task.Task, 0, len(authoritative)+len(immigrants))
	for _, t := range authoritative {
		if !hidden[t.ID] {
			out = append(out, t)
		}
	}
	out = append(out, immigrants...)
	return sortBySortKey(out)
}

// DayView projects the day list and the backlog for one rendered
// screen: tasks moving to this day appear there already, tasks moving
// to the backlog appear there, and each side hides what the other
// claims. A MOVE_TASK_TO_DAY command posted to a day-scoped route may
// omit the day field; it then counts for the day being rendered.
func DayView(day string, dayTasks, backlog []task.Task, inflight []Command) (dayOut, backlogOut []task.Task) {
	toThisDay := func(cmd Command) bool {
		d, ok := cmd.Fields["day"]
		return !ok || d == "" || d == day
	}

	dayOut = compose(
		dayTasks,
		Hidden(inflight, action.MoveTaskToBacklog, action.DeleteTask),
		Immigrants(inflight, action.MoveTaskToDay, backlog, toThisDay),
	)
	backlogOut = compose(
		backlog,
		Hidden(inflight, action.MoveTaskToDay, action.DeleteTask),
		Immigrants(inflight, action.MoveTaskToBacklog, dayTasks, nil),
	)
	return dayOut, backlogOut
}

// BucketView projects a bucket's task list and the unassigned list,
// symmetric to DayView for the bucket axis.
func BucketView(bucketID string, bucketTasks, unassigned []task.Task, inflight []Command) (bucketOut, unassignedOut []task.Task) {
	toThisBucket := func(cmd Command) bool {
		return cmd.Fields["bucketId"] == bucketID
	}

	bucketOut = compose(
		bucketTasks,
		Hidden(inflight, action.UnassignTask, action.DeleteTask),
		Immigrants(inflight, action.MoveTaskToBucket, unassigned, toThisBucket),
	)
	unassignedOut = compose(
		unassigned,
		Hidden(inflight, action.MoveTaskToBucket, action.DeleteTask),
		Immigrants(inflight, action.UnassignTask, bucketTasks, nil),
	)
	return bucketOut, unassignedOut
}

func sortBySortKey(tasks []task.Task) []task.Task {
	out := make([]task.Task, len(tasks))
	copy(out, tasks)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].SortKey.Equal(out[j].SortKey) {
			return out[i].SortKey.Before(out[j].SortKey)
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}
