// Package state materializes current task records by replaying the event
// log in order. The materialized map is a pure function of the ordered
// event sequence: replaying the same events always yields the same tasks.
package state

import "time"

// Status is a task's lifecycle state.
type Status string

// A task is either open or complete; archiving is a tag, not a status.
const (
	StatusOpen     Status = "open"
	StatusComplete Status = "complete"
)

// Task is the derived record for one task id. It is only ever mutated by
// replaying events; field order matches the snapshot wire format.
type Task struct {
	ID            string     `json:"id"`
	Title         string     `json:"title"`
	Description   string     `json:"description,omitempty"`
	Status        Status     `json:"status"`
	Priority      string     `json:"priority,omitempty"`
	Tags          []string   `json:"tags"`
	Assignee      string     `json:"assignee,omitempty"`
	Created       time.Time  `json:"created"`
	CreatedBy     string     `json:"created_by"`
	CreatedBranch string     `json:"created_branch"`
	Updated       time.Time  `json:"updated"`
	Completed     *time.Time `json:"completed,omitempty"`
	Resolution    string     `json:"resolution,omitempty"`
	Parent        string     `json:"parent,omitempty"`
	Blocks        []string   `json:"blocks"`
	BlockedBy     []string   `json:"blocked_by"`
	Comments      []Comment  `json:"comments"`
	Archived      string     `json:"archived,omitempty"`
}

// Comment is one entry in a task's append-only comment sequence.
type Comment struct {
	TS   time.Time `json:"ts"`
	By   string    `json:"by"`
	Body string    `json:"body"`
	Ref  string    `json:"ref,omitempty"`
}

// State is the materialized snapshot: every created task keyed by id,
// plus the instant it was rebuilt. Rebuilt is the only field that varies
// between two replays of the same log.
type State struct {
	Tasks   map[string]*Task `json:"tasks"`
	Rebuilt time.Time        `json:"rebuilt"`
}
