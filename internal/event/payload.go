package event

import "encoding/json"

// Link relation names carried in link/unlink payloads.
const (
	RelBlocks    = "blocks"
	RelBlockedBy = "blocked_by"
	RelParent    = "parent"
)

// CreatePayload seeds a new task. Every field is optional.
type CreatePayload struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Priority    string   `json:"priority"`
	Tags        []string `json:"tags"`
	Assignee    string   `json:"assignee"`
	Parent      string   `json:"parent"`
	Blocks      []string `json:"blocks"`
	BlockedBy   []string `json:"blocked_by"`
}

// UpdatePayload overwrites only the fields that are present. Pointers
// distinguish "absent" from "set to zero value".
type UpdatePayload struct {
	Title       *string   `json:"title"`
	Description *string   `json:"description"`
	Priority    *string   `json:"priority"`
	Tags        *[]string `json:"tags"`
}

// AssignPayload sets or clears the assignee. A missing or null "to"
// clears it.
type AssignPayload struct {
	To *string `json:"to"`
}

// CommentPayload appends a comment to the task.
type CommentPayload struct {
	Body string `json:"body"`
	Ref  string `json:"ref"`
}

// LinkPayload carries a relation edit for link and unlink events.
type LinkPayload struct {
	Rel    string `json:"rel"`
	Target string `json:"target"`
}

// CompletePayload closes a task. Resolution is nil when absent; replay
// defaults it to "done" only then. An explicit empty string is preserved.
type CompletePayload struct {
	Resolution *string `json:"resolution"`
}

// ArchivePayload tags a task with the rollup it was copied into.
type ArchivePayload struct {
	Ref string `json:"ref"`
}

// decode fills v from the event payload, best-effort. Wrong-typed or
// unknown sub-fields are ignored rather than rejected so that replay
// stays total over any well-formed event sequence.
func (e Event) decode(v any) {
	if len(e.Data) == 0 {
		return
	}
	_ = json.Unmarshal(e.Data, v)
}

// CreateData decodes the payload of a create event.
func (e Event) CreateData() CreatePayload {
	var p CreatePayload
	e.decode(&p)
	return p
}

// UpdateData decodes the payload of an update event.
func (e Event) UpdateData() UpdatePayload {
	var p UpdatePayload
	e.decode(&p)
	return p
}

// AssignData decodes the payload of an assign event.
func (e Event) AssignData() AssignPayload {
	var p AssignPayload
	e.decode(&p)
	return p
}

// CommentData decodes the payload of a comment event.
func (e Event) CommentData() CommentPayload {
	var p CommentPayload
	e.decode(&p)
	return p
}

// LinkData decodes the payload of a link or unlink event.
func (e Event) LinkData() LinkPayload {
	var p LinkPayload
	e.decode(&p)
	return p
}

// CompleteData decodes the payload of a complete event.
func (e Event) CompleteData() CompletePayload {
	var p CompletePayload
	e.decode(&p)
	return p
}

// ArchiveData decodes the payload of an archive event.
func (e Event) ArchiveData() ArchivePayload {
	var p ArchivePayload
	e.decode(&p)
	return p
}
