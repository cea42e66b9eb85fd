package tickets

import (
	"strconv"

	"github.com/Ilia01/ticketdesk/internal/models"
)

// DraftAssignee is one entry of a draft assignee set. Persisted entries carry
// the server id; pending entries carry only the user or project reference.
type DraftAssignee struct {
	ID        int64
	UserID    string
	ProjectID string
}

func (d DraftAssignee) Pending() bool {
	return d.ID == 0
}

func (d DraftAssignee) Target() models.AssignTarget {
	return models.AssignTarget{UserID: d.UserID, ProjectID: d.ProjectID}
}

func (d DraftAssignee) sameTarget(target models.AssignTarget) bool {
	if target.UserID != "" {
		return d.UserID == target.UserID
	}
	return target.ProjectID != "" && d.ProjectID == target.ProjectID
}

func draftFromAssignee(a models.Assignee) DraftAssignee {
	d := DraftAssignee{ID: a.ID}
	if a.User != nil && a.User.ID != 0 {
		d.UserID = strconv.FormatInt(a.User.ID, 10)
	}
	if a.Project != nil && a.Project.ID != 0 {
		d.ProjectID = strconv.FormatInt(a.Project.ID, 10)
	}
	return d
}

// Draft is an ordered, locally edited assignee set.
type Draft struct {
	entries []DraftAssignee
}

func NewDraft(persisted []models.Assignee) *Draft {
	entries := make([]DraftAssignee, 0, len(persisted))
	for _, a := range persisted {
		entries = append(entries, draftFromAssignee(a))
	}
	return &Draft{entries: entries}
}

func (d *Draft) Entries() []DraftAssignee {
	out := make([]DraftAssignee, len(d.entries))
	copy(out, d.entries)
	return out
}

func (d *Draft) Len() int {
	return len(d.entries)
}

// AddPending appends a pending entry for target. It reports false, and leaves
// the draft unchanged, when an entry for the same user or project is already
// present.
func (d *Draft) AddPending(target models.AssignTarget) (bool, error) {
	if err := target.Validate(); err != nil {
		return false, err
	}
	for _, e := range d.entries {
		if e.sameTarget(target) {
			return false, nil
		}
	}
	d.entries = append(d.entries, DraftAssignee{UserID: target.UserID, ProjectID: target.ProjectID})
	return true, nil
}

// RemoveByID drops the persisted entry with the given id.
func (d *Draft) RemoveByID(id int64) bool {
	if id == 0 {
		return false
	}
	for i, e := range d.entries {
		if e.ID == id {
			d.entries = append(d.entries[:i:i], d.entries[i+1:]...)
			return true
		}
	}
	return false
}

// RemoveAt drops the entry at index, pending or persisted.
func (d *Draft) RemoveAt(index int) bool {
	if index < 0 || index >= len(d.entries) {
		return false
	}
	d.entries = append(d.entries[:index:index], d.entries[index+1:]...)
	return true
}

// Changes is the set of server calls needed to move the persisted assignees
// to a draft.
type Changes struct {
	Added   []DraftAssignee
	Removed []models.Assignee
}

func (c Changes) Empty() bool {
	return len(c.Added) == 0 && len(c.Removed) == 0
}

// Diff computes the assignees to add (draft entries without an id) and to
// remove (persisted entries whose id no longer appears in the draft).
// Entries present on both sides produce no call.
func Diff(original []models.Assignee, draft []DraftAssignee) Changes {
	var changes Changes
	kept := make(map[int64]struct{}, len(draft))
	for _, d := range draft {
		if d.Pending() {
			changes.Added = append(changes.Added, d)
			continue
		}
		kept[d.ID] = struct{}{}
	}
	for _, o := range original {
		if _, ok := kept[o.ID]; !ok {
			changes.Removed = append(changes.Removed, o)
		}
	}
	return changes
}

// AssigneesChanged reports whether the draft differs from the persisted set
// in cardinality or in id membership.
func AssigneesChanged(original []models.Assignee, draft []DraftAssignee) bool {
	if len(original) != len(draft) {
		return true
	}
	ids := make(map[int64]struct{}, len(draft))
	for _, d := range draft {
		if !d.Pending() {
			ids[d.ID] = struct{}{}
		}
	}
	for _, o := range original {
		if _, ok := ids[o.ID]; !ok {
			return true
		}
	}
	return false
}
