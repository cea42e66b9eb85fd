package models

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidStatus = errors.New("invalid status")

type Status string

const (
	StatusOpen       Status = "OPEN"
	StatusInProgress Status = "IN_PROGRESS"
	StatusResolved   Status = "RESOLVED"
	StatusClosed     Status = "CLOSED"
)

// Statuses lists every status in lifecycle order.
func Statuses() []Status {
	return []Status{StatusOpen, StatusInProgress, StatusResolved, StatusClosed}
}

func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusResolved, StatusClosed:
		return true
	}
	return false
}

// ParseStatus accepts the wire form ("IN_PROGRESS") as well as the
// human form ("in progress", "in-progress").
func ParseStatus(raw string) (Status, error) {
	normalized := strings.ToUpper(strings.TrimSpace(raw))
	normalized = strings.NewReplacer(" ", "_", "-", "_").Replace(normalized)
	status := Status(normalized)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, raw)
	}
	return status, nil
}

type Priority string

const (
	PriorityLow      Priority = "LOW"
	PriorityMedium   Priority = "MEDIUM"
	PriorityHigh     Priority = "HIGH"
	PriorityCritical Priority = "CRITICAL"
)

func ParsePriority(raw string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority: %q", raw)
}

type Ticket struct {
	ID              int64      `json:"id"`
	Title           string     `json:"title"`
	Description     string     `json:"description"`
	ApplicationName string     `json:"applicationName"`
	Priority        Priority   `json:"priority"`
	Status          Status     `json:"status"`
	CreatedBy       string     `json:"createdBy"`
	CreatedAt       string     `json:"createdAt"`
	UpdatedAt       string     `json:"updatedAt"`
	DeadLine        string     `json:"deadLine,omitempty"`
	Assignees       []Assignee `json:"assignees"`
}

// Clone returns a deep copy; the assignee slice is not shared.
func (t Ticket) Clone() Ticket {
	out := t
	if t.Assignees != nil {
		out.Assignees = make([]Assignee, len(t.Assignees))
		copy(out.Assignees, t.Assignees)
	}
	return out
}

type Assignee struct {
	ID         int64    `json:"id"`
	User       *User    `json:"user,omitempty"`
	Project    *Project `json:"project,omitempty"`
	AssignedBy *User    `json:"assignedBy,omitempty"`
	AssignedAt string   `json:"assignedAt,omitempty"`
}

// Label is the user's email or the project's name.
func (a Assignee) Label() string {
	switch {
	case a.User != nil:
		return a.User.Email
	case a.Project != nil:
		return a.Project.Name
	}
	return ""
}

// AssignTarget references either a user or a project, never both.
type AssignTarget struct {
	UserID    string `json:"userId,omitempty"`
	ProjectID string `json:"projectId,omitempty"`
}

func (t AssignTarget) Validate() error {
	switch {
	case t.UserID == "" && t.ProjectID == "":
		return errors.New("assign target needs a user or a project")
	case t.UserID != "" && t.ProjectID != "":
		return errors.New("assign target cannot reference both a user and a project")
	}
	return nil
}

type NewTicket struct {
	Title         string   `json:"title"`
	Description   string   `json:"description"`
	ApplicationID int64    `json:"applicationId"`
	Priority      Priority `json:"priority"`
	DeadLine      string   `json:"deadLine,omitempty"`
}

type Comment struct {
	ID          int64  `json:"id"`
	User        *User  `json:"user,omitempty"`
	Comment     string `json:"comment"`
	AIGenerated bool   `json:"aiGenerated"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

type Application struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Project struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Members []User `json:"members,omitempty"`
}
