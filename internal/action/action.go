// Package action is the single authoritative mapping from a submitted
// command to one store mutation. Every route that accepts a command
// posts the same flat form payload with an _action discriminator; the
// payload is parsed once at the boundary into a typed command, so the
// dispatch switch is exhaustive and a malformed payload never reaches
// the store.
package action

import (
	"errors"
	"fmt"
	"strings"

	"planner/internal/calendar"
)

type Name string

const (
	CreateTask        Name = "CREATE_TASK"
	UpdateTaskName    Name = "UPDATE_TASK_NAME"
	MoveTaskToDay     Name = "MOVE_TASK_TO_DAY"
	MoveTaskToBacklog Name = "MOVE_TASK_TO_BACKLOG"
	MarkComplete      Name = "MARK_COMPLETE"
	MarkIncomplete    Name = "MARK_INCOMPLETE"
	DeleteTask        Name = "DELETE_TASK"
	MoveTaskToBucket  Name = "MOVE_TASK_TO_BUCKET"
	UnassignTask      Name = "UNASSIGN_TASK"
	CreateBucket      Name = "CREATE_BUCKET"
	DeleteBucket      Name = "DELETE_BUCKET"
	RenameBucket      Name = "UPDATE_BUCKET_NAME"
)

// Field is the form key carrying the discriminator.
const Field = "_action"

var (
	// ErrInvariant classifies a missing or malformed required field:
	// the command is rejected before any mutation is attempted.
	ErrInvariant = errors.New("invariant failed")
	// ErrUnknownAction classifies an unrecognized discriminator. It is
	// an integration bug, never expected in normal operation.
	ErrUnknownAction = errors.New("unknown action")
)

// Command is the tagged union of everything the dispatcher can do.
type Command interface {
	ActionName() Name
}

// UpsertTaskCmd backs both CREATE_TASK and UPDATE_TASK_NAME: the store
// upserts by the client-generated id, so create and rename share one
// shape. Nil placement fields mean "not supplied".
type UpsertTaskCmd struct {
	Action   Name
	ID       string
	TaskName string
	Date     *string
	BucketID *string
}

type SetCompleteCmd struct {
	ID       string
	Complete bool
}

type MoveToDayCmd struct {
	ID  string
	Day string
}

type MoveToBacklogCmd struct{ ID string }

type AssignBucketCmd struct {
	ID       string
	BucketID string
}

type UnassignCmd struct{ ID string }

type DeleteTaskCmd struct{ ID string }

type CreateBucketCmd struct {
	ID         string
	BucketName string
}

type DeleteBucketCmd struct{ ID string }

// RenameBucketCmd carries the slug the client is currently viewing so
// the dispatcher can tell it to follow the bucket to its new URL.
type RenameBucketCmd struct {
	ID         string
	BucketName string
	ViewedSlug string
}

func (c UpsertTaskCmd) ActionName() Name { return c.Action }
func (c SetCompleteCmd) ActionName() Name {
	if c.Complete {
		return MarkComplete
	}
	return MarkIncomplete
}
func (c MoveToDayCmd) ActionName() Name     { return MoveTaskToDay }
func (c MoveToBacklogCmd) ActionName() Name { return MoveTaskToBacklog }
func (c AssignBucketCmd) ActionName() Name  { return MoveTaskToBucket }
func (c UnassignCmd) ActionName() Name      { return UnassignTask }
func (c DeleteTaskCmd) ActionName() Name    { return DeleteTask }
func (c CreateBucketCmd) ActionName() Name  { return CreateBucket }
func (c DeleteBucketCmd) ActionName() Name  { return DeleteBucket }
func (c RenameBucketCmd) ActionName() Name  { return RenameBucket }

// Payload is a flat string-keyed form submission.
type Payload map[string]string

func (p Payload) require(key string) (string, error) {
	v := strings.TrimSpace(p[key])
	if v == "" {
		return "", fmt.Errorf("%w: expected %s", ErrInvariant, key)
	}
	return v, nil
}

func (p Payload) optional(key string) *string {
	v, ok := p[key]
	if !ok {
		return nil
	}
	v = strings.TrimSpace(v)
	if v == "" {
		return nil
	}
	return &v
}

// Parse turns a payload into a typed command. routeDay is the day from
// the enclosing route, the only command input that does not travel in
// the form body.
func Parse(p Payload, routeDay string) (Command, error) {
	name := Name(strings.TrimSpace(p[Field]))

	switch name {
	case CreateTask, UpdateTaskName:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		cmd := UpsertTaskCmd{
			Action:   name,
			ID:       id,
			TaskName: p["name"],
			Date:     p.optional("date"),
			BucketID: p.optional("bucketId"),
		}
		if cmd.Date != nil && !calendar.IsDayKey(*cmd.Date) {
			return nil, fmt.Errorf("%w: bad date %q", ErrInvariant, *cmd.Date)
		}
		return cmd, nil

	case MarkComplete, MarkIncomplete:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		return SetCompleteCmd{ID: id, Complete: name == MarkComplete}, nil

	case MoveTaskToDay:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		day := strings.TrimSpace(routeDay)
		if day == "" {
			return nil, fmt.Errorf("%w: expected day in route", ErrInvariant)
		}
		if !calendar.IsDayKey(day) {
			return nil, fmt.Errorf("%w: bad day %q", ErrInvariant, day)
		}
		return MoveToDayCmd{ID: id, Day: day}, nil

	case MoveTaskToBacklog:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		return MoveToBacklogCmd{ID: id}, nil

	case MoveTaskToBucket:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		bucketID, err := p.require("bucketId")
		if err != nil {
			return nil, err
		}
		return AssignBucketCmd{ID: id, BucketID: bucketID}, nil

	case UnassignTask:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		return UnassignCmd{ID: id}, nil

	case DeleteTask:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		return DeleteTaskCmd{ID: id}, nil

	case CreateBucket:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		return CreateBucketCmd{ID: id, BucketName: p["name"]}, nil

	case DeleteBucket:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		return DeleteBucketCmd{ID: id}, nil

	case RenameBucket:
		id, err := p.require("id")
		if err != nil {
			return nil, err
		}
		bucketName, err := p.require("name")
		if err != nil {
			return nil, err
		}
		viewedSlug, err := p.require("slug")
		if err != nil {
			return nil, err
		}
		return RenameBucketCmd{ID: id, BucketName: bucketName, ViewedSlug: viewedSlug}, nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownAction, string(name))
	}
}
