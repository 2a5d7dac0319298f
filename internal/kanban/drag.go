package kanban

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

type DragState string

const (
	StateIdle     DragState = "idle"
	StateDragging DragState = "dragging"
)

// Drag tracks one user's drag gesture on one board.
//
//	idle --Start(task)--> dragging(task)
//	dragging --Drop(over)--> idle   (emits at most one MoveCommand)
//	dragging --Cancel()--> idle
type Drag struct {
	state  DragState
	taskID uuid.UUID
}

func NewDrag() *Drag {
	return &Drag{state: StateIdle}
}

func (d *Drag) State() DragState {
	return d.state
}

// TaskID returns the dragged task while dragging.
func (d *Drag) TaskID() (uuid.UUID, bool) {
	if d.state != StateDragging {
		return uuid.Nil, false
	}
	return d.taskID, true
}

func (d *Drag) Start(taskID uuid.UUID) error {
	if d.state == StateDragging {
		return ErrAlreadyDragging
	}
	d.state = StateDragging
	d.taskID = taskID
	return nil
}

// Drop ends the gesture over a column status or over another task, in which
// case the target is that task's column. ok is false when the task lands in
// the column it started from. The machine is idle afterwards whatever the
// outcome, so a gesture never produces a second update.
func (d *Drag) Drop(board *Board, over string) (cmd MoveCommand, ok bool, err error) {
	if d.state != StateDragging {
		return MoveCommand{}, false, ErrNotDragging
	}
	taskID := d.taskID
	d.Cancel()

	task, found := board.Find(taskID)
	if !found {
		return MoveCommand{}, false, ErrTaskNotOnBoard
	}

	to, err := resolveTarget(board, over)
	if err != nil {
		return MoveCommand{}, false, err
	}

	return NewMove(task, to)
}

func (d *Drag) Cancel() {
	d.state = StateIdle
	d.taskID = uuid.Nil
}

func resolveTarget(board *Board, over string) (models.TaskStatus, error) {
	status := models.TaskStatus(over)
	if IsBucket(status) {
		return status, nil
	}

	if id, err := uuid.Parse(over); err == nil {
		if task, found := board.Find(id); found {
			return task.Status, nil
		}
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, over)
}

// Snapshot encodes the machine for session storage. Idle encodes as "".
func (d *Drag) Snapshot() string {
	if d.state != StateDragging {
		return ""
	}
	return d.taskID.String()
}

// RestoreDrag rebuilds a machine from Snapshot output. Anything unreadable
// restores as idle.
func RestoreDrag(snapshot string) *Drag {
	d := NewDrag()
	if snapshot == "" {
		return d
	}
	id, err := uuid.Parse(snapshot)
	if err != nil {
		return d
	}
	d.state = StateDragging
	d.taskID = id
	return d
}
