// Package kanban derives the four-column board from a project's task list and
// turns drag gestures into single status-move commands.
package kanban

import (
	"errors"

	"github.com/google/uuid"
	"github.com/yukikurage/studio-manager-api/internal/models"
)

var (
	ErrUnknownStatus   = errors.New("unknown kanban status")
	ErrTaskNotOnBoard  = errors.New("task is not on the board")
	ErrAlreadyDragging = errors.New("a task is already being dragged")
	ErrNotDragging     = errors.New("no task is being dragged")
)

// Bucket is one board column. Tasks keep the order of the list they came from.
type Bucket struct {
	Status models.TaskStatus `json:"status"`
	Title  string            `json:"title"`
	Tasks  []models.Task     `json:"tasks"`
}

var bucketTitles = map[models.TaskStatus]string{
	models.TaskStatusTodo:       "To Do",
	models.TaskStatusInProgress: "In Progress",
	models.TaskStatusReview:     "Review",
	models.TaskStatusDone:       "Done",
}

// Title returns the column heading for status.
func Title(status models.TaskStatus) string {
	return bucketTitles[status]
}

// IsBucket reports whether status names one of the fixed columns.
func IsBucket(status models.TaskStatus) bool {
	_, ok := bucketTitles[status]
	return ok
}

// Partition splits tasks into the fixed columns in models.TaskStatuses order.
// Tasks with a status outside the fixed set are dropped.
func Partition(tasks []models.Task) []Bucket {
	buckets := make([]Bucket, len(models.TaskStatuses))
	index := make(map[models.TaskStatus]int, len(models.TaskStatuses))
	for i, status := range models.TaskStatuses {
		buckets[i] = Bucket{Status: status, Title: Title(status), Tasks: []models.Task{}}
		index[status] = i
	}

	for _, task := range tasks {
		i, ok := index[task.Status]
		if !ok {
			continue
		}
		buckets[i].Tasks = append(buckets[i].Tasks, task)
	}

	return buckets
}

// MoveCommand is the one update a move produces.
type MoveCommand struct {
	TaskID uuid.UUID         `json:"task_id"`
	From   models.TaskStatus `json:"from"`
	To     models.TaskStatus `json:"to"`
}

// NewMove builds the command that moves task into to. ok is false when the
// task already sits in to.
func NewMove(task models.Task, to models.TaskStatus) (cmd MoveCommand, ok bool, err error) {
	if !IsBucket(to) {
		return MoveCommand{}, false, ErrUnknownStatus
	}
	if task.Status == to {
		return MoveCommand{}, false, nil
	}
	return MoveCommand{TaskID: task.ID, From: task.Status, To: to}, true, nil
}

type Board struct {
	ProjectID uuid.UUID `json:"project_id"`
	Buckets   []Bucket  `json:"buckets"`
}

func NewBoard(projectID uuid.UUID, tasks []models.Task) *Board {
	return &Board{ProjectID: projectID, Buckets: Partition(tasks)}
}

// Find returns the task and its bucket status.
func (b *Board) Find(taskID uuid.UUID) (models.Task, bool) {
	for _, bucket := range b.Buckets {
		for _, task := range bucket.Tasks {
			if task.ID == taskID {
				return task, true
			}
		}
	}
	return models.Task{}, false
}

func (b *Board) bucket(status models.TaskStatus) *Bucket {
	for i := range b.Buckets {
		if b.Buckets[i].Status == status {
			return &b.Buckets[i]
		}
	}
	return nil
}

// Apply moves the task locally, appending it to the target column.
func (b *Board) Apply(cmd MoveCommand) error {
	from := b.bucket(cmd.From)
	to := b.bucket(cmd.To)
	if from == nil || to == nil {
		return ErrUnknownStatus
	}

	for i, task := range from.Tasks {
		if task.ID != cmd.TaskID {
			continue
		}
		from.Tasks = append(from.Tasks[:i:i], from.Tasks[i+1:]...)
		task.Status = cmd.To
		to.Tasks = append(to.Tasks, task)
		return nil
	}

	return ErrTaskNotOnBoard
}

// Counts returns the number of tasks per column.
func (b *Board) Counts() map[models.TaskStatus]int {
	counts := make(map[models.TaskStatus]int, len(b.Buckets))
	for _, bucket := range b.Buckets {
		counts[bucket.Status] = len(bucket.Tasks)
	}
	return counts
}

// Total is the number of tasks on the board.
func (b *Board) Total() int {
	total := 0
	for _, bucket := range b.Buckets {
		total += len(bucket.Tasks)
	}
	return total
}
