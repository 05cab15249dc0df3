package tasks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/taskhive/taskhive/internal/shared"
)

type memoryRepo struct {
	tasks  map[int64]*Task
	nextID int64
}

func newMemoryRepo(seed ...Task) *memoryRepo {
	repo := &memoryRepo{tasks: map[int64]*Task{}, nextID: 1}
	for _, t := range seed {
		task := t
		repo.tasks[task.ID] = &task
		if task.ID >= repo.nextID {
			repo.nextID = task.ID + 1
		}
	}
	return repo
}

func (m *memoryRepo) ListByProject(ctx context.Context, projectID int64) ([]Task, error) {
	var out []Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (m *memoryRepo) Get(ctx context.Context, id int64) (*Task, error) {
	t, ok := m.tasks[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	copied := *t
	return &copied, nil
}

func (m *memoryRepo) Create(ctx context.Context, task Task) (*Task, error) {
	task.ID = m.nextID
	m.nextID++
	m.tasks[task.ID] = &task
	copied := task
	return &copied, nil
}

func (m *memoryRepo) Update(ctx context.Context, task Task) (*Task, error) {
	if _, ok := m.tasks[task.ID]; !ok {
		return nil, shared.ErrNotFound
	}
	m.tasks[task.ID] = &task
	copied := task
	return &copied, nil
}

func (m *memoryRepo) UpdateStatus(ctx context.Context, id int64, from, to Status) error {
	t, ok := m.tasks[id]
	if !ok || t.Status != from {
		return shared.ErrInvalidTransition
	}
	t.Status = to
	return nil
}

func (m *memoryRepo) Delete(ctx context.Context, id int64) error {
	if _, ok := m.tasks[id]; !ok {
		return shared.ErrNotFound
	}
	delete(m.tasks, id)
	return nil
}

func newTestService(seed ...Task) *Service {
	return NewService(newMemoryRepo(seed...), nil)
}

func TestCreateStartsTodo(t *testing.T) {
	svc := newTestService()

	task, err := svc.Create(context.Background(), 1, 10, "Ship exports", "", nil)
	require.NoError(t, err)
	require.Equal(t, StatusTodo, task.Status)
}

func TestChangeStatusFollowsChain(t *testing.T) {
	svc := newTestService(Task{ID: 1, ProjectID: 10, Title: "t", Status: StatusTodo})

	task, err := svc.ChangeStatus(context.Background(), 1, 1, StatusInProgress)
	require.NoError(t, err)
	require.Equal(t, StatusInProgress, task.Status)
}

func TestChangeStatusRejectsOutOfChainJump(t *testing.T) {
	svc := newTestService(Task{ID: 1, ProjectID: 10, Title: "t", Status: StatusTodo})

	_, err := svc.ChangeStatus(context.Background(), 1, 1, StatusDone)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestAdvanceWalksTheBoard(t *testing.T) {
	svc := newTestService(Task{ID: 1, ProjectID: 10, Title: "t", Status: StatusTodo})

	for _, want := range []Status{StatusInProgress, StatusInReview, StatusDone} {
		task, err := svc.Advance(context.Background(), 1, 1)
		require.NoError(t, err)
		require.Equal(t, want, task.Status)
	}

	_, err := svc.Advance(context.Background(), 1, 1)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestSendBackStopsAtTodo(t *testing.T) {
	svc := newTestService(Task{ID: 1, ProjectID: 10, Title: "t", Status: StatusInProgress})

	task, err := svc.SendBack(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Equal(t, StatusTodo, task.Status)

	_, err = svc.SendBack(context.Background(), 1, 1)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestDoneTasksAreFrozen(t *testing.T) {
	svc := newTestService(Task{ID: 1, ProjectID: 10, Title: "t", Status: StatusDone})

	_, err := svc.SendBack(context.Background(), 1, 1)
	require.ErrorIs(t, err, shared.ErrInvalidTransition)
}

func TestBoardOrdersColumnsByWeight(t *testing.T) {
	svc := newTestService(
		Task{ID: 1, ProjectID: 10, Title: "a", Status: StatusDone},
		Task{ID: 2, ProjectID: 10, Title: "b", Status: StatusTodo},
		Task{ID: 3, ProjectID: 10, Title: "c", Status: StatusInProgress},
		Task{ID: 4, ProjectID: 11, Title: "other project", Status: StatusTodo},
	)

	columns, err := svc.Board(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, columns, 4)

	var statuses []Status
	var labels []string
	for _, col := range columns {
		statuses = append(statuses, col.Status)
		labels = append(labels, col.Label)
	}
	require.Equal(t, []Status{StatusTodo, StatusInProgress, StatusInReview, StatusDone}, statuses)
	require.Equal(t, []string{"To Do", "In Progress", "In Review", "Done"}, labels)

	require.Len(t, columns[0].Tasks, 1)
	require.Empty(t, columns[2].Tasks)
}

// Rows with a status outside the chain still get a column instead of
// vanishing; the zero weight sinks it to the front.
func TestBoardKeepsStrayStatuses(t *testing.T) {
	svc := newTestService(Task{ID: 1, ProjectID: 10, Title: "legacy", Status: Status("blocked")})

	columns, err := svc.Board(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, columns, 5)
	require.Equal(t, Status("blocked"), columns[0].Status)
	require.Equal(t, "Blocked", columns[0].Label)
}
