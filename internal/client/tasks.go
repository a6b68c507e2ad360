package client

import (
	"context"
	"log/slog"
	"sync"

	"github.com/msomdec/task-board/internal/domain"
	"golang.org/x/sync/singleflight"
)

// TaskState is the client's copy of the signed-in user's tasks.
type TaskState struct {
	Tasks      []Task
	ActiveTask *Task
	Filter     domain.TaskFilter
	IsLoading  bool
	Error      string
}

// FilteredTasks is the subset of Tasks the current filter selects, in the
// same order.
func (s TaskState) FilteredTasks() []Task {
	return FilterTasks(s.Tasks, s.Filter)
}

// FilterTasks returns the tasks f matches. The result never aliases tasks.
func FilterTasks(tasks []Task, f domain.TaskFilter) []Task {
	out := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		if f.Match(t.Category, t.Status, t.Title) {
			out = append(out, t)
		}
	}
	return out
}

// FilterPatch changes some filter fields. Nil leaves a field alone; a
// pointer to "" clears it.
type FilterPatch struct {
	Category *domain.Category
	Status   *domain.Status
	Search   *string
}

func (p FilterPatch) apply(f domain.TaskFilter) domain.TaskFilter {
	if p.Category != nil {
		f.Category = *p.Category
	}
	if p.Status != nil {
		f.Status = *p.Status
	}
	if p.Search != nil {
		f.Search = *p.Search
	}
	return f
}

// TaskAction is an input to ReduceTasks.
type TaskAction interface{ taskAction() }

type (
	FetchRequested  struct{}
	FetchSucceeded  struct{ Tasks []Task }
	FetchFailed     struct{ Message string }
	AddRequested    struct{}
	AddSucceeded    struct{ Task Task }
	AddFailed       struct{ Message string }
	UpdateRequested struct{}
	UpdateSucceeded struct{ Task Task }
	UpdateFailed    struct{ Message string }
	DeleteRequested struct{}
	DeleteSucceeded struct{ ID string }
	DeleteFailed    struct{ Message string }
	ActiveTaskSet   struct{ Task *Task }
	FilterChanged   struct{ Patch FilterPatch }
	TasksReset      struct{}
)

func (FetchRequested) taskAction()  {}
func (FetchSucceeded) taskAction()  {}
func (FetchFailed) taskAction()     {}
func (AddRequested) taskAction()    {}
func (AddSucceeded) taskAction()    {}
func (AddFailed) taskAction()       {}
func (UpdateRequested) taskAction() {}
func (UpdateSucceeded) taskAction() {}
func (UpdateFailed) taskAction()    {}
func (DeleteRequested) taskAction() {}
func (DeleteSucceeded) taskAction() {}
func (DeleteFailed) taskAction()    {}
func (ActiveTaskSet) taskAction()   {}
func (FilterChanged) taskAction()   {}
func (TasksReset) taskAction()      {}

// ReduceTasks returns the state that follows s after a. It never modifies
// s.Tasks in place.
func ReduceTasks(s TaskState, a TaskAction) TaskState {
	switch a := a.(type) {
	case FetchRequested, AddRequested, UpdateRequested, DeleteRequested:
		s.IsLoading = true
		s.Error = ""

	case FetchSucceeded:
		s.Tasks = append([]Task(nil), a.Tasks...)
		s.IsLoading = false
		s.Error = ""

	case AddSucceeded:
		tasks := make([]Task, 0, len(s.Tasks)+1)
		tasks = append(tasks, a.Task)
		s.Tasks = append(tasks, s.Tasks...)
		s.IsLoading = false
		s.Error = ""

	case UpdateSucceeded:
		tasks := make([]Task, len(s.Tasks))
		for i, t := range s.Tasks {
			if t.ID == a.Task.ID {
				t = a.Task
			}
			tasks[i] = t
		}
		s.Tasks = tasks
		if s.ActiveTask != nil && s.ActiveTask.ID == a.Task.ID {
			updated := a.Task
			s.ActiveTask = &updated
		}
		s.IsLoading = false
		s.Error = ""

	case DeleteSucceeded:
		tasks := make([]Task, 0, len(s.Tasks))
		for _, t := range s.Tasks {
			if t.ID != a.ID {
				tasks = append(tasks, t)
			}
		}
		s.Tasks = tasks
		if s.ActiveTask != nil && s.ActiveTask.ID == a.ID {
			s.ActiveTask = nil
		}
		s.IsLoading = false
		s.Error = ""

	case FetchFailed:
		s.IsLoading, s.Error = false, a.Message
	case AddFailed:
		s.IsLoading, s.Error = false, a.Message
	case UpdateFailed:
		s.IsLoading, s.Error = false, a.Message
	case DeleteFailed:
		s.IsLoading, s.Error = false, a.Message

	case ActiveTaskSet:
		if a.Task == nil {
			s.ActiveTask = nil
		} else {
			active := *a.Task
			s.ActiveTask = &active
		}

	case FilterChanged:
		s.Filter = a.Patch.apply(s.Filter)

	case TasksReset:
		return TaskState{}
	}
	return s
}

// TaskListener is told about every state change.
type TaskListener func(ctx context.Context, prev, next TaskState)

// TaskStore is the shared handle over TaskState. It follows the session:
// tasks are fetched when it signs in and dropped when it signs out.
type TaskStore struct {
	api     TaskAPI
	session *Session
	fetches singleflight.Group // one list call per token at a time

	mu        sync.Mutex
	state     TaskState
	listeners []TaskListener
}

// NewTaskStore wires a store to session. If the session is already signed in
// the first fetch happens here; a failure is recorded in state.
func NewTaskStore(ctx context.Context, api TaskAPI, session *Session) *TaskStore {
	ts := &TaskStore{api: api, session: session}
	session.Subscribe(ts.followSession)

	if session.State().IsAuthenticated {
		if err := ts.Fetch(ctx); err != nil {
			slog.Debug("initial task fetch", "error", err)
		}
	}
	return ts
}

func (ts *TaskStore) followSession(ctx context.Context, prev, next SessionState) {
	switch {
	case next.IsAuthenticated && (!prev.IsAuthenticated || prev.Token != next.Token):
		if prev.IsAuthenticated {
			ts.Dispatch(ctx, TasksReset{})
		}
		if err := ts.Fetch(ctx); err != nil {
			slog.Debug("task fetch after sign-in", "error", err)
		}
	case prev.IsAuthenticated && !next.IsAuthenticated:
		ts.Dispatch(ctx, TasksReset{})
	}
}

// State returns a snapshot of the current state.
func (ts *TaskStore) State() TaskState {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.state
}

// Subscribe registers fn for every later state change.
func (ts *TaskStore) Subscribe(fn TaskListener) {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	ts.listeners = append(ts.listeners, fn)
}

// Dispatch applies a and notifies listeners.
func (ts *TaskStore) Dispatch(ctx context.Context, a TaskAction) TaskState {
	ts.mu.Lock()
	prev := ts.state
	next := ReduceTasks(prev, a)
	ts.state = next
	listeners := append([]TaskListener(nil), ts.listeners...)
	ts.mu.Unlock()

	for _, fn := range listeners {
		fn(ctx, prev, next)
	}
	return next
}

// Fetch replaces the local tasks with the server's. It does nothing while
// the session is signed out.
func (ts *TaskStore) Fetch(ctx context.Context) error {
	session := ts.session.State()
	if !session.IsAuthenticated {
		return nil
	}

	ts.Dispatch(ctx, FetchRequested{})
	v, err, _ := ts.fetches.Do(session.Token, func() (any, error) {
		return ts.api.ListTasks(ctx, session.Token)
	})
	if err != nil {
		return ts.fail(ctx, err, "Failed to fetch tasks", func(m string) TaskAction { return FetchFailed{Message: m} })
	}
	ts.Dispatch(ctx, FetchSucceeded{Tasks: v.([]Task)})
	return nil
}

// Add creates a task and puts it at the front of the list.
func (ts *TaskStore) Add(ctx context.Context, in NewTask) (*Task, error) {
	ts.Dispatch(ctx, AddRequested{})
	task, err := ts.api.CreateTask(ctx, ts.session.Token(), in)
	if err != nil {
		return nil, ts.fail(ctx, err, "Failed to add task", func(m string) TaskAction { return AddFailed{Message: m} })
	}
	ts.Dispatch(ctx, AddSucceeded{Task: *task})
	return task, nil
}

// Update changes a task and replaces the local copy.
func (ts *TaskStore) Update(ctx context.Context, id string, patch TaskPatch) (*Task, error) {
	ts.Dispatch(ctx, UpdateRequested{})
	task, err := ts.api.UpdateTask(ctx, ts.session.Token(), id, patch)
	if err != nil {
		return nil, ts.fail(ctx, err, "Failed to update task", func(m string) TaskAction { return UpdateFailed{Message: m} })
	}
	ts.Dispatch(ctx, UpdateSucceeded{Task: *task})
	return task, nil
}

// Delete removes a task.
func (ts *TaskStore) Delete(ctx context.Context, id string) error {
	ts.Dispatch(ctx, DeleteRequested{})
	if err := ts.api.DeleteTask(ctx, ts.session.Token(), id); err != nil {
		return ts.fail(ctx, err, "Failed to delete task", func(m string) TaskAction { return DeleteFailed{Message: m} })
	}
	ts.Dispatch(ctx, DeleteSucceeded{ID: id})
	return nil
}

// SetActive selects the task being edited; nil clears it.
func (ts *TaskStore) SetActive(ctx context.Context, task *Task) {
	ts.Dispatch(ctx, ActiveTaskSet{Task: task})
}

// SetFilter merges p into the current filter.
func (ts *TaskStore) SetFilter(ctx context.Context, p FilterPatch) {
	ts.Dispatch(ctx, FilterChanged{Patch: p})
}

// fail records err in state. A 401 means the token is no longer any good,
// so the session is signed out first and the failure recorded after the
// reset that follows.
func (ts *TaskStore) fail(ctx context.Context, err error, fallback string, action func(string) TaskAction) error {
	msg := messageOr(err, fallback)
	if isUnauthorized(err) && ts.session.State().IsAuthenticated {
		ts.session.Expire(ctx)
	}
	ts.Dispatch(ctx, action(msg))
	return &ActionError{Message: msg, Err: err}
}
