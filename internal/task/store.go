package task

import "time"

// Store is the in-memory task list owned by one planner session. It starts
// empty and only grows: tasks are appended, never edited or removed.
type Store struct {
	tasks  []*Task
	nextID int
}

// NewStore returns an empty store whose first task gets ID 1.
func NewStore() *Store {
	return &Store{nextID: 1}
}

// SetNextID moves the ID counter forward. It never moves it backward.
func (s *Store) SetNextID(id int) {
	if id > s.nextID {
		s.nextID = id
	}
}

// NextID returns the ID the next added task will get.
func (s *Store) NextID() int {
	return s.nextID
}

// Add validates d, assigns the next ID, and appends the resulting task.
// An empty title is rejected and leaves the store unchanged.
func (s *Store) Add(d Draft, now time.Time) (*Task, error) {
	t, err := d.Build(now)
	if err != nil {
		return nil, err
	}
	t.ID = s.nextID
	s.nextID++
	s.tasks = append(s.tasks, t)
	return t, nil
}

// Insert appends an already-built task, e.g. one read back from disk.
func (s *Store) Insert(t *Task) {
	s.tasks = append(s.tasks, t)
	if t.ID >= s.nextID {
		s.nextID = t.ID + 1
	}
}

// Tasks returns the tasks in insertion order. The slice is a copy.
func (s *Store) Tasks() []*Task {
	out := make([]*Task, len(s.tasks))
	copy(out, s.tasks)
	return out
}

// Len returns the number of tasks.
func (s *Store) Len() int {
	return len(s.tasks)
}

// Get returns the task with the given ID.
func (s *Store) Get(id int) (*Task, bool) {
	for _, t := range s.tasks {
		if t.ID == id {
			return t, true
		}
	}
	return nil, false
}
