package routehandlers

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/coreybb/mylist/datastore"
	"github.com/coreybb/mylist/models"
)

// memStore is an in-memory UserStore and TaskStore with the same
// not-found and uniqueness semantics as the PostgreSQL repositories.
type memStore struct {
	mu         sync.Mutex
	users      map[int64]models.User
	tasks      map[int64]models.Task
	nextUserID int64
	nextTaskID int64
	writes     int
}

func newMemStore() *memStore {
	return &memStore{
		users: make(map[int64]models.User),
		tasks: make(map[int64]models.Task),
	}
}

func (s *memStore) emailTakenBy(email string, exceptID int64) bool {
	for id, u := range s.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

func (s *memStore) CreateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.emailTakenBy(user.Email, 0) {
		return datastore.ErrEmailTaken
	}
	s.nextUserID++
	user.ID = s.nextUserID
	s.users[user.ID] = *user
	s.writes++
	return nil
}

func (s *memStore) GetUserByID(_ context.Context, userID int64) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, datastore.ErrUserNotFound
	}
	return &u, nil
}

func (s *memStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, datastore.ErrUserNotFound
}

func (s *memStore) UpdateUser(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.ID]; !ok {
		return datastore.ErrUserNotFound
	}
	if s.emailTakenBy(user.Email, user.ID) {
		return datastore.ErrEmailTaken
	}
	s.users[user.ID] = *user
	s.writes++
	return nil
}

func (s *memStore) DeleteUser(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[userID]; !ok {
		return datastore.ErrUserNotFound
	}
	for id, task := range s.tasks {
		if task.UserID == userID {
			delete(s.tasks, id)
		}
	}
	delete(s.users, userID)
	s.writes++
	return nil
}

func (s *memStore) CreateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextTaskID++
	task.ID = s.nextTaskID
	s.tasks[task.ID] = *task
	s.writes++
	return nil
}

func (s *memStore) GetTaskForUser(_ context.Context, userID, taskID int64) (*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return nil, datastore.ErrTaskNotFound
	}
	return &task, nil
}

func (s *memStore) ListTasks(_ context.Context, userID int64, filter models.TaskFilter) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	keyword := strings.ToLower(filter.Keyword)
	tasks := []models.Task{}
	for _, task := range s.tasks {
		if task.UserID != userID {
			continue
		}
		if keyword != "" && !strings.Contains(strings.ToLower(task.Description), keyword) {
			continue
		}
		if filter.StartDate != nil && task.Deadline.Before(filter.StartDate.Time) {
			continue
		}
		if filter.EndDate != nil && task.Deadline.After(filter.EndDate.Time) {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool {
		if !tasks[i].Deadline.Equal(tasks[j].Deadline.Time) {
			return tasks[i].Deadline.Before(tasks[j].Deadline.Time)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

func (s *memStore) UpdateTask(_ context.Context, task *models.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.tasks[task.ID]
	if !ok || stored.UserID != task.UserID {
		return datastore.ErrTaskNotFound
	}
	s.tasks[task.ID] = *task
	s.writes++
	return nil
}

func (s *memStore) DeleteTask(_ context.Context, userID, taskID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[taskID]
	if !ok || task.UserID != userID {
		return datastore.ErrTaskNotFound
	}
	delete(s.tasks, taskID)
	s.writes++
	return nil
}

func (s *memStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writes
}

func (s *memStore) user(userID int64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[userID]
}

func (s *memStore) taskCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}
