package session

import (
	"context"
	"sync"

	"github.com/mohit-sharma-1733/testing-platform/internal/utils"
)

type registryKey struct {
	UserID int64
	TestID int64
}

// Registry tracks live controllers, enforcing at most one active session per
// user and test. Terminal controllers are evicted on the next lookup.
type Registry struct {
	mu       sync.Mutex
	logger   utils.Logger
	sessions map[registryKey]*Controller
}

func NewRegistry(logger utils.Logger) *Registry {
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Registry{
		logger:   logger,
		sessions: make(map[registryKey]*Controller),
	}
}

// Get returns the live controller for the user and test, or nil
func (r *Registry) Get(userID, testID int64) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.liveLocked(registryKey{UserID: userID, TestID: testID})
}

// Acquire returns the existing live controller, or builds one via factory,
// starts it, and registers it. A controller whose Start fails is not retained.
func (r *Registry) Acquire(ctx context.Context, userID, testID int64, factory func() *Controller) (*Controller, error) {
	key := registryKey{UserID: userID, TestID: testID}

	r.mu.Lock()
	if existing := r.liveLocked(key); existing != nil {
		r.mu.Unlock()
		return existing, nil
	}
	ctrl := factory()
	r.sessions[key] = ctrl
	r.mu.Unlock()

	if err := ctrl.Start(ctx); err != nil {
		r.Release(userID, testID)
		return nil, err
	}

	r.logger.Info("Session registered", "user_id", userID, "test_id", testID)
	return ctrl, nil
}

// Release tears down and evicts the controller for the user and test
func (r *Registry) Release(userID, testID int64) {
	key := registryKey{UserID: userID, TestID: testID}

	r.mu.Lock()
	ctrl, ok := r.sessions[key]
	if ok {
		delete(r.sessions, key)
	}
	r.mu.Unlock()

	if ok {
		ctrl.Close()
		r.logger.Info("Session released", "user_id", userID, "test_id", testID)
	}
}

// liveLocked returns the registered controller if it can still accept input,
// evicting it otherwise. Callers hold r.mu.
func (r *Registry) liveLocked(key registryKey) *Controller {
	ctrl, ok := r.sessions[key]
	if !ok {
		return nil
	}
	if !ctrl.Active() && ctrl.State() != StateInitializing {
		delete(r.sessions, key)
		ctrl.Close()
		return nil
	}
	return ctrl
}

// Len reports the number of registered sessions
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
