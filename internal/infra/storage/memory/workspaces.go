package memory

import (
	"context"
	"sync"

	"churnportal/internal/app/workspace"
	domainauth "churnportal/internal/domain/auth"
	"churnportal/internal/domain/employee"
)

// WorkspaceStore hands out one live workspace per browser id. Workspaces
// guard their own state, so the store returns shared pointers.
type WorkspaceStore struct {
	mu         sync.Mutex
	scale      employee.Scale
	workspaces map[domainauth.BrowserID]*workspace.Workspace
}

func NewWorkspaceStore(scale employee.Scale) *WorkspaceStore {
	return &WorkspaceStore{
		scale:      scale,
		workspaces: make(map[domainauth.BrowserID]*workspace.Workspace),
	}
}

func (s *WorkspaceStore) Load(ctx context.Context, id domainauth.BrowserID) (*workspace.Workspace, error) {
	if id == "" {
		return nil, domainauth.ErrBrowserIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	ws, ok := s.workspaces[id]
	if !ok {
		ws = workspace.New(s.scale)
		s.workspaces[id] = ws
	}
	return ws, nil
}

func (s *WorkspaceStore) Delete(ctx context.Context, id domainauth.BrowserID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.workspaces, id)
	return nil
}

func (s *WorkspaceStore) Move(ctx context.Context, from, to domainauth.BrowserID) error {
	if to == "" {
		return domainauth.ErrBrowserIDRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if ws, ok := s.workspaces[from]; ok {
		s.workspaces[to] = ws
		delete(s.workspaces, from)
	}
	return nil
}

// Len reports how many browsers currently hold a workspace.
func (s *WorkspaceStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.workspaces)
}

var _ workspace.Store = (*WorkspaceStore)(nil)
