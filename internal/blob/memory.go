package blob

import (
	"context"
	"strings"
	"sync"
)

type Object struct {
	ContentType string
	Data        []byte
}

// Memory keeps objects in process. It backs local development and tests.
type Memory struct {
	mu      sync.Mutex
	baseURL string
	objects map[string]Object
	failOn  func(path string) error
}

func NewMemory(baseURL string) *Memory {
	return &Memory{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		objects: make(map[string]Object),
	}
}

func (m *Memory) Upload(ctx context.Context, path, contentType string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errEmptyObject
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failOn != nil {
		if err := m.failOn(path); err != nil {
			return "", err
		}
	}
	copied := make([]byte, len(data))
	copy(copied, data)
	m.objects[path] = Object{ContentType: contentType, Data: copied}
	return m.baseURL + "/" + path, nil
}

func (m *Memory) Get(path string) (Object, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	obj, ok := m.objects[path]
	return obj, ok
}

func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.objects)
}

// FailOn makes Upload return the error produced by fn; nil clears it.
func (m *Memory) FailOn(fn func(path string) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failOn = fn
}
