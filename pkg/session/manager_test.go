package session

import (
	"sync"
	"testing"
	"time"

	nerrors "github.com/Agnuxo1/Holographic-quantum-RAG-Nebula/pkg/errors"
)

func TestManager_CreateGetDelete(t *testing.T) {
	m := NewManager(testConfig(3))

	s, err := m.Create("alpha")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := m.Get(s.ID)
	if err != nil || got != s {
		t.Fatalf("Get = %v, %v", got, err)
	}

	if err := m.Delete(s.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if s.IsActive() {
		t.Error("Delete should end the session")
	}
	if _, err := m.Get(s.ID); !nerrors.IsCode(err, nerrors.ErrSessionNotFound) {
		t.Errorf("Get after Delete: got %v", err)
	}
	if err := m.Delete(s.ID); !nerrors.IsCode(err, nerrors.ErrSessionNotFound) {
		t.Errorf("second Delete: got %v", err)
	}
}

func TestManager_List(t *testing.T) {
	m := NewManager(testConfig(4))

	first, _ := m.Create("first")
	second, _ := m.Create("second")
	second.StartedAt = first.StartedAt.Add(time.Second)
	second.End()

	list := m.List()
	if len(list) != 2 {
		t.Fatalf("List length = %d, want 2", len(list))
	}
	if list[0].ID != first.ID || list[1].ID != second.ID {
		t.Error("List should be ordered by start time")
	}
	if !list[0].IsActive || list[1].IsActive {
		t.Errorf("active flags = %v, %v", list[0].IsActive, list[1].IsActive)
	}
}

func TestManager_Concurrent(t *testing.T) {
	m := NewManager(testConfig(5))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s, err := m.Create("")
			if err != nil {
				t.Error(err)
				return
			}
			if _, err := s.Submit("concurrent words here"); err != nil {
				t.Error(err)
			}
			m.List()
		}()
	}
	wg.Wait()

	if m.Len() != 8 {
		t.Errorf("Len = %d, want 8", m.Len())
	}
}
