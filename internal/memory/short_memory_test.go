package memory

import (
	"sync"
	"testing"

	"github.com/M4n5ter/swarms-go/pkg/models"
)

func TestShortMemory_AddGet(t *testing.T) {
	m := New()
	m.Add("T", models.User("alice"), "hello")
	m.Add("T", models.Assistant("bot"), "hi there")

	conv, ok := m.Get("T")
	if !ok {
		t.Fatalf("expected conversation for T")
	}
	if len(conv.History) != 2 {
		t.Fatalf("History len = %d, want 2", len(conv.History))
	}
	if conv.History[0].Role.Kind != models.RoleKindUser {
		t.Fatalf("History[0].Role = %v, want user", conv.History[0].Role)
	}
	if conv.History[1].Role.Kind != models.RoleKindAssistant {
		t.Fatalf("History[1].Role = %v, want assistant", conv.History[1].Role)
	}
}

func TestShortMemory_Monotonicity(t *testing.T) {
	m := New()
	const n = 50
	for i := 0; i < n; i++ {
		m.Add("T", models.User("u"), "msg")
	}
	conv, _ := m.Get("T")
	if len(conv.History) != n {
		t.Fatalf("History len = %d, want %d", len(conv.History), n)
	}
	for i := 1; i < len(conv.History); i++ {
		if conv.History[i].Timestamp < conv.History[i-1].Timestamp {
			t.Fatalf("timestamps not monotonic at %d: %d < %d", i, conv.History[i].Timestamp, conv.History[i-1].Timestamp)
		}
	}
}

func TestShortMemory_ConcurrentAppendsSameTask(t *testing.T) {
	m := New()
	const goroutines = 20
	const perGoroutine = 25

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for g := 0; g < goroutines; g++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				m.Add("T", models.User("u"), "msg")
			}
		}()
	}
	wg.Wait()

	conv, _ := m.Get("T")
	if len(conv.History) != goroutines*perGoroutine {
		t.Fatalf("History len = %d, want %d", len(conv.History), goroutines*perGoroutine)
	}
}

func TestShortMemory_ConcurrentDifferentTasks(t *testing.T) {
	m := New()
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		task := "task"
		go func(n int) {
			defer wg.Done()
			m.Add(task+string(rune('a'+n)), models.User("u"), "msg")
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		if !m.Has("task" + string(rune('a'+i))) {
			t.Fatalf("expected task %d to exist", i)
		}
	}
}

func TestShortMemory_GetMissing(t *testing.T) {
	m := New()
	if _, ok := m.Get("nope"); ok {
		t.Fatalf("expected no conversation for missing task")
	}
	if m.Format("nope") != "" {
		t.Fatalf("expected empty format for missing task")
	}
}

func TestShortMemory_FormatDisplay(t *testing.T) {
	m := New()
	m.Add("T", models.User("alice"), "hello")
	got := m.Format("T")
	want := "alice(user): hello"
	if got != want {
		t.Fatalf("Format() = %q, want %q", got, want)
	}
}

func TestShortMemory_Delete(t *testing.T) {
	m := New()
	m.Add("T", models.User("u"), "x")
	m.Delete("T")
	if m.Has("T") {
		t.Fatalf("expected T to be deleted")
	}
}
