package todo

import (
	"fmt"
	"path/filepath"
	"testing"
	"time"
)

// BenchmarkOpenLarge benchmarks loading and validating a file with 500 todos.
func BenchmarkOpenLarge(b *testing.B) {
	clock := &testClock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	path := filepath.Join(b.TempDir(), "todos.json")
	s, err := Open(path, WithClock(clock.Now))
	if err != nil {
		b.Fatal(err)
	}
	alice := session("alice", clock)
	for i := 0; i < 500; i++ {
		if _, err := s.Add(alice, Draft{Title: fmt.Sprintf("Todo %d", i)}); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Open(path); err != nil {
			b.Fatalf("Open failed: %v", err)
		}
	}
}

// BenchmarkList benchmarks filtering one owner's todos out of a shared store.
func BenchmarkList(b *testing.B) {
	clock := &testClock{t: time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)}
	s, err := Open(filepath.Join(b.TempDir(), "todos.json"), WithClock(clock.Now))
	if err != nil {
		b.Fatal(err)
	}
	alice := session("alice", clock)
	bob := session("bob", clock)
	for i := 0; i < 200; i++ {
		owner := alice
		if i%2 == 0 {
			owner = bob
		}
		if _, err := s.Add(owner, Draft{Title: fmt.Sprintf("Todo %d", i)}); err != nil {
			b.Fatal(err)
		}
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := s.List(alice, Filter{Status: StatusPending}); err != nil {
			b.Fatal(err)
		}
	}
}
