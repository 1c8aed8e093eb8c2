package session

import (
	"sync"
	"testing"
	"time"
)

func TestManager_LockRelease(t *testing.T) {
	m := NewManager()

	if !m.Lock("100") {
		t.Fatal("first Lock() = false, want true")
	}
	if m.Lock("100") {
		t.Error("second Lock() = true, want false while session open")
	}
	if !m.Lock("200") {
		t.Error("Lock() for other user = false, want true")
	}

	m.Release("100")
	if !m.Lock("100") {
		t.Error("Lock() after Release() = false, want true")
	}
}

func TestManager_LockConcurrent(t *testing.T) {
	m := NewManager()

	const attempts = 64
	var wg sync.WaitGroup
	var mu sync.Mutex
	acquired := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if m.Lock("100") {
				mu.Lock()
				acquired++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if acquired != 1 {
		t.Errorf("%d goroutines acquired the lock, want exactly 1", acquired)
	}
}

func TestManager_MessageOwnership(t *testing.T) {
	m := NewManager()
	m.Lock("100")
	m.RegisterMessageOwner("msg-1", "100")

	if !m.IsMessageOwner("msg-1", "100") {
		t.Error("IsMessageOwner() = false for registered owner")
	}
	if m.IsMessageOwner("msg-1", "200") {
		t.Error("IsMessageOwner() = true for bystander")
	}
	if m.IsMessageOwner("msg-2", "100") {
		t.Error("IsMessageOwner() = true for unknown message")
	}

	m.Release("100")
	if m.IsMessageOwner("msg-1", "100") {
		t.Error("IsMessageOwner() = true after Release()")
	}
}

func TestManager_cleanupExpired(t *testing.T) {
	m := NewManager()
	m.sessionTimeout = 10 * time.Millisecond
	m.lockDuration = 10 * time.Millisecond

	m.Lock("100")
	time.Sleep(25 * time.Millisecond)
	m.cleanupExpired()

	if m.HasActiveSession("100") {
		t.Error("session survived cleanup past timeout")
	}
	if !m.Lock("100") {
		t.Error("Lock() = false after expired session cleanup")
	}
}
