package storage

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestReadersDoNotBlockEachOther(t *testing.T) {
	lm := NewLockManager()
	holding := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = lm.Execute(ReadOperation, func() error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding
	defer close(release)

	done := make(chan struct{})
	go func() {
		_ = lm.Execute(ReadOperation, func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("second reader blocked behind the first")
	}
}

func TestWriterIsExclusive(t *testing.T) {
	lm := NewLockManager()
	holding := make(chan struct{})
	release := make(chan struct{})

	go func() {
		_ = lm.Execute(WriteOperation, func() error {
			close(holding)
			<-release
			return nil
		})
	}()
	<-holding

	done := make(chan struct{})
	go func() {
		_ = lm.Execute(ReadOperation, func() error { return nil })
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("reader ran while a writer held the lock")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reader never ran after the writer finished")
	}
}

func TestExecuteWithResult(t *testing.T) {
	lm := NewLockManager()

	got, err := ExecuteWithResult(lm, ReadOperation, func() (int, error) { return 42, nil })
	if err != nil || got != 42 {
		t.Fatalf("ExecuteWithResult = (%d, %v)", got, err)
	}

	boom := errors.New("boom")
	_, err = ExecuteWithResult(lm, WriteOperation, func() (string, error) { return "", boom })
	if !errors.Is(err, boom) {
		t.Fatalf("error not propagated: %v", err)
	}
}

func TestConcurrentWritesAreSerialized(t *testing.T) {
	lm := NewLockManager()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = lm.Execute(WriteOperation, func() error {
				counter++
				return nil
			})
		}()
	}
	wg.Wait()

	if counter != 50 {
		t.Fatalf("counter = %d, want 50", counter)
	}
}
