package store

import (
	"context"
	"testing"
)

func TestNewStoreMemory(t *testing.T) {
	s, err := NewStore(context.Background(), "memory", "")
	if err != nil {
		t.Fatalf("NewStore(memory) failed: %v", err)
	}
	defer s.Close()

	if _, ok := s.(*MemoryStore); !ok {
		t.Errorf("NewStore(memory) = %T, want *MemoryStore", s)
	}
}

func TestNewStoreUnsupported(t *testing.T) {
	if _, err := NewStore(context.Background(), "redis", ""); err == nil {
		t.Error("NewStore(redis) succeeded, want error")
	}
}

func TestNewStorePostgresBadDSN(t *testing.T) {
	if _, err := NewStore(context.Background(), "postgres", "not a dsn"); err == nil {
		t.Error("NewStore(postgres) with a bad DSN succeeded, want error")
	}
}
