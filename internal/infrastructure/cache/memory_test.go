package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

type sessionState struct {
	items []string
}

func TestMemoryStore_PutAndGet(t *testing.T) {
	tests := []struct {
		name   string
		key    string
		ttl    time.Duration
		expire bool
	}{
		{
			name: "store and retrieve pointer",
			key:  "session-1",
			ttl:  1 * time.Minute,
		},
		{
			name:   "entry expires after short TTL",
			key:    "session-2",
			ttl:    1 * time.Millisecond,
			expire: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := NewMemoryStore[*sessionState](tt.ttl)
			defer store.Close()
			ctx := context.Background()

			value := &sessionState{items: []string{"leche"}}
			if err := store.Put(ctx, tt.key, value); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			if tt.expire {
				time.Sleep(10 * time.Millisecond)
				_, err := store.Get(ctx, tt.key)
				if !errors.Is(err, domain.ErrSessionNotFound) {
					t.Errorf("Get() after expiration error = %v, want %v", err, domain.ErrSessionNotFound)
				}
				return
			}

			got, err := store.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got != value {
				t.Errorf("Get() returned a different pointer, want the stored one")
			}
		})
	}
}

func TestMemoryStore_ValuesAreShared(t *testing.T) {
	store := NewMemoryStore[*sessionState](time.Minute)
	defer store.Close()
	ctx := context.Background()

	_ = store.Put(ctx, "s", &sessionState{})

	first, _ := store.Get(ctx, "s")
	first.items = append(first.items, "pan")

	second, err := store.Get(ctx, "s")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(second.items) != 1 || second.items[0] != "pan" {
		t.Errorf("items = %v, want [pan]", second.items)
	}
}

func TestMemoryStore_GetExtendsExpiration(t *testing.T) {
	store := NewMemoryStore[int](60 * time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	_ = store.Put(ctx, "k", 1)

	for i := 0; i < 4; i++ {
		time.Sleep(25 * time.Millisecond)
		if _, err := store.Get(ctx, "k"); err != nil {
			t.Fatalf("Get() after %d touches error = %v, want nil", i, err)
		}
	}
}

func TestMemoryStore_Get_Missing(t *testing.T) {
	store := NewMemoryStore[string](time.Minute)
	defer store.Close()

	_, err := store.Get(context.Background(), "non-existent-key")
	if !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrSessionNotFound)
	}
}

func TestMemoryStore_Delete(t *testing.T) {
	store := NewMemoryStore[string](time.Minute)
	defer store.Close()
	ctx := context.Background()

	key := "delete-test"
	if err := store.Put(ctx, key, "value"); err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	if _, err := store.Get(ctx, key); err != nil {
		t.Fatalf("Get() before delete error = %v", err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := store.Get(ctx, key); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrSessionNotFound)
	}
}

func TestMemoryStore_Len(t *testing.T) {
	store := NewMemoryStore[int](time.Minute)
	defer store.Close()
	ctx := context.Background()

	if n := store.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0 for empty store", n)
	}

	for i := 0; i < 5; i++ {
		_ = store.Put(ctx, string(rune('a'+i)), i)
	}
	if n := store.Len(); n != 5 {
		t.Errorf("Len() = %d, want 5", n)
	}

	_ = store.Delete(ctx, "a")
	if n := store.Len(); n != 4 {
		t.Errorf("Len() = %d, want 4 after delete", n)
	}
}

func TestMemoryStore_RemoveExpired(t *testing.T) {
	store := NewMemoryStore[int](time.Millisecond)
	defer store.Close()
	ctx := context.Background()

	_ = store.Put(ctx, "a", 1)
	_ = store.Put(ctx, "b", 2)
	time.Sleep(10 * time.Millisecond)

	store.removeExpired()
	if n := store.Len(); n != 0 {
		t.Errorf("Len() = %d, want 0 after removing expired entries", n)
	}
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	store := NewMemoryStore[int](time.Minute)
	store.Close()
	store.Close()
}

func TestMemoryStore_Concurrent(t *testing.T) {
	store := NewMemoryStore[int](time.Minute)
	defer store.Close()
	ctx := context.Background()

	done := make(chan bool)
	for i := 0; i < 10; i++ {
		go func(id int) {
			key := string(rune('a' + id))
			if err := store.Put(ctx, key, id); err != nil {
				t.Errorf("Concurrent Put() error = %v", err)
			}
			if _, err := store.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}
}
