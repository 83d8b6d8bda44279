package beestore

import (
	"strconv"
	"testing"
)

func strEq(s string) func(string) bool {
	return func(v string) bool { return v == s }
}

func TestProgressiveMapInsertLookup(t *testing.T) {
	m := NewProgressiveMap[string]()

	m.Insert(hashBytes([]byte("a")), "a")
	m.Insert(hashBytes([]byte("b")), "b")

	v, ok := m.Lookup(hashBytes([]byte("a")), strEq("a"))
	if !ok || v != "a" {
		t.Fatalf("expected to find \"a\", got %q ok=%v", v, ok)
	}

	_, ok = m.Lookup(hashBytes([]byte("missing")), strEq("missing"))
	if ok {
		t.Fatal("expected miss for absent key")
	}
}

func TestProgressiveMapPop(t *testing.T) {
	m := NewProgressiveMap[string]()
	m.Insert(hashBytes([]byte("a")), "a")

	v, ok := m.Pop(hashBytes([]byte("a")), strEq("a"))
	if !ok || v != "a" {
		t.Fatalf("expected to pop \"a\", got %q ok=%v", v, ok)
	}
	if _, ok := m.Lookup(hashBytes([]byte("a")), strEq("a")); ok {
		t.Fatal("expected key to be gone after pop")
	}
	if m.Size() != 0 {
		t.Fatalf("expected size 0 after popping the only entry, got %d", m.Size())
	}
}

// TestProgressiveMapMigrationPreservesAllKeys inserts enough entries to
// force several resizes and checks that every key remains reachable
// throughout, regardless of how many operations the migration in progress
// has or hasn't completed.
func TestProgressiveMapMigrationPreservesAllKeys(t *testing.T) {
	m := NewProgressiveMap[int]()
	const n = 5000

	for i := 0; i < n; i++ {
		key := []byte(strconv.Itoa(i))
		m.Insert(hashBytes(key), i)

		// spot-check a previously inserted key survives while migration may
		// be underway.
		if i > 0 {
			prev := i / 2
			prevKey := []byte(strconv.Itoa(prev))
			v, ok := m.Lookup(hashBytes(prevKey), func(x int) bool { return x == prev })
			if !ok || v != prev {
				t.Fatalf("iteration %d: expected to still find key %d, ok=%v v=%d", i, prev, ok, v)
			}
		}
	}

	if got := m.Size(); got != n {
		t.Fatalf("expected size %d, got %d", n, got)
	}

	seen := make(map[int]bool, n)
	m.Each(func(v int) { seen[v] = true })
	if len(seen) != n {
		t.Fatalf("Each visited %d distinct values, want %d", len(seen), n)
	}
}

func TestProgressiveMapDestroy(t *testing.T) {
	m := NewProgressiveMap[string]()
	m.Insert(hashBytes([]byte("a")), "a")
	m.Destroy()

	if m.Size() != 0 {
		t.Fatalf("expected size 0 after Destroy, got %d", m.Size())
	}
	if _, ok := m.Lookup(hashBytes([]byte("a")), strEq("a")); ok {
		t.Fatal("expected no entries reachable after Destroy")
	}
}

// TestLookupRequiresEqualityNotJustHashMatch guards the invariant that a
// hash-code collision alone must never satisfy a lookup: the equality
// callback is always consulted too, so two distinct payloads sharing a
// chain slot (or, as simulated here, the same code) are never confused.
func TestLookupRequiresEqualityNotJustHashMatch(t *testing.T) {
	tbl := newHashTable[string](4)
	const code = uint64(7)
	tbl.insertHead(code, "first")
	tbl.insertHead(code, "second")

	if n := tbl.lookupSlot(code, strEq("first")); n == nil || n.val != "first" {
		t.Fatalf("expected to find \"first\" by equality, got %v", n)
	}
	if n := tbl.lookupSlot(code, strEq("second")); n == nil || n.val != "second" {
		t.Fatalf("expected to find \"second\" by equality, got %v", n)
	}
	if n := tbl.lookupSlot(code, strEq("third")); n != nil {
		t.Fatalf("expected no match for an absent payload sharing the same code, got %v", n)
	}
}

func TestNextPowerOfTwo(t *testing.T) {
	cases := map[int]int{1: 1, 2: 2, 3: 4, 4: 4, 5: 8, 9: 16, 16: 16}
	for in, want := range cases {
		if got := nextPowerOfTwo(in); got != want {
			t.Errorf("nextPowerOfTwo(%d) = %d, want %d", in, got, want)
		}
	}
}
