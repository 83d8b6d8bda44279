package beestore

// Kind identifies the payload carried by an Entry.
type Kind int8

const (
	// KindString marks an Entry holding a plain byte-string value.
	KindString Kind = iota

	// KindSortedSet marks an Entry holding an owned SortedSet.
	KindSortedSet
)

// Entry is the unit of the top-level namespace: every key in the store maps
// to exactly one Entry, which is either a STRING or a SORTED_SET. The
// top-level ProgressiveMap exclusively owns every Entry; removing it from
// the map (via del) releases its SortedSet, if any, along with it.
type Entry struct {
	key  []byte
	code uint64
	kind Kind

	value []byte
	set   *SortedSet
}

const (
	fnvOffset64 = 0x811C9DC5
	fnvPrime64  = 0x01000193
)

// hashBytes computes the FNV-style 64-bit code used to key both the
// top-level namespace and every sorted set's name index: seed with
// fnvOffset64, then for every byte add it to the running hash before
// multiplying by fnvPrime64.
func hashBytes(b []byte) uint64 {
	h := uint64(fnvOffset64)
	for _, c := range b {
		h = (h + uint64(c)) * fnvPrime64
	}
	return h
}

func newStringEntry(key, value []byte) *Entry {
	return &Entry{
		key:   key,
		code:  hashBytes(key),
		kind:  KindString,
		value: value,
	}
}

func newSortedSetEntry(key []byte) *Entry {
	return &Entry{
		key:  key,
		code: hashBytes(key),
		kind: KindSortedSet,
		set:  newSortedSet(),
	}
}

func entryKeyEq(key []byte) func(*Entry) bool {
	return func(e *Entry) bool {
		return bytesEqual(e.key, key)
	}
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
