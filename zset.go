package beestore

import "bytes"

// ZNode is one member of a SortedSet: a name with a floating-point score.
// It belongs to exactly one SortedSet for its lifetime; Pop removes it
// from both the tree and the name index before returning it to the caller.
type ZNode struct {
	name  []byte
	score float64
	code  uint64

	treeNode *avlNode[*ZNode]
}

// Name returns the member's name.
func (z *ZNode) Name() []byte { return z.name }

// Score returns the member's score.
func (z *ZNode) Score() float64 { return z.score }

// SortedSet pairs an order-statistic AVL tree ordered by (score, name) with
// a ProgressiveMap name index for O(1) member lookup.
type SortedSet struct {
	tree  *avlTree[*ZNode]
	index *ProgressiveMap[*ZNode]
}

func newSortedSet() *SortedSet {
	return &SortedSet{
		tree:  newAVLTree(lessZNode),
		index: NewProgressiveMap[*ZNode](),
	}
}

// lessZNode is the tuple comparator for (score, name): numeric on score
// first; on equal scores, lexicographic byte-wise on name, comparing only
// the shared prefix (min(len(a), len(b))) before falling back to a length
// tie-break.
func lessZNode(a, b *ZNode) bool {
	if a.score != b.score {
		return a.score < b.score
	}
	n := len(a.name)
	if len(b.name) < n {
		n = len(b.name)
	}
	if c := bytes.Compare(a.name[:n], b.name[:n]); c != 0 {
		return c < 0
	}
	return len(a.name) < len(b.name)
}

func zNameEq(name []byte) func(*ZNode) bool {
	return func(z *ZNode) bool {
		return bytesEqual(z.name, name)
	}
}

// Add creates or updates the member 'name' with 'score'. If name already
// exists: an unchanged score is a no-op (reports false, updated); a changed
// score detaches the member from the AVL tree, updates the score and
// reinserts it (also reports false, updated). If absent, a new ZNode is
// allocated and inserted into both containers (reports true, created).
func (s *SortedSet) Add(name []byte, score float64) bool {
	code := hashBytes(name)
	if z, ok := s.index.Lookup(code, zNameEq(name)); ok {
		if z.score == score {
			return false
		}
		s.tree.delete(z.treeNode)
		z.score = score
		z.treeNode = s.tree.insert(z)
		return false
	}

	z := &ZNode{name: name, score: score, code: code}
	z.treeNode = s.tree.insert(z)
	s.index.Insert(code, z)
	return true
}

// Lookup returns the member by name, or ok=false if absent.
func (s *SortedSet) Lookup(name []byte) (*ZNode, bool) {
	return s.index.Lookup(hashBytes(name), zNameEq(name))
}

// Pop detaches the member by name from both the name index and the AVL
// tree, returning it to the caller, or ok=false if absent.
func (s *SortedSet) Pop(name []byte) (*ZNode, bool) {
	z, ok := s.index.Pop(hashBytes(name), zNameEq(name))
	if !ok {
		return nil, false
	}
	s.tree.delete(z.treeNode)
	return z, true
}

// Query returns the smallest member M with (M.score, M.name) >= (score,
// name) under the tuple comparator, or nil if none qualifies.
func (s *SortedSet) Query(score float64, name []byte) *ZNode {
	ref := &ZNode{score: score, name: name}
	n := s.tree.query(ref)
	if n == nil {
		return nil
	}
	return n.val
}

// Offset returns the member 'delta' in-order positions away from member,
// or nil if that walk leaves the tree.
func (s *SortedSet) Offset(member *ZNode, delta int) *ZNode {
	n := offsetWalk(member.treeNode, delta)
	if n == nil {
		return nil
	}
	return n.val
}

// Len returns the number of members currently in the set.
func (s *SortedSet) Len() int {
	return s.index.Size()
}

// Destroy releases both containers; members become unreferenced and are
// reclaimed by the garbage collector.
func (s *SortedSet) Destroy() {
	s.tree = nil
	s.index.Destroy()
}
