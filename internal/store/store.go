// Package store implements the Node Store: hash-consed interning of XADD
// leaves and internal decision nodes behind stable integer identities.
package store

import (
	"fmt"
	"sync"

	"github.com/xadd-go/xadd/internal/symbexpr"
)

// NodeID identifies a node in a Store. Identities are assigned sequentially
// and are never reused or invalidated for the Store's lifetime.
type NodeID int64

// Reserved terminal identities. Every Store is created with exactly these
// two leaves already interned.
const (
	FalseLeaf NodeID = 0
	TrueLeaf  NodeID = 1
)

// Kind tags whether a Node is a terminal leaf or an internal decision node.
type Kind int

const (
	KindLeaf Kind = iota
	KindInternal
)

// Node is either a terminal leaf (Expr set) or an internal decision node
// (Dec/Low/High set). High is the branch taken when the decision at Dec
// evaluates true.
type Node struct {
	Kind Kind

	Expr *symbexpr.Expr // leaf only

	Dec       int64 // internal only
	Low, High NodeID
}

type internalKey struct {
	dec       int64
	low, high NodeID
}

// Store interns nodes: identical leaf expressions and identical
// (dec, low, high) triples always resolve to the same NodeID.
type Store struct {
	mu sync.RWMutex

	nodes []Node

	leafIndex     map[string]NodeID
	internalIndex map[internalKey]NodeID

	next NodeID
}

// New returns a Store pre-populated with the two reserved constant leaves.
func New() *Store {
	s := &Store{
		nodes:         make([]Node, 2, 64),
		leafIndex:     make(map[string]NodeID),
		internalIndex: make(map[internalKey]NodeID),
		next:          2,
	}
	falseExpr := symbexpr.Number(0)
	trueExpr := symbexpr.Number(1)
	s.nodes[FalseLeaf] = Node{Kind: KindLeaf, Expr: falseExpr}
	s.nodes[TrueLeaf] = Node{Kind: KindLeaf, Expr: trueExpr}
	s.leafIndex[falseExpr.Key()] = FalseLeaf
	s.leafIndex[trueExpr.Key()] = TrueLeaf
	return s
}

// InternLeaf returns the id of the terminal carrying expr's canonical form,
// creating it if this is the first time that canonical form has been seen.
func (s *Store) InternLeaf(expr *symbexpr.Expr) NodeID {
	canon := symbexpr.Canonical(expr)
	key := canon.String()

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.leafIndex[key]; ok {
		return id
	}
	id := s.next
	s.next++
	node := Node{Kind: KindLeaf, Expr: canon}
	if int(id) >= len(s.nodes) {
		s.nodes = append(s.nodes, node)
	} else {
		s.nodes[id] = node
	}
	s.leafIndex[key] = id
	return id
}

// InternInternal returns the id of the internal node (dec, low, high),
// creating it if absent. The caller (the Reduction Engine) is responsible
// for the low != high collapse; InternInternal itself always allocates a
// distinct internal node for distinct, already-reduced triples.
func (s *Store) InternInternal(dec int64, low, high NodeID) (NodeID, error) {
	if low == high {
		return 0, fmt.Errorf("store: InternInternal called with low == high == %d; callers must collapse via Reduction.MakeNode first", low)
	}
	key := internalKey{dec: dec, low: low, high: high}

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.internalIndex[key]; ok {
		return id, nil
	}
	id := s.next
	s.next++
	node := Node{Kind: KindInternal, Dec: dec, Low: low, High: high}
	if int(id) >= len(s.nodes) {
		s.nodes = append(s.nodes, node)
	} else {
		s.nodes[id] = node
	}
	s.internalIndex[key] = id
	return id, nil
}

// Get returns the Node stored at id.
func (s *Store) Get(id NodeID) (Node, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if id < 0 || int(id) >= len(s.nodes) {
		return Node{}, fmt.Errorf("store: invalid node id %d", id)
	}
	return s.nodes[id], nil
}

// Kind reports whether id names a leaf or internal node.
func (s *Store) Kind(id NodeID) (Kind, error) {
	n, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	return n.Kind, nil
}

// IsLeaf reports whether id is a terminal node.
func (s *Store) IsLeaf(id NodeID) bool {
	k, err := s.Kind(id)
	return err == nil && k == KindLeaf
}

// Size returns the number of distinct interned nodes, including the two
// reserved terminals.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int(s.next)
}
