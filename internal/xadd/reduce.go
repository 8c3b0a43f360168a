package xadd

import (
	"fmt"

	"github.com/xadd-go/xadd/internal/store"
)

// MakeNode is the Reduction Engine's single entry point: it collapses
// low==high and otherwise interns (dec, low, high) via the Node Store.
// Every constructor in this package routes through MakeNode so
// hash-consing and reducedness hold by construction.
func (e *Engine) MakeNode(dec int64, low, high store.NodeID) (store.NodeID, error) {
	if low == high {
		return low, nil
	}
	return e.Store.InternInternal(dec, low, high)
}

// Reduce performs a bottom-up structural pass over id, rebuilding every
// internal node through MakeNode. It restores hash-consing and
// reducedness after a construction that assembled nodes without routing
// every step through MakeNode; it does not reorder decisions (that is
// MakeCanonical's job).
// Memoized by input id, in its own table distinct from MakeCanonical's
// (the two rebuilds diverge whenever id is not already correctly ordered,
// so they must never share a cache slot).
func (e *Engine) Reduce(id store.NodeID) (store.NodeID, error) {
	if cached, ok := e.reduceMemo[id]; ok {
		return cached, nil
	}
	result, err := e.reduceRec(id, map[store.NodeID]store.NodeID{})
	if err != nil {
		return 0, err
	}
	e.reduceMemo[id] = result
	return result, nil
}

func (e *Engine) reduceRec(id store.NodeID, seen map[store.NodeID]store.NodeID) (store.NodeID, error) {
	if v, ok := seen[id]; ok {
		return v, nil
	}
	node, err := e.Store.Get(id)
	if err != nil {
		return 0, fmt.Errorf("xadd: Reduce: %w", err)
	}
	if node.Kind == store.KindLeaf {
		seen[id] = id
		return id, nil
	}
	lo, err := e.reduceRec(node.Low, seen)
	if err != nil {
		return 0, err
	}
	hi, err := e.reduceRec(node.High, seen)
	if err != nil {
		return 0, err
	}
	result, err := e.MakeNode(node.Dec, lo, hi)
	if err != nil {
		return 0, err
	}
	seen[id] = result
	return result, nil
}
