package xadd

import (
	"github.com/xadd-go/xadd/internal/store"
)

// MakeCanonical rebuilds id so it is hash-consed, reduced, and ordered
// under the current decision order. It is the single chokepoint every
// operation that might disturb ordering (apply's relational/min/max/
// boolean outputs, substitute, sgn) routes through; normalization logic
// lives here and nowhere else.
//
// Reinsertion happens directly in insertAt rather than through a
// pseudo-ite operator: inserting decision d above an already-ordered
// (lo, hi) pair is exactly what ite(d, hi, lo) would compute.
func (e *Engine) MakeCanonical(id store.NodeID) (store.NodeID, error) {
	if cached, ok := e.canonMemo[id]; ok {
		return cached, nil
	}
	node, err := e.Store.Get(id)
	if err != nil {
		return 0, err
	}
	if node.Kind == store.KindLeaf {
		e.canonMemo[id] = id
		return id, nil
	}

	lo, err := e.MakeCanonical(node.Low)
	if err != nil {
		return 0, err
	}
	hi, err := e.MakeCanonical(node.High)
	if err != nil {
		return 0, err
	}
	result, err := e.insertAt(node.Dec, lo, hi)
	if err != nil {
		return 0, err
	}
	e.canonMemo[id] = result
	return result, nil
}

type insertKey struct {
	dec    int64
	lo, hi store.NodeID
}

// insertAt reinserts decision dec above the already-canonical pair
// (lo, hi), pushing it below any decision in lo/hi that sorts lower than
// dec so the strictly-increasing-id invariant holds afterward.
func (e *Engine) insertAt(dec int64, lo, hi store.NodeID) (store.NodeID, error) {
	key := insertKey{dec: dec, lo: lo, hi: hi}
	if cached, ok := e.insertMemo[key]; ok {
		return cached, nil
	}

	loNode, err := e.Store.Get(lo)
	if err != nil {
		return 0, err
	}
	hiNode, err := e.Store.Get(hi)
	if err != nil {
		return 0, err
	}

	d2, ok := minDecision(loNode)
	if hd2, hok := minDecision(hiNode); hok && (!ok || hd2 < d2) {
		d2, ok = hd2, true
	}

	var result store.NodeID
	if !ok || d2 >= dec {
		// lo and hi are already entirely below dec (or leaves): dec
		// belongs at the top as-is.
		result, err = e.MakeNode(dec, lo, hi)
	} else {
		// d2 sorts above dec: push dec below d2 by cofactoring lo/hi on
		// d2 and recursing on each branch before reinserting d2.
		loLow, loHigh := cofactor(lo, loNode, d2)
		hiLow, hiHigh := cofactor(hi, hiNode, d2)

		newLow, err2 := e.insertAt(dec, loLow, hiLow)
		if err2 != nil {
			return 0, err2
		}
		newHigh, err2 := e.insertAt(dec, loHigh, hiHigh)
		if err2 != nil {
			return 0, err2
		}
		result, err = e.MakeNode(d2, newLow, newHigh)
	}
	if err != nil {
		return 0, err
	}
	e.insertMemo[key] = result
	return result, nil
}
