// Copyright 2020 Cosmos Nicolaou. All rights reserved.
// Use of this source code is governed by the Apache-2.0
// license that can be found in the LICENSE file.

package cbg

import (
	"container/heap"

	"github.com/bgitools/bgiarc/internal/bitio"
)

// node is a single node in the CBG Huffman tree. Leaves carry a
// symbol value; internal nodes carry child indices into tree.nodes.
// There are no self-referential pointers: children are stable integer
// indices, same shape as the teacher's huffmanNode.
type node struct {
	isLeaf      bool
	value       byte
	left, right int
	weight      uint32
}

// tree is a binary Huffman tree built by repeatedly merging the two
// lowest-weight nodes (ties broken by insertion order), per spec §9c.
// tree.nodes[root] is the root.
type tree struct {
	nodes []node
	root  int
}

// decode walks the tree from the root, bit 0 -> left, bit 1 -> right,
// until a leaf is reached, returning its symbol.
func (t *tree) decode(r *bitio.Reader) (byte, error) {
	if len(t.nodes) == 1 && t.nodes[0].isLeaf {
		// Degenerate single-symbol alphabet: no bits are consumed.
		return t.nodes[0].value, nil
	}
	idx := t.root
	for {
		n := &t.nodes[idx]
		if n.isLeaf {
			return n.value, nil
		}
		bit, err := r.ReadBit()
		if err != nil {
			return 0, ErrTreeUnderflow
		}
		if bit == 0 {
			idx = n.left
		} else {
			idx = n.right
		}
	}
}

// heapItem is a pending merge candidate: either an original leaf or a
// previously merged internal node, tagged with its insertion order so
// that equal-weight ties are broken deterministically (spec §9c).
type heapItem struct {
	nodeIdx int
	weight  uint32
	order   int
}

type minHeap []heapItem

func (h minHeap) Len() int { return len(h) }
func (h minHeap) Less(i, j int) bool {
	if h[i].weight != h[j].weight {
		return h[i].weight < h[j].weight
	}
	return h[i].order < h[j].order
}
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x interface{}) { *h = append(*h, x.(heapItem)) }
func (h *minHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// buildTree builds a CBG Huffman tree from 256 symbol weights. Leaves
// with weight 0 are excluded entirely (spec §4.C.4).
func buildTree(weights [256]uint32) (*tree, error) {
	t := &tree{}
	h := &minHeap{}
	order := 0

	for sym := 0; sym < 256; sym++ {
		if weights[sym] == 0 {
			continue
		}
		idx := len(t.nodes)
		t.nodes = append(t.nodes, node{isLeaf: true, value: byte(sym), weight: weights[sym]})
		heap.Push(h, heapItem{nodeIdx: idx, weight: weights[sym], order: order})
		order++
	}

	if h.Len() == 0 {
		return nil, ErrCorruptKey
	}
	if h.Len() == 1 {
		t.root = (*h)[0].nodeIdx
		return t, nil
	}

	for h.Len() > 1 {
		a := heap.Pop(h).(heapItem)
		b := heap.Pop(h).(heapItem)
		idx := len(t.nodes)
		t.nodes = append(t.nodes, node{
			isLeaf: false,
			left:   a.nodeIdx,
			right:  b.nodeIdx,
			weight: a.weight + b.weight,
		})
		heap.Push(h, heapItem{nodeIdx: idx, weight: a.weight + b.weight, order: order})
		order++
	}
	t.root = (*h)[0].nodeIdx
	return t, nil
}
