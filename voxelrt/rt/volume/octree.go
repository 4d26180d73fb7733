package volume

import (
	"encoding/binary"
	"fmt"
	"math/bits"
)

// ChildPointerSize is the width of one child record index in the linear format.
const ChildPointerSize = 4

// Codec describes how an Octree summarizes and encodes its values.
type Codec[T comparable] struct {
	// Width is the encoded size of one value in bytes.
	Width int
	// Reduce collapses eight sibling values into their parent's LOD value.
	Reduce func(children [8]T) T
	// Put writes v into b[:Width].
	Put func(b []byte, v T)
}

type node[T comparable] struct {
	value    T
	children *[8]*node[T]
}

func (n *node[T]) isLeaf() bool {
	return n.children == nil
}

func (n *node[T]) subdivide() {
	var children [8]*node[T]
	for i := range children {
		children[i] = &node[T]{value: n.value}
	}
	n.children = &children
}

// refresh recomputes the LOD value of an internal node and collapses it back
// into a leaf when all eight children are equal leaves.
func (n *node[T]) refresh(reduce func([8]T) T) {
	var values [8]T
	uniform := true
	for i, c := range n.children {
		values[i] = c.value
		if !c.isLeaf() || c.value != n.children[0].value {
			uniform = false
		}
	}
	if uniform {
		n.value = values[0]
		n.children = nil
		return
	}
	n.value = reduce(values)
}

// Octree is a sparse voxel octree over a cube of power-of-two extent.
type Octree[T comparable] struct {
	codec  Codec[T]
	root   *node[T]
	extent uint32
}

func NewOctree[T comparable](codec Codec[T]) *Octree[T] {
	if codec.Width <= 0 || codec.Reduce == nil || codec.Put == nil {
		panic("volume: incomplete octree codec")
	}
	return &Octree[T]{
		codec: codec,
		root:  &node[T]{},
	}
}

// Extent returns the edge length fixed by the first Set, or 0 for an untouched tree.
func (o *Octree[T]) Extent() uint32 {
	return o.extent
}

// ChildIndex returns the octant of (x, y, z) inside a node whose children span half.
// Bit 0 selects +x, bit 1 +y, bit 2 +z.
func ChildIndex(x, y, z, half uint32) int {
	idx := 0
	if x&half != 0 {
		idx |= 1
	}
	if y&half != 0 {
		idx |= 2
	}
	if z&half != 0 {
		idx |= 4
	}
	return idx
}

// Set stores v at the unit voxel (x, y, z) of a tree with the given extent.
func (o *Octree[T]) Set(x, y, z, size uint32, v T) {
	if size == 0 || bits.OnesCount32(size) != 1 {
		panic(fmt.Sprintf("volume: octree extent %d is not a power of two", size))
	}
	if o.extent == 0 {
		o.extent = size
	} else if o.extent != size {
		panic(fmt.Sprintf("volume: octree extent %d does not match %d", size, o.extent))
	}
	if x >= size || y >= size || z >= size {
		panic(fmt.Sprintf("volume: voxel (%d,%d,%d) outside extent %d", x, y, z, size))
	}
	o.set(o.root, x, y, z, size, v)
}

func (o *Octree[T]) set(n *node[T], x, y, z, size uint32, v T) {
	if size == 1 {
		n.value = v
		return
	}
	if n.isLeaf() {
		if n.value == v {
			return
		}
		n.subdivide()
	}
	half := size / 2
	o.set(n.children[ChildIndex(x, y, z, half)], x, y, z, half, v)
	n.refresh(o.codec.Reduce)
}

// Get returns the value covering (x, y, z). Coordinates outside the tree read as the zero value.
func (o *Octree[T]) Get(x, y, z uint32) T {
	var zero T
	if o.extent == 0 {
		return o.root.value
	}
	if x >= o.extent || y >= o.extent || z >= o.extent {
		return zero
	}
	n := o.root
	half := o.extent / 2
	for !n.isLeaf() {
		n = n.children[ChildIndex(x, y, z, half)]
		half /= 2
	}
	return n.value
}

// Root returns the LOD value of the whole tree.
func (o *Octree[T]) Root() T {
	return o.root.value
}

// NodeCount returns the number of internal node records the tree serializes to.
func (o *Octree[T]) NodeCount() int {
	if o.root.isLeaf() {
		return 1
	}
	count := 0
	stack := []*node[T]{o.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		for _, c := range n.children {
			if !c.isLeaf() {
				stack = append(stack, c)
			}
		}
	}
	return count
}

// RecordSize is the byte size of one node record.
func (o *Octree[T]) RecordSize() int {
	return 8*o.codec.Width + 8*ChildPointerSize
}

func (o *Octree[T]) TotalDataSize() int {
	return o.NodeCount() * o.RecordSize()
}

// WriteTo serializes the tree breadth-first into buf, which must be exactly
// TotalDataSize bytes long.
func (o *Octree[T]) WriteTo(buf []byte) {
	if len(buf) != o.TotalDataSize() {
		panic(fmt.Sprintf("volume: octree buffer is %d bytes, need %d", len(buf), o.TotalDataSize()))
	}
	width := o.codec.Width
	recordSize := o.RecordSize()

	if o.root.isLeaf() {
		for i := 0; i < 8; i++ {
			o.codec.Put(buf[i*width:(i+1)*width], o.root.value)
		}
		clear(buf[8*width : recordSize])
		return
	}

	queue := []*node[T]{o.root}
	next := uint32(1)
	for i := 0; i < len(queue); i++ {
		n := queue[i]
		record := buf[i*recordSize : (i+1)*recordSize]
		pointers := record[8*width:]
		for c, child := range n.children {
			o.codec.Put(record[c*width:(c+1)*width], child.value)
			ptr := uint32(0)
			if !child.isLeaf() {
				ptr = next
				next++
				queue = append(queue, child)
			}
			binary.LittleEndian.PutUint32(pointers[c*ChildPointerSize:], ptr)
		}
	}
}
