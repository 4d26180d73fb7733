package core

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gekko3d/svoray/voxelrt/rt/volume"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// BoundingBoxSize is the size of the serialized chunk header: origin xyz and extent as f32.
const BoundingBoxSize = 16

// Chunk is an octree of voxels placed in the world by its bounding box.
// A chunk is not modified after construction; the GPU copy is tracked by ID.
type Chunk struct {
	ID          uuid.UUID
	BoundingBox mgl32.Vec4 // origin x, y, z and extent
	Octree      *volume.Octree[Voxel]
}

func NewChunk(octree *volume.Octree[Voxel], boundingBox mgl32.Vec4) *Chunk {
	return &Chunk{
		ID:          uuid.New(),
		BoundingBox: boundingBox,
		Octree:      octree,
	}
}

func (c *Chunk) SerializedSize() int {
	return BoundingBoxSize + c.Octree.TotalDataSize()
}

// SerializeInto writes the bounding box followed by the octree payload.
// buf must be exactly SerializedSize bytes.
func (c *Chunk) SerializeInto(buf []byte) {
	size := c.SerializedSize()
	if len(buf) != size {
		panic(fmt.Sprintf("core: chunk buffer is %d bytes, need %d", len(buf), size))
	}
	for i := 0; i < 4; i++ {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(c.BoundingBox[i]))
	}
	c.Octree.WriteTo(buf[BoundingBoxSize:])
}

func (c *Chunk) Serialize() []byte {
	buf := make([]byte, c.SerializedSize())
	c.SerializeInto(buf)
	return buf
}
