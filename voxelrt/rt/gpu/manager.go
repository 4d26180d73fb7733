package gpu

import (
	"fmt"

	"github.com/gekko3d/svoray/voxelrt/rt/core"
	"github.com/google/uuid"

	"github.com/cogentcore/webgpu/wgpu"
)

// CopyBufferAlignment is the size granularity of buffer writes.
const CopyBufferAlignment = 4

// TexelSize is the byte size of one RGBA8 texel.
const TexelSize = 4

// Manager owns the GPU copies of chunks, the material palette and the
// texture array.
type Manager struct {
	Device *wgpu.Device
	// Alignment is the storage offset alignment used for the palette segments.
	Alignment int

	ChunkBufs map[uuid.UUID]*wgpu.Buffer

	PaletteBuf    *wgpu.Buffer
	PaletteLayout core.PaletteLayout

	TextureArray  *wgpu.Texture
	TextureExtent core.Extent3D
}

func NewManager(device *wgpu.Device, alignment int) *Manager {
	return &Manager{
		Device:    device,
		Alignment: alignment,
		ChunkBufs: make(map[uuid.UUID]*wgpu.Buffer),
	}
}

// PaddedSize rounds n up to the buffer copy granularity.
func PaddedSize(n int) uint64 {
	return uint64(core.AlignTo(n, CopyBufferAlignment))
}

// ensureBuffer grows *buf to hold data, recreating it when too small, then writes data at offset 0.
func (m *Manager) ensureBuffer(label string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) (bool, error) {
	neededSize := PaddedSize(len(data))
	if neededSize == 0 {
		neededSize = CopyBufferAlignment
	}

	created := false
	current := *buf
	if current == nil || current.GetSize() < neededSize {
		if current != nil {
			current.Release()
		}
		newBuf, err := m.Device.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  neededSize,
			Usage: usage | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return false, fmt.Errorf("create buffer %s: %w", label, err)
		}
		*buf = newBuf
		created = true
	}

	if len(data) > 0 {
		padded := data
		if uint64(len(data)) != PaddedSize(len(data)) {
			padded = make([]byte, PaddedSize(len(data)))
			copy(padded, data)
		}
		m.Device.GetQueue().WriteBuffer(*buf, 0, padded)
	}
	return created, nil
}

// UploadChunk creates the storage buffer of a chunk the first time it is
// seen. It reports whether an upload happened.
func (m *Manager) UploadChunk(c *core.Chunk) (bool, error) {
	if _, ok := m.ChunkBufs[c.ID]; ok {
		return false, nil
	}
	var buf *wgpu.Buffer
	if _, err := m.ensureBuffer("Chunk "+c.ID.String(), &buf, c.Serialize(), wgpu.BufferUsageStorage); err != nil {
		return false, err
	}
	m.ChunkBufs[c.ID] = buf
	return true, nil
}

func (m *Manager) ChunkBuffer(id uuid.UUID) *wgpu.Buffer {
	return m.ChunkBufs[id]
}

// UploadPalette writes both palette segments into one storage buffer.
func (m *Manager) UploadPalette(p *core.MaterialPalette) error {
	data, layout := p.WriteBuffer(m.Alignment)
	if _, err := m.ensureBuffer("Material Palette", &m.PaletteBuf, data, wgpu.BufferUsageStorage); err != nil {
		return err
	}
	m.PaletteLayout = layout
	return nil
}

// NeedsRealloc reports whether a texture array of size have cannot hold want.
func NeedsRealloc(have, want core.Extent3D) bool {
	return have.Width != want.Width || have.Height != want.Height || have.Depth < want.Depth
}

// SyncTextures drains repo into the texture array. The array is recreated
// when the repo outgrows it and existing layers are copied across.
func (m *Manager) SyncTextures(repo *core.TextureRepo) error {
	extent := repo.Extent()
	if extent.Depth == 0 {
		return nil
	}
	if m.TextureArray == nil || NeedsRealloc(m.TextureExtent, extent) {
		if err := m.reallocTextures(extent); err != nil {
			return err
		}
	}

	queue := m.Device.GetQueue()
	for _, p := range repo.Drain() {
		size := wgpu.Extent3D{Width: extent.Width, Height: extent.Height, DepthOrArrayLayers: 1}
		err := queue.WriteTexture(
			&wgpu.ImageCopyTexture{
				Texture:  m.TextureArray,
				MipLevel: 0,
				Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: p.Handle.Layer()},
			},
			p.Image.Pix,
			&wgpu.TextureDataLayout{
				Offset:       0,
				BytesPerRow:  extent.Width * TexelSize,
				RowsPerImage: extent.Height,
			},
			&size,
		)
		if err != nil {
			return fmt.Errorf("write texture %d: %w", p.Handle, err)
		}
	}
	return nil
}

func (m *Manager) reallocTextures(extent core.Extent3D) error {
	tex, err := m.Device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "Material Textures",
		Size:          wgpu.Extent3D{Width: extent.Width, Height: extent.Height, DepthOrArrayLayers: extent.Depth},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatRGBA8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc,
	})
	if err != nil {
		return fmt.Errorf("create texture array: %w", err)
	}

	old := m.TextureArray
	if old != nil && m.TextureExtent.Width == extent.Width && m.TextureExtent.Height == extent.Height && m.TextureExtent.Depth > 0 {
		encoder, err := m.Device.CreateCommandEncoder(nil)
		if err != nil {
			tex.Release()
			return err
		}
		encoder.CopyTextureToTexture(
			&wgpu.ImageCopyTexture{Texture: old},
			&wgpu.ImageCopyTexture{Texture: tex},
			&wgpu.Extent3D{Width: extent.Width, Height: extent.Height, DepthOrArrayLayers: m.TextureExtent.Depth},
		)
		cmdBuf, err := encoder.Finish(nil)
		if err != nil {
			tex.Release()
			return err
		}
		m.Device.GetQueue().Submit(cmdBuf)
	}
	if old != nil {
		old.Release()
	}
	m.TextureArray = tex
	m.TextureExtent = extent
	return nil
}

func (m *Manager) Release() {
	for id, buf := range m.ChunkBufs {
		buf.Release()
		delete(m.ChunkBufs, id)
	}
	if m.PaletteBuf != nil {
		m.PaletteBuf.Release()
		m.PaletteBuf = nil
	}
	if m.TextureArray != nil {
		m.TextureArray.Release()
		m.TextureArray = nil
	}
	m.TextureExtent = core.Extent3D{}
}
