package core

import (
	"errors"
	"fmt"
	"image"
	"math"
	"sort"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var (
	ErrTextureSize     = errors.New("texture size does not match repository")
	ErrTextureRepoFull = errors.New("texture repository is full")
	ErrUnknownTexture  = errors.New("unknown texture handle")
)

// TextureHandle identifies a layer of the texture array. Handles start at 1;
// NoTexture doubles as "none" in material records.
type TextureHandle uint16

const NoTexture TextureHandle = 0

// Layer returns the texture array layer holding this handle's image.
func (h TextureHandle) Layer() uint32 {
	return uint32(h) - 1
}

func (h TextureHandle) Valid() bool {
	return h != NoTexture
}

// Extent3D is the size of the backing texture array.
type Extent3D struct {
	Width  uint32
	Height uint32
	Depth  uint32
}

type PendingTexture struct {
	Handle TextureHandle
	Image  *image.NRGBA
}

// TextureRepo collects equally sized images for a 2D texture array.
type TextureRepo struct {
	width   uint32
	height  uint32
	pending map[TextureHandle]*image.NRGBA
	length  uint16
}

func NewTextureRepo(width, height uint32) *TextureRepo {
	return &TextureRepo{
		width:   width,
		height:  height,
		pending: make(map[TextureHandle]*image.NRGBA),
	}
}

// Load decodes the image at path and registers it under a new handle.
func (r *TextureRepo) Load(path string) (TextureHandle, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return NoTexture, fmt.Errorf("load texture %s: %w", path, err)
	}
	h, err := r.Add(img)
	if err != nil {
		return NoTexture, fmt.Errorf("load texture %s: %w", path, err)
	}
	return h, nil
}

// Add registers an in-memory image under a new handle.
func (r *TextureRepo) Add(img image.Image) (TextureHandle, error) {
	if err := r.checkSize(img); err != nil {
		return NoTexture, err
	}
	if r.length == math.MaxUint16 {
		return NoTexture, ErrTextureRepoFull
	}
	r.length++
	handle := TextureHandle(r.length)
	r.pending[handle] = imaging.Clone(img)
	return handle, nil
}

// Set replaces the image of an issued handle; it is uploaded on the next drain.
func (r *TextureRepo) Set(handle TextureHandle, path string) error {
	if !handle.Valid() || uint16(handle) > r.length {
		return fmt.Errorf("%w: %d", ErrUnknownTexture, handle)
	}
	img, err := imaging.Open(path)
	if err != nil {
		return fmt.Errorf("load texture %s: %w", path, err)
	}
	if err := r.checkSize(img); err != nil {
		return fmt.Errorf("load texture %s: %w", path, err)
	}
	r.pending[handle] = imaging.Clone(img)
	return nil
}

func (r *TextureRepo) checkSize(img image.Image) error {
	b := img.Bounds()
	if uint32(b.Dx()) != r.width || uint32(b.Dy()) != r.height {
		return fmt.Errorf("%w: got %dx%d, want %dx%d", ErrTextureSize, b.Dx(), b.Dy(), r.width, r.height)
	}
	return nil
}

// Drain removes and returns all pending images ordered by handle.
func (r *TextureRepo) Drain() []PendingTexture {
	if len(r.pending) == 0 {
		return nil
	}
	out := make([]PendingTexture, 0, len(r.pending))
	for h, img := range r.pending {
		out = append(out, PendingTexture{Handle: h, Image: img})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Handle < out[j].Handle })
	r.pending = make(map[TextureHandle]*image.NRGBA)
	return out
}

// Extent reports the texture array size; depth counts every handle ever issued.
func (r *TextureRepo) Extent() Extent3D {
	return Extent3D{
		Width:  r.width,
		Height: r.height,
		Depth:  uint32(r.length),
	}
}

func (r *TextureRepo) Len() int {
	return int(r.length)
}

func (r *TextureRepo) Pending() int {
	return len(r.pending)
}
