// Package texture decodes images and uploads them as 2D textures or cube maps.
package texture

import (
	"fmt"
	"image"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/kiln/internal/engine/gpu"
	"github.com/Faultbox/kiln/internal/logger"
)

// Cube face order expected by LoadCubemap.
const (
	FacePosX = iota
	FaceNegX
	FacePosY
	FaceNegY
	FacePosZ
	FaceNegZ
)

// Texture is an uploaded image owned by a device.
type Texture struct {
	Name   string
	Width  int
	Height int

	dev  gpu.Device
	kind gpu.TextureKind
	id   uint32
}

// Decode reads an image file. The decoder is chosen from the content for
// the registered formats and from the extension for TGA.
func Decode(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open texture: %w", err)
	}
	defer f.Close()

	var img image.Image
	if strings.EqualFold(filepath.Ext(path), ".tga") {
		img, err = DecodeTGA(f)
	} else {
		img, _, err = image.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("decode texture %s: %w", path, err)
	}
	return ToRGBA(img), nil
}

// ToRGBA converts img to tightly packed RGBA with its origin at (0, 0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == 4*rgba.Rect.Dx() {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// Load decodes path and uploads it as a repeating, mipmapped 2D texture.
func Load(dev gpu.Device, path string) (*Texture, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	t := FromImage(dev, filepath.Base(path), img)
	logger.Debug("texture loaded",
		zap.String("path", path),
		zap.Int("width", t.Width),
		zap.Int("height", t.Height),
	)
	return t, nil
}

// FromImage uploads an already decoded image.
func FromImage(dev gpu.Device, name string, img *image.RGBA) *Texture {
	t := &Texture{
		Name:   name,
		Width:  img.Rect.Dx(),
		Height: img.Rect.Dy(),
		dev:    dev,
		kind:   gpu.Texture2D,
	}
	t.id = dev.CreateTexture(gpu.Texture2D)
	dev.TextureImage(gpu.Texture2D, t.id, 0, t.Width, t.Height, img.Pix)
	dev.FinishTexture(gpu.Texture2D, t.id)
	return t
}

// LoadCubemap builds a cube map from six images ordered +X, -X, +Y, -Y, +Z, -Z.
// If any face fails to decode, the partially built texture is released and
// an error naming the face is returned.
func LoadCubemap(dev gpu.Device, faces [6]string) (*Texture, error) {
	t := &Texture{Name: filepath.Base(faces[0]), dev: dev, kind: gpu.TextureCube}
	t.id = dev.CreateTexture(gpu.TextureCube)

	for i, path := range faces {
		img, err := Decode(path)
		if err != nil {
			t.Destroy()
			return nil, fmt.Errorf("cubemap face %d: %w", i, err)
		}
		w, h := img.Rect.Dx(), img.Rect.Dy()
		if i == 0 {
			t.Width, t.Height = w, h
		} else if w != t.Width || h != t.Height {
			t.Destroy()
			return nil, fmt.Errorf("cubemap face %d (%s): size %dx%d differs from %dx%d", i, path, w, h, t.Width, t.Height)
		}
		dev.TextureImage(gpu.TextureCube, t.id, i, w, h, img.Pix)
	}

	dev.FinishTexture(gpu.TextureCube, t.id)
	logger.Debug("cubemap loaded", zap.String("first", faces[0]), zap.Int("size", t.Width))
	return t, nil
}

// Bind binds the texture to a texture unit.
func (t *Texture) Bind(unit int) {
	t.dev.BindTexture(t.kind, unit, t.id)
}

// ID returns the GPU texture id, 0 after Destroy.
func (t *Texture) ID() uint32 { return t.id }

// Kind reports whether this is a 2D texture or a cube map.
func (t *Texture) Kind() gpu.TextureKind { return t.kind }

// Destroy releases the GPU texture. Safe to call more than once.
func (t *Texture) Destroy() {
	if t.id == 0 {
		return
	}
	t.dev.DeleteTexture(t.id)
	t.id = 0
}
