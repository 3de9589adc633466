package thumbnail

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// DefaultSize Telegram 缩略图边长
const DefaultSize = 320

const jpegQuality = 90

// Resizer 把缩略图缩放成固定尺寸的 JPEG
type Resizer struct {
	size int
}

// NewResizer 创建缩略图处理器，size<=0 时使用默认尺寸
func NewResizer(size int) *Resizer {
	if size <= 0 {
		size = DefaultSize
	}
	return &Resizer{size: size}
}

// Size 返回目标边长
func (r *Resizer) Size() int {
	return r.size
}

// Process 就地把 path 处的图片转为 size×size 的 JPEG
func (r *Resizer) Process(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := decode(path)
	if err != nil {
		return err
	}

	dst := image.NewRGBA(image.Rect(0, 0, r.size, r.size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	// 先写临时文件再替换，失败时保留原图
	tmp, err := os.CreateTemp(filepath.Dir(path), ".thumb-*.jpg")
	if err != nil {
		return fmt.Errorf("create temp thumbnail: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := jpeg.Encode(tmp, dst, &jpeg.Options{Quality: jpegQuality}); err != nil {
		tmp.Close()
		return fmt.Errorf("encode thumbnail: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write thumbnail: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("replace thumbnail: %w", err)
	}
	return nil
}

func decode(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open thumbnail: %w", err)
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode thumbnail: %w", err)
	}
	if img.Bounds().Empty() {
		return nil, fmt.Errorf("decode thumbnail: empty %s image", format)
	}
	return img, nil
}
