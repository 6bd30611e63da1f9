package wgpu_engine

import (
	"fmt"
	"image"
	"structs"

	"honnef.co/go/keith"
	"honnef.co/go/keith/gfx"
	"honnef.co/go/keith/kmath"
	"honnef.co/go/keith/mem"
	"honnef.co/go/keith/profiler"
	"honnef.co/go/keith/renderer"
	"honnef.co/go/keith/text"
	"honnef.co/go/safeish"
	"honnef.co/go/wgpu"
)

const viewUniformSize = 16

type viewUniform struct {
	_ structs.HostLayout

	Viewport [2]float32
	Scale    float32
	TilesX   uint32
}

// RenderParams configures the drawing of one frame.
type RenderParams struct {
	// Viewport is the render target size in physical pixels. It must match
	// the viewport the frame was prepared with.
	Viewport kmath.Vec2
	// Scale converts logical coordinates to physical pixels.
	Scale float32
	// Background fills the target before any batch is drawn.
	Background gfx.Color
	// Profiler receives spans for the frame's stages. Nil disables
	// profiling.
	Profiler profiler.ProfilerGroup
}

// Render records and submits one frame to target. atlas is the glyph atlas
// of the text pipeline the frame's layouts were processed with; it may be
// nil when the frame draws no text. Dirty atlas regions and images not yet
// seen are uploaded first.
func (eng *Engine) Render(pc *renderer.PreparedCanvas, atlas *text.Atlas, target *wgpu.TextureView, params RenderParams) {
	arena := eng.arena
	defer arena.Reset()

	prof := params.Profiler
	if prof == nil {
		prof = profiler.Nop{}
	}
	prof = prof.Start("keith render")
	defer prof.End()

	upload := prof.Start("upload")
	if atlas != nil {
		eng.uploadAtlas(atlas)
	}
	for _, batch := range pc.Batches {
		if batch.Image != nil {
			eng.ensureImage(batch.Image, wgpu.TextureFormatRGBA8UnormSrgb, fmt.Sprintf("image %d", batch.Image.ID()))
		}
	}

	empty := pc.IsEmpty()
	if !empty {
		vu := viewUniform{
			Viewport: [2]float32{params.Viewport.X, params.Viewport.Y},
			Scale:    params.Scale,
			TilesX:   pc.Tiles.Width,
		}
		eng.queue.WriteBuffer(eng.view, 0, safeish.AsBytes(&vu))
		eng.prims.upload(eng, "primitive buffer", pc.Encoding.Bytes())
		eng.tiles.upload(eng, "tile primitive buffer", pc.Tiles.PrimitiveBytes())
		eng.offsets.upload(eng, "offset and count buffer", pc.Tiles.OffsetCountBytes())
	}
	upload.End()

	record := prof.Start("record")
	encoder := eng.dev.CreateCommandEncoder(mem.Make(arena, wgpu.CommandEncoderDescriptor{Label: "primitive render"}))

	bg := params.Background.Linear()
	attachments := mem.NewSlice[[]wgpu.RenderPassColorAttachment](arena, 1, 1)
	attachments[0] = wgpu.RenderPassColorAttachment{
		View:       target,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: wgpu.Color{R: bg[0], G: bg[1], B: bg[2], A: bg[3]},
	}
	pass := encoder.BeginRenderPass(mem.Make(arena, wgpu.RenderPassDescriptor{
		ColorAttachments: attachments,
	}))

	groups := mem.NewSlice[[]*wgpu.BindGroup](arena, 0, len(pc.Batches))
	if !empty {
		pass.SetPipeline(eng.pipeline)
		pass.SetBindGroup(0, eng.viewGroup, nil)

		for i := range pc.Batches {
			batch := &pc.Batches[i]

			entries := mem.NewSlice[[]wgpu.BindGroupEntry](arena, 3, 3)
			entries[0] = wgpu.BindGroupEntry{
				Binding: 0,
				Buffer:  eng.prims.buf,
				Size:    ^uint64(0),
			}
			entries[1] = wgpu.BindGroupEntry{
				Binding: 1,
				Buffer:  eng.tiles.buf,
				Size:    ^uint64(0),
			}
			// The batch sees only its own window of the shared table,
			// which is why windows are aligned to the device's offset
			// alignment.
			entries[2] = wgpu.BindGroupEntry{
				Binding: 2,
				Buffer:  eng.offsets.buf,
				Offset:  uint64(batch.Window.Offset) * 8,
				Size:    uint64(batch.Window.Count) * 8,
			}
			group := eng.dev.CreateBindGroup(mem.Make(arena, wgpu.BindGroupDescriptor{
				Layout:  eng.primLayout,
				Entries: entries,
			}))
			groups = mem.Append(arena, groups, group)

			material := eng.whiteGroup
			if batch.Image != nil {
				if b := eng.images[batch.Image.ID()]; b != nil {
					material = b.group
				}
			}

			pass.SetBindGroup(1, group, nil)
			pass.SetBindGroup(2, material, nil)
			pass.Draw(3, 1, 0, 0)
		}
	}
	pass.End()
	pass.Release()
	record.End()

	cmd := encoder.Finish(nil)
	encoder.Release()
	eng.queue.Submit(cmd)
	cmd.Release()

	for _, group := range groups {
		group.Release()
	}
}

// storageBuffer is a grow-only GPU buffer. Uploads write in place and
// reallocate only when the data outgrows the buffer.
type storageBuffer struct {
	buf  *wgpu.Buffer
	size uint64
}

func (b *storageBuffer) upload(eng *Engine, label string, data []byte) {
	if n := uint64(len(data)); b.buf == nil || n > b.size {
		if b.buf != nil {
			b.buf.Release()
		}
		b.size = max(2*b.size, n, 4096)
		b.buf = eng.dev.CreateBuffer(&wgpu.BufferDescriptor{
			Label: label,
			Size:  b.size,
			Usage: wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst,
		})
	}
	eng.queue.WriteBuffer(b.buf, 0, data)
}

type imageBinding struct {
	tex   *wgpu.Texture
	view  *wgpu.TextureView
	group *wgpu.BindGroup
}

// uploadAtlas keeps the GPU copy of the glyph atlas current. The first
// frame uploads the whole image; later frames only the region new glyphs
// were rasterized into.
func (eng *Engine) uploadAtlas(atlas *text.Atlas) {
	img := atlas.Image()
	b, ok := eng.images[img.ID()]
	if !ok {
		// Glyph coverage is linear, so no sRGB format here.
		eng.ensureImage(img, wgpu.TextureFormatRGBA8Unorm, "glyph atlas")
		atlas.TakeDirty()
		return
	}

	dirty := atlas.TakeDirty()
	if dirty.Empty() {
		return
	}
	pixels := img.Image.(*image.RGBA)
	eng.queue.WriteTexture(
		mem.Make(eng.arena, wgpu.ImageCopyTexture{
			Texture:  b.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: uint32(dirty.Min.X), Y: uint32(dirty.Min.Y), Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		}),
		stageRegion(eng.arena, pixels, dirty),
		mem.Make(eng.arena, wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(dirty.Dx()) * 4,
			RowsPerImage: ^uint32(0), // XXX 0 or Undefined?
		}),
		mem.Make(eng.arena, wgpu.Extent3D{
			Width:              uint32(dirty.Dx()),
			Height:             uint32(dirty.Dy()),
			DepthOrArrayLayers: 1,
		}),
	)
}

// ensureImage uploads img on first sight and returns its binding. Images
// are assumed immutable once drawn; only the atlas receives follow-up
// writes.
func (eng *Engine) ensureImage(img *gfx.Image, format wgpu.TextureFormat, label string) *imageBinding {
	if b, ok := eng.images[img.ID()]; ok {
		return b
	}
	if img.Image == nil {
		keith.Logger().Warn("image has no pixel data, substituting white", "image", img.ID())
		return nil
	}
	bounds := img.Image.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= 0 || h <= 0 {
		keith.Logger().Warn("image is empty, substituting white", "image", img.ID())
		return nil
	}

	tex := eng.dev.CreateTexture(mem.Make(eng.arena, wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Format:        format,
	}))
	eng.queue.WriteTexture(
		mem.Make(eng.arena, wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		}),
		rgbaBytes(eng.arena, img.Image),
		mem.Make(eng.arena, wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(w) * 4,
			RowsPerImage: ^uint32(0), // XXX 0 or Undefined?
		}),
		mem.Make(eng.arena, wgpu.Extent3D{
			Width:              uint32(w),
			Height:             uint32(h),
			DepthOrArrayLayers: 1,
		}),
	)

	b := &imageBinding{
		tex:  tex,
		view: tex.CreateView(nil),
	}
	b.group = eng.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: eng.materialLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: b.view,
			},
		},
	})
	eng.images[img.ID()] = b
	return b
}

// stageRegion copies a subregion of pixels into tightly packed rows.
func stageRegion(arena *mem.Arena, pixels *image.RGBA, region image.Rectangle) []byte {
	w := region.Dx() * 4
	data := mem.NewSlice[[]byte](arena, region.Dy()*w, region.Dy()*w)
	for y := 0; y < region.Dy(); y++ {
		row := pixels.Pix[pixels.PixOffset(region.Min.X, region.Min.Y+y):]
		copy(data[y*w:(y+1)*w], row[:w])
	}
	return data
}

// rgbaBytes returns img's pixels as tightly packed premultiplied RGBA.
func rgbaBytes(arena *mem.Arena, img image.Image) []byte {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect.Min == (image.Point{}) && rgba.Stride == w*4 {
		return rgba.Pix[:h*rgba.Stride]
	}

	data := mem.NewSlice[[]byte](arena, w*h*4, w*h*4)
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, a := img.At(x, y).RGBA()
			data[i+0] = uint8(r >> 8)
			data[i+1] = uint8(g >> 8)
			data[i+2] = uint8(b >> 8)
			data[i+3] = uint8(a >> 8)
			i += 4
		}
	}
	return data
}
