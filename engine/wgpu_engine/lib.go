// Package wgpu_engine renders prepared canvases with wgpu. It owns the
// tile-walking render pipeline, the frame's storage buffers, and a texture
// plus bind group per image drawn so far.
package wgpu_engine

import (
	"honnef.co/go/keith/mem"
	"honnef.co/go/wgpu"
)

type Options struct {
	// SurfaceFormat is the format of the texture views passed to Render.
	SurfaceFormat wgpu.TextureFormat
	// OffsetAlignment is the device's minimum storage buffer offset
	// alignment, converted to offset/count table entries by dividing by the
	// 8 byte entry size. It must be at least 1 and must match the value the
	// frames were prepared with.
	OffsetAlignment uint32
}

type Engine struct {
	dev   *wgpu.Device
	queue *wgpu.Queue
	opts  Options
	arena *mem.Arena

	pipeline       *wgpu.RenderPipeline
	viewLayout     *wgpu.BindGroupLayout
	primLayout     *wgpu.BindGroupLayout
	materialLayout *wgpu.BindGroupLayout

	view      *wgpu.Buffer
	viewGroup *wgpu.BindGroup
	prims     storageBuffer
	tiles     storageBuffer
	offsets   storageBuffer

	// Textures and material bind groups by image ID. whiteGroup serves
	// batches that don't sample a texture.
	images     map[uint32]*imageBinding
	whiteGroup *wgpu.BindGroup
}

func New(dev *wgpu.Device, queue *wgpu.Queue, opts Options) *Engine {
	if opts.OffsetAlignment == 0 {
		panic("keith: Options.OffsetAlignment must be at least 1")
	}

	eng := &Engine{
		dev:    dev,
		queue:  queue,
		opts:   opts,
		arena:  mem.NewArena(),
		images: make(map[uint32]*imageBinding),
	}
	eng.buildPipeline()

	eng.view = dev.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "view uniform buffer",
		Size:  viewUniformSize,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	eng.viewGroup = dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: eng.viewLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding: 0,
				Buffer:  eng.view,
				Size:    ^uint64(0),
			},
		},
	})

	eng.whiteGroup = eng.whiteMaterial()

	return eng
}

// OffsetAlignment returns the window alignment to prepare frames with, in
// offset/count table entries.
func (eng *Engine) OffsetAlignment() uint32 {
	return eng.opts.OffsetAlignment
}

func (eng *Engine) buildPipeline() {
	const src = `
			struct View {
				viewport: vec2<f32>,
				scale: f32,
				n_tiles_x: u32,
			}

			struct OffsetAndCount {
				offset: u32,
				count: u32,
			}

			@group(0) @binding(0) var<uniform> view: View;

			@group(1) @binding(0) var<storage, read> prims: array<f32>;
			@group(1) @binding(1) var<storage, read> tile_prims: array<u32>;
			@group(1) @binding(2) var<storage, read> offsets_and_counts: array<OffsetAndCount>;

			@group(2) @binding(0) var prim_texture: texture_2d<f32>;

			@vertex
			fn vs_main(@builtin(vertex_index) ix: u32) -> @builtin(position) vec4<f32> {
				// One triangle covering the whole viewport.
				let corner = vec2(f32((ix << 1u) & 2u), f32(ix & 2u));
				return vec4(corner * 2.0 - 1.0, 0.0, 1.0);
			}

			fn color_at(row: u32) -> vec4<f32> {
				return unpack4x8unorm(bitcast<u32>(prims[row]));
			}

			fn premultiply(c: vec4<f32>) -> vec4<f32> {
				return vec4(c.rgb * c.a, c.a);
			}

			// border_color blends the inset border ring over the fill. d is
			// the signed distance to the silhouette, so the ring covers d in
			// [-width, 0].
			fn border_color(fill: vec4<f32>, d: f32, row: u32) -> vec4<f32> {
				let width = prims[row];
				let border = premultiply(color_at(row + 1u));
				return mix(border, fill, saturate(0.5 - (d + width)));
			}

			fn rect_color(p: vec2<f32>, base: u32, textured: bool, bordered: bool) -> vec4<f32> {
				let center = vec2(prims[base], prims[base + 1u]);
				let half_size = vec2(prims[base + 2u], prims[base + 3u]);
				let radius = min(prims[base + 4u], min(half_size.x, half_size.y));

				let q = abs(p - center) - half_size + vec2(radius);
				let d = length(max(q, vec2(0.0))) + min(max(q.x, q.y), 0.0) - radius;

				var color = premultiply(color_at(base + 5u));
				var row = base + 6u;
				if textured {
					let uv_offset = vec2(prims[row], prims[row + 1u]);
					let uv_scale = vec2(prims[row + 2u], prims[row + 3u]);
					let uv = uv_offset + (p - center) * uv_scale;
					let dims = vec2<f32>(textureDimensions(prim_texture));
					let texel = clamp(vec2<i32>(uv * dims), vec2(0), vec2<i32>(dims) - 1);
					color *= textureLoad(prim_texture, texel, 0);
					row += 4u;
				}
				if bordered {
					color = border_color(color, d, row);
				}
				return color * saturate(0.5 - d);
			}

			fn line_color(p: vec2<f32>, base: u32, bordered: bool) -> vec4<f32> {
				let p0 = vec2(prims[base], prims[base + 1u]);
				let p1 = vec2(prims[base + 2u], prims[base + 3u]);
				let thickness = prims[base + 5u];

				let pa = p - p0;
				let ba = p1 - p0;
				let h = saturate(dot(pa, ba) / dot(ba, ba));
				let d = length(pa - ba * h) - thickness * 0.5;

				var color = premultiply(color_at(base + 4u));
				if bordered {
					color = border_color(color, d, base + 6u);
				}
				return color * saturate(0.5 - d);
			}

			fn pie_color(p: vec2<f32>, base: u32) -> vec4<f32> {
				let origin = vec2(prims[base], prims[base + 1u]);
				// The radii are signed; their signs select the quadrant.
				let radii = vec2(prims[base + 2u], prims[base + 3u]);
				let extent = abs(radii);
				if min(extent.x, extent.y) < 1e-3 {
					return vec4(0.0);
				}

				// Position scaled into the unit quarter disk. Negative
				// components are outside the quadrant.
				let rel = (p - origin) / radii;
				let arc = (length(rel) - 1.0) * min(extent.x, extent.y);
				let edge = min(rel.x * extent.x, rel.y * extent.y);

				let color = premultiply(color_at(base + 4u));
				return color * saturate(0.5 - arc) * saturate(0.5 + edge);
			}

			fn prim_color(kind: u32, p: vec2<f32>, base: u32, textured: bool, bordered: bool) -> vec4<f32> {
				switch kind {
					case 0u, 1u: {
						// Rects and glyphs share a layout; a glyph is a
						// textured rect without a border.
						return rect_color(p, base, textured, bordered);
					}
					case 2u: {
						return line_color(p, base, bordered);
					}
					case 3u: {
						return pie_color(p, base);
					}
					default: {
						return vec4(0.0);
					}
				}
			}

			@fragment
			fn fs_main(@builtin(position) pos: vec4<f32>) -> @location(0) vec4<f32> {
				let tile = vec2<u32>(floor(pos.xy / 8.0));
				let oc = offsets_and_counts[tile.y * view.n_tiles_x + tile.x];

				var color = vec4(0.0);
				for (var i = 0u; i < oc.count; i += 1u) {
					let packed = tile_prims[oc.offset + i];
					let base = packed & 0x07ffffffu;
					let kind = (packed >> 28u) & 3u;
					let bordered = (packed & 0x08000000u) != 0u;
					let textured = (packed & 0x80000000u) != 0u;

					// The run is in paint order; later primitives paint
					// over earlier ones.
					let prim = prim_color(kind, pos.xy, base, textured, bordered);
					color = prim + color * (1.0 - prim.a);
				}
				return color;
			}
`

	shader := eng.dev.CreateShaderModule(wgpu.ShaderModuleDescriptor{
		Label:  "primitive shaders",
		Source: wgpu.ShaderSourceWGSL(src),
	})
	eng.viewLayout = eng.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Visibility: wgpu.ShaderStageFragment,
				Binding:    0,
				Buffer: &wgpu.BufferBindingLayout{
					Type:             wgpu.BufferBindingTypeUniform,
					HasDynamicOffset: false,
					MinBindingSize:   viewUniformSize,
				},
			},
		},
	})
	storageEntry := func(binding uint32) wgpu.BindGroupLayoutEntry {
		return wgpu.BindGroupLayoutEntry{
			Visibility: wgpu.ShaderStageFragment,
			Binding:    binding,
			Buffer: &wgpu.BufferBindingLayout{
				Type:             wgpu.BufferBindingTypeReadOnlyStorage,
				HasDynamicOffset: false,
				MinBindingSize:   0, // XXX 0 or Undefined?
			},
		}
	}
	eng.primLayout = eng.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			storageEntry(0),
			storageEntry(1),
			storageEntry(2),
		},
	})
	eng.materialLayout = eng.dev.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Visibility: wgpu.ShaderStageFragment,
				Binding:    0,
				Texture: &wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
					Multisampled:  false,
				},
			},
		},
	})
	pipelineLayout := eng.dev.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label: "primitive pipeline layout",
		BindGroupLayouts: []*wgpu.BindGroupLayout{
			eng.viewLayout,
			eng.primLayout,
			eng.materialLayout,
		},
	})
	eng.pipeline = eng.dev.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "primitive pipeline",
		Layout: pipelineLayout,
		Vertex: &wgpu.VertexState{
			Module:     shader,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     shader,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{
				{
					Format: eng.opts.SurfaceFormat,
					// The shader outputs premultiplied alpha.
					Blend: &wgpu.BlendState{
						Color: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
						Alpha: wgpu.BlendComponent{
							SrcFactor: wgpu.BlendFactorOne,
							DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
							Operation: wgpu.BlendOperationAdd,
						},
					},
					WriteMask: wgpu.ColorWriteMaskAll,
				},
			},
		},
		Primitive: &wgpu.PrimitiveState{
			Topology:         wgpu.PrimitiveTopologyTriangleList,
			StripIndexFormat: ^wgpu.IndexFormat(0), // XXX 0 or Undefined?
			FrontFace:        wgpu.FrontFaceCCW,
			CullMode:         wgpu.CullModeBack,
		},
		Multisample: &wgpu.MultisampleState{
			Count:                  1,
			Mask:                   ^uint32(0),
			AlphaToCoverageEnabled: false,
		},
	})
}

// whiteMaterial creates the material bind group used by batches without a
// texture: a single white texel, so that the texture binding is never left
// unbound.
func (eng *Engine) whiteMaterial() *wgpu.BindGroup {
	tex := eng.dev.CreateTexture(&wgpu.TextureDescriptor{
		Label: "white texture",
		Size: wgpu.Extent3D{
			Width:              1,
			Height:             1,
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Format:        wgpu.TextureFormatRGBA8Unorm,
	})
	defer tex.Release()
	eng.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{X: 0, Y: 0, Z: 0},
			Aspect:   wgpu.TextureAspectAll,
		},
		[]byte{0xff, 0xff, 0xff, 0xff},
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  4,
			RowsPerImage: ^uint32(0), // XXX 0 or Undefined?
		},
		&wgpu.Extent3D{
			Width:              1,
			Height:             1,
			DepthOrArrayLayers: 1,
		},
	)
	view := tex.CreateView(nil)
	return eng.dev.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Layout: eng.materialLayout,
		Entries: []wgpu.BindGroupEntry{
			{
				Binding:     0,
				TextureView: view,
			},
		},
	})
}
