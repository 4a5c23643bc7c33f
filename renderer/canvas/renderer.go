package canvasrenderer

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/tdewolff/canvas"
	"github.com/tdewolff/canvas/renderers/pdf"
	"github.com/tdewolff/canvas/renderers/rasterizer"
	"go.uber.org/zap"

	"github.com/ByLCY/scrollsub/fonts"
	"github.com/ByLCY/scrollsub/layout"
	"github.com/ByLCY/scrollsub/renderer"
)

// canvas 的长度单位是毫米、字号单位是点。这里让 1 个画布单位等于 1 像素：
// 用 px×mmToPt 作为字号创建字体面，TextWidth 的返回值就直接是像素。
const mmToPt = 72.0 / 25.4

const (
	defaultStoryboardInterval = 1.0
	maxStoryboardPages        = 600
)

// Renderer draws layout plans via github.com/tdewolff/canvas.
// 它同时实现 layout.Measurer，保证测量与绘制使用同一套字形度量。
type Renderer struct {
	baseDir string
	logger  *zap.Logger

	background layout.Color
	interval   float64
	keyframes  bool
	font       layout.FontResource

	// injected resources
	fontBlobs map[string][]byte // by unique name

	fontMu       sync.RWMutex
	fontFamilies map[string]*canvas.FontFamily
}

var (
	_ renderer.Renderer = (*Renderer)(nil)
	_ layout.Measurer   = (*Renderer)(nil)
)

// Options configures the canvas renderer.
type Options struct {
	BaseDir string
	Fonts   map[string]Resource // fonts accessible via builtin:<name>, checked before the Go font set
	// Background 是帧的底色，默认白色。
	Background *layout.Color
	// StoryboardInterval 为分镜 PDF 的采样间隔（秒），默认 1 秒。
	StoryboardInterval float64
	// Keyframes 为 true 时改为在每个片段开始的时刻采样。
	Keyframes bool
	// Font 为绘制字体，默认 builtin:regular。
	Font   *layout.FontResource
	Logger *zap.Logger
}

// Resource can be provided either by Bytes or by Path.
type Resource struct {
	Bytes []byte
	Path  string
}

// NewRenderer creates a canvas-based renderer rooted at baseDir for resolving font paths.
func NewRenderer(baseDir string) *Renderer { return NewRendererWithOptions(Options{BaseDir: baseDir}) }

// NewRendererWithOptions creates a renderer with injected resources and optional baseDir.
func NewRendererWithOptions(opts Options) *Renderer {
	r := &Renderer{
		baseDir:      opts.BaseDir,
		logger:       opts.Logger,
		background:   layout.Color{R: 255, G: 255, B: 255},
		interval:     opts.StoryboardInterval,
		keyframes:    opts.Keyframes,
		font:         layout.FontResource{Name: "Body", Src: "builtin:regular"},
		fontBlobs:    map[string][]byte{},
		fontFamilies: map[string]*canvas.FontFamily{},
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	if opts.Background != nil {
		r.background = *opts.Background
	}
	if opts.Font != nil {
		r.font = *opts.Font
	}
	if r.interval <= 0 {
		r.interval = defaultStoryboardInterval
	}
	for name, res := range opts.Fonts {
		if name == "" {
			continue
		}
		if len(res.Bytes) > 0 {
			r.fontBlobs[name] = res.Bytes
			continue
		}
		if res.Path != "" {
			data, err := os.ReadFile(res.Path)
			if err != nil {
				// 使用时会以 FontLoadError 的形式暴露
				r.logger.Warn("读取注入字体失败", zap.String("name", name), zap.String("path", res.Path), zap.Error(err))
				continue
			}
			r.fontBlobs[name] = data
		}
	}
	return r
}

// Measure 实现 layout.Measurer：返回文本在 size 像素字号下的宽度与行高（上伸部 + 下伸部）。
func (r *Renderer) Measure(text string, font layout.FontResource, size float64) (float64, float64, error) {
	face, err := r.fontFace(font, size, layout.Color{})
	if err != nil {
		return 0, 0, err
	}
	m := face.Metrics()
	height := m.Ascent + math.Abs(m.Descent)
	if height <= 0 {
		height = m.LineHeight
	}
	width := 0.0
	for _, ln := range strings.Split(text, "\n") {
		width = math.Max(width, face.TextWidth(ln))
	}
	return width, height, nil
}

// RenderFrame 绘制时刻 t 的画面：底色 + 所有在 t 可见的片段。
func (r *Renderer) RenderFrame(plan *layout.Plan, t float64) (*canvas.Canvas, error) {
	if plan == nil {
		return nil, fmt.Errorf("排版结果为空")
	}
	w, h := float64(plan.Width), float64(plan.Height)
	c := canvas.New(w, h)
	ctx := canvas.NewContext(c)
	ctx.SetCoordSystem(canvas.CartesianIV) // 使坐标与布局保持左上角为原点

	ctx.SetFillColor(colorFromLayout(r.background))
	ctx.SetStrokeColor(color.RGBA{0, 0, 0, 0})
	ctx.DrawPath(0, 0, canvas.Rectangle(w, h))

	for _, f := range plan.ActiveAt(t) {
		if err := r.drawFragment(ctx, f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// RasterizeFrame 把时刻 t 的画面栅格化为与视频同尺寸的图像。
func (r *Renderer) RasterizeFrame(plan *layout.Plan, t float64) (*image.RGBA, error) {
	c, err := r.RenderFrame(plan, t)
	if err != nil {
		return nil, err
	}
	return rasterizer.Draw(c, canvas.DPMM(1.0), canvas.DefaultColorSpace), nil
}

// WriteFramePNG 把时刻 t 的画面以 PNG 写出。
func (r *Renderer) WriteFramePNG(w io.Writer, plan *layout.Plan, t float64) error {
	img, err := r.RasterizeFrame(plan, t)
	if err != nil {
		return err
	}
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("编码 PNG 失败: %w", err)
	}
	return nil
}

// Render 输出分镜 PDF：按采样间隔每页绘制一帧。
func (r *Renderer) Render(plan *layout.Plan) ([]byte, error) {
	if plan == nil {
		return nil, fmt.Errorf("排版结果为空")
	}
	times := r.StoryboardTimes(plan)
	w, h := float64(plan.Width), float64(plan.Height)

	var buf bytes.Buffer
	writer := pdf.New(&buf, w, h, nil)
	writer.SetInfo(plan.Theme.String(), "storyboard", "subtitle, layout", "", "scrollsub")
	for i, t := range times {
		if i > 0 {
			writer.NewPage(w, h)
		}
		c, err := r.RenderFrame(plan, t)
		if err != nil {
			return nil, err
		}
		c.RenderTo(writer)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("写入 PDF 失败: %w", err)
	}
	r.logger.Debug("分镜渲染完成", zap.Int("pages", len(times)), zap.String("theme", plan.Theme.String()))
	return buf.Bytes(), nil
}

// StoryboardTimes 返回分镜的采样时刻：从 0 开始按间隔递增，不超过总时长，至多 600 页。
// 开启 Keyframes 时改为每个片段的开始时刻。
func (r *Renderer) StoryboardTimes(plan *layout.Plan) []float64 {
	if r.keyframes {
		times := distinctStarts(plan)
		if len(times) > maxStoryboardPages {
			times = times[:maxStoryboardPages]
		}
		if len(times) == 0 {
			times = []float64{0}
		}
		return times
	}
	step := r.interval
	if n := plan.Duration / step; n > maxStoryboardPages {
		step = plan.Duration / maxStoryboardPages
	}
	var times []float64
	for t := 0.0; t < plan.Duration && len(times) < maxStoryboardPages; t += step {
		times = append(times, t)
	}
	if len(times) == 0 {
		times = []float64{0}
	}
	return times
}

// drawFragment 以左上角为基准逐行绘制；描边通过在填充层之下绘制 8 个方向的偏移副本实现。
func (r *Renderer) drawFragment(ctx *canvas.Context, f layout.Fragment) error {
	// Fragment 不携带字体资源，绘制时统一使用 SetFont 指定的字体。
	font := r.drawFont()
	fill, err := r.fontFace(font, f.FontSize, f.Fill)
	if err != nil {
		return err
	}
	var stroke *canvas.FontFace
	if f.StrokeWidth > 0 {
		if stroke, err = r.fontFace(font, f.FontSize, f.Stroke); err != nil {
			return err
		}
	}
	ascent := fill.Metrics().Ascent
	lineHeight := f.LineHeight
	if lineHeight <= 0 {
		lineHeight = fill.Metrics().LineHeight
	}

	for i, ln := range f.Lines() {
		if ln == "" {
			continue
		}
		x := f.X
		if f.Align == layout.AlignCenter {
			x += (f.Width - fill.TextWidth(ln)) / 2
		}
		baseline := f.Y + float64(i)*lineHeight + ascent
		if stroke != nil {
			for _, d := range strokeOffsets(f.StrokeWidth) {
				ctx.DrawText(x+d[0], baseline+d[1], canvas.NewTextLine(stroke, ln, canvas.Left))
			}
		}
		ctx.DrawText(x, baseline, canvas.NewTextLine(fill, ln, canvas.Left))
	}
	return nil
}

func strokeOffsets(w float64) [][2]float64 {
	d := w / math.Sqrt2
	return [][2]float64{
		{-w, 0}, {w, 0}, {0, -w}, {0, w},
		{-d, -d}, {d, -d}, {-d, d}, {d, d},
	}
}

// SetFont 指定绘制所用字体，应与排版时 Style.Font 一致。
func (r *Renderer) SetFont(font layout.FontResource) error {
	if _, err := r.ensureFontFamily(font); err != nil {
		return err
	}
	r.fontMu.Lock()
	r.font = font
	r.fontMu.Unlock()
	return nil
}

func (r *Renderer) drawFont() layout.FontResource {
	r.fontMu.RLock()
	defer r.fontMu.RUnlock()
	return r.font
}

func (r *Renderer) fontFace(font layout.FontResource, sizePx float64, col layout.Color) (*canvas.FontFace, error) {
	family, err := r.ensureFontFamily(font)
	if err != nil {
		return nil, err
	}
	return family.Face(sizePx*mmToPt, colorFromLayout(col), canvas.FontRegular, canvas.FontNormal), nil
}

// ensureFontFamily 读多写少：命中缓存只持读锁。加载失败不回退，回退链由配置层处理。
func (r *Renderer) ensureFontFamily(font layout.FontResource) (*canvas.FontFamily, error) {
	key := fontCacheKey(font)
	r.fontMu.RLock()
	family, ok := r.fontFamilies[key]
	r.fontMu.RUnlock()
	if ok {
		return family, nil
	}

	r.fontMu.Lock()
	defer r.fontMu.Unlock()
	if family, ok := r.fontFamilies[key]; ok {
		return family, nil
	}
	name := font.Name
	if name == "" {
		name = "Body"
	}
	family = canvas.NewFontFamily(name)
	data, err := r.loadFontBytesLocked(font)
	if err != nil {
		return nil, &layout.FontLoadError{Font: font, Err: err}
	}
	if err := family.LoadFont(data, 0, canvas.FontRegular); err != nil {
		return nil, &layout.FontLoadError{Font: font, Err: err}
	}
	r.fontFamilies[key] = family
	r.logger.Debug("字体已加载", zap.String("name", name), zap.String("src", font.Src))
	return family, nil
}

// loadFontBytesLocked 要求调用方已持有 fontMu（读锁或写锁）。
func (r *Renderer) loadFontBytesLocked(font layout.FontResource) ([]byte, error) {
	if font.Src == "" {
		return nil, fmt.Errorf("字体 %s 缺少 src", font.Name)
	}
	src := font.Src
	if fonts.IsBuiltin(src) {
		name := strings.TrimPrefix(strings.TrimPrefix(strings.TrimPrefix(src, "built-in:"), "builtin:"), "embed:")
		if blob, ok := r.fontBlobs[name]; ok {
			return blob, nil
		}
		return fonts.Load(src)
	}
	path := src
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	return os.ReadFile(path)
}

func fontCacheKey(font layout.FontResource) string {
	return fmt.Sprintf("%s|%s", font.Name, font.Src)
}

func colorFromLayout(c layout.Color) color.Color {
	return canvas.RGBA(float64(c.R)/255.0, float64(c.G)/255.0, float64(c.B)/255.0, 1.0)
}

// distinctStarts 返回片段开始时刻的去重升序列表，用于按关键帧导出。
func distinctStarts(plan *layout.Plan) []float64 {
	seen := map[float64]struct{}{}
	var out []float64
	for _, f := range plan.Fragments {
		if _, ok := seen[f.From]; ok {
			continue
		}
		seen[f.From] = struct{}{}
		out = append(out, f.From)
	}
	sort.Float64s(out)
	return out
}
