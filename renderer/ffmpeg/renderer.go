package ffmpegrenderer

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"
	"go.uber.org/zap"

	"github.com/ByLCY/scrollsub/fonts"
	"github.com/ByLCY/scrollsub/layout"
	"github.com/ByLCY/scrollsub/renderer"
)

// 命令行过长时改用 -filter_complex_script，避免超过系统参数长度上限。
const defaultScriptThreshold = 64 << 10

// Renderer 把排版结果翻译为 ffmpeg drawtext 滤镜链：每个片段的每一行对应一个 drawtext。
// 坐标、字号、颜色与时间窗口全部来自 Plan，不做二次排版。
type Renderer struct {
	baseDir   string
	workDir   string
	binary    string
	font      layout.FontResource
	threshold int
	logger    *zap.Logger
}

var _ renderer.Renderer = (*Renderer)(nil)

// Options configures the ffmpeg renderer.
type Options struct {
	// BaseDir 用于解析相对字体路径。
	BaseDir string
	// WorkDir 存放内置字体与滤镜脚本，默认系统临时目录下的 scrollsub。
	WorkDir string
	// Binary 为 ffmpeg 可执行文件，默认 "ffmpeg"。
	Binary string
	// Font 应与排版时 Style.Font 一致，默认 builtin:regular。
	Font *layout.FontResource
	// ScriptThreshold 为滤镜描述改写为脚本文件的长度阈值（字节）。
	ScriptThreshold int
	Logger          *zap.Logger
}

// Inputs 描述一次合成所需的媒体文件。
type Inputs struct {
	// Background 为背景视频或图片；为空时使用纯色背景。
	Background string
	// BackgroundColor 为纯色背景的颜色，默认白色。
	BackgroundColor *layout.Color
	Audio           string
	Output          string
	VideoCodec      string
	AudioCodec      string
	Preset          string
}

// NewRenderer 创建 ffmpeg 渲染器。
func NewRenderer(opts Options) *Renderer {
	r := &Renderer{
		baseDir:   opts.BaseDir,
		workDir:   opts.WorkDir,
		binary:    opts.Binary,
		font:      layout.FontResource{Name: "Body", Src: "builtin:regular"},
		threshold: opts.ScriptThreshold,
		logger:    opts.Logger,
	}
	if r.workDir == "" {
		r.workDir = filepath.Join(os.TempDir(), "scrollsub")
	}
	if r.binary == "" {
		r.binary = "ffmpeg"
	}
	if opts.Font != nil {
		r.font = *opts.Font
	}
	if r.threshold <= 0 {
		r.threshold = defaultScriptThreshold
	}
	if r.logger == nil {
		r.logger = zap.NewNop()
	}
	return r
}

// Render 返回滤镜描述文本（可直接作为 -filter_complex_script 的内容）。
func (r *Renderer) Render(plan *layout.Plan) ([]byte, error) {
	graph, err := r.FilterGraph(plan)
	if err != nil {
		return nil, err
	}
	return []byte(graph), nil
}

// FilterGraph 以纯色背景为输入构建完整的滤镜描述。
func (r *Renderer) FilterGraph(plan *layout.Plan) (string, error) {
	stream, err := r.Stream(plan, Inputs{Output: "out.mp4"})
	if err != nil {
		return "", err
	}
	graph, ok := flagValue(stream.GetArgs(), "-filter_complex")
	if !ok {
		return "", fmt.Errorf("ffmpeg 参数中缺少 -filter_complex")
	}
	return graph, nil
}

// Stream 构建 ffmpeg-go 的输出流：背景缩放裁剪到画面尺寸，叠加全部文本行，再与音频合并。
func (r *Renderer) Stream(plan *layout.Plan, in Inputs) (*ffmpeg.Stream, error) {
	if plan == nil {
		return nil, fmt.Errorf("排版结果为空")
	}
	if in.Output == "" {
		return nil, fmt.Errorf("缺少输出文件路径")
	}
	fontfile, err := r.fontFile()
	if err != nil {
		return nil, err
	}

	video := r.background(plan, in)
	lines := 0
	for _, f := range plan.Fragments {
		for i, ln := range f.Lines() {
			if strings.TrimSpace(ln) == "" {
				continue
			}
			video = video.Filter("drawtext", ffmpeg.Args{}, drawtextArgs(f, i, ln, fontfile))
			lines++
		}
	}
	r.logger.Debug("drawtext 滤镜已生成", zap.Int("fragments", len(plan.Fragments)), zap.Int("lines", lines))

	streams := []*ffmpeg.Stream{video}
	kwargs := ffmpeg.KwArgs{
		"t":       fmt.Sprintf("%.3f", plan.Duration),
		"c:v":     orDefault(in.VideoCodec, "libx264"),
		"pix_fmt": "yuv420p",
	}
	if in.Preset != "" {
		kwargs["preset"] = in.Preset
	}
	if in.Audio != "" {
		streams = append(streams, ffmpeg.Input(in.Audio).Audio())
		kwargs["c:a"] = orDefault(in.AudioCodec, "aac")
	}
	return ffmpeg.Output(streams, in.Output, kwargs).OverWriteOutput(), nil
}

// Args 返回完整的 ffmpeg 参数；滤镜描述超过阈值时写入 WorkDir 下的脚本文件。
func (r *Renderer) Args(plan *layout.Plan, in Inputs) ([]string, error) {
	stream, err := r.Stream(plan, in)
	if err != nil {
		return nil, err
	}
	args := stream.GetArgs()
	graph, ok := flagValue(args, "-filter_complex")
	if !ok || len(graph) <= r.threshold {
		return args, nil
	}
	if err := os.MkdirAll(r.workDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建工作目录失败: %w", err)
	}
	script, err := os.CreateTemp(r.workDir, "filter-*.txt")
	if err != nil {
		return nil, fmt.Errorf("创建滤镜脚本失败: %w", err)
	}
	defer script.Close()
	if _, err := script.WriteString(graph); err != nil {
		return nil, fmt.Errorf("写入滤镜脚本失败: %w", err)
	}
	r.logger.Debug("滤镜描述改用脚本文件", zap.Int("bytes", len(graph)), zap.String("path", script.Name()))
	return replaceFlag(args, "-filter_complex", "-filter_complex_script", script.Name()), nil
}

// Run 执行 ffmpeg 合成，ctx 取消时终止进程。
func (r *Renderer) Run(ctx context.Context, plan *layout.Plan, in Inputs) error {
	args, err := r.Args(plan, in)
	if err != nil {
		return err
	}
	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, r.binary, args...)
	cmd.Stderr = &stderr
	r.logger.Info("开始 ffmpeg 合成", zap.String("output", in.Output), zap.Int("args", len(args)))
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg 执行失败: %w: %s", err, tail(stderr.String(), 2048))
	}
	r.logger.Info("ffmpeg 合成完成", zap.String("output", in.Output))
	return nil
}

func (r *Renderer) background(plan *layout.Plan, in Inputs) *ffmpeg.Stream {
	size := fmt.Sprintf("%d:%d", plan.Width, plan.Height)
	if in.Background == "" {
		c := layout.Color{R: 255, G: 255, B: 255}
		if in.BackgroundColor != nil {
			c = *in.BackgroundColor
		}
		src := fmt.Sprintf("color=c=%s:s=%dx%d:d=%.3f", ffmpegColor(c), plan.Width, plan.Height, plan.Duration)
		return ffmpeg.Input(src, ffmpeg.KwArgs{"f": "lavfi"}).Video()
	}
	opts := ffmpeg.KwArgs{}
	if isImage(in.Background) {
		opts["loop"] = "1"
	} else {
		opts["stream_loop"] = "-1"
	}
	// 居中裁剪：先等比放大到覆盖画面，再裁到目标尺寸
	return ffmpeg.Input(in.Background, opts).Video().
		Filter("scale", ffmpeg.Args{size}, ffmpeg.KwArgs{"force_original_aspect_ratio": "increase"}).
		Filter("crop", ffmpeg.Args{size})
}

func (r *Renderer) fontFile() (string, error) {
	if r.font.Src == "" {
		return "", &layout.FontLoadError{Font: r.font, Err: fmt.Errorf("缺少 src")}
	}
	if fonts.IsBuiltin(r.font.Src) {
		path, err := fonts.Materialize(r.font.Src, r.workDir)
		if err != nil {
			return "", &layout.FontLoadError{Font: r.font, Err: err}
		}
		return path, nil
	}
	path := r.font.Src
	if !filepath.IsAbs(path) && r.baseDir != "" {
		path = filepath.Join(r.baseDir, path)
	}
	if _, err := os.Stat(path); err != nil {
		return "", &layout.FontLoadError{Font: r.font, Err: err}
	}
	return path, nil
}

// drawtextArgs 生成单行文本的 drawtext 参数。ffmpeg-go 只在滤镜图层面转义，
// 选项值里的 \ ' : = 需要先由 escapeOption 处理。
// 时间窗口使用 gte/lt 以保持 [From, Until) 的半开语义。
func drawtextArgs(f layout.Fragment, line int, text, fontfile string) ffmpeg.KwArgs {
	lineHeight := f.LineHeight
	if lineHeight <= 0 {
		lineHeight = f.FontSize
	}
	x := fmt.Sprintf("%.2f", f.X)
	if f.Align == layout.AlignCenter {
		x = fmt.Sprintf("%.2f+(%.2f-text_w)/2", f.X, f.Width)
	}
	args := ffmpeg.KwArgs{
		"text":      escapeOption(text),
		"fontfile":  escapeOption(fontfile),
		"fontsize":  fmt.Sprintf("%.2f", f.FontSize),
		"fontcolor": ffmpegColor(f.Fill),
		"x":         x,
		"y":         fmt.Sprintf("%.2f", f.Y+float64(line)*lineHeight),
		"enable":    fmt.Sprintf("gte(t,%.3f)*lt(t,%.3f)", f.From, f.Until),
		"expansion": "none",
	}
	if f.StrokeWidth > 0 {
		args["borderw"] = fmt.Sprintf("%.2f", f.StrokeWidth)
		args["bordercolor"] = ffmpegColor(f.Stroke)
	}
	return args
}

// optionEscaper 对应 ffmpeg 的选项级转义，单遍替换，不会重复转义反斜杠。
var optionEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`, `:`, `\:`, `=`, `\=`)

func escapeOption(v string) string {
	return optionEscaper.Replace(v)
}

func ffmpegColor(c layout.Color) string {
	return "0x" + strings.TrimPrefix(c.Hex(), "#")
}

func isImage(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png", ".jpg", ".jpeg", ".bmp", ".webp":
		return true
	}
	return false
}

func flagValue(args []string, flag string) (string, bool) {
	for i := 0; i+1 < len(args); i++ {
		if args[i] == flag {
			return args[i+1], true
		}
	}
	return "", false
}

func replaceFlag(args []string, flag, newFlag, value string) []string {
	out := make([]string, len(args))
	copy(out, args)
	for i := 0; i+1 < len(out); i++ {
		if out[i] == flag {
			out[i], out[i+1] = newFlag, value
			break
		}
	}
	return out
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func tail(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[len(s)-n:]
}
