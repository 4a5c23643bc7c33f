package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ByLCY/scrollsub/binding"
	"github.com/ByLCY/scrollsub/config"
	"github.com/ByLCY/scrollsub/cue"
	"github.com/ByLCY/scrollsub/layout"
	canvasrenderer "github.com/ByLCY/scrollsub/renderer/canvas"
	ffmpegrenderer "github.com/ByLCY/scrollsub/renderer/ffmpeg"
)

// options 汇总命令行参数。
type options struct {
	input        string
	configPath   string
	title        string
	dataJSON     string
	theme        string
	aspect       string
	duration     float64
	debug        string
	frame        string
	at           float64
	storyboard   string
	ffmpegScript string
	video        string
	audio        string
	out          string
	verbose      bool
}

func main() {
	var o options
	flag.StringVar(&o.input, "in", "examples/demo.srt", "字幕文件路径（SRT / WebVTT）")
	flag.StringVar(&o.configPath, "config", "", "配置文件路径（YAML / TOML / JSON）")
	flag.StringVar(&o.title, "title", "", "标题，支持 ${path|默认值} 占位符；为空时使用配置中的 title.text")
	flag.StringVar(&o.dataJSON, "data", "", "绑定到标题模板的 JSON 数据")
	flag.StringVar(&o.theme, "theme", "", "主题：modern_book / cinema / ancient_scroll / minimal")
	flag.StringVar(&o.aspect, "aspect", "", "画面比例：16:9 / 9:16 / 1:1 / 9:16-720p / 16:9-720p")
	flag.Float64Var(&o.duration, "duration", 0, "视频总时长（秒），通常为音频时长")
	flag.StringVar(&o.debug, "debug", "", "排版结果调试输出路径（.json 或 .yaml）")
	flag.StringVar(&o.frame, "frame", "", "单帧 PNG 预览输出路径")
	flag.Float64Var(&o.at, "at", 0, "单帧预览的时刻（秒）")
	flag.StringVar(&o.storyboard, "storyboard", "", "分镜 PDF 输出路径")
	flag.StringVar(&o.ffmpegScript, "ffmpeg-script", "", "ffmpeg 滤镜脚本输出路径")
	flag.StringVar(&o.video, "video", "", "背景视频或图片，为空时使用纯色背景")
	flag.StringVar(&o.audio, "audio", "", "音频文件")
	flag.StringVar(&o.out, "out", "", "合成视频输出路径，设置后调用 ffmpeg")
	flag.BoolVar(&o.verbose, "verbose", false, "输出调试日志")
	flag.Parse()

	logger, err := newLogger(o.verbose)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()
	logger = logger.With(zap.String("run", uuid.NewString()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, o, logger); err != nil {
		logger.Error("生成失败", zap.Error(err))
		stop()
		os.Exit(1)
	}
}

func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// run 串联配置、字幕解析、排版与各个输出。
func run(ctx context.Context, o options, logger *zap.Logger) error {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return err
	}
	applyFlags(cfg, o)
	inputDir := filepath.Dir(o.input)
	cfg.FontDirs = append(cfg.FontDirs, inputDir, filepath.Join(inputDir, "fonts"))

	resolved, err := cfg.Resolve()
	if err != nil {
		return fmt.Errorf("解析配置失败: %w", err)
	}
	if resolved.FontFallback {
		logger.Warn("配置的字体不可用，已使用回退字体",
			zap.String("want", cfg.Subtitle.Font),
			zap.String("font", resolved.Style.Font.Src),
		)
	}

	phrases, err := readCues(o.input)
	if err != nil {
		return err
	}
	title, err := bindTitle(cfg.Title.Text, o.dataJSON, logger)
	if err != nil {
		return err
	}

	style := resolved.Style
	cr := canvasrenderer.NewRendererWithOptions(canvasrenderer.Options{
		Background:         &resolved.Background,
		StoryboardInterval: cfg.Render.StoryboardInterval,
		Keyframes:          cfg.Render.Keyframes,
		Font:               &style.Font,
		Logger:             logger,
	})
	plan, err := layout.Build(phrases, title, resolved.Theme, resolved.Geometry, style, layout.BuildOptions{
		Measurer: cr,
		Duration: cfg.Duration,
		Workers:  cfg.Workers,
	})
	if err != nil {
		var fe *layout.FontLoadError
		if errors.As(err, &fe) {
			logger.Error("字体加载失败", zap.String("font", fe.Font.Src))
		}
		return fmt.Errorf("排版失败: %w", err)
	}
	logger.Info("排版完成",
		zap.Stringer("theme", resolved.Theme),
		zap.Int("phrases", len(phrases)),
		zap.Int("subtitles", plan.Count(layout.KindSubtitle)),
		zap.Int("titles", plan.Count(layout.KindTitle)),
		zap.Float64("duration", plan.Duration),
	)

	if o.debug != "" {
		if err := ensureDir(o.debug); err != nil {
			return err
		}
		if err := layout.WriteDebug(plan, o.debug); err != nil {
			return fmt.Errorf("输出调试文件失败: %w", err)
		}
		logger.Info("已输出调试文件", zap.String("path", o.debug))
	}

	if o.frame != "" {
		if err := writeFrame(cr, plan, o.frame, o.at); err != nil {
			return err
		}
		logger.Info("已输出预览帧", zap.String("path", o.frame), zap.Float64("at", o.at))
	}

	if o.storyboard != "" {
		pdf, err := cr.Render(plan)
		if err != nil {
			return fmt.Errorf("渲染分镜失败: %w", err)
		}
		if err := writeFile(o.storyboard, pdf); err != nil {
			return err
		}
		logger.Info("已输出分镜 PDF", zap.String("path", o.storyboard))
	}

	if o.ffmpegScript == "" && o.out == "" {
		return nil
	}
	fr := ffmpegrenderer.NewRenderer(ffmpegrenderer.Options{
		WorkDir: cfg.Render.WorkDir,
		Binary:  cfg.Render.FFmpeg,
		Font:    &style.Font,
		Logger:  logger,
	})
	if o.ffmpegScript != "" {
		script, err := fr.Render(plan)
		if err != nil {
			return fmt.Errorf("生成滤镜脚本失败: %w", err)
		}
		if err := writeFile(o.ffmpegScript, script); err != nil {
			return err
		}
		logger.Info("已输出滤镜脚本", zap.String("path", o.ffmpegScript))
	}
	if o.out != "" {
		if err := ensureDir(o.out); err != nil {
			return err
		}
		in := ffmpegrenderer.Inputs{
			Background:      o.video,
			BackgroundColor: &resolved.Background,
			Audio:           o.audio,
			Output:          o.out,
			Preset:          cfg.Render.Preset,
		}
		if err := fr.Run(ctx, plan, in); err != nil {
			return err
		}
	}
	return nil
}

// applyFlags 命令行参数优先于配置文件。
func applyFlags(cfg *config.Config, o options) {
	if o.theme != "" {
		cfg.Theme = o.theme
	}
	if o.aspect != "" {
		cfg.Aspect = o.aspect
	}
	if o.duration > 0 {
		cfg.Duration = o.duration
	}
	if o.title != "" {
		cfg.Title.Text = o.title
	}
}

func readCues(path string) ([]layout.Phrase, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("无法打开字幕文件 %s: %w", path, err)
	}
	defer file.Close()

	phrases, err := cue.Parse(file)
	if err != nil {
		return nil, fmt.Errorf("解析字幕失败: %w", err)
	}
	return phrases, nil
}

func bindTitle(template, dataJSON string, logger *zap.Logger) (string, error) {
	data, err := binding.Decode([]byte(dataJSON))
	if err != nil {
		return "", err
	}
	res := binding.Bind(template, data)
	if len(res.Missing) > 0 {
		logger.Warn("标题模板中存在未绑定的占位符", zap.Strings("paths", res.Missing))
	}
	return res.Text, nil
}

func writeFrame(cr *canvasrenderer.Renderer, plan *layout.Plan, path string, at float64) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建预览文件失败: %w", err)
	}
	if err := cr.WriteFramePNG(f, plan, at); err != nil {
		f.Close()
		return fmt.Errorf("渲染预览帧失败: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("写入预览文件失败: %w", err)
	}
	return nil
}

func writeFile(path string, data []byte) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("写入文件 %s 失败: %w", path, err)
	}
	return nil
}

func ensureDir(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("创建输出目录失败: %w", err)
	}
	return nil
}
