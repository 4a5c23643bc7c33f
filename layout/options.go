package layout

// BuildOptions 配置布局阶段所需的依赖，例如测量后端与视频总时长。
type BuildOptions struct {
	Measurer Measurer
	// Duration 为视频总时长（通常来自音频时长）；小于最后一条字幕结束时间时取后者。
	Duration float64
	// Workers 限制卷轴分屏的并发数，<=0 表示不限制。
	Workers int
}

// Measurer 根据字体的真实字形度量测量文本的像素宽高。
// 实现必须是确定性的，并且允许并发调用。字体无法加载时返回 *FontLoadError。
type Measurer interface {
	Measure(text string, font FontResource, size float64) (width, height float64, err error)
}

// MeasurerFunc 把普通函数适配为 Measurer。
type MeasurerFunc func(text string, font FontResource, size float64) (float64, float64, error)

// Measure 实现 Measurer。
func (f MeasurerFunc) Measure(text string, font FontResource, size float64) (float64, float64, error) {
	return f(text, font, size)
}
