package layout

import (
	"errors"
	"fmt"
)

// ErrEmptyScript 表示没有可排版的字幕句。
var ErrEmptyScript = errors.New("layout: 字幕为空，无法生成排版")

// FontLoadError 表示字体（含回退链）无法加载。
type FontLoadError struct {
	Font FontResource
	Err  error
}

func (e *FontLoadError) Error() string {
	name := e.Font.Name
	if name == "" {
		name = e.Font.Src
	}
	if e.Err == nil {
		return fmt.Sprintf("layout: 无法加载字体 %s", name)
	}
	return fmt.Sprintf("layout: 无法加载字体 %s: %v", name, e.Err)
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// InvalidTimingError 表示某条字幕的时间轴非法：start >= end，或 start 相对上一条倒退。
type InvalidTimingError struct {
	Index  int
	Phrase Phrase
	Reason string
}

func (e *InvalidTimingError) Error() string {
	return fmt.Sprintf("layout: 第 %d 条字幕时间轴非法 [%.3f, %.3f): %s", e.Index+1, e.Phrase.Start, e.Phrase.End, e.Reason)
}

// GeometryMismatchError 表示区域边界倒置或画面尺寸非法。
type GeometryMismatchError struct {
	Region string
	Detail string
}

func (e *GeometryMismatchError) Error() string {
	return fmt.Sprintf("layout: %s 区域非法: %s", e.Region, e.Detail)
}
