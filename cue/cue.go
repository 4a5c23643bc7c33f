// Package cue 读取 SRT / WebVTT 字幕文件并转换为排版用的短语序列。
package cue

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"github.com/ByLCY/scrollsub/layout"
)

// Format 是字幕文件格式。
type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

var (
	// 每个记号都占满一行（换行符除外），规则顺序决定优先级。
	cueLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Header", Pattern: `WEBVTT(?:[ \t][^\n]*)?`},
		{Name: "Timing", Pattern: `(?:\d+:)?\d{1,2}:\d{2}[,.]\d{1,3}[ \t]+-->[ \t]+(?:\d+:)?\d{1,2}:\d{2}[,.]\d{1,3}[^\n]*`},
		{Name: "BlankLine", Pattern: `\n(?:[ \t]*\n)+`},
		{Name: "Newline", Pattern: `\n`},
		{Name: "Text", Pattern: `[^\n]+`},
	})

	fileParser = participle.MustBuild[File](
		participle.Lexer(cueLexer),
		participle.UseLookahead(2),
	)

	timingPattern = regexp.MustCompile(`^((?:\d+:)?\d{1,2}:\d{2}[,.]\d{1,3})[ \t]+-->[ \t]+((?:\d+:)?\d{1,2}:\d{2}[,.]\d{1,3})`)
	tagPattern    = regexp.MustCompile(`<[^>]*>`)
)

// File is the AST of a cue file: blocks separated by blank lines.
type File struct {
	Blocks []*Block `parser:"( @@ ( BlankLine @@ )* )?"`
}

// Block 为空行之间的一组连续行。只有含时间行的块才是字幕条目，
// 其余（WEBVTT 头、NOTE、STYLE）在转换时忽略。
type Block struct {
	Pos   lexer.Position `parser:"" json:"-"`
	Lines []*Line        `parser:"@@ ( Newline @@ )*"`
}

// Line is one physical line of a block.
type Line struct {
	Header *string `parser:"  @Header"`
	Timing *string `parser:"| @Timing"`
	Text   *string `parser:"| @Text"`
}

// Cue 是一条字幕：编号或 VTT 标识、时间窗口与正文行。
type Cue struct {
	ID    string
	Start float64
	End   float64
	Lines []string
}

// Text 合并正文行并去掉 VTT 标签。
func (c Cue) Text() string {
	var b strings.Builder
	for _, ln := range c.Lines {
		ln = strings.TrimSpace(tagPattern.ReplaceAllString(ln, ""))
		if ln == "" {
			continue
		}
		if b.Len() > 0 && needsSpace(b.String(), ln) {
			b.WriteByte(' ')
		}
		b.WriteString(ln)
	}
	return b.String()
}

// needsSpace 中日韩文字跨行拼接时不插入空格。
func needsSpace(prev, next string) bool {
	last, _ := utf8.DecodeLastRuneInString(prev)
	first, _ := utf8.DecodeRuneInString(next)
	return last < utf8.RuneSelf || first < utf8.RuneSelf
}

// Document 是解析后的字幕文件。
type Document struct {
	Format Format
	Cues   []Cue
}

// Phrases 转换为排版输入，正文为空的条目被跳过。
func (d *Document) Phrases() []layout.Phrase {
	out := make([]layout.Phrase, 0, len(d.Cues))
	for _, c := range d.Cues {
		text := c.Text()
		if text == "" {
			continue
		}
		out = append(out, layout.Phrase{Start: c.Start, End: c.End, Text: text})
	}
	return out
}

// Parse 读取 SRT 或 WebVTT 内容并返回短语序列。
func Parse(r io.Reader) ([]layout.Phrase, error) {
	doc, err := ParseDocument(r)
	if err != nil {
		return nil, err
	}
	return doc.Phrases(), nil
}

// ParseString parses cue content from a string.
func ParseString(input string) ([]layout.Phrase, error) {
	return Parse(strings.NewReader(input))
}

// ParseDocument 解析完整的字幕文件，保留编号与原始正文行。
func ParseDocument(r io.Reader) (*Document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("读取字幕失败: %w", err)
	}
	src := normalize(string(raw))
	if src == "" {
		return nil, layout.ErrEmptyScript
	}
	ast, err := fileParser.ParseString("", src)
	if err != nil {
		return nil, fmt.Errorf("解析字幕失败: %w", err)
	}

	doc := &Document{Format: FormatSRT}
	for i, blk := range ast.Blocks {
		if i == 0 && len(blk.Lines) > 0 && blk.Lines[0].Header != nil {
			doc.Format = FormatVTT
			continue
		}
		c, ok, err := blk.cue()
		if err != nil {
			return nil, err
		}
		if ok {
			doc.Cues = append(doc.Cues, c)
		}
	}
	if len(doc.Cues) == 0 {
		return nil, layout.ErrEmptyScript
	}
	return doc, nil
}

// cue 把块转换为字幕条目；时间行之前的行作为标识，之后的行为正文。
func (b *Block) cue() (Cue, bool, error) {
	var c Cue
	timing := -1
	for i, ln := range b.Lines {
		if ln.Timing != nil {
			timing = i
			break
		}
	}
	if timing < 0 {
		return c, false, nil
	}
	if timing > 0 && b.Lines[timing-1].Text != nil {
		c.ID = strings.TrimSpace(*b.Lines[timing-1].Text)
	}
	start, end, err := parseTiming(*b.Lines[timing].Timing)
	if err != nil {
		return c, false, fmt.Errorf("第 %d 行: %w", b.Pos.Line+timing, err)
	}
	c.Start, c.End = start, end
	for _, ln := range b.Lines[timing+1:] {
		switch {
		case ln.Text != nil:
			c.Lines = append(c.Lines, *ln.Text)
		case ln.Timing != nil:
			c.Lines = append(c.Lines, *ln.Timing)
		case ln.Header != nil:
			c.Lines = append(c.Lines, *ln.Header)
		}
	}
	return c, true, nil
}

func parseTiming(line string) (float64, float64, error) {
	m := timingPattern.FindStringSubmatch(line)
	if m == nil {
		return 0, 0, fmt.Errorf("无效的时间行 %q", line)
	}
	start, err := ParseTimestamp(m[1])
	if err != nil {
		return 0, 0, err
	}
	end, err := ParseTimestamp(m[2])
	if err != nil {
		return 0, 0, err
	}
	return start, end, nil
}

// ParseTimestamp 解析 HH:MM:SS,mmm、HH:MM:SS.mmm 或 MM:SS.mmm，返回秒。
func ParseTimestamp(s string) (float64, error) {
	s = strings.TrimSpace(s)
	clock, frac, ok := strings.Cut(strings.Replace(s, ",", ".", 1), ".")
	if !ok {
		return 0, fmt.Errorf("无效的时间戳 %q", s)
	}
	parts := strings.Split(clock, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("无效的时间戳 %q", s)
	}
	total := 0
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil || n < 0 {
			return 0, fmt.Errorf("无效的时间戳 %q", s)
		}
		total = total*60 + n
	}
	// 毫秒位数不足三位时按小数处理，例如 ".5" 为 500ms
	ms, err := strconv.Atoi((frac + "00")[:3])
	if err != nil {
		return 0, fmt.Errorf("无效的时间戳 %q", s)
	}
	return float64(total) + float64(ms)/1000, nil
}

// FormatTimestamp 按 SRT（逗号）或 VTT（点号）格式输出时间戳。
func FormatTimestamp(seconds float64, f Format) string {
	ms := int64(math.Round(math.Max(0, seconds) * 1000))
	h := ms / 3_600_000
	m := ms / 60_000 % 60
	s := ms / 1000 % 60
	sep := ","
	if f == FormatVTT {
		sep = "."
	}
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms%1000)
}

// WriteSRT 把短语序列写为 SRT，编号从 1 开始。
func WriteSRT(w io.Writer, phrases []layout.Phrase) error {
	bw := bufio.NewWriter(w)
	for i, p := range phrases {
		if i > 0 {
			bw.WriteString("\n")
		}
		fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n", i+1,
			FormatTimestamp(p.Start, FormatSRT), FormatTimestamp(p.End, FormatSRT), strings.TrimSpace(p.Text))
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("写入 SRT 失败: %w", err)
	}
	return nil
}

// normalize 统一换行、去掉 BOM 与首尾空白。
func normalize(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.TrimSpace(s)
}
