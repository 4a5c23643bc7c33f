package layout

import (
	"math"
	"testing"
)

// TestPercentResolve 验证百分比换算与整像素截断。
func TestPercentResolve(t *testing.T) {
	if got := Percent(70).Of(1080); math.Abs(got-756) > 1e-9 {
		t.Fatalf("70%% of 1080 期望 756，实际 %g", got)
	}
	if got := Percent(18).Px(1920); got != 345 {
		t.Fatalf("18%% of 1920 截断后期望 345，实际 %g", got)
	}
	if got := Percent(25).Fraction(); got != 0.25 {
		t.Fatalf("25%% 的小数形式期望 0.25，实际 %g", got)
	}
}

func TestParsePercent(t *testing.T) {
	cases := map[string]Percent{
		"12":    12,
		"12%":   12,
		" 7.5%": 7.5,
		"0.12x": 12,
		"":      0,
	}
	for in, want := range cases {
		got, err := ParsePercent(in)
		if err != nil {
			t.Fatalf("解析 %q 失败: %v", in, err)
		}
		if math.Abs(float64(got-want)) > 1e-9 {
			t.Fatalf("解析 %q 期望 %g，实际 %g", in, want, got)
		}
	}
	if _, err := ParsePercent("abc%"); err == nil {
		t.Fatalf("非法百分比应报错")
	}
}

func TestMultiplierApply(t *testing.T) {
	if got := ReadingScale.Apply(40); math.Abs(got-44) > 1e-9 {
		t.Fatalf("1.1×40 期望 44，实际 %g", got)
	}
	if got := CinemaTitleScale.Apply(40); got != 100 {
		t.Fatalf("2.5×40 期望 100，实际 %g", got)
	}
}

func TestGeometryPresets(t *testing.T) {
	cases := map[Aspect][2]int{
		AspectLandscape:     {1920, 1080},
		AspectPortrait:      {1080, 1920},
		AspectSquare:        {1080, 1080},
		AspectPortrait720p:  {720, 1280},
		AspectLandscape720p: {1280, 720},
	}
	for a, want := range cases {
		g := GeometryFor(a)
		if g.Width != want[0] || g.Height != want[1] {
			t.Fatalf("%s 期望 %dx%d，实际 %dx%d", a, want[0], want[1], g.Width, g.Height)
		}
		if g.Portrait != (want[1] > want[0]) {
			t.Fatalf("%s 方向判断错误", a)
		}
	}
	if _, err := ParseAspect("4:3"); err == nil {
		t.Fatalf("未知比例应报错")
	}
	if err := NewGeometry(0, 10).Validate(); err == nil {
		t.Fatalf("零宽画面应报错")
	}
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#8B4513")
	if err != nil || c != (Color{R: 0x8B, G: 0x45, B: 0x13}) {
		t.Fatalf("解析 #8B4513 失败: %v %v", c, err)
	}
	if c, _ := ParseColor("fff"); c.Hex() != "#FFFFFF" {
		t.Fatalf("短格式解析错误: %s", c.Hex())
	}
	if _, err := ParseColor("#12345"); err == nil {
		t.Fatalf("长度非法的颜色应报错")
	}
}
