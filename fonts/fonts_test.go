package fonts

import (
	"bytes"
	"os"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, src := range []string{"builtin:regular", "embed:bold", "built-in:Mono", "italic"} {
		data, err := Load(src)
		if err != nil {
			t.Fatalf("加载 %s 失败: %v", src, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s 数据为空", src)
		}
	}
	if _, err := Load("builtin:wenkai"); err == nil {
		t.Fatalf("未知内置字体应报错")
	}
	if !IsBuiltin("builtin:regular") || IsBuiltin("/fonts/a.ttf") {
		t.Fatalf("IsBuiltin 判断错误")
	}
	if len(Names()) != 4 {
		t.Fatalf("内置字体数量错误: %v", Names())
	}
}

func TestMaterialize(t *testing.T) {
	dir := t.TempDir()
	path, err := Materialize("builtin:bold", dir)
	if err != nil {
		t.Fatalf("写出字体失败: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("读取字体失败: %v", err)
	}
	want, _ := Load("builtin:bold")
	if !bytes.Equal(got, want) {
		t.Fatalf("写出的字体内容不一致")
	}
	again, err := Materialize("builtin:bold", dir)
	if err != nil || again != path {
		t.Fatalf("重复写出应复用文件: %s %v", again, err)
	}
}
