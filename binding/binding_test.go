package binding

import (
	"reflect"
	"testing"
)

func TestInterpolate(t *testing.T) {
	data, err := Decode([]byte(`{"book":{"title":"静夜思","authors":["李白"],"year":701,"rating":4.5},"empty":null}`))
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}
	cases := []struct{ in, want string }{
		{"${book.title}", "静夜思"},
		{"${book.authors[0]}《${book.title}》", "李白《静夜思》"},
		{"${book.year}", "701"},
		{"${book.rating}", "4.5"},
		{"${book.subtitle|无题}", "无题"},
		{"${empty|默认}", "默认"},
		{"${book.authors[3]|}", ""},
		{"${ book.title }", "静夜思"},
		{"plain", "plain"},
	}
	for _, c := range cases {
		if got := Interpolate(c.in, data); got != c.want {
			t.Fatalf("%q: expected %q, got %q", c.in, c.want, got)
		}
	}
}

func TestBindReportsMissing(t *testing.T) {
	res := Bind("${a}-${b|x}-${c.d}", map[string]any{"a": "1"})
	if res.Text != "1-x-${c.d}" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if !reflect.DeepEqual(res.Missing, []string{"c.d"}) {
		t.Fatalf("unexpected missing %v", res.Missing)
	}

	// 没有数据时保留占位符，默认值仍然生效
	if got := Interpolate("${title}|${title|默认标题}", nil); got != "${title}|默认标题" {
		t.Fatalf("unexpected nil-data result %q", got)
	}
}

func TestDecode(t *testing.T) {
	if v, err := Decode([]byte("  ")); v != nil || err != nil {
		t.Fatalf("blank input should decode to nil, got %v %v", v, err)
	}
	if _, err := Decode([]byte("{")); err == nil {
		t.Fatalf("invalid json should fail")
	}
}
