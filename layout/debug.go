package layout

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// WriteDebug 将排版结果输出为 JSON 或 YAML（按扩展名选择），便于调试或比对两个渲染后端。
func WriteDebug(plan *Plan, path string) error {
	if plan == nil {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("创建调试文件失败: %w", err)
	}
	defer f.Close()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = EncodeYAML(f, plan)
	default:
		err = EncodeJSON(f, plan)
	}
	if err != nil {
		return err
	}
	return f.Close()
}

// EncodeJSON 以缩进 JSON 输出排版结果。
func EncodeJSON(w io.Writer, plan *Plan) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(plan)
}

// EncodeYAML 以 YAML 输出排版结果。
func EncodeYAML(w io.Writer, plan *Plan) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(plan); err != nil {
		return fmt.Errorf("编码 YAML 失败: %w", err)
	}
	return enc.Close()
}
