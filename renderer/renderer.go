package renderer

import "github.com/ByLCY/scrollsub/layout"

// Renderer 将排版结果输出为最终产物，例如分镜 PDF 或 ffmpeg 滤镜脚本。
// Render 返回生成的二进制数据以及可能的错误。
type Renderer interface {
	Render(plan *layout.Plan) ([]byte, error)
}
