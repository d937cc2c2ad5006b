package imagegen

import (
	"context"
)

// ImageGenerator は1枚の画像を生成する契約です。
type ImageGenerator interface {
	Generate(ctx context.Context, req Request) (*Response, error)
}

// PanelsImageGenerator は複数パネルの画像をまとめて生成するためのインターフェースを定義します。
// 失敗したパネルは Result.Err に記録され、他のパネルの生成は続行されます。
type PanelsImageGenerator interface {
	Execute(ctx context.Context, reqs []Request) []Result
}

// Result はパネル1枚分の生成結果です。
type Result struct {
	Response *Response
	Err      error
}
