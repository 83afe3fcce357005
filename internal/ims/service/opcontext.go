package service

import "context"

// Effect 可抑制的级联副作用
type Effect string

const (
	EffectGenerateSKUs    Effect = "generate_skus"
	EffectGenerateSerials Effect = "generate_serials"
)

type suppressKey struct{}

// WithSuppressed 返回抑制指定副作用的 context。
// 用于导入、修复等场景下写入实体而不触发级联。
func WithSuppressed(ctx context.Context, effects ...Effect) context.Context {
	set := suppressedSet(ctx)
	merged := make(map[Effect]bool, len(set)+len(effects))
	for e := range set {
		merged[e] = true
	}
	for _, e := range effects {
		merged[e] = true
	}
	return context.WithValue(ctx, suppressKey{}, merged)
}

// IsSuppressed 判断当前操作是否抑制了指定副作用
func IsSuppressed(ctx context.Context, effect Effect) bool {
	return suppressedSet(ctx)[effect]
}

func suppressedSet(ctx context.Context) map[Effect]bool {
	set, _ := ctx.Value(suppressKey{}).(map[Effect]bool)
	return set
}
