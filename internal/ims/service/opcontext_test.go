package service

import (
	"context"
	"testing"
)

func TestSuppressedEffects(t *testing.T) {
	ctx := context.Background()

	if IsSuppressed(ctx, EffectGenerateSKUs) {
		t.Error("bare context should not suppress anything")
	}

	ctx = WithSuppressed(ctx, EffectGenerateSKUs)
	if !IsSuppressed(ctx, EffectGenerateSKUs) {
		t.Error("EffectGenerateSKUs should be suppressed")
	}
	if IsSuppressed(ctx, EffectGenerateSerials) {
		t.Error("EffectGenerateSerials should not be suppressed yet")
	}

	// 叠加抑制时保留已有集合
	ctx2 := WithSuppressed(ctx, EffectGenerateSerials)
	if !IsSuppressed(ctx2, EffectGenerateSKUs) || !IsSuppressed(ctx2, EffectGenerateSerials) {
		t.Error("merged context should suppress both effects")
	}

	// 派生 context 不影响父 context
	if IsSuppressed(ctx, EffectGenerateSerials) {
		t.Error("parent context should be unchanged")
	}
}
