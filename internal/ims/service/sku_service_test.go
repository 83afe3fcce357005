package service

import (
	"testing"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
)

func TestBuildSKUCode(t *testing.T) {
	cases := []struct {
		protoCode, colorValue, sizeName string
		releaseNumber                   int
		want                            string
	}{
		{"HOODIE01", "#1A2B3C", "M", 1, "TFOC-HOODIE01-1A2B3C-M-R1"},
		{"HOODIE01", "#ffffff", "XL", 3, "TFOC-HOODIE01-FFFFFF-XL-R3"},
		{"TEE", "000000", "S", 12, "TFOC-TEE-000000-S-R12"},
	}
	for _, c := range cases {
		got := BuildSKUCode(c.protoCode, c.colorValue, c.sizeName, c.releaseNumber)
		if got != c.want {
			t.Errorf("BuildSKUCode(%q, %q, %q, %d) = %q, want %q",
				c.protoCode, c.colorValue, c.sizeName, c.releaseNumber, got, c.want)
		}
	}
}

func TestStockStatusFor(t *testing.T) {
	cases := []struct {
		quantity, sellable, threshold int
		want                          string
	}{
		{0, 0, 5, entity.StockStatusPending},
		{10, 0, 5, entity.StockStatusOutOfStock},
		{10, 3, 5, entity.StockStatusLowStock},
		{10, 5, 5, entity.StockStatusInStock},
		{10, 8, 5, entity.StockStatusInStock},
	}
	for _, c := range cases {
		got := stockStatusFor(c.quantity, c.sellable, c.threshold)
		if got != c.want {
			t.Errorf("stockStatusFor(%d, %d, %d) = %q, want %q",
				c.quantity, c.sellable, c.threshold, got, c.want)
		}
	}
}

func TestGenerationStatus(t *testing.T) {
	cases := []struct {
		name   string
		result GenerationResult
		want   string
	}{
		{"all created", GenerationResult{Created: 4}, entity.GenerationCompleted},
		{"all skipped", GenerationResult{Skipped: 4}, entity.GenerationCompleted},
		{"partial", GenerationResult{Created: 2, Failures: []GenerationFailure{{}}}, entity.GenerationPartial},
		{"all failed", GenerationResult{Failures: []GenerationFailure{{}, {}}}, entity.GenerationFailed},
	}
	for _, c := range cases {
		if got := generationStatus(&c.result); got != c.want {
			t.Errorf("%s: generationStatus = %q, want %q", c.name, got, c.want)
		}
	}
}
