package service

import (
	"math"
	"testing"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
)

func baseRelease() *entity.Release {
	return &entity.Release{
		Volume:              100,
		CostMaterial:        10,
		CostLabor:           5,
		CostPackaging:       2,
		Positioning:         "4.5",
		OpLogistics:         0,
		OpAfterSale:         3,
		OpCommission:        5,
		OpChannel:           8,
		OpTax:               5,
		DiscountStatus:      entity.DiscountStatusNormal,
		CustomDiscountRate:  100,
		MarketingPercentage: 20,
		ReturnRate:          5,
		FullPriceRate:       70,
	}
}

func approx(t *testing.T, name string, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("%s = %v, want %v", name, got, want)
	}
}

func TestComputePricingBaseline(t *testing.T) {
	r := baseRelease()
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	approx(t, "UnitCOGS", r.UnitCOGS, 17)
	// 17 * 4.5 / (1 - 0.21) = 96.8354...
	approx(t, "SuggestedPrice", r.SuggestedPrice, 96.84)
	// 正常状态折后价等于建议零售价
	approx(t, "DiscountedPrice", r.DiscountedPrice, 96.84)
	approx(t, "TotalOperationalCost", r.TotalOperationalCost, 20.34)
	// suggested*(1-totalRate) - unitCOGS = unitCOGS*(multiplier-1)，此处恰为整数
	approx(t, "GrossProfit", r.GrossProfit, 59.5)
	approx(t, "GrossMargin", r.GrossMargin, 61.44)
}

func TestComputePricingDefiningInvariant(t *testing.T) {
	// 建议零售价扣除按比例运营费后应覆盖 倍率*成本+物流
	r := baseRelease()
	r.CostMaterial = 37.5
	r.CostLabor = 12.25
	r.CostPackaging = 3
	r.OpLogistics = 8
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	unitCOGS := 37.5 + 12.25 + 3.0
	totalRate := (3 + 5 + 8 + 5) / 100.0
	want := unitCOGS*4.5 + 8
	got := r.SuggestedPrice * (1 - totalRate)
	if math.Abs(got-want) > 0.02 {
		t.Errorf("suggested*(1-totalRate) = %v, want within 0.02 of %v", got, want)
	}
}

func TestComputePricingDiscounted(t *testing.T) {
	r := baseRelease()
	r.DiscountStatus = entity.DiscountStatusDiscounted
	r.CustomDiscountRate = 80
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	// 96.835443 * 0.8 = 77.468354
	approx(t, "DiscountedPrice", r.DiscountedPrice, 77.47)
	if r.GrossProfit >= 59.5 {
		t.Errorf("discounted GrossProfit = %v, want below normal 59.5", r.GrossProfit)
	}
}

func TestComputePricingBreakeven(t *testing.T) {
	r := baseRelease()
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	ov := r.KPIOverview
	approx(t, "TotalCOGS", ov.TotalCOGS, 1700)
	approx(t, "TotalOperationalCosts", ov.TotalOperationalCosts, 2033.54)
	approx(t, "TotalCost", ov.TotalCost, 3733.54)
	approx(t, "FinalPrice", ov.FinalPrice, 96.84)
	if ov.ReleaseVolume != 100 {
		t.Errorf("ReleaseVolume = %d, want 100", ov.ReleaseVolume)
	}

	be := r.KPIBreakeven
	approx(t, "MarketingCost", be.MarketingCost, 1936.71)
	if be.BreakevenUnits != 62 {
		t.Errorf("BreakevenUnits = %d, want 62", be.BreakevenUnits)
	}
	if be.ActualSoldUnits != 59 {
		t.Errorf("ActualSoldUnits = %d, want 59", be.ActualSoldUnits)
	}
	approx(t, "CPA", be.CPA, 32.83)
	approx(t, "CPO", be.CPO, 31.24)
}

func TestComputePricingForecast(t *testing.T) {
	r := baseRelease()
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	fc := r.KPIForecast
	if fc.ExpectedOrders != 106 {
		t.Errorf("ExpectedOrders = %d, want 106", fc.ExpectedOrders)
	}
	if fc.ExpectedActualSales != 100 {
		t.Errorf("ExpectedActualSales = %d, want 100", fc.ExpectedActualSales)
	}
	// 混合系数 0.7 + 0.3*0.7 = 0.91
	approx(t, "ExpectedTotalRevenue", fc.ExpectedTotalRevenue, 9340.75)
	approx(t, "ExpectedActualRevenue", fc.ExpectedActualRevenue, 8812.03)
	approx(t, "ExpectedMarketingCost", fc.ExpectedMarketingCost, 1868.15)
	approx(t, "ExpectedTotalCost", fc.ExpectedTotalCost, 5601.69)
	approx(t, "ExpectedNetProfit", fc.ExpectedNetProfit, 3210.33)
	approx(t, "ExpectedNetProfitMargin", fc.ExpectedNetProfitMargin, 36.43)
	approx(t, "ExpectedROI", fc.ExpectedROI, 1.57)
}

func TestComputePricingFinalRetailOverride(t *testing.T) {
	r := baseRelease()
	override := 120.0
	r.FinalRetailPrice = &override
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	approx(t, "FinalPrice", r.KPIOverview.FinalPrice, 120)
	// 建议零售价不受覆盖值影响
	approx(t, "SuggestedPrice", r.SuggestedPrice, 96.84)
	approx(t, "MarketingCost", r.KPIBreakeven.MarketingCost, 2400)
}

func TestComputePricingZeroGuards(t *testing.T) {
	r := baseRelease()
	r.Volume = 0
	r.CostMaterial = 0
	r.CostLabor = 0
	r.CostPackaging = 0
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	approx(t, "GrossMargin", r.GrossMargin, 0)
	if r.KPIBreakeven.BreakevenUnits != 0 {
		t.Errorf("BreakevenUnits = %d, want 0", r.KPIBreakeven.BreakevenUnits)
	}
	approx(t, "CPA", r.KPIBreakeven.CPA, 0)
	approx(t, "CPO", r.KPIBreakeven.CPO, 0)
	approx(t, "ExpectedROI", r.KPIForecast.ExpectedROI, 0)
	approx(t, "ExpectedNetProfitMargin", r.KPIForecast.ExpectedNetProfitMargin, 0)
}

func TestComputePricingCoerceInvalidInputs(t *testing.T) {
	r := baseRelease()
	r.CostLabor = math.NaN()
	r.OpLogistics = math.Inf(1)
	r.Positioning = "9.99"
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	// NaN/Inf 回落字段默认值，未知定位回落默认倍率
	approx(t, "UnitCOGS", r.UnitCOGS, 12)
	approx(t, "OpLogistics", r.OpLogistics, 0)
	if r.Positioning != DefaultPositioning {
		t.Errorf("Positioning = %q, want %q", r.Positioning, DefaultPositioning)
	}
}

func TestComputePricingCoerceNegativeInputs(t *testing.T) {
	r := baseRelease()
	r.CostMaterial = -10
	r.OpAfterSale = -3
	if err := ComputePricing(r, NumericModeCoerce); err != nil {
		t.Fatalf("ComputePricing: %v", err)
	}

	// 负成本归零，负费率回落文档默认值
	approx(t, "CostMaterial", r.CostMaterial, 0)
	approx(t, "OpAfterSale", r.OpAfterSale, 3)
	approx(t, "UnitCOGS", r.UnitCOGS, 7)
	if r.SuggestedPrice <= 0 {
		t.Errorf("SuggestedPrice = %v, want positive", r.SuggestedPrice)
	}
}

func TestComputePricingRejectInvalidInputs(t *testing.T) {
	r := baseRelease()
	r.CostLabor = math.NaN()
	if err := ComputePricing(r, NumericModeReject); err == nil {
		t.Fatal("expected error for NaN input in reject mode")
	}

	r = baseRelease()
	r.CostMaterial = -10
	if err := ComputePricing(r, NumericModeReject); err == nil {
		t.Fatal("expected error for negative cost in reject mode")
	}

	r = baseRelease()
	r.OpAfterSale = -3
	if err := ComputePricing(r, NumericModeReject); err == nil {
		t.Fatal("expected error for negative rate in reject mode")
	}

	r = baseRelease()
	r.Positioning = "9.99"
	if err := ComputePricing(r, NumericModeReject); err == nil {
		t.Fatal("expected error for unknown positioning in reject mode")
	}
}

func TestComputePricingTotalRateTooHigh(t *testing.T) {
	r := baseRelease()
	r.OpChannel = 90
	if err := ComputePricing(r, NumericModeCoerce); err == nil {
		t.Fatal("expected error when operational rates reach 100%")
	}
}

func TestRound2(t *testing.T) {
	cases := []struct{ in, want float64 }{
		{1.005, 1.0}, // float表示下 1.005 略小于真值
		{2.675, 2.67},
		{96.835443, 96.84},
		{-1.234, -1.23},
		{0, 0},
	}
	for _, c := range cases {
		if got := round2(c.in); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("round2(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}
