package service

import (
	"fmt"
	"math"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
)

// 数值校验模式
const (
	NumericModeCoerce = "coerce" // 非法数值（NaN/Inf/负数）回落到字段默认值，未知定位回落到默认倍率
	NumericModeReject = "reject" // 非法数值直接报错
)

// DiscountMultiplier 折价部分的固定折扣系数（收益预测用）
const DiscountMultiplier = 0.7

// DefaultPositioning 默认定位倍率档
const DefaultPositioning = "4.5"

// ComputePricing 重算 Release 的全部派生定价与KPI字段。
// 纯计算，不做 I/O，在每次 Release 写入前同步执行。
// 各阶段的输出在入库口径上保留两位小数，中间量不四舍五入。
func ComputePricing(r *entity.Release, mode string) error {
	inputs := []struct {
		name  string
		value *float64
		def   float64
	}{
		{"cost_material", &r.CostMaterial, 0},
		{"cost_labor", &r.CostLabor, 0},
		{"cost_packaging", &r.CostPackaging, 0},
		{"cost_dev_pattern", &r.CostDevPattern, 0},
		{"cost_dev_sample", &r.CostDevSample, 0},
		{"cost_dev_design", &r.CostDevDesign, 0},
		{"op_logistics", &r.OpLogistics, 0},
		{"op_after_sale", &r.OpAfterSale, 3},
		{"op_commission", &r.OpCommission, 5},
		{"op_channel", &r.OpChannel, 8},
		{"op_tax", &r.OpTax, 5},
		{"custom_discount_rate", &r.CustomDiscountRate, 100},
		{"marketing_percentage", &r.MarketingPercentage, 20},
		{"return_rate", &r.ReturnRate, 5},
		{"full_price_rate", &r.FullPriceRate, 70},
	}
	for _, in := range inputs {
		if math.IsNaN(*in.value) || math.IsInf(*in.value, 0) || *in.value < 0 {
			if mode == NumericModeReject {
				return fmt.Errorf("定价输入无效: %s", in.name)
			}
			*in.value = in.def
		}
	}

	multiplier, ok := entity.PositioningMultipliers[r.Positioning]
	if !ok {
		if mode == NumericModeReject {
			return fmt.Errorf("未知的定位倍率: %s", r.Positioning)
		}
		r.Positioning = DefaultPositioning
		multiplier = entity.PositioningMultipliers[DefaultPositioning]
	}

	// 1. 单件生产成本
	unitCOGS := r.CostMaterial + r.CostLabor + r.CostPackaging

	// 2. 运营费率（占建议零售价的百分比合计）
	totalRate := (r.OpAfterSale + r.OpCommission + r.OpChannel + r.OpTax) / 100
	if totalRate >= 1 {
		return fmt.Errorf("运营费率合计不能达到100%%: %.2f%%", totalRate*100)
	}

	// 3. 建议零售价：反解出扣除按比例运营成本后仍保持倍率毛利的价格
	suggestedPrice := (unitCOGS*multiplier + r.OpLogistics) / (1 - totalRate)

	// 4. 折后价
	discountRate := 100.0
	if r.DiscountStatus == entity.DiscountStatusDiscounted {
		discountRate = r.CustomDiscountRate
	}
	discountedPrice := suggestedPrice * (discountRate / 100)

	// 5. 单件运营成本
	totalOperationalCost := r.OpLogistics + suggestedPrice*totalRate

	// 6. 毛利/毛利率
	grossProfit := discountedPrice - unitCOGS - totalOperationalCost
	grossMargin := 0.0
	if discountedPrice != 0 {
		grossMargin = grossProfit / discountedPrice * 100
	}

	// 7. 批次总额
	volume := float64(r.Volume)
	totalDevelopmentCost := r.CostDevPattern + r.CostDevSample + r.CostDevDesign
	totalCOGS := unitCOGS * volume
	totalOperationalCosts := totalOperationalCost * volume
	totalCost := totalDevelopmentCost + totalCOGS + totalOperationalCosts

	// 8. 回本分析：零售价取显式覆盖值，否则取本次算出的建议价
	finalRetailPrice := suggestedPrice
	if r.FinalRetailPrice != nil {
		finalRetailPrice = *r.FinalRetailPrice
	}
	returnRateDecimal := r.ReturnRate / 100
	marketingCost := finalRetailPrice * volume * (r.MarketingPercentage / 100)

	breakevenUnits := 0
	if denom := finalRetailPrice * (1 - returnRateDecimal); denom > 0 {
		breakevenUnits = int(math.Ceil((totalCost + marketingCost) / denom))
	}
	actualSoldUnits := int(math.Ceil(float64(breakevenUnits) * (1 - returnRateDecimal)))

	cpa := 0.0
	if actualSoldUnits > 0 {
		cpa = round2(marketingCost / float64(actualSoldUnits))
	}
	cpo := 0.0
	if breakevenUnits > 0 {
		cpo = round2(marketingCost / float64(breakevenUnits))
	}

	// 9. 收益预测：全价与 7 折两档销量按比例混合
	expectedActualSales := r.Volume
	expectedOrders := 0
	if 1-returnRateDecimal > 0 {
		expectedOrders = int(math.Ceil(float64(expectedActualSales) / (1 - returnRateDecimal)))
	}
	fullPriceRate := r.FullPriceRate / 100
	blend := fullPriceRate + (1-fullPriceRate)*DiscountMultiplier

	expectedTotalRevenue := float64(expectedOrders) * finalRetailPrice * blend
	expectedActualRevenue := float64(expectedActualSales) * finalRetailPrice * blend
	expectedMarketingCost := expectedTotalRevenue * (r.MarketingPercentage / 100)
	expectedTotalCost := totalCost + expectedMarketingCost
	expectedNetProfit := expectedActualRevenue - expectedTotalCost

	expectedNetProfitMargin := 0.0
	if expectedActualRevenue > 0 {
		expectedNetProfitMargin = expectedNetProfit / expectedActualRevenue * 100
	}
	expectedROI := 0.0
	if expectedTotalCost != 0 {
		expectedROI = round2(expectedActualRevenue / expectedTotalCost)
	}

	// 入库口径：各阶段输出统一保留两位
	r.UnitCOGS = round2(unitCOGS)
	r.SuggestedPrice = round2(suggestedPrice)
	r.DiscountedPrice = round2(discountedPrice)
	r.TotalOperationalCost = round2(totalOperationalCost)
	r.GrossProfit = round2(grossProfit)
	r.GrossMargin = round2(grossMargin)

	r.KPIOverview = entity.ReleaseOverview{
		TotalDevelopmentCost:  round2(totalDevelopmentCost),
		TotalCOGS:             round2(totalCOGS),
		TotalOperationalCosts: round2(totalOperationalCosts),
		TotalCost:             round2(totalCost),
		UnitCost:              round2(unitCOGS + totalOperationalCost),
		ReleaseVolume:         r.Volume,
		FinalPrice:            round2(finalRetailPrice),
	}
	r.KPIBreakeven = entity.BreakevenAnalysis{
		MarketingCost:   round2(marketingCost),
		BreakevenUnits:  breakevenUnits,
		ActualSoldUnits: actualSoldUnits,
		CPA:             cpa,
		CPO:             cpo,
	}
	r.KPIForecast = entity.ProfitForecast{
		ExpectedOrders:          expectedOrders,
		ExpectedActualSales:     expectedActualSales,
		ExpectedTotalRevenue:    round2(expectedTotalRevenue),
		ExpectedActualRevenue:   round2(expectedActualRevenue),
		ExpectedMarketingCost:   round2(expectedMarketingCost),
		ExpectedTotalCost:       round2(expectedTotalCost),
		ExpectedNetProfit:       round2(expectedNetProfit),
		ExpectedNetProfitMargin: round2(expectedNetProfitMargin),
		ExpectedROI:             expectedROI,
	}

	return nil
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
