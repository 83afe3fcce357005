package service

import (
	"context"
	"fmt"

	"github.com/beyyuanzhang/tfoc/internal/ims/entity"
	"github.com/beyyuanzhang/tfoc/internal/ims/repository"
	"github.com/xuri/excelize/v2"
)

// ExportService Release/SKU 报表导出
type ExportService struct {
	releaseRepo *repository.ReleaseRepository
	skuRepo     *repository.SKURepository
	serialRepo  *repository.SerialRepository
}

func NewExportService(
	releaseRepo *repository.ReleaseRepository,
	skuRepo *repository.SKURepository,
	serialRepo *repository.SerialRepository,
) *ExportService {
	return &ExportService{releaseRepo: releaseRepo, skuRepo: skuRepo, serialRepo: serialRepo}
}

var releaseExportHeaders = []string{
	"SKU编码", "颜色", "尺码", "数量", "库存状态",
	"建议零售价", "折后价", "单件成本", "毛利率%",
}

// ExportReleaseSKUs 导出 Release 下全部 SKU 及定价口径
func (s *ExportService) ExportReleaseSKUs(ctx context.Context, releaseID string) (*excelize.File, string, error) {
	release, err := s.releaseRepo.FindByID(ctx, releaseID)
	if err != nil {
		return nil, "", fmt.Errorf("release not found: %w", err)
	}

	skus, _, err := s.skuRepo.List(ctx, releaseID, "", 1, 10000)
	if err != nil {
		return nil, "", fmt.Errorf("list skus: %w", err)
	}

	f := excelize.NewFile()
	sheet := "SKUs"
	f.SetSheetName("Sheet1", sheet)

	// 表头样式: 加粗
	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	writePricingSheet(f, release, boldStyle)

	for i, h := range releaseExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, sku := range skus {
		row := rowIdx + 2
		colorName, sizeName := "", ""
		if sku.Color != nil {
			colorName = sku.Color.Name
		}
		if sku.Size != nil {
			sizeName = sku.Size.Name
		}
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), sku.Code)
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), colorName)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), sizeName)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), sku.Quantity)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), sku.StockStatus)
		f.SetCellValue(sheet, fmt.Sprintf("F%d", row), release.SuggestedPrice)
		f.SetCellValue(sheet, fmt.Sprintf("G%d", row), release.DiscountedPrice)
		f.SetCellValue(sheet, fmt.Sprintf("H%d", row), release.KPIOverview.UnitCost)
		f.SetCellValue(sheet, fmt.Sprintf("I%d", row), release.GrossMargin)
	}

	filename := fmt.Sprintf("%s-R%d-skus.xlsx", releaseCode(release.Subtitle), release.ReleaseNumber)
	return f, filename, nil
}

// writePricingSheet 成本/定价/KPI 分块写入独立工作表
func writePricingSheet(f *excelize.File, release *entity.Release, headerStyle int) {
	sheet := "定价"
	f.NewSheet(sheet)

	blocks := []struct {
		title string
		rows  [][2]interface{}
	}{
		{"成本", [][2]interface{}{
			{"开发-版型", release.CostDevPattern},
			{"开发-样衣", release.CostDevSample},
			{"开发-设计", release.CostDevDesign},
			{"单件-面料", release.CostMaterial},
			{"单件-工费", release.CostLabor},
			{"单件-包装", release.CostPackaging},
			{"单件生产成本", release.UnitCOGS},
		}},
		{"定价", [][2]interface{}{
			{"定位倍率", release.Positioning},
			{"物流费", release.OpLogistics},
			{"建议零售价", release.SuggestedPrice},
			{"折后价", release.DiscountedPrice},
			{"单件运营成本", release.TotalOperationalCost},
			{"毛利", release.GrossProfit},
			{"毛利率%", release.GrossMargin},
		}},
		{"批次总览", [][2]interface{}{
			{"发布数量", release.KPIOverview.ReleaseVolume},
			{"开发总成本", release.KPIOverview.TotalDevelopmentCost},
			{"生产总成本", release.KPIOverview.TotalCOGS},
			{"运营总成本", release.KPIOverview.TotalOperationalCosts},
			{"总成本", release.KPIOverview.TotalCost},
			{"最终零售价", release.KPIOverview.FinalPrice},
		}},
		{"回本分析", [][2]interface{}{
			{"营销费用", release.KPIBreakeven.MarketingCost},
			{"回本件数", release.KPIBreakeven.BreakevenUnits},
			{"实际售出件数", release.KPIBreakeven.ActualSoldUnits},
			{"CPA", release.KPIBreakeven.CPA},
			{"CPO", release.KPIBreakeven.CPO},
		}},
		{"收益预测", [][2]interface{}{
			{"预计订单量", release.KPIForecast.ExpectedOrders},
			{"预计实际销量", release.KPIForecast.ExpectedActualSales},
			{"预计总营收", release.KPIForecast.ExpectedTotalRevenue},
			{"预计实际营收", release.KPIForecast.ExpectedActualRevenue},
			{"预计营销费用", release.KPIForecast.ExpectedMarketingCost},
			{"预计总成本", release.KPIForecast.ExpectedTotalCost},
			{"预计净利", release.KPIForecast.ExpectedNetProfit},
			{"预计净利率%", release.KPIForecast.ExpectedNetProfitMargin},
			{"预计ROI", release.KPIForecast.ExpectedROI},
		}},
	}

	row := 1
	for _, block := range blocks {
		cell := fmt.Sprintf("A%d", row)
		f.SetCellValue(sheet, cell, block.title)
		f.SetCellStyle(sheet, cell, cell, headerStyle)
		row++
		for _, kv := range block.rows {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), kv[0])
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), kv[1])
			row++
		}
		row++
	}
}

func releaseCode(subtitle string) string {
	// 副标题固定为 "[CODE] Name - N"，取中括号内的编号
	for i := 0; i < len(subtitle); i++ {
		if subtitle[i] == ']' {
			if subtitle[0] == '[' {
				return subtitle[1:i]
			}
			break
		}
	}
	return "release"
}
