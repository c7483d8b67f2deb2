// Package report serialises engine outputs into the multi-sheet xlsx
// disclosure workbook, structured around the four TCFD/ISSB/KSSB pillars
// plus gap analysis, regulatory timeline, and raw data. Sheets are built
// as string grids first so the JSON representation falls out for free.
package report

import (
	"fmt"
	"io"
	"time"

	"github.com/tealeg/xlsx/v2"

	"github.com/PLANiT-Institute/climate-risk/internal/esg"
	"github.com/PLANiT-Institute/climate-risk/internal/facility"
	"github.com/PLANiT-Institute/climate-risk/internal/physical"
	"github.com/PLANiT-Institute/climate-risk/internal/transition"
)

// SheetNames is the canonical sheet order.
var SheetNames = []string{
	"overview", "governance", "strategy", "risk_management",
	"metrics_and_targets", "gap_analysis", "regulatory_schedule", "raw_data",
}

// Sheet is one named grid of the workbook.
type Sheet struct {
	Name string     `json:"name"`
	Rows [][]string `json:"rows"`
}

// Workbook is the assembled artefact.
type Workbook struct {
	Sheets []Sheet `json:"sheets"`
}

// Inputs carries the engine outputs a workbook is built from.
type Inputs struct {
	Facilities    []facility.Facility
	ESG           *esg.Assessment
	Disclosure    *esg.DisclosureData
	Transition    *transition.Analysis
	Summary       *transition.Summary
	Physical      *physical.Assessment
	Scenario      string
	PricingRegime string
	Year          int
	GeneratedAt   time.Time
}

// Build assembles the workbook.
func Build(in Inputs) *Workbook {
	wb := &Workbook{}
	wb.add("overview", overviewSheet(in))
	wb.add("governance", narrativeSheet(in, "governance", "거버넌스"))
	wb.add("strategy", strategySheet(in))
	wb.add("risk_management", riskManagementSheet(in))
	wb.add("metrics_and_targets", metricsSheet(in))
	wb.add("gap_analysis", gapSheet(in))
	wb.add("regulatory_schedule", scheduleSheet(in))
	wb.add("raw_data", rawDataSheet(in))
	return wb
}

func (wb *Workbook) add(name string, rows [][]string) {
	wb.Sheets = append(wb.Sheets, Sheet{Name: name, Rows: rows})
}

// WriteXLSX streams the workbook as a multi-sheet xlsx file.
func (wb *Workbook) WriteXLSX(w io.Writer) error {
	file := xlsx.NewFile()
	for _, sheet := range wb.Sheets {
		ws, err := file.AddSheet(sheet.Name)
		if err != nil {
			return fmt.Errorf("add sheet %s: %w", sheet.Name, err)
		}
		for _, row := range sheet.Rows {
			wr := ws.AddRow()
			for _, cell := range row {
				wr.AddCell().SetString(cell)
			}
		}
	}
	return file.Write(w)
}

func overviewSheet(in Inputs) [][]string {
	rows := [][]string{
		{"기후 공시 보고서", in.ESG.FrameworkName},
		{"작성일", in.GeneratedAt.Format("2006-01-02")},
		{"프레임워크", in.ESG.FrameworkName},
		{"분석 시나리오", in.Scenario},
		{"탄소가격 체제", in.PricingRegime},
		{"분석 연도", fmt.Sprintf("%d", in.Year)},
		{},
		{"종합 점수", money(in.ESG.OverallScore)},
		{"준수 수준", in.ESG.ComplianceLevel},
		{"성숙도 레벨", fmt.Sprintf("Level %d — %s: %s",
			in.ESG.MaturityLevel.Level, in.ESG.MaturityLevel.Name, in.ESG.MaturityLevel.Description)},
		{},
		{"카테고리", "점수", "상태"},
	}
	for _, cat := range in.ESG.Categories {
		rows = append(rows, []string{cat.Category, money(cat.Score), cat.Status})
	}
	return rows
}

func narrativeSheet(in Inputs, key, title string) [][]string {
	return [][]string{
		{title},
		{},
		{in.Disclosure.Narrative[key]},
	}
}

func strategySheet(in Inputs) [][]string {
	rows := [][]string{
		{"전략"},
		{},
		{in.Disclosure.Narrative["strategy"]},
		{},
		{"시나리오", in.Transition.ScenarioName},
		{"포트폴리오 ΔNPV (USD)", money(in.Transition.TotalNPV)},
		{"기준 배출량 (tCO2e)", money(in.Transition.TotalBaselineEmissions)},
		{},
		{"사업장", "섹터", "ΔNPV", "자산 대비 %", "리스크"},
	}
	for _, f := range in.Transition.Facilities {
		rows = append(rows, []string{
			f.FacilityName, f.Sector, money(f.DeltaNPV),
			fmt.Sprintf("%.2f", f.NPVPctOfAssets), f.RiskLevel,
		})
	}
	rows = append(rows, []string{}, []string{"최대 노출 사업장", "섹터", "ΔNPV", "리스크"})
	for _, top := range in.Summary.TopRiskFacilities {
		rows = append(rows, []string{top.Name, top.Sector, money(top.DeltaNPV), top.RiskLevel})
	}
	return rows
}

func riskManagementSheet(in Inputs) [][]string {
	rows := [][]string{
		{"리스크 관리"},
		{},
		{in.Disclosure.Narrative["risk_management"]},
		{},
		{"물리적 리스크 — 시나리오", in.Physical.Scenario, fmt.Sprintf("평가연도 %d", in.Physical.AssessmentYear)},
		{"사업장", "지역", "종합 리스크", "연간 기대손실 (USD)", "데이터 출처"},
	}
	for _, f := range in.Physical.Facilities {
		rows = append(rows, []string{
			f.FacilityName, f.Location, f.OverallRiskLevel, money(f.TotalEAL), f.DataSource,
		})
	}
	return rows
}

func metricsSheet(in Inputs) [][]string {
	emissions := in.Disclosure.Metrics["emissions"]
	rows := [][]string{
		{"지표 및 목표"},
		{},
		{in.Disclosure.Narrative["metrics_and_targets"]},
		{},
		{"Scope 1 (tCO2e)", money(emissions["scope1_tco2e"])},
		{"Scope 2 (tCO2e)", money(emissions["scope2_tco2e"])},
		{"Scope 3 (tCO2e)", money(emissions["scope3_tco2e"])},
		{"배출 원단위 (tCO2e/$M)", money(emissions["intensity_tco2e_per_revenue"])},
		{},
		{"체크리스트 항목", "상태", "권고"},
	}
	for _, item := range in.ESG.Checklist {
		rows = append(rows, []string{item.Item, item.Status, item.Recommendation})
	}
	return rows
}

func gapSheet(in Inputs) [][]string {
	rows := [][]string{
		{"갭 분석"},
		{"카테고리", "현재 점수", "갭", "영향도", "노력", "우선순위", "권고 조치"},
	}
	for _, gap := range in.ESG.GapAnalysis {
		actions := ""
		if len(gap.RecommendedActions) > 0 {
			actions = gap.RecommendedActions[0]
		}
		rows = append(rows, []string{
			gap.Category, money(gap.CurrentScore), money(gap.Gap),
			money(gap.Impact), gap.Effort, money(gap.PriorityScore), actions,
		})
	}
	return rows
}

func scheduleSheet(in Inputs) [][]string {
	rows := [][]string{
		{"규제 일정"},
		{"항목", "시행일", "내용", "근거"},
	}
	for _, d := range in.ESG.Deadlines {
		rows = append(rows, []string{d.Name, d.Date, d.Description, d.Source})
	}
	return rows
}

func rawDataSheet(in Inputs) [][]string {
	rows := [][]string{
		{"facility_id", "name", "company", "sector", "location", "latitude", "longitude",
			"scope1_tco2e", "scope2_tco2e", "scope3_tco2e", "annual_revenue", "ebitda", "assets_value"},
	}
	for _, f := range in.Facilities {
		rows = append(rows, []string{
			f.FacilityID, f.Name, f.Company, f.Sector, f.Location,
			fmt.Sprintf("%.4f", f.Latitude), fmt.Sprintf("%.4f", f.Longitude),
			money(f.EmissionsScope1), money(f.EmissionsScope2), money(f.EmissionsScope3),
			money(f.AnnualRevenue), money(f.EBITDA), money(f.AssetsValue),
		})
	}
	return rows
}

// money renders a numeric cell rounded to whole units; fractional scores
// under 1000 keep one decimal.
func money(v float64) string {
	if v == float64(int64(v)) {
		return fmt.Sprintf("%d", int64(v))
	}
	if v > -1000 && v < 1000 {
		return fmt.Sprintf("%.1f", v)
	}
	return fmt.Sprintf("%.0f", v)
}
