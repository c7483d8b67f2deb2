// Package esg scores disclosure readiness against the ISSB, TCFD, and
// KSSB frameworks using a weighted maturity model with gap analysis.
//
// The scores measure analytical readiness — what the portfolio data and
// scenario models can support — not board-level governance structure.
//
// References: CDP Scoring Methodology (2023); TCFD Final Report (2017);
// ISSB IFRS S2; KSSB Draft Standards (2024).
package esg

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/PLANiT-Institute/climate-risk/internal/config"
	"github.com/PLANiT-Institute/climate-risk/internal/facility"
)

// Category is one weighted pillar of a framework.
type Category struct {
	Name   string  `json:"category"`
	Weight float64 `json:"weight"`
}

// Framework is one disclosure standard. Category weights sum to 1.0.
type Framework struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	Categories []Category `json:"categories"`
	Deadlines  []string   `json:"-"`
}

var Frameworks = map[string]Framework{
	"issb": {
		ID: "issb", Name: "ISSB (IFRS S2)",
		Categories: []Category{
			{"거버넌스", 0.20}, {"전략", 0.25}, {"리스크 관리", 0.25}, {"지표 및 목표", 0.30},
		},
		Deadlines: []string{"issb_effective", "eu_cbam_full"},
	},
	"tcfd": {
		ID: "tcfd", Name: "TCFD",
		Categories: []Category{
			{"거버넌스", 0.25}, {"전략", 0.25}, {"리스크 관리", 0.25}, {"지표 및 목표", 0.25},
		},
		Deadlines: []string{"issb_effective", "eu_cbam_full"},
	},
	"kssb": {
		ID: "kssb", Name: "KSSB (한국 지속가능성 기준위원회)",
		Categories: []Category{
			{"거버넌스", 0.20}, {"전략", 0.25}, {"리스크 관리", 0.20}, {"지표 및 목표", 0.25}, {"산업별 공시", 0.10},
		},
		Deadlines: []string{"kssb_mandatory", "kets_phase4", "kssb_full_scope"},
	},
}

// FrameworkByID resolves a framework tag or fails with ErrInvalidFramework.
func FrameworkByID(id string) (Framework, error) {
	fw, ok := Frameworks[id]
	if !ok {
		return Framework{}, fmt.Errorf("%w: %q", config.ErrInvalidFramework, id)
	}
	return fw, nil
}

// FrameworkIDs returns the framework identifiers in a stable order.
func FrameworkIDs() []string {
	ids := make([]string, 0, len(Frameworks))
	for id := range Frameworks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CategoryScore is one scored pillar.
type CategoryScore struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"max_score"`
	Status   string  `json:"status"`
}

// ChecklistItem is one disclosure requirement with its evaluated status.
type ChecklistItem struct {
	Item           string `json:"item"`
	Status         string `json:"status"` // compliant | partial | non_compliant
	Recommendation string `json:"recommendation"`
}

// Maturity is the 1-5 process depth level derived from the overall score.
type Maturity struct {
	Level       int    `json:"level"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Gap is one prioritised improvement item.
type Gap struct {
	Category           string   `json:"category"`
	CurrentScore       float64  `json:"current_score"`
	TargetScore        float64  `json:"target_score"`
	Gap                float64  `json:"gap"`
	Impact             float64  `json:"impact"`
	Effort             string   `json:"effort"`
	PriorityScore      float64  `json:"priority_score"`
	RecommendedActions []string `json:"recommended_actions"`
}

// Assessment is the full framework result.
type Assessment struct {
	Framework       string                      `json:"framework"`
	FrameworkName   string                      `json:"framework_name"`
	OverallScore    float64                     `json:"overall_score"`
	ComplianceLevel string                      `json:"compliance_level"`
	Categories      []CategoryScore             `json:"categories"`
	Checklist       []ChecklistItem             `json:"checklist"`
	Recommendations []string                    `json:"recommendations"`
	MaturityLevel   Maturity                    `json:"maturity_level"`
	GapAnalysis     []Gap                       `json:"gap_analysis"`
	Deadlines       []config.RegulatoryDeadline `json:"regulatory_deadlines"`
}

// portfolioState captures the data availability the scoring keys on.
type portfolioState struct {
	hasScope1     bool
	hasScope2     bool
	hasScope3     bool
	hasFinancials bool
	facilityCount int
	sectorCount   int
}

func inspect(facilities []facility.Facility) portfolioState {
	state := portfolioState{
		hasScope1: len(facilities) > 0, hasScope2: len(facilities) > 0,
		hasScope3: len(facilities) > 0, hasFinancials: len(facilities) > 0,
		facilityCount: len(facilities),
	}
	sectors := map[string]bool{}
	for _, f := range facilities {
		sectors[f.Sector] = true
		state.hasScope1 = state.hasScope1 && f.EmissionsScope1 > 0
		state.hasScope2 = state.hasScope2 && f.EmissionsScope2 > 0
		state.hasScope3 = state.hasScope3 && f.EmissionsScope3 > 0
		state.hasFinancials = state.hasFinancials && f.AnnualRevenue > 0 && f.AssetsValue > 0
	}
	state.sectorCount = len(sectors)
	return state
}

// categoryScores computes the per-pillar scores from the portfolio state.
// Scenario and physical modelling capability are properties of the
// platform and count as given.
func categoryScores(state portfolioState) map[string]float64 {
	governance := 25.0 + 25.0 + 10.0 // scenario capability + NPV quantification + baseline awareness
	if state.facilityCount >= 5 {
		governance += 15 // multi-facility monitoring breadth
	}

	strategy := 30.0 + 20.0 + 25.0 // transition NPV + four-scenario view + physical EAL
	if state.hasFinancials {
		strategy += 15
	}

	riskMgmt := 30.0 + 30.0 + 20.0 + 5.0

	metrics := 10.0 + 5.0 // reduction pathway + 2030 NDC awareness
	if state.hasScope1 {
		metrics += 20
	}
	if state.hasScope2 {
		metrics += 20
	}
	if state.hasScope3 {
		metrics += 15
	}
	if state.hasFinancials {
		metrics += 10 // intensity metrics possible
	}

	industry := 20.0 + 10.0
	if state.sectorCount >= 3 {
		industry += 30
	}
	if state.hasScope1 && state.hasScope2 {
		industry += 25
	}

	clamp := func(v float64) float64 { return math.Min(100, v) }
	return map[string]float64{
		"거버넌스":    clamp(governance),
		"전략":      clamp(strategy),
		"리스크 관리":  clamp(riskMgmt),
		"지표 및 목표": clamp(metrics),
		"산업별 공시":  clamp(industry),
	}
}

// Assess scores a portfolio against one framework.
func Assess(facilities []facility.Facility, frameworkID string) (*Assessment, error) {
	fw, err := FrameworkByID(frameworkID)
	if err != nil {
		return nil, err
	}
	state := inspect(facilities)
	scores := categoryScores(state)

	assessment := &Assessment{
		Framework:     fw.ID,
		FrameworkName: fw.Name,
		Deadlines:     config.DeadlinesByKeys(fw.Deadlines),
	}

	weighted := 0.0
	for _, cat := range fw.Categories {
		score := scores[cat.Name]
		weighted += score * cat.Weight
		assessment.Categories = append(assessment.Categories, CategoryScore{
			Category: cat.Name, Score: score, MaxScore: 100, Status: ComplianceLevel(score),
		})
	}
	assessment.OverallScore = math.Round(weighted*10) / 10
	assessment.ComplianceLevel = ComplianceLevel(assessment.OverallScore)
	assessment.MaturityLevel = MaturityLevel(assessment.OverallScore)
	assessment.Checklist = checklist(fw.ID, state)
	for _, item := range assessment.Checklist {
		if item.Recommendation != "" {
			assessment.Recommendations = append(assessment.Recommendations, item.Recommendation)
		}
	}
	assessment.GapAnalysis = gapAnalysis(fw, scores)
	return assessment, nil
}

// ComplianceLevel buckets a 0-100 score.
func ComplianceLevel(score float64) string {
	switch {
	case score >= 90:
		return "선도"
	case score >= 80:
		return "우수"
	case score >= 65:
		return "양호"
	case score >= 50:
		return "보통"
	default:
		return "미흡"
	}
}

// MaturityLevel maps a score onto the five-level maturity model.
func MaturityLevel(score float64) Maturity {
	switch {
	case score >= 86:
		return Maturity{5, "선도", "업계 선도적 기후 리스크 관리 체계 구축"}
	case score >= 71:
		return Maturity{4, "관리", "체계적 기후 리스크 관리 및 측정 수행"}
	case score >= 51:
		return Maturity{3, "개발", "기후 리스크 관리 역량 개발 중"}
	case score >= 31:
		return Maturity{2, "기초", "기초적 기후 리스크 관리 체계 구축 중"}
	default:
		return Maturity{1, "인식", "기후 리스크에 대한 기본적 인식 단계"}
	}
}

var effortByCategory = map[string]string{
	"거버넌스":    "medium", // organisational change
	"전략":      "high",   // strategic planning
	"리스크 관리":  "medium",
	"지표 및 목표": "medium", // data collection and verification
	"산업별 공시":  "high",
}

var effortWeight = map[string]float64{"low": 1, "medium": 2, "high": 3}

func gapAnalysis(fw Framework, scores map[string]float64) []Gap {
	var gaps []Gap
	for _, cat := range fw.Categories {
		score := scores[cat.Name]
		gap := 100 - score
		if gap <= 10 {
			continue // near-complete
		}
		effort := effortByCategory[cat.Name]
		if effort == "" {
			effort = "medium"
		}
		impact := math.Min(10, math.Max(1, cat.Weight*gap/3))
		gaps = append(gaps, Gap{
			Category:           cat.Name,
			CurrentScore:       score,
			TargetScore:        100,
			Gap:                gap,
			Impact:             math.Round(impact*10) / 10,
			Effort:             effort,
			PriorityScore:      math.Round(impact/effortWeight[effort]*100) / 100,
			RecommendedActions: gapActions(cat.Name, score),
		})
	}
	sort.SliceStable(gaps, func(i, j int) bool { return gaps[i].PriorityScore > gaps[j].PriorityScore })
	return gaps
}

func gapActions(category string, score float64) []string {
	actions := map[string][]string{
		"거버넌스": {
			"이사회 내 기후 리스크 전담 위원회 설치",
			"최고지속가능경영책임자(CSO) 임명",
			"기후 리스크 정기 보고 체계 수립",
		},
		"전략": {
			"NGFS 4개 시나리오 기반 전략적 영향 분석",
			"기후 적응 전략 수립",
			"전환 계획(Transition Plan) 공식화",
		},
		"리스크 관리": {
			"물리적 리스크 평가 체계 구축",
			"전사 리스크 관리(ERM)에 기후 리스크 통합",
			"리스크 모니터링 대시보드 구축",
		},
		"지표 및 목표": {
			"Scope 3 배출량 산정 범위 확대",
			"SBTi 인증 감축 목표 설정",
			"탄소 원단위 지표 개발",
		},
		"산업별 공시": {
			"해당 산업 KSSB 추가 공시 요구사항 파악",
			"산업별 핵심 성과지표(KPI) 설정",
			"2030 NDC 정합성 분석",
		},
	}
	if score >= 70 {
		// Near-mature categories need refinement, not buildout.
		refinements := map[string]string{
			"거버넌스":    "기후 리스크 감독 프로세스 고도화",
			"전략":      "시나리오별 재무 영향 정량화 고도화",
			"리스크 관리":  "리스크 관리 프로세스 고도화",
			"지표 및 목표": "목표 달성 이행 모니터링 강화",
			"산업별 공시":  "산업별 공시 항목 완성도 제고",
		}
		if r, ok := refinements[category]; ok {
			return []string{r}
		}
	}
	if a, ok := actions[category]; ok {
		return a
	}
	return []string{"추가 분석 필요"}
}

func checklist(frameworkID string, state portfolioState) []ChecklistItem {
	scope12 := state.hasScope1 && state.hasScope2
	item := func(name, status, rec string) ChecklistItem {
		return ChecklistItem{Item: name, Status: status, Recommendation: rec}
	}
	statusIf := func(ok bool, yes, no string) string {
		if ok {
			return yes
		}
		return no
	}
	recUnless := func(ok bool, rec string) string {
		if ok {
			return ""
		}
		return rec
	}

	switch frameworkID {
	case "issb":
		return []ChecklistItem{
			item("기후 관련 리스크 및 기회의 거버넌스 공시", "partial",
				"이사회 수준의 기후 리스크 감독 체계를 공식화하세요"),
			item("Scope 1, 2 온실가스 배출량 공시", statusIf(scope12, "compliant", "non_compliant"),
				recUnless(scope12, "Scope 1, 2 배출량 산정이 필요합니다")),
			item("Scope 3 온실가스 배출량 공시", statusIf(state.hasScope3, "partial", "non_compliant"),
				statusIf(state.hasScope3, "카테고리별 Scope 3 배출량 산정 범위를 확대하세요", "Scope 3 배출량 산정이 필요합니다")),
			item("기후 시나리오 분석 수행", "compliant", ""),
			item("전환 계획 공시", "non_compliant", "Net Zero 전환 로드맵 수립이 필요합니다"),
			item("기후 관련 재무 영향 정량화", "compliant", ""),
			item("내부 탄소가격 적용", "partial", "의사결정에 내부 탄소가격($50-100/tCO2e)을 적용하세요"),
			item("기후 리스크 관리 프로세스 통합", "partial", "전사 리스크 관리(ERM)에 기후 리스크를 통합하세요"),
		}
	case "tcfd":
		return []ChecklistItem{
			item("이사회의 기후 리스크 감독 체계", "partial", "기후 전담 위원회 설치를 권고합니다"),
			item("경영진의 기후 리스크 평가/관리 역할", "compliant", ""),
			item("기후 리스크/기회 식별", "compliant", ""),
			item("시나리오 분석(2°C 이하 포함)", "compliant", ""),
			item("비즈니스 전략 영향 분석", "compliant", ""),
			item("리스크 식별 및 평가 프로세스", "compliant", ""),
			item("Scope 1/2 배출량 공시", statusIf(scope12, "compliant", "non_compliant"),
				recUnless(scope12, "Scope 1, 2 배출량 산정이 필요합니다")),
			item("Scope 3 배출량 공시", statusIf(state.hasScope3, "partial", "non_compliant"),
				"주요 카테고리 Scope 3 배출량을 공시하세요"),
			item("기후 관련 목표 설정", "partial", "SBTi 인증 목표 설정을 권고합니다"),
		}
	case "kssb":
		return []ChecklistItem{
			item("기후 관련 거버넌스 공시 (KSSB 제1호)", "partial",
				"한국 지속가능성 공시기준에 맞춘 거버넌스 체계 수립"),
			item("기후 시나리오 분석 (한국 맥락)", "compliant", ""),
			item("K-ETS 배출권거래제 영향 분석", "compliant", ""),
			item("Scope 1/2/3 배출량 (한국 MRV 기준)", statusIf(scope12, "partial", "non_compliant"),
				"환경부 MRV 가이드라인에 맞춘 배출량 검증 필요"),
			item("2030 NDC 감축 목표 연계", "non_compliant", "2030 NDC 40% 감축 목표와의 정합성 분석이 필요합니다"),
			item("산업별 추가 공시 항목", "non_compliant", "해당 산업의 추가 공시 요구사항을 확인하세요"),
			item("기후 적응 전략", "partial", "물리적 리스크 대응 적응 전략 수립을 권고합니다"),
		}
	default:
		return nil
	}
}

// DisclosureData assembles the narrative and metric sections of a
// disclosure filing.
type DisclosureData struct {
	Framework      string                        `json:"framework"`
	CompanyName    string                        `json:"company_name"`
	AssessmentDate string                        `json:"assessment_date"`
	Metrics        map[string]map[string]float64 `json:"metrics"`
	Narrative      map[string]string             `json:"narrative_sections"`
}

// Disclosure builds the disclosure payload for a portfolio. transitionNPV
// is the net-zero scenario portfolio dNPV supplied by the caller.
func Disclosure(facilities []facility.Facility, frameworkID, companyName string, transitionNPV float64, now time.Time) (*DisclosureData, error) {
	if _, err := FrameworkByID(frameworkID); err != nil {
		return nil, err
	}
	var s1, s2, s3, revenue, assets float64
	for _, f := range facilities {
		s1 += f.EmissionsScope1
		s2 += f.EmissionsScope2
		s3 += f.EmissionsScope3
		revenue += f.AnnualRevenue
		assets += f.AssetsValue
	}
	intensity := 0.0
	if revenue > 0 {
		intensity = (s1 + s2) / revenue * 1_000_000
	}

	return &DisclosureData{
		Framework:      frameworkID,
		CompanyName:    companyName,
		AssessmentDate: now.Format("2006-01-02"),
		Metrics: map[string]map[string]float64{
			"emissions": {
				"scope1_tco2e":               s1,
				"scope2_tco2e":               s2,
				"scope3_tco2e":               s3,
				"total_tco2e":                s1 + s2 + s3,
				"intensity_tco2e_per_revenue": math.Round(intensity*100) / 100,
			},
			"financial_impact": {
				"transition_risk_npv_net_zero": transitionNPV,
				"total_facilities":             float64(len(facilities)),
				"total_assets_at_risk":         assets,
			},
			"targets": {
				"base_year":            2024,
				"target_year":          2030,
				"reduction_target_pct": 40,
			},
		},
		Narrative: map[string]string{
			"governance": "기후 리스크는 이사회 산하 ESG 위원회에서 분기별 검토하며, " +
				"최고지속가능경영책임자(CSO)가 일상 관리를 담당합니다.",
			"strategy": fmt.Sprintf("NGFS 4개 시나리오 분석 결과, Net Zero 2050 시나리오에서 전환 비용 NPV는 "+
				"약 %.1f십억 달러로 산정됩니다. 주요 리스크 요인은 배출권 비용 증가와 에너지 전환 투자 부담입니다.",
				math.Abs(transitionNPV)/1e9),
			"risk_management": "기후 리스크를 전사 리스크 관리(ERM) 프레임워크에 통합하여 관리하고 있으며, " +
				"시나리오 분석을 통해 재무 영향을 정기적으로 평가합니다.",
			"metrics_and_targets": fmt.Sprintf("Scope 1+2 배출량 %.1f백만 tCO2e, Scope 3 배출량 %.1f백만 tCO2e. "+
				"2030년까지 Scope 1+2 40%% 감축 목표 설정.", (s1+s2)/1e6, s3/1e6),
		},
	}, nil
}
