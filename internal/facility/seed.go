package facility

// Seed is the built-in portfolio of stylised Korean industrial facilities.
// Financial figures are illustrative approximations of sector-typical
// ratios (WorldSteel 2022, IEA Petrochemicals 2018, OICA 2023, SEMI 2023,
// KEPCO disclosures), not reported values.
func Seed() []Facility {
	return []Facility{
		{FacilityID: "KR-STL-001", Name: "포항제철소", Company: "K-Steel Corp", Sector: "steel",
			Location: "경북 포항시", Latitude: 36.0190, Longitude: 129.3435,
			EmissionsScope1: 28_000_000, EmissionsScope2: 5_200_000, EmissionsScope3: 8_400_000,
			AnnualRevenue: 32_000_000_000, EBITDA: 4_800_000_000, AssetsValue: 25_000_000_000},
		{FacilityID: "KR-STL-002", Name: "광양제철소", Company: "K-Steel Corp", Sector: "steel",
			Location: "전남 광양시", Latitude: 34.9407, Longitude: 127.6959,
			EmissionsScope1: 24_000_000, EmissionsScope2: 4_600_000, EmissionsScope3: 7_200_000,
			AnnualRevenue: 28_000_000_000, EBITDA: 4_200_000_000, AssetsValue: 22_000_000_000},
		{FacilityID: "KR-PCH-001", Name: "울산석유화학단지", Company: "K-Petrochem Inc", Sector: "petrochemical",
			Location: "울산 남구", Latitude: 35.5384, Longitude: 129.3114,
			EmissionsScope1: 12_000_000, EmissionsScope2: 3_800_000, EmissionsScope3: 18_000_000,
			AnnualRevenue: 45_000_000_000, EBITDA: 5_400_000_000, AssetsValue: 20_000_000_000},
		{FacilityID: "KR-PCH-002", Name: "여수석유화학단지", Company: "K-Petrochem Inc", Sector: "petrochemical",
			Location: "전남 여수시", Latitude: 34.7604, Longitude: 127.6622,
			EmissionsScope1: 9_500_000, EmissionsScope2: 2_900_000, EmissionsScope3: 14_000_000,
			AnnualRevenue: 38_000_000_000, EBITDA: 4_560_000_000, AssetsValue: 17_000_000_000},
		{FacilityID: "KR-AUT-001", Name: "울산자동차공장", Company: "K-Motors Co", Sector: "automotive",
			Location: "울산 북구", Latitude: 35.5825, Longitude: 129.3612,
			EmissionsScope1: 1_800_000, EmissionsScope2: 2_200_000, EmissionsScope3: 15_000_000,
			AnnualRevenue: 55_000_000_000, EBITDA: 6_600_000_000, AssetsValue: 18_000_000_000},
		{FacilityID: "KR-AUT-002", Name: "아산자동차공장", Company: "K-Motors Co", Sector: "automotive",
			Location: "충남 아산시", Latitude: 36.7898, Longitude: 127.0018,
			EmissionsScope1: 950_000, EmissionsScope2: 1_100_000, EmissionsScope3: 8_500_000,
			AnnualRevenue: 28_000_000_000, EBITDA: 3_360_000_000, AssetsValue: 10_000_000_000},
		{FacilityID: "KR-ELC-001", Name: "화성반도체공장", Company: "K-Electronics Ltd", Sector: "electronics",
			Location: "경기 화성시", Latitude: 37.2064, Longitude: 127.0714,
			EmissionsScope1: 3_200_000, EmissionsScope2: 8_500_000, EmissionsScope3: 5_600_000,
			AnnualRevenue: 120_000_000_000, EBITDA: 36_000_000_000, AssetsValue: 80_000_000_000},
		{FacilityID: "KR-ELC-002", Name: "평택반도체공장", Company: "K-Electronics Ltd", Sector: "electronics",
			Location: "경기 평택시", Latitude: 36.9922, Longitude: 127.0892,
			EmissionsScope1: 2_800_000, EmissionsScope2: 7_200_000, EmissionsScope3: 4_800_000,
			AnnualRevenue: 95_000_000_000, EBITDA: 28_500_000_000, AssetsValue: 65_000_000_000},
		{FacilityID: "KR-ELC-003", Name: "구미디스플레이공장", Company: "K-Display Corp", Sector: "electronics",
			Location: "경북 구미시", Latitude: 36.1198, Longitude: 128.3444,
			EmissionsScope1: 1_500_000, EmissionsScope2: 4_200_000, EmissionsScope3: 3_100_000,
			AnnualRevenue: 42_000_000_000, EBITDA: 5_040_000_000, AssetsValue: 28_000_000_000},
		{FacilityID: "KR-UTL-001", Name: "당진화력발전소", Company: "K-Power Corp", Sector: "utilities",
			Location: "충남 당진시", Latitude: 36.8898, Longitude: 126.6294,
			EmissionsScope1: 18_000_000, EmissionsScope2: 500_000, EmissionsScope3: 2_200_000,
			AnnualRevenue: 8_000_000_000, EBITDA: 800_000_000, AssetsValue: 12_000_000_000},
		{FacilityID: "KR-UTL-002", Name: "태안화력발전소", Company: "K-Power Corp", Sector: "utilities",
			Location: "충남 태안군", Latitude: 36.7450, Longitude: 126.2969,
			EmissionsScope1: 15_000_000, EmissionsScope2: 400_000, EmissionsScope3: 1_800_000,
			AnnualRevenue: 6_500_000_000, EBITDA: 650_000_000, AssetsValue: 9_500_000_000},
		{FacilityID: "KR-UTL-003", Name: "영흥화력발전소", Company: "K-Power Corp", Sector: "utilities",
			Location: "인천 옹진군", Latitude: 37.2500, Longitude: 126.4833,
			EmissionsScope1: 12_000_000, EmissionsScope2: 350_000, EmissionsScope3: 1_500_000,
			AnnualRevenue: 5_200_000_000, EBITDA: 520_000_000, AssetsValue: 8_000_000_000},
		{FacilityID: "KR-CMT-001", Name: "단양시멘트공장", Company: "K-Cement Corp", Sector: "cement",
			Location: "충북 단양군", Latitude: 36.9847, Longitude: 128.3654,
			EmissionsScope1: 6_500_000, EmissionsScope2: 1_200_000, EmissionsScope3: 2_800_000,
			AnnualRevenue: 3_800_000_000, EBITDA: 760_000_000, AssetsValue: 5_000_000_000},
		{FacilityID: "KR-CMT-002", Name: "영월시멘트공장", Company: "K-Cement Corp", Sector: "cement",
			Location: "강원 영월군", Latitude: 37.1839, Longitude: 128.4617,
			EmissionsScope1: 5_200_000, EmissionsScope2: 980_000, EmissionsScope3: 2_200_000,
			AnnualRevenue: 3_000_000_000, EBITDA: 600_000_000, AssetsValue: 4_000_000_000},
		{FacilityID: "KR-SHP-001", Name: "부산항 해운기지", Company: "K-Shipping Lines", Sector: "shipping",
			Location: "부산 영도구", Latitude: 35.0756, Longitude: 129.0681,
			EmissionsScope1: 4_200_000, EmissionsScope2: 350_000, EmissionsScope3: 6_800_000,
			AnnualRevenue: 12_000_000_000, EBITDA: 1_440_000_000, AssetsValue: 8_500_000_000},
		{FacilityID: "KR-OG-001", Name: "울산정유공장", Company: "K-Refinery Corp", Sector: "oil_gas",
			Location: "울산 울주군", Latitude: 35.4929, Longitude: 129.2278,
			EmissionsScope1: 8_500_000, EmissionsScope2: 2_100_000, EmissionsScope3: 22_000_000,
			AnnualRevenue: 52_000_000_000, EBITDA: 3_640_000_000, AssetsValue: 15_000_000_000},
		{FacilityID: "KR-OG-002", Name: "대산정유공장", Company: "K-Refinery Corp", Sector: "oil_gas",
			Location: "충남 서산시", Latitude: 36.9167, Longitude: 126.3833,
			EmissionsScope1: 6_800_000, EmissionsScope2: 1_700_000, EmissionsScope3: 18_000_000,
			AnnualRevenue: 40_000_000_000, EBITDA: 2_800_000_000, AssetsValue: 12_000_000_000},
	}
}
