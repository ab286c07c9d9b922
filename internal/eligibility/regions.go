// internal/eligibility/regions.go
package eligibility

import "strings"

// regionCodes maps the labels that appear in profiles and program data to
// a canonical province-level code. Multiple spellings of the same province
// share one code.
var regionCodes = map[string]string{
	"서울":      "KR-11",
	"서울특별시":   "KR-11",
	"부산":      "KR-26",
	"부산광역시":   "KR-26",
	"대구":      "KR-27",
	"대구광역시":   "KR-27",
	"인천":      "KR-28",
	"인천광역시":   "KR-28",
	"광주":      "KR-29",
	"광주광역시":   "KR-29",
	"대전":      "KR-30",
	"대전광역시":   "KR-30",
	"울산":      "KR-31",
	"울산광역시":   "KR-31",
	"세종":      "KR-50",
	"세종특별자치시": "KR-50",
	"경기":      "KR-41",
	"경기도":     "KR-41",
	"강원":      "KR-42",
	"강원도":     "KR-42",
	"강원특별자치도": "KR-42",
	"충북":      "KR-43",
	"충청북도":    "KR-43",
	"충남":      "KR-44",
	"충청남도":    "KR-44",
	"전북":      "KR-45",
	"전라북도":    "KR-45",
	"전북특별자치도": "KR-45",
	"전남":      "KR-46",
	"전라남도":    "KR-46",
	"경북":      "KR-47",
	"경상북도":    "KR-47",
	"경남":      "KR-48",
	"경상남도":    "KR-48",
	"제주":      "KR-49",
	"제주도":     "KR-49",
	"제주특별자치도": "KR-49",
}

// RegionCode resolves a region label to its canonical code. Labels with a
// district suffix ("서울특별시 강남구") resolve through their leading token.
// Unknown labels return "".
func RegionCode(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return ""
	}
	if code, ok := regionCodes[label]; ok {
		return code
	}
	if first := strings.Fields(label); len(first) > 0 {
		if code, ok := regionCodes[first[0]]; ok {
			return code
		}
	}
	// Progressive prefix match covers forms like "서울시".
	for prefixLen := len([]rune(label)); prefixLen >= 2; prefixLen-- {
		prefix := string([]rune(label)[:prefixLen])
		if code, ok := regionCodes[prefix]; ok {
			return code
		}
	}
	return ""
}
