package charts

import "strings"

// Roles holds the column names detected for each AdTech role. Each list keeps
// dataset column order; the first entry is the one charts use.
type Roles struct {
	Conversion []string `json:"conversion"`
	Click      []string `json:"click"`
	Cost       []string `json:"cost"`
	Date       []string `json:"date"`
}

// rolePatterns are matched as case-insensitive substrings of the column name
var rolePatterns = map[string][]string{
	"conversion": {"conv"},
	"click":      {"click"},
	"cost":       {"cost", "spend"},
	"date":       {"date", "time"},
}

// DetectRoles tags columns by name alone. A column can hold several roles.
func DetectRoles(columns []string) Roles {
	var r Roles
	for _, name := range columns {
		lower := strings.ToLower(name)
		if matchesAny(lower, rolePatterns["conversion"]) {
			r.Conversion = append(r.Conversion, name)
		}
		if matchesAny(lower, rolePatterns["click"]) {
			r.Click = append(r.Click, name)
		}
		if matchesAny(lower, rolePatterns["cost"]) {
			r.Cost = append(r.Cost, name)
		}
		if matchesAny(lower, rolePatterns["date"]) {
			r.Date = append(r.Date, name)
		}
	}
	return r
}

func matchesAny(name string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(name, p) {
			return true
		}
	}
	return false
}

// Primary is the first-match column per role
type Primary struct {
	Conversion string `json:"conversion,omitempty"`
	Click      string `json:"click,omitempty"`
	Cost       string `json:"cost,omitempty"`
	Date       string `json:"date,omitempty"`
}

// Primary picks the first candidate of each role
func (r Roles) Primary() Primary {
	return Primary{
		Conversion: first(r.Conversion),
		Click:      first(r.Click),
		Cost:       first(r.Cost),
		Date:       first(r.Date),
	}
}

func first(names []string) string {
	if len(names) == 0 {
		return ""
	}
	return names[0]
}
