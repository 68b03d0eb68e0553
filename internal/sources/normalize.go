package sources

import (
	"crypto/sha256"
	"encoding/hex"
	"github.com/microcosm-cc/bluemonday"
	"html"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

const hashIDLength = 16

var (
	stripPolicy        = bluemonday.StrictPolicy()
	whitespaceRegexp   = regexp.MustCompile(`[ \t\r\f\v]+`)
	blankLinesRegexp   = regexp.MustCompile(`\n\s*\n+`)
	companyTitleRegexp = regexp.MustCompile(`:\s+`)
	blockTagRegexp     = regexp.MustCompile(`(?i)<\s*/?\s*(br|p|li|div|h[1-6])\b[^>]*>`)
)

// StripTags removes markup and decodes entities. Block level tags become line breaks.
func StripTags(s string) string {
	if s == "" {
		return ""
	}
	s = blockTagRegexp.ReplaceAllString(s, "\n")
	s = html.UnescapeString(stripPolicy.Sanitize(s))
	s = whitespaceRegexp.ReplaceAllString(s, " ")
	s = blankLinesRegexp.ReplaceAllString(s, "\n")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}

// Truncate caps s at limit runes.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}

// HashID derives a stable identifier for sources that do not expose one.
func HashID(parts ...string) string {
	sum := sha256.Sum256([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:hashIDLength]
}

func DetectRemote(texts ...string) bool {
	for _, text := range texts {
		if strings.Contains(strings.ToLower(text), "remote") {
			return true
		}
	}
	return false
}

var onSiteMarkers = []string{"on-site", "onsite", "on site", "hybrid", "in-office", "in office"}

// DetectRemoteOr is DetectRemote for boards that mostly list remote roles: an explicit
// remote mention wins, an on-site or hybrid mention means not remote, otherwise fallback.
func DetectRemoteOr(fallback bool, texts ...string) bool {
	if DetectRemote(texts...) {
		return true
	}
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, marker := range onSiteMarkers {
			if strings.Contains(lower, marker) {
				return false
			}
		}
	}
	return fallback
}

// SplitCompanyTitle splits "Company: Title". Without a delimiter the company is unknown.
func SplitCompanyTitle(s string) (company string, title string) {
	s = strings.TrimSpace(s)
	segments := companyTitleRegexp.Split(s, 2)
	if len(segments) == 2 && strings.TrimSpace(segments[0]) != "" {
		return strings.TrimSpace(segments[0]), strings.TrimSpace(segments[1])
	}
	return "Unknown", s
}

func NormalizeEmploymentType(s string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(s), "_", "-"))
}

func parseTime(value string, layouts ...string) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return t.UTC()
}

var (
	salaryRegexp       = regexp.MustCompile(`(?i)(\d{1,3}(?:[,.]\d{3})+|\d+(?:\.\d+)?)\s*(k)?`)
	thousandsRegexp    = regexp.MustCompile(`^\d{1,3}(?:[,.]\d{3})+$`)
	salaryMarkerRegexp = regexp.MustCompile(`(?i)[$€£]|\b(usd|eur|gbp|salary)\b|\d\s*k\b`)
)

// ParseSalaryRange extracts up to two yearly amounts from free text like "$80k - $120k".
// Text without a currency or salary marker yields zeros. Amounts below 1000 are ignored as hourly rates.
func ParseSalaryRange(s string) (int, int) {
	if !salaryMarkerRegexp.MatchString(s) {
		return 0, 0
	}

	var amounts []int
	for _, match := range salaryRegexp.FindAllStringSubmatch(s, -1) {
		raw := match[1]
		var value float64
		if thousandsRegexp.MatchString(raw) {
			value, _ = strconv.ParseFloat(strings.NewReplacer(",", "", ".", "").Replace(raw), 64)
		} else {
			value, _ = strconv.ParseFloat(raw, 64)
		}
		if match[2] != "" {
			value *= 1000
		}
		if value < 1000 {
			continue
		}
		amounts = append(amounts, int(value))
		if len(amounts) == 2 {
			break
		}
	}

	switch len(amounts) {
	case 0:
		return 0, 0
	case 1:
		return amounts[0], amounts[0]
	default:
		return min(amounts[0], amounts[1]), max(amounts[0], amounts[1])
	}
}
