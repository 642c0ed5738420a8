package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

var (
	daysAgoRe   = regexp.MustCompile(`(\d+)\s+day(s)?\s+ago`)
	weeksAgoRe  = regexp.MustCompile(`(\d+)\s+week(s)?\s+ago`)
	monthsAgoRe = regexp.MustCompile(`(\d+)\s+month(s)?\s+ago`)
)

// sameDayMarkers 命中即视为当天发布。
var sameDayMarkers = []string{"just posted", "posted today", "active today", "today"}

// DateNormalizer 将自由文本的发布日期归一化为日历日期。
// 相对表达（"3 days ago"）按注入时钟换算，绝对表达交给通用解析器兜底。
type DateNormalizer struct {
	now func() time.Time
}

// NewDateNormalizer 创建 DateNormalizer，默认使用系统时钟。
func NewDateNormalizer() *DateNormalizer {
	return &DateNormalizer{now: time.Now}
}

// Normalize 按规则顺序解析日期文本，返回日期与是否解析成功。
// 任何无法解析的输入都返回 false，不会报错。
func (n *DateNormalizer) Normalize(text string) (time.Time, bool) {
	lower := strings.ToLower(strings.TrimSpace(text))
	if lower == "" {
		return time.Time{}, false
	}

	now := n.now()

	for _, marker := range sameDayMarkers {
		if strings.Contains(lower, marker) {
			return dateOnly(now), true
		}
	}

	if m := daysAgoRe.FindStringSubmatch(lower); m != nil {
		days, err := strconv.Atoi(m[1])
		if err == nil {
			return dateOnly(now.AddDate(0, 0, -days)), true
		}
	}

	// 小时/分钟级别的表达折算为当天。
	if strings.Contains(lower, "hour") || strings.Contains(lower, "minute") || strings.Contains(lower, "moment") {
		return dateOnly(now), true
	}

	if m := weeksAgoRe.FindStringSubmatch(lower); m != nil {
		weeks, err := strconv.Atoi(m[1])
		if err == nil {
			return dateOnly(now.AddDate(0, 0, -7*weeks)), true
		}
	}

	if m := monthsAgoRe.FindStringSubmatch(lower); m != nil {
		months, err := strconv.Atoi(m[1])
		if err == nil {
			// 固定按 30 天折算，与趋势统计口径保持一致。
			return dateOnly(now.AddDate(0, 0, -30*months)), true
		}
	}

	cfg := &dateparser.Configuration{
		CurrentTime:         now,
		PreferredDateSource: dateparser.Past,
	}
	if dt, err := dateparser.Parse(cfg, text); err == nil && !dt.Time.IsZero() {
		return dateOnly(dt.Time), true
	}

	return time.Time{}, false
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
