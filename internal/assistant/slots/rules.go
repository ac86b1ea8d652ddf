package slots

import (
	"regexp"
	"strconv"
	"strings"

	"trip-assistant/internal/models"
)

// themeKeywords are matched as lower-cased substrings, themes in enum order.
var themeKeywords = map[models.Theme][]string{
	models.ThemeKPop:     {"k-pop", "kpop", "k pop", "케이팝", "k팝", "아이돌", "bts", "방탄", "블랙핑크", "idol", "アイドル", "偶像", "韩流"},
	models.ThemeFood:     {"음식", "맛집", "먹거리", "미식", "먹방", "food", "gourmet", "restaurant", "グルメ", "料理", "美食"},
	models.ThemeCulture:  {"문화", "전통", "한옥", "공연", "전시", "culture", "traditional", "文化", "伝統", "传统"},
	models.ThemeNature:   {"자연", "바다", "해변", "등산", "숲", "nature", "hiking", "beach", "mountain", "自然", "海"},
	models.ThemeShopping: {"쇼핑", "면세", "아울렛", "shopping", "outlet", "ショッピング", "买", "购物"},
	models.ThemeHistory:  {"역사", "고궁", "궁궐", "유적", "왕릉", "history", "historic", "palace", "歴史", "历史", "古迹"},
}

type city struct {
	name    string
	aliases []string
}

// cities maps spellings of major destinations onto their Korean name.
var cities = []city{
	{"서울", []string{"서울", "seoul", "ソウル", "首尔", "首爾"}},
	{"부산", []string{"부산", "busan", "pusan", "釜山"}},
	{"제주", []string{"제주", "jeju", "済州", "济州", "濟州"}},
	{"인천", []string{"인천", "incheon", "仁川"}},
	{"대구", []string{"대구", "daegu", "大邱"}},
	{"대전", []string{"대전", "daejeon", "大田"}},
	{"광주", []string{"광주", "gwangju", "光州"}},
	{"울산", []string{"울산", "ulsan", "蔚山"}},
	{"경주", []string{"경주", "gyeongju", "慶州", "庆州"}},
	{"강릉", []string{"강릉", "gangneung", "江陵"}},
	{"전주", []string{"전주", "jeonju", "全州"}},
	{"여수", []string{"여수", "yeosu", "麗水", "丽水"}},
	{"속초", []string{"속초", "sokcho", "束草"}},
	{"수원", []string{"수원", "suwon", "水原"}},
}

// notRegions are words the generic region patterns must not return.
var notRegions = map[string]bool{
	"여행": true, "투어": true, "코스": true, "루트": true, "일정": true, "장소": true,
	"음식": true, "맛집": true, "문화": true, "자연": true, "쇼핑": true, "역사": true,
	"추천": true, "우리": true, "가족": true, "친구": true, "혼자": true, "주말": true,
	"다음": true, "이번": true, "오늘": true, "내일": true, "연휴": true, "휴가": true,
	"몰라": true, "모름": true, "글쎄": true, "아무데나": true, "아무곳": true, "아무거나": true,
	"상관없어": true, "상관없음": true, "어디든": true, "어디든지": true,
	"trip": true, "tour": true, "travel": true,
}

func init() {
	for _, w := range dayWords {
		notRegions[w.word] = true
	}
}

var (
	regionSuffixPattern = regexp.MustCompile(`(?:^|\s)([가-힣]{2,}?)(?:으로|에서|로|에|여행|투어)`)
	regionEnPattern     = regexp.MustCompile(`\b(?:in|to|around)\s+([A-Z][a-zA-Z]+)`)
	bareRegionPattern   = regexp.MustCompile(`^([가-힣]{2,6})$`)

	nightsDaysPattern = regexp.MustCompile(`(\d+)\s*박\s*(\d+)\s*일`)
	daysPattern       = regexp.MustCompile(`(\d+)\s*-?\s*(?:일|日|天|days?\b)`)
	bareNumberPattern = regexp.MustCompile(`^\s*(\d{1,2})\s*$`)

	manwonPattern = regexp.MustCompile(`(\d+)\s*만\s*원`)
	wonPattern    = regexp.MustCompile(`(\d[\d,]*)\s*(?:원|krw|won)`)
)

var dayWords = []struct {
	word string
	days int
}{{"당일", 1}, {"하루", 1}, {"이틀", 2}, {"사흘", 3}, {"나흘", 4}, {"닷새", 5}}

// ExtractTheme returns the first theme, in enum order, with a keyword in query.
func ExtractTheme(query string) (models.Theme, bool) {
	q := strings.ToLower(query)
	for _, theme := range models.AllThemes() {
		for _, kw := range themeKeywords[theme] {
			if strings.Contains(q, kw) {
				return theme, true
			}
		}
	}
	if t, ok := models.ParseTheme(query); ok {
		return t, true
	}
	return "", false
}

// ExtractRegion also accepts a bare place name as the whole answer, since it
// is used right after the region question.
func ExtractRegion(query string) (string, bool) {
	if r, ok := findRegion(query); ok {
		return r, true
	}
	q := strings.TrimSpace(query)
	for _, suffix := range []string{"이요", "요"} {
		q = strings.TrimSuffix(q, suffix)
	}
	if m := bareRegionPattern.FindStringSubmatch(q); m != nil && !looksLikeVerb(m[1]) && placeLike(m[1]) {
		return m[1], true
	}
	return "", false
}

// placeLike rejects tokens that are stop words, themes or trip lengths.
func placeLike(token string) bool {
	if notRegions[token] {
		return false
	}
	if _, isTheme := ExtractTheme(token); isTheme {
		return false
	}
	if _, isDays := ExtractDays(token); isDays {
		return false
	}
	return true
}

// findRegion looks for known cities, then for a place-like token followed by
// a direction particle or a trip word.
func findRegion(query string) (string, bool) {
	q := strings.ToLower(query)
	for _, c := range cities {
		for _, alias := range c.aliases {
			if strings.Contains(q, alias) {
				return c.name, true
			}
		}
	}
	for _, m := range regionSuffixPattern.FindAllStringSubmatch(query, -1) {
		if placeLike(m[1]) {
			return m[1], true
		}
	}
	if m := regionEnPattern.FindStringSubmatch(query); m != nil && !notRegions[strings.ToLower(m[1])] {
		return m[1], true
	}
	return "", false
}

func looksLikeVerb(token string) bool {
	for _, end := range []string{"줘", "다", "해", "까", "지"} {
		if strings.HasSuffix(token, end) {
			return true
		}
	}
	return false
}

// ExtractDays accepts a trip length only within the allowed day range.
func ExtractDays(query string) (int, bool) {
	if m := nightsDaysPattern.FindStringSubmatch(query); m != nil {
		return validDays(m[2])
	}
	if m := daysPattern.FindStringSubmatch(strings.ToLower(query)); m != nil {
		return validDays(m[1])
	}
	for _, w := range dayWords {
		if strings.Contains(query, w.word) {
			return w.days, true
		}
	}
	if m := bareNumberPattern.FindStringSubmatch(query); m != nil {
		return validDays(m[1])
	}
	return 0, false
}

func validDays(s string) (int, bool) {
	d, err := strconv.Atoi(s)
	if err != nil || !models.ValidDayCount(d) {
		return 0, false
	}
	return d, true
}

// ExtractBudget reads "30만원" as 300000 and plain amounts in won.
func ExtractBudget(query string) (int, bool) {
	if m := manwonPattern.FindStringSubmatch(query); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n > 0 {
			return n * 10000, true
		}
	}
	if m := wonPattern.FindStringSubmatch(strings.ToLower(query)); m != nil {
		n, err := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		if err == nil && n > 0 {
			return n, true
		}
	}
	return 0, false
}

// extractByRules is the deterministic full extraction.
func extractByRules(query string) models.ConversationContext {
	var out models.ConversationContext
	if t, ok := ExtractTheme(query); ok {
		out.Theme = models.Ptr(t)
	}
	if r, ok := findRegion(query); ok {
		out.Region = models.Ptr(r)
	}
	if d, ok := ExtractDays(query); ok {
		out.DayCount = models.Ptr(d)
	}
	if b, ok := ExtractBudget(query); ok {
		out.Budget = models.Ptr(b)
	}
	return out
}
