// Package i18n normalizes user language codes and holds the assistant's fixed strings.
package i18n

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

const (
	Korean   = "ko"
	English  = "en"
	Japanese = "ja"
	Chinese  = "zh"

	// DefaultLanguage is used when a request carries no language or one
	// the assistant does not speak.
	DefaultLanguage = Korean
	// FallbackLanguage is used for strings missing in the requested language.
	FallbackLanguage = English
)

// Normalize maps any BCP 47 tag ("en-US", "zh_Hant", "KO") onto its base
// language. Empty, unsupported and unparsable input all yield DefaultLanguage.
func Normalize(lang string) string {
	lang = strings.TrimSpace(strings.ReplaceAll(lang, "_", "-"))
	if lang == "" {
		return DefaultLanguage
	}
	tag, err := language.Parse(lang)
	if err != nil {
		return DefaultLanguage
	}
	base, _ := tag.Base()
	if !Supported(base.String()) {
		return DefaultLanguage
	}
	return base.String()
}

// Supported reports whether lang is one of the normalized codes.
func Supported(lang string) bool {
	_, ok := catalog[lang]
	return ok
}

// Key identifies a fixed assistant string.
type Key string

const (
	AskTheme            Key = "ask_theme"
	AskRegion           Key = "ask_region"
	AskDays             Key = "ask_days"
	ThemeNotUnderstood  Key = "theme_not_understood"
	RegionNotUnderstood Key = "region_not_understood"
	DaysNotUnderstood   Key = "days_not_understood"
	NoResults           Key = "no_results"
	NoRoutesFound       Key = "no_routes_found"
	DaysAdjusted        Key = "days_adjusted"
	GenericError        Key = "generic_error"
	NoDocuments         Key = "no_documents"
	NoPlaces            Key = "no_places"
	PlacesFound         Key = "places_found"
	RoutesFound         Key = "routes_found"
	Sources             Key = "sources"
)

var catalog = map[string]map[Key]string{
	Korean: {
		AskTheme:            "어떤 테마의 여행을 원하세요? (K-POP, 음식, 문화, 자연, 쇼핑, 역사)",
		AskRegion:           "어느 지역으로 여행하실 예정인가요?",
		AskDays:             "며칠 동안 여행하실 계획인가요? (1~15일)",
		ThemeNotUnderstood:  "테마를 이해하지 못했어요. K-POP, 음식, 문화, 자연, 쇼핑, 역사 중에서 골라 주세요.",
		RegionNotUnderstood: "지역을 이해하지 못했어요. 예: 서울, 부산, 제주",
		DaysNotUnderstood:   "여행 일수를 이해하지 못했어요. 1일부터 15일 사이로 알려 주세요.",
		NoResults:           "조건에 맞는 결과를 찾지 못했어요. 다른 조건으로 다시 시도해 주세요.",
		NoRoutesFound:       "조건에 맞는 기존 여행 코스가 없어요. 새로운 코스를 만들어 드릴까요?",
		DaysAdjusted:        "요청하신 %d일 일정에 필요한 장소가 부족해서 %d일 일정으로 조정했어요.",
		GenericError:        "죄송해요, 답변을 만드는 중에 문제가 발생했어요. 잠시 후 다시 시도해 주세요.",
		NoDocuments:         "관련 정보를 찾지 못했어요.",
		NoPlaces:            "추천할 장소를 찾지 못했어요.",
		PlacesFound:         "관련 장소 %d곳을 찾았어요.",
		RoutesFound:         "추천 여행 코스 %d개를 찾았어요.",
		Sources:             "출처",
	},
	English: {
		AskTheme:            "What kind of trip would you like? (K-POP, food, culture, nature, shopping, history)",
		AskRegion:           "Which region would you like to visit?",
		AskDays:             "How many days will you travel? (1-15)",
		ThemeNotUnderstood:  "I couldn't recognise the theme. Please pick one of K-POP, food, culture, nature, shopping or history.",
		RegionNotUnderstood: "I couldn't recognise the region. For example: Seoul, Busan, Jeju.",
		DaysNotUnderstood:   "I couldn't recognise the number of days. Please answer with a number from 1 to 15.",
		NoResults:           "I couldn't find anything matching your request. Please try different conditions.",
		NoRoutesFound:       "There are no existing routes for those conditions. Shall I create a new one?",
		DaysAdjusted:        "There were not enough places for a %d-day trip, so I adjusted it to %d days.",
		GenericError:        "Sorry, something went wrong while preparing the answer. Please try again shortly.",
		NoDocuments:         "I couldn't find any related information.",
		NoPlaces:            "I couldn't find any places to recommend.",
		PlacesFound:         "I found %d related places.",
		RoutesFound:         "I found %d recommended routes.",
		Sources:             "Sources",
	},
	Japanese: {
		AskTheme:            "どのテーマの旅行をご希望ですか？（K-POP、グルメ、文化、自然、ショッピング、歴史）",
		AskRegion:           "どの地域を旅行される予定ですか？",
		AskDays:             "何日間旅行されますか？（1〜15日）",
		ThemeNotUnderstood:  "テーマを認識できませんでした。K-POP、グルメ、文化、自然、ショッピング、歴史から選んでください。",
		RegionNotUnderstood: "地域を認識できませんでした。例：ソウル、釜山、済州",
		DaysNotUnderstood:   "日数を認識できませんでした。1から15の数字で教えてください。",
		NoResults:           "条件に合う結果が見つかりませんでした。条件を変えてお試しください。",
		NoRoutesFound:       "条件に合う既存のコースはありません。新しいコースを作成しましょうか？",
		DaysAdjusted:        "%d日間の旅程に必要な場所が足りなかったため、%d日間に調整しました。",
		GenericError:        "申し訳ありません。回答の作成中に問題が発生しました。しばらくしてから再度お試しください。",
		NoDocuments:         "関連情報が見つかりませんでした。",
		NoPlaces:            "おすすめできる場所が見つかりませんでした。",
		PlacesFound:         "関連する場所が%d件見つかりました。",
		RoutesFound:         "おすすめコースが%d件見つかりました。",
		Sources:             "出典",
	},
	Chinese: {
		AskTheme:            "您想要什么主题的旅行？（K-POP、美食、文化、自然、购物、历史）",
		AskRegion:           "您打算去哪个地区旅行？",
		AskDays:             "您计划旅行几天？（1-15天）",
		ThemeNotUnderstood:  "未能识别主题。请从K-POP、美食、文化、自然、购物、历史中选择。",
		RegionNotUnderstood: "未能识别地区。例如：首尔、釜山、济州",
		DaysNotUnderstood:   "未能识别天数。请回答1到15之间的数字。",
		NoResults:           "没有找到符合条件的结果。请尝试其他条件。",
		NoRoutesFound:       "没有符合条件的现有路线。要为您创建新路线吗？",
		DaysAdjusted:        "%d天行程所需的地点不足，已调整为%d天。",
		GenericError:        "抱歉，生成回答时出现问题。请稍后再试。",
		NoDocuments:         "没有找到相关信息。",
		NoPlaces:            "没有找到可推荐的地点。",
		PlacesFound:         "找到了%d个相关地点。",
		RoutesFound:         "找到了%d条推荐路线。",
		Sources:             "来源",
	},
}

// Message returns the string for key in lang, formatted with args. Missing
// languages or keys fall back to FallbackLanguage.
func Message(lang string, key Key, args ...interface{}) string {
	text, ok := catalog[lang][key]
	if !ok {
		text = catalog[FallbackLanguage][key]
	}
	if len(args) == 0 {
		return text
	}
	return fmt.Sprintf(text, args...)
}
