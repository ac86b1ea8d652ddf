package generator

import "trip-assistant/internal/common/i18n"

type placeLabels struct {
	name, description, address, region, themes, cost, duration, contact string
	day                                                                 string // Printf pattern, one %d
	currency, minutes                                                   string
}

type templates struct {
	qaSystem        string
	narrativeSystem string
	routesSystem    string
	contextHeader   string
	questionLabel   string
	dayCountLine    string // Printf pattern, one %d
	routeLine       string // Printf pattern: title, region, days
	labels          placeLabels
}

var promptTemplates = map[string]templates{
	i18n.Korean: {
		qaSystem: "당신은 한국 여행 안내 도우미입니다. 아래 [참고 자료]만 사용해서 질문에 답하세요. " +
			"자료에 없는 내용은 추측하지 말고 모른다고 답하세요. " +
			"사용한 자료는 문장 끝에 [1], [2]처럼 번호로 표시하세요. 한국어로 답하세요.",
		narrativeSystem: "당신은 친절한 한국 여행 코스 추천 도우미입니다. 주어진 장소들을 주어진 순서대로 방문하는 " +
			"일정을 일자별로 나누어 짧고 자연스럽게 소개하세요. 번호나 출처 표기는 하지 마세요. " +
			"주어진 장소 외의 장소를 추가하지 마세요. 한국어로 답하세요.",
		routesSystem: "당신은 한국 여행 코스 추천 도우미입니다. 아래 기존 여행 코스와 참고 자료를 바탕으로 " +
			"사용자에게 어울리는 코스를 짧게 추천하세요. 목록에 없는 코스는 만들지 마세요. 한국어로 답하세요.",
		contextHeader: "[참고 자료]",
		questionLabel: "질문",
		dayCountLine:  "여행 일수: %d일",
		routeLine:     "- %s (%s, %d일)",
		labels: placeLabels{
			name: "장소명", description: "설명", address: "주소", region: "지역", themes: "테마",
			cost: "예상 비용", duration: "예상 소요 시간", contact: "연락처",
			day: "%d일차", currency: "원", minutes: "분",
		},
	},
	i18n.English: {
		qaSystem: "You are a travel assistant for Korea. Answer the question using only the [Context] below. " +
			"If the context does not contain the answer, say that you do not know. " +
			"Cite the passages you use with their numbers, like [1] or [2]. Answer in English.",
		narrativeSystem: "You are a friendly travel route assistant for Korea. Introduce the itinerary day by day, " +
			"visiting the given places in the given order, in a short and natural tone. " +
			"Do not add citations or numbering and do not add places that are not listed. Answer in English.",
		routesSystem: "You are a travel route assistant for Korea. Using the existing routes and context below, " +
			"briefly recommend the routes that suit the user. Do not invent routes that are not listed. Answer in English.",
		contextHeader: "[Context]",
		questionLabel: "Question",
		dayCountLine:  "Trip length: %d days",
		routeLine:     "- %s (%s, %d days)",
		labels: placeLabels{
			name: "Name", description: "Description", address: "Address", region: "Region", themes: "Themes",
			cost: "Estimated cost", duration: "Estimated duration", contact: "Contact",
			day: "Day %d", currency: " KRW", minutes: " min",
		},
	},
	i18n.Japanese: {
		qaSystem: "あなたは韓国旅行の案内アシスタントです。以下の[参考資料]だけを使って質問に答えてください。" +
			"資料にない内容は推測せず、分からないと答えてください。" +
			"使用した資料は文末に[1]、[2]のように番号で示してください。日本語で答えてください。",
		narrativeSystem: "あなたは親切な韓国旅行コースのおすすめアシスタントです。与えられた場所を与えられた順番で" +
			"訪れる日程を日ごとに分けて、短く自然に紹介してください。番号や出典は付けず、" +
			"与えられていない場所は追加しないでください。日本語で答えてください。",
		routesSystem: "あなたは韓国旅行コースのおすすめアシスタントです。以下の既存コースと参考資料をもとに、" +
			"ユーザーに合うコースを短く推薦してください。リストにないコースは作らないでください。日本語で答えてください。",
		contextHeader: "[参考資料]",
		questionLabel: "質問",
		dayCountLine:  "旅行日数: %d日",
		routeLine:     "- %s (%s、%d日)",
		labels: placeLabels{
			name: "名称", description: "説明", address: "住所", region: "地域", themes: "テーマ",
			cost: "予想費用", duration: "所要時間", contact: "連絡先",
			day: "%d日目", currency: "ウォン", minutes: "分",
		},
	},
	i18n.Chinese: {
		qaSystem: "你是韩国旅行向导助手。请只根据下面的[参考资料]回答问题。" +
			"资料中没有的内容不要猜测，请说明不知道。" +
			"请在句末用[1]、[2]这样的编号标注所用资料。请用中文回答。",
		narrativeSystem: "你是亲切的韩国旅行路线推荐助手。请按给定顺序游览给定的地点，按天分组，" +
			"简短自然地介绍行程。不要添加编号或出处，也不要添加未列出的地点。请用中文回答。",
		routesSystem: "你是韩国旅行路线推荐助手。请根据下面的现有路线和参考资料，" +
			"简短推荐适合用户的路线。不要编造列表中没有的路线。请用中文回答。",
		contextHeader: "[参考资料]",
		questionLabel: "问题",
		dayCountLine:  "旅行天数: %d天",
		routeLine:     "- %s (%s, %d天)",
		labels: placeLabels{
			name: "名称", description: "介绍", address: "地址", region: "地区", themes: "主题",
			cost: "预计费用", duration: "预计时长", contact: "联系方式",
			day: "第%d天", currency: "韩元", minutes: "分钟",
		},
	},
}

// templatesFor falls back to English for languages without templates.
func templatesFor(lang string) templates {
	if t, ok := promptTemplates[lang]; ok {
		return t
	}
	return promptTemplates[i18n.FallbackLanguage]
}
