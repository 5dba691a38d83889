package extract

// conceptStopwords is the minimal bilingual stopword set applied to concept
// candidates after corpus filtering.
var conceptStopwords = map[string]struct{}{
	// Chinese common particles and function words
	"的": {}, "了": {}, "是": {}, "和": {}, "在": {}, "中": {}, "上": {}, "下": {},
	"我": {}, "你": {}, "他": {}, "她": {}, "它": {}, "们": {},
	"这": {}, "那": {}, "一个": {}, "一些": {}, "这个": {}, "那个": {},
	"也": {}, "与": {}, "或": {}, "但": {}, "就": {}, "都": {},
	// English common words
	"a": {}, "an": {}, "the": {}, "in": {}, "on": {}, "at": {}, "to": {},
	"for": {}, "of": {}, "with": {},
	"and": {}, "or": {}, "but": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {},
	"it": {}, "its": {}, "this": {}, "that": {}, "these": {}, "those": {},
	"i": {}, "you": {}, "he": {}, "she": {}, "we": {}, "they": {},
}

// relationStopwords is the larger, relation-focused stopword set. A
// dependency arc is discarded when either endpoint concept is listed here,
// even though the concept itself survived the concept filters.
var relationStopwords = map[string]struct{}{
	"的": {}, "了": {}, "是": {}, "和": {}, "在": {}, "有": {}, "以": {}, "其": {},
	"一个": {}, "这个": {}, "那个": {}, "这些": {}, "那些": {}, "一些": {},
	"一种": {}, "这种": {}, "什么": {}, "如何": {}, "为什么": {}, "何时": {}, "何地": {},
	"某": {}, "其他": {}, "其他相关": {},
	"与": {}, "或": {}, "但": {}, "也": {}, "等": {}, "之": {}, "为": {}, "就": {},
	"从": {}, "到": {}, "使": {}, "让": {}, "对": {}, "于": {}, "及": {}, "则": {},
	"而": {}, "并": {},
	"所": {}, "把": {}, "被": {}, "给": {}, "像": {}, "即": {}, "若": {}, "故": {},
	"因": {}, "只": {},
	"不是": {}, "可以": {}, "不可": {}, "能够": {}, "必须": {}, "需要": {}, "应该": {},
	"可能": {}, "会": {}, "将": {},
	"进行": {}, "通过": {}, "作为": {}, "成为": {}, "存在": {}, "发生": {}, "出现": {},
	"包含": {}, "包括": {}, "涉及": {},
	"显示": {}, "表明": {}, "指出": {}, "认为": {}, "建议": {}, "描述": {}, "说明": {},
	"解释": {}, "证实": {}, "支持": {},
	"发展": {}, "影响": {}, "推动": {}, "导致": {}, "产生": {}, "实现": {}, "解决": {},
	"应用": {}, "使用": {}, "利用": {},
	"研究": {}, "分析": {}, "讨论": {}, "介绍": {}, "提出": {}, "比较": {}, "总结": {},
	"方面": {}, "问题": {}, "方法": {}, "结果": {}, "作用": {}, "过程": {}, "情况": {},
	"内容": {}, "部分": {}, "形式": {}, "类型": {}, "结构": {},
	"模式": {}, "程度": {}, "数量": {}, "关系": {}, "特点": {}, "特征": {}, "优势": {},
	"劣势": {}, "原因": {}, "目的": {}, "意义": {},
	"主要": {}, "重要": {}, "基本": {}, "常见": {}, "不同": {}, "相同": {}, "类似": {},
	"相关": {}, "一般": {}, "具体": {}, "特定": {},
	"首先": {}, "其次": {}, "然后": {}, "最后": {}, "此外": {}, "另外": {}, "同时": {},
	"通常": {}, "目前": {}, "现在": {}, "未来": {},
	"更": {}, "最": {}, "很": {}, "太": {}, "都": {}, "还": {}, "仅": {}, "不再": {},
	"几乎": {}, "大约": {}, "左右": {},
	// English prepositions and articles
	"a": {}, "an": {}, "the": {}, "in": {}, "on": {}, "at": {}, "of": {}, "to": {},
	"for": {}, "with": {}, "by": {}, "from": {}, "up": {}, "down": {}, "out": {},
	"over": {}, "under": {},
	// English auxiliary verbs
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"has": {}, "had": {}, "have": {}, "do": {}, "does": {}, "did": {},
	"can": {}, "could": {}, "will": {}, "would": {}, "may": {}, "might": {},
	"must": {}, "should": {},
}

// relationLabels remaps raw dependency-relation tags to human-readable
// labels. Unmapped tags pass through unchanged.
var relationLabels = map[string]string{
	"dep":         "关联",
	"root":        "核心",
	"conj":        "并列",
	"amod":        "形容词修饰",
	"advmod":      "副词修饰",
	"compound:nn": "名词修饰",
	"nsubj":       "主语",
	"nsubjpass":   "被动主语",
	"dobj":        "宾语",
	"iobj":        "间接宾语",
	"aux":         "助词",
	"cop":         "系动词",
	"mark":        "标记",
	"cc":          "并列连词",
	"clf":         "分类词",
	"discourse":   "话语",
	"acl":         "名词子句",
	"advcl":       "副词子句",
	"det":         "限定词",
	"nummod":      "数量修饰",
	"case":        "格标记",
	"lobj":        "方位宾语",
	"loc":         "位置",
	"pccomp":      "补语补足",
	"pobj":        "介词宾语",
	"prep":        "介词",
	"xcomp":       "开放补语",
	"ccomp":       "从句补语",
	"rcmod":       "相对从句",
}

func remapRelationLabel(raw string) string {
	if label, ok := relationLabels[raw]; ok {
		return label
	}
	return raw
}
