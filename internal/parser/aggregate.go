package parser

import (
	"sort"
	"strings"
)

// SkillCount 表示单个技能的出现次数。
type SkillCount struct {
	Skill string `json:"skill"`
	Count int    `json:"count"`
}

// SkillCounts 技能频次表，键为规范化后的技能词。
type SkillCounts map[string]int

// Aggregate 把存储层的 skills 列汇总为频次表。
// 每条记录按逗号切分，去空白转小写；历史数据可能带一层列表括号
// 与引号残留（如 "['python', 'sql']"），这里只做受限的语法清洗，
// 绝不把存储文本当代码求值。空白条目直接跳过。
func Aggregate(entries []string) SkillCounts {
	counts := SkillCounts{}
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if strings.HasPrefix(entry, "[") && strings.HasSuffix(entry, "]") {
			entry = entry[1 : len(entry)-1]
		}
		for _, part := range strings.Split(entry, ",") {
			token := strings.ToLower(strings.Trim(part, " \t'\""))
			if token == "" {
				continue
			}
			counts[token]++
		}
	}
	return counts
}

// TopK 返回出现次数前 K 的技能，次数相同时按字典序升序，保证结果稳定。
// k <= 0 时返回全部。
func (c SkillCounts) TopK(k int) []SkillCount {
	out := make([]SkillCount, 0, len(c))
	for skill, count := range c {
		out = append(out, SkillCount{Skill: skill, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Skill < out[j].Skill
	})
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}
