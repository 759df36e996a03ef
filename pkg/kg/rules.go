package kg

import (
	"fmt"
	"regexp"
)

// Rule pairs a regular expression with the relation label assigned to its
// matches. The first two capture groups are the candidate source and target
// entities; extra groups are ignored.
type Rule struct {
	Pattern string
	Label   string
}

type compiledRule struct {
	re    *regexp.Regexp
	label string
}

// DefaultRules returns the fixed, ordered pattern-rule list. Rules are
// evaluated in this exact order against the full document text.
func DefaultRules() []Rule {
	return []Rule{
		// 身份关系
		{`(.+?)是(.+?)的(.+)`, "身份"},
		{`(.+?)担任(.+)`, "担任"},
		{`(.+?)成为(.+)`, "成为"},

		// 归属关系
		{`(.+?)属于(.+)`, "属于"},
		{`(.+?)来自(.+)`, "来自"},
		{`(.+?)出身(.+)`, "出身"},

		// 位置关系
		{`(.+?)位于(.+)`, "位于"},
		{`(.+?)在(.+?)中`, "位于"},

		// 拥有关系
		{`(.+?)拥有(.+)`, "拥有"},
		{`(.+?)获得(.+)`, "获得"},
		{`(.+?)得到(.+)`, "得到"},

		// 技能关系
		{`(.+?)使用(.+)`, "使用"},
		{`(.+?)施展(.+)`, "施展"},
		{`(.+?)掌握(.+)`, "掌握"},
		{`(.+?)修炼(.+)`, "修炼"},
		{`(.+?)学习(.+)`, "学习"},

		// 教学关系
		{`(.+?)教导(.+)`, "教导"},
		{`(.+?)指导(.+)`, "指导"},
		{`(.+?)传授(.+)`, "传授"},

		// 战斗关系
		{`(.+?)击败(.+)`, "击败"},
		{`(.+?)战胜(.+)`, "战胜"},
		{`(.+?)对战(.+)`, "对战"},
		{`(.+?)挑战(.+)`, "挑战"},
		{`(.+?)攻击(.+)`, "攻击"},

		// 社交关系
		{`(.+?)帮助(.+)`, "帮助"},
		{`(.+?)认识(.+)`, "认识"},
		{`(.+?)遇见(.+)`, "遇见"},
		{`(.+?)跟随(.+)`, "跟随"},
		{`(.+?)保护(.+)`, "保护"},
		{`(.+?)和(.+?)是(.+)`, "关系"},
		{`(.+?)与(.+?)(.+)`, "关联"},

		// 创造关系
		{`(.+?)创建(.+)`, "创建"},
		{`(.+?)建立(.+)`, "建立"},
		{`(.+?)制作(.+)`, "制作"},
	}
}

// compileRules compiles the rule list, preserving order. A malformed
// pattern is a construction-time error, never a per-document failure.
func compileRules(rules []Rule) ([]compiledRule, error) {
	compiled := make([]compiledRule, 0, len(rules))
	for i, r := range rules {
		if r.Pattern == "" || r.Label == "" {
			return nil, fmt.Errorf("rule %d: pattern and label must be non-empty", i)
		}
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			return nil, fmt.Errorf("rule %d (%s): %w", i, r.Label, err)
		}
		if re.NumSubexp() < 2 {
			return nil, fmt.Errorf("rule %d (%s): needs at least two capture groups", i, r.Label)
		}
		compiled = append(compiled, compiledRule{re: re, label: r.Label})
	}
	return compiled, nil
}
