package parser

import (
	"regexp"
	"strings"
)

type languageRules struct {
	keywords []string
	patterns []*regexp.Regexp
	weight   float64
}

var languages = map[string]languageRules{
	"python": {
		keywords: []string{"def ", "import ", "from ", "class ", "__init__", "self.", "elif ", "None", "True", "False"},
		patterns: compile(`def \w+\(`, `(?m)^\s*import `, `(?m):\s*$`, `__\w+__`),
		weight:   1.0,
	},
	"java": {
		keywords: []string{"public class", "private ", "public ", "protected ", "void ", "static ", "extends ", "implements "},
		patterns: compile(`public\s+class`, `System\.out\.println`, `\w+\s+\w+\s*\(.*\)\s*\{`),
		weight:   1.0,
	},
	"javascript": {
		keywords: []string{"function ", "const ", "let ", "var ", "=>", "console.log", "async ", "await "},
		patterns: compile(`function\s+\w+\s*\(`, `=>`, `console\.log`, `async\s+function`),
		weight:   1.0,
	},
	"typescript": {
		keywords: []string{"interface ", "type ", ": string", ": number", ": boolean", "export ", "import "},
		patterns: compile(`interface\s+\w+`, `type\s+\w+\s*=`),
		weight:   1.0,
	},
	"cpp": {
		keywords: []string{"#include", "std::", "cout", "cin", "namespace ", "template<", "virtual "},
		patterns: compile(`#include\s*<`, `std::`, `cout\s*<<`, `template\s*<`),
		weight:   1.0,
	},
	"c": {
		keywords: []string{"#include", "printf", "scanf", "malloc", "free", "sizeof"},
		patterns: compile(`#include\s*<\w+\.h>`, `printf\s*\(`, `int\s+main\s*\(`),
		weight:   1.0,
	},
	"go": {
		keywords: []string{"func ", "package ", "import ", "defer ", "go ", "chan ", ":="},
		patterns: compile(`func\s+\w+\(`, `package\s+\w+`, `:=`),
		weight:   1.0,
	},
	"rust": {
		keywords: []string{"fn ", "let mut", "pub ", "impl ", "trait ", "::"},
		patterns: compile(`fn\s+\w+\(`, `let\s+mut\s+\w+`, `impl\s+\w+`),
		weight:   1.0,
	},
	"sql": {
		keywords: []string{"SELECT ", "FROM ", "WHERE ", "INSERT ", "UPDATE ", "DELETE ", "CREATE TABLE"},
		patterns: compile(`(?i)SELECT\s+.*\s+FROM`, `(?i)INSERT\s+INTO`, `(?i)CREATE\s+TABLE`),
		weight:   1.0,
	},
	"bash": {
		keywords: []string{"#!/bin/bash", "echo ", "if [", "then", "fi", "export "},
		patterns: compile(`#!/bin/bash`, `if\s+\[`, `echo\s+`),
		weight:   1.0,
	},
	"yaml": {
		keywords: []string{"name:", "version:"},
		patterns: compile(`(?m)^\w+:\s*\w+`, `(?m)^\s*-\s+\w+`),
		weight:   0.6,
	},
	"json": {
		keywords: []string{"{", "}", "[", "]"},
		patterns: compile(`"\w+"\s*:\s*`, `(?m)^\s*\{`, `(?m)^\s*\[`),
		weight:   0.7,
	},
}

func compile(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(e)
	}
	return out
}

const (
	keywordPoints    = 1.0
	patternPoints    = 1.5
	detectionMinimum = 2.0
)

// DetectLanguage guesses the programming language of a snippet with
// weighted keyword and pattern scoring. Returns "" when no language
// clears the confidence threshold.
func DetectLanguage(code string) string {
	if len(strings.TrimSpace(code)) < 10 {
		return ""
	}

	best := ""
	bestScore := 0.0

	for name, rules := range languages {
		score := 0.0
		for _, kw := range rules.keywords {
			if strings.Contains(code, kw) {
				score += keywordPoints
			}
		}
		for _, pat := range rules.patterns {
			if pat.MatchString(code) {
				score += patternPoints
			}
		}
		score *= rules.weight

		if score > bestScore || (score == bestScore && best != "" && name < best) {
			best = name
			bestScore = score
		}
	}

	if bestScore < detectionMinimum {
		return ""
	}
	return best
}
