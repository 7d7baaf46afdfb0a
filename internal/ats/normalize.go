package ats

import (
	"strings"
	"unicode"
)

// synonyms folds common spelling variants onto one canonical token so that
// "Golang" in a job posting matches "Go" in a resume and vice versa.
var synonyms = map[string]string{
	"golang":   "go",
	"js":       "javascript",
	"ts":       "typescript",
	"nodejs":   "node",
	"node.js":  "node",
	"reactjs":  "react",
	"react.js": "react",
	"vuejs":    "vue",
	"vue.js":   "vue",
	"postgres": "postgresql",
	"psql":     "postgresql",
	"k8s":      "kubernetes",
	"py":       "python",
	"dotnet":   ".net",
	"ci/cd":    "cicd",
	"ci-cd":    "cicd",
	"ms-sql":   "sql",
	"mssql":    "sql",
}

func normalizeToken(tok string) string {
	tok = strings.ToLower(strings.TrimSpace(tok))
	tok = strings.Trim(tok, ".,;:()[]{}\"'")
	if canon, ok := synonyms[tok]; ok {
		return canon
	}
	return tok
}

// tokenize splits free text into normalized tokens. '+' and '#' survive so
// "c++" and "c#" stay distinguishable from "c".
func tokenize(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
		switch r {
		case '+', '#', '.', '/', '-':
			return false
		default:
			return true
		}
	})

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		tok := normalizeToken(f)
		if tok == "" {
			continue
		}
		tokens = append(tokens, tok)
		// "ci/cd" style compounds also contribute their parts.
		if strings.ContainsAny(tok, "/-") {
			for _, part := range strings.FieldsFunc(tok, func(r rune) bool { return r == '/' || r == '-' }) {
				if part = normalizeToken(part); part != "" {
					tokens = append(tokens, part)
				}
			}
		}
	}
	return tokens
}

// canonicalKey reduces a skill or qualification phrase to a stable
// comparison key.
func canonicalKey(phrase string) string {
	return strings.Join(tokenize(phrase), " ")
}

// tokenSet builds a membership set over normalized tokens.
func tokenSet(tokens []string) map[string]bool {
	set := make(map[string]bool, len(tokens))
	for _, t := range tokens {
		set[t] = true
	}
	return set
}

// containsPhrase reports whether the token sequence of phrase appears
// contiguously in tokens.
func containsPhrase(tokens []string, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		match := true
		for j, p := range phrase {
			if tokens[i+j] != p {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

// diceSimilarity computes the Sørensen-Dice coefficient over character
// bigrams. Used for partial credit on near-miss tokens ("postgre" vs
// "postgresql").
func diceSimilarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if len(a) < 2 || len(b) < 2 {
		return 0
	}

	bigrams := make(map[string]int)
	for i := 0; i+2 <= len(a); i++ {
		bigrams[a[i:i+2]]++
	}

	overlap := 0
	for i := 0; i+2 <= len(b); i++ {
		bg := b[i : i+2]
		if bigrams[bg] > 0 {
			bigrams[bg]--
			overlap++
		}
	}

	return 2 * float64(overlap) / float64(len(a)+len(b)-2)
}
