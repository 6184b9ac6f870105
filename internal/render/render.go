// Package render substitutes {{name}} placeholders in response templates.
//
// The package is pure and dependency-free: no logging, no I/O, no globals
// beyond compiled patterns. Identical inputs always yield identical output.
//
// Placeholders are `{{identifier}}` where identifier is one or more word
// characters ([A-Za-z0-9_]). Unknown or unset placeholders render as the empty
// string so template syntax never reaches customers.
package render

import (
	"regexp"
	"sort"
	"strings"
)

var (
	placeholderRE = regexp.MustCompile(`\{\{(\w+)\}\}`)
	blankLinesRE  = regexp.MustCompile(`\n{3,}`)
)

// Render replaces every placeholder in tmpl with its value from vars (empty
// string when absent), collapses runs of three or more newlines to two,
// and trims surrounding whitespace.
func Render(tmpl string, vars map[string]string) string {
	out := placeholderRE.ReplaceAllStringFunc(tmpl, func(m string) string {
		name := placeholderRE.FindStringSubmatch(m)[1]
		return vars[name]
	})
	out = blankLinesRE.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

// ExtractVariables returns the distinct placeholder names in tmpl in order
// of first occurrence.
func ExtractVariables(tmpl string) []string {
	matches := placeholderRE.FindAllStringSubmatch(tmpl, -1)
	if len(matches) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(matches))
	out := make([]string, 0, len(matches))
	for _, m := range matches {
		if _, dup := seen[m[1]]; dup {
			continue
		}
		seen[m[1]] = struct{}{}
		out = append(out, m[1])
	}
	return out
}

// Validation is the outcome of Validate.
type Validation struct {
	IsValid bool     `json:"is_valid"`
	Missing []string `json:"missing"`
}

// Validate reports required placeholders of tmpl that have no non-empty
// value in vars. Only names listed in required are checked, and only when
// they actually occur in tmpl; with no required list every template is valid.
func Validate(tmpl string, vars map[string]string, required []string) Validation {
	res := Validation{IsValid: true, Missing: []string{}}
	if len(required) == 0 {
		return res
	}
	need := make(map[string]struct{}, len(required))
	for _, r := range required {
		need[r] = struct{}{}
	}
	for _, name := range ExtractVariables(tmpl) {
		if _, ok := need[name]; !ok {
			continue
		}
		if strings.TrimSpace(vars[name]) == "" {
			res.Missing = append(res.Missing, name)
		}
	}
	res.IsValid = len(res.Missing) == 0
	return res
}

// Unused returns the names in vars that tmpl never references, sorted.
func Unused(tmpl string, vars map[string]string) []string {
	used := make(map[string]struct{})
	for _, n := range ExtractVariables(tmpl) {
		used[n] = struct{}{}
	}
	out := []string{}
	for k := range vars {
		if _, ok := used[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
