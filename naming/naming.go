// Package naming converts identifiers between snake, Pascal and camel case
// and derives the plural, kebab and package forms used in generated code.
//
// The functions are pure string transforms with no knowledge of SQL or of
// any target framework.
package naming

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/go-openapi/inflect"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var (
	separators   = regexp.MustCompile(`[_\-\s]+`)
	wordBoundary = regexp.MustCompile(`(.)([A-Z][a-z]+)`)
	caseBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
	rules        = ruleset()
)

func ruleset() *inflect.Ruleset {
	rules := inflect.NewDefaultRuleset()
	rules.AddUncountable("data")
	rules.AddUncountable("metadata")
	return rules
}

// Pascal splits s on underscores, hyphens and whitespace, and each word
// again at the case boundaries Snake uses. Every part gets an upper-case
// first letter and a lower-case rest, so upper-case runs are canonicalized
// and Pascal(Snake(Pascal(s))) equals Pascal(s).
//
//	Pascal("order_items") // OrderItems
//	Pascal("userID")      // UserId
//	Pascal("HTTPServer")  // HttpServer
func Pascal(s string) string {
	var b strings.Builder
	for _, w := range separators.Split(s, -1) {
		w = wordBoundary.ReplaceAllString(w, "${1}_${2}")
		w = caseBoundary.ReplaceAllString(w, "${1}_${2}")
		for _, part := range strings.Split(w, "_") {
			if part == "" {
				continue
			}
			r, size := utf8.DecodeRuneInString(part)
			b.WriteRune(unicode.ToUpper(r))
			b.WriteString(cases.Lower(language.Und).String(part[size:]))
		}
	}
	return b.String()
}

// Snake inserts an underscore at every lower-to-upper boundary and before
// each capitalized word that follows an upper-case run, then lower-cases
// the result.
//
//	Snake("OrderItems")      // order_items
//	Snake("getHTTPResponse") // get_http_response
func Snake(s string) string {
	s = wordBoundary.ReplaceAllString(s, "${1}_${2}")
	s = caseBoundary.ReplaceAllString(s, "${1}_${2}")
	// A Caser keeps state, so each call gets its own.
	return cases.Lower(language.Und).String(s)
}

// Camel is Pascal with the first character lower-cased.
func Camel(s string) string {
	p := Pascal(s)
	if p == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(p)
	return string(unicode.ToLower(r)) + p[size:]
}

// Kebab returns the snake form of s with dashes instead of underscores.
func Kebab(s string) string {
	return strings.ReplaceAll(Snake(s), "_", "-")
}

// Package returns a Go package name for s: lower-case letters and digits
// only, prefixed with "pkg" when it would not start with a letter.
func Package(s string) string {
	var b strings.Builder
	for _, r := range Snake(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	name := b.String()
	if name == "" {
		return ""
	}
	if r, _ := utf8.DecodeRuneInString(name); !unicode.IsLetter(r) {
		name = "pkg" + name
	}
	return name
}

// Plural returns the plural form of the last word of a snake, Pascal or
// camel identifier, keeping its case style.
func Plural(s string) string {
	return inflectLast(s, rules.Pluralize)
}

// Singular returns the singular form of the last word of an identifier,
// keeping its case style.
func Singular(s string) string {
	return inflectLast(s, rules.Singularize)
}

// Humanize returns a lower-case, space separated form of s with the first
// letter capitalized ("order_items" -> "Order items").
func Humanize(s string) string {
	return rules.Humanize(Snake(s))
}

// inflectLast applies fn to the trailing word of s.
func inflectLast(s string, fn func(string) string) string {
	if s == "" {
		return ""
	}
	if i := strings.LastIndexAny(s, "_- "); i >= 0 {
		return s[:i+1] + fn(s[i+1:])
	}
	// Split before the last upper-case letter of camel or Pascal input.
	for i := len(s) - 1; i > 0; i-- {
		if unicode.IsUpper(rune(s[i])) && !unicode.IsUpper(rune(s[i-1])) {
			return s[:i] + fn(s[i:])
		}
	}
	return fn(s)
}
