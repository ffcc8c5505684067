// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/unbrowserify/internal/model"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Encode converts a BundleMap into TOON format.
func Encode(bm *model.BundleMap) string {
	var parts []string

	parts = append(parts, fmt.Sprintf("bundle: %s", encodeValue(bm.Bundle)))

	var moduleRows [][]string
	for i := range bm.Modules {
		m := &bm.Modules[i]
		moduleRows = append(moduleRows, []string{
			string(m.ID),
			m.Name,
			string(m.Kind),
			fmt.Sprintf("%.4f", m.Rank),
		})
	}
	parts = append(parts, formatTabular("modules", []string{"id", "name", "kind", "rank"}, moduleRows))

	var depRows [][]string
	for i := range bm.Dependencies {
		d := &bm.Dependencies[i]
		depRows = append(depRows, []string{
			d.Source,
			d.Target,
			strings.Join(d.Specifiers, " "),
		})
	}
	parts = append(parts, formatTabular("dependencies", []string{"source", "target", "specifiers"}, depRows))

	var pkgRows [][]string
	for _, p := range bm.Packages {
		pkgRows = append(pkgRows, []string{p})
	}
	parts = append(parts, formatTabular("packages", []string{"name"}, pkgRows))

	if len(bm.Warnings) > 0 {
		var warnRows [][]string
		for _, w := range bm.Warnings {
			warnRows = append(warnRows, []string{string(w.ID), w.Message})
		}
		parts = append(parts, formatTabular("warnings", []string{"id", "message"}, warnRows))
	}

	return strings.Join(parts, "\n")
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
