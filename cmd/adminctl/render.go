package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"gopkg.in/yaml.v3"
)

type format string

const (
	formatTable format = "table"
	formatJSON  format = "json"
	formatYAML  format = "yaml"
)

func parseFormat(s string) (format, error) {
	switch f := format(strings.ToLower(s)); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// render writes v as JSON or YAML, or hands a table to fill for the default
// format.
func (a *app) render(v any, fill func(t *table)) error {
	switch a.format {
	case formatJSON:
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		// Round-trip through JSON so YAML keys match the API's field names.
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var doc any
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(a.out)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}

	t := &table{w: tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0), bold: a.color}
	fill(t)
	return t.flush(a.out)
}

type table struct {
	w      *tabwriter.Writer
	bold   bool
	rows int
	note string
}

func (t *table) header(cols ...string) {
	line := strings.Join(cols, "\t")
	if t.bold {
		line = "\x1b[1m" + line + "\x1b[0m"
	}
	fmt.Fprintln(t.w, line)
}

func (t *table) row(cols ...string) {
	t.rows++
	fmt.Fprintln(t.w, strings.Join(cols, "\t"))
}

func (t *table) footer(s string) {
	t.note = s
}

func (t *table) flush(out io.Writer) error {
	if err := t.w.Flush(); err != nil {
		return err
	}
	if t.rows == 0 {
		fmt.Fprintln(out, "no results")
	}
	if t.note != "" {
		fmt.Fprintln(out, t.note)
	}
	return nil
}

// status colours common status words on terminals.
func (a *app) status(s string) string {
	if !a.color {
		return s
	}
	switch s {
	case "active":
		return "\x1b[32m" + s + "\x1b[0m"
	case "suspended", "error", "deprecated":
		return "\x1b[31m" + s + "\x1b[0m"
	case "trial", "beta", "inactive", "maintenance":
		return "\x1b[33m" + s + "\x1b[0m"
	}
	return s
}

// since renders an RFC 3339 timestamp relative to now. Anything else is
// printed as given.
func (a *app) since(ts string) string {
	if ts == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, ts)
	if err != nil {
		return ts
	}
	return humanize.RelTime(t, a.now(), "ago", "from now")
}

func count(n int64) string {
	return humanize.Comma(n)
}

func cop(n int64) string {
	return "$" + strings.ReplaceAll(humanize.Comma(n), ",", ".") + " COP"
}

// percent renders a 0-100 value.
func percent(v float64) string {
	return humanize.FormatFloat("#,###.##", v) + "%"
}
