// Package query provides a small combinator tree for composing SQL
// predicates with positional parameters. Filters arriving from the API are
// assembled into an Expr tree and rendered once, keeping user input out of
// the SQL text entirely.
package query

import (
	"strings"
)

// Expr is a SQL boolean expression fragment. Implementations write
// themselves into the builder, appending their parameters in order.
type Expr interface {
	build(sb *strings.Builder, args *[]any)
}

// Build renders an expression tree into SQL text and its parameter list.
// A nil expression renders to the empty string.
func Build(e Expr) (string, []any) {
	if e == nil {
		return "", nil
	}
	var sb strings.Builder
	var args []any
	e.build(&sb, &args)
	return sb.String(), args
}

type raw struct {
	sql  string
	args []any
}

func (r raw) build(sb *strings.Builder, args *[]any) {
	sb.WriteString(r.sql)
	*args = append(*args, r.args...)
}

// Raw wraps literal SQL with its parameters. The text must use ?
// placeholders matching args in order.
func Raw(sql string, args ...any) Expr {
	return raw{sql: sql, args: args}
}

// Eq compares a column against a bound value.
func Eq(col string, v any) Expr {
	return raw{sql: col + " = ?", args: []any{v}}
}

// ColCmp compares two columns with the given operator, e.g.
// ColCmp("images.width", ">", "images.height").
func ColCmp(left, op, right string) Expr {
	return raw{sql: left + " " + op + " " + right}
}

type junction struct {
	op    string
	exprs []Expr
}

func (j junction) build(sb *strings.Builder, args *[]any) {
	parts := make([]Expr, 0, len(j.exprs))
	for _, e := range j.exprs {
		if e != nil {
			parts = append(parts, e)
		}
	}
	if len(parts) == 1 {
		parts[0].build(sb, args)
		return
	}
	sb.WriteByte('(')
	for i, e := range parts {
		if i > 0 {
			sb.WriteString(j.op)
		}
		e.build(sb, args)
	}
	sb.WriteByte(')')
}

// And joins expressions with AND, skipping nils. Nil-only input renders
// to nothing, so optional filters can be passed unconditionally.
func And(exprs ...Expr) Expr {
	if allNil(exprs) {
		return nil
	}
	return junction{op: " AND ", exprs: exprs}
}

// Or joins expressions with OR, skipping nils.
func Or(exprs ...Expr) Expr {
	if allNil(exprs) {
		return nil
	}
	return junction{op: " OR ", exprs: exprs}
}

func allNil(exprs []Expr) bool {
	for _, e := range exprs {
		if e != nil {
			return false
		}
	}
	return true
}

type not struct{ inner Expr }

func (n not) build(sb *strings.Builder, args *[]any) {
	sb.WriteString("NOT (")
	n.inner.build(sb, args)
	sb.WriteByte(')')
}

// Not negates an expression. Not(nil) is nil.
func Not(e Expr) Expr {
	if e == nil {
		return nil
	}
	return not{inner: e}
}

// InFold matches a column against a value set case-insensitively.
// Returns nil for an empty set.
func InFold(col string, values []string) Expr {
	if len(values) == 0 {
		return nil
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = strings.ToLower(v)
	}
	return raw{
		sql:  "LOWER(" + col + ") IN (" + Placeholders(len(values)) + ")",
		args: args,
	}
}

// Exists wraps a subquery in EXISTS. The subquery text uses ? placeholders.
func Exists(sub string, args ...any) Expr {
	return raw{sql: "EXISTS (" + sub + ")", args: args}
}

// NotExists wraps a subquery in NOT EXISTS.
func NotExists(sub string, args ...any) Expr {
	return raw{sql: "NOT EXISTS (" + sub + ")", args: args}
}

// Placeholders returns n comma-separated ? markers.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(2*n - 1)
	for i := range n {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteByte('?')
	}
	return sb.String()
}

// Args converts a string slice to lowercase bound arguments, matching the
// folding applied by InFold. Useful for subqueries built with Placeholders.
func Args(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = strings.ToLower(v)
	}
	return args
}
