package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildNil(t *testing.T) {
	sql, args := Build(nil)
	assert.Empty(t, sql)
	assert.Nil(t, args)
}

func TestEq(t *testing.T) {
	sql, args := Build(Eq("images.image_id", int64(7)))
	assert.Equal(t, "images.image_id = ?", sql)
	assert.Equal(t, []any{int64(7)}, args)
}

func TestAndSkipsNils(t *testing.T) {
	sql, args := Build(And(nil, Eq("a", 1), nil, Eq("b", 2)))
	assert.Equal(t, "(a = ? AND b = ?)", sql)
	assert.Equal(t, []any{1, 2}, args)
}

func TestAndSingleOperandNoParens(t *testing.T) {
	sql, _ := Build(And(nil, Eq("a", 1)))
	assert.Equal(t, "a = ?", sql)
}

func TestAndAllNil(t *testing.T) {
	assert.Nil(t, And(nil, nil))
	assert.Nil(t, Or(nil))
	assert.Nil(t, Not(nil))
}

func TestOrNesting(t *testing.T) {
	e := Or(
		Not(Raw("images.is_nsfw")),
		Exists("SELECT 1 FROM tags WHERE tags.is_nsfw AND LOWER(tags.name) IN (?)", "ero"),
	)
	sql, args := Build(e)
	assert.Equal(t,
		"(NOT (images.is_nsfw) OR EXISTS (SELECT 1 FROM tags WHERE tags.is_nsfw AND LOWER(tags.name) IN (?)))",
		sql)
	assert.Equal(t, []any{"ero"}, args)
}

func TestInFold(t *testing.T) {
	sql, args := Build(InFold("tags.name", []string{"Maid", "UNIFORM"}))
	assert.Equal(t, "LOWER(tags.name) IN (?,?)", sql)
	assert.Equal(t, []any{"maid", "uniform"}, args)

	assert.Nil(t, InFold("tags.name", nil))
}

func TestColCmp(t *testing.T) {
	sql, args := Build(ColCmp("images.width", ">", "images.height"))
	assert.Equal(t, "images.width > images.height", sql)
	assert.Empty(t, args)
}

func TestParameterOrderAcrossTree(t *testing.T) {
	e := And(
		Eq("x", 1),
		Or(Eq("y", 2), Eq("z", 3)),
		NotExists("SELECT 1 FROM t WHERE id = ?", 4),
	)
	sql, args := Build(e)
	assert.Equal(t, "(x = ? AND (y = ? OR z = ?) AND NOT EXISTS (SELECT 1 FROM t WHERE id = ?))", sql)
	assert.Equal(t, []any{1, 2, 3, 4}, args)
}

func TestPlaceholders(t *testing.T) {
	assert.Equal(t, "", Placeholders(0))
	assert.Equal(t, "?", Placeholders(1))
	assert.Equal(t, "?,?,?", Placeholders(3))
}

func TestArgsFolds(t *testing.T) {
	assert.Equal(t, []any{"maid", "oppai"}, Args([]string{"MAID", "Oppai"}))
}
