// Package cgowrap holds the declaration model shared by the binding
// generators and renders it as Go source that wraps the C API through cgo.
package cgowrap

// Anonymous names enums declared without a tag.
const Anonymous = "(anonymous)"

type EnumDecl struct {
	Name      string
	Constants []string
}

type FunctionDecl struct {
	Name   string
	Return string
	Params []FunctionParam
}

type FunctionParam struct {
	Name string
	Type string
}

type StructDecl struct {
	Name  string
	Union bool
}

// TypedefDecl is a typedef whose name is exposed as a Go alias.
type TypedefDecl struct {
	Name string
}

// Model is everything a generator found worth wrapping, in declaration
// order.
type Model struct {
	Enums    []EnumDecl
	Funcs    []FunctionDecl
	Structs  []StructDecl
	Typedefs []TypedefDecl
}
