package cgowrap

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// TypeConv maps one C type to the Go type exposed by the bindings and the cgo
// type used at the call site.
type TypeConv struct {
	GoType  string
	CgoType string
	// String marks const char * values passed as Go strings.
	String bool
	// Unsafe marks pointers whose Go and cgo element types differ, so the
	// conversion must go through unsafe.Pointer.
	Unsafe bool

	alias bool
}

type ConvertTypeOpts int32

const (
	ConvertTypeAutoPtr ConvertTypeOpts = 1 << iota
	ConvertTypeAutoStructEnum
	ConvertTypeAutoString
	ConvertTypeAutoTypedef

	ConvertTypeDefault = ConvertTypeAutoPtr | ConvertTypeAutoStructEnum | ConvertTypeAutoString | ConvertTypeAutoTypedef
)

// TypeMap is keyed by canonical C type spelling, see CanonicalType.
type TypeMap map[string]TypeConv

// DefaultTypeMap covers the C scalar types and the <stdint.h>/<stddef.h>
// typedefs.
func DefaultTypeMap() TypeMap {
	m := TypeMap{
		"void":   {},
		"void *": {GoType: "unsafe.Pointer", CgoType: "unsafe.Pointer"},
		"bool":   {GoType: "bool", CgoType: "C.bool"},
		"float":  {GoType: "float32", CgoType: "C.float"},
		"double": {GoType: "float64", CgoType: "C.double"},
		"size_t": {GoType: "uint64", CgoType: "C.size_t"},

		"char":          {GoType: "int8", CgoType: "C.char"},
		"signed char":   {GoType: "int8", CgoType: "C.schar"},
		"unsigned char": {GoType: "uint8", CgoType: "C.uchar"},
	}
	for _, t := range []struct {
		spellings []string
		goType    string
		cgoType   string
	}{
		{[]string{"short", "short int", "signed short", "signed short int"}, "int16", "C.short"},
		{[]string{"unsigned short", "unsigned short int"}, "uint16", "C.ushort"},
		{[]string{"int", "signed", "signed int"}, "int32", "C.int"},
		{[]string{"unsigned", "unsigned int"}, "uint32", "C.uint"},
		{[]string{"long", "long int", "signed long", "signed long int"}, "int64", "C.long"},
		{[]string{"unsigned long", "unsigned long int"}, "uint64", "C.ulong"},
		{[]string{"long long", "long long int", "signed long long", "signed long long int"}, "int64", "C.longlong"},
		{[]string{"unsigned long long", "unsigned long long int"}, "uint64", "C.ulonglong"},
	} {
		for _, s := range t.spellings {
			m[s] = TypeConv{GoType: t.goType, CgoType: t.cgoType}
		}
	}
	for _, bits := range []string{"8", "16", "32", "64"} {
		m["int"+bits+"_t"] = TypeConv{GoType: "int" + bits, CgoType: "C.int" + bits + "_t"}
		m["uint"+bits+"_t"] = TypeConv{GoType: "uint" + bits, CgoType: "C.uint" + bits + "_t"}
	}
	return m
}

// Merge returns a copy of m with other's entries added, other winning.
func (m TypeMap) Merge(other TypeMap) TypeMap {
	out := make(TypeMap, len(m)+len(other))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// CanonicalType strips qualifiers and normalizes spacing, so "const char*"
// and "char * const" both become "char *".
func CanonicalType(cType string) string {
	fields := strings.Fields(strings.ReplaceAll(cType, "*", " * "))
	var base []string
	stars := 0
	for _, f := range fields {
		switch f {
		case "const", "volatile", "restrict", "__restrict", "__const":
		case "*":
			stars++
		default:
			base = append(base, f)
		}
	}
	s := strings.Join(base, " ")
	if stars > 0 {
		s += " " + strings.Repeat("*", stars)
	}
	return s
}

func isConstCharPtr(cType string) bool {
	fields := strings.Fields(strings.ReplaceAll(cType, "*", " * "))
	if CanonicalType(cType) != "char *" {
		return false
	}
	for _, f := range fields {
		if f == "*" {
			return false
		}
		if f == "const" {
			return true
		}
	}
	return false
}

type converter struct {
	typeMap TypeMap
	// names maps declarations emitted by the bindings ("struct point",
	// "enum color", "vec2") to their Go names.
	names map[string]string
}

func (c *converter) convertType(cType string, options ConvertTypeOpts) (TypeConv, error) {
	log.Debugf("converting type '%s'", cType)
	if options&ConvertTypeAutoString != 0 && isConstCharPtr(cType) {
		return TypeConv{GoType: "string", CgoType: "*C.char", String: true}, nil
	}
	cType = CanonicalType(cType)
	if mapping, ok := c.typeMap[cType]; ok {
		return mapping, nil
	}
	if options&ConvertTypeAutoPtr != 0 && strings.HasSuffix(cType, "*") {
		elem := strings.TrimSpace(strings.TrimSuffix(cType, "*"))
		raw, err := c.convertType(elem, options&^ConvertTypeAutoString)
		if err != nil {
			return TypeConv{}, fmt.Errorf("resolving type '%s': %w", elem, err)
		}
		if raw.GoType == "" {
			return TypeConv{}, fmt.Errorf("pointer to '%s' has no Go type", elem)
		}
		return TypeConv{
			GoType:  "*" + raw.GoType,
			CgoType: "*" + raw.CgoType,
			Unsafe:  raw.Unsafe || (!raw.alias && raw.GoType != raw.CgoType),
		}, nil
	}
	if name, ok := c.names[cType]; ok {
		return TypeConv{GoType: name, CgoType: cgoName(cType), alias: true}, nil
	}
	if options&ConvertTypeAutoStructEnum != 0 {
		for _, prefix := range []string{"struct ", "union ", "enum "} {
			if strings.HasPrefix(cType, prefix) {
				name := cgoName(cType)
				return TypeConv{GoType: name, CgoType: name, alias: true}, nil
			}
		}
	}
	if options&ConvertTypeAutoTypedef != 0 && isIdentifier(cType) {
		return TypeConv{GoType: "C." + cType, CgoType: "C." + cType, alias: true}, nil
	}
	return TypeConv{}, fmt.Errorf("unhandled C type '%s'", cType)
}

// cgoName spells a canonical C type name the way cgo exposes it.
func cgoName(cType string) string {
	for _, prefix := range []string{"struct ", "union ", "enum "} {
		if strings.HasPrefix(cType, prefix) {
			return "C." + strings.TrimSuffix(prefix, " ") + "_" + strings.TrimPrefix(cType, prefix)
		}
	}
	return "C." + cType
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_', r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}

// ParseTypeMap reads a CSV type map file, one 'ctype,gotype,cgotype' mapping
// per line; empty lines are ignored and comment lines start with #.
func ParseTypeMap(fileName string) (TypeMap, error) {
	file, err := os.Open(fileName)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer file.Close()
	return ReadTypeMap(file)
}

func ReadTypeMap(r io.Reader) (TypeMap, error) {
	typeMap := make(TypeMap)
	reader := csv.NewReader(r)
	reader.Comment = '#'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = 3
	reader.ReuseRecord = true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, fmt.Errorf("CSV read error: %w", err)
		}
		cType := CanonicalType(record[0])
		if cType == "" {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("empty C type on line %d", line)
		}
		typeMap[cType] = TypeConv{
			GoType:  strings.TrimSpace(record[1]),
			CgoType: strings.TrimSpace(record[2]),
		}
	}
	return typeMap, nil
}
