package ccgen

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"modernc.org/cc/v3"

	"github.com/kbolino/go-includecpp/cgowrap"
	"github.com/kbolino/go-includecpp/engine"
)

// builtinBase strips GNU extensions the parser does not need to see.
const builtinBase = `
#define __asm(x)
#define __asm__(x)
#define __inline
#define __inline__
#define __signed
#define __signed__
#define __const const
#define __extension__
#define __restrict
#define __restrict__
#define __volatile__
`

type Parser struct {
	matcher         engine.Matcher
	sysIncludePaths []string
}

func NewParser(matcher engine.Matcher, sysIncludePaths []string) *Parser {
	return &Parser{
		matcher:         matcher,
		sysIncludePaths: sysIncludePaths,
	}
}

// Parse parses the translation unit made of sources and collects the
// declarations the matcher lets through.
func (p *Parser) Parse(includePaths []string, sources []cc.Source) (cgowrap.Model, error) {
	cfg := &cc.Config{}
	ast, err := cc.Parse(cfg, includePaths, p.sysIncludePaths, sources)
	if err != nil {
		return cgowrap.Model{}, fmt.Errorf("parsing sources: %w", err)
	}
	return p.Walk(ast), nil
}

// Walk collects declarations from a parsed translation unit.
func (p *Parser) Walk(ast *cc.AST) cgowrap.Model {
	var model cgowrap.Model
	seen := make(map[string]bool)
	// translation_unit
	//   : external_declaration
	//   | translation_unit external_declaration
	//   ;
	for tu := ast.TranslationUnit; tu != nil; tu = tu.TranslationUnit {
		// external_declaration
		//   : function_definition
		//   | declaration
		//   ;
		decln := tu.ExternalDeclaration.Declaration
		if decln == nil {
			// function definition, not mere declaration
			continue
		}
		fileName := decln.Position().Filename
		p.collectTags(&model, decln, fileName, seen)
		// declaration
		//   : declaration_specifiers ';'
		//   | declaration_specifiers init_declarator_list ';'
		//   ;
		typedef := isTypedef(decln.DeclarationSpecifiers)
		// init_declarator_list
		//   : init_declarator
		//   | init_declarator_list ',' init_declarator
		//   ;
		for idl := decln.InitDeclaratorList; idl != nil; idl = idl.InitDeclaratorList {
			// init_declarator
			//   : declarator
			//   | declarator '=' initializer
			//   ;
			idecl := idl.InitDeclarator
			if idecl.Initializer != nil {
				// has initializer
				continue
			}
			decl := idecl.Declarator
			name := decl.Name().String()
			if typedef {
				if decl.Pointer == nil && decl.DirectDeclarator.Case == cc.DirectDeclaratorIdent &&
					!seen["typedef "+name] && p.allowType(name, fileName) {
					seen["typedef "+name] = true
					model.Typedefs = append(model.Typedefs, cgowrap.TypedefDecl{Name: name})
				}
				continue
			}
			if seen["func "+name] {
				continue
			}
			if f, ok := p.parseFunc(decln, decl, fileName); ok {
				seen["func "+name] = true
				model.Funcs = append(model.Funcs, f)
			}
		}
	}
	sort.Slice(model.Funcs, func(i, j int) bool {
		return model.Funcs[i].Name < model.Funcs[j].Name
	})
	return model
}

func (p *Parser) parseFunc(decln *cc.Declaration, decl *cc.Declarator, fileName string) (cgowrap.FunctionDecl, bool) {
	name := decl.Name().String()
	// direct_declarator
	//   : IDENTIFIER
	//   | '(' declarator ')'
	//   | direct_declarator '[' constant_expression ']'
	//   | direct_declarator '[' ']'
	//   | direct_declarator '(' parameter_type_list ')'
	//   | direct_declarator '(' identifier_list ')'
	//   | direct_declarator '(' ')'
	//   ;
	var params []cgowrap.FunctionParam
	ddecl := decl.DirectDeclarator
	switch ddecl.Case {
	case cc.DirectDeclaratorFuncParam, cc.DirectDeclaratorFuncIdent:
		if inner := ddecl.DirectDeclarator; inner == nil || inner.Case != cc.DirectDeclaratorIdent {
			log.Debugf("ignoring function pointer declaration %s at %s", name, decl.Position())
			return cgowrap.FunctionDecl{}, false
		}
	default:
		log.Debugf("ignoring non-function declaration %s at %s", name, decl.Position())
		return cgowrap.FunctionDecl{}, false
	}
	log.Debugf("found function %s at %s", name, decl.Position())
	if !p.allowFunction(name, fileName) {
		return cgowrap.FunctionDecl{}, false
	}
	if ddecl.Case == cc.DirectDeclaratorFuncIdent {
		if ddecl.IdentifierList != nil {
			log.Debugf("skipping K&R style function %s", name)
			return cgowrap.FunctionDecl{}, false
		}
	} else {
		// parameter_type_list
		//   : parameter_list
		//   | parameter_list ',' ELLIPSIS
		//   ;
		switch ddecl.ParameterTypeList.Case {
		case cc.ParameterTypeListList:
			var err error
			params, err = makeFuncParams(ddecl.ParameterTypeList.ParameterList)
			if err != nil {
				log.Debugf("skipping function %s due to error making parameters: %s", name, err)
				return cgowrap.FunctionDecl{}, false
			}
		case cc.ParameterTypeListVar:
			log.Debugf("ignoring varargs function %s", name)
			return cgowrap.FunctionDecl{}, false
		}
	}
	returnType, err := returnTypeName(decln.DeclarationSpecifiers, decl.Pointer)
	if err != nil {
		log.Debugf("skipping function %s due to error computing return type: %s", name, err)
		return cgowrap.FunctionDecl{}, false
	}
	return cgowrap.FunctionDecl{
		Name:   name,
		Return: returnType,
		Params: params,
	}, true
}

// collectTags records struct, union and enum definitions found in a
// declaration's specifiers.
func (p *Parser) collectTags(model *cgowrap.Model, decln *cc.Declaration, fileName string, seen map[string]bool) {
	// declaration_specifiers
	//   : storage_class_specifier
	//   | storage_class_specifier declaration_specifiers
	//   | type_specifier
	//   | type_specifier declaration_specifiers
	//   | type_qualifier
	//   | type_qualifier declaration_specifiers
	//   ;
	for ds := decln.DeclarationSpecifiers; ds != nil; ds = ds.DeclarationSpecifiers {
		ts := ds.TypeSpecifier
		if ts == nil {
			continue
		}
		switch ts.Case {
		case cc.TypeSpecifierEnum:
			if enumDecl, ok := p.parseEnum(ts.EnumSpecifier, fileName); ok && !seen["enum "+enumDecl.Name] {
				if enumDecl.Name != cgowrap.Anonymous {
					seen["enum "+enumDecl.Name] = true
				}
				model.Enums = append(model.Enums, enumDecl)
			}
		case cc.TypeSpecifierStructOrUnion:
			if structDecl, ok := p.parseStruct(ts.StructOrUnionSpecifier, fileName); ok {
				key := "struct " + structDecl.Name
				if structDecl.Union {
					key = "union " + structDecl.Name
				}
				if !seen[key] {
					seen[key] = true
					model.Structs = append(model.Structs, structDecl)
				}
			}
		}
	}
}

func (p *Parser) parseEnum(es *cc.EnumSpecifier, fileName string) (cgowrap.EnumDecl, bool) {
	// enum_specifier
	//   : ENUM '{' enumerator_list '}'
	//   | ENUM IDENTIFIER '{' enumerator_list '}'
	//   | ENUM IDENTIFIER
	//   ;
	if es == nil || es.Case != cc.EnumSpecifierDef {
		return cgowrap.EnumDecl{}, false
	}
	name := es.Token2.String()
	if name == "" {
		name = cgowrap.Anonymous
	}
	log.Debugf("found enum %s at %s", name, es.Position())
	if name != cgowrap.Anonymous && !p.allowType(name, fileName) {
		return cgowrap.EnumDecl{}, false
	}
	// enumerator_list
	//   : enumerator
	//   | enumerator_list ',' enumerator
	//   ;
	// enumerator
	//   : IDENTIFIER
	//   | IDENTIFIER '=' constant_expression
	//   ;
	var constants []string
	for el := es.EnumeratorList; el != nil; el = el.EnumeratorList {
		constant := el.Enumerator.Token.String()
		if name == cgowrap.Anonymous && !p.allowType(constant, fileName) {
			continue
		}
		constants = append(constants, constant)
	}
	if len(constants) == 0 {
		return cgowrap.EnumDecl{}, false
	}
	return cgowrap.EnumDecl{
		Name:      name,
		Constants: constants,
	}, true
}

func (p *Parser) parseStruct(sus *cc.StructOrUnionSpecifier, fileName string) (cgowrap.StructDecl, bool) {
	// struct_or_union_specifier
	//   : struct_or_union IDENTIFIER '{' struct_declaration_list '}'
	//   | struct_or_union '{' struct_declaration_list '}'
	//   | struct_or_union IDENTIFIER
	//   ;
	if sus == nil || sus.StructDeclarationList == nil {
		return cgowrap.StructDecl{}, false
	}
	name := sus.Token.String()
	if name == "" {
		return cgowrap.StructDecl{}, false
	}
	log.Debugf("found struct %s at %s", name, sus.Position())
	if !p.allowType(name, fileName) {
		return cgowrap.StructDecl{}, false
	}
	return cgowrap.StructDecl{
		Name:  name,
		Union: sus.StructOrUnion.Case == cc.StructOrUnionUnion,
	}, true
}

func isTypedef(declSpec *cc.DeclarationSpecifiers) bool {
	for ds := declSpec; ds != nil; ds = ds.DeclarationSpecifiers {
		if sc := ds.StorageClassSpecifier; sc != nil && sc.Case == cc.StorageClassSpecifierTypedef {
			return true
		}
	}
	return false
}

func (p *Parser) allowType(name, fileName string) bool {
	if p.matcher.Empty() {
		return p.userDecl(name, fileName)
	}
	return p.matcher.MatchType(name)
}

func (p *Parser) allowFunction(name, fileName string) bool {
	if p.matcher.Empty() {
		return p.userDecl(name, fileName)
	}
	return p.matcher.MatchFunction(name)
}

// userDecl reports whether a declaration comes from the user's headers
// rather than from system headers or the predefined sources.
func (p *Parser) userDecl(name, fileName string) bool {
	if strings.HasPrefix(name, "__") || fileName == "" || strings.HasPrefix(fileName, "<") {
		return false
	}
	for _, dir := range p.sysIncludePaths {
		if dir == "" {
			continue
		}
		if rel, err := filepath.Rel(dir, fileName); err == nil && !strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel) {
			return false
		}
	}
	return true
}
