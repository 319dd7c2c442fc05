package testutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

type obj = map[string]any

// writer accumulates source text and reports solc src strings for the
// text written since a mark.
type writer struct {
	buf  bytes.Buffer
	file int
	ids  *IDs
}

func (w *writer) pos() int       { return w.buf.Len() }
func (w *writer) write(s string) { w.buf.WriteString(s) }
func (w *writer) src(start int) string {
	return fmt.Sprintf("%d:%d:%d", start, w.pos()-start, w.file)
}

// token writes s and returns its src.
func (w *writer) token(s string) string {
	start := w.pos()
	w.write(s)
	return w.src(start)
}

func (w *writer) node(id int64, nodeType, src string) obj {
	return obj{"id": id, "nodeType": nodeType, "src": src}
}

func (w *writer) yul(nodeType, src string) obj {
	return obj{"nodeType": nodeType, "src": src, "nativeSrc": src}
}

func (f *File) render() SourceFile {
	w := &writer{file: f.index, ids: f.unit.ids}
	var nodes []any
	exported := make(map[string][]int64)

	if f.license != "" {
		w.write("// SPDX-License-Identifier: " + f.license + "\n")
	}
	src := w.token("pragma solidity ^0.8.20;")
	pragma := w.node(w.ids.Next(), "PragmaDirective", src)
	pragma["literals"] = []string{"solidity", "^", "0.8", ".20"}
	nodes = append(nodes, pragma)
	w.write("\n")

	for _, imp := range f.imports {
		src := w.token(`import "` + imp.path + `";`)
		n := w.node(w.ids.Next(), "ImportDirective", src)
		n["file"] = imp.path
		n["absolutePath"] = imp.path
		n["unitAlias"] = ""
		n["sourceUnit"] = imp.id
		n["scope"] = f.id
		n["symbolAliases"] = []any{}
		nodes = append(nodes, n)
		w.write("\n")
		for _, c := range imp.decls {
			exported[c.name] = []int64{c.id}
		}
	}

	for _, c := range f.decls {
		w.write("\n")
		nodes = append(nodes, c.render(w))
		w.write("\n")
		exported[c.name] = []int64{c.id}
	}
	for _, m := range f.free {
		w.write("\n")
		nodes = append(nodes, renderFunction(w, nil, m))
		w.write("\n")
		exported[m.name] = []int64{m.id}
	}

	root := w.node(f.id, "SourceUnit", fmt.Sprintf("0:%d:%d", w.pos(), f.index))
	root["absolutePath"] = f.path
	root["exportedSymbols"] = exported
	root["nodes"] = nodes
	if f.license != "" {
		root["license"] = f.license
	}
	data, err := json.Marshal(root)
	if err != nil {
		panic(err)
	}
	return SourceFile{
		Path:   f.path,
		Index:  f.index,
		Source: append([]byte(nil), w.buf.Bytes()...),
		AST:    data,
	}
}

func (c *Contract) render(w *writer) obj {
	var doc any
	if c.doc != "" {
		start := w.pos()
		w.write("/// " + c.doc)
		d := w.node(w.ids.Next(), "StructuredDocumentation", w.src(start))
		d["text"] = c.doc
		doc = d
		w.write("\n")
	}

	start := w.pos()
	keyword := c.kind
	if c.corrupt {
		keyword = "kontract"
	}
	if c.abstract {
		keyword = "abstract " + keyword
	}
	w.write(keyword + " ")
	nameLoc := w.token(c.name)

	var bases []any
	for i, b := range c.bases {
		if i == 0 {
			w.write(" is ")
		} else {
			w.write(", ")
		}
		src := w.token(b.name)
		path := w.node(w.ids.Next(), "IdentifierPath", src)
		path["name"] = b.name
		path["referencedDeclaration"] = b.id
		spec := w.node(w.ids.Next(), "InheritanceSpecifier", src)
		spec["baseName"] = path
		bases = append(bases, spec)
	}
	w.write(" {\n")

	var members []any
	for _, m := range c.members {
		w.write("    ")
		members = append(members, c.renderMember(w, m))
		w.write("\n")
	}
	w.write("}")

	n := w.node(c.id, "ContractDefinition", w.src(start))
	n["name"] = c.name
	n["nameLocation"] = nameLoc
	n["abstract"] = c.abstract
	n["contractKind"] = c.kind
	n["linearizedBaseContracts"] = c.Linearization()
	n["baseContracts"] = orEmpty(bases)
	n["documentation"] = doc
	n["nodes"] = orEmpty(members)
	n["scope"] = c.file.id
	if !c.unknown {
		n["fullyImplemented"] = c.fullyImplemented()
	}
	return n
}

func orEmpty(xs []any) []any {
	if xs == nil {
		return []any{}
	}
	return xs
}

func (c *Contract) renderMember(w *writer, m *member) obj {
	switch m.kind {
	case memberEnum:
		return renderEnum(w, c, m)
	case memberStruct:
		start := w.pos()
		w.write("struct ")
		nameLoc := w.token(m.name)
		w.write(" {")
		var fields []any
		for _, v := range m.vars {
			w.write(" ")
			fields = append(fields, renderVar(w, v, c.id, false))
			w.write(";")
		}
		w.write(" }")
		n := w.node(m.id, "StructDefinition", w.src(start))
		n["name"] = m.name
		n["nameLocation"] = nameLoc
		n["canonicalName"] = c.name + "." + m.name
		n["visibility"] = "public"
		n["members"] = orEmpty(fields)
		return n
	case memberEvent, memberError:
		start := w.pos()
		nodeType, keyword := "EventDefinition", "event "
		if m.kind == memberError {
			nodeType, keyword = "ErrorDefinition", "error "
		}
		w.write(keyword)
		nameLoc := w.token(m.name)
		params := renderParams(w, m.vars, m.id)
		w.write(";")
		n := w.node(m.id, nodeType, w.src(start))
		n["name"] = m.name
		n["nameLocation"] = nameLoc
		n["parameters"] = params
		if m.kind == memberEvent {
			n["anonymous"] = false
		}
		return n
	case memberStateVar:
		n := renderVarWithID(w, m.vars[0], m.id, c.id, true)
		w.write(";")
		return n
	case memberValueType:
		start := w.pos()
		w.write("type ")
		nameLoc := w.token(m.name)
		w.write(" is ")
		underlying := renderType(w, m.vars[0])
		w.write(";")
		n := w.node(m.id, "UserDefinedValueTypeDefinition", w.src(start))
		n["name"] = m.name
		n["nameLocation"] = nameLoc
		n["canonicalName"] = c.name + "." + m.name
		n["underlyingType"] = underlying
		return n
	case memberUsingFor:
		start := w.pos()
		w.write("using ")
		libSrc := w.token(m.lib.name)
		lib := w.node(w.ids.Next(), "IdentifierPath", libSrc)
		lib["name"] = m.lib.name
		lib["referencedDeclaration"] = m.lib.id
		w.write(" for ")
		typ := renderType(w, m.vars[0])
		w.write(";")
		n := w.node(m.id, "UsingForDirective", w.src(start))
		n["libraryName"] = lib
		n["typeName"] = typ
		n["global"] = false
		return n
	case memberModifier:
		start := w.pos()
		w.write("modifier ")
		nameLoc := w.token(m.name)
		params := renderParams(w, nil, m.id)
		w.write(" ")
		bodyStart := w.pos()
		w.write("{ ")
		placeholder := w.node(w.ids.Next(), "PlaceholderStatement", w.token("_;"))
		w.write(" }")
		body := w.node(w.ids.Next(), "Block", w.src(bodyStart))
		body["statements"] = []any{placeholder}
		n := w.node(m.id, "ModifierDefinition", w.src(start))
		n["name"] = m.name
		n["nameLocation"] = nameLoc
		n["visibility"] = "internal"
		n["virtual"] = false
		n["parameters"] = params
		n["body"] = body
		return n
	case memberFunction:
		return renderFunction(w, c, m)
	}
	panic(fmt.Sprintf("testutil: unknown member kind %d", m.kind))
}

func renderEnum(w *writer, c *Contract, m *member) obj {
	start := w.pos()
	w.write("enum ")
	nameLoc := w.token(m.name)
	w.write(" { ")
	var values []any
	for i, v := range m.values {
		if i > 0 {
			w.write(", ")
		}
		src := w.token(v)
		ev := w.node(w.ids.Next(), "EnumValue", src)
		ev["name"] = v
		ev["nameLocation"] = src
		values = append(values, ev)
	}
	w.write(" }")
	n := w.node(m.id, "EnumDefinition", w.src(start))
	n["name"] = m.name
	n["nameLocation"] = nameLoc
	n["canonicalName"] = c.name + "." + m.name
	n["members"] = orEmpty(values)
	return n
}

func renderFunction(w *writer, c *Contract, m *member) obj {
	fn := m.fn
	start := w.pos()
	var nameLoc string
	switch fn.kind {
	case "constructor":
		w.write("constructor")
		nameLoc = fmt.Sprintf("%d:%d:%d", start, len("constructor"), w.file)
	default:
		w.write("function ")
		nameLoc = w.token(m.name)
	}
	params := renderParams(w, fn.params, m.id)
	visibility := "public"
	if fn.kind == "freeFunction" {
		visibility = "internal"
	} else if fn.kind != "constructor" {
		w.write(" public")
	}
	if fn.virtual {
		w.write(" virtual")
	}
	var modifiers []any
	for _, name := range fn.modifiers {
		w.write(" ")
		src := w.token(name)
		path := w.node(w.ids.Next(), "IdentifierPath", src)
		path["name"] = name
		path["referencedDeclaration"] = c.modifierID(name)
		inv := w.node(w.ids.Next(), "ModifierInvocation", src)
		inv["modifierName"] = path
		inv["kind"] = "modifierInvocation"
		modifiers = append(modifiers, inv)
	}
	var returns obj
	if len(fn.returns) > 0 {
		w.write(" returns ")
		returns = renderParams(w, fn.returns, m.id)
	} else {
		returns = w.node(w.ids.Next(), "ParameterList", fmt.Sprintf("%d:0:%d", w.pos(), w.file))
		returns["parameters"] = []any{}
	}

	var body any
	if fn.body {
		w.write(" ")
		body = renderBody(w, fn)
	} else {
		w.write(";")
	}

	name := m.name
	if fn.kind == "constructor" {
		name = ""
	}
	n := w.node(m.id, "FunctionDefinition", w.src(start))
	n["name"] = name
	n["nameLocation"] = nameLoc
	n["kind"] = fn.kind
	n["visibility"] = visibility
	n["stateMutability"] = "nonpayable"
	n["virtual"] = fn.virtual
	n["implemented"] = fn.body
	n["parameters"] = params
	n["returnParameters"] = returns
	n["modifiers"] = orEmpty(modifiers)
	n["body"] = body
	return n
}

func renderBody(w *writer, fn functionSpec) obj {
	start := w.pos()
	w.write("{ ")
	var stmts []any
	if fn.assembly {
		stmts = append(stmts, renderAssembly(w))
		w.write(" ")
	}
	if fn.ret {
		stmts = append(stmts, w.node(w.ids.Next(), "Return", w.token("return;")))
		w.write(" ")
	}
	w.write("}")
	n := w.node(w.ids.Next(), "Block", w.src(start))
	n["statements"] = orEmpty(stmts)
	return n
}

// renderAssembly writes `assembly { switch calldatasize() case 0 { } default { } }`.
func renderAssembly(w *writer) obj {
	start := w.pos()
	w.write("assembly ")
	blockStart := w.pos()
	w.write("{ ")

	switchStart := w.pos()
	w.write("switch ")
	callStart := w.pos()
	fnName := w.yul("YulIdentifier", w.token("calldatasize"))
	fnName["name"] = "calldatasize"
	w.write("()")
	call := w.yul("YulFunctionCall", w.src(callStart))
	call["functionName"] = fnName
	call["arguments"] = []any{}

	w.write(" ")
	caseStart := w.pos()
	w.write("case ")
	lit := w.yul("YulLiteral", w.token("0"))
	lit["kind"] = "number"
	lit["value"] = "0"
	lit["type"] = ""
	w.write(" ")
	body0 := w.yul("YulBlock", w.token("{ }"))
	body0["statements"] = []any{}
	case0 := w.yul("YulCase", w.src(caseStart))
	case0["value"] = lit
	case0["body"] = body0

	w.write(" ")
	defaultStart := w.pos()
	w.write("default ")
	bodyDefault := w.yul("YulBlock", w.token("{ }"))
	bodyDefault["statements"] = []any{}
	caseDefault := w.yul("YulCase", w.src(defaultStart))
	caseDefault["value"] = "default"
	caseDefault["body"] = bodyDefault

	sw := w.yul("YulSwitch", w.src(switchStart))
	sw["expression"] = call
	sw["cases"] = []any{case0, caseDefault}

	w.write(" }")
	block := w.yul("YulBlock", w.src(blockStart))
	block["statements"] = []any{sw}

	n := w.node(w.ids.Next(), "InlineAssembly", w.src(start))
	n["AST"] = block
	n["evmVersion"] = "paris"
	n["externalReferences"] = []any{}
	return n
}

func renderParams(w *writer, vars []Var, scope int64) obj {
	start := w.pos()
	w.write("(")
	var params []any
	for i, v := range vars {
		if i > 0 {
			w.write(", ")
		}
		params = append(params, renderVar(w, v, scope, false))
	}
	w.write(")")
	n := w.node(w.ids.Next(), "ParameterList", w.src(start))
	n["parameters"] = orEmpty(params)
	return n
}

func renderVar(w *writer, v Var, scope int64, state bool) obj {
	return renderVarWithID(w, v, w.ids.Next(), scope, state)
}

func renderVarWithID(w *writer, v Var, id, scope int64, state bool) obj {
	start := w.pos()
	typ := renderType(w, v)
	nameLoc := "-1:-1:-1"
	if v.Name != "" {
		w.write(" ")
		nameLoc = w.token(v.Name)
	}
	n := w.node(id, "VariableDeclaration", w.src(start))
	n["name"] = v.Name
	n["nameLocation"] = nameLoc
	n["constant"] = false
	n["mutability"] = "mutable"
	n["stateVariable"] = state
	n["storageLocation"] = "default"
	n["visibility"] = "internal"
	n["typeName"] = typ
	n["typeDescriptions"] = typ["typeDescriptions"]
	n["scope"] = scope
	return n
}

func renderType(w *writer, v Var) obj {
	if v.Of != nil {
		src := w.token(v.Of.name)
		path := w.node(w.ids.Next(), "IdentifierPath", src)
		path["name"] = v.Of.name
		path["referencedDeclaration"] = v.Of.id
		n := w.node(w.ids.Next(), "UserDefinedTypeName", src)
		n["pathNode"] = path
		n["referencedDeclaration"] = v.Of.id
		n["typeDescriptions"] = obj{
			"typeIdentifier": fmt.Sprintf("t_contract$_%s_$%d", v.Of.name, v.Of.id),
			"typeString":     v.Of.kind + " " + v.Of.name,
		}
		return n
	}
	typ := v.Type
	if typ == "" {
		typ = "uint256"
	}
	n := w.node(w.ids.Next(), "ElementaryTypeName", w.token(typ))
	n["name"] = typ
	n["typeDescriptions"] = obj{
		"typeIdentifier": "t_" + strings.ReplaceAll(typ, " ", "_"),
		"typeString":     typ,
	}
	return n
}
