package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/diag"
)

func assemblyOf(t *testing.T, units map[string]*SourceUnit) *InlineAssembly {
	t.Helper()
	pause := contractNamed(t, units, "Token").Functions()[1]
	require.NotNil(t, pause.Body())
	asm, ok := pause.Body().Statements()[0].(*InlineAssembly)
	require.True(t, ok)
	return asm
}

func TestYulSwitch_FromCompilerOutput(t *testing.T) {
	files := richUnit().Build()
	units := buildAll(t, newTestResolver(), files...)
	asm := assemblyOf(t, units)
	assert.Equal(t, "paris", asm.EVMVersion())

	body := asm.Body()
	require.Len(t, body.Statements(), 1)
	sw, ok := body.Statements()[0].(*YulSwitch)
	require.True(t, ok)

	call, ok := sw.Expression().(*YulFunctionCall)
	require.True(t, ok)
	assert.Equal(t, "calldatasize", call.FunctionName().Name())
	assert.Empty(t, call.Arguments())

	require.Len(t, sw.Cases(), 2)
	first, dflt := sw.Cases()[0], sw.Cases()[1]
	assert.False(t, first.IsDefault())
	assert.Equal(t, "number", first.Value().Kind())
	assert.Equal(t, "0", first.Value().Value())
	assert.True(t, dflt.IsDefault())
	assert.Nil(t, dflt.Value())
	assert.Empty(t, dflt.Body().Statements())

	src := files[1].Source
	loc := sw.ByteLocation()
	assert.Equal(t, "switch calldatasize() case 0 { } default { }", string(src[loc.Start:loc.End]))
	for _, c := range sw.Cases() {
		assert.Same(t, sw, c.Parent())
		assert.True(t, loc.Contains(c.ByteLocation()))
	}
}

// Every Solidity node is bound in the resolver; Yul nodes never are.
func TestYul_NotRegistered(t *testing.T) {
	r := newTestResolver()
	units := buildAll(t, r, richUnit().Build()...)

	var solidity int
	for n := range units["Token.sol"].Iterate() {
		if _, ok := n.(YulNode); !ok {
			solidity++
		}
	}
	assert.Equal(t, solidity, r.Bound("Token.sol"))

	var yul int
	for n := range assemblyOf(t, units).Iterate() {
		if _, ok := n.(YulNode); ok {
			yul++
		}
	}
	assert.Equal(t, 9, yul)
}

const yulProgram = `{
  "nodeType": "YulBlock", "src": "0:120:0",
  "statements": [
    {"nodeType": "YulVariableDeclaration", "src": "2:10:0",
     "variables": [{"nodeType": "YulTypedName", "src": "6:1:0", "name": "x", "type": ""}],
     "value": {"nodeType": "YulLiteral", "src": "11:1:0", "kind": "number", "value": "1", "type": ""}},
    {"nodeType": "YulAssignment", "src": "13:14:0",
     "variableNames": [{"nodeType": "YulIdentifier", "src": "13:1:0", "name": "x"}],
     "value": {"nodeType": "YulFunctionCall", "src": "18:9:0",
       "functionName": {"nodeType": "YulIdentifier", "src": "18:3:0", "name": "add"},
       "arguments": [
         {"nodeType": "YulIdentifier", "src": "22:1:0", "name": "x"},
         {"nodeType": "YulLiteral", "src": "25:1:0", "kind": "number", "value": "2", "type": ""}]}},
    {"nodeType": "YulIf", "src": "28:14:0",
     "condition": {"nodeType": "YulIdentifier", "src": "31:1:0", "name": "x"},
     "body": {"nodeType": "YulBlock", "src": "33:9:0", "statements": [{"nodeType": "YulLeave", "src": "35:5:0"}]}},
    {"nodeType": "YulForLoop", "src": "43:40:0",
     "pre": {"nodeType": "YulBlock", "src": "47:3:0", "statements": []},
     "condition": {"nodeType": "YulFunctionCall", "src": "51:9:0",
       "functionName": {"nodeType": "YulIdentifier", "src": "51:2:0", "name": "lt"},
       "arguments": [{"nodeType": "YulIdentifier", "src": "54:1:0", "name": "x"}]},
     "post": {"nodeType": "YulBlock", "src": "61:3:0", "statements": []},
     "body": {"nodeType": "YulBlock", "src": "65:18:0", "statements": [
       {"nodeType": "YulBreak", "src": "67:5:0"},
       {"nodeType": "YulContinue", "src": "73:8:0"}]}},
    {"nodeType": "YulFunctionDefinition", "src": "84:22:0", "name": "f",
     "parameters": [{"nodeType": "YulTypedName", "src": "95:1:0", "name": "a", "type": ""}],
     "returnVariables": [{"nodeType": "YulTypedName", "src": "101:1:0", "name": "b", "type": ""}],
     "body": {"nodeType": "YulBlock", "src": "103:3:0", "statements": []}},
    {"nodeType": "YulExpressionStatement", "src": "107:11:0",
     "expression": {"nodeType": "YulFunctionCall", "src": "107:11:0",
       "functionName": {"nodeType": "YulIdentifier", "src": "107:4:0", "name": "stop"},
       "arguments": []}}
  ]
}`

func buildYulProgram(t *testing.T) *YulBlock {
	t.Helper()
	raw, err := ast.DecodeYul([]byte(yulProgram))
	require.NoError(t, err)
	init := newInit(newTestResolver(), "")
	b, err := newYulBlock(init, raw.(*ast.YulBlock), nil)
	require.NoError(t, err)
	return b
}

func TestYulBlock_Statements(t *testing.T) {
	b := buildYulProgram(t)
	stmts := b.Statements()
	require.Len(t, stmts, 6)

	decl := stmts[0].(*YulVariableDeclaration)
	require.Len(t, decl.Variables(), 1)
	assert.Equal(t, "x", decl.Variables()[0].Name())
	assert.Equal(t, "1", decl.Value().(*YulLiteral).Value())

	assign := stmts[1].(*YulAssignment)
	assert.Equal(t, "x", assign.VariableNames()[0].Name())
	add := assign.Value().(*YulFunctionCall)
	assert.Equal(t, "add", add.FunctionName().Name())
	require.Len(t, add.Arguments(), 2)

	cond := stmts[2].(*YulIf)
	assert.Equal(t, "x", cond.Condition().(*YulIdentifier).Name())
	assert.IsType(t, &YulLeave{}, cond.Body().Statements()[0])

	loop := stmts[3].(*YulForLoop)
	assert.Empty(t, loop.Pre().Statements())
	assert.Equal(t, "lt", loop.Condition().(*YulFunctionCall).FunctionName().Name())
	require.Len(t, loop.Body().Statements(), 2)
	assert.IsType(t, &YulBreak{}, loop.Body().Statements()[0])
	assert.IsType(t, &YulContinue{}, loop.Body().Statements()[1])

	fn := stmts[4].(*YulFunctionDefinition)
	assert.Equal(t, "f", fn.Name())
	assert.Equal(t, "a", fn.Parameters()[0].Name())
	assert.Equal(t, "b", fn.ReturnVariables()[0].Name())

	expr := stmts[5].(*YulExpressionStatement)
	assert.Equal(t, "stop", expr.Expression().(*YulFunctionCall).FunctionName().Name())
}

func TestYulBlock_Iterate(t *testing.T) {
	b := buildYulProgram(t)

	var kinds []string
	for n := range b.Iterate() {
		kinds = append(kinds, TypeName(n))
		_, ok := n.(YulNode)
		assert.True(t, ok, "%s is not a Yul node", TypeName(n))
	}
	assert.Equal(t, []string{
		"YulBlock",
		"YulVariableDeclaration", "YulTypedName", "YulLiteral",
		"YulAssignment", "YulIdentifier", "YulFunctionCall", "YulIdentifier", "YulIdentifier", "YulLiteral",
		"YulIf", "YulIdentifier", "YulBlock", "YulLeave",
		"YulForLoop", "YulBlock", "YulFunctionCall", "YulIdentifier", "YulIdentifier", "YulBlock", "YulBlock", "YulBreak", "YulContinue",
		"YulFunctionDefinition", "YulTypedName", "YulTypedName", "YulBlock",
		"YulExpressionStatement", "YulFunctionCall", "YulIdentifier",
	}, kinds)
}

func TestYul_MissingBody(t *testing.T) {
	raw, err := ast.DecodeYul([]byte(`{"nodeType": "YulIf", "src": "0:4:0",
		"condition": {"nodeType": "YulIdentifier", "src": "3:1:0", "name": "x"}}`))
	require.NoError(t, err)

	_, err = newYulStatement(newInit(newTestResolver(), ""), raw, nil)
	require.Error(t, err)
	assert.True(t, diag.IsSchemaMismatch(err))
}

func TestYul_UnknownNodeType(t *testing.T) {
	_, err := ast.DecodeYul([]byte(`{"nodeType": "YulGoto", "src": "0:4:0"}`))
	assert.True(t, diag.IsSchemaMismatch(err))
}

func TestYulCase_LiteralValue(t *testing.T) {
	raw, err := ast.DecodeYul([]byte(`{"nodeType": "YulSwitch", "src": "0:30:0",
		"expression": {"nodeType": "YulIdentifier", "src": "7:1:0", "name": "x"},
		"cases": [
			{"nodeType": "YulCase", "src": "9:10:0",
			 "value": {"nodeType": "YulLiteral", "src": "14:4:0", "kind": "bool", "value": "true", "type": ""},
			 "body": {"nodeType": "YulBlock", "src": "19:3:0", "statements": []}}]}`))
	require.NoError(t, err)

	n, err := newYulStatement(newInit(newTestResolver(), ""), raw, nil)
	require.NoError(t, err)
	sw := n.(*YulSwitch)
	require.Len(t, sw.Cases(), 1)
	assert.Equal(t, "bool", sw.Cases()[0].Value().Kind())
	assert.Equal(t, "x", sw.Expression().(*YulIdentifier).Name())
}
