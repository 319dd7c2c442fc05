package ast

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solir/internal/diag"
	"github.com/roach88/solir/internal/testutil"
)

func TestParseSrc(t *testing.T) {
	tests := []struct {
		in      string
		want    Src
		wantErr bool
	}{
		{in: "0:10:0", want: Src{Offset: 0, Length: 10, FileIndex: 0}},
		{in: "120:7:3", want: Src{Offset: 120, Length: 7, FileIndex: 3}},
		{in: "-1:-1:-1", want: Src{Offset: -1, Length: -1, FileIndex: -1}},
		{in: "1:2", wantErr: true},
		{in: "a:2:0", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSrc(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSrc_JSON(t *testing.T) {
	var s Src
	require.NoError(t, json.Unmarshal([]byte(`"5:3:1"`), &s))
	assert.Equal(t, 8, s.End())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"5:3:1"`, string(data))
}

func TestDecode_UnknownNodeType(t *testing.T) {
	_, err := Decode([]byte(`{"id": 4, "nodeType": "FutureStatement", "src": "0:1:0"}`))
	require.Error(t, err)
	assert.True(t, diag.IsSchemaMismatch(err))

	var de *diag.Error
	require.ErrorAs(t, err, &de)
	assert.Equal(t, int64(4), de.NodeID)
	assert.Equal(t, "FutureStatement", de.Kind)
}

func TestDecode_OpaqueKeepsJSON(t *testing.T) {
	in := `{"id": 9, "nodeType": "Return", "src": "3:7:0", "expression": null}`
	n, err := Decode([]byte(in))
	require.NoError(t, err)

	o, ok := n.(*Opaque)
	require.True(t, ok)
	assert.Equal(t, NodeID(9), o.NodeID())
	assert.Equal(t, "Return", o.NodeType())
	assert.JSONEq(t, in, string(o.Raw))
}

func TestDocumentation_Forms(t *testing.T) {
	var legacy Documentation
	require.NoError(t, json.Unmarshal([]byte(`"@notice old style"`), &legacy))
	assert.Equal(t, "@notice old style", legacy.Text)
	assert.Nil(t, legacy.Node)

	var structured Documentation
	require.NoError(t, json.Unmarshal([]byte(`{"id": 2, "nodeType": "StructuredDocumentation", "src": "0:10:0", "text": "hi"}`), &structured))
	require.NotNil(t, structured.Node)
	assert.Equal(t, "hi", structured.Node.Text)

	var none Documentation
	require.NoError(t, json.Unmarshal([]byte(`null`), &none))
	assert.False(t, none.Present())

	var wrong Documentation
	err := json.Unmarshal([]byte(`{"id": 3, "nodeType": "Block", "src": "0:2:0", "statements": []}`), &wrong)
	assert.True(t, diag.IsSchemaMismatch(err))
}

func TestDecodeSourceUnit_Fixture(t *testing.T) {
	u := testutil.NewUnit()
	a := u.File("A.sol")
	x := a.Contract("X", testutil.Documented("Base."))
	u.File("B.sol").Import(a).Contract("Y", testutil.Inherits(x))
	files := u.Build()

	su, err := DecodeSourceUnit(files[1].AST)
	require.NoError(t, err)
	assert.Equal(t, "B.sol", su.AbsolutePath)
	require.NotNil(t, su.License)
	assert.Equal(t, "MIT", *su.License)
	require.Len(t, su.Nodes, 3)

	imp, ok := su.Nodes[1].(*ImportDirective)
	require.True(t, ok)
	assert.Equal(t, NodeID(a.ID()), imp.SourceUnit)

	y, ok := su.Nodes[2].(*ContractDefinition)
	require.True(t, ok)
	assert.Equal(t, ContractKindContract, y.ContractKind)
	assert.Equal(t, []NodeID{NodeID(y.ID), NodeID(x.ID())}, y.LinearizedBaseContracts)
	require.Len(t, y.BaseContracts, 1)
	require.NotNil(t, y.FullyImplemented)
	assert.True(t, *y.FullyImplemented)

	// the name location must point at the name in the source text
	require.NotNil(t, y.NameLocation)
	loc := *y.NameLocation
	assert.Equal(t, "Y", string(files[1].Source[loc.Offset:loc.End()]))
}

func TestDecodeSourceUnit_NotASourceUnit(t *testing.T) {
	_, err := DecodeSourceUnit([]byte(`{"id": 1, "nodeType": "Block", "src": "0:2:0", "statements": []}`))
	assert.Error(t, err)
}

func TestLoadStandardOutput(t *testing.T) {
	u := testutil.NewUnit()
	u.File("Z.sol").Contract("Z")
	u.File("A.sol").Contract("A")

	out, err := LoadStandardOutput(strings.NewReader("Compiler run successful\n" + string(u.StandardJSON())))
	require.NoError(t, err)
	assert.Equal(t, []string{"Z.sol", "A.sol"}, out.Paths())
	assert.False(t, out.HasErrors())
	assert.Equal(t, "Z.sol", out.Sources["Z.sol"].AST.AbsolutePath)
}

func TestLoadStandardOutput_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"no json", "solc: command not found"},
		{"missing ast", `{"sources": {"A.sol": {"id": 0}}}`},
		{"malformed", `{"sources": [}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadStandardOutput(strings.NewReader(tt.in))
			assert.Error(t, err)
		})
	}
}

func TestStandardOutput_HasErrors(t *testing.T) {
	out := &StandardOutput{Errors: []CompilerMessage{
		{Severity: "warning", Message: "unused variable"},
		{Severity: "error", Type: "TypeError", Message: "bad"},
	}}
	assert.True(t, out.HasErrors())
}
