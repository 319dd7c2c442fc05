package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solir/internal/resolver"
	"github.com/roach88/solir/internal/store"
	"github.com/roach88/solir/internal/testutil"
)

// project is a compiled unit on disk: sources under dir, the standard-JSON
// output next to them and an index path that does not exist yet.
type project struct {
	dir    string
	output string
	db     string
}

// newProject writes A.sol (abstract Ownable), B.sol (Token is Ownable),
// C.sol (Vault is Token) and D.sol (library Util).
func newProject(t *testing.T) project {
	t.Helper()
	u := testutil.NewUnit()
	a := u.File("A.sol")
	ownable := a.Contract("Ownable", testutil.Abstract()).Function("owner")
	b := u.File("B.sol").Import(a)
	token := b.Contract("Token", testutil.Inherits(ownable)).Enum("State", "Active", "Paused")
	c := u.File("C.sol").Import(b)
	c.Contract("Vault", testutil.Inherits(token)).Function("deposit")
	u.File("D.sol").Contract("Util", testutil.AsLibrary())

	return writeProject(t, u, u.StandardJSON())
}

func writeProject(t *testing.T, u *testutil.Unit, output []byte) project {
	t.Helper()
	dir := t.TempDir()
	for _, f := range u.Build() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f.Path), f.Source, 0o644))
	}
	p := project{
		dir:    dir,
		output: filepath.Join(dir, "out.json"),
		db:     filepath.Join(dir, "index.db"),
	}
	require.NoError(t, os.WriteFile(p.output, output, 0o644))
	return p
}

// editOutput rewrites the standard-JSON output of p through fn.
func editOutput(t *testing.T, p project, fn func(map[string]any)) {
	t.Helper()
	data, err := os.ReadFile(p.output)
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(data, &out))
	fn(out)
	data, err = json.Marshal(out)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(p.output, data, 0o644))
}

// execute runs the CLI with args and returns what it wrote to stdout.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), err
}

type response struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data"`
	Error   *CLIError       `json:"error"`
	Session string          `json:"session"`
}

func decode(t *testing.T, out string, data any) response {
	t.Helper()
	var resp response
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	if data != nil && resp.Data != nil {
		require.NoError(t, json.Unmarshal(resp.Data, data))
	}
	return resp
}

func (p project) build(t *testing.T) BuildResult {
	t.Helper()
	out, err := execute(t, "build", "--format", "json", "--root", p.dir, "--db", p.db, p.output)
	require.NoError(t, err, out)
	var result BuildResult
	resp := decode(t, out, &result)
	require.Equal(t, "ok", resp.Status)
	return result
}

func TestBuild_Text(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "build", "--root", p.dir, "--db", p.db, p.output)
	require.NoError(t, err)
	assert.Contains(t, out, "4 file(s), 4 contract(s)")
	assert.Contains(t, out, "  C.sol\n")
	assert.Contains(t, out, "Index updated.")
}

func TestBuild_JSON(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "build", "--format", "json", "--root", p.dir, "--db", p.db, p.output)
	require.NoError(t, err)

	var result BuildResult
	resp := decode(t, out, &result)
	assert.Equal(t, "ok", resp.Status)
	assert.NotEmpty(t, resp.Session)
	assert.Len(t, result.Unit, 64)
	assert.Equal(t, []string{"A.sol", "B.sol", "C.sol", "D.sol"}, result.Files)
	assert.Equal(t, 4, result.Contracts)
	assert.True(t, result.Indexed)
	assert.FileExists(t, p.db)
}

func TestBuild_NoIndex(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "build", "--no-index", "--root", p.dir, "--db", p.db, p.output)
	require.NoError(t, err)
	assert.NotContains(t, out, "Index updated.")
	assert.NoFileExists(t, p.db)
}

func TestBuild_Dump(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "build", "--no-index", "--dump", "B.sol", "--root", p.dir, p.output)
	require.NoError(t, err)
	assert.Contains(t, out, "SourceUnit [")
	assert.Contains(t, out, `ContractDefinition`)
	assert.Contains(t, out, `"Token"@`)
	assert.Contains(t, out, `EnumValue`)
}

func TestBuild_DumpUnknownFile(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "build", "--format", "json", "--no-index", "--dump", "Nope.sol", "--root", p.dir, p.output)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestBuild_MissingOutput(t *testing.T) {
	dir := t.TempDir()

	out, err := execute(t, "build", "--format", "json", "--no-index", filepath.Join(dir, "missing.json"))
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeCompilerOutput, resp.Error.Code)
}

func TestBuild_MissingSource(t *testing.T) {
	p := newProject(t)
	require.NoError(t, os.Remove(filepath.Join(p.dir, "C.sol")))

	out, err := execute(t, "build", "--format", "json", "--no-index", "--root", p.dir, p.output)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeCompilerOutput, resp.Error.Code)
	assert.Contains(t, resp.Error.Message, "C.sol")
}

func TestBuild_CompilerErrors(t *testing.T) {
	p := newProject(t)
	editOutput(t, p, func(out map[string]any) {
		out["errors"] = []any{
			map[string]any{"severity": "warning", "type": "Warning", "message": "unused variable"},
			map[string]any{"severity": "error", "type": "TypeError", "message": "type mismatch"},
		}
	})

	out, err := execute(t, "build", "--format", "json", "--no-index", "--root", p.dir, p.output)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var details []string
	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeCompilerErrors, resp.Error.Code)
	raw, err := json.Marshal(resp.Error.Details)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &details))
	assert.Equal(t, []string{"type mismatch"}, details)
}

func TestBuild_CompilerErrorsAllowedByConfig(t *testing.T) {
	p := newProject(t)
	editOutput(t, p, func(out map[string]any) {
		out["errors"] = []any{
			map[string]any{"severity": "error", "type": "TypeError", "message": "type mismatch"},
		}
	})
	cfg := filepath.Join(p.dir, "solir.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("fail_on_compiler_errors: false\n"), 0o644))

	_, err := execute(t, "build", "-c", cfg, "--no-index", "--root", p.dir, p.output)
	require.NoError(t, err)
}

func TestBuild_InvalidConfig(t *testing.T) {
	p := newProject(t)
	cfg := filepath.Join(p.dir, "solir.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("workers: -3\n"), 0o644))

	out, err := execute(t, "build", "--format", "json", "-c", cfg, "--no-index", "--root", p.dir, p.output)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeConfig, resp.Error.Code)
}

func TestBuild_DanglingBase(t *testing.T) {
	p := newProject(t)
	editOutput(t, p, func(out map[string]any) {
		delete(out["sources"].(map[string]any), "A.sol")
	})

	out, err := execute(t, "build", "--format", "json", "--no-index", "--root", p.dir, p.output)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode(t, out, nil)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeIR, resp.Error.Code)
	details, ok := resp.Error.Details.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "DANGLING_REFERENCE", details["kind"])
}

func TestHierarchy(t *testing.T) {
	p := newProject(t)

	tests := []struct {
		name          string
		contract      string
		file          string
		linearization []string
		bases         []string
		treeSize      int
	}{
		{"root", "Ownable", "A.sol", []string{"Ownable"}, []string{}, 3},
		{"middle", "Token", "B.sol", []string{"Token", "Ownable"}, []string{"Ownable"}, 2},
		{"leaf", "Vault", "C.sol", []string{"Vault", "Token", "Ownable"}, []string{"Token"}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, "hierarchy", "--format", "json", "--root", p.dir, p.output, tt.contract)
			require.NoError(t, err)

			var result HierarchyResult
			decode(t, out, &result)
			assert.Equal(t, tt.contract, result.Contract)
			assert.Equal(t, tt.file, result.File)
			assert.Equal(t, tt.linearization, result.Linearization)
			assert.Equal(t, tt.bases, result.Bases)
			require.NotNil(t, result.Descendants)
			assert.Equal(t, tt.contract, result.Descendants.Name)
			assert.Equal(t, tt.treeSize, result.Descendants.Size())
		})
	}
}

func TestHierarchy_Text(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "hierarchy", "--root", p.dir, p.output, "Ownable")
	require.NoError(t, err)
	assert.Contains(t, out, "abstract contract Ownable")
	assert.Contains(t, out, "linearization: Ownable")
	assert.Contains(t, out, "  Ownable (A.sol)\n    Token (B.sol)\n      Vault (C.sol)")
}

func TestHierarchy_UnknownContract(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "hierarchy", "--format", "json", "--root", p.dir, p.output, "Missing")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestIndex_Contracts(t *testing.T) {
	p := newProject(t)
	built := p.build(t)

	out, err := execute(t, "index", "contracts", "--format", "json", "--db", p.db)
	require.NoError(t, err)

	var list ContractList
	decode(t, out, &list)
	assert.Equal(t, built.Unit, list.Unit)
	require.Len(t, list.Contracts, 4)

	names := make([]string, len(list.Contracts))
	for i, c := range list.Contracts {
		names[i] = c.Name
	}
	assert.Equal(t, []string{"Ownable", "Token", "Vault", "Util"}, names)
	assert.True(t, list.Contracts[0].Abstract)
	assert.Equal(t, "library", list.Contracts[3].Kind)
}

func TestIndex_Descendants(t *testing.T) {
	p := newProject(t)
	p.build(t)

	out, err := execute(t, "index", "descendants", "Ownable", "--format", "json", "--db", p.db)
	require.NoError(t, err)

	var list ContractList
	decode(t, out, &list)
	require.Len(t, list.Contracts, 2)
	assert.Equal(t, "Token", list.Contracts[0].Name)
	assert.Equal(t, "Vault", list.Contracts[1].Name)
}

func TestIndex_DescendantsUnknown(t *testing.T) {
	p := newProject(t)
	p.build(t)

	_, err := execute(t, "index", "descendants", "Missing", "--db", p.db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIndex_Find(t *testing.T) {
	p := newProject(t)
	p.build(t)

	out, err := execute(t, "index", "find", "State", "--format", "json", "--db", p.db)
	require.NoError(t, err)

	var list DeclarationList
	decode(t, out, &list)
	require.Len(t, list.Declarations, 1)
	d := list.Declarations[0]
	assert.Equal(t, "EnumDefinition", d.NodeType)
	assert.Equal(t, "Token.State", d.CanonicalName)
	assert.Equal(t, "B.sol", d.File)
	require.NotNil(t, d.ContractID)

	out, err = execute(t, "index", "find", "Nothing", "--db", p.db)
	require.NoError(t, err)
	assert.Contains(t, out, `No declarations named "Nothing".`)
}

func TestIndex_Check(t *testing.T) {
	p := newProject(t)
	p.build(t)

	out, err := execute(t, "index", "check", "--db", p.db)
	require.NoError(t, err)
	assert.Contains(t, out, "4 file(s), 4 contract(s)")
	assert.Contains(t, out, "Index is complete.")
}

func TestIndex_CheckDanglingEdge(t *testing.T) {
	p := newProject(t)
	built := p.build(t)

	st, err := store.Open(p.db)
	require.NoError(t, err)
	// drop A.sol alone, leaving Token's edge to Ownable behind
	_, err = st.DeleteFile(t.Context(), resolver.UnitID(built.Unit), "A.sol")
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "index", "check", "--format", "json", "--db", p.db)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var result CheckResult
	decode(t, out, &result)
	assert.False(t, result.IsComplete)
	require.Len(t, result.DanglingEdges, 1)
	assert.Equal(t, "B.sol", result.DanglingEdges[0].File)
}

func TestIndex_UnitPrefix(t *testing.T) {
	p := newProject(t)
	built := p.build(t)

	_, err := execute(t, "index", "contracts", "--db", p.db, "--unit", built.Unit[:8])
	require.NoError(t, err)

	_, err = execute(t, "index", "contracts", "--db", p.db, "--unit", "zzzz")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}

func TestIndex_Empty(t *testing.T) {
	db := filepath.Join(t.TempDir(), "empty.db")

	out, err := execute(t, "index", "contracts", "--format", "json", "--db", db)
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestInvalidate(t *testing.T) {
	p := newProject(t)
	p.build(t)

	out, err := execute(t, "invalidate", "--format", "json", "--root", p.dir, "--db", p.db, p.output, "A.sol")
	require.NoError(t, err)

	var result InvalidateResult
	decode(t, out, &result)
	assert.Equal(t, []string{"A.sol", "B.sol", "C.sol"}, result.Removed)
	assert.Equal(t, []string{"A.sol", "B.sol", "C.sol"}, result.Deleted)
	assert.Empty(t, result.Rebuilt)

	out, err = execute(t, "index", "contracts", "--format", "json", "--db", p.db)
	require.NoError(t, err)
	var list ContractList
	decode(t, out, &list)
	require.Len(t, list.Contracts, 1)
	assert.Equal(t, "Util", list.Contracts[0].Name)
}

func TestInvalidate_OverlappingPaths(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "invalidate", "--format", "json", "--root", p.dir, "--db", p.db, p.output, "B.sol", "C.sol", "D.sol")
	require.NoError(t, err)

	var result InvalidateResult
	decode(t, out, &result)
	// C.sol already went with B.sol
	assert.Equal(t, []string{"B.sol", "C.sol", "D.sol"}, result.Removed)
	// nothing was indexed
	assert.Empty(t, result.Deleted)
}

func TestInvalidate_Rebuild(t *testing.T) {
	p := newProject(t)
	p.build(t)

	out, err := execute(t, "invalidate", "--rebuild", "--format", "json", "--root", p.dir, "--db", p.db, p.output, "B.sol")
	require.NoError(t, err)

	var result InvalidateResult
	decode(t, out, &result)
	assert.Equal(t, []string{"B.sol", "C.sol"}, result.Removed)
	assert.Equal(t, []string{"B.sol", "C.sol"}, result.Rebuilt)

	out, err = execute(t, "index", "descendants", "Ownable", "--format", "json", "--db", p.db)
	require.NoError(t, err)
	var list ContractList
	decode(t, out, &list)
	require.Len(t, list.Contracts, 2)

	_, err = execute(t, "index", "check", "--db", p.db)
	require.NoError(t, err)
}

func TestInvalidate_RebuildWithoutBuild(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "invalidate", "--rebuild", "--format", "json", "--root", p.dir, "--db", p.db, p.output, "B.sol")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}

func TestInvalidate_UnknownPath(t *testing.T) {
	p := newProject(t)

	out, err := execute(t, "invalidate", "--format", "json", "--root", p.dir, "--db", p.db, p.output, "Nope.sol")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	resp := decode(t, out, nil)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
}
