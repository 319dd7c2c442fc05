package session

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/diag"
	"github.com/roach88/solir/internal/ir"
	"github.com/roach88/solir/internal/testutil"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestSession(opts ...Option) *Session {
	return New(append([]Option{WithLogger(discard), WithIDGenerator(NewFixedGenerator("s-1"))}, opts...)...)
}

func toFiles(t *testing.T, src ...testutil.SourceFile) []File {
	t.Helper()
	out := make([]File, len(src))
	for i, f := range src {
		raw, err := ast.DecodeSourceUnit(f.AST)
		require.NoError(t, err)
		out[i] = File{Path: f.Path, Source: f.Source, AST: raw}
	}
	return out
}

// chain builds A.sol <- B.sol <- C.sol, each contract inheriting from the
// one before it, plus an unrelated D.sol.
func chain() *testutil.Unit {
	u := testutil.NewUnit()
	a := u.File("A.sol")
	x := a.Contract("X")
	b := u.File("B.sol").Import(a)
	y := b.Contract("Y", testutil.Inherits(x))
	u.File("C.sol").Import(b).Contract("Z", testutil.Inherits(y))
	u.File("D.sol").Contract("W")
	return u
}

func names(cs []*ir.ContractDefinition) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name()
	}
	return out
}

func TestBuild(t *testing.T) {
	s := newTestSession(WithWorkers(2))
	unit, err := s.Build(context.Background(), toFiles(t, chain().Build()...))
	require.NoError(t, err)

	assert.Equal(t, "s-1", s.ID())
	assert.Equal(t, unit, s.Unit())
	assert.Len(t, string(unit), 64)
	assert.Equal(t, []string{"X", "Y", "Z", "W"}, names(s.Contracts()))

	x, err := s.ContractByName("X")
	require.NoError(t, err)
	assert.Equal(t, []string{"Y"}, names(x.ChildContracts()))

	z, err := s.ContractByName("Z")
	require.NoError(t, err)
	lin, err := z.LinearizedBaseContracts()
	require.NoError(t, err)
	assert.Equal(t, []string{"Z", "Y", "X"}, names(lin))
}

func TestBuild_OrderIndependent(t *testing.T) {
	files := toFiles(t, chain().Build()...)
	reversed := make([]File, len(files))
	for i, f := range files {
		reversed[len(files)-1-i] = f
	}

	s1 := newTestSession(WithWorkers(1))
	u1, err := s1.Build(context.Background(), files)
	require.NoError(t, err)
	s2 := newTestSession(WithWorkers(4))
	u2, err := s2.Build(context.Background(), reversed)
	require.NoError(t, err)

	assert.Equal(t, u1, u2)
	for _, name := range []string{"X", "Y", "Z", "W"} {
		c1, err := s1.ContractByName(name)
		require.NoError(t, err)
		c2, err := s2.ContractByName(name)
		require.NoError(t, err)
		assert.Equal(t, names(c1.ChildContracts()), names(c2.ChildContracts()), name)
	}
}

func TestBuild_Twice(t *testing.T) {
	s := newTestSession()
	_, err := s.Build(context.Background(), toFiles(t, chain().Build()...))
	require.NoError(t, err)

	_, err = s.Build(context.Background(), nil)
	assert.ErrorIs(t, err, ErrAlreadyBuilt)
}

func TestBuild_FatalErrorAborts(t *testing.T) {
	u := testutil.NewUnit()
	a := u.File("A.sol")
	x := a.Contract("X")
	u.File("B.sol").Import(a).Contract("Y", testutil.Inherits(x))
	files := toFiles(t, u.Build()...)

	s := newTestSession()
	_, err := s.Build(context.Background(), files[1:])
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAborted)
	assert.True(t, diag.IsDanglingReference(err))

	// later calls report the abort
	_, err = s.SourceUnit("B.sol")
	assert.ErrorIs(t, err, ErrAborted)
	_, err = s.Invalidate("B.sol")
	assert.ErrorIs(t, err, ErrAborted)
	assert.ErrorIs(t, s.Rebuild(context.Background(), files), ErrAborted)
	assert.ErrorIs(t, s.Err(), ErrAborted)

	// the half-linked graph is gone
	assert.Empty(t, s.SourceUnits())
	assert.Empty(t, s.Contracts())
	assert.Empty(t, s.Dependents("A.sol"))
	_, err = s.ContractByName("Y")
	assert.ErrorIs(t, err, ErrAborted)
}

func TestBuild_DuplicatePath(t *testing.T) {
	files := toFiles(t, chain().Build()...)

	s := newTestSession()
	_, err := s.Build(context.Background(), append(files, files[1]))
	assert.ErrorIs(t, err, ErrDuplicatePath)
	assert.NoError(t, s.Err())

	// rejected before anything was built
	_, err = s.Build(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, s.Contracts(), 4)
}

func TestRebuild_DuplicatePath(t *testing.T) {
	first := chain()
	files := toFiles(t, first.Build()...)

	// same path, different AST
	other := testutil.NewUnit()
	other.File("A.sol").Contract("X").Function("extra")
	replacement := toFiles(t, other.Build()...)[0]

	s := newTestSession()
	_, err := s.Build(context.Background(), files)
	require.NoError(t, err)
	x, err := s.ContractByName("X")
	require.NoError(t, err)

	err = s.Rebuild(context.Background(), []File{files[0], replacement})
	assert.ErrorIs(t, err, ErrDuplicatePath)
	assert.NoError(t, s.Err())

	// the unit is untouched
	again, err := s.ContractByName("X")
	require.NoError(t, err)
	assert.Same(t, x, again)
	assert.Equal(t, []string{"Y"}, names(x.ChildContracts()))
}

func TestBuild_ConstructionError(t *testing.T) {
	u := testutil.NewUnit()
	u.File("Bad.sol").Contract("C", testutil.CorruptKeyword())

	s := newTestSession()
	_, err := s.Build(context.Background(), toFiles(t, u.Build()...))
	require.Error(t, err)
	assert.True(t, diag.IsNameSpanNotFound(err))
	assert.ErrorIs(t, err, ErrAborted)
}

func TestBuild_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := newTestSession()
	_, err := s.Build(ctx, toFiles(t, chain().Build()...))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDependents(t *testing.T) {
	s := newTestSession()
	_, err := s.Build(context.Background(), toFiles(t, chain().Build()...))
	require.NoError(t, err)

	assert.Equal(t, []string{"B.sol", "C.sol"}, s.Dependents("A.sol"))
	assert.Equal(t, []string{"C.sol"}, s.Dependents("B.sol"))
	assert.Empty(t, s.Dependents("C.sol"))
	assert.Empty(t, s.Dependents("D.sol"))
}

func TestInvalidate_RemovesDependents(t *testing.T) {
	s := newTestSession()
	_, err := s.Build(context.Background(), toFiles(t, chain().Build()...))
	require.NoError(t, err)
	w, err := s.ContractByName("W")
	require.NoError(t, err)

	removed, err := s.Invalidate("B.sol")
	require.NoError(t, err)
	assert.Equal(t, []string{"B.sol", "C.sol"}, removed)

	assert.Equal(t, []string{"X", "W"}, names(s.Contracts()))
	x, err := s.ContractByName("X")
	require.NoError(t, err)
	assert.Empty(t, x.ChildContracts())
	assert.Empty(t, x.References())

	_, err = s.SourceUnit("C.sol")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Invalidate("C.sol")
	assert.ErrorIs(t, err, ErrNotFound)

	// untouched files keep their nodes
	again, err := s.ContractByName("W")
	require.NoError(t, err)
	assert.Same(t, w, again)
}

func TestRebuild_RelinksDependents(t *testing.T) {
	u := chain()
	files := toFiles(t, u.Build()...)

	s := newTestSession()
	_, err := s.Build(context.Background(), files)
	require.NoError(t, err)
	oldX, err := s.ContractByName("X")
	require.NoError(t, err)

	// rebuild the base file only; B.sol must follow it
	require.NoError(t, s.Rebuild(context.Background(), toFiles(t, u.Source("A.sol"))))

	x, err := s.ContractByName("X")
	require.NoError(t, err)
	assert.NotSame(t, oldX, x)
	assert.Empty(t, oldX.ChildContracts())
	assert.Equal(t, []string{"Y"}, names(x.ChildContracts()))

	y, err := s.ContractByName("Y")
	require.NoError(t, err)
	target, err := y.BaseContracts()[0].BaseName().ReferencedDeclaration()
	require.NoError(t, err)
	assert.Same(t, x, target)

	z, err := s.ContractByName("Z")
	require.NoError(t, err)
	assert.Equal(t, []string{"Z"}, names(y.ChildContracts()))
	lin, err := z.LinearizedBaseContracts()
	require.NoError(t, err)
	assert.Same(t, x, lin[2])
}

func TestRebuild_AddsNewFile(t *testing.T) {
	u := chain()
	files := toFiles(t, u.Build()...)

	s := newTestSession()
	_, err := s.Build(context.Background(), files[:3])
	require.NoError(t, err)
	require.NoError(t, s.Rebuild(context.Background(), files[3:]))

	_, err = s.ContractByName("W")
	assert.NoError(t, err)
}

func TestRebuild_BeforeBuild(t *testing.T) {
	s := newTestSession()
	assert.ErrorIs(t, s.Rebuild(context.Background(), nil), ErrNotBuilt)
}

func TestContractByName_Ambiguous(t *testing.T) {
	u := testutil.NewUnit()
	u.File("A.sol").Contract("Dup")
	u.File("B.sol").Contract("Dup")

	s := newTestSession()
	_, err := s.Build(context.Background(), toFiles(t, u.Build()...))
	require.NoError(t, err)

	_, err = s.ContractByName("Dup")
	assert.ErrorIs(t, err, ErrAmbiguous)
	_, err = s.ContractByName("Missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesFromOutput(t *testing.T) {
	u := chain()
	dir := t.TempDir()
	for _, f := range u.Build() {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f.Path), f.Source, 0o644))
	}
	out, err := ast.LoadStandardOutput(bytes.NewReader(u.StandardJSON()))
	require.NoError(t, err)

	files, err := FilesFromOutput(out, dir)
	require.NoError(t, err)
	require.Len(t, files, 4)
	assert.Equal(t, "A.sol", files[0].Path)
	assert.Equal(t, u.Source("A.sol").Source, files[0].Source)

	s := newTestSession()
	_, err = s.Build(context.Background(), files)
	require.NoError(t, err)
	assert.Len(t, s.SourceUnits(), 4)
}

func TestFilesFromOutput_MissingSource(t *testing.T) {
	out, err := ast.LoadStandardOutput(bytes.NewReader(chain().StandardJSON()))
	require.NoError(t, err)

	_, err = FilesFromOutput(out, t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestFixedGenerator(t *testing.T) {
	g := NewFixedGenerator("a", "b")
	assert.Equal(t, "a", g.Generate())
	assert.Equal(t, "b", g.Generate())
	assert.Panics(t, func() { g.Generate() })
}

func TestUUIDv7Generator(t *testing.T) {
	var g UUIDv7Generator
	a, b := g.Generate(), g.Generate()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
	assert.Equal(t, byte('7'), a[14])
}
