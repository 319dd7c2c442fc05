package ir

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/solir/internal/ast"
	"github.com/roach88/solir/internal/resolver"
	"github.com/roach88/solir/internal/testutil"
)

const testUnit resolver.UnitID = "test-unit"

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func newTestResolver() *resolver.Resolver[Node] {
	return resolver.New[Node](resolver.WithLogger(discard))
}

func buildFile(r *resolver.Resolver[Node], f testutil.SourceFile) (*SourceUnit, error) {
	raw, err := ast.DecodeSourceUnit(f.AST)
	if err != nil {
		return nil, err
	}
	return BuildSourceUnit(&InitContext{
		File:     f.Path,
		Source:   f.Source,
		Unit:     testUnit,
		Resolver: r,
		Logger:   discard,
	}, raw)
}

// buildAll constructs every file, then runs post-processing.
func buildAll(t *testing.T, r *resolver.Resolver[Node], files ...testutil.SourceFile) map[string]*SourceUnit {
	t.Helper()
	units := make(map[string]*SourceUnit, len(files))
	for _, f := range files {
		su, err := buildFile(r, f)
		require.NoError(t, err, "build %s", f.Path)
		units[f.Path] = su
	}
	require.NoError(t, r.RunPostProcess(context.Background()))
	return units
}

func contractNamed(t *testing.T, units map[string]*SourceUnit, name string) *ContractDefinition {
	t.Helper()
	for _, su := range units {
		for _, c := range su.Contracts() {
			if c.Name() == name {
				return c
			}
		}
	}
	t.Fatalf("no contract %q", name)
	return nil
}

func names(cs []*ContractDefinition) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.Name()
	}
	return out
}

// richUnit exercises every modeled declaration kind across two files.
func richUnit() *testutil.Unit {
	u := testutil.NewUnit()
	lib := u.File("Lib.sol")
	math := lib.Contract("SafeMath", testutil.AsLibrary()).
		Function("add", testutil.Params(testutil.Uint("a"), testutil.Uint("b")), testutil.Returns(testutil.Uint("")))
	owned := lib.Contract("Owned", testutil.Abstract()).
		StateVar(testutil.Var{Type: "address", Name: "owner"}).
		Modifier("onlyOwner").
		Function("transferOwnership", testutil.Params(testutil.Var{Type: "address", Name: "to"}), testutil.Virtual(), testutil.Unimplemented())
	lib.Contract("IERC20", testutil.AsInterface()).
		Event("Transfer", testutil.Var{Type: "address", Name: "from"}, testutil.Uint("amount")).
		Function("totalSupply", testutil.Returns(testutil.Uint("")), testutil.Unimplemented())
	lib.FreeFunction("helper")

	token := u.File("Token.sol").Import(lib)
	token.Contract("Token", testutil.Inherits(owned), testutil.Documented("A token.")).
		Enum("State", "Active", "Paused").
		Struct("Account", testutil.Uint("balance"), testutil.Var{Type: "bool", Name: "frozen"}).
		Error("Insufficient", testutil.Uint("needed")).
		ValueType("Price", "uint128").
		UsingFor(math, "uint256").
		StateVar(testutil.Var{Of: owned, Name: "delegate"}).
		Constructor().
		Function("pause", testutil.Modifiers("onlyOwner"), testutil.WithAssembly(), testutil.WithReturn())
	return u
}
