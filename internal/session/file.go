package session

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/roach88/solir/internal/ast"
)

// File is one source file of a compilation unit: its path, its text and
// the compiler AST describing it.
type File struct {
	Path   string
	Source []byte
	AST    *ast.SourceUnit
}

// FilesFromOutput pairs every source of a standard-JSON output with its
// text, read from root. Files are returned in solc file-index order.
func FilesFromOutput(out *ast.StandardOutput, root string) ([]File, error) {
	paths := out.Paths()
	files := make([]File, 0, len(paths))
	for _, p := range paths {
		src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(p)))
		if err != nil {
			return nil, fmt.Errorf("read source %s: %w", p, err)
		}
		files = append(files, File{Path: p, Source: src, AST: out.Sources[p].AST})
	}
	return files, nil
}
