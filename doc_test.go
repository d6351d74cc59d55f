package x86features

import (
	"go/ast"
	"go/parser"
	"go/token"
	"testing"
)

// Every exported constant carries its own comment or sits in a run of
// constants (no blank line between them) opened by a commented one.
func TestExportedConstantsDocumented(t *testing.T) {
	for _, file := range []string{"types.go", "bits.go"} {
		fset := token.NewFileSet()
		f, err := parser.ParseFile(fset, file, nil, parser.ParseComments)
		if err != nil {
			t.Fatalf("parse %s: %v", file, err)
		}

		for _, decl := range f.Decls {
			gen, ok := decl.(*ast.GenDecl)
			if !ok || gen.Tok != token.CONST {
				continue
			}

			documented := false
			prevLine := 0
			for _, spec := range gen.Specs {
				vs := spec.(*ast.ValueSpec)
				line := fset.Position(vs.Pos()).Line
				if vs.Doc != nil {
					line = fset.Position(vs.Doc.Pos()).Line
				}
				if line > prevLine+1 {
					documented = false
				}
				if vs.Doc != nil || vs.Comment != nil {
					documented = true
				}
				prevLine = fset.Position(vs.End()).Line

				for _, name := range vs.Names {
					if name.IsExported() && !documented {
						t.Errorf("%s: constant %s has no doc comment", fset.Position(name.Pos()), name.Name)
					}
				}
			}
		}
	}
}
