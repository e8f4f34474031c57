package main

import (
	"go/ast"
	"go/types"

	"golang.org/x/tools/go/analysis"
	"golang.org/x/tools/go/analysis/passes/inspect"
	"golang.org/x/tools/go/ast/inspector"
)

// redirectHelpers are the net/http functions that rewrite the redirect target.
var redirectHelpers = map[string]bool{
	"Redirect":        true,
	"RedirectHandler": true,
}

// RedirectLocationAnalyzer reports uses of net/http redirect helpers.
// They clean relative paths and escape the URL, so Location would differ from the configured target.
var RedirectLocationAnalyzer = &analysis.Analyzer{
	Name:     "redirectlocation",
	Doc:      "report http.Redirect and http.RedirectHandler, which rewrite the Location target",
	Requires: []*analysis.Analyzer{inspect.Analyzer},
	Run:      runRedirectLocation,
}

func runRedirectLocation(pass *analysis.Pass) (interface{}, error) {
	insp := pass.ResultOf[inspect.Analyzer].(*inspector.Inspector)

	insp.Preorder([]ast.Node{(*ast.SelectorExpr)(nil)}, func(n ast.Node) {
		sel := n.(*ast.SelectorExpr)
		fn, ok := pass.TypesInfo.Uses[sel.Sel].(*types.Func)
		if !ok || fn.Pkg() == nil || fn.Pkg().Path() != "net/http" {
			return
		}
		if !redirectHelpers[fn.Name()] {
			return
		}
		if sig, ok := fn.Type().(*types.Signature); ok && sig.Recv() != nil {
			return
		}
		pass.Reportf(sel.Pos(), "http.%s cleans and re-encodes the target; set the Location header directly", fn.Name())
	})
	return nil, nil
}
