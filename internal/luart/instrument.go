package luart

import (
	"strconv"

	"github.com/yuin/gopher-lua/ast"
)

// instrumentStmts injects a line hook call ahead of every statement in the
// block and recurses into nested blocks and function bodies. Consecutive
// statements on the same line within one block share one hook call; a nested
// block that starts on that same line gets its own call.
func instrumentStmts(stmts []ast.Stmt) []ast.Stmt {
	out := make([]ast.Stmt, 0, len(stmts)*2)
	lastLine := -1
	for _, st := range stmts {
		instrumentNested(st)
		if line := st.Line(); line > 0 && line != lastLine {
			out = append(out, hookCallStmt(line))
			lastLine = line
		}
		out = append(out, st)
	}
	return out
}

// instrumentNested rewrites the statement's nested blocks and descends into
// any function literals it contains.
func instrumentNested(st ast.Stmt) {
	switch s := st.(type) {
	case *ast.AssignStmt:
		instrumentExprs(s.Lhs)
		instrumentExprs(s.Rhs)
	case *ast.LocalAssignStmt:
		instrumentExprs(s.Exprs)
	case *ast.FuncCallStmt:
		instrumentExpr(s.Expr)
	case *ast.DoBlockStmt:
		s.Stmts = instrumentStmts(s.Stmts)
	case *ast.WhileStmt:
		instrumentExpr(s.Condition)
		s.Stmts = instrumentStmts(s.Stmts)
	case *ast.RepeatStmt:
		instrumentExpr(s.Condition)
		s.Stmts = instrumentStmts(s.Stmts)
	case *ast.IfStmt:
		instrumentExpr(s.Condition)
		s.Then = instrumentStmts(s.Then)
		s.Else = instrumentStmts(s.Else)
	case *ast.NumberForStmt:
		instrumentExpr(s.Init)
		instrumentExpr(s.Limit)
		instrumentExpr(s.Step)
		s.Stmts = instrumentStmts(s.Stmts)
	case *ast.GenericForStmt:
		instrumentExprs(s.Exprs)
		s.Stmts = instrumentStmts(s.Stmts)
	case *ast.FuncDefStmt:
		instrumentFunction(s.Func)
	case *ast.ReturnStmt:
		instrumentExprs(s.Exprs)
	}
}

func instrumentExprs(exprs []ast.Expr) {
	for _, e := range exprs {
		instrumentExpr(e)
	}
}

// instrumentExpr descends into an expression looking for function literals.
func instrumentExpr(e ast.Expr) {
	switch x := e.(type) {
	case nil:
	case *ast.FunctionExpr:
		instrumentFunction(x)
	case *ast.AttrGetExpr:
		instrumentExpr(x.Object)
		instrumentExpr(x.Key)
	case *ast.TableExpr:
		for _, f := range x.Fields {
			instrumentExpr(f.Key)
			instrumentExpr(f.Value)
		}
	case *ast.FuncCallExpr:
		instrumentExpr(x.Func)
		instrumentExpr(x.Receiver)
		instrumentExprs(x.Args)
	case *ast.LogicalOpExpr:
		instrumentExpr(x.Lhs)
		instrumentExpr(x.Rhs)
	case *ast.RelationalOpExpr:
		instrumentExpr(x.Lhs)
		instrumentExpr(x.Rhs)
	case *ast.StringConcatOpExpr:
		instrumentExpr(x.Lhs)
		instrumentExpr(x.Rhs)
	case *ast.ArithmeticOpExpr:
		instrumentExpr(x.Lhs)
		instrumentExpr(x.Rhs)
	case *ast.UnaryMinusOpExpr:
		instrumentExpr(x.Expr)
	case *ast.UnaryNotOpExpr:
		instrumentExpr(x.Expr)
	case *ast.UnaryLenOpExpr:
		instrumentExpr(x.Expr)
	}
}

// instrumentFunction instruments the body of a function literal.
func instrumentFunction(fe *ast.FunctionExpr) {
	if fe == nil {
		return
	}
	fe.Stmts = instrumentStmts(fe.Stmts)
}

// hookCallStmt builds the injected statement `__line_trace__(<line>)`,
// positioned on the line it reports so the interpreter's own line accounting
// stays truthful.
func hookCallStmt(line int) ast.Stmt {
	ident := &ast.IdentExpr{Value: lineHookGlobal}
	ident.SetLine(line)

	arg := &ast.NumberExpr{Value: strconv.Itoa(line)}
	arg.SetLine(line)

	call := &ast.FuncCallExpr{Func: ident, Args: []ast.Expr{arg}}
	call.SetLine(line)
	call.SetLastLine(line)

	st := &ast.FuncCallStmt{Expr: call}
	st.SetLine(line)
	st.SetLastLine(line)
	return st
}
