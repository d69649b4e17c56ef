// Package ast defines the expression tree for deflang function bodies.
package ast

import (
	"fmt"
	"strconv"
	"strings"
)

// Pos is a source position. Line and Col are 1-based.
type Pos struct {
	Line int
	Col  int
}

func (p Pos) String() string {
	return fmt.Sprintf("line %d col %d", p.Line, p.Col)
}

// Node is implemented by all expression variants. Expressions form a
// tree; nodes are never shared between parents, so node identity
// doubles as call-site identity.
type Node interface {
	// Pos returns the node's originating source position.
	Pos() Pos
	exprNode()
}

// Number is a non-negative integer literal.
type Number struct {
	Value    int64
	Position Pos
}

// Param references a parameter declared by the enclosing function.
type Param struct {
	Name     string
	Position Pos
}

// Call invokes a defined function with argument expressions.
type Call struct {
	Function string
	Args     []Node
	Position Pos
}

// Sum adds two subexpressions.
type Sum struct {
	Left     Node
	Right    Node
	Position Pos
}

// Product multiplies two subexpressions.
type Product struct {
	Left     Node
	Right    Node
	Position Pos
}

func (n *Number) Pos() Pos  { return n.Position }
func (n *Param) Pos() Pos   { return n.Position }
func (n *Call) Pos() Pos    { return n.Position }
func (n *Sum) Pos() Pos     { return n.Position }
func (n *Product) Pos() Pos { return n.Position }

func (*Number) exprNode()  {}
func (*Param) exprNode()   {}
func (*Call) exprNode()    {}
func (*Sum) exprNode()     {}
func (*Product) exprNode() {}

// Render returns the canonical surface text of an expression. The
// grammar has no grouping form, so no parentheses are emitted; an AST
// produced by the parser renders back to its source expression.
func Render(n Node) string {
	switch e := n.(type) {
	case *Number:
		return strconv.FormatInt(e.Value, 10)
	case *Param:
		return e.Name
	case *Call:
		args := make([]string, len(e.Args))
		for i, a := range e.Args {
			args[i] = Render(a)
		}
		return e.Function + "(" + strings.Join(args, " ") + ")"
	case *Sum:
		return Render(e.Left) + "+" + Render(e.Right)
	case *Product:
		return Render(e.Left) + "*" + Render(e.Right)
	default:
		return fmt.Sprintf("<unknown node %T>", n)
	}
}
