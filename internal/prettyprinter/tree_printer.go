// Package prettyprinter renders specialization trees for humans.
package prettyprinter

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/funvibe/minispec/internal/ast"
	"github.com/funvibe/minispec/internal/visitor"
)

// TreePrinter prints one line per node, indented by depth and labelled with
// the attribute the node hangs off:
//
//	FunctionNode axpy [strided]
//	  body: Stats
//	    stats[0]: ForNode
//
// It never modifies the tree.
type TreePrinter struct {
	v     *visitor.Visitor
	buf   bytes.Buffer
	Color bool
}

func NewTreePrinter(ctx visitor.Context) *TreePrinter {
	p := &TreePrinter{v: visitor.New(ctx, visitor.WithAccessPath())}
	p.v.Register(ast.KindNode, p.visitNode)
	return p
}

// Print renders n.
func (p *TreePrinter) Print(n ast.Node) (string, error) {
	p.buf.Reset()
	if _, err := p.v.Visit(n); err != nil {
		return "", err
	}
	return p.buf.String(), nil
}

// Fprint renders n to w.
func (p *TreePrinter) Fprint(w io.Writer, n ast.Node) error {
	s, err := p.Print(n)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, s)
	return err
}

func (p *TreePrinter) visitNode(n ast.Node) (visitor.Result, error) {
	p.buf.WriteString(strings.Repeat("  ", len(p.v.AccessPath())))
	if entry, ok := p.v.Current(); ok {
		label := entry.Attr
		if entry.Index >= 0 {
			label += "[" + strconv.Itoa(entry.Index) + "]"
		}
		p.buf.WriteString(p.paint(colorAttr, label+":"))
		p.buf.WriteByte(' ')
	}
	p.buf.WriteString(p.paint(colorKind, n.Kind().String()))
	if d := detail(n); d != "" {
		p.buf.WriteByte(' ')
		p.buf.WriteString(p.paint(colorDetail, d))
	}
	if t := n.Base().Type; t != nil && n.Kind().IsA(ast.KindExpr) {
		p.buf.WriteString(" : " + t.String())
	}
	p.buf.WriteByte('\n')

	_, err := p.v.VisitChildren(n)
	return visitor.None(), err
}

func (p *TreePrinter) paint(code int, s string) string {
	if !p.Color {
		return s
	}
	return colorize(code, s)
}

func detail(n ast.Node) string {
	switch n := n.(type) {
	case *ast.FunctionNode:
		if n.SpecializationName != "" {
			return n.Name + " [" + n.SpecializationName + "]"
		}
		return n.Name
	case *ast.Variable:
		return n.Name
	case *ast.Constant:
		return strconv.FormatInt(n.Value, 10)
	case *ast.Binop:
		return n.Op
	case *ast.Reduce:
		return n.Op
	case *ast.ErrorHandler:
		return n.Label
	case *ast.Jump:
		return n.Label
	case *ast.JumpTarget:
		return n.Label
	case *ast.DataPointer:
		return n.Variable.Name
	case *ast.StridePointer:
		return n.Variable.Name
	case *ast.Stride:
		return fmt.Sprintf("%s[%d]", n.Variable.Name, n.Dim)
	case *ast.ShapeIndex:
		return fmt.Sprintf("shape[%d]", n.Dim)
	case *ast.NodeWrapper:
		return fmt.Sprintf("%v", n.Opaque)
	}
	return ""
}
