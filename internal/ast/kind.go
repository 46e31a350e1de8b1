package ast

// Kind tags every concrete node type. Abstract kinds (KindNode, KindExpr)
// never appear on a node value; they only exist as ancestors so handlers can
// be registered for a whole family of kinds.
type Kind int

const (
	KindNode Kind = iota
	KindExpr

	KindFunction
	KindStats
	KindFor
	KindNDIterate
	KindErrorHandler
	KindReturn
	KindAssign
	KindIf
	KindJump
	KindJumpTarget
	KindReduce
	KindNodeWrapper

	KindVariable
	KindTemp
	KindConstant
	KindBinop
	KindCast
	KindIndex
	KindDataPointer
	KindStride
	KindStridePointer
	KindShapeIndex

	kindCount
)

var kindNames = [kindCount]string{
	KindNode:          "Node",
	KindExpr:          "Expr",
	KindFunction:      "FunctionNode",
	KindStats:         "Stats",
	KindFor:           "ForNode",
	KindNDIterate:     "NDIterate",
	KindErrorHandler:  "ErrorHandler",
	KindReturn:        "Return",
	KindAssign:        "Assign",
	KindIf:            "If",
	KindJump:          "Jump",
	KindJumpTarget:    "JumpTarget",
	KindReduce:        "Reduce",
	KindNodeWrapper:   "NodeWrapper",
	KindVariable:      "Variable",
	KindTemp:          "Temp",
	KindConstant:      "Constant",
	KindBinop:         "Binop",
	KindCast:          "Cast",
	KindIndex:         "Index",
	KindDataPointer:   "DataPointer",
	KindStride:        "Stride",
	KindStridePointer: "StridePointer",
	KindShapeIndex:    "ShapeIndex",
}

// parents is the "falls back to" table. KindNode is the root and maps to itself.
var parents = [kindCount]Kind{
	KindNode:          KindNode,
	KindExpr:          KindNode,
	KindFunction:      KindNode,
	KindStats:         KindNode,
	KindFor:           KindNode,
	KindNDIterate:     KindNode,
	KindErrorHandler:  KindNode,
	KindReturn:        KindNode,
	KindAssign:        KindNode,
	KindIf:            KindNode,
	KindJump:          KindNode,
	KindJumpTarget:    KindNode,
	KindReduce:        KindNode,
	KindNodeWrapper:   KindNode,
	KindVariable:      KindExpr,
	KindTemp:          KindVariable,
	KindConstant:      KindExpr,
	KindBinop:         KindExpr,
	KindCast:          KindExpr,
	KindIndex:         KindExpr,
	KindDataPointer:   KindExpr,
	KindStride:        KindExpr,
	KindStridePointer: KindExpr,
	KindShapeIndex:    KindExpr,
}

// ancestries is computed once from parents.
var ancestries [kindCount][]Kind

func init() {
	for k := Kind(0); k < kindCount; k++ {
		chain := []Kind{k}
		for cur := k; cur != KindNode; {
			cur = cur.Parent()
			chain = append(chain, cur)
		}
		ancestries[k] = chain
	}
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return "Kind(?)"
	}
	return kindNames[k]
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool { return k >= 0 && k < kindCount }

// Parent returns the kind k falls back to. The root returns itself.
func (k Kind) Parent() Kind {
	if !k.Valid() {
		return KindNode
	}
	return parents[k]
}

// Ancestry returns the linearization of k: k itself, then its nearest
// ancestor, and so on up to KindNode. The returned slice must not be modified.
func Ancestry(k Kind) []Kind {
	if !k.Valid() {
		return nil
	}
	return ancestries[k]
}

// IsA reports whether ancestor appears in the ancestry of k.
func (k Kind) IsA(ancestor Kind) bool {
	for _, a := range Ancestry(k) {
		if a == ancestor {
			return true
		}
	}
	return false
}
