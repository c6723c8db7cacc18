package ir

// Program is the unit of analysis: every contract file handed to one run.
type Program struct {
	Units []*Unit
}

// Unit is one source file after lowering.
type Unit struct {
	Path      string      `json:"path"`
	Language  string      `json:"language"`
	Source    string      `json:"-" msgpack:"-"`
	Contracts []*Contract `json:"contracts"`
}

type Contract struct {
	Name      string      `json:"name"`
	StateVars []*Variable `json:"stateVars"`
	Functions []*Function `json:"functions"`
	Line      int         `json:"line"`
}

type Variable struct {
	Name  string `json:"name"`
	Type  string `json:"type,omitempty"`
	State bool   `json:"state"`
	Line  int    `json:"line"`
}

// Function is a lowered function body: a list of basic blocks, each
// ended by exactly one terminator. Entry is always block 0.
type Function struct {
	Name       string      `json:"name"`
	Contract   string      `json:"contract"`
	Visibility string      `json:"visibility"`
	Mutability string      `json:"mutability,omitempty"`
	Params     []*Variable `json:"params"`
	Blocks     []Block     `json:"blocks"`
	Line       int         `json:"line"`
}

// Key identifies a function within a program (contract-qualified name).
func (f *Function) Key() string { return f.Contract + "." + f.Name }

type BlockID int

const NoBlock BlockID = -1

type Block struct {
	ID    BlockID    `json:"id"`
	Stmts []Stmt     `json:"stmts"`
	Term  Terminator `json:"term"`
}

type StmtKind uint8

const (
	StmtExpr StmtKind = iota
	StmtAssign
	StmtStateWrite
	StmtCall
	StmtExternalCall
	StmtRequire
	StmtEmit
)

func (k StmtKind) String() string {
	switch k {
	case StmtAssign:
		return "assign"
	case StmtStateWrite:
		return "state-write"
	case StmtCall:
		return "call"
	case StmtExternalCall:
		return "external-call"
	case StmtRequire:
		return "require"
	case StmtEmit:
		return "emit"
	default:
		return "expr"
	}
}

// Stmt is one IR statement. Def names the variable the statement writes
// (empty when it writes nothing); Uses names every variable it reads.
type Stmt struct {
	Kind   StmtKind `json:"kind"`
	Def    string   `json:"def,omitempty"`
	Uses   []string `json:"uses,omitempty"`
	Callee string   `json:"callee,omitempty"`
	Line   int      `json:"line"`
	Text   string   `json:"text,omitempty"`
}

type TermKind uint8

const (
	TermFallthrough TermKind = iota
	TermCondBranch
	TermReturn
	TermRevert
	TermUnreachable
	// TermUnknown stands in for anything the front-end could not lower.
	// Construction stays total: an unknown terminator simply has no
	// out-edges instead of failing the build.
	TermUnknown
)

func (k TermKind) String() string {
	switch k {
	case TermFallthrough:
		return "fallthrough"
	case TermCondBranch:
		return "cond-branch"
	case TermReturn:
		return "return"
	case TermRevert:
		return "revert"
	case TermUnreachable:
		return "unreachable"
	default:
		return "unknown"
	}
}

type Terminator struct {
	Kind TermKind `json:"kind"`

	// Target is the fallthrough successor.
	Target BlockID `json:"target,omitempty"`

	// Cond/Then/Else are set for TermCondBranch.
	Cond []string `json:"cond,omitempty"`
	Then BlockID  `json:"then,omitempty"`
	Else BlockID  `json:"else,omitempty"`

	Line int `json:"line,omitempty"`
}

// IsExit reports whether the terminator leaves the function.
func (t Terminator) IsExit() bool {
	switch t.Kind {
	case TermReturn, TermRevert, TermUnreachable, TermUnknown:
		return true
	}
	return false
}

// Successors returns the block ids this terminator can transfer to.
// Targets outside [0, nblocks) are dropped rather than reported,
// keeping graph construction total for malformed input.
func (t Terminator) Successors(nblocks int) []BlockID {
	valid := func(id BlockID) bool { return id >= 0 && int(id) < nblocks }
	switch t.Kind {
	case TermFallthrough:
		if valid(t.Target) {
			return []BlockID{t.Target}
		}
	case TermCondBranch:
		var out []BlockID
		if valid(t.Then) {
			out = append(out, t.Then)
		}
		if valid(t.Else) && t.Else != t.Then {
			out = append(out, t.Else)
		}
		return out
	}
	return nil
}

// Functions returns every function in the program in unit order.
func (p *Program) Functions() []*Function {
	var out []*Function
	for _, u := range p.Units {
		for _, c := range u.Contracts {
			out = append(out, c.Functions...)
		}
	}
	return out
}
