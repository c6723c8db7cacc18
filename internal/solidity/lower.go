package solidity

import (
	"regexp"
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/ir"
)

// The lowering is line-oriented: one statement per line, braces on the
// statement line, which is how the overwhelming majority of Solidity
// is formatted. Anything it cannot classify becomes a plain expression
// statement, and a body it cannot finish lowering still yields a
// well-terminated block list.

type nodeKind uint8

const (
	nodeSimple nodeKind = iota
	nodeIf
	nodeLoop
)

type node struct {
	kind nodeKind
	line bodyLine
	cond []string
	then []node
	els  []node
	body []node
}

var (
	reIf     = regexp.MustCompile(`^\s*if\s*\(`)
	reElse   = regexp.MustCompile(`^\s*}?\s*else\b`)
	reLoop   = regexp.MustCompile(`^\s*(for|while)\s*\(`)
	reIdent  = regexp.MustCompile(`[A-Za-z_]\w*(?:\.\w+)*`)
	reAssign = regexp.MustCompile(`^\(?\s*(?:(?:uint\d*|int\d*|address|bool|bytes\d*|string|var)\s+)?([A-Za-z_]\w*)\s*(?:\[[^\]]*\])?\s*(?:\+|-|\*|/)?=[^=]`)
	reCallEx = regexp.MustCompile(`(\w+(?:\.\w+)*)\s*\.\s*(call|delegatecall|staticcall|transfer|send)\s*[({]`)
	reCall   = regexp.MustCompile(`^([A-Za-z_]\w*)\s*\(`)
)

var identStop = map[string]bool{
	"if": true, "else": true, "for": true, "while": true, "return": true,
	"require": true, "assert": true, "revert": true, "emit": true,
	"true": true, "false": true, "new": true, "delete": true,
	"uint": true, "uint256": true, "uint128": true, "uint64": true, "uint32": true, "uint8": true,
	"int": true, "int256": true, "address": true, "bool": true, "string": true,
	"bytes": true, "bytes32": true, "memory": true, "storage": true, "calldata": true,
	"msg": true, "tx": true, "block": true, "payable": true, "wei": true, "ether": true,
}

func identifiers(s string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range reIdent.FindAllString(s, -1) {
		if identStop[m] && !strings.Contains(m, ".") {
			continue
		}
		if seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}

// parseNodes turns body lines into a statement tree, matching braces
// line by line. `else if` chains collapse into a plain else branch;
// the resulting CFG over-approximates but stays well-formed.
func parseNodes(body []bodyLine) []node {
	nodes, _, _ := parseUntilClose(body, 0)
	return nodes
}

// parseUntilClose parses until the closing brace of the current scope.
// It returns the parsed nodes, the index after the closing line, and
// the closing line's text so the caller can see a trailing `else`.
func parseUntilClose(body []bodyLine, i int) ([]node, int, string) {
	var nodes []node
	for i < len(body) {
		line := body[i]
		trimmed := strings.TrimSpace(line.text)
		switch {
		case trimmed == "" || strings.HasPrefix(trimmed, "//") || strings.HasPrefix(trimmed, "*") || strings.HasPrefix(trimmed, "/*"):
			i++
		case strings.HasPrefix(trimmed, "}"):
			return nodes, i + 1, trimmed
		case reIf.MatchString(trimmed):
			n := node{kind: nodeIf, line: line, cond: identifiers(parenExpr(trimmed))}
			if strings.HasSuffix(trimmed, "{") {
				var closing string
				n.then, i, closing = parseUntilClose(body, i+1)
				if reElse.MatchString(closing) && strings.HasSuffix(closing, "{") {
					n.els, i, _ = parseUntilClose(body, i)
				}
			} else if i+1 < len(body) {
				// single-statement if on the next line
				n.then = []node{{kind: nodeSimple, line: body[i+1]}}
				i += 2
			} else {
				i++
			}
			nodes = append(nodes, n)
		case reLoop.MatchString(trimmed):
			n := node{kind: nodeLoop, line: line, cond: identifiers(parenExpr(trimmed))}
			if strings.HasSuffix(trimmed, "{") {
				n.body, i, _ = parseUntilClose(body, i+1)
			} else {
				i++
			}
			nodes = append(nodes, n)
		default:
			nodes = append(nodes, node{kind: nodeSimple, line: line})
			i++
		}
	}
	return nodes, i, ""
}

// parenExpr extracts the text of the first parenthesized expression.
func parenExpr(s string) string {
	start := strings.IndexByte(s, '(')
	if start < 0 {
		return ""
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return s[start+1 : i]
			}
		}
	}
	return s[start+1:]
}

type builder struct {
	blocks []ir.Block
}

func (b *builder) add() ir.BlockID {
	id := ir.BlockID(len(b.blocks))
	b.blocks = append(b.blocks, ir.Block{ID: id})
	return id
}

func (b *builder) block(id ir.BlockID) *ir.Block { return &b.blocks[id] }

// lowerBody lowers a function body to basic blocks. Block 0 is entry;
// every block ends with exactly one terminator.
func lowerBody(body []bodyLine, stateVars map[string]bool) []ir.Block {
	b := &builder{}
	entry := b.add()
	end, terminated := b.lower(parseNodes(body), entry, stateVars)
	if !terminated {
		b.block(end).Term = ir.Terminator{Kind: ir.TermReturn}
	}
	return b.blocks
}

func (b *builder) lower(nodes []node, cur ir.BlockID, stateVars map[string]bool) (ir.BlockID, bool) {
	for _, n := range nodes {
		switch n.kind {
		case nodeSimple:
			stmt, term := classify(n.line, stateVars)
			if term != nil {
				b.block(cur).Term = *term
				return cur, true
			}
			if stmt != nil {
				blk := b.block(cur)
				blk.Stmts = append(blk.Stmts, *stmt)
			}

		case nodeIf:
			thenB := b.add()
			var elseB ir.BlockID = ir.NoBlock
			if n.els != nil {
				elseB = b.add()
			}
			join := b.add()

			elseTarget := join
			if elseB != ir.NoBlock {
				elseTarget = elseB
			}
			b.block(cur).Term = ir.Terminator{
				Kind: ir.TermCondBranch,
				Cond: n.cond,
				Then: thenB,
				Else: elseTarget,
				Line: n.line.num,
			}

			tEnd, tTerm := b.lower(n.then, thenB, stateVars)
			if !tTerm {
				b.block(tEnd).Term = ir.Terminator{Kind: ir.TermFallthrough, Target: join}
			}
			if elseB != ir.NoBlock {
				eEnd, eTerm := b.lower(n.els, elseB, stateVars)
				if !eTerm {
					b.block(eEnd).Term = ir.Terminator{Kind: ir.TermFallthrough, Target: join}
				}
			}
			cur = join

		case nodeLoop:
			header := b.add()
			bodyB := b.add()
			exitB := b.add()
			b.block(cur).Term = ir.Terminator{Kind: ir.TermFallthrough, Target: header}
			b.block(header).Term = ir.Terminator{
				Kind: ir.TermCondBranch,
				Cond: n.cond,
				Then: bodyB,
				Else: exitB,
				Line: n.line.num,
			}
			bEnd, bTerm := b.lower(n.body, bodyB, stateVars)
			if !bTerm {
				b.block(bEnd).Term = ir.Terminator{Kind: ir.TermFallthrough, Target: header}
			}
			cur = exitB
		}
	}
	return cur, false
}

// classify turns one source line into an IR statement, or a
// terminator for return/revert lines.
func classify(line bodyLine, stateVars map[string]bool) (*ir.Stmt, *ir.Terminator) {
	t := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(line.text), ";"))
	switch {
	case t == "":
		return nil, nil
	case t == "return" || strings.HasPrefix(t, "return ") || strings.HasPrefix(t, "return("):
		return nil, &ir.Terminator{Kind: ir.TermReturn, Line: line.num}
	case t == "revert" || strings.HasPrefix(t, "revert ") || strings.HasPrefix(t, "revert(") || t == "throw":
		return nil, &ir.Terminator{Kind: ir.TermRevert, Line: line.num}
	}

	stmt := ir.Stmt{Line: line.num, Text: t}
	lower := strings.ToLower(t)

	if m := reCallEx.FindStringSubmatch(t); m != nil || strings.Contains(lower, "selfdestruct(") {
		stmt.Kind = ir.StmtExternalCall
		if m != nil {
			stmt.Callee = m[1] + "." + m[2]
		} else {
			stmt.Callee = "selfdestruct"
		}
		if am := reAssign.FindStringSubmatch(t); am != nil {
			stmt.Def = am[1]
		}
		stmt.Uses = identifiers(t)
		return &stmt, nil
	}

	switch {
	case strings.HasPrefix(t, "require(") || strings.HasPrefix(t, "require (") ||
		strings.HasPrefix(t, "assert(") || strings.HasPrefix(t, "assert ("):
		stmt.Kind = ir.StmtRequire
		stmt.Uses = identifiers(parenExpr(t))
	case strings.HasPrefix(t, "emit "):
		stmt.Kind = ir.StmtEmit
		rest := strings.TrimPrefix(t, "emit ")
		if m := reCall.FindStringSubmatch(rest); m != nil {
			stmt.Callee = m[1]
		}
		stmt.Uses = identifiers(parenExpr(rest))
	default:
		if m := reAssign.FindStringSubmatch(t); m != nil {
			stmt.Def = m[1]
			if stateVars[stmt.Def] {
				stmt.Kind = ir.StmtStateWrite
			} else {
				stmt.Kind = ir.StmtAssign
			}
			if eq := strings.IndexByte(t, '='); eq >= 0 {
				stmt.Uses = identifiers(t[eq+1:])
			}
		} else if m := reCall.FindStringSubmatch(t); m != nil {
			stmt.Kind = ir.StmtCall
			stmt.Callee = m[1]
			stmt.Uses = identifiers(parenExpr(t))
		} else {
			stmt.Kind = ir.StmtExpr
			stmt.Uses = identifiers(t)
		}
	}
	return &stmt, nil
}
