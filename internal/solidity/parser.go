// Package solidity is the heuristic Solidity front-end: it recognizes
// contracts, state variables, and function bodies from source text and
// lowers bodies into IR blocks the analysis passes consume. It is not
// a real parser; it trades precision for zero toolchain dependencies,
// the same trade the rest of the analyzer makes.
package solidity

import (
	"regexp"
	"strings"

	"github.com/xab-mack/smartanalyzer/internal/cache"
	"github.com/xab-mack/smartanalyzer/internal/ir"
)

var (
	reContract = regexp.MustCompile(`^\s*(?:abstract\s+)?(?:contract|library|interface)\s+(\w+)`)
	reFunction = regexp.MustCompile(`^\s*function\s+(\w+)\s*\(([^)]*)\)\s*(.*)$`)
	reStateVar = regexp.MustCompile(`^\s*(uint\d*|int\d*|address|bool|bytes\d*|string|mapping\s*\([^;]*\))\s+(?:public\s+|private\s+|internal\s+|constant\s+|immutable\s+)*(\w+)\s*(?:=[^;]*)?;`)
	reVis      = regexp.MustCompile(`\b(public|external|internal|private)\b`)
	reMut      = regexp.MustCompile(`\b(view|pure|payable)\b`)
)

// Parse lowers one Solidity source file into an IR unit. Results are
// cached by content hash.
func Parse(path, content string) (*ir.Unit, error) {
	key := cache.Key("sol-unit-v2", path, content)
	var cached ir.Unit
	if cache.Load(key, &cached) {
		cached.Source = content
		return &cached, nil
	}

	unit := &ir.Unit{Path: path, Language: "solidity", Source: content}
	lines := strings.Split(content, "\n")

	var current *ir.Contract
	stateVars := map[string]bool{}

	for i := 0; i < len(lines); i++ {
		line := lines[i]
		if m := reContract.FindStringSubmatch(line); m != nil {
			current = &ir.Contract{Name: m[1], Line: i + 1}
			unit.Contracts = append(unit.Contracts, current)
			stateVars = map[string]bool{}
			continue
		}
		if current == nil {
			continue
		}
		if m := reStateVar.FindStringSubmatch(line); m != nil {
			v := &ir.Variable{Name: m[2], Type: strings.TrimSpace(m[1]), State: true, Line: i + 1}
			current.StateVars = append(current.StateVars, v)
			stateVars[v.Name] = true
			continue
		}
		if m := reFunction.FindStringSubmatch(line); m != nil {
			fn := &ir.Function{
				Name:     m[1],
				Contract: current.Name,
				Params:   parseParams(m[2], i+1),
				Line:     i + 1,
			}
			if v := reVis.FindString(m[3]); v != "" {
				fn.Visibility = v
			}
			if mu := reMut.FindString(m[3]); mu != "" {
				fn.Mutability = mu
			}
			body, end := extractBody(lines, i)
			fn.Blocks = lowerBody(body, stateVars)
			current.Functions = append(current.Functions, fn)
			i = end
		}
	}

	_ = cache.Store(key, unit)
	return unit, nil
}

func parseParams(list string, line int) []*ir.Variable {
	var out []*ir.Variable
	for _, part := range strings.Split(list, ",") {
		fields := strings.Fields(strings.TrimSpace(part))
		if len(fields) == 0 {
			continue
		}
		name := fields[len(fields)-1]
		typ := fields[0]
		if name == typ {
			continue // unnamed parameter
		}
		out = append(out, &ir.Variable{Name: name, Type: typ, Line: line})
	}
	return out
}

// extractBody returns the body lines of the function starting at
// header line start (brace-matched), and the index of its last line.
// Lines keep their 1-based source numbers via bodyLine.
func extractBody(lines []string, start int) ([]bodyLine, int) {
	depth := 0
	opened := false
	var body []bodyLine
	for i := start; i < len(lines); i++ {
		for _, r := range lines[i] {
			switch r {
			case '{':
				depth++
				opened = true
			case '}':
				depth--
			}
		}
		if i > start {
			body = append(body, bodyLine{text: lines[i], num: i + 1})
		}
		if opened && depth <= 0 {
			// drop the closing-brace line from the body
			if len(body) > 0 {
				body = body[:len(body)-1]
			}
			return body, i
		}
	}
	return body, len(lines) - 1
}

type bodyLine struct {
	text string
	num  int
}
