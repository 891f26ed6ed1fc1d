package hmicli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"hmitree/internal/graph"
)

// ErrInputParse marks a malformed line in either the node-definition
// block or the command stream (spec §7's InputParseError kind).
var ErrInputParse = fmt.Errorf("input parse error")

// Run reads the node-definition block followed by the command stream
// from r, driving eng, and writes progress/print output to w. It
// follows the exact line grammar of
// original_source/src/solution/main.cc: a leading node-count line,
// that many "parentID,type,nodeID[,content]" definition lines, then
// commands ("print", "refresh", "end", or "<id>,<args...>") until EOF
// or a line reading "end".
func Run(r io.Reader, w io.Writer, eng *Engine) error {
	scanner := bufio.NewScanner(r)

	if !scanner.Scan() {
		return fmt.Errorf("%w: missing node count line", ErrInputParse)
	}
	nnodes, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
	if err != nil {
		return fmt.Errorf("%w: node count %q: %v", ErrInputParse, scanner.Text(), err)
	}

	for i := 0; i < nnodes; i++ {
		if !scanner.Scan() {
			return fmt.Errorf("%w: expected %d node definitions, got %d", ErrInputParse, nnodes, i)
		}
		if err := defineNodeFromLine(eng, scanner.Text()); err != nil {
			return err
		}
	}

	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "end":
			eng.HandleEnd()
			return nil
		case line == "print":
			fmt.Fprintln(w, graph.Describe(eng.Graph))
		case line == "refresh":
			log.Printf(">>>>> Frame %d <<<<<", eng.Frame()+1)
			rendered := eng.HandleRefresh()
			log.Printf("rendered %d node(s): %v", len(rendered), rendered)
		default:
			if err := applyUpdateLine(eng, line); err != nil {
				// Per the InputParseError propagation policy, a
				// malformed command line is rejected and processing
				// continues; only an UnknownNode failure from
				// eng.HandleUpdate is fatal.
				if errors.Is(err, ErrInputParse) {
					log.Printf("skipping malformed command line %q: %v", line, err)
					continue
				}
				return err
			}
		}
	}
	eng.HandleEnd()
	return scanner.Err()
}

func defineNodeFromLine(eng *Engine, line string) error {
	fields := strings.Split(line, ",")
	if len(fields) < 3 {
		return fmt.Errorf("%w: malformed node definition %q", ErrInputParse, line)
	}

	parentID, err := parseNodeID(fields[0])
	if err != nil {
		return fmt.Errorf("%w: node definition %q: %v", ErrInputParse, line, err)
	}
	kind, err := KindFromCode(fields[1])
	if err != nil {
		return fmt.Errorf("%w: node definition %q: %v", ErrInputParse, line, err)
	}
	id, err := parseNodeID(fields[2])
	if err != nil {
		return fmt.Errorf("%w: node definition %q: %v", ErrInputParse, line, err)
	}

	content := ""
	if kind == graph.KindText {
		if len(fields) < 4 {
			return fmt.Errorf("%w: text node definition %q missing content", ErrInputParse, line)
		}
		content = fields[3]
	}

	if err := eng.DefineNode(parentID, kind, id, content); err != nil {
		return fmt.Errorf("define node from %q: %w", line, err)
	}
	return nil
}

func applyUpdateLine(eng *Engine, line string) error {
	fields := strings.Split(line, ",")
	if len(fields) == 0 {
		return fmt.Errorf("%w: empty update line", ErrInputParse)
	}
	id, err := parseNodeID(fields[0])
	if err != nil {
		return fmt.Errorf("%w: update line %q: %v", ErrInputParse, line, err)
	}
	if err := eng.HandleUpdate(id, fields[1:]); err != nil {
		return fmt.Errorf("apply update %q: %w", line, err)
	}
	return nil
}

func parseNodeID(s string) (graph.NodeID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, err
	}
	return graph.NodeID(v), nil
}
