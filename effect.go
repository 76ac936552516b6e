package overlay

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// EffectSource is a parsed effect file: a single shader source compiled
// once per stage and pass.
//
// The source is compiled with VERTEX defined for the vertex stage and
// FRAGMENT for the fragment stage. Lines of the form
//
//	#pragma pass NAME
//
// declare passes, in order; each pass is compiled with PASS_NAME defined.
// A source without pass pragmas has a single pass named "main".
type EffectSource struct {
	Path    string
	Version string // the #version line, if any
	Body    string // source with the #version line removed
	Passes  []string
}

// Stage is a shader stage of an effect pass.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) define() string {
	if s == StageVertex {
		return "VERTEX"
	}
	return "FRAGMENT"
}

// ParseEffect parses effect source text. path is only used in errors.
func ParseEffect(path, src string) (*EffectSource, error) {
	es := &EffectSource{Path: path}
	seen := make(map[string]bool)

	var body strings.Builder
	sc := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		trimmed := strings.TrimSpace(text)

		if strings.HasPrefix(trimmed, "#version") {
			if es.Version != "" {
				return nil, &CompileError{Path: path, Log: fmt.Sprintf("line %d: duplicate #version", line)}
			}
			es.Version = trimmed
			continue
		}

		if fields := strings.Fields(trimmed); len(fields) >= 2 && fields[0] == "#pragma" && fields[1] == "pass" {
			if len(fields) != 3 || !validPassName(fields[2]) {
				return nil, &CompileError{Path: path, Log: fmt.Sprintf("line %d: malformed pass pragma %q", line, trimmed)}
			}
			name := fields[2]
			if seen[name] {
				return nil, &CompileError{Path: path, Log: fmt.Sprintf("line %d: duplicate pass %q", line, name)}
			}
			seen[name] = true
			es.Passes = append(es.Passes, name)
			continue
		}

		body.WriteString(text)
		body.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, &CompileError{Path: path, Err: err}
	}

	if strings.TrimSpace(body.String()) == "" {
		return nil, &CompileError{Path: path, Log: "empty effect source"}
	}
	if len(es.Passes) == 0 {
		es.Passes = []string{"main"}
	}
	es.Body = body.String()
	return es, nil
}

// LoadEffect reads and parses the effect file at path.
func LoadEffect(path string) (*EffectSource, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &CompileError{Path: path, Err: err}
	}
	return ParseEffect(path, string(b))
}

// StageSource returns the complete source for one stage of one pass,
// with the stage and pass defines placed directly after #version.
func (es *EffectSource) StageSource(pass int, stage Stage) string {
	var sb strings.Builder
	if es.Version != "" {
		sb.WriteString(es.Version)
		sb.WriteByte('\n')
	}
	fmt.Fprintf(&sb, "#define %s 1\n", stage.define())
	if pass >= 0 && pass < len(es.Passes) {
		fmt.Fprintf(&sb, "#define PASS_%s 1\n", es.Passes[pass])
	}
	sb.WriteString(es.Body)
	return sb.String()
}

func validPassName(s string) bool {
	for i, r := range s {
		switch {
		case r == '_', r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return s != ""
}
