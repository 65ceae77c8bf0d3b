// annotations.go defines the WGSL annotations understood by the pre-processor. Annotations are
// single-line comments prefixed with @trace: that either inject a registered struct source or emit
// a constant declaration whose value is chosen on the host.
package shader

import (
	"fmt"
	"strings"
)

// annotationPrefix marks an annotation within a WGSL line comment.
const annotationPrefix = "@trace:"

// AnnotationType identifies the action an annotation asks for.
type AnnotationType string

const (
	// AnnotationTypeInclude is replaced by the WGSL source registered under its argument.
	//
	// Syntax: //@trace:include <name>
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeConst is replaced by `const <NAME>: <type> = <value>;` with the value registered
	// under NAME.
	//
	// Syntax: //@trace:const <NAME> <type>
	AnnotationTypeConst AnnotationType = "const"
)

// Annotation is a parsed annotation line.
type Annotation struct {
	Type AnnotationType
	Args []string
	Line int
}

// parseAnnotation parses a single source line. Lines that are not annotations return nil.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number used in errors
//
// Returns:
//   - *Annotation: the parsed annotation, or nil
//   - error: an error for malformed annotations
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	body, ok := strings.CutPrefix(trimmed, "//")
	if !ok {
		return nil, nil
	}
	body, ok = strings.CutPrefix(strings.TrimSpace(body), annotationPrefix)
	if !ok {
		return nil, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return nil, fmt.Errorf("line %d: empty annotation", lineNum)
	}
	a := &Annotation{Type: AnnotationType(fields[0]), Args: fields[1:], Line: lineNum}

	switch a.Type {
	case AnnotationTypeInclude:
		if len(a.Args) != 1 {
			return nil, fmt.Errorf("line %d: include takes one argument, got %d", lineNum, len(a.Args))
		}
	case AnnotationTypeConst:
		if len(a.Args) != 2 {
			return nil, fmt.Errorf("line %d: const takes a name and a type, got %d arguments", lineNum, len(a.Args))
		}
	default:
		return nil, fmt.Errorf("line %d: unknown annotation type %q", lineNum, a.Type)
	}
	return a, nil
}
