package shader

import (
	"fmt"
	"strings"
)

// preProcessor is the implementation of the PreProcessor interface.
type preProcessor struct {
	includes  map[string]string
	constants map[string]string
	applied   []Annotation
}

// PreProcessor expands @trace: annotations in WGSL source. Struct sources are registered by the Go
// packages that own the matching GPU records, so the host and the kernel share one definition.
type PreProcessor interface {
	// Process replaces every annotation line with its expansion. Each include is expanded at most
	// once; repeated includes of the same name expand to nothing.
	//
	// Parameters:
	//   - source: WGSL source containing annotations
	//
	// Returns:
	//   - string: the expanded source
	//   - error: an error for malformed annotations or unregistered names
	Process(source string) (string, error)

	// Applied returns the annotations expanded by the last Process call, in source order.
	//
	// Returns:
	//   - []Annotation: the expanded annotations
	Applied() []Annotation
}

var _ PreProcessor = &preProcessor{}

// PreProcessorOption configures the registries of a PreProcessor.
type PreProcessorOption func(*preProcessor)

// WithInclude registers WGSL source for //@trace:include <name>.
//
// Parameters:
//   - name: the include name
//   - source: the WGSL text injected at the annotation
//
// Returns:
//   - PreProcessorOption: the option
func WithInclude(name, source string) PreProcessorOption {
	return func(p *preProcessor) {
		p.includes[name] = source
	}
}

// WithConstant registers the value emitted for //@trace:const <name> <type>.
//
// Parameters:
//   - name: the constant name
//   - value: a WGSL literal, for example "4u"
//
// Returns:
//   - PreProcessorOption: the option
func WithConstant(name, value string) PreProcessorOption {
	return func(p *preProcessor) {
		p.constants[name] = value
	}
}

// NewPreProcessor creates a PreProcessor with the given registrations.
//
// Parameters:
//   - options: include and constant registrations
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(options ...PreProcessorOption) PreProcessor {
	p := &preProcessor{
		includes:  make(map[string]string),
		constants: make(map[string]string),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *preProcessor) Process(source string) (string, error) {
	p.applied = p.applied[:0]
	included := make(map[string]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			name := a.Args[0]
			src, ok := p.includes[name]
			if !ok {
				return "", fmt.Errorf("line %d: unknown include %q", a.Line, name)
			}
			if !included[name] {
				out = append(out, strings.TrimRight(src, "\n"))
				included[name] = true
			}
		case AnnotationTypeConst:
			value, ok := p.constants[a.Args[0]]
			if !ok {
				return "", fmt.Errorf("line %d: no value for constant %q", a.Line, a.Args[0])
			}
			out = append(out, fmt.Sprintf("const %s: %s = %s;", a.Args[0], a.Args[1], value))
		}
		p.applied = append(p.applied, *a)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Applied() []Annotation {
	return p.applied
}
