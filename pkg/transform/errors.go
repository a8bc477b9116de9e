package transform

import (
	"errors"
	"fmt"
	"strings"

	jmespath "github.com/nozzle/jmespath"
)

// FormatErrors turns one or more transform failures into a user-facing
// report, in the shape of the teacher's FormatTransformErrors: one bullet
// per failure, with a location line when the underlying error carries a
// *jmespath.SyntaxError's token position.
func FormatErrors(errs []error) string {
	if len(errs) == 0 {
		return "transformation failed, but no additional details were provided"
	}
	var b strings.Builder
	b.WriteString("jmespath transform errors:\n")
	for _, err := range errs {
		fmt.Fprintf(&b, "- %s\n", err)
		if pos, ok := syntaxPosition(err); ok {
			fmt.Fprintf(&b, "  Location: character %d\n", pos)
		}
	}
	return b.String()
}

func syntaxPosition(err error) (int, bool) {
	var se *jmespath.SyntaxError
	if !errors.As(err, &se) {
		return 0, false
	}
	return se.Token.Position, true
}
