package analysis

import "fmt"

// ArtifactNotFoundError is returned when a pass asks for an artifact
// no pass has produced. Reading one's own not-yet-written artifact
// fails this way rather than yielding a zero value silently.
type ArtifactNotFoundError struct {
	Name string
}

func (e *ArtifactNotFoundError) Error() string {
	return fmt.Sprintf("analysis: artifact %q not found", e.Name)
}

// ArtifactTypeError is returned when an artifact exists but does not
// have the type the reader expected.
type ArtifactTypeError struct {
	Name string
	Want string
	Got  string
}

func (e *ArtifactTypeError) Error() string {
	return fmt.Sprintf("analysis: artifact %q has type %s, want %s", e.Name, e.Got, e.Want)
}

// Artifact retrieves a named artifact with its expected type. The
// store is type-erased; this is the single checked way back out.
func Artifact[T any](c *Context, name string) (T, error) {
	var zero T
	raw, ok := c.rawArtifact(name)
	if !ok {
		return zero, &ArtifactNotFoundError{Name: name}
	}
	v, ok := raw.(T)
	if !ok {
		return zero, &ArtifactTypeError{
			Name: name,
			Want: fmt.Sprintf("%T", zero),
			Got:  fmt.Sprintf("%T", raw),
		}
	}
	return v, nil
}
