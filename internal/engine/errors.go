package engine

import "fmt"

// NotARepoError is returned by Start when the workspace is not a git
// checkout. It is always fatal to Start.
type NotARepoError struct {
	Path string
}

func (e *NotARepoError) Error() string {
	return fmt.Sprintf("engine: %s is not a git repository", e.Path)
}
