package config

// DefaultCodeExtensions is the built-in allow-list of source extensions
// considered indexable. Hosts override it via config; binary and vendored
// formats are deliberately absent.
func DefaultCodeExtensions() []string {
	return []string{
		".go", ".ts", ".tsx", ".js", ".jsx", ".py", ".rs",
		".c", ".cpp", ".cc", ".h", ".hpp", ".php", ".rb", ".java",
	}
}

// DefaultDocExtensions lists indexable documentation formats.
func DefaultDocExtensions() []string {
	return []string{".md", ".rst"}
}

// BuildExtSet merges code and doc extension lists into a lookup set, for
// callers (the scanner's candidate filter, the watcher's event filter)
// that just need a fast membership test.
func BuildExtSet(code, docs []string) map[string]struct{} {
	set := make(map[string]struct{}, len(code)+len(docs))
	for _, e := range code {
		set[e] = struct{}{}
	}
	for _, e := range docs {
		set[e] = struct{}{}
	}
	return set
}

// DefaultIgnorePrefixes lists directory prefixes that are never indexed.
// Prefixes rather than globs: the scanner checks path segments directly.
func DefaultIgnorePrefixes() []string {
	return []string{
		"node_modules/", "vendor/", ".git/", "dist/", "build/",
		"target/", "__pycache__/",
	}
}
