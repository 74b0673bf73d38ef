package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	// Public read-only surface (GraphQL and health check, no auth)
	return []string{"/graphql", "/health"}
}
