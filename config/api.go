package config

// GetAuthSkipperPaths returns a list of paths to skip authentication for
func GetAuthSkipperPaths() []string {
	prefix := "/api"
	if AppConfig != nil {
		prefix = AppConfig.APIPrefix
	}
	// Read-only widget endpoints stay public
	return []string{prefix + "/widgets/:instid", "/health"}
}
