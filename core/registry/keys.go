package registry

// Keys for GlobalRegistry and per-application extension tables.
const (
	// Process-level registries (cmd, api, routes) stored in GlobalRegistry
	KeyRegistryCmd    = "registry:cmd"
	KeyRegistryAPI    = "registry:api"
	KeyRegistryRoutes = "registry:routes"

	// Per-application extension records are stored under this prefix
	KeyExtensionPrefix = "extension:"
)

// ExtensionKey returns the extension table key for an extension name.
func ExtensionKey(name string) string {
	return KeyExtensionPrefix + name
}
