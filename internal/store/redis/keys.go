package redis

const (
	// KeyPrefix namespaces every key written by moteur
	KeyPrefix = "moteur:"
	// KeyPrefixCredential is the prefix for credential keys
	KeyPrefixCredential = KeyPrefix + "credential:"
	// DefaultCredentialName names the Gemini API key entry
	DefaultCredentialName = "gemini-api-key"
)

// CredentialKey returns the Redis key for a named credential
func CredentialKey(name string) string {
	return KeyPrefixCredential + name
}
