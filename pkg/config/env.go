package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// LoadEnvFiles loads .env.local then .env from the working directory,
// tolerating either being absent. A local value already set in the process
// environment takes precedence since godotenv.Load never overwrites it.
func LoadEnvFiles() error {
	envFiles := []string{".env.local", ".env"}

	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to load %s: %w", file, err)
		}
	}

	return nil
}

// GetProviderAPIKey looks up the conventional environment variable for an
// LLM provider type. Used by LLMProviderConfig.SetDefaults as a last resort
// when api_key is left blank in the loaded document.
func GetProviderAPIKey(providerType string) string {
	switch providerType {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic":
		return os.Getenv("ANTHROPIC_API_KEY")
	case "gemini":
		return os.Getenv("GEMINI_API_KEY")
	default:
		return ""
	}
}
