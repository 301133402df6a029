// Package config defines the configuration schema for personaforge.
//
// Keys use camelCase in both the JSON and YAML forms. Every credential can
// also come from the environment; see Load.
package config

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Port int `json:"port" yaml:"port"`
}

// LLMConfig holds the chat-completion backend settings.
type LLMConfig struct {
	APIKey      string  `json:"apiKey" yaml:"apiKey"`
	APIBase     string  `json:"apiBase" yaml:"apiBase"`
	Model       string  `json:"model" yaml:"model"`
	MaxTokens   int     `json:"maxTokens" yaml:"maxTokens"`
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// SearchConfig holds the web-search provider credentials.
type SearchConfig struct {
	APIKey string `json:"apiKey" yaml:"apiKey"`
}

// XConfig holds the X API credentials.
type XConfig struct {
	BearerToken string `json:"bearerToken" yaml:"bearerToken"`
}

// BrowseConfig tunes the page-fetch tool.
type BrowseConfig struct {
	// PDFExtractURL is the base URL of the optional PDF extraction backend.
	PDFExtractURL string `json:"pdfExtractUrl" yaml:"pdfExtractUrl"`
	MaxPageChars  int    `json:"maxPageChars" yaml:"maxPageChars"`
	TimeoutSecs   int    `json:"timeoutSeconds" yaml:"timeoutSeconds"`
	MaxRetries    int    `json:"maxRetries" yaml:"maxRetries"`
}

// AgentConfig tunes the orchestration loop and the evidence seeder.
type AgentConfig struct {
	MaxTurns          int `json:"maxTurns" yaml:"maxTurns"`
	SeedPostLimit     int `json:"seedPostLimit" yaml:"seedPostLimit"`
	SeedSearchResults int `json:"seedSearchResults" yaml:"seedSearchResults"`
}

// Config is the root configuration object.
type Config struct {
	Server ServerConfig `json:"server" yaml:"server"`
	LLM    LLMConfig    `json:"llm" yaml:"llm"`
	Search SearchConfig `json:"search" yaml:"search"`
	X      XConfig      `json:"x" yaml:"x"`
	Browse BrowseConfig `json:"browse" yaml:"browse"`
	Agent  AgentConfig  `json:"agent" yaml:"agent"`
}

// DefaultConfig returns the built-in defaults. Credentials default to empty
// and must come from the config file or the environment.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{Port: 8790},
		LLM: LLMConfig{
			APIBase:     "https://api.openai.com/v1",
			Model:       "gpt-4o",
			MaxTokens:   4096,
			Temperature: 0.3,
		},
		Browse: BrowseConfig{
			MaxPageChars: 20000,
			TimeoutSecs:  15,
			MaxRetries:   2,
		},
		Agent: AgentConfig{
			MaxTurns:          16,
			SeedPostLimit:     50,
			SeedSearchResults: 10,
		},
	}
}
