package types

import "time"

// HTTPConfig holds shared HTTP settings used by components that make
// network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests
	// (e.g. "pubmed-insight/0.1").
	UserAgent string `json:"user_agent" yaml:"user_agent"`
}

// SearchConfig holds settings for the PubMed search client.
type SearchConfig struct {
	HTTPConfig `yaml:",inline"`

	// Email is the default identification email sent to NCBI when a
	// request does not carry its own. NCBI requires one on every call.
	Email string `json:"email,omitempty" yaml:"email,omitempty"`

	// APIKey is an optional NCBI API key for a higher rate allowance.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// BatchSize caps how many records one efetch page requests (default 100).
	BatchSize int `json:"batch_size" yaml:"batch_size"`

	// BatchDelay is the politeness delay between efetch pages (default 1s).
	BatchDelay time.Duration `json:"batch_delay" yaml:"batch_delay"`

	// MaxRetries bounds retries of rate-limited or failing calls (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
}

// StoreBackend selects the result-store implementation.
type StoreBackend string

const (
	StoreFile   StoreBackend = "file"
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig holds settings for the result store.
type StoreConfig struct {
	// Backend selects the store implementation: file or sqlite.
	Backend StoreBackend `json:"backend" yaml:"backend"`

	// Dir is the directory holding result-set files (and the SQLite
	// database for the sqlite backend). Default "output".
	Dir string `json:"dir" yaml:"dir"`
}

// SummarizeConfig holds settings for the summarization client.
type SummarizeConfig struct {
	HTTPConfig `yaml:",inline"`

	// APIKey authenticates against the chat-completions API
	// (SILICONFLOW_API_KEY). A missing key surfaces as summary_failed.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty"`

	// Model is the default model identifier when a request omits one.
	Model string `json:"model" yaml:"model"`

	// MaxTokens is the default generation budget (default 512).
	MaxTokens int `json:"max_tokens" yaml:"max_tokens"`

	// Temperature is the default sampling temperature (default 0.3).
	Temperature float64 `json:"temperature" yaml:"temperature"`
}

// ServerConfig holds settings for the HTTP tool server.
type ServerConfig struct {
	// Addr is the listen address (default ":8080").
	Addr string `json:"addr" yaml:"addr"`

	// ToolTimeout bounds one tool invocation end to end (default 3m),
	// so a stalled external service cannot hang a request forever.
	ToolTimeout time.Duration `json:"tool_timeout" yaml:"tool_timeout"`

	// LogFile, when set, receives JSON logs in addition to stdout.
	LogFile string `json:"log_file,omitempty" yaml:"log_file,omitempty"`
}

// Config groups all component configurations. It is built once at startup
// and injected at construction; components never read the environment.
type Config struct {
	Search    SearchConfig    `json:"search" yaml:"search"`
	Store     StoreConfig     `json:"store" yaml:"store"`
	Summarize SummarizeConfig `json:"summarize" yaml:"summarize"`
	Server    ServerConfig    `json:"server" yaml:"server"`
}
