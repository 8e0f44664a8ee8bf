package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// ErrConfig is returned when a required configuration value is missing or invalid
var ErrConfig = errors.New("configuration error")

const (
	ProviderOpenAI   = "openai"
	ProviderVertexAI = "vertexai"

	TransportSMTP   = "smtp"
	TransportGmail  = "gmail"
	TransportResend = "resend"
)

// Config holds application configuration
type Config struct {
	CandidatesFile string       `json:"candidates_file"`
	Interviewers   []string     `json:"interviewers"`
	Organization   Organization `json:"organization"`
	LLM            LLMConfig    `json:"llm"`
	Mail           MailConfig   `json:"mail"`
	Server         ServerConfig `json:"server"`
	Log            LogConfig    `json:"log"`
}

// Organization is the company the invitations are sent on behalf of
type Organization struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// LLMConfig selects and configures the text generation backend
type LLMConfig struct {
	Provider              string `json:"provider"`
	OpenAIAPIKey          string `json:"openai_api_key"`
	OpenAIBaseURL         string `json:"openai_base_url"`
	OpenAIModel           string `json:"openai_model"`
	GoogleCloudProject    string `json:"google_cloud_project"`
	GoogleCloudLocation   string `json:"google_cloud_location"`
	GoogleCredentialsPath string `json:"google_credentials_path"`
	VertexModel           string `json:"vertex_model"`
	MaxTokens             int32  `json:"max_tokens"`
	TimeoutSeconds        int    `json:"timeout_seconds"`
}

// Timeout returns the generation timeout
func (c LLMConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MailConfig configures the sender identity and the transport used to deliver mail
type MailConfig struct {
	Transport            string `json:"transport"`
	SenderEmail          string `json:"sender_email"`
	SenderPassword       string `json:"sender_password"`
	SMTPHost             string `json:"smtp_host"`
	SMTPPort             int    `json:"smtp_port"`
	GmailCredentialsPath string `json:"gmail_credentials_path"`
	GmailTokenPath       string `json:"gmail_token_path"`
	ResendAPIKey         string `json:"resend_api_key"`
	TimeoutSeconds       int    `json:"timeout_seconds"`
}

// Timeout returns the send timeout
func (c MailConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Secret returns the credential the configured transport authenticates with
func (c MailConfig) Secret() string {
	switch c.Transport {
	case TransportGmail:
		return c.GmailCredentialsPath
	case TransportResend:
		return c.ResendAPIKey
	default:
		return c.SenderPassword
	}
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr string `json:"addr"`
}

// LogConfig configures the process logger
type LogConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// DefaultConfig returns a new config with default values
func DefaultConfig() *Config {
	return &Config{
		CandidatesFile: "candidates.xlsx",
		Interviewers:   []string{"HR-Kishor", "Manager-Tushar", "Manager-Vinayak"},
		Organization: Organization{
			Name:    "Data FactZ",
			Address: "Prime Towers, 4th floor, Hyderabad",
		},
		LLM: LLMConfig{
			Provider:            ProviderOpenAI,
			OpenAIBaseURL:       "https://api.openai.com/v1",
			OpenAIModel:         "gpt-4",
			GoogleCloudLocation: "us-central1",
			VertexModel:         "gemini-1.5-flash",
			MaxTokens:           500,
			TimeoutSeconds:      60,
		},
		Mail: MailConfig{
			Transport:            TransportSMTP,
			SMTPHost:             "smtp.gmail.com",
			SMTPPort:             587,
			GmailCredentialsPath: "credentials.json",
			GmailTokenPath:       "token.json",
			TimeoutSeconds:       30,
		},
		Server: ServerConfig{
			Addr: ":8080",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// GetConfigPath returns the path to the configuration file
// On Windows: %APPDATA%/InterviewInviteAgent/config.json
// On Unix: ~/.config/InterviewInviteAgent/config.json
func GetConfigPath() (string, error) {
	var configDir string

	if os.Getenv("APPDATA") != "" {
		configDir = filepath.Join(os.Getenv("APPDATA"), "InterviewInviteAgent")
	} else {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configDir = filepath.Join(homeDir, ".config", "InterviewInviteAgent")
	}

	if err := os.MkdirAll(configDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return filepath.Join(configDir, "config.json"), nil
}

// Load loads configuration from the default config path
func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return nil, err
	}

	return LoadFrom(configPath)
}

// LoadFrom loads configuration from a specific path
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Return default config if file doesn't exist
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default config path
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	return c.SaveTo(configPath)
}

// SaveTo saves the configuration to a specific path
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// LoadEnvFile reads KEY=VALUE pairs from a dotenv file. A missing file yields an empty map.
func LoadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("failed to read env file %s: %w", path, err)
	}
	return values, nil
}

// Lookup resolves a variable name to a value; it mirrors os.LookupEnv
type Lookup func(key string) (string, bool)

// Chain returns a Lookup that tries each source in order
func Chain(sources ...Lookup) Lookup {
	return func(key string) (string, bool) {
		for _, src := range sources {
			if src == nil {
				continue
			}
			if v, ok := src(key); ok {
				return v, true
			}
		}
		return "", false
	}
}

// MapLookup adapts a map to a Lookup
func MapLookup(m map[string]string) Lookup {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

// ApplyEnv overrides file values with variables from lookup. The first listed name wins
// when a value has several accepted names.
func (c *Config) ApplyEnv(lookup Lookup) {
	str := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v, ok := lookup(k); ok && strings.TrimSpace(v) != "" {
				*dst = strings.TrimSpace(v)
				return
			}
		}
	}

	str(&c.CandidatesFile, "CANDIDATES_FILE")
	str(&c.Organization.Name, "ORG_NAME")
	str(&c.Organization.Address, "ORG_ADDRESS")

	str(&c.LLM.Provider, "LLM_PROVIDER")
	str(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	str(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	str(&c.LLM.OpenAIModel, "OPENAI_MODEL")
	str(&c.LLM.GoogleCloudProject, "GOOGLE_CLOUD_PROJECT")
	str(&c.LLM.GoogleCloudLocation, "GOOGLE_CLOUD_LOCATION")
	str(&c.LLM.GoogleCredentialsPath, "GOOGLE_APPLICATION_CREDENTIALS")
	str(&c.LLM.VertexModel, "VERTEX_MODEL")

	str(&c.Mail.Transport, "MAIL_TRANSPORT")
	str(&c.Mail.SenderEmail, "SENDER_EMAIL", "sender_email")
	str(&c.Mail.SenderPassword, "SENDER_PASSWORD", "password")
	str(&c.Mail.GmailCredentialsPath, "GMAIL_CREDENTIALS")
	str(&c.Mail.ResendAPIKey, "RESEND_API_KEY")

	str(&c.Log.Level, "LOG_LEVEL")
	str(&c.Log.Format, "LOG_FORMAT")

	if v, ok := lookup("INTERVIEWERS"); ok {
		if names := splitList(v); len(names) > 0 {
			c.Interviewers = names
		}
	}

	if v, ok := lookup("PORT"); ok && strings.TrimSpace(v) != "" {
		if _, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			c.Server.Addr = ":" + strings.TrimSpace(v)
		}
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.CandidatesFile == "" {
		return fmt.Errorf("%w: candidates_file is required", ErrConfig)
	}

	if len(c.Interviewers) == 0 {
		return fmt.Errorf("%w: at least one interviewer is required", ErrConfig)
	}

	if err := c.LLM.Validate(); err != nil {
		return err
	}

	switch c.Mail.Transport {
	case TransportSMTP:
		if c.Mail.SMTPHost == "" || c.Mail.SMTPPort <= 0 {
			return fmt.Errorf("%w: smtp_host and smtp_port are required for the smtp transport", ErrConfig)
		}
	case TransportGmail, TransportResend:
	default:
		return fmt.Errorf("%w: unknown mail transport %q", ErrConfig, c.Mail.Transport)
	}

	return nil
}

// Validate checks that the selected provider has its credential
func (c LLMConfig) Validate() error {
	switch c.Provider {
	case ProviderOpenAI:
		if c.OpenAIAPIKey == "" {
			return fmt.Errorf("%w: OPENAI_API_KEY is required for the openai provider", ErrConfig)
		}
	case ProviderVertexAI:
		if c.GoogleCloudProject == "" {
			return fmt.Errorf("%w: google_cloud_project is required for the vertexai provider", ErrConfig)
		}
		if c.GoogleCloudLocation == "" {
			return fmt.Errorf("%w: google_cloud_location is required", ErrConfig)
		}
		if c.GoogleCredentialsPath != "" {
			if _, err := os.Stat(c.GoogleCredentialsPath); err != nil {
				return fmt.Errorf("%w: google credentials file not found: %v", ErrConfig, err)
			}
		}
	default:
		return fmt.Errorf("%w: unknown llm provider %q", ErrConfig, c.Provider)
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
