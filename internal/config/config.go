package config

import (
	"fmt"
	"strings"
	"time"
)

type Config struct {
	Transcription TranscriptionConfig `yaml:"transcription" toml:"transcription"`
	FFmpeg        FFmpegConfig        `yaml:"ffmpeg" toml:"ffmpeg"`
	Ollama        OllamaConfig        `yaml:"ollama" toml:"ollama"`
	Gemini        GeminiConfig        `yaml:"gemini" toml:"gemini"`
	Pipeline      PipelineConfig      `yaml:"pipeline" toml:"pipeline"`
	Chunking      ChunkingConfig      `yaml:"chunking" toml:"chunking"`
	Summary       SummaryConfig       `yaml:"summary" toml:"summary"`
	Paths         PathsConfig         `yaml:"paths" toml:"paths"`
	Output        OutputConfig        `yaml:"output" toml:"output"`
	Logging       LoggingConfig       `yaml:"logging" toml:"logging"`
	Performance   PerformanceConfig   `yaml:"performance" toml:"performance"`
}

// TranscriptionConfig describes the speech-to-text subprocess. The audio path
// is always appended after Args as the final positional argument.
type TranscriptionConfig struct {
	Command        string   `yaml:"command" toml:"command"`
	Args           []string `yaml:"args" toml:"args"`
	NormalizeAudio bool     `yaml:"normalize_audio" toml:"normalize_audio"`
	TimeoutSeconds int      `yaml:"timeout_seconds" toml:"timeout_seconds"`
}

type FFmpegConfig struct {
	BinaryPath string `yaml:"binary_path" toml:"binary_path"`
	SampleRate int    `yaml:"sample_rate" toml:"sample_rate"`
}

type OllamaConfig struct {
	URL            string  `yaml:"url" toml:"url"`
	Model          string  `yaml:"model" toml:"model"`
	TimeoutSeconds int     `yaml:"timeout_seconds" toml:"timeout_seconds"`
	ContextWindow  int     `yaml:"context_window" toml:"context_window"`
	Threads        int     `yaml:"threads" toml:"threads"`
	Temperature    float64 `yaml:"temperature" toml:"temperature"`
	TopP           float64 `yaml:"top_p" toml:"top_p"`
	SinglePass     bool    `yaml:"single_pass" toml:"single_pass"`
}

type GeminiConfig struct {
	Model         string  `yaml:"model" toml:"model"`
	FallbackModel string  `yaml:"fallback_model" toml:"fallback_model"`
	APIKey        string  `yaml:"api_key" toml:"api_key"`
	Temperature   float64 `yaml:"temperature" toml:"temperature"`
	TopP          float64 `yaml:"top_p" toml:"top_p"`
	// SinglePass skips chunking; Gemini context windows hold whole meetings.
	SinglePass *bool `yaml:"single_pass" toml:"single_pass"`
}

type PipelineConfig struct {
	Mode            string `yaml:"mode" toml:"mode"`
	TokenThreshold  int    `yaml:"token_threshold" toml:"token_threshold"`
	AutoConfirmLong bool   `yaml:"auto_confirm_long" toml:"auto_confirm_long"`
}

type ChunkingConfig struct {
	MaxChars    int `yaml:"max_chars" toml:"max_chars"`
	TargetChars int `yaml:"target_chars" toml:"target_chars"`
}

type SummaryConfig struct {
	Language string `yaml:"language" toml:"language"`
}

type PathsConfig struct {
	Input    string `yaml:"input" toml:"input"`
	Output   string `yaml:"output" toml:"output"`
	Archived string `yaml:"archived" toml:"archived"`
	Temp     string `yaml:"temp" toml:"temp"`
}

type OutputConfig struct {
	Formats []string `yaml:"formats" toml:"formats"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" toml:"level"`
	Format string `yaml:"format" toml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" toml:"max_concurrent"`
}

// Default returns a configuration with every default applied
func Default() *Config {
	cfg := &Config{
		Paths: PathsConfig{
			Input:  "data/input",
			Output: "data/output",
		},
	}
	_ = cfg.Validate()
	return cfg
}

func (c *Config) Validate() error {
	if c.Paths.Input == "" {
		return fmt.Errorf("paths.input is required")
	}
	if c.Paths.Output == "" {
		return fmt.Errorf("paths.output is required")
	}

	c.Pipeline.Mode = strings.ToLower(strings.TrimSpace(c.Pipeline.Mode))
	switch c.Pipeline.Mode {
	case "":
		c.Pipeline.Mode = "auto"
	case "auto", "local", "cloud":
	default:
		return fmt.Errorf("pipeline.mode must be one of auto, local, cloud (got %q)", c.Pipeline.Mode)
	}
	if c.Pipeline.TokenThreshold < 0 {
		return fmt.Errorf("pipeline.token_threshold must not be negative")
	}
	if c.Chunking.MaxChars < 0 || c.Chunking.TargetChars < 0 {
		return fmt.Errorf("chunking sizes must not be negative")
	}
	if c.Chunking.MaxChars > 0 && c.Chunking.TargetChars > c.Chunking.MaxChars {
		return fmt.Errorf("chunking.target_chars (%d) exceeds chunking.max_chars (%d)", c.Chunking.TargetChars, c.Chunking.MaxChars)
	}
	for _, f := range c.Output.Formats {
		switch strings.ToLower(f) {
		case "md", "docx", "json":
		default:
			return fmt.Errorf("output.formats: unsupported format %q", f)
		}
	}

	if c.Paths.Archived == "" {
		c.Paths.Archived = "data/archived"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Transcription.Command == "" {
		c.Transcription.Command = "python3"
		if len(c.Transcription.Args) == 0 {
			c.Transcription.Args = []string{"transcribe_script.py"}
		}
	}
	if c.Transcription.TimeoutSeconds == 0 {
		c.Transcription.TimeoutSeconds = 3600
	}
	if c.FFmpeg.BinaryPath == "" {
		c.FFmpeg.BinaryPath = "ffmpeg"
	}
	if c.FFmpeg.SampleRate == 0 {
		c.FFmpeg.SampleRate = 16000
	}
	if c.Ollama.URL == "" {
		c.Ollama.URL = "http://localhost:11434"
	}
	if c.Ollama.Model == "" {
		c.Ollama.Model = "llama3.1:8b"
	}
	if c.Ollama.TimeoutSeconds == 0 {
		c.Ollama.TimeoutSeconds = 600
	}
	if c.Ollama.ContextWindow == 0 {
		c.Ollama.ContextWindow = 8192
	}
	if c.Ollama.Temperature == 0 {
		c.Ollama.Temperature = 0.3
	}
	if c.Ollama.TopP == 0 {
		c.Ollama.TopP = 0.9
	}
	if c.Gemini.Model == "" {
		c.Gemini.Model = "gemini-2.5-flash"
	}
	if c.Gemini.FallbackModel == "" {
		c.Gemini.FallbackModel = "gemini-2.0-flash"
	}
	if c.Gemini.Temperature == 0 {
		c.Gemini.Temperature = 0.3
	}
	if c.Gemini.TopP == 0 {
		c.Gemini.TopP = 0.95
	}
	if c.Gemini.SinglePass == nil {
		singlePass := true
		c.Gemini.SinglePass = &singlePass
	}
	if c.Pipeline.TokenThreshold == 0 {
		c.Pipeline.TokenThreshold = 10000
	}
	if c.Chunking.MaxChars == 0 {
		c.Chunking.MaxChars = 6000
	}
	if c.Chunking.TargetChars == 0 {
		c.Chunking.TargetChars = c.Chunking.MaxChars * 3 / 4
	}
	if c.Summary.Language == "" {
		c.Summary.Language = "the same language as the transcript"
	}
	if len(c.Output.Formats) == 0 {
		c.Output.Formats = []string{"md"}
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "text"
	}
	// The pipeline is single-flow; more than one in-flight run is never allowed.
	c.Performance.MaxConcurrent = 1

	return nil
}

// TranscriptionTimeout returns the subprocess deadline
func (c *Config) TranscriptionTimeout() time.Duration {
	return time.Duration(c.Transcription.TimeoutSeconds) * time.Second
}

// OllamaTimeout returns the HTTP timeout for the local provider
func (c *Config) OllamaTimeout() time.Duration {
	return time.Duration(c.Ollama.TimeoutSeconds) * time.Second
}

// HasFormat reports whether output.formats contains f
func (c *Config) HasFormat(f string) bool {
	for _, have := range c.Output.Formats {
		if strings.EqualFold(have, f) {
			return true
		}
	}
	return false
}
