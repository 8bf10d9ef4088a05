package config

import "time"

// File represents the structure of the .linkboard configuration file.
// Every field is optional; unset fields keep the value already in Config.
type File struct {
	// Source is the Result Document path or URL.
	Source string `yaml:"source,omitempty"`

	// Server holds dashboard settings.
	Server ServerFile `yaml:"server,omitempty"`

	// Fetch holds Result Document fetch settings.
	Fetch FetchFile `yaml:"fetch,omitempty"`

	// History holds run history settings.
	History HistoryFile `yaml:"history,omitempty"`

	// Analytics holds health, trend and alert settings.
	Analytics AnalyticsFile `yaml:"analytics,omitempty"`

	// JSONLogs switches the log output to JSON.
	JSONLogs *bool `yaml:"jsonLogs,omitempty"`
}

// ServerFile is the server section of the configuration file.
type ServerFile struct {
	Listen          string        `yaml:"listen,omitempty"`
	BasePath        string        `yaml:"basePath,omitempty"`
	PageSize        int           `yaml:"pageSize,omitempty"`
	ReadTimeout     time.Duration `yaml:"readTimeout,omitempty"`
	WriteTimeout    time.Duration `yaml:"writeTimeout,omitempty"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout,omitempty"`
}

// FetchFile is the fetch section of the configuration file.
type FetchFile struct {
	Timeout     time.Duration `yaml:"timeout,omitempty"`
	MaxBodySize int64         `yaml:"maxBodySize,omitempty"`
	CacheSize   int           `yaml:"cacheSize,omitempty"`
	UserAgent   string        `yaml:"userAgent,omitempty"`
}

// HistoryFile is the history section of the configuration file.
type HistoryFile struct {
	Enabled *bool  `yaml:"enabled,omitempty"`
	DBDir   string `yaml:"dbDir,omitempty"`
	Points  int    `yaml:"points,omitempty"`
}

// AnalyticsFile is the analytics section of the configuration file.
type AnalyticsFile struct {
	AnomalyThreshold float64  `yaml:"anomalyThreshold,omitempty"`
	TrendDays        int      `yaml:"trendDays,omitempty"`
	SyntheticTrends  *bool    `yaml:"syntheticTrends,omitempty"`
	CriticalKeywords []string `yaml:"criticalKeywords,omitempty"`
	AlertLimit       int      `yaml:"alertLimit,omitempty"`
}

// Apply overlays the values set in the file onto cfg.
func (f *File) Apply(cfg *Config) {
	if f.Source != "" {
		cfg.Source = f.Source
	}
	if f.JSONLogs != nil {
		cfg.JSONLogs = *f.JSONLogs
	}

	s := f.Server
	if s.Listen != "" {
		cfg.ListenAddr = s.Listen
	}
	if s.BasePath != "" {
		cfg.BasePath = s.BasePath
	}
	if s.PageSize != 0 {
		cfg.PageSize = s.PageSize
	}
	if s.ReadTimeout != 0 {
		cfg.ReadTimeout = s.ReadTimeout
	}
	if s.WriteTimeout != 0 {
		cfg.WriteTimeout = s.WriteTimeout
	}
	if s.ShutdownTimeout != 0 {
		cfg.ShutdownTimeout = s.ShutdownTimeout
	}

	fe := f.Fetch
	if fe.Timeout != 0 {
		cfg.FetchTimeout = fe.Timeout
	}
	if fe.MaxBodySize != 0 {
		cfg.MaxBodySize = fe.MaxBodySize
	}
	if fe.CacheSize != 0 {
		cfg.CacheSize = fe.CacheSize
	}
	if fe.UserAgent != "" {
		cfg.UserAgent = fe.UserAgent
	}

	h := f.History
	if h.Enabled != nil {
		cfg.History = *h.Enabled
	}
	if h.DBDir != "" {
		cfg.DBDir = h.DBDir
	}
	if h.Points != 0 {
		cfg.HistoryPoints = h.Points
	}

	a := f.Analytics
	if a.AnomalyThreshold != 0 {
		cfg.AnomalyThreshold = a.AnomalyThreshold
	}
	if a.TrendDays != 0 {
		cfg.TrendDays = a.TrendDays
	}
	if a.SyntheticTrends != nil {
		cfg.SyntheticTrends = *a.SyntheticTrends
	}
	if len(a.CriticalKeywords) > 0 {
		cfg.CriticalKeywords = a.CriticalKeywords
	}
	if a.AlertLimit != 0 {
		cfg.AlertLimit = a.AlertLimit
	}
}
