package types

// CLIArgs represents the command-line arguments.
// Nil pointers mean the flag was not set and the config file (or default) wins.
type CLIArgs struct {
	ConfigFile         string
	AggregatorName     *string
	Profile            *string
	Region             *string
	Accounts           []string
	Bucket             *string
	KeyPrefix          *string
	Workers            *int
	MaxFindingsPerRule *int
	CallTimeoutSeconds *int
	MaxAttempts        *int
	PackReports        *bool
	ReportName         *string
	ReportType         []string
	Dir                *string
	Schedule           *string
	PushgatewayURL     *string
	LogLevel           *string
	LogFormat          *string
	FirstPackFallback  *bool
}

// Apply overlays the explicitly set arguments on top of cfg.
func (a *CLIArgs) Apply(cfg Config) Config {
	if a.AggregatorName != nil {
		cfg.AggregatorName = *a.AggregatorName
	}
	if a.Profile != nil {
		cfg.Profile = *a.Profile
	}
	if a.Region != nil {
		cfg.Region = *a.Region
	}
	if len(a.Accounts) > 0 {
		cfg.Accounts = a.Accounts
	}
	if a.Bucket != nil {
		cfg.Bucket = *a.Bucket
	}
	if a.KeyPrefix != nil {
		cfg.KeyPrefix = *a.KeyPrefix
	}
	if a.Workers != nil {
		cfg.Workers = *a.Workers
	}
	if a.MaxFindingsPerRule != nil {
		cfg.MaxFindingsPerRule = *a.MaxFindingsPerRule
	}
	if a.CallTimeoutSeconds != nil {
		cfg.CallTimeoutSeconds = *a.CallTimeoutSeconds
	}
	if a.MaxAttempts != nil {
		cfg.MaxAttempts = *a.MaxAttempts
	}
	if a.PackReports != nil {
		cfg.PackReports = *a.PackReports
	}
	if a.ReportName != nil {
		cfg.ReportName = *a.ReportName
	}
	if len(a.ReportType) > 0 {
		cfg.ReportType = a.ReportType
	}
	if a.Dir != nil {
		cfg.Dir = *a.Dir
	}
	if a.Schedule != nil {
		cfg.Schedule = *a.Schedule
	}
	if a.PushgatewayURL != nil {
		cfg.PushgatewayURL = *a.PushgatewayURL
	}
	if a.LogLevel != nil {
		cfg.LogLevel = *a.LogLevel
	}
	if a.LogFormat != nil {
		cfg.LogFormat = *a.LogFormat
	}
	if a.FirstPackFallback != nil {
		cfg.Attribution.FirstPackFallback = *a.FirstPackFallback
	}
	return cfg
}
