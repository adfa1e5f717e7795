package config

const (
	TargetJUnit  = "junit"
	TargetGoTest = "gotest"

	DefaultBaseURL   = "http://localhost:8080"
	DefaultClassName = "GeneratedTests"
	DefaultPackage   = "generated_test"
)

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Target:         TargetJUnit,
		ClassName:      DefaultClassName,
		Package:        DefaultPackage,
		DefaultBaseURL: DefaultBaseURL,
		RequestTimeout: 10,
		ConnectTimeout: 5,
		Reporters:      []string{"console"},
		Parallel:       BoolPtr(false),
		Concurrency:    5,
		Bail:           BoolPtr(false),
		Verbose:        BoolPtr(false),
		NoColor:        BoolPtr(false),
	}
}

// IsDefault returns true if the config matches defaults
func (c *Config) IsDefault() bool {
	defaults := DefaultConfig()
	return c.Target == defaults.Target &&
		c.ClassName == defaults.ClassName &&
		c.Package == defaults.Package &&
		c.OutputDir == defaults.OutputDir &&
		c.DefaultBaseURL == defaults.DefaultBaseURL &&
		c.RequestTimeout == defaults.RequestTimeout &&
		c.ConnectTimeout == defaults.ConnectTimeout &&
		len(c.Variables) == 0 &&
		c.EnvFile == defaults.EnvFile &&
		c.GetParallel() == defaults.GetParallel() &&
		c.Concurrency == defaults.Concurrency &&
		c.Rate == defaults.Rate &&
		c.GetBail() == defaults.GetBail() &&
		c.History == defaults.History &&
		c.GetVerbose() == defaults.GetVerbose() &&
		c.GetNoColor() == defaults.GetNoColor()
}
