package config

const (
	defaultDataDir               = "~/.local/share/racecarr"
	defaultLogDir                = "~/.local/share/racecarr/logs"
	defaultAPIBind               = "127.0.0.1:7787"
	defaultCalendarBaseURL       = "https://f1api.dev"
	defaultCalendarTimeout       = 15
	defaultMinResolution         = "720p"
	defaultMaxResolution         = "2160p"
	defaultAutoDownloadThreshold = 70
	defaultResultLimit           = 50
	defaultSearchTimeout         = 12
	defaultTickInterval          = 600
	defaultPollInterval          = 600
	defaultNotifyTimeout         = 10
	defaultLogFormat             = "console"
	defaultLogLevel              = "info"
)

func defaultEventAllowlist() []string {
	return []string{"race", "qualifying", "sprint", "sprint-qualifying", "fp1", "fp2", "fp3"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir: defaultDataDir,
			LogDir:  defaultLogDir,
			APIBind: defaultAPIBind,
		},
		Calendar: Calendar{
			BaseURL:        defaultCalendarBaseURL,
			RequestTimeout: defaultCalendarTimeout,
		},
		Search: Search{
			MinResolution:         defaultMinResolution,
			MaxResolution:         defaultMaxResolution,
			AllowHDR:              true,
			AutoDownloadThreshold: defaultAutoDownloadThreshold,
			EventAllowlist:        defaultEventAllowlist(),
			ResultLimit:           defaultResultLimit,
			RequestTimeout:        defaultSearchTimeout,
		},
		Scheduler: Scheduler{
			TickInterval: defaultTickInterval,
			PollInterval: defaultPollInterval,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
