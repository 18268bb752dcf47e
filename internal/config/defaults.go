package config

const (
	defaultStorageDir         = "~/.local/share/nestvision/videos"
	defaultDataDir            = "~/.local/share/nestvision"
	defaultLogDir             = "~/.local/share/nestvision/logs"
	defaultAPIBind            = "127.0.0.1:8437"
	defaultFeedAPIBaseURL     = "https://api.telegram.org"
	defaultFeedBatchLimit     = 100
	defaultFeedPollInterval   = 1
	defaultFeedLongPoll       = 30
	defaultFeedErrorRetry     = 5
	defaultFeedRequestsPerSec = 10
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StorageDir: defaultStorageDir,
			DataDir:    defaultDataDir,
			LogDir:     defaultLogDir,
			APIBind:    defaultAPIBind,
		},
		Feed: Feed{
			APIBaseURL:         defaultFeedAPIBaseURL,
			BatchLimit:         defaultFeedBatchLimit,
			PollInterval:       defaultFeedPollInterval,
			LongPollTimeout:    defaultFeedLongPoll,
			ErrorRetryInterval: defaultFeedErrorRetry,
			RequestsPerSecond:  defaultFeedRequestsPerSec,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
