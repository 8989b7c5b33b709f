package config

import "time"

// Lua schema field names and globals
const (
	luaGlobalHermes     = "hermes"
	luaFieldSpeedtest   = "speedtest"
	luaFieldDownload    = "download"
	luaFieldName        = "name"
	luaFieldVersion     = "version"
	luaFieldTap         = "tap"
	luaFieldPackage     = "package"
	luaFieldPM          = "package_manager"
	luaFieldURL         = "url"
	luaFieldPage        = "download_page"
	luaFieldSHA256      = "sha256"
	luaFieldSigURL      = "signature_url"
	luaFieldKeyring     = "keyring"
	luaFieldStrategies  = "strategies"
	luaFieldExtractor   = "extractor"
	luaFieldInstallDir  = "install_dir"
	luaFieldTimeout     = "timeout"
	luaFieldRetries     = "retries"
	luaFieldProgressBar = "progress"
)

// Strategy names accepted in hermes.speedtest.strategies.
const (
	StrategyTap      = "tap"
	StrategyDownload = "download"
)

// Defaults for the speedtest dependency.
const (
	DefaultName           = "speedtest"
	DefaultVersion        = "1.2.0"
	DefaultTap            = "teamookla/speedtest"
	DefaultPackage        = "speedtest"
	DefaultPackageManager = "brew"
	DefaultDownloadPage   = "https://www.speedtest.net/apps/cli"
	DefaultTimeout        = 5 * time.Minute
	DefaultRetries        = 3
)

// Resource limits for config evaluation.
const (
	// MaxConfigSize bounds the config file read from disk.
	MaxConfigSize = 1 << 20
	// DefaultParseTimeout applies when the caller's context has no deadline.
	DefaultParseTimeout = 5 * time.Second

	maxCallStackSize = 256
	maxRegistrySize  = 1024 * 8
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "HERMES_CONFIG"
