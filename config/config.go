package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meowdada/doclocker"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "DOCLOCKER"

// Config is the process wide configuration, read once at startup.
type Config struct {
	Server Server `mapstructure:"server"`
	IPFS   IPFS   `mapstructure:"ipfs"`
	Upload Upload `mapstructure:"upload"`
	Store  Store  `mapstructure:"store"`
	Auth   Auth   `mapstructure:"auth"`
	Log    Log    `mapstructure:"log"`
}

// Server configures the http listener.
type Server struct {
	Addr         string        `mapstructure:"addr"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Debug        bool          `mapstructure:"debug"`
	CORSOrigins  []string      `mapstructure:"cors_origins"`
	StaticDir    string        `mapstructure:"static_dir"`
}

// IPFS configures the pinning network client.
type IPFS struct {
	API     string        `mapstructure:"api"`
	Token   string        `mapstructure:"token"`
	Gateway string        `mapstructure:"gateway"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// Upload configures the upload flow.
type Upload struct {
	TempDir      string  `mapstructure:"temp_dir"`
	MaxBytes     int64   `mapstructure:"max_bytes"`
	UnpinOrphans bool    `mapstructure:"unpin_orphans"`
	RateLimit    float64 `mapstructure:"rate_limit"`
	Burst        int     `mapstructure:"burst"`
}

// Store configures the local index.
type Store struct {
	Dir      string `mapstructure:"dir"`
	InMemory bool   `mapstructure:"in_memory"`
}

// Auth configures wallet sessions.
type Auth struct {
	Secret       string        `mapstructure:"secret"`
	TokenTTL     time.Duration `mapstructure:"token_ttl"`
	SessionTTL   time.Duration `mapstructure:"session_ttl"`
	ChallengeTTL time.Duration `mapstructure:"challenge_ttl"`

	// GovernmentWallets are the only wallets allowed the government role.
	GovernmentWallets []string `mapstructure:"government_wallets"`
}

// Log configures the zap logger.
type Log struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

func setDefaults(v *viper.Viper) {
	home, _ := os.UserHomeDir()

	v.SetDefault("server.addr", ":5000")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 5*time.Minute)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.static_dir", "")

	v.SetDefault("ipfs.api", "/ip4/127.0.0.1/tcp/5001")
	v.SetDefault("ipfs.token", "")
	v.SetDefault("ipfs.gateway", "ipfs.w3s.link")
	v.SetDefault("ipfs.timeout", 2*time.Minute)

	v.SetDefault("upload.temp_dir", os.TempDir())
	v.SetDefault("upload.max_bytes", int64(32<<20))
	v.SetDefault("upload.unpin_orphans", true)
	v.SetDefault("upload.rate_limit", 5.0)
	v.SetDefault("upload.burst", 10)

	v.SetDefault("store.dir", filepath.Join(home, ".doclocker"))
	v.SetDefault("store.in_memory", false)

	v.SetDefault("auth.secret", "")
	v.SetDefault("auth.token_ttl", 30*time.Minute)
	v.SetDefault("auth.session_ttl", 7*24*time.Hour)
	v.SetDefault("auth.challenge_ttl", 5*time.Minute)
	v.SetDefault("auth.government_wallets", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
}

// Load reads the configuration from defaults, the optional file at path
// and DOCLOCKER_* environment variables, in increasing precedence. The
// storage token is also read from WEB3_STORAGE_API_KEY.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv("ipfs.token", EnvPrefix+"_IPFS_TOKEN", "WEB3_STORAGE_API_KEY"); err != nil {
		return nil, err
	}

	if len(path) != 0 {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config %s", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if len(c.Server.Addr) == 0 {
		return errors.New("server.addr is required")
	}
	if len(c.IPFS.API) == 0 {
		return errors.New("ipfs.api is required")
	}
	if c.Upload.MaxBytes <= 0 {
		return errors.New("upload.max_bytes must be positive")
	}
	if c.Upload.RateLimit < 0 || c.Upload.Burst < 0 {
		return errors.New("upload.rate_limit and upload.burst cannot be negative")
	}
	for _, w := range c.Auth.GovernmentWallets {
		if !doclocker.ValidWallet(w) {
			return errors.Errorf("auth.government_wallets: invalid wallet %q", w)
		}
	}
	if !c.Store.InMemory && len(c.Store.Dir) == 0 {
		return errors.New("store.dir is required unless store.in_memory is set")
	}
	return nil
}
