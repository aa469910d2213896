package cli

import (
	"errors"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// configFile is read from the working directory when --config is unset.
const configFile = "stackplot.toml"

// serverConfig holds the serve command's defaults.
//
//	[server]
//	addr = ":8080"
//	max_body = 1048576
//	allow_expr = false
//	base_dir = "/srv/charts/data"
//	timeout = "30s"
type serverConfig struct {
	Server struct {
		Addr      string   `toml:"addr"`
		MaxBody   int64    `toml:"max_body"`
		AllowExpr bool     `toml:"allow_expr"`
		BaseDir   string   `toml:"base_dir"`
		Scale     float64  `toml:"scale"`
		Timeout   duration `toml:"timeout"`
	} `toml:"server"`
}

func defaultServerConfig() serverConfig {
	var c serverConfig
	c.Server.Addr = ":8080"
	c.Server.MaxBody = 1 << 20
	c.Server.Timeout = duration{30 * time.Second}
	return c
}

// loadServerConfig reads path over the defaults. An empty path reads
// stackplot.toml if present.
func loadServerConfig(path string) (serverConfig, error) {
	c := defaultServerConfig()
	if path == "" {
		if _, err := os.Stat(configFile); errors.Is(err, os.ErrNotExist) {
			return c, nil
		}
		path = configFile
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return c, err
	}
	return c, nil
}

// duration decodes TOML strings such as "30s".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}
