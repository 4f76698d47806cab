package config

import (
	"strings"

	"github.com/spf13/viper"
)

// envOverrides holds VANTAGE_* environment values that take priority over
// the persisted configuration for the current invocation. They are never
// written back to disk.
type envOverrides struct {
	endpoint string
	region   string
	format   string
	profile  string
}

// loadEnvOverrides reads the supported VANTAGE_* variables once at store
// construction.
func loadEnvOverrides() *envOverrides {
	v := viper.New()
	v.SetEnvPrefix("VANTAGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	o := &envOverrides{
		endpoint: v.GetString("endpoint"),
		region:   v.GetString("region"),
		profile:  v.GetString("profile"),
	}
	if f := v.GetString("format"); validFormat(f) {
		o.format = f
	}
	return o
}
