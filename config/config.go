package config

import (
	"synthd/core"

	"github.com/asaskevich/govalidator"
	configUtil "github.com/fox-one/pkg/config"
)

// Load load config file and env overrides, then validate the result
func Load(cfgFile string, cfg *core.Config) error {
	configUtil.AutomaticLoadEnv("SYNTHD")
	if err := configUtil.LoadYaml(cfgFile, cfg); err != nil {
		return err
	}

	if _, err := govalidator.ValidateStruct(cfg); err != nil {
		return err
	}

	return nil
}
