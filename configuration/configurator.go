// Copyright 2025 Roda Finance Ltd.
// All rights reserved.
// This material is licensed under the MIT License,
// available at https://github.com/rodafin/roda/blob/main/LICENSE.md.

package configuration

import (
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

const envPrefix = "roda"

// Load reads the yaml configuration at path on top of Default().
// Environment variables with the RODA_ prefix override file values,
// dots replaced with underscores (RODA_DB_URL, RODA_LOG_LEVEL).
// An empty path loads defaults plus environment only.
func Load(path string) (*Configuration, error) {
	v := viper.New()

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix(envPrefix)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to load config")
		}
	}

	cfg := Default()
	err := v.Unmarshal(cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal config file into configuration structure")
	}
	return cfg, nil
}
