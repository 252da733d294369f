package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	configName = "registryctl"
	configType = "yaml"
	envPrefix  = "REGISTRY"

	cfgKeyAPIURL       = "api_url"
	cfgKeyToken        = "token"
	cfgKeyAbortOnError = "abort_on_upload_failure"
	cfgKeyTimeout      = "timeout"

	defaultAPIURL = "http://localhost:3001"
)

// loadConfig reads registryctl.yaml from path, or from the working directory
// and the user config directory when path is empty. A missing file is not an
// error. REGISTRY_* variables override file values.
func loadConfig(path string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault(cfgKeyAPIURL, defaultAPIURL)
	v.SetDefault(cfgKeyAbortOnError, false)
	v.SetDefault(cfgKeyTimeout, 60*time.Second)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(configName)
		v.SetConfigType(configType)
		v.AddConfigPath(".")
		if dir, err := userConfigDir(); err == nil {
			v.AddConfigPath(dir)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return v, nil
		}
		if path != "" && errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}
	return v, nil
}

// saveConfig writes v back to the file it was read from, or to the user
// config directory when none was found.
func saveConfig(v *viper.Viper) (string, error) {
	path := v.ConfigFileUsed()
	if path == "" {
		dir, err := userConfigDir()
		if err != nil {
			return "", err
		}
		path = filepath.Join(dir, configName+"."+configType)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	if err := v.WriteConfigAs(path); err != nil {
		return "", fmt.Errorf("write config: %w", err)
	}
	return path, nil
}

func userConfigDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "chaski"), nil
}
