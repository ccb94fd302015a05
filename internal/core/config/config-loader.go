package config

import (
	"github.com/go-playground/validator/v10"
	"github.com/liulifox233/tracker-collector/internal/common/configloader"
	"github.com/pkg/errors"
	"os"
	"path/filepath"
	"strings"
)

const configFileName = "config.yml"

const (
	aria2UrlEnvVar  = "ARIA2_URL"
	secretKeyEnvVar = "SECRET_KEY"
)

type IConfigLoader interface {
	LoadConfigAndInitIfNeeded() (*CollectorConfig, error)
	ConfigFilePath() string
}

type collectorConfigLoader struct {
	configDir string
	validate  *validator.Validate
}

func NewConfigLoader(configDir string) (IConfigLoader, error) {
	var err error
	if strings.TrimSpace(configDir) == "" {
		configDir, err = getDefaultConfigFolder()
		if err != nil {
			return nil, errors.Wrap(err, "config loader: failed to resolve default config folder")
		}
	}
	configDir, err = filepath.Abs(configDir)
	if err != nil {
		return nil, errors.Wrapf(err, "config loader: failed to transform '%s' to an absolute path", configDir)
	}
	return &collectorConfigLoader{
		configDir: configDir,
		validate:  validator.New(),
	}, nil
}

func getDefaultConfigFolder() (string, error) {
	// Windows => %AppData%/tracker-collector
	// Mac     => $HOME/Library/Application Support/tracker-collector
	// Linux   => $XDG_CONFIG_HOME/tracker-collector or $HOME/.config/tracker-collector
	dir, err := os.UserConfigDir()
	return filepath.Join(dir, "tracker-collector"), err
}

func (l *collectorConfigLoader) ConfigFilePath() string {
	return filepath.Join(l.configDir, configFileName)
}

func (l *collectorConfigLoader) LoadConfigAndInitIfNeeded() (*CollectorConfig, error) {
	if hasInitialSetup, err := hasInitialSetup(l.configDir); err != nil {
		return nil, err
	} else if !hasInitialSetup {
		if err := initialSetup(l.configDir); err != nil {
			return nil, err
		}
	}

	conf := CollectorConfig{}.Default()
	if err := configloader.ParseIntoDefault(l.ConfigFilePath(), conf); err != nil {
		return nil, err
	}
	applyEnvOverrides(conf)

	if err := l.validate.Struct(conf); err != nil {
		return nil, errors.Wrapf(err, "invalid config file '%s'", l.ConfigFilePath())
	}
	return conf, nil
}

// Secrets provided by the environment win over whatever is on disk.
func applyEnvOverrides(conf *CollectorConfig) {
	if v := os.Getenv(aria2UrlEnvVar); v != "" {
		conf.Aria2.Url = v
	}
	if v := os.Getenv(secretKeyEnvVar); v != "" {
		conf.Aria2.Secret = v
	}
}

// Check if all minimal required files are present on disk
func hasInitialSetup(rootConfigFolder string) (bool, error) {
	requiredPath := []string{
		rootConfigFolder,
		filepath.Join(rootConfigFolder, configFileName),
	}

	for _, path := range requiredPath {
		_, err := os.Stat(path)
		if err != nil && !os.IsNotExist(err) {
			return false, errors.Wrapf(err, "failed to read '%s'", path)
		}
		if os.IsNotExist(err) {
			return false, nil
		}
	}

	return true, nil
}

// install all minimal required files to run
func initialSetup(rootConfigFolder string) error {
	if err := os.MkdirAll(rootConfigFolder, 0755); err != nil {
		return errors.Wrapf(err, "failed to create folder '%s'", rootConfigFolder)
	}
	return configloader.SaveToFile(filepath.Join(rootConfigFolder, configFileName), CollectorConfig{}.Default())
}
