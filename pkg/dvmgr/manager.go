package dvmgr

import (
	"path/filepath"

	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverse"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/dataverselike"
	"github.com/NivineZakhari/PowerApps-Samples/pkg/webapi"
	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// DvManager owns the configuration, logger, and service connection shared by
// all dvfile commands.
type DvManager struct {
	Service dataverse.Service
	Logger  logrus.FieldLogger
	Cfg     *viper.Viper
}

func NewManager(userCfg map[string]interface{}) (*DvManager, error) {
	var err error
	mgr := &DvManager{}

	if cfgPathRaw, ok := userCfg["config-file"]; ok {
		if cfgPath, ok := cfgPathRaw.(string); ok {
			err = mgr.initConfig(&cfgPath)
		} else {
			return nil, errors.New("option 'config-file' must be of type string")
		}
	} else {
		err = mgr.initConfig(nil)
	}
	if err != nil {
		return nil, err
	}

	if loggerRaw, ok := userCfg["logger"]; ok {
		if logger, ok := loggerRaw.(logrus.FieldLogger); ok {
			mgr.Logger = logger
		} else {
			return nil, errors.New("option 'logger' must satisfy logrus.FieldLogger")
		}
	} else {
		mgr.Logger = logrus.New()
	}

	err = mgr.initService()
	if err != nil {
		return nil, err
	}

	return mgr, nil
}

func (self *DvManager) Destroy() {
	self.Service.Destroy()
}

func (self *DvManager) initConfig(cfgPath *string) error {
	// Setup defaults and globals here. These can be overwritten in the
	// config, but aren't included by default.

	// This is a private viper context just for dvfile (so as not to conflict
	// with the importer's usage).
	self.Cfg = viper.New()

	// A local .env is the easiest place to keep the bearer token out of the
	// config file. Missing .env is not an error.
	godotenv.Load()

	self.Cfg.SetDefault("default-provider", "local")
	self.Cfg.SetDefault("entity", "account")

	// Order of precedence: ENV, dvfile.yaml, default
	self.Cfg.SetDefault("service.webapi.url", "")
	self.Cfg.BindEnv("service.webapi.url", "DVFILE_URL")
	self.Cfg.SetDefault("service.webapi.token", "")
	self.Cfg.BindEnv("service.webapi.token", "DVFILE_TOKEN")

	if cfgPath != nil {
		// Use config file from the flag.
		self.Cfg.SetConfigFile(*cfgPath)
		if err := self.Cfg.ReadInConfig(); err != nil {
			return errors.Wrap(err, "Failed to load config")
		}
		return nil
	}

	// Default search path for config is ./configs/dvfile.* (* can be json,
	// yaml, etc), falling back to ~/.dvfile/.
	self.Cfg.AddConfigPath("./configs")
	if home, err := homedir.Dir(); err == nil {
		self.Cfg.AddConfigPath(filepath.Join(home, ".dvfile"))
	}
	self.Cfg.SetConfigName("dvfile")

	if err := self.Cfg.ReadInConfig(); err != nil {
		// Without an explicit --config, a missing file just means defaults:
		// the local provider needs no configuration at all.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return errors.Wrap(err, "Failed to load config")
		}
	}
	return nil
}

func (self *DvManager) initService() error {
	providerName := self.Cfg.GetString("default-provider")

	switch providerName {
	case "local":
		self.Service = dataverselike.NewService(
			self.Logger.WithField("module", "service.local"))
	case "webapi":
		url := self.Cfg.GetString("service.webapi.url")
		if url == "" {
			return errors.New("Provider \"webapi\" requires service.webapi.url (or DVFILE_URL)")
		}
		self.Service = webapi.NewConnection(
			url,
			self.Cfg.GetString("service.webapi.token"),
			self.Logger.WithField("module", "service.webapi"))
	default:
		return errors.New("Unrecognized service provider: " + providerName)
	}
	return nil
}
