package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Site     Site     `koanf:"site"`
	Google   Google   `koanf:"google"`
	Sync     Sync     `koanf:"sync"`
	Database Database `koanf:"db"`
}

// Site holds credentials and browser settings for the scheduling website.
type Site struct {
	URL            string `koanf:"url"`
	Username       string `koanf:"username"`
	Password       string `koanf:"password"`
	ChromePath     string `koanf:"chromepath"`
	TimeoutSeconds int    `koanf:"timeoutseconds"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	CalendarId   string `koanf:"calendarid"`
}

type Sync struct {
	Timezone string `koanf:"timezone"`
	// Interactive controls whether an expired or missing Google token may
	// trigger the console authorization flow. Disable it for serverless runs.
	Interactive bool `koanf:"interactive"`
}

type Database struct {
	Path string `koanf:"path"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:8184",
		Site: Site{
			TimeoutSeconds: 60,
		},
		Google: Google{
			CalendarId: "primary",
		},
		Sync: Sync{
			Timezone:    "America/New_York",
			Interactive: true,
		},
		Database: Database{
			Path: "shiftcal.db",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "SHIFTCAL_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "SHIFTCAL_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
