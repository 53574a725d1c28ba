package configuration

import (
	"os"
	"strings"
	"sync"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// Well-known configuration keys. Environment variables use the upper-cased
// form (NOTION_TOKEN, PARENT_DATABASE_ID, ...).
const (
	AUTHENTICATION_TOKEN = "notion_token"
	NOTION_VERSION       = "notion_version"
	API_URL              = "api_url"
	PARENT_DATABASE_ID   = "parent_database_id"
	DEBUG                = "debug"
)

const (
	DefaultAPIURL        = "https://api.notion.com/v1"
	DefaultNotionVersion = "2022-06-28"
)

// Configuration is an interface for managing configuration values.
type Configuration interface {
	Set(key string, value interface{})
	Get(key string) interface{}
	IsSet(key string) bool
	GetString(key string) string
	GetBool(key string) bool
	GetInt(key string) int
	AllKeys() []string

	AddFlagSet(flagset *pflag.FlagSet) error
}

// extendedViper is a wrapper around the viper library.
type extendedViper struct {
	viper *viper.Viper
	mutex sync.Mutex
}

// LoadDotEnv reads a .env style file and exports its variables into the
// process environment so that automatic env binding picks them up. A missing
// file is not an error.
func LoadDotEnv(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	for key, value := range gotenv.Parse(file) {
		if _, exists := os.LookupEnv(key); !exists {
			os.Setenv(key, value)
		}
	}
	return nil
}

// New creates a Configuration backed by environment variables with the
// default endpoint and protocol version pre-set.
func New() Configuration {
	config := &extendedViper{
		viper: viper.New(),
	}

	config.viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	config.viper.AutomaticEnv()

	config.viper.SetDefault(API_URL, DefaultAPIURL)
	config.viper.SetDefault(NOTION_VERSION, DefaultNotionVersion)
	config.viper.SetDefault(DEBUG, false)

	return config
}

func (ev *extendedViper) Set(key string, value interface{}) {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	ev.viper.Set(key, value)
}

func (ev *extendedViper) Get(key string) interface{} {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.Get(key)
}

func (ev *extendedViper) IsSet(key string) bool {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.IsSet(key)
}

func (ev *extendedViper) GetString(key string) string {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.GetString(key)
}

func (ev *extendedViper) GetBool(key string) bool {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.GetBool(key)
}

func (ev *extendedViper) GetInt(key string) int {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.GetInt(key)
}

func (ev *extendedViper) AllKeys() []string {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.AllKeys()
}

func (ev *extendedViper) AddFlagSet(flagset *pflag.FlagSet) error {
	ev.mutex.Lock()
	defer ev.mutex.Unlock()
	return ev.viper.BindPFlags(flagset)
}
