package configuration

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v3"

	"github.com/kelseyhightower/envconfig"
)

type Settings struct {
	Database    DatabaseSettings    `yaml:"database"`
	Application ApplicationSettings `yaml:"application"`
	Hub         HubSettings         `yaml:"hub"`
	Azure       AzureSettings       `yaml:"azure"`
}

type DatabaseSettings struct {
	Username   string `yaml:"username" envconfig:"DB_USERNAME"`
	Password   string `yaml:"password" envconfig:"DB_PASSWORD"`
	Host       string `yaml:"host" envconfig:"DB_HOST"`
	Port       uint16 `yaml:"port" envconfig:"DB_PORT"`
	DbName     string `yaml:"db_name"`
	RequireSsl bool   `yaml:"require_ssl"`
}

type ApplicationSettings struct {
	Port                   uint16   `yaml:"port" envconfig:"APP_PORT"`
	SigningKey             string   `yaml:"signing_key" envconfig:"APP_SIGNING_KEY"`
	KafkaEndpoint          string   `yaml:"kafka_endpoint" envconfig:"KAFKA_ENDPOINT"`
	MatchCompletedTopic    string   `yaml:"match_completed_topic"`
	ElasticsearchEndpoint  string   `yaml:"elasticsearch_endpoint" envconfig:"ELASTICSEARCH_ENDPOINT"`
	MatchIndex             string   `yaml:"match_index"`
	AllowedOrigins         []string `yaml:"allowed_origins"`
	TokenExpirationSeconds uint16   `yaml:"token_expiration_seconds"`
}

// HubSettings tune the room session hub. The takeover threshold and PIN
// attempt bound mirror the values the games were built against; change them
// only in lockstep with the clients.
type HubSettings struct {
	TakeoverThresholdMs int `yaml:"takeover_threshold_ms" envconfig:"HUB_TAKEOVER_THRESHOLD_MS"`
	PinLength           int `yaml:"pin_length"`
	PinMaxAttempts      int `yaml:"pin_max_attempts"`
	RoomIdleTtlSeconds  int `yaml:"room_idle_ttl_seconds"`
	SendBufferSize      int `yaml:"send_buffer_size"`
}

func (s HubSettings) TakeoverThreshold() time.Duration {
	return time.Duration(s.TakeoverThresholdMs) * time.Millisecond
}

func (s HubSettings) RoomIdleTtl() time.Duration {
	return time.Duration(s.RoomIdleTtlSeconds) * time.Second
}

type AzureSettings struct {
	BlobStorageEndpoint  string `yaml:"blob_storage_endpoint"`
	BlobConnectionString string `yaml:"blob_connection_string" envconfig:"AZURE_BLOB_CONNECTION_STRING"`
	AssetsContainer      string `yaml:"assets_container"`
}

// ReadConfiguration loads the base yaml file from dir, layers the
// environment-specific file on top, and finally applies env var overrides.
func ReadConfiguration(dir string) Settings {
	var settings Settings

	readFile(dir, &settings, "base")

	environment := os.Getenv("ENVIRONMENT")
	if environment == "" {
		environment = "local"
	}
	readFile(dir, &settings, environment)

	readEnv(&settings)
	return settings
}

func readFile(dir string, settings *Settings, name string) {
	f, err := os.Open(fmt.Sprintf("%s/%s.yml", dir, name))
	if err != nil {
		panic(err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(settings)
	if err != nil {
		panic(err)
	}
}

func readEnv(settings *Settings) {
	err := envconfig.Process("", settings)
	if err != nil {
		panic(err)
	}
}
