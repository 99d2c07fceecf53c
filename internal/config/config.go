// Package config loads the server configuration from an optional yaml file,
// .env files and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/jrramp/arecheoedu/internal/storage"
)

const (
	defaultExtension = "yaml"
	defaultTagName   = "yaml"

	DefaultEnvPrefix = "RELICS"
)

type Binder interface {
	Bind(v *viper.Viper) error
}

type Loader interface {
	Load(name, path, envPrefix string, binder Binder) (Config, error)
}

type Config struct {
	Server  Server  `yaml:"server"`
	TLS     TLS     `yaml:"tls"`
	Storage Storage `yaml:"storage"`
	Redis   Redis   `yaml:"redis"`
	Auth    Auth    `yaml:"auth"`
	Import  Import  `yaml:"import"`
	CORS    CORS    `yaml:"cors"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
}

func (c Config) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Server, validation.Required),
		validation.Field(&c.TLS),
		validation.Field(&c.Storage, validation.Required),
		validation.Field(&c.Redis, validation.Skip.When(c.Storage.Backend != storage.BackendRedis)),
		validation.Field(&c.Import),
		validation.Field(&c.LogLevel, validation.Required, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.LogFormat, validation.Required, validation.In("json", "console")),
	)
}

type Server struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

func (s Server) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&s.MaxBodyBytes, validation.Required, validation.Min(int64(1))),
	)
}

// Address returns host:port for http.Server.
func (s Server) Address() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

type TLS struct {
	Enabled    bool   `yaml:"enabled"`
	CertFile   string `yaml:"cert_file"`
	KeyFile    string `yaml:"key_file"`
	MinVersion string `yaml:"min_version"`
}

func (t TLS) Validate() error {
	return validation.ValidateStruct(&t,
		validation.Field(&t.CertFile, validation.When(t.Enabled, validation.Required)),
		validation.Field(&t.KeyFile, validation.When(t.Enabled, validation.Required)),
		validation.Field(&t.MinVersion, validation.In("1.0", "1.1", "1.2", "1.3")),
	)
}

type Storage struct {
	Backend      string `yaml:"backend"`
	Dir          string `yaml:"dir"`
	SeedDir      string `yaml:"seed_dir"`
	AtomicWrites bool   `yaml:"atomic_writes"`
	SQLitePath   string `yaml:"sqlite_path"`
}

func (s Storage) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Backend, validation.Required, validation.In(
			storage.BackendFile, storage.BackendSQLite, storage.BackendRedis, storage.BackendMemory,
		)),
		validation.Field(&s.Dir, validation.When(s.Backend == storage.BackendFile, validation.Required)),
		validation.Field(&s.SQLitePath, validation.When(s.Backend == storage.BackendSQLite, validation.Required)),
	)
}

// SeedDirectory is where the <collection>-seed.json files are looked up.
// It defaults to the storage directory.
func (s Storage) SeedDirectory() string {
	if s.SeedDir != "" {
		return s.SeedDir
	}

	return s.Dir
}

type Redis struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

func (r Redis) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Addr, validation.Required),
		validation.Field(&r.DB, validation.Min(0)),
	)
}

type Auth struct {
	// AdminToken protects the mutating routes when set.
	AdminToken string `yaml:"admin_token"`
}

type Import struct {
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`
}

func (i Import) Validate() error {
	return validation.ValidateStruct(&i,
		validation.Field(&i.MaxUploadBytes, validation.Required, validation.Min(int64(1))),
	)
}

type CORS struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// StorageOptions translates the storage and redis sections for storage.Open.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:      c.Storage.Backend,
		Dir:          c.Storage.Dir,
		AtomicWrites: c.Storage.AtomicWrites,
		SQLitePath:   c.Storage.SQLitePath,
		Redis: storage.RedisOptions{
			Addr:      c.Redis.Addr,
			Password:  c.Redis.Password,
			DB:        c.Redis.DB,
			KeyPrefix: c.Redis.KeyPrefix,
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 15*time.Second)
	v.SetDefault("server.write_timeout", 15*time.Second)
	v.SetDefault("server.max_body_bytes", 100*1024)

	v.SetDefault("tls.enabled", false)
	v.SetDefault("tls.cert_file", "")
	v.SetDefault("tls.key_file", "")
	v.SetDefault("tls.min_version", "1.2")

	v.SetDefault("storage.backend", storage.BackendFile)
	v.SetDefault("storage.dir", filepath.Join("server", "database"))
	v.SetDefault("storage.seed_dir", "")
	v.SetDefault("storage.atomic_writes", true)
	v.SetDefault("storage.sqlite_path", filepath.Join("server", "database", "relics.db"))

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.key_prefix", "relics:")

	v.SetDefault("auth.admin_token", "")
	v.SetDefault("import.max_upload_bytes", 20<<20)
	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
}

type FileParts struct {
	FileName string
	Path     string
}

func ProcessConfigPath(configFile string) (FileParts, error) {
	absolutePath, err := filepath.Abs(configFile)
	if err != nil {
		return FileParts{}, fmt.Errorf("convert to absolute path: %w", err)
	}

	fileName := filepath.Base(absolutePath)
	path := filepath.Dir(absolutePath)
	extension := filepath.Ext(fileName)

	if strings.ReplaceAll(strings.ToLower(extension), ".", "") != defaultExtension {
		return FileParts{}, fmt.Errorf("config file must have extension %s, got: %s", defaultExtension, extension)
	}

	return FileParts{
		FileName: fileName[:len(fileName)-len(extension)],
		Path:     path,
	}, nil
}

func NewFileSystemLoader() *FileSystemLoader {
	return &FileSystemLoader{}
}

// FileSystemLoader reads <path>/<name>.yaml. A missing file is not an error,
// the defaults and the environment still apply.
type FileSystemLoader struct{}

func (l *FileSystemLoader) Load(name, path, envPrefix string, b Binder) (Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName(name)
	v.SetConfigType(defaultExtension)

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if b != nil {
		err := b.Bind(v)
		if err != nil {
			return Config{}, err
		}
	}

	v.SetEnvPrefix(envPrefix)

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var config Config

	err = v.Unmarshal(&config, func(cfg *mapstructure.DecoderConfig) {
		cfg.TagName = defaultTagName
	})
	if err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	return config, nil
}

type EnvBinder struct {
	binders map[string]string
}

func (e *EnvBinder) Bind(v *viper.Viper) error {
	for envVar, key := range e.binders {
		err := v.BindEnv(key, envVar)
		if err != nil {
			return fmt.Errorf("bind env var %s to key %s: %w", envVar, key, err)
		}
	}

	return nil
}

func NewEnvBinder(binders map[string]string) *EnvBinder {
	return &EnvBinder{
		binders: binders,
	}
}

// NewDefaultEnvBinder binds the unprefixed variables a plain node-style
// deployment sets.
func NewDefaultEnvBinder() *EnvBinder {
	return NewEnvBinder(map[string]string{
		"PORT":        "server.port",
		"STORAGE_DIR": "storage.dir",
	})
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and variables already set win.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		err := godotenv.Load(f)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}

	return nil
}
