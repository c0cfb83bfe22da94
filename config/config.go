package config

import (
	"errors"
	"log"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const DefaultSecretKey = "default_secret_key_for_testing"

// legacyEnv maps configuration keys to the environment variables the service
// has historically been deployed with.
var legacyEnv = map[string]string{
	"server.port":                  "PORT",
	"server.secret_key":            "SECRET_KEY",
	"media.sql.database_url":       "DATABASE_URL",
	"upload.cloudinary.cloud_name": "YOUR_CLOUD_NAME",
	"upload.cloudinary.api_key":    "YOUR_API_KEY",
	"upload.cloudinary.api_secret": "YOUR_API_SECRET",
}

func (c *Config) Validate() error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterValidation("abspath", ValidateAbsPath)
	validate.RegisterValidation("localpath", ValidateLocalpath)
	validate.RegisterValidation("pathpattern", ValidatePathPattern)
	validate.RegisterValidation("identifier", ValidateIdentifier)
	validate.RegisterValidation("mediatype", ValidateMediaType)

	if err := validate.Struct(c); err != nil {
		return err
	}

	return nil
}

// LoadEnvFile loads variables from a dotenv file into the process environment.
// Variables already set in the environment are left untouched, and a missing
// file is not an error.
func LoadEnvFile(file string) error {
	if strings.TrimSpace(file) == "" {
		return nil
	}

	if err := godotenv.Load(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	return nil
}

// LoadConfig reads the optional YAML file, overlays the environment and
// validates the result. An empty file name loads from defaults and the
// environment only.
func LoadConfig(file string) (*Config, error) {
	v := newViper()

	if file != "" {
		v.SetConfigFile(file)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			log.Println("read in fail")
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		log.Println("unmarshal fail")
		return nil, err
	}

	cfg.pruneInactiveStrategies()

	if err := cfg.Validate(); err != nil {
		log.Println("validate fail")
		return nil, err
	}

	return &cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetDefault("debug", false)
	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.port", 5001)
	v.SetDefault("server.secret_key", DefaultSecretKey)
	v.SetDefault("server.limits.max_file_size", 0)
	v.SetDefault("server.limits.max_multipart_mem", 32<<20)
	v.SetDefault("server.limits.max_connections", 0)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("media.strategy", "sql")
	v.SetDefault("media.types", []string{"image", "video"})
	v.SetDefault("media.sql.database_url", "")
	v.SetDefault("upload.strategy", "cloudinary")

	v.SetEnvPrefix("gallery")
	v.SetEnvKeyReplacer(envKeyReplacer)
	v.AutomaticEnv()

	for key, env := range legacyEnv {
		// The prefixed form keeps precedence over the legacy name.
		_ = v.BindEnv(key, prefixedEnvName(key), env)
	}

	return v
}

var envKeyReplacer = strings.NewReplacer(".", "_")

func prefixedEnvName(key string) string {
	return "GALLERY_" + strings.ToUpper(envKeyReplacer.Replace(key))
}

// pruneInactiveStrategies drops strategy blocks that the selected strategy
// does not use, so that stray environment variables cannot fail validation.
func (c *Config) pruneInactiveStrategies() {
	if c.Media.Strategy != "sql" {
		c.Media.SQL = nil
	}
	if c.Media.Strategy != "d1" {
		c.Media.D1 = nil
	}
	if c.Media.Strategy != "git" {
		c.Media.Git = nil
	}

	if c.Upload.Strategy != "cloudinary" {
		c.Upload.Cloudinary = nil
	}
	if c.Upload.Strategy != "s3" {
		c.Upload.S3 = nil
	}
	if c.Upload.Strategy != "filesystem" {
		c.Upload.Filesystem = nil
	}
}
