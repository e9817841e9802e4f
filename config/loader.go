package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/restkit/logger"
)

// FileSystem abstracts the file operations the loader needs.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem reads from the local disk.
type OSFileSystem struct{}

// Exists reports whether path exists.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables that are
// already set are not overwritten.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// Files are the resolved configuration sources.
type Files struct {
	ConfigFile string
	EnvFile    string
}

// Resolver finds config and .env files for a service.
type Resolver struct {
	FS FileSystem
}

// Resolve returns explicit paths when given and searches otherwise.
func (r Resolver) Resolve(service string, explicit Files) Files {
	out := explicit
	if out.ConfigFile == "" {
		out.ConfigFile = r.first(configCandidates(service))
	}
	if out.EnvFile == "" {
		out.EnvFile = r.first(envCandidates(service))
	}
	return out
}

func (r Resolver) first(paths []string) string {
	for _, p := range paths {
		if r.FS.Exists(p) {
			return p
		}
	}
	return ""
}

func configCandidates(service string) []string {
	var paths []string
	for _, dir := range []string{".", "..", "../.."} {
		paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", dir, service))
	}
	return append(paths, "./config/config.yml", "../config/config.yml", "./config.yml")
}

func envCandidates(service string) []string {
	var paths []string
	for _, name := range []string{".env." + service, ".env"} {
		for _, dir := range []string{"./cmd/" + service, "./config", ".", ".."} {
			paths = append(paths, dir+"/"+name)
		}
	}
	return paths
}

type loaderOptions struct {
	fs        FileSystem
	files     Files
	envPrefix string
}

// Option configures LoadConfig.
type Option func(*loaderOptions)

// WithFileSystem replaces the filesystem used to find and read files.
func WithFileSystem(fs FileSystem) Option {
	return func(o *loaderOptions) { o.fs = fs }
}

// WithConfigFile sets an explicit YAML file.
func WithConfigFile(path string) Option {
	return func(o *loaderOptions) { o.files.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file.
func WithEnvFile(path string) Option {
	return func(o *loaderOptions) { o.files.EnvFile = path }
}

// WithEnvPrefix only binds environment variables starting with prefix+"_".
// The prefix is stripped before mapping to config keys.
func WithEnvPrefix(prefix string) Option {
	return func(o *loaderOptions) { o.envPrefix = strings.ToUpper(strings.TrimSuffix(prefix, "_")) }
}

// LoadConfig decodes configuration for service into cfg, which must be a
// pointer to a struct with mapstructure tags.
//
// An explicit config file that cannot be read is an error. Files found by
// searching are best-effort and only logged when unreadable.
func LoadConfig(service string, cfg any, opts ...Option) error {
	o := loaderOptions{fs: OSFileSystem{}}
	for _, opt := range opts {
		opt(&o)
	}
	files := Resolver{FS: o.fs}.Resolve(service, o.files)
	log := logger.WithComponent("config")

	v := viper.New()
	if files.ConfigFile != "" {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			if o.files.ConfigFile != "" {
				return fmt.Errorf("config: read %s: %w", files.ConfigFile, err)
			}
			log.Warn("skipping unreadable config file", logger.Fields("file", files.ConfigFile), logger.ErrorFields("read config", err))
		} else {
			log.Debug("loaded config file", logger.Fields("file", files.ConfigFile))
		}
	}

	if files.EnvFile != "" && o.fs.Exists(files.EnvFile) {
		if err := o.fs.LoadEnv(files.EnvFile); err != nil {
			log.Warn("skipping unreadable env file", logger.Fields("file", files.EnvFile), logger.ErrorFields("load env", err))
		}
	}
	bindEnv(v, o.envPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: decode %s: %w", service, err)
	}
	return nil
}

// bindEnv sets every key variant of each KEY=value pair on v.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found || rest == "" {
				continue
			}
			key = rest
		}
		for _, k := range envKeyVariants(key) {
			v.Set(k, value)
		}
	}
}

// envKeyVariants maps an environment key onto the config keys it may mean.
// Each underscore is read as a nesting separator up to some depth, and the
// rest stay part of the leaf name:
//
//	CLIENT_BASE_URL -> client_base_url, client.base_url, client.base.url
func envKeyVariants(envKey string) []string {
	lower := strings.ToLower(envKey)
	parts := strings.Split(lower, "_")
	if len(parts) == 1 {
		return []string{lower}
	}

	variants := []string{lower}
	seen := map[string]bool{lower: true}
	for depth := 1; depth < len(parts); depth++ {
		k := strings.Join(parts[:depth], ".") + "." + strings.Join(parts[depth:], "_")
		if !seen[k] {
			seen[k] = true
			variants = append(variants, k)
		}
	}
	return variants
}
