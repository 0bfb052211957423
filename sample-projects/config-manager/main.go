package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/goccy/go-json"
	"github.com/reoring/goarg"
	"github.com/reoring/goarg/jsonschema"
	_ "github.com/reoring/goarg/rules"
	"gopkg.in/yaml.v3"
)

// Config represents the complete application configuration
type Config struct {
	goarg.Base
	App      AppConfig      `arg:"app"`
	Database DatabaseConfig `arg:"database"`
	Redis    RedisConfig    `arg:"redis"`
	Logging  LoggingConfig  `arg:"logging"`
	Features FeaturesConfig `arg:"features"`
}

type AppConfig struct {
	goarg.Base
	Name        string            `arg:"name" validate:"required|string"`
	Version     string            `arg:"version" validate:"required|regex:/^\\d+\\.\\d+\\.\\d+$/"`
	Environment string            `arg:"environment" default:"development" validate:"in:development,staging,production"`
	Port        int               `arg:"port" default:"8080" validate:"integer|between:1,65535"`
	Host        string            `arg:"host" default:"0.0.0.0"`
	TLS         TLSConfig         `arg:"tls"`
	Cors        CorsConfig        `arg:"cors"`
	Metadata    map[string]string `arg:"metadata"`
}

type TLSConfig struct {
	goarg.Base
	Enabled  bool   `arg:"enabled" validate:"boolean"`
	CertFile string `arg:"certFile" validate:"required_if:enabled,true"`
	KeyFile  string `arg:"keyFile" validate:"required_if:enabled,true"`
}

type CorsConfig struct {
	goarg.Base
	Enabled bool     `arg:"enabled" default:"true"`
	Origins []string `arg:"origins" default:"[\"*\"]" validate:"array"`
}

type DatabaseConfig struct {
	goarg.Base
	Host         string `arg:"host" validate:"required"`
	Port         int    `arg:"port" default:"5432" validate:"between:1,65535"`
	Database     string `arg:"database" validate:"required"`
	Username     string `arg:"username" validate:"required"`
	Password     string `arg:"password"`
	MaxConns     int    `arg:"maxConns" default:"10" validate:"min:1"`
	MaxIdleConns int    `arg:"maxIdleConns" default:"5" validate:"min:0|lte:maxConns"`
	SSLMode      string `arg:"sslMode" default:"prefer" validate:"in:disable,prefer,require"`
}

type RedisConfig struct {
	goarg.Base
	Host     string `arg:"host" default:"localhost"`
	Port     int    `arg:"port" default:"6379"`
	Database int    `arg:"database" validate:"min:0"`
	Password string `arg:"password"`
	PoolSize int    `arg:"poolSize" default:"10" validate:"min:1"`
}

type LoggingConfig struct {
	goarg.Base
	Level  string `arg:"level" default:"info" validate:"in:debug,info,warn,error"`
	Format string `arg:"format" default:"json" validate:"in:json,text"`
	Output string `arg:"output" default:"stdout"`
}

type FeaturesConfig struct {
	goarg.Base
	Analytics bool `arg:"analytics" default:"true"`
	Debugging bool `arg:"debugging"`
}

const masked = "***masked***"

func init() {
	// secrets never leave through Serialize unmasked
	mask := func(s string) any {
		if s == "" {
			return ""
		}
		return masked
	}
	goarg.Define[DatabaseConfig]().
		Getter("Password", func(d *DatabaseConfig) (any, error) { return mask(d.Password), nil }).
		MustRegister()
	goarg.Define[RedisConfig]().
		Getter("Password", func(r *RedisConfig) (any, error) { return mask(r.Password), nil }).
		MustRegister()
}

// ConfigManager handles configuration loading and validation
type ConfigManager struct {
	dir string
}

func (cm *ConfigManager) LoadConfig(env string) (*Config, error) {
	ctx := context.Background()

	// Load base configuration
	input, err := cm.loadFile("base.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load base config: %w", err)
	}

	// Load environment-specific configuration if it exists
	if envFile := env + ".yaml"; cm.fileExists(envFile) {
		overlay, err := cm.loadFile(envFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s config: %w", env, err)
		}
		input = merge(input, overlay)
	}

	cfg, err := goarg.New[Config](ctx, input, goarg.BindOpt{Unknown: goarg.UnknownStrict, WeakTypes: true})
	if err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}
	return cfg, nil
}

func (cm *ConfigManager) ValidateConfig(env string) error {
	cfg, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}
	bag, err := goarg.Validate(context.Background(), cfg)
	if err != nil {
		return err
	}
	if err := bag.Err(); err != nil {
		return err
	}
	fmt.Printf("Configuration for environment '%s' is valid!\n", env)
	return nil
}

func (cm *ConfigManager) ShowConfig(env string) error {
	cfg, err := cm.LoadConfig(env)
	if err != nil {
		return err
	}
	out, err := goarg.Serialize(cfg)
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	fmt.Printf("Configuration for environment: %s\n", env)
	fmt.Println(strings.Repeat("=", len(env)+31))
	fmt.Print(string(data))
	return nil
}

func (cm *ConfigManager) GenerateTemplate() error {
	templates := map[string]string{
		"base.yaml": `# Base configuration (common settings)
app:
  name: "MyWebApp"
  version: "1.0.0"
  metadata:
    author: "Your Name"

database:
  host: "localhost"
  database: "myapp"
  username: "postgres"

logging:
  level: "info"
`,
		"development.yaml": `# Development environment overrides
app:
  port: 3000
database:
  password: "${DB_PASSWORD:-dev_password}"
  sslMode: "disable"
logging:
  level: "debug"
features:
  debugging: true
`,
		"production.yaml": `# Production environment overrides
app:
  environment: "production"
  port: 80
  tls:
    enabled: true
    certFile: "${TLS_CERT_FILE}"
    keyFile: "${TLS_KEY_FILE}"
database:
  host: "${DB_HOST}"
  password: "${DB_PASSWORD}"
  maxConns: 50
  sslMode: "require"
redis:
  host: "${REDIS_HOST}"
  password: "${REDIS_PASSWORD}"
logging:
  level: "warn"
`,
	}
	for filename, content := range templates {
		if err := os.WriteFile(cm.path(filename), []byte(content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", filename, err)
		}
		fmt.Printf("Generated %s\n", filename)
	}
	return nil
}

func (cm *ConfigManager) path(name string) string {
	if cm.dir == "" {
		return name
	}
	return cm.dir + string(os.PathSeparator) + name
}

func (cm *ConfigManager) loadFile(filename string) (map[string]any, error) {
	data, err := os.ReadFile(cm.path(filename))
	if err != nil {
		return nil, err
	}
	return goarg.DecodeYAML(expandEnvVars(data))
}

func (cm *ConfigManager) fileExists(filename string) bool {
	_, err := os.Stat(cm.path(filename))
	return err == nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-default}.
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1])
		if name, def, ok := strings.Cut(expr, ":-"); ok {
			if v := os.Getenv(name); v != "" {
				return []byte(v)
			}
			return []byte(def)
		}
		return []byte(os.Getenv(expr))
	})
}

// merge overlays src onto dst key by key, recursing into objects.
func merge(dst, src map[string]any) map[string]any {
	for k, v := range src {
		sub, ok := v.(map[string]any)
		if cur, isMap := dst[k].(map[string]any); ok && isMap {
			dst[k] = merge(cur, sub)
			continue
		}
		dst[k] = v
	}
	return dst
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cm := &ConfigManager{dir: os.Getenv("CONFIG_DIR")}
	env := getEnvFlag()

	var err error
	switch os.Args[1] {
	case "validate":
		err = cm.ValidateConfig(env)
	case "show":
		err = cm.ShowConfig(env)
	case "generate":
		err = cm.GenerateTemplate()
	case "schema":
		var sch *jsonschema.Schema
		if sch, err = jsonschema.For[Config](); err == nil {
			var data []byte
			if data, err = json.MarshalIndent(sch, "", "  "); err == nil {
				fmt.Println(string(data))
			}
		}
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s failed: %v\n", os.Args[1], err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Printf(`goarg Config Manager Sample

Usage: %s <command> [--env=<env>]

Commands:
  validate   Validate configuration for environment
  show       Show configuration with secrets masked
  generate   Generate template configuration files
  schema     Show JSON Schema for configuration
`, os.Args[0])
}

func getEnvFlag() string {
	for _, arg := range os.Args[2:] {
		if v, ok := strings.CutPrefix(arg, "--env="); ok {
			return v
		}
	}
	return "development"
}
