package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load 加载配置
// 1. 加载 .env.{env}（敏感信息）
// 2. 根据 APP_ENV 加载 {env}.yaml
// 3. 环境变量覆盖，构建最终配置
func Load() *Config {
	env := parseEnv(getEnv("APP_ENV", "dev"))
	loadEnvFiles(env)

	yamlCfg := loadYAMLConfig(env)

	// 从环境变量获取敏感信息
	yamlCfg.Database.Password = firstEnv("DB_PASSWORD", "MONGO_ROOT_PASSWORD")
	yamlCfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
	yamlCfg.MinIO.AccessKey = os.Getenv("MINIO_ROOT_USER")
	yamlCfg.MinIO.SecretKey = os.Getenv("MINIO_ROOT_PASSWORD")
	yamlCfg.Auth.JWTSecret = os.Getenv("JWT_SECRET")

	// 数据库：DATABASE_URL / MONGO_URI 优先于 YAML
	databaseURL := firstEnv("DATABASE_URL", "MONGO_URI")
	driver := detectDatabaseDriver(yamlCfg.Database.Driver, databaseURL)
	if databaseURL == "" {
		yamlCfg.Database.Driver = driver
		databaseURL = buildDatabaseURL(yamlCfg.Database, yamlCfg.Database.Password)
	}

	if u := os.Getenv("REDIS_URL"); u != "" {
		yamlCfg.Redis.URL = u
	}

	cfg := &Config{
		Env:            env,
		DatabaseDriver: driver,
		DatabaseURL:    databaseURL,
		DatabaseDBName: getEnv("DB_NAME", yamlCfg.Database.Name),
		RedisURL:       buildRedisURL(yamlCfg.Redis),
		APIPort:        getEnv("PORT", yamlCfg.APIServer.Port),
		CORSOrigins:    yamlCfg.APIServer.CORSOrigins,
		Auth:           yamlCfg.Auth,
		MinIO:          yamlCfg.MinIO,
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", yamlCfg.Log.Level),
			Format: getEnv("LOG_FORMAT", yamlCfg.Log.Format),
		},
		ConfigFilePath: yamlCfg.loadedFrom,
	}
	cfg.applyDefaults()
	return cfg
}

// applyDefaults 填充 YAML 与环境变量都未设置的字段
func (c *Config) applyDefaults() {
	if c.APIPort == "" {
		c.APIPort = DefaultPort
	}
	if c.DatabaseDBName == "" {
		c.DatabaseDBName = DefaultMongoDB
	}
	if c.Auth.TokenTTL == "" {
		c.Auth.TokenTTL = DefaultTokenTTL.String()
	}
	if c.Auth.BcryptCost == 0 {
		c.Auth.BcryptCost = DefaultBcryptCost
	}
	if c.MinIO.Bucket == "" {
		c.MinIO.Bucket = "afro-class"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// loadYAMLConfig 加载 YAML 配置文件
// 加载顺序：默认值 → {env}.yaml
func loadYAMLConfig(env Environment) *yamlConfigInternal {
	cfg := &yamlConfigInternal{
		YAMLConfig: YAMLConfig{
			APIServer: APIServerConfig{Port: DefaultPort},
			Database: DatabaseConfig{
				Host:    "localhost",
				Port:    27017,
				Name:    DefaultMongoDB,
				SSLMode: "disable",
			},
			Auth: AuthConfig{
				TokenTTL:   DefaultTokenTTL.String(),
				BcryptCost: DefaultBcryptCost,
			},
		},
	}

	filename := fmt.Sprintf("%s.yaml", env)
	for _, base := range effectiveConfigPaths(env) {
		path := filepath.Join(base, filename)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, &cfg.YAMLConfig); err != nil {
			log.Printf("[config] Failed to parse %s: %v", path, err)
			break
		}
		cfg.loadedFrom = path
		break
	}

	return cfg
}
