package config

type DatabaseConfig struct {
	DSN            string `yaml:"dsn"`
	MigrationsPath string `yaml:"migrations_path"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type JWTConfig struct {
	SecretKey      string `yaml:"secret_key"`
	AccessTokenTTL string `yaml:"access_token_ttl"`
}

type StorageConfig struct {
	// Backend selects the blob store implementation: "disk" or "s3".
	Backend string   `yaml:"backend"`
	Dir     string   `yaml:"dir"`
	S3      S3Config `yaml:"s3"`
}

type S3Config struct {
	Bucket   string `yaml:"bucket"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	Local    bool   `yaml:"local"`
}

type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     string `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

type UploadConfig struct {
	MaxFiles        int    `yaml:"max_files"`
	MaxFileSizeGiB  int64  `yaml:"max_file_size_gib"`
	TransferTimeout string `yaml:"transfer_timeout"`
}

type AuthConfig struct {
	// DemoMode swaps the real identity provider for a fixed verified
	// identity; no credentials are checked.
	DemoMode bool `yaml:"demo_mode"`
}

type RateLimitConfig struct {
	UploadsPerHour     int `yaml:"uploads_per_hour"`
	AuthPerQuarterHour int `yaml:"auth_per_quarter_hour"`
}

type SweepConfig struct {
	ShareInterval      string `yaml:"share_interval"`
	UnverifiedInterval string `yaml:"unverified_interval"`
}
