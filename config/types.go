package config

type Config struct {
	Debug  bool   `mapstructure:"debug"`
	Server Server `mapstructure:"server"`
	Media  Media  `mapstructure:"media"`
	Upload Upload `mapstructure:"upload"`
}

type Server struct {
	Address   string       `mapstructure:"address" validate:"required,hostname|ip"`
	Port      int          `mapstructure:"port" validate:"min=0,max=65535"`
	SecretKey string       `mapstructure:"secret_key" validate:"required"`
	Limits    ServerLimits `mapstructure:"limits"`
	Cors      ServerCors   `mapstructure:"cors"`
}

type ServerLimits struct {
	// MaxFileSize caps a single uploaded file in bytes; zero means unlimited.
	MaxFileSize     uint `mapstructure:"max_file_size"`
	MaxMultipartMem uint `mapstructure:"max_multipart_mem"`
	// MaxConnections caps concurrently accepted connections; zero disables the cap.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0"`
}

type ServerCors struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" validate:"required,min=1,dive,required"`
}

type Media struct {
	Strategy string            `mapstructure:"strategy" validate:"required,oneof=sql d1 git memory"`
	Types    []string          `mapstructure:"types" validate:"required,min=1,dive,mediatype"`
	SQL      *SQLMediaStrategy `mapstructure:"sql" validate:"required_if=Strategy sql"`
	D1       *D1MediaStrategy  `mapstructure:"d1" validate:"required_if=Strategy d1"`
	Git      *GitMediaStrategy `mapstructure:"git" validate:"required_if=Strategy git"`
}

// SQLMediaStrategy accepts either a URL in DatabaseURL (postgres://, mysql://,
// sqlite://) or an explicit Driver + DSN pair. An explicit DSN wins.
type SQLMediaStrategy struct {
	DatabaseURL string  `mapstructure:"database_url"`
	Driver      string  `mapstructure:"driver" validate:"omitempty,oneof=postgres mysql sqlite"`
	DSN         string  `mapstructure:"dsn" validate:"required_with=Driver"`
	TablePrefix *string `mapstructure:"table_prefix" validate:"omitempty,identifier"`
}

type D1MediaStrategy struct {
	AccountID   string  `mapstructure:"account_id" validate:"required"`
	DatabaseID  string  `mapstructure:"database_id" validate:"required"`
	APIToken    string  `mapstructure:"api_token" validate:"required"`
	Endpoint    string  `mapstructure:"endpoint" validate:"omitempty,url"`
	TablePrefix *string `mapstructure:"table_prefix" validate:"omitempty,identifier"`
}

type GitMediaStrategy struct {
	Repository string               `mapstructure:"repository" validate:"required"`
	Branch     string               `mapstructure:"branch"`
	Path       string               `mapstructure:"path" validate:"required,localpath"`
	Auth       GitMediaStrategyAuth `mapstructure:"auth"`
}

type GitMediaStrategyAuth struct {
	Method string                `mapstructure:"method" validate:"required,oneof=none plain ssh"`
	Plain  *UsernamePasswordAuth `mapstructure:"plain" validate:"required_if=Method plain"`
	Ssh    *SshKeyAuth           `mapstructure:"ssh" validate:"required_if=Method ssh"`
}

type UsernamePasswordAuth struct {
	Username string `mapstructure:"username" validate:"required"`
	Password string `mapstructure:"password" validate:"required"`
}

type SshKeyAuth struct {
	Username           string `mapstructure:"username" validate:"required"`
	PrivateKeyFilePath string `mapstructure:"private_key_file_path" validate:"required,file"`
	// Passphrase may be empty for unencrypted keys.
	Passphrase string `mapstructure:"passphrase"`
}

type Upload struct {
	Strategy   string                    `mapstructure:"strategy" validate:"required,oneof=cloudinary s3 filesystem noop"`
	Cloudinary *CloudinaryUploadStrategy `mapstructure:"cloudinary" validate:"required_if=Strategy cloudinary"`
	S3         *S3UploadStrategy         `mapstructure:"s3" validate:"required_if=Strategy s3"`
	Filesystem *FilesystemUploadStrategy `mapstructure:"filesystem" validate:"required_if=Strategy filesystem"`
}

type CloudinaryUploadStrategy struct {
	CloudName string `mapstructure:"cloud_name" validate:"required"`
	APIKey    string `mapstructure:"api_key" validate:"required"`
	APISecret string `mapstructure:"api_secret" validate:"required"`
	Folder    string `mapstructure:"folder" validate:"omitempty,localpath"`
	// UploadPrefix overrides the API host, e.g. for a regional endpoint.
	UploadPrefix string `mapstructure:"upload_prefix" validate:"omitempty,url"`
}

type S3UploadStrategy struct {
	AccessKeyId    string `mapstructure:"access_key_id" validate:"required"`
	SecretKeyId    string `mapstructure:"secret_key_id" validate:"required"`
	Region         string `mapstructure:"region"`
	Bucket         string `mapstructure:"bucket" validate:"required"`
	Endpoint       string `mapstructure:"endpoint"`
	Prefix         string `mapstructure:"prefix" validate:"omitempty,pathpattern"`
	ForcePathStyle bool   `mapstructure:"force_path_style"`
	DisableSSL     bool   `mapstructure:"disable_ssl"`
	PublicUrl      string `mapstructure:"public_url" validate:"omitempty,url"`
}

type FilesystemUploadStrategy struct {
	Path        string `mapstructure:"path" validate:"required,abspath"`
	PublicUrl   string `mapstructure:"public_url" validate:"required,url"`
	PathPattern string `mapstructure:"path_pattern" validate:"omitempty,pathpattern"`
}
