// Package config 는 애플리케이션 설정의 로딩과 관리를 담당한다.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// 전역 설정 변수. 설정 파일에서 읽어 들인 모든 값을 보관한다.
var Conf Config

// Config 는 애플리케이션 전체 설정 구조체로, config.yaml 파일 구조와 대응된다.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	JWT           JWTConfig           `mapstructure:"jwt"`
	Log           LogConfig           `mapstructure:"log"`
	Kafka         KafkaConfig         `mapstructure:"kafka"`
	MinIO         MinIOConfig         `mapstructure:"minio"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Juso          JusoConfig          `mapstructure:"juso"`
	Molit         MolitConfig         `mapstructure:"molit"`
	Registry      RegistryConfig      `mapstructure:"registry"`
	Admin         AdminConfig         `mapstructure:"admin"`
	Crawler       CrawlerConfig       `mapstructure:"crawler"`
	Robots        RobotsConfig        `mapstructure:"robots"`
}

// ServerConfig 는 HTTP 서버 관련 설정을 보관한다.
type ServerConfig struct {
	Port string `mapstructure:"port"`
	Mode string `mapstructure:"mode"`
}

// DatabaseConfig 는 모든 데이터베이스 연결 설정을 보관한다.
type DatabaseConfig struct {
	MySQL MySQLConfig `mapstructure:"mysql"`
	Redis RedisConfig `mapstructure:"redis"`
}

// MySQLConfig 는 MySQL 데이터베이스 설정을 보관한다.
type MySQLConfig struct {
	DSN string `mapstructure:"dsn"`
}

// RedisConfig 는 Redis 설정을 보관한다.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// JWTConfig 는 JWT 관련 설정을 보관한다.
type JWTConfig struct {
	Secret                 string `mapstructure:"secret"`
	AccessTokenExpireHours int    `mapstructure:"access_token_expire_hours"`
	RefreshTokenExpireDays int    `mapstructure:"refresh_token_expire_days"`
}

// LogConfig 는 로그 관련 설정을 보관한다.
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

// KafkaConfig 는 Kafka 관련 설정을 보관한다.
// AnalysisTopic 은 등기부 분석 작업 큐, CrawlTopic 은 매물 수집 작업 큐다.
type KafkaConfig struct {
	Brokers       string `mapstructure:"brokers"`
	AnalysisTopic string `mapstructure:"analysis_topic"`
	CrawlTopic    string `mapstructure:"crawl_topic"`
}

// MinIOConfig 는 MinIO 오브젝트 스토리지 설정을 보관한다.
type MinIOConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	BucketName      string `mapstructure:"bucket_name"`
}

// ElasticsearchConfig 는 매물 검색용 Elasticsearch 설정을 보관한다.
type ElasticsearchConfig struct {
	Addresses string `mapstructure:"addresses"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	IndexName string `mapstructure:"index_name"`
}

// JusoConfig 는 행정안전부 도로명주소 검색 API 설정을 보관한다.
type JusoConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
}

// MolitConfig 는 국토교통부 아파트 실거래가 공개 API 설정을 보관한다.
// TimeoutSeconds 초 경과 시 외부 호출을 취소한다.
type MolitConfig struct {
	BaseURL        string `mapstructure:"base_url"`
	ServiceKey     string `mapstructure:"service_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

// RegistryConfig 는 외부 등기부등본 파싱 서비스 설정을 보관한다.
type RegistryConfig struct {
	ParserURL string `mapstructure:"parser_url"`
	APIKey    string `mapstructure:"api_key"`
}

// AdminConfig 는 관리자 게이트 설정을 보관한다.
type AdminConfig struct {
	// AllowedEmailDomains 는 관리자 이메일 도메인 허용 목록이다.
	AllowedEmailDomains []string `mapstructure:"allowed_email_domains"`
	// OAuthProviders 는 관리자 로그인에 허용되는 OAuth 제공자 목록이다.
	OAuthProviders []string `mapstructure:"oauth_providers"`
}

// CrawlerConfig 는 매물 수집기 설정을 보관한다.
type CrawlerConfig struct {
	SourceBaseURL string `mapstructure:"source_base_url"`
	UserAgent     string `mapstructure:"user_agent"`
}

// RobotsConfig 는 robots.txt 생성에 쓰이는 차단 경로 목록을 보관한다.
type RobotsConfig struct {
	DisallowPrefixes []string `mapstructure:"disallow_prefixes"`
}

// Init 은 지정된 경로의 YAML 파일을 읽어 Conf 변수에 파싱한다.
func Init(configPath string) {
	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	if err := viper.ReadInConfig(); err != nil {
		panic(fmt.Errorf("설정 파일 읽기 실패: %w", err))
	}

	if err := viper.Unmarshal(&Conf); err != nil {
		panic(fmt.Errorf("설정을 구조체로 파싱할 수 없음: %w", err))
	}
}
