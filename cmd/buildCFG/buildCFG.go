package buildCFG

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/config"
	"github.com/wb-go/wbf/dbpg"

	"eventease/internal/blob"
	"eventease/internal/mailer"
)

type ServerConfig struct {
	Port string
}

type RabbitConfig struct {
	Url      string
	Exchange string
	Queue    string
}

func BuildServerConfig(cfg *config.Config, log *zerolog.Logger) ServerConfig {
	port := cfg.GetString("server.port")
	if port == "" {
		port = "8080"
		log.Warn().Msg("server.port not set, defaulting to 8080")
	}
	return ServerConfig{Port: port}
}

func BuildDBConfig(cfg *config.Config, log *zerolog.Logger) (string, []string, *dbpg.Options, error) {
	host := cfg.GetString("postgres.host")
	port := cfg.GetString("postgres.port")
	user := cfg.GetString("postgres.user")
	password := cfg.GetString("postgres.password")
	dbname := cfg.GetString("postgres.dbname")
	sslmode := cfg.GetString("postgres.sslmode")

	if host == "" || user == "" || dbname == "" {
		return "", nil, nil, fmt.Errorf("postgres config is incomplete")
	}

	masterDSN := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	opts := &dbpg.Options{
		MaxOpenConns: cfg.GetInt("postgres.max_open_conns"),
		MaxIdleConns: cfg.GetInt("postgres.max_idle_conns"),
	}

	log.Info().Str("host", host).Str("dbname", dbname).Msg("database config built")
	return masterDSN, nil, opts, nil
}

func BuildRabbitConfig(cfg *config.Config, log *zerolog.Logger) (RabbitConfig, error) {
	rc := RabbitConfig{
		Url:      cfg.GetString("rabbit.url"),
		Exchange: cfg.GetString("rabbit.exchange"),
		Queue:    cfg.GetString("rabbit.queue"),
	}
	if rc.Url == "" {
		return RabbitConfig{}, fmt.Errorf("rabbit.url is not set")
	}
	log.Info().Str("exchange", rc.Exchange).Str("queue", rc.Queue).Msg("rabbit config built")
	return rc, nil
}

func BuildBlobConfig(cfg *config.Config, log *zerolog.Logger) (blob.Config, error) {
	bc := blob.Config{
		Endpoint:  cfg.GetString("minio.endpoint"),
		AccessKey: cfg.GetString("minio.access_key"),
		SecretKey: cfg.GetString("minio.secret_key"),
		Bucket:    cfg.GetString("minio.bucket"),
		UseSSL:    cfg.GetBool("minio.use_ssl"),
		PublicURL: cfg.GetString("minio.public_url"),
	}
	if bc.Endpoint == "" || bc.Bucket == "" {
		return blob.Config{}, fmt.Errorf("minio config is incomplete")
	}
	log.Info().Str("endpoint", bc.Endpoint).Str("bucket", bc.Bucket).Msg("blob storage config built")
	return bc, nil
}

func BuildSMTPConfig(cfg *config.Config, log *zerolog.Logger) mailer.Config {
	mc := mailer.Config{
		Host:     cfg.GetString("smtp.host"),
		Port:     cfg.GetString("smtp.port"),
		From:     cfg.GetString("smtp.from"),
		Password: cfg.GetString("smtp.password"),
		NotifyTo: cfg.GetString("smtp.notify_to"),
	}
	if mc.NotifyTo == "" {
		log.Warn().Msg("smtp.notify_to not set, booking notifications disabled")
	}
	return mc
}
