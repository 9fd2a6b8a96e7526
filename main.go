package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	"gradecast/db"
	ghttp "gradecast/http"
	"gradecast/logging"
	"gradecast/monitoring"
	"gradecast/predict"
)

type Config struct {
	Model struct {
		Path string `yaml:"path"`
		TopN int    `yaml:"top_n"`
	} `yaml:"model"`
	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`
	Http struct {
		Port           int           `yaml:"port"`
		Timeout        time.Duration `yaml:"timeout"`
		AllowedOrigins []string      `yaml:"allowed_origins"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
}

func main() {
	config, err := loadConfig(configPath())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(config.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	if config.Database.Path != "" {
		if err := db.InitDB(config.Database.Path); err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		defer db.Close()
		logger.Info("database initialized", zap.String("path", config.Database.Path))
	}

	predictor, err := predict.New(config.Model.Path, logger)
	if err != nil {
		logger.Fatal("failed to load model artifact", zap.String("path", config.Model.Path), zap.Error(err))
	}
	logger.Info("model artifact loaded", zap.String("path", config.Model.Path))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	hub := monitoring.NewHub(logger)
	go hub.Run(ctx)

	if err := monitoring.WatchArtifact(ctx, config.Model.Path, logger); err != nil {
		logger.Warn("artifact watcher unavailable", zap.Error(err))
	}

	ghttp.SetPredictor(predictor)
	ghttp.SetMonitorHub(hub)
	if config.Model.TopN > 0 {
		ghttp.SetTopN(config.Model.TopN)
	}

	serverConfig := ghttp.DefaultServerConfig()
	if config.Http.Port > 0 {
		serverConfig.Port = config.Http.Port
	}
	if config.Http.Timeout > 0 {
		serverConfig.Timeout = config.Http.Timeout
	}
	if len(config.Http.AllowedOrigins) > 0 {
		serverConfig.AllowedOrigins = config.Http.AllowedOrigins
	}

	server := ghttp.NewServer(serverConfig, logger)
	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("http server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	cancel()
	if err := server.Stop(); err != nil {
		logger.Warn("server forced to shutdown", zap.Error(err))
	}
	logger.Info("exiting")
}

func configPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	return "config.yaml"
}

func loadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
