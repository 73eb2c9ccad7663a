package main

import (
	"academy/config"
	"academy/database"
	"academy/logger"
	"academy/routers"
	"academy/utils"
	"log"
)

func main() {
	config.LoadConfig()
	if err := logger.Init(config.AppConfig.LogMode); err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Log.Sync()
	for _, w := range config.AppConfig.Warnings {
		logger.Log.Warn(w)
	}

	utils.InitMailer(config.AppConfig)
	utils.InitPaymentVerifier(config.AppConfig)
	database.ConnectDb()

	scheduler, err := utils.InitializeCertificateScheduler(database.Database.Db, config.AppConfig.CertificateNotifyCron)
	if err != nil {
		logger.Log.Fatal("failed to start certificate scheduler", "error", err)
	}
	defer scheduler.Stop()

	app := routers.New(true)

	logger.Log.Info("server is running", "port", config.AppConfig.Port)
	if err := app.Listen(":" + config.AppConfig.Port); err != nil {
		logger.Log.Fatal("server stopped", "error", err)
	}
}
