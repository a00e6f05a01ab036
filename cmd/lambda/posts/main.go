package main

import (
	"context"

	awslambda "github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"

	"blog-content-api/internal/config"
	"blog-content-api/internal/models"
	"blog-content-api/pkg/server"
)

func main() {
	cfg, err := config.GetOptimizedConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logger := config.NewLogger(cfg)

	container, err := server.NewContainer(context.Background(), cfg, logger, models.PostSchema)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize container")
	}
	defer container.Close()

	router, err := container.LambdaRouter(models.PostSchema)
	if err != nil {
		logger.WithError(err).Fatal("Failed to build Lambda router")
	}

	logger.WithFields(logrus.Fields{
		"function": config.GetServerlessConfig().FunctionName,
		"resource": models.PostSchema.Plural,
	}).Info("Lambda handler starting")

	awslambda.Start(router.HandleAPIGateway)
}
