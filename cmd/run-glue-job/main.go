package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/handlers"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
)

func main() {
	ctx := context.Background()
	log := logging.New(logging.ConfigFromEnv("run-glue-job"))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("load aws config", "err", err)
		os.Exit(1)
	}

	cfg, err := config.LoadTriggerConfig(ctx, config.NewLoader(os.Getenv, ssm.NewFromConfig(awsCfg)))
	if err != nil {
		log.Error("load trigger config", "err", err)
		os.Exit(1)
	}

	h := handlers.NewTriggerHandler(cfg, glue.NewFromConfig(awsCfg), dynamodb.NewFromConfig(awsCfg), log)
	lambda.Start(h.Handle)
}
