package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/glue"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/handlers"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
)

func main() {
	ctx := context.Background()
	log := logging.New(logging.ConfigFromEnv("athena-query"))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("load aws config", "err", err)
		os.Exit(1)
	}

	cfg, err := config.LoadQueryConfig(ctx, config.NewLoader(os.Getenv, ssm.NewFromConfig(awsCfg)))
	if err != nil {
		log.Error("load query config", "err", err)
		os.Exit(1)
	}

	h := handlers.NewQueryHandler(cfg, athena.NewFromConfig(awsCfg), glue.NewFromConfig(awsCfg), log)
	lambda.Start(h.Handle)
}
