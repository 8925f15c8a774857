package main

import (
	"context"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/config"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/etl"
	"github.com/Chechox12/Empresa-Comercializadora-de-Energia/internal/logging"
)

func main() {
	ctx := context.Background()
	log := logging.New(logging.ConfigFromEnv(etl.JobName))

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		log.Error("load aws config", "err", err)
		os.Exit(1)
	}

	cfg, err := config.LoadJobConfig(ctx, config.NewLoader(os.Getenv, ssm.NewFromConfig(awsCfg)))
	if err != nil {
		log.Error("load job config", "err", err)
		os.Exit(1)
	}

	clients := etl.Clients{
		S3:       s3.NewFromConfig(awsCfg),
		SNS:      sns.NewFromConfig(awsCfg),
		DynamoDB: dynamodb.NewFromConfig(awsCfg),
	}
	if cfg.RepairTable != "" {
		clients.Athena = athena.NewFromConfig(awsCfg)
	}
	job := etl.NewRawToProcessed(cfg, clients, log)

	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") != "" {
		lambda.Start(job.Handle)
		return
	}

	// Glue python shell / local run
	args, err := parseArgs(os.Args[1:])
	if err != nil {
		log.Error("parse arguments", "err", err)
		os.Exit(2)
	}
	if _, err := job.Run(ctx, cfg.Params.Merge(args)); err != nil {
		log.Error("job failed", "err", err)
		os.Exit(1)
	}
}
