package main

import (
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/cloudwatch"
	"github.com/go-chi/chi/v5"
	tokenizerapi "github.com/tokenizer-systems/tokenizer-go/tokenizer-api"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/queuedao"
	"github.com/tokenizer-systems/tokenizer-go/tokenizer-api/userdao"
	tokenizercli "github.com/tokenizer-systems/tokenizer-go/tokenizer-cli"
	tokenizerddb "github.com/tokenizer-systems/tokenizer-go/tokenizer-ddb"
	tokenizerrest "github.com/tokenizer-systems/tokenizer-go/tokenizer-rest"
	"github.com/urfave/cli/v2"
)

var service = tokenizercli.NewService("tokenizer-api")

func main() {
	app := tokenizercli.App(
		service,
		action,
		append(
			append(tokenizercli.CommonFlags, tokenizerddb.DDBFlags...),
			tokenizercli.PortFlag(5001),
		)...,
	)
	if err := app.Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func action(_ *cli.Context) error {
	s := session.Must(session.NewSession(aws.NewConfig()))
	api, err := tokenizerddb.DynamoDBAPI(s)
	if err != nil {
		return err
	}

	env := tokenizercli.CommonOpts.Env
	queues := queuedao.Build(api, env)
	if table := tokenizerddb.DDBOpts.QueuesTable; table != "" {
		queues = queuedao.New(api, table)
	}
	users := userdao.Build(api, env)
	if table := tokenizerddb.DDBOpts.UsersTable; table != "" {
		users = userdao.New(api, table)
	}

	metrics := tokenizercli.NewMetrics(service, cloudwatch.New(s))
	handler := tokenizerapi.NewHandler(service, queues, users, &metrics)

	if tokenizercli.CommonOpts.Console {
		routes := tokenizerrest.Middlewares(service, chi.NewRouter())
		routes.Mount("/", handler.Routes())
		return tokenizerrest.Webserver(service, routes)
	}

	lambda.Start(handler.HandleAPIGatewayEvent)
	return nil
}
