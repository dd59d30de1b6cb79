package main

import (
	"context"
	"fmt"

	"bitwise74/vidshare/api"
	"bitwise74/vidshare/config"
	"bitwise74/vidshare/events"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	gin.SetMode(gin.ReleaseMode)

	err := config.Setup()
	if err != nil {
		panic(err)
	}

	a, err := api.NewRouter()
	if err != nil {
		panic(err)
	}

	if !config.EventsDisabled() {
		poller := &events.Poller{
			Client:   a.Clients.SQS,
			QueueURL: viper.GetString("aws.events_queue_url"),
			Reactor:  a.Reactor,
		}

		go poller.Run(context.Background())
	}

	zap.L().Info("Server starting")

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
