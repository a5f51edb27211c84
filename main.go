package main

import (
	"fmt"

	"reminderpro/reminder-api/api"
	"reminderpro/reminder-api/config"
	"reminderpro/reminder-api/service"

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

	if viper.GetBool("dispatch.enabled") {
		d := service.NewDispatcher(a.Store)
		if err := d.Start(); err != nil {
			panic(err)
		}
		defer d.Stop()
	}

	zap.L().Info("Server starting")

	err = a.Router.Run(fmt.Sprintf(":%d", viper.GetInt("host.port")))
	if err != nil {
		panic(err)
	}
}
