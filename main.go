package main

import (
	"github.com/gofiber/fiber/v2/log"
	"github.com/sahilchouksey/task-manager-api/app"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		log.Fatal(err)
	}
}
