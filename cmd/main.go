package main

import (
	"ae-triage-intake/cmd/bootstrap"

	"github.com/sirupsen/logrus"
)

func main() {
	// Wire config, session store, reasoning client and HTTP server
	app, err := bootstrap.New()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to initialize triage intake service")
	}

	// Serve until SIGINT/SIGTERM
	app.Run()
}
