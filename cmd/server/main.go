package main

import (
	"os"

	"github.com/adanyl0v/todone/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	a := app.New()
	a.MustReadEnv()
	a.MustInitApplicationLogger()

	a.MustConnectStorage()
	defer a.DisconnectStorage()

	return a.ListenAndServeHTTP()
}
