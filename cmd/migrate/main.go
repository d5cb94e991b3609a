// Command migrate applies the embedded schema migrations to the configured
// Postgres database and exits.
package main

import (
	"github.com/adanyl0v/todone/internal/app"
)

func main() {
	a := app.New()
	a.MustReadEnv()
	a.MustInitApplicationLogger()

	pgPool := a.MustConnectPostgres()
	defer pgPool.Close()

	a.MustMigratePostgres(pgPool)
}
