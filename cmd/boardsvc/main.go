// Command boardsvc runs the bulletin board service.
//
//	boardsvc serve            start the HTTP server
//	boardsvc migrate up       apply schema migrations
//	boardsvc migrate down     drop every table
//	boardsvc migrate version  print the schema version
//	boardsvc seed             insert the demo user and boards into an empty database
//
// Configuration comes from the environment and an optional .env file; see
// internal/config.
package main

import (
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
