package main

import (
	"github.com/smle-dev/smle/internal/app"
	"go.uber.org/fx"
)

// main is the entry point for the experiment tracker server.
func main() {
	fx.New(app.TrackerModule).Run()
}
