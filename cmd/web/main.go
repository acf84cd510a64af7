// Command web serves the depreciation dashboard and its API.
package main

import (
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"penyusutan/internal/app"
	"penyusutan/pkg/contracts"
)

//go:embed all:frontend
var frontendFiles embed.FS

func frontend() fs.FS {
	sub, err := fs.Sub(frontendFiles, "frontend")
	if err != nil {
		slog.Warn("serving without the dashboard page", slog.String("error", err.Error()))
		return nil
	}
	return sub
}

func main() {
	showVersion := flag.Bool("version", false, "print build information and exit")
	flag.Parse()
	if *showVersion {
		fmt.Println(contracts.GetFullVersionString())
		return
	}

	application, err := app.NewApplication(frontend())
	if err != nil {
		slog.Error("startup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := application.Run(); err != nil {
		slog.Error("server stopped with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
