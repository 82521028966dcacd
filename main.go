package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"p9e.in/corecut/config"
	"p9e.in/corecut/pkg/logger"
	"p9e.in/corecut/routes"
)

var (
	Version   = "dev"
	BuildTime = ""
)

func main() {
	versionFlag := flag.Bool("version", false, "Print version info and exit")
	flag.Parse()

	if *versionFlag {
		fmt.Printf("Version:   %s\n", Version)
		fmt.Printf("BuildTime: %s\n", BuildTime)
		os.Exit(0)
	}

	logger.UseConsole()
	if err := config.Load(); err != nil {
		logger.L.Fatal().Err(err).Msg("could not load configuration")
	}
	if err := config.Connect(); err != nil {
		logger.L.Fatal().Err(err).Msg("could not connect to database")
	}

	handler := routes.RegisterRoutes()
	handlerWithCORS := enableCORS(handler)
	logger.L.Info().Str("port", config.C.Port).Msg("server starting")
	if err := http.ListenAndServe(":"+config.C.Port, handlerWithCORS); err != nil {
		logger.L.Fatal().Err(err).Msg("server stopped")
	}
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Required CORS headers
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")

		// Handle preflight (OPTIONS)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
