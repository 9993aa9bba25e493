package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var (
	// Holder all service's configuration
	config *Config

	// Instance of the global logger
	log zerolog.Logger

	// Current service's version
	version string
)

func main() {
	/*
	 * Parse configuration file
	 */
	err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't load configuration: %s", err.Error())
		os.Exit(1)
	}

	/*
	 * Setup a global logger to the file or stdout
	 */
	err = setupLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Can't setup logger: %s", err.Error())
		os.Exit(1)
	}

	// Load service's version
	err = loadVersion()
	if err != nil {
		log.Fatal().Msg("Can't load version: " + err.Error())
	}

	if len(config.API.Users) == 0 {
		log.Warn().Msg("No API users configured, API is open for everyone")
	}

	/*
	 * Enable connection services
	 */
	err = setupServices()
	if err != nil {
		log.Fatal().Msg("Can't setup connection services: " + err.Error())
	}
	defer stopServices()

	/*
	 * Load plugins
	 */
	err = loadPlugins()
	if err != nil {
		log.Fatal().Msg("Can't load plugins: " + err.Error())
	}

	/*
	 * Setup the predefined processors
	 */
	err = setupProcessors()
	if err != nil {
		log.Fatal().Msg("Can't setup processors: " + err.Error())
	}
	defer stopProcessors()

	/*
	 * Start an API feature
	 */
	mux := http.NewServeMux()
	mux.HandleFunc("/api/run", runHandler)
	mux.HandleFunc("/api/processors", processorsHandler)
	mux.HandleFunc("/api/stats", statsHandler)

	server := &http.Server{
		Addr:              config.Server.Host + ":" + config.Server.Port,
		Handler:           mux,
		ReadTimeout:       time.Duration(config.Server.ReadTimeout) * time.Second,
		ReadHeaderTimeout: time.Duration(config.Server.ReadHeaderTimeout) * time.Second,
	}

	log.Info().Msgf("Docflow v%s. Starting the service listening on %s", version, server.Addr)

	if config.Server.CertFile == "" {
		err = server.ListenAndServe()
	} else {
		err = server.ListenAndServeTLS(config.Server.CertFile, config.Server.KeyFile)
	}

	// Fatal would skip the deferred cleanup
	log.Error().Msg("Service stopped: " + err.Error())
}
