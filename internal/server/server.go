package server

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"o365sync/internal/channel"
	conf "o365sync/internal/config"
	"o365sync/internal/structs"
)

// ReportSource exposes the report of the most recent run.
type ReportSource interface {
	LastReport() (structs.RunReport, bool)
}

func health(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func config(w http.ResponseWriter, r *http.Request) {
	if r.Method == "GET" {

		// Set response headers
		w.Header().Set("Content-Type", "application/json")

		// Get config
		data := conf.GetConfig()

		// Return json response
		if err := json.NewEncoder(w).Encode(data); err != nil {
			logrus.Error("There was an error encoding the config for response: ", err)
			return
		}

	} else if r.Method == "POST" {
		// Get posted config data.
		var posted structs.PostedModuleConfig
		err := json.NewDecoder(r.Body).Decode(&posted)
		if err != nil {
			logrus.Error("There was an error decoding the POST config: ", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		known := make(map[string]bool, len(conf.Keys))
		for _, key := range conf.Keys {
			known[key] = true
		}

		for key := range posted.Values {
			if !known[key] {
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte("Unknown configuration field: " + key))
				return
			}
		}

		// Store current configuration, then apply posted values.
		previous := make(map[string]interface{}, len(posted.Values))
		for key, value := range posted.Values {
			previous[key] = viper.Get(key)
			viper.Set(key, value)
		}

		// Validate configuration.
		valid, errStr := conf.ValidateConfig()
		if !valid {
			for key, value := range previous {
				viper.Set(key, value)
			}
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(errStr))
			return
		}

		if err := viper.WriteConfig(); err != nil {
			logrus.Error("error writing config", err)
		}
		if err := conf.Reload(); err != nil {
			logrus.Error("error reloading config", err)
		}
		w.WriteHeader(http.StatusAccepted)
	}
}

func run(reports ReportSource) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			// Create struct for element sent.
			var request structs.RunRequest

			// Parse request. An empty body is a plain run.
			err := json.NewDecoder(r.Body).Decode(&request)
			if err != nil && err != io.EOF {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}

			select {
			case channel.Requests <- request:
				w.WriteHeader(http.StatusAccepted)
			default:
				http.Error(w, "a run is already queued", http.StatusConflict)
			}

		} else if r.Method == "GET" {
			report, ok := reports.LastReport()
			if !ok {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(report); err != nil {
				logrus.Error("There was an error encoding the run report: ", err)
			}

		} else {
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

func NewRouter(reports ReportSource) *mux.Router {
	// Create Router for Server
	router := mux.NewRouter().StrictSlash(true)

	// Create Routes
	router.HandleFunc("/health", health).Methods("OPTIONS", "GET")
	router.HandleFunc("/config", config).Methods("OPTIONS", "GET", "POST")
	router.Handle("/run", run(reports)).Methods("OPTIONS", "GET", "POST")
	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	return router
}

// RunServer serves the router on addr until ctx is done.
func RunServer(ctx context.Context, addr string, reports ReportSource) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(reports),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logrus.Info("Starting Server on ", addr)

	// Start Server
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}
