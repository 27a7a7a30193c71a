package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/quill/internal/httpserver/deps"
	"github.com/MrSnakeDoc/quill/internal/logger"
	"github.com/MrSnakeDoc/quill/internal/scheduler"
)

// Reload triggers a manual rescan of the content collection.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !scheduler.Trigger(d.ReloadTrigger) {
			d.Logger.Warn("content reload already pending",
				logger.String("remote_ip", r.RemoteAddr))
			w.WriteHeader(http.StatusTooManyRequests)
			if _, err := w.Write([]byte("⏳ Reload already in progress, please wait\n")); err != nil {
				d.Logger.Debug("failed to write response", logger.Error(err))
			}
			return
		}

		d.Logger.Info("manual content reload triggered via endpoint",
			logger.String("remote_ip", r.RemoteAddr))
		w.WriteHeader(http.StatusAccepted)
		if _, err := w.Write([]byte("✅ Reload triggered successfully\n")); err != nil {
			d.Logger.Debug("failed to write response", logger.Error(err))
		}
	}
}
