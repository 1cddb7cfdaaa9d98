package handler

import (
	"net/http"
	"sync"

	"pms/config"
	"pms/di"
	"pms/shared/logger"
	httpTransport "pms/transport/http"
)

var (
	server *httpTransport.HTTP
	once   sync.Once
)

// Handler serves a request on a serverless platform. The dependency graph is
// built on the first invocation and reused while the instance is warm.
func Handler(w http.ResponseWriter, r *http.Request) {
	r.RequestURI = r.URL.String()

	once.Do(func() {
		logger.InitLogger()
		logger.Configure(config.Get(), "api")

		server = di.InitializeService()
	})

	server.ServeHTTP(w, r)
}
