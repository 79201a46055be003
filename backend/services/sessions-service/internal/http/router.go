package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Detections   http.HandlerFunc
	PlateLookup  http.HandlerFunc
	OpenSessions http.HandlerFunc
	Monitor      http.HandlerFunc
	Health       http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Detections != nil {
		mux.Handle("/internal/detections", method(http.MethodPost, routes.Detections))
	}
	if routes.PlateLookup != nil {
		mux.Handle("/sessions/plate", method(http.MethodGet, routes.PlateLookup))
	}
	if routes.OpenSessions != nil {
		mux.Handle("/sessions/open", method(http.MethodGet, routes.OpenSessions))
	}
	if routes.Monitor != nil {
		mux.Handle("/ws/monitor", method(http.MethodGet, routes.Monitor))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
