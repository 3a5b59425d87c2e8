package fakeserver

import (
	"io/ioutil"
	"net/http"

	"github.com/gorilla/websocket"
)

const httpContentType = "application/json"

var _ http.Handler = &Server{}

// ServeHTTP answers one JSON-RPC request per POST.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	body, err := ioutil.ReadAll(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("content-type", httpContentType)
	w.Write(s.Handle(r.Context(), body))
}

// WebsocketHandler serves JSON-RPC over websocket connections, one request
// per message. Requests on a connection are answered concurrently, so
// replies may arrive out of order.
func WebsocketHandler(srv *Server) http.HandlerFunc {
	upgrader := websocket.Upgrader{}
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		replies := make(chan []byte)
		done := make(chan struct{})
		defer close(done)
		go func() {
			for {
				select {
				case reply := <-replies:
					if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			go func(msg []byte) {
				reply := srv.Handle(r.Context(), msg)
				select {
				case replies <- reply:
				case <-done:
				}
			}(msg)
		}
	}
}
