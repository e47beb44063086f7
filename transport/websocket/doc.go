// Package websocket pushes live board updates to browser and terminal clients.
//
// A central Hub groups connections by session ID. Every time a session's board
// changes, the HTTP layer calls BroadcastToSession and each watching client
// receives the full state:
//
//	{"session_id":"a1b2","event":"state_update","game_state":{...}}
//
// Clients may also play over the socket once an ActionHandler is installed:
//
//	{"action":"rotate","row":2,"col":3}
//	{"action":"move","direction":"east"}
//
// A successful action is broadcast to every client on the session. A rejected
// one is answered only to the sender with an "error" event.
//
// Usage:
//
//	hub := websocket.NewHub()
//	hub.SetActionHandler(handler)
//	go hub.Run()
//
//	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
