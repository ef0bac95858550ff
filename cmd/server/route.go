package main

import (
	"github.com/matryer/way"
)

const URI_WS = "/watch"
const URI_SESSIONS = "/sessions"
const URI_SESSION_FRAME = "/sessions/:id/frame"

func (s *Server) routes() {
	s.router = way.NewRouter()
	s.router.HandleFunc("GET", URI_WS, s.SimServer.HandleHttpCall())
	s.router.HandleFunc("GET", URI_SESSIONS, s.SimServer.HandleSessions())
	s.router.HandleFunc("GET", URI_SESSION_FRAME, s.SimServer.HandleSessionFrame())
}
