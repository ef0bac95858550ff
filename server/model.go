package server

import (
	"time"

	"github.com/gorilla/websocket"
	"github.com/zucenko/crowd/model"
)

type SimServer struct {
	Config          model.Config
	Layout          *model.Grid
	Sessions        []*SimSession
	SessionRequests chan SessionRequest
	ListRequests    chan chan []*SimSession
	Upgrader        *websocket.Upgrader
}

type SimSessionState int

const (
	SS_NEW SimSessionState = iota
	SS_RUN
	SS_PAUSE
	SS_ERR
	SS_OVER
)

// SimSession owns one simulation. Only its Loop goroutine touches Sim,
// State and Viewers.
type SimSession struct {
	Id                    string
	State                 SimSessionState
	Sim                   *model.Simulation
	LastStats             model.TickStats
	Viewers               []*ViewerSession
	Errors                chan string
	Commands              chan ViewerCommand
	ViewerConnectRequests chan ViewerConnectRequest
	SnapshotRequests      chan SnapshotRequest

	config model.Config
	layout *model.Grid
	done   chan struct{}
}

type ViewerSessionState int

const (
	VS_NEW ViewerSessionState = iota + 1
	VS_WATCH
	VS_OVER
	VS_ERR
)

type ViewerSession struct {
	State      ViewerSessionState
	Id         string
	SimSession *SimSession
	Conn       *websocket.Conn
	Done       chan struct{}

	MessagesToSend chan model.ServerMessage

	DebugInMessages  int
	DebugOutMessages int
	DebugLastMessage time.Time
	DebugLastPing    time.Time
	DebugPings       int
}
