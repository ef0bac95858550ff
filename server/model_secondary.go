package server

import (
	"fmt"

	"github.com/gorilla/websocket"
	"github.com/zucenko/crowd/model"
)

const HTTP_SUCCESS = 200
const HTTP_BAD_REQUEST = 400
const HTTP_NOT_FOUND = 404
const HTTP_TIMEOUT = 408
const HTTP_SERVER_ERR = 503

type ResponseCode int

const (
	SESSION_READY ResponseCode = iota
	SESSION_NOT_FOUND
	SESSION_INVALID
)

func (h ResponseCode) ToHttp() int {
	switch h {
	case SESSION_READY:
		return HTTP_SUCCESS
	case SESSION_NOT_FOUND:
		return HTTP_NOT_FOUND
	case SESSION_INVALID:
		return HTTP_BAD_REQUEST
	default:
		panic(h)
	}
}

func (ss SimSessionState) Name() string {
	switch ss {
	case SS_NEW:
		return "SS_NEW"
	case SS_RUN:
		return "SS_RUN"
	case SS_PAUSE:
		return "SS_PAUSE"
	case SS_ERR:
		return "SS_ERR"
	case SS_OVER:
		return "SS_OVER"
	default:
		return fmt.Sprintf("n/a:%d", ss)
	}
}

func (vs ViewerSessionState) Name() string {
	switch vs {
	case VS_NEW:
		return "NEW"
	case VS_WATCH:
		return "WATCH"
	case VS_OVER:
		return "OVER"
	case VS_ERR:
		return "ERR"
	default:
		return "N/A"
	}
}

type SessionAwaiting struct {
	ResponseCode ResponseCode
	SimSession   *SimSession
}

type SessionRequest struct {
	SessionAwaiting chan SessionAwaiting
}

// ViewerConnectRequest attaches a viewer. Con is nil for in-process viewers,
// which get their ViewerSession back on Viewer.
type ViewerConnectRequest struct {
	Con    *websocket.Conn
	Done   chan struct{}
	Viewer chan *ViewerSession
}

type ViewerCommand struct {
	Viewer  string
	Command int
}

// Snapshot is a JSON view of a session, built by the session loop.
type Snapshot struct {
	Id      string          `json:"id"`
	State   string          `json:"state"`
	Tick    int             `json:"tick"`
	Seed    int64           `json:"seed"`
	Agents  int             `json:"agents"`
	Viewers int             `json:"viewers"`
	Stats   model.TickStats `json:"stats"`
	Frame   *model.Frame    `json:"frame,omitempty"`
}

type SnapshotRequest struct {
	WithFrame bool
	Reply     chan Snapshot
}
