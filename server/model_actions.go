package server

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matryer/way"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/crowd/model"
)

const requestTimeout = 200 * time.Millisecond

func NewSimServer(cfg model.Config, layout *model.Grid) *SimServer {
	return &SimServer{
		Config:          cfg,
		Layout:          layout,
		Sessions:        make([]*SimSession, 0),
		SessionRequests: make(chan SessionRequest),
		ListRequests:    make(chan chan []*SimSession),
		Upgrader:        &websocket.Upgrader{},
	}
}

func buildSimulation(cfg model.Config, layout *model.Grid) (*model.Simulation, error) {
	if layout != nil {
		return model.NewSimulationOnGrid(cfg, layout.Clone())
	}
	return model.NewSimulation(cfg)
}

func NewSimSession(cfg model.Config, layout *model.Grid) (*SimSession, error) {
	sim, err := buildSimulation(cfg, layout)
	if err != nil {
		return nil, err
	}
	return &SimSession{
		Id:                    uuid.New().String(),
		State:                 SS_NEW,
		Sim:                   sim,
		Viewers:               make([]*ViewerSession, 0),
		Errors:                make(chan string),
		Commands:              make(chan ViewerCommand, 16),
		ViewerConnectRequests: make(chan ViewerConnectRequest),
		SnapshotRequests:      make(chan SnapshotRequest),
		config:                cfg,
		layout:                layout,
		done:                  make(chan struct{}),
	}, nil
}

func (s *SimServer) HandleHttpCall() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.Printf("HandleHttpCall - connection received from %s", r.RemoteAddr)

		sas := make(chan SessionAwaiting, 1)
		select {
		case s.SessionRequests <- SessionRequest{SessionAwaiting: sas}:
		case <-time.After(requestTimeout):
			log.Warn("SessionRequests TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		var sa SessionAwaiting
		select {
		case sa = <-sas:
			if sa.ResponseCode != SESSION_READY {
				w.WriteHeader(sa.ResponseCode.ToHttp())
				return
			}
		case <-time.After(requestTimeout):
			log.Warn("HandleHttpCall SessionAwaiting <- TIMEOUTED")
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}

		con, err := s.Upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("HandleHttpCall websocket upgrade err %v", err)
			return
		}
		defer con.Close()

		done := make(chan struct{})
		select {
		case sa.SimSession.ViewerConnectRequests <- ViewerConnectRequest{Con: con, Done: done}:
		case <-sa.SimSession.done:
			return
		case <-time.After(requestTimeout):
			log.Warn("HandleHttpCall ViewerConnectRequests TIMEOUTED")
			return
		}

		log.WithField("session", sa.SimSession.Id).Info("HandleHttpCall viewer attached")
		<-done
	}
}

// Loop hands out sessions. Viewers join the first session still running;
// a new one is started when there is none.
func (s *SimServer) Loop(ctx context.Context) {
	log.Info("SimServer.Loop starting")
	for {
		select {
		case <-ctx.Done():
			log.Info("SimServer.Loop stopping")
			return
		case reply := <-s.ListRequests:
			reply <- append([]*SimSession(nil), s.Sessions...)
		case req := <-s.SessionRequests:
			var ss *SimSession
			for _, candidate := range s.Sessions {
				if !candidate.Finished() {
					ss = candidate
					break
				}
			}
			if ss == nil {
				created, err := NewSimSession(s.Config, s.Layout)
				if err != nil {
					log.Errorf("creating SimSession: %v", err)
					req.SessionAwaiting <- SessionAwaiting{ResponseCode: SESSION_INVALID}
					continue
				}
				ss = created
				log.WithFields(log.Fields{"session": ss.Id, "seed": ss.Sim.Seed}).Info("SimSession created")
				go ss.Loop(ctx)
				s.Sessions = append(s.Sessions, ss)
			}
			req.SessionAwaiting <- SessionAwaiting{ResponseCode: SESSION_READY, SimSession: ss}
		}
	}
}

func (s *SimServer) listSessions() ([]*SimSession, bool) {
	reply := make(chan []*SimSession, 1)
	select {
	case s.ListRequests <- reply:
		return <-reply, true
	case <-time.After(requestTimeout):
		return nil, false
	}
}

func (s *SimServer) HandleSessions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sessions, ok := s.listSessions()
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		snapshots := make([]Snapshot, 0, len(sessions))
		for _, ss := range sessions {
			if snapshot, ok := ss.RequestSnapshot(false); ok {
				snapshots = append(snapshots, snapshot)
			}
		}
		writeJSON(w, snapshots)
	}
}

func (s *SimServer) HandleSessionFrame() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := way.Param(r.Context(), "id")
		sessions, ok := s.listSessions()
		if !ok {
			w.WriteHeader(HTTP_TIMEOUT)
			return
		}
		for _, ss := range sessions {
			if ss.Id != id {
				continue
			}
			snapshot, ok := ss.RequestSnapshot(true)
			if !ok {
				w.WriteHeader(HTTP_TIMEOUT)
				return
			}
			writeJSON(w, snapshot)
			return
		}
		w.WriteHeader(HTTP_NOT_FOUND)
	}
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("writeJSON: %v", err)
	}
}

func (ss *SimSession) Finished() bool {
	select {
	case <-ss.done:
		return true
	default:
		return false
	}
}

// RequestSnapshot asks the session loop for its state. A finished session
// answers from its final state.
func (ss *SimSession) RequestSnapshot(withFrame bool) (Snapshot, bool) {
	reply := make(chan Snapshot, 1)
	select {
	case ss.SnapshotRequests <- SnapshotRequest{WithFrame: withFrame, Reply: reply}:
		return <-reply, true
	case <-ss.done:
		return ss.snapshot(withFrame), true
	case <-time.After(requestTimeout):
		return Snapshot{}, false
	}
}

func (ss *SimSession) snapshot(withFrame bool) Snapshot {
	snapshot := Snapshot{
		Id:      ss.Id,
		State:   ss.State.Name(),
		Tick:    ss.Sim.Tick,
		Seed:    ss.Sim.Seed,
		Agents:  len(ss.Sim.Agents),
		Viewers: len(ss.Viewers),
		Stats:   ss.LastStats,
	}
	if withFrame {
		frame := ss.Sim.Frame(ss.LastStats)
		snapshot.Frame = &frame
	}
	return snapshot
}

func (ss *SimSession) Loop(ctx context.Context) {
	logger := log.WithField("session", ss.Id)
	logger.Info("SimSession.Loop start")
	ticker := time.NewTicker(ss.config.TickInterval())
	defer func() {
		ticker.Stop()
		ss.closeViewers()
		close(ss.done)
		logger.Infof("SimSession.Loop ended in %s", ss.State.Name())
	}()

	for {
		select {
		case <-ctx.Done():
			ss.State = SS_OVER
			return
		case vcr := <-ss.ViewerConnectRequests:
			vs := ss.addViewer(vcr.Con, vcr.Done)
			if ss.State == SS_NEW {
				ss.State = SS_RUN
			}
			vs.State = VS_WATCH
			ss.send(vs, ss.setupMessage())
			if vcr.Viewer != nil {
				vcr.Viewer <- vs
			}
		case id := <-ss.Errors:
			ss.dropViewer(id, VS_ERR)
		case cmd := <-ss.Commands:
			if err := ss.handle(cmd); err != nil {
				logger.Errorf("command %d failed: %v", cmd.Command, err)
				ss.State = SS_ERR
				return
			}
		case req := <-ss.SnapshotRequests:
			req.Reply <- ss.snapshot(req.WithFrame)
		case <-ticker.C:
			if ss.State != SS_RUN {
				continue
			}
			if err := ss.tick(); err != nil {
				logger.Errorf("step failed: %v", err)
				ss.State = SS_ERR
				return
			}
		}
	}
}

func (ss *SimSession) tick() error {
	stats, err := ss.Sim.Step()
	ss.LastStats = stats
	if err != nil {
		return err
	}
	fields := log.Fields{
		"session":    ss.Id,
		"tick":       stats.Tick,
		"moved":      stats.Moved,
		"stalled":    stats.Stalled,
		"retargeted": stats.Retargeted,
		"arrived":    stats.Arrived,
		"expanded":   stats.Expanded,
	}
	if stats.Retargeted > 0 {
		log.WithFields(fields).Debug("agents retargeted")
	}
	log.WithFields(fields).Trace("tick")
	if len(ss.Viewers) > 0 {
		ss.broadcast(model.ServerMessage{Frames: []model.Frame{ss.Sim.Frame(stats)}})
	}
	return nil
}

func (ss *SimSession) handle(cmd ViewerCommand) error {
	logger := log.WithFields(log.Fields{"session": ss.Id, "viewer": cmd.Viewer})
	switch cmd.Command {
	case model.CmdPause:
		if ss.State == SS_RUN || ss.State == SS_NEW {
			ss.State = SS_PAUSE
		}
	case model.CmdResume:
		if ss.State == SS_PAUSE || ss.State == SS_NEW {
			ss.State = SS_RUN
		}
	case model.CmdStep:
		if ss.State == SS_PAUSE {
			return ss.tick()
		}
	case model.CmdReset:
		sim, err := buildSimulation(ss.config, ss.layout)
		if err != nil {
			return err
		}
		ss.Sim = sim
		ss.LastStats = model.TickStats{}
		logger.WithField("seed", sim.Seed).Info("simulation reset")
		setup := ss.setupMessage()
		ss.broadcast(setup)
		return nil
	default:
		logger.Warnf("unknown command %d", cmd.Command)
		return nil
	}
	logger.Infof("command %d -> %s", cmd.Command, ss.State.Name())
	return nil
}

func (ss *SimSession) setupMessage() model.ServerMessage {
	cfg := ss.Sim.Config
	return model.ServerMessage{
		Setup: []model.Setup{{
			Session:      ss.Id,
			Size:         cfg.Size,
			Scale:        cfg.Scale,
			Agents:       len(ss.Sim.Agents),
			TickInterval: cfg.TickMillis,
		}},
		Frames: []model.Frame{ss.Sim.Frame(ss.LastStats)},
	}
}

func (ss *SimSession) broadcast(mes model.ServerMessage) {
	for _, vs := range ss.Viewers {
		ss.send(vs, mes)
	}
}

// send never blocks the session loop; a slow viewer loses frames.
func (ss *SimSession) send(vs *ViewerSession, mes model.ServerMessage) {
	select {
	case vs.MessagesToSend <- mes:
	default:
		log.WithFields(log.Fields{"session": ss.Id, "viewer": vs.Id}).Warn("viewer queue full, dropping message")
	}
}

func (ss *SimSession) addViewer(conn *websocket.Conn, done chan struct{}) *ViewerSession {
	vs := &ViewerSession{
		State:          VS_NEW,
		Id:             uuid.New().String(),
		SimSession:     ss,
		Conn:           conn,
		Done:           done,
		MessagesToSend: make(chan model.ServerMessage, 10),
	}
	if conn != nil {
		conn.SetPingHandler(
			func(message string) error {
				err := conn.WriteControl(websocket.PongMessage, []byte(message), time.Now().Add(time.Second))
				vs.DebugLastPing = time.Now()
				vs.DebugPings++
				if err == websocket.ErrCloseSent {
					return nil
				} else if e, ok := err.(net.Error); ok && e.Timeout() {
					return nil
				}
				return err
			})
		go vs.LoopChannelRead()
		go vs.LoopChannelWrite()
	}
	ss.Viewers = append(ss.Viewers, vs)
	log.WithFields(log.Fields{"session": ss.Id, "viewer": vs.Id, "viewers": len(ss.Viewers)}).Info("viewer added")
	return vs
}

func (ss *SimSession) dropViewer(id string, state ViewerSessionState) {
	for i, vs := range ss.Viewers {
		if vs.Id != id {
			continue
		}
		vs.State = state
		close(vs.MessagesToSend)
		ss.Viewers = append(ss.Viewers[:i], ss.Viewers[i+1:]...)
		log.WithFields(log.Fields{"session": ss.Id, "viewer": id, "state": state.Name()}).Info("viewer dropped")
		return
	}
}

func (ss *SimSession) closeViewers() {
	for _, vs := range ss.Viewers {
		vs.State = VS_OVER
		close(vs.MessagesToSend)
	}
	ss.Viewers = nil
}

// Attach joins the session as an in-process viewer. Messages arrive on the
// viewer's MessagesToSend until the session ends.
func (ss *SimSession) Attach() (*ViewerSession, bool) {
	reply := make(chan *ViewerSession, 1)
	select {
	case ss.ViewerConnectRequests <- ViewerConnectRequest{Done: make(chan struct{}), Viewer: reply}:
		return <-reply, true
	case <-ss.done:
		return nil, false
	case <-time.After(requestTimeout):
		return nil, false
	}
}

func (vs *ViewerSession) report() {
	select {
	case vs.SimSession.Errors <- vs.Id:
	case <-vs.SimSession.done:
	}
}

func (vs *ViewerSession) LoopChannelRead() {
	logger := log.WithField("viewer", vs.Id)
	logger.Debug("LoopChannelRead STARTED")
	defer logger.Debug("LoopChannelRead ENDED")
	for {
		_, r, err := vs.Conn.NextReader()
		if err != nil {
			logger.Debugf("LoopChannelRead err reading message from Conn %v", err)
			vs.report()
			return
		}
		cm := &model.ClientMessage{}
		if err := gob.NewDecoder(r).Decode(cm); err != nil {
			logger.Warnf("LoopChannelRead cant decode %v", err)
			vs.report()
			return
		}
		vs.DebugLastMessage = time.Now()
		vs.DebugInMessages++

		select {
		case vs.SimSession.Commands <- ViewerCommand{Viewer: vs.Id, Command: cm.Command}:
		case <-vs.SimSession.done:
			return
		default:
			logger.Warn("dropping command, SimSession.Commands FULL")
		}
	}
}

// LoopChannelWrite drains MessagesToSend until the session closes it.
func (vs *ViewerSession) LoopChannelWrite() {
	logger := log.WithField("viewer", vs.Id)
	defer close(vs.Done)
	for mes := range vs.MessagesToSend {
		w, err := vs.Conn.NextWriter(websocket.BinaryMessage)
		if err != nil {
			logger.Warnf("LoopChannelWrite cant get writer %v", err)
			vs.report()
			return
		}
		if err = gob.NewEncoder(w).Encode(mes); err != nil {
			logger.Warnf("LoopChannelWrite cant encode %v", err)
			vs.report()
			return
		}
		if err = w.Close(); err != nil {
			logger.Warnf("LoopChannelWrite cant flush %v", err)
			vs.report()
			return
		}
		vs.DebugOutMessages++
	}
	vs.Conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
}
