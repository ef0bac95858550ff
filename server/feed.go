package server

import (
	"context"
	"encoding/gob"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/crowd/model"
)

// Feed delivers simulation messages to a viewer and carries its commands back.
type Feed interface {
	Messages() <-chan model.ServerMessage
	Command(cmd int) error
	Close()
}

// OpenFeed watches url when it is set and runs a local session otherwise.
func OpenFeed(url, configPath, layoutPath string) (Feed, error) {
	if url != "" {
		log.Infof("watching %s", url)
		return Dial(url)
	}
	cfg, err := LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	SetLogLevel(cfg.LogLevel)
	var layout *model.Grid
	if layoutPath != "" {
		if layout, err = LoadLayout(layoutPath); err != nil {
			return nil, err
		}
	}
	return NewLocalFeed(cfg, layout)
}

// LocalFeed runs its own SimSession in-process.
type LocalFeed struct {
	Session *SimSession
	viewer  *ViewerSession
	cancel  context.CancelFunc
}

func NewLocalFeed(cfg model.Config, layout *model.Grid) (*LocalFeed, error) {
	ss, err := NewSimSession(cfg, layout)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithCancel(context.Background())
	go ss.Loop(ctx)
	vs, ok := ss.Attach()
	if !ok {
		cancel()
		return nil, fmt.Errorf("attaching to session %s timed out", ss.Id)
	}
	log.WithFields(log.Fields{"session": ss.Id, "seed": ss.Sim.Seed}).Info("local feed started")
	return &LocalFeed{Session: ss, viewer: vs, cancel: cancel}, nil
}

func (f *LocalFeed) Messages() <-chan model.ServerMessage {
	return f.viewer.MessagesToSend
}

func (f *LocalFeed) Command(cmd int) error {
	if f.Session.Finished() {
		return fmt.Errorf("session %s is over", f.Session.Id)
	}
	select {
	case f.Session.Commands <- ViewerCommand{Viewer: f.viewer.Id, Command: cmd}:
		return nil
	case <-f.Session.done:
		return fmt.Errorf("session %s is over", f.Session.Id)
	}
}

func (f *LocalFeed) Close() {
	f.cancel()
	<-f.Session.done
}

// RemoteFeed watches a session served by a SimServer.
type RemoteFeed struct {
	conn     *websocket.Conn
	messages chan model.ServerMessage
	closed   chan struct{}
	once     sync.Once
	writeMu  sync.Mutex
}

func Dial(url string) (*RemoteFeed, error) {
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			return nil, fmt.Errorf("dialing %s: %w (http %d)", url, err, resp.StatusCode)
		}
		return nil, fmt.Errorf("dialing %s: %w", url, err)
	}
	f := &RemoteFeed{
		conn:     conn,
		messages: make(chan model.ServerMessage, 10),
		closed:   make(chan struct{}),
	}
	go f.loopRead()
	return f, nil
}

func (f *RemoteFeed) loopRead() {
	defer close(f.messages)
	for {
		_, r, err := f.conn.NextReader()
		if err != nil {
			log.Debugf("RemoteFeed read ended: %v", err)
			return
		}
		var mes model.ServerMessage
		if err := gob.NewDecoder(r).Decode(&mes); err != nil {
			log.Warnf("RemoteFeed cant decode %v", err)
			return
		}
		select {
		case f.messages <- mes:
		case <-f.closed:
			return
		}
	}
}

func (f *RemoteFeed) Messages() <-chan model.ServerMessage {
	return f.messages
}

func (f *RemoteFeed) Command(cmd int) error {
	f.writeMu.Lock()
	defer f.writeMu.Unlock()
	w, err := f.conn.NextWriter(websocket.BinaryMessage)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(w).Encode(model.ClientMessage{Command: cmd}); err != nil {
		return err
	}
	return w.Close()
}

func (f *RemoteFeed) Close() {
	f.once.Do(func() {
		close(f.closed)
		f.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
		f.conn.Close()
	})
}
