package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gdamore/tcell/v2"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/crowd/model"
	"github.com/zucenko/crowd/server"
)

const redraw = 33 * time.Millisecond

type viewer struct {
	screen tcell.Screen
	feed   server.Feed
	frame  model.Frame
	state  string
}

// handle reports false when the viewer should quit.
func (v *viewer) handle(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC {
			return false
		}
		if ev.Key() != tcell.KeyRune {
			return true
		}
		switch ev.Rune() {
		case 'q':
			return false
		case ' ', 'p':
			switch v.state {
			case "RUN":
				v.command(model.CmdPause, "PAUSE")
			case "PAUSE":
				v.command(model.CmdResume, "RUN")
			}
		case 's':
			if v.state == "PAUSE" {
				v.command(model.CmdStep, v.state)
			}
		case 'r':
			v.command(model.CmdReset, v.state)
		}
	case *tcell.EventResize:
		v.screen.Sync()
	}
	return true
}

func (v *viewer) command(cmd int, next string) {
	if err := v.feed.Command(cmd); err != nil {
		log.Warnf("command %d: %v", cmd, err)
		return
	}
	v.state = next
}

func (v *viewer) apply(mes model.ServerMessage) {
	for _, s := range mes.Setup {
		log.WithFields(log.Fields{"session": s.Session, "size": s.Size}).Info("setup received")
	}
	if n := len(mes.Frames); n > 0 {
		v.frame = mes.Frames[n-1]
	}
}

func (v *viewer) run() {
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := v.screen.PollEvent()
			if ev == nil {
				return
			}
			events <- ev
		}
	}()

	ticker := time.NewTicker(redraw)
	defer ticker.Stop()
	messages := v.feed.Messages()
	for {
		select {
		case ev := <-events:
			if !v.handle(ev) {
				return
			}
		case mes, ok := <-messages:
			if !ok {
				log.Warn("feed closed")
				messages = nil
				v.state = "OVER"
				continue
			}
			v.apply(mes)
		case <-ticker.C:
			draw(v.screen, v.frame, v.state)
		}
	}
}

func logTo(path string) (io.Closer, error) {
	if path == "" {
		log.SetOutput(io.Discard)
		return io.NopCloser(nil), nil
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, err
	}
	log.SetOutput(file)
	return file, nil
}

func main() {
	serverURL := flag.String("server", "", "watch a remote session, e.g. ws://localhost:8080/watch")
	configPath := flag.String("config", "", "yaml or toml config for a local simulation")
	layoutPath := flag.String("layout", "", "wall layout for a local simulation")
	logPath := flag.String("log", "", "log file, logging is discarded when empty")
	flag.Parse()

	closer, err := logTo(*logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	feed, err := server.OpenFeed(*serverURL, *configPath, *layoutPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "opening feed: %v\n", err)
		os.Exit(1)
	}
	defer feed.Close()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "screen: %v\n", err)
		os.Exit(1)
	}
	defer screen.Fini()

	v := &viewer{screen: screen, feed: feed, state: "RUN"}
	v.run()
}
