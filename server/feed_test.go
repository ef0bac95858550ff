package server

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zucenko/crowd/model"
)

func nextMessage(t *testing.T, feed Feed) model.ServerMessage {
	t.Helper()
	select {
	case mes, ok := <-feed.Messages():
		require.True(t, ok, "feed closed")
		return mes
	case <-time.After(2 * time.Second):
		require.FailNow(t, "no message from feed")
	}
	return model.ServerMessage{}
}

func TestLocalFeed(t *testing.T) {
	feed, err := NewLocalFeed(testConfig(), nil)
	require.NoError(t, err)

	setup := nextMessage(t, feed)
	require.Len(t, setup.Setup, 1)
	assert.Equal(t, feed.Session.Id, setup.Setup[0].Session)
	assert.Equal(t, 8, setup.Setup[0].Agents)

	update := nextMessage(t, feed)
	require.Len(t, update.Frames, 1)
	assert.Greater(t, update.Frames[0].Tick, 0)

	require.NoError(t, feed.Command(model.CmdPause))
	require.Eventually(t, func() bool { return snapshotOf(t, feed.Session).State == "SS_PAUSE" }, 2*time.Second, 5*time.Millisecond)

	feed.Close()
	for range feed.Messages() {
	}
	assert.True(t, feed.Session.Finished())
	assert.Error(t, feed.Command(model.CmdResume))
}

func TestLocalFeedInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Agents = 1000
	_, err := NewLocalFeed(cfg, nil)
	assert.True(t, errors.Is(err, model.ErrInvalidConfig))
}

func TestRemoteFeed(t *testing.T) {
	srv, stop := newTestServer(t, testConfig())
	defer stop()

	feed, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http") + "/watch")
	require.NoError(t, err)
	defer feed.Close()

	setup := nextMessage(t, feed)
	require.Len(t, setup.Setup, 1)
	assert.Equal(t, 20, setup.Setup[0].Size)

	require.NoError(t, feed.Command(model.CmdReset))
	require.Eventually(t, func() bool {
		for {
			select {
			case mes, ok := <-feed.Messages():
				if !ok {
					return false
				}
				if len(mes.Setup) == 1 && mes.Frames[0].Tick == 0 {
					return true
				}
			default:
				return false
			}
		}
	}, 2*time.Second, time.Millisecond)
}

func TestDialRejected(t *testing.T) {
	cfg := testConfig()
	cfg.Agents = 1000
	srv, stop := newTestServer(t, cfg)
	defer stop()

	_, err := Dial("ws" + strings.TrimPrefix(srv.URL, "http") + "/watch")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
}

func TestOpenFeed(t *testing.T) {
	path := writeFile(t, "small.yaml", "size: 12\nwall_seeds: 4\nagents: 3\ntick_millis: 5\nseed: 9\n")
	feed, err := OpenFeed("", path, "")
	require.NoError(t, err)
	defer feed.Close()
	setup := nextMessage(t, feed)
	require.Len(t, setup.Setup, 1)
	assert.Equal(t, 12, setup.Setup[0].Size)
	assert.Equal(t, 3, setup.Setup[0].Agents)

	_, err = OpenFeed("", path, filepath.Join(t.TempDir(), "missing.txt"))
	assert.Error(t, err)
}
