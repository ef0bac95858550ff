package server

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	log "github.com/sirupsen/logrus"
	"github.com/zucenko/crowd/model"
	"gopkg.in/yaml.v3"
)

// LoadConfig reads a YAML or TOML file over the defaults. An empty path
// returns the defaults.
func LoadConfig(path string) (cfg model.Config, err error) {
	cfg = model.DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	case ".toml":
		err = toml.Unmarshal(data, &cfg)
	default:
		return cfg, fmt.Errorf("config %s: unknown format %q", path, ext)
	}
	if err != nil {
		return cfg, fmt.Errorf("decoding config %s: %w", path, err)
	}
	log.WithFields(log.Fields{"path": path, "size": cfg.Size, "agents": cfg.Agents}).Info("config loaded")
	return cfg, cfg.Validate()
}

// SetLogLevel applies a logrus level name, keeping the current level when the
// name is unknown.
func SetLogLevel(name string) {
	level, err := log.ParseLevel(name)
	if err != nil {
		log.Warnf("unknown log level %q, keeping %s", name, log.GetLevel())
		return
	}
	log.SetLevel(level)
}

func LoadLayout(path string) (*model.Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return ReadLayout(file)
}

// ReadLayout parses a square map of '#' walls and '.' floor, one row per line.
func ReadLayout(reader io.Reader) (*model.Grid, error) {
	scanner := bufio.NewScanner(reader)
	scanner.Split(bufio.ScanLines)
	rows := make([]string, 0)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), " \t\r")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("layout is empty")
	}

	grid := model.NewEmptyGrid(len(rows))
	for y, row := range rows {
		if len(row) != len(rows) {
			return nil, fmt.Errorf("layout row %d has %d cells, want %d", y, len(row), len(rows))
		}
		for x, char := range row {
			switch char {
			case '#':
				grid.Set(model.Coord{X: x, Y: y}, model.WallTile)
			case '.':
			default:
				return nil, fmt.Errorf("layout row %d col %d: unexpected %q", y, x, char)
			}
		}
	}
	return grid, nil
}
