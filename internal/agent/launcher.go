package agent

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"sync"
	"time"

	"go.uber.org/fx"

	"github.com/dev0b1/multi-ai-user-debate/pkg/variables"
)

// roomMetadata is the blob the debate agent reads from ROOM_METADATA.
type roomMetadata struct {
	Topic           string `json:"topic"`
	Persona         string `json:"persona"`
	Stance          string `json:"stance"`
	Room            string `json:"room"`
	TurnDurationMin int    `json:"turn_duration_min"`
	TotalRounds     int    `json:"total_rounds"`
	CreatedAt       string `json:"created_at"`
}

// Launcher spawns one external debate agent process per room and keeps the
// registry consistent with the actual process set: the registry entry is
// removed exactly when the process exits or fails to start.
type Launcher struct {
	registry *Registry
	logger   *slog.Logger
	python   string
	script   string

	handlesMu sync.Mutex
	handles   map[string]*exec.Cmd
}

// Launch starts a debate agent for the config's room. When an agent is
// already tracked for that room the call is a no-op; the running agent is
// left untouched and the caller is expected to hand out a fresh token for
// the existing room. Launch never reports failure to the caller; a start
// failure is logged and the room vanishes from the registry, so a fresh
// join can retry it.
func (l *Launcher) Launch(config *DebateConfig) {
	room := config.Room

	if !l.registry.TryRegister(room, config) {
		l.logger.Info("agent already running", slog.String("room", room))
		return
	}

	displayName := PersonaDisplayName(config.Persona)

	l.logger.Info("launching debate agent",
		slog.String("room", room),
		slog.String("persona", displayName),
		slog.String("topic", config.Topic),
		slog.String("stance", config.Stance),
		slog.Int("turnDuration", config.TurnDuration),
		slog.Int("numberOfTurns", config.NumberOfTurns),
	)

	metadata, err := json.Marshal(&roomMetadata{
		Topic:           config.Topic,
		Persona:         displayName,
		Stance:          config.Stance,
		Room:            room,
		TurnDurationMin: config.TurnDuration,
		TotalRounds:     config.NumberOfTurns,
		CreatedAt:       time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		l.logger.Error("unable marshal room metadata", slog.String("room", room), slog.String("err", err.Error()))
		l.registry.Unregister(room)
		return
	}

	cmd := exec.Command(l.python, l.script)
	cmd.Env = append(os.Environ(),
		fmt.Sprintf("LIVEKIT_URL=%s", config.LivekitURL),
		fmt.Sprintf("LIVEKIT_TOKEN=%s", config.Token),
		fmt.Sprintf("LIVEKIT_ROOM_NAME=%s", room),
		fmt.Sprintf("ROOM_METADATA=%s", metadata),
	)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		l.logger.Error("unable start debate agent", slog.String("room", room), slog.String("err", err.Error()))
		l.registry.Unregister(room)
		return
	}

	l.handlesMu.Lock()
	l.handles[room] = cmd
	l.handlesMu.Unlock()

	l.logger.Info("debate agent started", slog.String("room", room), slog.Int("pid", cmd.Process.Pid))

	go func() {
		err := cmd.Wait()
		if err != nil {
			l.logger.Error("debate agent exited", slog.String("room", room), slog.String("err", err.Error()))
		} else {
			l.logger.Info("debate agent exited", slog.String("room", room), slog.Int("code", cmd.ProcessState.ExitCode()))
		}

		l.handlesMu.Lock()
		delete(l.handles, room)
		l.handlesMu.Unlock()

		l.registry.Unregister(room)
	}()
}

// Stop kills the agent tracked for the room and reports whether the room was
// known. Registry cleanup happens through the exit path, the same way a
// crash does.
func (l *Launcher) Stop(room string) bool {
	l.handlesMu.Lock()
	cmd, exist := l.handles[room]
	l.handlesMu.Unlock()

	if exist {
		if err := cmd.Process.Kill(); err != nil {
			l.logger.Error("unable kill debate agent", slog.String("room", room), slog.String("err", err.Error()))
		}
		return true
	}

	// A registry entry without a live handle should not happen, but never
	// leave one stranded.
	if l.registry.Has(room) {
		l.registry.Unregister(room)
		return true
	}
	return false
}

type NewLauncher_Params struct {
	fx.In

	Registry *Registry
	Logger   *slog.Logger
}

func NewLauncher(params NewLauncher_Params) *Launcher {
	return &Launcher{
		registry: params.Registry,
		logger:   params.Logger,
		python:   variables.Env(variables.AGENT_PYTHON_NAME, variables.AGENT_PYTHON_DEFAULT),
		script:   variables.Env(variables.AGENT_SCRIPT_NAME, variables.AGENT_SCRIPT_DEFAULT),
		handles:  make(map[string]*exec.Cmd),
	}
}
