package join

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/fx"

	"github.com/dev0b1/multi-ai-user-debate/internal/agent"
	"github.com/dev0b1/multi-ai-user-debate/internal/token"
	globalprotocol "github.com/dev0b1/multi-ai-user-debate/pkg/protocol"
	"github.com/dev0b1/multi-ai-user-debate/pkg/variables"
)

const (
	defaultTurnDuration  = 3
	defaultNumberOfTurns = 4
)

type errResponse struct {
	Error string `json:"error"`
}

type joinRequest struct {
	Room          string `json:"room"`
	User          string `json:"user"`
	Topic         string `json:"topic"`
	Persona       string `json:"persona"`
	Stance        string `json:"stance"`
	TurnDuration  *int   `json:"turnDuration"`
	NumberOfTurns *int   `json:"numberOfTurns"`
}

type joinResponseAgent struct {
	Persona       string `json:"persona"`
	Topic         string `json:"topic"`
	Stance        string `json:"stance"`
	TurnDuration  int    `json:"turnDuration"`
	NumberOfTurns int    `json:"numberOfTurns"`
}

type joinResponse struct {
	URL      string            `json:"url"`
	Token    string            `json:"token"`
	Room     string            `json:"room"`
	Identity string            `json:"identity"`
	Agent    joinResponseAgent `json:"agent"`
}

type healthResponse struct {
	Status       string `json:"status"`
	Timestamp    string `json:"timestamp"`
	ActiveAgents int    `json:"activeAgents"`
}

type agentListResponse struct {
	Agents []agent.Entry `json:"agents"`
}

type agentDeleteResponse struct {
	Message string `json:"message"`
}

type joinController struct {
	tokenService *token.AccessTokenService
	registry     *agent.Registry
	launcher     *agent.Launcher
	logger       *slog.Logger
	livekitURL   string
}

// anonymousIdentity synthesizes a participant identity when the client did
// not pick a user name.
func anonymousIdentity() string {
	id := uuid.New()
	return fmt.Sprintf("human-%s", hex.EncodeToString(id[:])[:6])
}

func (ctrl *joinController) JoinControllerJoin(c echo.Context) error {
	req := new(joinRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, errResponse{Error: "bad request"})
	}

	if req.Room == "" || req.Topic == "" || req.Persona == "" || req.Stance == "" {
		return c.JSON(http.StatusBadRequest, errResponse{
			Error: "Missing required fields: room, topic, persona, and stance are required",
		})
	}

	turnDuration := defaultTurnDuration
	if req.TurnDuration != nil {
		turnDuration = *req.TurnDuration
	}
	numberOfTurns := defaultNumberOfTurns
	if req.NumberOfTurns != nil {
		numberOfTurns = *req.NumberOfTurns
	}

	identity := req.User
	if identity == "" {
		identity = anonymousIdentity()
	}

	roomToken, err := ctrl.tokenService.CreateRoomToken(req.Room, identity, token.DefaultTTL)
	if err != nil {
		ctrl.logger.Error("unable issue room token",
			slog.String("room", req.Room),
			slog.String("identity", identity),
			slog.String("err", err.Error()),
		)
		return c.JSON(http.StatusInternalServerError, errResponse{Error: "Failed to join room"})
	}

	// Fire and forget. The client connects to livekit with its token whether
	// or not the agent came up; a failed launch frees the room for a retry.
	ctrl.launcher.Launch(&agent.DebateConfig{
		Room:          req.Room,
		Token:         roomToken,
		LivekitURL:    ctrl.livekitURL,
		Persona:       req.Persona,
		Topic:         req.Topic,
		Stance:        req.Stance,
		TurnDuration:  turnDuration,
		NumberOfTurns: numberOfTurns,
	})

	return c.JSON(http.StatusOK, joinResponse{
		URL:      ctrl.livekitURL,
		Token:    roomToken,
		Room:     req.Room,
		Identity: identity,
		Agent: joinResponseAgent{
			Persona:       req.Persona,
			Topic:         req.Topic,
			Stance:        req.Stance,
			TurnDuration:  turnDuration,
			NumberOfTurns: numberOfTurns,
		},
	})
}

func (ctrl *joinController) JoinControllerHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, healthResponse{
		Status:       "ok",
		Timestamp:    time.Now().UTC().Format(time.RFC3339),
		ActiveAgents: ctrl.registry.Len(),
	})
}

func (ctrl *joinController) JoinControllerAgentList(c echo.Context) error {
	return c.JSON(http.StatusOK, agentListResponse{
		Agents: ctrl.registry.List(),
	})
}

func (ctrl *joinController) JoinControllerAgentDelete(c echo.Context) error {
	room := c.Param("room")
	if !ctrl.launcher.Stop(room) {
		return c.JSON(http.StatusNotFound, errResponse{Error: "Room not found"})
	}
	return c.JSON(http.StatusOK, agentDeleteResponse{
		Message: fmt.Sprintf("Room %s deleted", room),
	})
}

type joinWrapper interface {
	JoinControllerJoin(echo.Context) error
	JoinControllerHealth(echo.Context) error
	JoinControllerAgentList(echo.Context) error
	JoinControllerAgentDelete(echo.Context) error
}

func (ctrl *joinController) Resolve(router *echo.Echo) error {
	router.POST("/join", ctrl.JoinControllerJoin)
	router.GET("/health", ctrl.JoinControllerHealth)
	router.GET("/agents", ctrl.JoinControllerAgentList)
	router.DELETE("/agents/:room", ctrl.JoinControllerAgentDelete)
	return nil
}

var (
	_ globalprotocol.HttpResolvable = (*joinController)(nil)
	_ joinWrapper                   = (*joinController)(nil)
)

type newJoinController_Params struct {
	fx.In

	TokenService *token.AccessTokenService
	Registry     *agent.Registry
	Launcher     *agent.Launcher
	Logger       *slog.Logger
}

func NewJoinController(params newJoinController_Params) *joinController {
	return &joinController{
		tokenService: params.TokenService,
		registry:     params.Registry,
		launcher:     params.Launcher,
		logger:       params.Logger,
		livekitURL:   variables.Env(variables.LIVEKIT_URL_NAME, variables.LIVEKIT_URL_DEFAULT),
	}
}
