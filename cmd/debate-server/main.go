package main

import (
	"go.uber.org/fx"

	"github.com/dev0b1/multi-ai-user-debate/internal/agent"
	"github.com/dev0b1/multi-ai-user-debate/internal/join"
	"github.com/dev0b1/multi-ai-user-debate/internal/token"
	globalprotocol "github.com/dev0b1/multi-ai-user-debate/pkg/protocol"
	"github.com/dev0b1/multi-ai-user-debate/pkg/service"
)

func main() {
	fx.New(
		fx.Provide(
			token.NewAccessTokenService,
			agent.NewRegistry,
			agent.NewLauncher,

			globalprotocol.AsHttpController(join.NewJoinController),
		),

		service.LoggerModule,
		service.HttpModule,
	).Run()
}
