package variables

import (
	"log"
	"os"
	"strconv"
)

const (
	HTTP_PORT_DEFAULT = "8000"
	HTTP_PORT_NAME    = "HTTP_PORT"

	LIVEKIT_URL_DEFAULT = "wss://your-livekit-host:443"
	LIVEKIT_URL_NAME    = "LIVEKIT_URL"

	LIVEKIT_API_KEY_DEFAULT = "devkey"
	LIVEKIT_API_KEY_NAME    = "LIVEKIT_API_KEY"

	LIVEKIT_API_SECRET_DEFAULT = "secret"
	LIVEKIT_API_SECRET_NAME    = "LIVEKIT_API_SECRET"

	AGENT_PYTHON_DEFAULT = "python"
	AGENT_PYTHON_NAME    = "AGENT_PYTHON"

	AGENT_SCRIPT_DEFAULT = "debate_agent.py"
	AGENT_SCRIPT_NAME    = "AGENT_SCRIPT"
)

func Env(variableName, defaultValue string) string {
	if variable := os.Getenv(variableName); variable != "" {
		log.Printf("[%s]: %s", variableName, variable)
		return variable
	}
	log.Printf("[%s_DEFAULT]: %s", variableName, defaultValue)
	return defaultValue
}

func ParseInt(variable string) (int, error) {
	return strconv.Atoi(variable)
}
