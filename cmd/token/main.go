package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dev0b1/multi-ai-user-debate/internal/token"
	"github.com/dev0b1/multi-ai-user-debate/pkg/variables"
)

// Operational tool: mints a room token outside of the request path, for
// debugging a livekit deployment or joining a room by hand.
func main() {
	args := os.Args[1:]
	if len(args) < 5 {
		fmt.Fprintln(os.Stderr, "Usage: token <apiKey> <apiSecret> <room> <identity> <ttlSeconds>")
		os.Exit(1)
	}

	apiKey, apiSecret, room, identity := args[0], args[1], args[2], args[3]

	ttlSeconds, err := variables.ParseInt(args[4])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid ttlSeconds %q: %s\n", args[4], err)
		os.Exit(1)
	}

	service := token.NewAccessTokenServiceWithKeys(apiKey, apiSecret)
	jwt, err := service.CreateRoomToken(room, identity, time.Duration(ttlSeconds)*time.Second)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Println(jwt)
}
