package token

import (
	"fmt"
	"time"

	"github.com/livekit/protocol/auth"

	"github.com/dev0b1/multi-ai-user-debate/pkg/variables"
)

// Matches the two hour ttl the browser client was built around.
const DefaultTTL = 2 * time.Hour

type AccessTokenService struct {
	apiKey    string
	apiSecret string
}

// CreateRoomToken mints a signed access token granting the identity join,
// publish, subscribe, publish-data and metadata-update rights in the room.
// The token is opaque to this service; only the livekit host verifies it.
func (s *AccessTokenService) CreateRoomToken(room, identity string, ttl time.Duration) (string, error) {
	if s.apiKey == "" || s.apiSecret == "" {
		return "", ErrEmptyAPICredentials
	}
	if room == "" {
		return "", ErrEmptyRoom
	}
	if identity == "" {
		return "", ErrEmptyIdentity
	}
	if ttl <= 0 {
		return "", ErrInvalidTTL
	}

	canPublish := true
	canSubscribe := true
	canPublishData := true
	canUpdateOwnMetadata := true

	at := auth.NewAccessToken(s.apiKey, s.apiSecret)
	at.AddGrant(&auth.VideoGrant{
		RoomJoin:             true,
		Room:                 room,
		CanPublish:           &canPublish,
		CanSubscribe:         &canSubscribe,
		CanPublishData:       &canPublishData,
		CanUpdateOwnMetadata: &canUpdateOwnMetadata,
	}).
		SetIdentity(identity).
		SetValidFor(ttl)

	jwt, err := at.ToJWT()
	if err != nil {
		return "", fmt.Errorf("unable sign access token for room %s: %w", room, err)
	}
	return jwt, nil
}

func NewAccessTokenService() *AccessTokenService {
	return &AccessTokenService{
		apiKey:    variables.Env(variables.LIVEKIT_API_KEY_NAME, variables.LIVEKIT_API_KEY_DEFAULT),
		apiSecret: variables.Env(variables.LIVEKIT_API_SECRET_NAME, variables.LIVEKIT_API_SECRET_DEFAULT),
	}
}

// NewAccessTokenServiceWithKeys is used by the token cli where the key pair
// comes from argv rather than the environment.
func NewAccessTokenServiceWithKeys(apiKey, apiSecret string) *AccessTokenService {
	return &AccessTokenService{
		apiKey:    apiKey,
		apiSecret: apiSecret,
	}
}
