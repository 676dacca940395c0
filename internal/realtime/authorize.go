package realtime

import (
	"fmt"

	"noahs-ark/internal/platform/apperr"
	"noahs-ark/internal/ports/auth"
	"noahs-ark/internal/ports/realtime"
)

// Authorize: un principal sólo puede escuchar sus propios canales user.<id> y chat.<id>.
func Authorize(c auth.Claims, channel string) error {
	if c.UserID == "" {
		return apperr.ErrForbidden
	}
	switch channel {
	case realtime.UserChannel(c.UserID), realtime.ChatChannel(c.UserID):
		return nil
	default:
		return fmt.Errorf("%w: channel %q", apperr.ErrForbidden, channel)
	}
}

// OwnChannels son los canales que se suscriben cuando el cliente no pide ninguno.
func OwnChannels(c auth.Claims) []string {
	return []string{realtime.UserChannel(c.UserID), realtime.ChatChannel(c.UserID)}
}
