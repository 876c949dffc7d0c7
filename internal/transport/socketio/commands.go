package socketio

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/edumarques81/turntable/internal/domain/catalog"
	"github.com/edumarques81/turntable/internal/domain/player"
)

// lookupBudget bounds a whole addUrl command, playlist paging included.
const lookupBudget = 2 * time.Minute

var errBadPayload = errors.New("invalid payload")

type command func(args ...any) error

// slowCommands wait on remote lookups and run off the socket's event loop.
var slowCommands = map[string]bool{"addUrl": true, "addFiles": true}

// commands maps client events to player and catalog operations.
func (s *Server) commands() map[string]command {
	return map[string]command{
		"play":            func(...any) error { return s.player.Play() },
		"pause":           func(...any) error { return s.player.Pause() },
		"toggle":          func(...any) error { return s.player.TogglePlayPause() },
		"stop":            func(...any) error { return s.player.Stop() },
		"next":            func(...any) error { return s.player.Skip() },
		"prev":            func(...any) error { return s.player.GoBack() },
		"seekForward":     func(...any) error { return s.player.SeekForward() },
		"seekBackward":    func(...any) error { return s.player.SeekBackward() },
		"clearQueue":      func(...any) error { return s.player.Clear() },
		"seek":            s.seek,
		"seekRatio":       s.seekRatio,
		"volume":          s.setVolume,
		"speed":           s.setSpeed,
		"rate":            s.setRate,
		"addUrl":          s.addURL,
		"addFiles":        s.addFiles,
		"removeQueueItem": s.removeItem,
		"moveQueueItem":   s.moveItem,
	}
}

// seek takes a position in seconds.
func (s *Server) seek(args ...any) error {
	pos, ok := numberArg(args, "value")
	if !ok {
		return fmt.Errorf("seek: %w", errBadPayload)
	}
	return s.player.Seek(time.Duration(pos * float64(time.Second)))
}

func (s *Server) seekRatio(args ...any) error {
	ratio, ok := numberArg(args, "value")
	if !ok {
		return fmt.Errorf("seekRatio: %w", errBadPayload)
	}
	return s.player.SeekRatio(ratio)
}

// setVolume takes the ambient volume in percent. It is stored for future
// sessions and applied to the live one.
func (s *Server) setVolume(args ...any) error {
	vol, ok := numberArg(args, "value")
	if !ok {
		return fmt.Errorf("volume: %w", errBadPayload)
	}
	v := s.volume.Set(vol / 100)
	if err := s.player.SetVolume(v); err != nil {
		return err
	}
	s.debouncer.Trigger(changeState)
	return nil
}

func (s *Server) setSpeed(args ...any) error {
	rpm, ok := numberArg(args, "value")
	if !ok {
		return fmt.Errorf("speed: %w", errBadPayload)
	}
	if err := s.player.SetSpeed(rpm); err != nil {
		return err
	}
	s.debouncer.Trigger(changeState)
	return nil
}

func (s *Server) setRate(args ...any) error {
	rate, ok := numberArg(args, "value")
	if !ok {
		return fmt.Errorf("rate: %w", errBadPayload)
	}
	if err := s.player.SetPlaybackRate(rate); err != nil {
		return err
	}
	s.debouncer.Trigger(changeState)
	return nil
}

func (s *Server) addURL(args ...any) error {
	raw, ok := stringArg(args, "url")
	if !ok {
		return fmt.Errorf("addUrl: %w", errBadPayload)
	}
	ctx, cancel := context.WithTimeout(context.Background(), lookupBudget)
	defer cancel()
	n, err := s.catalog.AddURL(ctx, raw)
	if err != nil {
		return err
	}
	log.Info().Str("url", raw).Int("count", n).Msg("Added from link")
	return nil
}

func (s *Server) addFiles(args ...any) error {
	paths := stringsArg(args, "paths")
	if len(paths) == 0 {
		return fmt.Errorf("addFiles: %w", errBadPayload)
	}
	n, err := s.catalog.AddFiles(paths...)
	if err != nil {
		return err
	}
	log.Info().Int("count", n).Msg("Added local files")
	return nil
}

// removeItem takes {id} or a queue index in {value}.
func (s *Server) removeItem(args ...any) error {
	if len(args) > 0 {
		if m, ok := args[0].(map[string]interface{}); ok {
			if id, ok := m["id"].(string); ok && id != "" {
				return s.player.RemoveByID(id)
			}
		}
	}
	if pos, ok := numberArg(args, "value"); ok {
		return s.player.RemoveAt(int(pos))
	}
	return fmt.Errorf("removeQueueItem: %w", errBadPayload)
}

func (s *Server) moveItem(args ...any) error {
	if len(args) == 0 {
		return fmt.Errorf("moveQueueItem: %w", errBadPayload)
	}
	m, ok := args[0].(map[string]interface{})
	if !ok {
		return fmt.Errorf("moveQueueItem: %w", errBadPayload)
	}
	from, ok1 := m["from"].(float64)
	to, ok2 := m["to"].(float64)
	if !ok1 || !ok2 {
		return fmt.Errorf("moveQueueItem: %w", errBadPayload)
	}
	return s.player.Reorder(int(from), int(to))
}

// toastFor turns command errors the player does not already report into
// a notice for the requesting client.
func toastFor(err error) (player.Notice, bool) {
	n := player.Notice{Level: player.NoticeError}
	switch {
	case errors.Is(err, catalog.ErrInvalidURL):
		n.Title, n.Message = "Add", "That is not a video or playlist link."
	case errors.Is(err, catalog.ErrNotFound):
		n.Title, n.Message = "Add", "Nothing was found for that link."
	case errors.Is(err, catalog.ErrMetadataUnavailable):
		n.Title, n.Message = "Add", "Could not look up that link. Try again later."
	case errors.Is(err, catalog.ErrNotAudio):
		n.Title, n.Message = "Add", "Only audio files can be added."
	case errors.Is(err, errBadPayload):
		n.Title, n.Message = "Command", "Invalid request."
	default:
		return player.Notice{}, false
	}
	return n, true
}

// numberArg reads a number sent either bare or as {key: number}.
func numberArg(args []any, key string) (float64, bool) {
	if len(args) == 0 {
		return 0, false
	}
	switch v := args[0].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case map[string]interface{}:
		f, ok := v[key].(float64)
		return f, ok
	}
	return 0, false
}

// stringArg reads a string sent either bare or as {key: string}.
func stringArg(args []any, key string) (string, bool) {
	if len(args) == 0 {
		return "", false
	}
	switch v := args[0].(type) {
	case string:
		return v, v != ""
	case map[string]interface{}:
		s, ok := v[key].(string)
		return s, ok && s != ""
	}
	return "", false
}

// stringsArg reads a string list sent bare, as a single string or as
// {key: [...]}.
func stringsArg(args []any, key string) []string {
	if len(args) == 0 {
		return nil
	}
	var list []interface{}
	switch v := args[0].(type) {
	case string:
		return []string{v}
	case []interface{}:
		list = v
	case []string:
		return v
	case map[string]interface{}:
		list, _ = v[key].([]interface{})
	}
	out := make([]string, 0, len(list))
	for _, item := range list {
		if str, ok := item.(string); ok && str != "" {
			out = append(out, str)
		}
	}
	return out
}
