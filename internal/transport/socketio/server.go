// Package socketio provides the Socket.io server for client communication.
package socketio

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/zishang520/socket.io/servers/socket/v3"
	"github.com/zishang520/socket.io/v3/pkg/types"

	"github.com/edumarques81/turntable/internal/domain/player"
)

// Defaults for the broadcast path.
const (
	DefaultDebounceWindow = 50 * time.Millisecond
	DefaultDebounceMax    = 250 * time.Millisecond
	DefaultMaxExternal    = 4
)

// Player is the part of the player service the server drives.
type Player interface {
	Play() error
	Pause() error
	TogglePlayPause() error
	Stop() error
	Skip() error
	GoBack() error
	Seek(pos time.Duration) error
	SeekRatio(ratio float64) error
	SeekForward() error
	SeekBackward() error
	SetVolume(v float64) error
	SetSpeed(rpm float64) error
	SetPlaybackRate(rate float64) error
	RemoveByID(id string) error
	RemoveAt(pos int) error
	Reorder(from, to int) error
	Clear() error
	Snapshot() (player.Snapshot, error)
}

// Catalog turns client input into queue items.
type Catalog interface {
	AddURL(ctx context.Context, raw string) (int, error)
	AddFiles(paths ...string) (int, error)
}

// Server handles Socket.io connections and events. It is also the
// presenter and now-playing subscriber that feeds connected clients.
type Server struct {
	io      *socket.Server
	player  Player
	catalog Catalog
	volume  *Volume
	limiter *ConnectionLimiter

	debouncer *BroadcastDebouncer

	mu        sync.RWMutex
	clients   map[string]*socket.Socket
	lastState map[string]interface{}
	lastQueue player.QueueSnapshot
	queueSet  bool
	nowPlay   *player.Metadata
}

// Option configures a Server.
type Option func(*Server)

// WithMaxExternal limits concurrent non-local connections.
func WithMaxExternal(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.limiter = NewConnectionLimiter(n)
		}
	}
}

// WithDebounce sets the broadcast debounce window.
func WithDebounce(window time.Duration) Option {
	return func(s *Server) {
		if window > 0 {
			s.debouncer = NewBroadcastDebouncer(window, DefaultDebounceMax, s.BroadcastState, s.BroadcastQueue)
		}
	}
}

// NewServer creates a new Socket.io server.
func NewServer(p Player, c Catalog, volume *Volume, opts ...Option) (*Server, error) {
	sopts := socket.DefaultServerOptions()
	sopts.SetPingTimeout(20 * time.Second)
	sopts.SetPingInterval(25 * time.Second)
	sopts.SetCors(&types.Cors{
		Origin:      "*",
		Credentials: true,
	})

	if volume == nil {
		volume = NewVolume(1)
	}
	s := &Server{
		io:      socket.NewServer(nil, sopts),
		player:  p,
		catalog: c,
		volume:  volume,
		limiter: NewConnectionLimiter(DefaultMaxExternal),
		clients: make(map[string]*socket.Socket),
	}
	s.debouncer = NewBroadcastDebouncer(DefaultDebounceWindow, DefaultDebounceMax, s.BroadcastState, s.BroadcastQueue)
	for _, opt := range opts {
		opt(s)
	}

	s.setupHandlers()

	return s, nil
}

// setupHandlers registers all Socket.io event handlers.
func (s *Server) setupHandlers() {
	s.io.On("connection", func(clients ...any) {
		client := clients[0].(*socket.Socket)
		clientID := string(client.Id())
		remoteIP := client.Handshake().Address

		log.Info().Str("id", clientID).Str("ip", remoteIP).Msg("Client connected")

		s.mu.Lock()
		s.clients[clientID] = client
		s.mu.Unlock()

		if _, evicted := s.limiter.TryAdd(clientID, remoteIP); evicted != "" {
			s.evict(evicted)
		}

		// Send initial state after small delay
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.pushState(client)
			s.pushQueue(client)
			s.pushNowPlaying(client)
		}()

		client.On("disconnect", func(args ...any) {
			reason := ""
			if len(args) > 0 {
				if r, ok := args[0].(string); ok {
					reason = r
				}
			}
			log.Info().Str("id", clientID).Str("reason", reason).Msg("Client disconnected")

			s.limiter.Remove(clientID)
			s.mu.Lock()
			delete(s.clients, clientID)
			s.mu.Unlock()
		})

		client.On("getState", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getState")
			s.pushState(client)
		})

		client.On("getQueue", func(args ...any) {
			log.Debug().Str("id", clientID).Msg("getQueue")
			s.pushQueue(client)
		})

		for name, cmd := range s.commands() {
			name, cmd := name, cmd
			client.On(name, func(args ...any) {
				log.Debug().Str("id", clientID).Interface("data", args).Msg(name)
				run := func() {
					if err := cmd(args...); err != nil {
						log.Error().Err(err).Str("command", name).Msg("Command failed")
						if n, ok := toastFor(err); ok {
							client.Emit("pushToastMessage", n)
						}
					}
				}
				if slowCommands[name] {
					go run()
					return
				}
				run()
			})
		}
	})
}

func (s *Server) evict(clientID string) {
	s.mu.Lock()
	client, ok := s.clients[clientID]
	delete(s.clients, clientID)
	s.mu.Unlock()
	if !ok {
		return
	}
	log.Info().Str("id", clientID).Msg("Evicting oldest external client")
	client.Disconnect(true)
}

// pushState sends current state to a client.
func (s *Server) pushState(client *socket.Socket) {
	snap, err := s.player.Snapshot()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get state")
		return
	}
	client.Emit("pushState", snap.ToJSON())
}

// pushQueue sends current queue to a client.
func (s *Server) pushQueue(client *socket.Socket) {
	client.Emit("pushQueue", s.queuePayload())
}

func (s *Server) pushNowPlaying(client *socket.Socket) {
	s.mu.RLock()
	m := s.nowPlay
	s.mu.RUnlock()
	if m != nil {
		client.Emit("pushNowPlaying", m)
	}
}

// queuePayload returns the last queue the player published, or asks the
// player when nothing has been published yet.
func (s *Server) queuePayload() player.QueueSnapshot {
	s.mu.RLock()
	q, ok := s.lastQueue, s.queueSet
	s.mu.RUnlock()
	if ok {
		return q
	}

	snap, err := s.player.Snapshot()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get queue")
		return player.QueueSnapshot{Items: []player.ItemInfo{}}
	}
	q = player.QueueSnapshot{Current: snap.Current, Items: snap.Queue}
	if q.Items == nil {
		q.Items = []player.ItemInfo{}
	}
	return q
}

// BroadcastState sends state to all connected clients. Broadcasts that
// would only move the seek position are skipped.
func (s *Server) BroadcastState() {
	snap, err := s.player.Snapshot()
	if err != nil {
		log.Error().Err(err).Msg("Failed to get state for broadcast")
		return
	}
	state := snap.ToJSON()
	if s.isStateSame(state) {
		return
	}
	s.saveLastState(state)

	s.io.Emit("pushState", state)

	if log.Debug().Enabled() {
		data, _ := json.Marshal(state)
		s.mu.RLock()
		clientCount := len(s.clients)
		s.mu.RUnlock()
		log.Debug().RawJSON("state", data).Int("clients", clientCount).Msg("Broadcast state")
	}
}

// BroadcastQueue sends queue to all connected clients.
func (s *Server) BroadcastQueue() {
	s.io.Emit("pushQueue", s.queuePayload())
}

// stateCompareKeys are the pushState fields that make a broadcast worth
// sending. Clients interpolate seek themselves.
var stateCompareKeys = []string{
	"status", "state", "id", "title", "artist", "uri", "albumart",
	"duration", "volume", "rate", "service",
}

func (s *Server) saveLastState(state map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastState = state
}

func (s *Server) isStateSame(state map[string]interface{}) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.lastState == nil {
		return false
	}
	for _, key := range stateCompareKeys {
		if s.lastState[key] != state[key] {
			return false
		}
	}
	return true
}

// ServeHTTP implements http.Handler for the Socket.io server.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.io.ServeHandler(nil).ServeHTTP(w, r)
}

// Close closes the Socket.io server.
func (s *Server) Close() error {
	s.debouncer.Stop()
	s.io.Close(nil)
	return nil
}
