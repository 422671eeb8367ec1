package session

import "sync"

// Flow — вид визарда, к которому относится сессия.
type Flow string

const (
	FlowTask        Flow = "task"
	FlowBug         Flow = "bug"
	FlowApplication Flow = "application"
	FlowAdmin       Flow = "admin"
)

type Phase string

const (
	PhaseCollecting       Phase = "collecting"
	PhaseAwaitingMedia    Phase = "awaiting_media"
	PhasePreview          Phase = "preview"
	PhaseAwaitingUsername Phase = "awaiting_admin_username"
)

// Session — незавершенный проход визарда одного пользователя. Живет только
// в памяти процесса: рестарт теряет все сессии, и это ожидаемое поведение.
type Session struct {
	Phase        Phase
	Question     int
	Position     string
	Answers      []string
	MediaFileID  string
	MediaIsVideo bool
}

type key struct {
	userID int64
	flow   Flow
}

type Registry struct {
	mu       sync.RWMutex
	sessions map[key]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[key]*Session),
	}
}

// Get возвращает nil, если сессии нет — вызывающий трактует это как
// "начать заново", а не как ошибку.
func (r *Registry) Get(userID int64, flow Flow) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.sessions[key{userID, flow}]
}

// Set перезаписывает существующую сессию того же вида без предупреждения:
// повторный старт — это последний старт.
func (r *Registry) Set(userID int64, flow Flow, s *Session) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[key{userID, flow}] = s
}

func (r *Registry) Clear(userID int64, flow Flow) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, key{userID, flow})
}

// Active возвращает первый активный вид визарда пользователя в порядке
// task, bug, application, admin — для команды отмены.
func (r *Registry) Active(userID int64) (Flow, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, flow := range []Flow{FlowTask, FlowBug, FlowApplication, FlowAdmin} {
		if _, ok := r.sessions[key{userID, flow}]; ok {
			return flow, true
		}
	}

	return "", false
}
