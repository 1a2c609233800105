package user

import (
	"sort"
	"strings"
	"sync"

	"github.com/annel0/cauldron-witchery/internal/i18n"
	"github.com/annel0/cauldron-witchery/internal/world/entity"
	"github.com/google/uuid"
)

// Messenger доставляет игроку уже переведённое сообщение
type Messenger interface {
	Send(p *entity.Player, message string)
}

// Service выдает обертки User для игроков и кеширует их по UUID
type Service struct {
	translator *i18n.Translator
	messenger  Messenger
	users      sync.Map // uuid.UUID -> *User
	online     sync.Map // uuid.UUID -> *User
}

// NewService создает сервис пользователей
func NewService(translator *i18n.Translator, messenger Messenger) *Service {
	return &Service{translator: translator, messenger: messenger}
}

// User возвращает пользователя для игрока или nil, если игрок не задан
func (s *Service) User(p *entity.Player) *User {
	if p == nil {
		return nil
	}
	if cached, ok := s.users.Load(p.UUID); ok {
		u := cached.(*User)
		if u.player == p {
			return u
		}
	}
	u := &User{player: p, svc: s}
	s.users.Store(p.UUID, u)
	return u
}

// Remove забывает пользователя (выход игрока)
func (s *Service) Remove(id uuid.UUID) {
	s.users.Delete(id)
	s.online.Delete(id)
}

// Join регистрирует игрока как находящегося на сервере
func (s *Service) Join(p *entity.Player) *User {
	u := s.User(p)
	if u != nil {
		s.online.Store(p.UUID, u)
	}
	return u
}

// ByName ищет игрока на сервере по имени без учёта регистра
func (s *Service) ByName(name string) (*User, bool) {
	var found *User
	s.online.Range(func(_, v interface{}) bool {
		u := v.(*User)
		if strings.EqualFold(u.Name(), name) {
			found = u
			return false
		}
		return true
	})
	return found, found != nil
}

// Online возвращает игроков на сервере, отсортированных по имени
func (s *Service) Online() []*User {
	var out []*User
	s.online.Range(func(_, v interface{}) bool {
		out = append(out, v.(*User))
		return true
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// User - обертка над игроком с переводами и сообщениями
type User struct {
	player *entity.Player
	svc    *Service
}

// Player возвращает игрока
func (u *User) Player() *entity.Player { return u.player }

// UUID возвращает идентификатор игрока
func (u *User) UUID() uuid.UUID { return u.player.UUID }

// Name возвращает имя игрока
func (u *User) Name() string { return u.player.Name }

// World возвращает имя мира, в котором находится игрок
func (u *User) World() string { return u.player.World }

// Locale возвращает локаль игрока
func (u *User) Locale() string { return u.player.Locale }

// IsOp проверяет статус оператора
func (u *User) IsOp() bool { return u.player.Op }

// HasPermission проверяет право игрока
func (u *User) HasPermission(perm string) bool { return u.player.HasPermission(perm) }

// Translation возвращает перевод ключа на язык игрока
func (u *User) Translation(key string, vars ...string) string {
	if u.svc == nil || u.svc.translator == nil {
		return key
	}
	return u.svc.translator.Translate(u.player.Locale, key, vars...)
}

// SendMessage переводит ключ и отправляет сообщение игроку.
// Пустой перевод не отправляется.
func (u *User) SendMessage(key string, vars ...string) {
	u.SendRawMessage(u.Translation(key, vars...))
}

// SendRawMessage отправляет готовый текст
func (u *User) SendRawMessage(message string) {
	if strings.TrimSpace(message) == "" || u.svc == nil || u.svc.messenger == nil {
		return
	}
	u.svc.messenger.Send(u.player, message)
}
