package item

import "strings"

// Стандартные материалы предметов, с которыми работает аддон
const (
	MaterialAir      = "AIR"
	MaterialStick    = "STICK"
	MaterialBlazeRod = "BLAZE_ROD"
)

// Stack представляет стопку предметов в инвентаре или на земле
type Stack struct {
	Material    string            // Имя материала в верхнем регистре (STICK, BLAZE_ROD...)
	Amount      int               // Количество предметов в стопке
	DisplayName string            // Отображаемое имя (пустое - имя материала)
	Lore        []string          // Описание предмета
	Tags        map[string]string // Произвольные теги (аналог persistent data)
}

// New создает стопку предметов указанного материала
func New(material string, amount int) *Stack {
	return &Stack{
		Material: strings.ToUpper(material),
		Amount:   amount,
		Tags:     make(map[string]string),
	}
}

// IsAir проверяет, является ли стопка пустой (воздух или нулевое количество)
func (s *Stack) IsAir() bool {
	return s == nil || s.Material == "" || s.Material == MaterialAir || s.Amount <= 0
}

// Tag возвращает значение тега
func (s *Stack) Tag(key string) (string, bool) {
	if s == nil || s.Tags == nil {
		return "", false
	}
	v, ok := s.Tags[key]
	return v, ok
}

// WithTag устанавливает тег и возвращает ту же стопку
func (s *Stack) WithTag(key, value string) *Stack {
	if s.Tags == nil {
		s.Tags = make(map[string]string)
	}
	s.Tags[key] = value
	return s
}

// Similar сравнивает стопки без учета количества
func (s *Stack) Similar(other *Stack) bool {
	if s == nil || other == nil {
		return s == other
	}
	if s.Material != other.Material || s.DisplayName != other.DisplayName {
		return false
	}
	if len(s.Tags) != len(other.Tags) {
		return false
	}
	for k, v := range s.Tags {
		if other.Tags[k] != v {
			return false
		}
	}
	return true
}

// Clone создает глубокую копию стопки
func (s *Stack) Clone() *Stack {
	if s == nil {
		return nil
	}
	c := *s
	if s.Lore != nil {
		c.Lore = append([]string(nil), s.Lore...)
	}
	c.Tags = make(map[string]string, len(s.Tags))
	for k, v := range s.Tags {
		c.Tags[k] = v
	}
	return &c
}
