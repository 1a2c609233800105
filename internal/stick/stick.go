package stick

import (
	"fmt"
	"strings"

	"github.com/annel0/cauldron-witchery/internal/config"
	"github.com/annel0/cauldron-witchery/internal/item"
)

// TagKey - тег предмета, помечающий его как волшебную палочку. Значение тега - ID палочки.
const TagKey = "cauldron_stick"

// MagicStick - описание волшебной палочки
type MagicStick struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Material    string `json:"material"`
	DisplayName string `json:"display_name"`
	Permission  string `json:"permission,omitempty"`
	Power       int    `json:"power"`
}

// Matches проверяет, описывает ли палочка данный предмет (без учёта прав)
func (s *MagicStick) Matches(it *item.Stack) bool {
	if it.IsAir() {
		return false
	}
	if tag, ok := it.Tag(TagKey); ok {
		return strings.EqualFold(tag, s.ID)
	}
	return strings.EqualFold(it.Material, s.Material) && it.DisplayName == s.DisplayName
}

// Item создаёт предмет для этой палочки
func (s *MagicStick) Item() *item.Stack {
	it := item.New(s.Material, 1)
	it.DisplayName = s.DisplayName
	return it.WithTag(TagKey, s.ID)
}

// FromConfig строит описание палочки из конфигурации
func FromConfig(c config.MagicStickConfig) (*MagicStick, error) {
	if c.ID == "" || c.Material == "" {
		return nil, fmt.Errorf("magic stick %q: id and material required", c.ID)
	}
	name := c.Name
	if name == "" {
		name = c.ID
	}
	return &MagicStick{
		ID:          strings.ToLower(c.ID),
		Name:        name,
		Material:    strings.ToUpper(c.Material),
		DisplayName: c.DisplayName,
		Permission:  c.Permission,
		Power:       c.Power,
	}, nil
}
