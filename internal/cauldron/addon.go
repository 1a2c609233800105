package cauldron

import (
	"github.com/annel0/cauldron-witchery/internal/flags"
	"github.com/annel0/cauldron-witchery/internal/island"
)

// ProtectionFlagID - флаг, разрешающий варку в котлах на острове
const ProtectionFlagID = "CAULDRON_WITCHERY_ISLAND_PROTECTION"

// RegisterProtectionFlag регистрирует защитный флаг аддона с рангом по умолчанию
func RegisterProtectionFlag(r *flags.Registry, defaultRank island.Rank) (*flags.Flag, error) {
	f := flags.NewProtectionFlag(ProtectionFlagID, defaultRank)
	if err := r.Register(f); err != nil {
		return nil, err
	}
	return f, nil
}
