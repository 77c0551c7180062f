package memory

import (
	"fmt"

	"github.com/oksasatya/igrotrend-auth/internal/domain/entity"
)

func errUnknownSlot(kind entity.SlotKind) error {
	return fmt.Errorf("unknown second factor slot %q", kind)
}
