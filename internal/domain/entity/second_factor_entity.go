package entity

// SlotKind discriminates the independent TOTP-style factors a user may enroll.
type SlotKind string

const (
	SlotTwoFactor SlotKind = "2fa"
	SlotYandexKey SlotKind = "yandex_key"
)

// SlotKinds is every known slot in evaluation order.
var SlotKinds = []SlotKind{SlotTwoFactor, SlotYandexKey}

// Valid reports whether k names a known slot.
func (k SlotKind) Valid() bool {
	return k == SlotTwoFactor || k == SlotYandexKey
}

// SecondFactor is one enrolled TOTP secret.
// LastStep is the highest accepted time step; codes at or below it are replays.
type SecondFactor struct {
	Secret   string
	Enabled  bool
	LastStep int64
}

// Active reports whether the slot is enabled with a stored secret.
func (f SecondFactor) Active() bool { return f.Enabled && f.Secret != "" }
