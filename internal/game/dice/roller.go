package dice

import (
	"encoding"
	"errors"

	"go.uber.org/zap"
)

// ErrStateless is returned when the underlying Source cannot capture its state.
var ErrStateless = errors.New("dice: source does not support state capture")

// Roller wraps a Source and logger to provide logged combat rolls.
// All rolls are logged at debug level with the roll kind, inputs, and outcome.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs each roll to logger.
//
// Precondition: src must be non-nil. A nil logger is replaced by a no-op logger.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	if src == nil {
		panic("dice: NewLoggedRoller precondition violated: src must be non-nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Roller{src: src, logger: logger}
}

// Intn returns a value in [0, n) from the wrapped source.
func (r *Roller) Intn(n int) int {
	v := r.src.Intn(n)
	r.logger.Debug("dice roll", zap.String("kind", "intn"), zap.Int("n", n), zap.Int("result", v))
	return v
}

// Float64 returns a value in [0, 1) from the wrapped source.
func (r *Roller) Float64() float64 {
	v := r.src.Float64()
	r.logger.Debug("dice roll", zap.String("kind", "float"), zap.Float64("result", v))
	return v
}

// Chance reports whether an event with probability p occurs.
//
// Postcondition: p <= 0 never occurs and p >= 1 always occurs; neither consumes a roll.
func (r *Roller) Chance(p float64) bool {
	return Chance(r, p)
}

// MarshalBinary captures the wrapped source's state, when it supports it.
func (r *Roller) MarshalBinary() ([]byte, error) {
	m, ok := r.src.(encoding.BinaryMarshaler)
	if !ok {
		return nil, ErrStateless
	}
	return m.MarshalBinary()
}

// UnmarshalBinary restores the wrapped source's state, when it supports it.
func (r *Roller) UnmarshalBinary(data []byte) error {
	u, ok := r.src.(encoding.BinaryUnmarshaler)
	if !ok {
		return ErrStateless
	}
	return u.UnmarshalBinary(data)
}

// Chance reports whether an event with probability p occurs using src.
//
// Postcondition: p <= 0 never occurs and p >= 1 always occurs; neither consumes a roll.
func Chance(src Source, p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return src.Float64() < p
}

// Vary scales base by a uniform factor in [1-spread, 1+spread] and floors the result.
//
// Precondition: spread in [0, 1).
// Postcondition: spread == 0 or base <= 0 returns base without consuming a roll.
func Vary(src Source, base int, spread float64) int {
	if spread <= 0 || base <= 0 {
		return base
	}
	factor := 1 - spread + src.Float64()*2*spread
	return int(float64(base) * factor)
}
