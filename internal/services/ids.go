package services

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock
type SystemClock struct{}

// Now implements Clock
func (SystemClock) Now() time.Time {
	return time.Now()
}

// IDGenerator produces identifiers for new items
type IDGenerator interface {
	NewID() (string, error)
}

// ID strategies accepted by NewIDGenerator
const (
	IDStrategyTimestamp = "timestamp"
	IDStrategyUUID      = "uuid"
	IDStrategyNanoID    = "nanoid"
)

// TimestampIDGenerator derives ids from the clock as "<unix-seconds>.<micros>".
// Two creates within the same microsecond collide.
type TimestampIDGenerator struct {
	clock Clock
}

// NewTimestampIDGenerator creates a timestamp id generator
func NewTimestampIDGenerator(clock Clock) *TimestampIDGenerator {
	if clock == nil {
		clock = SystemClock{}
	}
	return &TimestampIDGenerator{clock: clock}
}

// NewID implements IDGenerator
func (g *TimestampIDGenerator) NewID() (string, error) {
	now := g.clock.Now()
	return fmt.Sprintf("%d.%06d", now.Unix(), now.Nanosecond()/int(time.Microsecond)), nil
}

// UUIDGenerator produces random version 4 UUIDs
type UUIDGenerator struct{}

// NewID implements IDGenerator
func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", fmt.Errorf("generate uuid: %w", err)
	}
	return id.String(), nil
}

// NanoIDGenerator produces 21 character URL-safe nano ids
type NanoIDGenerator struct{}

// NewID implements IDGenerator
func (NanoIDGenerator) NewID() (string, error) {
	id, err := gonanoid.New()
	if err != nil {
		return "", fmt.Errorf("generate nanoid: %w", err)
	}
	return id, nil
}

// NewIDGenerator returns the generator for strategy. An empty strategy
// selects timestamp ids.
func NewIDGenerator(strategy string, clock Clock) (IDGenerator, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", IDStrategyTimestamp:
		return NewTimestampIDGenerator(clock), nil
	case IDStrategyUUID:
		return UUIDGenerator{}, nil
	case IDStrategyNanoID:
		return NanoIDGenerator{}, nil
	default:
		return nil, fmt.Errorf("unsupported id strategy: %s", strategy)
	}
}
