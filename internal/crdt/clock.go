package crdt

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/fitsync/internal/timex"
)

// logicalBits младшие биты метки, отведенные под логический счетчик
const logicalBits = 16

// HybridClock гибридные логические часы устройства.
// Старшие биты метки - физическое время в миллисекундах, младшие 16 - счетчик,
// который растет, когда физические часы стоят на месте или идут назад.
// Метки одного устройства строго возрастают даже при переводе системных часов.
type HybridClock struct {
	physical func() time.Time
	nodeID   string
	last     int64
	mu       sync.Mutex
}

// NewHybridClock создает часы с заданным идентификатором устройства.
// Пустой nodeID заменяется случайным UUID.
func NewHybridClock(nodeID string) *HybridClock {
	if nodeID == "" {
		nodeID = uuid.New().String()
	}
	return &HybridClock{
		physical: timex.Now,
		nodeID:   nodeID,
	}
}

// Now возвращает новую метку для локального события.
func (c *HybridClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ts := c.physical().UnixMilli() << logicalBits
	if ts <= c.last {
		ts = c.last + 1
	}
	c.last = ts
	return ts
}

// Observe учитывает метку, полученную от удаленного хранилища,
// чтобы следующие локальные метки были больше всех уже увиденных.
func (c *HybridClock) Observe(remote int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if remote > c.last {
		c.last = remote
	}
}

// Restore восстанавливает состояние после перезапуска.
func (c *HybridClock) Restore(last int64) {
	c.Observe(last)
}

// Last возвращает последнюю выданную или увиденную метку.
func (c *HybridClock) Last() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.last
}

// NodeID возвращает идентификатор устройства.
func (c *HybridClock) NodeID() string {
	return c.nodeID
}

// WallTime выделяет из метки физическое время.
func WallTime(ts int64) time.Time {
	return time.UnixMilli(ts >> logicalBits).UTC()
}

// FromTime строит минимальную метку для заданного момента.
func FromTime(t time.Time) int64 {
	return t.UnixMilli() << logicalBits
}
