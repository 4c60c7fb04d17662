package config

import "time"

// Terminal observer canvas: one character cell covers this many canvas units.
// The half-block renderer draws two pixels per row, so a pixel is 8x8 units.
const (
	CellWidthUnits  = 8
	CellHeightUnits = 16
)

// Terminal observer rendering
const (
	ObserverTargetFPS       = 30
	ObserverTargetFrameTime = time.Second / ObserverTargetFPS
	AimStep                 = 1 // Cursor step in character cells
)

// Inactivity (SSH observers only)
const (
	InactivityWarnUser       = 90  // Seconds
	InactivityDisconnectUser = 120 // Seconds
)

// Websocket transport
const (
	WSReadLimit  = 64 << 10
	WSPongWait   = 60 * time.Second
	WSPingPeriod = 25 * time.Second
	WSWriteWait  = 10 * time.Second
)

// Shutdown
const (
	ShutdownTimeout = 5 * time.Second
)
