// File: utils/constants.go
package utils

import "time"

// BookingLockPrefix prefixes the Redis key that serializes booking commits per payment reference.
const BookingLockPrefix = "bookingLock:"

// BookingLockTTL bounds how long a crashed commit can hold the lock.
const BookingLockTTL = 30 * time.Second

// AvailabilityCachePrefix is the prefix used for cached tutor availability.
const AvailabilityCachePrefix = "availability:"

// AvailabilityCacheTTL is the time-to-live for cached availability entries.
const AvailabilityCacheTTL = 10 * time.Minute

// ChatChannelPrefix is the Redis Pub/Sub channel prefix for chat rooms.
const ChatChannelPrefix = "chat:"

// DateLayout is the wire format of concrete session dates.
const DateLayout = "2006-01-02"
