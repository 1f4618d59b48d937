// File: utils/constants.go
package utils

import "time"

// LockKeyPrefix namespaces booking lock keys in Redis.
const LockKeyPrefix = "lock:"

// DefaultLockTTL bounds how long a crashed holder can keep a contractor locked.
const DefaultLockTTL = 15 * time.Second

// LockRetryInterval is the wait between acquisition attempts.
const LockRetryInterval = 25 * time.Millisecond
