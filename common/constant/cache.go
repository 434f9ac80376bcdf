package constant

import "time"

const (
	OrderUserLock = "order:user_lock:%s"
)

const (
	OrderUserLockDefaultTTL = 30 * time.Second
)
