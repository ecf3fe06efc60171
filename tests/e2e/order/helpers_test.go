//go:build e2e

package order_test

import "time"

const (
	e2eWait = 5 * time.Second
	e2eTick = 20 * time.Millisecond
)
