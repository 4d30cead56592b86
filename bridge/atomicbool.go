/* SPDX-License-Identifier: MIT */

package bridge

import "sync/atomic"

// AtomicBool is the small lock-free flag used for the handful of booleans
// read and written from more than one goroutine without an enclosing lock
// (Session.isPrimary).
const (
	atomicFalse = int32(iota)
	atomicTrue
)

type AtomicBool struct {
	flag int32
}

func (a *AtomicBool) Get() bool {
	return atomic.LoadInt32(&a.flag) == atomicTrue
}

func (a *AtomicBool) Set(val bool) {
	flag := atomicFalse
	if val {
		flag = atomicTrue
	}
	atomic.StoreInt32(&a.flag, flag)
}

func (a *AtomicBool) Swap(val bool) bool {
	flag := atomicFalse
	if val {
		flag = atomicTrue
	}
	return atomic.SwapInt32(&a.flag, flag) == atomicTrue
}
