// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

//go:build !race

package wire_test

import "testing"

// skipRace is a no-op without the race detector.
func skipRace(tb testing.TB) {
	tb.Helper()
}
