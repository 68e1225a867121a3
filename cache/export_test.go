// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package cache

import "time"

func SetClock(c *Cache, now func() time.Time) {
	c.now = now
}

func SetDeviceNumber(c *Cache, deviceNumber func(string) (uint64, error)) {
	c.deviceNumber = deviceNumber
}
