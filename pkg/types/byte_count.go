// SPDX-License-Identifier: MPL-2.0

package types

import (
	"strconv"

	"github.com/docker/go-units"
)

// MiB is the number of bytes in one mebibyte.
const MiB ByteCount = 1 << 20

// ByteCount is a size expressed in canonical bytes.
type ByteCount uint64

// MiBFloor returns the size in whole mebibytes, rounded down.
func (b ByteCount) MiBFloor() uint64 { return uint64(b / MiB) }

// Human returns a binary-prefixed rendering such as "10GiB".
func (b ByteCount) Human() string { return units.BytesSize(float64(b)) }

// String returns the decimal byte count.
func (b ByteCount) String() string { return strconv.FormatUint(uint64(b), 10) }
