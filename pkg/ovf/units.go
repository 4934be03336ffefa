// SPDX-License-Identifier: MPL-2.0

package ovf

import (
	"fmt"
	"math/bits"
	"regexp"
	"strconv"
)

// allocationUnitsPattern matches "byte * <base>^<exponent>".
var allocationUnitsPattern = regexp.MustCompile(`^\s*byte\s*\*\s*(\d+)\s*\^\s*(\d+)\s*$`)

// UnitConversionWarning describes an allocation-units expression that could
// not be applied. It is returned as a value, never as an error return: the
// capacity it accompanies is the unscaled raw value and remains usable.
type UnitConversionWarning struct {
	Expression  string
	RawCapacity uint64
	Reason      string
}

// Error implements the error interface so the warning can travel as a
// diagnostic cause.
func (w *UnitConversionWarning) Error() string {
	return fmt.Sprintf("could not apply capacityAllocationUnits %q (%s); capacity left at raw value %d",
		w.Expression, w.Reason, w.RawCapacity)
}

// NormalizeCapacity scales raw by the allocation-units expression units.
// An empty expression means bytes. An expression outside the
// "byte * base^exponent" grammar, a zero base, or a product that overflows
// uint64 yields raw unchanged plus a warning.
func NormalizeCapacity(raw uint64, units string) (uint64, *UnitConversionWarning) {
	if units == "" {
		return raw, nil
	}

	warn := func(reason string) (uint64, *UnitConversionWarning) {
		return raw, &UnitConversionWarning{Expression: units, RawCapacity: raw, Reason: reason}
	}

	m := allocationUnitsPattern.FindStringSubmatch(units)
	if m == nil {
		return warn(`expected "byte * <base>^<exponent>"`)
	}

	base, err := strconv.ParseUint(m[1], 10, 64)
	if err != nil {
		return warn("base out of range")
	}
	if base == 0 {
		return warn("base must be positive")
	}
	exp, err := strconv.ParseUint(m[2], 10, 64)
	if err != nil {
		return warn("exponent out of range")
	}

	multiplier, ok := pow(base, exp)
	if !ok {
		return warn("multiplier overflows 64 bits")
	}
	hi, lo := bits.Mul64(raw, multiplier)
	if hi != 0 {
		return warn("capacity overflows 64 bits")
	}
	return lo, nil
}

// pow computes base^exp, reporting false on uint64 overflow.
func pow(base, exp uint64) (uint64, bool) {
	result := uint64(1)
	for range exp {
		hi, lo := bits.Mul64(result, base)
		if hi != 0 {
			return 0, false
		}
		result = lo
		if result == 1 && base == 1 {
			break
		}
	}
	return result, true
}
