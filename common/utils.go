package common

// Coalesce returns the first non-zero value from the provided values, or the zero value if all are zero.
//
// Parameters:
//   - values: a variadic list of values to check for non-zero status
//
// Returns:
//   - T: the first non-zero value from the input, or the zero value if all are zero
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}

// GPUAlignment is the byte multiple every record crossing the kernel boundary must respect.
const GPUAlignment = 16

// AlignUp rounds n up to the next multiple of align. align must be a power of two.
//
// Parameters:
//   - n: the value to round
//   - align: the power-of-two alignment
//
// Returns:
//   - int: the smallest multiple of align that is >= n
func AlignUp(n, align int) int {
	return (n + align - 1) &^ (align - 1)
}

// PadTo16 returns data extended with zero bytes to a multiple of GPUAlignment.
// An empty input yields a single zeroed 16-byte record so the result is always bindable.
//
// Parameters:
//   - data: the payload to pad
//
// Returns:
//   - []byte: data itself when already aligned and non-empty, otherwise a padded copy
func PadTo16(data []byte) []byte {
	if len(data) == 0 {
		return make([]byte, GPUAlignment)
	}
	size := AlignUp(len(data), GPUAlignment)
	if size == len(data) {
		return data
	}
	padded := make([]byte, size)
	copy(padded, data)
	return padded
}
