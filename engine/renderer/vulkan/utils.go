package vulkan

// C string helpers. Vulkan expects every string handed across the
// binding to carry an explicit NUL terminator.

const terminator = "\x00"

func safeString(s string) string {
	if len(s) == 0 {
		return terminator
	}
	if s[len(s)-1] != 0 {
		return s + terminator
	}
	return s
}

func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i := range list {
		out[i] = safeString(list[i])
	}
	return out
}

// byteString interprets a NUL-terminated byte array returned by a driver
// query as a Go string.
func byteString(arr []byte) string {
	for i, b := range arr {
		if b == 0 {
			return string(arr[:i])
		}
	}
	return string(arr)
}
