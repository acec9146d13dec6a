package util

import "crypto/rand"

const alphaLC = "abcdefghijklmnopqrstuvwxyz"

func randStr(n int, cs string) string {
	if n <= 0 {
		return ""
	}
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = cs[int(b)%len(cs)]
	}
	return string(buf)
}

// RandAlphaLC returns a random string of length n built from lowercase ASCII letters only.
func RandAlphaLC(n int) string { return randStr(n, alphaLC) }
