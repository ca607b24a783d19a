package bulkimport

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	passwordLength  = 12
	lowerChars      = "abcdefghijkmnopqrstuvwxyz"
	upperChars      = "ABCDEFGHJKLMNPQRSTUVWXYZ"
	digitChars      = "23456789"
	symbolChars     = "@#$%&*!"
	passwordCharset = lowerChars + upperChars + digitChars + symbolChars
)

// GeneratePassword returns a random password holding at least one lower,
// upper, digit and symbol character, as identity providers require.
func GeneratePassword() (string, error) {
	buf := make([]byte, 0, passwordLength)
	for _, set := range []string{lowerChars, upperChars, digitChars, symbolChars} {
		c, err := randomChar(set)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}
	for len(buf) < passwordLength {
		c, err := randomChar(passwordCharset)
		if err != nil {
			return "", err
		}
		buf = append(buf, c)
	}

	for i := len(buf) - 1; i > 0; i-- {
		j, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return "", fmt.Errorf("shuffle password: %w", err)
		}
		buf[i], buf[j.Int64()] = buf[j.Int64()], buf[i]
	}
	return string(buf), nil
}

func randomChar(set string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(set))))
	if err != nil {
		return 0, fmt.Errorf("generate password: %w", err)
	}
	return set[n.Int64()], nil
}
