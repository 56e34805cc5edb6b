// Copyright (c) 2026 Viewr. All rights reserved.
// Author: dev@viewr.app

package sec

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
)

// GenerateSecureToken returns a hex-encoded random token of byteLength
// random bytes. Used for opaque single-use tokens (password reset).
func GenerateSecureToken(byteLength int) (string, error) {
	buffer := make([]byte, byteLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", fmt.Errorf("sec_random_token_failed: %w", err)
	}
	return hex.EncodeToString(buffer), nil
}

// GenerateOTP returns a uniformly distributed six-digit numeric code in the
// inclusive range 100000-999999.
func GenerateOTP() (string, error) {

	// 900000 possible codes; crypto/rand.Int is uniform over [0, max)
	offset, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", fmt.Errorf("sec_otp_generation_failed: %w", err)
	}

	return fmt.Sprintf("%06d", offset.Int64()+100000), nil
}
