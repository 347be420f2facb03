// Copyright (c) 2026 Meridia Health. All rights reserved.

package sec

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashSecret hashes a plain-text secret using the bcrypt algorithm.
func HashSecret(plainTextSecret string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(plainTextSecret), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("sec: failed to hash secret: %w", err)
	}
	return string(hashedBytes), nil
}

// CheckSecretHash compares a plain-text secret with its hashed version.
func CheckSecretHash(plainTextSecret, existingHash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(existingHash), []byte(plainTextSecret))
	return err == nil
}
