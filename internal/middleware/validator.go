package middleware

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Input validation and sanitization utilities

var (
	idPattern           = regexp.MustCompile(`^[a-zA-Z0-9_-]{1,64}$`)
	analysisTypePattern = regexp.MustCompile(`^[a-z0-9_]{1,64}$`)
)

const maxAudienceLen = 100

// ValidateDocumentID checks the document id format.
func ValidateDocumentID(id string) error {
	if id == "" {
		return fmt.Errorf("document ID cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid document ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateUserID checks the caller-supplied user id.
func ValidateUserID(id string) error {
	if id == "" {
		return fmt.Errorf("user ID cannot be empty")
	}
	if !idPattern.MatchString(id) {
		return fmt.Errorf("invalid user ID format (alphanumeric, dash, underscore only, max 64 chars)")
	}
	return nil
}

// ValidateAnalysisType only checks shape; membership is decided by the prompt registry.
func ValidateAnalysisType(t string) error {
	if t == "" {
		return fmt.Errorf("analysis_type is required")
	}
	if !analysisTypePattern.MatchString(t) {
		return fmt.Errorf("invalid analysis_type format")
	}
	return nil
}

// CleanAudience sanitizes the optional audience value.
func CleanAudience(audience string) (string, error) {
	audience = SanitizeString(audience)
	if utf8.RuneCountInString(audience) > maxAudienceLen {
		return "", fmt.Errorf("audience too long (max %d chars)", maxAudienceLen)
	}
	return audience, nil
}

// SanitizeString removes dangerous characters from strings
func SanitizeString(input string) string {
	input = strings.ReplaceAll(input, "\x00", "")

	var result strings.Builder
	for _, r := range input {
		if r >= 32 || r == '\t' || r == '\n' {
			result.WriteRune(r)
		}
	}

	return strings.TrimSpace(result.String())
}

// ValidateLimit validates pagination limit
func ValidateLimit(limit int) int {
	if limit <= 0 {
		return 20 // default
	}
	if limit > 100 {
		return 100 // max limit
	}
	return limit
}
