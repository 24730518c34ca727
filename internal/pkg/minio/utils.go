package minio

import (
	"fmt"
	"net"
	"path"
	"regexp"
	"strings"
)

var bucketNameRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9\-.]{1,61}[a-z0-9]$`)

// ValidateBucketName validates a bucket name according to S3 naming rules
func ValidateBucketName(bucketName string) error {
	if bucketName == "" {
		return fmt.Errorf("minio: bucket name cannot be empty")
	}
	if len(bucketName) < 3 || len(bucketName) > 63 {
		return fmt.Errorf("minio: bucket name must be between 3 and 63 characters long")
	}
	if !bucketNameRegex.MatchString(bucketName) {
		return fmt.Errorf("minio: bucket name %q may only contain lowercase letters, numbers, dots and hyphens", bucketName)
	}
	if strings.Contains(bucketName, "..") || strings.Contains(bucketName, "--") {
		return fmt.Errorf("minio: bucket name cannot contain consecutive separators")
	}
	if net.ParseIP(bucketName) != nil {
		return fmt.Errorf("minio: bucket name cannot be formatted as an IP address")
	}
	return nil
}

// SanitizeObjectName drops path components and control characters from a user supplied name
func SanitizeObjectName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(strings.TrimSpace(name))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	if name == "." || name == "/" || name == "" {
		return "unnamed"
	}
	return name
}

// ObjectKey joins key segments with "/" after sanitizing the last one
func ObjectKey(prefix string, segments ...string) string {
	parts := []string{strings.Trim(prefix, "/")}
	for i, s := range segments {
		if i == len(segments)-1 {
			s = SanitizeObjectName(s)
		}
		parts = append(parts, strings.Trim(s, "/"))
	}
	return strings.Join(parts, "/")
}
