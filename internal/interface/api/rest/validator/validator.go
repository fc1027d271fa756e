package validator

import (
	"errors"
	"net/mail"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"filevault-api/internal/interface/api/rest/dto/auth"
	"filevault-api/internal/interface/api/rest/dto/upload"
)

const (
	minPasswordLen = 8
	maxPasswordLen = 72 // bcrypt safe

	maxFileNameLen = 255
	maxPathLen     = 1024
)

func ValidatePage(page string) (int, error) {
	p := 1
	if page != "" {
		p, err := strconv.Atoi(page)
		if err != nil || p < 1 {
			return p, errors.New("invalid page")
		}
		return p, nil
	}

	return p, nil
}

func IsUUID(s string) (bool, uuid.UUID) {
	id, err := uuid.Parse(s)
	return err == nil, id
}

// ValidateID parses a positive numeric path parameter.
func ValidateID(s string) (uint64, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("must be a positive integer")
	}
	return id, nil
}

// ValidateChunkIndex parses the 0-based chunk index and the declared total,
// checking the index is within [0, total).
func ValidateChunkIndex(indexStr, totalStr string) (int, int, error) {
	index, err := strconv.Atoi(indexStr)
	if err != nil || index < 0 {
		return 0, 0, errors.New("index must be a non-negative integer")
	}

	total, err := strconv.Atoi(totalStr)
	if err != nil || total <= 0 {
		return 0, 0, errors.New("total_chunks must be a positive integer")
	}

	if index >= total {
		return 0, 0, errors.New("index must be less than total_chunks")
	}

	return index, total, nil
}

func ValidateInitUpload(r upload.InitRequest) map[string]string {
	errs := make(map[string]string)

	name := strings.TrimSpace(r.FileName)

	if name == "" {
		errs["file_name"] = "file_name is required"
	} else if utf8.RuneCountInString(name) > maxFileNameLen {
		errs["file_name"] = "file_name is too long"
	}

	if r.FileSize == 0 {
		errs["file_size"] = "file_size must be greater than zero"
	}

	if utf8.RuneCountInString(r.RelativePath) > maxPathLen {
		errs["relative_path"] = "relative_path is too long"
	}

	if len(errs) == 0 {
		return nil
	}

	return errs
}

func ValidateLogin(r auth.LoginRequest) map[string]string {
	errs := make(map[string]string)

	// Normalize
	email := strings.ToLower(strings.TrimSpace(r.Email))
	password := r.Password

	// email (required + format)
	if email == "" {
		errs["email"] = "email is required"
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs["email"] = "invalid email format"
	}

	// password (required + length)
	if strings.TrimSpace(password) == "" {
		errs["password"] = "password is required"
	} else if l := utf8.RuneCountInString(password); l < minPasswordLen || l > maxPasswordLen {
		errs["password"] = "password length must be 8-72 characters"
	}

	if len(errs) == 0 {
		return nil
	}
	return errs
}
