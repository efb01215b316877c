//    \\ SPIKE: Secure your secrets with SPIFFE. — https://spike.ist/
//  \\\\\ Copyright 2024-present SPIKE contributors.
// \\\\\\\ SPDX-License-Identifier: Apache-2.0

package ceremony

import (
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shamirguard/ceremony-engine/ceremonyerrors"
	"github.com/shamirguard/ceremony-engine/sealedbuf"
	"github.com/shamirguard/ceremony-engine/validation"
)

func encodeBase64(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// maxReprompts bounds ValidationError recovery for text/integer/file-path
// input requests, per the specification's error-handling design.
const maxReprompts = 3

// requestValidatedText requests Text input, locally re-prompting up to
// maxReprompts times when the shell's own validator rejects the answer.
// The constraints' Validator, if set, is advisory to the shell; the
// engine re-validates here so a cooperating shell and a hostile one are
// treated identically.
func (e *Engine) requestValidatedText(prompt string, constraints InputConstraints) (string, error) {
	var lastErr error
	for attempt := 0; attempt < maxReprompts; attempt++ {
		resp, err := e.requestInput(KindText, prompt, constraints)
		if err != nil {
			return "", err
		}
		if constraints.Validator != nil {
			if verr := constraints.Validator(resp.Text); verr != nil {
				e.emitValidation(false, verr.Error(), prompt)
				lastErr = verr
				continue
			}
		}
		if constraints.MaxLength > 0 && len(resp.Text) > constraints.MaxLength {
			e.emitValidation(false, "value exceeds maximum length", prompt)
			lastErr = ceremonyerrors.ErrValidation.Clone().WithMsg("value exceeds maximum length")
			continue
		}
		e.emitValidation(true, "accepted", prompt)
		return resp.Text, nil
	}
	return "", ceremonyerrors.ErrValidation.Clone().
		WithMsg("exceeded maximum reprompt attempts for " + prompt).WithCause(lastErr)
}

// requestSecret requests SecretText input with no reprompt bound, since
// the specification attaches no text-style attempt budget to secret
// entry outside the self-test and reconstruction loops, which manage
// their own attempt counting. The returned Sealed takes ownership of
// the response bytes.
func (e *Engine) requestSecret(prompt string) (*sealedbuf.Sealed, error) {
	resp, err := e.requestInput(KindSecretText, prompt, InputConstraints{})
	if err != nil {
		return nil, err
	}
	return sealedbuf.FromString(resp.Secret, e.cfg.Security.SecureDeletePasses), nil
}

// requestValidatedSecret requests SecretText input that is about to be
// established as a new password (an administrator session password or a
// keeper password), checking it against the configured password policy
// and re-prompting up to maxReprompts times on rejection. It must not be
// used for passwords that merely attempt to open an existing envelope
// (self-test, reconstruction), since those are bounded by their own
// attempt budgets and a wrong guess there is not a policy violation.
func (e *Engine) requestValidatedSecret(prompt string) (*sealedbuf.Sealed, error) {
	policy := validation.PasswordPolicy{
		MinLength:        e.cfg.Security.MinPasswordLength,
		RequireUppercase: e.cfg.Security.RequireUppercase,
		RequireLowercase: e.cfg.Security.RequireLowercase,
		RequireDigit:     e.cfg.Security.RequireDigit,
		RequireSpecial:   e.cfg.Security.RequireSpecialCharacter,
	}
	for attempt := 0; attempt < maxReprompts; attempt++ {
		resp, err := e.requestInput(KindSecretText, prompt, InputConstraints{})
		if err != nil {
			return nil, err
		}
		if verr := validation.ValidatePassword(resp.Secret, policy); verr != nil {
			e.emitValidation(false, verr.Error(), prompt)
			continue
		}
		e.emitValidation(true, "accepted", prompt)
		return sealedbuf.FromString(resp.Secret, e.cfg.Security.SecureDeletePasses), nil
	}
	return nil, ceremonyerrors.ErrValidation.Clone().
		WithMsg("exceeded maximum reprompt attempts for " + prompt)
}

func (e *Engine) requestYesNo(prompt string) (bool, error) {
	resp, err := e.requestInput(KindYesNo, prompt, InputConstraints{})
	if err != nil {
		return false, err
	}
	return resp.Bool, nil
}

// requestValidatedInteger requests Integer input within
// [constraints.MinValue, constraints.MaxValue], re-prompting up to
// maxReprompts times on an out-of-range answer.
func (e *Engine) requestValidatedInteger(prompt string, constraints InputConstraints) (int, error) {
	for attempt := 0; attempt < maxReprompts; attempt++ {
		resp, err := e.requestInput(KindInteger, prompt, constraints)
		if err != nil {
			return 0, err
		}
		if resp.Integer < constraints.MinValue || resp.Integer > constraints.MaxValue {
			e.emitValidation(false, "value is outside the accepted range", prompt)
			continue
		}
		e.emitValidation(true, "accepted", prompt)
		return resp.Integer, nil
	}
	return 0, ceremonyerrors.ErrValidation.Clone().
		WithMsg("exceeded maximum reprompt attempts for " + prompt)
}

// requestValidatedFilePath requests FilePath input, re-prompting up to
// maxReprompts times when the path's extension does not match
// constraints.ExpectedExtension.
func (e *Engine) requestValidatedFilePath(prompt string, constraints InputConstraints) (string, error) {
	for attempt := 0; attempt < maxReprompts; attempt++ {
		resp, err := e.requestInput(KindFilePath, prompt, constraints)
		if err != nil {
			return "", err
		}
		if verr := validateFilePath(resp.Text, constraints.ExpectedExtension); verr != nil {
			e.emitValidation(false, verr.Error(), prompt)
			continue
		}
		e.emitValidation(true, "accepted", prompt)
		return resp.Text, nil
	}
	return "", ceremonyerrors.ErrValidation.Clone().
		WithMsg("exceeded maximum reprompt attempts for " + prompt)
}

// validateFilePath checks that path exists, is a regular file, and
// carries expectedExtension (if non-empty).
func validateFilePath(path, expectedExtension string) error {
	if path == "" {
		return fmt.Errorf("file path must not be empty")
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("path is a directory, not a file")
	}
	if expectedExtension != "" && !strings.EqualFold(filepath.Ext(path), expectedExtension) {
		return fmt.Errorf("file must have extension %s", expectedExtension)
	}
	return nil
}
